package retrieval

import "strings"

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
)

// ChunkText splits text into overlapping chunks of roughly size characters,
// preferring to break on paragraph then line boundaries.
func ChunkText(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size <= 0 {
		size = defaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}
	if len(text) <= size {
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		end := start + size
		if end >= len(text) {
			chunks = append(chunks, strings.TrimSpace(text[start:]))
			break
		}

		cut := end
		if idx := strings.LastIndex(text[start:end], "\n\n"); idx > size/2 {
			cut = start + idx
		} else if idx := strings.LastIndex(text[start:end], "\n"); idx > size/2 {
			cut = start + idx
		} else if idx := strings.LastIndex(text[start:end], " "); idx > size/2 {
			cut = start + idx
		}

		chunk := strings.TrimSpace(text[start:cut])
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		next := cut - overlap
		if next <= start {
			next = cut
		}
		start = next
	}

	return chunks
}
