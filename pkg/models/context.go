package models

// ContextBundle carries the retrieved context for one card. Either half
// may be empty when its retrieval degraded; the prompt builder renders an
// empty half as a neutral statement, not as an error.
type ContextBundle struct {
	DocExcerpts     []Excerpt
	SimilarAnalyses []PriorAnalysis
}

// Excerpt is a documentation fragment with its similarity score
type Excerpt struct {
	Text  string
	Score float64
}

// PriorAnalysis summarizes a previously analyzed similar card
type PriorAnalysis struct {
	CardName      string
	Summary       string
	Level         Level
	Justification string
	Score         float64
}
