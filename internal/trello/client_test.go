package trello

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/internal/config"
	"github.com/mehdi-lakhzouri/Backend-IA-Agent-Trello/pkg/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(&config.TrelloConfig{
		APIKey:  "test-key",
		Token:   "test-token",
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func TestGetListCards(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/lists/L1", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("key") != "test-key" || r.URL.Query().Get("token") != "test-token" {
			t.Errorf("missing auth params on %s", r.URL)
		}
		w.Write([]byte(`{"id":"L1","name":"To Do","idBoard":"B1"}`))
	})
	mux.HandleFunc("/boards/B1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"B1","name":"Project X"}`))
	})
	mux.HandleFunc("/lists/L1/cards", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id":"c1","name":"Fix login","desc":"Users locked out","due":"2026-09-15T12:00:00.000Z",
			 "idBoard":"B1","url":"https://trello.com/c/c1",
			 "labels":[{"name":"bug","color":"red"}],
			 "members":[{"fullName":"Sam Lee"}]},
			{"id":"c2","name":"Update docs","desc":"","due":null,"idBoard":"B1","url":""}
		]`))
	})

	client := newTestClient(t, mux)
	cards, err := client.GetListCards(context.Background(), "L1")
	if err != nil {
		t.Fatalf("GetListCards: %v", err)
	}
	if len(cards) != 2 {
		t.Fatalf("got %d cards, want 2", len(cards))
	}

	c1 := cards[0]
	if c1.ID != "c1" || c1.Name != "Fix login" || c1.ListName != "To Do" || c1.BoardName != "Project X" {
		t.Errorf("card = %+v", c1)
	}
	if c1.Due == nil || c1.Due.Day() != 15 {
		t.Errorf("due not parsed: %v", c1.Due)
	}
	if len(c1.Labels) != 1 || c1.Labels[0].Name != "bug" {
		t.Errorf("labels = %v", c1.Labels)
	}
	if len(c1.Members) != 1 || c1.Members[0] != "Sam Lee" {
		t.Errorf("members = %v", c1.Members)
	}
	if cards[1].Due != nil {
		t.Errorf("card without due date got %v", cards[1].Due)
	}
}

func TestGetCardResolvesListAndBoardNames(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cards/c1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"c1","name":"Fix login","desc":"Users locked out",
			"idBoard":"B1","idList":"L1","url":"https://trello.com/c/c1"}`))
	})
	mux.HandleFunc("/boards/B1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"B1","name":"Project X"}`))
	})
	mux.HandleFunc("/lists/L1", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"L1","name":"In Progress","idBoard":"B1"}`))
	})

	client := newTestClient(t, mux)
	card, err := client.GetCard(context.Background(), "c1")
	if err != nil {
		t.Fatalf("GetCard: %v", err)
	}
	if card.ListName != "In Progress" {
		t.Errorf("ListName = %q, want %q", card.ListName, "In Progress")
	}
	if card.BoardName != "Project X" {
		t.Errorf("BoardName = %q, want %q", card.BoardName, "Project X")
	}
}

func TestAddCriticalityLabelCreatesMissingLabel(t *testing.T) {
	var created, attached bool
	mux := http.NewServeMux()
	mux.HandleFunc("/boards/B1/labels", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte(`[{"id":"lb1","name":"Priority - Low","color":"green"}]`))
			return
		}
		if r.URL.Query().Get("name") != "Priority - High" || r.URL.Query().Get("color") != "red" {
			t.Errorf("unexpected label creation params: %v", r.URL.Query())
		}
		created = true
		w.Write([]byte(`{"id":"lb2","name":"Priority - High","color":"red"}`))
	})
	mux.HandleFunc("/cards/c1/idLabels", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("value") != "lb2" {
			t.Errorf("attached label id %q, want lb2", r.URL.Query().Get("value"))
		}
		attached = true
		w.Write([]byte(`[]`))
	})

	client := newTestClient(t, mux)
	if err := client.AddCriticalityLabel(context.Background(), "c1", "B1", models.LevelHigh); err != nil {
		t.Fatalf("AddCriticalityLabel: %v", err)
	}
	if !created || !attached {
		t.Errorf("created=%v attached=%v, want both", created, attached)
	}
}

func TestAddCriticalityLabelReusesExistingLabel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/boards/B1/labels", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Error("label should not be created when it already exists")
		}
		w.Write([]byte(`[{"id":"lb9","name":"Priority - Medium","color":"orange"}]`))
	})
	mux.HandleFunc("/cards/c1/idLabels", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("value") != "lb9" {
			t.Errorf("attached label id %q, want lb9", r.URL.Query().Get("value"))
		}
		w.Write([]byte(`[]`))
	})

	client := newTestClient(t, mux)
	if err := client.AddCriticalityLabel(context.Background(), "c1", "B1", models.LevelMedium); err != nil {
		t.Fatalf("AddCriticalityLabel: %v", err)
	}
}

func TestMoveCardAndComment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/cards/c1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Query().Get("idList") != "L2" {
			t.Errorf("unexpected move request: %s %v", r.Method, r.URL.Query())
		}
		w.Write([]byte(`{}`))
	})
	mux.HandleFunc("/cards/c1/actions/comments", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Query().Get("text") != "handled" {
			t.Errorf("unexpected comment request: %s %v", r.Method, r.URL.Query())
		}
		w.Write([]byte(`{}`))
	})

	client := newTestClient(t, mux)
	ctx := context.Background()
	if err := client.MoveCard(ctx, "c1", "L2"); err != nil {
		t.Fatalf("MoveCard: %v", err)
	}
	if err := client.AddComment(ctx, "c1", "handled"); err != nil {
		t.Fatalf("AddComment: %v", err)
	}
}

func TestAPIErrorSurfacesBody(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusUnauthorized)
	}))

	if err := client.MoveCard(context.Background(), "c1", "L2"); err == nil {
		t.Fatal("expected an error for a 401 response")
	}
}
