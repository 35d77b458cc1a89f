package models

import (
	"testing"
)

func TestCardFingerprint(t *testing.T) {
	tests := []struct {
		name string
		card Card
		want string
	}{
		{
			name: "title and description",
			card: Card{Name: "Login broken", Desc: "all users blocked"},
			want: "Login broken all users blocked",
		},
		{
			name: "title only",
			card: Card{Name: "Typo in footer"},
			want: "Typo in footer",
		},
		{
			name: "empty card",
			card: Card{},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.card.Fingerprint(); got != tt.want {
				t.Errorf("Fingerprint() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"HIGH", LevelHigh, false},
		{"medium", LevelMedium, false},
		{" Low ", LevelLow, false},
		{"CRITICAL", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestHistoryPointIDDeterministic(t *testing.T) {
	a := HistoryPointID("c1", "s1")
	b := HistoryPointID("c1", "s1")
	if a != b {
		t.Errorf("same inputs produced different IDs: %s vs %s", a, b)
	}

	c := HistoryPointID("c1", "s2")
	if a == c {
		t.Error("different sessions produced the same point ID")
	}
}
