package generator

import (
	"context"
	"strings"
	"testing"
)

const goodBatch = `[
  {"question": "What is 15% of 200?", "option_a": "25", "option_b": "30", "option_c": "35", "option_d": "40", "correct": "B"},
  {"question": "Which number completes the series 2, 6, 18, ...?", "option_a": "36", "option_b": "48", "option_c": "54", "option_d": "72", "correct": "c"}
]`

func TestParseDraftItems(t *testing.T) {
	drafts, err := ParseDraftItems(goodBatch)
	if err != nil {
		t.Fatalf("ParseDraftItems: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("parsed %d items, want 2", len(drafts))
	}
	if drafts[0].Correct != "B" {
		t.Errorf("Correct = %q, want B", drafts[0].Correct)
	}
	// Lowercase answer keys are normalized.
	if drafts[1].Correct != "C" {
		t.Errorf("Correct = %q, want normalized C", drafts[1].Correct)
	}
}

func TestParseDraftItemsCodeFence(t *testing.T) {
	fenced := "```json\n" + goodBatch + "\n```"
	drafts, err := ParseDraftItems(fenced)
	if err != nil {
		t.Fatalf("ParseDraftItems with fence: %v", err)
	}
	if len(drafts) != 2 {
		t.Errorf("parsed %d items, want 2", len(drafts))
	}
}

func TestParseDraftItemsInvalidJSON(t *testing.T) {
	if _, err := ParseDraftItems("not json at all"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestParseDraftItemsEmptyArray(t *testing.T) {
	if _, err := ParseDraftItems("[]"); err == nil {
		t.Error("expected error for empty batch")
	}
}

func TestParseDraftItemsBadAnswerKey(t *testing.T) {
	bad := `[{"question": "Q?", "option_a": "1", "option_b": "2", "option_c": "3", "option_d": "4", "correct": "E"}]`
	_, err := ParseDraftItems(bad)
	if err == nil || !strings.Contains(err.Error(), "not A, B, C, or D") {
		t.Errorf("error = %v, want answer key rejection", err)
	}
}

func TestParseDraftItemsMissingOption(t *testing.T) {
	bad := `[{"question": "Q?", "option_a": "1", "option_b": "", "option_c": "3", "option_d": "4", "correct": "A"}]`
	_, err := ParseDraftItems(bad)
	if err == nil || !strings.Contains(err.Error(), "option_b is empty") {
		t.Errorf("error = %v, want empty option rejection", err)
	}
}

func TestDefaultDifficulty(t *testing.T) {
	tests := []struct {
		difficulty string
		want       float64
	}{
		{"easy", -1.0},
		{"medium", 0.0},
		{"hard", 1.0},
		{"", 0.0},
	}
	for _, tt := range tests {
		if got := DefaultDifficulty(tt.difficulty); got != tt.want {
			t.Errorf("DefaultDifficulty(%q) = %f, want %f", tt.difficulty, got, tt.want)
		}
	}
}

func TestMockClientOutputParses(t *testing.T) {
	mock := NewMockClient()
	content, err := mock.Generate(context.Background(), "", "")
	if err != nil {
		t.Fatalf("mock Generate: %v", err)
	}
	drafts, err := ParseDraftItems(content)
	if err != nil {
		t.Fatalf("mock output does not parse: %v", err)
	}
	if len(drafts) != 5 {
		t.Errorf("mock batch = %d items, want 5", len(drafts))
	}
}
