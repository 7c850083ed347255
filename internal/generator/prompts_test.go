package generator

import (
	"strings"
	"testing"
)

func TestAptitudeSystemPrompt(t *testing.T) {
	prompt := AptitudeSystemPrompt()

	required := []string{"JSON array", "four", "option_a", "option_d", `"correct"`}
	for _, keyword := range required {
		if !strings.Contains(prompt, keyword) {
			t.Errorf("system prompt missing keyword %q", keyword)
		}
	}
}

func TestBuildAptitudeUserPrompt(t *testing.T) {
	prompt := BuildAptitudeUserPrompt("numerical reasoning", "hard", 8)

	required := []string{"8", "numerical reasoning", "hard", "Distribute correct answers"}
	for _, keyword := range required {
		if !strings.Contains(prompt, keyword) {
			t.Errorf("user prompt missing keyword %q", keyword)
		}
	}
}

func TestBuildAptitudeUserPromptDefaults(t *testing.T) {
	prompt := BuildAptitudeUserPrompt("", "", 5)

	if !strings.Contains(prompt, "mixed logical reasoning") {
		t.Error("empty topic should fall back to the mixed topic set")
	}
	if !strings.Contains(prompt, "medium") {
		t.Error("empty difficulty should fall back to medium")
	}
}
