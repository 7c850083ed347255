package generator

import (
	"fmt"
	"strings"
)

func AptitudeSystemPrompt() string {
	return `You are an assessment content author for a recruitment aptitude test.
You write clear, unambiguous multiple-choice questions with exactly four
options and exactly one correct answer. Questions must be self-contained:
no images, no references to external material, no trick wording. The three
wrong options must be plausible but definitively incorrect.

Respond with ONLY a JSON array, no prose before or after. Each element:
{
  "question": "...",
  "option_a": "...",
  "option_b": "...",
  "option_c": "...",
  "option_d": "...",
  "correct": "A" | "B" | "C" | "D"
}`
}

func BuildAptitudeUserPrompt(topic, difficulty string, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d aptitude questions.\n", count)
	if topic != "" {
		fmt.Fprintf(&b, "Topic area: %s.\n", topic)
	} else {
		b.WriteString("Topic area: mixed logical reasoning, numerical reasoning, and verbal reasoning.\n")
	}

	switch difficulty {
	case "easy":
		b.WriteString("Difficulty: easy — a typical candidate should answer correctly in under 30 seconds.\n")
	case "hard":
		b.WriteString("Difficulty: hard — questions should require multi-step reasoning; most candidates will miss them.\n")
	default:
		b.WriteString("Difficulty: medium — roughly half of candidates should answer correctly.\n")
	}

	b.WriteString("Distribute correct answers across A, B, C, and D.\n")
	b.WriteString("Return only the JSON array.")
	return b.String()
}
