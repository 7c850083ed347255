package generator

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DraftItem is one generated question before it enters the item bank.
type DraftItem struct {
	Question string `json:"question"`
	OptionA  string `json:"option_a"`
	OptionB  string `json:"option_b"`
	OptionC  string `json:"option_c"`
	OptionD  string `json:"option_d"`
	Correct  string `json:"correct"`
}

var validKeys = map[string]bool{"A": true, "B": true, "C": true, "D": true}

// ParseDraftItems parses the model's JSON array, tolerating a markdown
// code fence around it, and validates each draft structurally. A single
// malformed draft fails the whole batch — partial batches are worse than
// a retry.
func ParseDraftItems(responseBody string) ([]DraftItem, error) {
	cleaned := stripCodeFences(responseBody)

	var drafts []DraftItem
	if err := json.Unmarshal([]byte(cleaned), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	if len(drafts) == 0 {
		return nil, fmt.Errorf("response contained no items")
	}

	for i := range drafts {
		drafts[i].Question = strings.TrimSpace(drafts[i].Question)
		drafts[i].Correct = strings.ToUpper(strings.TrimSpace(drafts[i].Correct))

		if err := validateDraft(drafts[i]); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+1, err)
		}
	}
	return drafts, nil
}

func validateDraft(draft DraftItem) error {
	if draft.Question == "" {
		return fmt.Errorf("question is empty")
	}
	for label, option := range map[string]string{
		"option_a": draft.OptionA,
		"option_b": draft.OptionB,
		"option_c": draft.OptionC,
		"option_d": draft.OptionD,
	} {
		if strings.TrimSpace(option) == "" {
			return fmt.Errorf("%s is empty", label)
		}
	}
	if !validKeys[draft.Correct] {
		return fmt.Errorf("correct answer %q is not A, B, C, or D", draft.Correct)
	}
	return nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```json"))
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
