package irt

import (
	"testing"

	"github.com/dte-pulse/Recruitment-Module-Backend/internal/models"
)

func twoItemBank() []models.CATItem {
	return []models.CATItem{
		{ID: 1, Correct: "A", A: 0.5, B: 0.92, C: 0.3},
		{ID: 2, Correct: "A", A: 0.5, B: 2.31, C: 0.3},
	}
}

func TestSelectNextMaximumInformation(t *testing.T) {
	bank := twoItemBank()
	engine := NewEngine(bank, Policy{MinItems: 1, MaxItems: 1, TargetSE: 0.3}, DefaultBounds())

	// No prior response: no difficulty window, pure max-information pick.
	selected := engine.SelectNext()
	if selected == nil {
		t.Fatal("SelectNext returned nil with a full pool")
	}

	infoA := ItemInformation(0, bank[0].A, bank[0].B, bank[0].C)
	infoB := ItemInformation(0, bank[1].A, bank[1].B, bank[1].C)
	wantID := bank[0].ID
	if infoB > infoA {
		wantID = bank[1].ID
	}
	if selected.ID != wantID {
		t.Errorf("SelectNext picked item %d (info %f vs %f), want %d",
			selected.ID, infoA, infoB, wantID)
	}
}

func TestThetaMovesWithFirstAnswer(t *testing.T) {
	bank := twoItemBank()
	policy := Policy{MinItems: 1, MaxItems: 1, TargetSE: 0.3}

	engine := NewEngine(bank, policy, DefaultBounds())
	first := engine.SelectNext()
	result, err := engine.ProcessResponse(first.ID, "A") // correct
	if err != nil {
		t.Fatalf("ProcessResponse: %v", err)
	}
	if result.Theta <= 0 {
		t.Errorf("correct answer theta = %f, want > 0", result.Theta)
	}

	engine = NewEngine(bank, policy, DefaultBounds())
	first = engine.SelectNext()
	result, err = engine.ProcessResponse(first.ID, "B") // incorrect
	if err != nil {
		t.Fatalf("ProcessResponse: %v", err)
	}
	if result.Theta >= 0 {
		t.Errorf("incorrect answer theta = %f, want < 0", result.Theta)
	}
}

func TestSelectNextWindowsHarderAfterCorrect(t *testing.T) {
	// One very easy, very informative item and one hard item. After a
	// correct answer the window b > theta-0.5 must exclude the easy one
	// even though it carries more information.
	bank := []models.CATItem{
		{ID: 1, Correct: "A", A: 2.0, B: -2.0, C: 0.15},
		{ID: 2, Correct: "A", A: 0.5, B: 2.8, C: 0.3},
		{ID: 3, Correct: "A", A: 2.0, B: -2.5, C: 0.15},
	}
	engine := NewEngine(bank, DefaultPolicy(), DefaultBounds())

	if _, err := engine.ProcessResponse(1, "A"); err != nil {
		t.Fatalf("ProcessResponse: %v", err)
	}
	// All-correct history saturates theta at 3.0; window keeps b > 2.5.
	selected := engine.SelectNext()
	if selected == nil {
		t.Fatal("SelectNext returned nil")
	}
	if selected.ID != 2 {
		t.Errorf("after correct answer selected item %d (b=%f), want harder item 2", selected.ID, selected.B)
	}
}

func TestSelectNextWindowsEasierAfterIncorrect(t *testing.T) {
	bank := []models.CATItem{
		{ID: 1, Correct: "A", A: 1.0, B: 0.0, C: 0.2},
		{ID: 2, Correct: "A", A: 2.0, B: 1.5, C: 0.15},
		{ID: 3, Correct: "A", A: 0.6, B: -2.8, C: 0.2},
	}
	engine := NewEngine(bank, DefaultPolicy(), DefaultBounds())

	if _, err := engine.ProcessResponse(1, "B"); err != nil { // incorrect
		t.Fatalf("ProcessResponse: %v", err)
	}
	// Theta saturates at -3; the window keeps only items with b < -2.5.
	selected := engine.SelectNext()
	if selected == nil {
		t.Fatal("SelectNext returned nil")
	}
	if selected.ID != 3 {
		t.Errorf("after incorrect answer selected item %d (b=%f), want easier item 3", selected.ID, selected.B)
	}
}

func TestSelectNextDropsEmptyWindow(t *testing.T) {
	// Every remaining item is easier than theta-0.5 after a correct
	// answer; the restriction must be discarded, not return nil.
	bank := []models.CATItem{
		{ID: 1, Correct: "A", A: 1.0, B: 2.0, C: 0.2},
		{ID: 2, Correct: "A", A: 1.0, B: -2.0, C: 0.2},
	}
	engine := NewEngine(bank, DefaultPolicy(), DefaultBounds())

	if _, err := engine.ProcessResponse(1, "A"); err != nil {
		t.Fatalf("ProcessResponse: %v", err)
	}
	selected := engine.SelectNext()
	if selected == nil {
		t.Fatal("SelectNext returned nil, want unrestricted fallback")
	}
	if selected.ID != 2 {
		t.Errorf("SelectNext = item %d, want item 2", selected.ID)
	}
}

func TestSelectNextExhaustedPool(t *testing.T) {
	bank := []models.CATItem{{ID: 1, Correct: "A", A: 1.0, B: 0.0, C: 0.2}}
	engine := NewEngine(bank, DefaultPolicy(), DefaultBounds())

	if _, err := engine.ProcessResponse(1, "A"); err != nil {
		t.Fatalf("ProcessResponse: %v", err)
	}
	if selected := engine.SelectNext(); selected != nil {
		t.Errorf("SelectNext on exhausted pool = item %d, want nil", selected.ID)
	}
}

func TestSelectNextEmptyBank(t *testing.T) {
	engine := NewEngine(nil, DefaultPolicy(), DefaultBounds())
	if selected := engine.SelectNext(); selected != nil {
		t.Errorf("SelectNext on empty bank = item %d, want nil", selected.ID)
	}
}

func TestSelectNextTieBreakLowestID(t *testing.T) {
	// Identical parameters, identical information: lowest id wins
	// regardless of input order.
	bank := []models.CATItem{
		{ID: 7, Correct: "A", A: 1.0, B: 0.0, C: 0.2},
		{ID: 3, Correct: "A", A: 1.0, B: 0.0, C: 0.2},
		{ID: 5, Correct: "A", A: 1.0, B: 0.0, C: 0.2},
	}
	engine := NewEngine(bank, DefaultPolicy(), DefaultBounds())

	selected := engine.SelectNext()
	if selected == nil {
		t.Fatal("SelectNext returned nil")
	}
	if selected.ID != 3 {
		t.Errorf("tie broken to item %d, want lowest id 3", selected.ID)
	}
}
