package irt

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dte-pulse/Recruitment-Module-Backend/internal/models"
)

// Engine drives one exam session over an in-memory item bank. It performs
// no I/O: callers load the bank and persisted responses, rehydrate, and
// persist whatever ProcessResponse returns. An engine is not safe for
// concurrent use; each session serializes its own submissions.
type Engine struct {
	items  []models.CATItem // sorted ascending by id for deterministic ties
	byID   map[int64]models.CATItem
	policy Policy
	bounds Bounds

	theta        float64
	administered []int64
	responses    []models.CATItemResponse
	active       bool
}

// AnswerResult is the outcome of processing one response, rounded to the
// presentation granularity (theta 2dp, SE 3dp).
type AnswerResult struct {
	IsCorrect bool
	Theta     float64
	SE        float64
	NumItems  int
}

// FinalResults is the completed-session report.
type FinalResults struct {
	Theta        float64
	SE           float64
	Percentile   float64
	NumItems     int
	NumCorrect   int
	Accuracy     float64
	AbilityLevel string
}

// NewEngine builds an engine over a snapshot of the item bank. The bank is
// copied and sorted by ascending item id, which fixes maximum-information
// ties to the lowest id.
func NewEngine(bank []models.CATItem, policy Policy, bounds Bounds) *Engine {
	items := make([]models.CATItem, len(bank))
	copy(items, bank)
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })

	byID := make(map[int64]models.CATItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	return &Engine{
		items:  items,
		byID:   byID,
		policy: policy,
		bounds: bounds,
		theta:  policy.InitialTheta,
		active: true,
	}
}

// Rehydrate rebuilds session state from the persisted response history.
// Theta is re-estimated from the full history rather than trusted from a
// stored snapshot, so the in-memory state is always a deterministic
// function of the durable record.
func (e *Engine) Rehydrate(responses []models.CATItemResponse) error {
	e.administered = e.administered[:0]
	e.responses = e.responses[:0]

	for _, r := range responses {
		e.administered = append(e.administered, r.ItemID)
		e.responses = append(e.responses, r)
	}

	if len(e.responses) == 0 {
		e.theta = e.policy.InitialTheta
		return nil
	}

	theta, err := EstimateTheta(e.history(), e.byID, e.bounds)
	if err != nil {
		return fmt.Errorf("rehydrate session: %w", err)
	}
	e.theta = theta
	return nil
}

// ProcessResponse scores one answer, re-estimates theta over the full
// history, and appends the immutable response record.
func (e *Engine) ProcessResponse(itemID int64, selectedOption string) (*AnswerResult, error) {
	if !e.active {
		return nil, ErrSessionNotActive
	}
	item, ok := e.byID[itemID]
	if !ok {
		return nil, fmt.Errorf("item %d: %w", itemID, ErrUnknownItem)
	}
	for _, id := range e.administered {
		if id == itemID {
			return nil, fmt.Errorf("item %d: %w", itemID, ErrDuplicateResponse)
		}
	}

	isCorrect := strings.EqualFold(strings.TrimSpace(selectedOption), item.Correct)
	thetaBefore := e.theta

	history := append(e.history(), ScoredResponse{ItemID: itemID, IsCorrect: isCorrect})
	thetaAfter, err := EstimateTheta(history, e.byID, e.bounds)
	if err != nil {
		return nil, err
	}

	e.theta = thetaAfter
	e.administered = append(e.administered, itemID)
	seAfter := StandardError(thetaAfter, e.administeredItems())

	e.responses = append(e.responses, models.CATItemResponse{
		ItemID:         itemID,
		SelectedOption: strings.ToUpper(strings.TrimSpace(selectedOption)),
		IsCorrect:      isCorrect,
		ThetaBefore:    thetaBefore,
		ThetaAfter:     thetaAfter,
		SEAfter:        seAfter,
	})

	return &AnswerResult{
		IsCorrect: isCorrect,
		Theta:     round2(thetaAfter),
		SE:        round3(seAfter),
		NumItems:  len(e.administered),
	}, nil
}

// ShouldContinue evaluates the stopping rules: the minimum-item floor
// overrides SE sufficiency, then the maximum cap, then the SE target.
func (e *Engine) ShouldContinue() bool {
	n := len(e.administered)
	if n < e.policy.MinItems {
		return true
	}
	if n >= e.policy.MaxItems {
		return false
	}
	if StandardError(e.theta, e.administeredItems()) <= e.policy.TargetSE {
		return false
	}
	return true
}

// Complete derives the final report and transitions the session to the
// completed state. The transition is explicit: reaching the stopping
// condition alone never completes a session.
func (e *Engine) Complete() (*FinalResults, error) {
	if !e.active {
		return nil, ErrSessionNotActive
	}
	e.active = false

	numCorrect := 0
	for _, r := range e.responses {
		if r.IsCorrect {
			numCorrect++
		}
	}
	accuracy := 0.0
	if len(e.responses) > 0 {
		accuracy = float64(numCorrect) / float64(len(e.responses)) * 100
	}

	return &FinalResults{
		Theta:        round2(e.theta),
		SE:           round3(StandardError(e.theta, e.administeredItems())),
		Percentile:   round1(normalCDF(e.theta) * 100),
		NumItems:     len(e.administered),
		NumCorrect:   numCorrect,
		Accuracy:     round1(accuracy),
		AbilityLevel: interpretTheta(e.theta),
	}, nil
}

// Active reports whether the session can still accept responses.
func (e *Engine) Active() bool { return e.active }

// Theta returns the current (unrounded) ability estimate.
func (e *Engine) Theta() float64 { return e.theta }

// NumAdministered returns how many items the session has answered.
func (e *Engine) NumAdministered() int { return len(e.administered) }

// Responses returns the session's response records in answer order.
func (e *Engine) Responses() []models.CATItemResponse { return e.responses }

// CurrentSE returns the standard error at the current theta over the
// administered set. +Inf before the first response.
func (e *Engine) CurrentSE() float64 {
	return StandardError(e.theta, e.administeredItems())
}

func (e *Engine) history() []ScoredResponse {
	history := make([]ScoredResponse, 0, len(e.responses)+1)
	for _, r := range e.responses {
		history = append(history, ScoredResponse{ItemID: r.ItemID, IsCorrect: r.IsCorrect})
	}
	return history
}

func (e *Engine) administeredItems() []models.CATItem {
	items := make([]models.CATItem, 0, len(e.administered))
	for _, id := range e.administered {
		if item, ok := e.byID[id]; ok {
			items = append(items, item)
		}
	}
	return items
}

func interpretTheta(theta float64) string {
	switch {
	case theta < -1.0:
		return "Below Average"
	case theta < 0.0:
		return "Average"
	case theta < 1.0:
		return "Above Average"
	case theta < 2.0:
		return "Excellent"
	default:
		return "Exceptional"
	}
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
func round3(x float64) float64 { return math.Round(x*1000) / 1000 }
