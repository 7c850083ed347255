package irt

import (
	"errors"
	"log"
	"math"
	"sort"

	"github.com/dte-pulse/Recruitment-Module-Backend/internal/models"
)

// ResponseMatrix is the sparse items × candidates correctness matrix fed
// to the MML estimator. Cells hold 1 (correct), 0 (incorrect) or NaN
// (item not administered to that candidate). Rows follow ItemIDs.
type ResponseMatrix struct {
	ItemIDs []int64
	Cells   [][]float64
}

// MMLResult carries re-estimated 3PL parameters, parallel to the matrix
// rows the estimator was given.
type MMLResult struct {
	Discrimination []float64
	Difficulty     []float64
	Guessing       []float64
}

// MMLEstimator is the pluggable marginal-maximum-likelihood collaborator.
// The production binary selects an implementation at startup; when none is
// available the calibrator falls back to the proportion-correct update.
type MMLEstimator interface {
	Fit(matrix *ResponseMatrix) (*MMLResult, error)
}

// UnavailableEstimator is the no-estimator implementation: every Fit
// reports ErrEstimatorUnavailable, routing calibration to the fallback.
type UnavailableEstimator struct{}

func (UnavailableEstimator) Fit(*ResponseMatrix) (*MMLResult, error) {
	return nil, ErrEstimatorUnavailable
}

// CalibrationReport summarizes one calibration run.
type CalibrationReport struct {
	Method     string `json:"method"` // "mml", "fallback", or "skipped"
	Candidates int    `json:"candidates"`
	Evaluated  int    `json:"evaluated"`
	Updated    int    `json:"updated"`
	Skipped    bool   `json:"skipped"`
	Reason     string `json:"reason,omitempty"`
}

// Calibrator re-estimates item bank parameters from pooled responses of
// completed sessions. It never mutates its inputs: Calibrate returns the
// items to update so the caller can commit them as one atomic batch.
type Calibrator struct {
	estimator        MMLEstimator
	bounds           Bounds
	minCandidates    int
	minItemResponses int
}

// NewCalibrator builds a calibrator with the production thresholds:
// at least 10 distinct candidates for any run, at least 5 responses per
// item for a fallback difficulty update.
func NewCalibrator(estimator MMLEstimator, bounds Bounds) *Calibrator {
	return &Calibrator{
		estimator:        estimator,
		bounds:           bounds,
		minCandidates:    10,
		minItemResponses: 5,
	}
}

// WithMinCandidates overrides the candidate threshold.
func (c *Calibrator) WithMinCandidates(n int) *Calibrator {
	c.minCandidates = n
	return c
}

// Calibrate re-estimates (a, b, c) for the given bank from pooled
// responses, keyed session id → item id → correctness. Only completed
// sessions belong in the pool; the caller filters. The returned slice
// holds full copies of the items whose parameters changed.
//
// Sparse data is refused, not estimated with degraded confidence: with
// zero completed sessions or fewer than minCandidates the run is a
// reported skip, never an error.
func (c *Calibrator) Calibrate(bank []models.CATItem, pooled map[int64]map[int64]bool) ([]models.CATItem, *CalibrationReport, error) {
	if len(pooled) == 0 {
		return nil, &CalibrationReport{Method: "skipped", Skipped: true, Reason: "no completed sessions"}, nil
	}
	if len(pooled) < c.minCandidates {
		log.Printf("[calibration] not enough candidates (%d/%d), skipping", len(pooled), c.minCandidates)
		return nil, &CalibrationReport{
			Method:     "skipped",
			Candidates: len(pooled),
			Skipped:    true,
			Reason:     "not enough candidates",
		}, nil
	}

	matrix := buildMatrix(bank, pooled)

	updates, report, err := c.calibrateMML(bank, matrix)
	if err == nil {
		report.Candidates = len(pooled)
		return updates, report, nil
	}
	if !errors.Is(err, ErrEstimatorUnavailable) {
		log.Printf("WARN: [calibration] mml estimation failed: %v, falling back", err)
	}

	updates, report = c.calibrateFallback(bank, matrix)
	report.Candidates = len(pooled)
	return updates, report, nil
}

// calibrateMML runs the external estimator over rows that have at least
// one real response and clamps its output into the configured ranges.
func (c *Calibrator) calibrateMML(bank []models.CATItem, matrix *ResponseMatrix) ([]models.CATItem, *CalibrationReport, error) {
	byID := make(map[int64]models.CATItem, len(bank))
	for _, item := range bank {
		byID[item.ID] = item
	}

	var validIDs []int64
	var validRows [][]float64
	for i, row := range matrix.Cells {
		if countResponses(row) > 0 {
			validIDs = append(validIDs, matrix.ItemIDs[i])
			validRows = append(validRows, row)
		}
	}
	if len(validIDs) == 0 {
		return nil, &CalibrationReport{Method: "skipped", Skipped: true, Reason: "no items with responses"}, nil
	}

	result, err := c.estimator.Fit(&ResponseMatrix{ItemIDs: validIDs, Cells: validRows})
	if err != nil {
		return nil, nil, err
	}
	if len(result.Discrimination) != len(validIDs) || len(result.Difficulty) != len(validIDs) || len(result.Guessing) != len(validIDs) {
		return nil, nil, errors.New("mml result length mismatch")
	}

	var updates []models.CATItem
	for i, id := range validIDs {
		item := byID[id]

		newA := math.Max(c.bounds.CalibAFloor, result.Discrimination[i])
		newB := clamp(result.Difficulty[i], c.bounds.BMin, c.bounds.BMax)
		newC := clamp(result.Guessing[i], c.bounds.CalibCMin, c.bounds.CalibCMax)

		if math.Abs(item.B-newB) > 0.1 {
			log.Printf("[calibration] item %d: b %.2f -> %.2f", id, item.B, newB)
		}

		item.A = newA
		item.B = newB
		item.C = newC
		updates = append(updates, item)
	}

	return updates, &CalibrationReport{
		Method:    "mml",
		Evaluated: len(validIDs),
		Updated:   len(updates),
	}, nil
}

// calibrateFallback derives a naive difficulty from each item's empirical
// proportion correct and blends it conservatively with the existing value.
// Discrimination and guessing are left untouched. A bad row never blocks
// the remaining items.
func (c *Calibrator) calibrateFallback(bank []models.CATItem, matrix *ResponseMatrix) ([]models.CATItem, *CalibrationReport) {
	byID := make(map[int64]models.CATItem, len(bank))
	for _, item := range bank {
		byID[item.ID] = item
	}

	evaluated := 0
	var updates []models.CATItem
	for i, row := range matrix.Cells {
		n := countResponses(row)
		if n < c.minItemResponses {
			continue
		}
		evaluated++

		correct := 0.0
		for _, cell := range row {
			if !math.IsNaN(cell) {
				correct += cell
			}
		}
		pCorrect := clamp(correct/float64(n), 0.05, 0.95)
		newB := clamp(-math.Log(pCorrect/(1-pCorrect)), c.bounds.BMin, c.bounds.BMax)
		if math.IsNaN(newB) {
			log.Printf("WARN: [calibration] item %d: degenerate proportion, skipping", matrix.ItemIDs[i])
			continue
		}

		item := byID[matrix.ItemIDs[i]]
		item.B = clamp(0.8*item.B+0.2*newB, c.bounds.BMin, c.bounds.BMax)
		updates = append(updates, item)
	}

	return updates, &CalibrationReport{
		Method:    "fallback",
		Evaluated: evaluated,
		Updated:   len(updates),
	}
}

// buildMatrix lays pooled responses out as an items × candidates matrix
// with NaN for not-administered cells. Candidate column order is fixed by
// ascending session id so runs are reproducible.
func buildMatrix(bank []models.CATItem, pooled map[int64]map[int64]bool) *ResponseMatrix {
	sessionIDs := make([]int64, 0, len(pooled))
	for id := range pooled {
		sessionIDs = append(sessionIDs, id)
	}
	sort.Slice(sessionIDs, func(i, j int) bool { return sessionIDs[i] < sessionIDs[j] })

	itemIDs := make([]int64, len(bank))
	rowIndex := make(map[int64]int, len(bank))
	for i, item := range bank {
		itemIDs[i] = item.ID
		rowIndex[item.ID] = i
	}

	cells := make([][]float64, len(bank))
	for i := range cells {
		row := make([]float64, len(sessionIDs))
		for j := range row {
			row[j] = math.NaN()
		}
		cells[i] = row
	}

	for col, sessionID := range sessionIDs {
		for itemID, isCorrect := range pooled[sessionID] {
			row, ok := rowIndex[itemID]
			if !ok {
				continue // response to an item no longer in the bank
			}
			if isCorrect {
				cells[row][col] = 1
			} else {
				cells[row][col] = 0
			}
		}
	}

	return &ResponseMatrix{ItemIDs: itemIDs, Cells: cells}
}

func countResponses(row []float64) int {
	n := 0
	for _, cell := range row {
		if !math.IsNaN(cell) {
			n++
		}
	}
	return n
}
