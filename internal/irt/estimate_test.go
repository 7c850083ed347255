package irt

import (
	"math"
	"testing"

	"github.com/dte-pulse/Recruitment-Module-Backend/internal/models"
)

func testBank() map[int64]models.CATItem {
	return map[int64]models.CATItem{
		1: {ID: 1, Correct: "A", A: 1.0, B: -1.0, C: 0.2},
		2: {ID: 2, Correct: "B", A: 1.2, B: 0.0, C: 0.25},
		3: {ID: 3, Correct: "C", A: 0.8, B: 1.0, C: 0.2},
		4: {ID: 4, Correct: "D", A: 1.5, B: 0.5, C: 0.15},
	}
}

func TestEstimateThetaDeterministic(t *testing.T) {
	history := []ScoredResponse{
		{ItemID: 1, IsCorrect: true},
		{ItemID: 2, IsCorrect: false},
		{ItemID: 3, IsCorrect: true},
	}
	bank := testBank()
	bounds := DefaultBounds()

	first, err := EstimateTheta(history, bank, bounds)
	if err != nil {
		t.Fatalf("EstimateTheta: %v", err)
	}
	second, err := EstimateTheta(history, bank, bounds)
	if err != nil {
		t.Fatalf("EstimateTheta: %v", err)
	}

	// Determinism well past the 2dp rounding granularity.
	if math.Abs(first-second) > 1e-9 {
		t.Errorf("repeated estimation differs: %f vs %f", first, second)
	}
}

func TestEstimateThetaSaturatesAllCorrect(t *testing.T) {
	history := []ScoredResponse{
		{ItemID: 1, IsCorrect: true},
		{ItemID: 2, IsCorrect: true},
		{ItemID: 3, IsCorrect: true},
	}
	got, err := EstimateTheta(history, testBank(), DefaultBounds())
	if err != nil {
		t.Fatalf("EstimateTheta: %v", err)
	}
	// Monotonic likelihood: the estimate must sit at the upper bound.
	if math.Abs(got-3.0) > 0.001 {
		t.Errorf("all-correct theta = %f, want 3.0", got)
	}
}

func TestEstimateThetaSaturatesAllIncorrect(t *testing.T) {
	history := []ScoredResponse{
		{ItemID: 1, IsCorrect: false},
		{ItemID: 2, IsCorrect: false},
		{ItemID: 3, IsCorrect: false},
	}
	got, err := EstimateTheta(history, testBank(), DefaultBounds())
	if err != nil {
		t.Fatalf("EstimateTheta: %v", err)
	}
	if math.Abs(got-(-3.0)) > 0.001 {
		t.Errorf("all-incorrect theta = %f, want -3.0", got)
	}
}

func TestEstimateThetaStaysInBounds(t *testing.T) {
	histories := [][]ScoredResponse{
		{{ItemID: 1, IsCorrect: true}},
		{{ItemID: 1, IsCorrect: false}},
		{{ItemID: 1, IsCorrect: true}, {ItemID: 2, IsCorrect: true}, {ItemID: 3, IsCorrect: false}},
	}
	bounds := DefaultBounds()
	for _, history := range histories {
		got, err := EstimateTheta(history, testBank(), bounds)
		if err != nil {
			t.Fatalf("EstimateTheta: %v", err)
		}
		if got < bounds.ThetaMin || got > bounds.ThetaMax {
			t.Errorf("theta %f outside [%v, %v]", got, bounds.ThetaMin, bounds.ThetaMax)
		}
	}
}

func TestEstimateThetaMixedHistoryInterior(t *testing.T) {
	// A split history should produce an interior estimate, not a bound.
	history := []ScoredResponse{
		{ItemID: 1, IsCorrect: true},
		{ItemID: 2, IsCorrect: true},
		{ItemID: 3, IsCorrect: false},
		{ItemID: 4, IsCorrect: false},
	}
	got, err := EstimateTheta(history, testBank(), DefaultBounds())
	if err != nil {
		t.Fatalf("EstimateTheta: %v", err)
	}
	if got <= -2.9 || got >= 2.9 {
		t.Errorf("mixed history theta = %f, want interior estimate", got)
	}
}

func TestEstimateThetaOrderIndependent(t *testing.T) {
	forward := []ScoredResponse{
		{ItemID: 1, IsCorrect: true},
		{ItemID: 2, IsCorrect: false},
		{ItemID: 3, IsCorrect: true},
		{ItemID: 4, IsCorrect: false},
	}
	reversed := []ScoredResponse{
		{ItemID: 4, IsCorrect: false},
		{ItemID: 3, IsCorrect: true},
		{ItemID: 2, IsCorrect: false},
		{ItemID: 1, IsCorrect: true},
	}

	a, err := EstimateTheta(forward, testBank(), DefaultBounds())
	if err != nil {
		t.Fatalf("EstimateTheta: %v", err)
	}
	b, err := EstimateTheta(reversed, testBank(), DefaultBounds())
	if err != nil {
		t.Fatalf("EstimateTheta: %v", err)
	}
	if math.Abs(a-b) > 1e-9 {
		t.Errorf("estimation depends on history order: %f vs %f", a, b)
	}
}

func TestMinimizeScalarQuadratic(t *testing.T) {
	f := func(x float64) float64 { return (x - 1.25) * (x - 1.25) }
	got, ok := minimizeScalar(f, -3, 3)
	if !ok {
		t.Fatal("minimizeScalar did not converge")
	}
	if math.Abs(got-1.25) > 1e-4 {
		t.Errorf("minimizeScalar = %f, want 1.25", got)
	}
}

func TestMinimizeScalarMonotonic(t *testing.T) {
	// Strictly decreasing on the interval: minimum at the upper bound.
	f := func(x float64) float64 { return -x }
	got, ok := minimizeScalar(f, -3, 3)
	if !ok {
		t.Fatal("minimizeScalar did not converge")
	}
	if math.Abs(got-3.0) > 0.001 {
		t.Errorf("minimizeScalar = %f, want 3.0", got)
	}
}
