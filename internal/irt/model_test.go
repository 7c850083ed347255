package irt

import (
	"math"
	"testing"

	"github.com/dte-pulse/Recruitment-Module-Backend/internal/models"
)

func TestProbabilityCorrectBounds(t *testing.T) {
	thetas := []float64{-3, -1.5, 0, 1.5, 3}
	params := []struct{ a, b, c float64 }{
		{0.5, -3.0, 0.15},
		{1.0, 0.0, 0.25},
		{2.0, 3.0, 0.30},
		{1.3, 0.92, 0.2},
	}

	for _, p := range params {
		for _, theta := range thetas {
			got := ProbabilityCorrect(theta, p.a, p.b, p.c)
			if got <= p.c || got >= 1.0 {
				t.Errorf("ProbabilityCorrect(%v, %v, %v, %v) = %f, want in (%v, 1)",
					theta, p.a, p.b, p.c, got, p.c)
			}
		}
	}
}

func TestProbabilityCorrectMonotonic(t *testing.T) {
	prev := -1.0
	for theta := -3.0; theta <= 3.0; theta += 0.25 {
		got := ProbabilityCorrect(theta, 1.2, 0.5, 0.2)
		if got <= prev {
			t.Errorf("ProbabilityCorrect not increasing at theta=%v: %f <= %f", theta, got, prev)
		}
		prev = got
	}
}

func TestProbabilityCorrectAtDifficulty(t *testing.T) {
	// At theta == b the logistic term is 1/2, so p = c + (1-c)/2.
	got := ProbabilityCorrect(0.5, 1.0, 0.5, 0.2)
	want := 0.2 + 0.8/2
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("ProbabilityCorrect(b, a, b, c) = %f, want %f", got, want)
	}
}

func TestItemInformationNonNegative(t *testing.T) {
	for theta := -3.0; theta <= 3.0; theta += 0.5 {
		for _, a := range []float64{0.5, 1.0, 2.0} {
			for _, b := range []float64{-3, 0, 3} {
				got := ItemInformation(theta, a, b, 0.25)
				if got < 0 {
					t.Errorf("ItemInformation(%v, %v, %v, 0.25) = %f, want >= 0", theta, a, b, got)
				}
			}
		}
	}
}

func TestItemInformationDegenerateGuessing(t *testing.T) {
	// c = 1 would zero the denominator; the guard returns 0 information.
	if got := ItemInformation(0, 1.0, 0, 1.0); got != 0 {
		t.Errorf("ItemInformation with c=1 = %f, want 0", got)
	}
}

func TestTestInformationSums(t *testing.T) {
	items := []models.CATItem{
		{ID: 1, A: 1.0, B: 0.0, C: 0.2},
		{ID: 2, A: 1.5, B: 1.0, C: 0.25},
	}
	want := ItemInformation(0.3, 1.0, 0.0, 0.2) + ItemInformation(0.3, 1.5, 1.0, 0.25)
	got := TestInformation(0.3, items)
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("TestInformation = %f, want %f", got, want)
	}
}

func TestStandardErrorNoItems(t *testing.T) {
	got := StandardError(0, nil)
	if !math.IsInf(got, 1) {
		t.Errorf("StandardError with no items = %f, want +Inf", got)
	}
}

func TestStandardErrorDecreasesWithMoreItems(t *testing.T) {
	one := []models.CATItem{{ID: 1, A: 1.0, B: 0.0, C: 0.2}}
	two := append(one, models.CATItem{ID: 2, A: 1.0, B: 0.2, C: 0.2})

	seOne := StandardError(0, one)
	seTwo := StandardError(0, two)
	if seTwo >= seOne {
		t.Errorf("SE should shrink with more items: one=%f two=%f", seOne, seTwo)
	}
}

func TestNormalCDF(t *testing.T) {
	tests := []struct {
		x    float64
		want float64
	}{
		{0, 0.5},
		{1, 0.8413},
		{-1, 0.1587},
		{2, 0.9772},
	}
	for _, tt := range tests {
		got := normalCDF(tt.x)
		if math.Abs(got-tt.want) > 0.001 {
			t.Errorf("normalCDF(%v) = %f, want ~%f", tt.x, got, tt.want)
		}
	}
}
