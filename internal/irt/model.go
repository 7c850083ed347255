package irt

import (
	"math"

	"github.com/dte-pulse/Recruitment-Module-Backend/internal/models"
)

// ProbabilityCorrect returns the 3PL probability of a correct response:
// P(θ) = c + (1-c) / (1 + exp(-a(θ-b))).
// For valid parameters the result lies in (c, 1) and increases with theta.
func ProbabilityCorrect(theta, a, b, c float64) float64 {
	return c + (1-c)/(1+math.Exp(-a*(theta-b)))
}

// ItemInformation returns the Fisher information an item contributes at
// the given theta: I(θ) = a² · P(θ) · (1-P(θ)) / (1-c)².
func ItemInformation(theta, a, b, c float64) float64 {
	denominator := (1 - c) * (1 - c)
	if denominator <= 0 {
		return 0
	}
	p := ProbabilityCorrect(theta, a, b, c)
	return a * a * p * (1 - p) / denominator
}

// TestInformation sums item information across an administered subset.
func TestInformation(theta float64, items []models.CATItem) float64 {
	total := 0.0
	for _, item := range items {
		total += ItemInformation(theta, item.A, item.B, item.C)
	}
	return total
}

// StandardError returns SE(θ) = 1/sqrt(I(θ)) over the administered items,
// or +Inf when no information has accumulated. Callers must treat an
// infinite SE as "cannot stop yet".
func StandardError(theta float64, items []models.CATItem) float64 {
	info := TestInformation(theta, items)
	if info <= 0 {
		return math.Inf(1)
	}
	return 1 / math.Sqrt(info)
}

// normalCDF is the standard normal CDF, used to convert theta into a
// population percentile under the θ ~ N(0,1) model assumption.
func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}
