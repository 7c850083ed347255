package irt

import (
	"math"

	"github.com/dte-pulse/Recruitment-Module-Backend/internal/models"
)

// ScoredResponse is the minimal view of an answered item the estimator
// needs: which item, and whether the answer was correct.
type ScoredResponse struct {
	ItemID    int64
	IsCorrect bool
}

const (
	// Probability clamp for the log-likelihood, avoiding ln(0).
	pFloor   = 0.0001
	pCeiling = 0.9999

	// Golden-section convergence. 1e-6 over a 6-unit interval is far
	// tighter than the 2-decimal rounding the rest of the system uses.
	thetaTolerance = 1e-6
	maxIterations  = 200
)

var invPhi = (math.Sqrt(5) - 1) / 2

// EstimateTheta returns the maximum-likelihood ability estimate for the
// given response history, searched over [bounds.ThetaMin, bounds.ThetaMax].
// Items missing from the bank map are ignored, matching the engine's
// treatment of stale history rows. The result is deterministic for a given
// history and never leaves the bounds; with a one-sided (all correct or
// all incorrect) history the likelihood is monotonic and the estimate
// saturates at a bound.
func EstimateTheta(history []ScoredResponse, bank map[int64]models.CATItem, bounds Bounds) (float64, error) {
	negLogLikelihood := func(theta float64) float64 {
		ll := 0.0
		for _, resp := range history {
			item, ok := bank[resp.ItemID]
			if !ok {
				continue
			}
			p := ProbabilityCorrect(theta, item.A, item.B, item.C)
			p = clamp(p, pFloor, pCeiling)
			if resp.IsCorrect {
				ll += math.Log(p)
			} else {
				ll += math.Log(1 - p)
			}
		}
		return -ll
	}

	theta, ok := minimizeScalar(negLogLikelihood, bounds.ThetaMin, bounds.ThetaMax)
	if !ok {
		return 0, ErrEstimationFailed
	}
	return theta, nil
}

// minimizeScalar finds the minimum of f on [lo, hi] by golden-section
// search. Derivative-free and strictly bounded: the returned point always
// lies inside [lo, hi]. Reports ok=false if the interval failed to shrink
// below tolerance within the iteration cap.
func minimizeScalar(f func(float64) float64, lo, hi float64) (float64, bool) {
	x1 := hi - invPhi*(hi-lo)
	x2 := lo + invPhi*(hi-lo)
	f1 := f(x1)
	f2 := f(x2)

	for i := 0; i < maxIterations && hi-lo > thetaTolerance; i++ {
		if f1 < f2 {
			hi = x2
			x2 = x1
			f2 = f1
			x1 = hi - invPhi*(hi-lo)
			f1 = f(x1)
		} else {
			lo = x1
			x1 = x2
			f1 = f2
			x2 = lo + invPhi*(hi-lo)
			f2 = f(x2)
		}
	}

	if hi-lo > thetaTolerance {
		return 0, false
	}
	return (lo + hi) / 2, true
}
