package irt

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dte-pulse/Recruitment-Module-Backend/internal/models"
)

var (
	// ErrUnknownItem: the referenced item id is not in the bank.
	ErrUnknownItem = errors.New("item not found in bank")

	// ErrDuplicateResponse: the session already answered this item.
	ErrDuplicateResponse = errors.New("item already answered in this session")

	// ErrSessionNotActive: the session has been completed.
	ErrSessionNotActive = errors.New("session is not active")

	// ErrInvalidParameterRange: an item's a/b/c parameters are outside
	// the configured ranges. Raised at ingestion; items are never
	// silently clamped outside of calibration output.
	ErrInvalidParameterRange = errors.New("item parameters out of range")

	// ErrEstimatorUnavailable: no external MML estimator is configured.
	// Calibration falls back to the proportion-correct update.
	ErrEstimatorUnavailable = errors.New("mml estimator unavailable")

	// ErrEstimationFailed: the theta optimizer did not converge.
	ErrEstimationFailed = errors.New("theta estimation failed to converge")
)

// ValidateItem checks an item's IRT parameters against the configured
// ranges. Returns ErrInvalidParameterRange (wrapped with the specific
// violations) if any parameter is out of bounds.
func ValidateItem(item models.CATItem, bounds Bounds) error {
	var violations []string
	if item.A < bounds.AMin || item.A > bounds.AMax {
		violations = append(violations, fmt.Sprintf("a=%.3f (must be %.1f to %.1f)", item.A, bounds.AMin, bounds.AMax))
	}
	if item.B < bounds.BMin || item.B > bounds.BMax {
		violations = append(violations, fmt.Sprintf("b=%.3f (must be %.1f to %.1f)", item.B, bounds.BMin, bounds.BMax))
	}
	if item.C < bounds.CMin || item.C > bounds.CMax {
		violations = append(violations, fmt.Sprintf("c=%.3f (must be %.2f to %.2f)", item.C, bounds.CMin, bounds.CMax))
	}
	if len(violations) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidParameterRange, strings.Join(violations, "; "))
	}
	return nil
}
