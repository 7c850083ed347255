package irt

// Bounds holds every parameter range the engine enforces. It is passed
// explicitly to the engine and calibrator instead of living as package
// globals, so tests can run with alternate ranges.
type Bounds struct {
	AMin float64
	AMax float64
	BMin float64
	BMax float64
	CMin float64
	CMax float64

	// Theta search interval for the MLE. Matches the difficulty range.
	ThetaMin float64
	ThetaMax float64

	// Calibration output clamps. These are wider than the ingestion
	// ranges: the calibrator is allowed to push c toward 0 and only
	// floors a, per the batch re-estimation contract.
	CalibAFloor float64
	CalibCMin   float64
	CalibCMax   float64
}

// DefaultBounds returns the production parameter ranges.
func DefaultBounds() Bounds {
	return Bounds{
		AMin:     0.5,
		AMax:     2.0,
		BMin:     -3.0,
		BMax:     3.0,
		CMin:     0.15,
		CMax:     0.30,
		ThetaMin: -3.0,
		ThetaMax: 3.0,

		CalibAFloor: 0.5,
		CalibCMin:   0.0,
		CalibCMax:   0.4,
	}
}

// Policy controls the stop/continue rules for one session.
type Policy struct {
	MinItems     int
	MaxItems     int
	TargetSE     float64
	InitialTheta float64
}

// DefaultPolicy returns the production stopping policy: a fixed-length
// 20-item exam with an SE target that only matters between min and max.
func DefaultPolicy() Policy {
	return Policy{
		MinItems:     20,
		MaxItems:     20,
		TargetSE:     0.3,
		InitialTheta: 0.0,
	}
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
