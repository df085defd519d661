package chaos

import "math"

// Prediction is the outcome of spec.md §4.7 "Ejection prediction".
type Prediction struct {
	State            string // PERSISTENT_HIGH, OSCILLATION, or LOW_FLUCTUATION
	DaysToEjection    int    // only meaningful for PERSISTENT_HIGH
	HasDaysToEjection bool
}

const (
	StatePersistentHigh = "PERSISTENT_HIGH"
	StateOscillation    = "OSCILLATION"
	StateLowFluctuation = "LOW_FLUCTUATION"
)

// Predict classifies a file's chaos score against the dynamic thresholds
// and, for PERSISTENT_HIGH, projects a days-to-ejection horizon capped at
// horizonDays (the caller's requested prediction window).
func Predict(score float64, horizonDays int, thresholds Thresholds) Prediction {
	switch {
	case score >= thresholds.ChaosHigh:
		days := int(math.Floor((1 - score) * 100))
		if days < 1 {
			days = 1
		}
		if horizonDays > 0 && days > horizonDays {
			days = horizonDays
		}
		return Prediction{State: StatePersistentHigh, DaysToEjection: days, HasDaysToEjection: true}
	case score >= thresholds.ChaosLow:
		return Prediction{State: StateOscillation}
	default:
		return Prediction{State: StateLowFluctuation}
	}
}
