package dice

import "go.uber.org/zap"

// jitterSteps is the number of discrete steps on each side of zero.
const jitterSteps = 1000

// Jitter returns a uniformly distributed value in [-magnitude, +magnitude].
//
// Precondition: src must be non-nil; magnitude >= 0.
// Postcondition: |result| <= magnitude; magnitude == 0 yields 0 without consuming randomness.
func Jitter(src Source, magnitude float64) float64 {
	if magnitude <= 0 {
		return 0
	}
	step := src.Intn(2*jitterSteps+1) - jitterSteps
	return float64(step) / jitterSteps * magnitude
}

// Jitterer wraps a Source and logger to provide logged score perturbation.
// Every draw is logged at debug level with the magnitude and result.
type Jitterer struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedJitterer creates a Jitterer that draws from src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedJitterer(src Source, logger *zap.Logger) *Jitterer {
	return &Jitterer{src: src, logger: logger}
}

// Jitter draws a value in [-magnitude, +magnitude] and logs it.
//
// Postcondition: |result| <= magnitude.
func (j *Jitterer) Jitter(magnitude float64) float64 {
	v := Jitter(j.src, magnitude)
	j.logger.Debug("score jitter",
		zap.Float64("magnitude", magnitude),
		zap.Float64("value", v),
	)
	return v
}
