package simulation

import "time"

// Params fixes the numeric constants of the simulation model. The
// defaults reproduce the reference behavior; tests pin individual
// fields (e.g. zero noise) where a property is easier to assert raw.
type Params struct {
	Horizon        time.Duration // prediction span
	Step           time.Duration // grid spacing
	Baseline       float64       // mg/dL at the first grid point
	MinGlucose     float64       // lower physiological clamp
	MaxGlucose     float64       // upper physiological clamp
	DriftPerHour   float64       // peak endogenous production, mg/dL per hour
	StepScale      float64       // per-step scaling of carb and rapid-insulin deltas
	NoiseAmplitude float64       // multiplicative perturbation, fraction of value

	FallbackAmplitude float64 // sinusoid swing of the degraded curve
	FallbackMin       float64 // clamp of the degraded curve
	FallbackMax       float64
}

// DefaultParams returns the production model constants.
func DefaultParams() Params {
	return Params{
		Horizon:           24 * time.Hour,
		Step:              5 * time.Minute,
		Baseline:          120,
		MinGlucose:        40,
		MaxGlucose:        400,
		DriftPerHour:      2.0,
		StepScale:         0.05,
		NoiseAmplitude:    0.02,
		FallbackAmplitude: 30,
		FallbackMin:       70,
		FallbackMax:       200,
	}
}

// Steps returns the number of grid points in the horizon.
func (p Params) Steps() int {
	return int(p.Horizon / p.Step)
}
