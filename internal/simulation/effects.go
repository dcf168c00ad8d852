package simulation

import (
	"math"

	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
)

// Effect model windows and shape constants, in minutes unless noted.
const (
	carbWindowMinutes  = 240
	carbPeakMinutes    = 60
	rapidWindowMinutes = 300
	rapidDecayK        = 0.0173 // per minute
	longWindowMinutes  = 1440

	exerciseTailMinutes     = 180
	exerciseHalfLifeMinutes = 120
	exerciseBaseDelta       = 1.5 // mg/dL per step at moderate intensity
)

// treatmentDelta returns the signed glucose delta one treatment
// contributes at a grid point minutesSince its timestamp. Treatments
// in the future of the grid point and treatments outside their model's
// effect window contribute zero.
func treatmentDelta(params Params, profile domain.PatientProfile, t domain.Treatment, minutesSince float64) float64 {
	if minutesSince < 0 {
		return 0
	}
	switch t.Type {
	case domain.TreatmentMeal:
		peak := t.Carbs / profile.CarbRatio * profile.InsulinSensitivity
		return peak * carbAbsorptionFraction(minutesSince) * params.StepScale
	case domain.TreatmentRapidInsulin, domain.TreatmentCorrection:
		peak := t.InsulinUnits * profile.InsulinSensitivity
		return -peak * rapidActivityFraction(minutesSince) * params.StepScale
	case domain.TreatmentLongInsulin:
		if minutesSince > longWindowMinutes {
			return 0
		}
		steps := longWindowMinutes / params.Step.Minutes()
		return -t.InsulinUnits * profile.InsulinSensitivity / steps
	case domain.TreatmentExercise:
		return -exerciseEffect(t, minutesSince)
	default:
		return 0
	}
}

// carbAbsorptionFraction is the bilinear absorption kernel: rises
// linearly to 1 at the peak, falls linearly back to 0 at the window
// end.
func carbAbsorptionFraction(minutesSince float64) float64 {
	if minutesSince < 0 || minutesSince > carbWindowMinutes {
		return 0
	}
	if minutesSince <= carbPeakMinutes {
		return minutesSince / carbPeakMinutes
	}
	return (carbWindowMinutes - minutesSince) / (carbWindowMinutes - carbPeakMinutes)
}

// rapidActivityFraction is the bi-phasic insulin activity kernel
// exp(-kt)*(1-exp(-kt)), normalized so the peak value is 1. With the
// fixed k the peak falls near 40 minutes after injection.
func rapidActivityFraction(minutesSince float64) float64 {
	if minutesSince < 0 || minutesSince > rapidWindowMinutes {
		return 0
	}
	decay := math.Exp(-rapidDecayK * minutesSince)
	return 4 * decay * (1 - decay)
}

// exerciseEffect returns the positive magnitude of the exercise
// glucose drop: flat while the activity lasts, then an exponential
// tail with a two-hour half-life until the window closes.
func exerciseEffect(t domain.Treatment, minutesSince float64) float64 {
	duration := float64(t.Duration)
	if minutesSince < 0 || minutesSince > duration+exerciseTailMinutes {
		return 0
	}
	base := exerciseBaseDelta * intensityMultiplier(t.Intensity)
	if minutesSince <= duration {
		return base
	}
	sinceEnd := minutesSince - duration
	return base * math.Pow(0.5, sinceEnd/exerciseHalfLifeMinutes)
}

// intensityMultiplier maps the exercise category to its effect scale.
func intensityMultiplier(i domain.ExerciseIntensity) float64 {
	switch i {
	case domain.IntensityLight:
		return 0.5
	case domain.IntensityIntense:
		return 2.0
	default:
		return 1.0
	}
}
