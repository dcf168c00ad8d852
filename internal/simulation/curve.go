package simulation

import (
	"fmt"
	"math"
	"time"

	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
	"github.com/vladimiradmaev/glucose-simulator/internal/utils"
)

const (
	dawnPeakMinute = 360 // endogenous production peaks near 06:00
	minutesPerDay  = 1440
)

// buildCurve walks the prediction grid in chronological order and
// assembles the reading series. The glucose level is a single
// accumulator threaded through the loop: each step adds the endogenous
// term and every active treatment effect, clamps, then emits a
// noise-perturbed copy. A non-finite level aborts with an error, which
// the facade turns into the fallback curve.
func buildCurve(params Params, profile domain.PatientProfile, treatments []domain.Treatment, now time.Time, noise []float64) ([]domain.GlucoseReading, error) {
	steps := params.Steps()
	weekStart := utils.WeekStart(now)
	calculatedAt := time.Now()

	readings := make([]domain.GlucoseReading, 0, steps)
	level := params.Baseline
	for i := 0; i < steps; i++ {
		ts := now.Add(time.Duration(i) * params.Step)

		level += endogenousDrift(params, ts)
		for _, t := range treatments {
			minutesSince := ts.Sub(t.Timestamp).Minutes()
			level += treatmentDelta(params, profile, t, minutesSince)
		}
		if math.IsNaN(level) || math.IsInf(level, 0) {
			return nil, fmt.Errorf("glucose level is not finite at step %d", i)
		}
		level = clamp(level, params.MinGlucose, params.MaxGlucose)

		value := level
		if len(noise) > 0 {
			value = clamp(level*(1+noise[noiseIndex(weekStart, ts, params.Step)]), params.MinGlucose, params.MaxGlucose)
		}

		readings = append(readings, domain.GlucoseReading{
			PatientID:    profile.ID,
			Timestamp:    ts,
			Value:        value,
			IsPredicted:  true,
			CalculatedAt: calculatedAt,
		})
	}
	return readings, nil
}

// endogenousDrift returns the endogenous production term for one step.
// The magnitude follows a circadian cosine peaking at +DriftPerHour
// toward dawn and mirroring negative toward evening; the zero mean
// over a day keeps a treatment-free curve in a narrow band around the
// baseline.
func endogenousDrift(params Params, ts time.Time) float64 {
	perStep := params.DriftPerHour * params.Step.Minutes() / 60
	phase := 2 * math.Pi * float64(utils.MinuteOfDay(ts)-dawnPeakMinute) / minutesPerDay
	return perStep * math.Cos(phase)
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}
