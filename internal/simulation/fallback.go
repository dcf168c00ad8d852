package simulation

import (
	"math"
	"time"

	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
	"github.com/vladimiradmaev/glucose-simulator/internal/utils"
)

// fallbackCurve produces the safe synthetic series used when curve
// calculation fails: a daily sinusoid around the baseline, perturbed
// by the same weekly noise and clamped to a narrower range. It cannot
// fail, which is what keeps the engine's always-a-full-series
// contract.
func fallbackCurve(params Params, patientID uint, now time.Time, noise []float64) []domain.GlucoseReading {
	steps := params.Steps()
	weekStart := utils.WeekStart(now)
	calculatedAt := time.Now()

	readings := make([]domain.GlucoseReading, 0, steps)
	for i := 0; i < steps; i++ {
		ts := now.Add(time.Duration(i) * params.Step)
		phase := 2 * math.Pi * float64(utils.MinuteOfDay(ts)) / minutesPerDay
		value := params.Baseline + params.FallbackAmplitude*math.Sin(phase)
		if len(noise) > 0 {
			value *= 1 + noise[noiseIndex(weekStart, ts, params.Step)]
		}
		value = clamp(value, params.FallbackMin, params.FallbackMax)

		readings = append(readings, domain.GlucoseReading{
			PatientID:    patientID,
			Timestamp:    ts,
			Value:        value,
			IsPredicted:  true,
			CalculatedAt: calculatedAt,
		})
	}
	return readings
}
