package simulation

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"
)

// NoiseLength is the number of perturbation values in one weekly
// sequence: 7 days of 5-minute steps.
const NoiseLength = 2016

// WeeklyNoise returns the perturbation sequence for one patient and
// week at the production amplitude. Identical inputs always yield the
// identical array, which keeps a day's predicted curve stable across
// recalculations within the same week.
func WeeklyNoise(patientID uint, weekStart time.Time) []float64 {
	return weeklyNoise(patientID, weekStart, DefaultParams().NoiseAmplitude)
}

func weeklyNoise(patientID uint, weekStart time.Time, amplitude float64) []float64 {
	h := fnv.New64a()
	fmt.Fprintf(h, "%d:%s", patientID, weekStart.Format("2006-01-02"))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	noise := make([]float64, NoiseLength)
	for i := range noise {
		noise[i] = amplitude * (2*rng.Float64() - 1)
	}
	return noise
}

// noiseIndex locates a grid point in the weekly sequence by its
// absolute step offset from the week start, wrapping past the week
// boundary.
func noiseIndex(weekStart, ts time.Time, step time.Duration) int {
	return int(ts.Sub(weekStart)/step) % NoiseLength
}
