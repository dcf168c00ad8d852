package simulation

import (
	"math"
	"sort"
	"time"

	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
)

const (
	currentWindowMinutes = 5
	trendWindowMinutes   = 15
	defaultGlucose       = 120 // returned when no reading is near enough to now
)

// CurrentValue returns the value of the first reading whose timestamp
// falls within five minutes of now, or the default when none
// qualifies.
func CurrentValue(readings []domain.GlucoseReading, now time.Time) float64 {
	for _, r := range readings {
		if math.Abs(now.Sub(r.Timestamp).Minutes()) <= currentWindowMinutes {
			return r.Value
		}
	}
	return defaultGlucose
}

// Trend classifies the slope over the readings in the 15 minutes up to
// now. Fewer than three qualifying points reads as stable.
func Trend(readings []domain.GlucoseReading, now time.Time) domain.TrendDirection {
	cutoff := now.Add(-trendWindowMinutes * time.Minute)
	var window []domain.GlucoseReading
	for _, r := range readings {
		if !r.Timestamp.After(now) && !r.Timestamp.Before(cutoff) {
			window = append(window, r)
		}
	}
	if len(window) < 3 {
		return domain.TrendStable
	}
	sort.Slice(window, func(i, j int) bool {
		return window[i].Timestamp.Before(window[j].Timestamp)
	})

	rate := (window[len(window)-1].Value - window[0].Value) / trendWindowMinutes
	switch {
	case rate > 2:
		return domain.TrendRapidlyRising
	case rate > 1:
		return domain.TrendRising
	case rate > -1:
		return domain.TrendStable
	case rate > -2:
		return domain.TrendFalling
	default:
		return domain.TrendRapidlyFalling
	}
}
