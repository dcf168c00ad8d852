package simulation

import (
	"testing"
	"time"

	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
)

func TestEngine_ComputeCurve_FallbackOnFailure(t *testing.T) {
	e := NewEngine()
	profile := testProfile()
	profile.CarbRatio = 0 // forces a non-finite meal delta
	now := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)

	readings := e.ComputeCurve(profile, []domain.Treatment{
		domain.NewMeal(1, now.Add(-30*time.Minute), 60, ""),
	}, now)

	if len(readings) != 288 {
		t.Fatalf("len = %d, want 288", len(readings))
	}
	for i, r := range readings {
		if r.Value < 70 || r.Value > 200 {
			t.Errorf("fallback value[%d] = %v outside [70, 200]", i, r.Value)
		}
		wantTS := now.Add(time.Duration(i) * 5 * time.Minute)
		if !r.Timestamp.Equal(wantTS) {
			t.Fatalf("timestamp[%d] = %v, want %v", i, r.Timestamp, wantTS)
		}
		if !r.IsPredicted {
			t.Errorf("fallback reading %d not marked predicted", i)
		}
	}
}

func TestEngine_ComputeCurve_StableWithinWeek(t *testing.T) {
	e := NewEngine()
	profile := testProfile()
	now := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	treatments := []domain.Treatment{
		domain.NewMeal(1, now.Add(-time.Hour), 45, ""),
		domain.NewInsulin(1, now.Add(-time.Hour), domain.TreatmentRapidInsulin, 3),
	}

	a := e.ComputeCurve(profile, treatments, now)
	b := e.ComputeCurve(profile, treatments, now)

	for i := range a {
		if a[i].Value != b[i].Value {
			t.Fatalf("recomputation changed value[%d]: %v vs %v", i, a[i].Value, b[i].Value)
		}
		if !a[i].Timestamp.Equal(b[i].Timestamp) {
			t.Fatalf("recomputation changed timestamp[%d]", i)
		}
	}
}

func TestEngine_ComputeCurve_EmptyTreatments(t *testing.T) {
	e := NewEngine()
	now := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)

	readings := e.ComputeCurve(testProfile(), nil, now)

	if len(readings) != 288 {
		t.Fatalf("len = %d, want 288", len(readings))
	}
	for i, r := range readings {
		if r.Value < 100 || r.Value > 140 {
			t.Errorf("value[%d] = %v outside the treatment-free band", i, r.Value)
		}
	}
}
