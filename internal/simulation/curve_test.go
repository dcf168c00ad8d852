package simulation

import (
	"math"
	"testing"
	"time"

	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
	"github.com/vladimiradmaev/glucose-simulator/internal/utils"
)

func TestBuildCurve_ShapeAndBounds(t *testing.T) {
	params := DefaultParams()
	profile := testProfile()
	now := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	noise := WeeklyNoise(profile.ID, utils.WeekStart(now))

	tests := []struct {
		name       string
		treatments []domain.Treatment
	}{
		{"no treatments", nil},
		{"single meal", []domain.Treatment{
			domain.NewMeal(1, now.Add(-30*time.Minute), 45, ""),
		}},
		{"mixed treatments", []domain.Treatment{
			domain.NewMeal(1, now.Add(-90*time.Minute), 60, ""),
			domain.NewInsulin(1, now.Add(-90*time.Minute), domain.TreatmentRapidInsulin, 4),
			domain.NewInsulin(1, now.Add(-10*time.Hour), domain.TreatmentLongInsulin, 14),
			domain.NewExercise(1, now.Add(-time.Hour), domain.IntensityIntense, 40),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			readings, err := buildCurve(params, profile, tt.treatments, now, noise)
			if err != nil {
				t.Fatalf("buildCurve failed: %v", err)
			}
			if len(readings) != 288 {
				t.Fatalf("len = %d, want 288", len(readings))
			}
			for i, r := range readings {
				wantTS := now.Add(time.Duration(i) * params.Step)
				if !r.Timestamp.Equal(wantTS) {
					t.Fatalf("timestamp[%d] = %v, want %v", i, r.Timestamp, wantTS)
				}
				if r.Value < params.MinGlucose || r.Value > params.MaxGlucose {
					t.Errorf("value[%d] = %v outside [%v, %v]", i, r.Value, params.MinGlucose, params.MaxGlucose)
				}
				if !r.IsPredicted {
					t.Errorf("reading %d not marked predicted", i)
				}
				if r.CalculatedAt.IsZero() {
					t.Errorf("reading %d missing calculation time", i)
				}
				if r.PatientID != profile.ID {
					t.Errorf("reading %d patient = %d, want %d", i, r.PatientID, profile.ID)
				}
			}
		})
	}
}

func TestBuildCurve_NoTreatmentHoldsBaselineBand(t *testing.T) {
	params := DefaultParams()
	now := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	noise := WeeklyNoise(1, utils.WeekStart(now))

	readings, err := buildCurve(params, testProfile(), nil, now, noise)
	if err != nil {
		t.Fatalf("buildCurve failed: %v", err)
	}
	for i, r := range readings {
		if r.Value < 100 || r.Value > 140 {
			t.Errorf("value[%d] = %v outside the treatment-free band [100, 140]", i, r.Value)
		}
	}
}

func TestBuildCurve_IdenticalTimestampsAdditive(t *testing.T) {
	params := DefaultParams()
	profile := testProfile()
	now := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	mealTime := now.Add(-20 * time.Minute)

	split, err := buildCurve(params, profile, []domain.Treatment{
		domain.NewMeal(1, mealTime, 30, ""),
		domain.NewMeal(1, mealTime, 30, ""),
	}, now, nil)
	if err != nil {
		t.Fatalf("buildCurve failed: %v", err)
	}
	whole, err := buildCurve(params, profile, []domain.Treatment{
		domain.NewMeal(1, mealTime, 60, ""),
	}, now, nil)
	if err != nil {
		t.Fatalf("buildCurve failed: %v", err)
	}

	for i := range whole {
		if math.Abs(split[i].Value-whole[i].Value) > 1e-9 {
			t.Fatalf("value[%d]: two half meals %v != one whole meal %v", i, split[i].Value, whole[i].Value)
		}
	}
}

func TestBuildCurve_ExpiredTreatmentIrrelevant(t *testing.T) {
	params := DefaultParams()
	profile := testProfile()
	now := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)

	with, err := buildCurve(params, profile, []domain.Treatment{
		domain.NewMeal(1, now.Add(-5*time.Hour), 80, ""),
	}, now, nil)
	if err != nil {
		t.Fatalf("buildCurve failed: %v", err)
	}
	without, err := buildCurve(params, profile, nil, now, nil)
	if err != nil {
		t.Fatalf("buildCurve failed: %v", err)
	}

	for i := range without {
		if with[i].Value != without[i].Value {
			t.Fatalf("value[%d]: expired meal changed the curve: %v vs %v", i, with[i].Value, without[i].Value)
		}
	}
}

func TestBuildCurve_NonFiniteFails(t *testing.T) {
	params := DefaultParams()
	profile := testProfile()
	profile.CarbRatio = 0
	now := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)

	_, err := buildCurve(params, profile, []domain.Treatment{
		domain.NewMeal(1, now.Add(-30*time.Minute), 60, ""),
	}, now, nil)
	if err == nil {
		t.Fatal("want error for a degenerate carb ratio, got none")
	}
}

func TestEndogenousDrift_PeaksAtDawnZeroMeanOverDay(t *testing.T) {
	params := DefaultParams()
	day := time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)

	perStep := params.DriftPerHour * params.Step.Minutes() / 60
	var sum float64
	for i := 0; i < 288; i++ {
		sum += endogenousDrift(params, day.Add(time.Duration(i)*params.Step))
	}
	if math.Abs(sum) > 1e-6 {
		t.Errorf("daily drift sum = %v, want ~0", sum)
	}

	dawn := endogenousDrift(params, time.Date(2024, 3, 12, 6, 0, 0, 0, time.UTC))
	if math.Abs(dawn-perStep) > 1e-9 {
		t.Errorf("dawn drift = %v, want peak %v", dawn, perStep)
	}
	evening := endogenousDrift(params, time.Date(2024, 3, 12, 18, 0, 0, 0, time.UTC))
	if math.Abs(evening+perStep) > 1e-9 {
		t.Errorf("evening drift = %v, want trough %v", evening, -perStep)
	}
}
