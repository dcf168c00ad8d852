package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-simulator/internal/errors"
	"github.com/vladimiradmaev/glucose-simulator/internal/simulation"
)

func completeProfile() *domain.PatientProfile {
	return &domain.PatientProfile{
		ID:                 1,
		TelegramID:         100500,
		InsulinSensitivity: 50,
		CarbRatio:          15,
		Unit:               domain.UnitMgdl,
	}
}

func profileRepoReturning(profile *domain.PatientProfile) *MockProfileRepository {
	return &MockProfileRepository{
		GetByIDFunc: func(ctx context.Context, id uint) (*domain.PatientProfile, error) {
			return profile, nil
		},
	}
}

func TestPredictionService_Recalculate_StoresFullDayCurve(t *testing.T) {
	var capturedSince time.Time
	var capturedPatient uint
	var captured []domain.GlucoseReading

	treatments := &MockTreatmentRepository{
		ListSinceFunc: func(ctx context.Context, patientID uint, since time.Time) ([]domain.Treatment, error) {
			capturedSince = since
			meal := domain.NewMeal(patientID, time.Now().Add(-30*time.Minute), 45, "")
			return []domain.Treatment{meal}, nil
		},
	}
	readings := &MockReadingRepository{
		ReplacePredictedFunc: func(ctx context.Context, patientID uint, rs []domain.GlucoseReading) error {
			capturedPatient = patientID
			captured = rs
			return nil
		},
	}

	svc := NewPredictionService(profileRepoReturning(completeProfile()), treatments, readings, simulation.NewEngine())
	before := time.Now()
	err := svc.Recalculate(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, uint(1), capturedPatient)
	assert.InDelta(t, 24.0, before.Sub(capturedSince).Hours(), 0.01, "treatments should be pulled from the last 24 hours")

	require.Len(t, captured, 288)
	runID := captured[0].CalculationID
	require.NotEmpty(t, runID)
	_, err = uuid.Parse(runID)
	assert.NoError(t, err, "calculation ID should be a UUID")

	for i, r := range captured {
		assert.True(t, r.IsPredicted, "point %d should be marked predicted", i)
		assert.Equal(t, runID, r.CalculationID, "point %d should share the run ID", i)
		assert.GreaterOrEqual(t, r.Value, 40.0)
		assert.LessOrEqual(t, r.Value, 400.0)
		if i > 0 {
			assert.Equal(t, 5*time.Minute, r.Timestamp.Sub(captured[i-1].Timestamp))
		}
	}
}

func TestPredictionService_Recalculate_IncompleteProfile(t *testing.T) {
	profile := completeProfile()
	profile.CarbRatio = 0

	treatments := &MockTreatmentRepository{}
	readings := &MockReadingRepository{}
	svc := NewPredictionService(profileRepoReturning(profile), treatments, readings, simulation.NewEngine())

	err := svc.Recalculate(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrProfileIncomplete))
	assert.Equal(t, int32(0), atomic.LoadInt32(&readings.ReplacePredictedCallCount), "nothing should be stored for an incomplete profile")
}

func TestPredictionService_Recalculate_SinkFailurePropagates(t *testing.T) {
	readings := &MockReadingRepository{
		ReplacePredictedFunc: func(ctx context.Context, patientID uint, rs []domain.GlucoseReading) error {
			return errors.New("connection refused")
		},
	}
	svc := NewPredictionService(profileRepoReturning(completeProfile()), &MockTreatmentRepository{}, readings, simulation.NewEngine())

	err := svc.Recalculate(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDatabaseError))
}

func TestPredictionService_Recalculate_SerializesPerPatient(t *testing.T) {
	var active, overlapped int32
	readings := &MockReadingRepository{
		ReplacePredictedFunc: func(ctx context.Context, patientID uint, rs []domain.GlucoseReading) error {
			if !atomic.CompareAndSwapInt32(&active, 0, 1) {
				atomic.StoreInt32(&overlapped, 1)
			}
			time.Sleep(5 * time.Millisecond)
			atomic.StoreInt32(&active, 0)
			return nil
		},
	}
	svc := NewPredictionService(profileRepoReturning(completeProfile()), &MockTreatmentRepository{}, readings, simulation.NewEngine())

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.Recalculate(context.Background(), 1)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&overlapped), "recalculations for one patient must not overlap")
	assert.Equal(t, int32(4), atomic.LoadInt32(&readings.ReplacePredictedCallCount))
}

func storedWindow(now time.Time, calcAt time.Time) []domain.GlucoseReading {
	return []domain.GlucoseReading{
		{PatientID: 1, Timestamp: now.Add(-9 * time.Minute), Value: 100, IsPredicted: true, CalculatedAt: calcAt},
		{PatientID: 1, Timestamp: now.Add(-4 * time.Minute), Value: 120, IsPredicted: true, CalculatedAt: calcAt},
		{PatientID: 1, Timestamp: now, Value: 145, IsPredicted: true, CalculatedAt: calcAt},
	}
}

func TestPredictionService_Status_FromStoredCurve(t *testing.T) {
	now := time.Now()
	calcAt := now.Add(-2 * time.Minute)
	readings := &MockReadingRepository{
		ListPredictedFunc: func(ctx context.Context, patientID uint, from, to time.Time) ([]domain.GlucoseReading, error) {
			return storedWindow(now, calcAt), nil
		},
	}
	svc := NewPredictionService(profileRepoReturning(completeProfile()), &MockTreatmentRepository{}, readings, simulation.NewEngine())

	status, err := svc.Status(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, 120.0, status.Value, "current value should come from the reading nearest to now")
	assert.Equal(t, domain.TrendRapidlyRising, status.Trend)
	assert.Equal(t, domain.UnitMgdl, status.Unit)
	assert.Equal(t, calcAt, status.CalculatedAt)
	assert.Equal(t, int32(0), atomic.LoadInt32(&readings.ReplacePredictedCallCount), "a warm window should not trigger recomputation")
}

func TestPredictionService_Status_RecomputesWhenWindowEmpty(t *testing.T) {
	now := time.Now()
	var listCalls int32
	readings := &MockReadingRepository{
		ListPredictedFunc: func(ctx context.Context, patientID uint, from, to time.Time) ([]domain.GlucoseReading, error) {
			if atomic.AddInt32(&listCalls, 1) == 1 {
				return nil, nil
			}
			return storedWindow(now, now), nil
		},
	}
	svc := NewPredictionService(profileRepoReturning(completeProfile()), &MockTreatmentRepository{}, readings, simulation.NewEngine())

	status, err := svc.Status(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&readings.ReplacePredictedCallCount), "empty window should trigger exactly one recomputation")
	assert.Equal(t, 120.0, status.Value)
}

func TestPredictionService_Status_IncompleteProfileWithEmptyStore(t *testing.T) {
	profile := completeProfile()
	profile.InsulinSensitivity = 0

	svc := NewPredictionService(profileRepoReturning(profile), &MockTreatmentRepository{}, &MockReadingRepository{}, simulation.NewEngine())

	_, err := svc.Status(context.Background(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrProfileIncomplete))
}

func TestPredictionService_Forecast_UsesRequestedHorizon(t *testing.T) {
	var capturedFrom, capturedTo time.Time
	future := []domain.GlucoseReading{
		{PatientID: 1, Timestamp: time.Now().Add(time.Hour), Value: 110, IsPredicted: true},
	}
	readings := &MockReadingRepository{
		ListPredictedFunc: func(ctx context.Context, patientID uint, from, to time.Time) ([]domain.GlucoseReading, error) {
			capturedFrom = from
			capturedTo = to
			return future, nil
		},
	}
	svc := NewPredictionService(profileRepoReturning(completeProfile()), &MockTreatmentRepository{}, readings, simulation.NewEngine())

	got, err := svc.Forecast(context.Background(), 1, 3*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, future, got)
	assert.InDelta(t, 3.0, capturedTo.Sub(capturedFrom).Hours(), 0.01)
}
