package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-simulator/internal/errors"
	"github.com/vladimiradmaev/glucose-simulator/internal/logger"
	"github.com/vladimiradmaev/glucose-simulator/internal/simulation"
)

// treatmentLookback bounds how far back treatments are pulled for a
// recalculation. Long-acting insulin is the longest-lived effect at 24
// hours; anything older cannot move the curve.
const treatmentLookback = 24 * time.Hour

// Readout windows around now, matching the engine's definitions of
// current value and trend.
const (
	statusLookback  = 15 * time.Minute
	statusLookahead = 5 * time.Minute
)

// GlucoseStatus is the patient-facing snapshot of the stored curve.
// Value is always mg/dL; Unit says how the patient wants it shown.
type GlucoseStatus struct {
	Value        float64
	Unit         domain.GlucoseUnit
	Trend        domain.TrendDirection
	CalculatedAt time.Time
}

// PredictionService owns the stored glucose series: it recomputes the
// curve after every logged treatment and serves readouts from it.
// Recalculations for the same patient are serialized so concurrent
// saves cannot interleave their delete-and-insert swaps.
type PredictionService struct {
	profiles   domain.ProfileRepository
	treatments domain.TreatmentRepository
	readings   domain.ReadingRepository
	engine     *simulation.Engine

	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

func NewPredictionService(
	profiles domain.ProfileRepository,
	treatments domain.TreatmentRepository,
	readings domain.ReadingRepository,
	engine *simulation.Engine,
) *PredictionService {
	return &PredictionService{
		profiles:   profiles,
		treatments: treatments,
		readings:   readings,
		engine:     engine,
		locks:      make(map[uint]*sync.Mutex),
	}
}

// Recalculate rebuilds the patient's 24-hour curve from the treatments
// still able to affect it and swaps the stored series. All points of
// one run share a calculation ID.
func (s *PredictionService) Recalculate(ctx context.Context, patientID uint) error {
	lock := s.patientLock(patientID)
	lock.Lock()
	defer lock.Unlock()

	profile, err := s.profiles.GetByID(ctx, patientID)
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}
	if !profile.IsComplete() {
		return apperrors.ErrProfileIncomplete
	}

	now := time.Now()
	treatments, err := s.treatments.ListSince(ctx, patientID, now.Add(-treatmentLookback))
	if err != nil {
		return apperrors.NewDatabaseError(err)
	}

	curve := s.engine.ComputeCurve(*profile, treatments, now)
	runID := uuid.New().String()
	for i := range curve {
		curve[i].CalculationID = runID
	}

	if err := s.readings.ReplacePredicted(ctx, patientID, curve); err != nil {
		return apperrors.NewDatabaseError(err)
	}

	logger.Infof("Recalculated glucose curve for patient %d: %d points, run %s", patientID, len(curve), runID)
	return nil
}

// Status returns the current value and trend from the stored series,
// recomputing first if nothing is stored around now.
func (s *PredictionService) Status(ctx context.Context, patientID uint) (*GlucoseStatus, error) {
	profile, err := s.profiles.GetByID(ctx, patientID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	now := time.Now()
	window, err := s.freshWindow(ctx, patientID, now.Add(-statusLookback), now.Add(statusLookahead))
	if err != nil {
		return nil, err
	}

	status := &GlucoseStatus{
		Value: simulation.CurrentValue(window, now),
		Unit:  profile.Unit,
		Trend: simulation.Trend(window, now),
	}
	if len(window) > 0 {
		status.CalculatedAt = window[0].CalculatedAt
	}
	return status, nil
}

// Forecast returns the stored curve from now up to the horizon,
// recomputing first if the window is empty.
func (s *PredictionService) Forecast(ctx context.Context, patientID uint, horizon time.Duration) ([]domain.GlucoseReading, error) {
	now := time.Now()
	return s.freshWindow(ctx, patientID, now, now.Add(horizon))
}

// freshWindow lists stored predicted readings in [from, to] and falls
// back to one recalculation when the window comes back empty, which
// happens on first contact and after the previous curve has expired.
func (s *PredictionService) freshWindow(ctx context.Context, patientID uint, from, to time.Time) ([]domain.GlucoseReading, error) {
	window, err := s.readings.ListPredicted(ctx, patientID, from, to)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if len(window) > 0 {
		return window, nil
	}

	if err := s.Recalculate(ctx, patientID); err != nil {
		return nil, err
	}
	window, err = s.readings.ListPredicted(ctx, patientID, from, to)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return window, nil
}

func (s *PredictionService) patientLock(patientID uint) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[patientID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[patientID] = lock
	}
	return lock
}
