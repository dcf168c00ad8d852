package services

import (
	"context"
	"time"

	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-simulator/internal/errors"
)

// Input bounds for logged treatments. Entries outside them are almost
// certainly typos and would distort the curve for a full day.
const (
	maxMealCarbs       = 500
	maxInsulinDose     = 100
	maxExerciseMinutes = 600
)

// Predictor recomputes a patient's stored glucose curve.
type Predictor interface {
	Recalculate(ctx context.Context, patientID uint) error
}

// TreatmentService validates and saves treatments, then triggers one
// curve recalculation per save.
type TreatmentService struct {
	treatments domain.TreatmentRepository
	predictor  Predictor
}

func NewTreatmentService(treatments domain.TreatmentRepository, predictor Predictor) *TreatmentService {
	return &TreatmentService{
		treatments: treatments,
		predictor:  predictor,
	}
}

func (s *TreatmentService) LogMeal(ctx context.Context, patientID uint, carbs float64, note string) (*domain.Treatment, error) {
	if carbs <= 0 || carbs > maxMealCarbs {
		return nil, apperrors.NewValidationError("carbs must be between 0 and 500 grams")
	}
	treatment := domain.NewMeal(patientID, time.Now(), carbs, note)
	return s.saveAndRecalculate(ctx, &treatment)
}

func (s *TreatmentService) LogInsulin(ctx context.Context, patientID uint, insulinType domain.TreatmentType, units float64) (*domain.Treatment, error) {
	if units <= 0 || units > maxInsulinDose {
		return nil, apperrors.NewValidationError("insulin dose must be between 0 and 100 units")
	}
	treatment := domain.NewInsulin(patientID, time.Now(), insulinType, units)
	if !treatment.IsInsulin() {
		return nil, apperrors.NewValidationError("unknown insulin type")
	}
	return s.saveAndRecalculate(ctx, &treatment)
}

func (s *TreatmentService) LogExercise(ctx context.Context, patientID uint, intensity domain.ExerciseIntensity, minutes int) (*domain.Treatment, error) {
	if minutes <= 0 || minutes > maxExerciseMinutes {
		return nil, apperrors.NewValidationError("exercise duration must be between 0 and 600 minutes")
	}
	switch intensity {
	case domain.IntensityLight, domain.IntensityModerate, domain.IntensityIntense:
	default:
		return nil, apperrors.NewValidationError("unknown exercise intensity")
	}
	treatment := domain.NewExercise(patientID, time.Now(), intensity, minutes)
	return s.saveAndRecalculate(ctx, &treatment)
}

// Recent returns the patient's latest treatments, newest first.
func (s *TreatmentService) Recent(ctx context.Context, patientID uint, limit int) ([]domain.Treatment, error) {
	treatments, err := s.treatments.ListRecent(ctx, patientID, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return treatments, nil
}

// saveAndRecalculate persists the treatment and rebuilds the curve.
// The treatment stays saved even when the rebuild fails; the next
// successful recalculation will pick it up.
func (s *TreatmentService) saveAndRecalculate(ctx context.Context, treatment *domain.Treatment) (*domain.Treatment, error) {
	if err := s.treatments.Create(ctx, treatment); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if err := s.predictor.Recalculate(ctx, treatment.PatientID); err != nil {
		return nil, err
	}
	return treatment, nil
}
