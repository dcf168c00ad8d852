package interfaces

import (
	"context"
	"time"

	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
	"github.com/vladimiradmaev/glucose-simulator/internal/services"
)

// ProfileServiceInterface defines the contract for patient profile operations
type ProfileServiceInterface interface {
	Register(ctx context.Context, telegramID int64, username, firstName string) (*domain.PatientProfile, error)
	Get(ctx context.Context, telegramID int64) (*domain.PatientProfile, error)
	Update(ctx context.Context, profile *domain.PatientProfile) error
	SetUnit(ctx context.Context, telegramID int64, unit domain.GlucoseUnit) (*domain.PatientProfile, error)
}

// TreatmentServiceInterface defines the contract for treatment logging
type TreatmentServiceInterface interface {
	LogMeal(ctx context.Context, patientID uint, carbs float64, note string) (*domain.Treatment, error)
	LogInsulin(ctx context.Context, patientID uint, insulinType domain.TreatmentType, units float64) (*domain.Treatment, error)
	LogExercise(ctx context.Context, patientID uint, intensity domain.ExerciseIntensity, minutes int) (*domain.Treatment, error)
	Recent(ctx context.Context, patientID uint, limit int) ([]domain.Treatment, error)
}

// PredictionServiceInterface defines the contract for curve readouts
type PredictionServiceInterface interface {
	Recalculate(ctx context.Context, patientID uint) error
	Status(ctx context.Context, patientID uint) (*services.GlucoseStatus, error)
	Forecast(ctx context.Context, patientID uint, horizon time.Duration) ([]domain.GlucoseReading, error)
}

// AIServiceInterface defines the contract for meal photo analysis
type AIServiceInterface interface {
	AnalyzeMealPhoto(ctx context.Context, imageURL string) (*services.MealAnalysis, error)
}
