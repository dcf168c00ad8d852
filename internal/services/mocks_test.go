package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
)

// Compile-time checks that the mocks satisfy the repository contracts.
var (
	_ domain.ProfileRepository   = (*MockProfileRepository)(nil)
	_ domain.TreatmentRepository = (*MockTreatmentRepository)(nil)
	_ domain.ReadingRepository   = (*MockReadingRepository)(nil)
	_ Predictor                  = (*MockPredictor)(nil)
)

// MockProfileRepository is a mock implementation of domain.ProfileRepository.
type MockProfileRepository struct {
	GetOrCreateFunc     func(ctx context.Context, telegramID int64, username, firstName string) (*domain.PatientProfile, error)
	GetByTelegramIDFunc func(ctx context.Context, telegramID int64) (*domain.PatientProfile, error)
	GetByIDFunc         func(ctx context.Context, id uint) (*domain.PatientProfile, error)
	UpdateFunc          func(ctx context.Context, profile *domain.PatientProfile) error

	UpdateCallCount int32
}

func (m *MockProfileRepository) GetOrCreate(ctx context.Context, telegramID int64, username, firstName string) (*domain.PatientProfile, error) {
	if m.GetOrCreateFunc != nil {
		return m.GetOrCreateFunc(ctx, telegramID, username, firstName)
	}
	return nil, errors.New("GetOrCreateFunc not implemented in mock")
}

func (m *MockProfileRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.PatientProfile, error) {
	if m.GetByTelegramIDFunc != nil {
		return m.GetByTelegramIDFunc(ctx, telegramID)
	}
	return nil, errors.New("GetByTelegramIDFunc not implemented in mock")
}

func (m *MockProfileRepository) GetByID(ctx context.Context, id uint) (*domain.PatientProfile, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, errors.New("GetByIDFunc not implemented in mock")
}

func (m *MockProfileRepository) Update(ctx context.Context, profile *domain.PatientProfile) error {
	atomic.AddInt32(&m.UpdateCallCount, 1)
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, profile)
	}
	return nil
}

// MockTreatmentRepository is a mock implementation of domain.TreatmentRepository.
type MockTreatmentRepository struct {
	CreateFunc     func(ctx context.Context, treatment *domain.Treatment) error
	ListSinceFunc  func(ctx context.Context, patientID uint, since time.Time) ([]domain.Treatment, error)
	ListRecentFunc func(ctx context.Context, patientID uint, limit int) ([]domain.Treatment, error)

	CreateCallCount int32
}

func (m *MockTreatmentRepository) Create(ctx context.Context, treatment *domain.Treatment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, treatment)
	}
	return nil
}

func (m *MockTreatmentRepository) ListSince(ctx context.Context, patientID uint, since time.Time) ([]domain.Treatment, error) {
	if m.ListSinceFunc != nil {
		return m.ListSinceFunc(ctx, patientID, since)
	}
	return nil, nil
}

func (m *MockTreatmentRepository) ListRecent(ctx context.Context, patientID uint, limit int) ([]domain.Treatment, error) {
	if m.ListRecentFunc != nil {
		return m.ListRecentFunc(ctx, patientID, limit)
	}
	return nil, nil
}

// MockReadingRepository is a mock implementation of domain.ReadingRepository.
type MockReadingRepository struct {
	ReplacePredictedFunc func(ctx context.Context, patientID uint, readings []domain.GlucoseReading) error
	ListPredictedFunc    func(ctx context.Context, patientID uint, from, to time.Time) ([]domain.GlucoseReading, error)

	ReplacePredictedCallCount int32
}

func (m *MockReadingRepository) ReplacePredicted(ctx context.Context, patientID uint, readings []domain.GlucoseReading) error {
	atomic.AddInt32(&m.ReplacePredictedCallCount, 1)
	if m.ReplacePredictedFunc != nil {
		return m.ReplacePredictedFunc(ctx, patientID, readings)
	}
	return nil
}

func (m *MockReadingRepository) ListPredicted(ctx context.Context, patientID uint, from, to time.Time) ([]domain.GlucoseReading, error) {
	if m.ListPredictedFunc != nil {
		return m.ListPredictedFunc(ctx, patientID, from, to)
	}
	return nil, nil
}

// MockPredictor is a mock implementation of Predictor.
type MockPredictor struct {
	RecalculateFunc func(ctx context.Context, patientID uint) error

	RecalculateCallCount int32
}

func (m *MockPredictor) Recalculate(ctx context.Context, patientID uint) error {
	atomic.AddInt32(&m.RecalculateCallCount, 1)
	if m.RecalculateFunc != nil {
		return m.RecalculateFunc(ctx, patientID)
	}
	return nil
}
