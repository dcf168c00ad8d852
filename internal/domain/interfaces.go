package domain

import (
	"context"
	"time"
)

// ProfileRepository supplies and persists patient profiles.
type ProfileRepository interface {
	GetOrCreate(ctx context.Context, telegramID int64, username, firstName string) (*PatientProfile, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*PatientProfile, error)
	GetByID(ctx context.Context, id uint) (*PatientProfile, error)
	Update(ctx context.Context, profile *PatientProfile) error
}

// TreatmentRepository stores treatment events. Treatments are
// append-only; the simulation only ever reads them back.
type TreatmentRepository interface {
	Create(ctx context.Context, treatment *Treatment) error
	ListSince(ctx context.Context, patientID uint, since time.Time) ([]Treatment, error)
	ListRecent(ctx context.Context, patientID uint, limit int) ([]Treatment, error)
}

// ReadingRepository stores predicted glucose series. ReplacePredicted
// swaps a patient's whole predicted series in one transaction so a
// concurrent reader never observes a partial series.
type ReadingRepository interface {
	ReplacePredicted(ctx context.Context, patientID uint, readings []GlucoseReading) error
	ListPredicted(ctx context.Context, patientID uint, from, to time.Time) ([]GlucoseReading, error)
}
