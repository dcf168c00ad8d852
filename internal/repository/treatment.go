package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vladimiradmaev/glucose-simulator/internal/database"
	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
)

// TreatmentRepository persists logged treatments.
type TreatmentRepository struct {
	db *gorm.DB
}

func NewTreatmentRepository(db *gorm.DB) *TreatmentRepository {
	return &TreatmentRepository{db: db}
}

func (r *TreatmentRepository) Create(ctx context.Context, treatment *domain.Treatment) error {
	record := fromDomainTreatment(treatment)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("failed to create treatment: %w", err)
	}
	treatment.ID = record.ID
	treatment.CreatedAt = record.CreatedAt
	treatment.UpdatedAt = record.UpdatedAt
	return nil
}

// ListSince returns the patient's treatments with timestamps at or
// after the cutoff, oldest first.
func (r *TreatmentRepository) ListSince(ctx context.Context, patientID uint, since time.Time) ([]domain.Treatment, error) {
	var records []database.Treatment
	err := r.db.WithContext(ctx).
		Where("patient_id = ? AND timestamp >= ?", patientID, since).
		Order("timestamp ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	return toDomainTreatments(records), nil
}

// ListRecent returns the patient's latest treatments, newest first.
func (r *TreatmentRepository) ListRecent(ctx context.Context, patientID uint, limit int) ([]domain.Treatment, error) {
	var records []database.Treatment
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list treatments: %w", err)
	}
	return toDomainTreatments(records), nil
}

func fromDomainTreatment(t *domain.Treatment) database.Treatment {
	return database.Treatment{
		PatientID:    t.PatientID,
		Type:         string(t.Type),
		Timestamp:    t.Timestamp,
		Carbs:        t.Carbs,
		InsulinUnits: t.InsulinUnits,
		Intensity:    string(t.Intensity),
		Duration:     t.Duration,
		Note:         t.Note,
	}
}

func toDomainTreatments(records []database.Treatment) []domain.Treatment {
	treatments := make([]domain.Treatment, 0, len(records))
	for _, record := range records {
		treatments = append(treatments, domain.Treatment{
			ID:           record.ID,
			CreatedAt:    record.CreatedAt,
			UpdatedAt:    record.UpdatedAt,
			PatientID:    record.PatientID,
			Type:         domain.TreatmentType(record.Type),
			Timestamp:    record.Timestamp,
			Carbs:        record.Carbs,
			InsulinUnits: record.InsulinUnits,
			Intensity:    domain.ExerciseIntensity(record.Intensity),
			Duration:     record.Duration,
			Note:         record.Note,
		})
	}
	return treatments
}
