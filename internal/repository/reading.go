package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/vladimiradmaev/glucose-simulator/internal/database"
	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
)

// Stored glucose values are bounded to the range CGM hardware can
// report, regardless of what the caller produced.
const (
	storedValueMin = 20
	storedValueMax = 600
)

// ReadingRepository persists glucose readings.
type ReadingRepository struct {
	db *gorm.DB
}

func NewReadingRepository(db *gorm.DB) *ReadingRepository {
	return &ReadingRepository{db: db}
}

// ReplacePredicted atomically swaps the patient's predicted series:
// either the old curve stays or the new one is fully in place, never a
// mix of the two. Old rows are removed for good, not soft-deleted.
func (r *ReadingRepository) ReplacePredicted(ctx context.Context, patientID uint, readings []domain.GlucoseReading) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("patient_id = ? AND is_predicted = ?", patientID, true).
			Delete(&database.GlucoseReading{}).Error; err != nil {
			return err
		}
		if len(readings) == 0 {
			return nil
		}
		records := make([]database.GlucoseReading, 0, len(readings))
		for i := range readings {
			records = append(records, fromDomainReading(&readings[i]))
		}
		return tx.CreateInBatches(records, 288).Error
	})
	if err != nil {
		return fmt.Errorf("failed to replace predicted readings: %w", err)
	}
	return nil
}

// ListPredicted returns the patient's predicted readings inside
// [from, to], oldest first.
func (r *ReadingRepository) ListPredicted(ctx context.Context, patientID uint, from, to time.Time) ([]domain.GlucoseReading, error) {
	var records []database.GlucoseReading
	err := r.db.WithContext(ctx).
		Where("patient_id = ? AND is_predicted = ? AND timestamp >= ? AND timestamp <= ?",
			patientID, true, from, to).
		Order("timestamp ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list predicted readings: %w", err)
	}

	readings := make([]domain.GlucoseReading, 0, len(records))
	for _, record := range records {
		readings = append(readings, domain.GlucoseReading{
			ID:            record.ID,
			CreatedAt:     record.CreatedAt,
			UpdatedAt:     record.UpdatedAt,
			PatientID:     record.PatientID,
			Timestamp:     record.Timestamp,
			Value:         record.Value,
			IsPredicted:   record.IsPredicted,
			CalculatedAt:  record.CalculatedAt,
			CalculationID: record.CalculationID,
		})
	}
	return readings, nil
}

func fromDomainReading(reading *domain.GlucoseReading) database.GlucoseReading {
	value := reading.Value
	if value < storedValueMin {
		value = storedValueMin
	}
	if value > storedValueMax {
		value = storedValueMax
	}
	return database.GlucoseReading{
		PatientID:     reading.PatientID,
		Timestamp:     reading.Timestamp,
		Value:         value,
		IsPredicted:   reading.IsPredicted,
		CalculatedAt:  reading.CalculatedAt,
		CalculationID: reading.CalculationID,
	}
}
