package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/vladimiradmaev/glucose-simulator/internal/database"
	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
)

// ProfileRepository persists patient profiles.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetOrCreate returns the profile for the Telegram account, creating an
// empty one on first contact. New profiles carry default targets and
// zero therapy parameters until the patient fills them in.
func (r *ProfileRepository) GetOrCreate(ctx context.Context, telegramID int64, username, firstName string) (*domain.PatientProfile, error) {
	var record database.PatientProfile
	result := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&record)
	if result.Error == nil {
		return toDomainProfile(&record), nil
	}
	if result.Error != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("failed to get profile: %w", result.Error)
	}

	record = database.PatientProfile{
		TelegramID: telegramID,
		Username:   username,
		FirstName:  firstName,
		TargetLow:  70,
		TargetHigh: 180,
		Unit:       string(domain.UnitMgdl),
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}
	return toDomainProfile(&record), nil
}

func (r *ProfileRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.PatientProfile, error) {
	var record database.PatientProfile
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", telegramID).First(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return toDomainProfile(&record), nil
}

func (r *ProfileRepository) GetByID(ctx context.Context, id uint) (*domain.PatientProfile, error) {
	var record database.PatientProfile
	if err := r.db.WithContext(ctx).First(&record, id).Error; err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return toDomainProfile(&record), nil
}

// Update writes the mutable profile fields. A map is used so that
// zeroed values (cleared weight, mgdl target of 0 during editing)
// still reach the database.
func (r *ProfileRepository) Update(ctx context.Context, profile *domain.PatientProfile) error {
	err := r.db.WithContext(ctx).Model(&database.PatientProfile{}).
		Where("id = ?", profile.ID).
		Updates(map[string]interface{}{
			"age":                 profile.Age,
			"weight":              profile.Weight,
			"height":              profile.Height,
			"insulin_sensitivity": profile.InsulinSensitivity,
			"carb_ratio":          profile.CarbRatio,
			"basal_rate":          profile.BasalRate,
			"target_low":          profile.TargetLow,
			"target_high":         profile.TargetHigh,
			"unit":                string(profile.Unit),
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

func toDomainProfile(record *database.PatientProfile) *domain.PatientProfile {
	return &domain.PatientProfile{
		ID:                 record.ID,
		CreatedAt:          record.CreatedAt,
		UpdatedAt:          record.UpdatedAt,
		TelegramID:         record.TelegramID,
		Username:           record.Username,
		FirstName:          record.FirstName,
		Age:                record.Age,
		Weight:             record.Weight,
		Height:             record.Height,
		InsulinSensitivity: record.InsulinSensitivity,
		CarbRatio:          record.CarbRatio,
		BasalRate:          record.BasalRate,
		TargetLow:          record.TargetLow,
		TargetHigh:         record.TargetHigh,
		Unit:               domain.GlucoseUnit(record.Unit),
	}
}
