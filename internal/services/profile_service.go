package services

import (
	"context"
	"fmt"

	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-simulator/internal/errors"
)

// Therapy parameters outside these bounds are rejected as input
// mistakes rather than stored.
const (
	maxInsulinSensitivity = 500
	maxCarbRatio          = 150
	maxBasalRate          = 100
	maxAge                = 120
)

type ProfileService struct {
	profiles domain.ProfileRepository
}

func NewProfileService(profiles domain.ProfileRepository) *ProfileService {
	return &ProfileService{profiles: profiles}
}

// Register returns the patient's profile, creating it on first contact.
func (s *ProfileService) Register(ctx context.Context, telegramID int64, username, firstName string) (*domain.PatientProfile, error) {
	profile, err := s.profiles.GetOrCreate(ctx, telegramID, username, firstName)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return profile, nil
}

func (s *ProfileService) Get(ctx context.Context, telegramID int64) (*domain.PatientProfile, error) {
	profile, err := s.profiles.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return profile, nil
}

// Update validates and persists the profile's editable fields.
func (s *ProfileService) Update(ctx context.Context, profile *domain.PatientProfile) error {
	if err := validateProfile(profile); err != nil {
		return err
	}
	if err := s.profiles.Update(ctx, profile); err != nil {
		return apperrors.NewDatabaseError(err)
	}
	return nil
}

// SetUnit switches the display unit without touching therapy fields.
func (s *ProfileService) SetUnit(ctx context.Context, telegramID int64, unit domain.GlucoseUnit) (*domain.PatientProfile, error) {
	if unit != domain.UnitMgdl && unit != domain.UnitMmol {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown glucose unit %q", unit))
	}
	profile, err := s.Get(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	profile.Unit = unit
	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return profile, nil
}

func validateProfile(profile *domain.PatientProfile) error {
	switch {
	case profile.InsulinSensitivity < 0 || profile.InsulinSensitivity > maxInsulinSensitivity:
		return apperrors.NewValidationError("insulin sensitivity out of range")
	case profile.CarbRatio < 0 || profile.CarbRatio > maxCarbRatio:
		return apperrors.NewValidationError("carb ratio out of range")
	case profile.BasalRate < 0 || profile.BasalRate > maxBasalRate:
		return apperrors.NewValidationError("basal rate out of range")
	case profile.Age < 0 || profile.Age > maxAge:
		return apperrors.NewValidationError("age out of range")
	case profile.Weight < 0 || profile.Height < 0:
		return apperrors.NewValidationError("weight and height must be non-negative")
	case profile.TargetLow > 0 && profile.TargetHigh > 0 && profile.TargetLow >= profile.TargetHigh:
		return apperrors.NewValidationError("target range low must be below high")
	}
	return nil
}
