package handlers

import (
	"github.com/vladimiradmaev/glucose-simulator/internal/interfaces"
)

// Dependencies holds all service dependencies for handlers
type Dependencies struct {
	ProfileSvc    interfaces.ProfileServiceInterface
	TreatmentSvc  interfaces.TreatmentServiceInterface
	PredictionSvc interfaces.PredictionServiceInterface
	AISvc         interfaces.AIServiceInterface
}
