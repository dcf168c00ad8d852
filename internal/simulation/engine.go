// Package simulation implements the glucose prediction engine: effect
// models for logged treatments, deterministic weekly noise, the
// curve-assembly fold and the current-value/trend readouts.
package simulation

import (
	"context"
	"fmt"
	"time"

	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-simulator/internal/errors"
	"github.com/vladimiradmaev/glucose-simulator/internal/logger"
	"github.com/vladimiradmaev/glucose-simulator/internal/utils"
)

// Engine assembles predicted glucose series. It is pure and
// synchronous: no storage, no goroutines; callers own persistence and
// per-patient serialization of recomputes.
type Engine struct {
	params Params
	errs   *apperrors.Handler
}

// NewEngine returns an engine with the production model constants.
func NewEngine() *Engine {
	return NewEngineWithParams(DefaultParams())
}

// NewEngineWithParams returns an engine with custom constants.
func NewEngineWithParams(params Params) *Engine {
	return &Engine{
		params: params,
		errs:   apperrors.NewHandler(logger.GetLogger()),
	}
}

// ComputeCurve predicts the next 24 hours for one patient: 288 points
// at 5-minute spacing starting at now. It always returns a full
// series; a calculation failure degrades to the fallback curve instead
// of surfacing an error.
func (e *Engine) ComputeCurve(profile domain.PatientProfile, treatments []domain.Treatment, now time.Time) []domain.GlucoseReading {
	noise := weeklyNoise(profile.ID, utils.WeekStart(now), e.params.NoiseAmplitude)

	readings, err := e.safeBuild(profile, treatments, now, noise)
	if err != nil {
		e.errs.Handle(context.Background(), apperrors.NewSimulationError(err).WithContext("patient_id", profile.ID))
		return fallbackCurve(e.params, profile.ID, now, noise)
	}
	return readings
}

// safeBuild runs the calculator with panics converted to errors so the
// facade can degrade instead of crash.
func (e *Engine) safeBuild(profile domain.PatientProfile, treatments []domain.Treatment, now time.Time, noise []float64) (readings []domain.GlucoseReading, err error) {
	defer func() {
		if r := recover(); r != nil {
			readings = nil
			err = fmt.Errorf("curve calculation panicked: %v", r)
		}
	}()
	return buildCurve(e.params, profile, treatments, now, noise)
}
