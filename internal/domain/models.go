package domain

import (
	"time"
)

// GlucoseUnit selects how glucose values are rendered to the user.
type GlucoseUnit string

const (
	UnitMgdl GlucoseUnit = "mgdl"
	UnitMmol GlucoseUnit = "mmol"
)

// MgdlPerMmol is the conversion factor between mg/dL and mmol/L.
const MgdlPerMmol = 18.0182

// ToMmol converts a mg/dL value to mmol/L.
func ToMmol(mgdl float64) float64 {
	return mgdl / MgdlPerMmol
}

// ToMgdl converts a mmol/L value to mg/dL.
func ToMgdl(mmol float64) float64 {
	return mmol * MgdlPerMmol
}

// PatientProfile represents a patient and the physiological constants
// the simulation runs on. The engine receives it by value and never
// mutates it.
type PatientProfile struct {
	ID                 uint
	CreatedAt          time.Time
	UpdatedAt          time.Time
	TelegramID         int64
	Username           string
	FirstName          string
	Age                int
	Weight             float64 // kg
	Height             float64 // cm
	InsulinSensitivity float64 // mg/dL drop per insulin unit
	CarbRatio          float64 // grams of carbohydrate per insulin unit
	BasalRate          float64 // units per hour
	TargetLow          float64 // mg/dL
	TargetHigh         float64 // mg/dL
	Unit               GlucoseUnit
}

// IsComplete reports whether the profile carries the constants a
// simulation needs. Forecasts are refused until it returns true.
func (p PatientProfile) IsComplete() bool {
	return p.InsulinSensitivity > 0 && p.CarbRatio > 0
}

// TreatmentType tags a treatment event.
type TreatmentType string

const (
	TreatmentMeal         TreatmentType = "meal"
	TreatmentRapidInsulin TreatmentType = "rapid_insulin"
	TreatmentLongInsulin  TreatmentType = "long_insulin"
	TreatmentExercise     TreatmentType = "exercise"
	TreatmentCorrection   TreatmentType = "correction"
)

// ExerciseIntensity categorizes logged physical activity.
type ExerciseIntensity string

const (
	IntensityLight    ExerciseIntensity = "light"
	IntensityModerate ExerciseIntensity = "moderate"
	IntensityIntense  ExerciseIntensity = "intense"
)

// Treatment represents a logged event affecting glucose. Only the
// fields relevant to its type tag are populated; treatments are
// immutable once created.
type Treatment struct {
	ID           uint
	CreatedAt    time.Time
	UpdatedAt    time.Time
	PatientID    uint
	Type         TreatmentType
	Timestamp    time.Time
	Carbs        float64           // grams, meal only
	InsulinUnits float64           // rapid_insulin, long_insulin, correction
	Intensity    ExerciseIntensity // exercise only
	Duration     int               // minutes, exercise only
	Note         string
}

// NewMeal builds a meal treatment.
func NewMeal(patientID uint, ts time.Time, carbs float64, note string) Treatment {
	return Treatment{
		PatientID: patientID,
		Type:      TreatmentMeal,
		Timestamp: ts,
		Carbs:     carbs,
		Note:      note,
	}
}

// NewInsulin builds an insulin treatment of the given type
// (rapid_insulin, long_insulin or correction).
func NewInsulin(patientID uint, ts time.Time, typ TreatmentType, units float64) Treatment {
	return Treatment{
		PatientID:    patientID,
		Type:         typ,
		Timestamp:    ts,
		InsulinUnits: units,
	}
}

// NewExercise builds an exercise treatment.
func NewExercise(patientID uint, ts time.Time, intensity ExerciseIntensity, minutes int) Treatment {
	return Treatment{
		PatientID: patientID,
		Type:      TreatmentExercise,
		Timestamp: ts,
		Intensity: intensity,
		Duration:  minutes,
	}
}

// IsInsulin reports whether the treatment delivers insulin.
func (t Treatment) IsInsulin() bool {
	return t.Type == TreatmentRapidInsulin || t.Type == TreatmentLongInsulin || t.Type == TreatmentCorrection
}

// IsRapidActing reports whether the treatment uses the rapid-acting
// insulin model (corrections are dosed with the same insulin).
func (t Treatment) IsRapidActing() bool {
	return t.Type == TreatmentRapidInsulin || t.Type == TreatmentCorrection
}

// GlucoseReading represents one point of a computed series. IsPredicted
// and CalculatedAt are engine-emitted metadata the persistence layer
// uses for its replace semantics; CalculationID groups the points of a
// single run.
type GlucoseReading struct {
	ID            uint
	CreatedAt     time.Time
	UpdatedAt     time.Time
	PatientID     uint
	Timestamp     time.Time
	Value         float64 // mg/dL
	IsPredicted   bool
	CalculatedAt  time.Time
	CalculationID string
}

// TrendDirection classifies the short-term slope of a glucose series.
type TrendDirection string

const (
	TrendRapidlyRising  TrendDirection = "rapidly_rising"
	TrendRising         TrendDirection = "rising"
	TrendStable         TrendDirection = "stable"
	TrendFalling        TrendDirection = "falling"
	TrendRapidlyFalling TrendDirection = "rapidly_falling"
)

// Arrow returns the display symbol for the direction.
func (d TrendDirection) Arrow() string {
	switch d {
	case TrendRapidlyRising:
		return "⇈"
	case TrendRising:
		return "↗"
	case TrendFalling:
		return "↘"
	case TrendRapidlyFalling:
		return "⇊"
	default:
		return "→"
	}
}
