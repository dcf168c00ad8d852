package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vladimiradmaev/glucose-simulator/internal/config"
	"github.com/vladimiradmaev/glucose-simulator/internal/database/migrations"
	"github.com/vladimiradmaev/glucose-simulator/internal/logger"
)

type PatientProfile struct {
	gorm.Model
	TelegramID         int64 `gorm:"uniqueIndex"`
	Username           string
	FirstName          string
	Age                int
	Weight             float64
	Height             float64
	InsulinSensitivity float64 `gorm:"default:0"`
	CarbRatio          float64 `gorm:"default:0"`
	BasalRate          float64 `gorm:"default:0"`
	TargetLow          float64 `gorm:"default:70"`
	TargetHigh         float64 `gorm:"default:180"`
	Unit               string  `gorm:"default:mgdl"`
}

type Treatment struct {
	gorm.Model
	PatientID    uint `gorm:"index"`
	Patient      PatientProfile
	Type         string
	Timestamp    time.Time
	Carbs        float64
	InsulinUnits float64
	Intensity    string
	Duration     int
	Note         string
}

type GlucoseReading struct {
	gorm.Model
	PatientID     uint `gorm:"index"`
	Patient       PatientProfile
	Timestamp     time.Time
	Value         float64
	IsPredicted   bool
	CalculatedAt  time.Time
	CalculationID string
}

func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Tables first, then the SQL migrations that index them.
	if err := db.AutoMigrate(&PatientProfile{}, &Treatment{}, &GlucoseReading{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	if err := migrations.LoadSQLMigrations(); err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	if err := migrations.RunMigrations(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	logger.Info("Database connection established and migrations completed")
	return db, nil
}
