package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/vladimiradmaev/glucose-simulator/internal/bot"
	"github.com/vladimiradmaev/glucose-simulator/internal/bot/handlers"
	"github.com/vladimiradmaev/glucose-simulator/internal/bot/state"
	"github.com/vladimiradmaev/glucose-simulator/internal/config"
	"github.com/vladimiradmaev/glucose-simulator/internal/database"
	"github.com/vladimiradmaev/glucose-simulator/internal/logger"
	"github.com/vladimiradmaev/glucose-simulator/internal/repository"
	"github.com/vladimiradmaev/glucose-simulator/internal/services"
	"github.com/vladimiradmaev/glucose-simulator/internal/simulation"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logger.Warn(".env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatalf("Failed to initialize logger: %v", err)
	}
	if cfg.TelegramToken == "" {
		logger.Fatal("TELEGRAM_BOT_TOKEN is required")
	}

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	profileRepo := repository.NewProfileRepository(db)
	treatmentRepo := repository.NewTreatmentRepository(db)
	readingRepo := repository.NewReadingRepository(db)

	engine := simulation.NewEngine()
	predictionSvc := services.NewPredictionService(profileRepo, treatmentRepo, readingRepo, engine)
	deps := handlers.Dependencies{
		ProfileSvc:    services.NewProfileService(profileRepo),
		TreatmentSvc:  services.NewTreatmentService(treatmentRepo, predictionSvc),
		PredictionSvc: predictionSvc,
	}

	// Photo analysis is optional: without an AI key the bot still runs,
	// meals are just logged by number.
	if aiSvc, err := services.NewAIService(cfg.AI); err != nil {
		logger.Warningf("AI service disabled: %v", err)
	} else {
		deps.AISvc = aiSvc
	}

	var stateManager state.StateManager
	redisManager, err := state.NewRedisManager(cfg.Redis)
	if err != nil {
		logger.Warningf("Redis unavailable, dialog state is in-memory only: %v", err)
		stateManager = state.NewManager()
	} else {
		defer redisManager.Close()
		stateManager = redisManager
	}

	telegramBot, err := bot.NewBot(cfg.TelegramToken, deps, stateManager)
	if err != nil {
		logger.Fatalf("Failed to create bot: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return telegramBot.Start(ctx)
	})

	logger.Info("Bot is running, press Ctrl+C to stop")
	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Fatalf("Bot stopped with error: %v", err)
	}
	logger.Info("Shutdown complete")
}
