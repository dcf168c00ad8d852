package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glucose-simulator/internal/bot/handlers"
	"github.com/vladimiradmaev/glucose-simulator/internal/bot/state"
	"github.com/vladimiradmaev/glucose-simulator/internal/logger"
)

// Bot runs the Telegram update loop and routes every update through
// the handler layer. All domain work lives in the services the
// handlers hold; the bot itself only moves messages.
type Bot struct {
	api     *tgbotapi.BotAPI
	handler *handlers.UpdateHandler
}

// NewBot authorizes against the Telegram API and wires the handlers.
func NewBot(token string, deps handlers.Dependencies, stateManager state.StateManager) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	logger.Infof("Bot authorized on account %s", api.Self.UserName)
	return &Bot{
		api:     api,
		handler: handlers.NewUpdateHandler(api, deps, stateManager),
	}, nil
}

// Start consumes updates until the context is cancelled. Handler
// errors are logged and do not stop the loop.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	logger.Info("Bot is now listening for updates")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Bot is shutting down")
			b.api.StopReceivingUpdates()
			return ctx.Err()
		case update := <-updates:
			if err := b.handler.Handle(ctx, update); err != nil {
				logger.Errorf("Error handling update: %v", err)
			}
		}
	}
}
