package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glucose-simulator/internal/bot/state"
	"github.com/vladimiradmaev/glucose-simulator/internal/interfaces"
)

// UpdateHandler handles telegram updates and coordinates other handlers
type UpdateHandler struct {
	api             *tgbotapi.BotAPI
	profileService  interfaces.ProfileServiceInterface
	stateManager    state.StateManager
	callbackHandler *CallbackHandler
	commandHandler  *CommandHandler
	textHandler     *TextHandler
	photoHandler    *PhotoHandler
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(
	api *tgbotapi.BotAPI,
	deps Dependencies,
	stateManager state.StateManager,
) *UpdateHandler {
	return &UpdateHandler{
		api:             api,
		profileService:  deps.ProfileSvc,
		stateManager:    stateManager,
		callbackHandler: NewCallbackHandler(api, deps, stateManager),
		commandHandler:  NewCommandHandler(api, stateManager),
		textHandler:     NewTextHandler(api, deps, stateManager),
		photoHandler:    NewPhotoHandler(api, deps, stateManager),
	}
}

// Handle processes a telegram update
func (h *UpdateHandler) Handle(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil && update.CallbackQuery == nil {
		return nil
	}

	var from *tgbotapi.User
	if update.Message != nil {
		from = update.Message.From
	} else {
		from = update.CallbackQuery.From
	}
	if from == nil {
		return nil
	}

	profile, err := h.profileService.Register(ctx, from.ID, from.UserName, from.FirstName)
	if err != nil {
		return fmt.Errorf("failed to register patient: %w", err)
	}

	if update.CallbackQuery != nil {
		return h.callbackHandler.Handle(ctx, update.CallbackQuery, profile)
	}

	if update.Message.IsCommand() {
		return h.commandHandler.Handle(ctx, update.Message, profile)
	}

	if len(update.Message.Photo) > 0 {
		return h.photoHandler.Handle(ctx, update.Message, profile)
	}

	if update.Message.Text != "" {
		return h.textHandler.Handle(ctx, update.Message, profile)
	}

	return nil
}
