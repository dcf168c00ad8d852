package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glucose-simulator/internal/bot/menus"
	"github.com/vladimiradmaev/glucose-simulator/internal/bot/state"
	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
	"github.com/vladimiradmaev/glucose-simulator/internal/logger"
)

// CommandHandler handles bot commands
type CommandHandler struct {
	api          *tgbotapi.BotAPI
	stateManager state.StateManager
}

// NewCommandHandler creates a new command handler
func NewCommandHandler(api *tgbotapi.BotAPI, stateManager state.StateManager) *CommandHandler {
	return &CommandHandler{
		api:          api,
		stateManager: stateManager,
	}
}

// Handle processes a command message
func (h *CommandHandler) Handle(ctx context.Context, message *tgbotapi.Message, profile *domain.PatientProfile) error {
	logger.Infof("Handling command %s from patient %d", message.Command(), profile.ID)

	switch message.Command() {
	case "start":
		h.stateManager.SetUserState(profile.TelegramID, state.None)
		return menus.SendMainMenu(h.api, message.Chat.ID)
	case "help":
		return h.handleHelp(message.Chat.ID)
	default:
		return h.handleUnknownCommand(message.Chat.ID)
	}
}

// handleHelp handles the /help command
func (h *CommandHandler) handleHelp(chatID int64) error {
	text := `Доступные команды:
/start - Показать главное меню
/help - Показать это сообщение

Как пользоваться ботом:
1. Заполните профиль (⚙️): чувствительность к инсулину и углеводный коэффициент
2. Записывайте события: еду, инсулин, активность
3. После каждой записи бот пересчитывает кривую сахара на сутки вперёд
4. Нажмите «📈 Прогноз», чтобы увидеть текущий уровень, тренд и прогноз

Еду можно записать фотографией: бот сам оценит углеводы по снимку.`

	msg := tgbotapi.NewMessage(chatID, text)
	_, err := h.api.Send(msg)
	return err
}

// handleUnknownCommand handles unknown commands
func (h *CommandHandler) handleUnknownCommand(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Неизвестная команда. Используйте /help для просмотра доступных команд.")
	_, err := h.api.Send(msg)
	return err
}
