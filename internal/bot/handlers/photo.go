package handlers

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glucose-simulator/internal/bot/keyboards"
	"github.com/vladimiradmaev/glucose-simulator/internal/bot/state"
	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
	"github.com/vladimiradmaev/glucose-simulator/internal/logger"
)

// PhotoHandler handles meal photo messages
type PhotoHandler struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager state.StateManager
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager) *PhotoHandler {
	return &PhotoHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle analyzes a meal photo and asks the patient to confirm the
// estimated carbs before anything is saved. The estimate is parked in
// the dialog's temp data; the confirm callback commits it.
func (h *PhotoHandler) Handle(ctx context.Context, message *tgbotapi.Message, profile *domain.PatientProfile) error {
	if h.stateManager.GetUserState(profile.TelegramID) != state.WaitingForMealPhoto {
		return h.sendText(message.Chat.ID, "Чтобы записать еду по фото, сначала выберите «🍽️ Еда» → «📷 Фото блюда».")
	}

	if h.deps.AISvc == nil {
		h.stateManager.SetUserState(profile.TelegramID, state.None)
		return h.sendText(message.Chat.ID, "Анализ фото не настроен. Введите углеводы числом через «🍽️ Еда» → «🔢 Ввести граммы».")
	}

	// Largest photo size is last in the slice.
	photo := message.Photo[len(message.Photo)-1]
	file, err := h.api.GetFile(tgbotapi.FileConfig{FileID: photo.FileID})
	if err != nil {
		return fmt.Errorf("failed to get file: %w", err)
	}

	processingMsg := tgbotapi.NewMessage(message.Chat.ID, "Анализирую изображение...")
	sentMsg, err := h.api.Send(processingMsg)
	if err != nil {
		return fmt.Errorf("failed to send processing message: %w", err)
	}

	logger.Infof("Starting meal photo analysis for patient %d", profile.ID)
	analysis, err := h.deps.AISvc.AnalyzeMealPhoto(ctx, file.Link(h.api.Token))

	deleteMsg := tgbotapi.NewDeleteMessage(message.Chat.ID, sentMsg.MessageID)
	h.api.Request(deleteMsg)

	if err != nil {
		logger.Errorf("Meal photo analysis failed for patient %d: %v", profile.ID, err)
		return h.sendText(message.Chat.ID, "Извините, произошла ошибка при анализе изображения. Пожалуйста, попробуйте еще раз через несколько минут.")
	}

	if analysis.Carbs <= 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID, "На изображении не удалось распознать еду. Отправьте другое фото или введите углеводы числом.")
		msg.ReplyMarkup = keyboards.MealMenu()
		_, err = h.api.Send(msg)
		return err
	}

	note := strings.Join(analysis.FoodItems, ", ")
	h.stateManager.SetTempData(profile.TelegramID, "pendingCarbs", analysis.Carbs)
	h.stateManager.SetTempData(profile.TelegramID, "pendingNote", note)

	text := fmt.Sprintf("🍽️ *Анализ блюда*\n\n🍞 *Углеводы:* %.0f г\n🎯 *Уверенность:* %s",
		analysis.Carbs, confidenceLabel(analysis.Confidence))
	if analysis.Weight > 0 {
		text += fmt.Sprintf("\n⚖️ *Оценка веса:* %.0f г", analysis.Weight)
	}
	if note != "" {
		text += "\n📝 " + escapeMarkdown(note)
	}
	if analysis.AnalysisText != "" {
		text += "\n\n📊 *Как считали:*\n" + truncate(escapeMarkdown(analysis.AnalysisText), 900)
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.MealConfirm(analysis.Carbs)
	if _, err = h.api.Send(msg); err != nil {
		// Model output can break Markdown; retry as plain text.
		msg.ParseMode = ""
		_, err = h.api.Send(msg)
	}
	return err
}

func (h *PhotoHandler) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := h.api.Send(msg)
	return err
}

func confidenceLabel(confidence string) string {
	switch strings.ToLower(confidence) {
	case "high":
		return "высокая"
	case "medium":
		return "средняя"
	case "low":
		return "низкая"
	default:
		return "не определена"
	}
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"`", "\\`",
	)
	return strings.ToValidUTF8(replacer.Replace(s), "")
}

// truncate shortens s to at most max bytes, cutting on a rune
// boundary so Cyrillic model output never turns into invalid UTF-8.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
