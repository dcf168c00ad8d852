package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glucose-simulator/internal/bot/keyboards"
	"github.com/vladimiradmaev/glucose-simulator/internal/bot/menus"
	"github.com/vladimiradmaev/glucose-simulator/internal/bot/state"
	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-simulator/internal/errors"
	"github.com/vladimiradmaev/glucose-simulator/internal/logger"
)

// forecastHorizon covers the full stored curve so the view can show
// both the next hours and the day's extremes.
const forecastHorizon = 24 * time.Hour

// CallbackHandler handles callback query messages
type CallbackHandler struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager state.StateManager
}

// NewCallbackHandler creates a new callback handler
func NewCallbackHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager) *CallbackHandler {
	return &CallbackHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle processes a callback query
func (h *CallbackHandler) Handle(ctx context.Context, query *tgbotapi.CallbackQuery, profile *domain.PatientProfile) error {
	callback := tgbotapi.NewCallback(query.ID, "")
	if _, err := h.api.Request(callback); err != nil {
		return err
	}
	chatID := query.Message.Chat.ID

	if field, ok := strings.CutPrefix(query.Data, "profile_edit_"); ok {
		return h.handleProfileEdit(chatID, profile, field)
	}

	switch query.Data {
	case "forecast":
		return h.handleForecast(ctx, chatID, profile)
	case "meal_menu":
		return h.handleMealMenu(chatID)
	case "meal_photo":
		return h.handleMealPhoto(chatID, profile)
	case "meal_carbs":
		return h.promptInput(chatID, profile, state.WaitingForMealCarbs, "Введите количество углеводов в граммах:")
	case "confirm_meal":
		return h.handleConfirmMeal(ctx, chatID, profile)
	case "insulin_menu":
		return h.handleInsulinMenu(chatID)
	case "insulin_bolus":
		return h.promptInput(chatID, profile, state.WaitingForBolusDose, "Введите дозу болюсного инсулина в единицах:")
	case "insulin_long":
		return h.promptInput(chatID, profile, state.WaitingForLongDose, "Введите дозу длинного инсулина в единицах:")
	case "insulin_correction":
		return h.promptInput(chatID, profile, state.WaitingForCorrectionDose, "Введите дозу корректирующего инсулина в единицах:")
	case "exercise_menu":
		return h.handleExerciseMenu(chatID)
	case "exercise_light":
		return h.promptExerciseDuration(chatID, profile, domain.IntensityLight)
	case "exercise_moderate":
		return h.promptExerciseDuration(chatID, profile, domain.IntensityModerate)
	case "exercise_intense":
		return h.promptExerciseDuration(chatID, profile, domain.IntensityIntense)
	case "history":
		return h.handleHistory(ctx, chatID, profile)
	case "profile":
		return menus.SendProfileMenu(h.api, chatID, profile)
	case "toggle_unit":
		return h.handleToggleUnit(ctx, chatID, profile)
	case "main_menu":
		return h.handleMainMenu(chatID, profile)
	default:
		return h.handleUnknownCallback(chatID)
	}
}

// handleForecast renders the current value, trend and the next hours
// from the stored curve.
func (h *CallbackHandler) handleForecast(ctx context.Context, chatID int64, profile *domain.PatientProfile) error {
	status, err := h.deps.PredictionSvc.Status(ctx, profile.ID)
	if err != nil {
		if errors.Is(err, apperrors.ErrProfileIncomplete) {
			return h.sendProfileRequired(chatID)
		}
		logger.Errorf("Failed to get glucose status for patient %d: %v", profile.ID, err)
		return h.sendError(chatID, "Произошла ошибка при расчёте прогноза. Пожалуйста, попробуйте еще раз.")
	}

	text := fmt.Sprintf("🩸 *Сейчас:* %s %s %s\n🕒 Рассчитано в %s\n",
		menus.FormatGlucose(status.Value, status.Unit),
		status.Trend.Arrow(),
		trendLabel(status.Trend),
		status.CalculatedAt.Format("15:04"))

	forecast, err := h.deps.PredictionSvc.Forecast(ctx, profile.ID, forecastHorizon)
	if err != nil {
		logger.Errorf("Failed to get forecast for patient %d: %v", profile.ID, err)
	} else if len(forecast) > 0 {
		text += "\n📈 *Прогноз:*\n"
		now := time.Now()
		for _, hours := range []int{1, 2, 3} {
			target := now.Add(time.Duration(hours) * time.Hour)
			if reading, ok := nearestReading(forecast, target); ok {
				text += fmt.Sprintf("через %d ч: %s\n", hours, menus.FormatGlucose(reading.Value, status.Unit))
			}
		}

		minVal, maxVal := forecast[0].Value, forecast[0].Value
		for _, r := range forecast[1:] {
			minVal = math.Min(minVal, r.Value)
			maxVal = math.Max(maxVal, r.Value)
		}
		text += fmt.Sprintf("\nза сутки: от %s до %s\n",
			menus.FormatGlucose(minVal, status.Unit),
			menus.FormatGlucose(maxVal, status.Unit))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.BackToMain()
	_, err = h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleMealMenu(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Как записать еду?")
	msg.ReplyMarkup = keyboards.MealMenu()
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleMealPhoto(chatID int64, profile *domain.PatientProfile) error {
	h.stateManager.SetUserState(profile.TelegramID, state.WaitingForMealPhoto)

	text := `📷 *Отправьте фото еды*

💡 Для точной оценки:
• Сфотографируйте блюдо целиком
• Убедитесь, что освещение хорошее

Бот оценит углеводы по снимку, вы сможете подтвердить или поправить число перед записью.`

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.BackToMain()
	_, err := h.api.Send(msg)
	return err
}

// handleConfirmMeal commits the carbs stored by the photo analysis.
func (h *CallbackHandler) handleConfirmMeal(ctx context.Context, chatID int64, profile *domain.PatientProfile) error {
	carbsVal, ok := h.stateManager.GetTempData(profile.TelegramID, "pendingCarbs")
	if !ok {
		return h.sendError(chatID, "Нет ожидающей записи. Отправьте фото еды заново.")
	}
	carbs, ok := carbsVal.(float64)
	if !ok {
		return h.sendError(chatID, "Нет ожидающей записи. Отправьте фото еды заново.")
	}

	note := ""
	if noteVal, ok := h.stateManager.GetTempData(profile.TelegramID, "pendingNote"); ok {
		note, _ = noteVal.(string)
	}

	if _, err := h.deps.TreatmentSvc.LogMeal(ctx, profile.ID, carbs, note); err != nil {
		return h.handleLogError(chatID, profile, err)
	}

	h.stateManager.ClearTempData(profile.TelegramID)
	h.stateManager.SetUserState(profile.TelegramID, state.None)

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ Еда записана: %.0f г углеводов\n📈 Прогноз обновлён", carbs))
	msg.ReplyMarkup = keyboards.AfterLog()
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleInsulinMenu(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Какой инсулин записать?")
	msg.ReplyMarkup = keyboards.InsulinMenu()
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleExerciseMenu(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Какая была интенсивность?")
	msg.ReplyMarkup = keyboards.ExerciseMenu()
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) promptExerciseDuration(chatID int64, profile *domain.PatientProfile, intensity domain.ExerciseIntensity) error {
	h.stateManager.SetTempData(profile.TelegramID, "intensity", string(intensity))
	return h.promptInput(chatID, profile, state.WaitingForExerciseTime, "Сколько минут длилась активность?")
}

// handleHistory renders the latest logged treatments.
func (h *CallbackHandler) handleHistory(ctx context.Context, chatID int64, profile *domain.PatientProfile) error {
	treatments, err := h.deps.TreatmentSvc.Recent(ctx, profile.ID, 10)
	if err != nil {
		logger.Errorf("Failed to list treatments for patient %d: %v", profile.ID, err)
		return h.sendError(chatID, "Произошла ошибка при получении истории. Пожалуйста, попробуйте еще раз.")
	}

	if len(treatments) == 0 {
		msg := tgbotapi.NewMessage(chatID, "Записей пока нет. Запишите еду, инсулин или активность.")
		msg.ReplyMarkup = keyboards.BackToMain()
		_, err := h.api.Send(msg)
		return err
	}

	text := "📋 *Последние записи:*\n\n"
	for _, t := range treatments {
		text += formatTreatment(t) + "\n"
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.BackToMain()
	_, err = h.api.Send(msg)
	return err
}

func (h *CallbackHandler) handleToggleUnit(ctx context.Context, chatID int64, profile *domain.PatientProfile) error {
	target := domain.UnitMmol
	if profile.Unit == domain.UnitMmol {
		target = domain.UnitMgdl
	}

	updated, err := h.deps.ProfileSvc.SetUnit(ctx, profile.TelegramID, target)
	if err != nil {
		logger.Errorf("Failed to switch unit for patient %d: %v", profile.ID, err)
		return h.sendError(chatID, "Произошла ошибка при смене единиц. Пожалуйста, попробуйте еще раз.")
	}
	return menus.SendProfileMenu(h.api, chatID, updated)
}

// handleProfileEdit starts the input dialog for one profile field.
func (h *CallbackHandler) handleProfileEdit(chatID int64, profile *domain.PatientProfile, field string) error {
	var prompt string
	switch field {
	case "isf":
		prompt = "Введите чувствительность к инсулину (на сколько мг/дл снижает 1 ед.):"
	case "carb_ratio":
		prompt = "Введите углеводный коэффициент (г углеводов на 1 ед. инсулина):"
	case "basal":
		prompt = "Введите базальную скорость (ед/ч):"
	case "target":
		prompt = "Введите целевой диапазон в мг/дл в формате НИЗ-ВЕРХ (например, 80-160):"
	case "age":
		prompt = "Введите возраст:"
	case "weight":
		prompt = "Введите вес в килограммах:"
	case "height":
		prompt = "Введите рост в сантиметрах:"
	default:
		return h.handleUnknownCallback(chatID)
	}

	h.stateManager.SetTempData(profile.TelegramID, "profileField", field)
	return h.promptInput(chatID, profile, state.WaitingForProfileValue, prompt)
}

// handleMainMenu handles main menu callback
func (h *CallbackHandler) handleMainMenu(chatID int64, profile *domain.PatientProfile) error {
	h.stateManager.SetUserState(profile.TelegramID, state.None)
	return menus.SendMainMenu(h.api, chatID)
}

// handleUnknownCallback handles unknown callbacks
func (h *CallbackHandler) handleUnknownCallback(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "Неизвестная команда")
	_, err := h.api.Send(msg)
	return err
}

// promptInput switches the dialog state and asks for one value.
func (h *CallbackHandler) promptInput(chatID int64, profile *domain.PatientProfile, newState, prompt string) error {
	h.stateManager.SetUserState(profile.TelegramID, newState)

	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Отмена", "main_menu"),
		),
	)
	msg := tgbotapi.NewMessage(chatID, prompt)
	msg.ReplyMarkup = keyboard
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) sendProfileRequired(chatID int64) error {
	keyboard := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Профиль", "profile"),
			tgbotapi.NewInlineKeyboardButtonData("◀️ Главное меню", "main_menu"),
		),
	)
	msg := tgbotapi.NewMessage(chatID, "⚠️ Для прогноза сначала заполните профиль: чувствительность к инсулину и углеводный коэффициент.")
	msg.ReplyMarkup = keyboard
	_, err := h.api.Send(msg)
	return err
}

func (h *CallbackHandler) sendError(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := h.api.Send(msg)
	return err
}

// handleLogError maps a treatment logging failure to a user message.
func (h *CallbackHandler) handleLogError(chatID int64, profile *domain.PatientProfile, err error) error {
	if errors.Is(err, apperrors.ErrProfileIncomplete) {
		return h.sendProfileRequired(chatID)
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeValidation {
		return h.sendError(chatID, "Значение вне допустимого диапазона. Проверьте число и попробуйте еще раз.")
	}
	logger.Errorf("Failed to log treatment for patient %d: %v", profile.ID, err)
	return h.sendError(chatID, "Произошла ошибка при сохранении. Пожалуйста, попробуйте еще раз.")
}

// nearestReading picks the reading closest to the target time, if any
// lies within ten minutes of it.
func nearestReading(readings []domain.GlucoseReading, target time.Time) (domain.GlucoseReading, bool) {
	var best domain.GlucoseReading
	bestDiff := 10 * time.Minute
	found := false
	for _, r := range readings {
		diff := target.Sub(r.Timestamp)
		if diff < 0 {
			diff = -diff
		}
		if diff <= bestDiff {
			best = r
			bestDiff = diff
			found = true
		}
	}
	return best, found
}

func trendLabel(trend domain.TrendDirection) string {
	switch trend {
	case domain.TrendRapidlyRising:
		return "быстро растёт"
	case domain.TrendRising:
		return "растёт"
	case domain.TrendFalling:
		return "снижается"
	case domain.TrendRapidlyFalling:
		return "быстро снижается"
	default:
		return "стабильно"
	}
}

func formatTreatment(t domain.Treatment) string {
	ts := t.Timestamp.Format("02.01 15:04")
	switch t.Type {
	case domain.TreatmentMeal:
		line := fmt.Sprintf("🍽️ %s — еда, %.0f г углеводов", ts, t.Carbs)
		if t.Note != "" {
			line += fmt.Sprintf(" (%s)", t.Note)
		}
		return line
	case domain.TreatmentRapidInsulin:
		return fmt.Sprintf("⚡ %s — болюс, %.1f ед.", ts, t.InsulinUnits)
	case domain.TreatmentLongInsulin:
		return fmt.Sprintf("🕐 %s — длинный инсулин, %.1f ед.", ts, t.InsulinUnits)
	case domain.TreatmentCorrection:
		return fmt.Sprintf("🩹 %s — коррекция, %.1f ед.", ts, t.InsulinUnits)
	case domain.TreatmentExercise:
		return fmt.Sprintf("🏃 %s — активность (%s), %d мин", ts, intensityLabel(t.Intensity), t.Duration)
	default:
		return fmt.Sprintf("📌 %s — %s", ts, t.Type)
	}
}

func intensityLabel(intensity domain.ExerciseIntensity) string {
	switch intensity {
	case domain.IntensityLight:
		return "лёгкая"
	case domain.IntensityIntense:
		return "интенсивная"
	default:
		return "средняя"
	}
}
