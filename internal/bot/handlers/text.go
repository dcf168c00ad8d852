package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glucose-simulator/internal/bot/keyboards"
	"github.com/vladimiradmaev/glucose-simulator/internal/bot/menus"
	"github.com/vladimiradmaev/glucose-simulator/internal/bot/state"
	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-simulator/internal/errors"
	"github.com/vladimiradmaev/glucose-simulator/internal/logger"
)

// TextHandler handles text messages
type TextHandler struct {
	api          *tgbotapi.BotAPI
	deps         Dependencies
	stateManager state.StateManager
}

// NewTextHandler creates a new text handler
func NewTextHandler(api *tgbotapi.BotAPI, deps Dependencies, stateManager state.StateManager) *TextHandler {
	return &TextHandler{
		api:          api,
		deps:         deps,
		stateManager: stateManager,
	}
}

// Handle routes the text to the input the dialog is waiting for.
func (h *TextHandler) Handle(ctx context.Context, message *tgbotapi.Message, profile *domain.PatientProfile) error {
	userState := h.stateManager.GetUserState(profile.TelegramID)

	switch userState {
	case state.WaitingForMealCarbs:
		return h.handleMealCarbs(ctx, message, profile)
	case state.WaitingForBolusDose:
		return h.handleInsulinDose(ctx, message, profile, domain.TreatmentRapidInsulin)
	case state.WaitingForLongDose:
		return h.handleInsulinDose(ctx, message, profile, domain.TreatmentLongInsulin)
	case state.WaitingForCorrectionDose:
		return h.handleInsulinDose(ctx, message, profile, domain.TreatmentCorrection)
	case state.WaitingForExerciseTime:
		return h.handleExerciseTime(ctx, message, profile)
	case state.WaitingForProfileValue:
		return h.handleProfileValue(ctx, message, profile)
	default:
		return h.handleDefaultText(message.Chat.ID)
	}
}

// handleMealCarbs saves a meal from a manually entered carb count.
func (h *TextHandler) handleMealCarbs(ctx context.Context, message *tgbotapi.Message, profile *domain.PatientProfile) error {
	carbs, err := parseNumber(message.Text)
	if err != nil {
		return h.sendText(message.Chat.ID, "Пожалуйста, введите корректное число (например: 45)")
	}

	if _, err := h.deps.TreatmentSvc.LogMeal(ctx, profile.ID, carbs, ""); err != nil {
		return h.handleLogError(message.Chat.ID, profile, err)
	}

	h.stateManager.SetUserState(profile.TelegramID, state.None)
	return h.sendLogged(message.Chat.ID, fmt.Sprintf("✅ Еда записана: %.0f г углеводов", carbs))
}

// handleInsulinDose saves an insulin dose of the type the dialog asked
// for.
func (h *TextHandler) handleInsulinDose(ctx context.Context, message *tgbotapi.Message, profile *domain.PatientProfile, insulinType domain.TreatmentType) error {
	units, err := parseNumber(message.Text)
	if err != nil {
		return h.sendText(message.Chat.ID, "Пожалуйста, введите корректное число (например: 4 или 2.5)")
	}

	if _, err := h.deps.TreatmentSvc.LogInsulin(ctx, profile.ID, insulinType, units); err != nil {
		return h.handleLogError(message.Chat.ID, profile, err)
	}

	h.stateManager.SetUserState(profile.TelegramID, state.None)
	return h.sendLogged(message.Chat.ID, fmt.Sprintf("✅ Инсулин записан: %.1f ед.", units))
}

// handleExerciseTime saves the exercise whose intensity was chosen on
// the previous step.
func (h *TextHandler) handleExerciseTime(ctx context.Context, message *tgbotapi.Message, profile *domain.PatientProfile) error {
	minutes, err := strconv.Atoi(strings.TrimSpace(message.Text))
	if err != nil {
		return h.sendText(message.Chat.ID, "Пожалуйста, введите целое число минут (например: 30)")
	}

	intensity := domain.IntensityModerate
	if val, ok := h.stateManager.GetTempData(profile.TelegramID, "intensity"); ok {
		if s, ok := val.(string); ok {
			intensity = domain.ExerciseIntensity(s)
		}
	}

	if _, err := h.deps.TreatmentSvc.LogExercise(ctx, profile.ID, intensity, minutes); err != nil {
		return h.handleLogError(message.Chat.ID, profile, err)
	}

	h.stateManager.ClearTempData(profile.TelegramID)
	h.stateManager.SetUserState(profile.TelegramID, state.None)
	return h.sendLogged(message.Chat.ID, fmt.Sprintf("✅ Активность записана: %d мин", minutes))
}

// handleProfileValue writes the profile field chosen on the previous
// step and shows the updated profile.
func (h *TextHandler) handleProfileValue(ctx context.Context, message *tgbotapi.Message, profile *domain.PatientProfile) error {
	fieldVal, ok := h.stateManager.GetTempData(profile.TelegramID, "profileField")
	if !ok {
		h.stateManager.SetUserState(profile.TelegramID, state.None)
		return h.sendText(message.Chat.ID, "Не выбрано поле профиля. Откройте профиль и попробуйте снова.")
	}
	field, _ := fieldVal.(string)

	if err := h.applyProfileField(profile, field, message.Text); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeValidation {
			return h.sendText(message.Chat.ID, "Неверное значение: "+appErr.Message)
		}
		return h.sendText(message.Chat.ID, "Пожалуйста, введите корректное число.")
	}

	if err := h.deps.ProfileSvc.Update(ctx, profile); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeValidation {
			return h.sendText(message.Chat.ID, "Значение вне допустимого диапазона. Проверьте число и попробуйте еще раз.")
		}
		logger.Errorf("Failed to update profile for patient %d: %v", profile.ID, err)
		return h.sendText(message.Chat.ID, "Произошла ошибка при сохранении. Пожалуйста, попробуйте еще раз.")
	}

	h.stateManager.ClearTempData(profile.TelegramID)
	h.stateManager.SetUserState(profile.TelegramID, state.None)
	return menus.SendProfileMenu(h.api, message.Chat.ID, profile)
}

// applyProfileField parses the raw input for one editable field and
// sets it on the profile.
func (h *TextHandler) applyProfileField(profile *domain.PatientProfile, field, input string) error {
	switch field {
	case "target":
		low, high, err := parseTargetRange(input)
		if err != nil {
			return err
		}
		profile.TargetLow = low
		profile.TargetHigh = high
		return nil
	case "age":
		age, err := strconv.Atoi(strings.TrimSpace(input))
		if err != nil {
			return err
		}
		profile.Age = age
		return nil
	}

	value, err := parseNumber(input)
	if err != nil {
		return err
	}
	switch field {
	case "isf":
		profile.InsulinSensitivity = value
	case "carb_ratio":
		profile.CarbRatio = value
	case "basal":
		profile.BasalRate = value
	case "weight":
		profile.Weight = value
	case "height":
		profile.Height = value
	default:
		return apperrors.NewValidationError(fmt.Sprintf("unknown profile field %q", field))
	}
	return nil
}

// handleDefaultText handles text when no specific state is set
func (h *TextHandler) handleDefaultText(chatID int64) error {
	return h.sendText(chatID, "Пожалуйста, используйте меню для выбора действия.")
}

func (h *TextHandler) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := h.api.Send(msg)
	return err
}

// sendLogged confirms a saved treatment and offers the refreshed
// forecast.
func (h *TextHandler) sendLogged(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text+"\n📈 Прогноз обновлён")
	msg.ReplyMarkup = keyboards.AfterLog()
	_, err := h.api.Send(msg)
	return err
}

// handleLogError maps a treatment logging failure to a user message.
func (h *TextHandler) handleLogError(chatID int64, profile *domain.PatientProfile, err error) error {
	if errors.Is(err, apperrors.ErrProfileIncomplete) {
		h.stateManager.SetUserState(profile.TelegramID, state.None)
		return h.sendText(chatID, "⚠️ Для прогноза сначала заполните профиль: чувствительность к инсулину и углеводный коэффициент.")
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Type == apperrors.ErrorTypeValidation {
		return h.sendText(chatID, "Значение вне допустимого диапазона. Проверьте число и попробуйте еще раз.")
	}
	logger.Errorf("Failed to log treatment for patient %d: %v", profile.ID, err)
	return h.sendText(chatID, "Произошла ошибка при сохранении. Пожалуйста, попробуйте еще раз.")
}

// parseNumber accepts both "4.5" and the Russian-keyboard "4,5".
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return strconv.ParseFloat(s, 64)
}

// parseTargetRange parses "LOW-HIGH" in mg/dL, e.g. "80-160".
func parseTargetRange(s string) (float64, float64, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return 0, 0, apperrors.NewValidationError("введите диапазон в формате НИЗ-ВЕРХ, например 80-160")
	}
	low, err := parseNumber(parts[0])
	if err != nil {
		return 0, 0, err
	}
	high, err := parseNumber(parts[1])
	if err != nil {
		return 0, 0, err
	}
	if low >= high {
		return 0, 0, apperrors.NewValidationError("нижняя граница должна быть меньше верхней")
	}
	return low, high, nil
}
