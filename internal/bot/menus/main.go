package menus

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glucose-simulator/internal/bot/keyboards"
	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
)

// SendMainMenu sends the main menu to a chat
func SendMainMenu(api *tgbotapi.BotAPI, chatID int64) error {
	text := `🤖 *ГлюкоСим* — симулятор уровня глюкозы

📈 Бот моделирует ваш сахар на 24 часа вперёд:
• Записывайте еду, инсулин и активность
• Кривая пересчитывается после каждой записи
• Смотрите текущий уровень, тренд и прогноз

⚠️ *Важно:* Это симуляция, а не медицинские показания. Всегда консультируйтесь с врачом!

Выберите действие:`

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.MainMenu()
	_, err := api.Send(msg)
	return err
}

// SendProfileMenu sends the profile overview with editing buttons
func SendProfileMenu(api *tgbotapi.BotAPI, chatID int64, profile *domain.PatientProfile) error {
	text := "⚙️ *Ваш профиль*\n\n"
	text += fmt.Sprintf("💉 Чувствительность к инсулину: %s\n", formatTherapyValue(profile.InsulinSensitivity, "мг/дл на ед."))
	text += fmt.Sprintf("🍞 Углеводный коэффициент: %s\n", formatTherapyValue(profile.CarbRatio, "г на ед."))
	text += fmt.Sprintf("🕐 Базальная скорость: %s\n", formatTherapyValue(profile.BasalRate, "ед/ч"))
	text += fmt.Sprintf("🎯 Целевой диапазон: %s — %s\n",
		FormatGlucose(profile.TargetLow, profile.Unit),
		FormatGlucose(profile.TargetHigh, profile.Unit))

	if profile.Age > 0 {
		text += fmt.Sprintf("👤 Возраст: %d\n", profile.Age)
	}
	if profile.Weight > 0 {
		text += fmt.Sprintf("⚖️ Вес: %.1f кг\n", profile.Weight)
	}
	if profile.Height > 0 {
		text += fmt.Sprintf("📏 Рост: %.0f см\n", profile.Height)
	}

	if !profile.IsComplete() {
		text += "\n⚠️ Для прогноза заполните чувствительность и углеводный коэффициент."
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = keyboards.ProfileMenu(profile.Unit)
	_, err := api.Send(msg)
	return err
}

// FormatGlucose renders a mg/dL value in the patient's display unit.
func FormatGlucose(value float64, unit domain.GlucoseUnit) string {
	if unit == domain.UnitMmol {
		return fmt.Sprintf("%.1f ммоль/л", domain.ToMmol(value))
	}
	return fmt.Sprintf("%.0f мг/дл", value)
}

func formatTherapyValue(value float64, unit string) string {
	if value <= 0 {
		return "не задано"
	}
	return fmt.Sprintf("%.1f %s", value, unit)
}
