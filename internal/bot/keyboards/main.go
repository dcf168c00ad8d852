package keyboards

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/vladimiradmaev/glucose-simulator/internal/domain"
)

// MainMenu creates the main menu keyboard
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📈 Прогноз", "forecast"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🍽️ Еда", "meal_menu"),
			tgbotapi.NewInlineKeyboardButtonData("💉 Инсулин", "insulin_menu"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🏃 Активность", "exercise_menu"),
			tgbotapi.NewInlineKeyboardButtonData("📋 История", "history"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚙️ Профиль", "profile"),
		),
	)
}

// MealMenu creates the meal logging keyboard
func MealMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📷 Фото блюда", "meal_photo"),
			tgbotapi.NewInlineKeyboardButtonData("🔢 Ввести граммы", "meal_carbs"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Главное меню", "main_menu"),
		),
	)
}

// MealConfirm creates the keyboard shown under a photo analysis result
func MealConfirm(carbs float64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ Записать %.0f г", carbs), "confirm_meal"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Ввести вручную", "meal_carbs"),
			tgbotapi.NewInlineKeyboardButtonData("◀️ Отмена", "main_menu"),
		),
	)
}

// InsulinMenu creates the insulin type keyboard
func InsulinMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⚡ Болюс", "insulin_bolus"),
			tgbotapi.NewInlineKeyboardButtonData("🕐 Длинный", "insulin_long"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🩹 Коррекция", "insulin_correction"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Главное меню", "main_menu"),
		),
	)
}

// ExerciseMenu creates the exercise intensity keyboard
func ExerciseMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚶 Лёгкая", "exercise_light"),
			tgbotapi.NewInlineKeyboardButtonData("🏃 Средняя", "exercise_moderate"),
			tgbotapi.NewInlineKeyboardButtonData("🔥 Интенсивная", "exercise_intense"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Главное меню", "main_menu"),
		),
	)
}

// ProfileMenu creates the profile editing keyboard
func ProfileMenu(unit domain.GlucoseUnit) tgbotapi.InlineKeyboardMarkup {
	unitLabel := "🔄 Показывать в ммоль/л"
	if unit == domain.UnitMmol {
		unitLabel = "🔄 Показывать в мг/дл"
	}

	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💉 Чувствительность", "profile_edit_isf"),
			tgbotapi.NewInlineKeyboardButtonData("🍞 Угл. коэффициент", "profile_edit_carb_ratio"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🕐 Базал", "profile_edit_basal"),
			tgbotapi.NewInlineKeyboardButtonData("🎯 Целевой диапазон", "profile_edit_target"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Возраст", "profile_edit_age"),
			tgbotapi.NewInlineKeyboardButtonData("⚖️ Вес", "profile_edit_weight"),
			tgbotapi.NewInlineKeyboardButtonData("📏 Рост", "profile_edit_height"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(unitLabel, "toggle_unit"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Главное меню", "main_menu"),
		),
	)
}

// BackToMain creates a single back button keyboard
func BackToMain() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("◀️ Главное меню", "main_menu"),
		),
	)
}

// AfterLog creates the keyboard shown after a successful log entry
func AfterLog() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📈 Прогноз", "forecast"),
			tgbotapi.NewInlineKeyboardButtonData("◀️ Главное меню", "main_menu"),
		),
	)
}
