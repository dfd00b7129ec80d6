package telegram

import (
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gallery-bot/api/internal/archive"
)

var monthNames = [12]string{
	"Январь", "Февраль", "Март", "Апрель", "Май", "Июнь",
	"Июль", "Август", "Сентябрь", "Октябрь", "Ноябрь", "Декабрь",
}

const (
	textWelcome        = "👋 Добро пожаловать! Выберите действие:"
	textChooseTypeView = "Выберите тип фотографий для просмотра:"
	textChooseTypeAdd  = "Выберите тип фотографий для добавления:"
	textEnterYear      = "📅 Введите год (от 1900 до текущего):"
	textYearFromHist   = "📅 Выберите год из истории или введите новый:"
	textBadYear        = "❌ Неверный формат года. Введите год от 1900 до текущего:"
	textChooseYear     = "📅 Выберите год:"
	textEnterModel     = "👤 Введите имя модели:"
	textChooseModel    = "👤 Выберите модель:"
	textEnterMonth     = "📅 Введите номер месяца (от 1 до 12):\n1 - Январь, 2 - Февраль, ..., 12 - Декабрь"
	textBadMonth       = "❌ Неверный формат месяца. Пожалуйста, введите число от 1 до 12:\n1 - Январь, 2 - Февраль, ..., 12 - Декабрь"
	textChooseMonth    = "📅 Выберите месяц:"
	textEmptyGallery   = "В галерее пока нет фотографий."
	textEmptyCategory  = "В вашей галерее пока нет фотографий в этой категории."
	textSaveError      = "Произошла ошибка при сохранении фотографии. Попробуйте еще раз."
	textReadError      = "❌ Не удалось прочитать архив. Попробуйте позже."
	textCancelled      = "Операция отменена. Используйте /start для начала работы."
	textStartHint      = "Используйте /start для нового поиска."
	textPhotoTooEarly  = "Сначала выберите, куда сохранять фотографии: /start"
)

func backButton(token string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData("◀️ Назад", token)
}

func makeActionKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔍 Посмотреть фотографии", "action_view"),
		tgbotapi.NewInlineKeyboardButtonData("📸 Добавить фотографии", "action_add"),
	))
}

func makeTypeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 Модель", "type_model"),
			tgbotapi.NewInlineKeyboardButtonData("🏞️ Пейзаж", "type_landscape"),
		),
		tgbotapi.NewInlineKeyboardRow(backButton("type_back")),
	)
}

// makeYearPromptKeyboard — клавиатура шага ввода года в режиме добавления:
// годы из истории (если есть) плюс «Назад».
func makeYearPromptKeyboard(historyYears []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, y := range historyYears {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 "+y, "year_"+y),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(backButton("back")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func makeYearPickKeyboard(years []int) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, y := range years {
		ys := strconv.Itoa(y)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 "+ys, "year_"+ys),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(backButton("back")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func makeModelPickKeyboard(models []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range models {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("👤 "+m, "model_"+m),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(backButton("back")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// makeMonthPickKeyboard строит кнопки по номерам месяцев, присутствующим в архиве.
func makeMonthPickKeyboard(months []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range months {
		label := m
		if n, err := strconv.Atoi(m); err == nil && n >= 1 && n <= 12 {
			label = monthNames[n-1]
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📅 "+label, "month_"+m),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(backButton("back")))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func makeBackKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(backButton("back")))
}

func makeDoneKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✅ Готово", "done"),
	))
}

func uploadPromptText(s *Session) string {
	if s.Category == archive.CategoryModel {
		return fmt.Sprintf("📷 Отправьте фотографии модели %s за %d год.", s.ModelName, s.Year)
	}
	return fmt.Sprintf("📷 Отправьте пейзажные фотографии за %s %d года.", monthNames[s.Month-1], s.Year)
}
