package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gallery-bot/api/internal/archive"
	"gallery-bot/api/internal/store"
)

// ---------------- Команды ----------------

func (r *Router) onStart(s *Session) {
	if err := r.Archive.EnsureUser(s.UserID); err != nil {
		log.Printf("ensure user %d: %v", s.UserID, err)
	}
	s.reset()
	r.sendWithKeyboard(s.ChatID, textWelcome, makeActionKeyboard())
}

func (r *Router) onCancel(s *Session) {
	s.reset()
	r.Sessions.Delete(s.ChatID)
	r.send(s.ChatID, textCancelled)
}

// ---------------- Callback-кнопки ----------------

func (r *Router) onCallback(s *Session, data string, msgID int) {
	switch data {
	case "back", "type_back":
		r.onBack(s, msgID)
		return
	case "done":
		r.onDoneConfirmed(s, msgID)
		return
	}

	// Токены вида kind_value; value может содержать «_» (имена моделей).
	kind, value, _ := strings.Cut(data, "_")

	switch s.Step {
	case StepChooseAction:
		if kind == "action" && (value == string(ActionView) || value == string(ActionAdd)) {
			r.onActionChosen(s, Action(value), msgID)
			return
		}
	case StepChooseType:
		if kind == "type" && (value == "model" || value == "landscape") {
			r.onTypeChosen(s, value, msgID)
			return
		}
	case StepChooseYear:
		if kind == "year" {
			if y, ok := parseYear(value, time.Now()); ok {
				r.onYearChosen(s, y, msgID)
				return
			}
		}
	case StepChooseModel:
		if kind == "model" && s.Action == ActionView && value != "" {
			s.ModelName = value
			r.showPhotos(s, msgID)
			return
		}
	case StepChooseMonth:
		if kind == "month" && s.Action == ActionView {
			if m, ok := parseMonth(value); ok {
				s.Month = m
				r.showPhotos(s, msgID)
				return
			}
		}
	case StepSavePhoto:
		// на этом шаге ждём только done — обработан выше
	}

	// чужая или устаревшая кнопка: нейтрально напоминаем текущий шаг
	r.repromptCurrent(s)
}

func (r *Router) onActionChosen(s *Session, a Action, msgID int) {
	s.Action = a
	s.Step = StepChooseType
	r.editWithKeyboard(s.ChatID, msgID, typePromptText(s), makeTypeKeyboard())
}

func (r *Router) onTypeChosen(s *Session, value string, msgID int) {
	if value == "model" {
		s.Category = archive.CategoryModel
	} else {
		s.Category = archive.CategoryLandscape
	}
	s.Step = StepChooseYear
	r.showYearStep(s, msgID)
}

// onYearChosen — год выбран кнопкой: в просмотре из списка архива,
// в добавлении из истории быстрого выбора.
func (r *Router) onYearChosen(s *Session, year int, msgID int) {
	s.Year = year
	if s.Action == ActionAdd {
		r.commitAddYear(s, msgID)
		return
	}

	keys, err := r.availableSubkeys(s)
	if err != nil {
		log.Printf("list subkeys user=%d year=%d: %v", s.UserID, s.Year, err)
		r.editWithKeyboard(s.ChatID, msgID, textReadError, makeBackKeyboard())
		return
	}
	if s.Category == archive.CategoryModel {
		s.Step = StepChooseModel
		r.editWithKeyboard(s.ChatID, msgID, textChooseModel, makeModelPickKeyboard(keys))
	} else {
		s.Step = StepChooseMonth
		r.editWithKeyboard(s.ChatID, msgID, textChooseMonth, makeMonthPickKeyboard(keys))
	}
}

// ---------------- Текстовый ввод ----------------

func (r *Router) onText(s *Session, text string) {
	switch s.Step {
	case StepChooseYear:
		if s.Action == ActionAdd {
			r.onYearText(s, text)
			return
		}
	case StepChooseModel:
		if s.Action == ActionAdd {
			r.onModelText(s, text)
			return
		}
	case StepChooseMonth:
		if s.Action == ActionAdd {
			r.onMonthText(s, text)
			return
		}
	case StepSavePhoto:
		// любой текст во время загрузки — не ошибка: напоминаем запрос,
		// серию и её таймер не трогаем
		r.sendWithKeyboard(s.ChatID, uploadPromptText(s), makeBackKeyboard())
		return
	}
	r.repromptCurrent(s)
}

func (r *Router) onYearText(s *Session, text string) {
	y, ok := parseYear(text, time.Now())
	if !ok {
		// нечисловой ввод и выход за диапазон — один класс ошибки, шаг не меняется
		r.sendWithKeyboard(s.ChatID, textBadYear, makeBackKeyboard())
		return
	}
	s.Year = y
	r.commitAddYear(s, 0)
}

// commitAddYear — год принят в режиме добавления: создаём скелет года и
// спрашиваем модель или месяц. msgID != 0 — правим существующее сообщение.
func (r *Router) commitAddYear(s *Session, msgID int) {
	if err := r.Archive.EnsureYear(s.UserID, s.Year); err != nil {
		log.Printf("ensure year user=%d year=%d: %v", s.UserID, s.Year, err)
		r.sendWithKeyboard(s.ChatID, textReadError, makeBackKeyboard())
		return
	}
	r.touchHistory(s.UserID, store.KindYear, strconv.Itoa(s.Year))

	if s.Category == archive.CategoryModel {
		s.Step = StepChooseModel
		r.showPrompt(s, msgID, textEnterModel)
	} else {
		s.Step = StepChooseMonth
		r.showPrompt(s, msgID, textEnterMonth)
	}
}

func (r *Router) onModelText(s *Session, text string) {
	name := strings.TrimSpace(text)
	if name == "" {
		r.sendWithKeyboard(s.ChatID, "❌ Имя модели не может быть пустым.\n"+textEnterModel, makeBackKeyboard())
		return
	}
	if err := r.Archive.EnsureSubkey(s.UserID, s.Year, archive.CategoryModel, name); err != nil {
		log.Printf("ensure model dir user=%d: %v", s.UserID, err)
		r.sendWithKeyboard(s.ChatID, textReadError, makeBackKeyboard())
		return
	}
	s.ModelName = name
	r.touchHistory(s.UserID, store.KindModel, name)
	s.Step = StepSavePhoto
	r.sendWithKeyboard(s.ChatID, uploadPromptText(s), makeBackKeyboard())
}

func (r *Router) onMonthText(s *Session, text string) {
	m, ok := parseMonth(text)
	if !ok {
		r.sendWithKeyboard(s.ChatID, textBadMonth, makeBackKeyboard())
		return
	}
	if err := r.Archive.EnsureSubkey(s.UserID, s.Year, archive.CategoryLandscape, strconv.Itoa(m)); err != nil {
		log.Printf("ensure month dir user=%d: %v", s.UserID, err)
		r.sendWithKeyboard(s.ChatID, textReadError, makeBackKeyboard())
		return
	}
	s.Month = m
	r.touchHistory(s.UserID, store.KindMonth, strconv.Itoa(m))
	s.Step = StepSavePhoto
	r.sendWithKeyboard(s.ChatID, uploadPromptText(s), makeBackKeyboard())
}

// ---------------- Фотографии ----------------

func (r *Router) onPhoto(s *Session, photos []tgbotapi.PhotoSize) {
	if s.Step != StepSavePhoto || s.Action != ActionAdd {
		// фото вне шага загрузки — не ошибка, нейтральное напоминание
		r.send(s.ChatID, textPhotoTooEarly)
		return
	}

	// самое большое превью
	ph := photos[len(photos)-1]
	data, err := r.Files.Fetch(ph.FileID)
	if err != nil {
		log.Printf("fetch photo chat=%d: %v", s.ChatID, err)
		r.send(s.ChatID, textSaveError)
		return
	}
	if _, err := r.Archive.PutPhoto(s.UserID, s.Year, s.Category, s.subkey(), data); err != nil {
		// серию не трогаем: счётчик и таймер отвечают только за успешные записи
		log.Printf("put photo chat=%d: %v", s.ChatID, err)
		r.send(s.ChatID, textSaveError)
		return
	}
	r.batchAccepted(s)
}

// ---------------- Назад / Готово ----------------

func (r *Router) onBack(s *Session, msgID int) {
	switch s.Step {
	case StepChooseType:
		s.Step = StepChooseAction
		r.editWithKeyboard(s.ChatID, msgID, textWelcome, makeActionKeyboard())
	case StepChooseYear:
		s.Step = StepChooseType
		r.editWithKeyboard(s.ChatID, msgID, typePromptText(s), makeTypeKeyboard())
	case StepChooseModel, StepChooseMonth:
		s.Step = StepChooseYear
		r.showYearStep(s, msgID)
	case StepSavePhoto:
		if s.Batch != nil {
			// серия ещё идёт — дождитесь её завершения
			r.sendWithKeyboard(s.ChatID, uploadPromptText(s), makeBackKeyboard())
			return
		}
		if s.Category == archive.CategoryModel {
			s.Step = StepChooseModel
			r.showPrompt(s, msgID, textEnterModel)
		} else {
			s.Step = StepChooseMonth
			r.showPrompt(s, msgID, textEnterMonth)
		}
	default:
		// начальный шаг: назад некуда
		r.repromptCurrent(s)
	}
}

func (r *Router) onDoneConfirmed(s *Session, msgID int) {
	// «Готово» валидно только после завершения серии
	if s.Step != StepSavePhoto || s.Batch != nil {
		r.repromptCurrent(s)
		return
	}
	s.LastUploaded = 0

	total, err := r.Archive.CountAll(s.UserID)
	if err != nil {
		log.Printf("count all user=%d: %v", s.UserID, err)
		r.edit(s.ChatID, msgID, textReadError+"\n\n📁 Используйте /start для возврата в главное меню")
		r.Sessions.Delete(s.ChatID)
		return
	}
	r.edit(s.ChatID, msgID, fmt.Sprintf(
		"✨ Загрузка завершена\n📷 Всего в вашей галерее: %d фотографий\n\n📁 Используйте /start для возврата в главное меню",
		total,
	))
	r.Sessions.Delete(s.ChatID)
}

// ---------------- Построение шагов ----------------

// showYearStep показывает шаг выбора года согласно действию: свободный ввод
// (с историей быстрого выбора) для добавления, меню непустых лет для просмотра.
// msgID != 0 — правка сообщения, иначе новое.
func (r *Router) showYearStep(s *Session, msgID int) {
	if s.Action == ActionAdd {
		hist := r.historyList(s.UserID, store.KindYear)
		text := textEnterYear
		if len(hist) > 0 {
			text = textYearFromHist
		}
		r.showMenu(s, msgID, text, makeYearPromptKeyboard(hist))
		return
	}

	years, err := r.availableYears(s)
	if err != nil {
		log.Printf("list years user=%d: %v", s.UserID, err)
		r.showMenu(s, msgID, textReadError, makeBackKeyboard())
		return
	}
	if len(years) == 0 {
		// пустая галерея — диалог завершён
		if msgID != 0 {
			r.edit(s.ChatID, msgID, textEmptyGallery)
		} else {
			r.send(s.ChatID, textEmptyGallery)
		}
		r.Sessions.Delete(s.ChatID)
		return
	}
	r.showMenu(s, msgID, textChooseYear, makeYearPickKeyboard(years))
}

func (r *Router) showPrompt(s *Session, msgID int, text string) {
	r.showMenu(s, msgID, text, makeBackKeyboard())
}

func (r *Router) showMenu(s *Session, msgID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	if msgID != 0 {
		r.editWithKeyboard(s.ChatID, msgID, text, kb)
	} else {
		r.sendWithKeyboard(s.ChatID, text, kb)
	}
}

// repromptCurrent — нейтральное повторение текущего шага новым сообщением.
func (r *Router) repromptCurrent(s *Session) {
	switch s.Step {
	case StepChooseAction:
		r.sendWithKeyboard(s.ChatID, textWelcome, makeActionKeyboard())
	case StepChooseType:
		r.sendWithKeyboard(s.ChatID, typePromptText(s), makeTypeKeyboard())
	case StepChooseYear:
		r.showYearStep(s, 0)
	case StepChooseModel:
		if s.Action == ActionAdd {
			r.showPrompt(s, 0, textEnterModel)
			return
		}
		r.showSubkeyPicker(s, 0)
	case StepChooseMonth:
		if s.Action == ActionAdd {
			r.showPrompt(s, 0, textEnterMonth)
			return
		}
		r.showSubkeyPicker(s, 0)
	case StepSavePhoto:
		r.sendWithKeyboard(s.ChatID, uploadPromptText(s), makeBackKeyboard())
	}
}

func (r *Router) showSubkeyPicker(s *Session, msgID int) {
	keys, err := r.availableSubkeys(s)
	if err != nil {
		log.Printf("list subkeys user=%d year=%d: %v", s.UserID, s.Year, err)
		r.showMenu(s, msgID, textReadError, makeBackKeyboard())
		return
	}
	if s.Category == archive.CategoryModel {
		r.showMenu(s, msgID, textChooseModel, makeModelPickKeyboard(keys))
	} else {
		r.showMenu(s, msgID, textChooseMonth, makeMonthPickKeyboard(keys))
	}
}

// ---------------- Выборки из архива ----------------

// availableYears — годы, в которых по выбранной категории есть хотя бы одно фото.
func (r *Router) availableYears(s *Session) ([]int, error) {
	all, err := r.Archive.ListYears(s.UserID)
	if err != nil {
		return nil, err
	}
	var years []int
	for _, y := range all {
		ok, err := r.Archive.HasAny(s.UserID, y, s.Category)
		if err != nil {
			return nil, err
		}
		if ok {
			years = append(years, y)
		}
	}
	return years, nil
}

// availableSubkeys — модели или месяцы выбранного года, в которых есть фото.
func (r *Router) availableSubkeys(s *Session) ([]string, error) {
	keys, err := r.Archive.ListSubkeys(s.UserID, s.Year, s.Category)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, k := range keys {
		photos, err := r.Archive.ListPhotos(s.UserID, s.Year, s.Category, k)
		if err != nil {
			return nil, err
		}
		if len(photos) > 0 {
			out = append(out, k)
		}
	}
	return out, nil
}

// ---------------- История быстрого выбора ----------------

func (r *Router) historyList(userID int64, kind string) []string {
	if r.History == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	vals, err := r.History.List(ctx, userID, kind, 5)
	if err != nil {
		// история — только удобство: при сбое просто без подсказок
		log.Printf("history list user=%d kind=%s: %v", userID, kind, err)
		return nil
	}
	return vals
}

func (r *Router) touchHistory(userID int64, kind, value string) {
	if r.History == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.History.Touch(ctx, userID, kind, value); err != nil {
		log.Printf("history touch user=%d kind=%s: %v", userID, kind, err)
	}
}

// ---------------- Мелочи ----------------

func typePromptText(s *Session) string {
	if s.Action == ActionView {
		return textChooseTypeView
	}
	return textChooseTypeAdd
}

// subkey — имя папки внутри категории: имя модели либо номер месяца.
func (s *Session) subkey() string {
	if s.Category == archive.CategoryModel {
		return s.ModelName
	}
	return strconv.Itoa(s.Month)
}
