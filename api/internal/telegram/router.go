package telegram

import (
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gallery-bot/api/internal/archive"
	"gallery-bot/api/internal/store"
)

// botAPI — минимальная поверхность Telegram API, которой пользуется роутер.
// *tgbotapi.BotAPI удовлетворяет ей как есть; в тестах подставляется фейк.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// FileFetcher скачивает байты фотографии по file_id.
type FileFetcher interface {
	Fetch(fileID string) ([]byte, error)
}

type Router struct {
	Bot     botAPI
	Files   FileFetcher
	Archive *archive.Store

	// История значений для клавиатур быстрого выбора; nil — история отключена.
	History *store.HistoryRepo

	Sessions *Sessions

	// Окно тишины, после которого серия загрузок считается завершённой.
	QuietWindow time.Duration
}

func NewRouter(bot botAPI, files FileFetcher, arch *archive.Store, history *store.HistoryRepo, quiet time.Duration) *Router {
	return &Router{
		Bot:         bot,
		Files:       files,
		Archive:     arch,
		History:     history,
		Sessions:    NewSessions(),
		QuietWindow: quiet,
	}
}

// HandleUpdate — единственная точка входа транспорта. События одного чата
// приходят по порядку; конкурирует с ними только таймер тишины, поэтому вся
// обработка идёт под мьютексом сессии.
func (r *Router) HandleUpdate(upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(*upd.CallbackQuery)
		return
	}
	if upd.Message == nil || upd.Message.From == nil {
		return
	}
	msg := upd.Message
	s := r.Sessions.Get(msg.Chat.ID, msg.From.ID)

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case msg.IsCommand():
		switch msg.Command() {
		case "start":
			r.onStart(s)
		case "cancel":
			r.onCancel(s)
		default:
			r.send(s.ChatID, "Неизвестная команда. Используйте /start.")
		}
	case len(msg.Photo) > 0:
		r.onPhoto(s, msg.Photo)
	case msg.Text != "":
		r.onText(s, msg.Text)
	}
}

func (r *Router) handleCallback(cb tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.From == nil {
		return
	}
	// ack, чтобы у пользователя погасли «часики»
	_, _ = r.Bot.Request(tgbotapi.NewCallback(cb.ID, ""))

	s := r.Sessions.Get(cb.Message.Chat.ID, cb.From.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	r.onCallback(s, cb.Data, cb.Message.MessageID)
}

func (r *Router) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	_, _ = r.Bot.Send(msg)
}

func (r *Router) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	_, _ = r.Bot.Send(msg)
}

func (r *Router) editWithKeyboard(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb)
	_, _ = r.Bot.Send(edit)
}

func (r *Router) edit(chatID int64, messageID int, text string) {
	_, _ = r.Bot.Send(tgbotapi.NewEditMessageText(chatID, messageID, text))
}
