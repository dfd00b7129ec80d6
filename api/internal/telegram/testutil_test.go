package telegram

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gallery-bot/api/internal/archive"
)

// fakeBot записывает всё, что роутер отправляет в Telegram.
type fakeBot struct {
	mu       sync.Mutex
	nextID   int
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

// texts — все текстовые payload'ы отправленных/отредактированных сообщений по порядку.
func (f *fakeBot) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			out = append(out, m.Text)
		case tgbotapi.EditMessageTextConfig:
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeBot) lastText() string {
	ts := f.texts()
	if len(ts) == 0 {
		return ""
	}
	return ts[len(ts)-1]
}

// lastKeyboard — кнопки последнего сообщения с inline-клавиатурой.
func (f *fakeBot) lastKeyboard() [][]tgbotapi.InlineKeyboardButton {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		switch m := f.sent[i].(type) {
		case tgbotapi.MessageConfig:
			if kb, ok := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
				return kb.InlineKeyboard
			}
		case tgbotapi.EditMessageTextConfig:
			if m.ReplyMarkup != nil {
				return m.ReplyMarkup.InlineKeyboard
			}
		}
	}
	return nil
}

func (f *fakeBot) countTexts(substr string) int {
	n := 0
	for _, t := range f.texts() {
		if strings.Contains(t, substr) {
			n++
		}
	}
	return n
}

func (f *fakeBot) photosSent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.sent {
		if _, ok := c.(tgbotapi.PhotoConfig); ok {
			n++
		}
	}
	return n
}

func (f *fakeBot) deletions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.requests {
		if _, ok := c.(tgbotapi.DeleteMessageConfig); ok {
			n++
		}
	}
	return n
}

// fakeFiles отдаёт подготовленные байты; failOn имитирует сбой на n-м вызове (с 1).
type fakeFiles struct {
	mu     sync.Mutex
	calls  int
	failOn int
}

func (f *fakeFiles) Fetch(fileID string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failOn != 0 && f.calls == f.failOn {
		return nil, errors.New("telegram file api: boom")
	}
	return []byte("photo:" + fileID), nil
}

// ---- сборка апдейтов ----

const testChat = int64(100500)

func cmdUpdate(cmd string) tgbotapi.Update {
	text := "/" + cmd
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(text)},
		},
		Chat: &tgbotapi.Chat{ID: testChat},
		From: &tgbotapi.User{ID: testChat},
	}}
}

func textUpdate(text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Text: text,
		Chat: &tgbotapi.Chat{ID: testChat},
		From: &tgbotapi.User{ID: testChat},
	}}
}

func photoUpdate(fileID string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Photo: []tgbotapi.PhotoSize{{FileID: fileID + "-small"}, {FileID: fileID}},
		Chat:  &tgbotapi.Chat{ID: testChat},
		From:  &tgbotapi.User{ID: testChat},
	}}
}

func callbackUpdate(data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb",
		Data: data,
		From: &tgbotapi.User{ID: testChat},
		Message: &tgbotapi.Message{
			MessageID: 1,
			Chat:      &tgbotapi.Chat{ID: testChat},
		},
	}}
}

// newTestRouter — роутер с фейковым транспортом и архивом во временной папке.
func newTestRouter(t *testing.T, quiet time.Duration) (*Router, *fakeBot, *fakeFiles) {
	t.Helper()
	bot := &fakeBot{}
	files := &fakeFiles{}
	r := NewRouter(bot, files, archive.New(t.TempDir()), nil, quiet)
	return r, bot, files
}

// session — текущая сессия тестового чата (без ленивого создания).
func session(r *Router) *Session {
	r.Sessions.mu.Lock()
	defer r.Sessions.mu.Unlock()
	return r.Sessions.byChat[testChat]
}
