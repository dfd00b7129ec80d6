package telegram

import (
	"sync"
	"time"

	"gallery-bot/api/internal/archive"
)

// Step — шаг диалога. Любое событие обрабатывается только против текущего шага.
type Step int

const (
	StepChooseAction Step = iota
	StepChooseType
	StepChooseYear
	StepChooseModel
	StepChooseMonth
	StepSavePhoto
)

// Action — что пользователь делает с галереей.
type Action string

const (
	ActionView Action = "view"
	ActionAdd  Action = "add"
)

// Session — контекст диалога одного чата: текущий шаг и уже выбранные
// значения. Все поля читаются и меняются только под mu: обычные события
// сериализованы по чату, но таймер тишины срабатывает асинхронно.
type Session struct {
	mu sync.Mutex

	ChatID int64
	UserID int64

	Step     Step
	Action   Action
	Category archive.Category

	Year      int    // валиден после успешной проверки 1900..текущий
	ModelName string // только для Category == model
	Month     int    // только для Category == landscape, 1..12

	// Batch != nil только при Step == StepSavePhoto и Action == add.
	Batch *uploadBatch

	// Количество из последней завершённой серии — для кнопки «Готово».
	LastUploaded int

	// Поколение таймера тишины. Растёт на каждом перевзводе и не
	// обнуляется между сериями: опоздавшее срабатывание остановленного
	// таймера по нему отличается от актуального, даже если за это время
	// началась новая серия.
	timerGen int
}

// uploadBatch — незавершённая серия загрузок. У сессии не бывает двух серий
// одновременно, и у серии не бывает двух взведённых таймеров: при каждом фото
// прежний таймер останавливается и взводится новый.
type uploadBatch struct {
	count       int
	statusMsgID int // сообщение-счётчик «Загружено фотографий: N», 0 — ещё нет
	timer       *time.Timer
}

// reset снимает серию и её таймер; LastUploaded тоже забывается.
func (s *Session) reset() {
	if s.Batch != nil && s.Batch.timer != nil {
		s.Batch.timer.Stop()
	}
	s.Batch = nil
	s.LastUploaded = 0
	s.Step = StepChooseAction
	s.Action = ""
	s.Category = ""
	s.Year = 0
	s.ModelName = ""
	s.Month = 0
}

// Sessions — реестр сессий по чату. Сессия создаётся лениво при первом событии.
type Sessions struct {
	mu     sync.Mutex
	byChat map[int64]*Session
}

func NewSessions() *Sessions {
	return &Sessions{byChat: make(map[int64]*Session)}
}

func (m *Sessions) Get(chatID, userID int64) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byChat[chatID]
	if !ok {
		s = &Session{ChatID: chatID, UserID: userID, Step: StepChooseAction}
		m.byChat[chatID] = s
	}
	return s
}

func (m *Sessions) Delete(chatID int64) {
	m.mu.Lock()
	delete(m.byChat, chatID)
	m.mu.Unlock()
}
