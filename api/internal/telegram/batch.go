package telegram

import (
	"fmt"
	"log"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// batchAccepted учитывает успешно сохранённое фото. Вызывается из onPhoto под
// мьютексом сессии. Серия создаётся на первом фото; на каждом следующем
// счётчик растёт, сообщение-статус правится, а окно тишины перезапускается:
// прежний таймер снимается и взводится новый — одним шагом под тем же
// мьютексом, поэтому двух живых таймеров у сессии не бывает.
func (r *Router) batchAccepted(s *Session) {
	if s.Batch == nil {
		s.Batch = &uploadBatch{}
	}
	b := s.Batch
	b.count++

	status := fmt.Sprintf("Загружено фотографий: %d", b.count)
	if b.statusMsgID == 0 {
		if m, err := r.Bot.Send(tgbotapi.NewMessage(s.ChatID, status)); err == nil {
			b.statusMsgID = m.MessageID
		} else {
			log.Printf("status send chat=%d: %v", s.ChatID, err)
		}
	} else {
		if _, err := r.Bot.Send(tgbotapi.NewEditMessageText(s.ChatID, b.statusMsgID, status)); err != nil {
			log.Printf("status edit chat=%d: %v", s.ChatID, err)
		}
	}

	if b.timer != nil {
		b.timer.Stop()
	}
	s.timerGen++
	gen := s.timerGen
	b.timer = time.AfterFunc(r.QuietWindow, func() { r.finalizeBatch(s, gen) })
}

// finalizeBatch — срабатывание окна тишины. Таймер конкурирует с входящими
// событиями, поэтому весь финал идёт под мьютексом сессии: фото, пришедшее во
// время финализации, дождётся её конца и откроет новую серию. Устаревшее
// срабатывание (серия снята, или таймер был перевзведён, но Stop опоздал)
// молча игнорируется.
func (r *Router) finalizeBatch(s *Session, gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.Batch
	if b == nil || gen != s.timerGen {
		return
	}
	s.Batch = nil
	s.LastUploaded = b.count

	if b.statusMsgID != 0 {
		_, _ = r.Bot.Request(tgbotapi.NewDeleteMessage(s.ChatID, b.statusMsgID))
	}
	msg := tgbotapi.NewMessage(s.ChatID, fmt.Sprintf("✨ Загружено фотографий: %d", b.count))
	msg.ReplyMarkup = makeDoneKeyboard()
	_, _ = r.Bot.Send(msg)
}
