package telegram

import (
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// showPhotos — финал ветки просмотра: отправить все фотографии выбранной
// модели или месяца и завершить диалог.
func (r *Router) showPhotos(s *Session, msgID int) {
	photos, err := r.Archive.ListPhotos(s.UserID, s.Year, s.Category, s.subkey())
	if err != nil {
		log.Printf("list photos user=%d: %v", s.UserID, err)
		r.edit(s.ChatID, msgID, textReadError)
		r.send(s.ChatID, textStartHint)
		r.Sessions.Delete(s.ChatID)
		return
	}

	if len(photos) == 0 {
		r.edit(s.ChatID, msgID, textEmptyCategory)
	} else {
		r.edit(s.ChatID, msgID, fmt.Sprintf("Найдено %d фотографий. Отправляю...", len(photos)))
		for _, name := range photos {
			path := r.Archive.PhotoPath(s.UserID, s.Year, s.Category, s.subkey(), name)
			if _, err := r.Bot.Send(tgbotapi.NewPhoto(s.ChatID, tgbotapi.FilePath(path))); err != nil {
				log.Printf("send photo %s: %v", path, err)
			}
		}
	}

	r.send(s.ChatID, textStartHint)
	r.Sessions.Delete(s.ChatID)
}
