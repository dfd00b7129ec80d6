package telegram

import (
	"fmt"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startUpload доводит диалог до шага загрузки (модель Jane, текущий год).
func startUpload(t *testing.T, r *Router) {
	t.Helper()
	drive(r,
		cmdUpdate("start"),
		callbackUpdate("action_add"),
		callbackUpdate("type_model"),
		textUpdate(strconv.Itoa(time.Now().Year())),
		textUpdate("Jane"),
	)
	require.Equal(t, StepSavePhoto, session(r).Step)
}

func TestBurstCoalescesIntoSingleFinalization(t *testing.T) {
	r, bot, _ := newTestRouter(t, 80*time.Millisecond)
	startUpload(t, r)

	// три фото с интервалом заметно меньше окна тишины
	for i := 0; i < 3; i++ {
		drive(r, photoUpdate(fmt.Sprintf("p%d", i)))
		time.Sleep(20 * time.Millisecond)
	}
	time.Sleep(250 * time.Millisecond)

	assert.Equal(t, 1, bot.countTexts("✨ Загружено фотографий: 3"),
		"exactly one finalization for the whole burst")
	assert.Equal(t, 1, bot.deletions(), "status message removed once")

	s := session(r)
	require.NotNil(t, s)
	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Nil(t, s.Batch)
	assert.Equal(t, 3, s.LastUploaded)
	assert.Equal(t, StepSavePhoto, s.Step)
}

func TestNewPhotoRestartsQuietWindow(t *testing.T) {
	r, bot, _ := newTestRouter(t, 150*time.Millisecond)
	startUpload(t, r)

	drive(r, photoUpdate("p1"))
	time.Sleep(100 * time.Millisecond) // меньше окна — финализации ещё нет
	drive(r, photoUpdate("p2"))

	time.Sleep(80 * time.Millisecond) // 180мс после p1: старый дедлайн прошёл, новый — нет
	assert.Zero(t, bot.countTexts("✨ Загружено фотографий"),
		"first timer must have been cancelled, not fired")

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 1, bot.countTexts("✨ Загружено фотографий: 2"))
}

func TestCancelSuppressesPendingFinalization(t *testing.T) {
	r, bot, _ := newTestRouter(t, 80*time.Millisecond)
	startUpload(t, r)

	drive(r, photoUpdate("p1"), cmdUpdate("cancel"))
	time.Sleep(250 * time.Millisecond)

	// устаревшее срабатывание таймера — молчаливый no-op
	assert.Zero(t, bot.countTexts("✨ Загружено фотографий"))
}

func TestStorageFailureKeepsBatchIntact(t *testing.T) {
	r, bot, files := newTestRouter(t, 80*time.Millisecond)
	files.failOn = 2
	startUpload(t, r)

	for i := 0; i < 3; i++ {
		drive(r, photoUpdate(fmt.Sprintf("p%d", i)))
	}
	time.Sleep(250 * time.Millisecond)

	assert.Equal(t, 1, bot.countTexts("Произошла ошибка при сохранении"))
	// считаются только успешные записи
	assert.Equal(t, 1, bot.countTexts("✨ Загружено фотографий: 2"))

	total, err := r.Archive.CountAll(testChat)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestTextDuringUploadDoesNotResetBatch(t *testing.T) {
	r, bot, _ := newTestRouter(t, 120*time.Millisecond)
	startUpload(t, r)

	before := bot.countTexts("Отправьте фотографии модели Jane")
	drive(r, photoUpdate("p1"), textUpdate("это всё?"), photoUpdate("p2"))
	assert.Equal(t, before+1, bot.countTexts("Отправьте фотографии модели Jane"),
		"text re-shows the upload prompt")

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, 1, bot.countTexts("✨ Загружено фотографий: 2"))
}

func TestDoneReportsGalleryTotalAndEndsSession(t *testing.T) {
	r, bot, _ := newTestRouter(t, 60*time.Millisecond)
	startUpload(t, r)

	for i := 0; i < 3; i++ {
		drive(r, photoUpdate(fmt.Sprintf("p%d", i)))
	}
	time.Sleep(250 * time.Millisecond)
	require.Equal(t, 1, bot.countTexts("✨ Загружено фотографий: 3"))

	drive(r, callbackUpdate("done"))
	assert.Equal(t, 1, bot.countTexts("Всего в вашей галерее: 3 фотографий"))
	assert.Nil(t, session(r), "done is terminal")
}

func TestDoneDuringActiveBurstIsNeutral(t *testing.T) {
	r, bot, _ := newTestRouter(t, time.Hour)
	startUpload(t, r)

	drive(r, photoUpdate("p1"), callbackUpdate("done"))

	s := session(r)
	require.NotNil(t, s)
	assert.NotNil(t, s.Batch, "batch survives a premature done tap")
	assert.Zero(t, bot.countTexts("Всего в вашей галерее"))
}

func TestSecondBurstAfterFinalizationStartsFresh(t *testing.T) {
	r, bot, _ := newTestRouter(t, 60*time.Millisecond)
	startUpload(t, r)

	drive(r, photoUpdate("p1"))
	time.Sleep(200 * time.Millisecond)
	require.Equal(t, 1, bot.countTexts("✨ Загружено фотографий: 1"))

	drive(r, photoUpdate("p2"))
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 2, bot.countTexts("✨ Загружено фотографий: 1"),
		"second burst counts from scratch")
	assert.Zero(t, bot.countTexts("✨ Загружено фотографий: 2"))
	assert.Equal(t, 2, bot.deletions())
}
