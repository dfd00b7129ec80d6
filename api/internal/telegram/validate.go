package telegram

import (
	"strconv"
	"strings"
	"time"
)

// parseYear принимает целые в диапазоне 1900..текущий год. Нечисловой ввод и
// выход за диапазон неразличимы для вызывающего: и то и другое — не год.
func parseYear(text string, now time.Time) (int, bool) {
	y, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	if y < 1900 || y > now.Year() {
		return 0, false
	}
	return y, true
}

// parseMonth принимает целые 1..12.
func parseMonth(text string) (int, bool) {
	m, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, false
	}
	if m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}
