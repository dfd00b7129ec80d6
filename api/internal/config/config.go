package config

import (
	"log"
	"os"
	"time"
)

type Config struct {
	Port string

	TelegramBotToken string

	// Корень файлового архива фотографий
	PhotosDir string

	// Окно тишины, после которого серия загрузок считается завершённой
	BatchQuietWindow time.Duration
}

func mustEnv(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env %s", k)
	}
	return v
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("env %s: bad duration %q: %v", k, v, err)
	}
	return d
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8000"),

		TelegramBotToken: mustEnv("TELEGRAM_BOT_TOKEN"),

		PhotosDir:        getEnv("PHOTOS_DIR", "photos"),
		BatchQuietWindow: getEnvDuration("BATCH_QUIET_WINDOW", 3*time.Second),
	}
}
