// inapa-event-attendance/config/app.go
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

// JwtKey — ключ подписи JWT для защищенной части API.
var JwtKey []byte

func InitApp() {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		slog.Error("Критическая ошибка: переменная окружения JWT_SECRET не установлена.")
		os.Exit(1)
	}
	JwtKey = []byte(secret)
}

// SyncInterval — минимальный интервал между инкрементальными синхронизациями.
func SyncInterval() time.Duration {
	if v, err := strconv.Atoi(os.Getenv("SYNC_INTERVAL_MIN")); err == nil && v > 0 {
		return time.Duration(v) * time.Minute
	}
	return 15 * time.Minute
}

// SyncWindowDays — окно выборки событий (± дней от текущего момента).
func SyncWindowDays() int {
	if v, err := strconv.Atoi(os.Getenv("SYNC_WINDOW_DAYS")); err == nil && v > 0 {
		return v
	}
	return 30
}
