// inapa-event-attendance/main.go

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/amirandap/inapa-event-attendance-sub000/config"
	"github.com/amirandap/inapa-event-attendance-sub000/internal/handlers"
	"github.com/amirandap/inapa-event-attendance-sub000/internal/routes"
	"github.com/amirandap/inapa-event-attendance-sub000/internal/store"
	"github.com/amirandap/inapa-event-attendance-sub000/internal/syncer"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

func main() {
	// .env опционален: в контейнере переменные приходят из окружения.
	if err := godotenv.Load(); err != nil {
		slog.Info("Файл .env не найден, используем переменные окружения")
	}

	config.InitApp()
	config.ConnectDB()
	config.ConnectRedis()
	config.InitGoogleCalendar()

	st := store.NewGormStore(config.DB)
	sync := syncer.NewSyncer(st, config.NewCalendarAPI, config.CurrentCalendarID)
	sync.SetInterval(config.SyncInterval())
	sync.SetWindowDays(config.SyncWindowDays())
	handlers.Init(sync, st)

	// Расписание синхронизации: частый инкремент + ежедневный полный проход.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 15m", func() {
		result := sync.RunSync(context.Background(), syncer.SyncOptions{})
		if !result.Success {
			slog.Warn("Инкрементальная синхронизация не удалась", "message", result.Message)
		}
	}); err != nil {
		slog.Error("Не удалось запланировать инкрементальную синхронизацию", "error", err)
	}
	if _, err := scheduler.AddFunc("0 3 * * *", func() {
		result := sync.RunSync(context.Background(), syncer.SyncOptions{Full: true})
		if !result.Success {
			slog.Warn("Полная синхронизация не удалась", "message", result.Message)
		}
	}); err != nil {
		slog.Error("Не удалось запланировать полную синхронизацию", "error", err)
	}
	scheduler.Start()

	r := gin.Default()
	routes.SetupRoutes(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	slog.Info("Сервер запущен", "port", port)
	if err := r.Run(":" + port); err != nil {
		slog.Error("Сервер остановился с ошибкой", "error", err)
		os.Exit(1)
	}
}
