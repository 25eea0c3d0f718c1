// inapa-event-attendance/config/database.go

package config

import (
	"log/slog"
	"os"

	"github.com/amirandap/inapa-event-attendance-sub000/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		slog.Error("Критическая ошибка: переменная окружения DB_URL не установлена.")
		os.Exit(1)
	}

	// TranslateError нужен, чтобы нарушения уникальных ограничений приходили
	// как gorm.ErrDuplicatedKey, а не как сырые ошибки драйвера.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		slog.Error("Ошибка подключения к БД", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Organizer{},
		&models.Event{},
		&models.Invitee{},
		&models.Checkin{},
		&models.SyncState{},
		&models.AuditLog{},
		&models.IntegrationSetting{},
	); err != nil {
		slog.Error("Ошибка миграции схемы БД", "error", err)
		os.Exit(1)
	}

	DB = db
	slog.Info("Успешное подключение к базе данных!")
}
