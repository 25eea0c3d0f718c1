// inapa-event-attendance/config/google.go
package config

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/amirandap/inapa-event-attendance-sub000/internal/gcal"
	"github.com/amirandap/inapa-event-attendance-sub000/models"

	"gorm.io/gorm"
)

// GoogleCalendarID — календарь, из которого зеркалируются события.
var GoogleCalendarID = "primary"

// CurrentCalendarID отдает актуальный id календаря-источника. Читать его надо
// перед каждым запуском: настройка меняется через API без рестарта процесса.
func CurrentCalendarID() string {
	return GoogleCalendarID
}

// NewCalendarAPI проходит цепочку стратегий аутентификации и возвращает
// клиент Calendar API. gcal.ErrNoCredentials здесь не фатален: вызывающий
// код обязан деградировать до выдачи только локальных данных.
func NewCalendarAPI(ctx context.Context) (gcal.CalendarAPI, error) {
	svc, err := gcal.AcquireService(ctx, gcal.StrategiesFromEnv()...)
	if err != nil {
		return nil, err
	}
	return gcal.NewClient(svc), nil
}

// InitGoogleCalendar читает настройки интеграции: сначала окружение, затем
// строка настроек в БД (она имеет приоритет и редактируется через API).
func InitGoogleCalendar() {
	if id := os.Getenv("GOOGLE_CALENDAR_ID"); id != "" {
		GoogleCalendarID = id
	}

	var setting models.IntegrationSetting
	err := DB.Where("service_name = ?", "google_calendar").First(&setting).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			slog.Warn("Не удалось прочитать настройки интеграции", "error", err)
		}
	} else if setting.IsEnabled {
		if id, ok := setting.Settings["calendarId"].(string); ok && id != "" {
			GoogleCalendarID = id
		}
	}

	slog.Info("Интеграция с Google Calendar настроена", "calendar_id", GoogleCalendarID)
}
