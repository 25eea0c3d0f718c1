// inapa-event-attendance/internal/handlers/integration_handler.go
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/amirandap/inapa-event-attendance-sub000/config"
	"github.com/amirandap/inapa-event-attendance-sub000/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const GoogleCalendarService = "google_calendar"

// GoogleCalendarSettings представляет структуру настроек интеграции с календарем.
type GoogleCalendarSettings struct {
	CalendarID string `json:"calendarId"`
	ChannelID  string `json:"channelId"`
	ResourceID string `json:"resourceId"`
	WebhookURL string `json:"webhookUrl"`
}

// GetGoogleCalendarSettingsHandler получает настройки интеграции с календарем.
func GetGoogleCalendarSettingsHandler(c *gin.Context) {
	var settings models.IntegrationSetting
	err := config.DB.Where("service_name = ?", GoogleCalendarService).First(&settings).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusOK, gin.H{})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get settings"})
		return
	}
	c.JSON(http.StatusOK, settings)
}

// SaveGoogleCalendarSettingsHandler сохраняет настройки интеграции с календарем.
func SaveGoogleCalendarSettingsHandler(c *gin.Context) {
	var payload struct {
		IsEnabled bool                   `json:"isEnabled"`
		Settings  GoogleCalendarSettings `json:"settings"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data: " + err.Error()})
		return
	}

	settingsJSON, _ := json.Marshal(payload.Settings)

	setting := models.IntegrationSetting{
		ServiceName: GoogleCalendarService,
		IsEnabled:   payload.IsEnabled,
		Settings:    make(map[string]interface{}),
	}
	json.Unmarshal(settingsJSON, &setting.Settings)

	// Используем Upsert (OnConflict)
	err := config.DB.Where(models.IntegrationSetting{ServiceName: GoogleCalendarService}).Assign(setting).FirstOrCreate(&setting).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings: " + err.Error()})
		return
	}

	// Сразу применяем новый id календаря, без рестарта процесса.
	if id, ok := setting.Settings["calendarId"].(string); ok && id != "" {
		config.GoogleCalendarID = id
	}

	c.JSON(http.StatusOK, gin.H{"message": "Настройки успешно сохранены"})
}
