// inapa-event-attendance/internal/handlers/sync_handler.go

package handlers

import (
	"net/http"

	"github.com/amirandap/inapa-event-attendance-sub000/config"
	"github.com/amirandap/inapa-event-attendance-sub000/internal/syncer"

	"github.com/gin-gonic/gin"
)

// SyncRequest - параметры ручного запуска синхронизации.
type SyncRequest struct {
	Full  bool `json:"full"`
	Force bool `json:"force"`
}

// TriggerSync запускает синхронизацию вручную. Частичный провал (ошибки
// отдельных событий) — это все еще успешный запуск; 400 возвращается только
// при провале на уровне выборки или учетных данных.
func TriggerSync(c *gin.Context) {
	var req SyncRequest
	// Тело не обязательно: пустой POST означает форсированный инкремент.
	_ = c.ShouldBindJSON(&req)

	result := Sync.RunSync(c.Request.Context(), syncer.SyncOptions{Full: req.Full, Force: req.Force || !req.Full})
	invalidateEventsCache()

	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}
	c.JSON(http.StatusOK, result)
}

// SyncStatus отдает watermark последней успешной синхронизации.
func SyncStatus(c *gin.Context) {
	state, err := Store.GetSyncState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read sync state"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"last_sync_at": state.LastSyncAt,
		"calendar_id":  config.GoogleCalendarID,
	})
}

// ListCalendars отдает календари, доступные текущим учетным данным.
// Используется админкой для выбора календаря-источника.
func ListCalendars(c *gin.Context) {
	api, err := config.NewCalendarAPI(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Клиент календаря недоступен: " + err.Error()})
		return
	}
	calendars, err := api.ListCalendars(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to list calendars: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, calendars)
}
