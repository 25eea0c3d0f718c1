// inapa-event-attendance/internal/handlers/webhook_handler.go
package handlers

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Состояния ресурса в push-уведомлениях Google Calendar.
const (
	resourceStateSync      = "sync"
	resourceStateExists    = "exists"
	resourceStateNotExists = "not_exists"
)

// GoogleCalendarWebhook обрабатывает push-уведомления Google Calendar.
// ВАЖНО: ответ всегда 200, даже если reconciliation провалился — иначе Google
// отключит канал уведомлений. Ошибки уходят в журнал аудита, не в транспорт.
func GoogleCalendarWebhook(c *gin.Context) {
	channelID := c.GetHeader("X-Goog-Channel-ID")
	resourceState := c.GetHeader("X-Goog-Resource-State")
	resourceURI := c.GetHeader("X-Goog-Resource-URI")

	Store.AppendAudit("webhook_received", "webhook", channelID,
		fmt.Sprintf("state=%s uri=%s", resourceState, resourceURI))

	switch resourceState {
	case resourceStateSync:
		// Начальное рукопожатие канала — подтверждаем и ничего не делаем.

	case resourceStateExists:
		eventID := eventIDFromResourceURI(resourceURI)
		if eventID == "" {
			Store.AppendAudit("webhook_error", "webhook", channelID, "не удалось извлечь id события из "+resourceURI)
			break
		}
		// Точечная синхронизация одного события, не полный проход.
		outcome, err := Sync.SyncOne(c.Request.Context(), eventID)
		if err != nil {
			log.Printf("Webhook: синхронизация события %s не удалась: %v", eventID, err)
			Store.AppendAudit("webhook_error", "event", eventID, err.Error())
			break
		}
		Store.AppendAudit("webhook_synced", "event", eventID, outcome.Action)
		invalidateEventsCache()

	case resourceStateNotExists:
		eventID := eventIDFromResourceURI(resourceURI)
		if eventID != "" {
			if err := Sync.CancelRemote(eventID); err != nil {
				log.Printf("Webhook: отмена события %s не удалась: %v", eventID, err)
				Store.AppendAudit("webhook_error", "event", eventID, err.Error())
				break
			}
			Store.AppendAudit("webhook_cancelled", "event", eventID, "")
			invalidateEventsCache()
		}

	default:
		log.Printf("Webhook: неизвестное состояние ресурса %q", resourceState)
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// eventIDFromResourceURI извлекает id события из resource URI уведомления
// вида .../calendars/{calendarId}/events/{eventId}?alt=json.
func eventIDFromResourceURI(uri string) string {
	if uri == "" {
		return ""
	}
	if i := strings.IndexByte(uri, '?'); i >= 0 {
		uri = uri[:i]
	}
	parts := strings.Split(strings.TrimRight(uri, "/"), "/")
	for i := len(parts) - 2; i >= 0; i-- {
		if parts[i] == "events" && i+1 < len(parts) {
			return parts[i+1]
		}
	}
	return ""
}
