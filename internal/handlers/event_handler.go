// inapa-event-attendance/internal/handlers/event_handler.go

package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/amirandap/inapa-event-attendance-sub000/config"
	"github.com/amirandap/inapa-event-attendance-sub000/internal/store"
	"github.com/amirandap/inapa-event-attendance-sub000/internal/syncer"
	"github.com/amirandap/inapa-event-attendance-sub000/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"
)

// EventRequest - структура для получения данных при создании/обновлении события.
type EventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"start_time" binding:"required"`
	EndTime     time.Time `json:"end_time" binding:"required"`
}

// GetEvents отдает список локальных событий. Перед выдачей запускается
// инкрементальная синхронизация с троттлингом; при недоступности учетных
// данных Google отдаем только локальные данные — это штатный режим.
func GetEvents(c *gin.Context) {
	if Sync != nil {
		result := Sync.RunSync(c.Request.Context(), syncer.SyncOptions{})
		if !result.Success {
			log.Printf("Фоновая синхронизация не удалась, отдаем локальные данные: %s", result.Message)
		}
	}

	page, pageSize := pageParams(c)
	cacheKey := fmt.Sprintf("events:list:p%d:s%d", page, pageSize)
	if config.RDB != nil {
		if cached, err := config.RDB.Get(config.Ctx, cacheKey).Result(); err == nil {
			var resp PaginatedResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	events, total, err := Store.ListEvents(pageSize, (page-1)*pageSize)
	if err != nil {
		log.Printf("Error fetching events: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch events"})
		return
	}

	resp := CreatePaginatedResponse(c, events, total)
	if config.RDB != nil {
		if jsonData, err := json.Marshal(resp); err == nil {
			config.RDB.Set(config.Ctx, cacheKey, jsonData, time.Minute)
		}
	}
	c.JSON(http.StatusOK, resp)
}

// GetEvent отдает одно событие со списком приглашенных.
func GetEvent(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var event models.Event
	err = config.DB.Preload("Organizer").Preload("Invitees").First(&event, eventID).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Событие не найдено"})
		return
	}
	c.JSON(http.StatusOK, event)
}

// CreateEvent создает новое локальное событие и, если доступен клиент
// календаря, публикует его в Google Calendar.
func CreateEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if !req.EndTime.After(req.StartTime) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Дата окончания должна быть позже даты начала"})
		return
	}

	organizer, err := Store.FirstOrCreateOrganizer(organizerEmailFromContext(c), c.GetString("login"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve organizer"})
		return
	}

	event := models.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		FormToken:   uuid.NewString(),
		Status:      models.EventStatusActive,
		OrganizerID: organizer.ID,
	}
	if err := Store.CreateEvent(&event); err != nil {
		log.Printf("Event create failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create event"})
		return
	}

	// Публикация в Google Calendar — best effort: локальное событие первично.
	pushEventToCalendar(c, &event)

	invalidateEventsCache()
	c.JSON(http.StatusCreated, event)
}

// UpdateEvent обновляет существующее событие.
func UpdateEvent(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	var event models.Event
	if err := config.DB.First(&event, eventID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Событие не найдено"})
		return
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Location = req.Location
	event.StartTime = req.StartTime
	event.EndTime = req.EndTime
	if err := Store.UpdateEvent(&event); err != nil {
		log.Printf("Event update failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update event"})
		return
	}

	invalidateEventsCache()
	c.JSON(http.StatusOK, event)
}

// DeleteEvent удаляет событие. Если у события есть чекины, жесткое удаление
// запрещено хранилищем — вместо него событие переводится в cancelled.
func DeleteEvent(c *gin.Context) {
	eventID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event ID"})
		return
	}

	if err := Store.DeleteEvent(uint(eventID)); err != nil {
		if errors.Is(err, store.ErrEventHasCheckins) {
			event, ferr := Store.FindEventByID(uint(eventID))
			if ferr != nil || event == nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Событие не найдено"})
				return
			}
			event.Status = models.EventStatusCancelled
			if uerr := Store.UpdateEvent(event); uerr != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel event"})
				return
			}
			invalidateEventsCache()
			c.JSON(http.StatusOK, gin.H{"message": "У события есть регистрации, оно переведено в cancelled"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete event"})
		return
	}

	invalidateEventsCache()
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}

// --- Вспомогательные функции ---

// pushEventToCalendar публикует локально созданное событие во внешний
// календарь и сохраняет полученные идентификаторы.
func pushEventToCalendar(c *gin.Context, event *models.Event) {
	api, err := config.NewCalendarAPI(c.Request.Context())
	if err != nil {
		log.Printf("Календарь недоступен, событие %d останется локальным: %v", event.ID, err)
		return
	}

	remote := &calendar.Event{
		Summary:     event.Title,
		Description: event.Description,
		Location:    event.Location,
		Start:       &calendar.EventDateTime{DateTime: event.StartTime.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: event.EndTime.Format(time.RFC3339)},
	}
	created, err := api.InsertEvent(c.Request.Context(), config.GoogleCalendarID, remote)
	if err != nil {
		log.Printf("Не удалось опубликовать событие %d в календаре: %v", event.ID, err)
		return
	}

	event.GoogleEventID = &created.Id
	if created.ICalUID != "" {
		event.ICalUID = &created.ICalUID
	}
	if created.Etag != "" {
		event.Etag = &created.Etag
	}
	if err := Store.UpdateEvent(event); err != nil {
		log.Printf("Не удалось сохранить внешние идентификаторы события %d: %v", event.ID, err)
	}
}

func organizerEmailFromContext(c *gin.Context) string {
	if email := c.GetString("email"); email != "" {
		return email
	}
	return c.GetString("login") + "@inapa.gob.do"
}

// invalidateEventsCache сбрасывает кэш списков событий.
func invalidateEventsCache() {
	if config.RDB == nil {
		return
	}
	iter := config.RDB.Scan(config.Ctx, 0, "events:list:*", 0).Iterator()
	for iter.Next(config.Ctx) {
		config.RDB.Del(config.Ctx, iter.Val())
	}
}
