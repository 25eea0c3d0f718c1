// inapa-event-attendance/internal/handlers/checkin_handler.go

package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/amirandap/inapa-event-attendance-sub000/config"
	"github.com/amirandap/inapa-event-attendance-sub000/internal/store"
	"github.com/amirandap/inapa-event-attendance-sub000/models"

	"github.com/gin-gonic/gin"
)

// CheckinRequest - структура данных публичной формы регистрации.
type CheckinRequest struct {
	Cedula    string `json:"cedula" binding:"required"`
	FullName  string `json:"full_name" binding:"required"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Position  string `json:"position"`
	Institute string `json:"institute"`
}

// GetRegistrationForm отдает данные события по токену формы регистрации.
// Публичный маршрут: токен и есть секрет.
func GetRegistrationForm(c *gin.Context) {
	event, err := Store.FindEventByFormToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event"})
		return
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Форма регистрации не найдена"})
		return
	}
	if event.Status == models.EventStatusCancelled {
		c.JSON(http.StatusGone, gin.H{"error": "Событие отменено"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"title":       event.Title,
		"description": event.Description,
		"location":    event.Location,
		"start_time":  event.StartTime,
		"end_time":    event.EndTime,
		"status":      event.Status,
	})
}

// RegisterCheckin создает запись о присутствии. Это единственный путь
// появления чекинов в системе — движок синхронизации их не трогает.
func RegisterCheckin(c *gin.Context) {
	event, err := Store.FindEventByFormToken(c.Param("token"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load event"})
		return
	}
	if event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Форма регистрации не найдена"})
		return
	}
	if event.Status == models.EventStatusCancelled {
		c.JSON(http.StatusGone, gin.H{"error": "Событие отменено"})
		return
	}

	var req CheckinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	checkin := models.Checkin{
		EventID:   event.ID,
		Cedula:    req.Cedula,
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		Position:  req.Position,
		Institute: req.Institute,
	}
	if err := Store.CreateCheckin(&checkin); err != nil {
		if store.IsDuplicate(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Эта цедула уже зарегистрирована на событие"})
			return
		}
		log.Printf("Checkin create failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register checkin"})
		return
	}

	Store.AppendAudit("checkin_created", "checkin", fmt.Sprint(checkin.ID),
		fmt.Sprintf("event=%d cedula=%s", event.ID, req.Cedula))
	c.JSON(http.StatusCreated, gin.H{"message": "Регистрация прошла успешно", "checkin_id": checkin.ID})
}

// ListCheckins отдает список чекинов события (защищенный маршрут).
func ListCheckins(c *gin.Context) {
	event, err := Store.FindEventByID(parseUintParam(c, "id"))
	if err != nil || event == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Событие не найдено"})
		return
	}

	var checkins []models.Checkin
	if err := config.DB.Where("event_id = ?", event.ID).Order("created_at").Find(&checkins).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch checkins"})
		return
	}
	c.JSON(http.StatusOK, checkins)
}
