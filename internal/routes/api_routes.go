// inapa-event-attendance/internal/routes/api_routes.go
package routes

import (
	"github.com/amirandap/inapa-event-attendance-sub000/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterPublicRoutes регистрирует маршруты, доступные без аутентификации:
// публичную форму регистрации и webhook Google Calendar.
func RegisterPublicRoutes(r *gin.Engine) {
	// --- ФОРМА РЕГИСТРАЦИИ ---
	// Токен в URL и есть секрет формы.
	r.GET("/registro/:token", handlers.GetRegistrationForm)
	r.POST("/registro/:token", handlers.RegisterCheckin)

	// --- WEBHOOK GOOGLE CALENDAR ---
	r.POST("/webhooks/google-calendar", handlers.GoogleCalendarWebhook)
}

// RegisterAPIRoutes регистрирует все маршруты API, требующие аутентификации.
func RegisterAPIRoutes(api *gin.RouterGroup) {
	apiGroup := api.Group("/api")
	{
		// --- СОБЫТИЯ ---
		events := apiGroup.Group("/events")
		{
			events.GET("", handlers.GetEvents)
			events.POST("", handlers.CreateEvent)
			events.GET("/:id", handlers.GetEvent)
			events.PUT("/:id", handlers.UpdateEvent)
			events.DELETE("/:id", handlers.DeleteEvent)
			events.GET("/:id/checkins", handlers.ListCheckins)
		}

		// --- СИНХРОНИЗАЦИЯ ---
		sync := apiGroup.Group("/sync")
		{
			sync.POST("", handlers.TriggerSync)
			sync.GET("/status", handlers.SyncStatus)
		}

		// --- КАЛЕНДАРИ ---
		apiGroup.GET("/calendars", handlers.ListCalendars)

		// --- ИНТЕГРАЦИИ ---
		integrations := apiGroup.Group("/integrations")
		{
			integrations.GET("/google-calendar", handlers.GetGoogleCalendarSettingsHandler)
			integrations.POST("/google-calendar", handlers.SaveGoogleCalendarSettingsHandler)
		}
	}
}
