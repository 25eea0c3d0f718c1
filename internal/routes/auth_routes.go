package routes

import (
	"github.com/amirandap/inapa-event-attendance-sub000/internal/handlers"

	"github.com/gin-gonic/gin"
)

// RegisterAuthRoutes регистрирует публичные маршруты для аутентификации.
func RegisterAuthRoutes(r *gin.Engine) {
	// Маршрут для обработки данных с формы входа.
	r.POST("/auth/login", handlers.LoginHandler)

	// Маршрут для выхода пользователя из системы.
	r.GET("/auth/logout", handlers.LogoutHandler)
}
