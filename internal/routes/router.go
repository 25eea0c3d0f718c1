package routes

import (
	"github.com/amirandap/inapa-event-attendance-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes инициализирует все маршруты приложения.
func SetupRoutes(r *gin.Engine) {
	// --- Публичные маршруты ---
	// Вход администратора, публичная форма регистрации и webhook от Google
	// не требуют аутентификации (Google не умеет наш JWT).
	RegisterAuthRoutes(r)
	RegisterPublicRoutes(r)

	// --- Защищенная группа маршрутов ---
	// Все маршруты в этой группе требуют валидный JWT токен.
	authRequired := r.Group("/")
	authRequired.Use(middleware.AuthMiddleware())
	{
		RegisterAPIRoutes(authRequired)
	}
}
