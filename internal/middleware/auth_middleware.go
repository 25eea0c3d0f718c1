// inapa-event-attendance/internal/middleware/auth_middleware.go
package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/amirandap/inapa-event-attendance-sub000/config"
	"github.com/amirandap/inapa-event-attendance-sub000/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// CachedUserData - данные пользователя в кэше.
type CachedUserData struct {
	UserID uint   `json:"user_id"`
	Login  string `json:"login"`
	Email  string `json:"email"`
}

// AuthMiddleware - middleware для аутентификации административного API.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie("auth_token")
		if err != nil || tokenStr == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				handleAuthError(c, "Authorization token not provided")
				return
			}
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				handleAuthError(c, "Invalid Authorization header format")
				return
			}
			tokenStr = parts[1]
		}

		token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return config.JwtKey, nil
		})
		if err != nil || !token.Valid {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			handleAuthError(c, "Invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			handleAuthError(c, "Invalid token claims")
			return
		}
		userIDFloat, ok := claims["user_id"].(float64)
		if !ok {
			handleAuthError(c, "Invalid user ID format in token")
			return
		}
		userID := uint(userIDFloat)

		cacheKey := fmt.Sprintf("user:%d:data", userID)
		if config.RDB != nil {
			cachedData, err := config.RDB.Get(config.Ctx, cacheKey).Result()
			if err == nil {
				var userData CachedUserData
				if json.Unmarshal([]byte(cachedData), &userData) == nil {
					setContextAndProceed(c, &userData)
					return
				}
				slog.Warn("Не удалось распаковать кэш пользователя", "user_id", userID)
			} else if err != redis.Nil {
				slog.Error("Redis GET command failed", "error", err, "user_id", userID)
			}
		}

		var dbUser models.User
		if err := config.DB.First(&dbUser, userID).Error; err != nil || !dbUser.IsActive {
			c.SetCookie("auth_token", "", -1, "/", "", false, true)
			handleAuthError(c, "User from token not found in DB")
			return
		}

		userData := CachedUserData{UserID: dbUser.ID, Login: dbUser.Login, Email: dbUser.Email}
		if config.RDB != nil {
			if jsonData, err := json.Marshal(userData); err == nil {
				if err := config.RDB.Set(config.Ctx, cacheKey, jsonData, 10*time.Minute).Err(); err != nil {
					slog.Error("Failed to SET user data to cache", "error", err, "user_id", userID)
				}
			}
		}

		setContextAndProceed(c, &userData)
	}
}

func setContextAndProceed(c *gin.Context, userData *CachedUserData) {
	c.Set("user_id", userData.UserID)
	c.Set("login", userData.Login)
	c.Set("email", userData.Email)
	c.Next()
}

func handleAuthError(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": message})
	c.Abort()
}
