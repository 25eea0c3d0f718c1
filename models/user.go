// inapa-event-attendance/models/user.go

package models

import "time"

// User определяет модель администратора системы.
type User struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	Login    string `json:"login" gorm:"uniqueIndex;not null"`
	Password string `json:"-" gorm:"not null"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
