// inapa-event-attendance/models/checkin.go

package models

import "time"

// Checkin — запись о фактическом присутствии на событии. Создается только
// через публичную форму регистрации; движок синхронизации никогда не создает
// и не изменяет эти записи. Само наличие чекина у события запрещает жесткое
// удаление этого события.
type Checkin struct {
	ID      uint `json:"id" gorm:"primaryKey"`
	EventID uint `json:"event_id" gorm:"not null;uniqueIndex:idx_checkins_event_cedula"`

	// Одна цедула регистрируется на событие только один раз.
	Cedula    string `json:"cedula" gorm:"not null;uniqueIndex:idx_checkins_event_cedula"`
	FullName  string `json:"full_name" gorm:"not null"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Position  string `json:"position"`
	Institute string `json:"institute"`

	CreatedAt time.Time `json:"created_at"`
}
