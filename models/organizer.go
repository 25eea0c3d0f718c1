// inapa-event-attendance/models/organizer.go

package models

import "time"

// Organizer — организатор события. Создается автоматически при первой
// встрече email организатора во внешнем календаре.
type Organizer struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Email string `json:"email" gorm:"uniqueIndex;not null"`
	Name  string `json:"name"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
