// inapa-event-attendance/models/event.go

package models

import "time"

// Статусы жизненного цикла события.
const (
	EventStatusActive    = "active"
	EventStatusCancelled = "cancelled"
	EventStatusCompleted = "completed"
	EventStatusTentative = "tentative"
)

// Event представляет собой собрание/мероприятие. Событие может быть создано
// вручную или являться зеркалом события из Google Calendar — в этом случае
// заполнены remote-идентификаторы (GoogleEventID, ICalUID и т.д.).
type Event struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"start_time" gorm:"not null"`
	EndTime     time.Time `json:"end_time" gorm:"not null"`

	// FormToken — уникальный токен формы регистрации. Назначается один раз
	// при создании события и больше никогда не меняется.
	FormToken string `json:"form_token" gorm:"uniqueIndex;not null"`

	Status string `json:"status" gorm:"default:active"`

	// --- ИДЕНТИФИКАТОРЫ ВНЕШНЕГО КАЛЕНДАРЯ ---
	// GoogleEventID уникален среди всех событий (NULL допускается для локальных).
	GoogleEventID    *string `json:"google_event_id" gorm:"uniqueIndex"`
	RecurringEventID *string `json:"recurring_event_id" gorm:"index"`
	ICalUID          *string `json:"ical_uid" gorm:"column:ical_uid;index"`
	Etag             *string `json:"etag"`
	// Sequence для данного GoogleEventID никогда не уменьшается.
	Sequence int `json:"sequence" gorm:"default:0"`

	// Метки времени источника (отличаются от локальных CreatedAt/UpdatedAt).
	SourceCreatedAt *time.Time `json:"source_created_at"`
	SourceUpdatedAt *time.Time `json:"source_updated_at"`
	LastSyncedAt    *time.Time `json:"last_synced_at"`

	OrganizerID uint       `json:"organizer_id"`
	Organizer   *Organizer `json:"organizer,omitempty" gorm:"foreignKey:OrganizerID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// --- GORM RELATIONSHIPS ---
	Invitees []Invitee `json:"invitees,omitempty" gorm:"foreignKey:EventID"`
	Checkins []Checkin `json:"checkins,omitempty" gorm:"foreignKey:EventID"`
}
