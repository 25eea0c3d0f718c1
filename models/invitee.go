// inapa-event-attendance/models/invitee.go

package models

import "time"

// Статусы ответа приглашенного (совпадают со значениями Google Calendar).
const (
	ResponseAccepted    = "accepted"
	ResponseDeclined    = "declined"
	ResponseTentative   = "tentative"
	ResponseNeedsAction = "needsAction"
)

// Invitee — приглашенный участник события, полученный из списка attendees
// внешнего календаря. Список приглашенных полностью пересоздается при каждой
// синхронизации события, поэтому ID приглашенного не является стабильным.
type Invitee struct {
	ID      uint `json:"id" gorm:"primaryKey"`
	EventID uint `json:"event_id" gorm:"not null;uniqueIndex:idx_invitees_event_person"`

	// PersonKey — ключ, идентифицирующий человека: profile id из календаря,
	// иначе email, иначе производное значение.
	PersonKey      string `json:"person_key" gorm:"not null;uniqueIndex:idx_invitees_event_person"`
	Email          string `json:"email"`
	Name           string `json:"name"`
	ResponseStatus string `json:"response_status" gorm:"default:needsAction"`

	CreatedAt time.Time `json:"created_at"`
}
