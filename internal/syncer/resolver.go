// inapa-event-attendance/internal/syncer/resolver.go

package syncer

import (
	"github.com/amirandap/inapa-event-attendance-sub000/models"

	"google.golang.org/api/calendar/v3"
)

// findLocalMatch ищет локальное событие для события из внешнего календаря.
// Порядок проверки важен: Google не гарантирует стабильность event id при
// всех типах изменений (например, перенос события между календарями меняет
// id, но сохраняет iCalUID), поэтому поиск по одному ключу недостаточен.
//
//  1. по google_event_id;
//  2. по iCalUID;
//  3. по recurring_event_id (родительская серия).
//
// Первое совпадение побеждает; (nil, nil) означает «создать новое».
func (e *Engine) findLocalMatch(remote *calendar.Event) (*models.Event, error) {
	if remote.Id != "" {
		event, err := e.store.FindEventByGoogleID(remote.Id)
		if err != nil || event != nil {
			return event, err
		}
	}
	if remote.ICalUID != "" {
		event, err := e.store.FindEventByICalUID(remote.ICalUID)
		if err != nil || event != nil {
			return event, err
		}
	}
	if remote.RecurringEventId != "" {
		event, err := e.store.FindEventBySeriesID(remote.RecurringEventId)
		if err != nil || event != nil {
			return event, err
		}
	}
	return nil, nil
}
