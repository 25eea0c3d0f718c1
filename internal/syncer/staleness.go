// inapa-event-attendance/internal/syncer/staleness.go

package syncer

import (
	"time"

	"github.com/amirandap/inapa-event-attendance-sub000/models"

	"google.golang.org/api/calendar/v3"
)

// shouldOverwrite решает, является ли версия из внешнего календаря более
// новой, чем локальная копия. Тройной tie-break, первое сработавшее правило
// побеждает:
//
//  1. sequence удаленного события больше локального;
//  2. updated удаленного события позже source_updated_at локального;
//  3. etag отличается.
//
// Если не сработало ни одно правило — удаленная копия идентична или старее,
// локальную не трогаем (в итоге запуска это skipped, не ошибка).
func shouldOverwrite(local *models.Event, remote *calendar.Event) bool {
	if remote.Sequence > int64(local.Sequence) {
		return true
	}

	if remote.Updated != "" && local.SourceUpdatedAt != nil {
		if remoteUpdated, err := time.Parse(time.RFC3339, remote.Updated); err == nil {
			if remoteUpdated.After(*local.SourceUpdatedAt) {
				return true
			}
		}
	}

	localEtag := ""
	if local.Etag != nil {
		localEtag = *local.Etag
	}
	return remote.Etag != localEtag
}
