package syncer

import (
	"testing"
	"time"

	"github.com/amirandap/inapa-event-attendance-sub000/models"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/calendar/v3"
)

func TestShouldOverwrite(t *testing.T) {
	t0 := time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	etagA := "a"

	baseLocal := func() *models.Event {
		return &models.Event{
			Sequence:        3,
			Etag:            &etagA,
			SourceUpdatedAt: &t0,
		}
	}
	baseRemote := func() *calendar.Event {
		return &calendar.Event{
			Sequence: 3,
			Etag:     "a",
			Updated:  t0.Format(time.RFC3339),
		}
	}

	t.Run("идентичная удаленная копия не перезаписывается", func(t *testing.T) {
		assert.False(t, shouldOverwrite(baseLocal(), baseRemote()))
	})

	t.Run("больший sequence побеждает", func(t *testing.T) {
		remote := baseRemote()
		remote.Sequence = 4
		assert.True(t, shouldOverwrite(baseLocal(), remote))
	})

	t.Run("меньший sequence не перезаписывает", func(t *testing.T) {
		remote := baseRemote()
		remote.Sequence = 2
		assert.False(t, shouldOverwrite(baseLocal(), remote))
	})

	t.Run("более поздний updated побеждает", func(t *testing.T) {
		remote := baseRemote()
		remote.Updated = t0.Add(time.Minute).Format(time.RFC3339)
		assert.True(t, shouldOverwrite(baseLocal(), remote))
	})

	t.Run("другой etag побеждает", func(t *testing.T) {
		remote := baseRemote()
		remote.Etag = "b"
		assert.True(t, shouldOverwrite(baseLocal(), remote))
	})

	t.Run("более ранний updated при равном etag не перезаписывает", func(t *testing.T) {
		remote := baseRemote()
		remote.Updated = t0.Add(-time.Hour).Format(time.RFC3339)
		assert.False(t, shouldOverwrite(baseLocal(), remote))
	})

	t.Run("локальное событие без etag получает перезапись", func(t *testing.T) {
		local := baseLocal()
		local.Etag = nil
		assert.True(t, shouldOverwrite(local, baseRemote()))
	})
}
