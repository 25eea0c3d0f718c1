// inapa-event-attendance/internal/handlers/deps.go
package handlers

import (
	"context"

	"github.com/amirandap/inapa-event-attendance-sub000/internal/store"
	"github.com/amirandap/inapa-event-attendance-sub000/internal/syncer"
)

// SyncService — то, что обработчикам нужно от оркестратора синхронизации.
// Интерфейс позволяет подменять оркестратор в тестах обработчиков.
type SyncService interface {
	RunSync(ctx context.Context, opts syncer.SyncOptions) *syncer.SyncResult
	SyncOne(ctx context.Context, eventID string) (syncer.UpsertOutcome, error)
	CancelRemote(remoteEventID string) error
}

var (
	Sync  SyncService
	Store store.Store
)

// Init передает обработчикам зависимости, собранные в main.
func Init(s SyncService, st store.Store) {
	Sync = s
	Store = st
}
