// inapa-event-attendance/internal/syncer/result.go

package syncer

// Действия движка над одним событием.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionSkipped = "skipped"
	ActionDeleted = "deleted" // мягкая отмена (status -> cancelled)
)

// SyncOptions — параметры одного запуска синхронизации.
type SyncOptions struct {
	// Full — полный проход: без фильтра updatedMin, с широким окном времени.
	Full bool
	// Force обходит троттлинг инкрементальных запусков.
	Force bool
}

// SyncError — ошибка обработки одного события. Не прерывает обработку
// остальных событий пакета.
type SyncError struct {
	EventID string `json:"event_id"`
	Message string `json:"message"`
}

// SyncedEvent — результат обработки одного события.
type SyncedEvent struct {
	LocalID  uint   `json:"local_id"`
	RemoteID string `json:"remote_id"`
	Title    string `json:"title"`
	Action   string `json:"action"`
}

// SyncResult — агрегированный итог запуска. Success=false только при ошибке
// уровня выборки (учетные данные, listEvents); пособытийные ошибки попадают
// в Errors при Success=true.
type SyncResult struct {
	Success      bool          `json:"success"`
	Throttled    bool          `json:"throttled,omitempty"`
	TotalEvents  int           `json:"total_events"`
	Created      int           `json:"created"`
	Updated      int           `json:"updated"`
	Deleted      int           `json:"deleted"`
	Skipped      int           `json:"skipped"`
	Errors       []SyncError   `json:"errors"`
	SyncedEvents []SyncedEvent `json:"synced_events"`
	Message      string        `json:"message,omitempty"`
}

// UpsertOutcome — итог UpsertEvent для одного события.
type UpsertOutcome struct {
	EventID uint
	Action  string
}
