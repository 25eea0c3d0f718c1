// inapa-event-attendance/models/sync.go

package models

import "time"

// SyncState — единственная строка с меткой последней успешной синхронизации.
// Читается перед построением инкрементального фильтра (updatedMin) и
// записывается только после полностью успешного прохода.
type SyncState struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	LastSyncAt *time.Time `json:"last_sync_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// AuditLog — append-only журнал действий. Ошибки записи в журнал логируются
// и не прерывают вызывающую операцию.
type AuditLog struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Action     string    `json:"action" gorm:"not null"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Details    string    `json:"details"`
	CreatedAt  time.Time `json:"created_at"`
}
