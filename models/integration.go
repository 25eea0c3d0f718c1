// inapa-event-attendance/models/integration.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSONB представляет тип данных JSONB в PostgreSQL.
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	return json.Unmarshal(bytes, j)
}

// IntegrationSetting хранит настройки для одного внешнего сервиса.
// Для Google Calendar здесь лежат id календаря и параметры push-канала
// (channel id, resource id, срок действия).
type IntegrationSetting struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	ServiceName string `json:"serviceName" gorm:"uniqueIndex;not null"`
	IsEnabled   bool   `json:"isEnabled"`
	Settings    JSONB  `json:"settings" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
