// inapa-event-attendance/internal/store/store.go

package store

import (
	"errors"
	"log/slog"
	"time"

	"github.com/amirandap/inapa-event-attendance-sub000/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrEventHasCheckins возвращается при попытке жесткого удаления события,
// у которого есть хотя бы одна запись о присутствии. Такие события можно
// только переводить в статус cancelled.
var ErrEventHasCheckins = errors.New("store: у события есть чекины, жесткое удаление запрещено")

// Store — граница персистентности движка синхронизации. Все записи
// предполагаются транзакционными на уровне реализации.
type Store interface {
	FindEventByGoogleID(googleEventID string) (*models.Event, error)
	FindEventByICalUID(icalUID string) (*models.Event, error)
	FindEventBySeriesID(recurringEventID string) (*models.Event, error)
	FindEventByID(id uint) (*models.Event, error)
	FindEventByFormToken(token string) (*models.Event, error)
	ListEvents(limit, offset int) ([]models.Event, int64, error)

	CreateEvent(event *models.Event) error
	UpdateEvent(event *models.Event) error
	// DeleteEvent жестко удаляет событие; отклоняется с ErrEventHasCheckins,
	// если у события есть чекины.
	DeleteEvent(id uint) error

	// SaveEventWithInvitees пишет событие и полный список его приглашенных
	// одной транзакцией: частичная запись невозможна.
	SaveEventWithInvitees(event *models.Event, invitees []models.Invitee) error
	CountCheckins(eventID uint) (int64, error)
	CreateCheckin(checkin *models.Checkin) error
	// MarkEventsCompleted переводит активные события с прошедшим временем
	// окончания в completed; возвращает число затронутых строк.
	MarkEventsCompleted(before time.Time) (int64, error)

	FirstOrCreateOrganizer(email, name string) (*models.Organizer, error)

	GetSyncState() (*models.SyncState, error)
	SetLastSyncAt(t time.Time) error

	FormTokenExists(token string) (bool, error)

	// AppendAudit пишет строку в append-only журнал. Ошибка записи логируется
	// и не возвращается: журнал не должен прерывать бизнес-операцию.
	AppendAudit(action, entityType, entityID, details string)
}

// IsDuplicate сообщает, является ли ошибка нарушением уникального ограничения.
func IsDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// GormStore — реализация Store поверх GORM.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// findEvent выполняет поиск по одному условию; "не найдено" — это (nil, nil).
func (s *GormStore) findEvent(query string, args ...interface{}) (*models.Event, error) {
	var event models.Event
	err := s.db.Where(query, args...).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *GormStore) FindEventByGoogleID(googleEventID string) (*models.Event, error) {
	return s.findEvent("google_event_id = ?", googleEventID)
}

func (s *GormStore) FindEventByICalUID(icalUID string) (*models.Event, error) {
	return s.findEvent("ical_uid = ?", icalUID)
}

func (s *GormStore) FindEventBySeriesID(recurringEventID string) (*models.Event, error) {
	return s.findEvent("recurring_event_id = ?", recurringEventID)
}

func (s *GormStore) FindEventByID(id uint) (*models.Event, error) {
	return s.findEvent("id = ?", id)
}

func (s *GormStore) FindEventByFormToken(token string) (*models.Event, error) {
	return s.findEvent("form_token = ?", token)
}

func (s *GormStore) ListEvents(limit, offset int) ([]models.Event, int64, error) {
	var events []models.Event
	var total int64
	if err := s.db.Model(&models.Event{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := s.db.Preload("Organizer").
		Order("start_time DESC").
		Limit(limit).Offset(offset).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *GormStore) CreateEvent(event *models.Event) error {
	return s.db.Create(event).Error
}

func (s *GormStore) UpdateEvent(event *models.Event) error {
	return s.db.Save(event).Error
}

func (s *GormStore) DeleteEvent(id uint) error {
	// Защитная проверка прямо в адаптере: вызывающим не нужно помнить
	// об инварианте сохранности посещаемости.
	count, err := s.CountCheckins(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrEventHasCheckins
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.Invitee{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Event{}, id).Error
	})
}

// SaveEventWithInvitees пишет событие и его список приглашенных в одной
// транзакции. Обрыв на записи приглашенных откатывает и поля события: если
// бы новые etag/sequence успели зафиксироваться, следующий запуск посчитал
// бы локальную копию свежей и оставил список пустым навсегда.
func (s *GormStore) SaveEventWithInvitees(event *models.Event, invitees []models.Invitee) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(event).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.Invitee{}).Error; err != nil {
			return err
		}
		for i := range invitees {
			invitees[i].EventID = event.ID
			if err := tx.Create(&invitees[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *GormStore) MarkEventsCompleted(before time.Time) (int64, error) {
	res := s.db.Model(&models.Event{}).
		Where("status = ? AND end_time < ?", models.EventStatusActive, before).
		Update("status", models.EventStatusCompleted)
	return res.RowsAffected, res.Error
}

func (s *GormStore) CountCheckins(eventID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Checkin{}).Where("event_id = ?", eventID).Count(&count).Error
	return count, err
}

func (s *GormStore) CreateCheckin(checkin *models.Checkin) error {
	return s.db.Create(checkin).Error
}

func (s *GormStore) FirstOrCreateOrganizer(email, name string) (*models.Organizer, error) {
	organizer := models.Organizer{Email: email, Name: name}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "email"}},
		DoNothing: true,
	}).Create(&organizer).Error
	if err != nil {
		return nil, err
	}
	// При конфликте Create не заполняет ID — перечитываем по email.
	if organizer.ID == 0 {
		if err := s.db.Where("email = ?", email).First(&organizer).Error; err != nil {
			return nil, err
		}
	}
	return &organizer, nil
}

func (s *GormStore) GetSyncState() (*models.SyncState, error) {
	var state models.SyncState
	err := s.db.First(&state).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		state = models.SyncState{}
		if err := s.db.Create(&state).Error; err != nil {
			return nil, err
		}
		return &state, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *GormStore) SetLastSyncAt(t time.Time) error {
	state, err := s.GetSyncState()
	if err != nil {
		return err
	}
	state.LastSyncAt = &t
	return s.db.Save(state).Error
}

func (s *GormStore) FormTokenExists(token string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Event{}).Where("form_token = ?", token).Count(&count).Error
	return count > 0, err
}

func (s *GormStore) AppendAudit(action, entityType, entityID, details string) {
	entry := models.AuditLog{
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	}
	if err := s.db.Create(&entry).Error; err != nil {
		slog.Error("Не удалось записать строку аудита", "action", action, "error", err)
	}
}
