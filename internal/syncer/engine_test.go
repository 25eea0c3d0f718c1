package syncer

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/amirandap/inapa-event-attendance-sub000/internal/store"
	"github.com/amirandap/inapa-event-attendance-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestStore поднимает хранилище на временном sqlite-файле.
func newTestStore(t *testing.T) (store.Store, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Organizer{},
		&models.Event{},
		&models.Invitee{},
		&models.Checkin{},
		&models.SyncState{},
		&models.AuditLog{},
	))
	return store.NewGormStore(db), db
}

func boardMeeting() *calendar.Event {
	return &calendar.Event{
		Id:       "g1",
		ICalUID:  "ical1",
		Sequence: 1,
		Etag:     `"etag-1"`,
		Status:   "confirmed",
		Summary:  "Board Meeting",
		Start:    &calendar.EventDateTime{DateTime: "2025-09-15T09:00:00Z"},
		End:      &calendar.EventDateTime{DateTime: "2025-09-15T10:00:00Z"},
		Updated:  "2025-09-01T12:00:00Z",
		Organizer: &calendar.EventOrganizer{
			Email:       "organizer@inapa.gob.do",
			DisplayName: "Secretaría",
		},
		Attendees: []*calendar.EventAttendee{
			{Email: "a@x.com"},
		},
	}
}

func TestUpsertEventCreatesFromEmptyStore(t *testing.T) {
	st, db := newTestStore(t)
	engine := NewEngine(st)

	outcome, err := engine.UpsertEvent(boardMeeting())
	require.NoError(t, err)
	assert.Equal(t, ActionCreated, outcome.Action)

	event, err := st.FindEventByGoogleID("g1")
	require.NoError(t, err)
	require.NotNil(t, event)
	assert.Equal(t, "Board Meeting", event.Title)
	assert.Equal(t, models.EventStatusActive, event.Status)
	assert.Equal(t, 1, event.Sequence)
	assert.NotEmpty(t, event.FormToken)
	require.NotNil(t, event.ICalUID)
	assert.Equal(t, "ical1", *event.ICalUID)

	var invitees []models.Invitee
	require.NoError(t, db.Where("event_id = ?", event.ID).Find(&invitees).Error)
	require.Len(t, invitees, 1)
	assert.Equal(t, "a@x.com", invitees[0].Email)

	// Организатор создан автоматически.
	var organizer models.Organizer
	require.NoError(t, db.First(&organizer, event.OrganizerID).Error)
	assert.Equal(t, "organizer@inapa.gob.do", organizer.Email)
}

func TestUpsertEventIdempotent(t *testing.T) {
	st, db := newTestStore(t)
	engine := NewEngine(st)

	first, err := engine.UpsertEvent(boardMeeting())
	require.NoError(t, err)
	require.Equal(t, ActionCreated, first.Action)

	// Повторный upsert того же неизмененного события — skipped, строка одна.
	second, err := engine.UpsertEvent(boardMeeting())
	require.NoError(t, err)
	assert.Equal(t, ActionSkipped, second.Action)
	assert.Equal(t, first.EventID, second.EventID)

	var count int64
	require.NoError(t, db.Model(&models.Event{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpsertEventResyncPreservesFormToken(t *testing.T) {
	st, _ := newTestStore(t)
	engine := NewEngine(st)

	_, err := engine.UpsertEvent(boardMeeting())
	require.NoError(t, err)
	created, err := st.FindEventByGoogleID("g1")
	require.NoError(t, err)
	originalToken := created.FormToken

	remote := boardMeeting()
	remote.Sequence = 2
	remote.Summary = "Board Meeting (Rescheduled)"
	outcome, err := engine.UpsertEvent(remote)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, outcome.Action)

	updated, err := st.FindEventByGoogleID("g1")
	require.NoError(t, err)
	assert.Equal(t, "Board Meeting (Rescheduled)", updated.Title)
	assert.Equal(t, 2, updated.Sequence)
	assert.Equal(t, originalToken, updated.FormToken)
	assert.Equal(t, created.ID, updated.ID)
}

func TestFindLocalMatchFallsBackToICalUID(t *testing.T) {
	st, _ := newTestStore(t)
	engine := NewEngine(st)

	_, err := engine.UpsertEvent(boardMeeting())
	require.NoError(t, err)
	existing, err := st.FindEventByGoogleID("g1")
	require.NoError(t, err)

	// Google сменил id события, но iCalUID остался прежним: должно найтись
	// существующее локальное событие, а не создаться новое.
	remote := boardMeeting()
	remote.Id = "g2"
	remote.Sequence = 2
	outcome, err := engine.UpsertEvent(remote)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, outcome.Action)
	assert.Equal(t, existing.ID, outcome.EventID)

	rebound, err := st.FindEventByGoogleID("g2")
	require.NoError(t, err)
	require.NotNil(t, rebound)
	assert.Equal(t, existing.ID, rebound.ID)
	assert.Equal(t, existing.FormToken, rebound.FormToken)
}

func TestSyncInviteesExcludesResources(t *testing.T) {
	st, db := newTestStore(t)
	engine := NewEngine(st)

	remote := boardMeeting()
	remote.Attendees = []*calendar.EventAttendee{
		{Email: "a@x.com", DisplayName: "Ana"},
		{Email: "b@x.com", DisplayName: "Berto"},
		{Email: "c@x.com", DisplayName: "Carla", ResponseStatus: "accepted"},
		{Email: "sala-1@resource.calendar.google.com", Resource: true},
	}
	outcome, err := engine.UpsertEvent(remote)
	require.NoError(t, err)

	var invitees []models.Invitee
	require.NoError(t, db.Where("event_id = ?", outcome.EventID).Find(&invitees).Error)
	require.Len(t, invitees, 3)
	for _, inv := range invitees {
		assert.NotContains(t, inv.Email, "resource.calendar.google.com")
	}
}

func TestCancelEventPreservesCheckins(t *testing.T) {
	st, db := newTestStore(t)
	engine := NewEngine(st)

	outcome, err := engine.UpsertEvent(boardMeeting())
	require.NoError(t, err)

	require.NoError(t, st.CreateCheckin(&models.Checkin{
		EventID:  outcome.EventID,
		Cedula:   "001-1234567-8",
		FullName: "Juan Pérez",
	}))

	require.NoError(t, engine.CancelEvent("g1"))

	event, err := st.FindEventByID(outcome.EventID)
	require.NoError(t, err)
	require.NotNil(t, event, "строка события должна остаться")
	assert.Equal(t, models.EventStatusCancelled, event.Status)

	var checkins int64
	require.NoError(t, db.Model(&models.Checkin{}).Where("event_id = ?", outcome.EventID).Count(&checkins).Error)
	assert.EqualValues(t, 1, checkins)

	// Повторная отмена — no-op.
	require.NoError(t, engine.CancelEvent("g1"))
}

func TestUpsertEventCancelledRemoteSoftCancels(t *testing.T) {
	st, _ := newTestStore(t)
	engine := NewEngine(st)

	outcome, err := engine.UpsertEvent(boardMeeting())
	require.NoError(t, err)

	remote := boardMeeting()
	remote.Status = "cancelled"
	cancelled, err := engine.UpsertEvent(remote)
	require.NoError(t, err)
	assert.Equal(t, ActionDeleted, cancelled.Action)
	assert.Equal(t, outcome.EventID, cancelled.EventID)

	// Неизвестное отмененное событие — skipped, а не ошибка.
	unknown := boardMeeting()
	unknown.Id = "missing"
	unknown.ICalUID = "missing-uid"
	unknown.Status = "cancelled"
	result, err := engine.UpsertEvent(unknown)
	require.NoError(t, err)
	assert.Equal(t, ActionSkipped, result.Action)
}

func TestUpsertEventMalformedDate(t *testing.T) {
	st, _ := newTestStore(t)
	engine := NewEngine(st)

	remote := boardMeeting()
	remote.Start = &calendar.EventDateTime{DateTime: "не-дата"}
	_, err := engine.UpsertEvent(remote)
	require.Error(t, err)

	remote = boardMeeting()
	remote.Start = nil
	_, err = engine.UpsertEvent(remote)
	require.Error(t, err)
}

func TestUpsertEventAllDayDates(t *testing.T) {
	st, _ := newTestStore(t)
	engine := NewEngine(st)

	remote := boardMeeting()
	remote.Start = &calendar.EventDateTime{Date: "2025-09-15"}
	remote.End = &calendar.EventDateTime{Date: "2025-09-16"}
	outcome, err := engine.UpsertEvent(remote)
	require.NoError(t, err)

	event, err := st.FindEventByID(outcome.EventID)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 9, 15, 0, 0, 0, 0, time.UTC), event.StartTime.UTC())
}

// flakyStore имитирует обрыв соединения на транзакционной записи события.
type flakyStore struct {
	store.Store
	failures int
}

func (f *flakyStore) SaveEventWithInvitees(event *models.Event, invitees []models.Invitee) error {
	if f.failures > 0 {
		f.failures--
		return errors.New("обрыв соединения при записи приглашенных")
	}
	return f.Store.SaveEventWithInvitees(event, invitees)
}

func TestUpsertRecoversAfterFailedInviteeWrite(t *testing.T) {
	st, db := newTestStore(t)
	flaky := &flakyStore{Store: st, failures: 1}
	engine := NewEngine(flaky)

	// Первый запуск обрывается; оборванная транзакция не должна оставить
	// строку события с зафиксированными sequence/etag.
	_, err := engine.UpsertEvent(boardMeeting())
	require.Error(t, err)

	event, err := st.FindEventByGoogleID("g1")
	require.NoError(t, err)
	assert.Nil(t, event)

	// Следующий запуск с тем же неизмененным событием доводит дело до конца.
	outcome, err := engine.UpsertEvent(boardMeeting())
	require.NoError(t, err)
	assert.Equal(t, ActionCreated, outcome.Action)

	var invitees []models.Invitee
	require.NoError(t, db.Where("event_id = ?", outcome.EventID).Find(&invitees).Error)
	require.Len(t, invitees, 1)
	assert.Equal(t, "a@x.com", invitees[0].Email)
}

func TestUpdateRecoversAfterFailedInviteeWrite(t *testing.T) {
	st, db := newTestStore(t)
	engine := NewEngine(st)

	_, err := engine.UpsertEvent(boardMeeting())
	require.NoError(t, err)

	remote := boardMeeting()
	remote.Sequence = 2
	remote.Etag = `"etag-2"`
	remote.Attendees = append(remote.Attendees, &calendar.EventAttendee{Email: "b@x.com"})

	flaky := &flakyStore{Store: st, failures: 1}
	_, err = NewEngine(flaky).UpsertEvent(remote)
	require.Error(t, err)

	// Новые sequence/etag не должны были зафиксироваться — иначе повтор
	// увидел бы «свежую» копию и навсегда оставил бы старый список.
	event, err := st.FindEventByGoogleID("g1")
	require.NoError(t, err)
	assert.Equal(t, 1, event.Sequence)

	outcome, err := engine.UpsertEvent(remote)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, outcome.Action)

	var invitees []models.Invitee
	require.NoError(t, db.Where("event_id = ?", outcome.EventID).Find(&invitees).Error)
	require.Len(t, invitees, 2)
}

func TestSequenceNeverDecreases(t *testing.T) {
	st, _ := newTestStore(t)
	engine := NewEngine(st)

	remote := boardMeeting()
	remote.Sequence = 5
	_, err := engine.UpsertEvent(remote)
	require.NoError(t, err)

	// Правило перезаписи срабатывает по updated, но sequence ниже локального
	// — записанное значение не должно уменьшиться.
	older := boardMeeting()
	older.Sequence = 2
	older.Updated = "2025-09-02T12:00:00Z"
	outcome, err := engine.UpsertEvent(older)
	require.NoError(t, err)
	assert.Equal(t, ActionUpdated, outcome.Action)

	event, err := st.FindEventByGoogleID("g1")
	require.NoError(t, err)
	assert.Equal(t, 5, event.Sequence)
}
