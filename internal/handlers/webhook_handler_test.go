package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/amirandap/inapa-event-attendance-sub000/internal/store"
	"github.com/amirandap/inapa-event-attendance-sub000/internal/syncer"
	"github.com/amirandap/inapa-event-attendance-sub000/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeSync — подменный оркестратор для тестов обработчиков.
type fakeSync struct {
	syncedIDs    []string
	cancelledIDs []string
	syncErr      error
	cancelErr    error
}

func (f *fakeSync) RunSync(ctx context.Context, opts syncer.SyncOptions) *syncer.SyncResult {
	return &syncer.SyncResult{Success: true}
}

func (f *fakeSync) SyncOne(ctx context.Context, eventID string) (syncer.UpsertOutcome, error) {
	f.syncedIDs = append(f.syncedIDs, eventID)
	if f.syncErr != nil {
		return syncer.UpsertOutcome{}, f.syncErr
	}
	return syncer.UpsertOutcome{EventID: 1, Action: syncer.ActionUpdated}, nil
}

func (f *fakeSync) CancelRemote(remoteEventID string) error {
	f.cancelledIDs = append(f.cancelledIDs, remoteEventID)
	return f.cancelErr
}

func setupHandlerTest(t *testing.T) (*fakeSync, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	sync := &fakeSync{}
	Init(sync, store.NewGormStore(db))

	r := gin.New()
	r.POST("/webhooks/google-calendar", GoogleCalendarWebhook)
	return sync, r
}

func postWebhook(r *gin.Engine, state, uri string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/google-calendar", nil)
	req.Header.Set("X-Goog-Channel-ID", "chan-1")
	req.Header.Set("X-Goog-Resource-State", state)
	if uri != "" {
		req.Header.Set("X-Goog-Resource-URI", uri)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWebhookSyncHandshake(t *testing.T) {
	sync, r := setupHandlerTest(t)

	w := postWebhook(r, "sync", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sync.syncedIDs)
}

func TestWebhookExistsTriggersSingleEventSync(t *testing.T) {
	sync, r := setupHandlerTest(t)

	w := postWebhook(r, "exists",
		"https://www.googleapis.com/calendar/v3/calendars/primary/events/abc123?alt=json")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"abc123"}, sync.syncedIDs)
}

func TestWebhookNotExistsCancels(t *testing.T) {
	sync, r := setupHandlerTest(t)

	w := postWebhook(r, "not_exists",
		"https://www.googleapis.com/calendar/v3/calendars/primary/events/abc123")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"abc123"}, sync.cancelledIDs)
	assert.Empty(t, sync.syncedIDs)
}

func TestWebhookAlwaysAcksOnFailure(t *testing.T) {
	sync, r := setupHandlerTest(t)
	sync.syncErr = errors.New("календарь недоступен")

	// Ошибка reconciliation не должна протекать в HTTP-статус: иначе Google
	// сочтет канал сломанным.
	w := postWebhook(r, "exists",
		"https://www.googleapis.com/calendar/v3/calendars/primary/events/abc123")
	assert.Equal(t, http.StatusOK, w.Code)

	sync.cancelErr = errors.New("календарь недоступен")
	w = postWebhook(r, "not_exists",
		"https://www.googleapis.com/calendar/v3/calendars/primary/events/abc123")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhookUnknownStateAndBadURI(t *testing.T) {
	sync, r := setupHandlerTest(t)

	w := postWebhook(r, "что-то-новое", "")
	assert.Equal(t, http.StatusOK, w.Code)

	// URI без сегмента events — подтверждаем, но ничего не синхронизируем.
	w = postWebhook(r, "exists", "https://www.googleapis.com/calendar/v3/calendars/primary")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sync.syncedIDs)
}

func TestEventIDFromResourceURI(t *testing.T) {
	cases := map[string]string{
		"https://www.googleapis.com/calendar/v3/calendars/primary/events/abc123":          "abc123",
		"https://www.googleapis.com/calendar/v3/calendars/primary/events/abc123?alt=json": "abc123",
		"https://www.googleapis.com/calendar/v3/calendars/primary/events/abc123/":         "abc123",
		"https://www.googleapis.com/calendar/v3/calendars/primary/events":                 "",
		"": "",
	}
	for uri, want := range cases {
		assert.Equal(t, want, eventIDFromResourceURI(uri), uri)
	}
}
