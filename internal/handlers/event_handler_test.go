package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirandap/inapa-event-attendance-sub000/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEventsListsLocalEvents(t *testing.T) {
	_, r := setupHandlerTest(t)
	r.GET("/api/events", GetEvents)

	for i, token := range []string{"tok-1", "tok-2"} {
		event := &models.Event{
			Title:     "Reunión " + token,
			StartTime: time.Date(2025, 9, 15+i, 9, 0, 0, 0, time.UTC),
			EndTime:   time.Date(2025, 9, 15+i, 10, 0, 0, 0, time.UTC),
			FormToken: token,
			Status:    models.EventStatusActive,
		}
		require.NoError(t, Store.CreateEvent(event))
	}

	req := httptest.NewRequest(http.MethodGet, "/api/events?page=1&pageSize=1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp PaginatedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 2, resp.TotalRows)
	assert.Equal(t, 2, resp.TotalPages)
	assert.Equal(t, 1, resp.CurrentPage)
	assert.Equal(t, 1, resp.PageSize)

	data, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, data, 1)
}
