// inapa-event-attendance/internal/gcal/client.go

package gcal

import (
	"context"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

// CalendarInfo — краткое описание календаря из списка календарей аккаунта.
type CalendarInfo struct {
	ID         string `json:"id"`
	Summary    string `json:"summary"`
	AccessRole string `json:"accessRole"`
}

// ListOptions — параметры выборки событий.
type ListOptions struct {
	TimeMin    time.Time
	TimeMax    time.Time
	UpdatedMin *time.Time
	MaxResults int64
}

// CalendarAPI — контракт с внешним календарем. Движок синхронизации работает
// только через этот интерфейс, что позволяет подменять клиент в тестах.
type CalendarAPI interface {
	ListCalendars(ctx context.Context) ([]CalendarInfo, error)
	ListEvents(ctx context.Context, calendarID string, opts ListOptions) ([]*calendar.Event, error)
	// GetEvent возвращает (nil, nil), если событие не найдено на стороне Google.
	GetEvent(ctx context.Context, calendarID, eventID string) (*calendar.Event, error)
	InsertEvent(ctx context.Context, calendarID string, ev *calendar.Event) (*calendar.Event, error)
	UpdateEvent(ctx context.Context, calendarID, eventID string, ev *calendar.Event) (*calendar.Event, error)
	DeleteEvent(ctx context.Context, calendarID, eventID string) error
}

// Client — реализация CalendarAPI поверх google.golang.org/api/calendar/v3.
type Client struct {
	svc *calendar.Service
}

// NewClient оборачивает готовый calendar.Service (см. AcquireService).
func NewClient(svc *calendar.Service) *Client {
	return &Client{svc: svc}
}

func (c *Client) ListCalendars(ctx context.Context) ([]CalendarInfo, error) {
	var result []CalendarInfo
	pageToken := ""
	for {
		call := c.svc.CalendarList.List().Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, err
		}
		for _, item := range list.Items {
			result = append(result, CalendarInfo{
				ID:         item.Id,
				Summary:    item.Summary,
				AccessRole: item.AccessRole,
			})
		}
		if list.NextPageToken == "" {
			return result, nil
		}
		pageToken = list.NextPageToken
	}
}

func (c *Client) ListEvents(ctx context.Context, calendarID string, opts ListOptions) ([]*calendar.Event, error) {
	var events []*calendar.Event
	pageToken := ""
	for {
		call := c.svc.Events.List(calendarID).
			Context(ctx).
			SingleEvents(true).
			ShowDeleted(true)
		if !opts.TimeMin.IsZero() {
			call = call.TimeMin(opts.TimeMin.Format(time.RFC3339))
		}
		if !opts.TimeMax.IsZero() {
			call = call.TimeMax(opts.TimeMax.Format(time.RFC3339))
		}
		if opts.UpdatedMin != nil {
			call = call.UpdatedMin(opts.UpdatedMin.Format(time.RFC3339))
		}
		if opts.MaxResults > 0 {
			call = call.MaxResults(opts.MaxResults)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			return nil, err
		}
		events = append(events, list.Items...)

		if list.NextPageToken == "" || (opts.MaxResults > 0 && int64(len(events)) >= opts.MaxResults) {
			break
		}
		pageToken = list.NextPageToken
	}

	if opts.MaxResults > 0 && int64(len(events)) > opts.MaxResults {
		events = events[:opts.MaxResults]
	}
	return events, nil
}

func (c *Client) GetEvent(ctx context.Context, calendarID, eventID string) (*calendar.Event, error) {
	ev, err := c.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		// 404/410 означают, что события на стороне Google больше нет.
		if gerr, ok := err.(*googleapi.Error); ok && (gerr.Code == 404 || gerr.Code == 410) {
			return nil, nil
		}
		return nil, err
	}
	return ev, nil
}

func (c *Client) InsertEvent(ctx context.Context, calendarID string, ev *calendar.Event) (*calendar.Event, error) {
	return c.svc.Events.Insert(calendarID, ev).Context(ctx).Do()
}

func (c *Client) UpdateEvent(ctx context.Context, calendarID, eventID string, ev *calendar.Event) (*calendar.Event, error) {
	return c.svc.Events.Update(calendarID, eventID, ev).Context(ctx).Do()
}

func (c *Client) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	return c.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
}
