// inapa-event-attendance/internal/syncer/engine.go

package syncer

import (
	"fmt"
	"strings"
	"time"

	"github.com/amirandap/inapa-event-attendance-sub000/internal/store"
	"github.com/amirandap/inapa-event-attendance-sub000/models"

	"github.com/google/uuid"
	"google.golang.org/api/calendar/v3"
)

// Организатор по умолчанию для событий без email организатора.
const fallbackOrganizerEmail = "sin-organizador@inapa.gob.do"

// Engine — движок reconciliation: для каждого события из внешнего календаря
// решает create/update/skip/soft-cancel, пишет локальную запись и
// синхронизирует список приглашенных, не трогая записи о присутствии.
type Engine struct {
	store store.Store
	now   func() time.Time
}

func NewEngine(st store.Store) *Engine {
	return &Engine{store: st, now: time.Now}
}

// UpsertEvent обрабатывает одно событие внешнего календаря. Любая ошибка
// относится только к этому событию: вызывающий код складывает ее в список
// ошибок пакета и продолжает обработку остальных.
func (e *Engine) UpsertEvent(remote *calendar.Event) (UpsertOutcome, error) {
	if remote == nil || remote.Id == "" {
		return UpsertOutcome{}, fmt.Errorf("событие без идентификатора")
	}

	// Отмененное на стороне Google событие — только мягкая отмена локального.
	if remote.Status == "cancelled" {
		local, err := e.findLocalMatch(remote)
		if err != nil {
			return UpsertOutcome{}, err
		}
		if local == nil || local.Status == models.EventStatusCancelled {
			return UpsertOutcome{Action: ActionSkipped}, nil
		}
		return e.softCancel(local)
	}

	startTime, endTime, err := eventTimes(remote)
	if err != nil {
		return UpsertOutcome{}, err
	}

	local, err := e.findLocalMatch(remote)
	if err != nil {
		return UpsertOutcome{}, err
	}

	if local == nil {
		return e.createFromRemote(remote, startTime, endTime)
	}

	if !shouldOverwrite(local, remote) {
		return UpsertOutcome{EventID: local.ID, Action: ActionSkipped}, nil
	}
	return e.updateFromRemote(local, remote, startTime, endTime)
}

// CancelEvent мягко отменяет локальное событие по внешнему идентификатору.
// Отсутствие локального события — не ошибка (no-op).
func (e *Engine) CancelEvent(remoteEventID string) error {
	local, err := e.store.FindEventByGoogleID(remoteEventID)
	if err != nil {
		return err
	}
	if local == nil || local.Status == models.EventStatusCancelled {
		return nil
	}
	_, err = e.softCancel(local)
	return err
}

func (e *Engine) softCancel(local *models.Event) (UpsertOutcome, error) {
	local.Status = models.EventStatusCancelled
	now := e.now()
	local.LastSyncedAt = &now
	if err := e.store.UpdateEvent(local); err != nil {
		return UpsertOutcome{}, err
	}
	e.store.AppendAudit("event_cancelled", "event", fmt.Sprint(local.ID), "отменено на стороне внешнего календаря")
	return UpsertOutcome{EventID: local.ID, Action: ActionDeleted}, nil
}

func (e *Engine) createFromRemote(remote *calendar.Event, startTime, endTime time.Time) (UpsertOutcome, error) {
	organizer, err := e.resolveOrganizer(remote)
	if err != nil {
		return UpsertOutcome{}, err
	}

	token, err := e.generateFormToken()
	if err != nil {
		return UpsertOutcome{}, err
	}

	now := e.now()
	event := &models.Event{
		Title:        remote.Summary,
		Description:  remote.Description,
		Location:     remote.Location,
		StartTime:    startTime,
		EndTime:      endTime,
		FormToken:    token,
		Status:       statusFromRemote(remote.Status),
		Sequence:     int(remote.Sequence),
		OrganizerID:  organizer.ID,
		LastSyncedAt: &now,
	}
	setRemoteIdentifiers(event, remote)

	// Событие и список приглашенных пишутся одной транзакцией: оборванная
	// запись приглашенных не должна оставить событие с зафиксированными
	// etag/sequence, иначе следующий запуск пропустит его как свежее.
	if err := e.store.SaveEventWithInvitees(event, inviteesFromRemote(remote)); err != nil {
		// Нарушение уникальности google_event_id — это гонка двух запусков;
		// сообщаем громко как ошибку события, следующий запуск разрешит ее
		// через identity resolution.
		if store.IsDuplicate(err) {
			return UpsertOutcome{}, fmt.Errorf("конфликт уникальности при создании события %s: %w", remote.Id, err)
		}
		return UpsertOutcome{}, err
	}

	e.store.AppendAudit("event_created", "event", fmt.Sprint(event.ID), "создано из внешнего календаря: "+remote.Id)
	return UpsertOutcome{EventID: event.ID, Action: ActionCreated}, nil
}

func (e *Engine) updateFromRemote(local *models.Event, remote *calendar.Event, startTime, endTime time.Time) (UpsertOutcome, error) {
	local.Title = remote.Summary
	local.Description = remote.Description
	local.Location = remote.Location
	local.StartTime = startTime
	local.EndTime = endTime
	local.Status = statusFromRemote(remote.Status)
	// Sequence никогда не уменьшается, даже если правило перезаписи сработало
	// по updated/etag.
	if int(remote.Sequence) > local.Sequence {
		local.Sequence = int(remote.Sequence)
	}
	setRemoteIdentifiers(local, remote)
	now := e.now()
	local.LastSyncedAt = &now

	if err := e.store.SaveEventWithInvitees(local, inviteesFromRemote(remote)); err != nil {
		return UpsertOutcome{}, err
	}
	e.store.AppendAudit("event_updated", "event", fmt.Sprint(local.ID), "обновлено из внешнего календаря: "+remote.Id)
	return UpsertOutcome{EventID: local.ID, Action: ActionUpdated}, nil
}

// inviteesFromRemote строит полный список приглашенных по attendees события.
// Ресурсы календаря (переговорки и т.п.) не материализуются.
func inviteesFromRemote(remote *calendar.Event) []models.Invitee {
	var invitees []models.Invitee
	seen := make(map[string]bool)

	for i, att := range remote.Attendees {
		if att.Resource {
			continue
		}

		key := att.Id
		if key == "" {
			key = strings.ToLower(att.Email)
		}
		if key == "" {
			key = fmt.Sprintf("attendee-%d", i)
		}
		if seen[key] {
			continue
		}
		seen[key] = true

		responseStatus := att.ResponseStatus
		if responseStatus == "" {
			responseStatus = models.ResponseNeedsAction
		}

		invitees = append(invitees, models.Invitee{
			PersonKey:      key,
			Email:          att.Email,
			Name:           att.DisplayName,
			ResponseStatus: responseStatus,
		})
	}

	return invitees
}

func (e *Engine) resolveOrganizer(remote *calendar.Event) (*models.Organizer, error) {
	email := fallbackOrganizerEmail
	name := ""
	if remote.Organizer != nil && remote.Organizer.Email != "" {
		email = strings.ToLower(remote.Organizer.Email)
		name = remote.Organizer.DisplayName
	}
	return e.store.FirstOrCreateOrganizer(email, name)
}

// generateFormToken выдает уникальный токен формы регистрации, проверяя
// отсутствие коллизии в хранилище.
func (e *Engine) generateFormToken() (string, error) {
	for i := 0; i < 5; i++ {
		token := uuid.NewString()
		exists, err := e.store.FormTokenExists(token)
		if err != nil {
			return "", err
		}
		if !exists {
			return token, nil
		}
	}
	return "", fmt.Errorf("не удалось сгенерировать уникальный токен формы")
}

// setRemoteIdentifiers переносит идентификаторы и метки времени источника.
func setRemoteIdentifiers(event *models.Event, remote *calendar.Event) {
	event.GoogleEventID = strPtr(remote.Id)
	event.ICalUID = strPtr(remote.ICalUID)
	event.RecurringEventID = strPtr(remote.RecurringEventId)
	event.Etag = strPtr(remote.Etag)
	if t, err := time.Parse(time.RFC3339, remote.Created); err == nil {
		event.SourceCreatedAt = &t
	}
	if t, err := time.Parse(time.RFC3339, remote.Updated); err == nil {
		event.SourceUpdatedAt = &t
	}
}

func statusFromRemote(status string) string {
	if status == "tentative" {
		return models.EventStatusTentative
	}
	return models.EventStatusActive
}

// eventTimes разбирает start/end события: либо DateTime (RFC3339), либо Date
// (событие на весь день). Неразборчивые даты — ошибка этого события.
func eventTimes(remote *calendar.Event) (time.Time, time.Time, error) {
	start, err := parseEventDateTime(remote.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("неверная дата начала события %s: %w", remote.Id, err)
	}
	end, err := parseEventDateTime(remote.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("неверная дата окончания события %s: %w", remote.Id, err)
	}
	return start, end, nil
}

func parseEventDateTime(dt *calendar.EventDateTime) (time.Time, error) {
	if dt == nil {
		return time.Time{}, fmt.Errorf("дата отсутствует")
	}
	if dt.DateTime != "" {
		return time.Parse(time.RFC3339, dt.DateTime)
	}
	if dt.Date != "" {
		return time.Parse("2006-01-02", dt.Date)
	}
	return time.Time{}, fmt.Errorf("дата отсутствует")
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
