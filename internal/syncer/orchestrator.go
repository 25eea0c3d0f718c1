// inapa-event-attendance/internal/syncer/orchestrator.go

package syncer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/amirandap/inapa-event-attendance-sub000/internal/gcal"
	"github.com/amirandap/inapa-event-attendance-sub000/internal/store"
)

// Значения по умолчанию для оркестратора.
const (
	DefaultSyncInterval   = 15 * time.Minute
	DefaultWindowDays     = 30
	DefaultMaxResults     = 250
	DefaultFullWindowDays = 365
	DefaultFullMaxResults = 2500
)

// APIFactory выдает аутентифицированный клиент календаря. Отдельная фабрика
// (а не готовый клиент) нужна, чтобы каждый запуск заново проходил цепочку
// стратегий: учетные данные могут протухнуть между запусками.
type APIFactory func(ctx context.Context) (gcal.CalendarAPI, error)

// CalendarIDProvider отдает актуальный id календаря-источника. Функция, а не
// строка, по той же причине, что и APIFactory: настройка может поменяться
// через API между запусками, рестарт процесса не требуется.
type CalendarIDProvider func() string

// Syncer решает, когда запускать инкрементальную или полную синхронизацию,
// троттлит повторные попытки и агрегирует пособытийные результаты.
type Syncer struct {
	store      store.Store
	engine     *Engine
	apiFactory APIFactory
	calendarID CalendarIDProvider

	interval       time.Duration
	windowDays     int
	maxResults     int64
	fullWindowDays int
	fullMaxResults int64

	// Троттлинг отслеживается в памяти процесса; watermark успешной
	// синхронизации живет в хранилище.
	mu          sync.Mutex
	lastAttempt time.Time
	now         func() time.Time
}

func NewSyncer(st store.Store, factory APIFactory, calendarID CalendarIDProvider) *Syncer {
	return &Syncer{
		store:          st,
		engine:         NewEngine(st),
		apiFactory:     factory,
		calendarID:     calendarID,
		interval:       DefaultSyncInterval,
		windowDays:     DefaultWindowDays,
		maxResults:     DefaultMaxResults,
		fullWindowDays: DefaultFullWindowDays,
		fullMaxResults: DefaultFullMaxResults,
		now:            time.Now,
	}
}

// SetInterval меняет минимальный интервал между инкрементальными запусками.
func (s *Syncer) SetInterval(d time.Duration) {
	if d > 0 {
		s.interval = d
	}
}

// SetWindowDays меняет окно выборки (± дней от текущего момента).
func (s *Syncer) SetWindowDays(days int) {
	if days > 0 {
		s.windowDays = days
	}
}

// Engine возвращает движок upsert'а (нужен webhook-обработчику).
func (s *Syncer) Engine() *Engine {
	return s.engine
}

// RunSync выполняет один запуск синхронизации. Никогда не возвращает nil:
// даже при частичном провале вызывающий получает агрегированный результат.
func (s *Syncer) RunSync(ctx context.Context, opts SyncOptions) *SyncResult {
	result := &SyncResult{Success: true, Errors: []SyncError{}, SyncedEvents: []SyncedEvent{}}
	startedAt := s.now()

	// Троттлинг только для инкрементальных запусков: частые обращения
	// read-путей не должны порождать лавину запросов к Google.
	s.mu.Lock()
	if !opts.Force && !opts.Full {
		if !s.lastAttempt.IsZero() && startedAt.Sub(s.lastAttempt) < s.interval {
			s.mu.Unlock()
			result.Throttled = true
			result.Message = "синхронизация пропущена: интервал с прошлой попытки не истек"
			return result
		}
	}
	s.lastAttempt = startedAt
	s.mu.Unlock()

	api, err := s.apiFactory(ctx)
	if err != nil {
		// Исчерпание учетных данных не фатально для системы: приложение
		// продолжает отдавать локальные данные.
		result.Success = false
		result.Message = fmt.Sprintf("клиент календаря недоступен: %v", err)
		log.Printf("Sync: %s", result.Message)
		return result
	}

	listOpts := s.buildListOptions(opts)
	events, err := api.ListEvents(ctx, s.calendarID(), listOpts)
	if err != nil {
		// Ошибка уровня выборки фатальна для этого запуска: watermark не
		// продвигаем, следующий запуск повторит попытку естественным образом.
		result.Success = false
		result.Message = fmt.Sprintf("ошибка выборки событий: %v", err)
		log.Printf("Sync: %s", result.Message)
		return result
	}

	result.TotalEvents = len(events)
	for _, remote := range events {
		outcome, err := s.engine.UpsertEvent(remote)
		if err != nil {
			// Пособытийная изоляция: ошибка одного события не прерывает
			// обработку остальных.
			result.Errors = append(result.Errors, SyncError{EventID: remote.Id, Message: err.Error()})
			s.store.AppendAudit("sync_event_error", "event", remote.Id, err.Error())
			continue
		}
		switch outcome.Action {
		case ActionCreated:
			result.Created++
		case ActionUpdated:
			result.Updated++
		case ActionDeleted:
			result.Deleted++
		case ActionSkipped:
			result.Skipped++
		}
		result.SyncedEvents = append(result.SyncedEvents, SyncedEvent{
			LocalID:  outcome.EventID,
			RemoteID: remote.Id,
			Title:    remote.Summary,
			Action:   outcome.Action,
		})
	}

	// Активные события с прошедшим временем окончания переводятся в
	// completed: это локальный жизненный цикл, внешний календарь такого
	// статуса не знает.
	if n, err := s.store.MarkEventsCompleted(s.now()); err != nil {
		log.Printf("Sync: не удалось отметить завершенные события: %v", err)
	} else if n > 0 {
		s.store.AppendAudit("events_completed", "event", "", fmt.Sprintf("count=%d", n))
	}

	// Watermark продвигается только при успешной выборке. Берем момент
	// старта запуска, чтобы не потерять события, обновившиеся во время него.
	if err := s.store.SetLastSyncAt(startedAt); err != nil {
		log.Printf("Sync: не удалось записать watermark: %v", err)
	}

	s.store.AppendAudit("sync_completed", "sync", "",
		fmt.Sprintf("total=%d created=%d updated=%d deleted=%d skipped=%d errors=%d",
			result.TotalEvents, result.Created, result.Updated, result.Deleted, result.Skipped, len(result.Errors)))
	return result
}

// SyncOne — точечная синхронизация одного события (webhook-путь): повторная
// выборка по id и тот же UpsertEvent. Исчезнувшее событие отменяется мягко.
func (s *Syncer) SyncOne(ctx context.Context, eventID string) (UpsertOutcome, error) {
	api, err := s.apiFactory(ctx)
	if err != nil {
		return UpsertOutcome{}, err
	}
	remote, err := api.GetEvent(ctx, s.calendarID(), eventID)
	if err != nil {
		return UpsertOutcome{}, err
	}
	if remote == nil {
		return UpsertOutcome{Action: ActionDeleted}, s.engine.CancelEvent(eventID)
	}
	return s.engine.UpsertEvent(remote)
}

// CancelRemote мягко отменяет локальное событие по внешнему id.
func (s *Syncer) CancelRemote(remoteEventID string) error {
	return s.engine.CancelEvent(remoteEventID)
}

func (s *Syncer) buildListOptions(opts SyncOptions) gcal.ListOptions {
	now := s.now()
	if opts.Full {
		return gcal.ListOptions{
			TimeMin:    now.AddDate(0, 0, -s.fullWindowDays),
			TimeMax:    now.AddDate(0, 0, s.fullWindowDays),
			MaxResults: s.fullMaxResults,
		}
	}

	listOpts := gcal.ListOptions{
		TimeMin:    now.AddDate(0, 0, -s.windowDays),
		TimeMax:    now.AddDate(0, 0, s.windowDays),
		MaxResults: s.maxResults,
	}
	// updatedMin строится из watermark последней успешной синхронизации.
	if state, err := s.store.GetSyncState(); err == nil && state.LastSyncAt != nil {
		listOpts.UpdatedMin = state.LastSyncAt
	}
	return listOpts
}
