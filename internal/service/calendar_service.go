package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/acadops/calendar-api/internal/calendarview"
	"github.com/acadops/calendar-api/internal/models"
	"github.com/acadops/calendar-api/internal/notify"
	"github.com/acadops/calendar-api/pkg/config"
	appErrors "github.com/acadops/calendar-api/pkg/errors"
)

const eventsVersionKey = "calendar:events:version"

type eventRangeLister interface {
	ListRange(ctx context.Context, start, end string) ([]models.Event, error)
}

type viewCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Incr(ctx context.Context, key string) (int64, error)
	GetInt(ctx context.Context, key string) (int64, error)
}

type viewMetrics interface {
	RecordCacheOperation(hit bool)
	ObserveViewBuild(mode string, duration time.Duration)
}

// CalendarService assembles render models for the calendar views. The engine
// in internal/calendarview does the layout; this service fetches the event
// snapshot for the visible span and memoizes the result in Redis, keyed on
// the exact view inputs plus a version counter bumped on every event change.
type CalendarService struct {
	events  eventRangeLister
	cache   viewCache
	metrics viewMetrics
	cfg     config.CalendarConfig
	logger  *zap.Logger
	now     func() time.Time
}

// NewCalendarService constructs the service. Metrics may be nil.
func NewCalendarService(events eventRangeLister, cache viewCache, metrics viewMetrics, cfg config.CalendarConfig, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{events: events, cache: cache, metrics: metrics, cfg: cfg, logger: logger, now: time.Now}
}

// CalendarViewRequest describes one view query.
type CalendarViewRequest struct {
	Date     string
	Mode     string
	Query    string
	Selected string
}

// View returns the render model for the requested mode and reference date.
func (s *CalendarService) View(ctx context.Context, req CalendarViewRequest) (*calendarview.View, error) {
	ref := s.now()
	if req.Date != "" {
		parsed, err := calendarview.ParseKey(req.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
		}
		ref = parsed
	}
	mode := calendarview.ViewMonth
	if req.Mode != "" {
		mode = calendarview.ViewMode(req.Mode)
		if !mode.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, "mode must be day, week, month or year")
		}
	}

	cacheKey := ""
	if s.cacheable() {
		version, err := s.cache.GetInt(ctx, eventsVersionKey)
		if err != nil {
			s.logger.Warn("events version lookup failed, skipping cache", zap.Error(err))
		} else {
			// The today-highlight is baked into the render model, so the
			// current day is part of the memo key; entries go stale at
			// midnight instead of after CacheTTL.
			cacheKey = fmt.Sprintf("calendar:view:%s:%s:today=%s:v%d:q=%s:sel=%s",
				mode, calendarview.DateKey(ref), calendarview.DateKey(s.now()), version, req.Query, req.Selected)
			var cached calendarview.View
			if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
				if s.metrics != nil {
					s.metrics.RecordCacheOperation(true)
				}
				return &cached, nil
			}
			if s.metrics != nil {
				s.metrics.RecordCacheOperation(false)
			}
		}
	}

	start, end := visibleSpan(ref, mode)
	events, err := s.events.ListRange(ctx, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load events for view")
	}

	buildStart := time.Now()
	view := calendarview.Compose(calendarview.Input{
		Reference: ref,
		Mode:      mode,
		Events:    events,
		Query:     req.Query,
		Selected:  req.Selected,
		Now:       s.now(),
		DayHeight: s.cfg.DayHeight,
	})
	if s.metrics != nil {
		s.metrics.ObserveViewBuild(string(mode), time.Since(buildStart))
	}

	if cacheKey != "" {
		if err := s.cache.Set(ctx, cacheKey, view, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("failed to cache calendar view", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return &view, nil
}

// Shift returns the date key reached by stepping the reference date by delta
// steps of the mode's unit.
func (s *CalendarService) Shift(dateKey, mode string, delta int) (string, error) {
	ref, err := calendarview.ParseKey(dateKey)
	if err != nil {
		return "", appErrors.Clone(appErrors.ErrValidation, "date must be YYYY-MM-DD")
	}
	vm := calendarview.ViewMode(mode)
	if !vm.Valid() {
		return "", appErrors.Clone(appErrors.ErrValidation, "mode must be day, week, month or year")
	}
	return calendarview.DateKey(calendarview.Shift(ref, vm, delta)), nil
}

// WatchChanges bumps the events version counter whenever the notify bus
// reports a mutation, invalidating every memoized view at once. Runs until
// the context is done or the channel closes.
func (s *CalendarService) WatchChanges(ctx context.Context, changes <-chan notify.Change) {
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			if _, err := s.cache.Incr(ctx, eventsVersionKey); err != nil {
				s.logger.Warn("failed to bump events version",
					zap.Int64("event_id", change.EventID), zap.Error(err))
			}
		}
	}
}

func (s *CalendarService) cacheable() bool {
	return s.cfg.CacheEnabled && s.cache != nil
}

// visibleSpan is the inclusive date-key range an event must fall in to be
// visible at the given zoom. Month and year spans cover the full leading and
// trailing grid cells, not just the month's own days.
func visibleSpan(ref time.Time, mode calendarview.ViewMode) (string, string) {
	switch mode {
	case calendarview.ViewDay:
		key := calendarview.DateKey(ref)
		return key, key
	case calendarview.ViewWeek:
		start := calendarview.StartOfWeek(ref)
		return calendarview.DateKey(start), calendarview.DateKey(start.AddDate(0, 0, calendarview.MatrixCols-1))
	case calendarview.ViewYear:
		jan := calendarview.MonthMatrix(time.Date(ref.Year(), time.January, 1, 0, 0, 0, 0, ref.Location()))
		dec := calendarview.MonthMatrix(time.Date(ref.Year(), time.December, 1, 0, 0, 0, 0, ref.Location()))
		return calendarview.DateKey(jan[0][0]), calendarview.DateKey(dec[calendarview.MatrixRows-1][calendarview.MatrixCols-1])
	default:
		matrix := calendarview.MonthMatrix(ref)
		return calendarview.DateKey(matrix[0][0]), calendarview.DateKey(matrix[calendarview.MatrixRows-1][calendarview.MatrixCols-1])
	}
}
