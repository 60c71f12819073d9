package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadops/calendar-api/internal/models"
	"github.com/acadops/calendar-api/internal/notify"
	"github.com/acadops/calendar-api/pkg/config"
	appErrors "github.com/acadops/calendar-api/pkg/errors"
)

type rangeListerStub struct {
	events []models.Event
	calls  int
	starts []string
	ends   []string
}

func (s *rangeListerStub) ListRange(ctx context.Context, start, end string) ([]models.Event, error) {
	s.calls++
	s.starts = append(s.starts, start)
	s.ends = append(s.ends, end)
	return s.events, nil
}

type cacheStub struct {
	mu      sync.Mutex
	store   map[string][]byte
	version int64
	incrs   int
}

func newCacheStub() *cacheStub {
	return &cacheStub{store: map[string][]byte{}}
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	raw, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[key] = raw
	return nil
}

func (s *cacheStub) Incr(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	s.incrs++
	return s.version, nil
}

func (s *cacheStub) GetInt(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version, nil
}

func newCalendarServiceForTest(events []models.Event, cacheEnabled bool) (*CalendarService, *rangeListerStub, *cacheStub) {
	lister := &rangeListerStub{events: events}
	cache := newCacheStub()
	cfg := config.CalendarConfig{CacheEnabled: cacheEnabled, CacheTTL: time.Minute, DayHeight: 720}
	svc := NewCalendarService(lister, cache, nil, cfg, nil)
	svc.now = func() time.Time { return time.Date(2025, time.November, 3, 12, 0, 0, 0, time.UTC) }
	return svc, lister, cache
}

func TestCalendarServiceMonthViewSpansGridCells(t *testing.T) {
	events := []models.Event{
		{ID: 1, Title: "Algebra", Date: "2025-11-03", StartTime: "09:00", EndTime: "10:00", Status: models.EventStatusApproved},
	}
	svc, lister, _ := newCalendarServiceForTest(events, false)

	view, err := svc.View(context.Background(), CalendarViewRequest{Date: "2025-11-15", Mode: "month"})
	require.NoError(t, err)
	require.NotNil(t, view.Month)
	assert.Equal(t, "November 2025", view.Title)

	// the snapshot covers the leading and trailing cells, not just November
	require.Equal(t, 1, lister.calls)
	assert.Equal(t, "2025-10-26", lister.starts[0])
	assert.Equal(t, "2025-12-06", lister.ends[0])
}

func TestCalendarServiceWeekViewSpan(t *testing.T) {
	svc, lister, _ := newCalendarServiceForTest(nil, false)

	view, err := svc.View(context.Background(), CalendarViewRequest{Date: "2025-11-05", Mode: "week"})
	require.NoError(t, err)
	require.Len(t, view.Days, 7)
	assert.Equal(t, "2025-11-02", lister.starts[0])
	assert.Equal(t, "2025-11-08", lister.ends[0])
}

func TestCalendarServiceDefaultsToTodayAndMonth(t *testing.T) {
	svc, _, _ := newCalendarServiceForTest(nil, false)

	view, err := svc.View(context.Background(), CalendarViewRequest{})
	require.NoError(t, err)
	require.NotNil(t, view.Month)
	assert.Equal(t, "November 2025", view.Title)
}

func TestCalendarServiceRejectsBadInput(t *testing.T) {
	svc, _, _ := newCalendarServiceForTest(nil, false)

	_, err := svc.View(context.Background(), CalendarViewRequest{Date: "11/05/2025"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.View(context.Background(), CalendarViewRequest{Mode: "decade"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCalendarServiceMemoizesOnExactInputs(t *testing.T) {
	svc, lister, _ := newCalendarServiceForTest(nil, true)

	first, err := svc.View(context.Background(), CalendarViewRequest{Date: "2025-11-15", Mode: "month", Query: "algebra"})
	require.NoError(t, err)
	second, err := svc.View(context.Background(), CalendarViewRequest{Date: "2025-11-15", Mode: "month", Query: "algebra"})
	require.NoError(t, err)

	assert.Equal(t, 1, lister.calls)
	assert.Equal(t, first.Title, second.Title)

	// different query is a different memo key
	_, err = svc.View(context.Background(), CalendarViewRequest{Date: "2025-11-15", Mode: "month", Query: "chemistry"})
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
}

func TestCalendarServiceMemoExpiresAtMidnight(t *testing.T) {
	svc, lister, _ := newCalendarServiceForTest(nil, true)

	view, err := svc.View(context.Background(), CalendarViewRequest{Date: "2025-11-03", Mode: "month"})
	require.NoError(t, err)
	require.Equal(t, 1, lister.calls)
	assert.True(t, view.Month.Weeks[1][1].IsToday) // Nov 3

	// same request on the next day must not reuse yesterday's today-highlight
	svc.now = func() time.Time { return time.Date(2025, time.November, 4, 0, 0, 1, 0, time.UTC) }
	view, err = svc.View(context.Background(), CalendarViewRequest{Date: "2025-11-03", Mode: "month"})
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
	assert.False(t, view.Month.Weeks[1][1].IsToday)
	assert.True(t, view.Month.Weeks[1][2].IsToday) // Nov 4
}

func TestCalendarServiceVersionBumpInvalidatesMemo(t *testing.T) {
	svc, lister, cache := newCalendarServiceForTest(nil, true)

	_, err := svc.View(context.Background(), CalendarViewRequest{Date: "2025-11-15", Mode: "month"})
	require.NoError(t, err)
	require.Equal(t, 1, lister.calls)

	_, err = cache.Incr(context.Background(), eventsVersionKey)
	require.NoError(t, err)

	_, err = svc.View(context.Background(), CalendarViewRequest{Date: "2025-11-15", Mode: "month"})
	require.NoError(t, err)
	assert.Equal(t, 2, lister.calls)
}

func TestCalendarServiceWatchChangesBumpsVersion(t *testing.T) {
	svc, _, cache := newCalendarServiceForTest(nil, true)

	changes := make(chan notify.Change, 1)
	done := make(chan struct{})
	go func() {
		svc.WatchChanges(context.Background(), changes)
		close(done)
	}()

	changes <- notify.Change{EventID: 1, Action: notify.ActionCreated, At: time.Now()}
	close(changes)
	<-done

	cache.mu.Lock()
	defer cache.mu.Unlock()
	assert.Equal(t, 1, cache.incrs)
}

func TestCalendarServiceShift(t *testing.T) {
	svc, _, _ := newCalendarServiceForTest(nil, false)

	next, err := svc.Shift("2025-11-05", "month", 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-12-01", next)

	prev, err := svc.Shift("2025-11-05", "day", -1)
	require.NoError(t, err)
	assert.Equal(t, "2025-11-04", prev)

	_, err = svc.Shift("bad", "month", 1)
	require.Error(t, err)
}
