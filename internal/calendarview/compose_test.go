package calendarview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadops/calendar-api/internal/models"
)

func composeFixtureEvents() []models.Event {
	return []models.Event{
		{ID: 1, Title: "Algebra lecture", Course: "Algebra I", Date: "2025-11-03", StartTime: "09:00", EndTime: "10:00", Status: models.EventStatusApproved},
		{ID: 2, Title: "Office hours", Tutor: "Dr. Chen", Date: "2025-11-03", StartTime: "14:00", EndTime: "15:30", Status: models.EventStatusPending},
		{ID: 3, Title: "Cancelled workshop", Date: "2025-11-03", StartTime: "16:00", EndTime: "17:00", Status: models.EventStatusRejected},
		{ID: 4, Title: "Chemistry lab", Course: "Chemistry", Date: "2025-11-05", StartTime: "10:00", EndTime: "12:00", Status: models.EventStatusApproved},
	}
}

func TestComposeMonthView(t *testing.T) {
	in := Input{
		Reference: time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC),
		Mode:      ViewMonth,
		Events:    composeFixtureEvents(),
		Selected:  "2025-11-05",
		Now:       time.Date(2025, time.November, 3, 8, 0, 0, 0, time.UTC),
	}
	view := Compose(in)

	require.NotNil(t, view.Month)
	assert.Nil(t, view.Days)
	assert.Equal(t, "November 2025", view.Title)
	assert.Equal(t, "2025-11-03", view.Reference)

	grid := view.Month
	assert.Equal(t, "2025-10-26", grid.Weeks[0][0].Key)
	assert.False(t, grid.Weeks[0][0].InMonth)

	// November 3rd sits in week row 1, Monday column.
	cell := grid.Weeks[1][1]
	require.Equal(t, "2025-11-03", cell.Key)
	assert.True(t, cell.InMonth)
	assert.True(t, cell.IsToday)
	assert.Equal(t, 1, cell.ApprovedCount)
	assert.Equal(t, 1, cell.PendingCount)

	selected := grid.Weeks[1][3]
	require.Equal(t, "2025-11-05", selected.Key)
	assert.True(t, selected.IsSelected)
	assert.False(t, cell.IsSelected)
}

func TestComposeWeekView(t *testing.T) {
	in := Input{
		Reference: time.Date(2025, time.November, 2, 0, 0, 0, 0, time.UTC),
		Mode:      ViewWeek,
		Events:    composeFixtureEvents(),
		Now:       time.Date(2025, time.November, 2, 8, 0, 0, 0, time.UTC),
		DayHeight: 720,
	}
	view := Compose(in)

	require.Len(t, view.Days, 7)
	assert.Equal(t, "Nov 2 – Nov 8, 2025", view.Title)
	for i, want := range []string{"2025-11-02", "2025-11-03", "2025-11-04", "2025-11-05", "2025-11-06", "2025-11-07", "2025-11-08"} {
		assert.Equal(t, want, view.Days[i].Key)
	}

	monday := view.Days[1]
	require.Len(t, monday.Blocks, 2, "rejected events must not render")
	assert.Equal(t, int64(1), monday.Blocks[0].Event.ID)
	assert.InDelta(t, 270.0, monday.Blocks[0].Top, 1e-9)
	assert.InDelta(t, 30.0, monday.Blocks[0].Height, 1e-9)
}

func TestComposeDayView(t *testing.T) {
	in := Input{
		Reference: time.Date(2025, time.November, 5, 0, 0, 0, 0, time.UTC),
		Mode:      ViewDay,
		Events:    composeFixtureEvents(),
		Now:       time.Date(2025, time.November, 5, 8, 0, 0, 0, time.UTC),
	}
	view := Compose(in)

	require.Len(t, view.Days, 1)
	assert.Equal(t, "Wed, Nov 5, 2025", view.Title)
	assert.Equal(t, "2025-11-05", view.Days[0].Key)
	require.Len(t, view.Days[0].Blocks, 1)
	assert.Equal(t, int64(4), view.Days[0].Blocks[0].Event.ID)
}

func TestComposeDayViewLabelsUntitledEvents(t *testing.T) {
	in := Input{
		Reference: time.Date(2025, time.November, 5, 0, 0, 0, 0, time.UTC),
		Mode:      ViewDay,
		Events: []models.Event{
			{ID: 10, Date: "2025-11-05", StartTime: "09:00", EndTime: "10:00", Status: models.EventStatusApproved},
		},
		Now: time.Date(2025, time.November, 5, 8, 0, 0, 0, time.UTC),
	}
	view := Compose(in)

	require.Len(t, view.Days, 1)
	require.Len(t, view.Days[0].Blocks, 1)
	assert.Equal(t, UntitledLabel, view.Days[0].Blocks[0].Label)
}

func TestComposeYearView(t *testing.T) {
	in := Input{
		Reference: time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		Mode:      ViewYear,
		Events:    composeFixtureEvents(),
		Now:       time.Date(2025, time.November, 3, 8, 0, 0, 0, time.UTC),
	}
	view := Compose(in)

	require.Len(t, view.Months, 12)
	assert.Equal(t, "2025", view.Title)
	assert.Equal(t, time.January, view.Months[0].Month)
	assert.Equal(t, time.December, view.Months[11].Month)

	november := view.Months[10]
	cell := november.Weeks[1][1]
	require.Equal(t, "2025-11-03", cell.Key)
	assert.Equal(t, 1, cell.ApprovedCount)
	assert.True(t, cell.IsToday)
	assert.False(t, cell.IsSelected)
}

func TestComposeSearchAppliesBeforeAggregation(t *testing.T) {
	in := Input{
		Reference: time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC),
		Mode:      ViewMonth,
		Events:    composeFixtureEvents(),
		Query:     "algebra",
		Now:       time.Date(2025, time.November, 3, 8, 0, 0, 0, time.UTC),
	}
	view := Compose(in)

	cell := view.Month.Weeks[1][1]
	assert.Equal(t, 1, cell.ApprovedCount)
	assert.Equal(t, 0, cell.PendingCount)
}

func TestComposeIdempotent(t *testing.T) {
	in := Input{
		Reference: time.Date(2025, time.November, 3, 0, 0, 0, 0, time.UTC),
		Mode:      ViewWeek,
		Events:    composeFixtureEvents(),
		Query:     "a",
		Now:       time.Date(2025, time.November, 3, 8, 0, 0, 0, time.UTC),
	}
	first := Compose(in)
	second := Compose(in)
	assert.Equal(t, first, second)
}

func TestShift(t *testing.T) {
	ref := time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-01-01", DateKey(Shift(ref, ViewDay, 1)))
	assert.Equal(t, "2025-12-24", DateKey(Shift(ref, ViewWeek, -1)))
	// Month steps land on the first of the target month and roll the year.
	assert.Equal(t, "2026-01-01", DateKey(Shift(ref, ViewMonth, 1)))
	assert.Equal(t, "2025-11-01", DateKey(Shift(ref, ViewMonth, -1)))
	assert.Equal(t, "2026-01-01", DateKey(Shift(ref, ViewYear, 1)))
}

func TestTitleWeekAcrossYearBoundary(t *testing.T) {
	ref := time.Date(2025, time.December, 30, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Dec 28, 2025 – Jan 3, 2026", Title(ref, ViewWeek))
}

func TestViewModeValid(t *testing.T) {
	for _, m := range []ViewMode{ViewDay, ViewWeek, ViewMonth, ViewYear} {
		assert.True(t, m.Valid())
	}
	assert.False(t, ViewMode("quarter").Valid())
}
