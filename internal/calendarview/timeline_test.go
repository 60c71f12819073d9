package calendarview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadops/calendar-api/internal/models"
)

func TestLayoutDayOffsets(t *testing.T) {
	events := []models.Event{
		{ID: 1, StartTime: "09:00", EndTime: "10:00"},
	}
	blocks := LayoutDay(events, 720)
	require.Len(t, blocks, 1)
	assert.InDelta(t, 270.0, blocks[0].Top, 1e-9)
	assert.InDelta(t, 30.0, blocks[0].Height, 1e-9)
}

func TestLayoutDayMinimumHeight(t *testing.T) {
	events := []models.Event{
		{ID: 1, StartTime: "12:00", EndTime: "12:01"}, // one minute
		{ID: 2, StartTime: "08:00", EndTime: "08:00"}, // zero duration
	}
	blocks := LayoutDay(events, 720)
	require.Len(t, blocks, 2)
	assert.Equal(t, MinBlockHeight, blocks[0].Height)
	assert.Equal(t, MinBlockHeight, blocks[1].Height)
}

func TestLayoutDayMissingTimesDefaultToMidnight(t *testing.T) {
	blocks := LayoutDay([]models.Event{{ID: 1}}, 720)
	require.Len(t, blocks, 1)
	assert.Zero(t, blocks[0].Top)
	assert.Equal(t, MinBlockHeight, blocks[0].Height)
}

func TestLayoutDayTruncatesSeconds(t *testing.T) {
	blocks := LayoutDay([]models.Event{{ID: 1, StartTime: "09:00:30", EndTime: "10:00:45"}}, 720)
	require.Len(t, blocks, 1)
	assert.InDelta(t, 270.0, blocks[0].Top, 1e-9)
	assert.InDelta(t, 30.0, blocks[0].Height, 1e-9)
}

func TestLayoutDayStacksInInputOrder(t *testing.T) {
	events := []models.Event{
		{ID: 2, StartTime: "10:00", EndTime: "11:00"},
		{ID: 1, StartTime: "10:00", EndTime: "11:00"},
	}
	blocks := LayoutDay(events, 1440)
	require.Len(t, blocks, 2)
	assert.Equal(t, int64(2), blocks[0].Event.ID)
	assert.Equal(t, int64(1), blocks[1].Event.ID)
	assert.Equal(t, blocks[0].Top, blocks[1].Top)
}

func TestLayoutDayLabelFallsBackToCourseThenUntitled(t *testing.T) {
	events := []models.Event{
		{ID: 1, Title: "Midterm Review", Course: "Algebra II", StartTime: "09:00", EndTime: "10:00"},
		{ID: 2, Course: "Algebra II", StartTime: "10:00", EndTime: "11:00"},
		{ID: 3, StartTime: "11:00", EndTime: "12:00"},
	}
	blocks := LayoutDay(events, 720)
	require.Len(t, blocks, 3)
	assert.Equal(t, "Midterm Review", blocks[0].Label)
	assert.Equal(t, "Algebra II", blocks[1].Label)
	assert.Equal(t, UntitledLabel, blocks[2].Label)
}

func TestClockMinutes(t *testing.T) {
	cases := map[string]int{
		"00:00":    0,
		"09:30":    570,
		"23:59":    1439,
		"07:05:59": 425,
		"":         0,
		"banana":   0,
		"25:00":    0,
	}
	for raw, want := range cases {
		assert.Equal(t, want, clockMinutes(raw), raw)
	}
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:30", FormatClock("09:30:15"))
	assert.Equal(t, "9:30", FormatClock("9:30"))
	assert.Equal(t, "", FormatClock(""))
}
