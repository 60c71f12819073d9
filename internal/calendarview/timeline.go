package calendarview

import (
	"strconv"
	"strings"

	"github.com/acadops/calendar-api/internal/models"
)

const (
	minutesPerDay = 1440

	// DefaultDayHeight maps one layout unit to one minute.
	DefaultDayHeight = 1440.0

	// MinBlockHeight keeps zero-duration and very short events readable.
	MinBlockHeight = 28.0
)

// UntitledLabel renders in place of a block label when an event carries
// neither a title nor a course.
const UntitledLabel = "Untitled Event"

// TimedBlock positions one event vertically within a day column. Same-day
// events are never repositioned horizontally; overlapping blocks stack in
// input order.
type TimedBlock struct {
	Event  models.Event `json:"event"`
	Label  string       `json:"label"`
	Top    float64      `json:"top"`
	Height float64      `json:"height"`
}

// LayoutDay maps the events of a single date onto vertical offsets and
// heights within a column of dayHeight layout units. Missing or malformed
// times fall back to 00:00.
func LayoutDay(events []models.Event, dayHeight float64) []TimedBlock {
	if dayHeight <= 0 {
		dayHeight = DefaultDayHeight
	}
	blocks := make([]TimedBlock, 0, len(events))
	for _, ev := range events {
		start := clockMinutes(ev.StartTime)
		end := clockMinutes(ev.EndTime)
		span := end - start
		if span < 1 {
			span = 1
		}
		height := float64(span) / minutesPerDay * dayHeight
		if height < MinBlockHeight {
			height = MinBlockHeight
		}
		blocks = append(blocks, TimedBlock{
			Event:  ev,
			Label:  blockLabel(ev),
			Top:    float64(start) / minutesPerDay * dayHeight,
			Height: height,
		})
	}
	return blocks
}

// blockLabel picks the display text for a block: title, then course, then
// the untitled fallback.
func blockLabel(ev models.Event) string {
	if ev.Title != "" {
		return ev.Title
	}
	if ev.Course != "" {
		return ev.Course
	}
	return UntitledLabel
}

// clockMinutes parses "HH:MM" (or "HH:MM:SS", truncated) into minutes since
// midnight. Anything unparseable counts as midnight.
func clockMinutes(raw string) int {
	if len(raw) > 5 {
		raw = raw[:5]
	}
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return 0
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		mm = 0
	}
	return hh*60 + mm
}

// FormatClock truncates a raw time value to its HH:MM prefix for display.
func FormatClock(raw string) string {
	if len(raw) >= 5 {
		return raw[:5]
	}
	return raw
}
