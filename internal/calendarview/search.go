package calendarview

import (
	"strings"

	"github.com/acadops/calendar-api/internal/models"
)

// Matches reports whether the event matches a free-text query. The empty
// query matches everything; otherwise the query must be a case-insensitive
// substring of at least one non-empty field among title, course, tutor,
// status label and location.
func Matches(ev models.Event, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, field := range []string{ev.Title, ev.Course, ev.Tutor, string(ev.Status), ev.Location} {
		if field == "" {
			continue
		}
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

// Filter returns the subset of events matching the query, preserving input
// order.
func Filter(events []models.Event, query string) []models.Event {
	if query == "" {
		return events
	}
	out := make([]models.Event, 0, len(events))
	for _, ev := range events {
		if Matches(ev, query) {
			out = append(out, ev)
		}
	}
	return out
}
