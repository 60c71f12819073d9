package calendarview

import "github.com/acadops/calendar-api/internal/models"

// StatusCounts tallies the events of one date key by workflow status.
type StatusCounts struct {
	Approved int `json:"approved"`
	Pending  int `json:"pending"`
	Rejected int `json:"rejected"`
}

// HasIndicator reports whether the day earns a grid dot. Rejected events are
// tallied but intentionally never produce an indicator.
func (c StatusCounts) HasIndicator() bool {
	return c.Approved+c.Pending > 0
}

// Aggregate buckets events by their date key in a single pass. The result is
// independent of input order. Events with a missing status count as pending;
// events with a malformed date key are bucketed under the literal key rather
// than dropped.
func Aggregate(events []models.Event) map[string]StatusCounts {
	buckets := make(map[string]StatusCounts, len(events))
	for _, ev := range events {
		counts := buckets[ev.Date]
		switch ev.Status {
		case models.EventStatusApproved:
			counts.Approved++
		case models.EventStatusRejected:
			counts.Rejected++
		default:
			counts.Pending++
		}
		buckets[ev.Date] = counts
	}
	return buckets
}
