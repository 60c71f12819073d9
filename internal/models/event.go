package models

import "time"

// EventStatus tracks the approval workflow state of a scheduled event.
type EventStatus string

const (
	EventStatusPending  EventStatus = "pending"
	EventStatusApproved EventStatus = "approved"
	EventStatusRejected EventStatus = "rejected"
)

// Valid reports whether the status is one of the workflow states.
func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusPending, EventStatusApproved, EventStatusRejected:
		return true
	}
	return false
}

// Event represents a scheduled academic event. Date is a local calendar day
// key (YYYY-MM-DD) and StartTime/EndTime are local wall-clock times (HH:MM);
// neither is ever interpreted as UTC.
type Event struct {
	ID         int64       `db:"id" json:"id"`
	Title      string      `db:"title" json:"title"`
	Date       string      `db:"event_date" json:"date"`
	StartTime  string      `db:"start_time" json:"start_time"`
	EndTime    string      `db:"end_time" json:"end_time"`
	Location   string      `db:"location" json:"location,omitempty"`
	Course     string      `db:"course" json:"course,omitempty"`
	Tutor      string      `db:"tutor" json:"tutor,omitempty"`
	Notes      string      `db:"notes" json:"notes,omitempty"`
	Status     EventStatus `db:"status" json:"status"`
	CreatedBy  string      `db:"created_by" json:"created_by,omitempty"`
	ApprovedBy *string     `db:"approved_by" json:"approved_by,omitempty"`
	CreatedAt  time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time   `db:"updated_at" json:"updated_at"`
}

// EventFilter narrows down event listings.
type EventFilter struct {
	StartDate *string
	EndDate   *string
	Status    *EventStatus
	CreatedBy string
	Page      int
	PageSize  int
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
