package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/acadops/calendar-api/internal/models"
)

const eventColumns = "id, title, event_date, start_time, end_time, location, course, tutor, notes, status, created_by, approved_by, created_at, updated_at"

// EventRepository persists scheduled events.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository constructs an event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// List returns events matching filters plus the unpaginated total.
func (r *EventRepository) List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error) {
	base := "FROM events"
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.StartDate != nil {
		where = append(where, fmt.Sprintf("event_date >= $%d", len(args)+1))
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		where = append(where, fmt.Sprintf("event_date <= $%d", len(args)+1))
		args = append(args, *filter.EndDate)
	}
	if filter.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, string(*filter.Status))
	}
	if filter.CreatedBy != "" {
		where = append(where, fmt.Sprintf("created_by = $%d", len(args)+1))
		args = append(args, filter.CreatedBy)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s
%s WHERE %s ORDER BY event_date ASC, start_time ASC, id ASC LIMIT %d OFFSET %d`, eventColumns, base, whereClause, size, offset)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	countQuery := fmt.Sprintf("SELECT COUNT(*) %s WHERE %s", base, whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}
	return events, total, nil
}

// ListRange returns every event whose date key falls inside [start, end],
// unpaginated, for calendar view snapshots and exports.
func (r *EventRepository) ListRange(ctx context.Context, start, end string) ([]models.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE event_date >= $1 AND event_date <= $2 ORDER BY event_date ASC, start_time ASC, id ASC`, eventColumns)
	var events []models.Event
	if err := r.db.SelectContext(ctx, &events, query, start, end); err != nil {
		return nil, fmt.Errorf("list events in range: %w", err)
	}
	return events, nil
}

// GetByID fetches a single event.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE id = $1", eventColumns)
	var event models.Event
	if err := r.db.GetContext(ctx, &event, query, id); err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts an event and fills in its generated id.
func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now
	const query = `INSERT INTO events (title, event_date, start_time, end_time, location, course, tutor, notes, status, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		event.Title, event.Date, event.StartTime, event.EndTime,
		event.Location, event.Course, event.Tutor, event.Notes,
		string(event.Status), event.CreatedBy, event.CreatedAt, event.UpdatedAt,
	).Scan(&event.ID); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

// Update modifies an event's editable fields.
func (r *EventRepository) Update(ctx context.Context, event *models.Event) error {
	event.UpdatedAt = time.Now().UTC()
	const query = `UPDATE events SET title = :title, event_date = :event_date, start_time = :start_time, end_time = :end_time,
location = :location, course = :course, tutor = :tutor, notes = :notes, status = :status, approved_by = :approved_by, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, event); err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// SetStatus records a review decision.
func (r *EventRepository) SetStatus(ctx context.Context, id int64, status models.EventStatus, reviewerID string) error {
	const query = `UPDATE events SET status = $1, approved_by = $2, updated_at = $3 WHERE id = $4`
	if _, err := r.db.ExecContext(ctx, query, string(status), reviewerID, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("set event status: %w", err)
	}
	return nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM events WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}
