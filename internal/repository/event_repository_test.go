package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadops/calendar-api/internal/models"
)

func newEventRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func eventRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"id", "title", "event_date", "start_time", "end_time", "location",
		"course", "tutor", "notes", "status", "created_by", "approved_by",
		"created_at", "updated_at",
	}).AddRow(
		int64(1), "Algebra lecture", "2025-11-03", "09:00", "10:00", "Room 4",
		"Algebra I", "Dr. Chen", "", "approved", "aa-1", nil, now, now,
	)
}

func TestEventRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	repo := NewEventRepository(db)
	start := "2025-11-01"
	end := "2025-11-30"
	status := models.EventStatusApproved

	mock.ExpectQuery("SELECT id, title, event_date").
		WithArgs(start, end, "approved").
		WillReturnRows(eventRows())
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM events").
		WithArgs(start, end, "approved").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	events, total, err := repo.List(context.Background(), models.EventFilter{
		StartDate: &start,
		EndDate:   &end,
		Status:    &status,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, events, 1)
	assert.Equal(t, "Algebra lecture", events[0].Title)
	assert.Equal(t, models.EventStatusApproved, events[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryListRange(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	repo := NewEventRepository(db)
	mock.ExpectQuery("SELECT id, title, event_date").
		WithArgs("2025-11-01", "2025-11-30").
		WillReturnRows(eventRows())

	events, err := repo.ListRange(context.Background(), "2025-11-01", "2025-11-30")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "2025-11-03", events[0].Date)
}

func TestEventRepositoryCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	repo := NewEventRepository(db)
	mock.ExpectQuery("INSERT INTO events").
		WithArgs("Algebra lecture", "2025-11-03", "09:00", "10:00", "Room 4", "Algebra I", "Dr. Chen", "", "pending", "aa-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	event := &models.Event{
		Title:     "Algebra lecture",
		Date:      "2025-11-03",
		StartTime: "09:00",
		EndTime:   "10:00",
		Location:  "Room 4",
		Course:    "Algebra I",
		Tutor:     "Dr. Chen",
		Status:    models.EventStatusPending,
		CreatedBy: "aa-1",
	}
	require.NoError(t, repo.Create(context.Background(), event))
	assert.Equal(t, int64(42), event.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositorySetStatus(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	repo := NewEventRepository(db)
	mock.ExpectExec("UPDATE events SET status").
		WithArgs("approved", "daa-1", sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SetStatus(context.Background(), 7, models.EventStatusApproved, "daa-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newEventRepoMock(t)
	defer cleanup()

	repo := NewEventRepository(db)
	mock.ExpectExec("DELETE FROM events").
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 9))
	require.NoError(t, mock.ExpectationsWereMet())
}
