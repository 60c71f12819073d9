package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/acadops/calendar-api/internal/calendarview"
	"github.com/acadops/calendar-api/internal/models"
	"github.com/acadops/calendar-api/internal/notify"
	appErrors "github.com/acadops/calendar-api/pkg/errors"
)

type eventRepository interface {
	List(ctx context.Context, filter models.EventFilter) ([]models.Event, int, error)
	GetByID(ctx context.Context, id int64) (*models.Event, error)
	Create(ctx context.Context, event *models.Event) error
	Update(ctx context.Context, event *models.Event) error
	SetStatus(ctx context.Context, id int64, status models.EventStatus, reviewerID string) error
	Delete(ctx context.Context, id int64) error
}

type changePublisher interface {
	Publish(change notify.Change)
}

// EventService manages scheduled events and their approval workflow.
type EventService struct {
	repo      eventRepository
	bus       changePublisher
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewEventService constructs the service.
func NewEventService(repo eventRepository, bus changePublisher, validate *validator.Validate, logger *zap.Logger) *EventService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{repo: repo, bus: bus, validator: validate, logger: logger, now: time.Now}
}

// CreateEventRequest describes create payload.
type CreateEventRequest struct {
	Title     string `json:"title" validate:"required"`
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Location  string `json:"location"`
	Course    string `json:"course"`
	Tutor     string `json:"tutor"`
	Notes     string `json:"notes"`
}

// UpdateEventRequest describes update payload.
type UpdateEventRequest struct {
	Title     string `json:"title" validate:"required"`
	Date      string `json:"date" validate:"required"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Location  string `json:"location"`
	Course    string `json:"course"`
	Tutor     string `json:"tutor"`
	Notes     string `json:"notes"`
}

// EventListRequest describes filters for listing events.
type EventListRequest struct {
	StartDate *string
	EndDate   *string
	Status    *models.EventStatus
	CreatedBy string
	Page      int
	PageSize  int
}

// List returns events matching the filter.
func (s *EventService) List(ctx context.Context, req EventListRequest) ([]models.Event, *models.Pagination, error) {
	filter := models.EventFilter{
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
		Status:    req.Status,
		CreatedBy: req.CreatedBy,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 50
	}
	events, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list events")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return events, pagination, nil
}

// ListMine returns events created by the given user.
func (s *EventService) ListMine(ctx context.Context, userID string, page, pageSize int) ([]models.Event, *models.Pagination, error) {
	return s.List(ctx, EventListRequest{CreatedBy: userID, Page: page, PageSize: pageSize})
}

// Get returns an event by id.
func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "event not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get event")
	}
	return event, nil
}

// Create registers a new event in pending state.
func (s *EventService) Create(ctx context.Context, creatorID string, req CreateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	s.warnMalformed(req.Date, req.StartTime, req.EndTime)
	event := &models.Event{
		Title:     req.Title,
		Date:      req.Date,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Location:  req.Location,
		Course:    req.Course,
		Tutor:     req.Tutor,
		Notes:     req.Notes,
		Status:    models.EventStatusPending,
		CreatedBy: creatorID,
	}
	if err := s.repo.Create(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create event")
	}
	s.publish(event.ID, notify.ActionCreated)
	return event, nil
}

// Update modifies an event. Only the creator or an admin may edit, and a
// reviewed event drops back to pending so it goes through approval again.
func (s *EventService) Update(ctx context.Context, id int64, actorID string, actorRole models.UserRole, req UpdateEventRequest) (*models.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.CreatedBy != actorID && actorRole != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the creator or an admin may edit this event")
	}
	s.warnMalformed(req.Date, req.StartTime, req.EndTime)
	event.Title = req.Title
	event.Date = req.Date
	event.StartTime = req.StartTime
	event.EndTime = req.EndTime
	event.Location = req.Location
	event.Course = req.Course
	event.Tutor = req.Tutor
	event.Notes = req.Notes
	event.Status = models.EventStatusPending
	event.ApprovedBy = nil
	if err := s.repo.Update(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update event")
	}
	s.publish(event.ID, notify.ActionUpdated)
	return event, nil
}

// Review approves or rejects a pending event. Only DAA and admin roles may
// review, and the decision records who made it.
func (s *EventService) Review(ctx context.Context, id int64, decision models.EventStatus, reviewerID string, reviewerRole models.UserRole) (*models.Event, error) {
	if decision != models.EventStatusApproved && decision != models.EventStatusRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "decision must be approved or rejected")
	}
	if reviewerRole != models.RoleDepartmentAssistant && reviewerRole != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only DAA or admin may review events")
	}
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.Status != models.EventStatusPending {
		return nil, appErrors.ErrInvalidStatus
	}
	if err := s.repo.SetStatus(ctx, id, decision, reviewerID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record review")
	}
	event.Status = decision
	event.ApprovedBy = &reviewerID
	s.publish(id, notify.ActionReviewed)
	return event, nil
}

// Delete removes an event. Only the creator or an admin may delete.
func (s *EventService) Delete(ctx context.Context, id int64, actorID string, actorRole models.UserRole) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if event.CreatedBy != actorID && actorRole != models.RoleAdmin {
		return appErrors.Clone(appErrors.ErrForbidden, "only the creator or an admin may delete this event")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete event")
	}
	s.publish(id, notify.ActionDeleted)
	return nil
}

func (s *EventService) publish(id int64, action notify.Action) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(notify.Change{EventID: id, Action: action, At: s.now()})
}

// warnMalformed logs fields the calendar engine will not be able to place.
// Storage still accepts them: grids render the event dateless rather than
// losing it, so an operator can fix the record.
func (s *EventService) warnMalformed(date, startTime, endTime string) {
	if _, err := calendarview.ParseKey(date); err != nil {
		s.logger.Warn("event date is not a calendar day key", zap.String("date", date))
	}
	for _, clock := range []string{startTime, endTime} {
		if clock == "" {
			continue
		}
		if !validClock(clock) {
			s.logger.Warn("event time is not HH:MM", zap.String("time", clock))
		}
	}
}

// validClock accepts the wall-clock forms the grid layout understands,
// "HH:MM" and "HH:MM:SS".
func validClock(clock string) bool {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if _, err := time.Parse(layout, clock); err == nil {
			return true
		}
	}
	return false
}
