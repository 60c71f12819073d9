package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/acadops/calendar-api/internal/service"
	appErrors "github.com/acadops/calendar-api/pkg/errors"
	"github.com/acadops/calendar-api/pkg/response"
)

// CalendarHandler serves calendar render models.
type CalendarHandler struct {
	service *service.CalendarService
}

// NewCalendarHandler creates a new handler.
func NewCalendarHandler(svc *service.CalendarService) *CalendarHandler {
	return &CalendarHandler{service: svc}
}

// View godoc
// @Summary Calendar view
// @Description Render model for the day, week, month or year view around a reference date
// @Tags Calendar
// @Produce json
// @Param mode query string false "day, week, month or year (default month)"
// @Param date query string false "Reference date (YYYY-MM-DD, default today)"
// @Param q query string false "Case-insensitive search over title, course, tutor, status and location"
// @Param selected query string false "Selected day key highlighted in the grid"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/view [get]
func (h *CalendarHandler) View(c *gin.Context) {
	view, err := h.service.View(c.Request.Context(), service.CalendarViewRequest{
		Date:     c.Query("date"),
		Mode:     c.Query("mode"),
		Query:    c.Query("q"),
		Selected: c.Query("selected"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, view, nil)
}

// Shift godoc
// @Summary Shift reference date
// @Description Step the reference date forward or back by the mode's unit
// @Tags Calendar
// @Produce json
// @Param mode query string true "day, week, month or year"
// @Param date query string true "Reference date (YYYY-MM-DD)"
// @Param delta query int false "Steps to move, negative for back (default 1)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /calendar/shift [get]
func (h *CalendarHandler) Shift(c *gin.Context) {
	delta := 1
	if raw := c.Query("delta"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "delta must be an integer"))
			return
		}
		delta = parsed
	}

	next, err := h.service.Shift(c.Query("date"), c.Query("mode"), delta)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, gin.H{"date": next}, nil)
}
