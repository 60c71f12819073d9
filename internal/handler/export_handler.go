package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acadops/calendar-api/internal/service"
	"github.com/acadops/calendar-api/pkg/response"
)

// ExportHandler serves calendar exports as file downloads.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler creates a new handler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// Download godoc
// @Summary Export calendar
// @Description Download events in a date range as CSV or PDF
// @Tags Calendar
// @Produce text/csv
// @Produce application/pdf
// @Param start query string true "Inclusive start date (YYYY-MM-DD)"
// @Param end query string true "Inclusive end date (YYYY-MM-DD)"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /calendar/export [get]
func (h *ExportHandler) Download(c *gin.Context) {
	result, err := h.service.Generate(c.Request.Context(),
		c.Query("start"), c.Query("end"), service.ExportFormat(c.Query("format")))
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
