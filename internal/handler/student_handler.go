package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/acadops/calendar-api/internal/service"
	appErrors "github.com/acadops/calendar-api/pkg/errors"
	"github.com/acadops/calendar-api/pkg/response"
)

// StudentHandler serves bulk student provisioning.
type StudentHandler struct {
	service *service.ImportService
}

// NewStudentHandler creates a new handler.
func NewStudentHandler(svc *service.ImportService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// BulkUpload godoc
// @Summary Bulk student upload
// @Description Provision student accounts from an xlsx roster (name, student id, email, dob columns)
// @Tags Students
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "xlsx roster"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /students/bulk-upload [post]
func (h *StudentHandler) BulkUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file is required"))
		return
	}
	src, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to open uploaded file"))
		return
	}
	defer src.Close()

	result, err := h.service.ImportStudents(c.Request.Context(), src, fileHeader.Size)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil)
}
