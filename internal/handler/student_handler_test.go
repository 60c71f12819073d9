package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/acadops/calendar-api/internal/middleware"
	"github.com/acadops/calendar-api/internal/models"
	"github.com/acadops/calendar-api/internal/service"
)

type rosterStoreMock struct {
	profiles []*models.StudentProfile
}

func (m *rosterStoreMock) Create(ctx context.Context, profile *models.StudentProfile) error {
	m.profiles = append(m.profiles, profile)
	return nil
}

func (m *rosterStoreMock) ExistsByStudentID(ctx context.Context, studentID string) (bool, error) {
	return false, nil
}

func (m *rosterStoreMock) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return false, nil
}

type accountStoreMock struct {
	users []*models.User
}

func (m *accountStoreMock) Create(ctx context.Context, user *models.User) error {
	m.users = append(m.users, user)
	return nil
}

func (m *accountStoreMock) Delete(ctx context.Context, id string) error {
	for i, user := range m.users {
		if user.ID == id {
			m.users = append(m.users[:i], m.users[i+1:]...)
			break
		}
	}
	return nil
}

func (m *accountStoreMock) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return false, nil
}

func rosterUploadContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()

	book := excelize.NewFile()
	sheet := book.GetSheetName(0)
	rows := [][]interface{}{
		{"Name", "Student ID", "Student Email", "DOB"},
		{"Maria Santos", "S1001", "maria@example.edu", "2007-03-14"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, book.SetSheetRow(sheet, cell, &row))
	}
	var workbook bytes.Buffer
	require.NoError(t, book.Write(&workbook))

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "roster.xlsx")
	require.NoError(t, err)
	_, err = part.Write(workbook.Bytes())
	require.NoError(t, err)
	require.NoError(t, form.Close())

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/students/bulk-upload", &body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", form.FormDataContentType())
	c.Request = req
	return c, w
}

func newStudentHandlerForTest() (*StudentHandler, *rosterStoreMock) {
	store := &rosterStoreMock{}
	svc := service.NewImportService(store, &accountStoreMock{}, service.ImportConfig{MaxFileSizeBytes: 1 << 20, MaxRows: 100}, nil)
	return NewStudentHandler(svc), store
}

func TestStudentHandlerBulkUploadAllowsDepartmentAssistant(t *testing.T) {
	handler, store := newStudentHandlerForTest()
	c, w := rosterUploadContext(t)
	asClaims(c, "daa-1", models.RoleDepartmentAssistant)

	middleware.RequireRoles(models.RoleDepartmentAssistant, models.RoleAdmin)(c)
	require.False(t, c.IsAborted())
	handler.BulkUpload(c)

	require.Equal(t, http.StatusOK, w.Code)
	var envelope struct {
		Data service.ImportResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, 1, envelope.Data.Created)
	require.Len(t, store.profiles, 1)
	assert.Equal(t, "S1001", store.profiles[0].StudentID)
}

func TestStudentHandlerBulkUploadForbidsAcademicAssistant(t *testing.T) {
	_, _ = newStudentHandlerForTest()
	c, w := rosterUploadContext(t)
	asClaims(c, "aa-1", models.RoleAcademicAssistant)

	middleware.RequireRoles(models.RoleDepartmentAssistant, models.RoleAdmin)(c)

	assert.True(t, c.IsAborted())
	assert.Equal(t, http.StatusForbidden, w.Code)
}
