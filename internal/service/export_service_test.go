package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acadops/calendar-api/internal/models"
	appErrors "github.com/acadops/calendar-api/pkg/errors"
	"github.com/acadops/calendar-api/pkg/storage"
)

func newExportServiceForTest(t *testing.T) (*ExportService, *storage.LocalStorage, *rangeListerStub) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	lister := &rangeListerStub{events: []models.Event{
		{ID: 1, Title: "Algebra lecture", Date: "2025-11-03", StartTime: "09:00", EndTime: "10:00",
			Location: "Room 4", Course: "Algebra I", Tutor: "Dr. Chen", Status: models.EventStatusApproved},
		{ID: 2, Title: "Chemistry lab", Date: "2025-11-04", StartTime: "13:00", EndTime: "15:00",
			Status: models.EventStatusPending},
	}}
	svc := NewExportService(lister, store, ExportConfig{ResultTTL: time.Hour}, nil, nil, nil)
	return svc, store, lister
}

func TestExportServiceGenerateCSV(t *testing.T) {
	svc, store, lister := newExportServiceForTest(t)

	result, err := svc.Generate(context.Background(), "2025-11-01", "2025-11-30", ExportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "calendar_export_2025-11-01_2025-11-30.csv", result.Filename)
	assert.Equal(t, "text/csv", result.ContentType)
	assert.Equal(t, []string{"2025-11-01"}, lister.starts)

	body := string(result.Payload)
	assert.Contains(t, body, "Title,Date,Start Time")
	assert.Contains(t, body, "Algebra lecture")
	assert.Contains(t, body, "Chemistry lab")

	// a copy lands in storage for the cleanup job
	file, err := store.Open(result.Filename)
	require.NoError(t, err)
	defer file.Close()
	info, err := file.Stat()
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportServiceGeneratePDF(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)

	result, err := svc.Generate(context.Background(), "2025-11-01", "2025-11-30", ExportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "calendar_export_2025-11-01_2025-11-30.pdf", result.Filename)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, strings.HasPrefix(string(result.Payload), "%PDF"))
}

func TestExportServiceDefaultsToCSV(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)

	result, err := svc.Generate(context.Background(), "2025-11-01", "2025-11-30", "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", result.ContentType)
}

func TestExportServiceRejectsBadRange(t *testing.T) {
	svc, _, _ := newExportServiceForTest(t)

	cases := []struct {
		start, end string
		format     ExportFormat
	}{
		{"not-a-date", "2025-11-30", ExportFormatCSV},
		{"2025-11-01", "nope", ExportFormatCSV},
		{"2025-11-30", "2025-11-01", ExportFormatCSV},
		{"2025-11-01", "2025-11-30", "xlsx"},
	}
	for _, tc := range cases {
		_, err := svc.Generate(context.Background(), tc.start, tc.end, tc.format)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestExportServiceCleanup(t *testing.T) {
	svc, store, _ := newExportServiceForTest(t)

	_, err := svc.Generate(context.Background(), "2025-11-01", "2025-11-30", ExportFormatCSV)
	require.NoError(t, err)

	// nothing is old enough yet
	deleted, err := svc.Cleanup(time.Hour)
	require.NoError(t, err)
	assert.Empty(t, deleted)

	// age the file past the ttl
	file, err := store.Open("calendar_export_2025-11-01_2025-11-30.csv")
	require.NoError(t, err)
	path := file.Name()
	file.Close()
	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(path, old, old))

	deleted, err = svc.Cleanup(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []string{"calendar_export_2025-11-01_2025-11-30.csv"}, deleted)
}
