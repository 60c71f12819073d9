package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/acadops/calendar-api/internal/calendarview"
	"github.com/acadops/calendar-api/internal/models"
	"github.com/acadops/calendar-api/pkg/export"
	appErrors "github.com/acadops/calendar-api/pkg/errors"
)

// ExportFormat selects the rendered file type.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	ResultTTL time.Duration
}

// ExportResult is a rendered calendar export.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders events in a date range as downloadable files. A copy
// of every export lands in local storage so the cleanup job has something to
// reap, and operators can re-serve recent exports without regenerating.
type ExportService struct {
	events  eventRangeLister
	storage fileStorage
	csv     csvRenderer
	pdf     pdfRenderer
	logger  *zap.Logger
	cfg     ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(events eventRangeLister, storage fileStorage, cfg ExportConfig, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{events: events, storage: storage, csv: csv, pdf: pdf, logger: logger, cfg: cfg}
}

// Generate renders all events in [start, end] in the requested format.
func (s *ExportService) Generate(ctx context.Context, start, end string, format ExportFormat) (*ExportResult, error) {
	if _, err := calendarview.ParseKey(start); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start must be YYYY-MM-DD")
	}
	if _, err := calendarview.ParseKey(end); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end must be YYYY-MM-DD")
	}
	if end < start {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end must be on or after start")
	}

	events, err := s.events.ListRange(ctx, start, end)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load events for export")
	}

	dataset := buildEventDataset(events)
	title := fmt.Sprintf("Calendar Export %s to %s", start, end)

	var payload []byte
	var contentType string
	switch format {
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
		contentType = "application/pdf"
	case ExportFormatCSV, "":
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
		format = ExportFormatCSV
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	filename := fmt.Sprintf("calendar_export_%s_%s.%s", start, end, format)
	if s.storage != nil {
		if _, err := s.storage.Save(filename, payload); err != nil {
			s.logger.Warn("failed to persist export copy", zap.String("filename", filename), zap.Error(err))
		}
	}

	return &ExportResult{Filename: filename, ContentType: contentType, Payload: payload}, nil
}

// Cleanup removes stored exports older than ttl (defaults to the configured
// ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	if s.storage == nil {
		return nil, nil
	}
	return s.storage.CleanupOlderThan(ttl)
}

func buildEventDataset(events []models.Event) export.Dataset {
	headers := []string{"Title", "Date", "Start Time", "End Time", "Location", "Course", "Tutor", "Status", "Notes"}
	rows := make([]map[string]string, 0, len(events))
	for _, event := range events {
		rows = append(rows, map[string]string{
			"Title":      event.Title,
			"Date":       event.Date,
			"Start Time": event.StartTime,
			"End Time":   event.EndTime,
			"Location":   event.Location,
			"Course":     event.Course,
			"Tutor":      event.Tutor,
			"Status":     string(event.Status),
			"Notes":      event.Notes,
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
