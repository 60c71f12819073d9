package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/acadops/calendar-api/internal/models"
	appErrors "github.com/acadops/calendar-api/pkg/errors"
)

type studentRepository interface {
	Create(ctx context.Context, profile *models.StudentProfile) error
	ExistsByStudentID(ctx context.Context, studentID string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type importUserRepository interface {
	Create(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
}

// ImportConfig bounds uploaded spreadsheets.
type ImportConfig struct {
	MaxFileSizeBytes int64
	MaxRows          int
}

// ImportRowError describes why one spreadsheet row was skipped.
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportDetail reports one provisioned account.
type ImportDetail struct {
	Row       int    `json:"row"`
	Name      string `json:"name"`
	StudentID string `json:"student_id"`
	Username  string `json:"username"`
}

// ImportResult summarises a bulk upload.
type ImportResult struct {
	Created int              `json:"created"`
	Errors  []ImportRowError `json:"errors"`
	Details []ImportDetail   `json:"details"`
}

// ImportService provisions student accounts from uploaded xlsx rosters. Each
// valid row becomes a student profile plus a login whose initial password is
// the student id followed by the date of birth as DDMMYYYY.
type ImportService struct {
	students studentRepository
	users    importUserRepository
	logger   *zap.Logger
	cfg      ImportConfig
}

// NewImportService constructs an ImportService.
func NewImportService(students studentRepository, users importUserRepository, cfg ImportConfig, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxRows <= 0 {
		cfg.MaxRows = 2000
	}
	return &ImportService{students: students, users: users, logger: logger, cfg: cfg}
}

// expected column headers, matched case-insensitively after trimming
var rosterColumns = map[string]string{
	"name":          "name",
	"student id":    "student_id",
	"student email": "email",
	"email":         "email",
	"dob":           "dob",
	"date of birth": "dob",
}

var dobLayouts = []string{"2006-01-02", "02/01/2006", "02-01-2006", "2 January 2006", "Jan 2, 2006"}

// ImportStudents parses an xlsx roster and creates accounts row by row.
// Failed rows are reported, not fatal: a half-good roster still provisions
// its good half.
func (s *ImportService) ImportStudents(ctx context.Context, reader io.Reader, size int64) (*ImportResult, error) {
	if s.cfg.MaxFileSizeBytes > 0 && size > s.cfg.MaxFileSizeBytes {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds %d bytes", s.cfg.MaxFileSizeBytes))
	}

	book, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "file is not a readable xlsx workbook")
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "workbook has no sheets")
	}
	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read sheet rows")
	}
	if len(rows) > s.cfg.MaxRows {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("sheet exceeds %d rows", s.cfg.MaxRows))
	}

	headerIdx, columns := findRosterHeader(rows)
	if columns == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no header row with name, student id, email and dob columns")
	}

	result := &ImportResult{Errors: []ImportRowError{}, Details: []ImportDetail{}}
	for i := headerIdx + 1; i < len(rows); i++ {
		rowNumber := i + 1
		detail, err := s.importRow(ctx, rows[i], columns, rowNumber)
		if err != nil {
			result.Errors = append(result.Errors, ImportRowError{Row: rowNumber, Reason: err.Error()})
			continue
		}
		if detail == nil {
			continue
		}
		result.Created++
		result.Details = append(result.Details, *detail)
	}

	s.logger.Info("student roster import finished",
		zap.Int("created", result.Created), zap.Int("errors", len(result.Errors)))
	return result, nil
}

func (s *ImportService) importRow(ctx context.Context, row []string, columns map[string]int, rowNumber int) (*ImportDetail, error) {
	if isBlankRow(row) {
		return nil, nil
	}
	name := cellAt(row, columns["name"])
	studentID := cellAt(row, columns["student_id"])
	email := cellAt(row, columns["email"])
	dobRaw := cellAt(row, columns["dob"])

	if name == "" || studentID == "" || email == "" || dobRaw == "" {
		return nil, fmt.Errorf("missing required fields")
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", email)
	}
	dob, err := parseDOB(dobRaw)
	if err != nil {
		return nil, fmt.Errorf("unparseable dob %q", dobRaw)
	}

	if exists, err := s.students.ExistsByStudentID(ctx, studentID); err != nil {
		return nil, fmt.Errorf("student id lookup failed")
	} else if exists {
		return nil, fmt.Errorf("student id %s already registered", studentID)
	}
	if exists, err := s.students.ExistsByEmail(ctx, email); err != nil {
		return nil, fmt.Errorf("email lookup failed")
	} else if exists {
		return nil, fmt.Errorf("email %s already registered", email)
	}

	username, err := s.uniqueUsername(ctx, name)
	if err != nil {
		return nil, err
	}

	password := studentID + dob.Format("02012006")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password")
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     name,
		Role:         models.RoleStudent,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create login")
	}

	profile := &models.StudentProfile{
		UserID:    &user.ID,
		Name:      name,
		Email:     email,
		StudentID: studentID,
		DOB:       dob,
	}
	if err := s.students.Create(ctx, profile); err != nil {
		// roll back the login so the username is not left reserved
		if delErr := s.users.Delete(ctx, user.ID); delErr != nil {
			s.logger.Warn("failed to remove orphaned login", zap.String("user_id", user.ID), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to create student profile")
	}

	return &ImportDetail{Row: rowNumber, Name: name, StudentID: studentID, Username: username}, nil
}

// uniqueUsername derives a login from the student's name, suffixing a
// counter on collision.
func (s *ImportService) uniqueUsername(ctx context.Context, name string) (string, error) {
	base := sanitizeUsername(name)
	if base == "" {
		base = "student"
	}
	candidate := base
	for attempt := 1; attempt <= 50; attempt++ {
		exists, err := s.users.ExistsByUsername(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("username lookup failed")
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, attempt)
	}
	return "", fmt.Errorf("could not derive a unique username for %q", name)
}

func sanitizeUsername(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '.', r == '-', r == '_':
			b.WriteByte('.')
		}
	}
	return strings.Trim(b.String(), ".")
}

func findRosterHeader(rows [][]string) (int, map[string]int) {
	for i, row := range rows {
		columns := make(map[string]int)
		for j, cell := range row {
			if key, ok := rosterColumns[strings.ToLower(strings.TrimSpace(cell))]; ok {
				if _, seen := columns[key]; !seen {
					columns[key] = j
				}
			}
		}
		if len(columns) == 4 {
			return i, columns
		}
	}
	return 0, nil
}

func parseDOB(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	for _, layout := range dobLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
