package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/acadops/calendar-api/internal/models"
)

// StudentRepository persists roster entries created by bulk imports.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a student repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a student profile and fills in its generated id.
func (r *StudentRepository) Create(ctx context.Context, profile *models.StudentProfile) error {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO student_profiles (user_id, name, email, student_id, dob, year, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query,
		profile.UserID, profile.Name, profile.Email, profile.StudentID, profile.DOB, profile.Year, profile.CreatedAt,
	).Scan(&profile.ID); err != nil {
		return fmt.Errorf("create student profile: %w", err)
	}
	return nil
}

// ExistsByStudentID reports whether the roster already has this student id.
func (r *StudentRepository) ExistsByStudentID(ctx context.Context, studentID string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM student_profiles WHERE student_id = $1", studentID); err != nil {
		return false, fmt.Errorf("check student id: %w", err)
	}
	return count > 0, nil
}

// ExistsByEmail reports whether the roster already has this email.
func (r *StudentRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM student_profiles WHERE email = $1", email); err != nil {
		return false, fmt.Errorf("check student email: %w", err)
	}
	return count > 0, nil
}
