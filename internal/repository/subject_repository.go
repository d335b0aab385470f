package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

// SubjectRepository reads the subject catalogue.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a subject repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// FindByScope returns the subjects a cohort takes in a semester.
func (r *SubjectRepository) FindByScope(ctx context.Context, courseID, yearLevelID string, semester models.Semester) ([]models.Subject, error) {
	const query = `SELECT id, code, name, course_id, year_level_id, semester, units, hours_per_week, preferred_day, created_at
FROM subjects WHERE course_id = $1 AND year_level_id = $2 AND semester = $3 ORDER BY code ASC`
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, courseID, yearLevelID, semester); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}
