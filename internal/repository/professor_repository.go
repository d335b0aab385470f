package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

// ProfessorRepository loads professors together with their preferences and availability.
type ProfessorRepository struct {
	db *sqlx.DB
}

// NewProfessorRepository creates a professor repository.
func NewProfessorRepository(db *sqlx.DB) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

type professorPreferenceRow struct {
	ProfessorID string `db:"professor_id"`
	TargetID    string `db:"target_id"`
}

type professorAvailabilityRow struct {
	ProfessorID string `db:"professor_id"`
	models.AvailabilityWindow
}

// FindPreferring returns professors who listed the section or the subject, ordered by username.
func (r *ProfessorRepository) FindPreferring(ctx context.Context, sectionID, subjectID string) ([]models.Professor, error) {
	const query = `SELECT p.id, p.username FROM professors p
WHERE EXISTS (SELECT 1 FROM professor_preferred_sections ps WHERE ps.professor_id = p.id AND ps.section_id = $1)
   OR EXISTS (SELECT 1 FROM professor_preferred_subjects pj WHERE pj.professor_id = p.id AND pj.subject_id = $2)
ORDER BY p.username ASC`
	var professors []models.Professor
	if err := r.db.SelectContext(ctx, &professors, query, sectionID, subjectID); err != nil {
		return nil, fmt.Errorf("list preferring professors: %w", err)
	}
	if len(professors) == 0 {
		return professors, nil
	}

	ids := make([]string, len(professors))
	index := make(map[string]int, len(professors))
	for i, p := range professors {
		ids[i] = p.ID
		index[p.ID] = i
	}

	sections, err := r.preferenceRows(ctx, `SELECT professor_id, section_id AS target_id FROM professor_preferred_sections WHERE professor_id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("load preferred sections: %w", err)
	}
	for _, row := range sections {
		p := &professors[index[row.ProfessorID]]
		p.PreferredSectionIDs = append(p.PreferredSectionIDs, row.TargetID)
	}

	subjects, err := r.preferenceRows(ctx, `SELECT professor_id, subject_id AS target_id FROM professor_preferred_subjects WHERE professor_id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("load preferred subjects: %w", err)
	}
	for _, row := range subjects {
		p := &professors[index[row.ProfessorID]]
		p.PreferredSubjectIDs = append(p.PreferredSubjectIDs, row.TargetID)
	}

	availabilityQuery, args, err := sqlx.In(`SELECT professor_id, day, start_time, end_time FROM professor_availability WHERE professor_id IN (?) ORDER BY professor_id, start_time`, ids)
	if err != nil {
		return nil, fmt.Errorf("build availability query: %w", err)
	}
	var windows []professorAvailabilityRow
	if err := r.db.SelectContext(ctx, &windows, r.db.Rebind(availabilityQuery), args...); err != nil {
		return nil, fmt.Errorf("load availability: %w", err)
	}
	for _, row := range windows {
		p := &professors[index[row.ProfessorID]]
		p.Availability = append(p.Availability, row.AvailabilityWindow)
	}
	return professors, nil
}

func (r *ProfessorRepository) preferenceRows(ctx context.Context, query string, ids []string) ([]professorPreferenceRow, error) {
	expanded, args, err := sqlx.In(query, ids)
	if err != nil {
		return nil, err
	}
	var rows []professorPreferenceRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(expanded), args...); err != nil {
		return nil, err
	}
	return rows, nil
}
