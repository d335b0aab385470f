package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

const sectionSelect = `SELECT sec.id, sec.name, sec.course_id, sec.year_level_id, sec.capacity, sec.sort_order, sec.created_at,
c.code AS course_code, y.name AS year_name
FROM sections sec
JOIN courses c ON c.id = sec.course_id
JOIN year_levels y ON y.id = sec.year_level_id`

// SectionRepository reads sections with their course and year labels.
type SectionRepository struct {
	db *sqlx.DB
}

// NewSectionRepository creates a section repository.
func NewSectionRepository(db *sqlx.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

// FindByScope returns sections ordered for processing; empty scope fields are ignored.
func (r *SectionRepository) FindByScope(ctx context.Context, scope models.SectionScope) ([]models.Section, error) {
	var conditions []string
	var args []interface{}
	if scope.ID != "" {
		args = append(args, scope.ID)
		conditions = append(conditions, fmt.Sprintf("sec.id = $%d", len(args)))
	}
	if scope.CourseID != "" {
		args = append(args, scope.CourseID)
		conditions = append(conditions, fmt.Sprintf("sec.course_id = $%d", len(args)))
	}
	if scope.YearLevelID != "" {
		args = append(args, scope.YearLevelID)
		conditions = append(conditions, fmt.Sprintf("sec.year_level_id = $%d", len(args)))
	}

	query := sectionSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY sec.sort_order ASC, sec.name ASC"

	var sections []models.Section
	if err := r.db.SelectContext(ctx, &sections, query, args...); err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	for i := range sections {
		applySectionDefaults(&sections[i])
	}
	return sections, nil
}

// FindByID loads a single section.
func (r *SectionRepository) FindByID(ctx context.Context, id string) (*models.Section, error) {
	var section models.Section
	if err := r.db.GetContext(ctx, &section, sectionSelect+" WHERE sec.id = $1", id); err != nil {
		return nil, fmt.Errorf("get section: %w", err)
	}
	applySectionDefaults(&section)
	return &section, nil
}

func applySectionDefaults(section *models.Section) {
	if section.Capacity <= 0 {
		section.Capacity = models.DefaultSectionCapacity
	}
}
