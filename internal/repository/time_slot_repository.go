package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-scheduler-api/internal/models"
)

// TimeSlotRepository reads the admin-defined weekly grid.
type TimeSlotRepository struct {
	db *sqlx.DB
}

// NewTimeSlotRepository creates a time slot repository.
func NewTimeSlotRepository(db *sqlx.DB) *TimeSlotRepository {
	return &TimeSlotRepository{db: db}
}

// FindAll returns every grid cell; ordering is applied by the grid itself.
func (r *TimeSlotRepository) FindAll(ctx context.Context) ([]models.TimeSlot, error) {
	var slots []models.TimeSlot
	if err := r.db.SelectContext(ctx, &slots, `SELECT id, day, start_time, end_time, sequence FROM time_slots ORDER BY sequence ASC, start_time ASC`); err != nil {
		return nil, fmt.Errorf("list time slots: %w", err)
	}
	return slots, nil
}
