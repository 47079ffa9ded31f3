package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medipoint/scheduler-api/internal/model"
	"github.com/medipoint/scheduler-api/internal/repository"
)

type availabilityRepository struct {
	db *sqlx.DB
}

func NewAvailabilityRepository(db *sqlx.DB) repository.AvailabilityRepository {
	return &availabilityRepository{db: db}
}

func (r *availabilityRepository) GetWindows(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday) ([]*model.AvailabilityWindow, error) {
	query := `
		SELECT id, doctor_id, weekday, start_time, end_time, is_available
		FROM availability_windows
		WHERE doctor_id = $1
		AND weekday = $2
		ORDER BY start_time ASC
	`
	var windows []*model.AvailabilityWindow
	err := r.db.SelectContext(ctx, &windows, query, doctorID, int(weekday))
	if err != nil {
		return nil, fmt.Errorf("failed to get availability windows: %w", err)
	}
	return windows, nil
}
