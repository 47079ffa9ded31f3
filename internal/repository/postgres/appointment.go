package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/medipoint/scheduler-api/internal/model"
	"github.com/medipoint/scheduler-api/internal/repository"
	apperrors "github.com/medipoint/scheduler-api/pkg/errors"
)

type appointmentRepository struct {
	db           *sqlx.DB
	slotDuration time.Duration
}

// NewAppointmentRepository creates the appointment store. slotDuration is
// the policy slot length used to derive interval ends, since end times are
// not stored per row.
func NewAppointmentRepository(db *sqlx.DB, slotDuration time.Duration) repository.AppointmentRepository {
	return &appointmentRepository{db: db, slotDuration: slotDuration}
}

func (r *appointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, start_time, status,
			type, symptoms, diagnosis, prescription, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		appt.ID,
		appt.PatientID,
		appt.DoctorID,
		appt.StartTime,
		appt.Status,
		appt.Type,
		appt.Symptoms,
		appt.Diagnosis,
		appt.Prescription,
		appt.Notes,
		appt.CreatedAt,
		appt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, start_time, status,
			   type, symptoms, diagnosis, prescription, notes,
			   created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appt model.Appointment
	err := r.db.GetContext(ctx, &appt, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appt, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appt *model.Appointment, expected time.Time) error {
	query := `
		UPDATE appointments
		SET start_time = $1, status = $2, symptoms = $3, diagnosis = $4,
			prescription = $5, notes = $6, updated_at = $7
		WHERE id = $8 AND updated_at = $9
	`
	result, err := r.db.ExecContext(ctx, query,
		appt.StartTime,
		appt.Status,
		appt.Symptoms,
		appt.Diagnosis,
		appt.Prescription,
		appt.Notes,
		appt.UpdatedAt,
		appt.ID,
		expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Either the row is gone or it changed after the caller's read.
		if _, err := r.Get(ctx, appt.ID); err != nil {
			return err
		}
		return apperrors.ConcurrentUpdate()
	}

	return nil
}

func (r *appointmentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete appointment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("appointment", nil)
	}

	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, start_time, status,
			   type, symptoms, diagnosis, prescription, notes,
			   created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.DoctorID != uuid.Nil {
		query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
		args = append(args, filters.DoctorID)
		argCount++
	}

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND start_time >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}

	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND start_time < $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	var appts []*model.Appointment
	err := r.db.SelectContext(ctx, &appts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appts, nil
}

func (r *appointmentRepository) FindOverlapping(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, start_time, status,
			   type, symptoms, diagnosis, prescription, notes,
			   created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		AND status IN ('PENDING', 'CONFIRMED')
		AND start_time < $2
		AND start_time + make_interval(mins => $3) > $4
	`
	args := []interface{}{doctorID, end, int(r.slotDuration.Minutes()), start}

	if excludeID != nil {
		query += " AND id != $5"
		args = append(args, *excludeID)
	}

	query += " ORDER BY start_time ASC"

	var appts []*model.Appointment
	err := r.db.SelectContext(ctx, &appts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find overlapping appointments: %w", err)
	}
	return appts, nil
}
