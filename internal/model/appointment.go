package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

// Valid reports whether s is one of the five recognized statuses.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusPending, AppointmentStatusConfirmed,
		AppointmentStatusCompleted, AppointmentStatusCancelled,
		AppointmentStatusNoShow:
		return true
	}
	return false
}

// Active reports whether s occupies the doctor's time slot. Only active
// appointments participate in conflict detection.
func (s AppointmentStatus) Active() bool {
	return s == AppointmentStatusPending || s == AppointmentStatusConfirmed
}

type Appointment struct {
	ID           uuid.UUID         `db:"id" json:"id"`
	PatientID    uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID     uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	StartTime    time.Time         `db:"start_time" json:"start_time"`
	Status       AppointmentStatus `db:"status" json:"status"`
	Type         string            `db:"type" json:"type,omitempty"`
	Symptoms     string            `db:"symptoms" json:"symptoms,omitempty"`
	Diagnosis    string            `db:"diagnosis" json:"diagnosis,omitempty"`
	Prescription string            `db:"prescription" json:"prescription,omitempty"`
	Notes        string            `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time         `db:"updated_at" json:"updated_at"`
}

// EndTime returns the end of the appointment's slot. Duration is a
// policy value, not stored per row.
func (a *Appointment) EndTime(duration time.Duration) time.Time {
	return a.StartTime.Add(duration)
}

// Overlaps reports whether a's slot intersects [start, end).
func (a *Appointment) Overlaps(start, end time.Time, duration time.Duration) bool {
	return a.StartTime.Before(end) && a.EndTime(duration).After(start)
}

type CreateAppointmentRequest struct {
	PatientID string    `json:"patient_id" validate:"omitempty,uuid"`
	DoctorID  string    `json:"doctor_id" validate:"required,uuid"`
	StartTime time.Time `json:"start_time" validate:"required"`
	Type      string    `json:"type" validate:"omitempty,oneof=consultation followup checkup emergency"`
	Symptoms  string    `json:"symptoms" validate:"max=2000"`
	Notes     string    `json:"notes" validate:"max=2000"`
}

type UpdateAppointmentRequest struct {
	Status       *AppointmentStatus `json:"status"`
	StartTime    *time.Time         `json:"start_time"`
	Symptoms     *string            `json:"symptoms"`
	Diagnosis    *string            `json:"diagnosis"`
	Prescription *string            `json:"prescription"`
	Notes        *string            `json:"notes"`
}

type TimeSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type AppointmentFilters struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Status    AppointmentStatus
	StartDate time.Time
	EndDate   time.Time
}
