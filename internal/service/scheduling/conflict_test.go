package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medipoint/scheduler-api/internal/model"
	apperrors "github.com/medipoint/scheduler-api/pkg/errors"
)

// fixedNow is a Thursday; mondayAt produces times the following Monday.
var fixedNow = time.Date(2026, time.January, 1, 8, 0, 0, 0, time.UTC)

func mondayAt(hour, min int) time.Time {
	return time.Date(2026, time.January, 5, hour, min, 0, 0, time.UTC)
}

func newTestChecker(doctorID uuid.UUID, appts *memAppointments) *ConflictChecker {
	availability := &memAvailability{windows: []*model.AvailabilityWindow{
		{
			ID:          uuid.New(),
			DoctorID:    doctorID,
			Weekday:     time.Monday,
			StartTime:   "09:00",
			EndTime:     "12:00",
			IsAvailable: true,
		},
	}}
	c := NewConflictChecker(appts, availability)
	c.now = func() time.Time { return fixedNow }
	return c
}

func TestCheckAvailability_InsideWindow(t *testing.T) {
	doctorID := uuid.New()
	c := newTestChecker(doctorID, newMemAppointments(time.Hour))

	err := c.CheckAvailability(context.Background(), doctorID, mondayAt(9, 30), time.Hour, nil)
	assert.NoError(t, err)
}

func TestCheckAvailability_WindowBoundaries(t *testing.T) {
	doctorID := uuid.New()
	c := newTestChecker(doctorID, newMemAppointments(time.Hour))

	// Start of window is bookable.
	assert.NoError(t, c.CheckAvailability(context.Background(), doctorID, mondayAt(9, 0), time.Hour, nil))

	// End of window is exclusive.
	err := c.CheckAvailability(context.Background(), doctorID, mondayAt(12, 0), time.Hour, nil)
	assert.Equal(t, apperrors.ErrNoAvailabilityWindow, apperrors.CodeOf(err))
}

func TestCheckAvailability_WrongWeekday(t *testing.T) {
	doctorID := uuid.New()
	c := newTestChecker(doctorID, newMemAppointments(time.Hour))

	tuesday := mondayAt(9, 30).AddDate(0, 0, 1)
	err := c.CheckAvailability(context.Background(), doctorID, tuesday, time.Hour, nil)
	assert.Equal(t, apperrors.ErrNoAvailabilityWindow, apperrors.CodeOf(err))
}

func TestCheckAvailability_DisabledWindow(t *testing.T) {
	doctorID := uuid.New()
	availability := &memAvailability{windows: []*model.AvailabilityWindow{
		{
			DoctorID:    doctorID,
			Weekday:     time.Monday,
			StartTime:   "09:00",
			EndTime:     "12:00",
			IsAvailable: false,
		},
	}}
	c := NewConflictChecker(newMemAppointments(time.Hour), availability)
	c.now = func() time.Time { return fixedNow }

	err := c.CheckAvailability(context.Background(), doctorID, mondayAt(9, 30), time.Hour, nil)
	assert.Equal(t, apperrors.ErrNoAvailabilityWindow, apperrors.CodeOf(err))
}

func TestCheckAvailability_Overlap(t *testing.T) {
	doctorID := uuid.New()
	appts := newMemAppointments(time.Hour)
	c := newTestChecker(doctorID, appts)

	existing := &model.Appointment{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		PatientID: uuid.New(),
		StartTime: mondayAt(9, 30),
		Status:    model.AppointmentStatusPending,
	}
	require.NoError(t, appts.Create(context.Background(), existing))

	// 10:00 overlaps the 09:30-10:30 slot.
	err := c.CheckAvailability(context.Background(), doctorID, mondayAt(10, 0), time.Hour, nil)
	assert.Equal(t, apperrors.ErrDoubleBooked, apperrors.CodeOf(err))

	// 10:30 starts exactly when the existing slot ends.
	assert.NoError(t, c.CheckAvailability(context.Background(), doctorID, mondayAt(10, 30), time.Hour, nil))
}

func TestCheckAvailability_TerminalStatusesDoNotBlock(t *testing.T) {
	doctorID := uuid.New()
	appts := newMemAppointments(time.Hour)
	c := newTestChecker(doctorID, appts)

	for _, status := range []model.AppointmentStatus{
		model.AppointmentStatusCancelled,
		model.AppointmentStatusCompleted,
		model.AppointmentStatusNoShow,
	} {
		require.NoError(t, appts.Create(context.Background(), &model.Appointment{
			ID:        uuid.New(),
			DoctorID:  doctorID,
			PatientID: uuid.New(),
			StartTime: mondayAt(9, 30),
			Status:    status,
		}))
	}

	assert.NoError(t, c.CheckAvailability(context.Background(), doctorID, mondayAt(9, 30), time.Hour, nil))
}

func TestCheckAvailability_ExcludeSelf(t *testing.T) {
	doctorID := uuid.New()
	appts := newMemAppointments(time.Hour)
	c := newTestChecker(doctorID, appts)

	existing := &model.Appointment{
		ID:        uuid.New(),
		DoctorID:  doctorID,
		PatientID: uuid.New(),
		StartTime: mondayAt(9, 30),
		Status:    model.AppointmentStatusConfirmed,
	}
	require.NoError(t, appts.Create(context.Background(), existing))

	// Moving the appointment within its own slot does not conflict with itself.
	assert.NoError(t, c.CheckAvailability(context.Background(), doctorID, mondayAt(10, 0), time.Hour, &existing.ID))
}

func TestCheckAvailability_PastDate(t *testing.T) {
	doctorID := uuid.New()
	c := newTestChecker(doctorID, newMemAppointments(time.Hour))

	// A past Monday inside the window still fails, and with PastDate, not
	// a window error.
	past := time.Date(2025, time.December, 29, 10, 0, 0, 0, time.UTC)
	err := c.CheckAvailability(context.Background(), doctorID, past, time.Hour, nil)
	assert.Equal(t, apperrors.ErrPastDate, apperrors.CodeOf(err))
}
