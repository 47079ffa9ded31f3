package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medipoint/scheduler-api/internal/repository"
	apperrors "github.com/medipoint/scheduler-api/pkg/errors"
)

// ConflictChecker decides whether a doctor can take an appointment at a
// proposed time. It is a pure read: all outcomes are returned as typed
// errors, nil meaning the slot is free.
type ConflictChecker struct {
	appointments repository.AppointmentRepository
	availability repository.AvailabilityRepository
	now          func() time.Time
}

func NewConflictChecker(appointments repository.AppointmentRepository, availability repository.AvailabilityRepository) *ConflictChecker {
	return &ConflictChecker{
		appointments: appointments,
		availability: availability,
		now:          time.Now,
	}
}

// CheckAvailability validates a proposed [start, start+duration) slot for
// the doctor. excludeID skips one appointment in the overlap scan, so a
// reschedule does not conflict with itself.
func (c *ConflictChecker) CheckAvailability(ctx context.Context, doctorID uuid.UUID, start time.Time, duration time.Duration, excludeID *uuid.UUID) error {
	// Past dates fail before anything else, independent of availability.
	if !start.After(c.now()) {
		return apperrors.PastDate()
	}

	windows, err := c.availability.GetWindows(ctx, doctorID, start.Weekday())
	if err != nil {
		return apperrors.Internal(fmt.Errorf("load availability windows: %w", err))
	}

	covered := false
	for _, w := range windows {
		if w.IsAvailable && w.Covers(start) {
			covered = true
			break
		}
	}
	if !covered {
		return apperrors.NoAvailabilityWindow()
	}

	end := start.Add(duration)
	overlapping, err := c.appointments.FindOverlapping(ctx, doctorID, start, end, excludeID)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("scan for overlapping appointments: %w", err))
	}
	if len(overlapping) > 0 {
		return apperrors.DoubleBooked()
	}

	return nil
}
