package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/medipoint/scheduler-api/internal/model"
)

// All repository interfaces in one file
type (
	// AppointmentRepository handles appointment persistence
	AppointmentRepository interface {
		Create(ctx context.Context, appt *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		// Update persists the row only while updated_at still matches
		// expected, so a write racing another mutation fails with
		// ConcurrentUpdate instead of silently losing it.
		Update(ctx context.Context, appt *model.Appointment, expected time.Time) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// FindOverlapping returns PENDING/CONFIRMED appointments of the doctor
		// whose slot intersects [start, end), excluding excludeID when non-nil.
		FindOverlapping(ctx context.Context, doctorID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error)
	}

	// AvailabilityRepository reads doctors' weekly recurring windows.
	// The scheduling engine never writes windows.
	AvailabilityRepository interface {
		GetWindows(ctx context.Context, doctorID uuid.UUID, weekday time.Weekday) ([]*model.AvailabilityWindow, error)
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		ListForRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*model.Notification, error)
		MarkRead(ctx context.Context, id, recipientID uuid.UUID) error
	}

	// UserDirectory is the narrow read-only view of the external user
	// store that notification delivery needs.
	UserDirectory interface {
		GetEmail(ctx context.Context, userID uuid.UUID) (string, error)
	}
)
