package scheduling

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medipoint/scheduler-api/internal/model"
	apperrors "github.com/medipoint/scheduler-api/pkg/errors"
)

// memAppointments is an in-memory AppointmentRepository for engine tests.
type memAppointments struct {
	mu           sync.Mutex
	byID         map[uuid.UUID]*model.Appointment
	slotDuration time.Duration
}

func newMemAppointments(slotDuration time.Duration) *memAppointments {
	return &memAppointments{
		byID:         make(map[uuid.UUID]*model.Appointment),
		slotDuration: slotDuration,
	}
}

func (s *memAppointments) Create(_ context.Context, appt *model.Appointment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *appt
	s.byID[appt.ID] = &cp
	return nil
}

func (s *memAppointments) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	appt, ok := s.byID[id]
	if !ok {
		return nil, apperrors.NotFound("appointment", nil)
	}
	cp := *appt
	return &cp, nil
}

func (s *memAppointments) Update(_ context.Context, appt *model.Appointment, expected time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[appt.ID]
	if !ok {
		return apperrors.NotFound("appointment", nil)
	}
	if !stored.UpdatedAt.Equal(expected) {
		return apperrors.ConcurrentUpdate()
	}
	cp := *appt
	s.byID[appt.ID] = &cp
	return nil
}

func (s *memAppointments) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return apperrors.NotFound("appointment", nil)
	}
	delete(s.byID, id)
	return nil
}

func (s *memAppointments) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Appointment
	for _, appt := range s.byID {
		if filters.DoctorID != uuid.Nil && appt.DoctorID != filters.DoctorID {
			continue
		}
		if filters.PatientID != uuid.Nil && appt.PatientID != filters.PatientID {
			continue
		}
		if filters.Status != "" && appt.Status != filters.Status {
			continue
		}
		cp := *appt
		out = append(out, &cp)
	}
	return out, nil
}

func (s *memAppointments) FindOverlapping(_ context.Context, doctorID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) ([]*model.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Appointment
	for _, appt := range s.byID {
		if appt.DoctorID != doctorID || !appt.Status.Active() {
			continue
		}
		if excludeID != nil && appt.ID == *excludeID {
			continue
		}
		if appt.Overlaps(start, end, s.slotDuration) {
			cp := *appt
			out = append(out, &cp)
		}
	}
	return out, nil
}

// memAvailability serves fixed weekly windows.
type memAvailability struct {
	windows []*model.AvailabilityWindow
}

func (s *memAvailability) GetWindows(_ context.Context, doctorID uuid.UUID, weekday time.Weekday) ([]*model.AvailabilityWindow, error) {
	var out []*model.AvailabilityWindow
	for _, w := range s.windows {
		if w.DoctorID == doctorID && w.Weekday == weekday {
			out = append(out, w)
		}
	}
	return out, nil
}

// memNotifications records created notifications for assertions.
type memNotifications struct {
	mu      sync.Mutex
	created []*model.Notification
}

func (s *memNotifications) Create(_ context.Context, n *model.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *n
	s.created = append(s.created, &cp)
	return nil
}

func (s *memNotifications) ListForRecipient(_ context.Context, recipientID uuid.UUID, unreadOnly bool) ([]*model.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Notification
	for _, n := range s.created {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *memNotifications) MarkRead(_ context.Context, id, recipientID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.created {
		if n.ID == id && n.RecipientID == recipientID {
			n.IsRead = true
			return nil
		}
	}
	return apperrors.NotFound("notification", nil)
}

func (s *memNotifications) ofType(t model.NotificationType) []*model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Notification
	for _, n := range s.created {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}
