package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medipoint/scheduler-api/internal/locker"
	"github.com/medipoint/scheduler-api/internal/model"
	"github.com/medipoint/scheduler-api/internal/repository"
	"github.com/medipoint/scheduler-api/internal/service/notification"
	apperrors "github.com/medipoint/scheduler-api/pkg/errors"
	"github.com/medipoint/scheduler-api/pkg/logger"
	"github.com/medipoint/scheduler-api/pkg/metrics"
)

// BookingRequest carries the inputs for a new appointment. Clinical intake
// fields are opaque payload here.
type BookingRequest struct {
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	StartTime time.Time
	Type      string
	Symptoms  string
	Notes     string
}

// Engine services booking, rescheduling and status changes, each atomic
// with respect to a single appointment. The conflict check and the write
// happen inside a per-doctor critical section so two concurrent requests
// for overlapping slots cannot both commit.
type Engine struct {
	appointments repository.AppointmentRepository
	conflicts    *ConflictChecker
	transitions  *TransitionValidator
	dispatcher   *notification.Dispatcher
	locks        locker.Locker
	metrics      *metrics.Metrics
	logger       *logger.Logger
	slotDuration time.Duration
	now          func() time.Time
}

func NewEngine(
	appointments repository.AppointmentRepository,
	conflicts *ConflictChecker,
	transitions *TransitionValidator,
	dispatcher *notification.Dispatcher,
	locks locker.Locker,
	m *metrics.Metrics,
	l *logger.Logger,
	slotDuration time.Duration,
) *Engine {
	return &Engine{
		appointments: appointments,
		conflicts:    conflicts,
		transitions:  transitions,
		dispatcher:   dispatcher,
		locks:        locks,
		metrics:      m,
		logger:       l.WithComponent("scheduling-engine"),
		slotDuration: slotDuration,
		now:          time.Now,
	}
}

// Book creates a new PENDING appointment after the slot passes the conflict
// check. Patients book for themselves; admins may book for any patient.
func (e *Engine) Book(ctx context.Context, actor model.Actor, req BookingRequest) (*model.Appointment, error) {
	if e.metrics != nil {
		e.metrics.BookingAttempts.Inc()
		defer e.observe("book", e.now())
	}

	patientID, err := e.resolveBookingPatient(actor, req.PatientID)
	if err != nil {
		return nil, e.reject(err)
	}

	var created *model.Appointment
	err = e.locks.WithDoctorLock(ctx, req.DoctorID, func(lockCtx context.Context) error {
		if err := e.conflicts.CheckAvailability(lockCtx, req.DoctorID, req.StartTime, e.slotDuration, nil); err != nil {
			return err
		}

		now := e.now()
		appt := &model.Appointment{
			ID:        uuid.New(),
			PatientID: patientID,
			DoctorID:  req.DoctorID,
			StartTime: req.StartTime,
			Status:    model.AppointmentStatusPending,
			Type:      req.Type,
			Symptoms:  req.Symptoms,
			Notes:     req.Notes,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := e.appointments.Create(lockCtx, appt); err != nil {
			return apperrors.Internal(fmt.Errorf("persist appointment: %w", err))
		}
		created = appt
		return nil
	})
	if err != nil {
		if errors.Is(err, locker.ErrLockNotAcquired) {
			if e.metrics != nil {
				e.metrics.LockContention.Inc()
			}
			err = apperrors.SlotContended()
		}
		return nil, e.reject(err)
	}

	e.dispatcher.Dispatch(ctx, notification.StateChange{
		Kind:        notification.EventBooked,
		Appointment: created,
		Initiator:   actor.Role,
	})

	return created, nil
}

// Reschedule moves an appointment to a new start time. The transition
// validator gates on current status, then the slot is re-validated against
// the same doctor with this appointment excluded from the overlap scan.
func (e *Engine) Reschedule(ctx context.Context, actor model.Actor, id uuid.UUID, newStart time.Time) (*model.Appointment, error) {
	if e.metrics != nil {
		defer e.observe("reschedule", e.now())
	}

	appt, err := e.appointments.Get(ctx, id)
	if err != nil {
		return nil, e.wrapLookup(err)
	}

	// Fail fast before contending for the lock. The authoritative check
	// runs on a fresh read inside the critical section: the appointment may
	// reach a terminal status between this read and lock acquisition, and a
	// stale snapshot must not resurrect it.
	if _, err := e.transitions.Validate(actor, appt, ChangeRequest{StartTime: &newStart}); err != nil {
		return nil, e.reject(err)
	}

	var updated *model.Appointment
	err = e.locks.WithDoctorLock(ctx, appt.DoctorID, func(lockCtx context.Context) error {
		current, err := e.appointments.Get(lockCtx, id)
		if err != nil {
			return err
		}
		if _, err := e.transitions.Validate(actor, current, ChangeRequest{StartTime: &newStart}); err != nil {
			return err
		}
		if err := e.conflicts.CheckAvailability(lockCtx, current.DoctorID, newStart, e.slotDuration, &current.ID); err != nil {
			return err
		}

		expected := current.UpdatedAt
		current.StartTime = newStart
		current.UpdatedAt = e.now()
		if err := e.appointments.Update(lockCtx, current, expected); err != nil {
			if apperrors.IsExpected(err) {
				return err
			}
			return apperrors.Internal(fmt.Errorf("persist reschedule: %w", err))
		}
		updated = current
		return nil
	})
	if err != nil {
		if errors.Is(err, locker.ErrLockNotAcquired) {
			if e.metrics != nil {
				e.metrics.LockContention.Inc()
			}
			err = apperrors.SlotContended()
		}
		return nil, e.reject(err)
	}

	if e.metrics != nil {
		e.metrics.Reschedules.Inc()
	}

	e.dispatcher.Dispatch(ctx, notification.StateChange{
		Kind:        notification.EventRescheduled,
		Appointment: updated,
		Initiator:   actor.Role,
	})

	return updated, nil
}

// ChangeStatus applies a validated status transition and any approved
// clinical fields. A request for the current status is an idempotent no-op.
// req.StartTime is ignored; date changes go through Reschedule.
func (e *Engine) ChangeStatus(ctx context.Context, actor model.Actor, id uuid.UUID, req ChangeRequest) (*model.Appointment, error) {
	if e.metrics != nil {
		defer e.observe("change_status", e.now())
	}

	req.StartTime = nil

	appt, err := e.appointments.Get(ctx, id)
	if err != nil {
		return nil, e.wrapLookup(err)
	}

	approved, err := e.transitions.Validate(actor, appt, req)
	if err != nil {
		return nil, e.reject(err)
	}

	changed := applyChange(appt, approved)
	if !changed {
		return appt, nil
	}

	expected := appt.UpdatedAt
	appt.UpdatedAt = e.now()
	if err := e.appointments.Update(ctx, appt, expected); err != nil {
		if apperrors.IsExpected(err) {
			return nil, e.reject(err)
		}
		return nil, e.reject(apperrors.Internal(fmt.Errorf("persist status change: %w", err)))
	}

	if approved.Status != nil {
		if e.metrics != nil {
			e.metrics.StatusTransitions.WithLabelValues(string(*approved.Status)).Inc()
		}
		if kind, ok := eventForStatus(*approved.Status); ok {
			e.dispatcher.Dispatch(ctx, notification.StateChange{
				Kind:        kind,
				Appointment: appt,
				Initiator:   actor.Role,
			})
		}
	}

	return appt, nil
}

// Update services the combined endpoint: one logical status change and/or
// one reschedule, status checks first, then date checks.
func (e *Engine) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req ChangeRequest) (*model.Appointment, error) {
	newStart := req.StartTime
	req.StartTime = nil

	appt, err := e.ChangeStatus(ctx, actor, id, req)
	if err != nil {
		return nil, err
	}

	if newStart != nil {
		appt, err = e.Reschedule(ctx, actor, id, *newStart)
		if err != nil {
			return nil, err
		}
	}

	return appt, nil
}

// Delete is the administrative hard delete. It bypasses the state machine
// entirely and is not part of the appointment lifecycle.
func (e *Engine) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if _, err := e.appointments.Get(ctx, id); err != nil {
		return e.wrapLookup(err)
	}
	if !actor.IsAdmin() {
		return apperrors.Unauthorized("only admins may delete appointments")
	}
	if err := e.appointments.Delete(ctx, id); err != nil {
		return apperrors.Internal(fmt.Errorf("delete appointment: %w", err))
	}
	return nil
}

// Get returns an appointment visible to the actor.
func (e *Engine) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Appointment, error) {
	appt, err := e.appointments.Get(ctx, id)
	if err != nil {
		return nil, e.wrapLookup(err)
	}
	if !actor.CanAccess(appt) {
		return nil, apperrors.Unauthorized("not a party to this appointment")
	}
	return appt, nil
}

// List returns appointments scoped to what the actor may see: patients and
// doctors see their own calendar, admins see everything the filter matches.
func (e *Engine) List(ctx context.Context, actor model.Actor, filters model.AppointmentFilters) ([]*model.Appointment, error) {
	switch actor.Role {
	case model.RolePatient:
		filters.PatientID = actor.PatientID
	case model.RoleDoctor:
		filters.DoctorID = actor.DoctorID
	}

	appts, err := e.appointments.List(ctx, &filters)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("list appointments: %w", err))
	}
	return appts, nil
}

// AvailableSlots computes a doctor's free slots for one day: the enabled
// windows cut into slot-duration steps, minus slots overlapping active
// appointments, minus slots already in the past.
func (e *Engine) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]model.TimeSlot, error) {
	windows, err := e.conflicts.availability.GetWindows(ctx, doctorID, date.Weekday())
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("load availability windows: %w", err))
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	booked, err := e.appointments.FindOverlapping(ctx, doctorID, dayStart, dayEnd, nil)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("load booked appointments: %w", err))
	}

	now := e.now()
	var slots []model.TimeSlot
	for _, w := range windows {
		if !w.IsAvailable {
			continue
		}
		start, end, err := w.Bounds(date)
		if err != nil {
			e.logger.Warn("skipping malformed availability window", "window_id", w.ID.String())
			continue
		}
		for t := start; !t.Add(e.slotDuration).After(end); t = t.Add(e.slotDuration) {
			if !t.After(now) {
				continue
			}
			if slotTaken(t, t.Add(e.slotDuration), booked, e.slotDuration) {
				continue
			}
			slots = append(slots, model.TimeSlot{Start: t, End: t.Add(e.slotDuration)})
		}
	}

	return slots, nil
}

func slotTaken(start, end time.Time, booked []*model.Appointment, duration time.Duration) bool {
	for _, appt := range booked {
		if appt.Overlaps(start, end, duration) {
			return true
		}
	}
	return false
}

func (e *Engine) resolveBookingPatient(actor model.Actor, requested uuid.UUID) (uuid.UUID, error) {
	switch actor.Role {
	case model.RolePatient:
		if requested != uuid.Nil && requested != actor.PatientID {
			return uuid.Nil, apperrors.Unauthorized("patients may only book for themselves")
		}
		return actor.PatientID, nil
	case model.RoleAdmin:
		if requested == uuid.Nil {
			return uuid.Nil, apperrors.BadRequest("patient_id is required", nil)
		}
		return requested, nil
	default:
		return uuid.Nil, apperrors.Unauthorized("role may not book appointments")
	}
}

// applyChange copies approved fields onto the appointment, reporting
// whether anything actually changed.
func applyChange(appt *model.Appointment, c *ApprovedChange) bool {
	changed := false
	if c.Status != nil && *c.Status != appt.Status {
		appt.Status = *c.Status
		changed = true
	}
	if c.Symptoms != nil && *c.Symptoms != appt.Symptoms {
		appt.Symptoms = *c.Symptoms
		changed = true
	}
	if c.Diagnosis != nil && *c.Diagnosis != appt.Diagnosis {
		appt.Diagnosis = *c.Diagnosis
		changed = true
	}
	if c.Prescription != nil && *c.Prescription != appt.Prescription {
		appt.Prescription = *c.Prescription
		changed = true
	}
	if c.Notes != nil && *c.Notes != appt.Notes {
		appt.Notes = *c.Notes
		changed = true
	}
	return changed
}

func eventForStatus(s model.AppointmentStatus) (notification.EventKind, bool) {
	switch s {
	case model.AppointmentStatusConfirmed:
		return notification.EventConfirmed, true
	case model.AppointmentStatusCancelled:
		return notification.EventCancelled, true
	case model.AppointmentStatusCompleted:
		return notification.EventCompleted, true
	case model.AppointmentStatusNoShow:
		// Dispatch decides based on policy whether NO_SHOW produces anything.
		return notification.EventNoShow, true
	}
	return "", false
}

// wrapLookup normalizes store lookup failures: missing rows stay NotFound,
// anything else is internal.
func (e *Engine) wrapLookup(err error) error {
	if apperrors.CodeOf(err) == apperrors.ErrNotFound {
		return err
	}
	e.logger.Error(err, "appointment lookup failed")
	return apperrors.Internal(err)
}

// reject records expected rejections in metrics and logs unexpected ones.
func (e *Engine) reject(err error) error {
	code := apperrors.CodeOf(err)
	if e.metrics != nil {
		e.metrics.Rejections.WithLabelValues(code.String()).Inc()
	}
	if code == apperrors.ErrInternal {
		e.logger.Error(err, "scheduling operation failed")
	}
	return err
}

func (e *Engine) observe(op string, start time.Time) {
	e.metrics.SchedulingLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
