package scheduling

import (
	"time"

	"github.com/medipoint/scheduler-api/internal/model"
	apperrors "github.com/medipoint/scheduler-api/pkg/errors"
)

// ChangeRequest is the raw mutation a caller asks for. Nil fields are
// left untouched.
type ChangeRequest struct {
	Status       *model.AppointmentStatus
	StartTime    *time.Time
	Symptoms     *string
	Diagnosis    *string
	Prescription *string
	Notes        *string
}

// ApprovedChange is the sanitized field set the engine may persist.
// Status is nil for idempotent same-status requests.
type ApprovedChange struct {
	Status       *model.AppointmentStatus
	StartTime    *time.Time
	Symptoms     *string
	Diagnosis    *string
	Prescription *string
	Notes        *string
}

// edge is one legal status transition with its actor guard.
type edge struct {
	roles map[model.Role]bool
}

func roles(rs ...model.Role) map[model.Role]bool {
	m := make(map[model.Role]bool, len(rs))
	for _, r := range rs {
		m[r] = true
	}
	return m
}

// transitionTable maps current status -> target status -> guard. Statuses
// absent as keys are terminal: nothing leaves COMPLETED, CANCELLED or
// NO_SHOW. Same-status requests bypass the table as no-ops.
var transitionTable = map[model.AppointmentStatus]map[model.AppointmentStatus]edge{
	model.AppointmentStatusPending: {
		model.AppointmentStatusConfirmed: {roles: roles(model.RoleDoctor, model.RoleAdmin)},
		model.AppointmentStatusCancelled: {roles: roles(model.RolePatient, model.RoleDoctor, model.RoleAdmin)},
	},
	model.AppointmentStatusConfirmed: {
		model.AppointmentStatusCancelled: {roles: roles(model.RolePatient, model.RoleDoctor, model.RoleAdmin)},
		model.AppointmentStatusCompleted: {roles: roles(model.RoleDoctor, model.RoleAdmin)},
		model.AppointmentStatusNoShow:    {roles: roles(model.RoleDoctor, model.RoleAdmin)},
	},
}

// reschedulable are the statuses whose date may still change.
var reschedulable = map[model.AppointmentStatus]bool{
	model.AppointmentStatusPending:   true,
	model.AppointmentStatusConfirmed: true,
}

// TransitionValidator is the state machine over appointment status with
// actor-aware guards and field-level authorization.
type TransitionValidator struct{}

func NewTransitionValidator() *TransitionValidator {
	return &TransitionValidator{}
}

// Validate approves or rejects a requested change against the appointment's
// current state and the actor's role. On approval it returns the sanitized
// field set: clinical fields a PATIENT may not set are silently stripped
// rather than failing the request.
func (v *TransitionValidator) Validate(actor model.Actor, appt *model.Appointment, req ChangeRequest) (*ApprovedChange, error) {
	if !actor.CanAccess(appt) {
		return nil, apperrors.Unauthorized("not a party to this appointment")
	}

	approved := &ApprovedChange{}

	if req.Status != nil {
		target := *req.Status
		if !target.Valid() {
			return nil, apperrors.InvalidStatus(string(target))
		}
		if target != appt.Status {
			e, ok := transitionTable[appt.Status][target]
			if !ok {
				return nil, apperrors.InvalidTransition(string(appt.Status), string(target))
			}
			if !e.roles[actor.Role] {
				return nil, apperrors.Unauthorized("role may not perform this transition")
			}
			approved.Status = &target
		}
		// Same-status requests are accepted as idempotent no-ops.
	}

	if req.StartTime != nil {
		if !reschedulable[appt.Status] {
			return nil, apperrors.NotReschedulable(string(appt.Status))
		}
		approved.StartTime = req.StartTime
	}

	approved.Symptoms = req.Symptoms
	approved.Notes = req.Notes
	if actor.Role != model.RolePatient {
		approved.Diagnosis = req.Diagnosis
		approved.Prescription = req.Prescription
	}

	return approved, nil
}
