package notification

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medipoint/scheduler-api/internal/model"
	"github.com/medipoint/scheduler-api/pkg/logger"
)

type recordingRepo struct {
	created []*model.Notification
	failOn  model.NotificationType
}

func (r *recordingRepo) Create(_ context.Context, n *model.Notification) error {
	if r.failOn != "" && n.Type == r.failOn {
		return errors.New("store down")
	}
	cp := *n
	r.created = append(r.created, &cp)
	return nil
}

func (r *recordingRepo) ListForRecipient(context.Context, uuid.UUID, bool) ([]*model.Notification, error) {
	return nil, nil
}

func (r *recordingRepo) MarkRead(context.Context, uuid.UUID, uuid.UUID) error { return nil }

func newTestDispatcher(cfg Config) (*Dispatcher, *recordingRepo) {
	repo := &recordingRepo{}
	l := logger.New(&logger.Config{Output: io.Discard, Level: logger.ErrorLevel})
	return NewDispatcher(repo, nil, nil, l, cfg), repo
}

func sampleChange(kind EventKind, initiator model.Role) (StateChange, uuid.UUID, uuid.UUID) {
	patientID := uuid.New()
	doctorID := uuid.New()
	return StateChange{
		Kind: kind,
		Appointment: &model.Appointment{
			ID:        uuid.New(),
			PatientID: patientID,
			DoctorID:  doctorID,
			StartTime: time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC),
			Status:    model.AppointmentStatusPending,
		},
		Initiator: initiator,
	}, patientID, doctorID
}

func recipientsOf(ns []*model.Notification) map[uuid.UUID]model.NotificationType {
	out := make(map[uuid.UUID]model.NotificationType, len(ns))
	for _, n := range ns {
		out[n.RecipientID] = n.Type
	}
	return out
}

func TestDispatch_BookedGoesToDoctor(t *testing.T) {
	d, _ := newTestDispatcher(Config{})
	ev, _, doctorID := sampleChange(EventBooked, model.RolePatient)

	created := d.Dispatch(context.Background(), ev)
	require.Len(t, created, 1)
	assert.Equal(t, doctorID, created[0].RecipientID)
	assert.Equal(t, model.NotificationAppointmentRequest, created[0].Type)
	assert.Contains(t, created[0].Message, "Monday, March 2 2026")
}

func TestDispatch_ConfirmedGoesToPatient(t *testing.T) {
	d, _ := newTestDispatcher(Config{})
	ev, patientID, _ := sampleChange(EventConfirmed, model.RoleDoctor)

	created := d.Dispatch(context.Background(), ev)
	require.Len(t, created, 1)
	assert.Equal(t, patientID, created[0].RecipientID)
	assert.Equal(t, model.NotificationAppointmentConfirmation, created[0].Type)
}

func TestDispatch_CancellationNotifiesTheOtherSide(t *testing.T) {
	tests := []struct {
		name      string
		initiator model.Role
		toPatient bool
		toDoctor  bool
	}{
		{"patient cancels, doctor is told", model.RolePatient, false, true},
		{"doctor cancels, patient is told", model.RoleDoctor, true, false},
		{"admin cancels, both are told", model.RoleAdmin, true, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d, _ := newTestDispatcher(Config{})
			ev, patientID, doctorID := sampleChange(EventCancelled, tc.initiator)

			created := d.Dispatch(context.Background(), ev)
			got := recipientsOf(created)

			_, patientTold := got[patientID]
			_, doctorTold := got[doctorID]
			assert.Equal(t, tc.toPatient, patientTold)
			assert.Equal(t, tc.toDoctor, doctorTold)
			for _, n := range created {
				assert.Equal(t, model.NotificationAppointmentCancellation, n.Type)
			}
		})
	}
}

func TestDispatch_CompletedGoesToPatientOnly(t *testing.T) {
	d, _ := newTestDispatcher(Config{})
	ev, patientID, _ := sampleChange(EventCompleted, model.RoleDoctor)

	created := d.Dispatch(context.Background(), ev)
	require.Len(t, created, 1)
	assert.Equal(t, patientID, created[0].RecipientID)
	assert.Equal(t, model.NotificationAppointmentCompletion, created[0].Type)
}

func TestDispatch_RescheduledNotifiesBoth(t *testing.T) {
	d, _ := newTestDispatcher(Config{})
	ev, patientID, doctorID := sampleChange(EventRescheduled, model.RolePatient)

	created := d.Dispatch(context.Background(), ev)
	require.Len(t, created, 2)
	got := recipientsOf(created)
	assert.Equal(t, model.NotificationAppointmentRescheduled, got[patientID])
	assert.Equal(t, model.NotificationAppointmentRescheduled, got[doctorID])
}

func TestDispatch_NoShowRespectsPolicy(t *testing.T) {
	d, _ := newTestDispatcher(Config{})
	ev, _, _ := sampleChange(EventNoShow, model.RoleDoctor)
	assert.Empty(t, d.Dispatch(context.Background(), ev))

	d, _ = newTestDispatcher(Config{NotifyNoShow: true})
	ev, patientID, _ := sampleChange(EventNoShow, model.RoleDoctor)
	created := d.Dispatch(context.Background(), ev)
	require.Len(t, created, 1)
	assert.Equal(t, patientID, created[0].RecipientID)
	assert.Equal(t, model.NotificationAppointmentNoShow, created[0].Type)
}

func TestDispatch_PersistFailureIsSwallowed(t *testing.T) {
	repo := &recordingRepo{failOn: model.NotificationAppointmentRescheduled}
	l := logger.New(&logger.Config{Output: io.Discard, Level: logger.ErrorLevel})
	d := NewDispatcher(repo, nil, nil, l, Config{})

	ev, _, _ := sampleChange(EventRescheduled, model.RolePatient)

	// Both records fail to persist; Dispatch reports nothing created but
	// never panics or errors.
	created := d.Dispatch(context.Background(), ev)
	assert.Empty(t, created)
	assert.Empty(t, repo.created)
}
