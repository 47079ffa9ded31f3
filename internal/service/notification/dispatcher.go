package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/medipoint/scheduler-api/internal/model"
	"github.com/medipoint/scheduler-api/internal/repository"
	"github.com/medipoint/scheduler-api/pkg/logger"
	"github.com/medipoint/scheduler-api/pkg/messaging"
	"github.com/medipoint/scheduler-api/pkg/metrics"
)

const channelNotifications = "notifications"

const dateFormat = "Monday, January 2 2006 at 3:04 PM"

// EventKind names an accepted appointment state change.
type EventKind string

const (
	EventBooked      EventKind = "booked"
	EventConfirmed   EventKind = "confirmed"
	EventCancelled   EventKind = "cancelled"
	EventCompleted   EventKind = "completed"
	EventRescheduled EventKind = "rescheduled"
	EventNoShow      EventKind = "no_show"
)

// StateChange is the domain event the scheduling engine emits after a
// mutation commits. Initiator decides who is told: a patient cancelling
// notifies the doctor, not themselves.
type StateChange struct {
	Kind        EventKind
	Appointment *model.Appointment
	Initiator   model.Role
}

type Config struct {
	// NotifyNoShow enables a patient-facing notification for NO_SHOW.
	// Off by default.
	NotifyNoShow bool
}

// Dispatcher turns state changes into notification records. Delivery is
// best effort: the appointment mutation is the durable fact, so persist
// and publish failures are logged and swallowed.
type Dispatcher struct {
	repo    repository.NotificationRepository
	broker  messaging.Broker
	metrics *metrics.Metrics
	logger  *logger.Logger
	cfg     Config
}

func NewDispatcher(repo repository.NotificationRepository, broker messaging.Broker, m *metrics.Metrics, l *logger.Logger, cfg Config) *Dispatcher {
	return &Dispatcher{
		repo:    repo,
		broker:  broker,
		metrics: m,
		logger:  l.WithComponent("notification-dispatcher"),
		cfg:     cfg,
	}
}

// Dispatch produces zero, one or two notifications for the event and
// persists them. It never returns an error to the caller.
func (d *Dispatcher) Dispatch(ctx context.Context, ev StateChange) []*model.Notification {
	notifications := d.build(ev)

	created := make([]*model.Notification, 0, len(notifications))
	for _, n := range notifications {
		n.ID = uuid.New()
		n.CreatedAt = time.Now()

		if err := d.repo.Create(ctx, n); err != nil {
			if d.metrics != nil {
				d.metrics.NotificationFailures.Inc()
			}
			d.logger.Error(err, "failed to persist notification",
				"type", string(n.Type), "recipient", n.RecipientID.String())
			continue
		}
		if d.metrics != nil {
			d.metrics.NotificationsDispatched.WithLabelValues(string(n.Type)).Inc()
		}
		created = append(created, n)

		d.publish(ctx, n)
	}

	return created
}

func (d *Dispatcher) publish(ctx context.Context, n *model.Notification) {
	if d.broker == nil {
		return
	}
	ev := &model.NotificationEvent{
		ID:             uuid.New(),
		NotificationID: n.ID,
		RecipientID:    n.RecipientID,
		Type:           n.Type,
		Title:          n.Title,
		Message:        n.Message,
		CreatedAt:      n.CreatedAt,
	}
	if err := d.broker.Publish(ctx, channelNotifications, ev); err != nil {
		if d.metrics != nil {
			d.metrics.NotificationFailures.Inc()
		}
		d.logger.Error(err, "failed to publish notification event",
			"notification_id", n.ID.String())
	}
}

// build pattern-matches the event to recipient-addressed records.
func (d *Dispatcher) build(ev StateChange) []*model.Notification {
	appt := ev.Appointment
	when := appt.StartTime.Format(dateFormat)

	switch ev.Kind {
	case EventBooked:
		return []*model.Notification{{
			RecipientID: appt.DoctorID,
			Type:        model.NotificationAppointmentRequest,
			Title:       "New appointment request",
			Message:     fmt.Sprintf("A patient has requested an appointment on %s.", when),
		}}

	case EventConfirmed:
		return []*model.Notification{{
			RecipientID: appt.PatientID,
			Type:        model.NotificationAppointmentConfirmation,
			Title:       "Appointment confirmed",
			Message:     fmt.Sprintf("Your appointment on %s has been confirmed.", when),
		}}

	case EventCancelled:
		var out []*model.Notification
		// The initiating party already knows; tell the other side. Admin
		// cancellations notify both.
		if ev.Initiator != model.RolePatient {
			out = append(out, &model.Notification{
				RecipientID: appt.PatientID,
				Type:        model.NotificationAppointmentCancellation,
				Title:       "Appointment cancelled",
				Message:     fmt.Sprintf("Your appointment on %s has been cancelled.", when),
			})
		}
		if ev.Initiator != model.RoleDoctor {
			out = append(out, &model.Notification{
				RecipientID: appt.DoctorID,
				Type:        model.NotificationAppointmentCancellation,
				Title:       "Appointment cancelled",
				Message:     fmt.Sprintf("The appointment on %s has been cancelled.", when),
			})
		}
		return out

	case EventCompleted:
		return []*model.Notification{{
			RecipientID: appt.PatientID,
			Type:        model.NotificationAppointmentCompletion,
			Title:       "Appointment completed",
			Message:     fmt.Sprintf("Your appointment on %s has been marked completed.", when),
		}}

	case EventRescheduled:
		return []*model.Notification{
			{
				RecipientID: appt.PatientID,
				Type:        model.NotificationAppointmentRescheduled,
				Title:       "Appointment rescheduled",
				Message:     fmt.Sprintf("Your appointment has been moved to %s.", when),
			},
			{
				RecipientID: appt.DoctorID,
				Type:        model.NotificationAppointmentRescheduled,
				Title:       "Appointment rescheduled",
				Message:     fmt.Sprintf("An appointment has been moved to %s.", when),
			},
		}

	case EventNoShow:
		if !d.cfg.NotifyNoShow {
			return nil
		}
		return []*model.Notification{{
			RecipientID: appt.PatientID,
			Type:        model.NotificationAppointmentNoShow,
			Title:       "Missed appointment",
			Message:     fmt.Sprintf("You missed your appointment on %s.", when),
		}}
	}

	return nil
}
