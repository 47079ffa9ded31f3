package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotificationAppointmentRequest      NotificationType = "APPOINTMENT_REQUEST"
	NotificationAppointmentConfirmation NotificationType = "APPOINTMENT_CONFIRMATION"
	NotificationAppointmentCancellation NotificationType = "APPOINTMENT_CANCELLATION"
	NotificationAppointmentCompletion   NotificationType = "APPOINTMENT_COMPLETION"
	NotificationAppointmentRescheduled  NotificationType = "APPOINTMENT_RESCHEDULED"
	NotificationAppointmentNoShow       NotificationType = "APPOINTMENT_NO_SHOW"
)

type Notification struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	RecipientID uuid.UUID        `db:"recipient_id" json:"recipient_id"`
	Type        NotificationType `db:"type" json:"type"`
	Title       string           `db:"title" json:"title"`
	Message     string           `db:"message" json:"message"`
	IsRead      bool             `db:"is_read" json:"is_read"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
}

// NotificationEvent is the payload published to the in-app notification
// channel for downstream delivery (email, push).
type NotificationEvent struct {
	ID             uuid.UUID        `json:"id"`
	NotificationID uuid.UUID        `json:"notification_id"`
	RecipientID    uuid.UUID        `json:"recipient_id"`
	Type           NotificationType `json:"type"`
	Title          string           `json:"title"`
	Message        string           `json:"message"`
	CreatedAt      time.Time        `json:"created_at"`
}
