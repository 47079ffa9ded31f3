package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/medipoint/scheduler-api/internal/email"
	"github.com/medipoint/scheduler-api/internal/model"
	"github.com/medipoint/scheduler-api/internal/repository"
	"github.com/medipoint/scheduler-api/pkg/logger"
	"github.com/medipoint/scheduler-api/pkg/messaging"
)

const channelNotifications = "notifications"

// Notifier consumes notification events from the broker and delivers them
// over email. Delivery is best effort; a failed send is logged and dropped,
// the in-app record already exists.
type Notifier struct {
	broker    messaging.Broker
	directory repository.UserDirectory
	email     email.Service
	logger    *logger.Logger
}

func NewNotifier(broker messaging.Broker, directory repository.UserDirectory, emailSvc email.Service, l *logger.Logger) *Notifier {
	return &Notifier{
		broker:    broker,
		directory: directory,
		email:     emailSvc,
		logger:    l.WithComponent("notifier"),
	}
}

// Run blocks until ctx is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	msgs, err := n.broker.Subscribe(ctx, channelNotifications)
	if err != nil {
		return err
	}

	n.logger.Info("notifier started", "channel", channelNotifications)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-msgs:
			if !ok {
				return nil
			}
			n.handle(ctx, payload)
		}
	}
}

func (n *Notifier) handle(ctx context.Context, payload []byte) {
	var ev model.NotificationEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		n.logger.Error(err, "dropping malformed notification event")
		return
	}

	addr, err := n.directory.GetEmail(ctx, ev.RecipientID)
	if err != nil {
		n.logger.Error(err, "failed to resolve recipient email",
			"recipient", ev.RecipientID.String())
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := n.email.Send(sendCtx, addr, ev.Title, ev.Message); err != nil {
		n.logger.Error(err, "failed to send notification email",
			"recipient", ev.RecipientID.String(), "type", string(ev.Type))
		return
	}

	n.logger.Debug("notification email sent", "type", string(ev.Type))
}
