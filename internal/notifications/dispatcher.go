package notifications

import (
	"context"
	"log/slog"
	"runtime/debug"
	"time"

	"puntovuela/internal/models"
	"puntovuela/internal/observability"
)

const dispatchTimeout = 10 * time.Second

// Dispatcher fans lifecycle events out to the Redis notifier and the mailer.
// Delivery is fire-and-forget: a slow SMTP server or a dead Redis must never
// delay or fail the request that triggered the event.
type Dispatcher struct {
	notifier *Notifier
	mailer   *Mailer
}

// NewDispatcher creates a Dispatcher over the given delivery channels. Either
// may be nil or disabled.
func NewDispatcher(notifier *Notifier, mailer *Mailer) *Dispatcher {
	return &Dispatcher{notifier: notifier, mailer: mailer}
}

// async runs fn on its own goroutine with a detached context and panic
// recovery.
func (d *Dispatcher) async(channel string, fn func(ctx context.Context) error) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("notification dispatch panicked",
					"channel", channel, "panic", r, "stack", string(debug.Stack()))
				observability.RecordNotification(channel, "panic")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if err := fn(ctx); err != nil {
			slog.Warn("notification dispatch failed", "channel", channel, "error", err)
			observability.RecordNotification(channel, "error")
			return
		}
		observability.RecordNotification(channel, "ok")
	}()
}

// RequestCreated publishes the pub/sub event and emails every verified user
// except the requester.
func (d *Dispatcher) RequestCreated(request *models.HelpRequest, recipients []string) {
	event := RequestEvent{
		Event:       EventRequestCreated,
		RequestID:   request.ID,
		Category:    request.Category,
		Status:      request.Status,
		ActorID:     request.RequesterID,
		OccurredAt:  time.Now().UTC(),
		Description: request.Description,
	}
	d.async("redis", func(ctx context.Context) error {
		return d.notifier.PublishRequestEvent(ctx, event)
	})
	if d.mailer.Enabled() {
		d.async("email", func(context.Context) error {
			return d.mailer.SendNewRequestBroadcast(request, recipients)
		})
	}
}

// RequestAccepted notifies the requester that a volunteer took the request.
func (d *Dispatcher) RequestAccepted(request *models.HelpRequest, volunteerID uint) {
	event := RequestEvent{
		Event:      EventRequestAccepted,
		RequestID:  request.ID,
		Category:   request.Category,
		Status:     models.StatusAccepted,
		ActorID:    volunteerID,
		OccurredAt: time.Now().UTC(),
	}
	d.async("redis", func(ctx context.Context) error {
		if err := d.notifier.PublishRequestEvent(ctx, event); err != nil {
			return err
		}
		payload, err := encodeEvent(event)
		if err != nil {
			return err
		}
		return d.notifier.PublishUser(ctx, request.RequesterID, payload)
	})
}

// RequestCompleted notifies the requester that the engagement finished.
func (d *Dispatcher) RequestCompleted(request *models.HelpRequest, volunteerID uint) {
	event := RequestEvent{
		Event:      EventRequestCompleted,
		RequestID:  request.ID,
		Category:   request.Category,
		Status:     models.StatusCompleted,
		ActorID:    volunteerID,
		OccurredAt: time.Now().UTC(),
	}
	d.async("redis", func(ctx context.Context) error {
		if err := d.notifier.PublishRequestEvent(ctx, event); err != nil {
			return err
		}
		payload, err := encodeEvent(event)
		if err != nil {
			return err
		}
		return d.notifier.PublishUser(ctx, request.RequesterID, payload)
	})
}

// MessageSent notifies the counterparty on a request conversation.
func (d *Dispatcher) MessageSent(message *models.Message, recipientID uint) {
	event := RequestEvent{
		Event:      EventMessageSent,
		RequestID:  message.RequestID,
		ActorID:    message.SenderID,
		OccurredAt: time.Now().UTC(),
	}
	d.async("redis", func(ctx context.Context) error {
		payload, err := encodeEvent(event)
		if err != nil {
			return err
		}
		return d.notifier.PublishUser(ctx, recipientID, payload)
	})
}

// VerificationRequested mails the activation link to a freshly registered user.
func (d *Dispatcher) VerificationRequested(user *models.User, token string) {
	if !d.mailer.Enabled() {
		return
	}
	d.async("email", func(context.Context) error {
		return d.mailer.SendVerificationEmail(user, token)
	})
}
