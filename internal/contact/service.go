// Package contact handles contact form submissions: validate, store, and
// notify the site owner by email on a best-effort basis.
package contact

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Zachkp/portfolio/internal/model"
)

// State is a step a submission passes through.
type State string

const (
	StateReceived       State = "received"
	StateValidated      State = "validated"
	StatePersisted      State = "persisted"
	StateEmailAttempted State = "email_attempted"
	StateEmailSkipped   State = "email_skipped"
	StateAcknowledged   State = "acknowledged"
)

// Notification is how the owner notification ended.
type Notification string

const (
	NotificationSent    Notification = "sent"
	NotificationSkipped Notification = "skipped"
	NotificationFailed  Notification = "failed"
)

// Recorder persists contact messages.
type Recorder interface {
	CreateContactMessage(ctx context.Context, m *model.ContactMessage) error
}

// Outcome describes an accepted submission. A failed notification does not
// make the submission unsuccessful; NotifyErr is kept for inspection only.
type Outcome struct {
	Message      *model.ContactMessage
	Trail        []State
	Notification Notification
	NotifyErr    error
}

// Options configure owner notification. An empty Recipient disables email.
type Options struct {
	Recipient string
	From      string
}

type Service struct {
	recorder  Recorder
	mailer    Mailer
	recipient string
	from      string
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(recorder Recorder, mailer Mailer, opts Options, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	from := opts.From
	if from == "" {
		from = "no-reply@localhost"
	}
	return &Service{
		recorder:  recorder,
		mailer:    mailer,
		recipient: opts.Recipient,
		from:      from,
		logger:    logger.Named("contact"),
		now:       time.Now,
	}
}

// Submit validates and stores sub, then notifies the owner. It returns a
// *ValidationError when the form is invalid, in which case nothing is
// stored. Store errors are returned as-is. Mail failures are logged and
// reported only through the Outcome.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Outcome, error) {
	out := &Outcome{Trail: []State{StateReceived}}

	sub.Normalize()
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	out.Trail = append(out.Trail, StateValidated)

	msg := &model.ContactMessage{
		Name:      sub.Name,
		Email:     sub.Email,
		Subject:   sub.Subject,
		Message:   sub.Message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.recorder.CreateContactMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("store contact message: %w", err)
	}
	out.Message = msg
	out.Trail = append(out.Trail, StatePersisted)

	if s.recipient == "" || s.mailer == nil {
		out.Notification = NotificationSkipped
		out.Trail = append(out.Trail, StateEmailSkipped)
	} else {
		out.Trail = append(out.Trail, StateEmailAttempted)
		out.NotifyErr = s.mailer.Send(ctx, s.notification(msg))
		if out.NotifyErr != nil {
			out.Notification = NotificationFailed
			s.logger.Error("Failed to send contact email",
				zap.Int64("message_id", msg.ID),
				zap.String("recipient", s.recipient),
				zap.Error(out.NotifyErr))
		} else {
			out.Notification = NotificationSent
		}
	}

	out.Trail = append(out.Trail, StateAcknowledged)
	s.logger.Info("Contact message received",
		zap.Int64("message_id", msg.ID),
		zap.String("notification", string(out.Notification)))
	return out, nil
}

func (s *Service) notification(msg *model.ContactMessage) Email {
	subject := msg.Subject
	if subject == "" {
		subject = "New message"
	}
	body := fmt.Sprintf(`New contact message from your portfolio:

Name: %s
Email: %s
Subject: %s

Message:
%s

Sent at: %s
`, msg.Name, msg.Email, msg.Subject, msg.Message, msg.CreatedAt.Format(time.RFC1123))

	return Email{
		Subject: "[Portfolio] " + subject,
		Body:    body,
		From:    s.from,
		To:      []string{s.recipient},
		ReplyTo: msg.Email,
	}
}
