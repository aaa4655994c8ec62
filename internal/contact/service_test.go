package contact

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Zachkp/portfolio/internal/model"
)

type memRecorder struct {
	saved []*model.ContactMessage
	err   error
}

func (r *memRecorder) CreateContactMessage(_ context.Context, m *model.ContactMessage) error {
	if r.err != nil {
		return r.err
	}
	m.ID = int64(len(r.saved) + 1)
	r.saved = append(r.saved, m)
	return nil
}

type stubMailer struct {
	sent []Email
	err  error
}

func (m *stubMailer) Send(_ context.Context, e Email) error {
	m.sent = append(m.sent, e)
	return m.err
}

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestService(rec Recorder, mailer Mailer, opts Options, logger *zap.Logger) *Service {
	s := NewService(rec, mailer, opts, logger)
	s.now = func() time.Time { return fixedNow }
	return s
}

func jane() Submission {
	return Submission{
		Name:    "Jane",
		Email:   "jane@example.com",
		Subject: "Hi",
		Message: "Hello there",
	}
}

func TestSubmitSucceedsWhenMailFails(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	rec := &memRecorder{}
	mailer := &stubMailer{err: errors.New("connection refused")}
	s := newTestService(rec, mailer, Options{Recipient: "owner@example.com", From: "site@example.com"}, zap.New(core))

	out, err := s.Submit(context.Background(), jane())
	require.NoError(t, err)

	require.Len(t, rec.saved, 1)
	assert.Equal(t, "Jane", rec.saved[0].Name)
	assert.Equal(t, fixedNow, rec.saved[0].CreatedAt)
	assert.Equal(t, NotificationFailed, out.Notification)
	assert.Error(t, out.NotifyErr)
	assert.Equal(t, []State{StateReceived, StateValidated, StatePersisted, StateEmailAttempted, StateAcknowledged}, out.Trail)
	assert.Equal(t, 1, logs.FilterMessage("Failed to send contact email").Len())
}

func TestSubmitSendsNotification(t *testing.T) {
	rec := &memRecorder{}
	mailer := &stubMailer{}
	s := newTestService(rec, mailer, Options{Recipient: "owner@example.com", From: "site@example.com"}, nil)

	out, err := s.Submit(context.Background(), jane())
	require.NoError(t, err)
	assert.Equal(t, NotificationSent, out.Notification)

	require.Len(t, mailer.sent, 1)
	e := mailer.sent[0]
	assert.Equal(t, "[Portfolio] Hi", e.Subject)
	assert.Equal(t, "site@example.com", e.From)
	assert.Equal(t, []string{"owner@example.com"}, e.To)
	assert.Equal(t, "jane@example.com", e.ReplyTo)
	assert.Contains(t, e.Body, "Name: Jane")
	assert.Contains(t, e.Body, "Email: jane@example.com")
	assert.Contains(t, e.Body, "Hello there")
}

func TestSubmitDefaultSubject(t *testing.T) {
	mailer := &stubMailer{}
	s := newTestService(&memRecorder{}, mailer, Options{Recipient: "owner@example.com"}, nil)

	sub := jane()
	sub.Subject = "  "
	_, err := s.Submit(context.Background(), sub)
	require.NoError(t, err)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "[Portfolio] New message", mailer.sent[0].Subject)
	assert.Equal(t, "no-reply@localhost", mailer.sent[0].From)
}

func TestSubmitSkipsEmailWithoutRecipient(t *testing.T) {
	rec := &memRecorder{}
	mailer := &stubMailer{}
	s := newTestService(rec, mailer, Options{}, nil)

	out, err := s.Submit(context.Background(), jane())
	require.NoError(t, err)
	assert.Len(t, rec.saved, 1)
	assert.Empty(t, mailer.sent)
	assert.Equal(t, NotificationSkipped, out.Notification)
	assert.Contains(t, out.Trail, StateEmailSkipped)
	assert.NotContains(t, out.Trail, StateEmailAttempted)
}

func TestSubmitRejectsEmptyMessage(t *testing.T) {
	rec := &memRecorder{}
	mailer := &stubMailer{}
	s := newTestService(rec, mailer, Options{Recipient: "owner@example.com"}, nil)

	sub := jane()
	sub.Message = "   "
	out, err := s.Submit(context.Background(), sub)
	require.Error(t, err)
	assert.Nil(t, out)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "message")
	assert.Empty(t, rec.saved)
	assert.Empty(t, mailer.sent)
}

func TestSubmitRejectsInvalidEmail(t *testing.T) {
	rec := &memRecorder{}
	s := newTestService(rec, nil, Options{}, nil)

	sub := jane()
	sub.Email = "not-an-email"
	_, err := s.Submit(context.Background(), sub)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "email")
	assert.NotContains(t, ve.Fields, "name")
	assert.Empty(t, rec.saved)
}

func TestSubmitPropagatesStoreError(t *testing.T) {
	mailer := &stubMailer{}
	s := newTestService(&memRecorder{err: errors.New("disk full")}, mailer, Options{Recipient: "owner@example.com"}, nil)

	_, err := s.Submit(context.Background(), jane())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.Empty(t, mailer.sent)
}

func TestValidationErrorMessage(t *testing.T) {
	err := (&ValidationError{Fields: map[string]string{
		"name":  "cannot be blank",
		"email": "must be a valid email address",
	}}).Error()
	assert.Equal(t, "invalid contact submission: email: must be a valid email address; name: cannot be blank", err)
}

func TestSMTPMailerComposesMessage(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", User: "user", Pass: "secret"})
	m.now = func() time.Time { return fixedNow }

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	var gotAuth smtp.Auth
	m.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotAuth, gotFrom, gotTo, gotMsg = addr, a, from, to, msg
		return nil
	}

	err := m.Send(context.Background(), Email{
		Subject: "[Portfolio] Hi\r\nBcc: evil@example.com",
		Body:    "line one\nline two",
		From:    "site@example.com",
		To:      []string{"owner@example.com"},
		ReplyTo: "jane@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.NotNil(t, gotAuth)
	assert.Equal(t, "site@example.com", gotFrom)
	assert.Equal(t, []string{"owner@example.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "To: owner@example.com\r\n")
	assert.Contains(t, msg, "Reply-To: jane@example.com\r\n")
	assert.Contains(t, msg, "Subject: [Portfolio] Hi  Bcc: evil@example.com\r\n")
	assert.NotContains(t, msg, "\r\nBcc:")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nline one\r\nline two"))
}

func TestSMTPMailerWithoutHost(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{})
	err := m.Send(context.Background(), Email{To: []string{"owner@example.com"}})
	assert.ErrorIs(t, err, ErrMailNotConfigured)
}

func TestSMTPMailerWrapsSendError(t *testing.T) {
	m := NewSMTPMailer(SMTPConfig{Host: "localhost", Port: "2525"})
	m.sendMail = func(addr string, a smtp.Auth, _ string, _ []string, _ []byte) error {
		assert.Nil(t, a)
		return errors.New("refused")
	}
	err := m.Send(context.Background(), Email{To: []string{"owner@example.com"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "localhost:2525")
}

func TestLogMailer(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	m := NewLogMailer(zap.New(core))
	require.NoError(t, m.Send(context.Background(), Email{Subject: "s", To: []string{"a@b.c"}}))
	assert.Equal(t, 1, logs.Len())
}
