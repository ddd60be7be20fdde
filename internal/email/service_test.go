package email

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type recordingSender struct {
	sent []*gomail.Message
	err  error
}

func (r *recordingSender) DialAndSend(m ...*gomail.Message) error {
	r.sent = append(r.sent, m...)
	return r.err
}

func TestSend(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService("clinic@hivcare.example", sender)

	require.NoError(t, svc.Send(context.Background(), "patient@example.org", "Appointment confirmed", "See you Monday."))

	require.Len(t, sender.sent, 1)
	var buf bytes.Buffer
	_, err := sender.sent[0].WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "From: clinic@hivcare.example")
	assert.Contains(t, raw, "To: patient@example.org")
	assert.Contains(t, raw, "Subject: Appointment confirmed")
	assert.Contains(t, raw, "See you Monday.")
}

func TestSend_Errors(t *testing.T) {
	svc := NewService("clinic@hivcare.example", &recordingSender{err: errors.New("535 auth failed")})
	err := svc.Send(context.Background(), "p@example.org", "s", "b")
	assert.ErrorContains(t, err, "failed to send email")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sender := &recordingSender{}
	err = NewService("x@example.org", sender).Send(ctx, "p@example.org", "s", "b")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, sender.sent)
}

func TestNewSMTPService(t *testing.T) {
	svc := NewSMTPService(Config{Host: "smtp.example.org", Port: 587, From: "clinic@hivcare.example"})

	dialer, ok := svc.sender.(*gomail.Dialer)
	require.True(t, ok)
	assert.Equal(t, "smtp.example.org", dialer.Host)
	assert.Equal(t, 587, dialer.Port)
}
