package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"text/template"

	"github.com/jwalitptl/hivcare-api/internal/email"
	"github.com/jwalitptl/hivcare-api/internal/model"
	"github.com/jwalitptl/hivcare-api/pkg/logger"
	"github.com/jwalitptl/hivcare-api/pkg/messaging"
)

type emailTemplate struct {
	subject *template.Template
	body    *template.Template
}

func newTemplate(name, subject, body string) emailTemplate {
	return emailTemplate{
		subject: template.Must(template.New(name + ".subject").Parse(subject)),
		body:    template.Must(template.New(name + ".body").Parse(body)),
	}
}

var templates = map[string]emailTemplate{
	model.EventAppointmentCreated: newTemplate("created",
		"Appointment request received ({{.ReferenceCode}})",
		"Dear {{.PatientName}},\n\nWe received your request for {{.ServiceName}} with {{.DoctorName}} on {{.Date}} at {{.StartTime}}.\n"+
			"Your reference is {{.ReferenceCode}}. We will confirm shortly.\n"),
	model.EventAppointmentConfirmed: newTemplate("confirmed",
		"Appointment confirmed ({{.ReferenceCode}})",
		"Dear {{.PatientName}},\n\nYour appointment for {{.ServiceName}} with {{.DoctorName}} on {{.Date}} from {{.StartTime}} to {{.EndTime}} is confirmed.\n"),
	model.EventAppointmentCancelled: newTemplate("cancelled",
		"Appointment cancelled ({{.ReferenceCode}})",
		"Dear {{.PatientName}},\n\nYour appointment on {{.Date}} at {{.StartTime}} has been cancelled.{{if .Reason}}\nReason: {{.Reason}}{{end}}\n"+
			"Please contact the clinic to book a new time.\n"),
}

// Service turns appointment events into patient emails.
type Service struct {
	email email.Service
	log   *logger.Logger
}

func NewService(emailSvc email.Service, log *logger.Logger) *Service {
	return &Service{email: emailSvc, log: log}
}

// Handle sends the email for one broker message. Event types without a
// template are ignored.
func (s *Service) Handle(ctx context.Context, msg messaging.Message) error {
	tmpl, ok := templates[msg.Type]
	if !ok {
		return nil
	}

	var event model.AppointmentEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", msg.Type, err)
	}
	if event.PatientEmail == "" {
		s.log.Debug("skipping notification without recipient", "event_id", msg.ID.String())
		return nil
	}

	subject, err := render(tmpl.subject, event)
	if err != nil {
		return err
	}
	body, err := render(tmpl.body, event)
	if err != nil {
		return err
	}

	if err := s.email.Send(ctx, event.PatientEmail, subject, body); err != nil {
		return fmt.Errorf("failed to notify patient: %w", err)
	}
	s.log.Info("patient notified", "event_id", msg.ID.String(), "event_type", msg.Type)
	return nil
}

// Run consumes channel until ctx is done or the subscription ends. Failures
// are logged per message; delivery is at most once.
func (s *Service) Run(ctx context.Context, broker messaging.Broker, channel string) error {
	msgs, err := broker.Subscribe(ctx, channel)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	for raw := range msgs {
		msg, err := messaging.Decode(raw)
		if err != nil {
			s.log.Error(err, "dropping malformed message")
			continue
		}
		if err := s.Handle(ctx, msg); err != nil {
			s.log.Error(err, "notification failed", "event_id", msg.ID.String(), "event_type", msg.Type)
		}
	}
	return ctx.Err()
}

func render(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}
