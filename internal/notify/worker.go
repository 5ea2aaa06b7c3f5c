package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"text/template"

	"fintrack/pkg/rabbitmq"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Mailer delivers a rendered email.
type Mailer interface {
	Send(to, subject, body string) error
}

type mailTemplate struct {
	subject string
	body    *template.Template
}

var templates = map[Kind]mailTemplate{
	KindVerifyEmail: {
		subject: "Confirm your email address",
		body: template.Must(template.New("verify").Parse(
			"Hello {{.Name}},\n\nWelcome to {{.Project}}. Confirm your email address by following this link:\n{{.Link}}\n")),
	},
	KindChangeEmail: {
		subject: "Confirm your new email address",
		body: template.Must(template.New("change").Parse(
			"Hello {{.Name}},\n\nA change of the email address of your {{.Project}} account was requested. Follow this link to confirm it:\n{{.Link}}\n\nIgnore this message if you did not ask for it.\n")),
	},
	KindResetPassword: {
		subject: "Reset your password",
		body: template.Must(template.New("reset").Parse(
			"Hello {{.Name}},\n\nFollow this link to choose a new {{.Project}} password:\n{{.Link}}\n\nIgnore this message if you did not ask for it.\n")),
	},
	KindPasswordChanged: {
		subject: "Your password was changed",
		body: template.Must(template.New("changed").Parse(
			"Hello {{.Name}},\n\nThe password of your {{.Project}} account was just changed.\n")),
	},
}

// Worker renders queued messages and hands them to a Mailer.
type Worker struct {
	mailer  Mailer
	project string
	log     *zap.Logger
}

// NewWorker creates a new Worker.
func NewWorker(mailer Mailer, project string, log *zap.Logger) *Worker {
	return &Worker{mailer: mailer, project: project, log: log}
}

// HandleDelivery processes one delivery of the mail queue. Messages that can
// never be delivered are rejected rather than requeued.
func (w *Worker) HandleDelivery(d amqp.Delivery) error {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		return fmt.Errorf("%w: malformed message: %v", rabbitmq.ErrReject, err)
	}
	return w.Handle(msg)
}

// Handle renders msg and sends it.
func (w *Worker) Handle(msg Message) error {
	tmpl, ok := templates[msg.Kind]
	if !ok {
		return fmt.Errorf("%w: unknown message kind %q", rabbitmq.ErrReject, msg.Kind)
	}
	if msg.Email == "" {
		return fmt.Errorf("%w: message without recipient", rabbitmq.ErrReject)
	}

	var body bytes.Buffer
	data := struct {
		Message
		Project string
	}{Message: msg, Project: w.project}
	if err := tmpl.body.Execute(&body, data); err != nil {
		return fmt.Errorf("%w: failed to render %s: %v", rabbitmq.ErrReject, msg.Kind, err)
	}

	if err := w.mailer.Send(msg.Email, tmpl.subject, body.String()); err != nil {
		return err
	}
	w.log.Info("mail sent", zap.String("kind", string(msg.Kind)))
	return nil
}
