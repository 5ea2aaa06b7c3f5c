// Package notify delivers account notifications (verification, email change,
// password reset) without blocking the request that triggered them.
package notify

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sync"

	"go.uber.org/zap"
)

// Kind identifies the template a message is rendered with.
type Kind string

const (
	KindVerifyEmail     Kind = "VERIFY_EMAIL"
	KindChangeEmail     Kind = "CHANGE_EMAIL"
	KindResetPassword   Kind = "RESET_PASSWORD"
	KindPasswordChanged Kind = "PASSWORD_CHANGED"
)

// Message is the payload published to the mail queue.
type Message struct {
	Kind  Kind   `json:"kind"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Link  string `json:"link,omitempty"`
}

// Dispatcher sends account notifications. Delivery failures are never
// reported to the caller.
type Dispatcher interface {
	SendVerifyEmail(name, email, token string)
	SendChangeEmail(name, oldEmail, token string)
	SendResetPassword(name, email, token string)
	SendPasswordChangedInfo(name, email string)
}

// Links holds the base URLs the emailed tokens are appended to.
type Links struct {
	VerificationURL  string
	EmailChangeURL   string
	ResetPasswordURL string
}

func (l Links) build(kind Kind, name, email, token string) Message {
	msg := Message{Kind: kind, Name: name, Email: email}
	switch kind {
	case KindVerifyEmail:
		msg.Link = withToken(l.VerificationURL, token)
	case KindChangeEmail:
		msg.Link = withToken(l.EmailChangeURL, token)
	case KindResetPassword:
		msg.Link = withToken(l.ResetPasswordURL, token)
	}
	return msg
}

func withToken(base, token string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base + "?token=" + url.QueryEscape(token)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

// Publisher puts a serialized message on the mail queue.
type Publisher interface {
	Publish(body []byte) error
}

// QueueDispatcher publishes messages to the mail queue in the background.
type QueueDispatcher struct {
	pub   Publisher
	links Links
	log   *zap.Logger
	wg    sync.WaitGroup
}

// NewQueueDispatcher creates a new QueueDispatcher.
func NewQueueDispatcher(pub Publisher, links Links, log *zap.Logger) *QueueDispatcher {
	return &QueueDispatcher{pub: pub, links: links, log: log}
}

func (d *QueueDispatcher) SendVerifyEmail(name, email, token string) {
	d.dispatch(d.links.build(KindVerifyEmail, name, email, token))
}

func (d *QueueDispatcher) SendChangeEmail(name, oldEmail, token string) {
	d.dispatch(d.links.build(KindChangeEmail, name, oldEmail, token))
}

func (d *QueueDispatcher) SendResetPassword(name, email, token string) {
	d.dispatch(d.links.build(KindResetPassword, name, email, token))
}

func (d *QueueDispatcher) SendPasswordChangedInfo(name, email string) {
	d.dispatch(d.links.build(KindPasswordChanged, name, email, ""))
}

func (d *QueueDispatcher) dispatch(msg Message) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		if err := d.publish(msg); err != nil {
			d.log.Error("failed to dispatch notification",
				zap.String("kind", string(msg.Kind)), zap.Error(err))
		}
	}()
}

func (d *QueueDispatcher) publish(msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	return d.pub.Publish(body)
}

// Wait blocks until every dispatched message has been handed to the publisher.
func (d *QueueDispatcher) Wait() {
	d.wg.Wait()
}

// LogDispatcher only logs notifications. It is used when no broker is configured.
type LogDispatcher struct {
	links Links
	log   *zap.Logger
}

// NewLogDispatcher creates a new LogDispatcher.
func NewLogDispatcher(links Links, log *zap.Logger) *LogDispatcher {
	return &LogDispatcher{links: links, log: log}
}

func (d *LogDispatcher) SendVerifyEmail(name, email, token string) {
	d.write(d.links.build(KindVerifyEmail, name, email, token))
}

func (d *LogDispatcher) SendChangeEmail(name, oldEmail, token string) {
	d.write(d.links.build(KindChangeEmail, name, oldEmail, token))
}

func (d *LogDispatcher) SendResetPassword(name, email, token string) {
	d.write(d.links.build(KindResetPassword, name, email, token))
}

func (d *LogDispatcher) SendPasswordChangedInfo(name, email string) {
	d.write(d.links.build(KindPasswordChanged, name, email, ""))
}

func (d *LogDispatcher) write(msg Message) {
	d.log.Info("notification",
		zap.String("kind", string(msg.Kind)),
		zap.String("name", msg.Name),
		zap.String("email", msg.Email),
		zap.String("link", msg.Link))
}
