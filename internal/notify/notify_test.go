package notify_test

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"fintrack/internal/notify"
	"fintrack/pkg/rabbitmq"

	amqp "github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingPublisher struct {
	mu     sync.Mutex
	bodies [][]byte
	err    error
}

func (p *recordingPublisher) Publish(body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bodies = append(p.bodies, body)
	return p.err
}

var links = notify.Links{
	VerificationURL:  "http://localhost:8080/api/v1/auth/verify",
	EmailChangeURL:   "http://localhost:8080/api/v1/auth/change-email",
	ResetPasswordURL: "http://localhost:4200/reset-password",
}

func TestQueueDispatcher_PublishesMessages(t *testing.T) {
	pub := &recordingPublisher{}
	d := notify.NewQueueDispatcher(pub, links, zap.NewNop())

	d.SendVerifyEmail("john-doe-1", "john@example.com", "abc")
	d.SendChangeEmail("john-doe-1", "old@example.com", "def")
	d.SendResetPassword("john-doe-1", "john@example.com", "ghi")
	d.SendPasswordChangedInfo("john-doe-1", "john@example.com")
	d.Wait()

	require.Len(t, pub.bodies, 4)
	got := map[notify.Kind]notify.Message{}
	for _, body := range pub.bodies {
		var msg notify.Message
		require.NoError(t, json.Unmarshal(body, &msg))
		got[msg.Kind] = msg
	}

	assert.Equal(t, "http://localhost:8080/api/v1/auth/verify?token=abc", got[notify.KindVerifyEmail].Link)
	assert.Equal(t, "old@example.com", got[notify.KindChangeEmail].Email)
	assert.Equal(t, "http://localhost:8080/api/v1/auth/change-email?token=def", got[notify.KindChangeEmail].Link)
	assert.Equal(t, "http://localhost:4200/reset-password?token=ghi", got[notify.KindResetPassword].Link)
	assert.Empty(t, got[notify.KindPasswordChanged].Link)
}

func TestQueueDispatcher_LogsFailures(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	pub := &recordingPublisher{err: errors.New("broker down")}
	d := notify.NewQueueDispatcher(pub, links, zap.New(core))

	d.SendPasswordChangedInfo("john-doe-1", "john@example.com")
	d.Wait()

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed to dispatch notification", logs.All()[0].Message)
}

func TestLogDispatcher(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	d := notify.NewLogDispatcher(links, zap.New(core))

	d.SendResetPassword("john-doe-1", "john@example.com", "xyz")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, string(notify.KindResetPassword), fields["kind"])
	assert.Equal(t, "http://localhost:4200/reset-password?token=xyz", fields["link"])
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(to, subject, body string) error {
	args := m.Called(to, subject, body)
	return args.Error(0)
}

func TestWorker_HandleDelivery(t *testing.T) {
	mailer := new(MockMailer)
	w := notify.NewWorker(mailer, "Expense Tracker", zap.NewNop())

	mailer.On("Send", "john@example.com", "Confirm your email address",
		mock.MatchedBy(func(body string) bool {
			return assert.Contains(t, body, "http://x/verify?token=abc") && assert.Contains(t, body, "Expense Tracker")
		})).Return(nil).Once()

	body, err := json.Marshal(notify.Message{
		Kind: notify.KindVerifyEmail, Name: "john-doe-1", Email: "john@example.com", Link: "http://x/verify?token=abc",
	})
	require.NoError(t, err)

	assert.NoError(t, w.HandleDelivery(amqp.Delivery{Body: body}))
	mailer.AssertExpectations(t)
}

func TestWorker_RejectsMalformedMessages(t *testing.T) {
	mailer := new(MockMailer)
	w := notify.NewWorker(mailer, "Expense Tracker", zap.NewNop())

	err := w.HandleDelivery(amqp.Delivery{Body: []byte("{not json")})
	assert.ErrorIs(t, err, rabbitmq.ErrReject)

	err = w.Handle(notify.Message{Kind: "UNKNOWN", Email: "john@example.com"})
	assert.ErrorIs(t, err, rabbitmq.ErrReject)

	err = w.Handle(notify.Message{Kind: notify.KindPasswordChanged})
	assert.ErrorIs(t, err, rabbitmq.ErrReject)

	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorker_MailerFailureIsRetryable(t *testing.T) {
	mailer := new(MockMailer)
	w := notify.NewWorker(mailer, "Expense Tracker", zap.NewNop())
	mailer.On("Send", "john@example.com", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

	err := w.Handle(notify.Message{Kind: notify.KindPasswordChanged, Name: "john-doe-1", Email: "john@example.com"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, rabbitmq.ErrReject))
}
