package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"calext-licensing-be/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingMailer struct {
	captureMailer
}

func (m *failingMailer) SendPaymentFailed(toEmail, planName string) error {
	return errors.New("smtp unreachable")
}

func newDunningConsumer(mail *captureMailer) *consumerService {
	return &consumerService{
		subscriber:   nil,
		emailService: mail,
		logger:       nopLogger{},
	}
}

func paymentFailedEvent(payload map[string]interface{}) events.Event {
	return events.BaseEvent{
		Type:       paymentFailedSubject,
		Data:       payload,
		OccurredAt: time.Now(),
	}
}

func TestConsumeWithoutSubscriberIsNoop(t *testing.T) {
	cs := NewConsumerService(nil, &captureMailer{}, nopLogger{})
	assert.NoError(t, cs.Consume(context.Background()))
}

func TestPaymentFailedEventSendsNotice(t *testing.T) {
	mail := &captureMailer{}
	cs := newDunningConsumer(mail)

	err := cs.handlePaymentFailed(context.Background(), paymentFailedEvent(map[string]interface{}{
		"email":     "jane@example.com",
		"plan_name": "CalExt Premium Monthly",
		"user_id":   "b7a0a7b2-6f0f-4f5e-9a27-0f2f0b9b7e10",
	}))

	require.NoError(t, err)
	require.Equal(t, 1, mail.count())
	assert.Equal(t, "jane@example.com", mail.sent[0])
}

func TestPaymentFailedEventWithoutEmailAcked(t *testing.T) {
	mail := &captureMailer{}
	cs := newDunningConsumer(mail)

	err := cs.handlePaymentFailed(context.Background(), paymentFailedEvent(map[string]interface{}{
		"user_id": "b7a0a7b2-6f0f-4f5e-9a27-0f2f0b9b7e10",
	}))

	// No address means no retry either.
	require.NoError(t, err)
	assert.Zero(t, mail.count())
}

func TestPaymentFailedEventMailerErrorRetried(t *testing.T) {
	mail := &failingMailer{}
	cs := &consumerService{emailService: mail, logger: nopLogger{}}

	err := cs.handlePaymentFailed(context.Background(), paymentFailedEvent(map[string]interface{}{
		"email": "jane@example.com",
	}))

	assert.Error(t, err)
}
