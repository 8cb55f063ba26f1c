package service

import (
	"context"
	"fmt"

	"calext-licensing-be/internal/pkg/logger"
	"calext-licensing-be/internal/pkg/mailer"
	"calext-licensing-be/pkg/events"
	pktNats "calext-licensing-be/pkg/nats"
)

const moduleConsumer = "consumer"

// The dunning mailer runs off the billing bus rather than inline in webhook
// processing, so a slow SMTP server never delays the provider response.
const (
	paymentFailedSubject = "billing.PAYMENT_FAILED"
	dunningDurableName   = "billing-dunning-mailer"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber   *pktNats.Subscriber
	emailService mailer.IEmailService
	logger       logger.ILogger
}

func NewConsumerService(
	subscriber *pktNats.Subscriber,
	emailService mailer.IEmailService,
	logger logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber:   subscriber,
		emailService: emailService,
		logger:       logger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	if cs.subscriber == nil {
		cs.logger.Warn(moduleConsumer, "NATS subscriber unavailable, dunning mailer disabled", nil)
		return nil
	}

	return cs.subscriber.Subscribe(paymentFailedSubject, dunningDurableName, cs.handlePaymentFailed)
}

func (cs *consumerService) handlePaymentFailed(ctx context.Context, event events.Event) error {
	payload := event.Payload()

	email, _ := payload["email"].(string)
	if email == "" {
		// Nothing to send to. Ack rather than retry forever.
		cs.logger.Warn(moduleConsumer, "payment failure event without email, skipping notice", map[string]interface{}{
			"user_id": payload["user_id"],
		})
		return nil
	}

	planName, _ := payload["plan_name"].(string)
	if planName == "" {
		planName = "CalExt Premium"
	}

	if err := cs.emailService.SendPaymentFailed(email, planName); err != nil {
		cs.logger.Error(moduleConsumer, "failed to send payment failure notice", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return fmt.Errorf("send payment failure notice: %w", err)
	}

	cs.logger.Info(moduleConsumer, "payment failure notice sent", map[string]interface{}{
		"email": email,
	})
	return nil
}
