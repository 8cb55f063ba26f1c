package unitofwork

import (
	"context"

	"calext-licensing-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	SubscriptionRepository() contract.SubscriptionRepository
	PaymentAttemptRepository() contract.PaymentAttemptRepository
	WebhookEventRepository() contract.WebhookEventRepository
}
