package contract

import (
	"context"

	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/repository/specification"
)

type PaymentAttemptRepository interface {
	Create(ctx context.Context, attempt *entity.PaymentAttempt) error
	Update(ctx context.Context, attempt *entity.PaymentAttempt) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PaymentAttempt, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentAttempt, error)
}
