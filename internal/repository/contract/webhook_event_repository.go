package contract

import (
	"context"

	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/repository/specification"
)

type WebhookEventRepository interface {
	// Insert appends the event to the log. Returns false when an event with
	// the same provider event id already exists (redelivery).
	Insert(ctx context.Context, event *entity.WebhookEvent) (bool, error)
	MarkProcessed(ctx context.Context, event *entity.WebhookEvent) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WebhookEvent, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WebhookEvent, error)
}
