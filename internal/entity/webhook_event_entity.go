package entity

import (
	"time"

	"github.com/google/uuid"
)

// WebhookEvent is the append-only log of inbound provider events. The
// provider event id carries a unique index; inserting a duplicate is how
// redelivered events are detected.
type WebhookEvent struct {
	Id              uuid.UUID
	EventType       string
	ProviderEventId string
	Payload         map[string]interface{}
	Processed       bool
	ProcessedAt     *time.Time
	CreatedAt       time.Time
}
