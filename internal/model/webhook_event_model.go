package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type WebhookEvent struct {
	Id              uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventType       string            `gorm:"type:varchar(100);not null;index"`
	ProviderEventId string            `gorm:"type:varchar(255);uniqueIndex;not null"`
	Payload         datatypes.JSONMap `gorm:"type:jsonb"`
	Processed       bool              `gorm:"default:false"`
	ProcessedAt     *time.Time        ``
	CreatedAt       time.Time         `gorm:"autoCreateTime"`
}

func (WebhookEvent) TableName() string {
	return "webhook_events"
}
