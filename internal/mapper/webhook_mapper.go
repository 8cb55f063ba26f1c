package mapper

import (
	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/model"

	"gorm.io/datatypes"
)

type WebhookEventMapper struct{}

func NewWebhookEventMapper() *WebhookEventMapper {
	return &WebhookEventMapper{}
}

func (m *WebhookEventMapper) ToEntity(e *model.WebhookEvent) *entity.WebhookEvent {
	if e == nil {
		return nil
	}
	return &entity.WebhookEvent{
		Id:              e.Id,
		EventType:       e.EventType,
		ProviderEventId: e.ProviderEventId,
		Payload:         map[string]interface{}(e.Payload),
		Processed:       e.Processed,
		ProcessedAt:     e.ProcessedAt,
		CreatedAt:       e.CreatedAt,
	}
}

func (m *WebhookEventMapper) ToModel(e *entity.WebhookEvent) *model.WebhookEvent {
	if e == nil {
		return nil
	}
	return &model.WebhookEvent{
		Id:              e.Id,
		EventType:       e.EventType,
		ProviderEventId: e.ProviderEventId,
		Payload:         datatypes.JSONMap(e.Payload),
		Processed:       e.Processed,
		ProcessedAt:     e.ProcessedAt,
		CreatedAt:       e.CreatedAt,
	}
}
