package implementation

import (
	"context"
	"errors"
	"time"

	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/mapper"
	"calext-licensing-be/internal/model"
	"calext-licensing-be/internal/repository/contract"
	"calext-licensing-be/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WebhookEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WebhookEventMapper
}

func NewWebhookEventRepository(db *gorm.DB) contract.WebhookEventRepository {
	return &WebhookEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewWebhookEventMapper(),
	}
}

func (r *WebhookEventRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *WebhookEventRepositoryImpl) Insert(ctx context.Context, event *entity.WebhookEvent) (bool, error) {
	m := r.mapper.ToModel(event)
	// ON CONFLICT DO NOTHING on provider_event_id: a redelivered event inserts
	// zero rows, which is the duplicate signal the processor relies on.
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider_event_id"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	*event = *r.mapper.ToEntity(m)
	return true, nil
}

func (r *WebhookEventRepositoryImpl) MarkProcessed(ctx context.Context, event *entity.WebhookEvent) error {
	now := time.Now()
	err := r.db.WithContext(ctx).Model(&model.WebhookEvent{}).
		Where("provider_event_id = ?", event.ProviderEventId).
		Updates(map[string]interface{}{"processed": true, "processed_at": now}).Error
	if err != nil {
		return err
	}
	event.Processed = true
	event.ProcessedAt = &now
	return nil
}

func (r *WebhookEventRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.WebhookEvent, error) {
	var m model.WebhookEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *WebhookEventRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.WebhookEvent, error) {
	var models []*model.WebhookEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.WebhookEvent, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
