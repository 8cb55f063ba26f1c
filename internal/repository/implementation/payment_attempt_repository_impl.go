package implementation

import (
	"context"
	"errors"

	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/mapper"
	"calext-licensing-be/internal/model"
	"calext-licensing-be/internal/repository/contract"
	"calext-licensing-be/internal/repository/specification"

	"gorm.io/gorm"
)

type PaymentAttemptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PaymentAttemptMapper
}

func NewPaymentAttemptRepository(db *gorm.DB) contract.PaymentAttemptRepository {
	return &PaymentAttemptRepositoryImpl{
		db:     db,
		mapper: mapper.NewPaymentAttemptMapper(),
	}
}

func (r *PaymentAttemptRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PaymentAttemptRepositoryImpl) Create(ctx context.Context, attempt *entity.PaymentAttempt) error {
	m := r.mapper.ToModel(attempt)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*attempt = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaymentAttemptRepositoryImpl) Update(ctx context.Context, attempt *entity.PaymentAttempt) error {
	m := r.mapper.ToModel(attempt)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*attempt = *r.mapper.ToEntity(m)
	return nil
}

func (r *PaymentAttemptRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.PaymentAttempt, error) {
	var m model.PaymentAttempt
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PaymentAttemptRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.PaymentAttempt, error) {
	var models []*model.PaymentAttempt
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.PaymentAttempt, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}
