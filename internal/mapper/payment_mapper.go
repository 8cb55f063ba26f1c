package mapper

import (
	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/model"
)

type PaymentAttemptMapper struct{}

func NewPaymentAttemptMapper() *PaymentAttemptMapper {
	return &PaymentAttemptMapper{}
}

func (m *PaymentAttemptMapper) ToEntity(p *model.PaymentAttempt) *entity.PaymentAttempt {
	if p == nil {
		return nil
	}
	return &entity.PaymentAttempt{
		Id:           p.Id,
		UserId:       p.UserId,
		Email:        p.Email,
		PlanId:       p.PlanId,
		PlanName:     p.PlanName,
		Amount:       p.Amount,
		Currency:     p.Currency,
		Status:       entity.PaymentAttemptStatus(p.Status),
		ErrorMessage: p.ErrorMessage,
		CompletedAt:  p.CompletedAt,
		CreatedAt:    p.CreatedAt,
	}
}

func (m *PaymentAttemptMapper) ToModel(p *entity.PaymentAttempt) *model.PaymentAttempt {
	if p == nil {
		return nil
	}
	return &model.PaymentAttempt{
		Id:           p.Id,
		UserId:       p.UserId,
		Email:        p.Email,
		PlanId:       p.PlanId,
		PlanName:     p.PlanName,
		Amount:       p.Amount,
		Currency:     p.Currency,
		Status:       string(p.Status),
		ErrorMessage: p.ErrorMessage,
		CompletedAt:  p.CompletedAt,
		CreatedAt:    p.CreatedAt,
	}
}
