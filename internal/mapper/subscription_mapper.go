package mapper

import (
	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/model"

	"gorm.io/datatypes"
)

type SubscriptionMapper struct{}

func NewSubscriptionMapper() *SubscriptionMapper {
	return &SubscriptionMapper{}
}

func (m *SubscriptionMapper) ToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	return &entity.Subscription{
		Id:                   s.Id,
		UserId:               s.UserId,
		PaddleSubscriptionId: s.PaddleSubscriptionId,
		PlanId:               s.PlanId,
		PlanName:             s.PlanName,
		BillingCycle:         entity.BillingCycle(s.BillingCycle),
		UnitPrice:            s.UnitPrice,
		Currency:             s.Currency,
		Quantity:             s.Quantity,
		Status:               entity.SubscriptionStatus(s.Status),
		LicenseKey:           s.LicenseKey,
		StartedAt:            s.StartedAt,
		NextBilledAt:         s.NextBilledAt,
		LastPaymentAt:        s.LastPaymentAt,
		CanceledAt:           s.CanceledAt,
		PastDueAt:            s.PastDueAt,
		PaddleData:           map[string]interface{}(s.PaddleData),
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}

func (m *SubscriptionMapper) ToModel(s *entity.Subscription) *model.Subscription {
	if s == nil {
		return nil
	}
	return &model.Subscription{
		Id:                   s.Id,
		UserId:               s.UserId,
		PaddleSubscriptionId: s.PaddleSubscriptionId,
		PlanId:               s.PlanId,
		PlanName:             s.PlanName,
		BillingCycle:         string(s.BillingCycle),
		UnitPrice:            s.UnitPrice,
		Currency:             s.Currency,
		Quantity:             s.Quantity,
		Status:               string(s.Status),
		LicenseKey:           s.LicenseKey,
		StartedAt:            s.StartedAt,
		NextBilledAt:         s.NextBilledAt,
		LastPaymentAt:        s.LastPaymentAt,
		CanceledAt:           s.CanceledAt,
		PastDueAt:            s.PastDueAt,
		PaddleData:           datatypes.JSONMap(s.PaddleData),
		CreatedAt:            s.CreatedAt,
		UpdatedAt:            s.UpdatedAt,
	}
}
