package entity

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionStatus string
type BillingCycle string

const (
	SubscriptionStatusPending  SubscriptionStatus = "pending"
	SubscriptionStatusActive   SubscriptionStatus = "active"
	SubscriptionStatusPastDue  SubscriptionStatus = "past_due"
	SubscriptionStatusCanceled SubscriptionStatus = "canceled"
	SubscriptionStatusExpired  SubscriptionStatus = "expired"

	BillingCycleMonthly BillingCycle = "monthly"
	BillingCycleYearly  BillingCycle = "yearly"
)

// Subscription is the record of truth for entitlement. It is created by the
// first subscription_created webhook for a user and mutated by every later
// event carrying the same provider subscription id. Rows are never hard-deleted;
// canceled is terminal but retained for audit.
type Subscription struct {
	Id                   uuid.UUID
	UserId               uuid.UUID
	PaddleSubscriptionId *string // nil until the first webhook arrives
	PlanId               string
	PlanName             string
	BillingCycle         BillingCycle
	UnitPrice            float64
	Currency             string
	Quantity             int
	Status               SubscriptionStatus
	LicenseKey           string // immutable, globally unique
	StartedAt            time.Time
	NextBilledAt         *time.Time
	LastPaymentAt        *time.Time
	CanceledAt           *time.Time
	PastDueAt            *time.Time // anchor for the past_due grace window
	PaddleData           map[string]interface{}
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// IsTerminal reports whether no further status transition is allowed.
func (s *Subscription) IsTerminal() bool {
	return s.Status == SubscriptionStatusCanceled
}

// AppendAudit stores a raw provider payload under the given key without
// discarding earlier snapshots.
func (s *Subscription) AppendAudit(key string, payload map[string]interface{}) {
	if s.PaddleData == nil {
		s.PaddleData = make(map[string]interface{})
	}
	s.PaddleData[key] = payload
}
