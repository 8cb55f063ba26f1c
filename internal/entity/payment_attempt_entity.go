package entity

import (
	"time"

	"github.com/google/uuid"
)

type PaymentAttemptStatus string

const (
	PaymentAttemptInitiated PaymentAttemptStatus = "initiated"
	PaymentAttemptCompleted PaymentAttemptStatus = "completed"
	PaymentAttemptFailed    PaymentAttemptStatus = "failed"
	PaymentAttemptAbandoned PaymentAttemptStatus = "abandoned"
)

// PaymentAttempt tracks a single checkout initiation, independent of the
// subscription lifecycle. It is resolved by the first matching
// payment succeeded/failed webhook for the same user.
type PaymentAttempt struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Email        string
	PlanId       string
	PlanName     string
	Amount       float64
	Currency     string
	Status       PaymentAttemptStatus
	ErrorMessage *string
	CompletedAt  *time.Time
	CreatedAt    time.Time
}
