package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateAttemptRequest struct {
	PlanId            string  `json:"planId" validate:"required"`
	PlanName          string  `json:"planName"`
	Amount            float64 `json:"amount"`
	Currency          string  `json:"currency"`
	Email             string  `json:"email" validate:"omitempty,email"`
	TermsAccepted     bool    `json:"termsAccepted" validate:"required"`
	PrivacyAccepted   bool    `json:"privacyAccepted" validate:"required"`
	MarketingAccepted bool    `json:"marketingAccepted"`
}

type CreateAttemptResponse struct {
	PaymentAttemptId uuid.UUID `json:"paymentAttemptId"`
	CheckoutUrl      string    `json:"checkoutUrl"`
}

type SubscriptionStatusResponse struct {
	SubscriptionId     uuid.UUID           `json:"subscriptionId"`
	Status             string              `json:"status"`
	PlanId             string              `json:"planId"`
	PlanName           string              `json:"planName"`
	BillingCycle       string              `json:"billingCycle"`
	LicenseKey         string              `json:"licenseKey"`
	NextBilledAt       *time.Time          `json:"nextBilledAt"`
	LastPaymentAt      *time.Time          `json:"lastPaymentAt"`
	CanceledAt         *time.Time          `json:"canceledAt"`
	IsActive           bool                `json:"isActive"`
	LastPaymentAttempt *PaymentAttemptInfo `json:"lastPaymentAttempt,omitempty"`
}

type PaymentAttemptInfo struct {
	Id           uuid.UUID  `json:"id"`
	Status       string     `json:"status"`
	PlanId       string     `json:"planId"`
	ErrorMessage *string    `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}
