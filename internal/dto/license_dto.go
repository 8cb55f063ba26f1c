package dto

import (
	"time"

	"github.com/google/uuid"
)

type LicenseVerifyRequest struct {
	LicenseKey string `json:"licenseKey" validate:"required"`
}

type LicenseSubscriptionInfo struct {
	Status          string     `json:"status"`
	NextPaymentDate *time.Time `json:"nextPaymentDate"`
	PlanId          string     `json:"planId"`
}

// LicenseVerifyResponse is the contract with the extension client. Features
// is always a fixed enumeration derived from the entitlement decision, never
// read from stored data.
type LicenseVerifyResponse struct {
	Valid              bool                     `json:"valid"`
	UserId             uuid.UUID                `json:"userId"`
	Email              string                   `json:"email"`
	SubscriptionStatus string                   `json:"subscriptionStatus"`
	TrialEndsAt        *time.Time               `json:"trialEndsAt"`
	Subscription       *LicenseSubscriptionInfo `json:"subscription"`
	Features           []string                 `json:"features"`
}

type LicenseInfoResponse struct {
	LicenseKey         string     `json:"licenseKey"`
	Email              string     `json:"email"`
	SubscriptionStatus string     `json:"subscriptionStatus"`
	TrialEndsAt        *time.Time `json:"trialEndsAt"`
}
