package specification

import "gorm.io/gorm"

// ByLicenseKey filters subscriptions by their license key.
// Keys are normalized (uppercase) at generation time, so lookup is exact.
type ByLicenseKey struct {
	Key string
}

func (s ByLicenseKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("license_key = ?", s.Key)
}

// ByPaddleSubscriptionID filters by the external provider subscription id.
type ByPaddleSubscriptionID struct {
	SubscriptionID string
}

func (s ByPaddleSubscriptionID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("paddle_subscription_id = ?", s.SubscriptionID)
}

// ByProviderEventID filters webhook events by the external event id.
type ByProviderEventID struct {
	EventID string
}

func (s ByProviderEventID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("provider_event_id = ?", s.EventID)
}

// ByEmail filters users by email.
type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

// ByStatus filters by a status column.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
