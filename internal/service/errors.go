package service

import "errors"

// Sentinel errors the controllers translate into HTTP status codes.
var (
	// ErrInvalidSignature rejects a webhook before its payload is parsed.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrMalformedPayload covers unparsable bodies and missing required fields.
	ErrMalformedPayload = errors.New("malformed webhook payload")

	// ErrInvalidLicenseFormat is a format rejection, decided without any
	// store access. Distinguished from not-found for client-side messaging.
	ErrInvalidLicenseFormat = errors.New("invalid license key format")
	ErrLicenseNotFound      = errors.New("license key not found")

	ErrUserNotFound         = errors.New("user not found")
	ErrUnknownPlan          = errors.New("unknown plan")
	ErrNoActiveSubscription = errors.New("no active subscription found")
)
