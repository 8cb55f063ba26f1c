package service

import (
	"context"
	"time"

	"calext-licensing-be/internal/dto"
	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/repository/specification"
	"calext-licensing-be/internal/repository/unitofwork"
	"calext-licensing-be/pkg/license"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Feature sets are fixed enumerations keyed by the entitlement decision.
// Deriving them from stored data would allow privilege drift.
var (
	freeFeatures = []string{
		"basic_calendar",
		"basic_colors",
	}
	premiumFeatures = []string{
		"basic_calendar",
		"basic_colors",
		"advanced_colors",
		"custom_themes",
		"event_templates",
		"sync_settings",
		"priority_support",
	}
)

type ILicenseService interface {
	Verify(ctx context.Context, licenseKey string) (*dto.LicenseVerifyResponse, error)
	GetInfo(ctx context.Context, userId uuid.UUID) (*dto.LicenseInfoResponse, error)
}

type licenseService struct {
	uowFactory  unitofwork.RepositoryFactory
	verifyCache *cache.Cache
	graceDays   int
}

// NewLicenseService builds the read-only verifier. graceDays is the window
// after a failed payment during which past_due still holds entitlement.
func NewLicenseService(uowFactory unitofwork.RepositoryFactory, verifyCache *cache.Cache, graceDays int) ILicenseService {
	return &licenseService{
		uowFactory:  uowFactory,
		verifyCache: verifyCache,
		graceDays:   graceDays,
	}
}

// Verify is the hot path called by every installed extension instance. It is
// read-only and tolerates racing webhook updates; the cache keeps stale
// entitlement for at most its TTL, which the webhook processor also cuts
// short by invalidating on write.
func (s *licenseService) Verify(ctx context.Context, licenseKey string) (*dto.LicenseVerifyResponse, error) {
	key := license.Normalize(licenseKey)
	if !license.ValidateFormat(key) {
		return nil, ErrInvalidLicenseFormat
	}

	if s.verifyCache != nil {
		if cached, found := s.verifyCache.Get(key); found {
			return cached.(*dto.LicenseVerifyResponse), nil
		}
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	sub, err := uow.SubscriptionRepository().FindOne(ctx, specification.ByLicenseKey{Key: key})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, ErrLicenseNotFound
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: sub.UserId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrLicenseNotFound
	}

	now := time.Now()
	entitled := s.entitled(sub, user, now)

	status := string(sub.Status)
	if entitled && sub.Status != entity.SubscriptionStatusActive && user.InTrial(now) {
		status = "trialing"
	}

	res := &dto.LicenseVerifyResponse{
		Valid:              entitled,
		UserId:             user.Id,
		Email:              user.Email,
		SubscriptionStatus: status,
		TrialEndsAt:        user.TrialEndsAt,
		Subscription: &dto.LicenseSubscriptionInfo{
			Status:          string(sub.Status),
			NextPaymentDate: sub.NextBilledAt,
			PlanId:          sub.PlanId,
		},
		Features: featuresFor(entitled),
	}

	if s.verifyCache != nil {
		s.verifyCache.Set(key, res, cache.DefaultExpiration)
	}
	return res, nil
}

func (s *licenseService) GetInfo(ctx context.Context, userId uuid.UUID) (*dto.LicenseInfoResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	sub, err := currentSubscription(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	res := &dto.LicenseInfoResponse{
		Email:              user.Email,
		SubscriptionStatus: "free",
		TrialEndsAt:        user.TrialEndsAt,
	}
	if sub != nil {
		res.LicenseKey = sub.LicenseKey
		res.SubscriptionStatus = string(sub.Status)
	}
	return res, nil
}

// entitled decides whether the subscription currently grants the premium
// feature set: active always, past_due inside the grace window, or a still
// valid trial.
func (s *licenseService) entitled(sub *entity.Subscription, user *entity.User, now time.Time) bool {
	switch sub.Status {
	case entity.SubscriptionStatusActive:
		return true
	case entity.SubscriptionStatusPastDue:
		if sub.PastDueAt != nil && now.Before(sub.PastDueAt.AddDate(0, 0, s.graceDays)) {
			return true
		}
	}
	return user.InTrial(now)
}

func featuresFor(entitled bool) []string {
	src := freeFeatures
	if entitled {
		src = premiumFeatures
	}
	return append([]string(nil), src...)
}

// currentSubscription picks the subscription that speaks for the user: the
// most recent non-canceled one, else the most recent overall (the canceled
// record still owns the license key).
func currentSubscription(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID) (*entity.Subscription, error) {
	subs, err := uow.SubscriptionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}
	for _, sub := range subs {
		if sub.Status != entity.SubscriptionStatusCanceled {
			return sub, nil
		}
	}
	return subs[0], nil
}
