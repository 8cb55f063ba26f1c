package service

import (
	"context"
	"testing"
	"time"

	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/repository/memory"
	"calext-licensing-be/internal/repository/unitofwork"
	"calext-licensing-be/pkg/license"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type licenseFixture struct {
	factory unitofwork.RepositoryFactory
	cache   *cache.Cache
	service ILicenseService
}

func newLicenseFixture(t *testing.T) *licenseFixture {
	t.Helper()
	factory := memory.NewFactory(memory.NewStore())
	verifyCache := cache.New(5*time.Minute, 10*time.Minute)
	return &licenseFixture{
		factory: factory,
		cache:   verifyCache,
		service: NewLicenseService(factory, verifyCache, 7),
	}
}

type seedOpts struct {
	status      entity.SubscriptionStatus
	pastDueAt   *time.Time
	trialEndsAt *time.Time
}

func (f *licenseFixture) seed(t *testing.T, opts seedOpts) (*entity.User, *entity.Subscription) {
	t.Helper()
	ctx := context.Background()
	uow := f.factory.NewUnitOfWork(ctx)

	user := &entity.User{
		Id:          uuid.New(),
		Email:       "alice@example.com",
		TrialEndsAt: opts.trialEndsAt,
	}
	require.NoError(t, uow.UserRepository().Create(ctx, user))

	extID := "sub-100"
	sub := &entity.Subscription{
		Id:                   uuid.New(),
		UserId:               user.Id,
		PaddleSubscriptionId: &extID,
		PlanId:               "plan-monthly",
		PlanName:             "CalExt Premium",
		BillingCycle:         entity.BillingCycleMonthly,
		Status:               opts.status,
		LicenseKey:           license.Generate(),
		StartedAt:            time.Now(),
		PastDueAt:            opts.pastDueAt,
	}
	require.NoError(t, uow.SubscriptionRepository().Create(ctx, sub))
	return user, sub
}

func TestVerifyRejectsMalformedKey(t *testing.T) {
	f := newLicenseFixture(t)

	for _, key := range []string{
		"",
		"not-a-key",
		"1234-5678-9ABC",
		"GGGG-1111-2222-3333",
		"12345-678-9ABC-DEF0",
	} {
		_, err := f.service.Verify(context.Background(), key)
		assert.ErrorIs(t, err, ErrInvalidLicenseFormat, "key %q", key)
	}
}

func TestVerifyNormalizesBeforeLookup(t *testing.T) {
	f := newLicenseFixture(t)
	_, sub := f.seed(t, seedOpts{status: entity.SubscriptionStatusActive})

	lower := "  " + sub.LicenseKey + "  "
	res, err := f.service.Verify(context.Background(), lower)
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestVerifyUnknownKey(t *testing.T) {
	f := newLicenseFixture(t)

	_, err := f.service.Verify(context.Background(), "1234-5678-9ABC-DEF0")
	assert.ErrorIs(t, err, ErrLicenseNotFound)
}

func TestVerifyEntitlementByStatus(t *testing.T) {
	recent := time.Now().Add(-24 * time.Hour)
	expired := time.Now().Add(-30 * 24 * time.Hour)

	tests := []struct {
		name      string
		opts      seedOpts
		wantValid bool
	}{
		{"active", seedOpts{status: entity.SubscriptionStatusActive}, true},
		{"past_due inside grace", seedOpts{status: entity.SubscriptionStatusPastDue, pastDueAt: &recent}, true},
		{"past_due beyond grace", seedOpts{status: entity.SubscriptionStatusPastDue, pastDueAt: &expired}, false},
		{"past_due without anchor", seedOpts{status: entity.SubscriptionStatusPastDue}, false},
		{"canceled", seedOpts{status: entity.SubscriptionStatusCanceled}, false},
		{"pending", seedOpts{status: entity.SubscriptionStatusPending}, false},
		{"expired", seedOpts{status: entity.SubscriptionStatusExpired}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newLicenseFixture(t)
			_, sub := f.seed(t, tt.opts)

			res, err := f.service.Verify(context.Background(), sub.LicenseKey)
			require.NoError(t, err)
			assert.Equal(t, tt.wantValid, res.Valid)
			if tt.wantValid {
				assert.Contains(t, res.Features, "priority_support")
			} else {
				assert.Equal(t, []string{"basic_calendar", "basic_colors"}, res.Features)
			}
		})
	}
}

func TestVerifyTrialGrantsEntitlement(t *testing.T) {
	trialEnd := time.Now().Add(5 * 24 * time.Hour)
	f := newLicenseFixture(t)
	_, sub := f.seed(t, seedOpts{status: entity.SubscriptionStatusPending, trialEndsAt: &trialEnd})

	res, err := f.service.Verify(context.Background(), sub.LicenseKey)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, "trialing", res.SubscriptionStatus)
	require.NotNil(t, res.TrialEndsAt)
}

func TestVerifyExpiredTrial(t *testing.T) {
	trialEnd := time.Now().Add(-24 * time.Hour)
	f := newLicenseFixture(t)
	_, sub := f.seed(t, seedOpts{status: entity.SubscriptionStatusPending, trialEndsAt: &trialEnd})

	res, err := f.service.Verify(context.Background(), sub.LicenseKey)
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestVerifyServesFromCache(t *testing.T) {
	f := newLicenseFixture(t)
	_, sub := f.seed(t, seedOpts{status: entity.SubscriptionStatusActive})

	res, err := f.service.Verify(context.Background(), sub.LicenseKey)
	require.NoError(t, err)
	require.True(t, res.Valid)

	// Flip the stored status behind the cache's back. Until invalidation
	// or TTL expiry, the stale verdict is served.
	ctx := context.Background()
	uow := f.factory.NewUnitOfWork(ctx)
	sub.Status = entity.SubscriptionStatusCanceled
	require.NoError(t, uow.SubscriptionRepository().Update(ctx, sub))

	res, err = f.service.Verify(ctx, sub.LicenseKey)
	require.NoError(t, err)
	assert.True(t, res.Valid, "cached verdict survives until invalidated")

	f.cache.Delete(sub.LicenseKey)
	res, err = f.service.Verify(ctx, sub.LicenseKey)
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

func TestGetInfo(t *testing.T) {
	f := newLicenseFixture(t)
	user, sub := f.seed(t, seedOpts{status: entity.SubscriptionStatusActive})

	res, err := f.service.GetInfo(context.Background(), user.Id)
	require.NoError(t, err)
	assert.Equal(t, sub.LicenseKey, res.LicenseKey)
	assert.Equal(t, "active", res.SubscriptionStatus)
	assert.Equal(t, user.Email, res.Email)
}

func TestGetInfoUnknownUser(t *testing.T) {
	f := newLicenseFixture(t)

	_, err := f.service.GetInfo(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrUserNotFound)
}
