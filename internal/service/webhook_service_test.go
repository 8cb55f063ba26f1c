package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/repository/memory"
	"calext-licensing-be/internal/repository/specification"
	"calext-licensing-be/internal/repository/unitofwork"
	"calext-licensing-be/pkg/license"
	"calext-licensing-be/pkg/paddle"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type captureMailer struct {
	mu   sync.Mutex
	sent []string
}

func (m *captureMailer) SendLicenseKey(toEmail, licenseKey, planName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, toEmail)
	return nil
}

func (m *captureMailer) SendPaymentFailed(toEmail, planName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, toEmail)
	return nil
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type webhookFixture struct {
	store    *memory.Store
	factory  unitofwork.RepositoryFactory
	provider *paddle.Client
	mailer   *captureMailer
	cache    *cache.Cache
	service  IWebhookService
	licenses ILicenseService
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()

	store := memory.NewStore()
	factory := memory.NewFactory(store)
	provider := paddle.NewClient("12345", "auth-code", "test-webhook-secret", false)
	mail := &captureMailer{}
	verifyCache := cache.New(5*time.Minute, 10*time.Minute)

	return &webhookFixture{
		store:    store,
		factory:  factory,
		provider: provider,
		mailer:   mail,
		cache:    verifyCache,
		service:  NewWebhookService(factory, provider, nopLogger{}, mail, nil, verifyCache),
		licenses: NewLicenseService(factory, verifyCache, 7),
	}
}

func (f *webhookFixture) deliver(t *testing.T, payload map[string]interface{}) error {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return f.service.ProcessRawEvent(context.Background(), body, f.provider.SignWebhookBody(body))
}

func (f *webhookFixture) subscription(t *testing.T, providerSubID string) *entity.Subscription {
	t.Helper()
	uow := f.factory.NewUnitOfWork(context.Background())
	sub, err := uow.SubscriptionRepository().FindOne(context.Background(),
		specification.ByPaddleSubscriptionID{SubscriptionID: providerSubID})
	require.NoError(t, err)
	return sub
}

func createdPayload(alertID, subID, email string) map[string]interface{} {
	return map[string]interface{}{
		"alert_name":           "subscription_created",
		"alert_id":             alertID,
		"subscription_id":      subID,
		"subscription_plan_id": "plan-monthly",
		"user_email":           email,
		"status":               "active",
		"next_bill_date":       "2026-10-01",
		"unit_price":           "4.99",
		"currency":             "USD",
		"passthrough":          `{"planName":"CalExt Premium","billingCycle":"monthly"}`,
	}
}

func TestProcessSubscriptionCreated(t *testing.T) {
	f := newWebhookFixture(t)

	err := f.deliver(t, createdPayload("1001", "sub-100", "alice@example.com"))
	require.NoError(t, err)

	sub := f.subscription(t, "sub-100")
	require.NotNil(t, sub)
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, "CalExt Premium", sub.PlanName)
	assert.Equal(t, entity.BillingCycleMonthly, sub.BillingCycle)
	assert.Equal(t, 4.99, sub.UnitPrice)
	assert.True(t, license.ValidateFormat(sub.LicenseKey), "generated key %q must be well formed", sub.LicenseKey)
	require.NotNil(t, sub.NextBilledAt)

	uow := f.factory.NewUnitOfWork(context.Background())
	user, err := uow.UserRepository().FindOne(context.Background(), specification.ByEmail{Email: "alice@example.com"})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, user.Id, sub.UserId)

	assert.Equal(t, 1, f.mailer.count(), "license key email goes out exactly once")

	res, err := f.licenses.Verify(context.Background(), sub.LicenseKey)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Contains(t, res.Features, "custom_themes")
}

func TestProcessWebhookRejectsBadSignature(t *testing.T) {
	f := newWebhookFixture(t)

	body, err := json.Marshal(createdPayload("1001", "sub-100", "alice@example.com"))
	require.NoError(t, err)

	err = f.service.ProcessRawEvent(context.Background(), body, "deadbeef")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	err = f.service.ProcessRawEvent(context.Background(), body, "")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	assert.Nil(t, f.subscription(t, "sub-100"))
}

func TestProcessWebhookUnknownEventLoggedAndAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)

	payload := map[string]interface{}{
		"alert_name": "locker_processed",
		"alert_id":   "9001",
	}
	require.NoError(t, f.deliver(t, payload))

	// The append-only log covers every inbound event, handled or not.
	uow := f.factory.NewUnitOfWork(context.Background())
	events, err := uow.WebhookEventRepository().FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "locker_processed", events[0].EventType)
	assert.Equal(t, "9001", events[0].ProviderEventId)
	assert.True(t, events[0].Processed)

	// Redelivery of the unknown event dedupes like any other.
	require.NoError(t, f.deliver(t, payload))
	events, err = uow.WebhookEventRepository().FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestProcessWebhookMalformedCreated(t *testing.T) {
	f := newWebhookFixture(t)

	payload := createdPayload("1001", "sub-100", "alice@example.com")
	delete(payload, "user_email")

	err := f.deliver(t, payload)
	assert.ErrorIs(t, err, ErrMalformedPayload)
	assert.Nil(t, f.subscription(t, "sub-100"))
}

func TestDuplicateEventProcessedOnce(t *testing.T) {
	f := newWebhookFixture(t)

	payload := createdPayload("1001", "sub-100", "alice@example.com")
	require.NoError(t, f.deliver(t, payload))
	require.NoError(t, f.deliver(t, payload), "redelivery must be acknowledged, not failed")

	uow := f.factory.NewUnitOfWork(context.Background())
	count, err := uow.SubscriptionRepository().Count(context.Background(),
		specification.ByPaddleSubscriptionID{SubscriptionID: "sub-100"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 1, f.mailer.count(), "duplicate delivery must not resend the license email")

	events, err := uow.WebhookEventRepository().FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestConcurrentDuplicateDeliveries(t *testing.T) {
	f := newWebhookFixture(t)

	payload := createdPayload("1001", "sub-100", "alice@example.com")
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	sig := f.provider.SignWebhookBody(body)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.service.ProcessRawEvent(context.Background(), body, sig)
		}()
	}
	wg.Wait()

	uow := f.factory.NewUnitOfWork(context.Background())
	count, err := uow.SubscriptionRepository().Count(context.Background(),
		specification.ByPaddleSubscriptionID{SubscriptionID: "sub-100"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, 1, f.mailer.count())
}

func TestRedeliveredCreateWithNewEventId(t *testing.T) {
	f := newWebhookFixture(t)

	require.NoError(t, f.deliver(t, createdPayload("1001", "sub-100", "alice@example.com")))
	first := f.subscription(t, "sub-100")
	require.NotNil(t, first)

	// Same provider subscription, fresh alert id. Must not mint a second
	// record or license key.
	require.NoError(t, f.deliver(t, createdPayload("1002", "sub-100", "alice@example.com")))

	uow := f.factory.NewUnitOfWork(context.Background())
	count, err := uow.SubscriptionRepository().Count(context.Background(),
		specification.ByPaddleSubscriptionID{SubscriptionID: "sub-100"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	second := f.subscription(t, "sub-100")
	assert.Equal(t, first.LicenseKey, second.LicenseKey)
	assert.Equal(t, 1, f.mailer.count())
}

func TestPaymentFailedEntersGrace(t *testing.T) {
	f := newWebhookFixture(t)
	require.NoError(t, f.deliver(t, createdPayload("1001", "sub-100", "alice@example.com")))
	sub := f.subscription(t, "sub-100")
	require.NotNil(t, sub)

	// An initiated attempt waiting for resolution, as the checkout flow
	// would have left behind.
	uow := f.factory.NewUnitOfWork(context.Background())
	attempt := &entity.PaymentAttempt{
		Id:     uuid.New(),
		UserId: sub.UserId,
		Email:  "alice@example.com",
		PlanId: "plan-monthly",
		Status: entity.PaymentAttemptInitiated,
	}
	require.NoError(t, uow.PaymentAttemptRepository().Create(context.Background(), attempt))

	err := f.deliver(t, map[string]interface{}{
		"alert_name":      "subscription_payment_failed",
		"alert_id":        "2001",
		"subscription_id": "sub-100",
		"next_retry_date": "2026-09-05",
	})
	require.NoError(t, err)

	sub = f.subscription(t, "sub-100")
	assert.Equal(t, entity.SubscriptionStatusPastDue, sub.Status)
	require.NotNil(t, sub.PastDueAt)

	resolved, err := uow.PaymentAttemptRepository().FindOne(context.Background(),
		specification.ByID{ID: attempt.Id})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentAttemptFailed, resolved.Status)
	require.NotNil(t, resolved.ErrorMessage)
	assert.Equal(t, "Payment failed, will retry", *resolved.ErrorMessage)

	// Inside the grace window the license still verifies.
	res, err := f.licenses.Verify(context.Background(), sub.LicenseKey)
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, string(entity.SubscriptionStatusPastDue), res.Subscription.Status)
}

func TestPaymentSucceededRecovers(t *testing.T) {
	f := newWebhookFixture(t)
	require.NoError(t, f.deliver(t, createdPayload("1001", "sub-100", "alice@example.com")))

	require.NoError(t, f.deliver(t, map[string]interface{}{
		"alert_name":      "subscription_payment_failed",
		"alert_id":        "2001",
		"subscription_id": "sub-100",
	}))
	require.NoError(t, f.deliver(t, map[string]interface{}{
		"alert_name":      "subscription_payment_succeeded",
		"alert_id":        "2002",
		"subscription_id": "sub-100",
		"next_bill_date":  "2026-10-01",
	}))

	sub := f.subscription(t, "sub-100")
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
	assert.Nil(t, sub.PastDueAt, "recovery clears the grace anchor")
	require.NotNil(t, sub.LastPaymentAt)
}

func TestOutOfOrderPaymentEvents(t *testing.T) {
	f := newWebhookFixture(t)
	require.NoError(t, f.deliver(t, createdPayload("1001", "sub-100", "alice@example.com")))

	// The provider retried an old failure after the success already landed.
	// Ordering is not reconstructed: the state reflects the latest applied
	// event.
	require.NoError(t, f.deliver(t, map[string]interface{}{
		"alert_name":      "subscription_payment_succeeded",
		"alert_id":        "2001",
		"subscription_id": "sub-100",
	}))
	require.NoError(t, f.deliver(t, map[string]interface{}{
		"alert_name":      "subscription_payment_failed",
		"alert_id":        "2002",
		"subscription_id": "sub-100",
	}))

	sub := f.subscription(t, "sub-100")
	assert.Equal(t, entity.SubscriptionStatusPastDue, sub.Status)
}

func TestCancelledIsTerminal(t *testing.T) {
	f := newWebhookFixture(t)
	require.NoError(t, f.deliver(t, createdPayload("1001", "sub-100", "alice@example.com")))

	require.NoError(t, f.deliver(t, map[string]interface{}{
		"alert_name":                  "subscription_cancelled",
		"alert_id":                    "3001",
		"subscription_id":             "sub-100",
		"cancellation_effective_date": "2026-08-30",
	}))

	sub := f.subscription(t, "sub-100")
	assert.Equal(t, entity.SubscriptionStatusCanceled, sub.Status)
	require.NotNil(t, sub.CanceledAt)

	// A replayed success after cancellation is recorded but changes nothing.
	require.NoError(t, f.deliver(t, map[string]interface{}{
		"alert_name":      "subscription_payment_succeeded",
		"alert_id":        "3002",
		"subscription_id": "sub-100",
	}))

	sub = f.subscription(t, "sub-100")
	assert.Equal(t, entity.SubscriptionStatusCanceled, sub.Status)
	assert.Contains(t, sub.PaddleData, "last_payment", "late event still lands in the audit trail")

	res, err := f.licenses.Verify(context.Background(), sub.LicenseKey)
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.NotContains(t, res.Features, "custom_themes")
}

func TestRefundRecordedWithoutStatusChange(t *testing.T) {
	f := newWebhookFixture(t)
	require.NoError(t, f.deliver(t, createdPayload("1001", "sub-100", "alice@example.com")))

	require.NoError(t, f.deliver(t, map[string]interface{}{
		"alert_name":      "subscription_payment_refunded",
		"alert_id":        "4001",
		"subscription_id": "sub-100",
		"refund_reason":   "requested by customer",
	}))

	sub := f.subscription(t, "sub-100")
	assert.Equal(t, entity.SubscriptionStatusActive, sub.Status)
	assert.Contains(t, sub.PaddleData, "refund")
}

func TestEventForUnknownSubscriptionAcknowledged(t *testing.T) {
	f := newWebhookFixture(t)

	err := f.deliver(t, map[string]interface{}{
		"alert_name":      "subscription_payment_succeeded",
		"alert_id":        "5001",
		"subscription_id": "sub-missing",
	})
	assert.NoError(t, err, "a permanently missing reference must not trigger provider retries")
}

func TestWebhookInvalidatesVerifyCache(t *testing.T) {
	f := newWebhookFixture(t)
	require.NoError(t, f.deliver(t, createdPayload("1001", "sub-100", "alice@example.com")))
	sub := f.subscription(t, "sub-100")

	res, err := f.licenses.Verify(context.Background(), sub.LicenseKey)
	require.NoError(t, err)
	require.True(t, res.Valid)

	require.NoError(t, f.deliver(t, map[string]interface{}{
		"alert_name":                  "subscription_cancelled",
		"alert_id":                    "3001",
		"subscription_id":             "sub-100",
		"cancellation_effective_date": "2026-08-30",
	}))

	// The cached verdict from before the cancellation must be gone.
	res, err = f.licenses.Verify(context.Background(), sub.LicenseKey)
	require.NoError(t, err)
	assert.False(t, res.Valid)
}
