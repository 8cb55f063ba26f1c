package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"calext-licensing-be/internal/dto"
	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/pkg/logger"
	"calext-licensing-be/internal/pkg/mailer"
	"calext-licensing-be/internal/repository/specification"
	"calext-licensing-be/internal/repository/unitofwork"
	"calext-licensing-be/pkg/events"
	"calext-licensing-be/pkg/license"
	pktNats "calext-licensing-be/pkg/nats"
	"calext-licensing-be/pkg/paddle"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const moduleWebhook = "webhook"

// Event names as Paddle sends them.
const (
	EventSubscriptionCreated   = "subscription_created"
	EventSubscriptionUpdated   = "subscription_updated"
	EventSubscriptionCancelled = "subscription_cancelled"
	EventPaymentSucceeded      = "subscription_payment_succeeded"
	EventPaymentFailed         = "subscription_payment_failed"
	EventPaymentRefunded       = "subscription_payment_refunded"
)

type IWebhookService interface {
	ProcessRawEvent(ctx context.Context, body []byte, signature string) error
}

// webhookContext carries one delivery through its handler. Side effects that
// must not happen inside the store transaction (mail, bus events, cache
// invalidation) are queued on postCommit.
type webhookContext struct {
	req        *dto.PaddleWebhookRequest
	raw        map[string]interface{}
	postCommit []func(context.Context)
}

func (w *webhookContext) after(fn func(context.Context)) {
	w.postCommit = append(w.postCommit, fn)
}

type webhookHandler func(ctx context.Context, uow unitofwork.UnitOfWork, evt *webhookContext) error

type webhookService struct {
	uowFactory     unitofwork.RepositoryFactory
	provider       *paddle.Client
	logger         logger.ILogger
	emailService   mailer.IEmailService
	eventPublisher *pktNats.Publisher
	verifyCache    *cache.Cache
	handlers       map[string]webhookHandler
}

func NewWebhookService(
	uowFactory unitofwork.RepositoryFactory,
	provider *paddle.Client,
	sysLogger logger.ILogger,
	emailService mailer.IEmailService,
	eventPublisher *pktNats.Publisher,
	verifyCache *cache.Cache,
) IWebhookService {
	s := &webhookService{
		uowFactory:     uowFactory,
		provider:       provider,
		logger:         sysLogger,
		emailService:   emailService,
		eventPublisher: eventPublisher,
		verifyCache:    verifyCache,
	}
	// Registry instead of a central switch: each event type gets an
	// independently testable handler; new types only add entries here.
	s.handlers = map[string]webhookHandler{
		EventSubscriptionCreated:   s.handleSubscriptionCreated,
		EventSubscriptionUpdated:   s.handleSubscriptionUpdated,
		EventSubscriptionCancelled: s.handleSubscriptionCancelled,
		EventPaymentSucceeded:      s.handlePaymentSucceeded,
		EventPaymentFailed:         s.handlePaymentFailed,
		EventPaymentRefunded:       s.handlePaymentRefunded,
	}
	return s
}

func (s *webhookService) ProcessRawEvent(ctx context.Context, body []byte, signature string) error {
	// Integrity first: an unverifiable payload is never parsed.
	if !s.provider.VerifyWebhookSignature(body, signature) {
		return ErrInvalidSignature
	}

	var req dto.PaddleWebhookRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	name := req.Name()
	if name == "" {
		return fmt.Errorf("%w: missing event name", ErrMalformedPayload)
	}

	handler, known := s.handlers[name]

	evt := &entity.WebhookEvent{
		Id:              uuid.New(),
		EventType:       name,
		ProviderEventId: s.eventKey(&req, body),
		Payload:         raw,
		CreatedAt:       time.Now(),
	}

	wctx := &webhookContext{req: &req, raw: raw}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	// The event log entry is written before any side effect. A concurrent
	// delivery of the same event id blocks on the unique index until this
	// transaction resolves, then sees the duplicate.
	created, err := uow.WebhookEventRepository().Insert(ctx, evt)
	if err != nil {
		return err
	}
	if !created {
		existing, err := uow.WebhookEventRepository().FindOne(ctx,
			specification.ByProviderEventID{EventID: evt.ProviderEventId})
		if err != nil {
			return err
		}
		if existing != nil && existing.Processed {
			s.logger.Info(moduleWebhook, "duplicate event absorbed", map[string]interface{}{
				"event_type":        name,
				"provider_event_id": evt.ProviderEventId,
			})
			return uow.Commit()
		}
		// Earlier attempt failed between logging and processing; retry
		// re-applies under the same event id.
	}

	// The log is append-only and covers every inbound event. Unknown types
	// are recorded and acknowledged so the provider stops retrying; only
	// known types dispatch a handler.
	if !known {
		s.logger.Info(moduleWebhook, "unhandled event type recorded and acknowledged", map[string]interface{}{
			"event_type": name,
		})
	} else if err := handler(ctx, uow, wctx); err != nil {
		return err
	}

	if err := uow.WebhookEventRepository().MarkProcessed(ctx, evt); err != nil {
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	for _, fn := range wctx.postCommit {
		fn(ctx)
	}
	return nil
}

// eventKey returns the idempotency key for a delivery. Old-style alerts
// always carry alert_id; for payloads without one, identical bodies hash to
// the same synthetic key so redeliveries still dedupe.
func (s *webhookService) eventKey(req *dto.PaddleWebhookRequest, body []byte) string {
	if id := req.EventId(); id != "" {
		return id
	}
	sum := sha256.Sum256(body)
	return "synthetic-" + hex.EncodeToString(sum[:12])
}

func (s *webhookService) handleSubscriptionCreated(ctx context.Context, uow unitofwork.UnitOfWork, evt *webhookContext) error {
	req := evt.req
	if req.SubscriptionId == "" || req.UserEmail == "" {
		return fmt.Errorf("%w: subscription_created requires subscription_id and user_email", ErrMalformedPayload)
	}

	// Redelivered create with a fresh event id: the same provider
	// subscription must not spawn a second record or license key.
	existing, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.ByPaddleSubscriptionID{SubscriptionID: req.SubscriptionId},
		specification.ForUpdate{},
	)
	if err != nil {
		return err
	}
	if existing != nil {
		existing.AppendAudit("created", evt.raw)
		return uow.SubscriptionRepository().Update(ctx, existing)
	}

	user, err := uow.UserRepository().UpsertByEmail(ctx, &entity.User{
		Id:        uuid.New(),
		Email:     req.UserEmail,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	meta := parsePassthrough(req.Passthrough)

	status := entity.SubscriptionStatusPending
	if req.Status == "active" {
		status = entity.SubscriptionStatusActive
	}

	extID := req.SubscriptionId
	key := license.Generate()
	sub := &entity.Subscription{
		Id:                   uuid.New(),
		UserId:               user.Id,
		PaddleSubscriptionId: &extID,
		PlanId:               req.SubscriptionPlanId,
		PlanName:             meta.PlanName,
		BillingCycle:         meta.BillingCycle,
		UnitPrice:            parseAmount(req.UnitPrice),
		Currency:             orDefault(req.Currency, "USD"),
		Quantity:             parseQuantity(req.Quantity),
		Status:               status,
		LicenseKey:           key,
		StartedAt:            time.Now(),
		NextBilledAt:         parsePaddleTime(req.NextBillDate),
		CreatedAt:            time.Now(),
		UpdatedAt:            time.Now(),
	}
	sub.AppendAudit("created", evt.raw)

	if err := uow.SubscriptionRepository().Create(ctx, sub); err != nil {
		return err
	}

	s.logger.Info(moduleWebhook, "subscription created", map[string]interface{}{
		"paddle_subscription_id": req.SubscriptionId,
		"user_email":             req.UserEmail,
		"status":                 string(status),
	})

	email := req.UserEmail
	planName := sub.PlanName
	evt.after(func(ctx context.Context) {
		if s.emailService != nil {
			if err := s.emailService.SendLicenseKey(email, key, planName); err != nil {
				s.logger.Warn(moduleWebhook, "failed to send license key email", map[string]interface{}{
					"email": email, "error": err.Error(),
				})
			}
		}
		s.publishEvent(ctx, "SUBSCRIPTION_CREATED", map[string]interface{}{
			"user_id":                user.Id,
			"paddle_subscription_id": extID,
			"plan_id":                sub.PlanId,
			"plan_name":              sub.PlanName,
			"occurred_at":            time.Now(),
		})
	})
	return nil
}

func (s *webhookService) handleSubscriptionUpdated(ctx context.Context, uow unitofwork.UnitOfWork, evt *webhookContext) error {
	sub, err := s.lockSubscription(ctx, uow, evt.req.SubscriptionId)
	if err != nil || sub == nil {
		return err
	}
	if sub.IsTerminal() {
		return s.recordOnly(ctx, uow, sub, "updated", evt.raw)
	}

	if next := mapProviderStatus(evt.req.Status); next != "" {
		s.applyStatus(sub, next)
	}
	sub.NextBilledAt = parsePaddleTime(evt.req.NextBillDate)
	if at := parsePaddleTime(evt.req.CancelledAt); at != nil {
		sub.CanceledAt = at
	}
	sub.AppendAudit("updated", evt.raw)
	sub.UpdatedAt = time.Now()

	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}
	s.invalidateAfterCommit(evt, sub.LicenseKey)
	return nil
}

func (s *webhookService) handleSubscriptionCancelled(ctx context.Context, uow unitofwork.UnitOfWork, evt *webhookContext) error {
	sub, err := s.lockSubscription(ctx, uow, evt.req.SubscriptionId)
	if err != nil || sub == nil {
		return err
	}
	if sub.IsTerminal() {
		return s.recordOnly(ctx, uow, sub, "cancelled", evt.raw)
	}

	canceledAt := parsePaddleTime(evt.req.CancellationEffectiveDate)
	if canceledAt == nil {
		now := time.Now()
		canceledAt = &now
	}
	sub.Status = entity.SubscriptionStatusCanceled
	sub.CanceledAt = canceledAt
	sub.AppendAudit("cancelled", evt.raw)
	sub.UpdatedAt = time.Now()

	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}

	s.logger.Info(moduleWebhook, "subscription canceled", map[string]interface{}{
		"paddle_subscription_id": evt.req.SubscriptionId,
	})

	userID := sub.UserId
	extID := evt.req.SubscriptionId
	s.invalidateAfterCommit(evt, sub.LicenseKey)
	evt.after(func(ctx context.Context) {
		s.publishEvent(ctx, "SUBSCRIPTION_CANCELED", map[string]interface{}{
			"user_id":                userID,
			"paddle_subscription_id": extID,
			"occurred_at":            time.Now(),
		})
	})
	return nil
}

func (s *webhookService) handlePaymentSucceeded(ctx context.Context, uow unitofwork.UnitOfWork, evt *webhookContext) error {
	sub, err := s.lockSubscription(ctx, uow, evt.req.SubscriptionId)
	if err != nil || sub == nil {
		return err
	}
	if sub.IsTerminal() {
		return s.recordOnly(ctx, uow, sub, "last_payment", evt.raw)
	}

	now := time.Now()
	s.applyStatus(sub, entity.SubscriptionStatusActive)
	sub.LastPaymentAt = &now
	sub.NextBilledAt = parsePaddleTime(evt.req.NextBillDate)
	sub.AppendAudit("last_payment", evt.raw)
	sub.UpdatedAt = now

	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}
	if err := s.resolvePaymentAttempt(ctx, uow, sub.UserId, entity.PaymentAttemptCompleted, nil); err != nil {
		return err
	}
	s.invalidateAfterCommit(evt, sub.LicenseKey)
	return nil
}

func (s *webhookService) handlePaymentFailed(ctx context.Context, uow unitofwork.UnitOfWork, evt *webhookContext) error {
	sub, err := s.lockSubscription(ctx, uow, evt.req.SubscriptionId)
	if err != nil || sub == nil {
		return err
	}
	if sub.IsTerminal() {
		return s.recordOnly(ctx, uow, sub, "payment_failure", evt.raw)
	}

	now := time.Now()
	s.applyStatus(sub, entity.SubscriptionStatusPastDue)
	sub.AppendAudit("payment_failure", evt.raw)
	sub.UpdatedAt = now

	if err := uow.SubscriptionRepository().Update(ctx, sub); err != nil {
		return err
	}

	msg := "Payment failed"
	if evt.req.NextRetryDate != "" {
		msg = "Payment failed, will retry"
	}
	if err := s.resolvePaymentAttempt(ctx, uow, sub.UserId, entity.PaymentAttemptFailed, &msg); err != nil {
		return err
	}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: sub.UserId})
	if err != nil {
		return err
	}
	email := ""
	if user != nil {
		email = user.Email
	}

	userID := sub.UserId
	extID := evt.req.SubscriptionId
	planName := sub.PlanName
	s.invalidateAfterCommit(evt, sub.LicenseKey)
	evt.after(func(ctx context.Context) {
		s.publishEvent(ctx, "PAYMENT_FAILED", map[string]interface{}{
			"user_id":                userID,
			"paddle_subscription_id": extID,
			"email":                  email,
			"plan_name":              planName,
			"occurred_at":            time.Now(),
		})
	})
	return nil
}

func (s *webhookService) handlePaymentRefunded(ctx context.Context, uow unitofwork.UnitOfWork, evt *webhookContext) error {
	sub, err := s.lockSubscription(ctx, uow, evt.req.SubscriptionId)
	if err != nil || sub == nil {
		return err
	}
	// Refunds never change status on their own; the provider follows up with
	// an update or cancellation when the refund ends the subscription.
	return s.recordOnly(ctx, uow, sub, "refund", evt.raw)
}

// lockSubscription resolves the target subscription under a row lock. A
// missing subscription for a non-creation event is logged and acknowledged:
// the provider cannot usefully retry a permanently missing reference.
func (s *webhookService) lockSubscription(ctx context.Context, uow unitofwork.UnitOfWork, providerSubID string) (*entity.Subscription, error) {
	if providerSubID == "" {
		return nil, fmt.Errorf("%w: missing subscription_id", ErrMalformedPayload)
	}
	sub, err := uow.SubscriptionRepository().FindOne(ctx,
		specification.ByPaddleSubscriptionID{SubscriptionID: providerSubID},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		s.logger.Error(moduleWebhook, "subscription not found for event", map[string]interface{}{
			"paddle_subscription_id": providerSubID,
		})
		return nil, nil
	}
	return sub, nil
}

// recordOnly appends the payload to the audit snapshot without touching
// status. Used for refunds and for anything arriving after cancellation.
func (s *webhookService) recordOnly(ctx context.Context, uow unitofwork.UnitOfWork, sub *entity.Subscription, key string, raw map[string]interface{}) error {
	sub.AppendAudit(key, raw)
	sub.UpdatedAt = time.Now()
	return uow.SubscriptionRepository().Update(ctx, sub)
}

// applyStatus performs the transition, maintaining the past_due grace anchor.
func (s *webhookService) applyStatus(sub *entity.Subscription, next entity.SubscriptionStatus) {
	if sub.Status == next {
		return
	}
	if next == entity.SubscriptionStatusPastDue {
		now := time.Now()
		sub.PastDueAt = &now
	} else {
		sub.PastDueAt = nil
	}
	sub.Status = next
}

// resolvePaymentAttempt bridges checkout initiation with the asynchronous
// payment confirmation: the most recent initiated attempt for the user wins.
func (s *webhookService) resolvePaymentAttempt(ctx context.Context, uow unitofwork.UnitOfWork, userID uuid.UUID, status entity.PaymentAttemptStatus, errMsg *string) error {
	attempt, err := uow.PaymentAttemptRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userID},
		specification.Filter("status", string(entity.PaymentAttemptInitiated)),
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return err
	}
	if attempt == nil {
		return nil
	}
	now := time.Now()
	attempt.Status = status
	attempt.ErrorMessage = errMsg
	attempt.CompletedAt = &now
	return uow.PaymentAttemptRepository().Update(ctx, attempt)
}

func (s *webhookService) invalidateAfterCommit(evt *webhookContext, licenseKey string) {
	if s.verifyCache == nil || licenseKey == "" {
		return
	}
	evt.after(func(context.Context) {
		s.verifyCache.Delete(licenseKey)
	})
}

func (s *webhookService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.eventPublisher == nil {
		return
	}
	e := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, e); err != nil {
		s.logger.Warn(moduleWebhook, "failed to publish event", map[string]interface{}{
			"event_type": eventType, "error": err.Error(),
		})
	}
}

// mapProviderStatus translates Paddle subscription statuses into local ones.
// Unknown statuses map to empty, which leaves the current status untouched.
func mapProviderStatus(status string) entity.SubscriptionStatus {
	switch status {
	case "active", "trialing":
		return entity.SubscriptionStatusActive
	case "past_due":
		return entity.SubscriptionStatusPastDue
	case "deleted":
		return entity.SubscriptionStatusCanceled
	case "expired":
		return entity.SubscriptionStatusExpired
	case "pending":
		return entity.SubscriptionStatusPending
	default:
		return ""
	}
}

type passthroughMeta struct {
	PlanName     string
	BillingCycle entity.BillingCycle
}

// parsePassthrough extracts checkout metadata we planted in the hosted
// checkout URL. Payloads without passthrough fall back to defaults.
func parsePassthrough(raw string) passthroughMeta {
	meta := passthroughMeta{
		PlanName:     "Unknown Plan",
		BillingCycle: entity.BillingCycleMonthly,
	}
	if raw == "" {
		return meta
	}
	var decoded struct {
		PlanName     string `json:"planName"`
		BillingCycle string `json:"billingCycle"`
	}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return meta
	}
	if decoded.PlanName != "" {
		meta.PlanName = decoded.PlanName
	}
	if decoded.BillingCycle == string(entity.BillingCycleYearly) {
		meta.BillingCycle = entity.BillingCycleYearly
	}
	return meta
}

var paddleTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC3339,
}

func parsePaddleTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	for _, layout := range paddleTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	return nil
}

func parseAmount(value string) float64 {
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseQuantity(value string) int {
	if value == "" {
		return 1
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
