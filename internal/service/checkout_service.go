package service

import (
	"context"
	"fmt"

	"calext-licensing-be/internal/dto"
	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/pkg/logger"
	"calext-licensing-be/internal/repository/specification"
	"calext-licensing-be/internal/repository/unitofwork"
	"calext-licensing-be/pkg/paddle"

	"github.com/google/uuid"
)

const moduleCheckout = "checkout"

type ICheckoutService interface {
	CreateAttempt(ctx context.Context, userId uuid.UUID, req *dto.CreateAttemptRequest) (*dto.CreateAttemptResponse, error)
	GetStatus(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error)
	Cancel(ctx context.Context, userId uuid.UUID) error
}

type checkoutService struct {
	uowFactory unitofwork.RepositoryFactory
	provider   *paddle.Client
	logger     logger.ILogger
	baseURL    string
	clientURL  string
	plans      map[string]PlanInfo
}

// PlanInfo describes a sellable plan. The catalog is static configuration,
// not database state.
type PlanInfo struct {
	Name     string
	Amount   float64
	Currency string
	Cycle    entity.BillingCycle
}

func NewCheckoutService(
	uowFactory unitofwork.RepositoryFactory,
	provider *paddle.Client,
	logger logger.ILogger,
	baseURL string,
	clientURL string,
	plans map[string]PlanInfo,
) ICheckoutService {
	return &checkoutService{
		uowFactory: uowFactory,
		provider:   provider,
		logger:     logger,
		baseURL:    baseURL,
		clientURL:  clientURL,
		plans:      plans,
	}
}

// CreateAttempt records the checkout intent before handing the user to the
// payment page. The attempt row is what the payment webhooks later resolve,
// so it must exist before any provider redirect happens.
func (s *checkoutService) CreateAttempt(ctx context.Context, userId uuid.UUID, req *dto.CreateAttemptRequest) (*dto.CreateAttemptResponse, error) {
	plan, ok := s.plans[req.PlanId]
	if !ok {
		return nil, ErrUnknownPlan
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	attempt := &entity.PaymentAttempt{
		Id:       uuid.New(),
		UserId:   userId,
		Email:    user.Email,
		PlanId:   req.PlanId,
		PlanName: plan.Name,
		Amount:   plan.Amount,
		Currency: plan.Currency,
		Status:   entity.PaymentAttemptInitiated,
	}
	if err := uow.PaymentAttemptRepository().Create(ctx, attempt); err != nil {
		return nil, err
	}

	checkoutURL, err := s.provider.CheckoutURL(req.PlanId, user.Email,
		fmt.Sprintf("%s/payment/success", s.clientURL),
		fmt.Sprintf("%s/payment/cancel", s.clientURL),
		map[string]interface{}{
			"userId":           userId.String(),
			"paymentAttemptId": attempt.Id.String(),
			"planName":         plan.Name,
			"billingCycle":     string(plan.Cycle),
		},
	)
	if err != nil {
		s.logger.Error(moduleCheckout, "failed to build checkout url", map[string]interface{}{
			"error":  err.Error(),
			"planId": req.PlanId,
		})
		return nil, err
	}

	s.logger.Info(moduleCheckout, "payment attempt initiated", map[string]interface{}{
		"paymentAttemptId": attempt.Id.String(),
		"planId":           req.PlanId,
	})
	return &dto.CreateAttemptResponse{
		PaymentAttemptId: attempt.Id,
		CheckoutUrl:      checkoutURL,
	}, nil
}

func (s *checkoutService) GetStatus(ctx context.Context, userId uuid.UUID) (*dto.SubscriptionStatusResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := currentSubscription(ctx, uow, userId)
	if err != nil {
		return nil, err
	}

	res := &dto.SubscriptionStatusResponse{Status: "free"}
	if sub != nil {
		res.SubscriptionId = sub.Id
		res.Status = string(sub.Status)
		res.PlanId = sub.PlanId
		res.PlanName = sub.PlanName
		res.BillingCycle = string(sub.BillingCycle)
		res.LicenseKey = sub.LicenseKey
		res.NextBilledAt = sub.NextBilledAt
		res.LastPaymentAt = sub.LastPaymentAt
		res.CanceledAt = sub.CanceledAt
		res.IsActive = sub.Status == entity.SubscriptionStatusActive
	}

	attempt, err := uow.PaymentAttemptRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if attempt != nil {
		res.LastPaymentAttempt = &dto.PaymentAttemptInfo{
			Id:           attempt.Id,
			Status:       string(attempt.Status),
			PlanId:       attempt.PlanId,
			ErrorMessage: attempt.ErrorMessage,
			CreatedAt:    attempt.CreatedAt,
			CompletedAt:  attempt.CompletedAt,
		}
	}
	return res, nil
}

// Cancel asks the provider to cancel the remote subscription. The local row
// is not touched here. The provider confirms through a cancellation webhook
// and that is the single writer for subscription state.
func (s *checkoutService) Cancel(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sub, err := currentSubscription(ctx, uow, userId)
	if err != nil {
		return err
	}
	if sub == nil || sub.PaddleSubscriptionId == nil {
		return ErrNoActiveSubscription
	}
	if sub.Status == entity.SubscriptionStatusCanceled {
		return ErrNoActiveSubscription
	}

	if err := s.provider.CancelSubscription(ctx, *sub.PaddleSubscriptionId); err != nil {
		s.logger.Error(moduleCheckout, "provider cancellation request failed", map[string]interface{}{
			"error":          err.Error(),
			"subscriptionId": sub.Id.String(),
		})
		return err
	}

	s.logger.Info(moduleCheckout, "cancellation requested", map[string]interface{}{
		"subscriptionId": sub.Id.String(),
	})
	return nil
}
