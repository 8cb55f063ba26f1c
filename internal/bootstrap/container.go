package bootstrap

import (
	"log"
	"time"

	"calext-licensing-be/internal/config"
	"calext-licensing-be/internal/controller"
	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/pkg/logger"
	"calext-licensing-be/internal/pkg/mailer"
	"calext-licensing-be/internal/repository/unitofwork"
	"calext-licensing-be/internal/service"
	"calext-licensing-be/pkg/paddle"

	pktNats "calext-licensing-be/pkg/nats"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	LicenseController controller.ILicenseController
	WebhookController controller.IWebhookController
	PaymentController controller.IPaymentController

	// Background services
	ConsumerService service.IConsumerService

	// Infrastructure (Exposed for main.go shutdown)
	Logger         logger.ILogger
	NatsPublisher  *pktNats.Publisher
	NatsSubscriber *pktNats.Subscriber
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
	)

	// 2. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Paddle
	paddleClient := paddle.NewClient(
		cfg.Paddle.VendorID,
		cfg.Paddle.VendorAuthCode,
		cfg.Paddle.WebhookSecret,
		cfg.Paddle.Production,
	)

	// Verification cache, shared between the verify read path and the
	// webhook processor that invalidates it.
	verifyCache := cache.New(30*time.Second, 5*time.Minute)

	// 3. Services
	licenseService := service.NewLicenseService(uowFactory, verifyCache, cfg.Billing.PastDueGraceDays)
	webhookService := service.NewWebhookService(uowFactory, paddleClient, sysLogger, emailService, natsPub, verifyCache)
	checkoutService := service.NewCheckoutService(uowFactory, paddleClient, sysLogger,
		cfg.App.BaseURL, cfg.App.ClientURL, planCatalog(cfg))
	consumerService := service.NewConsumerService(natsSub, emailService, sysLogger)

	// 4. Controllers
	return &Container{
		LicenseController: controller.NewLicenseController(licenseService),
		WebhookController: controller.NewWebhookController(webhookService),
		PaymentController: controller.NewPaymentController(checkoutService),
		ConsumerService:   consumerService,
		Logger:            sysLogger,
		NatsPublisher:     natsPub,
		NatsSubscriber:    natsSub,
	}
}

func planCatalog(cfg *config.Config) map[string]service.PlanInfo {
	return map[string]service.PlanInfo{
		cfg.Billing.MonthlyPlanID: {
			Name:     "CalExt Premium Monthly",
			Amount:   cfg.Billing.MonthlyPrice,
			Currency: cfg.Billing.Currency,
			Cycle:    entity.BillingCycleMonthly,
		},
		cfg.Billing.YearlyPlanID: {
			Name:     "CalExt Premium Yearly",
			Amount:   cfg.Billing.YearlyPrice,
			Currency: cfg.Billing.Currency,
			Cycle:    entity.BillingCycleYearly,
		},
	}
}
