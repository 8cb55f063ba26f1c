package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"calext-licensing-be/internal/entity"
	"calext-licensing-be/internal/repository/specification"
	"calext-licensing-be/internal/repository/unitofwork"
	"calext-licensing-be/pkg/database"
	"calext-licensing-be/pkg/license"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.UserRepository())
	assert.NotNil(t, uow.SubscriptionRepository())
	assert.NotNil(t, uow.PaymentAttemptRepository())
	assert.NotNil(t, uow.WebhookEventRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	t.Run("Check User Repository", func(t *testing.T) {
		count, err := uow.UserRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("User count: %d", count)
	})

	t.Run("Check Transactional Subscription Write", func(t *testing.T) {
		ctx := context.Background()

		user := &entity.User{
			Id:    uuid.New(),
			Email: "test-integration-" + uuid.New().String() + "@example.com",
		}
		err := uow.UserRepository().Create(ctx, user)
		assert.NoError(t, err)

		// Transaction Test
		txUow := uowFactory.NewUnitOfWork(ctx)
		err = txUow.Begin(ctx)
		assert.NoError(t, err)
		defer txUow.Rollback()

		extID := "sub-integration-" + uuid.New().String()
		sub := &entity.Subscription{
			Id:                   uuid.New(),
			UserId:               user.Id,
			PaddleSubscriptionId: &extID,
			PlanId:               "plan-monthly",
			PlanName:             "Integration Plan",
			BillingCycle:         entity.BillingCycleMonthly,
			Status:               entity.SubscriptionStatusActive,
			LicenseKey:           license.Generate(),
		}
		err = txUow.SubscriptionRepository().Create(ctx, sub)
		assert.NoError(t, err)

		// Row lock inside the transaction
		locked, err := txUow.SubscriptionRepository().FindOne(ctx,
			specification.ByPaddleSubscriptionID{SubscriptionID: extID},
			specification.ForUpdate{},
		)
		assert.NoError(t, err)
		assert.NotNil(t, locked)

		err = txUow.Rollback()
		assert.NoError(t, err)

		// After rollback the subscription must not exist
		gone, err := uow.SubscriptionRepository().FindOne(ctx,
			specification.ByPaddleSubscriptionID{SubscriptionID: extID})
		assert.NoError(t, err)
		assert.Nil(t, gone)
	})

	t.Run("Check Webhook Event Idempotent Insert", func(t *testing.T) {
		ctx := context.Background()

		eventID := "evt-integration-" + uuid.New().String()
		first := &entity.WebhookEvent{
			Id:              uuid.New(),
			EventType:       "subscription_created",
			ProviderEventId: eventID,
			Payload:         map[string]interface{}{"alert_id": eventID},
		}
		created, err := uow.WebhookEventRepository().Insert(ctx, first)
		assert.NoError(t, err)
		assert.True(t, created)

		dup := &entity.WebhookEvent{
			Id:              uuid.New(),
			EventType:       "subscription_created",
			ProviderEventId: eventID,
			Payload:         map[string]interface{}{"alert_id": eventID},
		}
		created, err = uow.WebhookEventRepository().Insert(ctx, dup)
		assert.NoError(t, err)
		assert.False(t, created, "second insert with same provider event id must report duplicate")
	})
}
