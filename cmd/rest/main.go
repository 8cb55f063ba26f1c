package main

import (
	"context"
	"log"

	"calext-licensing-be/internal/bootstrap"
	"calext-licensing-be/internal/config"
	"calext-licensing-be/internal/server"
	"calext-licensing-be/internal/tracer"
	"calext-licensing-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer func() {
		if container.NatsPublisher != nil {
			container.NatsPublisher.Close()
		}
		if container.NatsSubscriber != nil {
			container.NatsSubscriber.Close()
		}
		_ = container.Logger.Sync()
	}()

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
