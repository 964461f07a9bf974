package main

import (
	"context"
	"log"

	"construction-assist-be/internal/bootstrap"
	"construction-assist-be/internal/config"
	"construction-assist-be/internal/server"
	"construction-assist-be/internal/tracer"
	"construction-assist-be/pkg/database"
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

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting Invalidation Consumer...")
		if err := container.InvalidationService.Consume(context.Background()); err != nil {
			log.Printf("Background Invalidation Consumer Error: %v", err)
		}
	}()

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
