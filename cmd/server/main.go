package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/beswib/beswib/internal/config"
	"github.com/beswib/beswib/internal/database"
	"github.com/beswib/beswib/internal/handler"
	"github.com/beswib/beswib/internal/marketplace"
	"github.com/beswib/beswib/internal/middleware"
	"github.com/beswib/beswib/internal/payment"
	"github.com/beswib/beswib/internal/queue"
	"github.com/beswib/beswib/internal/repository"
	"github.com/beswib/beswib/internal/router"
	queue_publisher "github.com/beswib/beswib/internal/service"
)

func main() {
	// .env is a development convenience; in production the variables
	// come from the environment and the file is simply absent.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient() // nil when Redis is down; cache and limiter disable themselves

	provider, err := payment.NewProvider(cfg)
	if err != nil {
		log.Fatalf("payment: %v", err)
	}
	log.Printf("payment provider: %s", provider.Name())

	// Repositories.
	userRepo := repository.NewUserRepo(db)
	tokenRepo := repository.NewTokenRepo(db)
	bibRepo := repository.NewBibRepo(db)
	eventRepo := repository.NewEventRepo(db)
	organizerRepo := repository.NewOrganizerRepo(db)
	waitlistRepo := repository.NewWaitlistRepo(db)
	txnRepo := repository.NewTransactionRepo(db)

	// Marketplace core.
	listings := marketplace.NewListingService(bibRepo, eventRepo)
	orch := marketplace.NewOrchestrator(listings, userRepo, txnRepo, provider,
		queue_publisher.Notifier{}, cfg.PlatformCurrency)

	// Handlers.
	authH := handler.NewAuthHandler(cfg, userRepo, tokenRepo)
	sellerH := handler.NewSellerHandler(listings)
	marketH := handler.NewMarketplaceHandler(bibRepo, eventRepo, listings)
	purchaseH := handler.NewPurchaseHandler(orch, listings)
	profileH := handler.NewProfileHandler(userRepo)
	waitlistH := handler.NewWaitlistHandler(waitlistRepo, eventRepo)
	adminH := handler.NewAdminHandler(eventRepo, organizerRepo, txnRepo)
	adminBibH := handler.NewAdminBibHandler(listings)

	e := echo.New()
	e.HideBanner = true

	// Distributed token-bucket rate limiting across all routes; fails
	// open when Redis is unavailable.
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Response cache only on the public browse surface. Requests with
	// an access token in the query bypass it inside the middleware.
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authH, cfg.JWTSecret)
	router.RegisterPublic(e, marketH, cacheMW)
	router.RegisterRunner(e, sellerH, purchaseH, profileH, waitlistH, cfg.JWTSecret)
	router.RegisterAdmin(e, adminH, adminBibH, cfg.JWTSecret)

	// Background consumers append sale and reconciliation records to
	// files under logs/. They reconnect forever on their own.
	go func() {
		if err := queue.StartSoldConsumer(); err != nil {
			log.Printf("sold-consumer stopped: %v", err)
		}
	}()
	go func() {
		if err := queue.StartReconciliationConsumer(); err != nil {
			log.Printf("reconciliation-consumer stopped: %v", err)
		}
	}()

	// Expiry sweep: listings whose event date has passed stop being
	// purchasable the moment the date flips; the sweep persists that
	// as the expired status.
	go func() {
		ticker := time.NewTicker(cfg.ExpirySweepInterval)
		defer ticker.Stop()
		for range ticker.C {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			n, err := bibRepo.ExpireOverdue(ctx)
			cancel()
			if err != nil {
				log.Printf("expiry sweep: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("expiry sweep: expired %d listing(s)", n)
			}
		}
	}()

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
