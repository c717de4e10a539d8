package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/invoicer-api/internal/application/service"
	"github.com/sangkips/invoicer-api/internal/config"
	"github.com/sangkips/invoicer-api/internal/infrastructure/database"
	"github.com/sangkips/invoicer-api/internal/infrastructure/repository"
	"github.com/sangkips/invoicer-api/internal/presentation/http/handler"
	"github.com/sangkips/invoicer-api/internal/presentation/http/middleware"
	"github.com/sangkips/invoicer-api/internal/presentation/http/routes"
	"github.com/sangkips/invoicer-api/pkg/utils"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Tokens are issued by the auth service; this API only verifies them
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiryHours)

	// Initialize repositories
	profileRepo := repository.NewSenderProfileRepository(db)
	accountRepo := repository.NewBankAccountRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	priceRepo := repository.NewCustomPriceRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize services
	customerService := service.NewCustomerService(customerRepo)
	productService := service.NewProductService(productRepo)
	priceService := service.NewCustomPriceService(priceRepo, customerRepo, productRepo)
	profileService := service.NewSenderProfileService(profileRepo, accountRepo, cfg.Invoice.DefaultPrefix)
	invoiceService := service.NewInvoiceService(invoiceRepo, profileRepo, accountRepo, customerRepo, cfg.Invoice.NumberWidth)
	referenceService := service.NewReferenceService(profileRepo, accountRepo, customerRepo, productRepo, priceRepo)
	dashboardService := service.NewDashboardService(analyticsRepo, customerRepo, productRepo)
	editorService := service.NewEditorService(referenceService, invoiceService, service.EditorConfig{
		SessionTTL:     cfg.Editor.SessionTTL,
		MaxSessions:    cfg.Editor.MaxSessions,
		DefaultDueDays: cfg.Invoice.DefaultDueDays,
	})

	rateLimiter := middleware.NewUserRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: float64(cfg.RateLimit.Requests) / float64(max(cfg.RateLimit.Duration, 1)),
		BurstSize:         cfg.RateLimit.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	})

	// Initialize handlers
	handlers := &routes.Handlers{
		Customer:      handler.NewCustomerHandler(customerService, priceService),
		Product:       handler.NewProductHandler(productService, cfg.Storage.UploadMaxSize),
		SenderProfile: handler.NewSenderProfileHandler(profileService),
		Invoice:       handler.NewInvoiceHandler(invoiceService),
		Editor:        handler.NewEditorHandler(editorService),
		Dashboard:     handler.NewDashboardHandler(dashboardService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background jobs
	go editorService.Run(ctx, cfg.Editor.CleanupInterval)
	go rateLimiter.Run(ctx)
	go runEvery(ctx, cfg.Invoice.OverdueInterval, "overdue sweep", func(ctx context.Context) error {
		n, err := invoiceService.MarkOverdue(ctx, time.Now())
		if n > 0 {
			log.Printf("Marked %d invoices overdue", n)
		}
		return err
	})
	go runEvery(ctx, time.Hour, "idempotency cleanup", func(ctx context.Context) error {
		_, err := idempotencyRepo.DeleteExpired(ctx)
		return err
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
		log.Printf("Environment: %s", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("Server exited")
}

// runEvery calls fn once per interval until ctx is cancelled
func runEvery(ctx context.Context, interval time.Duration, name string, fn func(context.Context) error) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := fn(ctx); err != nil {
				log.Printf("%s failed: %v", name, err)
			}
		}
	}
}
