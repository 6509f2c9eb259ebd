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

	"commission-api/internal/api"
	"commission-api/internal/commission"
	"commission-api/internal/config"
	"commission-api/internal/database"
	"commission-api/internal/middleware"
	"commission-api/internal/models"
	"commission-api/internal/services"
	"commission-api/pkg/logging"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatal("Failed to initialize config:", err)
	}
	cfg := config.AppConfig

	// Initialize logging
	logging.InitLogging()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.CloseDatabase()

	// Wire commission attribution
	repo := database.NewCommissionRepository(database.GetDB())
	breakdowns := services.NewBreakdownService(repo,
		services.NewRedisService(database.GetRedis()),
		time.Duration(cfg.BreakdownCacheMinutes)*time.Minute)
	notifier := services.NewWebhookNotifier(cfg.WebhookURL, cfg.WebhookSecret)
	processor := commission.NewProcessor(repo,
		commission.WithAtomicFanout(cfg.AtomicFanout),
		commission.WithRecordedHook(recordedHook(breakdowns, notifier)),
	)
	handler := api.NewHandler(database.GetDB(), repo, processor, breakdowns)

	// Set Gin mode
	gin.SetMode(cfg.Mode)

	// Create Gin engine
	r := gin.Default()

	// Setup routes
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	api.SetupRoutes(r, handler, cfg.ServiceName, middleware.RequestID(), limiter.RateLimit())

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logging.Infof("Starting server on port %s (atomic fan-out: %t)", cfg.Port, cfg.AtomicFanout)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return limiter.Cleanup(gctx, time.Minute)
	})
	g.Go(func() error {
		<-gctx.Done()
		logging.Infof("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(),
			time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logging.Errorf("Server stopped with error: %v", err)
		database.CloseDatabase()
		os.Exit(1)
	}
	logging.Infof("Server stopped")
}

// recordedHook invalidates cached breakdowns and notifies the payroll webhook
// whenever commission rows are written
func recordedHook(breakdowns *services.BreakdownService, notifier *services.WebhookNotifier) func(context.Context, []models.EmployeeCommission) {
	return func(ctx context.Context, records []models.EmployeeCommission) {
		breakdowns.Invalidate(ctx, records)
		go notifier.NotifyRecorded(context.WithoutCancel(ctx), records)
	}
}
