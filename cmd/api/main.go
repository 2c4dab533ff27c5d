package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/solmount/enquiry-api/internal/auth"
	"github.com/solmount/enquiry-api/internal/config"
	"github.com/solmount/enquiry-api/internal/database"
	"github.com/solmount/enquiry-api/internal/http/handler"
	"github.com/solmount/enquiry-api/internal/http/middleware"
	"github.com/solmount/enquiry-api/internal/http/router"
	"github.com/solmount/enquiry-api/internal/jobs"
	"github.com/solmount/enquiry-api/internal/logger"
	"github.com/solmount/enquiry-api/internal/realtime"
	"github.com/solmount/enquiry-api/internal/repository"
	"github.com/solmount/enquiry-api/internal/service"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&cfg.Logging, &cfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.Int("port", cfg.App.Port),
	)

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Schema migrations are run by cmd/migrate; development keeps the
	// convenience of auto-migration
	if cfg.App.Environment == "development" {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to auto-migrate: %w", err)
		}
		log.Info("Auto-migration completed")
	}

	// Real-time channel is optional; the API degrades to durable
	// notifications only when Redis is not configured
	var channel realtime.Channel
	if cfg.Redis.Enabled {
		redisChannel, err := realtime.NewRedisChannel(ctx, &cfg.Redis, log)
		if err != nil {
			log.Warn("Redis connection failed, continuing without real-time events", zap.Error(err))
			channel = realtime.NewNoopChannel()
		} else {
			log.Info("Real-time channel connected", zap.String("addr", cfg.Redis.Addr))
			channel = redisChannel
		}
	} else {
		log.Info("Real-time channel disabled")
		channel = realtime.NewNoopChannel()
	}
	defer func() { _ = channel.Close() }()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	clientRepo := repository.NewClientRepository(db)
	enquiryRepo := repository.NewEnquiryRepository(db)
	historyRepo := repository.NewEnquiryStatusHistoryRepository(db)
	noteRepo := repository.NewEnquiryNoteRepository(db)
	designRepo := repository.NewDesignWorkRepository(db)
	attachmentRepo := repository.NewDesignAttachmentRepository(db)
	productionRepo := repository.NewProductionRepository(db)
	dispatchRepo := repository.NewDispatchRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	notificationRepo := repository.NewNotificationRepositoryWithCap(db, cfg.Jobs.NotificationCap)
	sequenceRepo := repository.NewOrderSequenceRepository(db)

	// Initialize services
	notificationService := service.NewNotificationService(notificationRepo, channel, log)
	workflowService := service.NewWorkflowService(
		enquiryRepo,
		historyRepo,
		noteRepo,
		userRepo,
		clientRepo,
		designRepo,
		productionRepo,
		sequenceRepo,
		notificationService,
		service.WorkflowConfig{Strict: true},
		log,
	)
	enquiryService := service.NewEnquiryService(enquiryRepo, historyRepo, noteRepo, notificationService, log)
	designService := service.NewDesignService(designRepo, attachmentRepo, enquiryRepo, userRepo, workflowService, notificationService, log)
	productionService := service.NewProductionService(productionRepo, enquiryRepo, userRepo, workflowService, notificationService, log)
	dispatchService := service.NewDispatchService(dispatchRepo, enquiryRepo, userRepo, workflowService, notificationService, log)
	clientService := service.NewClientService(clientRepo, log)
	userService := service.NewUserService(userRepo, log)
	quotationService := service.NewQuotationService(quotationRepo, enquiryRepo, notificationService, log)
	invoiceService := service.NewInvoiceService(invoiceRepo, enquiryRepo, notificationService, log)
	dashboardService := service.NewDashboardService(enquiryRepo, userRepo, log)

	// Initialize middleware
	jwtValidator := auth.NewJWTValidator(&cfg.Auth)
	authMiddleware := auth.NewMiddleware(jwtValidator, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(userService, jwtValidator, log)
	userHandler := handler.NewUserHandler(userService, log)
	clientHandler := handler.NewClientHandler(clientService, log)
	enquiryHandler := handler.NewEnquiryHandler(enquiryService, workflowService, log)
	designHandler := handler.NewDesignHandler(designService, log)
	productionHandler := handler.NewProductionHandler(productionService, log)
	dispatchHandler := handler.NewDispatchHandler(dispatchService, log)
	quotationHandler := handler.NewQuotationHandler(quotationService, log)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService, log)
	notificationHandler := handler.NewNotificationHandler(notificationService, log)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, log)

	// Setup router
	rt := router.NewRouter(
		cfg,
		log,
		db,
		authMiddleware,
		rateLimiter,
		authHandler,
		userHandler,
		clientHandler,
		enquiryHandler,
		designHandler,
		productionHandler,
		dispatchHandler,
		quotationHandler,
		invoiceHandler,
		notificationHandler,
		dashboardHandler,
	)

	// Background jobs
	scheduler := jobs.NewScheduler(log)
	pruneJob := jobs.NewNotificationPruneJob(notificationRepo, log, time.Minute)
	if err := scheduler.AddJob(jobs.NotificationPruneJobName, cfg.Jobs.NotificationPruneCron, pruneJob.Run); err != nil {
		log.Error("Failed to register notification prune job", zap.Error(err))
	} else {
		scheduler.Start()
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	// Start server in goroutine
	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	// Wait for interrupt signal
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		stopCtx := scheduler.Stop()
		<-stopCtx.Done()
		log.Info("Scheduler stopped")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
