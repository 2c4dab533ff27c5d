package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/solmount/enquiry-api/internal/auth"
	"github.com/solmount/enquiry-api/internal/config"
	"github.com/solmount/enquiry-api/internal/database"
	"github.com/solmount/enquiry-api/internal/http/handler"
	"github.com/solmount/enquiry-api/internal/http/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	authHandler         *handler.AuthHandler
	userHandler         *handler.UserHandler
	clientHandler       *handler.ClientHandler
	enquiryHandler      *handler.EnquiryHandler
	designHandler       *handler.DesignHandler
	productionHandler   *handler.ProductionHandler
	dispatchHandler     *handler.DispatchHandler
	quotationHandler    *handler.QuotationHandler
	invoiceHandler      *handler.InvoiceHandler
	notificationHandler *handler.NotificationHandler
	dashboardHandler    *handler.DashboardHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	clientHandler *handler.ClientHandler,
	enquiryHandler *handler.EnquiryHandler,
	designHandler *handler.DesignHandler,
	productionHandler *handler.ProductionHandler,
	dispatchHandler *handler.DispatchHandler,
	quotationHandler *handler.QuotationHandler,
	invoiceHandler *handler.InvoiceHandler,
	notificationHandler *handler.NotificationHandler,
	dashboardHandler *handler.DashboardHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		authHandler:         authHandler,
		userHandler:         userHandler,
		clientHandler:       clientHandler,
		enquiryHandler:      enquiryHandler,
		designHandler:       designHandler,
		productionHandler:   productionHandler,
		dispatchHandler:     dispatchHandler,
		quotationHandler:    quotationHandler,
		invoiceHandler:      invoiceHandler,
		notificationHandler: notificationHandler,
		dashboardHandler:    dashboardHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with pool stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
			},
		})
	})

	// Combined readiness check
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		code := http.StatusOK
		if !allHealthy {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/login", rt.authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)

			// Users
			r.Route("/users", func(r chi.Router) {
				r.Get("/", rt.userHandler.List)
				r.Post("/", rt.userHandler.Create)
				r.Get("/role/{role}", rt.userHandler.ListByRole)
				r.Get("/{id}", rt.userHandler.GetByID)
				r.Put("/{id}", rt.userHandler.Update)
				r.Delete("/{id}", rt.userHandler.Deactivate)
			})

			// Clients
			r.Route("/clients", func(r chi.Router) {
				r.Get("/", rt.clientHandler.List)
				r.Post("/", rt.clientHandler.Create)
				r.Get("/{id}", rt.clientHandler.GetByID)
				r.Put("/{id}", rt.clientHandler.Update)
				r.Delete("/{id}", rt.clientHandler.Delete)
			})

			// Enquiries and their workflow
			r.Route("/enquiries", func(r chi.Router) {
				r.Get("/", rt.enquiryHandler.List)
				r.Post("/", rt.enquiryHandler.Create)
				r.Get("/worked-on", rt.enquiryHandler.ListWorkedOn)
				r.Get("/{id}", rt.enquiryHandler.GetByID)

				// Workflow operations
				r.Put("/{id}/status", rt.enquiryHandler.SetStatus)
				r.Put("/{id}/assign", rt.enquiryHandler.Assign)
				r.Post("/{id}/confirm-order", rt.enquiryHandler.ConfirmOrder)
				r.Get("/{id}/history", rt.enquiryHandler.GetHistory)

				// Communication log
				r.Get("/{id}/notes", rt.enquiryHandler.ListNotes)
				r.Post("/{id}/notes", rt.enquiryHandler.AddNote)

				// Design stage
				r.Post("/{id}/design/assign", rt.designHandler.AssignDesigner)
				r.Get("/{id}/design", rt.designHandler.GetByEnquiry)
				r.Put("/{id}/design", rt.designHandler.SaveProgress)
				r.Post("/{id}/design/complete", rt.designHandler.Complete)
				r.Get("/{id}/design/attachments", rt.designHandler.ListAttachments)
				r.Post("/{id}/design/attachments", rt.designHandler.AddAttachment)

				// Production stage
				r.Post("/{id}/production/assign", rt.productionHandler.AssignProduction)
				r.Get("/{id}/production", rt.productionHandler.GetByEnquiry)

				// Dispatch stage
				r.Post("/{id}/dispatch/assign", rt.dispatchHandler.AssignDispatch)
				r.Get("/{id}/dispatch", rt.dispatchHandler.GetByEnquiry)
				r.Put("/{id}/dispatch", rt.dispatchHandler.Update)

				// Financial documents
				r.Get("/{id}/quotations", rt.quotationHandler.ListByEnquiry)
				r.Get("/{id}/invoices", rt.invoiceHandler.ListByEnquiry)
			})

			// Design attachments (addressed by attachment ID)
			r.Delete("/attachments/{attachmentId}", rt.designHandler.DeleteAttachment)

			// Production workflows and tasks
			r.Route("/production", func(r chi.Router) {
				r.Post("/{workflowId}/start", rt.productionHandler.Start)
				r.Post("/{workflowId}/complete", rt.productionHandler.Complete)
				r.Post("/{workflowId}/tasks", rt.productionHandler.CreateTask)
				r.Put("/tasks/{taskId}", rt.productionHandler.UpdateTask)
			})

			// Dispatch queue
			r.Get("/dispatch/my-queue", rt.dispatchHandler.MyQueue)

			// Quotations
			r.Route("/quotations", func(r chi.Router) {
				r.Post("/", rt.quotationHandler.Create)
				r.Get("/{id}", rt.quotationHandler.GetByID)
				r.Put("/{id}/status", rt.quotationHandler.UpdateStatus)
			})

			// Invoices
			r.Route("/invoices", func(r chi.Router) {
				r.Post("/", rt.invoiceHandler.Create)
				r.Get("/{id}", rt.invoiceHandler.GetByID)
				r.Put("/{id}/status", rt.invoiceHandler.UpdateStatus)
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/count", rt.notificationHandler.GetUnreadCount)
				r.Put("/read-all", rt.notificationHandler.MarkAllAsRead)
				r.Put("/{id}/read", rt.notificationHandler.MarkAsRead)
			})

			// Dashboard
			r.Get("/dashboard/metrics", rt.dashboardHandler.GetMetrics)
			r.Get("/dashboard/workloads", rt.dashboardHandler.GetWorkloads)
		})
	})

	return r
}
