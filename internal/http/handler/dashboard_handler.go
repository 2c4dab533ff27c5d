package handler

import (
	"net/http"

	"github.com/solmount/enquiry-api/internal/service"
	"go.uber.org/zap"
)

// DashboardHandler handles HTTP requests for dashboard metrics
type DashboardHandler struct {
	dashboardService *service.DashboardService
	logger           *zap.Logger
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		logger:           logger,
	}
}

// GetMetrics returns aggregate enquiry metrics
func (h *DashboardHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.dashboardService.GetMetrics(r.Context())
	if err != nil {
		h.logger.Error("failed to get dashboard metrics", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get dashboard metrics")
		return
	}

	respondJSON(w, http.StatusOK, metrics)
}

// GetWorkloads returns live assignment counts per user
func (h *DashboardHandler) GetWorkloads(w http.ResponseWriter, r *http.Request) {
	workloads, err := h.dashboardService.GetWorkloads(r.Context())
	if err != nil {
		h.logger.Error("failed to get workloads", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to get workloads")
		return
	}

	respondJSON(w, http.StatusOK, workloads)
}
