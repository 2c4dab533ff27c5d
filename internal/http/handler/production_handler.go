package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/service"
	"go.uber.org/zap"
)

// ProductionHandler handles HTTP requests for production workflows and tasks
type ProductionHandler struct {
	productionService *service.ProductionService
	logger            *zap.Logger
}

// NewProductionHandler creates a new ProductionHandler
func NewProductionHandler(productionService *service.ProductionService, logger *zap.Logger) *ProductionHandler {
	return &ProductionHandler{
		productionService: productionService,
		logger:            logger,
	}
}

// AssignProduction hands the enquiry to a production lead
func (h *ProductionHandler) AssignProduction(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	var req domain.AssignProductionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	workflow, err := h.productionService.AssignProduction(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to assign production", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleProductionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, workflow)
}

// GetByEnquiry returns the enquiry's production workflow with tasks
func (h *ProductionHandler) GetByEnquiry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	workflow, err := h.productionService.GetByEnquiry(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get production workflow", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleProductionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, workflow)
}

// Start begins production for the workflow
func (h *ProductionHandler) Start(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "workflowId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid workflow ID: must be a valid UUID")
		return
	}

	workflow, err := h.productionService.StartWorkflow(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to start production", zap.Error(err), zap.String("workflow_id", id.String()))
		h.handleProductionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, workflow)
}

// Complete finishes production for the workflow
func (h *ProductionHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "workflowId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid workflow ID: must be a valid UUID")
		return
	}

	workflow, err := h.productionService.CompleteWorkflow(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to complete production", zap.Error(err), zap.String("workflow_id", id.String()))
		h.handleProductionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, workflow)
}

// CreateTask adds a task step to the workflow
func (h *ProductionHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "workflowId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid workflow ID: must be a valid UUID")
		return
	}

	var req domain.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	task, err := h.productionService.CreateTask(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to create task", zap.Error(err), zap.String("workflow_id", id.String()))
		h.handleProductionError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, task)
}

// UpdateTask applies a partial update to a task
func (h *ProductionHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "taskId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid task ID: must be a valid UUID")
		return
	}

	var req domain.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	task, err := h.productionService.UpdateTask(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update task", zap.Error(err), zap.String("task_id", id.String()))
		h.handleProductionError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, task)
}

// handleProductionError maps service errors to HTTP status codes
func (h *ProductionHandler) handleProductionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrTasksIncomplete):
		respondWithError(w, http.StatusConflict, "All production tasks must be completed first")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, service.ErrUserContextRequired):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
