package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/auth"
	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/service"
	"go.uber.org/zap"
)

// DispatchHandler handles HTTP requests for dispatch work
type DispatchHandler struct {
	dispatchService *service.DispatchService
	logger          *zap.Logger
}

// NewDispatchHandler creates a new DispatchHandler
func NewDispatchHandler(dispatchService *service.DispatchService, logger *zap.Logger) *DispatchHandler {
	return &DispatchHandler{
		dispatchService: dispatchService,
		logger:          logger,
	}
}

// AssignDispatch hands the enquiry to a dispatch assignee
func (h *DispatchHandler) AssignDispatch(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	var req domain.AssignDispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	work, err := h.dispatchService.AssignDispatch(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to assign dispatch", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleDispatchError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, work)
}

// GetByEnquiry returns the enquiry's dispatch work record
func (h *DispatchHandler) GetByEnquiry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	work, err := h.dispatchService.GetByEnquiry(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get dispatch work", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleDispatchError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, work)
}

// Update applies a partial update to the dispatch work record
func (h *DispatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	var req domain.UpdateDispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	work, err := h.dispatchService.UpdateDispatch(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update dispatch work", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleDispatchError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, work)
}

// MyQueue returns the caller's pending dispatch work
func (h *DispatchHandler) MyQueue(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	works, err := h.dispatchService.ListForAssignee(r.Context(), userCtx.UserID)
	if err != nil {
		h.logger.Error("failed to list dispatch queue", zap.Error(err))
		h.handleDispatchError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, works)
}

// handleDispatchError maps service errors to HTTP status codes
func (h *DispatchHandler) handleDispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "User not found")
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
