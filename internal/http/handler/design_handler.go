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

// DesignHandler handles HTTP requests for design work and attachments
type DesignHandler struct {
	designService *service.DesignService
	logger        *zap.Logger
}

// NewDesignHandler creates a new DesignHandler
func NewDesignHandler(designService *service.DesignService, logger *zap.Logger) *DesignHandler {
	return &DesignHandler{
		designService: designService,
		logger:        logger,
	}
}

// AssignDesigner moves the enquiry into design and assigns a designer
func (h *DesignHandler) AssignDesigner(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	var req domain.AssignDesignerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	work, err := h.designService.AssignDesigner(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to assign designer", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleDesignError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, work)
}

// GetByEnquiry returns the enquiry's design work record
func (h *DesignHandler) GetByEnquiry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	work, err := h.designService.GetByEnquiry(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get design work", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleDesignError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, work)
}

// SaveProgress stores the designer's in-flight notes and requirements
func (h *DesignHandler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	var req domain.SaveDesignProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	work, err := h.designService.SaveProgress(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to save design progress", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleDesignError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, work)
}

// Complete finishes design work and returns the enquiry to the salesperson
func (h *DesignHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	var req domain.CompleteDesignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Empty body is valid - will use defaults
		if err.Error() != "EOF" {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
	}

	work, err := h.designService.CompleteAndReturn(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to complete design", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleDesignError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, work)
}

// AddAttachment records an uploaded design file against the enquiry
func (h *DesignHandler) AddAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	var req domain.CreateAttachmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	attachment, err := h.designService.AddAttachment(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to add attachment", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleDesignError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, attachment)
}

// ListAttachments returns the enquiry's design attachments
func (h *DesignHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	attachments, err := h.designService.ListAttachments(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list attachments", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleDesignError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, attachments)
}

// DeleteAttachment removes an attachment record
func (h *DesignHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	attachmentID, err := uuid.Parse(chi.URLParam(r, "attachmentId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid attachment ID: must be a valid UUID")
		return
	}

	if err := h.designService.DeleteAttachment(r.Context(), attachmentID); err != nil {
		h.logger.Error("failed to delete attachment", zap.Error(err), zap.String("attachment_id", attachmentID.String()))
		h.handleDesignError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDesignError maps service errors to HTTP status codes
func (h *DesignHandler) handleDesignError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrInvalidRole):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, service.ErrUserContextRequired):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
