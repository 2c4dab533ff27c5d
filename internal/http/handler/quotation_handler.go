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

// QuotationHandler handles HTTP requests for quotations
type QuotationHandler struct {
	quotationService *service.QuotationService
	logger           *zap.Logger
}

// NewQuotationHandler creates a new QuotationHandler
func NewQuotationHandler(quotationService *service.QuotationService, logger *zap.Logger) *QuotationHandler {
	return &QuotationHandler{
		quotationService: quotationService,
		logger:           logger,
	}
}

// Create raises a new quotation
func (h *QuotationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateQuotationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create quotation", zap.Error(err))
		h.handleDocumentError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/quotations/"+quotation.ID.String())
	respondJSON(w, http.StatusCreated, quotation)
}

// GetByID returns a quotation with its items
func (h *QuotationHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	quotation, err := h.quotationService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get quotation", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleDocumentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// ListByEnquiry returns the quotations raised against an enquiry
func (h *QuotationHandler) ListByEnquiry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	quotations, err := h.quotationService.ListByEnquiry(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list quotations", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleDocumentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotations)
}

// UpdateStatus moves the quotation through its lifecycle
func (h *QuotationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid quotation ID: must be a valid UUID")
		return
	}

	var req domain.UpdateDocumentStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	quotation, err := h.quotationService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update quotation status", zap.Error(err), zap.String("quotation_id", id.String()))
		h.handleDocumentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, quotation)
}

// handleDocumentError maps service errors to HTTP status codes. Shared with
// the invoice handler.
func (h *QuotationHandler) handleDocumentError(w http.ResponseWriter, err error) {
	handleDocumentError(w, err)
}

func handleDocumentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserContextRequired):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
