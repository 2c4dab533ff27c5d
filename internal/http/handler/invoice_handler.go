package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/service"
	"go.uber.org/zap"
)

// InvoiceHandler handles HTTP requests for invoices
type InvoiceHandler struct {
	invoiceService *service.InvoiceService
	logger         *zap.Logger
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *service.InvoiceService, logger *zap.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logger:         logger,
	}
}

// Create raises a new invoice
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	invoice, err := h.invoiceService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create invoice", zap.Error(err))
		handleDocumentError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/invoices/"+invoice.ID.String())
	respondJSON(w, http.StatusCreated, invoice)
}

// GetByID returns an invoice with its items
func (h *InvoiceHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID: must be a valid UUID")
		return
	}

	invoice, err := h.invoiceService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get invoice", zap.Error(err), zap.String("invoice_id", id.String()))
		handleDocumentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}

// ListByEnquiry returns the invoices raised against an enquiry
func (h *InvoiceHandler) ListByEnquiry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	invoices, err := h.invoiceService.ListByEnquiry(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list invoices", zap.Error(err), zap.String("enquiry_id", id.String()))
		handleDocumentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, invoices)
}

// UpdateStatus moves the invoice through its lifecycle
func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice ID: must be a valid UUID")
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

	invoice, err := h.invoiceService.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.logger.Error("failed to update invoice status", zap.Error(err), zap.String("invoice_id", id.String()))
		handleDocumentError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, invoice)
}
