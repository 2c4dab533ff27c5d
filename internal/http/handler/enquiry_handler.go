package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/repository"
	"github.com/solmount/enquiry-api/internal/service"
	"go.uber.org/zap"
)

// EnquiryHandler handles HTTP requests for enquiries and their workflow
type EnquiryHandler struct {
	enquiryService  *service.EnquiryService
	workflowService *service.WorkflowService
	logger          *zap.Logger
}

// NewEnquiryHandler creates a new EnquiryHandler
func NewEnquiryHandler(enquiryService *service.EnquiryService, workflowService *service.WorkflowService, logger *zap.Logger) *EnquiryHandler {
	return &EnquiryHandler{
		enquiryService:  enquiryService,
		workflowService: workflowService,
		logger:          logger,
	}
}

// List returns a paginated, filtered list of enquiries visible to the caller
func (h *EnquiryHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	filters := parseEnquiryFilters(r)

	sort := repository.DefaultSortConfig()
	if field := r.URL.Query().Get("sortBy"); field != "" {
		sort.Field = field
	}
	if order := r.URL.Query().Get("sortOrder"); order != "" {
		sort.Order = repository.ParseSortOrder(order)
	}

	result, err := h.enquiryService.List(r.Context(), page, pageSize, filters, sort)
	if err != nil {
		h.logger.Error("failed to list enquiries", zap.Error(err))
		h.handleEnquiryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListWorkedOn returns enquiries the caller created or previously worked on
func (h *EnquiryHandler) ListWorkedOn(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)

	result, err := h.enquiryService.ListWorkedOn(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("failed to list worked-on enquiries", zap.Error(err))
		h.handleEnquiryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create registers a new enquiry and allocates its order number
func (h *EnquiryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateEnquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	enquiry, err := h.workflowService.CreateEnquiry(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create enquiry", zap.Error(err))
		h.handleEnquiryError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/enquiries/"+enquiry.ID.String())
	respondJSON(w, http.StatusCreated, enquiry)
}

// GetByID returns a single enquiry
func (h *EnquiryHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	enquiry, err := h.enquiryService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get enquiry", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleEnquiryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, enquiry)
}

// SetStatus moves the enquiry to a new workflow stage
func (h *EnquiryHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	var req domain.SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	enquiry, err := h.workflowService.SetStatus(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to set enquiry status", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleEnquiryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, enquiry)
}

// Assign hands the enquiry to another person without changing its stage
func (h *EnquiryHandler) Assign(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	var req domain.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	enquiry, err := h.workflowService.Assign(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to assign enquiry", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleEnquiryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, enquiry)
}

// ConfirmOrder confirms the enquiry as an order and hands it to production
func (h *EnquiryHandler) ConfirmOrder(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	var req domain.ConfirmOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Empty body is valid - will use defaults
		if err.Error() != "EOF" {
			respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
			return
		}
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	enquiry, err := h.workflowService.ConfirmOrder(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to confirm order", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleEnquiryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, enquiry)
}

// GetHistory returns the enquiry's full stage transition history
func (h *EnquiryHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	history, err := h.enquiryService.GetHistory(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get enquiry history", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleEnquiryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// ListNotes returns the enquiry's communication log
func (h *EnquiryHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	notes, err := h.enquiryService.ListNotes(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list enquiry notes", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleEnquiryError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, notes)
}

// AddNote appends a note to the enquiry's communication log
func (h *EnquiryHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enquiry ID: must be a valid UUID")
		return
	}

	var req domain.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	note, err := h.enquiryService.AddNote(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to add enquiry note", zap.Error(err), zap.String("enquiry_id", id.String()))
		h.handleEnquiryError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, note)
}

// handleEnquiryError maps service errors to HTTP status codes
func (h *EnquiryHandler) handleEnquiryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "Enquiry not found")
	case errors.Is(err, service.ErrClientNotFound):
		respondWithError(w, http.StatusNotFound, "Client not found")
	case errors.Is(err, service.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrInvalidStatus), errors.Is(err, service.ErrInvalidInput):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidTransition):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, service.ErrUserContextRequired), errors.Is(err, service.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// parsePagination reads page/pageSize query params with defaults
func parsePagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > repository.MaxPageSize {
		pageSize = repository.MaxPageSize
	}
	return page, pageSize
}

// parseEnquiryFilters builds list filters from query parameters
func parseEnquiryFilters(r *http.Request) *repository.EnquiryFilters {
	filters := &repository.EnquiryFilters{}
	q := r.URL.Query()

	if s := q.Get("status"); s != "" {
		status := domain.EnquiryStatus(s)
		filters.Status = &status
	}
	if m := q.Get("materialType"); m != "" {
		material := domain.MaterialType(m)
		filters.MaterialType = &material
	}
	if cid := q.Get("clientId"); cid != "" {
		if id, err := uuid.Parse(cid); err == nil {
			filters.ClientID = &id
		}
	}
	if aid := q.Get("assignedTo"); aid != "" {
		if id, err := uuid.Parse(aid); err == nil {
			filters.AssignedTo = &id
		}
	}
	if eid := q.Get("enquiryBy"); eid != "" {
		if id, err := uuid.Parse(eid); err == nil {
			filters.EnquiryBy = &id
		}
	}
	if ho := q.Get("hasOrder"); ho != "" {
		hasOrder := ho == "true"
		filters.HasOrder = &hasOrder
	}
	if after := q.Get("createdAfter"); after != "" {
		if t, err := time.Parse(time.RFC3339, after); err == nil {
			filters.CreatedAfter = &t
		}
	}
	if before := q.Get("createdBefore"); before != "" {
		if t, err := time.Parse(time.RFC3339, before); err == nil {
			filters.CreatedBefore = &t
		}
	}
	if search := q.Get("search"); search != "" {
		filters.SearchQuery = &search
	}

	return filters
}
