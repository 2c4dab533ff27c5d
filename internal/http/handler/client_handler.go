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

// ClientHandler handles HTTP requests for clients
type ClientHandler struct {
	clientService *service.ClientService
	logger        *zap.Logger
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *service.ClientService, logger *zap.Logger) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		logger:        logger,
	}
}

// List returns a paginated list of clients, optionally filtered by search term
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	search := r.URL.Query().Get("search")

	result, err := h.clientService.List(r.Context(), search, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list clients", zap.Error(err))
		h.handleClientError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Create registers a new client
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	client, err := h.clientService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create client", zap.Error(err))
		h.handleClientError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/clients/"+client.ID.String())
	respondJSON(w, http.StatusCreated, client)
}

// GetByID returns a single client
func (h *ClientHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid client ID: must be a valid UUID")
		return
	}

	client, err := h.clientService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get client", zap.Error(err), zap.String("client_id", id.String()))
		h.handleClientError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, client)
}

// Update applies a partial update to a client
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid client ID: must be a valid UUID")
		return
	}

	var req domain.UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	client, err := h.clientService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update client", zap.Error(err), zap.String("client_id", id.String()))
		h.handleClientError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, client)
}

// Delete removes a client with no enquiries
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid client ID: must be a valid UUID")
		return
	}

	if err := h.clientService.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete client", zap.Error(err), zap.String("client_id", id.String()))
		h.handleClientError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleClientError maps service errors to HTTP status codes
func (h *ClientHandler) handleClientError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrClientNotFound):
		respondWithError(w, http.StatusNotFound, "Client not found")
	case errors.Is(err, service.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrUserContextRequired):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
