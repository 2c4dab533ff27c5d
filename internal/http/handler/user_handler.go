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

// UserHandler handles HTTP requests for user accounts
type UserHandler struct {
	userService *service.UserService
	logger      *zap.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{
		userService: userService,
		logger:      logger,
	}
}

// List returns users, optionally filtered by role
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	role := domain.UserRole(r.URL.Query().Get("role"))

	result, err := h.userService.List(r.Context(), role, page, pageSize)
	if err != nil {
		h.logger.Error("failed to list users", zap.Error(err))
		h.handleUserError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListByRole returns all active users holding a role
func (h *UserHandler) ListByRole(w http.ResponseWriter, r *http.Request) {
	role := domain.UserRole(chi.URLParam(r, "role"))

	users, err := h.userService.ListByRole(r.Context(), role)
	if err != nil {
		h.logger.Error("failed to list users by role", zap.Error(err), zap.String("role", string(role)))
		h.handleUserError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, users)
}

// Create registers a new user account
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.userService.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create user", zap.Error(err))
		h.handleUserError(w, err)
		return
	}

	w.Header().Set("Location", "/api/v1/users/"+user.ID.String())
	respondJSON(w, http.StatusCreated, user)
}

// GetByID returns a single user
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID: must be a valid UUID")
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get user", zap.Error(err), zap.String("user_id", id.String()))
		h.handleUserError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Update applies a partial update to a user account
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID: must be a valid UUID")
		return
	}

	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.userService.Update(r.Context(), id, &req)
	if err != nil {
		h.logger.Error("failed to update user", zap.Error(err), zap.String("user_id", id.String()))
		h.handleUserError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Deactivate disables a user account
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user ID: must be a valid UUID")
		return
	}

	if err := h.userService.Deactivate(r.Context(), id); err != nil {
		h.logger.Error("failed to deactivate user", zap.Error(err), zap.String("user_id", id.String()))
		h.handleUserError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleUserError maps service errors to HTTP status codes
func (h *UserHandler) handleUserError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		respondWithError(w, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrInvalidRole):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrConflict):
		respondWithError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPermissionDenied):
		respondWithError(w, http.StatusForbidden, "Access denied")
	case errors.Is(err, service.ErrUserContextRequired):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
