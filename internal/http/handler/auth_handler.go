package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/solmount/enquiry-api/internal/auth"
	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/service"
	"go.uber.org/zap"
)

// AuthHandler handles login and identity endpoints
type AuthHandler struct {
	userService *service.UserService
	validator   *auth.JWTValidator
	logger      *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService *service.UserService, validator *auth.JWTValidator, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		validator:   validator,
		logger:      logger,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string          `json:"token"`
	User  *domain.UserDTO `json:"user"`
}

// Login authenticates credentials and issues an access token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := h.validator.IssueToken(user)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	dto, err := h.userService.GetByID(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed to load user", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{Token: token, User: dto})
}

// Me returns the authenticated user's profile
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.userService.GetByID(r.Context(), userCtx.UserID)
	if err != nil {
		h.logger.Error("failed to get current user", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondJSON(w, http.StatusOK, user)
}
