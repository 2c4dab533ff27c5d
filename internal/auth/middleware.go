package auth

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/solmount/enquiry-api/internal/domain"
	"go.uber.org/zap"
)

// Middleware authenticates requests and stores the user context
type Middleware struct {
	validator *JWTValidator
	logger    *zap.Logger
}

func NewMiddleware(validator *JWTValidator, logger *zap.Logger) *Middleware {
	return &Middleware{
		validator: validator,
		logger:    logger,
	}
}

// Authenticate validates the Bearer token and injects the user context
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			m.unauthorized(w, "missing authorization header")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			m.unauthorized(w, "invalid authorization header format")
			return
		}

		userCtx, err := m.validator.ValidateToken(parts[1])
		if err != nil {
			m.logger.Debug("token validation failed", zap.Error(err))
			m.unauthorized(w, "invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithUserContext(r.Context(), userCtx)))
	})
}

// RequireRole rejects requests whose user lacks all of the given roles
func (m *Middleware) RequireRole(roles ...domain.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userCtx, ok := FromContext(r.Context())
			if !ok {
				m.unauthorized(w, "missing user context")
				return
			}
			if !userCtx.HasAnyRole(roles...) {
				m.forbidden(w, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) unauthorized(w http.ResponseWriter, detail string) {
	m.writeError(w, http.StatusUnauthorized, domain.ErrorTypeUnauthorized, "Unauthorized", detail)
}

func (m *Middleware) forbidden(w http.ResponseWriter, detail string) {
	m.writeError(w, http.StatusForbidden, domain.ErrorTypeForbidden, "Forbidden", detail)
}

func (m *Middleware) writeError(w http.ResponseWriter, status int, errType, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	apiErr := domain.APIError{
		Type:   errType,
		Title:  title,
		Status: status,
		Detail: detail,
	}
	if err := json.NewEncoder(w).Encode(apiErr); err != nil {
		m.logger.Error("failed to encode error response", zap.Error(err))
	}
}
