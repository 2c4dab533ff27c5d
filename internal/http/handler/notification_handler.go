package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/service"
	"go.uber.org/zap"
)

// NotificationHandler handles HTTP requests for notifications
type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger,
	}
}

// List returns the caller's notifications, newest first
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePagination(r)
	unreadOnly := r.URL.Query().Get("unreadOnly") == "true"
	notificationType := r.URL.Query().Get("type")

	result, err := h.notificationService.GetForCurrentUser(r.Context(), page, pageSize, unreadOnly, notificationType)
	if err != nil {
		h.logger.Error("failed to list notifications", zap.Error(err))
		h.handleNotificationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetUnreadCount returns the caller's unread notification count
func (h *NotificationHandler) GetUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notificationService.GetUnreadCount(r.Context())
	if err != nil {
		h.logger.Error("failed to get unread count", zap.Error(err))
		h.handleNotificationError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, count)
}

// MarkAsRead marks a single notification as read
func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid notification ID: must be a valid UUID")
		return
	}

	if err := h.notificationService.MarkAsRead(r.Context(), id); err != nil {
		h.logger.Error("failed to mark notification as read", zap.Error(err), zap.String("notification_id", id.String()))
		h.handleNotificationError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// MarkAllAsRead marks all of the caller's notifications as read
func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	if err := h.notificationService.MarkAllAsReadForUser(r.Context()); err != nil {
		h.logger.Error("failed to mark all notifications as read", zap.Error(err))
		h.handleNotificationError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleNotificationError maps service errors to HTTP status codes
func (h *NotificationHandler) handleNotificationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotificationNotFound):
		respondWithError(w, http.StatusNotFound, "Notification not found")
	case errors.Is(err, service.ErrNotificationNotOwned):
		respondWithError(w, http.StatusForbidden, "Notification belongs to another user")
	case errors.Is(err, service.ErrUserContextRequired):
		respondWithError(w, http.StatusUnauthorized, "Unauthorized")
	default:
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}
