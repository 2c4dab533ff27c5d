package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/auth"
	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/mapper"
	"github.com/solmount/enquiry-api/internal/realtime"
	"github.com/solmount/enquiry-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotificationNotFound is returned when a notification is not found
var ErrNotificationNotFound = errors.New("notification not found")

// ErrNotificationNotOwned is returned when trying to access a notification owned by another user
var ErrNotificationNotOwned = errors.New("notification does not belong to current user")

// Payload describes a workflow event fanned out to users and roles
type Payload struct {
	Type       domain.NotificationType
	Title      string
	Message    string
	EnquiryID  *uuid.UUID
	EnquiryNum string
	Data       map[string]any
}

// NotificationService dispatches workflow events. Per-user notifications are
// persisted to the durable log and pushed over the real-time channel; role
// broadcasts are real-time only.
type NotificationService struct {
	notificationRepo *repository.NotificationRepository
	channel          realtime.Channel
	logger           *zap.Logger
}

// NewNotificationService creates a new NotificationService instance
func NewNotificationService(
	notificationRepo *repository.NotificationRepository,
	channel realtime.Channel,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		channel:          channel,
		logger:           logger,
	}
}

// NotifyUser appends to the user's durable log and pushes the event to the
// user's private topic. Both writes are best-effort: a failure is logged and
// never surfaced to the calling workflow.
func (s *NotificationService) NotifyUser(ctx context.Context, userID uuid.UUID, payload Payload) {
	notification := &domain.Notification{
		UserID:     userID,
		Type:       string(payload.Type),
		Title:      payload.Title,
		Message:    payload.Message,
		EnquiryID:  payload.EnquiryID,
		EnquiryNum: payload.EnquiryNum,
		Read:       false,
	}
	if len(payload.Data) > 0 {
		if raw, err := json.Marshal(payload.Data); err == nil {
			notification.Data = raw
		}
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		s.logger.Warn("failed to persist notification",
			zap.String("userID", userID.String()),
			zap.String("type", string(payload.Type)),
			zap.Error(err),
		)
	}

	if err := s.channel.EmitToUser(ctx, userID, s.toEvent(payload)); err != nil {
		s.logger.Warn("failed to emit notification to user",
			zap.String("userID", userID.String()),
			zap.String("type", string(payload.Type)),
			zap.Error(err),
		)
	}
}

// NotifyRole pushes the event to a role-wide topic. Role broadcasts are not
// persisted to any individual durable log.
func (s *NotificationService) NotifyRole(ctx context.Context, role domain.UserRole, payload Payload) {
	if err := s.channel.EmitToRole(ctx, role, s.toEvent(payload)); err != nil {
		s.logger.Warn("failed to emit notification to role",
			zap.String("role", string(role)),
			zap.String("type", string(payload.Type)),
			zap.Error(err),
		)
	}
}

// NotifyEnquiryTopic pushes the event to the enquiry's live-subscriber topic
func (s *NotificationService) NotifyEnquiryTopic(ctx context.Context, enquiryID uuid.UUID, payload Payload) {
	if err := s.channel.EmitToEnquiry(ctx, enquiryID, s.toEvent(payload)); err != nil {
		s.logger.Warn("failed to emit notification to enquiry topic",
			zap.String("enquiryID", enquiryID.String()),
			zap.String("type", string(payload.Type)),
			zap.Error(err),
		)
	}
}

// NotifyAdmins broadcasts the event to the director and superadmin role topics
func (s *NotificationService) NotifyAdmins(ctx context.Context, payload Payload) {
	s.NotifyRole(ctx, domain.RoleDirector, payload)
	s.NotifyRole(ctx, domain.RoleSuperAdmin, payload)
}

func (s *NotificationService) toEvent(payload Payload) realtime.Event {
	return realtime.Event{
		Type:       string(payload.Type),
		Title:      payload.Title,
		Message:    payload.Message,
		EnquiryID:  payload.EnquiryID,
		EnquiryNum: payload.EnquiryNum,
		Data:       payload.Data,
		Timestamp:  time.Now().UTC(),
	}
}

// GetForCurrentUser returns notifications for the current user with pagination
func (s *NotificationService) GetForCurrentUser(
	ctx context.Context,
	page int,
	pageSize int,
	unreadOnly bool,
	notificationType string,
) (*domain.PaginatedResponse, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > repository.MaxPageSize {
		pageSize = repository.MaxPageSize
	}
	if page < 1 {
		page = 1
	}

	notifications, total, err := s.notificationRepo.ListByUser(ctx, userCtx.UserID, page, pageSize, unreadOnly, notificationType)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	dtos := make([]domain.NotificationDTO, len(notifications))
	for i := range notifications {
		dtos[i] = mapper.ToNotificationDTO(&notifications[i])
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return &domain.PaginatedResponse{
		Data:       dtos,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// MarkAsRead marks a notification as read, verifying ownership
func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID uuid.UUID) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUserContextRequired
	}

	notification, err := s.notificationRepo.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to get notification: %w", err)
	}

	if notification.UserID != userCtx.UserID {
		return ErrNotificationNotOwned
	}

	// Already read, nothing to do
	if notification.Read {
		return nil
	}

	if err := s.notificationRepo.MarkAsRead(ctx, notificationID); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	s.logger.Debug("notification marked as read",
		zap.String("notificationID", notificationID.String()),
		zap.String("userID", userCtx.UserID.String()),
	)

	return nil
}

// MarkAllAsReadForUser marks all notifications for the current user as read
func (s *NotificationService) MarkAllAsReadForUser(ctx context.Context) error {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return ErrUserContextRequired
	}

	if err := s.notificationRepo.MarkAllAsRead(ctx, userCtx.UserID); err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}

	s.logger.Info("all notifications marked as read",
		zap.String("userID", userCtx.UserID.String()),
	)

	return nil
}

// GetUnreadCount returns the count of unread notifications for the current user
func (s *NotificationService) GetUnreadCount(ctx context.Context) (*domain.UnreadCountDTO, error) {
	userCtx, ok := auth.FromContext(ctx)
	if !ok {
		return nil, ErrUserContextRequired
	}

	count, err := s.notificationRepo.CountUnread(ctx, userCtx.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return &domain.UnreadCountDTO{Count: count}, nil
}
