package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
	"gorm.io/gorm"
)

// DefaultNotificationCap is the number of durable notifications retained per
// user. Older entries are trimmed oldest-first.
const DefaultNotificationCap = 100

type NotificationRepository struct {
	db  *gorm.DB
	cap int
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db, cap: DefaultNotificationCap}
}

// NewNotificationRepositoryWithCap overrides the retention cap
func NewNotificationRepositoryWithCap(db *gorm.DB, cap int) *NotificationRepository {
	if cap <= 0 {
		cap = DefaultNotificationCap
	}
	return &NotificationRepository{db: db, cap: cap}
}

// Create persists a notification and trims the user's log to the retention cap
func (r *NotificationRepository) Create(ctx context.Context, notification *domain.Notification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(notification).Error; err != nil {
			return err
		}
		return r.trimUser(tx, notification.UserID)
	})
}

func (r *NotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Notification, error) {
	var notification domain.Notification
	err := r.db.WithContext(ctx).First(&notification, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &notification, nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int, unreadOnly bool, notificationType string) ([]domain.Notification, int64, error) {
	var notifications []domain.Notification
	var total int64

	query := r.db.WithContext(ctx).Model(&domain.Notification{}).Where("user_id = ?", userID)

	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	if notificationType != "" {
		query = query.Where("type = ?", notificationType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Offset(offset).Limit(pageSize).Order("created_at DESC").Find(&notifications).Error

	return notifications, total, err
}

func (r *NotificationRepository) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": now,
		}).Error
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]interface{}{
			"read":    true,
			"read_at": now,
		}).Error
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return int(count), err
}

// PruneAll trims every user's notification log to the retention cap. Run
// periodically as a safety net; Create already trims on the hot path.
func (r *NotificationRepository) PruneAll(ctx context.Context) (int64, error) {
	var userIDs []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&domain.Notification{}).
		Select("user_id").
		Group("user_id").
		Having("COUNT(*) > ?", r.cap).
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return 0, err
	}

	var pruned int64
	for _, userID := range userIDs {
		result := r.trimUserTx(r.db.WithContext(ctx), userID)
		if result.Error != nil {
			return pruned, result.Error
		}
		pruned += result.RowsAffected
	}
	return pruned, nil
}

func (r *NotificationRepository) trimUser(tx *gorm.DB, userID uuid.UUID) error {
	return r.trimUserTx(tx, userID).Error
}

func (r *NotificationRepository) trimUserTx(tx *gorm.DB, userID uuid.UUID) *gorm.DB {
	keep := tx.Session(&gorm.Session{NewDB: true}).
		Model(&domain.Notification{}).
		Select("id").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(r.cap)
	return tx.
		Where("user_id = ? AND id NOT IN (?)", userID, keep).
		Delete(&domain.Notification{})
}
