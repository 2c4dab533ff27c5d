package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/repository"
	"github.com/solmount/enquiry-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedNotifications(t *testing.T, db *gorm.DB, userID uuid.UUID, count int) {
	t.Helper()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < count; i++ {
		notification := &domain.Notification{
			UserID:  userID,
			Type:    string(domain.NotificationTypeStatusChange),
			Title:   fmt.Sprintf("Update %d", i),
			Message: "status changed",
		}
		notification.CreatedAt = base.Add(time.Duration(i) * time.Second)
		require.NoError(t, db.Create(notification).Error)
	}
}

func TestNotificationRepository_CreateTrimsToCap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNotificationRepositoryWithCap(db, 5)
	user := testutil.CreateTestUser(t, db, "Capped", domain.RoleSalesman)
	seedNotifications(t, db, user.ID, 5)

	newest := &domain.Notification{
		UserID:  user.ID,
		Type:    string(domain.NotificationTypeAssignment),
		Title:   "Newest",
		Message: "assigned",
	}
	newest.CreatedAt = time.Now()
	require.NoError(t, repo.Create(context.Background(), newest))

	var count int64
	require.NoError(t, db.Model(&domain.Notification{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(5), count)

	t.Run("oldest entry is the one dropped", func(t *testing.T) {
		var remaining []domain.Notification
		require.NoError(t, db.Where("user_id = ?", user.ID).Order("created_at ASC").Find(&remaining).Error)
		require.Len(t, remaining, 5)
		assert.Equal(t, "Update 1", remaining[0].Title)
		assert.Equal(t, "Newest", remaining[4].Title)
	})
}

func TestNotificationRepository_PruneAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNotificationRepositoryWithCap(db, 3)
	heavy := testutil.CreateTestUser(t, db, "Heavy", domain.RoleSalesman)
	light := testutil.CreateTestUser(t, db, "Light", domain.RoleDesigner)

	// seeded directly, so the create-path trim never ran
	seedNotifications(t, db, heavy.ID, 8)
	seedNotifications(t, db, light.ID, 2)

	pruned, err := repo.PruneAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), pruned)

	var heavyCount, lightCount int64
	require.NoError(t, db.Model(&domain.Notification{}).Where("user_id = ?", heavy.ID).Count(&heavyCount).Error)
	require.NoError(t, db.Model(&domain.Notification{}).Where("user_id = ?", light.ID).Count(&lightCount).Error)
	assert.Equal(t, int64(3), heavyCount)
	assert.Equal(t, int64(2), lightCount)

	t.Run("idempotent on a trimmed table", func(t *testing.T) {
		pruned, err := repo.PruneAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(0), pruned)
	})
}

func TestNotificationRepository_ListByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewNotificationRepository(db)
	user := testutil.CreateTestUser(t, db, "Reader", domain.RoleSalesman)
	seedNotifications(t, db, user.ID, 4)

	var first domain.Notification
	require.NoError(t, db.Where("user_id = ?", user.ID).Order("created_at ASC").First(&first).Error)
	require.NoError(t, repo.MarkAsRead(context.Background(), first.ID))

	t.Run("newest first", func(t *testing.T) {
		notifications, total, err := repo.ListByUser(context.Background(), user.ID, 1, 20, false, "")
		require.NoError(t, err)
		assert.Equal(t, int64(4), total)
		require.Len(t, notifications, 4)
		assert.Equal(t, "Update 3", notifications[0].Title)
	})

	t.Run("unread only", func(t *testing.T) {
		_, total, err := repo.ListByUser(context.Background(), user.ID, 1, 20, true, "")
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("by type", func(t *testing.T) {
		_, total, err := repo.ListByUser(context.Background(), user.ID, 1, 20, false, string(domain.NotificationTypeAssignment))
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})

	t.Run("unread count", func(t *testing.T) {
		count, err := repo.CountUnread(context.Background(), user.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
	})
}
