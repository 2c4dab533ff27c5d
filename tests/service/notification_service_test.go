package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/realtime"
	"github.com/solmount/enquiry-api/internal/repository"
	"github.com/solmount/enquiry-api/internal/service"
	"github.com/solmount/enquiry-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newNotificationService(db *gorm.DB) *service.NotificationService {
	return service.NewNotificationService(
		repository.NewNotificationRepository(db),
		realtime.NewNoopChannel(),
		zap.NewNop(),
	)
}

// recordingChannel captures emitted events for assertions
type recordingChannel struct {
	events []realtime.Event
}

func (c *recordingChannel) EmitToUser(ctx context.Context, userID uuid.UUID, event realtime.Event) error {
	c.events = append(c.events, event)
	return nil
}

func (c *recordingChannel) EmitToRole(ctx context.Context, role domain.UserRole, event realtime.Event) error {
	c.events = append(c.events, event)
	return nil
}

func (c *recordingChannel) EmitToEnquiry(ctx context.Context, enquiryID uuid.UUID, event realtime.Event) error {
	c.events = append(c.events, event)
	return nil
}

func (c *recordingChannel) Close() error { return nil }

func TestNotificationService_UserLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNotificationService(db)
	user := testutil.CreateTestUser(t, db, "Recipient", domain.RoleSalesman)
	ctx := testutil.ContextForUser(user)

	svc.NotifyUser(ctx, user.ID, service.Payload{
		Type:    domain.NotificationTypeAssignment,
		Title:   "Enquiry assigned",
		Message: "Enquiry ENQ-1 assigned to you",
	})
	svc.NotifyUser(ctx, user.ID, service.Payload{
		Type:    domain.NotificationTypeStatusChange,
		Title:   "Status changed",
		Message: "Enquiry ENQ-1 moved to Design",
	})

	t.Run("list for current user", func(t *testing.T) {
		page, err := svc.GetForCurrentUser(ctx, 1, 20, false, "")
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("filter by type", func(t *testing.T) {
		page, err := svc.GetForCurrentUser(ctx, 1, 20, false, string(domain.NotificationTypeAssignment))
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("unread count and mark all read", func(t *testing.T) {
		count, err := svc.GetUnreadCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count.Count)

		require.NoError(t, svc.MarkAllAsReadForUser(ctx))

		count, err = svc.GetUnreadCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count.Count)
	})
}

func TestNotificationService_EmittedEvents(t *testing.T) {
	db := testutil.SetupTestDB(t)
	channel := &recordingChannel{}
	svc := service.NewNotificationService(
		repository.NewNotificationRepository(db),
		channel,
		zap.NewNop(),
	)
	user := testutil.CreateTestUser(t, db, "Listener", domain.RoleSalesman)

	before := time.Now().UTC()
	svc.NotifyUser(context.Background(), user.ID, service.Payload{
		Type:    domain.NotificationTypeStatusChange,
		Title:   "Status changed",
		Message: "Enquiry moved to Design",
	})
	svc.NotifyRole(context.Background(), domain.RoleProduction, service.Payload{
		Type:  domain.NotificationTypeOrderConfirmed,
		Title: "Order confirmed",
	})

	require.Len(t, channel.events, 2)
	for _, event := range channel.events {
		assert.False(t, event.Timestamp.IsZero())
		assert.False(t, event.Timestamp.Before(before))
	}
	assert.Equal(t, "Status changed", channel.events[0].Title)

	t.Run("role broadcasts are not persisted", func(t *testing.T) {
		var count int64
		require.NoError(t, db.Model(&domain.Notification{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}

func TestNotificationService_MarkAsRead(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newNotificationService(db)
	owner := testutil.CreateTestUser(t, db, "Owner", domain.RoleSalesman)
	other := testutil.CreateTestUser(t, db, "Other", domain.RoleSalesman)
	ownerCtx := testutil.ContextForUser(owner)

	svc.NotifyUser(ownerCtx, owner.ID, service.Payload{
		Type:    domain.NotificationTypeAssignment,
		Title:   "Assigned",
		Message: "x",
	})

	var notification domain.Notification
	require.NoError(t, db.Where("user_id = ?", owner.ID).First(&notification).Error)

	t.Run("owner marks read", func(t *testing.T) {
		require.NoError(t, svc.MarkAsRead(ownerCtx, notification.ID))
		// second call is a no-op
		require.NoError(t, svc.MarkAsRead(ownerCtx, notification.ID))
	})

	t.Run("other users may not touch it", func(t *testing.T) {
		err := svc.MarkAsRead(testutil.ContextForUser(other), notification.ID)
		assert.ErrorIs(t, err, service.ErrNotificationNotOwned)
	})
}
