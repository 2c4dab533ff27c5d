package service_test

import (
	"testing"

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

func newDispatchService(db *gorm.DB) *service.DispatchService {
	log := zap.NewNop()
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), realtime.NewNoopChannel(), log)
	return service.NewDispatchService(
		repository.NewDispatchRepository(db),
		repository.NewEnquiryRepository(db),
		repository.NewUserRepository(db),
		newWorkflowService(db, false),
		notifications,
		log,
	)
}

func TestDispatchService_Assign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newDispatchService(db)
	client := testutil.CreateTestClient(t, db, "Dispatch Co")
	sales := testutil.CreateTestUser(t, db, "Sales", domain.RoleSalesman)
	assignee := testutil.CreateTestUser(t, db, "Dispatcher", domain.RoleSalesman)
	ctx := testutil.ContextForUser(sales)

	t.Run("creates a pending work record", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusProductionComplete)

		work, err := svc.AssignDispatch(ctx, enquiry.ID, &domain.AssignDispatchRequest{DispatchAssignedTo: assignee.ID})
		require.NoError(t, err)
		assert.Equal(t, assignee.ID, work.DispatchAssignedTo)
		assert.Equal(t, domain.DispatchStatusPending, work.Status)

		reloaded, err := repository.NewEnquiryRepository(db).GetByID(ctx, enquiry.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReadyForDispatch, reloaded.Status)
		assert.Equal(t, assignee.ID, reloaded.CurrentAssignedPerson)
	})

	t.Run("queue lists the assignee's pending work", func(t *testing.T) {
		queue, err := svc.ListForAssignee(ctx, assignee.ID)
		require.NoError(t, err)
		require.Len(t, queue, 1)
		assert.Equal(t, domain.DispatchStatusPending, queue[0].Status)
	})
}

func TestDispatchService_UpdateDispatch(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newDispatchService(db)
	client := testutil.CreateTestClient(t, db, "Dispatch Co")
	sales := testutil.CreateTestUser(t, db, "Sales", domain.RoleSalesman)
	assignee := testutil.CreateTestUser(t, db, "Dispatcher", domain.RoleSalesman)
	salesCtx := testutil.ContextForUser(sales)
	assigneeCtx := testutil.ContextForUser(assignee)

	setup := func(t *testing.T) *domain.Enquiry {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusProductionComplete)
		_, err := svc.AssignDispatch(salesCtx, enquiry.ID, &domain.AssignDispatchRequest{DispatchAssignedTo: assignee.ID})
		require.NoError(t, err)
		return enquiry
	}

	t.Run("partial updates stick", func(t *testing.T) {
		enquiry := setup(t)
		eta := "2026-09-15"

		work, err := svc.UpdateDispatch(assigneeCtx, enquiry.ID, &domain.UpdateDispatchRequest{
			TrackingNumber:        "TRK-1001",
			EstimatedDeliveryDate: &eta,
		})
		require.NoError(t, err)
		assert.Equal(t, "TRK-1001", work.TrackingNumber)
		require.NotNil(t, work.EstimatedDeliveryDate)
		assert.Equal(t, domain.DispatchStatusPending, work.Status)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		enquiry := setup(t)
		bad := "15/09/2026"

		_, err := svc.UpdateDispatch(assigneeCtx, enquiry.ID, &domain.UpdateDispatchRequest{DispatchDate: &bad})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("marking dispatched closes the enquiry", func(t *testing.T) {
		enquiry := setup(t)
		status := domain.DispatchStatusDispatched

		work, err := svc.UpdateDispatch(assigneeCtx, enquiry.ID, &domain.UpdateDispatchRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, domain.DispatchStatusDispatched, work.Status)
		// dispatch date is stamped automatically when not supplied
		assert.NotNil(t, work.DispatchDate)

		reloaded, err := repository.NewEnquiryRepository(db).GetByID(assigneeCtx, enquiry.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDispatched, reloaded.Status)

		history, err := repository.NewEnquiryStatusHistoryRepository(db).ListByEnquiry(assigneeCtx, enquiry.ID)
		require.NoError(t, err)
		var dispatched bool
		for _, h := range history {
			if h.Status == domain.StatusDispatched {
				dispatched = true
			}
		}
		assert.True(t, dispatched, "expected a Dispatched history row")

		// the original salesperson gets a durable notification
		var count int64
		require.NoError(t, db.Model(&domain.Notification{}).
			Where("user_id = ? AND type = ?", sales.ID, string(domain.NotificationTypeEnquiryDispatched)).
			Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("only the assignee or an admin may update", func(t *testing.T) {
		enquiry := setup(t)
		outsider := testutil.CreateTestUser(t, db, "Outsider", domain.RoleSalesman)

		_, err := svc.UpdateDispatch(testutil.ContextForUser(outsider), enquiry.ID, &domain.UpdateDispatchRequest{TrackingNumber: "TRK-X"})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)

		admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleDirector)
		_, err = svc.UpdateDispatch(testutil.ContextForUser(admin), enquiry.ID, &domain.UpdateDispatchRequest{TrackingNumber: "TRK-Y"})
		assert.NoError(t, err)
	})
}
