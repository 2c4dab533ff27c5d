package service_test

import (
	"testing"

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

func newDesignService(db *gorm.DB) *service.DesignService {
	log := zap.NewNop()
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), realtime.NewNoopChannel(), log)
	return service.NewDesignService(
		repository.NewDesignWorkRepository(db),
		repository.NewDesignAttachmentRepository(db),
		repository.NewEnquiryRepository(db),
		repository.NewUserRepository(db),
		newWorkflowService(db, false),
		notifications,
		log,
	)
}

func TestDesignService_AssignDesigner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newDesignService(db)
	client := testutil.CreateTestClient(t, db, "Array Co")
	sales := testutil.CreateTestUser(t, db, "Sales", domain.RoleSalesman)
	designer := testutil.CreateTestUser(t, db, "Designer", domain.RoleDesigner)
	ctx := testutil.ContextForUser(sales)

	t.Run("creates the work record and moves the enquiry", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusEnquiry)

		work, err := svc.AssignDesigner(ctx, enquiry.ID, &domain.AssignDesignerRequest{
			DesignerID:         designer.ID,
			ClientRequirements: "Wind load zone IV, 10 degree tilt",
		})
		require.NoError(t, err)
		assert.Equal(t, designer.ID, work.DesignerID)
		assert.Equal(t, domain.DesignStatusPending, work.DesignStatus)
		assert.Equal(t, "Wind load zone IV, 10 degree tilt", work.ClientRequirements)

		reloaded, err := repository.NewEnquiryRepository(db).GetByID(ctx, enquiry.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDesign, reloaded.Status)
		assert.Equal(t, designer.ID, reloaded.CurrentAssignedPerson)
	})

	t.Run("reassignment resets an existing record", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusEnquiry)
		second := testutil.CreateTestUser(t, db, "Designer Two", domain.RoleDesigner)

		_, err := svc.AssignDesigner(ctx, enquiry.ID, &domain.AssignDesignerRequest{DesignerID: designer.ID})
		require.NoError(t, err)
		work, err := svc.AssignDesigner(ctx, enquiry.ID, &domain.AssignDesignerRequest{DesignerID: second.ID})
		require.NoError(t, err)
		assert.Equal(t, second.ID, work.DesignerID)
		assert.Equal(t, domain.DesignStatusPending, work.DesignStatus)
	})

	t.Run("rejects non-designer assignees", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusEnquiry)
		_, err := svc.AssignDesigner(ctx, enquiry.ID, &domain.AssignDesignerRequest{DesignerID: sales.ID})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})
}

func TestDesignService_CompleteAndReturn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newDesignService(db)
	client := testutil.CreateTestClient(t, db, "Array Co")
	sales := testutil.CreateTestUser(t, db, "Sales", domain.RoleSalesman)
	designer := testutil.CreateTestUser(t, db, "Designer", domain.RoleDesigner)
	salesCtx := testutil.ContextForUser(sales)
	designerCtx := testutil.ContextForUser(designer)

	setup := func(t *testing.T) *domain.Enquiry {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusEnquiry)
		_, err := svc.AssignDesigner(salesCtx, enquiry.ID, &domain.AssignDesignerRequest{DesignerID: designer.ID})
		require.NoError(t, err)
		return enquiry
	}

	t.Run("saves progress without touching the enquiry", func(t *testing.T) {
		enquiry := setup(t)

		work, err := svc.SaveProgress(designerCtx, enquiry.ID, &domain.SaveDesignProgressRequest{
			DesignerNotes: "Draft layout done",
		})
		require.NoError(t, err)
		assert.Equal(t, domain.DesignStatusInProgress, work.DesignStatus)
		assert.Equal(t, "Draft layout done", work.DesignerNotes)

		reloaded, err := repository.NewEnquiryRepository(db).GetByID(designerCtx, enquiry.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDesign, reloaded.Status)
	})

	t.Run("returns the enquiry to the salesperson at BOQ", func(t *testing.T) {
		enquiry := setup(t)

		work, err := svc.CompleteAndReturn(designerCtx, enquiry.ID, &domain.CompleteDesignRequest{})
		require.NoError(t, err)
		assert.Equal(t, domain.DesignStatusCompleted, work.DesignStatus)
		assert.NotNil(t, work.CompletedAt)

		reloaded, err := repository.NewEnquiryRepository(db).GetByID(designerCtx, enquiry.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusBOQ, reloaded.Status)
		assert.Equal(t, sales.ID, reloaded.CurrentAssignedPerson)
	})

	t.Run("only the designer or an admin may complete", func(t *testing.T) {
		enquiry := setup(t)
		outsider := testutil.CreateTestUser(t, db, "Outsider", domain.RoleSalesman)

		_, err := svc.CompleteAndReturn(testutil.ContextForUser(outsider), enquiry.ID, &domain.CompleteDesignRequest{})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)

		admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleSuperAdmin)
		_, err = svc.CompleteAndReturn(testutil.ContextForUser(admin), enquiry.ID, &domain.CompleteDesignRequest{})
		assert.NoError(t, err)
	})
}

func TestDesignService_Attachments(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newDesignService(db)
	client := testutil.CreateTestClient(t, db, "Array Co")
	designer := testutil.CreateTestUser(t, db, "Designer", domain.RoleDesigner)
	ctx := testutil.ContextForUser(designer)
	enquiry := testutil.CreateTestEnquiry(t, db, client.ID, designer.ID, domain.StatusDesign)

	t.Run("stores and lists metadata", func(t *testing.T) {
		attachment, err := svc.AddAttachment(ctx, enquiry.ID, &domain.CreateAttachmentRequest{
			Filename:    "layout-v1.pdf",
			ContentType: "application/pdf",
			Size:        20480,
			FileURL:     "https://files.example.com/layout-v1.pdf",
		})
		require.NoError(t, err)
		assert.Equal(t, designer.ID, attachment.UploadedBy)

		attachments, err := svc.ListAttachments(ctx, enquiry.ID)
		require.NoError(t, err)
		require.Len(t, attachments, 1)
		assert.Equal(t, "layout-v1.pdf", attachments[0].Filename)
	})

	t.Run("only the uploader or an admin may delete", func(t *testing.T) {
		attachment, err := svc.AddAttachment(ctx, enquiry.ID, &domain.CreateAttachmentRequest{
			Filename: "layout-v2.pdf",
			FileURL:  "https://files.example.com/layout-v2.pdf",
		})
		require.NoError(t, err)

		outsider := testutil.CreateTestUser(t, db, "Outsider", domain.RoleSalesman)
		err = svc.DeleteAttachment(testutil.ContextForUser(outsider), attachment.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)

		err = svc.DeleteAttachment(ctx, attachment.ID)
		assert.NoError(t, err)
	})

	t.Run("unknown enquiry", func(t *testing.T) {
		_, err := svc.AddAttachment(ctx, uuid.New(), &domain.CreateAttachmentRequest{
			Filename: "x.pdf",
			FileURL:  "https://files.example.com/x.pdf",
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}
