package service_test

import (
	"context"
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

func newWorkflowService(db *gorm.DB, strict bool) *service.WorkflowService {
	log := zap.NewNop()
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), realtime.NewNoopChannel(), log)
	return service.NewWorkflowService(
		repository.NewEnquiryRepository(db),
		repository.NewEnquiryStatusHistoryRepository(db),
		repository.NewEnquiryNoteRepository(db),
		repository.NewUserRepository(db),
		repository.NewClientRepository(db),
		repository.NewDesignWorkRepository(db),
		repository.NewProductionRepository(db),
		repository.NewOrderSequenceRepository(db),
		notifications,
		service.WorkflowConfig{Strict: strict},
		log,
	)
}

func TestWorkflowService_CreateEnquiry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newWorkflowService(db, true)
	client := testutil.CreateTestClient(t, db, "Solar Farms Ltd")
	sales := testutil.CreateTestUser(t, db, "Sales One", domain.RoleSalesman)
	ctx := testutil.ContextForUser(sales)

	t.Run("allocates first order number", func(t *testing.T) {
		enquiry, err := svc.CreateEnquiry(ctx, &domain.CreateEnquiryRequest{
			ClientID:      client.ID,
			MaterialType:  domain.MaterialGI,
			Detail:        "Rooftop mounting structure, 120 panels",
			EnquiryAmount: 250000,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusEnquiry, enquiry.Status)
		assert.Equal(t, sales.ID, enquiry.EnquiryBy)
		assert.Equal(t, sales.ID, enquiry.CurrentAssignedPerson)
		assert.NotEmpty(t, enquiry.EnquiryNum)
		require.NotNil(t, enquiry.OrderNumber)
		assert.Equal(t, "ORD-0001", *enquiry.OrderNumber)

		history, err := repository.NewEnquiryStatusHistoryRepository(db).ListByEnquiry(ctx, enquiry.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, domain.StatusEnquiry, history[0].Status)
	})

	t.Run("order numbers are sequential", func(t *testing.T) {
		enquiry, err := svc.CreateEnquiry(ctx, &domain.CreateEnquiryRequest{
			ClientID:      client.ID,
			MaterialType:  domain.MaterialAluminium,
			Detail:        "Ground-mount structure",
			EnquiryAmount: 80000,
		})
		require.NoError(t, err)
		require.NotNil(t, enquiry.OrderNumber)
		assert.Equal(t, "ORD-0002", *enquiry.OrderNumber)
	})

	t.Run("keeps supplied enquiry number", func(t *testing.T) {
		enquiry, err := svc.CreateEnquiry(ctx, &domain.CreateEnquiryRequest{
			EnquiryNum:   "ENQ-CUSTOM-1",
			ClientID:     client.ID,
			MaterialType: domain.MaterialGP,
			Detail:       "Carport structure",
		})
		require.NoError(t, err)
		assert.Equal(t, "ENQ-CUSTOM-1", enquiry.EnquiryNum)
	})

	t.Run("unknown client", func(t *testing.T) {
		_, err := svc.CreateEnquiry(ctx, &domain.CreateEnquiryRequest{
			ClientID:     uuid.New(),
			MaterialType: domain.MaterialGI,
			Detail:       "x",
		})
		assert.ErrorIs(t, err, service.ErrClientNotFound)
	})

	t.Run("unknown material type", func(t *testing.T) {
		_, err := svc.CreateEnquiry(ctx, &domain.CreateEnquiryRequest{
			ClientID:     client.ID,
			MaterialType: "Titanium",
			Detail:       "x",
		})
		assert.ErrorIs(t, err, service.ErrInvalidInput)
	})

	t.Run("requires user context", func(t *testing.T) {
		_, err := svc.CreateEnquiry(context.Background(), &domain.CreateEnquiryRequest{
			ClientID:     client.ID,
			MaterialType: domain.MaterialGI,
			Detail:       "x",
		})
		assert.ErrorIs(t, err, service.ErrUserContextRequired)
	})
}

func TestWorkflowService_SetStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newWorkflowService(db, true)
	client := testutil.CreateTestClient(t, db, "Grid Power")
	sales := testutil.CreateTestUser(t, db, "Sales", domain.RoleSalesman)
	designer := testutil.CreateTestUser(t, db, "Designer", domain.RoleDesigner)
	production := testutil.CreateTestUser(t, db, "Production", domain.RoleProduction)
	ctx := testutil.ContextForUser(sales)

	t.Run("design stage provisions design work", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusEnquiry)

		updated, err := svc.SetStatus(ctx, enquiry.ID, &domain.SetStatusRequest{
			Status:           domain.StatusDesign,
			AssignedPersonID: &designer.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDesign, updated.Status)
		assert.Equal(t, designer.ID, updated.CurrentAssignedPerson)

		work, err := repository.NewDesignWorkRepository(db).GetByEnquiry(ctx, enquiry.ID)
		require.NoError(t, err)
		assert.Equal(t, designer.ID, work.DesignerID)
		assert.Equal(t, domain.DesignStatusPending, work.DesignStatus)
	})

	t.Run("ready for production allocates missing order number and provisions workflow", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusBOQ)
		require.Nil(t, enquiry.OrderNumber)

		updated, err := svc.SetStatus(ctx, enquiry.ID, &domain.SetStatusRequest{
			Status:           domain.StatusReadyForProduction,
			AssignedPersonID: &production.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, updated.OrderNumber)
		assert.NotEmpty(t, *updated.OrderNumber)
		require.NotNil(t, updated.OrderDate)

		workflow, err := repository.NewProductionRepository(db).GetWorkflowByEnquiry(ctx, enquiry.ID)
		require.NoError(t, err)
		assert.Equal(t, production.ID, workflow.ProductionLead)
		assert.Equal(t, domain.ProductionStatusNotStarted, workflow.Status)
	})

	t.Run("existing order number is never overwritten", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusBOQ)
		orderNum := "ORD-9000"
		enquiry.OrderNumber = &orderNum
		require.NoError(t, db.Save(enquiry).Error)

		updated, err := svc.SetStatus(ctx, enquiry.ID, &domain.SetStatusRequest{
			Status:           domain.StatusReadyForProduction,
			AssignedPersonID: &production.ID,
		})
		require.NoError(t, err)
		require.NotNil(t, updated.OrderNumber)
		assert.Equal(t, "ORD-9000", *updated.OrderNumber)
	})

	t.Run("strict mode rejects stage jumps", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusEnquiry)

		_, err := svc.SetStatus(ctx, enquiry.ID, &domain.SetStatusRequest{
			Status:           domain.StatusDispatched,
			AssignedPersonID: &sales.ID,
		})
		assert.ErrorIs(t, err, service.ErrInvalidTransition)
	})

	t.Run("strict mode allows the hotdip skip", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusProductionComplete)

		updated, err := svc.SetStatus(ctx, enquiry.ID, &domain.SetStatusRequest{
			Status:           domain.StatusReadyForDispatch,
			AssignedPersonID: &sales.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReadyForDispatch, updated.Status)
	})

	t.Run("strict mode allows BOQ rework back to design", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusBOQ)

		updated, err := svc.SetStatus(ctx, enquiry.ID, &domain.SetStatusRequest{
			Status:           domain.StatusDesign,
			AssignedPersonID: &designer.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusDesign, updated.Status)
	})

	t.Run("appends a history row per transition", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusEnquiry)

		_, err := svc.SetStatus(ctx, enquiry.ID, &domain.SetStatusRequest{Status: domain.StatusDesign, AssignedPersonID: &designer.ID})
		require.NoError(t, err)
		_, err = svc.SetStatus(ctx, enquiry.ID, &domain.SetStatusRequest{Status: domain.StatusBOQ, AssignedPersonID: &sales.ID, Note: "BOQ ready"})
		require.NoError(t, err)

		history, err := repository.NewEnquiryStatusHistoryRepository(db).ListByEnquiry(ctx, enquiry.ID)
		require.NoError(t, err)
		require.Len(t, history, 2)
	})

	t.Run("unknown status", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusEnquiry)
		_, err := svc.SetStatus(ctx, enquiry.ID, &domain.SetStatusRequest{Status: "Shipped"})
		assert.ErrorIs(t, err, service.ErrInvalidStatus)
	})

	t.Run("unknown enquiry", func(t *testing.T) {
		_, err := svc.SetStatus(ctx, uuid.New(), &domain.SetStatusRequest{Status: domain.StatusDesign})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("unknown assignee", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusEnquiry)
		missing := uuid.New()
		_, err := svc.SetStatus(ctx, enquiry.ID, &domain.SetStatusRequest{
			Status:           domain.StatusDesign,
			AssignedPersonID: &missing,
		})
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})
}

func TestWorkflowService_Assign(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newWorkflowService(db, true)
	client := testutil.CreateTestClient(t, db, "Sunline")
	sales := testutil.CreateTestUser(t, db, "Sales", domain.RoleSalesman)
	other := testutil.CreateTestUser(t, db, "Other Sales", domain.RoleSalesman)
	ctx := testutil.ContextForUser(sales)

	t.Run("hands over without changing stage", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusBOQ)

		updated, err := svc.Assign(ctx, enquiry.ID, &domain.AssignRequest{AssignedPersonID: other.ID})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusBOQ, updated.Status)
		assert.Equal(t, other.ID, updated.CurrentAssignedPerson)

		history, err := repository.NewEnquiryStatusHistoryRepository(db).ListByEnquiry(ctx, enquiry.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, "Reassigned", history[0].Note)
	})

	t.Run("unknown assignee", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusBOQ)
		_, err := svc.Assign(ctx, enquiry.ID, &domain.AssignRequest{AssignedPersonID: uuid.New()})
		assert.ErrorIs(t, err, service.ErrUserNotFound)
	})
}

func TestWorkflowService_ConfirmOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newWorkflowService(db, true)
	client := testutil.CreateTestClient(t, db, "Helio Energy")
	sales := testutil.CreateTestUser(t, db, "Sales", domain.RoleSalesman)
	production := testutil.CreateTestUser(t, db, "Production", domain.RoleProduction)
	ctx := testutil.ContextForUser(sales)

	t.Run("allocates order number and moves to production", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusBOQ)

		updated, err := svc.ConfirmOrder(ctx, enquiry.ID, &domain.ConfirmOrderRequest{})
		require.NoError(t, err)
		assert.Equal(t, domain.StatusReadyForProduction, updated.Status)
		assert.Equal(t, production.ID, updated.CurrentAssignedPerson)
		require.NotNil(t, updated.OrderNumber)
		assert.Equal(t, "ORD-0001", *updated.OrderNumber)
		require.NotNil(t, updated.OrderDate)

		workflow, err := repository.NewProductionRepository(db).GetWorkflowByEnquiry(ctx, enquiry.ID)
		require.NoError(t, err)
		assert.Equal(t, production.ID, workflow.ProductionLead)
	})

	t.Run("order number is set once", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusBOQ)
		orderNum := "ORD-7777"
		enquiry.OrderNumber = &orderNum
		require.NoError(t, db.Save(enquiry).Error)

		updated, err := svc.ConfirmOrder(ctx, enquiry.ID, &domain.ConfirmOrderRequest{OrderNumber: "ORD-8888"})
		require.NoError(t, err)
		require.NotNil(t, updated.OrderNumber)
		assert.Equal(t, "ORD-7777", *updated.OrderNumber)
	})

	t.Run("explicit order number is used when unset", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusBOQ)

		updated, err := svc.ConfirmOrder(ctx, enquiry.ID, &domain.ConfirmOrderRequest{OrderNumber: "ORD-5555"})
		require.NoError(t, err)
		require.NotNil(t, updated.OrderNumber)
		assert.Equal(t, "ORD-5555", *updated.OrderNumber)
	})

	t.Run("explicit production user wins", func(t *testing.T) {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusBOQ)
		lead := testutil.CreateTestUser(t, db, "Second Lead", domain.RoleProduction)

		updated, err := svc.ConfirmOrder(ctx, enquiry.ID, &domain.ConfirmOrderRequest{ProductionUserID: &lead.ID})
		require.NoError(t, err)
		assert.Equal(t, lead.ID, updated.CurrentAssignedPerson)
	})
}

func TestWorkflowService_ConfirmOrderWithoutProductionUsers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newWorkflowService(db, true)
	client := testutil.CreateTestClient(t, db, "No Crew Co")
	sales := testutil.CreateTestUser(t, db, "Sales", domain.RoleSalesman)
	ctx := testutil.ContextForUser(sales)
	enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusBOQ)

	_, err := svc.ConfirmOrder(ctx, enquiry.ID, &domain.ConfirmOrderRequest{})
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
