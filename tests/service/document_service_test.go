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

func newDocumentServices(db *gorm.DB) (*service.QuotationService, *service.InvoiceService) {
	log := zap.NewNop()
	notifications := service.NewNotificationService(repository.NewNotificationRepository(db), realtime.NewNoopChannel(), log)
	enquiryRepo := repository.NewEnquiryRepository(db)
	quotations := service.NewQuotationService(repository.NewQuotationRepository(db), enquiryRepo, notifications, log)
	invoices := service.NewInvoiceService(repository.NewInvoiceRepository(db), enquiryRepo, notifications, log)
	return quotations, invoices
}

func TestQuotationService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	quotations, _ := newDocumentServices(db)
	client := testutil.CreateTestClient(t, db, "Quoted Client")
	sales := testutil.CreateTestUser(t, db, "Sales", domain.RoleSalesman)
	ctx := testutil.ContextForUser(sales)
	enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusBOQ)

	t.Run("create pulls the client from the enquiry", func(t *testing.T) {
		quotation, err := quotations.Create(ctx, &domain.CreateQuotationRequest{
			QuotationNum: "QTN-0001",
			EnquiryID:    enquiry.ID,
			Subtotal:     100000,
			Tax:          18000,
			GrandTotal:   118000,
			Items: []domain.DocumentItemRequest{
				{Description: "GI mounting structure", Quantity: 40, Unit: "set", UnitPrice: 2500, Amount: 100000},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, client.ID, quotation.ClientID)
		assert.Equal(t, sales.ID, quotation.PreparedBy)
		assert.Equal(t, domain.DocumentStatusDraft, quotation.Status)
		require.Len(t, quotation.Items, 1)
	})

	t.Run("list by enquiry", func(t *testing.T) {
		list, err := quotations.ListByEnquiry(ctx, enquiry.ID)
		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("status lifecycle", func(t *testing.T) {
		list, err := quotations.ListByEnquiry(ctx, enquiry.ID)
		require.NoError(t, err)
		require.NotEmpty(t, list)

		updated, err := quotations.UpdateStatus(ctx, list[0].ID, domain.DocumentStatusSent)
		require.NoError(t, err)
		assert.Equal(t, domain.DocumentStatusSent, updated.Status)
	})

	t.Run("unknown enquiry", func(t *testing.T) {
		_, err := quotations.Create(ctx, &domain.CreateQuotationRequest{
			QuotationNum: "QTN-0002",
			EnquiryID:    uuid.New(),
			Items:        []domain.DocumentItemRequest{{Description: "x", Quantity: 1, Amount: 1}},
		})
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestInvoiceService(t *testing.T) {
	db := testutil.SetupTestDB(t)
	_, invoices := newDocumentServices(db)
	client := testutil.CreateTestClient(t, db, "Invoiced Client")
	sales := testutil.CreateTestUser(t, db, "Sales", domain.RoleSalesman)
	ctx := testutil.ContextForUser(sales)
	enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusReadyForDispatch)

	t.Run("create with items", func(t *testing.T) {
		invoice, err := invoices.Create(ctx, &domain.CreateInvoiceRequest{
			InvoiceNum: "INV-0001",
			EnquiryID:  enquiry.ID,
			Subtotal:   118000,
			GrandTotal: 118000,
			Items: []domain.DocumentItemRequest{
				{Description: "GI mounting structure", Quantity: 40, Unit: "set", UnitPrice: 2500, Amount: 100000},
				{Description: "Freight", Quantity: 1, UnitPrice: 18000, Amount: 18000},
			},
		})
		require.NoError(t, err)
		assert.Equal(t, client.ID, invoice.ClientID)
		assert.Len(t, invoice.Items, 2)
	})

	t.Run("get by id", func(t *testing.T) {
		list, err := invoices.ListByEnquiry(ctx, enquiry.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)

		got, err := invoices.GetByID(ctx, list[0].ID)
		require.NoError(t, err)
		assert.Equal(t, "INV-0001", got.InvoiceNum)
	})

	t.Run("status moves to accepted", func(t *testing.T) {
		list, err := invoices.ListByEnquiry(ctx, enquiry.ID)
		require.NoError(t, err)
		require.NotEmpty(t, list)

		updated, err := invoices.UpdateStatus(ctx, list[0].ID, domain.DocumentStatusAccepted)
		require.NoError(t, err)
		assert.Equal(t, domain.DocumentStatusAccepted, updated.Status)
	})
}
