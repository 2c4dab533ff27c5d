package service_test

import (
	"context"
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

func newEnquiryService(db *gorm.DB) *service.EnquiryService {
	notifications := service.NewNotificationService(
		repository.NewNotificationRepository(db),
		realtime.NewNoopChannel(),
		zap.NewNop(),
	)
	return service.NewEnquiryService(
		repository.NewEnquiryRepository(db),
		repository.NewEnquiryStatusHistoryRepository(db),
		repository.NewEnquiryNoteRepository(db),
		notifications,
		zap.NewNop(),
	)
}

func TestEnquiryService_GetByID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newEnquiryService(db)
	sales := testutil.CreateTestUser(t, db, "Sales", domain.RoleSalesman)
	designer := testutil.CreateTestUser(t, db, "Designer", domain.RoleDesigner)
	outsider := testutil.CreateTestUser(t, db, "Outsider", domain.RoleProduction)
	admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleSuperAdmin)
	client := testutil.CreateTestClient(t, db, "Access Client")
	enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusBOQ)

	t.Run("owner reads own enquiry", func(t *testing.T) {
		dto, err := svc.GetByID(testutil.ContextForUser(sales), enquiry.ID)
		require.NoError(t, err)
		assert.Equal(t, enquiry.EnquiryNum, dto.EnquiryNum)
	})

	t.Run("admin reads any enquiry", func(t *testing.T) {
		_, err := svc.GetByID(testutil.ContextForUser(admin), enquiry.ID)
		require.NoError(t, err)
	})

	t.Run("uninvolved user is denied", func(t *testing.T) {
		_, err := svc.GetByID(testutil.ContextForUser(outsider), enquiry.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("originator grant is sales-only", func(t *testing.T) {
		raiser := testutil.CreateTestUser(t, db, "Raiser", domain.RoleDesigner)
		handedOff := testutil.CreateTestEnquiry(t, db, client.ID, raiser.ID, domain.StatusBOQ)
		handedOff.CurrentAssignedPerson = sales.ID
		require.NoError(t, db.Save(handedOff).Error)

		_, err := svc.GetByID(testutil.ContextForUser(raiser), handedOff.ID)
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})

	t.Run("past participant keeps read access", func(t *testing.T) {
		historyRepo := repository.NewEnquiryStatusHistoryRepository(db)
		require.NoError(t, historyRepo.Create(context.Background(), &domain.EnquiryStatusHistory{
			EnquiryID:      enquiry.ID,
			Status:         domain.StatusDesign,
			AssignedPerson: designer.ID,
			Note:           "Sent to design",
		}))

		_, err := svc.GetByID(testutil.ContextForUser(designer), enquiry.ID)
		require.NoError(t, err)
	})

	t.Run("missing user context", func(t *testing.T) {
		_, err := svc.GetByID(context.Background(), enquiry.ID)
		assert.ErrorIs(t, err, service.ErrUserContextRequired)
	})
}

func TestEnquiryService_Notes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newEnquiryService(db)
	sales := testutil.CreateTestUser(t, db, "Sales", domain.RoleSalesman)
	admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleDirector)
	client := testutil.CreateTestClient(t, db, "Note Client")
	enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusEnquiry)

	t.Run("add and list", func(t *testing.T) {
		note, err := svc.AddNote(testutil.ContextForUser(sales), enquiry.ID, &domain.CreateNoteRequest{
			Note: "Client asked for revised drawings",
		})
		require.NoError(t, err)
		assert.Equal(t, sales.ID, note.AuthorID)

		notes, err := svc.ListNotes(testutil.ContextForUser(sales), enquiry.ID)
		require.NoError(t, err)
		require.Len(t, notes, 1)
		assert.Equal(t, "Client asked for revised drawings", notes[0].Note)
	})

	t.Run("note by another participant notifies the current owner", func(t *testing.T) {
		_, err := svc.AddNote(testutil.ContextForUser(admin), enquiry.ID, &domain.CreateNoteRequest{
			Note: "Please expedite",
		})
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&domain.Notification{}).
			Where("user_id = ? AND type = ?", sales.ID, string(domain.NotificationTypeCommunicationLogged)).
			Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})

	t.Run("history records are listed in order", func(t *testing.T) {
		historyRepo := repository.NewEnquiryStatusHistoryRepository(db)
		require.NoError(t, historyRepo.Create(context.Background(), &domain.EnquiryStatusHistory{
			EnquiryID:      enquiry.ID,
			Status:         domain.StatusEnquiry,
			AssignedPerson: sales.ID,
			Note:           "Enquiry created",
		}))

		history, err := svc.GetHistory(testutil.ContextForUser(sales), enquiry.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, domain.StatusEnquiry, history[0].Status)
	})
}

func TestEnquiryService_ListWorkedOn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newEnquiryService(db)
	sales := testutil.CreateTestUser(t, db, "Sales", domain.RoleSalesman)
	other := testutil.CreateTestUser(t, db, "Other", domain.RoleSalesman)
	client := testutil.CreateTestClient(t, db, "Worked Client")

	testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusDispatched)
	testutil.CreateTestEnquiry(t, db, client.ID, other.ID, domain.StatusEnquiry)

	page, err := svc.ListWorkedOn(testutil.ContextForUser(sales), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.Total)
}
