package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/repository"
	"github.com/solmount/enquiry-api/internal/service"
	"github.com/solmount/enquiry-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newClientService(db *gorm.DB) *service.ClientService {
	return service.NewClientService(repository.NewClientRepository(db), zap.NewNop())
}

func TestClientService_CRUD(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newClientService(db)
	ctx := context.Background()

	t.Run("create and get", func(t *testing.T) {
		created, err := svc.Create(ctx, &domain.CreateClientRequest{
			Name:          "Suryodaya Energy",
			ContactPerson: "A. Sharma",
			Email:         "contact@suryodaya.example.com",
			City:          "Pune",
			GSTNumber:     "27AAAAA0000A1Z5",
		})
		require.NoError(t, err)
		assert.Equal(t, "Suryodaya Energy", created.Name)

		got, err := svc.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "27AAAAA0000A1Z5", got.GSTNumber)
	})

	t.Run("update is partial", func(t *testing.T) {
		created, err := svc.Create(ctx, &domain.CreateClientRequest{Name: "Old Name", City: "Chennai"})
		require.NoError(t, err)

		updated, err := svc.Update(ctx, created.ID, &domain.UpdateClientRequest{Name: "New Name"})
		require.NoError(t, err)
		assert.Equal(t, "New Name", updated.Name)
		assert.Equal(t, "Chennai", updated.City)
	})

	t.Run("list with search", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateClientRequest{Name: "Searchable Solar"})
		require.NoError(t, err)

		page, err := svc.List(ctx, "searchable", 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), page.Total)
	})

	t.Run("get unknown", func(t *testing.T) {
		_, err := svc.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrNotFound)
	})
}

func TestClientService_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newClientService(db)
	ctx := context.Background()
	sales := testutil.CreateTestUser(t, db, "Sales", domain.RoleSalesman)

	t.Run("deletes a client without enquiries", func(t *testing.T) {
		client := testutil.CreateTestClient(t, db, "Removable")
		require.NoError(t, svc.Delete(ctx, client.ID))

		_, err := svc.GetByID(ctx, client.ID)
		assert.ErrorIs(t, err, service.ErrNotFound)
	})

	t.Run("refuses while enquiries exist", func(t *testing.T) {
		client := testutil.CreateTestClient(t, db, "Busy Client")
		testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusEnquiry)

		err := svc.Delete(ctx, client.ID)
		assert.ErrorIs(t, err, service.ErrConflict)
	})
}
