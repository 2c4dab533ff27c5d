package repository_test

import (
	"context"
	"testing"

	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/repository"
	"github.com/solmount/enquiry-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnquiryRepository_VisibilityScope(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewEnquiryRepository(db)
	owner := testutil.CreateTestUser(t, db, "Owner", domain.RoleSalesman)
	colleague := testutil.CreateTestUser(t, db, "Colleague", domain.RoleSalesman)
	director := testutil.CreateTestUser(t, db, "Director", domain.RoleDirector)
	client := testutil.CreateTestClient(t, db, "Scope Client")

	mine := testutil.CreateTestEnquiry(t, db, client.ID, owner.ID, domain.StatusEnquiry)
	testutil.CreateTestEnquiry(t, db, client.ID, colleague.ID, domain.StatusEnquiry)

	t.Run("non-admin sees only own and assigned", func(t *testing.T) {
		enquiries, total, err := repo.List(testutil.ContextForUser(owner), 1, 20, nil, repository.SortConfig{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, enquiries, 1)
		assert.Equal(t, mine.ID, enquiries[0].ID)
	})

	t.Run("admin roles see everything", func(t *testing.T) {
		_, total, err := repo.List(testutil.ContextForUser(director), 1, 20, nil, repository.SortConfig{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("internal callers without user context are unrestricted", func(t *testing.T) {
		_, total, err := repo.List(context.Background(), 1, 20, nil, repository.SortConfig{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("assignment grants visibility", func(t *testing.T) {
		reassigned := testutil.CreateTestEnquiry(t, db, client.ID, colleague.ID, domain.StatusDesign)
		reassigned.CurrentAssignedPerson = owner.ID
		require.NoError(t, repo.Update(context.Background(), reassigned))

		_, total, err := repo.List(testutil.ContextForUser(owner), 1, 20, nil, repository.SortConfig{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("non-sales roles see only current assignments", func(t *testing.T) {
		designer := testutil.CreateTestUser(t, db, "Designer", domain.RoleDesigner)

		// enquiry raised by the designer but since handed to someone else;
		// the originator grant is a sales-only rule
		raised := testutil.CreateTestEnquiry(t, db, client.ID, designer.ID, domain.StatusBOQ)
		raised.CurrentAssignedPerson = owner.ID
		require.NoError(t, repo.Update(context.Background(), raised))

		_, total, err := repo.List(testutil.ContextForUser(designer), 1, 20, nil, repository.SortConfig{})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)

		// a live assignment brings work into view
		assigned := testutil.CreateTestEnquiry(t, db, client.ID, colleague.ID, domain.StatusDesign)
		assigned.CurrentAssignedPerson = designer.ID
		require.NoError(t, repo.Update(context.Background(), assigned))

		enquiries, total, err := repo.List(testutil.ContextForUser(designer), 1, 20, nil, repository.SortConfig{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, enquiries, 1)
		assert.Equal(t, assigned.ID, enquiries[0].ID)
	})
}

func TestEnquiryRepository_Filters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewEnquiryRepository(db)
	owner := testutil.CreateTestUser(t, db, "Owner", domain.RoleSalesman)
	client := testutil.CreateTestClient(t, db, "Filter Client")

	testutil.CreateTestEnquiry(t, db, client.ID, owner.ID, domain.StatusEnquiry)
	designed := testutil.CreateTestEnquiry(t, db, client.ID, owner.ID, domain.StatusDesign)
	confirmed := testutil.CreateTestEnquiry(t, db, client.ID, owner.ID, domain.StatusInProduction)
	orderNum := "ORD-0042"
	confirmed.OrderNumber = &orderNum
	require.NoError(t, repo.Update(context.Background(), confirmed))

	t.Run("by status", func(t *testing.T) {
		status := domain.StatusDesign
		enquiries, total, err := repo.List(context.Background(), 1, 20, &repository.EnquiryFilters{Status: &status}, repository.SortConfig{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, enquiries, 1)
		assert.Equal(t, designed.ID, enquiries[0].ID)
	})

	t.Run("by order presence", func(t *testing.T) {
		hasOrder := true
		enquiries, total, err := repo.List(context.Background(), 1, 20, &repository.EnquiryFilters{HasOrder: &hasOrder}, repository.SortConfig{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, enquiries, 1)
		assert.Equal(t, confirmed.ID, enquiries[0].ID)
	})

	t.Run("by search query", func(t *testing.T) {
		search := designed.EnquiryNum
		_, total, err := repo.List(context.Background(), 1, 20, &repository.EnquiryFilters{SearchQuery: &search}, repository.SortConfig{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})
}

func TestEnquiryRepository_ListWorkedOn(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewEnquiryRepository(db)
	historyRepo := repository.NewEnquiryStatusHistoryRepository(db)
	sales := testutil.CreateTestUser(t, db, "Sales", domain.RoleSalesman)
	designer := testutil.CreateTestUser(t, db, "Designer", domain.RoleDesigner)
	client := testutil.CreateTestClient(t, db, "History Client")

	// enquiry owned by sales, later moved on by the designer
	enquiry := testutil.CreateTestEnquiry(t, db, client.ID, sales.ID, domain.StatusBOQ)
	require.NoError(t, historyRepo.Create(context.Background(), &domain.EnquiryStatusHistory{
		EnquiryID:      enquiry.ID,
		Status:         domain.StatusDesign,
		AssignedPerson: designer.ID,
		Note:           "Sent to design",
	}))

	t.Run("past participant still sees the enquiry", func(t *testing.T) {
		enquiries, total, err := repo.ListWorkedOn(context.Background(), designer.ID, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, enquiries, 1)
		assert.Equal(t, enquiry.ID, enquiries[0].ID)
	})

	t.Run("originator is always included", func(t *testing.T) {
		_, total, err := repo.ListWorkedOn(context.Background(), sales.ID, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
	})

	t.Run("outsider sees nothing", func(t *testing.T) {
		outsider := testutil.CreateTestUser(t, db, "Outsider", domain.RoleProduction)
		_, total, err := repo.ListWorkedOn(context.Background(), outsider.ID, 1, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
	})
}

func TestEnquiryRepository_MaxOrderNumberSuffix(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewEnquiryRepository(db)
	owner := testutil.CreateTestUser(t, db, "Owner", domain.RoleSalesman)
	client := testutil.CreateTestClient(t, db, "Suffix Client")

	t.Run("zero with no orders", func(t *testing.T) {
		max, err := repo.MaxOrderNumberSuffix(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, max)
	})

	t.Run("highest numeric suffix wins", func(t *testing.T) {
		for _, num := range []string{"ORD-0007", "ORD-0123", "ORD-0050"} {
			enquiry := testutil.CreateTestEnquiry(t, db, client.ID, owner.ID, domain.StatusReadyForProduction)
			n := num
			enquiry.OrderNumber = &n
			require.NoError(t, repo.Update(context.Background(), enquiry))
		}

		max, err := repo.MaxOrderNumberSuffix(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 123, max)
	})
}
