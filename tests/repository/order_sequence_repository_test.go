package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/repository"
	"github.com/solmount/enquiry-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderSequenceRepository_NextOrderNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewOrderSequenceRepository(db)

	t.Run("starts at one on an empty database", func(t *testing.T) {
		number, err := repo.NextOrderNumber(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ORD-0001", number)
	})

	t.Run("numbers are sequential", func(t *testing.T) {
		number, err := repo.NextOrderNumber(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ORD-0002", number)

		number, err = repo.NextOrderNumber(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "ORD-0003", number)
	})

	t.Run("current sequence reflects the last allocation", func(t *testing.T) {
		current, err := repo.CurrentSequence(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, current)
	})
}

func TestOrderSequenceRepository_SeedsFromExistingOrders(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewOrderSequenceRepository(db)
	owner := testutil.CreateTestUser(t, db, "Owner", domain.RoleSalesman)
	client := testutil.CreateTestClient(t, db, "Seed Client")

	// pre-existing data with manually assigned order numbers
	for _, num := range []string{"ORD-0031", "ORD-0090", "ORD-0012"} {
		enquiry := testutil.CreateTestEnquiry(t, db, client.ID, owner.ID, domain.StatusInProduction)
		n := num
		enquiry.OrderNumber = &n
		require.NoError(t, db.Save(enquiry).Error)
	}

	number, err := repo.NextOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ORD-0091", number)

	number, err = repo.NextOrderNumber(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ORD-0092", number)
}

func TestOrderSequenceRepository_ConcurrentAllocations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewOrderSequenceRepository(db)

	// sqlite cannot interleave write transactions; funnel the pool through one
	// connection so concurrent callers queue the way postgres row locks queue
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	const callers = 10
	results := make(chan string, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := repo.NextOrderNumber(context.Background())
			assert.NoError(t, err)
			results <- number
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[string]bool)
	for number := range results {
		assert.False(t, seen[number], "duplicate order number %s", number)
		seen[number] = true
	}
	assert.Len(t, seen, callers)

	current, err := repo.CurrentSequence(context.Background())
	require.NoError(t, err)
	assert.Equal(t, callers, current)
}

func TestOrderSequenceRepository_CurrentSequenceUnused(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewOrderSequenceRepository(db)

	current, err := repo.CurrentSequence(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, current)
}
