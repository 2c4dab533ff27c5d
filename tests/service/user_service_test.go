package service_test

import (
	"context"
	"testing"

	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/solmount/enquiry-api/internal/repository"
	"github.com/solmount/enquiry-api/internal/service"
	"github.com/solmount/enquiry-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newUserService(db *gorm.DB) *service.UserService {
	return service.NewUserService(repository.NewUserRepository(db), zap.NewNop())
}

func TestUserService_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	t.Run("creates an active user with lowercased email", func(t *testing.T) {
		user, err := svc.Create(ctx, &domain.CreateUserRequest{
			Email:    "Ravi.Kumar@Example.com",
			Name:     "Ravi Kumar",
			Role:     domain.RoleSalesman,
			Password: "secret-password",
		})
		require.NoError(t, err)
		assert.Equal(t, "ravi.kumar@example.com", user.Email)
		assert.True(t, user.IsActive)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateUserRequest{
			Email:    "ravi.kumar@example.com",
			Name:     "Another Ravi",
			Role:     domain.RoleDesigner,
			Password: "secret-password",
		})
		assert.ErrorIs(t, err, service.ErrConflict)
	})

	t.Run("unknown role", func(t *testing.T) {
		_, err := svc.Create(ctx, &domain.CreateUserRequest{
			Email:    "someone@example.com",
			Name:     "Someone",
			Role:     "janitor",
			Password: "secret-password",
		})
		assert.ErrorIs(t, err, service.ErrInvalidRole)
	})
}

func TestUserService_Authenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newUserService(db)
	ctx := context.Background()

	_, err := svc.Create(ctx, &domain.CreateUserRequest{
		Email:    "login@example.com",
		Name:     "Login User",
		Role:     domain.RoleSalesman,
		Password: "correct-horse",
	})
	require.NoError(t, err)

	t.Run("valid credentials stamp last login", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "Login@Example.com", "correct-horse")
		require.NoError(t, err)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "login@example.com", "wrong")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "nobody@example.com", "correct-horse")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleSuperAdmin)
		adminCtx := testutil.ContextForUser(admin)

		created, err := svc.Create(ctx, &domain.CreateUserRequest{
			Email:    "inactive@example.com",
			Name:     "Inactive",
			Role:     domain.RoleSalesman,
			Password: "correct-horse",
		})
		require.NoError(t, err)
		require.NoError(t, svc.Deactivate(adminCtx, created.ID))

		_, err = svc.Authenticate(ctx, "inactive@example.com", "correct-horse")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}

func TestUserService_Update(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newUserService(db)
	admin := testutil.CreateTestUser(t, db, "Admin", domain.RoleDirector)
	regular := testutil.CreateTestUser(t, db, "Regular", domain.RoleSalesman)
	target := testutil.CreateTestUser(t, db, "Target", domain.RoleSalesman)
	adminCtx := testutil.ContextForUser(admin)
	regularCtx := testutil.ContextForUser(regular)

	t.Run("anyone may change profile fields", func(t *testing.T) {
		updated, err := svc.Update(regularCtx, target.ID, &domain.UpdateUserRequest{Name: "Renamed"})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
	})

	t.Run("role changes require an admin", func(t *testing.T) {
		role := domain.RoleDesigner
		_, err := svc.Update(regularCtx, target.ID, &domain.UpdateUserRequest{Role: &role})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)

		updated, err := svc.Update(adminCtx, target.ID, &domain.UpdateUserRequest{Role: &role})
		require.NoError(t, err)
		assert.Equal(t, domain.RoleDesigner, updated.Role)
	})

	t.Run("active flag changes require an admin", func(t *testing.T) {
		inactive := false
		_, err := svc.Update(regularCtx, target.ID, &domain.UpdateUserRequest{IsActive: &inactive})
		assert.ErrorIs(t, err, service.ErrPermissionDenied)
	})
}

func TestUserService_ListByRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := newUserService(db)
	testutil.CreateTestUser(t, db, "Designer A", domain.RoleDesigner)
	testutil.CreateTestUser(t, db, "Designer B", domain.RoleDesigner)
	testutil.CreateTestUser(t, db, "Sales", domain.RoleSalesman)

	designers, err := svc.ListByRole(context.Background(), domain.RoleDesigner)
	require.NoError(t, err)
	assert.Len(t, designers, 2)

	_, err = svc.ListByRole(context.Background(), "janitor")
	assert.ErrorIs(t, err, service.ErrInvalidRole)
}
