package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/auth"
	"github.com/solmount/enquiry-api/internal/database"
	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens an isolated in-memory database with the full schema.
// Each call gets its own database, so tests never see each other's data.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")
	require.NoError(t, database.AutoMigrate(db), "failed to migrate test schema")
	return db
}

// CreateTestUser inserts an active user with the given role
func CreateTestUser(t *testing.T, db *gorm.DB, name string, role domain.UserRole) *domain.User {
	t.Helper()

	user := &domain.User{
		Email:    fmt.Sprintf("%s@example.com", uuid.NewString()),
		Name:     name,
		Role:     role,
		IsActive: true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTestClient inserts a client organization
func CreateTestClient(t *testing.T, db *gorm.DB, name string) *domain.Client {
	t.Helper()

	client := &domain.Client{
		Name:          name,
		ContactPerson: "Test Contact",
		Email:         "client@example.com",
		Phone:         "9876543210",
		City:          "Chennai",
	}
	require.NoError(t, db.Create(client).Error)
	return client
}

// CreateTestEnquiry inserts an enquiry directly, bypassing the workflow
// service. Used by repository tests that need rows in a known state.
func CreateTestEnquiry(t *testing.T, db *gorm.DB, clientID, ownerID uuid.UUID, status domain.EnquiryStatus) *domain.Enquiry {
	t.Helper()

	enquiry := &domain.Enquiry{
		EnquiryNum:            fmt.Sprintf("ENQ-%s", uuid.NewString()[:8]),
		ClientID:              clientID,
		MaterialType:          domain.MaterialGI,
		Detail:                "Test mounting structure",
		EnquiryAmount:         50000,
		Status:                status,
		EnquiryBy:             ownerID,
		CurrentAssignedPerson: ownerID,
		WorkAssignedDate:      time.Now(),
	}
	require.NoError(t, db.Create(enquiry).Error)
	return enquiry
}

// ContextForUser returns a context carrying the user's identity
func ContextForUser(user *domain.User) context.Context {
	return auth.WithUserContext(context.Background(), &auth.UserContext{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
	})
}
