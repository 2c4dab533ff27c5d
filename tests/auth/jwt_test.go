package auth_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/solmount/enquiry-api/internal/auth"
	"github.com/solmount/enquiry-api/internal/config"
	"github.com/solmount/enquiry-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(ttlSeconds int) *auth.JWTValidator {
	return auth.NewJWTValidator(&config.AuthConfig{
		JWTSecret: "test-signing-secret",
		Issuer:    "enquiry-api",
		TokenTTL:  ttlSeconds,
	})
}

func testUser() *domain.User {
	return &domain.User{
		ID:    uuid.New(),
		Name:  "Priya",
		Email: "priya@example.com",
		Role:  domain.RoleDesigner,
	}
}

func TestJWTValidator_RoundTrip(t *testing.T) {
	validator := newValidator(3600)
	user := testUser()

	token, err := validator.IssueToken(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	userCtx, err := validator.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userCtx.UserID)
	assert.Equal(t, user.Name, userCtx.Name)
	assert.Equal(t, user.Email, userCtx.Email)
	assert.Equal(t, domain.RoleDesigner, userCtx.Role)
}

func TestJWTValidator_Expired(t *testing.T) {
	validator := newValidator(-60)

	token, err := validator.IssueToken(testUser())
	require.NoError(t, err)

	_, err = validator.ValidateToken(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestJWTValidator_Invalid(t *testing.T) {
	t.Run("wrong secret", func(t *testing.T) {
		issuer := auth.NewJWTValidator(&config.AuthConfig{
			JWTSecret: "other-secret",
			Issuer:    "enquiry-api",
			TokenTTL:  3600,
		})
		token, err := issuer.IssueToken(testUser())
		require.NoError(t, err)

		_, err = newValidator(3600).ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		issuer := auth.NewJWTValidator(&config.AuthConfig{
			JWTSecret: "test-signing-secret",
			Issuer:    "someone-else",
			TokenTTL:  3600,
		})
		token, err := issuer.IssueToken(testUser())
		require.NoError(t, err)

		_, err = newValidator(3600).ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("unknown role claim", func(t *testing.T) {
		user := testUser()
		user.Role = domain.UserRole("janitor")
		token, err := newValidator(3600).IssueToken(user)
		require.NoError(t, err)

		_, err = newValidator(3600).ValidateToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := newValidator(3600).ValidateToken("not.a.token")
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}
