package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cassianoaxe/endurancy-support/internal/config"
	"github.com/cassianoaxe/endurancy-support/internal/domain"
	apperrors "github.com/cassianoaxe/endurancy-support/pkg/util"
)

func authConfigForTest() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            4,
	}
}

func newAuthFixture() (*AuthService, map[string]*domain.User) {
	byEmail := map[string]*domain.User{}
	users := &mockUserRepo{
		CreateFn: func(ctx context.Context, user *domain.User) error {
			user.ID = "user-id"
			byEmail[user.Email] = user
			return nil
		},
		GetByEmailFn: func(ctx context.Context, email string) (*domain.User, error) {
			user, ok := byEmail[email]
			if !ok {
				return nil, pgx.ErrNoRows
			}
			return user, nil
		},
	}
	return NewAuthService(authConfigForTest(), users), byEmail
}

func TestRegisterAlwaysGrantsMemberRole(t *testing.T) {
	svc, _ := newAuthFixture()
	user, err := svc.Register(context.Background(), RegisterInput{
		TenantID: "org-7",
		Name:     "Maria",
		Email:    "  MARIA@Example.COM ",
		Password: "segredo123",
		Role:     domain.RoleAdmin, // requested elevation must be ignored
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, user.Role)
	assert.Equal(t, "maria@example.com", user.Email)
	assert.NotEqual(t, "segredo123", user.PasswordHash)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Register(context.Background(), RegisterInput{TenantID: "org-7", Name: "x", Email: "x@y.com", Password: "curta"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INVALID_INPUT"))

	_, err = svc.Register(context.Background(), RegisterInput{Name: "x", Email: "x@y.com", Password: "segredo123"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "INVALID_INPUT"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newAuthFixture()
	input := RegisterInput{TenantID: "org-7", Name: "Maria", Email: "maria@example.com", Password: "segredo123"}

	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), input)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	_, err := svc.Register(context.Background(), RegisterInput{
		TenantID: "org-7", Name: "Maria", Email: "maria@example.com", Password: "segredo123",
	})
	require.NoError(t, err)

	t.Run("valid credentials issue a parseable token", func(t *testing.T) {
		result, err := svc.Login(context.Background(), "Maria@Example.com", "segredo123")
		require.NoError(t, err)
		assert.NotEmpty(t, result.Token)
		assert.False(t, result.ExpiresAt.IsZero())

		claims, err := svc.TokenManager().ParseToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, "user-id", claims.SubjectID)
		assert.Equal(t, "org-7", claims.TenantID)
		assert.Equal(t, domain.RoleMember, claims.Role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "maria@example.com", "errada")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), "ghost@example.com", "segredo123")
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))
	})
}
