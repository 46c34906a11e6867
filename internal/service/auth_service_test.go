package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/washline/laundry-service/internal/auth"
	"github.com/washline/laundry-service/internal/config"
	"github.com/washline/laundry-service/internal/domain"
	apperrors "github.com/washline/laundry-service/pkg/util/errorutil"
)

func newAuthService(t *testing.T, f *fixture, sessions auth.SessionStore) *AuthService {
	t.Helper()
	cfg := config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 15, BcryptCost: bcrypt.MinCost}
	return NewAuthService(cfg, AuthDependencies{UserRepo: f.store.Users, Sessions: sessions})
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newAuthService(t, f, auth.NewMemorySessionStore())

	registered, err := svc.Register(ctx, RegisterInput{
		FirstName: " Grace ",
		LastName:  "Hopper",
		Email:     "Grace@Example.com",
		Password:  "cobol-rules",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, registered.User.Role)
	assert.Equal(t, "grace@example.com", registered.User.Email)
	assert.Equal(t, "Grace", registered.User.FirstName)
	assert.NotEqual(t, "cobol-rules", registered.User.PasswordHash)
	assert.NotEmpty(t, registered.Token)

	claims, err := svc.TokenManager().ParseToken(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.Subject)
	assert.Equal(t, domain.RoleCustomer, claims.Role)

	loggedIn, err := svc.Login(ctx, "GRACE@example.com ", "cobol-rules")
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	_, err = svc.Login(ctx, "grace@example.com", "wrong")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))

	_, err = svc.Login(ctx, "nobody@example.com", "cobol-rules")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := newAuthService(t, f, nil)

	_, err := svc.Register(ctx, RegisterInput{Email: "dup@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "DUP@example.com", Password: "password2"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

	_, err = svc.Register(ctx, RegisterInput{Email: "  ", Password: "password2"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}

func TestLogoutRevokesSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sessions := auth.NewMemorySessionStore()
	svc := newAuthService(t, f, sessions)

	result, err := svc.Register(ctx, RegisterInput{Email: "leaving@example.com", Password: "password1"})
	require.NoError(t, err)
	claims, err := svc.TokenManager().ParseToken(result.Token)
	require.NoError(t, err)

	principal := &auth.Principal{
		ID:        result.User.ID,
		Role:      result.User.Role,
		SessionID: claims.ID,
		ExpiresAt: result.ExpiresAt,
	}
	require.NoError(t, svc.Logout(ctx, principal))

	revoked, err := sessions.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.True(t, apperrors.HasCode(svc.Logout(ctx, nil), apperrors.CodeUnauthenticated))
}
