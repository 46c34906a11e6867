package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washline/laundry-service/internal/domain"
	"github.com/washline/laundry-service/internal/repository/memory"
	apperrors "github.com/washline/laundry-service/pkg/util/errorutil"
)

func TestAuthorize(t *testing.T) {
	staffOrAdmin := Roles(domain.RoleStaff, domain.RoleAdmin)

	tests := []struct {
		name      string
		principal *Principal
		allowed   RoleSet
		want      Decision
	}{
		{"anonymous", nil, staffOrAdmin, Decision{Reason: ReasonUnauthenticated}},
		{"role in set", &Principal{ID: "u1", Role: domain.RoleStaff}, staffOrAdmin, Decision{Allowed: true}},
		{"role outside set", &Principal{ID: "u1", Role: domain.RoleCustomer}, staffOrAdmin, Decision{Reason: ReasonForbidden}},
		{"superadmin is not implied", &Principal{ID: "u1", Role: domain.RoleSuperadmin}, staffOrAdmin, Decision{Reason: ReasonForbidden}},
		{"any role", &Principal{ID: "u1", Role: domain.RoleCustomer}, AnyRole(), Decision{Allowed: true}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Authorize(tc.principal, tc.allowed))
		})
	}

	assert.True(t, apperrors.HasCode(Decision{Reason: ReasonUnauthenticated}.Err(), apperrors.CodeUnauthenticated))
	assert.True(t, apperrors.HasCode(Decision{Reason: ReasonForbidden}.Err(), apperrors.CodeForbidden))
	assert.NoError(t, Decision{Allowed: true}.Err())
}

func TestTokenRoundTripAndExpiry(t *testing.T) {
	tm := NewTokenManager("secret", 10)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tm.now = func() time.Time { return now }

	issued, err := tm.GenerateToken("user-1", domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, now.Add(10*time.Minute), issued.ExpiresAt)

	claims, err := tm.ParseToken(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, issued.SessionID, claims.ID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
	assert.Equal(t, 10*time.Minute, tm.RemainingTTL(claims))

	_, err = NewTokenManager("other-secret", 10).ParseToken(issued.Token)
	assert.Error(t, err)

	now = now.Add(11 * time.Minute)
	_, err = tm.ParseToken(issued.Token)
	assert.Error(t, err)
}

type failingSessions struct{}

func (failingSessions) Revoke(context.Context, string, time.Duration) error { return nil }

func (failingSessions) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func TestResolver(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	user := &domain.User{FirstName: "Sam", Role: domain.RoleStaff}
	require.NoError(t, store.Users.Create(ctx, user))

	tm := NewTokenManager("secret", 5)
	sessions := NewMemorySessionStore()
	resolver := NewResolver(tm, store.Users, sessions)

	issued, err := tm.GenerateToken(user.ID, domain.RoleCustomer)
	require.NoError(t, err)

	principal, err := resolver.Resolve(ctx, "Bearer "+issued.Token)
	require.NoError(t, err)
	require.NotNil(t, principal)
	assert.Equal(t, user.ID, principal.ID)
	assert.Equal(t, domain.RoleStaff, principal.Role, "role comes from the stored user")
	assert.Equal(t, issued.SessionID, principal.SessionID)

	for _, header := range []string{"", "Bearer", "Basic abc", "Bearer garbage"} {
		p, err := resolver.Resolve(ctx, header)
		assert.NoError(t, err, header)
		assert.Nil(t, p, header)
	}

	ghost, err := tm.GenerateToken("ghost", domain.RoleAdmin)
	require.NoError(t, err)
	p, err := resolver.Resolve(ctx, "Bearer "+ghost.Token)
	assert.NoError(t, err)
	assert.Nil(t, p)

	require.NoError(t, sessions.Revoke(ctx, issued.SessionID, time.Minute))
	p, err = resolver.Resolve(ctx, "Bearer "+issued.Token)
	assert.NoError(t, err)
	assert.Nil(t, p)

	_, err = NewResolver(tm, store.Users, failingSessions{}).Resolve(ctx, "Bearer "+issued.Token)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStoreUnavailable))
}

func TestRequireRolesGuard(t *testing.T) {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Use(func(c *fiber.Ctx) error {
		if role := c.Get("X-Test-Role"); role != "" {
			c.Locals(principalKey, &Principal{ID: "u1", Role: domain.Role(role)})
		}
		return c.Next()
	})
	app.Get("/admin", RequireRoles(domain.RoleAdmin), func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})

	tests := []struct {
		role string
		want int
	}{
		{"", http.StatusUnauthorized},
		{"customer", http.StatusForbidden},
		{"superadmin", http.StatusForbidden},
		{"admin", http.StatusOK},
	}
	for _, tc := range tests {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		if tc.role != "" {
			req.Header.Set("X-Test-Role", tc.role)
		}
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, tc.want, resp.StatusCode, tc.role)
	}
}

func TestMemorySessionStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(ctx, "s1", time.Minute))
	require.NoError(t, store.Revoke(ctx, "s2", 0))

	revoked, err := store.IsRevoked(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "s2")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestPasswordHashing(t *testing.T) {
	hashed, err := HashPassword("laundry-day", 1)
	require.NoError(t, err)
	assert.NotEqual(t, "laundry-day", hashed)

	assert.NoError(t, ComparePassword(hashed, "laundry-day"))
	assert.ErrorIs(t, ComparePassword(hashed, "wash-day"), ErrPasswordMismatch)
	assert.Error(t, ComparePassword("", "laundry-day"))
}
