package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/washline/laundry-service/internal/domain"
	"github.com/washline/laundry-service/internal/repository"
	apperrors "github.com/washline/laundry-service/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	ID        string
	Role      domain.Role
	User      *domain.User
	SessionID string
	ExpiresAt time.Time
}

// Resolver turns bearer tokens into principals.
type Resolver struct {
	tokens   *TokenManager
	users    repository.UserRepository
	sessions SessionStore
}

// NewResolver constructs the resolver. sessions may be nil, in which case
// revocation is not checked.
func NewResolver(tokens *TokenManager, users repository.UserRepository, sessions SessionStore) *Resolver {
	return &Resolver{tokens: tokens, users: users, sessions: sessions}
}

// Resolve returns the caller behind an Authorization header value. A missing
// or unusable credential yields a nil principal and no error; only store
// failures are reported.
func (r *Resolver) Resolve(ctx context.Context, authorization string) (*Principal, error) {
	token, ok := bearerToken(authorization)
	if !ok {
		return nil, nil
	}

	claims, err := r.tokens.ParseToken(token)
	if err != nil {
		return nil, nil
	}

	if r.sessions != nil {
		revoked, err := r.sessions.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, apperrors.NewStoreUnavailable(err)
		}
		if revoked {
			return nil, nil
		}
	}

	user, err := r.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}

	principal := &Principal{
		ID:        user.ID,
		Role:      user.Role,
		User:      user,
		SessionID: claims.ID,
	}
	if claims.ExpiresAt != nil {
		principal.ExpiresAt = claims.ExpiresAt.Time
	}
	return principal, nil
}

// Handle resolves the caller and stores it in the request locals. It never
// rejects; route guards decide.
func (r *Resolver) Handle(c *fiber.Ctx) error {
	principal, err := r.Resolve(c.UserContext(), c.Get(fiber.HeaderAuthorization))
	if err != nil {
		return err
	}
	if principal != nil {
		c.Locals(principalKey, principal)
	}
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok && principal != nil
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
