package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/washline/laundry-service/internal/auth"
	"github.com/washline/laundry-service/internal/domain"
	"github.com/washline/laundry-service/internal/repository"
	apperrors "github.com/washline/laundry-service/pkg/util/errorutil"
)

// UserService manages profiles and roles.
type UserService struct {
	users  repository.UserRepository
	logger *zap.Logger
}

// ProfileInput holds optional profile edits; nil fields are left unchanged.
type ProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
}

var roleManagers = auth.Roles(domain.RoleSuperadmin)

// NewUserService constructs the service.
func NewUserService(users repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{users: users, logger: nopLogger(logger)}
}

// Me returns the caller's current record.
func (s *UserService) Me(ctx context.Context, principal *auth.Principal) (*domain.User, error) {
	if err := requirePrincipal(principal, auth.AnyRole()); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, principal.ID)
	if err != nil {
		return nil, storeError(err, "user", principal.ID)
	}
	return user, nil
}

// UpdateProfile edits the caller's name and phone.
func (s *UserService) UpdateProfile(ctx context.Context, principal *auth.Principal, input ProfileInput) (*domain.User, error) {
	user, err := s.Me(ctx, principal)
	if err != nil {
		return nil, err
	}
	if input.FirstName != nil {
		user.FirstName = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		user.LastName = strings.TrimSpace(*input.LastName)
	}
	if input.Phone != nil {
		user.Phone = strings.TrimSpace(*input.Phone)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "user", user.ID)
	}
	return user, nil
}

// ChangeRole assigns a new role. Superadmins cannot change their own role.
func (s *UserService) ChangeRole(ctx context.Context, principal *auth.Principal, userID, role string) (*domain.User, error) {
	if err := requirePrincipal(principal, roleManagers); err != nil {
		return nil, err
	}
	newRole, err := domain.ParseRole(role)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), map[string]any{"field": "role"})
	}
	if userID == principal.ID {
		return nil, apperrors.NewForbidden("superadmins cannot change their own role")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, storeError(err, "user", userID)
	}
	if user.Role == newRole {
		return user, nil
	}
	previous := user.Role
	user.Role = newRole
	if err := s.users.Update(ctx, user); err != nil {
		return nil, storeError(err, "user", userID)
	}
	s.logger.Info("user role changed",
		zap.String("user_id", user.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(newRole)),
		zap.String("actor_id", principal.ID))
	return user, nil
}
