package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washline/laundry-service/internal/domain"
	apperrors "github.com/washline/laundry-service/pkg/util/errorutil"
)

func TestUpdateProfileKeepsUnsetFields(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	customer := f.seed(t, domain.RoleCustomer)
	svc := NewUserService(f.store.Users, nil)

	phone := " 555-0100 "
	updated, err := svc.UpdateProfile(ctx, customer, ProfileInput{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "555-0100", updated.Phone)
	assert.Equal(t, customer.User.FirstName, updated.FirstName)

	me, err := svc.Me(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, "555-0100", me.Phone)
	assert.EqualValues(t, 2, me.Version)
}

func TestChangeRole(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	superadmin := f.seed(t, domain.RoleSuperadmin)
	admin := f.seed(t, domain.RoleAdmin)
	customer := f.seed(t, domain.RoleCustomer)
	svc := NewUserService(f.store.Users, nil)

	promoted, err := svc.ChangeRole(ctx, superadmin, customer.ID, "Staff")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStaff, promoted.Role)

	_, err = svc.ChangeRole(ctx, admin, customer.ID, "admin")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = svc.ChangeRole(ctx, superadmin, superadmin.ID, "customer")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = svc.ChangeRole(ctx, superadmin, customer.ID, "owner")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.ChangeRole(ctx, superadmin, "ghost", "staff")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}
