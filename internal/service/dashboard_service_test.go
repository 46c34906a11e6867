package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washline/laundry-service/internal/domain"
	apperrors "github.com/washline/laundry-service/pkg/util/errorutil"
)

func TestSuperadminSummaryCounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	superadmin := f.seed(t, domain.RoleSuperadmin)

	var admins []string
	for i := 0; i < 3; i++ {
		admins = append(admins, f.seed(t, domain.RoleAdmin).ID)
	}
	for i := 0; i < 5; i++ {
		f.seed(t, domain.RoleStaff)
	}
	for i := 0; i < 10; i++ {
		f.seed(t, domain.RoleCustomer)
	}

	summary, err := NewDashboardService(f.store.Users, 0).SuperadminSummary(ctx, superadmin)
	require.NoError(t, err)
	assert.EqualValues(t, 3, summary.TotalAdmins)
	assert.EqualValues(t, 5, summary.TotalStaff)
	assert.EqualValues(t, 10, summary.TotalCustomers)

	require.Len(t, summary.RecentAdmins, 3)
	newest, err := f.store.Users.GetByID(ctx, admins[2])
	require.NoError(t, err)
	assert.Equal(t, newest.Email, summary.RecentAdmins[0].Email)
	assert.True(t, summary.RecentAdmins[0].CreatedAt.After(summary.RecentAdmins[1].CreatedAt))
	assert.True(t, summary.RecentAdmins[1].CreatedAt.After(summary.RecentAdmins[2].CreatedAt))
}

func TestSuperadminSummaryLimitsRecentAdmins(t *testing.T) {
	f := newFixture(t)
	superadmin := f.seed(t, domain.RoleSuperadmin)
	for i := 0; i < MaxRecentAdmins+2; i++ {
		f.seed(t, domain.RoleAdmin)
	}

	summary, err := NewDashboardService(f.store.Users, 50).SuperadminSummary(context.Background(), superadmin)
	require.NoError(t, err)
	assert.EqualValues(t, MaxRecentAdmins+2, summary.TotalAdmins)
	assert.Len(t, summary.RecentAdmins, MaxRecentAdmins)
}

func TestSuperadminSummaryEmpty(t *testing.T) {
	f := newFixture(t)
	superadmin := f.seed(t, domain.RoleSuperadmin)

	summary, err := NewDashboardService(f.store.Users, 5).SuperadminSummary(context.Background(), superadmin)
	require.NoError(t, err)
	assert.Zero(t, summary.TotalAdmins)
	assert.NotNil(t, summary.RecentAdmins)
	assert.Empty(t, summary.RecentAdmins)
}

func TestSuperadminSummaryAccess(t *testing.T) {
	f := newFixture(t)
	admin := f.seed(t, domain.RoleAdmin)
	svc := NewDashboardService(f.store.Users, 0)

	_, err := svc.SuperadminSummary(context.Background(), admin)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = svc.SuperadminSummary(context.Background(), nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthenticated))
}

func TestSuperadminSummaryReadFailure(t *testing.T) {
	f := newFixture(t)
	superadmin := f.seed(t, domain.RoleSuperadmin)
	users := &flakyUsers{UserRepository: f.store.Users, countErr: errStoreDown}

	_, err := NewDashboardService(users, 0).SuperadminSummary(context.Background(), superadmin)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInternal))
	assert.ErrorIs(t, err, errStoreDown)
}
