package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washline/laundry-service/internal/domain"
	apperrors "github.com/washline/laundry-service/pkg/util/errorutil"
)

func seedJob(t *testing.T, f *fixture, assignee string, status domain.LaundryJobStatus) *domain.LaundryJob {
	t.Helper()
	ctx := context.Background()
	order := &domain.Order{UserID: "customer-1", Status: domain.OrderStatusInProgress}
	require.NoError(t, f.store.Orders.Create(ctx, order))
	job := &domain.LaundryJob{OrderID: order.ID, AssignedStaffID: assignee, Status: status}
	require.NoError(t, f.store.LaundryJobs.Create(ctx, job))
	return job
}

func TestLaundryJobTransitionPermissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	assigned := f.seed(t, domain.RoleStaff)
	otherStaff := f.seed(t, domain.RoleStaff)
	admin := f.seed(t, domain.RoleAdmin)
	customer := f.seed(t, domain.RoleCustomer)
	svc := NewLaundryJobService(LaundryJobDependencies{LaundryJobRepo: f.store.LaundryJobs, Orders: f.orders(nil, nil)})

	job := seedJob(t, f, assigned.ID, domain.LaundryJobStatusQueued)

	_, err := svc.Transition(ctx, otherStaff, job.ID, "washing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = svc.Transition(ctx, customer, job.ID, "washing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	updated, err := svc.Transition(ctx, assigned, job.ID, "washing")
	require.NoError(t, err)
	assert.Equal(t, domain.LaundryJobStatusWashing, updated.Status)

	updated, err = svc.Transition(ctx, admin, job.ID, "drying")
	require.NoError(t, err)
	assert.Equal(t, domain.LaundryJobStatusDrying, updated.Status)

	_, err = svc.Transition(ctx, admin, job.ID, "complete")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidTransition))

	_, err = svc.Transition(ctx, admin, job.ID, "spinning")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	_, err = svc.Get(ctx, customer, job.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	_, err = svc.Get(ctx, admin, "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestLaundryJobCompleteAdvancesOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	staff := f.seed(t, domain.RoleStaff)
	svc := NewLaundryJobService(LaundryJobDependencies{LaundryJobRepo: f.store.LaundryJobs, Orders: f.orders(nil, nil)})

	job := seedJob(t, f, staff.ID, domain.LaundryJobStatusFolding)

	done, err := svc.Transition(ctx, staff, job.ID, "complete")
	require.NoError(t, err)
	assert.Equal(t, domain.LaundryJobStatusComplete, done.Status)

	order, err := f.store.Orders.GetByID(ctx, job.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCompleted, order.Status)

	_, err = svc.Transition(ctx, staff, job.ID, "queued")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeTerminalState))
}

func TestLaundryJobCompleteFailureLeavesJob(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	staff := f.seed(t, domain.RoleStaff)
	failing := advancerFunc(func(context.Context, string) (bool, error) {
		return false, errStoreDown
	})
	svc := NewLaundryJobService(LaundryJobDependencies{LaundryJobRepo: f.store.LaundryJobs, Orders: failing})

	job := seedJob(t, f, staff.ID, domain.LaundryJobStatusFolding)

	_, err := svc.Transition(ctx, staff, job.ID, "complete")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeSideEffectFailed))

	stored, err := f.store.LaundryJobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LaundryJobStatusFolding, stored.Status)

	order, err := f.store.Orders.GetByID(ctx, job.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusInProgress, order.Status)
}

func TestLaundryJobCompleteLeavesDeliveredOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	admin := f.seed(t, domain.RoleAdmin)
	svc := NewLaundryJobService(LaundryJobDependencies{LaundryJobRepo: f.store.LaundryJobs, Orders: f.orders(nil, nil)})

	job := seedJob(t, f, "someone", domain.LaundryJobStatusFolding)
	order, err := f.store.Orders.GetByID(ctx, job.OrderID)
	require.NoError(t, err)
	order.Status = domain.OrderStatusDelivered
	require.NoError(t, f.store.Orders.Update(ctx, order))

	_, err = svc.Transition(ctx, admin, job.ID, "complete")
	require.NoError(t, err)

	stored, err := f.store.Orders.GetByID(ctx, job.OrderID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusDelivered, stored.Status)
}
