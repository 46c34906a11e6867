package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/washline/laundry-service/internal/domain"
	"github.com/washline/laundry-service/internal/repository"
)

func newTestDB() *DB {
	db := New()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	db.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	})
	return db
}

func TestUserVersionConflict(t *testing.T) {
	ctx := context.Background()
	store := newTestDB().Store()

	user := &domain.User{FirstName: "Ada", Email: "ada@example.com", Role: domain.RoleCustomer}
	require.NoError(t, store.Users.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.EqualValues(t, 1, user.Version)

	first, err := store.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	second, err := store.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)

	first.Phone = "555"
	require.NoError(t, store.Users.Update(ctx, first))
	assert.EqualValues(t, 2, first.Version)

	second.Phone = "777"
	assert.ErrorIs(t, store.Users.Update(ctx, second), repository.ErrVersionConflict)

	stored, err := store.Users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "555", stored.Phone)
}

func TestUserEmailUnique(t *testing.T) {
	ctx := context.Background()
	store := newTestDB().Store()

	require.NoError(t, store.Users.Create(ctx, &domain.User{Email: "a@example.com", Role: domain.RoleCustomer}))
	err := store.Users.Create(ctx, &domain.User{Email: "a@example.com", Role: domain.RoleStaff})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	_, err = store.Users.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListByRoleNewestFirstWithLimit(t *testing.T) {
	ctx := context.Background()
	store := newTestDB().Store()

	var ids []string
	for i := 0; i < 4; i++ {
		u := &domain.User{Role: domain.RoleAdmin}
		require.NoError(t, store.Users.Create(ctx, u))
		ids = append(ids, u.ID)
	}
	require.NoError(t, store.Users.Create(ctx, &domain.User{Role: domain.RoleStaff}))

	admins, err := store.Users.ListByRole(ctx, domain.RoleAdmin, 3)
	require.NoError(t, err)
	require.Len(t, admins, 3)
	assert.Equal(t, ids[3], admins[0].ID)
	assert.Equal(t, ids[2], admins[1].ID)
	assert.Equal(t, ids[1], admins[2].ID)

	count, err := store.Users.CountByRole(ctx, domain.RoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 4, count)
}

func TestOrdersBySourceAppointmentAndCloning(t *testing.T) {
	ctx := context.Background()
	store := newTestDB().Store()

	source := "appt-1"
	order := &domain.Order{UserID: "u1", SourceAppointmentID: &source, Status: domain.OrderStatusPending, Items: map[string]any{"shirts": 3}}
	require.NoError(t, store.Orders.Create(ctx, order))

	found, err := store.Orders.GetBySourceAppointment(ctx, "appt-1")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	found.Items["shirts"] = 10
	*found.SourceAppointmentID = "changed"

	again, err := store.Orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, again.Items["shirts"])
	assert.Equal(t, "appt-1", *again.SourceAppointmentID)
}

func TestOrderSourceAppointmentIsUnique(t *testing.T) {
	ctx := context.Background()
	store := newTestDB().Store()

	source := "appt-7"
	require.NoError(t, store.Orders.Create(ctx, &domain.Order{UserID: "u1", SourceAppointmentID: &source, Status: domain.OrderStatusPending}))

	again := "appt-7"
	err := store.Orders.Create(ctx, &domain.Order{UserID: "u1", SourceAppointmentID: &again, Status: domain.OrderStatusPending})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	require.NoError(t, store.Orders.Create(ctx, &domain.Order{UserID: "u1", Status: domain.OrderStatusPending}))
	require.NoError(t, store.Orders.Create(ctx, &domain.Order{UserID: "u1", Status: domain.OrderStatusPending}))

	orders, err := store.Orders.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, orders, 3)
}

func TestOneLiveLaundryJobPerOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestDB().Store()

	first := &domain.LaundryJob{OrderID: "o1", AssignedStaffID: "s1", Status: domain.LaundryJobStatusQueued}
	require.NoError(t, store.LaundryJobs.Create(ctx, first))

	err := store.LaundryJobs.Create(ctx, &domain.LaundryJob{OrderID: "o1", AssignedStaffID: "s2", Status: domain.LaundryJobStatusQueued})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	require.NoError(t, store.LaundryJobs.Create(ctx, &domain.LaundryJob{OrderID: "o2", AssignedStaffID: "s2", Status: domain.LaundryJobStatusQueued}))

	first.Status = domain.LaundryJobStatusCancelled
	require.NoError(t, store.LaundryJobs.Update(ctx, first))
	require.NoError(t, store.LaundryJobs.Create(ctx, &domain.LaundryJob{OrderID: "o1", AssignedStaffID: "s2", Status: domain.LaundryJobStatusQueued}))

	jobs, err := store.LaundryJobs.ListByOrder(ctx, "o1")
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
}

func TestDeleteByOwner(t *testing.T) {
	ctx := context.Background()
	store := newTestDB().Store()

	for i := 0; i < 2; i++ {
		require.NoError(t, store.Appointments.Create(ctx, &domain.Appointment{UserID: "u1", Status: domain.AppointmentStatusPending}))
	}
	require.NoError(t, store.Appointments.Create(ctx, &domain.Appointment{UserID: "u2", Status: domain.AppointmentStatusPending}))

	n, err := store.Appointments.DeleteByUser(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = store.Appointments.DeleteByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)

	rest, err := store.Appointments.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestCancelledContextIsReturned(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore().Users.GetByID(ctx, "any")
	assert.ErrorIs(t, err, context.Canceled)
}
