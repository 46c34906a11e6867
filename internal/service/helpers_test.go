package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/washline/laundry-service/internal/auth"
	"github.com/washline/laundry-service/internal/domain"
	"github.com/washline/laundry-service/internal/events"
	"github.com/washline/laundry-service/internal/repository"
	"github.com/washline/laundry-service/internal/repository/memory"
	apperrors "github.com/washline/laundry-service/pkg/util/errorutil"
)

var errStoreDown = errors.New("store down")

type fixture struct {
	store      repository.Store
	dispatcher events.Dispatcher
	mu         sync.Mutex
	published  []events.Event
	seq        int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.New()
	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	db.SetClock(func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	})

	f := &fixture{store: db.Store(), dispatcher: events.NewInMemoryDispatcher()}
	for _, eventType := range []events.EventType{
		events.EventAppointmentStatusChanged,
		events.EventOrderCreated,
		events.EventOrderStatusChanged,
		events.EventLaundryJobStatusChanged,
		events.EventUserDeleted,
	} {
		f.dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			f.mu.Lock()
			defer f.mu.Unlock()
			f.published = append(f.published, e)
			return nil
		})
	}
	return f
}

// seed creates a user with the role and returns it as a principal.
func (f *fixture) seed(t *testing.T, role domain.Role) *auth.Principal {
	t.Helper()
	f.seq++
	user := &domain.User{
		FirstName: fmt.Sprintf("%s-%d", role, f.seq),
		LastName:  "Tester",
		Email:     fmt.Sprintf("%s-%d@example.com", role, f.seq),
		Role:      role,
	}
	require.NoError(t, f.store.Users.Create(context.Background(), user))
	return &auth.Principal{ID: user.ID, Role: user.Role, User: user}
}

func (f *fixture) appointments(orders repository.OrderRepository, appts repository.AppointmentRepository) *AppointmentService {
	if orders == nil {
		orders = f.store.Orders
	}
	if appts == nil {
		appts = f.store.Appointments
	}
	return NewAppointmentService(AppointmentDependencies{
		UserRepo:        f.store.Users,
		AppointmentRepo: appts,
		OrderRepo:       orders,
		Dispatcher:      f.dispatcher,
	})
}

func (f *fixture) orders(orders repository.OrderRepository, jobs repository.LaundryJobRepository) *OrderService {
	if orders == nil {
		orders = f.store.Orders
	}
	if jobs == nil {
		jobs = f.store.LaundryJobs
	}
	return NewOrderService(OrderDependencies{
		UserRepo:       f.store.Users,
		OrderRepo:      orders,
		LaundryJobRepo: jobs,
		Dispatcher:     f.dispatcher,
	})
}

func (f *fixture) countEvents(eventType events.EventType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.published {
		if e.Type == eventType {
			n++
		}
	}
	return n
}

// flakyOrders fails selected calls, then delegates to the wrapped repository.
type flakyOrders struct {
	repository.OrderRepository
	createErr       error
	updateErr       error
	updateFailures  int
	deleteByUserErr error
	deleteAllErr    error
}

func (r *flakyOrders) Create(ctx context.Context, order *domain.Order) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.OrderRepository.Create(ctx, order)
}

func (r *flakyOrders) Update(ctx context.Context, order *domain.Order) error {
	if r.updateErr != nil && r.updateFailures > 0 {
		r.updateFailures--
		return r.updateErr
	}
	return r.OrderRepository.Update(ctx, order)
}

func (r *flakyOrders) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	if r.deleteByUserErr != nil {
		return 0, r.deleteByUserErr
	}
	return r.OrderRepository.DeleteByUser(ctx, userID)
}

func (r *flakyOrders) DeleteAll(ctx context.Context) (int64, error) {
	if r.deleteAllErr != nil {
		return 0, r.deleteAllErr
	}
	return r.OrderRepository.DeleteAll(ctx)
}

type flakyAppointments struct {
	repository.AppointmentRepository
	updateErr      error
	updateFailures int
}

func (r *flakyAppointments) Update(ctx context.Context, appt *domain.Appointment) error {
	if r.updateErr != nil && r.updateFailures > 0 {
		r.updateFailures--
		return r.updateErr
	}
	return r.AppointmentRepository.Update(ctx, appt)
}

type flakyJobs struct {
	repository.LaundryJobRepository
	createErr error
	updateErr error
}

func (r *flakyJobs) Create(ctx context.Context, job *domain.LaundryJob) error {
	if r.createErr != nil {
		return r.createErr
	}
	return r.LaundryJobRepository.Create(ctx, job)
}

func (r *flakyJobs) Update(ctx context.Context, job *domain.LaundryJob) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	return r.LaundryJobRepository.Update(ctx, job)
}

type flakyUsers struct {
	repository.UserRepository
	countErr error
}

func (r *flakyUsers) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	if r.countErr != nil {
		return 0, r.countErr
	}
	return r.UserRepository.CountByRole(ctx, role)
}

type advancerFunc func(ctx context.Context, orderID string) (bool, error)

func (f advancerFunc) AdvanceToReady(ctx context.Context, orderID string) (bool, error) {
	return f(ctx, orderID)
}

// gatedOrders holds every Create until `parties` callers have arrived, so
// concurrent requests all pass their existence checks before any insert.
type gatedOrders struct {
	repository.OrderRepository
	arrived *sync.WaitGroup
}

func newGatedOrders(inner repository.OrderRepository, parties int) *gatedOrders {
	wg := &sync.WaitGroup{}
	wg.Add(parties)
	return &gatedOrders{OrderRepository: inner, arrived: wg}
}

func (r *gatedOrders) Create(ctx context.Context, order *domain.Order) error {
	r.arrived.Done()
	r.arrived.Wait()
	return r.OrderRepository.Create(ctx, order)
}

type gatedJobs struct {
	repository.LaundryJobRepository
	arrived *sync.WaitGroup
}

func newGatedJobs(inner repository.LaundryJobRepository, parties int) *gatedJobs {
	wg := &sync.WaitGroup{}
	wg.Add(parties)
	return &gatedJobs{LaundryJobRepository: inner, arrived: wg}
}

func (r *gatedJobs) Create(ctx context.Context, job *domain.LaundryJob) error {
	r.arrived.Done()
	r.arrived.Wait()
	return r.LaundryJobRepository.Create(ctx, job)
}

// concurrently runs fn once per caller at the same time and returns the
// errors in caller order.
func concurrently(callers int, fn func(i int) error) []error {
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fn(i)
		}()
	}
	wg.Wait()
	return errs
}

// countCodes tallies nil errors under "" and domain errors by code.
func countCodes(errs []error) map[string]int {
	out := map[string]int{}
	for _, err := range errs {
		if err == nil {
			out[""]++
			continue
		}
		out[apperrors.ToDomainError(err).Code]++
	}
	return out
}
