// Package memory is an in-memory implementation of the repository
// interfaces. It is safe for concurrent use and backs tests and local runs
// without Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/washline/laundry-service/internal/domain"
	"github.com/washline/laundry-service/internal/repository"
)

// DB holds every collection behind a single lock.
type DB struct {
	mu           sync.RWMutex
	now          func() time.Time
	users        map[string]domain.User
	appointments map[string]domain.Appointment
	orders       map[string]domain.Order
	jobs         map[string]domain.LaundryJob
}

// New creates an empty database.
func New() *DB {
	return &DB{
		now:          func() time.Time { return time.Now().UTC() },
		users:        make(map[string]domain.User),
		appointments: make(map[string]domain.Appointment),
		orders:       make(map[string]domain.Order),
		jobs:         make(map[string]domain.LaundryJob),
	}
}

// NewStore returns a repository.Store backed by a fresh in-memory database.
func NewStore() repository.Store {
	return New().Store()
}

// Store exposes the database through the repository interfaces.
func (db *DB) Store() repository.Store {
	return repository.Store{
		Users:        userRepo{db},
		Appointments: appointmentRepo{db},
		Orders:       orderRepo{db},
		LaundryJobs:  laundryJobRepo{db},
	}
}

// SetClock overrides the timestamp source. Tests use it to order createdAt.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

// Users -----------------------------------------------------------------------

type userRepo struct{ db *DB }

var _ repository.UserRepository = userRepo{}

func (r userRepo) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if _, exists := r.db.users[user.ID]; exists {
		return repository.ErrDuplicate
	}
	if user.Email != "" && r.emailTakenLocked(user.Email, user.ID) {
		return repository.ErrDuplicate
	}
	now := r.db.now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.Version = 1
	r.db.users[user.ID] = *user
	return nil
}

func (r userRepo) Update(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok := r.db.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if current.Version != user.Version {
		return repository.ErrVersionConflict
	}
	if user.Email != "" && r.emailTakenLocked(user.Email, user.ID) {
		return repository.ErrDuplicate
	}
	user.CreatedAt = current.CreatedAt
	user.UpdatedAt = r.db.now()
	user.Version++
	r.db.users[user.ID] = *user
	return nil
}

func (r userRepo) emailTakenLocked(email, exceptID string) bool {
	for id, u := range r.db.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (r userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	user, ok := r.db.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, user := range r.db.users {
		if email != "" && user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r userRepo) CountByRole(ctx context.Context, role domain.Role) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var count int64
	for _, user := range r.db.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

func (r userRepo) ListByRole(ctx context.Context, role domain.Role, limit int) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var result []domain.User
	for _, user := range r.db.users {
		if user.Role == role {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r userRepo) ListMissingEmail(ctx context.Context) ([]domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var result []domain.User
	for _, user := range r.db.users {
		if user.Email == "" {
			result = append(result, user)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r userRepo) Delete(ctx context.Context, id string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return 0, nil
	}
	delete(r.db.users, id)
	return 1, nil
}

func (r userRepo) DeleteAll(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n := int64(len(r.db.users))
	r.db.users = make(map[string]domain.User)
	return n, nil
}

// Appointments ----------------------------------------------------------------

type appointmentRepo struct{ db *DB }

var _ repository.AppointmentRepository = appointmentRepo{}

func (r appointmentRepo) Create(ctx context.Context, appt *domain.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	if _, exists := r.db.appointments[appt.ID]; exists {
		return repository.ErrDuplicate
	}
	now := r.db.now()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	appt.Version = 1
	r.db.appointments[appt.ID] = cloneAppointment(*appt)
	return nil
}

func (r appointmentRepo) Update(ctx context.Context, appt *domain.Appointment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok := r.db.appointments[appt.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if current.Version != appt.Version {
		return repository.ErrVersionConflict
	}
	appt.UserID = current.UserID
	appt.CreatedAt = current.CreatedAt
	appt.UpdatedAt = r.db.now()
	appt.Version++
	r.db.appointments[appt.ID] = cloneAppointment(*appt)
	return nil
}

func (r appointmentRepo) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	appt, ok := r.db.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneAppointment(appt)
	return &out, nil
}

func (r appointmentRepo) ListByUser(ctx context.Context, userID string) ([]domain.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var result []domain.Appointment
	for _, appt := range r.db.appointments {
		if appt.UserID == userID {
			result = append(result, cloneAppointment(appt))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r appointmentRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for id, appt := range r.db.appointments {
		if appt.UserID == userID {
			delete(r.db.appointments, id)
			n++
		}
	}
	return n, nil
}

func (r appointmentRepo) DeleteAll(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n := int64(len(r.db.appointments))
	r.db.appointments = make(map[string]domain.Appointment)
	return n, nil
}

// Orders ----------------------------------------------------------------------

type orderRepo struct{ db *DB }

var _ repository.OrderRepository = orderRepo{}

func (r orderRepo) Create(ctx context.Context, order *domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if _, exists := r.db.orders[order.ID]; exists {
		return repository.ErrDuplicate
	}
	if order.SourceAppointmentID != nil {
		for _, other := range r.db.orders {
			if other.SourceAppointmentID != nil && *other.SourceAppointmentID == *order.SourceAppointmentID {
				return repository.ErrDuplicate
			}
		}
	}
	now := r.db.now()
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Version = 1
	r.db.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r orderRepo) Update(ctx context.Context, order *domain.Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok := r.db.orders[order.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if current.Version != order.Version {
		return repository.ErrVersionConflict
	}
	order.UserID = current.UserID
	order.SourceAppointmentID = current.SourceAppointmentID
	order.CreatedAt = current.CreatedAt
	order.UpdatedAt = r.db.now()
	order.Version++
	r.db.orders[order.ID] = cloneOrder(*order)
	return nil
}

func (r orderRepo) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	order, ok := r.db.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneOrder(order)
	return &out, nil
}

func (r orderRepo) GetBySourceAppointment(ctx context.Context, appointmentID string) (*domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	for _, order := range r.db.orders {
		if order.SourceAppointmentID != nil && *order.SourceAppointmentID == appointmentID {
			out := cloneOrder(order)
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r orderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var result []domain.Order
	for _, order := range r.db.orders {
		if order.UserID == userID {
			result = append(result, cloneOrder(order))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r orderRepo) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for id, order := range r.db.orders {
		if order.UserID == userID {
			delete(r.db.orders, id)
			n++
		}
	}
	return n, nil
}

func (r orderRepo) DeleteAll(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n := int64(len(r.db.orders))
	r.db.orders = make(map[string]domain.Order)
	return n, nil
}

// Laundry jobs ----------------------------------------------------------------

type laundryJobRepo struct{ db *DB }

var _ repository.LaundryJobRepository = laundryJobRepo{}

func (r laundryJobRepo) Create(ctx context.Context, job *domain.LaundryJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if _, exists := r.db.jobs[job.ID]; exists {
		return repository.ErrDuplicate
	}
	if job.Status != domain.LaundryJobStatusCancelled {
		for _, other := range r.db.jobs {
			if other.OrderID == job.OrderID && other.Status != domain.LaundryJobStatusCancelled {
				return repository.ErrDuplicate
			}
		}
	}
	now := r.db.now()
	job.CreatedAt = now
	job.UpdatedAt = now
	job.Version = 1
	r.db.jobs[job.ID] = *job
	return nil
}

func (r laundryJobRepo) Update(ctx context.Context, job *domain.LaundryJob) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	current, ok := r.db.jobs[job.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if current.Version != job.Version {
		return repository.ErrVersionConflict
	}
	job.OrderID = current.OrderID
	job.CreatedAt = current.CreatedAt
	job.UpdatedAt = r.db.now()
	job.Version++
	r.db.jobs[job.ID] = *job
	return nil
}

func (r laundryJobRepo) GetByID(ctx context.Context, id string) (*domain.LaundryJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	job, ok := r.db.jobs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &job, nil
}

func (r laundryJobRepo) ListByOrder(ctx context.Context, orderID string) ([]domain.LaundryJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var result []domain.LaundryJob
	for _, job := range r.db.jobs {
		if job.OrderID == orderID {
			result = append(result, job)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

func (r laundryJobRepo) DeleteByOrder(ctx context.Context, orderID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var n int64
	for id, job := range r.db.jobs {
		if job.OrderID == orderID {
			delete(r.db.jobs, id)
			n++
		}
	}
	return n, nil
}

func (r laundryJobRepo) DeleteAll(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	n := int64(len(r.db.jobs))
	r.db.jobs = make(map[string]domain.LaundryJob)
	return n, nil
}

func cloneAppointment(a domain.Appointment) domain.Appointment {
	if a.PickupAt != nil {
		t := *a.PickupAt
		a.PickupAt = &t
	}
	return a
}

func cloneOrder(o domain.Order) domain.Order {
	if o.SourceAppointmentID != nil {
		id := *o.SourceAppointmentID
		o.SourceAppointmentID = &id
	}
	if o.Items != nil {
		items := make(map[string]any, len(o.Items))
		for k, v := range o.Items {
			items[k] = v
		}
		o.Items = items
	}
	return o
}
