package repository

import "github.com/jackc/pgx/v5/pgxpool"

// Store bundles one repository per collection. Collections share no
// transaction; callers order multi-collection writes themselves.
type Store struct {
	Users        UserRepository
	Appointments AppointmentRepository
	Orders       OrderRepository
	LaundryJobs  LaundryJobRepository
}

// NewPostgresStore builds a Store over a pgx pool.
func NewPostgresStore(pool *pgxpool.Pool) Store {
	return Store{
		Users:        NewUserRepository(pool),
		Appointments: NewAppointmentRepository(pool),
		Orders:       NewOrderRepository(pool),
		LaundryJobs:  NewLaundryJobRepository(pool),
	}
}
