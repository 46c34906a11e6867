package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/washline/laundry-service/internal/domain"
)

// LaundryJobRepository encapsulates laundry job persistence.
type LaundryJobRepository interface {
	Create(ctx context.Context, job *domain.LaundryJob) error
	Update(ctx context.Context, job *domain.LaundryJob) error
	GetByID(ctx context.Context, id string) (*domain.LaundryJob, error)
	ListByOrder(ctx context.Context, orderID string) ([]domain.LaundryJob, error)
	DeleteByOrder(ctx context.Context, orderID string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type laundryJobRepository struct {
	pool *pgxpool.Pool
}

// NewLaundryJobRepository instantiates repository.
func NewLaundryJobRepository(pool *pgxpool.Pool) LaundryJobRepository {
	return &laundryJobRepository{pool: pool}
}

const laundryJobColumns = `id, order_id, assigned_staff_id, status, created_at, updated_at, version`

func (r *laundryJobRepository) Create(ctx context.Context, job *domain.LaundryJob) error {
	const query = `
        INSERT INTO laundry_jobs (id, order_id, assigned_staff_id, status, created_at, updated_at, version)
        VALUES ($1,$2,$3,$4,$5,$5,1)`

	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if _, err := r.pool.Exec(ctx, query, job.ID, job.OrderID, job.AssignedStaffID, job.Status, now); err != nil {
		return translate(err)
	}
	job.CreatedAt = now
	job.UpdatedAt = now
	job.Version = 1
	return nil
}

func (r *laundryJobRepository) Update(ctx context.Context, job *domain.LaundryJob) error {
	const query = `
        UPDATE laundry_jobs SET assigned_staff_id=$1, status=$2, updated_at=$3, version=version+1
        WHERE id=$4 AND version=$5`

	now := time.Now().UTC()
	cmd, err := r.pool.Exec(ctx, query, job.AssignedStaffID, job.Status, now, job.ID, job.Version)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return zeroRowsError(ctx, r.pool, "laundry_jobs", job.ID)
	}
	job.UpdatedAt = now
	job.Version++
	return nil
}

func (r *laundryJobRepository) GetByID(ctx context.Context, id string) (*domain.LaundryJob, error) {
	query := `SELECT ` + laundryJobColumns + ` FROM laundry_jobs WHERE id=$1`
	return scanLaundryJob(r.pool.QueryRow(ctx, query, id))
}

func (r *laundryJobRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.LaundryJob, error) {
	query := `SELECT ` + laundryJobColumns + ` FROM laundry_jobs WHERE order_id=$1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.LaundryJob
	for rows.Next() {
		job, err := scanLaundryJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *job)
	}
	return result, rows.Err()
}

func (r *laundryJobRepository) DeleteByOrder(ctx context.Context, orderID string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM laundry_jobs WHERE order_id=$1`, orderID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *laundryJobRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM laundry_jobs`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanLaundryJob(row pgx.Row) (*domain.LaundryJob, error) {
	var job domain.LaundryJob
	if err := row.Scan(
		&job.ID,
		&job.OrderID,
		&job.AssignedStaffID,
		&job.Status,
		&job.CreatedAt,
		&job.UpdatedAt,
		&job.Version,
	); err != nil {
		return nil, translate(err)
	}
	return &job, nil
}
