package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/washline/laundry-service/internal/domain"
)

// OrderRepository encapsulates order persistence.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	Update(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetBySourceAppointment(ctx context.Context, appointmentID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type orderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository instantiates repository.
func NewOrderRepository(pool *pgxpool.Pool) OrderRepository {
	return &orderRepository{pool: pool}
}

const orderColumns = `id, user_id, source_appointment_id, status, COALESCE(items, '{}'::jsonb), total_cents, created_at, updated_at, version`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	const query = `
        INSERT INTO orders (id, user_id, source_appointment_id, status, items, total_cents, created_at, updated_at, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$7,1)`

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if _, err := r.pool.Exec(ctx, query,
		order.ID,
		order.UserID,
		order.SourceAppointmentID,
		order.Status,
		order.Items,
		order.TotalCents,
		now,
	); err != nil {
		return translate(err)
	}
	order.CreatedAt = now
	order.UpdatedAt = now
	order.Version = 1
	return nil
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	const query = `
        UPDATE orders SET status=$1, items=$2, total_cents=$3, updated_at=$4, version=version+1
        WHERE id=$5 AND version=$6`

	now := time.Now().UTC()
	cmd, err := r.pool.Exec(ctx, query,
		order.Status,
		order.Items,
		order.TotalCents,
		now,
		order.ID,
		order.Version,
	)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return zeroRowsError(ctx, r.pool, "orders", order.ID)
	}
	order.UpdatedAt = now
	order.Version++
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	return scanOrder(r.pool.QueryRow(ctx, query, id))
}

func (r *orderRepository) GetBySourceAppointment(ctx context.Context, appointmentID string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE source_appointment_id=$1 ORDER BY created_at LIMIT 1`
	return scanOrder(r.pool.QueryRow(ctx, query, appointmentID))
}

func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *order)
	}
	return result, rows.Err()
}

func (r *orderRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM orders WHERE user_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *orderRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM orders`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var order domain.Order
	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.SourceAppointmentID,
		&order.Status,
		&order.Items,
		&order.TotalCents,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Version,
	); err != nil {
		return nil, translate(err)
	}
	return &order, nil
}
