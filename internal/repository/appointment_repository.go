package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/washline/laundry-service/internal/domain"
)

// AppointmentRepository encapsulates appointment persistence.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) error
	Update(ctx context.Context, appt *domain.Appointment) error
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Appointment, error)
	DeleteByUser(ctx context.Context, userID string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type appointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository instantiates repository.
func NewAppointmentRepository(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepository{pool: pool}
}

const appointmentColumns = `id, user_id, requested_service, pickup_at, notes, status, rejection_reason, created_at, updated_at, version`

func (r *appointmentRepository) Create(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        INSERT INTO appointments (id, user_id, requested_service, pickup_at, notes, status, rejection_reason, created_at, updated_at, version)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8,1)`

	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if _, err := r.pool.Exec(ctx, query,
		appt.ID,
		appt.UserID,
		appt.RequestedService,
		appt.PickupAt,
		appt.Notes,
		appt.Status,
		nullableString(appt.RejectionReason),
		now,
	); err != nil {
		return translate(err)
	}
	appt.CreatedAt = now
	appt.UpdatedAt = now
	appt.Version = 1
	return nil
}

func (r *appointmentRepository) Update(ctx context.Context, appt *domain.Appointment) error {
	const query = `
        UPDATE appointments SET requested_service=$1, pickup_at=$2, notes=$3, status=$4, rejection_reason=$5,
            updated_at=$6, version=version+1
        WHERE id=$7 AND version=$8`

	now := time.Now().UTC()
	cmd, err := r.pool.Exec(ctx, query,
		appt.RequestedService,
		appt.PickupAt,
		appt.Notes,
		appt.Status,
		nullableString(appt.RejectionReason),
		now,
		appt.ID,
		appt.Version,
	)
	if err != nil {
		return translate(err)
	}
	if cmd.RowsAffected() == 0 {
		return zeroRowsError(ctx, r.pool, "appointments", appt.ID)
	}
	appt.UpdatedAt = now
	appt.Version++
	return nil
}

func (r *appointmentRepository) GetByID(ctx context.Context, id string) (*domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id=$1`
	return scanAppointment(r.pool.QueryRow(ctx, query, id))
}

func (r *appointmentRepository) ListByUser(ctx context.Context, userID string) ([]domain.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE user_id=$1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *appt)
	}
	return result, rows.Err()
}

func (r *appointmentRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM appointments WHERE user_id=$1`, userID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func (r *appointmentRepository) DeleteAll(ctx context.Context) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM appointments`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanAppointment(row pgx.Row) (*domain.Appointment, error) {
	var appt domain.Appointment
	var reason *string
	if err := row.Scan(
		&appt.ID,
		&appt.UserID,
		&appt.RequestedService,
		&appt.PickupAt,
		&appt.Notes,
		&appt.Status,
		&reason,
		&appt.CreatedAt,
		&appt.UpdatedAt,
		&appt.Version,
	); err != nil {
		return nil, translate(err)
	}
	if reason != nil {
		appt.RejectionReason = *reason
	}
	return &appt, nil
}
