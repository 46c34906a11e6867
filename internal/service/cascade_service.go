package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/washline/laundry-service/internal/auth"
	"github.com/washline/laundry-service/internal/domain"
	"github.com/washline/laundry-service/internal/events"
	"github.com/washline/laundry-service/internal/observability"
	"github.com/washline/laundry-service/internal/repository"
	apperrors "github.com/washline/laundry-service/pkg/util/errorutil"
)

// Cascade steps, in execution order.
const (
	StepLaundryJobs  = "laundry_jobs"
	StepOrders       = "orders"
	StepAppointments = "appointments"
	StepUser         = "user"
)

// CascadeReport counts what a user deletion removed.
type CascadeReport struct {
	UserID       string `json:"userId"`
	LaundryJobs  int64  `json:"laundryJobs"`
	Orders       int64  `json:"orders"`
	Appointments int64  `json:"appointments"`
	Users        int64  `json:"users"`
}

// CascadeService deletes a user together with everything that references it.
// The store has no foreign keys, so dependents go first.
type CascadeService struct {
	users        repository.UserRepository
	appointments repository.AppointmentRepository
	orders       repository.OrderRepository
	jobs         repository.LaundryJobRepository
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	metrics      *observability.Metrics
}

// CascadeDependencies bundles collaborators for the cascade service.
type CascadeDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
}

var userDeleters = auth.Roles(domain.RoleAdmin, domain.RoleSuperadmin)

// NewCascadeService constructs the service.
func NewCascadeService(deps CascadeDependencies) *CascadeService {
	return &CascadeService{
		users:        deps.Store.Users,
		appointments: deps.Store.Appointments,
		orders:       deps.Store.Orders,
		jobs:         deps.Store.LaundryJobs,
		dispatcher:   deps.Dispatcher,
		logger:       nopLogger(deps.Logger),
		metrics:      deps.Metrics,
	}
}

// DeleteUser removes laundry jobs, orders, appointments and finally the user.
// Each step finishes before the next starts and a failure stops the run, so
// re-running after a partial failure completes the deletion. A user that is
// already gone still has its dependents swept and yields NOT_FOUND.
func (s *CascadeService) DeleteUser(ctx context.Context, principal *auth.Principal, userID string) (*CascadeReport, error) {
	if err := requirePrincipal(principal, userDeleters); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewValidationError("user id is required", map[string]any{"field": "id"})
	}
	if userID == principal.ID {
		return nil, apperrors.NewForbidden("users cannot delete their own account")
	}

	target, err := s.users.GetByID(ctx, userID)
	missing := false
	switch {
	case err == nil:
		if target.Role == domain.RoleSuperadmin && principal.Role != domain.RoleSuperadmin {
			return nil, apperrors.NewForbidden("only a superadmin may delete a superadmin")
		}
	case errors.Is(err, repository.ErrNotFound):
		missing = true
	default:
		return nil, storeError(err, "user", userID)
	}

	report := &CascadeReport{UserID: userID}
	log := s.logger.With(zap.String("user_id", userID), zap.String("actor_id", principal.ID))

	if err := s.deleteLaundryJobs(ctx, userID, report); err != nil {
		return nil, s.fail(log, StepLaundryJobs, err)
	}

	removed, err := s.orders.DeleteByUser(ctx, userID)
	if err != nil {
		return nil, s.fail(log, StepOrders, err)
	}
	report.Orders = removed

	removed, err = s.appointments.DeleteByUser(ctx, userID)
	if err != nil {
		return nil, s.fail(log, StepAppointments, err)
	}
	report.Appointments = removed

	if missing {
		log.Info("cascade swept dependents of missing user",
			zap.Int64("laundry_jobs", report.LaundryJobs),
			zap.Int64("orders", report.Orders),
			zap.Int64("appointments", report.Appointments))
		s.metrics.RecordCascade("not_found")
		return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
	}

	removed, err = s.users.Delete(ctx, userID)
	if err != nil {
		return nil, s.fail(log, StepUser, err)
	}
	report.Users = removed
	if removed == 0 {
		s.metrics.RecordCascade("not_found")
		return nil, apperrors.NewNotFound("user", map[string]any{"id": userID})
	}

	log.Info("user deleted",
		zap.Int64("laundry_jobs", report.LaundryJobs),
		zap.Int64("orders", report.Orders),
		zap.Int64("appointments", report.Appointments))
	s.metrics.RecordCascade("completed")
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:       events.EventUserDeleted,
		ResourceID: userID,
		Actor:      actorOf(principal),
		Payload: events.UserDeletedPayload{
			LaundryJobs:  report.LaundryJobs,
			Orders:       report.Orders,
			Appointments: report.Appointments,
		},
	})
	return report, nil
}

func (s *CascadeService) deleteLaundryJobs(ctx context.Context, userID string, report *CascadeReport) error {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return err
	}
	for _, order := range orders {
		removed, err := s.jobs.DeleteByOrder(ctx, order.ID)
		if err != nil {
			return err
		}
		report.LaundryJobs += removed
	}
	return nil
}

func (s *CascadeService) fail(log *zap.Logger, step string, err error) error {
	log.Error("cascade deletion failed", zap.String("step", step), zap.Error(err))
	s.metrics.RecordCascade("partial_failure")
	return apperrors.NewPartialCascadeFailure(step, err)
}
