package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/washline/laundry-service/internal/auth"
	"github.com/washline/laundry-service/internal/domain"
	"github.com/washline/laundry-service/internal/events"
	"github.com/washline/laundry-service/internal/lifecycle"
	"github.com/washline/laundry-service/internal/observability"
	"github.com/washline/laundry-service/internal/repository"
	apperrors "github.com/washline/laundry-service/pkg/util/errorutil"
)

// OrderAdvancer moves an order to ready when its laundry is complete.
type OrderAdvancer interface {
	AdvanceToReady(ctx context.Context, orderID string) (bool, error)
}

// LaundryJobService coordinates laundry job progress.
type LaundryJobService struct {
	jobs       repository.LaundryJobRepository
	orders     OrderAdvancer
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// LaundryJobDependencies bundles collaborators for the laundry job service.
type LaundryJobDependencies struct {
	LaundryJobRepo repository.LaundryJobRepository
	Orders         OrderAdvancer
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Metrics        *observability.Metrics
}

var jobOperators = auth.Roles(domain.RoleStaff, domain.RoleAdmin)

// NewLaundryJobService constructs the service.
func NewLaundryJobService(deps LaundryJobDependencies) *LaundryJobService {
	return &LaundryJobService{
		jobs:       deps.LaundryJobRepo,
		orders:     deps.Orders,
		dispatcher: deps.Dispatcher,
		logger:     nopLogger(deps.Logger),
		metrics:    deps.Metrics,
	}
}

// Get returns a laundry job.
func (s *LaundryJobService) Get(ctx context.Context, principal *auth.Principal, id string) (*domain.LaundryJob, error) {
	if err := requirePrincipal(principal, jobOperators); err != nil {
		return nil, err
	}
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "laundry job", id)
	}
	return job, nil
}

// Transition advances a laundry job one step. Completing a job marks its
// order ready before the job itself is written.
func (s *LaundryJobService) Transition(ctx context.Context, principal *auth.Principal, id, status string) (job *domain.LaundryJob, err error) {
	target, parseErr := domain.ParseLaundryJobStatus(strings.TrimSpace(status))
	defer func() {
		s.metrics.RecordTransition(lifecycle.LaundryJob.Entity(), string(target), outcomeOf(err))
	}()

	if err := requirePrincipal(principal, jobOperators); err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, apperrors.NewValidationError(parseErr.Error(), map[string]any{"field": "status"})
	}

	job, err = s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "laundry job", id)
	}
	actor := lifecycle.Actor{Role: principal.Role, Owns: job.AssignedStaffID == principal.ID}
	if err := lifecycle.LaundryJob.Check(job.Status, target, actor); err != nil {
		return nil, err
	}

	if target == domain.LaundryJobStatusComplete && s.orders != nil {
		if _, err := s.orders.AdvanceToReady(ctx, job.OrderID); err != nil {
			s.logger.Error("completion side effect failed",
				zap.String("laundry_job_id", job.ID),
				zap.String("order_id", job.OrderID),
				zap.Error(err))
			return nil, apperrors.NewSideEffectFailed("could not mark order ready", err)
		}
	}

	previous := job.Status
	job.Status = target
	if err := s.jobs.Update(ctx, job); err != nil {
		return nil, storeError(err, "laundry job", id)
	}

	s.logger.Info("laundry job status changed",
		zap.String("laundry_job_id", job.ID),
		zap.String("order_id", job.OrderID),
		zap.String("from", string(previous)),
		zap.String("to", string(target)),
		zap.String("actor_id", principal.ID))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:       events.EventLaundryJobStatusChanged,
		ResourceID: job.ID,
		Actor:      actorOf(principal),
		Payload: events.StatusChangedPayload{
			OwnerID:   job.AssignedStaffID,
			OldStatus: string(previous),
			NewStatus: string(target),
		},
	})
	return job, nil
}
