package service

import (
	"context"
	"errors"
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

// OrderService coordinates order workflows and their laundry jobs.
type OrderService struct {
	users      repository.UserRepository
	orders     repository.OrderRepository
	jobs       repository.LaundryJobRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
}

// OrderDependencies bundles collaborators for the order service.
type OrderDependencies struct {
	UserRepo       repository.UserRepository
	OrderRepo      repository.OrderRepository
	LaundryJobRepo repository.LaundryJobRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
	Metrics        *observability.Metrics
}

// OrderCreateInput describes a new order. UserID may be empty for customers
// ordering for themselves.
type OrderCreateInput struct {
	UserID     string
	Items      map[string]any
	TotalCents int64
}

// OrderTransitionInput is a requested status change, in customer-facing names.
type OrderTransitionInput struct {
	Status          string
	AssignedStaffID string
}

var (
	orderReaders   = auth.AnyRole()
	orderAuthors   = auth.Roles(domain.RoleCustomer, domain.RoleStaff, domain.RoleAdmin)
	orderOperators = auth.Roles(domain.RoleStaff, domain.RoleAdmin)
	jobAssignees   = auth.Roles(domain.RoleStaff, domain.RoleAdmin)
)

// NewOrderService constructs the service.
func NewOrderService(deps OrderDependencies) *OrderService {
	return &OrderService{
		users:      deps.UserRepo,
		orders:     deps.OrderRepo,
		jobs:       deps.LaundryJobRepo,
		dispatcher: deps.Dispatcher,
		logger:     nopLogger(deps.Logger),
		metrics:    deps.Metrics,
	}
}

// Create opens a pending order. Customers order for themselves; staff and
// admins order on behalf of any existing user.
func (s *OrderService) Create(ctx context.Context, principal *auth.Principal, input OrderCreateInput) (*domain.Order, error) {
	if err := requirePrincipal(principal, orderAuthors); err != nil {
		return nil, err
	}
	userID := strings.TrimSpace(input.UserID)
	if principal.Role == domain.RoleCustomer {
		if userID != "" && userID != principal.ID {
			return nil, apperrors.NewForbidden("customers may only order for themselves")
		}
		userID = principal.ID
	}
	if userID == "" {
		return nil, apperrors.NewValidationError("userId is required", map[string]any{"field": "userId"})
	}
	if input.TotalCents < 0 {
		return nil, apperrors.NewValidationError("totalCents must not be negative", map[string]any{"field": "totalCents"})
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, storeError(err, "user", userID)
	}

	order := &domain.Order{
		UserID:     userID,
		Status:     domain.OrderStatusPending,
		Items:      input.Items,
		TotalCents: input.TotalCents,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, storeError(err, "order", order.ID)
	}
	s.logger.Info("order created", zap.String("order_id", order.ID), zap.String("user_id", order.UserID))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:       events.EventOrderCreated,
		ResourceID: order.ID,
		Actor:      actorOf(principal),
		Payload:    events.OrderCreatedPayload{UserID: order.UserID},
	})
	return order, nil
}

// Get returns an order visible to the caller.
func (s *OrderService) Get(ctx context.Context, principal *auth.Principal, id string) (*domain.Order, error) {
	if err := requirePrincipal(principal, orderReaders); err != nil {
		return nil, err
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "order", id)
	}
	if err := ensureOwnerOrStaff(principal, order.UserID); err != nil {
		return nil, err
	}
	return order, nil
}

// ListByUser returns a user's orders, newest first.
func (s *OrderService) ListByUser(ctx context.Context, principal *auth.Principal, userID string) ([]domain.Order, error) {
	if err := requirePrincipal(principal, orderReaders); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewValidationError("userId is required", map[string]any{"field": "userId"})
	}
	if err := ensureOwnerOrStaff(principal, userID); err != nil {
		return nil, err
	}
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "order", "")
	}
	return orders, nil
}

// ListLaundryJobs returns the jobs attached to an order.
func (s *OrderService) ListLaundryJobs(ctx context.Context, principal *auth.Principal, orderID string) ([]domain.LaundryJob, error) {
	if err := requirePrincipal(principal, orderOperators); err != nil {
		return nil, err
	}
	if _, err := s.orders.GetByID(ctx, orderID); err != nil {
		return nil, storeError(err, "order", orderID)
	}
	jobs, err := s.jobs.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, storeError(err, "laundry job", "")
	}
	return jobs, nil
}

// Transition moves an order along its status graph. Starting the wash
// creates a laundry job first; cancelling stops every open job first.
func (s *OrderService) Transition(ctx context.Context, principal *auth.Principal, id string, input OrderTransitionInput) (order *domain.Order, err error) {
	target, parseErr := domain.ParseOrderPublicStatus(strings.TrimSpace(input.Status))
	defer func() {
		s.metrics.RecordTransition(lifecycle.Order.Entity(), string(target.Public()), outcomeOf(err))
	}()

	if err := requirePrincipal(principal, orderOperators); err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, apperrors.NewValidationError(parseErr.Error(), map[string]any{"field": "status"})
	}

	order, err = s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "order", id)
	}
	if err := lifecycle.Order.Check(order.Status, target, lifecycle.Actor{Role: principal.Role}); err != nil {
		return nil, publicOrderStatuses(err)
	}

	var washJob *domain.LaundryJob
	switch target {
	case domain.OrderStatusInProgress:
		assignee, err := s.resolveAssignee(ctx, principal, input.AssignedStaffID)
		if err != nil {
			return nil, err
		}
		if washJob, err = s.ensureLaundryJob(ctx, order, assignee); err != nil {
			s.logger.Error("wash side effect failed", zap.String("order_id", order.ID), zap.Error(err))
			return nil, apperrors.NewSideEffectFailed("could not create laundry job for order", err)
		}
	case domain.OrderStatusCancelled:
		if err := s.cancelLaundryJobs(ctx, principal, order); err != nil {
			s.logger.Error("cancel side effect failed", zap.String("order_id", order.ID), zap.Error(err))
			return nil, apperrors.NewSideEffectFailed("could not cancel laundry jobs for order", err)
		}
	}

	previous := order.Status
	order.Status = target
	if err := s.orders.Update(ctx, order); err != nil {
		return nil, storeError(err, "order", id)
	}
	// Announced after the commit; an order enters the wash once, so its job
	// is announced once even when an earlier attempt created it.
	if washJob != nil {
		publishEvent(ctx, s.dispatcher, s.logger, events.Event{
			Type:       events.EventLaundryJobStatusChanged,
			ResourceID: washJob.ID,
			Actor:      actorOf(principal),
			Payload:    events.StatusChangedPayload{OwnerID: washJob.AssignedStaffID, NewStatus: string(washJob.Status)},
		})
	}
	s.statusChanged(ctx, principal, order, previous)
	return order, nil
}

// AdvanceToReady marks an order ready once its laundry is done. It reports
// whether the order changed; orders that are not in the wash are left alone.
func (s *OrderService) AdvanceToReady(ctx context.Context, orderID string) (bool, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if order.Status != domain.OrderStatusInProgress {
		return false, nil
	}
	previous := order.Status
	order.Status = domain.OrderStatusCompleted
	if err := s.orders.Update(ctx, order); err != nil {
		return false, err
	}
	s.metrics.RecordTransition(lifecycle.Order.Entity(), string(order.Status.Public()), outcomeApplied)
	s.statusChanged(ctx, nil, order, previous)
	return true, nil
}

func (s *OrderService) resolveAssignee(ctx context.Context, principal *auth.Principal, requested string) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" || requested == principal.ID {
		return principal.ID, nil
	}
	staff, err := s.users.GetByID(ctx, requested)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", apperrors.NewValidationError("assignedStaffId does not match a user", map[string]any{"field": "assignedStaffId"})
		}
		return "", storeError(err, "user", requested)
	}
	if !jobAssignees.Has(staff.Role) {
		return "", apperrors.NewValidationError("assignedStaffId must belong to staff or an admin", map[string]any{"field": "assignedStaffId"})
	}
	return staff.ID, nil
}

// ensureLaundryJob returns the order's live job, creating a queued one when
// there is none. The store allows a single non-cancelled job per order, so a
// request that loses a concurrent insert reuses the winner's job.
func (s *OrderService) ensureLaundryJob(ctx context.Context, order *domain.Order, assignee string) (*domain.LaundryJob, error) {
	if job, err := s.liveJob(ctx, order.ID); err == nil || !errors.Is(err, repository.ErrNotFound) {
		return job, err
	}

	job := &domain.LaundryJob{
		OrderID:         order.ID,
		AssignedStaffID: assignee,
		Status:          domain.LaundryJobStatusQueued,
	}
	err := s.jobs.Create(ctx, job)
	if errors.Is(err, repository.ErrDuplicate) {
		return s.liveJob(ctx, order.ID)
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("laundry job created",
		zap.String("laundry_job_id", job.ID),
		zap.String("order_id", order.ID),
		zap.String("assigned_staff_id", assignee))
	return job, nil
}

// liveJob returns the order's non-cancelled job or repository.ErrNotFound.
func (s *OrderService) liveJob(ctx context.Context, orderID string) (*domain.LaundryJob, error) {
	jobs, err := s.jobs.ListByOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].Status != domain.LaundryJobStatusCancelled {
			return &jobs[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *OrderService) cancelLaundryJobs(ctx context.Context, principal *auth.Principal, order *domain.Order) error {
	jobs, err := s.jobs.ListByOrder(ctx, order.ID)
	if err != nil {
		return err
	}
	for i := range jobs {
		job := &jobs[i]
		if job.Status.IsTerminal() {
			continue
		}
		previous := job.Status
		job.Status = domain.LaundryJobStatusCancelled
		if err := s.jobs.Update(ctx, job); err != nil {
			return err
		}
		s.metrics.RecordTransition(lifecycle.LaundryJob.Entity(), string(job.Status), outcomeApplied)
		publishEvent(ctx, s.dispatcher, s.logger, events.Event{
			Type:       events.EventLaundryJobStatusChanged,
			ResourceID: job.ID,
			Actor:      actorOf(principal),
			Payload: events.StatusChangedPayload{
				OwnerID:   job.AssignedStaffID,
				OldStatus: string(previous),
				NewStatus: string(job.Status),
				Reason:    "order cancelled",
			},
		})
	}
	return nil
}

func (s *OrderService) statusChanged(ctx context.Context, principal *auth.Principal, order *domain.Order, previous domain.OrderStatus) {
	fields := []zap.Field{
		zap.String("order_id", order.ID),
		zap.String("from", string(previous.Public())),
		zap.String("to", string(order.Status.Public())),
	}
	if principal != nil {
		fields = append(fields, zap.String("actor_id", principal.ID))
	}
	s.logger.Info("order status changed", fields...)
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:       events.EventOrderStatusChanged,
		ResourceID: order.ID,
		Actor:      actorOf(principal),
		Payload: events.StatusChangedPayload{
			OwnerID:   order.UserID,
			OldStatus: string(previous.Public()),
			NewStatus: string(order.Status.Public()),
		},
	})
}

var orderStatusNames = strings.NewReplacer(
	string(domain.OrderStatusPending), string(domain.OrderPublicPending),
	string(domain.OrderStatusInProgress), string(domain.OrderPublicInWash),
	string(domain.OrderStatusCompleted), string(domain.OrderPublicReady),
	string(domain.OrderStatusDelivered), string(domain.OrderPublicDelivered),
	string(domain.OrderStatusCancelled), string(domain.OrderPublicCancelled),
)

// publicOrderStatuses rewrites a transition error so clients only ever see
// customer-facing order statuses.
func publicOrderStatuses(err error) error {
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		return err
	}
	domainErr.Message = orderStatusNames.Replace(domainErr.Message)
	for key, value := range domainErr.Details {
		switch v := value.(type) {
		case string:
			domainErr.Details[key] = string(domain.OrderStatus(v).Public())
		case []string:
			public := make([]string, 0, len(v))
			for _, status := range v {
				public = append(public, string(domain.OrderStatus(status).Public()))
			}
			domainErr.Details[key] = public
		}
	}
	return err
}
