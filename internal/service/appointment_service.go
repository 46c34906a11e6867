package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/washline/laundry-service/internal/auth"
	"github.com/washline/laundry-service/internal/domain"
	"github.com/washline/laundry-service/internal/events"
	"github.com/washline/laundry-service/internal/lifecycle"
	"github.com/washline/laundry-service/internal/observability"
	"github.com/washline/laundry-service/internal/repository"
	apperrors "github.com/washline/laundry-service/pkg/util/errorutil"
)

// AppointmentService coordinates appointment workflows.
type AppointmentService struct {
	users        repository.UserRepository
	appointments repository.AppointmentRepository
	orders       repository.OrderRepository
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	metrics      *observability.Metrics
}

// AppointmentDependencies bundles collaborators for the appointment service.
type AppointmentDependencies struct {
	UserRepo        repository.UserRepository
	AppointmentRepo repository.AppointmentRepository
	OrderRepo       repository.OrderRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
	Metrics         *observability.Metrics
}

// AppointmentCreateInput describes a new appointment request.
type AppointmentCreateInput struct {
	RequestedService string
	PickupAt         *time.Time
	Notes            string
}

// AppointmentTransitionInput is a requested status change.
type AppointmentTransitionInput struct {
	Status          string
	RejectionReason string
}

// AppointmentTransitionResult carries the updated appointment and, on
// approval, the order it became.
type AppointmentTransitionResult struct {
	Appointment *domain.Appointment
	Order       *domain.Order
}

var (
	appointmentReaders = auth.AnyRole()
	appointmentAuthors = auth.Roles(domain.RoleCustomer)
	appointmentEditors = auth.Roles(domain.RoleCustomer, domain.RoleStaff, domain.RoleAdmin)
)

// NewAppointmentService constructs the service.
func NewAppointmentService(deps AppointmentDependencies) *AppointmentService {
	return &AppointmentService{
		users:        deps.UserRepo,
		appointments: deps.AppointmentRepo,
		orders:       deps.OrderRepo,
		dispatcher:   deps.Dispatcher,
		logger:       nopLogger(deps.Logger),
		metrics:      deps.Metrics,
	}
}

// Create books a pending appointment for the calling customer.
func (s *AppointmentService) Create(ctx context.Context, principal *auth.Principal, input AppointmentCreateInput) (*domain.Appointment, error) {
	if err := requirePrincipal(principal, appointmentAuthors); err != nil {
		return nil, err
	}
	requested := strings.TrimSpace(input.RequestedService)
	if requested == "" {
		return nil, apperrors.NewValidationError("requestedService is required", map[string]any{"field": "requestedService"})
	}
	if _, err := s.users.GetByID(ctx, principal.ID); err != nil {
		return nil, storeError(err, "user", principal.ID)
	}

	appt := &domain.Appointment{
		UserID:           principal.ID,
		RequestedService: requested,
		PickupAt:         input.PickupAt,
		Notes:            strings.TrimSpace(input.Notes),
		Status:           domain.AppointmentStatusPending,
	}
	if err := s.appointments.Create(ctx, appt); err != nil {
		return nil, storeError(err, "appointment", appt.ID)
	}
	s.logger.Info("appointment created", zap.String("appointment_id", appt.ID), zap.String("user_id", appt.UserID))
	return appt, nil
}

// Get returns an appointment visible to the caller.
func (s *AppointmentService) Get(ctx context.Context, principal *auth.Principal, id string) (*domain.Appointment, error) {
	if err := requirePrincipal(principal, appointmentReaders); err != nil {
		return nil, err
	}
	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "appointment", id)
	}
	if err := ensureOwnerOrStaff(principal, appt.UserID); err != nil {
		return nil, err
	}
	return appt, nil
}

// ListByUser returns a user's appointments, newest first.
func (s *AppointmentService) ListByUser(ctx context.Context, principal *auth.Principal, userID string) ([]domain.Appointment, error) {
	if err := requirePrincipal(principal, appointmentReaders); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperrors.NewValidationError("userId is required", map[string]any{"field": "userId"})
	}
	if err := ensureOwnerOrStaff(principal, userID); err != nil {
		return nil, err
	}
	appts, err := s.appointments.ListByUser(ctx, userID)
	if err != nil {
		return nil, storeError(err, "appointment", "")
	}
	return appts, nil
}

// Transition moves an appointment along its status graph. Approval creates
// the order before the appointment is written; a retry reuses that order.
func (s *AppointmentService) Transition(ctx context.Context, principal *auth.Principal, id string, input AppointmentTransitionInput) (result *AppointmentTransitionResult, err error) {
	target, parseErr := domain.ParseAppointmentStatus(strings.TrimSpace(input.Status))
	defer func() {
		s.metrics.RecordTransition(lifecycle.Appointment.Entity(), string(target), outcomeOf(err))
	}()

	if err := requirePrincipal(principal, appointmentEditors); err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, apperrors.NewValidationError(parseErr.Error(), map[string]any{"field": "status"})
	}

	appt, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "appointment", id)
	}

	actor := lifecycle.Actor{Role: principal.Role, Owns: appt.UserID == principal.ID}
	if err := lifecycle.Appointment.Check(appt.Status, target, actor); err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(input.RejectionReason)
	if target == domain.AppointmentStatusRejected && reason == "" {
		return nil, apperrors.NewMissingReason("rejectionReason is required to reject an appointment")
	}

	result = &AppointmentTransitionResult{}
	if target == domain.AppointmentStatusApproved {
		order, err := s.ensureOrder(ctx, appt)
		if err != nil {
			s.logger.Error("approval side effect failed",
				zap.String("appointment_id", appt.ID),
				zap.Error(err))
			return nil, apperrors.NewSideEffectFailed("could not create order for appointment", err)
		}
		result.Order = order
	}

	previous := appt.Status
	appt.Status = target
	appt.RejectionReason = ""
	if target == domain.AppointmentStatusRejected {
		appt.RejectionReason = reason
	}
	if err := s.appointments.Update(ctx, appt); err != nil {
		return nil, storeError(err, "appointment", id)
	}
	result.Appointment = appt

	// The order is announced only once its approval is committed. Approval
	// happens once per appointment, so each order is announced exactly once,
	// including one left behind by an earlier failed attempt.
	if result.Order != nil {
		publishEvent(ctx, s.dispatcher, s.logger, events.Event{
			Type:       events.EventOrderCreated,
			ResourceID: result.Order.ID,
			Actor:      actorOf(principal),
			Payload:    events.OrderCreatedPayload{UserID: result.Order.UserID, SourceAppointmentID: result.Order.SourceAppointmentID},
		})
	}
	s.logger.Info("appointment status changed",
		zap.String("appointment_id", appt.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(target)),
		zap.String("actor_id", principal.ID))
	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:       events.EventAppointmentStatusChanged,
		ResourceID: appt.ID,
		Actor:      actorOf(principal),
		Payload: events.StatusChangedPayload{
			OwnerID:   appt.UserID,
			OldStatus: string(previous),
			NewStatus: string(target),
			Reason:    appt.RejectionReason,
		},
	})
	return result, nil
}

// ensureOrder returns the order created from appt, creating it when none
// exists yet. The store keeps source_appointment_id unique, so a concurrent
// approval that loses the insert reuses the winner's order.
func (s *AppointmentService) ensureOrder(ctx context.Context, appt *domain.Appointment) (*domain.Order, error) {
	existing, err := s.orders.GetBySourceAppointment(ctx, appt.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, appt.UserID); err != nil {
		return nil, fmt.Errorf("appointment owner %s: %w", appt.UserID, err)
	}

	sourceID := appt.ID
	order := &domain.Order{
		UserID:              appt.UserID,
		SourceAppointmentID: &sourceID,
		Status:              domain.OrderStatusPending,
	}
	err = s.orders.Create(ctx, order)
	if errors.Is(err, repository.ErrDuplicate) {
		return s.orders.GetBySourceAppointment(ctx, appt.ID)
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// ensureOwnerOrStaff lets customers see only their own resources.
func ensureOwnerOrStaff(principal *auth.Principal, ownerID string) error {
	if principal.Role == domain.RoleCustomer && principal.ID != ownerID {
		return apperrors.NewForbidden("resource belongs to another user")
	}
	return nil
}
