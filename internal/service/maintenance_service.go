package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/washline/laundry-service/internal/domain"
	"github.com/washline/laundry-service/internal/repository"
	apperrors "github.com/washline/laundry-service/pkg/util/errorutil"
)

// WipeReport counts rows removed by a wipe.
type WipeReport struct {
	LaundryJobs  int64
	Orders       int64
	Appointments int64
	Users        int64
}

// MaintenanceService runs operator-only bulk jobs.
type MaintenanceService struct {
	store  repository.Store
	logger *zap.Logger
}

// NewMaintenanceService constructs the service.
func NewMaintenanceService(store repository.Store, logger *zap.Logger) *MaintenanceService {
	return &MaintenanceService{store: store, logger: nopLogger(logger)}
}

// WipeAll deletes every record, dependents first.
func (s *MaintenanceService) WipeAll(ctx context.Context) (WipeReport, error) {
	var report WipeReport
	steps := []struct {
		name string
		run  func(context.Context) (int64, error)
		dst  *int64
	}{
		{StepLaundryJobs, s.store.LaundryJobs.DeleteAll, &report.LaundryJobs},
		{StepOrders, s.store.Orders.DeleteAll, &report.Orders},
		{StepAppointments, s.store.Appointments.DeleteAll, &report.Appointments},
		{StepUser, s.store.Users.DeleteAll, &report.Users},
	}
	for _, step := range steps {
		n, err := step.run(ctx)
		if err != nil {
			s.logger.Error("wipe failed", zap.String("step", step.name), zap.Error(err))
			return report, apperrors.NewPartialCascadeFailure(step.name, err)
		}
		*step.dst = n
		s.logger.Info("wipe step done", zap.String("step", step.name), zap.Int64("deleted", n))
	}
	return report, nil
}

// RepairMissingEmails assigns placeholder addresses to users without one and
// returns how many were fixed.
func (s *MaintenanceService) RepairMissingEmails(ctx context.Context) (int, error) {
	users, err := s.store.Users.ListMissingEmail(ctx)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	repaired := 0
	for i := range users {
		user := &users[i]
		user.Email = domain.PlaceholderEmail(user.ID)
		if err := s.store.Users.Update(ctx, user); err != nil {
			return repaired, storeError(err, "user", user.ID)
		}
		repaired++
		s.logger.Info("email repaired", zap.String("user_id", user.ID), zap.String("email", user.Email))
	}
	return repaired, nil
}
