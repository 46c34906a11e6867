package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/washline/laundry-service/internal/auth"
	"github.com/washline/laundry-service/internal/domain"
	"github.com/washline/laundry-service/internal/repository"
	apperrors "github.com/washline/laundry-service/pkg/util/errorutil"
)

// MaxRecentAdmins bounds the recent admin list on the dashboard.
const MaxRecentAdmins = 10

// AdminSummary is the public projection of an admin account.
type AdminSummary struct {
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
}

// DashboardSummary aggregates account counts for superadmins.
type DashboardSummary struct {
	TotalAdmins    int64          `json:"totalAdmins"`
	TotalStaff     int64          `json:"totalStaff"`
	TotalCustomers int64          `json:"totalCustomers"`
	RecentAdmins   []AdminSummary `json:"recentAdmins"`
}

// DashboardService builds the superadmin dashboard.
type DashboardService struct {
	users       repository.UserRepository
	recentLimit int
}

var dashboardViewers = auth.Roles(domain.RoleSuperadmin)

// NewDashboardService constructs the service. recentLimit is clamped to 1..MaxRecentAdmins.
func NewDashboardService(users repository.UserRepository, recentLimit int) *DashboardService {
	if recentLimit <= 0 || recentLimit > MaxRecentAdmins {
		recentLimit = MaxRecentAdmins
	}
	return &DashboardService{users: users, recentLimit: recentLimit}
}

// SuperadminSummary runs the three role counts and the recent admin listing
// concurrently. Any failing read fails the whole summary.
func (s *DashboardService) SuperadminSummary(ctx context.Context, principal *auth.Principal) (*DashboardSummary, error) {
	if err := requirePrincipal(principal, dashboardViewers); err != nil {
		return nil, err
	}

	summary := &DashboardSummary{RecentAdmins: []AdminSummary{}}
	g, gctx := errgroup.WithContext(ctx)

	count := func(role domain.Role, dst *int64) {
		g.Go(func() error {
			n, err := s.users.CountByRole(gctx, role)
			if err != nil {
				return err
			}
			*dst = n
			return nil
		})
	}
	count(domain.RoleAdmin, &summary.TotalAdmins)
	count(domain.RoleStaff, &summary.TotalStaff)
	count(domain.RoleCustomer, &summary.TotalCustomers)

	var admins []domain.User
	g.Go(func() error {
		var err error
		admins, err = s.users.ListByRole(gctx, domain.RoleAdmin, s.recentLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, apperrors.MapError(err)
	}

	for _, admin := range admins {
		summary.RecentAdmins = append(summary.RecentAdmins, AdminSummary{
			FirstName: admin.FirstName,
			LastName:  admin.LastName,
			Email:     admin.Email,
			Phone:     admin.Phone,
			CreatedAt: admin.CreatedAt,
		})
	}
	return summary, nil
}
