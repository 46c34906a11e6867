package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/washline/laundry-service/internal/api/http/handlers"
	"github.com/washline/laundry-service/internal/auth"
	"github.com/washline/laundry-service/internal/domain"
	"github.com/washline/laundry-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Users        *handlers.UsersHandler
	Appointments *handlers.AppointmentsHandler
	Orders       *handlers.OrdersHandler
	LaundryJobs  *handlers.LaundryJobsHandler
	Dashboard    *handlers.DashboardHandler
	Resolver     *auth.Resolver
	Metrics      *observability.Metrics
}

const (
	customer   = domain.RoleCustomer
	staff      = domain.RoleStaff
	admin      = domain.RoleAdmin
	superadmin = domain.RoleSuperadmin
)

// RegisterRoutes wires HTTP routes. Every route after the public ones runs
// the identity resolver, then its role guard, then the handler.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Resolver.Handle, auth.RequireAuthenticated(), cfg.Auth.Logout)

	api := app.Group("", cfg.Resolver.Handle)

	users := api.Group("/users")
	users.Get("/me", auth.RequireAuthenticated(), cfg.Users.Me)
	users.Patch("/me", auth.RequireAuthenticated(), cfg.Users.UpdateMe)
	users.Patch("/:id/role", auth.RequireRoles(superadmin), cfg.Users.ChangeRole)
	users.Delete("/:id", auth.RequireRoles(admin, superadmin), cfg.Users.Delete)

	appointments := api.Group("/appointments")
	appointments.Post("/", auth.RequireRoles(customer), cfg.Appointments.Create)
	appointments.Get("/user/:userId?", auth.RequireAuthenticated(), cfg.Appointments.ListByUser)
	appointments.Get("/:id", auth.RequireAuthenticated(), cfg.Appointments.Get)
	appointments.Patch("/:id", auth.RequireRoles(customer, staff, admin), cfg.Appointments.Update)

	orders := api.Group("/orders")
	orders.Post("/", auth.RequireRoles(customer, staff, admin), cfg.Orders.Create)
	orders.Get("/user/:userId?", auth.RequireAuthenticated(), cfg.Orders.ListByUser)
	orders.Get("/:id/laundry-jobs", auth.RequireRoles(staff, admin), cfg.Orders.ListLaundryJobs)
	orders.Get("/:id", auth.RequireAuthenticated(), cfg.Orders.Get)
	orders.Patch("/:id", auth.RequireRoles(staff, admin), cfg.Orders.Update)

	jobs := api.Group("/laundry-jobs")
	jobs.Get("/:id", auth.RequireRoles(staff, admin), cfg.LaundryJobs.Get)
	jobs.Patch("/:id", auth.RequireRoles(staff, admin), cfg.LaundryJobs.Update)

	api.Get("/superadmin/dashboard", auth.RequireRoles(superadmin), cfg.Dashboard.Summary)
}
