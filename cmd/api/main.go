package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/washline/laundry-service/internal/api/http"
	"github.com/washline/laundry-service/internal/api/http/handlers"
	"github.com/washline/laundry-service/internal/auth"
	"github.com/washline/laundry-service/internal/config"
	"github.com/washline/laundry-service/internal/events"
	"github.com/washline/laundry-service/internal/observability"
	"github.com/washline/laundry-service/internal/persistence"
	"github.com/washline/laundry-service/internal/service"
	"github.com/washline/laundry-service/internal/worker"
)

const (
	notificationWorkers   = 2
	notificationQueueSize = 256
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, pg, err := persistence.OpenStore(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer pg.Close()

	sessions, redis := persistence.OpenSessionStore(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics(metricsNamespace(cfg.App.Name))
	dispatcher := events.NewInMemoryDispatcher()
	notifier := worker.NewNotificationWorker(service.NewNotificationService(logger, cfg.Notification), logger, notificationWorkers, notificationQueueSize)
	notifier.Subscribe(dispatcher, events.AllEventTypes...)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		_ = notifier.Run(ctx)
	}()

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: store.Users,
		Sessions: sessions,
		Logger:   logger,
	})
	resolver := auth.NewResolver(authService.TokenManager(), store.Users, sessions)

	orderService := service.NewOrderService(service.OrderDependencies{
		UserRepo:       store.Users,
		OrderRepo:      store.Orders,
		LaundryJobRepo: store.LaundryJobs,
		Dispatcher:     dispatcher,
		Logger:         logger,
		Metrics:        metrics,
	})
	appointmentService := service.NewAppointmentService(service.AppointmentDependencies{
		UserRepo:        store.Users,
		AppointmentRepo: store.Appointments,
		OrderRepo:       store.Orders,
		Dispatcher:      dispatcher,
		Logger:          logger,
		Metrics:         metrics,
	})
	laundryJobService := service.NewLaundryJobService(service.LaundryJobDependencies{
		LaundryJobRepo: store.LaundryJobs,
		Orders:         orderService,
		Dispatcher:     dispatcher,
		Logger:         logger,
		Metrics:        metrics,
	})
	cascadeService := service.NewCascadeService(service.CascadeDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})
	userService := service.NewUserService(store.Users, logger)
	dashboardService := service.NewDashboardService(store.Users, cfg.Dashboard.RecentAdminsLimit)

	readiness := map[string]handlers.Pinger{"redis": redis, "postgres": nil}
	if pg != nil {
		readiness["postgres"] = pg
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:       handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, readiness),
		Auth:         handlers.NewAuthHandler(authService),
		Users:        handlers.NewUsersHandler(userService, cascadeService),
		Appointments: handlers.NewAppointmentsHandler(appointmentService),
		Orders:       handlers.NewOrdersHandler(orderService),
		LaundryJobs:  handlers.NewLaundryJobsHandler(laundryJobService),
		Dashboard:    handlers.NewDashboardHandler(dashboardService),
		Resolver:     resolver,
		Metrics:      metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	cancel()
	<-workerDone
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

func metricsNamespace(appName string) string {
	return strings.ReplaceAll(appName, "-", "_")
}
