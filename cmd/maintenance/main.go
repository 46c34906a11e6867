package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/washline/laundry-service/internal/config"
	"github.com/washline/laundry-service/internal/observability"
	"github.com/washline/laundry-service/internal/persistence"
	"github.com/washline/laundry-service/internal/service"
)

func main() {
	cmd := flag.String("cmd", "", "maintenance command: wipe|repair-emails")
	confirm := flag.Bool("confirm", false, "required for destructive commands")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	cfg.Logger.Service = "maintenance"

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if cfg.Postgres.DSN == "" {
		fmt.Fprintln(os.Stderr, "POSTGRES_DSN is required")
		os.Exit(1)
	}

	ctx := context.Background()
	store, pg, err := persistence.OpenStore(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to open store", zap.Error(err))
	}
	defer pg.Close()

	maintenance := service.NewMaintenanceService(store, logger)

	switch *cmd {
	case "wipe":
		if !*confirm {
			fmt.Fprintln(os.Stderr, "wipe deletes every record; rerun with -confirm")
			os.Exit(1)
		}
		report, err := maintenance.WipeAll(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "wipe failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("deleted %d laundry jobs, %d orders, %d appointments, %d users\n",
			report.LaundryJobs, report.Orders, report.Appointments, report.Users)

	case "repair-emails":
		repaired, err := maintenance.RepairMissingEmails(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "repair failed after %d users: %v\n", repaired, err)
			os.Exit(1)
		}
		fmt.Printf("repaired %d users\n", repaired)

	default:
		fmt.Fprintln(os.Stderr, "unknown -cmd value:", *cmd)
		os.Exit(1)
	}
}
