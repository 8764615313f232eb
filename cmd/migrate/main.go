package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/angelmondragon/fleetstock-backend/internal/fleets"
	"github.com/angelmondragon/fleetstock-backend/pkg/config"
	"github.com/angelmondragon/fleetstock-backend/pkg/db"
	"github.com/angelmondragon/fleetstock-backend/pkg/db/models"
	"github.com/angelmondragon/fleetstock-backend/pkg/logger"
	"github.com/angelmondragon/fleetstock-backend/pkg/migrate"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "migrate"})

	_ = godotenv.Load()

	cmd := flag.String("cmd", "up", "migration command: up|down|status|version|create|validate|seed")
	dir := flag.String("dir", migrate.DefaultDir, "goose migrations directory (the default applies the embedded copy)")
	name := flag.String("name", "", "migration name (for create)")
	version := flag.String("version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")

	flag.Parse()

	// create and validate only touch the filesystem
	switch *cmd {
	case "create":
		if *name == "" {
			fail("missing -name for create", nil)
		}
		path, err := migrate.CreateSQLMigration(*dir, *name)
		if err != nil {
			fail("failed to create migration", err)
		}
		fmt.Println("created migration:", path)
		return

	case "validate":
		if err := migrate.ValidateDir(*dir); err != nil {
			fail("migration validation failed", err)
		}
		fmt.Println("migration validation passed")
		return
	}

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Env:         cfg.App.Env,
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	ctx = logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"cmd":    *cmd,
		"dir":    *dir,
		"driver": cfg.DB.Driver,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	if *cmd == "seed" {
		seedFleets(ctx, logg, dbClient)
		return
	}

	if cfg.DB.IsSQLite() {
		if *cmd != "up" {
			fail(fmt.Sprintf("-cmd=%s is not supported on sqlite", *cmd), nil)
		}
		logg.Info(ctx, "auto-migrating sqlite schema from models")
		if err := dbClient.DB().WithContext(ctx).AutoMigrate(models.All()...); err != nil {
			fail("sqlite auto-migrate failed", err)
		}
		return
	}

	sqlDB, err := dbClient.DB().DB()
	requireResource(ctx, logg, "sql database", err)

	runner, err := migrate.NewRunner(sqlDB, migrate.Source(*dir), logg)
	requireResource(ctx, logg, "goose provider", err)

	logg.Info(ctx, "migrate ready")

	switch *cmd {
	case "up":
		if err := runner.Up(ctx); err != nil {
			fail("goose up failed", err)
		}

	case "down":
		if err := runner.Down(ctx); err != nil {
			fail("goose down failed", err)
		}

	case "status":
		states, err := runner.Status(ctx)
		if err != nil {
			fail("goose status failed", err)
		}
		for _, s := range states {
			applied := "pending"
			if s.Applied {
				applied = s.AppliedAt.UTC().Format(time.RFC3339)
			}
			fmt.Printf("%d\t%-50s\t%s\n", s.Version, s.Path, applied)
		}

	case "version":
		if *version == "" {
			fail("missing -version for version command", nil)
		}
		if err := runner.To(ctx, *version); err != nil {
			fail("goose version migrate failed", err)
		}

	default:
		fail("unknown -cmd value: "+*cmd, nil)
	}
}

func seedFleets(ctx context.Context, logg *logger.Logger, dbClient *db.Client) {
	svc, err := fleets.NewService(fleets.NewRepository(dbClient.DB()), dbClient, logg)
	requireResource(ctx, logg, "fleet service", err)
	if err := svc.EnsureDefaults(ctx, fleets.DefaultCatalog); err != nil {
		fail("fleet seed failed", err)
	}
	fmt.Println("fleet catalog seeded")
}

func fail(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	} else {
		fmt.Fprintln(os.Stderr, msg)
	}
	os.Exit(1)
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
