// Glowbridge Core - HTTP lighting bridge
//
// This is the main entry point for the Glowbridge Core application.
// Glowbridge publishes HTTP-controlled dimmable lights as a uniform
// accessory set: the configured device list is reconciled into stable
// accessories, each backed by a controller that translates between
// device wire values and the canonical on/brightness model.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/glowbridge/glowbridge-core/migrations"

	"github.com/glowbridge/glowbridge-core/internal/accessory"
	"github.com/glowbridge/glowbridge-core/internal/api"
	"github.com/glowbridge/glowbridge-core/internal/controller"
	"github.com/glowbridge/glowbridge-core/internal/history"
	"github.com/glowbridge/glowbridge-core/internal/infrastructure/config"
	"github.com/glowbridge/glowbridge-core/internal/infrastructure/database"
	"github.com/glowbridge/glowbridge-core/internal/infrastructure/influxdb"
	"github.com/glowbridge/glowbridge-core/internal/infrastructure/logging"
	"github.com/glowbridge/glowbridge-core/internal/transport"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Glowbridge Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath, "devices", len(cfg.Devices))

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// State history recorder
	historyRepo := history.NewSQLiteRepository(db.DB)
	recorder := history.NewRecorder(historyRepo)
	recorder.SetLogger(log)
	if influxClient != nil {
		recorder.SetTelemetry(influxClient)
	}

	// Accessory registry with HTTP device controllers
	httpClient := transport.New()
	factory := func(accessoryUUID string, dev config.Device) accessory.Controller {
		ctrl := controller.New(accessoryUUID, dev, httpClient)
		ctrl.SetLogger(log)
		ctrl.SetRecorder(recorder)
		return ctrl
	}

	accessoryRepo := accessory.NewSQLiteRepository(db.DB)
	registry := accessory.NewRegistry(accessoryRepo, factory)
	registry.SetLogger(log)

	if restoreErr := registry.Restore(ctx); restoreErr != nil {
		return fmt.Errorf("restoring accessories: %w", restoreErr)
	}
	result := registry.Reconcile(ctx, cfg.Devices)
	log.Info("accessory registry initialised",
		"accessories", registry.Count(),
		"added", result.Added,
		"updated", result.Updated,
		"removed", result.Removed,
	)

	// Start API server
	server, err := api.New(api.Deps{
		Config:   cfg.Server,
		Logger:   log,
		Registry: registry,
		History:  historyRepo,
		Devices:  func() []config.Device { return cfg.Devices },
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if startErr := server.Start(ctx); startErr != nil {
		return fmt.Errorf("starting API server: %w", startErr)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, influxClient, server); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. Database

	log.Info("Glowbridge Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses GLOWBRIDGE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("GLOWBRIDGE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, influxClient *influxdb.Client, server *api.Server) error {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.HealthCheck(checkCtx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(checkCtx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	if err := server.HealthCheck(checkCtx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	return nil
}
