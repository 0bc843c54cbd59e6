// MedBox Core - medicine dispenser fleet backend
//
// This is the main entry point for the MedBox Core application. It tracks
// dispenser presence over MQTT heartbeats, journals offline events, fans
// notifications out to caregiver dashboards, and publishes medication
// schedules and commands back to the fleet.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/medboxlab/medbox-core/migrations"

	"github.com/medboxlab/medbox-core/internal/api"
	"github.com/medboxlab/medbox-core/internal/auth"
	"github.com/medboxlab/medbox-core/internal/command"
	"github.com/medboxlab/medbox-core/internal/events"
	"github.com/medboxlab/medbox-core/internal/infrastructure/config"
	"github.com/medboxlab/medbox-core/internal/infrastructure/database"
	"github.com/medboxlab/medbox-core/internal/infrastructure/influxdb"
	"github.com/medboxlab/medbox-core/internal/infrastructure/logging"
	"github.com/medboxlab/medbox-core/internal/infrastructure/mqtt"
	"github.com/medboxlab/medbox-core/internal/ingest"
	"github.com/medboxlab/medbox-core/internal/journal"
	"github.com/medboxlab/medbox-core/internal/medicine"
	"github.com/medboxlab/medbox-core/internal/notify"
	"github.com/medboxlab/medbox-core/internal/presence"
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
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
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
	log.Info("starting MedBox Core",
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
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(ctx, database.Config{
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

	// Presence store tracks heartbeat freshness per device
	store := presence.NewStore(cfg.Presence.OnlineTimeout)

	// Offline event journal, wired to bump presence counters on append
	journalSvc := journal.NewService(journal.NewSQLiteRepository(db.DB), store)

	// WebSocket hub doubles as the live notification sink
	hub := api.NewHub(cfg.WebSocket, log)
	notifySvc := notify.NewService(hub)
	notifySvc.SetLogger(log)

	// Orchestrator turns device activity into journal entries and notifications
	orchestrator := events.NewOrchestrator(journalSvc, notifySvc, store, cfg.Presence.OfflineWarningAfter)
	orchestrator.SetLogger(log)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

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
		orchestrator.SetTelemetry(influxClient)
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	// Inbound message pipeline: classify, touch presence, dispatch events
	var telemetry ingest.Telemetry
	if influxClient != nil {
		telemetry = influxClient
	}
	handler := ingest.NewHandler(store, orchestrator, telemetry)
	handler.SetLogger(log)
	if attachErr := handler.Attach(mqttClient); attachErr != nil {
		return fmt.Errorf("subscribing to device topics: %w", attachErr)
	}
	log.Info("device topic subscriptions established")

	// Outbound command publisher
	publisher := command.NewPublisher(mqttClient, store)
	publisher.SetLogger(log)

	// Auth service and first-run admin bootstrap
	userRepo := auth.NewUserRepository(db.DB)
	authSvc := auth.NewService(userRepo, cfg.Security.JWT.Secret, cfg.Security.JWT.AccessTokenTTL)
	authSvc.SetLogger(log)
	if bootErr := bootstrapAdmin(ctx, authSvc, userRepo, log); bootErr != nil {
		return fmt.Errorf("bootstrapping admin account: %w", bootErr)
	}

	// HTTP API and WebSocket server
	server, err := api.New(api.Deps{
		Config:       cfg.API,
		WS:           cfg.WebSocket,
		Logger:       log,
		Auth:         authSvc,
		Presence:     store,
		Journal:      journalSvc,
		Notify:       notifySvc,
		Medicines:    medicine.NewSQLiteRepository(db.DB),
		Commands:     publisher,
		Orchestrator: orchestrator,
		ExternalHub:  hub,
		Version:      version,
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

	// Background presence sweep catches devices that go silent
	if cfg.Presence.SweepInterval > 0 {
		go presenceSweep(ctx, orchestrator, cfg.Presence.SweepInterval, log)
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls will run in reverse order:
	// 1. API server
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("MedBox Core stopped")
	return nil
}

// presenceSweep periodically re-evaluates device presence so offline edges
// and escalation warnings fire even when no messages arrive.
func presenceSweep(ctx context.Context, orchestrator *events.Orchestrator, interval time.Duration, log *logging.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("presence sweep started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			log.Info("presence sweep stopped")
			return
		case <-ticker.C:
			orchestrator.EvaluatePresence(ctx)
		}
	}
}

// bootstrapAdmin creates the first admin account on an empty user table.
// The password comes from MEDBOX_ADMIN_PASSWORD; without it, account
// creation is left to whoever has database access.
func bootstrapAdmin(ctx context.Context, authSvc *auth.Service, repo auth.UserRepository, log *logging.Logger) error {
	count, err := repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		return nil
	}

	password := os.Getenv("MEDBOX_ADMIN_PASSWORD")
	if password == "" {
		log.Warn("no user accounts exist and MEDBOX_ADMIN_PASSWORD is not set; API logins will fail until an account is created")
		return nil
	}

	user, err := authSvc.CreateUser(ctx, "admin", password, auth.RoleAdmin)
	if err != nil {
		if errors.Is(err, auth.ErrUsernameExists) {
			return nil
		}
		return err
	}
	log.Info("bootstrap admin account created", "username", user.Username)
	return nil
}

// getConfigPath returns the configuration file path.
// Uses MEDBOX_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("MEDBOX_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
