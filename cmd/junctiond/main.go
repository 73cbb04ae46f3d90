// Junction Core - Traffic Signal Controller
//
// This is the main entry point for the Junction Core daemon. It runs one
// intersection: a fixed seven-phase signal program with demand-actuated
// green yields, emergency vehicle preemption, and operator reset, driven
// over MQTT field topics.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/nerrad567/junction-core/migrations"

	"github.com/nerrad567/junction-core/internal/controller"
	"github.com/nerrad567/junction-core/internal/driver"
	"github.com/nerrad567/junction-core/internal/field"
	"github.com/nerrad567/junction-core/internal/history"
	"github.com/nerrad567/junction-core/internal/infrastructure/config"
	"github.com/nerrad567/junction-core/internal/infrastructure/database"
	"github.com/nerrad567/junction-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/junction-core/internal/infrastructure/logging"
	"github.com/nerrad567/junction-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/junction-core/internal/junction"
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
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Junction Core",
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

	// Phase history repository
	historyRepo := history.NewSQLiteRepository(db.DB)

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
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Set up MQTT logging callbacks
	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

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
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		// Set up InfluxDB error callback
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Signal state machine from the configured timing plan
	ctrl, err := controller.New(signalDurations(cfg.Signal))
	if err != nil {
		return fmt.Errorf("building controller: %w", err)
	}

	// Field periphery: inbound detectors, outbound lamps
	qos := byte(cfg.MQTT.QoS) // #nosec G115 -- validated 0..2 by config
	bank := field.NewDetectorBank()
	if err := bank.Start(mqttClient, qos); err != nil {
		return fmt.Errorf("starting detector bank: %w", err)
	}
	log.Info("detector bank subscribed")

	panel := field.NewLampPanel(mqttClient, qos)

	// Tick driver
	drv, err := buildDriver(cfg.Signal)
	if err != nil {
		return fmt.Errorf("building tick driver: %w", err)
	}
	log.Info("tick driver ready",
		"driver", cfg.Signal.Driver,
		"interval", cfg.TickInterval(),
	)

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Orchestration loop. Telemetry stays nil when InfluxDB is disabled;
	// a nil *influxdb.Client inside a non-nil interface would dodge the
	// loop's nil checks.
	var telemetry junction.Telemetry
	if influxClient != nil {
		telemetry = influxClient
	}

	loop := junction.New(
		junction.Config{
			IntersectionID:   cfg.Intersection.ID,
			HistoryRetention: cfg.HistoryRetention(),
		},
		ctrl, drv, bank, panel, historyRepo, telemetry, log,
	)

	log.Info("initialisation complete, entering signal loop",
		"intersection_id", cfg.Intersection.ID,
	)

	if runErr := loop.Run(ctx); runErr != nil {
		return fmt.Errorf("signal loop: %w", runErr)
	}

	log.Info("Junction Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses JUNCTION_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("JUNCTION_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// signalDurations converts the config timing plan to controller durations.
// The single yellow setting feeds both approaches.
func signalDurations(sc config.SignalConfig) controller.Durations {
	yellow := time.Duration(sc.YellowMS) * time.Millisecond
	return controller.Durations{
		Init:            time.Duration(sc.InitMS) * time.Millisecond,
		NsGreen:         time.Duration(sc.NsGreenMS) * time.Millisecond,
		NsYellow:        yellow,
		EwGreen:         time.Duration(sc.EwGreenMS) * time.Millisecond,
		EwYellow:        yellow,
		EmergencySettle: time.Duration(sc.EmergencySettleMS) * time.Millisecond,
	}
}

// buildDriver selects the configured tick source.
func buildDriver(sc config.SignalConfig) (driver.Driver, error) {
	interval := time.Duration(sc.TickMS) * time.Millisecond
	switch sc.Driver {
	case config.DriverWallclock:
		return driver.NewWallclock(interval), nil
	case config.DriverPulse:
		// Pulse runs at real-time pace but stamps ticks from a synthetic
		// clock, so replays are deterministic.
		return driver.NewPulse(time.Now().UTC().Truncate(time.Second), interval, interval), nil
	default:
		return nil, fmt.Errorf("unknown driver %q", sc.Driver)
	}
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - db: Database connection to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	// Check database
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	// Check MQTT
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	// Check InfluxDB (if enabled)
	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
