package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Junction Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Intersection IntersectionConfig `yaml:"intersection"`
	Signal       SignalConfig       `yaml:"signal"`
	Database     DatabaseConfig     `yaml:"database"`
	MQTT         MQTTConfig         `yaml:"mqtt"`
	InfluxDB     InfluxDBConfig     `yaml:"influxdb"`
	Logging      LoggingConfig      `yaml:"logging"`
}

// IntersectionConfig identifies the intersection this controller runs.
type IntersectionConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Timezone string `yaml:"timezone"`
}

// SignalConfig contains the phase timing plan and tick driver settings.
type SignalConfig struct {
	// Phase dwell times. Yellow applies to both approaches; the clearance
	// interval is a safety constant and never differs per approach.
	InitMS            int `yaml:"init_ms"`
	NsGreenMS         int `yaml:"ns_green_ms"`
	EwGreenMS         int `yaml:"ew_green_ms"`
	YellowMS          int `yaml:"yellow_ms"`
	EmergencySettleMS int `yaml:"emergency_settle_ms"`

	// Driver selects the tick source: "wallclock" (polled loop) or
	// "pulse" (discrete clock edges with a fixed period).
	Driver string `yaml:"driver"`

	// TickMS is the poll interval for the wallclock driver and the pulse
	// period for the pulse driver.
	TickMS int `yaml:"tick_ms"`

	// HistoryRetentionHours bounds the phase history table; entries older
	// than this are pruned at startup. 0 disables pruning.
	HistoryRetentionHours int `yaml:"history_retention_hours"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// Tick driver names accepted by signal.driver.
const (
	DriverWallclock = "wallclock"
	DriverPulse     = "pulse"
)

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: JUNCTION_SECTION_KEY
// For example: JUNCTION_DATABASE_PATH, JUNCTION_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	// Start with defaults
	cfg := defaultConfig()

	// Read and parse YAML file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
// The timing plan favours the north-south approach: 10s/6s greens,
// 2s clearance, 500ms emergency settle.
func defaultConfig() *Config {
	return &Config{
		Intersection: IntersectionConfig{
			ID:       "junction-001",
			Name:     "Junction Core",
			Timezone: "UTC",
		},
		Signal: SignalConfig{
			InitMS:                100,
			NsGreenMS:             10000,
			EwGreenMS:             6000,
			YellowMS:              2000,
			EmergencySettleMS:     500,
			Driver:                DriverWallclock,
			TickMS:                50,
			HistoryRetentionHours: 720,
		},
		Database: DatabaseConfig{
			Path:        "./data/junction.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "junction-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: JUNCTION_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Database
	if v := os.Getenv("JUNCTION_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// MQTT
	if v := os.Getenv("JUNCTION_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("JUNCTION_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("JUNCTION_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("JUNCTION_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	// Intersection validation
	if c.Intersection.ID == "" {
		errs = append(errs, "intersection.id is required")
	}

	// Signal validation. Zero greens or yellows would let phases chatter
	// every tick; negative values are nonsense.
	if c.Signal.NsGreenMS <= 0 || c.Signal.EwGreenMS <= 0 {
		errs = append(errs, "signal green dwells must be positive")
	}
	if c.Signal.YellowMS <= 0 {
		errs = append(errs, "signal.yellow_ms must be positive")
	}
	if c.Signal.InitMS < 0 || c.Signal.EmergencySettleMS < 0 {
		errs = append(errs, "signal dwells must not be negative")
	}
	if c.Signal.TickMS <= 0 {
		errs = append(errs, "signal.tick_ms must be positive")
	}
	switch c.Signal.Driver {
	case DriverWallclock, DriverPulse:
	default:
		errs = append(errs, "signal.driver must be \"wallclock\" or \"pulse\"")
	}

	// Database validation
	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	// MQTT validation
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// TickInterval returns the configured tick period as a Duration.
func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.Signal.TickMS) * time.Millisecond
}

// HistoryRetention returns the phase history retention window as a Duration.
func (c *Config) HistoryRetention() time.Duration {
	return time.Duration(c.Signal.HistoryRetentionHours) * time.Hour
}
