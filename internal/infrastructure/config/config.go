package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"gopkg.in/yaml.v3"
)

// Head fixture types accepted in signal.heads[].type.
const (
	HeadTypeSemaphore = "semaphore"
	HeadTypeLight     = "light"
	HeadTypeNone      = "none"
)

// Hardware driver names accepted in signal.hardware.driver.
const (
	DriverSimulated = "simulated"
	DriverMQTT      = "mqtt"
)

// Config is the root configuration structure for SigOS Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Signal    SignalConfig    `yaml:"signal"`
	Database  DatabaseConfig  `yaml:"database"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
	API       APIConfig       `yaml:"api"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	InfluxDB  InfluxDBConfig  `yaml:"influxdb"`
	Logging   LoggingConfig   `yaml:"logging"`
	Console   ConsoleConfig   `yaml:"console"`
	EventLog  EventLogConfig  `yaml:"eventlog"`
	Security  SecurityConfig  `yaml:"security"`
}

// SignalConfig describes this controller's fixtures and rule library.
type SignalConfig struct {
	// Hostname is the controller identity. It is the source of the
	// startup default request. Defaults to os.Hostname().
	Hostname string `yaml:"hostname"`

	// RulesFile is the path to the JSONC rule library.
	RulesFile string `yaml:"rules_file"`

	Heads       []HeadConfig `yaml:"heads"`
	NumberPlate bool         `yaml:"number_plate"`

	// LightIntensity is used for light actions that omit intensity:.
	LightIntensity int `yaml:"light_intensity"`

	Executor ExecutorConfig `yaml:"executor"`
	Hardware HardwareConfig `yaml:"hardware"`
}

// HeadConfig describes one signal head.
type HeadConfig struct {
	ID       int      `yaml:"id"`
	Type     string   `yaml:"type"`
	Colors   []string `yaml:"colors"`
	MinAngle int      `yaml:"min_angle"`
	MaxAngle int      `yaml:"max_angle"`
}

// ExecutorConfig contains aspect execution settings.
type ExecutorConfig struct {
	// Preflight validates a whole aspect before the first hardware write.
	Preflight bool `yaml:"preflight"`
}

// HardwareConfig selects the fixture driver.
type HardwareConfig struct {
	Driver string `yaml:"driver"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Enabled   bool                `yaml:"enabled"`
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

// APIConfig contains HTTP API server settings.
type APIConfig struct {
	Enabled  bool             `yaml:"enabled"`
	Host     string           `yaml:"host"`
	Port     int              `yaml:"port"`
	Timeouts APITimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig       `yaml:"cors"`
}

// APITimeoutConfig contains HTTP timeout settings.
type APITimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// WebSocketConfig contains WebSocket server settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
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

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// ConsoleConfig contains the line-oriented operator console settings.
type ConsoleConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Banner  string `yaml:"banner"`
}

// EventLogConfig contains event log settings.
type EventLogConfig struct {
	// Size is the number of entries kept in memory.
	Size int `yaml:"size"`

	// Persist writes every entry to the signal_events table.
	Persist bool `yaml:"persist"`
}

// SecurityConfig contains security settings.
type SecurityConfig struct {
	JWT JWTConfig `yaml:"jwt"`
}

// JWTConfig contains JWT token settings.
// An empty secret disables bearer authentication on the request routes.
type JWTConfig struct {
	Secret string `yaml:"secret"`
	Issuer string `yaml:"issuer"`
}

// envOverrides holds the environment variables that may override file values.
// Empty strings and zero ports leave the file value in place.
type envOverrides struct {
	Hostname       string `env:"SIGOS_HOSTNAME"`
	RulesFile      string `env:"SIGOS_RULES_FILE"`
	HardwareDriver string `env:"SIGOS_HARDWARE_DRIVER"`
	DatabasePath   string `env:"SIGOS_DATABASE_PATH"`
	MQTTHost       string `env:"SIGOS_MQTT_HOST"`
	MQTTUsername   string `env:"SIGOS_MQTT_USERNAME"`
	MQTTPassword   string `env:"SIGOS_MQTT_PASSWORD"`
	APIHost        string `env:"SIGOS_API_HOST"`
	APIPort        int    `env:"SIGOS_API_PORT"`
	ConsolePort    int    `env:"SIGOS_CONSOLE_PORT"`
	InfluxDBToken  string `env:"SIGOS_INFLUXDB_TOKEN"`
	JWTSecret      string `env:"SIGOS_JWT_SECRET"`
	LogLevel       string `env:"SIGOS_LOG_LEVEL"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SIGOS_SECTION_KEY
// For example: SIGOS_DATABASE_PATH, SIGOS_API_PORT
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if cfg.Signal.Hostname == "" {
		if host, err := os.Hostname(); err == nil {
			cfg.Signal.Hostname = host
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Signal: SignalConfig{
			RulesFile:      "./configs/rules.jsonc",
			LightIntensity: 100,
			Executor: ExecutorConfig{
				Preflight: true,
			},
			Hardware: HardwareConfig{
				Driver: DriverSimulated,
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/sigos.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "sigos-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		API: APIConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    8080,
			Timeouts: APITimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Console: ConsoleConfig{
			Enabled: true,
			Host:    "0.0.0.0",
			Port:    2323,
			Banner:  "SigOS signal controller",
		},
		EventLog: EventLogConfig{
			Size:    32,
			Persist: true,
		},
		Security: SecurityConfig{
			JWT: JWTConfig{
				Issuer: "sigos",
			},
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) error {
	var o envOverrides
	if err := env.Parse(&o); err != nil {
		return err
	}

	setString(&cfg.Signal.Hostname, o.Hostname)
	setString(&cfg.Signal.RulesFile, o.RulesFile)
	setString(&cfg.Signal.Hardware.Driver, o.HardwareDriver)
	setString(&cfg.Database.Path, o.DatabasePath)
	setString(&cfg.MQTT.Broker.Host, o.MQTTHost)
	setString(&cfg.MQTT.Auth.Username, o.MQTTUsername)
	setString(&cfg.MQTT.Auth.Password, o.MQTTPassword)
	setString(&cfg.API.Host, o.APIHost)
	setString(&cfg.InfluxDB.Token, o.InfluxDBToken)
	setString(&cfg.Security.JWT.Secret, o.JWTSecret)
	setString(&cfg.Logging.Level, o.LogLevel)

	if o.APIPort != 0 {
		cfg.API.Port = o.APIPort
	}
	if o.ConsolePort != 0 {
		cfg.Console.Port = o.ConsolePort
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// Validate checks the configuration for errors and security issues.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	errs = append(errs, c.Signal.validate()...)

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}
	if c.Signal.Hardware.Driver == DriverMQTT && !c.MQTT.Enabled {
		errs = append(errs, "signal.hardware.driver mqtt requires mqtt.enabled")
	}

	if c.API.Enabled && (c.API.Port < 1 || c.API.Port > 65535) {
		errs = append(errs, "api.port must be between 1 and 65535")
	}
	if c.Console.Enabled && (c.Console.Port < 1 || c.Console.Port > 65535) {
		errs = append(errs, "console.port must be between 1 and 65535")
	}

	if c.EventLog.Size < 1 {
		errs = append(errs, "eventlog.size must be at least 1")
	}

	// An empty secret leaves the request routes unauthenticated. A short one
	// would let a peer forge tokens and drive the signal.
	const minJWTSecretLength = 32
	if s := c.Security.JWT.Secret; s != "" && len(s) < minJWTSecretLength {
		errs = append(errs, "security.jwt.secret must be at least 32 characters for adequate security")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (s SignalConfig) validate() []string {
	var errs []string

	if s.Hostname == "" {
		errs = append(errs, "signal.hostname is required")
	}
	if s.RulesFile == "" {
		errs = append(errs, "signal.rules_file is required")
	}
	if len(s.Heads) == 0 {
		errs = append(errs, "signal.heads must declare at least one head")
	}
	if s.LightIntensity < 0 || s.LightIntensity > 100 {
		errs = append(errs, "signal.light_intensity must be between 0 and 100")
	}

	switch s.Hardware.Driver {
	case DriverSimulated, DriverMQTT:
	default:
		errs = append(errs, fmt.Sprintf("signal.hardware.driver %q is not supported", s.Hardware.Driver))
	}

	seen := make(map[int]bool, len(s.Heads))
	for i, h := range s.Heads {
		if h.ID < 1 {
			errs = append(errs, fmt.Sprintf("signal.heads[%d].id must be positive", i))
		}
		if seen[h.ID] {
			errs = append(errs, fmt.Sprintf("signal.heads[%d].id %d is duplicated", i, h.ID))
		}
		seen[h.ID] = true

		switch strings.ToLower(h.Type) {
		case HeadTypeSemaphore, HeadTypeNone:
		case HeadTypeLight:
			if len(h.Colors) == 0 {
				errs = append(errs, fmt.Sprintf("signal.heads[%d] light head needs at least one color", i))
			}
		default:
			errs = append(errs, fmt.Sprintf("signal.heads[%d].type %q is not supported", i, h.Type))
		}
	}

	return errs
}

// GetReadTimeout returns the API read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the API write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the API idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.API.Timeouts.Idle) * time.Second
}
