package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/soaringjerry/EcoImpact/internal/utils"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ECOIMPACT_"

// Config aggregates application configuration values.
type Config struct {
	HTTP    HTTPConfig    `yaml:"http"`
	Storage StorageConfig `yaml:"storage"`
	Auth    AuthConfig    `yaml:"auth"`
	Logging LoggingConfig `yaml:"logging"`
}

// HTTPConfig governs HTTP server behaviour.
type HTTPConfig struct {
	Addr             string        `yaml:"addr"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	IdleTimeout      time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins   []string      `yaml:"allowed_origins"`
	AllowCredentials bool          `yaml:"allow_credentials"`
	StaticDir        string        `yaml:"static_dir"`
	DevFrontendURL   string        `yaml:"dev_frontend_url"`
	InboxSize        int           `yaml:"inbox_size"`
}

// StorageConfig selects the key-value backend.
type StorageConfig struct {
	Driver        string `yaml:"driver"` // memory|file|sqlite
	FilePath      string `yaml:"file_path"`
	SQLitePath    string `yaml:"sqlite_path"`
	MigrationsDir string `yaml:"migrations_dir"`
}

// AuthConfig controls session tokens and the demo backend.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
	Latency   time.Duration `yaml:"latency"`
}

// LoggingConfig controls structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // console|json
}

const (
	defaultAddr            = ":8080"
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 15 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultInboxSize       = 20
	defaultStorageDriver   = "file"
	defaultFilePath        = "./data/ecoimpact.json"
	defaultSQLitePath      = "./data/ecoimpact.db"
	defaultJWTSecret       = "ecoimpact-dev-secret"
	defaultTokenTTL        = 7 * 24 * time.Hour
	defaultAuthLatency     = time.Second
	defaultLoggingLevel    = "info"
	defaultLoggingFormat   = "console"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTP: HTTPConfig{
			Addr:            defaultAddr,
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			IdleTimeout:     defaultIdleTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
			InboxSize:       defaultInboxSize,
		},
		Storage: StorageConfig{
			Driver:     defaultStorageDriver,
			FilePath:   defaultFilePath,
			SQLitePath: defaultSQLitePath,
		},
		Auth: AuthConfig{
			JWTSecret: defaultJWTSecret,
			TokenTTL:  defaultTokenTTL,
			Latency:   defaultAuthLatency,
		},
		Logging: LoggingConfig{
			Level:  defaultLoggingLevel,
			Format: defaultLoggingFormat,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at path
// (skipped when path is empty), then ECOIMPACT_* environment variables.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := mergeYAML(&cfg, data); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// mergeYAML decodes data over cfg; keys absent from data keep their value.
func mergeYAML(cfg *Config, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	return dec.Decode(cfg)
}

func applyEnv(cfg *Config) {
	env := func(name string) string { return EnvPrefix + name }

	cfg.HTTP.Addr = utils.SafeEnv(env("ADDR"), cfg.HTTP.Addr)
	cfg.HTTP.ReadTimeout = utils.SafeEnvDuration(env("READ_TIMEOUT"), cfg.HTTP.ReadTimeout)
	cfg.HTTP.WriteTimeout = utils.SafeEnvDuration(env("WRITE_TIMEOUT"), cfg.HTTP.WriteTimeout)
	cfg.HTTP.IdleTimeout = utils.SafeEnvDuration(env("IDLE_TIMEOUT"), cfg.HTTP.IdleTimeout)
	cfg.HTTP.ShutdownTimeout = utils.SafeEnvDuration(env("SHUTDOWN_TIMEOUT"), cfg.HTTP.ShutdownTimeout)
	if v := os.Getenv(env("ALLOWED_ORIGINS")); v != "" {
		cfg.HTTP.AllowedOrigins = splitCSV(v)
	}
	cfg.HTTP.AllowCredentials = utils.SafeEnvBool(env("ALLOW_CREDENTIALS"), cfg.HTTP.AllowCredentials)
	cfg.HTTP.StaticDir = utils.SafeEnv(env("STATIC_DIR"), cfg.HTTP.StaticDir)
	cfg.HTTP.DevFrontendURL = utils.SafeEnv(env("DEV_FRONTEND_URL"), cfg.HTTP.DevFrontendURL)
	cfg.HTTP.InboxSize = utils.SafeEnvInt(env("INBOX_SIZE"), cfg.HTTP.InboxSize)

	cfg.Storage.Driver = utils.SafeEnv(env("STORAGE_DRIVER"), cfg.Storage.Driver)
	cfg.Storage.FilePath = utils.SafeEnv(env("STORAGE_FILE"), cfg.Storage.FilePath)
	cfg.Storage.SQLitePath = utils.SafeEnv(env("SQLITE_PATH"), cfg.Storage.SQLitePath)
	cfg.Storage.MigrationsDir = utils.SafeEnv(env("MIGRATIONS_DIR"), cfg.Storage.MigrationsDir)

	cfg.Auth.JWTSecret = utils.SafeEnv(env("JWT_SECRET"), cfg.Auth.JWTSecret)
	cfg.Auth.TokenTTL = utils.SafeEnvDuration(env("TOKEN_TTL"), cfg.Auth.TokenTTL)
	cfg.Auth.Latency = utils.SafeEnvDuration(env("AUTH_LATENCY"), cfg.Auth.Latency)

	cfg.Logging.Level = utils.SafeEnv(env("LOG_LEVEL"), cfg.Logging.Level)
	cfg.Logging.Format = utils.SafeEnv(env("LOG_FORMAT"), cfg.Logging.Format)
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTP.Addr) == "" {
		errs = append(errs, errors.New("http.addr is required"))
	}
	if c.HTTP.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("http.shutdown_timeout must not be negative"))
	}
	if c.HTTP.InboxSize < 1 {
		errs = append(errs, fmt.Errorf("http.inbox_size %d must be at least 1", c.HTTP.InboxSize))
	}
	switch c.Storage.Driver {
	case "memory":
	case "file":
		if c.Storage.FilePath == "" {
			errs = append(errs, errors.New("storage.file_path is required for the file driver"))
		}
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			errs = append(errs, errors.New("storage.sqlite_path is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.driver %q must be memory, file or sqlite", c.Storage.Driver))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Auth.Latency < 0 {
		errs = append(errs, errors.New("auth.latency must not be negative"))
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be console or json", c.Logging.Format))
	}
	return errors.Join(errs...)
}

func splitCSV(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
