package config

import (
	"os"
	"strings"
	"time"

	"github.com/iancoleman/strcase"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "./config.yaml"
)

// Config holds the process configuration. Values are read from defaults, then
// the config file (YAML or JSON), then environment variables, later sources
// winning. Each field maps to a snake_case file key and an upper-case env var,
// e.g. DatabaseFilePath is `database_file_path` and DATABASE_FILE_PATH.
type Config struct {
	DatabaseBusyTimeout       time.Duration `koanf:"database_busy_timeout"`
	DatabaseConnectRetryCount int           `koanf:"database_connect_retry_count"`
	DatabaseConnectRetryDelay time.Duration `koanf:"database_connect_retry_delay"`
	DatabaseDebug             bool          `koanf:"database_debug"`
	DatabaseFilePath          string        `koanf:"database_file_path"`
	DatabaseMaxOpenConns      int           `koanf:"database_max_open_conns"`
	DatabaseMaxRetries        int           `koanf:"database_max_retries"`
	DatabasePassword          string        `koanf:"database_password"`
	DatabaseURL               string        `koanf:"database_url"`
	DatabaseUser              string        `koanf:"database_user"`
	LoanPeriodDays            int           `koanf:"loan_period_days"`
	ServerHost                string        `koanf:"server_host"`
	ServerPort                int           `koanf:"server_port"`
	WorkerPollInterval        time.Duration `koanf:"worker_poll_interval"`
	WorkerProcesses           int           `koanf:"worker_processes"`
}

func defaults() *Config {
	return &Config{
		DatabaseBusyTimeout:       5 * time.Second,
		DatabaseConnectRetryCount: 5,
		DatabaseConnectRetryDelay: 2 * time.Second,
		DatabaseMaxOpenConns:      10,
		DatabaseMaxRetries:        5,
		LoanPeriodDays:            30,
		ServerHost:                "0.0.0.0",
		ServerPort:                3689,
		WorkerPollInterval:        5 * time.Second,
		WorkerProcesses:           1,
	}
}

func New() (*Config, error) {
	k := koanf.New(".")

	path := os.Getenv(configFileENV)
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		// The YAML parser also accepts JSON documents.
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "failed to load config file %s", path)
		}
	}

	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := defaults()
	err = k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// NewForTest returns an in-memory SQLite configuration.
func NewForTest() *Config {
	cfg := defaults()
	cfg.DatabaseFilePath = ":memory:"
	cfg.DatabaseConnectRetryCount = 1
	cfg.DatabaseConnectRetryDelay = 0
	cfg.ServerHost = "127.0.0.1"
	return cfg
}

// UsesPostgres reports whether DatabaseURL points at a PostgreSQL server.
func (cfg *Config) UsesPostgres() bool {
	return strings.HasPrefix(cfg.DatabaseURL, "postgres://") ||
		strings.HasPrefix(cfg.DatabaseURL, "postgresql://")
}

func (cfg *Config) validate() error {
	if cfg.DatabaseURL == "" && cfg.DatabaseFilePath == "" {
		return missingRequired("DatabaseFilePath")
	}
	if cfg.DatabaseURL != "" && !cfg.UsesPostgres() {
		return errors.Errorf("unsupported database_url scheme: %q", cfg.DatabaseURL)
	}
	if cfg.LoanPeriodDays < 1 {
		return errors.New("loan_period_days must be at least 1")
	}
	if cfg.WorkerProcesses < 1 {
		return errors.New("worker_processes must be at least 1")
	}
	return nil
}

func missingRequired(field string) error {
	key := toSnakeCase(field)
	return errors.Errorf("missing required config: set %s or %s in the config file", strings.ToUpper(key), key)
}

func toSnakeCase(field string) string {
	return strcase.ToSnake(field)
}
