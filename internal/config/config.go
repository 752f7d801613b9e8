// Package config loads FinPulse settings from an optional config file, a
// .env file and FINPULSE_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rocjay1/finpulse/internal/models"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "FINPULSE"

// Config is the full runtime configuration.
type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	API     APIConfig     `mapstructure:"api"`
	Report  ReportConfig  `mapstructure:"report"`
	Session SessionConfig `mapstructure:"session"`
	Storage StorageConfig `mapstructure:"storage"`
	Server  ServerConfig  `mapstructure:"server"`
}

type LogConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
}

// APIConfig points at the remote analysis service.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ReportConfig holds the initial report settings of a session.
type ReportConfig struct {
	CompanyName string `mapstructure:"company_name"`
	Language    string `mapstructure:"language"`
	Industry    string `mapstructure:"industry"`
}

type SessionConfig struct {
	// IDPrefix starts every synthetic transaction id.
	IDPrefix string `mapstructure:"id_prefix"`
	// IDGenerator is "sequence" or "uuid".
	IDGenerator string `mapstructure:"id_generator"`
}

// StorageConfig enables the Azure storage integrations. Each URL is
// optional; an empty URL disables that integration.
type StorageConfig struct {
	TableURL         string `mapstructure:"table_url"`
	SnapshotTable    string `mapstructure:"snapshot_table"`
	BlobURL          string `mapstructure:"blob_url"`
	ArchiveContainer string `mapstructure:"archive_container"`
	QueueURL         string `mapstructure:"queue_url"`
	EventsQueue      string `mapstructure:"events_queue"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Addr is host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Settings converts the report section into a settings record.
func (c *Config) Settings() models.Settings {
	return models.Settings{
		CompanyName: c.Report.CompanyName,
		Language:    models.Language(c.Report.Language),
		Industry:    models.Industry(c.Report.Industry),
	}
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if err := c.Settings().Validate(); err != nil {
		return fmt.Errorf("invalid report settings: %w", err)
	}
	switch c.Session.IDGenerator {
	case "sequence", "uuid":
	default:
		return fmt.Errorf("unknown id generator: %q", c.Session.IDGenerator)
	}
	return nil
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	defaults := models.DefaultSettings()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", 60*time.Second)
	v.SetDefault("report.company_name", defaults.CompanyName)
	v.SetDefault("report.language", string(defaults.Language))
	v.SetDefault("report.industry", string(defaults.Industry))
	v.SetDefault("session.id_prefix", "txn")
	v.SetDefault("session.id_generator", "sequence")
	v.SetDefault("storage.table_url", "")
	v.SetDefault("storage.snapshot_table", "sessions")
	v.SetDefault("storage.blob_url", "")
	v.SetDefault("storage.archive_container", "finpulse-archive")
	v.SetDefault("storage.queue_url", "")
	v.SetDefault("storage.events_queue", "finpulse-events")
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
}

// Load reads configuration. path may be empty. A missing .env file is not
// an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
