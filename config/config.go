package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" toml:"server"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Auth     AuthConfig     `yaml:"auth" toml:"auth"`
	Policy   PolicyConfig   `yaml:"policy" toml:"policy"`
	Listing  ListingConfig  `yaml:"listing" toml:"listing"`
	Export   ExportConfig   `yaml:"export" toml:"export"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" toml:"port"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec" toml:"rate_limit_per_sec"`
	RateLimitBurst  int           `yaml:"rate_limit_burst" toml:"rate_limit_burst"`
	CacheTTLSeconds int           `yaml:"cache_ttl_seconds" toml:"cache_ttl_seconds"`
	CacheTTL        time.Duration `yaml:"-" toml:"-"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver" toml:"driver"` // "postgres" (default) or "sqlite"
	DSN                    string `yaml:"dsn" toml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns" toml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns" toml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes" toml:"conn_max_lifetime_minutes"`
	LogLevel               string `yaml:"log_level" toml:"log_level"` // silent, error, warn, info
}

// AuthConfig holds token signing settings.
type AuthConfig struct {
	JWTSecret          string        `yaml:"jwt_secret" toml:"jwt_secret"`
	TokenTTLMinutes    int           `yaml:"token_ttl_minutes" toml:"token_ttl_minutes"`
	TokenTTL           time.Duration `yaml:"-" toml:"-"`
	CookieName         string        `yaml:"cookie_name" toml:"cookie_name"`
	SecureCookie       bool          `yaml:"secure_cookie" toml:"secure_cookie"`
	LoginRateLimitPerS float64       `yaml:"login_rate_limit_per_sec" toml:"login_rate_limit_per_sec"`
}

// PolicyConfig holds the optional access rules.
type PolicyConfig struct {
	// Nil means "not set" so the default (enabled) survives an empty file.
	ClientManagesMaintenance *bool `yaml:"client_manages_maintenance" toml:"client_manages_maintenance"`
}

// ListingConfig holds page sizes for the dashboard tabs.
type ListingConfig struct {
	MachinesPerPage    int `yaml:"machines_per_page" toml:"machines_per_page"`
	MaintenancePerPage int `yaml:"maintenance_per_page" toml:"maintenance_per_page"`
	ClaimsPerPage      int `yaml:"claims_per_page" toml:"claims_per_page"`
}

// ExportConfig holds the spreadsheet export column list.
type ExportConfig struct {
	MachineColumns []string `yaml:"machine_columns" toml:"machine_columns"`
}

// Load reads the configuration from the given path. Files ending in .toml
// are decoded as TOML, everything else as YAML.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, suitable
// for tests and local runs against sqlite.
func Default() *Config {
	cfg := Config{Database: DatabaseConfig{Driver: "sqlite", DSN: "file::memory:?cache=shared"}}
	cfg.Auth.JWTSecret = "development-secret"
	_ = cfg.applyDefaults()
	return &cfg
}

func (cfg *Config) applyDefaults() error {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 300
	}
	cfg.Server.CacheTTL = time.Duration(cfg.Server.CacheTTLSeconds) * time.Second

	cfg.Database.Driver = strings.ToLower(strings.TrimSpace(cfg.Database.Driver))
	switch cfg.Database.Driver {
	case "":
		cfg.Database.Driver = "postgres"
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("database.driver %q is not supported", cfg.Database.Driver)
	}
	if cfg.Database.LogLevel == "" {
		cfg.Database.LogLevel = "warn"
	}

	if cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must be set")
	}
	if cfg.Auth.TokenTTLMinutes <= 0 {
		cfg.Auth.TokenTTLMinutes = 12 * 60
	}
	cfg.Auth.TokenTTL = time.Duration(cfg.Auth.TokenTTLMinutes) * time.Minute
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "fleet_session"
	}
	if cfg.Auth.LoginRateLimitPerS <= 0 {
		cfg.Auth.LoginRateLimitPerS = 1
	}

	if cfg.Policy.ClientManagesMaintenance == nil {
		enabled := true
		cfg.Policy.ClientManagesMaintenance = &enabled
	}

	if cfg.Listing.MachinesPerPage <= 0 {
		cfg.Listing.MachinesPerPage = 20
	}
	if cfg.Listing.MaintenancePerPage <= 0 {
		cfg.Listing.MaintenancePerPage = 15
	}
	if cfg.Listing.ClaimsPerPage <= 0 {
		cfg.Listing.ClaimsPerPage = 15
	}

	if len(cfg.Export.MachineColumns) == 0 {
		log.Printf("export.machine_columns is not set; using the default column set")
		cfg.Export.MachineColumns = []string{"serial_number", "model", "shipment_date", "client", "service_company"}
	}
	return nil
}
