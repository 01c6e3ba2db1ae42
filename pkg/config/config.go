package config

import (
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/dataprofhq/engine/pkg/warehouse"
)

// Config holds all configuration for the profiling engine.
// Configuration can come from a YAML file (config.yaml) or environment
// variables; environment variables always override YAML values. Secrets
// (warehouse passwords, key files) must only come from environment
// variables.
type Config struct {
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Concurrency bounds how many columns are profiled in parallel.
	Concurrency int `yaml:"concurrency" env:"PROFILER_CONCURRENCY" env-default:"4"`

	Warehouse WarehouseConfig `yaml:"warehouse"`
}

// WarehouseConfig holds connection settings for the target warehouse.
// Only the fields relevant to the configured type are used.
type WarehouseConfig struct {
	// Type is the warehouse tag: "postgres", "bigquery" or "snowflake".
	Type string `yaml:"type" env:"WAREHOUSE_TYPE" env-default:"postgres"`

	// Postgres
	Host     string `yaml:"host" env:"WAREHOUSE_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"WAREHOUSE_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"WAREHOUSE_USER" env-default:""`
	Password string `yaml:"-" env:"WAREHOUSE_PASSWORD"` // Secret - not in YAML
	Database string `yaml:"database" env:"WAREHOUSE_DATABASE" env-default:""`
	SSLMode  string `yaml:"ssl_mode" env:"WAREHOUSE_SSLMODE" env-default:"disable"`

	// BigQuery
	Project string `yaml:"project" env:"BIGQUERY_PROJECT" env-default:""`

	// Snowflake
	Account       string `yaml:"account" env:"SNOWFLAKE_ACCOUNT" env-default:""`
	Role          string `yaml:"role" env:"SNOWFLAKE_ROLE" env-default:""`
	WarehouseName string `yaml:"warehouse_name" env:"SNOWFLAKE_WAREHOUSE" env-default:""`
}

// Load reads configuration from config.yaml with environment variable
// overrides. A missing config.yaml is fine; configuration then comes from
// the environment alone. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat("config.yaml"); err == nil {
		if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment config: %w", err)
		}
	}

	if _, err := warehouse.ParseType(cfg.Warehouse.Type); err != nil {
		return nil, fmt.Errorf("invalid warehouse config: %w", err)
	}

	return cfg, nil
}

// ConnectionString returns a Postgres connection string for the
// configured warehouse.
func (c *WarehouseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
