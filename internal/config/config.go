// Package config provides configuration management.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"service-discounts/internal/domain"
	"service-discounts/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `yaml:"version" json:"version"`

	// Server contains HTTP server configuration
	Server ServerConfig `yaml:"server" json:"server"`

	// Storage contains accumulated-volume storage configuration
	Storage StorageConfig `yaml:"storage" json:"storage"`

	// Logging contains logging configuration
	Logging logging.Config `yaml:"logging" json:"logging"`

	// Discounts is the discount configuration of the portal
	Discounts domain.Settings `yaml:"discounts" json:"discounts"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	// Addr is the listen address
	Addr string `yaml:"addr" json:"addr"`
}

// Storage drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// StorageConfig contains storage settings
type StorageConfig struct {
	// Driver is memory or postgres
	Driver string `yaml:"driver" json:"driver"`

	// DatabaseURL is the PostgreSQL connection string
	DatabaseURL string `yaml:"database_url" json:"database_url,omitempty"`
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version:   "1.0",
		Server:    ServerConfig{Addr: ":8080"},
		Storage:   StorageConfig{Driver: DriverMemory},
		Logging:   logging.DefaultConfig(),
		Discounts: domain.DefaultSettings(),
	}
}

// Load loads configuration from a YAML file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}
	return config, nil
}

// Save writes configuration to a YAML file
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadEnv reads a .env file outside production. A missing file is not an error.
func LoadEnv(paths ...string) {
	if os.Getenv("ENV") == "production" {
		return
	}
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			logging.Sugar.Warnf("cannot load %s: %v", p, err)
		}
	}
}

// ApplyEnv overrides settings from DATABASE_URL, HTTP_ADDR and LOG_LEVEL.
func (c *Config) ApplyEnv() {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		c.Storage.DatabaseURL = url
		if c.Storage.Driver == "" || c.Storage.Driver == DriverMemory {
			c.Storage.Driver = DriverPostgres
		}
	}
	if addr := os.Getenv("HTTP_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
