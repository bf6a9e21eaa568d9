// Package config loads ledger core configuration from environment
// variables, with optional YAML file overrides.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all library configuration.
type Config struct {
	Pagination PaginationConfig `yaml:"pagination"`
	Events     EventsConfig     `yaml:"events"`
	Genesis    GenesisConfig    `yaml:"genesis"`
	Logging    LogConfig        `yaml:"logging"`
}

// PaginationConfig bounds paginated provider queries.
type PaginationConfig struct {
	DefaultLimit int `envconfig:"LAGOON_PAGE_DEFAULT_LIMIT" default:"50" yaml:"default_limit"`
	MaxLimit     int `envconfig:"LAGOON_PAGE_MAX_LIMIT" default:"1000" yaml:"max_limit"`
}

// EventsConfig tunes the event bus.
type EventsConfig struct {
	BufferSize       int     `envconfig:"LAGOON_EVENT_BUFFER" default:"128" yaml:"buffer_size"`
	MaxSubscriptions int     `envconfig:"LAGOON_EVENT_MAX_SUBS" default:"1024" yaml:"max_subscriptions"`
	RateLimitPerSec  float64 `envconfig:"LAGOON_EVENT_RATE_LIMIT" default:"0" yaml:"rate_limit_per_sec"` // 0 disables
}

// GenesisConfig seeds the local backend.
type GenesisConfig struct {
	CoinsPerAddress int    `envconfig:"LAGOON_GENESIS_COINS" default:"5" yaml:"coins_per_address"`
	CoinBalance     uint64 `envconfig:"LAGOON_GENESIS_BALANCE" default:"100000" yaml:"coin_balance"`
	GasPrice        uint64 `envconfig:"LAGOON_GAS_PRICE" default:"1" yaml:"gas_price"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LAGOON_LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LAGOON_LOG_DEV" default:"false" yaml:"development"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadFile loads configuration from a YAML file layered over environment
// defaults: the environment is processed first, then file values override.
func LoadFile(path string) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads configuration from environment or returns defaults.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Pagination: PaginationConfig{DefaultLimit: 50, MaxLimit: 1000},
		Events:     EventsConfig{BufferSize: 128, MaxSubscriptions: 1024},
		Genesis:    GenesisConfig{CoinsPerAddress: 5, CoinBalance: 100000, GasPrice: 1},
		Logging:    LogConfig{Level: "info", Development: false},
	}
}
