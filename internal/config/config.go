package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"tableside/internal/models"
)

// Config is the full application configuration. Every operational knob the
// core services depend on lives here so nothing is hardcoded in a service.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Dining   DiningConfig   `yaml:"dining"`
	Auth     AuthConfig     `yaml:"auth"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port        int `yaml:"port"`
	MetricsPort int `yaml:"metrics_port"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// DiningConfig holds the restaurant's operating parameters.
type DiningConfig struct {
	TableCount             int     `yaml:"table_count"`
	StarterBuffetPrice     float64 `yaml:"starter_buffet_price"`
	PremiumBuffetPrice     float64 `yaml:"premium_buffet_price"`
	SessionMinutes         int     `yaml:"session_minutes"`
	ReservationHoldMinutes int     `yaml:"reservation_hold_minutes"`
	VATRate                float64 `yaml:"vat_rate"`
	MaxGuestsPerTable      int     `yaml:"max_guests_per_table"`
	MaxReservationParty    int     `yaml:"max_reservation_party"`
	SweepIntervalSeconds   int     `yaml:"sweep_interval_seconds"`
}

// AuthConfig holds credential issuance settings.
type AuthConfig struct {
	TokenSecret string `yaml:"token_secret"`
}

// Default returns the configuration used when no file overrides are given.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			MetricsPort: 9090,
		},
		Database: DatabaseConfig{
			Path: "tableside.db",
		},
		Dining: DiningConfig{
			TableCount:             10,
			StarterBuffetPrice:     259,
			PremiumBuffetPrice:     299,
			SessionMinutes:         90,
			ReservationHoldMinutes: 15,
			VATRate:                0.07,
			MaxGuestsPerTable:      4,
			MaxReservationParty:    10,
			SweepIntervalSeconds:   30,
		},
		Auth: AuthConfig{
			TokenSecret: "change-me",
		},
	}
}

// Load reads a YAML configuration file on top of the defaults. A missing
// file is not an error; the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Dining.TableCount < 1 {
		return fmt.Errorf("dining.table_count must be at least 1, got %d", c.Dining.TableCount)
	}
	if c.Dining.StarterBuffetPrice <= 0 || c.Dining.PremiumBuffetPrice <= 0 {
		return fmt.Errorf("buffet prices must be positive")
	}
	if c.Dining.VATRate < 0 || c.Dining.VATRate >= 1 {
		return fmt.Errorf("dining.vat_rate must be in [0, 1), got %v", c.Dining.VATRate)
	}
	if c.Dining.MaxGuestsPerTable < 1 {
		return fmt.Errorf("dining.max_guests_per_table must be at least 1")
	}
	if c.Dining.MaxReservationParty < 1 {
		return fmt.Errorf("dining.max_reservation_party must be at least 1")
	}
	return nil
}

// SessionDuration returns the dining session length.
func (c *Config) SessionDuration() time.Duration {
	return time.Duration(c.Dining.SessionMinutes) * time.Minute
}

// ReservationHold returns how long a reservation holds a table.
func (c *Config) ReservationHold() time.Duration {
	return time.Duration(c.Dining.ReservationHoldMinutes) * time.Minute
}

// SweepInterval returns the background sweep cadence.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.Dining.SweepIntervalSeconds) * time.Second
}

// TierPrices returns the per-person price table keyed by buffet tier.
func (c *Config) TierPrices() map[models.BuffetTier]float64 {
	return map[models.BuffetTier]float64{
		models.BuffetTierStarter: c.Dining.StarterBuffetPrice,
		models.BuffetTierPremium: c.Dining.PremiumBuffetPrice,
	}
}
