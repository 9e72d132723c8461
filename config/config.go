// Package config loads auctiond configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries everything auctiond needs to open one auction and serve it.
type Config struct {
	// ListenAddr is the TCP address the request socket binds to.
	ListenAddr string `env:"AUCTIOND_LISTEN_ADDR" envDefault:":7070"`

	// MaxWorkers bounds concurrent connection handlers.
	MaxWorkers int `env:"AUCTIOND_MAX_WORKERS" envDefault:"16"`

	// JournalPath is the SQLite file holding the notification log.
	JournalPath string `env:"AUCTIOND_JOURNAL_PATH,required"`

	// Seller is the identity that owns the lot and receives the payout.
	Seller string `env:"AUCTIOND_SELLER,required"`

	// LotRegistry names the registry the lot is minted under.
	LotRegistry string `env:"AUCTIOND_LOT_REGISTRY" envDefault:"openlot"`

	// BidWindow is how long bidding stays open, measured from startup.
	BidWindow time.Duration `env:"AUCTIOND_BID_WINDOW,required"`
}

// Load parses the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.MaxWorkers <= 0 {
		return Config{}, fmt.Errorf("AUCTIOND_MAX_WORKERS must be positive, got %d", cfg.MaxWorkers)
	}
	if cfg.BidWindow <= 0 {
		return Config{}, fmt.Errorf("AUCTIOND_BID_WINDOW must be positive, got %s", cfg.BidWindow)
	}
	return cfg, nil
}
