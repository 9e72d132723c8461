package config

import (
	"os"
	"testing"
	"time"

	"github.com/peterldowns/testy/check"
)

func setRequired(t *testing.T) {
	t.Setenv("AUCTIOND_JOURNAL_PATH", "/tmp/events.db")
	t.Setenv("AUCTIOND_SELLER", "seller-1")
	t.Setenv("AUCTIOND_BID_WINDOW", "24h")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	check.Nil(t, err)
	check.Equal(t, ":7070", cfg.ListenAddr)
	check.Equal(t, 16, cfg.MaxWorkers)
	check.Equal(t, "openlot", cfg.LotRegistry)
	check.Equal(t, 24*time.Hour, cfg.BidWindow)
	check.Equal(t, "seller-1", cfg.Seller)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("AUCTIOND_SELLER", "seller-1")
	t.Setenv("AUCTIOND_BID_WINDOW", "24h")
	// t.Setenv registers the restore; the variable itself must be absent.
	t.Setenv("AUCTIOND_JOURNAL_PATH", "")
	os.Unsetenv("AUCTIOND_JOURNAL_PATH")

	_, err := Load()
	check.NotNil(t, err)
}

func TestLoad_RejectsNonPositiveWindow(t *testing.T) {
	setRequired(t)
	t.Setenv("AUCTIOND_BID_WINDOW", "-1h")

	_, err := Load()
	check.NotNil(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("AUCTIOND_LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("AUCTIOND_MAX_WORKERS", "4")

	cfg, err := Load()
	check.Nil(t, err)
	check.Equal(t, "127.0.0.1:9000", cfg.ListenAddr)
	check.Equal(t, 4, cfg.MaxWorkers)
}
