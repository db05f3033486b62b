package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Config holds runtime settings for the FlashRead CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the sync backend (empty disables sync).
//   - DatabasePath: path of the local SQLite database file.
//   - WPM: default presentation pace in words per minute.
//   - PunctuationPause: extra delay appended after punctuation.
//   - RequestTimeout: per-request timeout for backend calls.
type Config struct {
	ServerEndpointAddr string
	DatabasePath       string
	WPM                int
	PunctuationPause   time.Duration
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with sensible defaults. The database lands in the
// XDG data directory so it survives across shells and reinstalls.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = ""
	c.DatabasePath = filepath.Join(xdg.DataHome, "flashread", "flashread.db")
	c.WPM = 300
	c.PunctuationPause = 200 * time.Millisecond
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
