package weekcache

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/helioforecast/go-spaceweather-cache/cache"
)

// DefaultFileName is the database file name used when none is configured.
// The deletion watcher matches on this name, so it must stay stable across
// process restarts.
const DefaultFileName = "spaceweather.db"

// Config configures a Coordinator.
type Config struct {
	// Dir is the directory holding the cache database. It is created on
	// first use if missing.
	Dir string `env:"SPACEWEATHER_CACHE_DIR"`

	// FileName is the database file name inside Dir. Must be a bare name,
	// not a path.
	FileName string `env:"SPACEWEATHER_CACHE_FILE"`

	// Summaries configures the in-memory read-through cache in front of the
	// summary queries.
	Summaries cache.Config `envPrefix:"SPACEWEATHER_CACHE_SUMMARIES_"`

	// Logger receives operational logging. Defaults to slog.Default().
	Logger *slog.Logger `env:"-"`
}

// DefaultConfig returns a Config populated with defaults for everything but
// Dir, which callers must supply (it is platform specific).
func DefaultConfig() Config {
	return Config{
		FileName:  DefaultFileName,
		Summaries: cache.DefaultConfig(),
	}
}

// FromEnv builds a Config from defaults overridden by environment variables.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("weekcache: parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Dir) == "" {
		return fmt.Errorf("weekcache: config: Dir is required")
	}
	if c.FileName == "" {
		return fmt.Errorf("weekcache: config: FileName is required")
	}
	if filepath.Base(c.FileName) != c.FileName {
		return fmt.Errorf("weekcache: config: FileName %q must not contain a path", c.FileName)
	}
	if err := c.Summaries.Validate(); err != nil {
		return fmt.Errorf("weekcache: config: summaries: %w", err)
	}
	return nil
}

// DatabasePath returns the full path of the database file.
func (c Config) DatabasePath() string {
	return filepath.Join(c.Dir, c.FileName)
}

func (c Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
