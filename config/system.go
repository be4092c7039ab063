package config

import (
	"io"
	"log/slog"
	"strings"

	"github.com/gogpu/vtex"
)

// Options converts the configuration into vtex system options.
func (c *Config) Options() []vtex.SystemOption {
	return []vtex.SystemOption{
		vtex.WithDebugTiles(c.Debug.Tiles),
		vtex.WithResolving(c.Resolving),
	}
}

// Logger builds a text logger writing to w at the configured level, or nil
// when the level is empty or unknown. Nil keeps vtex's silent default.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewSystem creates a vtex system over dev configured by c. The configured
// logger is installed first so creation-time logs are captured; logOut may
// be nil to leave the current logger untouched.
func NewSystem(dev vtex.Device, c *Config, logOut io.Writer) (*vtex.System, error) {
	if c == nil {
		c = Default()
	}
	if logOut != nil {
		if l := c.Logger(logOut); l != nil {
			vtex.SetLogger(l)
		}
	}
	return vtex.NewSystem(dev, c.Options()...)
}
