package scgiexec

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
)

// Config holds the supervisor-side tunables. It is read from the process
// environment (and an optional TOML file) before any request data is
// decoded, so request-supplied variables can never reach it.
type Config struct {
	// MaxHeaderLength caps the declared netstring length.
	MaxHeaderLength int `env:"SCGI_EXEC_MAX_HEADER_LENGTH" toml:"max_header_length"`

	// DebugLog is a file to append best-effort debug output to.
	DebugLog string `env:"SCGI_EXEC_DEBUG_LOG" toml:"debug_log"`

	// ScriptDir is a default confinement directory; a confinement
	// directory given as an invocation argument takes precedence.
	ScriptDir string `env:"SCGI_EXEC_SCRIPT_DIR" toml:"script_dir"`
}

// LoadConfig builds the Config from defaults, then the TOML file named by
// SCGI_EXEC_CONFIG_FILE (if set), then the environment, in that order of
// precedence.
func LoadConfig() (Config, error) {
	cfg := Config{
		MaxHeaderLength: DefaultMaxHeaderLength,
	}

	if filename := os.Getenv("SCGI_EXEC_CONFIG_FILE"); filename != "" {
		b, err := os.ReadFile(filename)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file %s: %w", filename, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config from environment: %w", err)
	}

	if cfg.MaxHeaderLength <= 0 {
		cfg.MaxHeaderLength = DefaultMaxHeaderLength
	}

	return cfg, nil
}

// NewDebugLogger opens the best-effort debug side channel. When filename
// is empty or cannot be opened the returned logger discards everything.
func NewDebugLogger(filename string) *slog.Logger {
	var w io.Writer = io.Discard
	if filename != "" {
		if f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644); err == nil {
			w = f
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
