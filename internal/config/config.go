package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds application configuration. Values come from TASKDECK_*
// environment variables; a .env file loaded by main feeds the same path.
type Config struct {
	ServiceURL     string        `envconfig:"SERVICE_URL" default:"http://localhost:8000"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"15s"`
	TokenPath      string        `envconfig:"TOKEN_PATH"`
	PersistHistory bool          `envconfig:"PERSIST_HISTORY" default:"false"`
	HistoryLimit   int           `envconfig:"HISTORY_LIMIT" default:"20"`
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("taskdeck", &cfg); err != nil {
		return nil, err
	}
	if cfg.TokenPath == "" {
		cfg.TokenPath = defaultTokenPath()
	}
	return &cfg, nil
}

// Init initializes all application dependencies.
func (c *Config) Init() {
	InitLogger()
	SetLogLevel(parseLogLevel(c.LogLevel))

	log.Debug().
		Str("service_url", c.ServiceURL).
		Str("token_path", c.TokenPath).
		Bool("persist_history", c.PersistHistory).
		Str("log_level", c.LogLevel).
		Msg("application configuration loaded")
}

// defaultTokenPath places the session token under the user config dir,
// falling back to the working directory when none is resolvable.
func defaultTokenPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".taskdeck_token"
	}
	return filepath.Join(dir, "taskdeck", "token")
}

// parseLogLevel parses a log level string or returns the default.
func parseLogLevel(level string) zerolog.Level {
	switch level {
	case "debug", "DEBUG":
		return zerolog.DebugLevel
	case "info", "INFO":
		return zerolog.InfoLevel
	case "warn", "WARN":
		return zerolog.WarnLevel
	case "error", "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
