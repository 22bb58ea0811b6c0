package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
)

// Config is the central typed configuration struct. Every field is read
// from the environment variable named by its mapstructure tag.
type Config struct {
	App          AppConfig          `mapstructure:",squash"`
	Log          LogConfig          `mapstructure:",squash"`
	Capabilities CapabilitiesConfig `mapstructure:",squash"`
}

type AppConfig struct {
	Name            string        `mapstructure:"APP_NAME"`
	Env             string        `mapstructure:"APP_ENV"` // local | production | testing
	Debug           bool          `mapstructure:"APP_DEBUG"`
	Port            string        `mapstructure:"APP_PORT"`
	ShutdownTimeout time.Duration `mapstructure:"APP_SHUTDOWN_TIMEOUT"`
}

type LogConfig struct {
	Level  string `mapstructure:"LOG_LEVEL"`  // trace | debug | info | warn | error
	Format string `mapstructure:"LOG_FORMAT"` // text | json
}

type CapabilitiesConfig struct {
	// File is the capability configuration document.
	File string `mapstructure:"CAPABILITIES_FILE"`
}

// Defaults applied when a variable is unset or empty.
var Defaults = map[string]string{
	"APP_NAME":             "capbind",
	"APP_ENV":              "local",
	"APP_DEBUG":            "false",
	"APP_PORT":             "8000",
	"APP_SHUTDOWN_TIMEOUT": "10s",
	"LOG_LEVEL":            "info",
	"LOG_FORMAT":           "text",
	"CAPABILITIES_FILE":    "capabilities.yaml",
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg, err := config.Load()
func Load(envFiles ...string) (*Config, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	values := make(map[string]any, len(Defaults))
	for key, fallback := range Defaults {
		values[key] = env(key, fallback)
	}

	cfg := &Config{}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(values); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
