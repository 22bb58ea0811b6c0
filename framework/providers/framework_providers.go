package providers

import (
	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-capability/framework/binding"
	"github.com/km-arc/go-capability/framework/capability"
	"github.com/km-arc/go-capability/framework/config"
	"github.com/km-arc/go-capability/framework/container"
	"github.com/km-arc/go-capability/framework/logging"
	"github.com/km-arc/go-capability/framework/metrics"
	"github.com/km-arc/go-capability/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// binds it into the container as "config".
//
// Bound abstracts:
//   - "config"         → *config.Config
//   - "configuration"  → alias of "config"
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	envFiles := p.EnvFiles
	app.Singleton("config", func(container.Scope) (any, error) {
		cfg, err := config.Load(envFiles...)
		if err != nil {
			return nil, err
		}
		return cfg, nil
	})
	app.Alias("config", "configuration")
	return nil
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider builds the logger from "config". It is deferred:
// nothing is constructed until "log" is first resolved.
//
// Bound abstracts:
//   - "log"  → *logrus.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
}

func (p *LoggingServiceProvider) Register(app *container.Container) error {
	app.Singleton("log", func(c container.Scope) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, "config")
		if err != nil {
			return nil, err
		}
		return logging.New(cfg.Log), nil
	})
	return nil
}

func (p *LoggingServiceProvider) Provides() []string { return []string{"log"} }
func (p *LoggingServiceProvider) IsDeferred() bool   { return true }

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider registers the Prometheus collectors. They double as
// the strategy dispatch observer.
//
// Bound abstracts:
//   - "metrics"                → *metrics.Collectors
//   - capability.ObserverKey   → alias of "metrics"
type MetricsServiceProvider struct {
	container.BaseProvider
}

func (p *MetricsServiceProvider) Register(app *container.Container) error {
	app.Singleton("metrics", func(container.Scope) (any, error) {
		return metrics.New(), nil
	})
	app.Alias("metrics", capability.ObserverKey)
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router.
//
// Bound abstracts:
//   - "router"  → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	app.Singleton("router", func(c container.Scope) (any, error) {
		log, err := container.Resolve[*logrus.Logger](c, "log")
		if err != nil {
			return nil, err
		}
		return routing.New(logrus.NewEntry(log).WithField("component", "http")), nil
	})
	return nil
}

// ── CapabilityServiceProvider ─────────────────────────────────────────────────

// CapabilityServiceProvider exposes the binding host and the configuration
// document. The document is read from Capabilities.File on first use.
//
// Bound abstracts:
//   - "capabilities"           → *binding.Host
//   - "capabilities.document"  → capability.Document
type CapabilityServiceProvider struct {
	container.BaseProvider
	Host *binding.Host
}

func (p *CapabilityServiceProvider) Register(app *container.Container) error {
	app.Instance("capabilities", p.Host)
	app.Singleton("capabilities.document", func(c container.Scope) (any, error) {
		cfg, err := container.Resolve[*config.Config](c, "config")
		if err != nil {
			return nil, err
		}
		return config.LoadDocument(cfg.Capabilities.File)
	})
	return nil
}
