package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-capability/framework/binding"
	"github.com/km-arc/go-capability/framework/capability"
	"github.com/km-arc/go-capability/framework/config"
	"github.com/km-arc/go-capability/framework/container"
	"github.com/km-arc/go-capability/framework/metrics"
	"github.com/km-arc/go-capability/framework/providers"
	"github.com/km-arc/go-capability/framework/routing"
)

// Version is reported by /healthz.
const Version = "0.1.0"

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can
// call app.Singleton(), app.Register() directly, and owns the binding host
// that wires capabilities at boot.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
	Host      *binding.Host

	log     *logrus.Entry
	mounted bool
}

// New creates the application and registers the framework providers.
//
//	application, err := app.New()
//	application.RequireCapability(storage.ServerStorageType)
//	application.UseImplementation(inmemory.NewServer)
//	err = application.Boot(ctx)
func New(envFiles ...string) (*Application, error) {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{EnvFiles: envFiles},
		&providers.LoggingServiceProvider{},
		&providers.MetricsServiceProvider{},
		&providers.RoutingServiceProvider{},
	} {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}

	logger, err := container.Resolve[*logrus.Logger](c, "log")
	if err != nil {
		return nil, err
	}
	collectors, err := container.Resolve[*metrics.Collectors](c, "metrics")
	if err != nil {
		return nil, err
	}
	log := logrus.NewEntry(logger)

	host := binding.NewHost(c,
		binding.WithLogger(log.WithField("component", "binding")),
		binding.WithObserver(collectors),
	)
	if err := registry.Register(&providers.CapabilityServiceProvider{Host: host}); err != nil {
		return nil, err
	}

	c.AfterResolving(func(abstract string, _ any) {
		log.WithField("abstract", abstract).Trace("resolved")
	})

	return &Application{
		Container: c,
		Providers: registry,
		Host:      host,
		log:       log,
	}, nil
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// ── Capabilities ─────────────────────────────────────────────────────────────

// RequireCapability declares a capability type on the host.
func (a *Application) RequireCapability(t capability.Type) error {
	return a.Host.RequireCapability(t)
}

// UseImplementation offers an implementation to the host.
func (a *Application) UseImplementation(ctor func() capability.Implementation) error {
	return a.Host.UseImplementation(ctor)
}

// Configure supplies the capability document directly. Without it, Boot
// reads the file named by CAPABILITIES_FILE.
func (a *Application) Configure(doc capability.Document) error {
	return a.Host.Configure(doc)
}

// Boot boots the providers and binds every required capability.
func (a *Application) Boot(ctx context.Context) error {
	if err := a.Providers.Boot(); err != nil {
		return err
	}
	if a.Host.State() == binding.Bound {
		return nil
	}

	if !a.Host.Configured() {
		doc, err := container.Resolve[capability.Document](a.Container, "capabilities.document")
		if err != nil {
			return err
		}
		if err := a.Host.Configure(doc); err != nil {
			return err
		}
	}
	return a.Host.BindAll(ctx)
}

// ── Accessors ────────────────────────────────────────────────────────────────

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.MustResolve[*config.Config](a.Container, "config")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.MustResolve[*routing.Router](a.Container, "router")
}

// Metrics resolves *metrics.Collectors from the container.
func (a *Application) Metrics() *metrics.Collectors {
	return container.MustResolve[*metrics.Collectors](a.Container, "metrics")
}

// Log returns the application logger.
func (a *Application) Log() *logrus.Entry { return a.log }

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }

// ── Serve ────────────────────────────────────────────────────────────────────

// Run boots the application (if needed), mounts the diagnostics routes and
// serves HTTP on APP_PORT until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Boot(ctx); err != nil {
		return err
	}
	a.MountDiagnostics(a.Router())

	cfg := a.Config()
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		a.log.WithFields(logrus.Fields{
			"app":  cfg.App.Name,
			"env":  cfg.App.Env,
			"addr": srv.Addr,
		}).Info("listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	a.log.Info("server stopped")
	return nil
}
