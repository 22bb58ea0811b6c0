// Package container provides the IoC (Inversion of Control) container and
// Service Provider system the capability registry is wired through.
//
// # Overview
//
// The container manages the instantiation and lifetime of an application's
// dependencies. It supports transient bindings, singletons, named
// singletons, pre-built instances, aliases and hierarchical scopes.
//
// Because Go has no runtime constructor reflection, auto-wiring is replaced
// by explicit factory functions. Every factory returns an error; resolution
// never panics (MustResolve aside).
//
// The Scope interface is the whole surface the capability registry needs.
// *Container implements it.
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(&MyProvider{})
//  3. Boot: registry.Boot()        (safe to resolve everything after this)
//  4. Serve requests
//
// # Bindings
//
//	// Transient: new instance every Make()
//	c.Bind("request-id", func(c container.Scope) (any, error) { return uuid.NewString(), nil })
//
//	// Singleton: created once, reused
//	c.Singleton("log", func(c container.Scope) (any, error) {
//	    cfg, err := container.Resolve[*config.Config](c, "config")
//	    if err != nil {
//	        return nil, err
//	    }
//	    return logging.New(cfg.Log), nil
//	})
//
//	// Named singleton, only visible through MakeNamed
//	c.SingletonNamed("ServerStorage", "primary", factory)
//
//	// Pre-built value
//	c.Instance("config", cfg)
//
// # Resolving
//
//	raw, err := c.Make("log")
//	primary, err := c.MakeNamed("ServerStorage", "primary")
//	every, err := c.All("ServerStorage") // plain + named, registration order
//	log, err := container.Resolve[*logrus.Logger](c, "log")
//
// A missing binding yields *NotBoundError; a failing factory yields
// *ResolveError wrapping the factory's error.
//
// # Scopes
//
//	child := c.Child()
//	child.Instance("settings", s) // invisible to c and to other children
//	child.Make("log")             // falls back to c
//
// Factories run in the scope that registered them, so a singleton bound in
// the parent is shared by every child, while each child's own bindings stay
// private.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) error {
//	    app.Singleton("mailer", newMailer)
//	    return nil
//	}
//
//	registry := container.NewProviderRegistry(c)
//	if err := registry.Register(&AppServiceProvider{}); err != nil { ... }
//	if err := registry.Boot(); err != nil { ... }
//
// # Deferred Providers
//
//	type HeavyProvider struct{ container.BaseProvider }
//
//	func (p *HeavyProvider) IsDeferred() bool   { return true }
//	func (p *HeavyProvider) Provides() []string { return []string{"heavy"} }
package container
