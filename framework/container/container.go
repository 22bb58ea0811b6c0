package container

import (
	"fmt"
	"sort"
	"sync"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory builds a concrete value. It always receives the scope it was
// registered in, so a parent binding never sees a child's bindings.
type Factory func(c Scope) (any, error)

// Scope is the narrow port the capability registry programs against.
// *Container is the implementation shipped with this module; any engine
// that offers these operations can stand in for it.
type Scope interface {
	// Bind registers a transient factory (new value on every Make).
	Bind(abstract string, factory Factory)
	// Singleton registers a factory whose result is cached after first use.
	Singleton(abstract string, factory Factory)
	// SingletonNamed is Singleton for a binding only visible through
	// MakeNamed with the same name.
	SingletonNamed(abstract, name string, factory Factory)
	// Instance binds an already constructed value.
	Instance(abstract string, instance any)
	// Forget removes every binding (plain and named) for abstract in this scope.
	Forget(abstract string)

	Make(abstract string) (any, error)
	MakeNamed(abstract, name string) (any, error)
	// All resolves every value bound to abstract across names, in
	// registration order. No bindings yields an empty slice, not an error.
	All(abstract string) ([]any, error)

	// Child returns a scope that resolves through to this one but whose
	// own registrations stay invisible outside it.
	Child() Scope
}

// binding holds a registered factory and, for singletons and instances,
// the resolved value.
type binding struct {
	factory   Factory
	singleton bool
	resolved  bool
	instance  any
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the IoC container.
//
// It supports:
//   - Bind / Singleton / SingletonNamed / Instance / Alias
//   - Make / MakeNamed / All / Resolve (generic)
//   - Child scopes with parent fallback
//   - Resolved event callbacks
//
// Re-registering a key (or key + name) overwrites the previous binding in
// place: any cached singleton is dropped and the original position in All
// is kept.
type Container struct {
	mu sync.RWMutex

	parent *Container

	// abstract → name → binding ("" is the plain binding)
	bindings map[string]map[string]*binding

	// abstract → names in registration order
	order map[string][]string

	// alias → abstract (canonical key)
	aliases map[string]string

	// resolved callbacks: []func(abstract, instance)
	afterResolving []func(string, any)
}

// New creates an empty root container.
func New() *Container {
	return newScope(nil)
}

func newScope(parent *Container) *Container {
	c := &Container{
		parent:   parent,
		bindings: make(map[string]map[string]*binding),
		order:    make(map[string][]string),
		aliases:  make(map[string]string),
	}
	// Bind the container to itself so factories can ask for their own scope.
	c.Instance("container", c)
	return c
}

// Child creates a scope whose lookups fall back to c.
func (c *Container) Child() Scope {
	return newScope(c)
}

// Parent returns the enclosing scope, or nil for a root container.
func (c *Container) Parent() *Container { return c.parent }

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient factory.
//
//	c.Bind("request-id", func(c container.Scope) (any, error) {
//	    return uuid.NewString(), nil
//	})
func (c *Container) Bind(abstract string, factory Factory) {
	c.register(abstract, "", &binding{factory: factory})
}

// Singleton registers a factory whose result is cached after first resolution.
//
//	c.Singleton("log", func(c container.Scope) (any, error) {
//	    return logging.New(cfg.Log), nil
//	})
func (c *Container) Singleton(abstract string, factory Factory) {
	c.register(abstract, "", &binding{factory: factory, singleton: true})
}

// SingletonNamed registers a cached factory under abstract + name.
//
//	c.SingletonNamed("ServerStorage", "primary", factory)
//	primary, err := c.MakeNamed("ServerStorage", "primary")
func (c *Container) SingletonNamed(abstract, name string, factory Factory) {
	c.register(abstract, name, &binding{factory: factory, singleton: true})
}

// Instance registers a pre-built value.
//
//	c.Instance("config", cfg)
func (c *Container) Instance(abstract string, instance any) {
	c.register(abstract, "", &binding{singleton: true, resolved: true, instance: instance})
}

func (c *Container) register(abstract, name string, b *binding) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := c.canonicalLocked(abstract)
	named, ok := c.bindings[key]
	if !ok {
		named = make(map[string]*binding)
		c.bindings[key] = named
	}
	if _, exists := named[name]; !exists {
		c.order[key] = append(c.order[key], name)
	}
	named[name] = b
}

// Alias registers an alternative name for an abstract.
//
//	c.Alias("config", "configuration")
func (c *Container) Alias(abstract, alias string) {
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aliases[alias] = c.canonicalLocked(abstract)
}

// Forget removes all registrations for an abstract in this scope. Bindings
// inherited from a parent stay visible.
func (c *Container) Forget(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonicalLocked(abstract)
	delete(c.bindings, key)
	delete(c.order, key)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves the plain binding of an abstract.
func (c *Container) Make(abstract string) (any, error) {
	return c.make(abstract, "")
}

// MakeNamed resolves the binding registered under abstract + name.
func (c *Container) MakeNamed(abstract, name string) (any, error) {
	return c.make(abstract, name)
}

func (c *Container) make(abstract, name string) (any, error) {
	key := c.canonical(abstract)
	owner, b := c.lookup(key, name)
	if b == nil {
		return nil, &NotBoundError{Key: abstract, Name: name}
	}
	return owner.resolve(key, name, b)
}

// All resolves every binding of abstract visible from this scope. Ancestor
// bindings come first; a nearer scope overrides an equal name in place.
func (c *Container) All(abstract string) ([]any, error) {
	key := c.canonical(abstract)

	var chain []*Container
	for s := c; s != nil; s = s.parent {
		chain = append([]*Container{s}, chain...)
	}

	type entry struct {
		owner *Container
		name  string
		b     *binding
	}
	var entries []entry
	index := make(map[string]int)
	for _, s := range chain {
		s.mu.RLock()
		for _, name := range s.order[key] {
			e := entry{owner: s, name: name, b: s.bindings[key][name]}
			if i, ok := index[name]; ok {
				entries[i] = e
				continue
			}
			index[name] = len(entries)
			entries = append(entries, e)
		}
		s.mu.RUnlock()
	}

	out := make([]any, 0, len(entries))
	for _, e := range entries {
		v, err := e.owner.resolve(key, e.name, e.b)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// lookup walks the scope chain for key + name.
func (c *Container) lookup(key, name string) (*Container, *binding) {
	for s := c; s != nil; s = s.parent {
		s.mu.RLock()
		b := s.bindings[key][name]
		s.mu.RUnlock()
		if b != nil {
			return s, b
		}
	}
	return nil, nil
}

// resolve runs the factory outside the lock. For singletons the first
// stored value wins.
func (c *Container) resolve(key, name string, b *binding) (any, error) {
	c.mu.RLock()
	if b.resolved {
		inst := b.instance
		c.mu.RUnlock()
		return inst, nil
	}
	c.mu.RUnlock()

	instance, err := b.factory(c)
	if err != nil {
		return nil, &ResolveError{Key: key, Name: name, Err: err}
	}

	if b.singleton {
		c.mu.Lock()
		if b.resolved {
			instance = b.instance
		} else {
			b.instance = instance
			b.resolved = true
		}
		c.mu.Unlock()
	}

	c.fireAfterResolving(key, instance)
	return instance, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if an abstract has a plain binding visible from this scope.
func (c *Container) Bound(abstract string) bool {
	_, b := c.lookup(c.canonical(abstract), "")
	return b != nil
}

// Bindings returns the sorted keys registered in this scope (for debugging).
// Named bindings are reported as "abstract#name".
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bindings))
	for key, names := range c.order {
		for _, name := range names {
			if name == "" {
				out = append(out, key)
				continue
			}
			out = append(out, key+"#"+name)
		}
	}
	sort.Strings(out)
	return out
}

// canonical resolves an alias through the scope chain.
func (c *Container) canonical(abstract string) string {
	for s := c; s != nil; s = s.parent {
		s.mu.RLock()
		target, ok := s.aliases[abstract]
		s.mu.RUnlock()
		if ok {
			return target
		}
	}
	return abstract
}

// canonicalLocked is canonical for callers already holding c.mu.
func (c *Container) canonicalLocked(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	if c.parent != nil {
		return c.parent.canonical(abstract)
	}
	return abstract
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired after a factory produced a value
// in this scope.
func (c *Container) AfterResolving(cb func(abstract string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireAfterResolving(abstract string, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(abstract, instance)
	}
}

// ── Generics helpers ──────────────────────────────────────────────────────────

// Resolve calls Make and type-asserts the result.
//
//	cfg, err := container.Resolve[*config.Config](c, "config")
func Resolve[T any](c Scope, abstract string) (T, error) {
	instance, err := c.Make(abstract)
	if err != nil {
		var zero T
		return zero, err
	}
	return assert[T](abstract, instance)
}

// ResolveNamed calls MakeNamed and type-asserts the result.
func ResolveNamed[T any](c Scope, abstract, name string) (T, error) {
	instance, err := c.MakeNamed(abstract, name)
	if err != nil {
		var zero T
		return zero, err
	}
	return assert[T](abstract, instance)
}

// MustResolve is like Resolve but panics on failure. Meant for bootstrap
// code where a missing binding is a programming error.
func MustResolve[T any](c Scope, abstract string) T {
	v, err := Resolve[T](c, abstract)
	if err != nil {
		panic(err)
	}
	return v
}

func assert[T any](abstract string, instance any) (T, error) {
	typed, ok := instance.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("container: Resolve[%T]: [%s] resolved to %T", zero, abstract, instance)
	}
	return typed, nil
}
