package binding

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-capability/framework/capability"
	"github.com/km-arc/go-capability/framework/container"
)

var (
	// ErrAlreadyBound is returned by every mutating call after BindAll.
	ErrAlreadyBound = errors.New("binding: host is already bound")
	// ErrAlreadyConfigured is returned by a second Configure.
	ErrAlreadyConfigured = errors.New("binding: configuration already supplied")
)

// Observer is told about every implementation the host registers.
type Observer interface {
	ObserveBinding(t capability.Type, strategy capability.BindingStrategy, implementation string)
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the logger used for binding progress. Defaults to the
// logrus standard logger.
func WithLogger(log *logrus.Entry) Option {
	return func(h *Host) { h.log = log }
}

// WithObserver reports every registration to o.
func WithObserver(o Observer) Option {
	return func(h *Host) { h.observer = o }
}

// Record describes what BindAll wired for one capability type.
type Record struct {
	Type           capability.Type            `json:"capability"`
	Strategy       capability.BindingStrategy `json:"strategy"`
	Implementation string                     `json:"implementation,omitempty"`
	Instances      []string                   `json:"instances,omitempty"`
	Members        []string                   `json:"members,omitempty"`
}

// Host declares the capabilities an application needs, collects the
// implementations available for them and, given a configuration document,
// binds the selected ones into its container.
//
//	host := binding.NewHost(c)
//	host.RequireCapability(storage.ServerStorageType)
//	host.UseImplementation(inmemory.NewServer)
//	host.Configure(doc)
//	err := host.BindAll(ctx)
//
// A Host is not safe for concurrent use.
type Host struct {
	c        container.Scope
	log      *logrus.Entry
	observer Observer

	factories map[capability.Type]*capability.Factory
	order     []capability.Type

	doc        capability.Document
	configured bool

	state   State
	records []Record
}

// NewHost creates a host that binds into c.
func NewHost(c container.Scope, opts ...Option) *Host {
	h := &Host{
		c:         c,
		factories: make(map[capability.Type]*capability.Factory),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = logrus.NewEntry(logrus.StandardLogger())
	}
	return h
}

// Container returns the scope the host binds into.
func (h *Host) Container() container.Scope { return h.c }

// State returns the lifecycle state.
func (h *Host) State() State { return h.state }

// ── Declaration ──────────────────────────────────────────────────────────────

// RequireCapability declares t and creates its factory. Requiring the same
// type twice fails rather than dropping or merging implementations.
func (h *Host) RequireCapability(t capability.Type) error {
	if h.state == Bound {
		return ErrAlreadyBound
	}
	if t == "" {
		return errors.New("binding: capability type must not be empty")
	}
	if _, exists := h.factories[t]; exists {
		return &capability.DuplicateCapabilityError{Type: t}
	}

	h.factories[t] = capability.NewFactory(t, h.log)
	h.order = append(h.order, t)
	if h.state == Uninitialized {
		h.state = Declared
	}
	return nil
}

// UseImplementation constructs an implementation and adds it to the factory
// of its declared type. Nothing is registered when that type was never
// required.
func (h *Host) UseImplementation(ctor func() capability.Implementation) error {
	if h.state == Bound {
		return ErrAlreadyBound
	}
	impl := ctor()
	if impl == nil {
		return errors.New("binding: implementation constructor returned nil")
	}

	f, ok := h.factories[impl.Type()]
	if !ok {
		return &capability.UnregisteredFactoryError{Type: impl.Type(), Implementation: impl.Name()}
	}
	f.Add(impl)
	h.state = Populated
	return nil
}

// Configure supplies the configuration document. It can be called once and
// every type it mentions must have been required.
func (h *Host) Configure(doc capability.Document) error {
	if h.state == Bound {
		return ErrAlreadyBound
	}
	if h.configured {
		return ErrAlreadyConfigured
	}

	types := make([]capability.Type, 0, len(doc))
	for t := range doc {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	for _, t := range types {
		if _, ok := h.factories[t]; !ok {
			return &capability.UnknownCapabilityError{Type: t, Known: h.Types()}
		}
	}

	h.doc = doc
	h.configured = true
	return nil
}

// Configured reports whether Configure has succeeded.
func (h *Host) Configured() bool { return h.configured }

// Types returns the required capability types in declaration order.
func (h *Host) Types() []capability.Type {
	out := make([]capability.Type, len(h.order))
	copy(out, h.order)
	return out
}

// Factory returns the factory of t.
func (h *Host) Factory(t capability.Type) (*capability.Factory, bool) {
	f, ok := h.factories[t]
	return f, ok
}

// Bindings reports what BindAll registered, in declaration order.
func (h *Host) Bindings() []Record {
	out := make([]Record, len(h.records))
	copy(out, h.records)
	return out
}

// ── Binding ──────────────────────────────────────────────────────────────────

// BindAll registers the configured implementations of every required type,
// in declaration order. It runs once: the host is Bound afterwards even if
// binding failed part way, and the container should then be discarded.
func (h *Host) BindAll(ctx context.Context) error {
	if h.state == Bound {
		return ErrAlreadyBound
	}
	h.state = Bound

	for _, t := range h.order {
		log := h.log.WithField("capability", string(t))

		b, ok := h.doc[t]
		if !ok {
			return &capability.BindError{Type: t, Err: &capability.MissingConfigurationError{Type: t}}
		}

		var (
			rec Record
			err error
		)
		f := h.factories[t]
		switch b.Strategy {
		case capability.Dependency:
			rec, err = h.bindSingle(ctx, f, b.Instance)
		case capability.NamedDependency:
			rec, err = h.bindNamed(ctx, f, b.Instances)
		case capability.StrategyDependency:
			rec, err = h.bindStrategy(ctx, f, b.Instance, b.Instances)
		default:
			err = fmt.Errorf("unknown binding strategy %q", b.Strategy)
		}
		if err != nil {
			return &capability.BindError{Type: t, Err: err}
		}

		h.records = append(h.records, rec)
		log.WithFields(logrus.Fields{
			"strategy":       rec.Strategy,
			"implementation": rec.Implementation,
			"instances":      rec.Instances,
		}).Info("capability bound")
	}
	return nil
}

func (h *Host) bindSingle(ctx context.Context, f *capability.Factory, cfg *capability.Config) (Record, error) {
	t := f.Type()
	if cfg == nil {
		return Record{}, &capability.MissingFieldError{Type: t, Field: capability.FieldDependencyName, Index: -1}
	}
	if err := checkEntry(t, *cfg, -1, false); err != nil {
		return Record{}, err
	}

	impl, err := f.Get(cfg.DependencyName)
	if err != nil {
		return Record{}, err
	}
	if err := impl.Register(ctx, h.c, *cfg); err != nil {
		return Record{}, fmt.Errorf("registering %q: %w", impl.Name(), err)
	}
	h.observe(t, capability.Dependency, impl.Name())

	return Record{Type: t, Strategy: capability.Dependency, Implementation: impl.Name()}, nil
}

func (h *Host) bindNamed(ctx context.Context, f *capability.Factory, cfgs []capability.Config) (Record, error) {
	t := f.Type()
	if err := checkInstances(t, cfgs); err != nil {
		return Record{}, err
	}

	// Resolve every implementation before registering any, so an
	// unsupported entry leaves nothing of the list behind.
	impls := make([]capability.NamedImplementation, len(cfgs))
	for i, cfg := range cfgs {
		impl, err := f.GetNamedCapable(cfg.DependencyName)
		if err != nil {
			return Record{}, err
		}
		impls[i] = impl
	}

	instances, err := h.activate(ctx, t, capability.NamedDependency, impls, cfgs)
	if err != nil {
		return Record{}, err
	}
	return Record{Type: t, Strategy: capability.NamedDependency, Instances: instances}, nil
}

func (h *Host) bindStrategy(ctx context.Context, f *capability.Factory, descriptor *capability.Config, members []capability.Config) (Record, error) {
	t := f.Type()
	if descriptor == nil || descriptor.DependencyName == "" {
		return Record{}, &capability.MissingFieldError{Type: t, Field: capability.FieldDependencyName, Index: -1}
	}
	if err := checkEntry(t, *descriptor, -1, false); err != nil {
		return Record{}, err
	}
	if err := checkInstances(t, members); err != nil {
		return Record{}, err
	}

	aggregate, err := f.GetStrategyCapable(descriptor.DependencyName)
	if err != nil {
		return Record{}, err
	}

	// Pool members are keyed by implementation name.
	seen := make(map[string]bool, len(members))
	impls := make([]capability.NamedImplementation, len(members))
	names := make([]string, len(members))
	for i, cfg := range members {
		if seen[cfg.DependencyName] {
			return Record{}, &capability.DuplicatePoolMemberError{Type: t, Implementation: cfg.DependencyName}
		}
		seen[cfg.DependencyName] = true

		impl, err := f.GetStrategyCapable(cfg.DependencyName)
		if err != nil {
			return Record{}, err
		}
		impls[i] = impl
		names[i] = impl.Name()
	}

	// Members first: the aggregate collects whatever was contributed.
	instances, err := h.activate(ctx, t, capability.StrategyDependency, impls, members)
	if err != nil {
		return Record{}, err
	}
	if len(members) == 0 {
		h.log.WithField("capability", string(t)).Warn("strategy pool has no members; every dispatch will fail")
	}

	if err := aggregate.RegisterStrategy(ctx, h.c, *descriptor); err != nil {
		return Record{}, fmt.Errorf("registering strategy %q: %w", aggregate.Name(), err)
	}

	return Record{
		Type:           t,
		Strategy:       capability.StrategyDependency,
		Implementation: aggregate.Name(),
		Instances:      instances,
		Members:        names,
	}, nil
}

// activate registers already resolved named implementations in list order.
func (h *Host) activate(ctx context.Context, t capability.Type, strategy capability.BindingStrategy,
	impls []capability.NamedImplementation, cfgs []capability.Config) ([]string, error) {
	instances := make([]string, 0, len(cfgs))
	for i, impl := range impls {
		cfg := cfgs[i]
		if err := impl.RegisterInstance(ctx, h.c, cfg); err != nil {
			return nil, fmt.Errorf("registering %q instance %q: %w", impl.Name(), cfg.InstanceName, err)
		}
		h.observe(t, strategy, impl.Name())
		h.log.WithFields(logrus.Fields{
			"capability":     string(t),
			"implementation": impl.Name(),
			"instance":       cfg.InstanceName,
		}).Debug("instance registered")
		instances = append(instances, cfg.InstanceName)
	}
	return instances, nil
}

func (h *Host) observe(t capability.Type, strategy capability.BindingStrategy, implementation string) {
	if h.observer != nil {
		h.observer.ObserveBinding(t, strategy, implementation)
	}
}
