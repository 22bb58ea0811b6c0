package capability

import (
	"context"
	"fmt"

	"github.com/km-arc/go-capability/framework/container"
)

// ObserverKey is the container key under which an optional DispatchObserver
// is looked up when a strategy aggregate is built.
const ObserverKey = "capability.observer"

// DispatchObserver is told about every routing decision of a Pool.
type DispatchObserver interface {
	ObserveDispatch(t Type, discriminator string, matched bool)
}

// PoolKey is the container key pool members of t are registered under.
func PoolKey(t Type) string {
	return string(t) + ".pool"
}

// PoolMember is the value bound under PoolKey: one instance and the tag
// calls are routed to it by.
type PoolMember struct {
	Tag      string
	Instance any
}

// ── Pool ──────────────────────────────────────────────────────────────────────

// Pool maps discriminators to capability instances. It is built once when
// the aggregate is first resolved and never changes afterwards.
type Pool[T any] struct {
	typ      Type
	members  map[string]T
	tags     []string
	observer DispatchObserver
}

// NewPool builds a pool for t. Every member instance must implement T.
// A later member with an already used tag replaces the earlier one.
func NewPool[T any](t Type, members []PoolMember) (*Pool[T], error) {
	p := &Pool[T]{typ: t, members: make(map[string]T, len(members))}
	for _, m := range members {
		inst, ok := m.Instance.(T)
		if !ok {
			var zero T
			return nil, fmt.Errorf("capability: %q pool member %q is %T, not %T", t, m.Tag, m.Instance, zero)
		}
		if _, exists := p.members[m.Tag]; !exists {
			p.tags = append(p.tags, m.Tag)
		}
		p.members[m.Tag] = inst
	}
	return p, nil
}

// Route returns the member registered under discriminator.
func (p *Pool[T]) Route(discriminator string) (T, error) {
	inst, ok := p.members[discriminator]
	if p.observer != nil {
		p.observer.ObserveDispatch(p.typ, discriminator, ok)
	}
	if !ok {
		var zero T
		return zero, &UnknownPoolMemberError{Type: p.typ, Discriminator: discriminator, Known: p.Tags()}
	}
	return inst, nil
}

// Tags returns the member tags in registration order.
func (p *Pool[T]) Tags() []string {
	out := make([]string, len(p.tags))
	copy(out, p.tags)
	return out
}

// Len returns the number of members.
func (p *Pool[T]) Len() int { return len(p.members) }

// Type returns the capability type the pool serves.
func (p *Pool[T]) Type() Type { return p.typ }

// ── Strategy ──────────────────────────────────────────────────────────────────

// Strategy layers pool contribution and aggregate construction on top of an
// implementation. Registering it as a named instance also publishes the
// instance into the pool of its type, tagged with the implementation name;
// RegisterStrategy binds the aggregate built by the supplied constructor.
//
//	host.UseImplementation(func() capability.Implementation {
//	    return capability.NewStrategy(inmemory.NewClient(), storage.NewClientAggregate)
//	})
type Strategy[T any] struct {
	Implementation
	aggregate func(*Pool[T]) T
}

var _ StrategyImplementation = (*Strategy[any])(nil)

// NewStrategy wraps impl; aggregate turns the pool into the capability's
// routing facade.
func NewStrategy[T any](impl Implementation, aggregate func(*Pool[T]) T) *Strategy[T] {
	return &Strategy[T]{Implementation: impl, aggregate: aggregate}
}

// RegisterInstance activates a named instance in its own child scope, then
// contributes it to the pool.
func (s *Strategy[T]) RegisterInstance(ctx context.Context, c container.Scope, cfg Config) error {
	child, err := RegisterInstance(ctx, c, s.Implementation, cfg)
	if err != nil {
		return err
	}
	return s.ContributeInstance(ctx, c, child, cfg)
}

// ContributeInstance binds, in c, a pool member resolved from child and
// tagged with the implementation name.
func (s *Strategy[T]) ContributeInstance(_ context.Context, c, child container.Scope, _ Config) error {
	key := string(s.Type())
	tag := s.Name()
	c.SingletonNamed(PoolKey(s.Type()), tag, func(container.Scope) (any, error) {
		inst, err := child.Make(key)
		if err != nil {
			return nil, err
		}
		return PoolMember{Tag: tag, Instance: inst}, nil
	})
	return nil
}

// RegisterStrategy binds string(Type()) in c to the aggregate over every
// pool member visible from c.
func (s *Strategy[T]) RegisterStrategy(_ context.Context, c container.Scope, cfg Config) error {
	if cfg.DependencyName == "" {
		return &MissingFieldError{Type: s.Type(), Field: FieldDependencyName, Index: -1}
	}

	t := s.Type()
	c.Singleton(string(t), func(scope container.Scope) (any, error) {
		raw, err := scope.All(PoolKey(t))
		if err != nil {
			return nil, err
		}
		members := make([]PoolMember, 0, len(raw))
		for _, r := range raw {
			m, ok := r.(PoolMember)
			if !ok {
				return nil, fmt.Errorf("capability: %q pool holds %T, not a PoolMember", t, r)
			}
			members = append(members, m)
		}

		pool, err := NewPool[T](t, members)
		if err != nil {
			return nil, err
		}
		if obs, err := container.Resolve[DispatchObserver](scope, ObserverKey); err == nil {
			pool.observer = obs
		}
		return s.aggregate(pool), nil
	})
	return nil
}
