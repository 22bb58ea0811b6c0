package capability

import (
	"context"

	"github.com/km-arc/go-capability/framework/container"
)

// Type identifies a kind of pluggable service, e.g. "ServerStorage".
// Implementations bind their public instance under string(Type).
type Type string

// Implementation is the contract every pluggable backend satisfies.
//
// Register wires the implementation's internals into c, configured from
// cfg. It must bind the capability's public instance under string(Type()).
// Blocking work belongs behind ctx; the registry calls Register
// sequentially and waits for it to return.
type Implementation interface {
	Type() Type
	Name() string
	Register(ctx context.Context, c container.Scope, cfg Config) error
}

// NamedImplementation can be registered several times concurrently under
// distinct instance names, each in its own child scope.
type NamedImplementation interface {
	Implementation
	RegisterInstance(ctx context.Context, c container.Scope, cfg Config) error
}

// StrategyImplementation contributes instances to a pool and can expose the
// pool as one aggregate that routes each call by a discriminator.
type StrategyImplementation interface {
	NamedImplementation
	RegisterStrategy(ctx context.Context, c container.Scope, cfg Config) error
	ContributeInstance(ctx context.Context, c, child container.Scope, cfg Config) error
}

// Base is an embeddable identity for implementations.
//
//	type Backend struct{ capability.Base }
//
//	func New() capability.Implementation {
//	    return &Backend{Base: capability.NewBase(storage.ServerStorageType, "memory")}
//	}
type Base struct {
	typ  Type
	name string
}

// NewBase returns the identity of an implementation named name for t.
func NewBase(t Type, name string) Base {
	return Base{typ: t, name: name}
}

func (b Base) Type() Type   { return b.typ }
func (b Base) Name() string { return b.name }
