package capability

import (
	"context"
	"fmt"

	"github.com/km-arc/go-capability/framework/container"
)

// RegisterInstance activates impl as the instance cfg.InstanceName.
//
// The implementation registers into a fresh child of c, so its settings
// and helpers stay private to the instance. c then gets a named binding of
// string(impl.Type()) that resolves the instance from that child on first
// use. The child scope is returned for callers that need to publish the
// instance elsewhere (see Strategy).
func RegisterInstance(ctx context.Context, c container.Scope, impl Implementation, cfg Config) (container.Scope, error) {
	if cfg.InstanceName == "" {
		return nil, &MissingFieldError{Type: impl.Type(), Field: FieldInstanceName, Index: -1}
	}

	child := c.Child()
	if err := impl.Register(ctx, child, cfg); err != nil {
		return nil, fmt.Errorf("capability: registering %q instance %q: %w", impl.Name(), cfg.InstanceName, err)
	}

	key := string(impl.Type())
	c.SingletonNamed(key, cfg.InstanceName, func(container.Scope) (any, error) {
		return child.Make(key)
	})
	return child, nil
}

// Named adds named-instance support to an implementation.
//
//	host.UseImplementation(func() capability.Implementation {
//	    return capability.Named(azure.New())
//	})
func Named(impl Implementation) NamedImplementation {
	if n, ok := impl.(NamedImplementation); ok {
		return n
	}
	return &named{Implementation: impl}
}

type named struct {
	Implementation
}

func (n *named) RegisterInstance(ctx context.Context, c container.Scope, cfg Config) error {
	_, err := RegisterInstance(ctx, c, n.Implementation, cfg)
	return err
}
