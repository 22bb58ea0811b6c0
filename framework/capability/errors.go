package capability

import (
	"fmt"
	"strings"
)

// UnregisteredFactoryError records an implementation offered for a
// capability type that was never required.
type UnregisteredFactoryError struct {
	Type           Type
	Implementation string
}

func (e *UnregisteredFactoryError) Error() string {
	return fmt.Sprintf("capability: no factory for %q (implementation %q); use RequireCapability method to declare it first",
		e.Type, e.Implementation)
}

// UnregisteredImplementationError records a configuration naming an
// implementation that was never added to the type's factory.
type UnregisteredImplementationError struct {
	Type  Type
	Name  string
	Known []string
}

func (e *UnregisteredImplementationError) Error() string {
	return fmt.Sprintf("capability: implementation %q is not registered for %q (registered: %s)",
		e.Name, e.Type, list(e.Known))
}

// UnsupportedNamedInstanceError records a named-instance configuration
// against an implementation that cannot be registered more than once.
type UnsupportedNamedInstanceError struct {
	Type Type
	Name string
}

func (e *UnsupportedNamedInstanceError) Error() string {
	return fmt.Sprintf("capability: implementation %q of %q does not support named instances", e.Name, e.Type)
}

// UnsupportedStrategyError records a strategy descriptor naming an
// implementation that cannot build a strategy aggregate.
type UnsupportedStrategyError struct {
	Type Type
	Name string
}

func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("capability: implementation %q of %q does not support strategy bindings", e.Name, e.Type)
}

// MissingFieldError records a required configuration field left empty.
// Index is the position in an instance list, or -1 for a single entry.
type MissingFieldError struct {
	Type  Type
	Field string
	Index int
}

func (e *MissingFieldError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("capability: %q instances[%d]: missing required field %q", e.Type, e.Index, e.Field)
	}
	return fmt.Sprintf("capability: %q: missing required field %q", e.Type, e.Field)
}

// MissingConfigurationError records a required capability type with no
// entry in the configuration document.
type MissingConfigurationError struct {
	Type Type
}

func (e *MissingConfigurationError) Error() string {
	return fmt.Sprintf("capability: no configuration for required capability %q", e.Type)
}

// UnknownCapabilityError records a configuration entry for a capability type
// that was never required.
type UnknownCapabilityError struct {
	Type  Type
	Known []Type
}

func (e *UnknownCapabilityError) Error() string {
	known := make([]string, len(e.Known))
	for i, t := range e.Known {
		known[i] = string(t)
	}
	return fmt.Sprintf("capability: configuration for %q, which is not a required capability (required: %s)",
		e.Type, list(known))
}

// DuplicateCapabilityError records a second RequireCapability for a type.
type DuplicateCapabilityError struct {
	Type Type
}

func (e *DuplicateCapabilityError) Error() string {
	return fmt.Sprintf("capability: %q is already required", e.Type)
}

// DuplicateInstanceError records two active instances sharing a name.
type DuplicateInstanceError struct {
	Type     Type
	Instance string
}

func (e *DuplicateInstanceError) Error() string {
	return fmt.Sprintf("capability: %q: instance %q is configured more than once", e.Type, e.Instance)
}

// DuplicatePoolMemberError records two strategy pool members backed by the
// same implementation. Pool members are keyed by implementation name, so
// the second would shadow the first.
type DuplicatePoolMemberError struct {
	Type           Type
	Implementation string
}

func (e *DuplicatePoolMemberError) Error() string {
	return fmt.Sprintf("capability: %q: implementation %q contributes more than one pool member", e.Type, e.Implementation)
}

// UnknownPoolMemberError records a strategy dispatch whose discriminator
// matches no pool member.
type UnknownPoolMemberError struct {
	Type          Type
	Discriminator string
	Known         []string
}

func (e *UnknownPoolMemberError) Error() string {
	return fmt.Sprintf("capability: %q has no pool member %q (members: %s)", e.Type, e.Discriminator, list(e.Known))
}

// BindError attaches the capability type being bound to a failure.
type BindError struct {
	Type Type
	Err  error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("binding %q: %v", e.Type, e.Err)
}

func (e *BindError) Unwrap() error { return e.Err }

func list(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
