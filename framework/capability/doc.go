// Package capability defines pluggable capabilities and the pieces used to
// bind them from configuration.
//
// # Overview
//
// A capability Type ("ServerStorage", "ClientStorage") names an abstract
// service. Concrete backends implement Implementation and are collected per
// type in a Factory. A configuration Document picks, per type, which
// implementation(s) to activate:
//
//	ServerStorage:                     # named instances, each in its own child scope
//	  - dependencyName: memory
//	    instanceName: primary
//	    bucket: uploads
//	  - dependencyName: memory
//	    instanceName: archive
//	    bucket: cold
//
//	ClientStorage:                     # one aggregate routing by storage type
//	  bindingStrategy: StrategyDependency
//	  dependencyName: memory
//	  instances:
//	    - dependencyName: memory
//	      instanceName: browser
//	      baseURL: https://cdn.example.com
//
// # Named instances
//
// RegisterInstance creates a child scope per instance, lets the
// implementation register into it, and binds a named resolver in the parent.
// Wrap an implementation with Named to opt it in.
//
// # Strategies
//
// Strategy[T] contributes each named instance into a pool keyed by the
// implementation name, and RegisterStrategy binds one aggregate over the
// pool. The aggregate is a plain router: it asks Pool.Route for the member
// matching the call's discriminator and forwards the call unchanged.
//
// A strategy pool for a type is fed only by the named instances activated
// for that same type, and they are always activated before the aggregate is
// registered.
//
// # Errors
//
// Every failure is a typed error carrying the capability type and, where
// useful, the legal names (UnregisteredImplementationError.Known,
// UnknownPoolMemberError.Known), so misconfiguration can be fixed from the
// message alone.
package capability
