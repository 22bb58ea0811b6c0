package container

import "fmt"

// NotBoundError is returned when nothing is registered for a key (and name)
// anywhere in the scope chain.
type NotBoundError struct {
	Key  string
	Name string
}

func (e *NotBoundError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("container: no binding registered for [%s] named [%s]", e.Key, e.Name)
	}
	return fmt.Sprintf("container: no binding registered for [%s]", e.Key)
}

// ResolveError wraps a failure returned by a binding's factory.
type ResolveError struct {
	Key  string
	Name string
	Err  error
}

func (e *ResolveError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("container: resolving [%s] named [%s]: %v", e.Key, e.Name, e.Err)
	}
	return fmt.Sprintf("container: resolving [%s]: %v", e.Key, e.Err)
}

func (e *ResolveError) Unwrap() error { return e.Err }
