package binding

// State is the lifecycle position of a Host.
type State int

const (
	// Uninitialized: nothing required yet.
	Uninitialized State = iota
	// Declared: at least one capability type required.
	Declared
	// Populated: at least one implementation added.
	Populated
	// Bound: BindAll has run. Terminal.
	Bound
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Declared:
		return "declared"
	case Populated:
		return "populated"
	case Bound:
		return "bound"
	}
	return "unknown"
}
