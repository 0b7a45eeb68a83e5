package singleton

// State is the lifecycle state of a Provider.
//
//	Uninitialized -> Constructing -> Ready -> Closed
//	Constructing  -> Uninitialized   (constructor failed)
//	Uninitialized -> Closed          (torn down before first Get)
type State int32

const (
	StateUninitialized State = iota
	StateConstructing
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateConstructing:
		return "constructing"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
