package stepfsm

// Guard decides whether a transition may fire. Guards should be cheap and free
// of side effects; the engine evaluates them lazily and stops at the first one
// that returns true.
type Guard func() bool

// transition is a guarded edge owned by its source state
type transition struct {
	target int
	guard  Guard
}
