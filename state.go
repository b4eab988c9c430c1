package stepfsm

// Hook is an optional lifecycle callback. A nil Hook is a no-op.
type Hook func()

// state is an arena entry. Transition targets are arena indices.
type state[S comparable] struct {
	value       S
	onEnter     Hook
	onUpdate    Hook
	onLeave     Hook
	transitions []transition
}

// StateOption configures a state at registration time
type StateOption func(*stateHooks)

type stateHooks struct {
	onEnter  Hook
	onUpdate Hook
	onLeave  Hook
}

// OnEnter sets the hook run when the state becomes current
func OnEnter(h Hook) StateOption {
	return func(s *stateHooks) {
		s.onEnter = h
	}
}

// OnUpdate sets the hook run at the start of every Update while the state is current
func OnUpdate(h Hook) StateOption {
	return func(s *stateHooks) {
		s.onUpdate = h
	}
}

// OnLeave sets the hook run when a transition leaves the state
func OnLeave(h Hook) StateOption {
	return func(s *stateHooks) {
		s.onLeave = h
	}
}

// StateInfo is a read-only snapshot of a registered state
type StateInfo[S comparable] struct {
	Value       S
	HasOnEnter  bool
	HasOnUpdate bool
	HasOnLeave  bool
	// Transitions lists target states in evaluation order.
	Transitions []S
}
