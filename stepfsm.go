// Package stepfsm provides a small, generic finite state machine that is
// advanced explicitly, one step at a time.
//
// Client code registers states with optional OnEnter, OnUpdate and OnLeave
// hooks, registers guarded transitions between them, starts the machine at an
// initial state and then calls Update on whatever cadence it likes:
//
//	m := stepfsm.New[Light]()
//	_ = m.RegisterState(Green, stepfsm.OnEnter(func() { fmt.Println("green") }))
//	_ = m.RegisterState(Yellow)
//	_ = m.RegisterTransition(Green, Yellow, func() bool { return timerExpired })
//	_ = m.Start(Green)
//	changed, err := m.Update()
//
// Each Update runs the current state's OnUpdate hook, evaluates the state's
// transitions in registration order and fires the first one whose guard holds:
// OnLeave of the old state, then OnEnter of the new one. At most one
// transition fires per Update.
//
// Misuse (duplicate states, unknown states, missing guards, starting twice,
// updating before start) is reported through typed errors that wrap the
// sentinels ErrDuplicateState, ErrUnregisteredState, ErrMissingCondition,
// ErrAlreadyStarted and ErrNotStarted. A failed call never modifies the machine.
package stepfsm
