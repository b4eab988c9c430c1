package stepfsm

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/anggasct/stepfsm/internal/logging"
)

// StateMachine is a synchronous finite state machine over state identifiers of
// type S. States and transitions are registered up front (or interleaved with
// use), the machine is started once and then advanced with Update.
//
// A StateMachine is not safe for concurrent use. Callers sharing one across
// goroutines must serialize every call, including registration, behind their
// own lock. Hooks and guards must not call Start or Update on the machine that
// invoked them; such calls fail with ErrReentrantCall.
//
// Panics raised by hooks or guards are not recovered. If an OnLeave hook
// panics the current state is unchanged; if the following OnEnter hook panics
// the current state has already moved to the target.
type StateMachine[S comparable] struct {
	id      string
	name    string
	states  []state[S]
	index   map[S]int
	current int
	running bool

	logger    *slog.Logger
	observers *ObserverManager[S]
}

// MachineOption is a functional option for configuring a StateMachine
type MachineOption[S comparable] func(*StateMachine[S])

// WithName sets a human readable name used in logs, metrics and diagrams
func WithName[S comparable](name string) MachineOption[S] {
	return func(m *StateMachine[S]) {
		m.name = name
	}
}

// WithLogger sets the logger for the machine. Without it the machine does
// not log.
func WithLogger[S comparable](logger *slog.Logger) MachineOption[S] {
	return func(m *StateMachine[S]) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithObserver attaches an observer at construction time
func WithObserver[S comparable](observer Observer[S]) MachineOption[S] {
	return func(m *StateMachine[S]) {
		m.observers.AddObserver(observer)
	}
}

// New creates an empty, not started state machine
func New[S comparable](opts ...MachineOption[S]) *StateMachine[S] {
	m := &StateMachine[S]{
		id:        uuid.New().String(),
		index:     make(map[S]int),
		current:   -1,
		logger:    logging.NewNop(),
		observers: NewObserverManager[S](),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.name == "" {
		m.name = "fsm-" + m.id[:8]
	}
	m.logger = m.logger.With("machine", m.name, "machine_id", m.id)
	return m
}

// ID returns the unique instance identifier
func (m *StateMachine[S]) ID() string {
	return m.id
}

// Name returns the machine name
func (m *StateMachine[S]) Name() string {
	return m.name
}

// AddObserver adds an observer
func (m *StateMachine[S]) AddObserver(observer Observer[S]) {
	m.observers.AddObserver(observer)
}

// RemoveObserver removes a previously added observer
func (m *StateMachine[S]) RemoveObserver(observer Observer[S]) {
	m.observers.RemoveObserver(observer)
}

// RegisterState adds a state with optional lifecycle hooks
func (m *StateMachine[S]) RegisterState(id S, opts ...StateOption) error {
	if _, exists := m.index[id]; exists {
		return m.reject("RegisterState", NewDuplicateStateError(label(id)))
	}

	var hooks stateHooks
	for _, opt := range opts {
		opt(&hooks)
	}

	m.index[id] = len(m.states)
	m.states = append(m.states, state[S]{
		value:    id,
		onEnter:  hooks.onEnter,
		onUpdate: hooks.onUpdate,
		onLeave:  hooks.onLeave,
	})

	m.logger.Debug("state registered", "state", label(id))
	return nil
}

// RegisterTransition appends a guarded transition to the source state's list.
// Transitions of a state are evaluated in the order they were registered.
//
// Validation runs in a fixed order: a nil condition is reported first, then an
// unregistered source, then an unregistered target.
func (m *StateMachine[S]) RegisterTransition(from, to S, condition Guard) error {
	if condition == nil {
		return m.reject("RegisterTransition", NewMissingConditionError(label(from), label(to)))
	}

	src, ok := m.index[from]
	if !ok {
		return m.reject("RegisterTransition", NewUnregisteredStateError(label(from), RoleSource))
	}

	dst, ok := m.index[to]
	if !ok {
		return m.reject("RegisterTransition", NewUnregisteredStateError(label(to), RoleTarget))
	}

	m.states[src].transitions = append(m.states[src].transitions, transition{
		target: dst,
		guard:  condition,
	})

	m.logger.Debug("transition registered",
		"from", label(from),
		"to", label(to),
		"priority", len(m.states[src].transitions),
	)
	return nil
}

// Start makes init the current state and runs its OnEnter hook
func (m *StateMachine[S]) Start(init S) error {
	if m.running {
		return m.reject("Start", NewReentrantCallError("Start"))
	}
	if m.IsStarted() {
		return m.reject("Start", NewAlreadyStartedError("Start"))
	}

	idx, ok := m.index[init]
	if !ok {
		return m.reject("Start", NewUnregisteredStateError(label(init), RoleInitial))
	}

	m.running = true
	defer func() { m.running = false }()

	m.current = idx
	m.logger.Debug("machine started", "state", label(init))

	if h := m.states[idx].onEnter; h != nil {
		h()
	}

	m.observers.NotifyStateEnter(init)
	m.observers.NotifyMachineStarted(init)
	return nil
}

// IsStarted reports whether Start has succeeded
func (m *StateMachine[S]) IsStarted() bool {
	return m.current >= 0
}

// CurrentState returns the current state, or the zero value of S if the
// machine is not started. Use IsStarted to tell the two apart.
func (m *StateMachine[S]) CurrentState() S {
	if m.current < 0 {
		var zero S
		return zero
	}
	return m.states[m.current].value
}

// Update runs one step: the current state's OnUpdate hook, then the first
// transition whose guard holds. It reports whether a transition fired.
// Guards after the first satisfied one are not evaluated.
func (m *StateMachine[S]) Update() (bool, error) {
	if m.running {
		return false, m.reject("Update", NewReentrantCallError("Update"))
	}
	if !m.IsStarted() {
		return false, m.reject("Update", NewNotStartedError("Update"))
	}

	m.running = true
	defer func() { m.running = false }()

	cur := m.current
	from := m.states[cur].value

	if h := m.states[cur].onUpdate; h != nil {
		h()
	}
	m.observers.NotifyStateUpdate(from)

	// Hooks and guards may register transitions, so the list is re-read by index.
	target := -1
	for i := 0; i < len(m.states[cur].transitions); i++ {
		t := m.states[cur].transitions[i]
		ok := t.guard()
		m.observers.NotifyGuardEvaluation(from, m.states[t.target].value, i, ok)
		if ok {
			target = t.target
			break
		}
	}

	if target < 0 {
		return false, nil
	}

	if h := m.states[cur].onLeave; h != nil {
		h()
	}
	m.observers.NotifyStateExit(from)

	m.current = target
	to := m.states[target].value
	m.logger.Debug("transition fired", "from", label(from), "to", label(to))

	if h := m.states[target].onEnter; h != nil {
		h()
	}

	m.observers.NotifyTransition(from, to)
	m.observers.NotifyStateEnter(to)
	return true, nil
}

// Len returns the number of registered states
func (m *StateMachine[S]) Len() int {
	return len(m.states)
}

// States returns a snapshot of all registered states in registration order
func (m *StateMachine[S]) States() []StateInfo[S] {
	infos := make([]StateInfo[S], 0, len(m.states))
	for i := range m.states {
		infos = append(infos, m.info(i))
	}
	return infos
}

// State returns a snapshot of the state registered under id
func (m *StateMachine[S]) State(id S) (StateInfo[S], bool) {
	idx, ok := m.index[id]
	if !ok {
		return StateInfo[S]{}, false
	}
	return m.info(idx), true
}

func (m *StateMachine[S]) info(idx int) StateInfo[S] {
	st := &m.states[idx]
	targets := make([]S, 0, len(st.transitions))
	for _, t := range st.transitions {
		targets = append(targets, m.states[t.target].value)
	}
	return StateInfo[S]{
		Value:       st.value,
		HasOnEnter:  st.onEnter != nil,
		HasOnUpdate: st.onUpdate != nil,
		HasOnLeave:  st.onLeave != nil,
		Transitions: targets,
	}
}

// reject logs and reports a contract violation and returns err unchanged
func (m *StateMachine[S]) reject(operation string, err error) error {
	m.logger.Warn("operation rejected", "op", operation, "error", err)
	m.observers.NotifyError(err)
	return err
}

func label[S comparable](v S) string {
	return fmt.Sprint(v)
}
