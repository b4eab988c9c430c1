package stepfsm

// MachineBuilder provides a fluent way to declare a machine. States are
// registered before transitions, so a transition may name a state declared
// further down the chain.
type MachineBuilder[S comparable] struct {
	states      []*StateBuilder[S]
	transitions []transitionDecl[S]
}

// StateBuilder configures a single state declared on a MachineBuilder
type StateBuilder[S comparable] struct {
	parent *MachineBuilder[S]
	id     S
	opts   []StateOption
}

type transitionDecl[S comparable] struct {
	from, to S
	guard    Guard
}

// NewBuilder creates an empty machine builder
func NewBuilder[S comparable]() *MachineBuilder[S] {
	return &MachineBuilder[S]{}
}

// State declares a state
func (b *MachineBuilder[S]) State(id S) *StateBuilder[S] {
	sb := &StateBuilder[S]{parent: b, id: id}
	b.states = append(b.states, sb)
	return sb
}

// Transition declares a guarded transition
func (b *MachineBuilder[S]) Transition(from, to S, guard Guard) *MachineBuilder[S] {
	b.transitions = append(b.transitions, transitionDecl[S]{from: from, to: to, guard: guard})
	return b
}

// Build creates the machine, registering every declared state and transition
// in declaration order. The first registration error is returned.
func (b *MachineBuilder[S]) Build(opts ...MachineOption[S]) (*StateMachine[S], error) {
	m := New[S](opts...)
	for _, sb := range b.states {
		if err := m.RegisterState(sb.id, sb.opts...); err != nil {
			return nil, err
		}
	}
	for _, t := range b.transitions {
		if err := m.RegisterTransition(t.from, t.to, t.guard); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// OnEnter sets the entry hook
func (sb *StateBuilder[S]) OnEnter(h Hook) *StateBuilder[S] {
	sb.opts = append(sb.opts, OnEnter(h))
	return sb
}

// OnUpdate sets the update hook
func (sb *StateBuilder[S]) OnUpdate(h Hook) *StateBuilder[S] {
	sb.opts = append(sb.opts, OnUpdate(h))
	return sb
}

// OnLeave sets the leave hook
func (sb *StateBuilder[S]) OnLeave(h Hook) *StateBuilder[S] {
	sb.opts = append(sb.opts, OnLeave(h))
	return sb
}

// To declares a transition from this state
func (sb *StateBuilder[S]) To(target S, guard Guard) *StateBuilder[S] {
	sb.parent.Transition(sb.id, target, guard)
	return sb
}

// State declares the next state
func (sb *StateBuilder[S]) State(id S) *StateBuilder[S] {
	return sb.parent.State(id)
}

// Transition declares a guarded transition
func (sb *StateBuilder[S]) Transition(from, to S, guard Guard) *MachineBuilder[S] {
	return sb.parent.Transition(from, to, guard)
}

// Build builds the parent machine
func (sb *StateBuilder[S]) Build(opts ...MachineOption[S]) (*StateMachine[S], error) {
	return sb.parent.Build(opts...)
}
