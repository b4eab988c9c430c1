package stepfsm

import (
	"fmt"
	"sync"
	"testing"
)

// TestObserver is a recording observer for tests. Every notification is also
// appended to Log as a short string so call order can be asserted.
type TestObserver[S comparable] struct {
	mutex       sync.Mutex
	Log         []string
	Transitions []TransitionEvent[S]
	StateEnters []S
	StateExits  []S
	Updates     []S
	Guards      []GuardEvent[S]
	Errors      []error
	Started     []S
}

// TransitionEvent is a recorded OnTransition call
type TransitionEvent[S comparable] struct {
	From S
	To   S
}

// GuardEvent is a recorded OnGuardEvaluation call
type GuardEvent[S comparable] struct {
	From   S
	To     S
	Index  int
	Result bool
}

// NewTestObserver creates a new test observer
func NewTestObserver[S comparable]() *TestObserver[S] {
	return &TestObserver[S]{}
}

func (o *TestObserver[S]) record(format string, args ...any) {
	o.Log = append(o.Log, fmt.Sprintf(format, args...))
}

func (o *TestObserver[S]) OnTransition(from S, to S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Transitions = append(o.Transitions, TransitionEvent[S]{From: from, To: to})
	o.record("transition:%v->%v", from, to)
}

func (o *TestObserver[S]) OnStateEnter(state S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.StateEnters = append(o.StateEnters, state)
	o.record("enter:%v", state)
}

func (o *TestObserver[S]) OnStateExit(state S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.StateExits = append(o.StateExits, state)
	o.record("exit:%v", state)
}

func (o *TestObserver[S]) OnStateUpdate(state S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Updates = append(o.Updates, state)
	o.record("update:%v", state)
}

func (o *TestObserver[S]) OnGuardEvaluation(from S, to S, index int, result bool) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Guards = append(o.Guards, GuardEvent[S]{From: from, To: to, Index: index, Result: result})
	o.record("guard:%v->%v#%d=%t", from, to, index, result)
}

func (o *TestObserver[S]) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Errors = append(o.Errors, err)
	o.record("error")
}

func (o *TestObserver[S]) OnMachineStarted(initial S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Started = append(o.Started, initial)
	o.record("started:%v", initial)
}

// Reset clears everything recorded so far
func (o *TestObserver[S]) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.Log = nil
	o.Transitions = nil
	o.StateEnters = nil
	o.StateExits = nil
	o.Updates = nil
	o.Guards = nil
	o.Errors = nil
	o.Started = nil
}

// AssertState fails the test if the machine is not started in expected
func AssertState[S comparable](t *testing.T, m *StateMachine[S], expected S) {
	t.Helper()
	if !m.IsStarted() {
		t.Errorf("Expected machine to be started in state %v", expected)
		return
	}
	if actual := m.CurrentState(); actual != expected {
		t.Errorf("Expected state %v, got %v", expected, actual)
	}
}

// AssertUpdate runs Update and fails the test on error or an unexpected result
func AssertUpdate[S comparable](t *testing.T, m *StateMachine[S], expectChanged bool) {
	t.Helper()
	changed, err := m.Update()
	if err != nil {
		t.Fatalf("Expected no error from Update, got: %v", err)
	}
	if changed != expectChanged {
		t.Errorf("Expected Update to return %t, got %t", expectChanged, changed)
	}
}
