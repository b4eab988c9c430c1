package observers

import (
	"fmt"
	"sync"

	"github.com/anggasct/stepfsm"
)

// ValidationObserver checks a running machine against an expected shape:
// which states should be visited and which transitions are allowed.
type ValidationObserver[S comparable] struct {
	stepfsm.BaseObserver[S]

	expectedStates     map[S]bool
	visitedStates      map[S]bool
	allowedTransitions map[S]map[S]bool
	violations         []string
	mutex              sync.RWMutex
}

// NewValidationObserver creates a new validation observer
func NewValidationObserver[S comparable]() *ValidationObserver[S] {
	return &ValidationObserver[S]{
		expectedStates:     make(map[S]bool),
		visitedStates:      make(map[S]bool),
		allowedTransitions: make(map[S]map[S]bool),
		violations:         make([]string, 0),
	}
}

// AddExpectedState adds a state that should be visited
func (o *ValidationObserver[S]) AddExpectedState(state S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.expectedStates[state] = true
}

// AddAllowedTransition allows from -> to. Transitions out of a state with no
// allowed transitions are not checked.
func (o *ValidationObserver[S]) AddAllowedTransition(from, to S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if _, exists := o.allowedTransitions[from]; !exists {
		o.allowedTransitions[from] = make(map[S]bool)
	}
	o.allowedTransitions[from][to] = true
}

// OnStateEnter marks the state as visited
func (o *ValidationObserver[S]) OnStateEnter(state S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.visitedStates[state] = true
}

// OnTransition validates transitions
func (o *ValidationObserver[S]) OnTransition(from S, to S) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if allowed, exists := o.allowedTransitions[from]; exists && !allowed[to] {
		o.violations = append(o.violations, fmt.Sprintf("invalid transition from '%v' to '%v'", from, to))
	}
}

// OnError records rejected operations as violations
func (o *ValidationObserver[S]) OnError(err error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.violations = append(o.violations, fmt.Sprintf("error occurred: %v", err))
}

// GetViolations returns all validation violations
func (o *ValidationObserver[S]) GetViolations() []string {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	result := make([]string, len(o.violations))
	copy(result, o.violations)
	return result
}

// GetUnvisitedStates returns states that were expected but not visited
func (o *ValidationObserver[S]) GetUnvisitedStates() []S {
	o.mutex.RLock()
	defer o.mutex.RUnlock()

	var unvisited []S
	for state := range o.expectedStates {
		if !o.visitedStates[state] {
			unvisited = append(unvisited, state)
		}
	}
	return unvisited
}

// HasViolations returns whether any violations occurred
func (o *ValidationObserver[S]) HasViolations() bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return len(o.violations) > 0
}

// Reset resets the validation state
func (o *ValidationObserver[S]) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.visitedStates = make(map[S]bool)
	o.violations = make([]string, 0)
}
