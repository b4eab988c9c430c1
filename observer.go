package stepfsm

import "fmt"

// Observer represents an entity that observes state machine lifecycle
type Observer[S comparable] interface {
	// OnTransition is called after a transition fired and the target's entry hook ran
	OnTransition(from S, to S)

	// OnStateEnter is called after entering a state, including the initial one
	OnStateEnter(state S)
}

// ExtendedObserver provides additional optional observation methods
type ExtendedObserver[S comparable] interface {
	Observer[S]

	// OnStateExit is called after the leave hook of a state ran
	OnStateExit(state S)

	// OnStateUpdate is called after the update hook of the current state ran
	OnStateUpdate(state S)

	// OnGuardEvaluation is called for every guard evaluated during Update.
	// index is the position of the transition in the source state's list.
	OnGuardEvaluation(from S, to S, index int, result bool)

	// OnError is called when an operation is rejected or an observer panics
	OnError(err error)

	// OnMachineStarted is called once Start succeeded
	OnMachineStarted(initial S)
}

// BaseObserver provides a default implementation with no-op methods
type BaseObserver[S comparable] struct{}

func (o *BaseObserver[S]) OnTransition(from S, to S) {}

func (o *BaseObserver[S]) OnStateEnter(state S) {}

func (o *BaseObserver[S]) OnStateExit(state S) {}

func (o *BaseObserver[S]) OnStateUpdate(state S) {}

func (o *BaseObserver[S]) OnGuardEvaluation(from S, to S, index int, result bool) {}

func (o *BaseObserver[S]) OnError(err error) {}

func (o *BaseObserver[S]) OnMachineStarted(initial S) {}

// ObserverManager manages a collection of observers. A panicking observer is
// reported through OnError and never reaches the machine's caller.
type ObserverManager[S comparable] struct {
	observers []Observer[S]
}

// NewObserverManager creates a new observer manager
func NewObserverManager[S comparable]() *ObserverManager[S] {
	return &ObserverManager[S]{
		observers: make([]Observer[S], 0),
	}
}

// AddObserver adds an observer to the manager
func (om *ObserverManager[S]) AddObserver(observer Observer[S]) {
	if observer == nil {
		return
	}
	om.observers = append(om.observers, observer)
}

// RemoveObserver removes an observer from the manager
func (om *ObserverManager[S]) RemoveObserver(observer Observer[S]) {
	for i, obs := range om.observers {
		if obs == observer {
			om.observers = append(om.observers[:i], om.observers[i+1:]...)
			break
		}
	}
}

// Len returns the number of registered observers
func (om *ObserverManager[S]) Len() int {
	return len(om.observers)
}

// each calls fn for every observer, isolating panics
func (om *ObserverManager[S]) each(method string, fn func(Observer[S])) {
	if len(om.observers) == 0 {
		return
	}
	observers := make([]Observer[S], len(om.observers))
	copy(observers, om.observers)

	for _, observer := range observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					if extObs, ok := observer.(ExtendedObserver[S]); ok {
						func() {
							defer func() { _ = recover() }()
							extObs.OnError(fmt.Errorf("observer panic in %s: %v", method, r))
						}()
					}
				}
			}()
			fn(observer)
		}()
	}
}

// eachExtended is each restricted to observers implementing ExtendedObserver
func (om *ObserverManager[S]) eachExtended(method string, fn func(ExtendedObserver[S])) {
	om.each(method, func(o Observer[S]) {
		if extObs, ok := o.(ExtendedObserver[S]); ok {
			fn(extObs)
		}
	})
}

// NotifyTransition notifies all observers of a state transition
func (om *ObserverManager[S]) NotifyTransition(from S, to S) {
	om.each("OnTransition", func(o Observer[S]) { o.OnTransition(from, to) })
}

// NotifyStateEnter notifies all observers of state entry
func (om *ObserverManager[S]) NotifyStateEnter(state S) {
	om.each("OnStateEnter", func(o Observer[S]) { o.OnStateEnter(state) })
}

// NotifyStateExit notifies all observers of state exit
func (om *ObserverManager[S]) NotifyStateExit(state S) {
	om.eachExtended("OnStateExit", func(o ExtendedObserver[S]) { o.OnStateExit(state) })
}

// NotifyStateUpdate notifies all observers that the update hook of state ran
func (om *ObserverManager[S]) NotifyStateUpdate(state S) {
	om.eachExtended("OnStateUpdate", func(o ExtendedObserver[S]) { o.OnStateUpdate(state) })
}

// NotifyGuardEvaluation notifies all observers of guard evaluation
func (om *ObserverManager[S]) NotifyGuardEvaluation(from S, to S, index int, result bool) {
	om.eachExtended("OnGuardEvaluation", func(o ExtendedObserver[S]) {
		o.OnGuardEvaluation(from, to, index, result)
	})
}

// NotifyError notifies all observers of errors
func (om *ObserverManager[S]) NotifyError(err error) {
	for _, observer := range append([]Observer[S](nil), om.observers...) {
		if extObs, ok := observer.(ExtendedObserver[S]); ok {
			func() {
				defer func() { _ = recover() }()
				extObs.OnError(err)
			}()
		}
	}
}

// NotifyMachineStarted notifies all observers that the machine has started
func (om *ObserverManager[S]) NotifyMachineStarted(initial S) {
	om.eachExtended("OnMachineStarted", func(o ExtendedObserver[S]) { o.OnMachineStarted(initial) })
}
