package stepfsm

import (
	"errors"
	"fmt"
)

// ErrorCode represents specific error conditions in the state machine
type ErrorCode int

const (
	// No error occurred
	ErrCodeNone ErrorCode = iota
	// State identifier is already registered
	ErrCodeDuplicateState
	// State identifier is not registered
	ErrCodeUnregisteredState
	// Transition was registered without a guard
	ErrCodeMissingCondition
	// Machine has already been started
	ErrCodeAlreadyStarted
	// Machine has not been started yet
	ErrCodeNotStarted
	// Start or Update was called from inside a callback of the same machine
	ErrCodeReentrantCall
)

// Sentinel errors usable with errors.Is.
var (
	ErrDuplicateState    = errors.New("state is already registered")
	ErrUnregisteredState = errors.New("state is not registered")
	ErrMissingCondition  = errors.New("transition condition is missing")
	ErrAlreadyStarted    = errors.New("state machine has already been started")
	ErrNotStarted        = errors.New("state machine is not started")
	ErrReentrantCall     = errors.New("reentrant call from a state machine callback")
)

func (c ErrorCode) sentinel() error {
	switch c {
	case ErrCodeDuplicateState:
		return ErrDuplicateState
	case ErrCodeUnregisteredState:
		return ErrUnregisteredState
	case ErrCodeMissingCondition:
		return ErrMissingCondition
	case ErrCodeAlreadyStarted:
		return ErrAlreadyStarted
	case ErrCodeNotStarted:
		return ErrNotStarted
	case ErrCodeReentrantCall:
		return ErrReentrantCall
	default:
		return nil
	}
}

// StateRole tells which argument of an operation referenced a state
type StateRole string

const (
	RoleState   StateRole = "state"
	RoleSource  StateRole = "source"
	RoleTarget  StateRole = "target"
	RoleInitial StateRole = "initial"
)

// StateError represents state-related errors
type StateError struct {
	Code    ErrorCode
	StateID string
	Role    StateRole
	Message string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("state error [%s]: %s", e.StateID, e.Message)
}

// Is reports whether target is the sentinel matching the error code
func (e *StateError) Is(target error) bool {
	return target != nil && target == e.Code.sentinel()
}

// NewDuplicateStateError creates a new duplicate state error
func NewDuplicateStateError(stateID string) *StateError {
	return &StateError{
		Code:    ErrCodeDuplicateState,
		StateID: stateID,
		Role:    RoleState,
		Message: fmt.Sprintf("state '%s' is already registered", stateID),
	}
}

// NewUnregisteredStateError creates a new unregistered state error
func NewUnregisteredStateError(stateID string, role StateRole) *StateError {
	return &StateError{
		Code:    ErrCodeUnregisteredState,
		StateID: stateID,
		Role:    role,
		Message: fmt.Sprintf("%s state '%s' is not registered", role, stateID),
	}
}

// TransitionError represents transition-related errors
type TransitionError struct {
	Code   ErrorCode
	From   string
	To     string
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition error [%s->%s]: %s", e.From, e.To, e.Reason)
}

// Is reports whether target is the sentinel matching the error code
func (e *TransitionError) Is(target error) bool {
	return target != nil && target == e.Code.sentinel()
}

// NewMissingConditionError creates a new missing condition error
func NewMissingConditionError(from, to string) *TransitionError {
	return &TransitionError{
		Code:   ErrCodeMissingCondition,
		From:   from,
		To:     to,
		Reason: "condition is required",
	}
}

// MachineError represents state machine operation errors
type MachineError struct {
	Code      ErrorCode
	Operation string
	Message   string
}

func (e *MachineError) Error() string {
	return fmt.Sprintf("machine error during %s: %s", e.Operation, e.Message)
}

// Is reports whether target is the sentinel matching the error code
func (e *MachineError) Is(target error) bool {
	return target != nil && target == e.Code.sentinel()
}

// NewAlreadyStartedError creates a new already started error
func NewAlreadyStartedError(operation string) *MachineError {
	return &MachineError{
		Code:      ErrCodeAlreadyStarted,
		Operation: operation,
		Message:   "state machine has already been started",
	}
}

// NewNotStartedError creates a new machine not started error
func NewNotStartedError(operation string) *MachineError {
	return &MachineError{
		Code:      ErrCodeNotStarted,
		Operation: operation,
		Message:   "state machine is not started",
	}
}

// NewReentrantCallError creates a new reentrant call error
func NewReentrantCallError(operation string) *MachineError {
	return &MachineError{
		Code:      ErrCodeReentrantCall,
		Operation: operation,
		Message:   "called from inside a callback of the same machine",
	}
}

// IsStateError checks if an error is a StateError
func IsStateError(err error) bool {
	var e *StateError
	return errors.As(err, &e)
}

// IsTransitionError checks if an error is a TransitionError
func IsTransitionError(err error) bool {
	var e *TransitionError
	return errors.As(err, &e)
}

// IsMachineError checks if an error is a MachineError
func IsMachineError(err error) bool {
	var e *MachineError
	return errors.As(err, &e)
}

// GetErrorCode returns the error code for known error types
func GetErrorCode(err error) ErrorCode {
	var (
		se *StateError
		te *TransitionError
		me *MachineError
	)
	switch {
	case errors.As(err, &se):
		return se.Code
	case errors.As(err, &te):
		return te.Code
	case errors.As(err, &me):
		return me.Code
	default:
		return ErrCodeNone
	}
}
