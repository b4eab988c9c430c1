// Package observers provides observers for monitoring state machine lifecycle
package observers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anggasct/stepfsm"
)

// LoggingObserver logs state machine lifecycle events through slog.
// Entries, exits and transitions are logged at the configured level, updates
// and guard evaluations one level below it, errors at Error.
type LoggingObserver[S comparable] struct {
	logger *slog.Logger
	level  slog.Level
	mutex  sync.RWMutex
}

var _ stepfsm.ExtendedObserver[string] = (*LoggingObserver[string])(nil)

// NewLoggingObserver creates a new logging observer
func NewLoggingObserver[S comparable](logger *slog.Logger, level slog.Level) *LoggingObserver[S] {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver[S]{
		logger: logger,
		level:  level,
	}
}

// SetLevel changes the level lifecycle events are logged at
func (o *LoggingObserver[S]) SetLevel(level slog.Level) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.level = level
}

func (o *LoggingObserver[S]) log(delta slog.Level, msg string, args ...any) {
	o.mutex.RLock()
	level := o.level + delta
	o.mutex.RUnlock()

	o.logger.Log(context.Background(), level, msg, args...)
}

// OnStateEnter logs state entry
func (o *LoggingObserver[S]) OnStateEnter(state S) {
	o.log(0, "state entered", "state", fmt.Sprint(state))
}

// OnStateExit logs state exit
func (o *LoggingObserver[S]) OnStateExit(state S) {
	o.log(0, "state exited", "state", fmt.Sprint(state))
}

// OnTransition logs transitions
func (o *LoggingObserver[S]) OnTransition(from S, to S) {
	o.log(0, "transition", "from", fmt.Sprint(from), "to", fmt.Sprint(to))
}

// OnStateUpdate logs update steps
func (o *LoggingObserver[S]) OnStateUpdate(state S) {
	o.log(-4, "state updated", "state", fmt.Sprint(state))
}

// OnGuardEvaluation logs guard results
func (o *LoggingObserver[S]) OnGuardEvaluation(from S, to S, index int, result bool) {
	o.log(-4, "guard evaluated",
		"from", fmt.Sprint(from),
		"to", fmt.Sprint(to),
		"priority", index+1,
		"result", result,
	)
}

// OnMachineStarted logs machine start
func (o *LoggingObserver[S]) OnMachineStarted(initial S) {
	o.log(0, "machine started", "state", fmt.Sprint(initial))
}

// OnError logs errors
func (o *LoggingObserver[S]) OnError(err error) {
	o.logger.Error("state machine error", "error", err)
}
