package observers

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/anggasct/stepfsm"
)

// MetricsObserver exports state machine activity as Prometheus metrics.
// All series carry a "machine" label so several machines can share a registry.
type MetricsObserver[S comparable] struct {
	machine string

	transitions  *prometheus.CounterVec
	updates      *prometheus.CounterVec
	stateEntries *prometheus.CounterVec
	errors       *prometheus.CounterVec
}

var _ stepfsm.ExtendedObserver[string] = (*MetricsObserver[string])(nil)

// NewMetricsObserver creates the collectors and registers them on reg.
// Collectors already registered by another MetricsObserver are reused.
func NewMetricsObserver[S comparable](reg prometheus.Registerer, machine string) (*MetricsObserver[S], error) {
	o := &MetricsObserver[S]{machine: machine}

	var err error
	if o.transitions, err = registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: "stepfsm",
		Name:      "transitions_total",
		Help:      "Number of transitions fired.",
	}, []string{"machine", "from", "to"}); err != nil {
		return nil, err
	}
	if o.updates, err = registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: "stepfsm",
		Name:      "updates_total",
		Help:      "Number of update steps run, by current state.",
	}, []string{"machine", "state"}); err != nil {
		return nil, err
	}
	if o.stateEntries, err = registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: "stepfsm",
		Name:      "state_entries_total",
		Help:      "Number of times a state became current.",
	}, []string{"machine", "state"}); err != nil {
		return nil, err
	}
	if o.errors, err = registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: "stepfsm",
		Name:      "errors_total",
		Help:      "Number of rejected operations.",
	}, []string{"machine"}); err != nil {
		return nil, err
	}

	return o, nil
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels []string) (*prometheus.CounterVec, error) {
	vec := prometheus.NewCounterVec(opts, labels)
	if err := reg.Register(vec); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("register %s: %w", opts.Name, err)
	}
	return vec, nil
}

// OnTransition counts transitions
func (o *MetricsObserver[S]) OnTransition(from S, to S) {
	o.transitions.WithLabelValues(o.machine, fmt.Sprint(from), fmt.Sprint(to)).Inc()
}

// OnStateEnter counts state entries
func (o *MetricsObserver[S]) OnStateEnter(state S) {
	o.stateEntries.WithLabelValues(o.machine, fmt.Sprint(state)).Inc()
}

// OnStateUpdate counts update steps
func (o *MetricsObserver[S]) OnStateUpdate(state S) {
	o.updates.WithLabelValues(o.machine, fmt.Sprint(state)).Inc()
}

// OnError counts rejected operations
func (o *MetricsObserver[S]) OnError(err error) {
	o.errors.WithLabelValues(o.machine).Inc()
}

func (o *MetricsObserver[S]) OnStateExit(state S) {}

func (o *MetricsObserver[S]) OnGuardEvaluation(from S, to S, index int, result bool) {}

func (o *MetricsObserver[S]) OnMachineStarted(initial S) {}
