package observers_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/stepfsm"
	"github.com/anggasct/stepfsm/pkg/observers"
)

func newToggle(t *testing.T, observer stepfsm.Observer[string], flip *bool) *stepfsm.StateMachine[string] {
	t.Helper()
	m, err := stepfsm.NewBuilder[string]().
		State("off").To("on", func() bool { return *flip }).
		State("on").To("off", func() bool { return *flip }).
		Build(stepfsm.WithName[string]("toggle"), stepfsm.WithObserver[string](observer))
	require.NoError(t, err)
	return m
}

func TestLoggingObserver(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	flip := false
	m := newToggle(t, observers.NewLoggingObserver[string](logger, slog.LevelInfo), &flip)

	require.NoError(t, m.Start("off"))
	flip = true
	_, err := m.Update()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "machine started")
	assert.Contains(t, out, "msg=transition from=off to=on")
	assert.Contains(t, out, "state exited")
	assert.Contains(t, out, "level=DEBUG msg=\"guard evaluated\"")
}

func TestLoggingObserver_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	flip := false
	m := newToggle(t, observers.NewLoggingObserver[string](logger, slog.LevelInfo), &flip)

	require.NoError(t, m.Start("off"))
	_, err := m.Update()
	require.NoError(t, err)

	assert.NotContains(t, buf.String(), "guard evaluated")
	assert.NotContains(t, buf.String(), "state updated")
}

func TestLoggingObserver_SetLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	observer := observers.NewLoggingObserver[string](logger, slog.LevelInfo)
	flip := true
	m := newToggle(t, observer, &flip)

	require.NoError(t, m.Start("off"))
	assert.Contains(t, buf.String(), "level=INFO msg=\"machine started\"")

	buf.Reset()
	observer.SetLevel(slog.LevelWarn)
	_, err := m.Update()
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "level=WARN msg=transition from=off to=on")
	assert.Contains(t, out, "level=INFO msg=\"guard evaluated\"")
	assert.NotContains(t, out, "level=INFO msg=transition")

	buf.Reset()
	observer.SetLevel(slog.LevelDebug)
	_, err = m.Update()
	require.NoError(t, err)

	assert.Empty(t, buf.String())
}

func TestLoggingObserver_Errors(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	flip := false
	m := newToggle(t, observers.NewLoggingObserver[string](logger, slog.LevelDebug), &flip)

	_, err := m.Update()
	require.Error(t, err)

	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "not started")
}

func TestMetricsObserver(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics, err := observers.NewMetricsObserver[string](reg, "toggle")
	require.NoError(t, err)

	flip := false
	m := newToggle(t, metrics, &flip)
	require.NoError(t, m.Start("off"))

	_, err = m.Update()
	require.NoError(t, err)
	flip = true
	_, err = m.Update()
	require.NoError(t, err)
	_, err = m.Update()
	require.NoError(t, err)
	assert.Error(t, m.Start("off"))

	expected := `
# HELP stepfsm_transitions_total Number of transitions fired.
# TYPE stepfsm_transitions_total counter
stepfsm_transitions_total{from="off",machine="toggle",to="on"} 1
stepfsm_transitions_total{from="on",machine="toggle",to="off"} 1
# HELP stepfsm_updates_total Number of update steps run, by current state.
# TYPE stepfsm_updates_total counter
stepfsm_updates_total{machine="toggle",state="off"} 2
stepfsm_updates_total{machine="toggle",state="on"} 1
# HELP stepfsm_state_entries_total Number of times a state became current.
# TYPE stepfsm_state_entries_total counter
stepfsm_state_entries_total{machine="toggle",state="off"} 2
stepfsm_state_entries_total{machine="toggle",state="on"} 1
# HELP stepfsm_errors_total Number of rejected operations.
# TYPE stepfsm_errors_total counter
stepfsm_errors_total{machine="toggle"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected)))
}

func TestMetricsObserver_SharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := observers.NewMetricsObserver[string](reg, "first")
	require.NoError(t, err)
	second, err := observers.NewMetricsObserver[string](reg, "second")
	require.NoError(t, err)

	first.OnTransition("a", "b")
	second.OnTransition("a", "b")
	second.OnTransition("a", "b")

	assert.Equal(t, 2, testutil.CollectAndCount(reg, "stepfsm_transitions_total"))
}

func TestValidationObserver(t *testing.T) {
	validation := observers.NewValidationObserver[string]()
	validation.AddExpectedState("off")
	validation.AddExpectedState("on")
	validation.AddExpectedState("broken")
	validation.AddAllowedTransition("off", "on")
	validation.AddAllowedTransition("on", "broken")

	flip := true
	m := newToggle(t, validation, &flip)
	require.NoError(t, m.Start("off"))
	_, err := m.Update()
	require.NoError(t, err)
	_, err = m.Update()
	require.NoError(t, err)

	assert.True(t, validation.HasViolations())
	assert.Equal(t, []string{"invalid transition from 'on' to 'off'"}, validation.GetViolations())
	assert.Equal(t, []string{"broken"}, validation.GetUnvisitedStates())

	validation.Reset()
	assert.False(t, validation.HasViolations())
}
