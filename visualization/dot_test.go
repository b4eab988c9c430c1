package visualization

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/stepfsm"
)

func buildLights(t *testing.T) *stepfsm.StateMachine[string] {
	t.Helper()
	m, err := stepfsm.NewBuilder[string]().
		State("Green").OnEnter(func() {}).OnLeave(func() {}).
		To("Yellow", func() bool { return true }).
		To("Red", func() bool { return false }).
		State("Yellow").To("Red", func() bool { return false }).
		State("Red").
		Build(stepfsm.WithName[string]("lights"))
	require.NoError(t, err)
	return m
}

func TestDOTGenerator_Generate(t *testing.T) {
	m := buildLights(t)

	out, err := NewDOTGenerator[string](m).Generate()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "digraph \"lights\" {\n"))
	assert.Contains(t, out, "rankdir=LR;")
	assert.Contains(t, out, `"Green" [style="filled" fillcolor=lightblue label="Green\n[enter,leave]"];`)
	assert.Contains(t, out, `"Red" [style="filled" fillcolor=lightblue label="Red"];`)
	assert.Contains(t, out, `"Green" -> "Yellow" [style=solid label="#1"];`)
	assert.Contains(t, out, `"Green" -> "Red" [style=solid label="#2"];`)
	assert.Contains(t, out, `"Yellow" -> "Red" [style=solid label="#1"];`)
	assert.Equal(t, 3, strings.Count(out, "->"))
}

func TestDOTGenerator_HighlightsCurrent(t *testing.T) {
	m := buildLights(t)
	require.NoError(t, m.Start("Green"))
	_, err := m.Update()
	require.NoError(t, err)

	out, err := NewDOTGenerator[string](m).Generate()
	require.NoError(t, err)

	assert.Contains(t, out, `"Yellow" [style="filled" fillcolor=lightgreen`)
	assert.Contains(t, out, `"Green" [style="filled" fillcolor=lightblue`)
}

func TestDOTGenerator_Options(t *testing.T) {
	m := buildLights(t)
	opts := DefaultDOTOptions()
	opts.ShowPriorities = false
	opts.RankDirection = "TB"
	opts.TransitionStyle = "dashed"

	out, err := NewDOTGenerator[string](m, opts).Generate()
	require.NoError(t, err)

	assert.Contains(t, out, "rankdir=TB;")
	assert.Contains(t, out, `"Green" -> "Yellow" [style=dashed];`)
	assert.NotContains(t, out, "label=\"#")
}

func TestDOTGenerator_GenerateToFile(t *testing.T) {
	m := buildLights(t)
	path := filepath.Join(t.TempDir(), "lights.dot")

	require.NoError(t, NewDOTGenerator[string](m).GenerateToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph")
}

func TestQuote(t *testing.T) {
	testCases := map[string]string{
		`a"b`:   `"a\"b"`,
		`C:\`:   `"C:\\"`,
		`x\"y`:  `"x\\\"y"`,
		`plain`: `"plain"`,
		``:      `""`,
	}
	for in, want := range testCases {
		assert.Equal(t, want, quote(in), in)
	}
}

func TestDOTGenerator_BackslashInStateName(t *testing.T) {
	m, err := stepfsm.NewBuilder[string]().
		State(`C:\`).OnEnter(func() {}).To("b", func() bool { return true }).
		State("b").
		Build(stepfsm.WithName[string](`drive\`))
	require.NoError(t, err)

	out, err := NewDOTGenerator[string](m).Generate()
	require.NoError(t, err)

	assert.Contains(t, out, `digraph "drive\\" {`)
	assert.Contains(t, out, `"C:\\" [style="filled" fillcolor=lightblue label="C:\\\n[enter]"];`)
	assert.Contains(t, out, `"C:\\" -> "b" [style=solid label="#1"];`)
	assert.NotContains(t, out, `"C:\"`)
}

func TestDOTGenerator_GenerateSVG(t *testing.T) {
	if _, err := exec.LookPath("dot"); err != nil {
		t.Skip("graphviz dot binary not installed")
	}
	m := buildLights(t)

	svg, err := NewDOTGenerator[string](m).GenerateSVG()
	require.NoError(t, err)

	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "Yellow")
}
