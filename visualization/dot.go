// Package visualization renders state machines as Graphviz diagrams
package visualization

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/anggasct/stepfsm"
)

// Graph is the read-only view of a machine needed to draw it.
// *stepfsm.StateMachine satisfies it.
type Graph[S comparable] interface {
	Name() string
	States() []stepfsm.StateInfo[S]
	IsStarted() bool
	CurrentState() S
}

// DOTGenerator generates Graphviz DOT format representations of state machines
type DOTGenerator[S comparable] struct {
	graph   Graph[S]
	options DOTOptions
}

// DOTOptions configures the DOT generation
type DOTOptions struct {
	ShowPriorities   bool
	HighlightCurrent bool
	RankDirection    string // "TB", "LR", "BT", "RL"
	NodeShape        string
	TransitionStyle  string
}

// DefaultDOTOptions returns sensible default options for DOT generation
func DefaultDOTOptions() DOTOptions {
	return DOTOptions{
		ShowPriorities:   true,
		HighlightCurrent: true,
		RankDirection:    "LR",
		NodeShape:        "box",
		TransitionStyle:  "solid",
	}
}

// NewDOTGenerator creates a new DOT generator for the given machine
func NewDOTGenerator[S comparable](graph Graph[S], options ...DOTOptions) *DOTGenerator[S] {
	opts := DefaultDOTOptions()
	if len(options) > 0 {
		opts = options[0]
	}

	return &DOTGenerator[S]{
		graph:   graph,
		options: opts,
	}
}

// Generate creates a DOT representation of the state machine
func (g *DOTGenerator[S]) Generate() (string, error) {
	var dot strings.Builder
	if err := g.Write(&dot); err != nil {
		return "", err
	}
	return dot.String(), nil
}

// Write streams the DOT representation to w
func (g *DOTGenerator[S]) Write(w io.Writer) error {
	states := g.graph.States()

	var dot strings.Builder
	dot.WriteString(fmt.Sprintf("digraph %s {\n", quote(g.graph.Name())))
	dot.WriteString(fmt.Sprintf("  rankdir=%s;\n", g.options.RankDirection))
	dot.WriteString(fmt.Sprintf("  node [shape=%s];\n", g.options.NodeShape))
	dot.WriteString("  edge [fontsize=10];\n\n")

	dot.WriteString("  // States\n")
	for _, st := range states {
		g.writeStateNode(&dot, st)
	}

	dot.WriteString("\n  // Transitions\n")
	for _, st := range states {
		for i, target := range st.Transitions {
			attrs := []string{fmt.Sprintf("style=%s", g.options.TransitionStyle)}
			if g.options.ShowPriorities {
				attrs = append(attrs, fmt.Sprintf("label=\"#%d\"", i+1))
			}
			dot.WriteString(fmt.Sprintf("  %s -> %s [%s];\n",
				quote(fmt.Sprint(st.Value)), quote(fmt.Sprint(target)), strings.Join(attrs, " ")))
		}
	}

	dot.WriteString("}\n")

	if _, err := io.WriteString(w, dot.String()); err != nil {
		return fmt.Errorf("failed to write DOT output: %w", err)
	}
	return nil
}

// writeStateNode generates a DOT node for a single state
func (g *DOTGenerator[S]) writeStateNode(dot *strings.Builder, st stepfsm.StateInfo[S]) {
	id := fmt.Sprint(st.Value)
	fillColor := "lightblue"
	if g.options.HighlightCurrent && g.graph.IsStarted() && g.graph.CurrentState() == st.Value {
		fillColor = "lightgreen"
	}

	var hooks []string
	if st.HasOnEnter {
		hooks = append(hooks, "enter")
	}
	if st.HasOnUpdate {
		hooks = append(hooks, "update")
	}
	if st.HasOnLeave {
		hooks = append(hooks, "leave")
	}

	// the hook list goes on a second line; \n is added after escaping
	label := escape(id)
	if len(hooks) > 0 {
		label += "\\n[" + strings.Join(hooks, ",") + "]"
	}

	dot.WriteString(fmt.Sprintf("  %s [style=\"filled\" fillcolor=%s label=\"%s\"];\n",
		quote(id), fillColor, label))
}

// GenerateToFile writes the DOT representation to a file
func (g *DOTGenerator[S]) GenerateToFile(filename string) error {
	content, err := g.Generate()
	if err != nil {
		return err
	}

	return os.WriteFile(filename, []byte(content), 0644)
}

// GenerateSVG converts the DOT output to SVG with the Graphviz dot binary
func (g *DOTGenerator[S]) GenerateSVG() (string, error) {
	dotContent, err := g.Generate()
	if err != nil {
		return "", err
	}

	cmd := exec.Command("dot", "-Tsvg")
	cmd.Stdin = strings.NewReader(dotContent)

	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to execute dot command: %w (make sure Graphviz is installed)", err)
	}

	return out.String(), nil
}

var escaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// escape makes s safe inside a DOT string literal
func escape(s string) string {
	return escaper.Replace(s)
}

// quote renders s as a DOT string literal
func quote(s string) string {
	return "\"" + escape(s) + "\""
}
