package diagram

import (
	"fmt"
	"strings"
)

// Kind identifies which diagram grammar a source declares
type Kind string

const (
	KindFlow     Kind = "flow"
	KindSequence Kind = "sequence"
	KindClass    Kind = "class"
	KindState    Kind = "state"
)

// Shape is the rendered outline of a flow node
type Shape string

const (
	ShapeRect    Shape = "rect"
	ShapeRounded Shape = "rounded"
	ShapeDiamond Shape = "diamond"
	ShapeCircle  Shape = "circle"
)

// Node is a named vertex of a parsed diagram
type Node struct {
	ID    string
	Label string
	Shape Shape
}

// Edge connects two nodes, optionally labeled. Dashed edges come from
// sequence replies and class inheritance notation.
type Edge struct {
	From   string
	To     string
	Label  string
	Dashed bool
}

// Diagram is the grammar-independent model the layout stage consumes.
// Nodes preserve first-appearance order so layout is deterministic.
type Diagram struct {
	Kind      Kind
	Direction string // TD or LR, flow diagrams only
	Nodes     []Node
	Edges     []Edge

	index map[string]int
}

func newDiagram(kind Kind) *Diagram {
	return &Diagram{Kind: kind, Direction: "TD", index: map[string]int{}}
}

// node registers an ID on first sight and upgrades its label/shape when a
// later line carries more detail
func (d *Diagram) node(id, label string, shape Shape) {
	if i, ok := d.index[id]; ok {
		if label != "" && d.Nodes[i].Label == d.Nodes[i].ID {
			d.Nodes[i].Label = label
		}
		if shape != "" && d.Nodes[i].Shape == ShapeRect && shape != ShapeRect {
			d.Nodes[i].Shape = shape
		}
		return
	}
	if label == "" {
		label = id
	}
	if shape == "" {
		shape = ShapeRect
	}
	d.index[id] = len(d.Nodes)
	d.Nodes = append(d.Nodes, Node{ID: id, Label: label, Shape: shape})
}

// Parse interprets a declarative diagram source. The input is arbitrary
// text: an unknown header or a malformed body line returns an error, it
// never panics.
func Parse(source string) (*Diagram, error) {
	lines := contentLines(source)
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty diagram source")
	}

	header := lines[0]
	body := lines[1:]

	switch {
	case strings.HasPrefix(header, "graph ") || strings.HasPrefix(header, "flowchart "):
		return parseFlow(header, body)
	case header == "sequenceDiagram":
		return parseSequence(body)
	case header == "classDiagram":
		return parseClass(body)
	case header == "stateDiagram-v2" || header == "stateDiagram":
		return parseState(body)
	default:
		return nil, fmt.Errorf("unknown diagram grammar: %q", firstWord(header))
	}
}

// contentLines strips blank lines, comments, and indentation
func contentLines(source string) []string {
	var lines []string
	for _, raw := range strings.Split(source, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func firstWord(s string) string {
	if i := strings.IndexByte(s, ' '); i >= 0 {
		return s[:i]
	}
	return s
}

// --- flow / graph ---

func parseFlow(header string, body []string) (*Diagram, error) {
	d := newDiagram(KindFlow)

	dir := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(header, "flowchart"), "graph"))
	switch dir {
	case "TD", "TB":
		d.Direction = "TD"
	case "LR":
		d.Direction = "LR"
	default:
		return nil, fmt.Errorf("unsupported flow direction %q", dir)
	}

	for _, line := range body {
		if err := parseFlowLine(d, line); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// parseFlowLine handles "A[Label] -->|edge| B(Label)" and bare node
// declarations like "A[Label]"
func parseFlowLine(d *Diagram, line string) error {
	parts := strings.Split(line, "-->")
	if len(parts) == 1 {
		id, label, shape, err := parseFlowTerm(line)
		if err != nil {
			return fmt.Errorf("line %q: %w", line, err)
		}
		d.node(id, label, shape)
		return nil
	}

	prev := ""
	for i, part := range parts {
		term := strings.TrimSpace(part)
		edgeLabel := ""

		if i > 0 && strings.HasPrefix(term, "|") {
			end := strings.Index(term[1:], "|")
			if end < 0 {
				return fmt.Errorf("line %q: unterminated edge label", line)
			}
			edgeLabel = term[1 : end+1]
			term = strings.TrimSpace(term[end+2:])
		}

		id, label, shape, err := parseFlowTerm(term)
		if err != nil {
			return fmt.Errorf("line %q: %w", line, err)
		}
		d.node(id, label, shape)

		if i > 0 {
			d.Edges = append(d.Edges, Edge{From: prev, To: id, Label: edgeLabel})
		}
		prev = id
	}
	return nil
}

// parseFlowTerm splits "B(Load Balancer)" into id, label, and shape
func parseFlowTerm(term string) (id, label string, shape Shape, err error) {
	if term == "" {
		return "", "", "", fmt.Errorf("missing node")
	}

	brackets := []struct {
		open, close string
		shape       Shape
	}{
		{"((", "))", ShapeCircle},
		{"[", "]", ShapeRect},
		{"(", ")", ShapeRounded},
		{"{", "}", ShapeDiamond},
	}

	for _, b := range brackets {
		open := strings.Index(term, b.open)
		if open <= 0 {
			continue
		}
		if !strings.HasSuffix(term, b.close) {
			return "", "", "", fmt.Errorf("unbalanced brackets in %q", term)
		}
		id = strings.TrimSpace(term[:open])
		label = term[open+len(b.open) : len(term)-len(b.close)]
		if !validID(id) {
			return "", "", "", fmt.Errorf("invalid node id %q", id)
		}
		return id, label, b.shape, nil
	}

	if !validID(term) {
		return "", "", "", fmt.Errorf("invalid node id %q", term)
	}
	return term, "", "", nil
}

func validID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// --- sequence ---

func parseSequence(body []string) (*Diagram, error) {
	d := newDiagram(KindSequence)

	for _, line := range body {
		if name, ok := strings.CutPrefix(line, "participant "); ok {
			d.node(strings.TrimSpace(name), "", "")
			continue
		}

		arrow, dashed := "->>", false
		idx := strings.Index(line, "->>")
		if dashIdx := strings.Index(line, "-->>"); dashIdx >= 0 && (idx < 0 || dashIdx < idx) {
			arrow, dashed, idx = "-->>", true, dashIdx
		}
		if idx <= 0 {
			return nil, fmt.Errorf("line %q: expected participant->>participant: message", line)
		}

		from := strings.TrimSpace(line[:idx])
		rest := line[idx+len(arrow):]
		colon := strings.Index(rest, ":")
		if colon < 0 {
			return nil, fmt.Errorf("line %q: missing message after colon", line)
		}
		to := strings.TrimSpace(rest[:colon])
		msg := strings.TrimSpace(rest[colon+1:])
		if from == "" || to == "" {
			return nil, fmt.Errorf("line %q: missing participant", line)
		}

		d.node(from, "", "")
		d.node(to, "", "")
		d.Edges = append(d.Edges, Edge{From: from, To: to, Label: msg, Dashed: dashed})
	}
	return d, nil
}

// --- class ---

var classRelations = []string{"<|--", "*--", "o--", "-->", "--"}

func parseClass(body []string) (*Diagram, error) {
	d := newDiagram(KindClass)

	for _, line := range body {
		if name, ok := strings.CutPrefix(line, "class "); ok {
			name = strings.TrimSpace(strings.TrimSuffix(name, "{"))
			if !validID(name) {
				return nil, fmt.Errorf("line %q: invalid class name", line)
			}
			d.node(name, "", "")
			continue
		}

		rel := ""
		idx := -1
		for _, r := range classRelations {
			if i := strings.Index(line, r); i > 0 {
				rel, idx = r, i
				break
			}
		}
		if idx < 0 {
			return nil, fmt.Errorf("line %q: expected a class relation", line)
		}

		from := strings.TrimSpace(line[:idx])
		to := strings.TrimSpace(line[idx+len(rel):])
		// Relation cardinality labels are out of scope; strip any trailing note
		if colon := strings.Index(to, ":"); colon >= 0 {
			to = strings.TrimSpace(to[:colon])
		}
		if !validID(from) || !validID(to) {
			return nil, fmt.Errorf("line %q: invalid class name", line)
		}

		d.node(from, "", "")
		d.node(to, "", "")
		d.Edges = append(d.Edges, Edge{From: from, To: to, Dashed: rel == "<|--"})
	}
	return d, nil
}

// --- state ---

const (
	stateStartID = "__start"
	stateEndID   = "__end"
)

func parseState(body []string) (*Diagram, error) {
	d := newDiagram(KindState)

	for _, line := range body {
		idx := strings.Index(line, "-->")
		if idx <= 0 {
			return nil, fmt.Errorf("line %q: expected state transition", line)
		}

		from := strings.TrimSpace(line[:idx])
		to := strings.TrimSpace(line[idx+3:])
		label := ""
		if colon := strings.Index(to, ":"); colon >= 0 {
			label = strings.TrimSpace(to[colon+1:])
			to = strings.TrimSpace(to[:colon])
		}

		fromID, err := stateID(from, true)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", line, err)
		}
		toID, err := stateID(to, false)
		if err != nil {
			return nil, fmt.Errorf("line %q: %w", line, err)
		}

		d.node(fromID, stateLabel(fromID, from), stateShape(fromID))
		d.node(toID, stateLabel(toID, to), stateShape(toID))
		d.Edges = append(d.Edges, Edge{From: fromID, To: toID, Label: label})
	}
	return d, nil
}

func stateID(name string, source bool) (string, error) {
	if name == "[*]" {
		if source {
			return stateStartID, nil
		}
		return stateEndID, nil
	}
	if !validID(name) {
		return "", fmt.Errorf("invalid state name %q", name)
	}
	return name, nil
}

func stateLabel(id, name string) string {
	if id == stateStartID || id == stateEndID {
		return ""
	}
	return name
}

func stateShape(id string) Shape {
	if id == stateStartID || id == stateEndID {
		return ShapeCircle
	}
	return ShapeRounded
}
