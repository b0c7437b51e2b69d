package diagram

import "strings"

// Template is a starter snippet a user can insert verbatim
type Template struct {
	Name string
	Code string
}

// Templates returns the starter snippets offered by the editor, one per
// supported grammar
func Templates() []Template {
	return []Template{
		{Name: "Flowchart", Code: "graph TD\n  Start --> Stop"},
		{Name: "Sequence", Code: "sequenceDiagram\n  Alice->>John: Hello John, how are you?"},
		{Name: "Class", Code: "classDiagram\n  Class01 <|-- AveryLongClass"},
		{Name: "State", Code: "stateDiagram-v2\n  [*] --> State1"},
	}
}

// DefaultSource is the snippet an empty editor starts from
const DefaultSource = `graph TD
    A[User] --> B(Load Balancer)
    B --> C{Strategy}
    C -->|Round Robin| D[Server 1]
    C -->|Least Conn| E[Server 2]`

// LooksLikeDiagram reports whether text plausibly declares one of the
// supported grammars. Used by read-only display to decide between
// rendering and plain text; detection is purely on the header line, so
// the result is deterministic for a given input.
func LooksLikeDiagram(text string) bool {
	lines := contentLines(text)
	if len(lines) == 0 {
		return false
	}
	header := lines[0]
	switch {
	case strings.HasPrefix(header, "graph "), strings.HasPrefix(header, "flowchart "):
		return true
	case header == "sequenceDiagram", header == "classDiagram":
		return true
	case header == "stateDiagram-v2", header == "stateDiagram":
		return true
	}
	return false
}
