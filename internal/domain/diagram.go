package domain

// DiagramMode selects which representation of the architecture section is
// active. Exactly one mode is live per editing session; switching modes
// discards the other representation's payload.
type DiagramMode string

const (
	// DiagramModeNone means the architecture section is untouched
	DiagramModeNone DiagramMode = ""
	// DiagramModeText holds declarative diagram-description text
	DiagramModeText DiagramMode = "text"
	// DiagramModeScene holds a serialized freeform scene graph
	DiagramModeScene DiagramMode = "scene"
)

// DiagramPayload is the tagged union over the two architecture
// representations. The zero value is the untouched state. Mutual
// exclusivity is structural: the setters clear the other branch, so a
// payload can never carry both text and a scene at once.
type DiagramPayload struct {
	mode      DiagramMode
	text      string
	sceneJSON string
	rasterURI string
}

// TextDiagram builds a payload in declarative-text mode
func TextDiagram(text string) DiagramPayload {
	return DiagramPayload{mode: DiagramModeText, text: text}
}

// SceneDiagram builds a payload in freeform-scene mode. The raster URI is
// a derived artifact and may be empty when rasterization failed.
func SceneDiagram(sceneJSON, rasterURI string) DiagramPayload {
	return DiagramPayload{mode: DiagramModeScene, sceneJSON: sceneJSON, rasterURI: rasterURI}
}

// Mode returns the active representation
func (p DiagramPayload) Mode() DiagramMode { return p.mode }

// IsEmpty reports whether the section is untouched
func (p DiagramPayload) IsEmpty() bool { return p.mode == DiagramModeNone }

// Text returns the declarative source, empty unless in text mode
func (p DiagramPayload) Text() string {
	if p.mode != DiagramModeText {
		return ""
	}
	return p.text
}

// SceneJSON returns the serialized scene, empty unless in scene mode
func (p DiagramPayload) SceneJSON() string {
	if p.mode != DiagramModeScene {
		return ""
	}
	return p.sceneJSON
}

// RasterURI returns the derived snapshot data URI, empty unless in scene
// mode and a snapshot was produced
func (p DiagramPayload) RasterURI() string {
	if p.mode != DiagramModeScene {
		return ""
	}
	return p.rasterURI
}
