package canvas

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// ElementType enumerates the drawable primitives of the freeform canvas
type ElementType string

const (
	TypeRectangle ElementType = "rectangle"
	TypeEllipse   ElementType = "ellipse"
	TypeDiamond   ElementType = "diamond"
	TypeArrow     ElementType = "arrow"
	TypeLine      ElementType = "line"
	TypeText      ElementType = "text"
	TypeFreedraw  ElementType = "freedraw"
)

// Point is a coordinate relative to its element's origin
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Element is one drawable on the canvas. Deleted elements stay in the
// scene with IsDeleted set so undo history survives serialization.
type Element struct {
	ID              string      `json:"id"`
	Type            ElementType `json:"type"`
	X               float64     `json:"x"`
	Y               float64     `json:"y"`
	Width           float64     `json:"width"`
	Height          float64     `json:"height"`
	Angle           float64     `json:"angle"`
	StrokeColor     string      `json:"strokeColor"`
	BackgroundColor string      `json:"backgroundColor,omitempty"`
	StrokeWidth     float64     `json:"strokeWidth"`
	Points          []Point     `json:"points,omitempty"`
	Text            string      `json:"text,omitempty"`
	FontSize        float64     `json:"fontSize,omitempty"`
	IsDeleted       bool        `json:"isDeleted,omitempty"`
}

// AppState carries the viewport settings saved alongside the elements
type AppState struct {
	ViewBackgroundColor string  `json:"viewBackgroundColor"`
	ScrollX             float64 `json:"scrollX"`
	ScrollY             float64 `json:"scrollY"`
	Zoom                float64 `json:"zoom"`
}

// Scene is the full serialized state of the canvas
type Scene struct {
	Elements []Element `json:"elements"`
	AppState AppState  `json:"appState"`
}

// NewScene returns an empty scene with the default dark viewport
func NewScene() *Scene {
	return &Scene{
		Elements: []Element{},
		AppState: AppState{ViewBackgroundColor: darkBackground, Zoom: 1},
	}
}

// NewElement creates an element with a fresh ID and the default stroke
func NewElement(t ElementType) Element {
	return Element{
		ID:          uuid.New().String(),
		Type:        t,
		StrokeColor: "#ffffff",
		StrokeWidth: 2,
	}
}

// Visible returns the elements that should be drawn
func (s *Scene) Visible() []Element {
	out := make([]Element, 0, len(s.Elements))
	for _, el := range s.Elements {
		if !el.IsDeleted {
			out = append(out, el)
		}
	}
	return out
}

// Encode serializes the scene for persistence and submission
func (s *Scene) Encode() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode scene: %w", err)
	}
	return string(data), nil
}

// DecodeScene restores a scene from its serialized form. Malformed or
// empty input degrades to an empty scene rather than failing: a corrupt
// draft must never lock the user out of the canvas.
func DecodeScene(data string) *Scene {
	if data == "" {
		return NewScene()
	}

	var scene Scene
	if err := json.Unmarshal([]byte(data), &scene); err != nil {
		slog.Warn("discarding malformed scene data", "error", err)
		return NewScene()
	}
	if scene.Elements == nil {
		scene.Elements = []Element{}
	}
	if scene.AppState.Zoom == 0 {
		scene.AppState.Zoom = 1
	}
	if scene.AppState.ViewBackgroundColor == "" {
		scene.AppState.ViewBackgroundColor = darkBackground
	}
	return &scene
}
