package workspace

import (
	"time"

	"github.com/cortexhq/cortex/internal/domain"
)

// Draft is the persisted form of an in-progress workspace. It lives under
// the drafts collection keyed by task ID and survives restarts.
type Draft struct {
	TaskID           string             `json:"task_id"`
	Assumptions      string             `json:"assumptions"`
	DiagramMode      domain.DiagramMode `json:"diagram_mode"`
	ArchitectureText string             `json:"architecture_text,omitempty"`
	SceneJSON        string             `json:"scene_json,omitempty"`
	RasterURI        string             `json:"raster_uri,omitempty"`
	TradeOffs        string             `json:"trade_offs"`
	FailureScenarios string             `json:"failure_scenarios"`
	SavedAt          time.Time          `json:"saved_at"`
}

func (d Draft) diagram() domain.DiagramPayload {
	switch d.DiagramMode {
	case domain.DiagramModeText:
		return domain.TextDiagram(d.ArchitectureText)
	case domain.DiagramModeScene:
		return domain.SceneDiagram(d.SceneJSON, d.RasterURI)
	default:
		return domain.DiagramPayload{}
	}
}

func draftFrom(taskID string, assumptions, tradeOffs, failures string, diagram domain.DiagramPayload, now time.Time) Draft {
	return Draft{
		TaskID:           taskID,
		Assumptions:      assumptions,
		DiagramMode:      diagram.Mode(),
		ArchitectureText: diagram.Text(),
		SceneJSON:        diagram.SceneJSON(),
		RasterURI:        diagram.RasterURI(),
		TradeOffs:        tradeOffs,
		FailureScenarios: failures,
		SavedAt:          now,
	}
}
