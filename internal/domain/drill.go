package domain

import "time"

// DrillType identifies the format of a quick-practice drill
type DrillType string

const (
	DrillSpotAssumptions DrillType = "spot_assumptions"
	DrillRankFailures    DrillType = "rank_failures"
	DrillPredictScaling  DrillType = "predict_scaling"
	DrillChooseTradeoffs DrillType = "choose_tradeoffs"
)

// Drill is a single multiple-choice practice question. CorrectAnswer and
// Explanation are only populated after the drill has been answered.
type Drill struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	DrillType     DrillType `json:"drill_type"`
	Question      string    `json:"question"`
	Options       []string  `json:"options"`
	CorrectAnswer string    `json:"correct_answer,omitempty"`
	Explanation   string    `json:"explanation,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
