package domain

import "time"

// FeedbackCooldown is the display-side estimate of how long the server
// holds feedback after a submission. The server enforces the real window;
// this value only drives the client countdown.
const FeedbackCooldown = 300 * time.Second

// ResponseScore is the per-dimension breakdown of a scored submission.
// Each dimension is on a 0-10 scale.
type ResponseScore struct {
	Clarity              float64 `json:"clarity"`
	ConstraintsAwareness float64 `json:"constraints_awareness"`
	TradeOffReasoning    float64 `json:"trade_off_reasoning"`
	FailureAnticipation  float64 `json:"failure_anticipation"`
	Simplicity           float64 `json:"simplicity"`
}

// TaskResponse is a durable submission. It is created once at submit time
// and never mutated by the client; AI feedback is appended server-side
// after a cooldown and picked up by a re-fetch.
type TaskResponse struct {
	ID                string        `json:"id"`
	UserID            string        `json:"user_id"`
	TaskID            string        `json:"task_id"`
	Assumptions       string        `json:"assumptions"`
	Architecture      string        `json:"architecture"`
	ArchitectureData  string        `json:"architecture_data,omitempty"`
	ArchitectureImage string        `json:"architecture_image,omitempty"`
	TradeOffs         string        `json:"trade_offs"`
	FailureScenarios  string        `json:"failure_scenarios"`
	SubmittedAt       time.Time     `json:"submitted_at"`
	Score             float64       `json:"score"`
	ScoreBreakdown    ResponseScore `json:"score_breakdown"`
	AIFeedback        string        `json:"ai_feedback,omitempty"`
	AIUnlockedAt      *time.Time    `json:"ai_unlocked_at,omitempty"`
}

// HasFeedback reports whether the server has already attached feedback
func (r *TaskResponse) HasFeedback() bool {
	return r.AIFeedback != ""
}

// CooldownRemaining returns the estimated time left until feedback may be
// requested, measured against now. Never negative; zero once elapsed or
// once feedback is present.
func (r *TaskResponse) CooldownRemaining(now time.Time) time.Duration {
	if r.HasFeedback() {
		return 0
	}
	elapsed := now.Sub(r.SubmittedAt)
	if elapsed >= FeedbackCooldown {
		return 0
	}
	return FeedbackCooldown - elapsed
}
