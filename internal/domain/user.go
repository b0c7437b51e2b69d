package domain

import "time"

// User is the signed-in identity as the server reports it
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	SelectedRole *Role     `json:"selected_role"`
	CreatedAt    time.Time `json:"created_at"`
	LastLogin    time.Time `json:"last_login"`
}

// ProgressStats is a read-only projection of the user's aggregate progress
type ProgressStats struct {
	UserID              string  `json:"user_id"`
	TotalTasksCompleted int     `json:"total_tasks_completed"`
	CurrentStreak       int     `json:"current_streak"`
	LongestStreak       int     `json:"longest_streak"`
	LastActivityDate    string  `json:"last_activity_date"`
	TotalScore          float64 `json:"total_score"`
	AverageScore        float64 `json:"average_score"`
}
