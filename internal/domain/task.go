package domain

import (
	"strings"
	"time"
)

// Role is the engineering role a task targets
type Role string

const (
	RoleBackend   Role = "Backend Engineer"
	RoleFrontend  Role = "Frontend Engineer"
	RoleFullstack Role = "Fullstack Engineer"
	RoleSystems   Role = "Systems Engineer"
	RoleData      Role = "Data Engineer"
	RoleDevOps    Role = "DevOps Engineer"
	RoleSecurity  Role = "Security Engineer"
)

// Roles lists the selectable roles in display order
func Roles() []Role {
	return []Role{
		RoleBackend, RoleFrontend, RoleFullstack, RoleSystems,
		RoleData, RoleDevOps, RoleSecurity,
	}
}

// Difficulty is the tier of a task or drill
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Task is a scenario definition served by the platform. Tasks are
// immutable from the client's perspective: fetched, never mutated.
type Task struct {
	ID                   string     `json:"id"`
	Title                string     `json:"title"`
	Description          string     `json:"description"`
	Role                 Role       `json:"role"`
	Difficulty           Difficulty `json:"difficulty"`
	EstimatedTimeMinutes int        `json:"estimated_time_minutes"`
	Scenario             string     `json:"scenario"`
	Prompts              []string   `json:"prompts"`
	CreatedAt            time.Time  `json:"created_at"`
}

// Constraints splits the description into its non-empty constraint lines
func (t *Task) Constraints() []string {
	var lines []string
	for _, line := range strings.Split(t.Description, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
