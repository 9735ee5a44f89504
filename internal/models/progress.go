package models

import (
	"time"

	"github.com/google/uuid"
)

// TaskProgress is the completion state of one plan task for one user.
// (user_id, roadmap_id, task_title) is unique, which makes the row the
// arbiter under concurrent completion toggles: two racing inserts
// resolve to a constraint violation instead of a double XP award.
type TaskProgress struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`
	RoadmapID   uuid.UUID  `json:"roadmap_id" db:"roadmap_id"`
	Week        int        `json:"week" db:"week"`
	Day         string     `json:"day" db:"day"`
	TaskTitle   string     `json:"task_title" db:"task_title"`
	Completed   bool       `json:"completed" db:"completed"`
	XPEarned    int        `json:"xp_earned" db:"xp_earned"`
	Category    string     `json:"category" db:"category"`
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}
