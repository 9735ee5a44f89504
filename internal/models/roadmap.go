package models

import (
	"time"

	"github.com/google/uuid"
)

// Task categories. Every plan task carries exactly one, and each maps to
// its own XP counter on the user.
const (
	CategoryBody    = "Body"
	CategorySkills  = "Skills"
	CategoryMindset = "Mindset"
	CategoryCareer  = "Career"
)

// ValidCategory reports whether cat is one of the four task categories.
func ValidCategory(cat string) bool {
	switch cat {
	case CategoryBody, CategorySkills, CategoryMindset, CategoryCareer:
		return true
	}
	return false
}

// DayNames are the seven day labels used in every weekly plan, in order.
var DayNames = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// ValidDayName reports whether day is one of the seven plan day labels.
func ValidDayName(day string) bool {
	for _, d := range DayNames {
		if d == day {
			return true
		}
	}
	return false
}

// PlanTask is a single task inside a roadmap's weekly plan. The title is
// the natural key for progress lookups, so it must be unique within the
// roadmap. XP is computed server-side and never trusted from a client.
type PlanTask struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes"`
	XP              int    `json:"xp"`
	Category        string `json:"category"`
}

// PlanDay is one named day of a plan week.
type PlanDay struct {
	Day   string     `json:"day"`
	Tasks []PlanTask `json:"tasks"`
}

// PlanWeek is one week of a roadmap: a focus, a milestone, and 7 days.
type PlanWeek struct {
	Week      int       `json:"week"`
	Focus     string    `json:"focus"`
	Milestone string    `json:"milestone"`
	Days      []PlanDay `json:"days"`
}

// Roadmap is a plan owned by exactly one user. IsCustom is immutable
// after creation and decides which XP pool completions are credited to.
type Roadmap struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"user_id" db:"user_id"`
	Goal       string     `json:"goal" db:"goal"`
	Title      string     `json:"title" db:"title"`
	SkillLevel string     `json:"skill_level" db:"skill_level"`
	Difficulty string     `json:"difficulty" db:"difficulty"`
	Duration   int        `json:"duration" db:"duration"`
	WeeklyPlan []PlanWeek `json:"weekly_plan" db:"weekly_plan"`
	Progress   int        `json:"progress" db:"progress"`
	IsPublic   bool       `json:"is_public" db:"is_public"`
	IsCustom   bool       `json:"is_custom" db:"is_custom"`
	StarCount  int        `json:"star_count" db:"star_count"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
}

// RoadmapSummary is the list/profile card shape, without the plan body.
type RoadmapSummary struct {
	ID         uuid.UUID `json:"id"`
	Goal       string    `json:"goal"`
	Title      string    `json:"title"`
	SkillLevel string    `json:"skill_level"`
	Difficulty string    `json:"difficulty"`
	Duration   int       `json:"duration"`
	Progress   int       `json:"progress"`
	IsPublic   bool      `json:"is_public"`
	IsCustom   bool      `json:"is_custom"`
	StarCount  int       `json:"star_count"`
	CreatedAt  time.Time `json:"created_at"`
}
