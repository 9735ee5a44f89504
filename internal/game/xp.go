// Package game holds the pure arithmetic core of the ledger: leveling,
// task XP computation, streaks, and weekly-plan scanning. Nothing here
// touches storage, so every rule is directly testable.
package game

import (
	"math"

	"github.com/ascendhq/ascend-go/internal/models"
)

// MaxTaskXP is the hard cap on XP a single task can be worth.
const MaxTaskXP = 300

// Task duration bounds in minutes.
const (
	MinTaskMinutes = 5
	MaxTaskMinutes = 480
)

// difficultyMultiplier maps roadmap difficulty to XP per minute.
// Medium is the fallback for unknown values.
var difficultyMultiplier = map[string]float64{
	"easy":   0.8,
	"medium": 1.2,
	"hard":   1.8,
}

// LevelForXP derives a user's level from total XP:
// level = floor(0.1 * sqrt(totalXP)). The formula is monotonic, so the
// level is always recomputed from the new total, never tracked
// incrementally.
func LevelForXP(totalXP int) int {
	if totalXP <= 0 {
		return 0
	}
	return int(math.Floor(0.1 * math.Sqrt(float64(totalXP))))
}

// TaskXP computes the server-authoritative XP value of a task from its
// duration and the roadmap difficulty, clamped to [1, MaxTaskXP].
// Client-supplied XP values are never trusted.
func TaskXP(durationMinutes int, difficulty string) int {
	mult, ok := difficultyMultiplier[difficulty]
	if !ok {
		mult = difficultyMultiplier["medium"]
	}
	xp := int(math.Round(float64(durationMinutes) * mult))
	if xp < 1 {
		return 1
	}
	if xp > MaxTaskXP {
		return MaxTaskXP
	}
	return xp
}

// ClampTaskMinutes bounds a client-supplied duration to the allowed
// range, defaulting to 30 when the value is missing or nonsense.
func ClampTaskMinutes(minutes int) int {
	if minutes <= 0 {
		minutes = 30
	}
	if minutes < MinTaskMinutes {
		return MinTaskMinutes
	}
	if minutes > MaxTaskMinutes {
		return MaxTaskMinutes
	}
	return minutes
}

// CategoryColumn maps a task category to its users-table XP column.
// The bool result guards SQL built from this value: only the four known
// columns ever come back.
func CategoryColumn(category string) (string, bool) {
	switch category {
	case models.CategoryBody:
		return "body_xp", true
	case models.CategorySkills:
		return "skills_xp", true
	case models.CategoryMindset:
		return "mindset_xp", true
	case models.CategoryCareer:
		return "career_xp", true
	}
	return "", false
}
