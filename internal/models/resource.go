package models

import (
	"time"

	"github.com/google/uuid"
)

// Resource types a user can attach to a roadmap module.
var ValidResourceTypes = []string{"video", "audio", "website", "article", "book", "other"}

// ValidResourceType reports whether t is an allowed resource type.
func ValidResourceType(t string) bool {
	for _, v := range ValidResourceTypes {
		if v == t {
			return true
		}
	}
	return false
}

// MaxResourcesPerWeek caps attachments per roadmap module (week).
const MaxResourcesPerWeek = 8

// TaskResource is a link a user pinned to one module of their roadmap.
type TaskResource struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	RoadmapID uuid.UUID `json:"roadmap_id" db:"roadmap_id"`
	Week      int       `json:"week" db:"week"`
	Type      string    `json:"type" db:"type"`
	URL       string    `json:"url" db:"url"`
	Label     string    `json:"label" db:"label"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
