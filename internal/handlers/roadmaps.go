package handlers

import (
	"net/http"
	"strings"

	"github.com/ascendhq/ascend-go/internal/game"
	"github.com/ascendhq/ascend-go/internal/generate"
	"github.com/ascendhq/ascend-go/internal/middleware"
	"github.com/ascendhq/ascend-go/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateRoadmapRequest is the body for AI roadmap generation.
type CreateRoadmapRequest struct {
	Goal          string  `json:"goal"`
	DurationWeeks int     `json:"duration_weeks"`
	Difficulty    string  `json:"difficulty"`
	HoursPerDay   float64 `json:"hours_per_day"`
	SkillLevel    string  `json:"skill_level"`
}

func validDifficulty(d string) bool {
	return d == "easy" || d == "medium" || d == "hard"
}

func validSkillLevel(s string) bool {
	return s == "beginner" || s == "intermediate" || s == "advanced"
}

func truncateGoal(goal string) string {
	goal = strings.TrimSpace(goal)
	if len(goal) > 500 {
		return goal[:500]
	}
	return goal
}

// CreateRoadmap generates a new AI roadmap. The generation call is
// synchronous and may take tens of seconds; the generator retries once
// internally on structurally invalid output.
func CreateRoadmap(db *pgxpool.Pool, gen generate.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var req CreateRoadmapRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		goal := truncateGoal(req.Goal)
		if len(goal) < 3 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Goal must be at least 3 characters"})
			return
		}
		if req.DurationWeeks < 1 || req.DurationWeeks > 52 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Duration must be 1-52 weeks"})
			return
		}
		if !validDifficulty(req.Difficulty) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid difficulty"})
			return
		}
		if req.HoursPerDay < 0.5 || req.HoursPerDay > 16 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Hours per day must be 0.5-16"})
			return
		}
		if !validSkillLevel(req.SkillLevel) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid skill level"})
			return
		}

		generated, err := gen.GenerateRoadmap(c.Request.Context(), generate.RoadmapInput{
			Goal:          goal,
			DurationWeeks: req.DurationWeeks,
			Difficulty:    req.Difficulty,
			HoursPerDay:   req.HoursPerDay,
			SkillLevel:    req.SkillLevel,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "AI roadmap generation failed. Please try again."})
			return
		}

		title := strings.TrimSpace(generated.Title)
		if title == "" {
			title = generate.FallbackTitle(goal)
		}

		planRaw, err := encodePlan(generated.WeeklyPlan)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode plan"})
			return
		}

		var roadmap models.Roadmap
		err = db.QueryRow(c.Request.Context(), `
			INSERT INTO roadmaps (id, user_id, goal, title, skill_level, difficulty, duration, weekly_plan)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id, user_id, goal, title, skill_level, difficulty, duration,
				progress, is_public, is_custom, star_count, created_at, updated_at
		`, uuid.New(), userID, goal, title, req.SkillLevel, req.Difficulty, req.DurationWeeks, planRaw).Scan(
			&roadmap.ID, &roadmap.UserID, &roadmap.Goal, &roadmap.Title, &roadmap.SkillLevel,
			&roadmap.Difficulty, &roadmap.Duration, &roadmap.Progress, &roadmap.IsPublic,
			&roadmap.IsCustom, &roadmap.StarCount, &roadmap.CreatedAt, &roadmap.UpdatedAt,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save roadmap", "details": err.Error()})
			return
		}

		roadmap.WeeklyPlan = generated.WeeklyPlan
		c.JSON(http.StatusCreated, gin.H{"roadmap": roadmap})
	}
}

// ListRoadmaps returns the caller's roadmaps, newest first, without the
// plan body. Roadmaps saved before titles existed get a derived one.
func ListRoadmaps(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		rows, err := db.Query(c.Request.Context(), `
			SELECT id, goal, title, skill_level, difficulty, duration,
				progress, is_public, is_custom, star_count, created_at
			FROM roadmaps
			WHERE user_id = $1
			ORDER BY created_at DESC
			LIMIT 20
		`, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query roadmaps", "details": err.Error()})
			return
		}
		defer rows.Close()

		roadmaps := []models.RoadmapSummary{}
		for rows.Next() {
			var rm models.RoadmapSummary
			err := rows.Scan(
				&rm.ID, &rm.Goal, &rm.Title, &rm.SkillLevel, &rm.Difficulty, &rm.Duration,
				&rm.Progress, &rm.IsPublic, &rm.IsCustom, &rm.StarCount, &rm.CreatedAt,
			)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse roadmap data"})
				return
			}
			if strings.TrimSpace(rm.Title) == "" {
				rm.Title = generate.FallbackTitle(rm.Goal)
			}
			roadmaps = append(roadmaps, rm)
		}

		c.JSON(http.StatusOK, gin.H{"roadmaps": roadmaps})
	}
}

// CreateCustomRoadmapRequest is the body for direct plan authoring.
type CreateCustomRoadmapRequest struct {
	Title      string            `json:"title"`
	Goal       string            `json:"goal"`
	Difficulty string            `json:"difficulty"`
	SkillLevel string            `json:"skill_level"`
	WeeklyPlan []models.PlanWeek `json:"weekly_plan"`
}

// CreateCustomRoadmap stores a user-authored plan. Task XP is always
// recomputed server-side; any XP values in the request are discarded.
// The roadmap is flagged custom so completions feed custom_xp only.
func CreateCustomRoadmap(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var req CreateCustomRoadmapRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
			return
		}

		title := strings.TrimSpace(req.Title)
		goal := truncateGoal(req.Goal)

		if title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title is required"})
			return
		}
		if goal == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Goal is required"})
			return
		}
		if !validDifficulty(req.Difficulty) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid difficulty"})
			return
		}
		if !validSkillLevel(req.SkillLevel) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid skill level"})
			return
		}
		if len(req.WeeklyPlan) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "At least one week is required"})
			return
		}
		if len(req.WeeklyPlan) > 52 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Maximum 52 weeks allowed"})
			return
		}

		plan, err := game.SanitizeCustomPlan(req.WeeklyPlan, req.Difficulty)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		planRaw, err := encodePlan(plan)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode plan"})
			return
		}

		if len(title) > 200 {
			title = title[:200]
		}

		var roadmap models.Roadmap
		err = db.QueryRow(c.Request.Context(), `
			INSERT INTO roadmaps (id, user_id, goal, title, skill_level, difficulty, duration, weekly_plan, is_custom)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true)
			RETURNING id, user_id, goal, title, skill_level, difficulty, duration,
				progress, is_public, is_custom, star_count, created_at, updated_at
		`, uuid.New(), userID, goal, title, req.SkillLevel, req.Difficulty, len(plan), planRaw).Scan(
			&roadmap.ID, &roadmap.UserID, &roadmap.Goal, &roadmap.Title, &roadmap.SkillLevel,
			&roadmap.Difficulty, &roadmap.Duration, &roadmap.Progress, &roadmap.IsPublic,
			&roadmap.IsCustom, &roadmap.StarCount, &roadmap.CreatedAt, &roadmap.UpdatedAt,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save roadmap", "details": err.Error()})
			return
		}

		roadmap.WeeklyPlan = plan
		c.JSON(http.StatusCreated, gin.H{"roadmap": roadmap})
	}
}
