package handlers

import (
	"net/http"
	"strings"

	"github.com/ascendhq/ascend-go/internal/generate"
	"github.com/ascendhq/ascend-go/internal/middleware"
	"github.com/ascendhq/ascend-go/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return uuid.Nil, false
	}
	return id, true
}

func scanRoadmap(row pgx.Row) (*models.Roadmap, []byte, error) {
	var rm models.Roadmap
	var planRaw []byte
	err := row.Scan(
		&rm.ID, &rm.UserID, &rm.Goal, &rm.Title, &rm.SkillLevel, &rm.Difficulty,
		&rm.Duration, &planRaw, &rm.Progress, &rm.IsPublic, &rm.IsCustom,
		&rm.StarCount, &rm.CreatedAt, &rm.UpdatedAt,
	)
	return &rm, planRaw, err
}

const roadmapColumns = `id, user_id, goal, title, skill_level, difficulty, duration,
	weekly_plan, progress, is_public, is_custom, star_count, created_at, updated_at`

// GetRoadmap returns one of the caller's roadmaps with its full plan
// and per-task progress. Legacy roadmaps without a title get one
// backfilled lazily; a failed title call is non-fatal.
func GetRoadmap(db *pgxpool.Pool, gen generate.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		roadmapID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		roadmap, planRaw, err := scanRoadmap(db.QueryRow(c.Request.Context(),
			`SELECT `+roadmapColumns+` FROM roadmaps WHERE id = $1 AND user_id = $2`,
			roadmapID, userID))
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Roadmap not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query roadmap", "details": err.Error()})
			}
			return
		}

		if roadmap.WeeklyPlan, err = decodePlan(planRaw); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse roadmap plan"})
			return
		}

		if strings.TrimSpace(roadmap.Title) == "" {
			if title, err := gen.ExtractTitle(c.Request.Context(), roadmap.Goal); err == nil && title != "" {
				if _, err := db.Exec(c.Request.Context(),
					`UPDATE roadmaps SET title = $1, updated_at = NOW() WHERE id = $2`,
					title, roadmap.ID); err == nil {
					roadmap.Title = title
				}
			}
		}

		rows, err := db.Query(c.Request.Context(), `
			SELECT id, user_id, roadmap_id, week, day, task_title, completed, xp_earned, category, completed_at
			FROM task_progress
			WHERE user_id = $1 AND roadmap_id = $2
		`, userID, roadmapID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query task progress", "details": err.Error()})
			return
		}
		defer rows.Close()

		progress := []models.TaskProgress{}
		for rows.Next() {
			var tp models.TaskProgress
			err := rows.Scan(
				&tp.ID, &tp.UserID, &tp.RoadmapID, &tp.Week, &tp.Day, &tp.TaskTitle,
				&tp.Completed, &tp.XPEarned, &tp.Category, &tp.CompletedAt,
			)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse task progress"})
				return
			}
			progress = append(progress, tp)
		}

		c.JSON(http.StatusOK, gin.H{"roadmap": roadmap, "task_progress": progress})
	}
}

// RegenerateRoadmapRequest is the body for a plan regeneration.
type RegenerateRoadmapRequest struct {
	Difficulty  string  `json:"difficulty"`
	HoursPerDay float64 `json:"hours_per_day"`
	SkillLevel  string  `json:"skill_level"`
}

// RegenerateRoadmap replaces the weekly plan through the generator,
// resets progress to zero, and wipes all task-progress rows. This is a
// full reset, not a merge.
func RegenerateRoadmap(db *pgxpool.Pool, gen generate.Generator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		roadmapID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req RegenerateRoadmapRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			req = RegenerateRoadmapRequest{}
		}

		roadmap, _, err := scanRoadmap(db.QueryRow(c.Request.Context(),
			`SELECT `+roadmapColumns+` FROM roadmaps WHERE id = $1 AND user_id = $2`,
			roadmapID, userID))
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Roadmap not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query roadmap", "details": err.Error()})
			}
			return
		}

		difficulty := roadmap.Difficulty
		if validDifficulty(req.Difficulty) {
			difficulty = req.Difficulty
		}
		hoursPerDay := req.HoursPerDay
		if hoursPerDay < 0.5 || hoursPerDay > 16 {
			hoursPerDay = 1
		}
		skillLevel := roadmap.SkillLevel
		if validSkillLevel(req.SkillLevel) {
			skillLevel = req.SkillLevel
		}

		generated, err := gen.GenerateRoadmap(c.Request.Context(), generate.RoadmapInput{
			Goal:          roadmap.Goal,
			DurationWeeks: roadmap.Duration,
			Difficulty:    difficulty,
			HoursPerDay:   hoursPerDay,
			SkillLevel:    skillLevel,
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "AI roadmap generation failed. Please try again."})
			return
		}

		planRaw, err := encodePlan(generated.WeeklyPlan)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to encode plan"})
			return
		}

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		_, err = tx.Exec(c.Request.Context(), `
			UPDATE roadmaps
			SET weekly_plan = $1, difficulty = $2, progress = 0, updated_at = NOW()
			WHERE id = $3
		`, planRaw, difficulty, roadmapID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update roadmap", "details": err.Error()})
			return
		}

		_, err = tx.Exec(c.Request.Context(),
			`DELETE FROM task_progress WHERE user_id = $1 AND roadmap_id = $2`,
			userID, roadmapID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear task progress", "details": err.Error()})
			return
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		roadmap.WeeklyPlan = generated.WeeklyPlan
		roadmap.Difficulty = difficulty
		roadmap.Progress = 0
		c.JSON(http.StatusOK, gin.H{"roadmap": roadmap})
	}
}

type cascadeStep struct {
	stmt string
	args []any
}

// roadmapCascade returns the ordered deletes that remove a roadmap and
// its dependent rows. Children first, the roadmap row last. Stars are
// keyed by roadmap only, so that delete binds a single parameter; each
// statement must reference every argument it is given or Postgres
// rejects the Parse (42P18, undeterminable parameter type).
func roadmapCascade(userID, roadmapID uuid.UUID) []cascadeStep {
	return []cascadeStep{
		{`DELETE FROM task_progress WHERE user_id = $1 AND roadmap_id = $2`, []any{userID, roadmapID}},
		{`DELETE FROM task_resources WHERE user_id = $1 AND roadmap_id = $2`, []any{userID, roadmapID}},
		{`DELETE FROM roadmap_stars WHERE roadmap_id = $1`, []any{roadmapID}},
		{`DELETE FROM roadmaps WHERE id = $1 AND user_id = $2`, []any{roadmapID, userID}},
	}
}

// DeleteRoadmap removes a roadmap and reconciles the ledger first.
// Order matters: sum completed XP by category, reverse it against the
// user (each field floor-clamped independently), then delete progress
// rows, resources, and finally the roadmap itself. Reversing before
// deleting the rows means a retried cascade can never sum wrongly.
//
// Custom roadmaps skip the reversal: their XP never touched total_xp or
// the category fields, and earned custom_xp is kept as a permanent
// personal record.
func DeleteRoadmap(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		roadmapID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		var isCustom bool
		err = tx.QueryRow(c.Request.Context(),
			`SELECT is_custom FROM roadmaps WHERE id = $1 AND user_id = $2`,
			roadmapID, userID).Scan(&isCustom)
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Roadmap not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query roadmap", "details": err.Error()})
			}
			return
		}

		xpByCategory := map[string]int{}
		totalToDeduct := 0

		rows, err := tx.Query(c.Request.Context(), `
			SELECT category, COALESCE(SUM(xp_earned), 0)
			FROM task_progress
			WHERE user_id = $1 AND roadmap_id = $2 AND completed = true
			GROUP BY category
		`, userID, roadmapID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sum earned XP", "details": err.Error()})
			return
		}
		for rows.Next() {
			var category string
			var sum int
			if err := rows.Scan(&category, &sum); err != nil {
				rows.Close()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse XP sums"})
				return
			}
			xpByCategory[category] = sum
			totalToDeduct += sum
		}
		rows.Close()

		var user models.User
		if !isCustom && totalToDeduct > 0 {
			// Each field clamps at zero on its own; drift between total and
			// category sums from earlier partial failures is tolerated
			// rather than corrected here.
			err = tx.QueryRow(c.Request.Context(), `
				UPDATE users
				SET total_xp = GREATEST(0, total_xp - $1),
					body_xp = GREATEST(0, body_xp - $2),
					skills_xp = GREATEST(0, skills_xp - $3),
					mindset_xp = GREATEST(0, mindset_xp - $4),
					career_xp = GREATEST(0, career_xp - $5),
					level = FLOOR(0.1 * SQRT(GREATEST(0, total_xp - $1)))::int,
					updated_at = NOW()
				WHERE id = $6
				RETURNING total_xp, level, body_xp, skills_xp, mindset_xp, career_xp
			`, totalToDeduct,
				xpByCategory[models.CategoryBody],
				xpByCategory[models.CategorySkills],
				xpByCategory[models.CategoryMindset],
				xpByCategory[models.CategoryCareer],
				userID).Scan(
				&user.TotalXP, &user.Level, &user.BodyXP, &user.SkillsXP, &user.MindsetXP, &user.CareerXP,
			)
		} else {
			err = tx.QueryRow(c.Request.Context(), `
				SELECT total_xp, level, body_xp, skills_xp, mindset_xp, career_xp
				FROM users WHERE id = $1
			`, userID).Scan(
				&user.TotalXP, &user.Level, &user.BodyXP, &user.SkillsXP, &user.MindsetXP, &user.CareerXP,
			)
		}
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user XP", "details": err.Error()})
			}
			return
		}

		for _, step := range roadmapCascade(userID, roadmapID) {
			if _, err := tx.Exec(c.Request.Context(), step.stmt, step.args...); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete roadmap", "details": err.Error()})
				return
			}
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		deducted := totalToDeduct
		if isCustom {
			deducted = 0
		}

		c.JSON(http.StatusOK, gin.H{
			"success":        true,
			"xp_deducted":    deducted,
			"new_total_xp":   user.TotalXP,
			"new_level":      user.Level,
			"new_body_xp":    user.BodyXP,
			"new_skills_xp":  user.SkillsXP,
			"new_mindset_xp": user.MindsetXP,
			"new_career_xp":  user.CareerXP,
		})
	}
}

// SetVisibilityRequest is the body for the visibility toggle.
type SetVisibilityRequest struct {
	IsPublic *bool `json:"is_public" binding:"required"`
}

// SetRoadmapVisibility toggles a roadmap between public and private.
// Owner only. Going private does not remove existing stars or follows.
func SetRoadmapVisibility(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		roadmapID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		var req SetVisibilityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "is_public must be a boolean"})
			return
		}

		var isPublic bool
		err := db.QueryRow(c.Request.Context(), `
			UPDATE roadmaps SET is_public = $1, updated_at = NOW()
			WHERE id = $2 AND user_id = $3
			RETURNING is_public
		`, *req.IsPublic, roadmapID, userID).Scan(&isPublic)
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Roadmap not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update visibility", "details": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"is_public": isPublic})
	}
}

// GetPublicRoadmap returns a public roadmap with creator info. No auth
// required; private roadmaps read as not found.
func GetPublicRoadmap(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		roadmapID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		roadmap, planRaw, err := scanRoadmap(db.QueryRow(c.Request.Context(),
			`SELECT `+roadmapColumns+` FROM roadmaps WHERE id = $1 AND is_public = true`,
			roadmapID))
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Roadmap not found or is private"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query roadmap", "details": err.Error()})
			}
			return
		}

		if roadmap.WeeklyPlan, err = decodePlan(planRaw); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse roadmap plan"})
			return
		}

		var creatorID uuid.UUID
		var creatorName string
		var creatorLevel int
		err = db.QueryRow(c.Request.Context(),
			`SELECT id, name, level FROM users WHERE id = $1`, roadmap.UserID,
		).Scan(&creatorID, &creatorName, &creatorLevel)

		var creator gin.H
		if err == nil {
			creator = gin.H{"user_id": creatorID, "name": creatorName, "level": creatorLevel}
		}

		c.JSON(http.StatusOK, gin.H{"roadmap": roadmap, "creator": creator})
	}
}
