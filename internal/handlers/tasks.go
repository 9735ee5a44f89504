package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ascendhq/ascend-go/internal/game"
	"github.com/ascendhq/ascend-go/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ToggleTaskRequest is the request body for a completion toggle.
type ToggleTaskRequest struct {
	RoadmapID uuid.UUID `json:"roadmap_id" binding:"required"`
	Week      int       `json:"week" binding:"required"`
	Day       string    `json:"day" binding:"required"`
	TaskTitle string    `json:"task_title" binding:"required"`
	Completed *bool     `json:"completed" binding:"required"`
}

// ToggleTask flips the completion state of one plan task and applies
// every ledger consequence: XP routing (custom vs AI), streak update,
// level recompute, and roadmap progress recompute. Toggling to the
// state the task is already in is a no-op XP-wise.
func ToggleTask(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var req ToggleTaskRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields", "details": err.Error()})
			return
		}
		completed := *req.Completed

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		// Ownership check and authoritative task lookup, in one read.
		var planRaw []byte
		var isCustom bool
		err = tx.QueryRow(c.Request.Context(), `
			SELECT weekly_plan, is_custom
			FROM roadmaps
			WHERE id = $1 AND user_id = $2
		`, req.RoadmapID, userID).Scan(&planRaw, &isCustom)

		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Roadmap not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query roadmap", "details": err.Error()})
			}
			return
		}

		plan, err := decodePlan(planRaw)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse roadmap plan"})
			return
		}

		// XP and category come from the stored plan, never the client.
		task, err := game.FindTask(plan, req.Week, req.Day, req.TaskTitle)
		if err != nil {
			switch {
			case errors.Is(err, game.ErrWeekNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Week not found"})
			case errors.Is(err, game.ErrDayNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Day not found"})
			default:
				c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			}
			return
		}

		var wasCompleted bool
		err = tx.QueryRow(c.Request.Context(), `
			SELECT completed FROM task_progress
			WHERE user_id = $1 AND roadmap_id = $2 AND task_title = $3
		`, userID, req.RoadmapID, req.TaskTitle).Scan(&wasCompleted)
		if err != nil && !isNoRows(err) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query task progress", "details": err.Error()})
			return
		}

		now := time.Now()
		xpEarned := 0
		var completedAt *time.Time
		if completed {
			xpEarned = task.XP
			completedAt = &now
		}

		// The natural-key constraint makes a concurrent duplicate insert
		// collapse into this upsert rather than a second progress row.
		_, err = tx.Exec(c.Request.Context(), `
			INSERT INTO task_progress (id, user_id, roadmap_id, week, day, task_title, completed, xp_earned, category, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (user_id, roadmap_id, task_title) DO UPDATE
			SET completed = EXCLUDED.completed,
				xp_earned = EXCLUDED.xp_earned,
				completed_at = EXCLUDED.completed_at
		`, uuid.New(), userID, req.RoadmapID, req.Week, req.Day, req.TaskTitle,
			completed, xpEarned, task.Category, completedAt)

		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task progress", "details": err.Error()})
			return
		}

		// Idempotent toggle: no state change means no ledger side effect.
		if completed == wasCompleted {
			if err = tx.Commit(c.Request.Context()); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
				return
			}
			c.JSON(http.StatusOK, gin.H{"success": true, "xp_delta": 0})
			return
		}

		xpDelta := task.XP
		if !completed {
			xpDelta = -task.XP
		}

		var streak int
		var lastActive *time.Time
		err = tx.QueryRow(c.Request.Context(),
			`SELECT streak, last_active_date FROM users WHERE id = $1`, userID,
		).Scan(&streak, &lastActive)

		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query user", "details": err.Error()})
			}
			return
		}

		// Streak moves only on a transition into "completed"; activity is
		// activity regardless of which XP pool the task feeds.
		newStreak := streak
		newLastActive := lastActive
		if completed {
			s, d := game.NextStreak(streak, lastActive, now)
			newStreak = s
			newLastActive = &d
		}

		var newTotalXP, newLevel, savedStreak int
		if isCustom {
			// Custom roadmap: credit custom_xp only. total_xp, level, and
			// category XP stay untouched so the leaderboard is unaffected.
			err = tx.QueryRow(c.Request.Context(), `
				UPDATE users
				SET custom_xp = GREATEST(0, custom_xp + $1),
					streak = $2,
					last_active_date = $3,
					updated_at = NOW()
				WHERE id = $4
				RETURNING total_xp, level, streak
			`, xpDelta, newStreak, newLastActive, userID).Scan(&newTotalXP, &newLevel, &savedStreak)
		} else {
			column, ok := game.CategoryColumn(task.Category)
			if !ok {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Unknown task category"})
				return
			}
			// Total, category, and level move in one atomic statement; all
			// SET expressions read the pre-update values, so the level is
			// derived from the post-clamp total.
			query := fmt.Sprintf(`
				UPDATE users
				SET total_xp = GREATEST(0, total_xp + $1),
					%s = GREATEST(0, %s + $1),
					level = FLOOR(0.1 * SQRT(GREATEST(0, total_xp + $1)))::int,
					streak = $2,
					last_active_date = $3,
					updated_at = NOW()
				WHERE id = $4
				RETURNING total_xp, level, streak
			`, column, column)
			err = tx.QueryRow(c.Request.Context(), query, xpDelta, newStreak, newLastActive, userID).
				Scan(&newTotalXP, &newLevel, &savedStreak)
		}

		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user XP", "details": err.Error()})
			return
		}

		// Recompute roadmap progress from scratch.
		var completedCount int
		err = tx.QueryRow(c.Request.Context(), `
			SELECT COUNT(*) FROM task_progress
			WHERE user_id = $1 AND roadmap_id = $2 AND completed = true
		`, userID, req.RoadmapID).Scan(&completedCount)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count completed tasks", "details": err.Error()})
			return
		}

		progress := game.ProgressPercent(completedCount, game.CountTasks(plan))
		_, err = tx.Exec(c.Request.Context(),
			`UPDATE roadmaps SET progress = $1, updated_at = NOW() WHERE id = $2`,
			progress, req.RoadmapID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update roadmap progress", "details": err.Error()})
			return
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		clientXPDelta := xpDelta
		customXPDelta := 0
		if isCustom {
			clientXPDelta = 0
			customXPDelta = xpDelta
		}

		c.JSON(http.StatusOK, gin.H{
			"success":           true,
			"xp_delta":          clientXPDelta,
			"custom_xp_delta":   customXPDelta,
			"is_custom_roadmap": isCustom,
			"new_total_xp":      newTotalXP,
			"new_level":         newLevel,
			"new_streak":        savedStreak,
			"roadmap_progress":  progress,
		})
	}
}
