package handlers

import (
	"net/http"

	"github.com/ascendhq/ascend-go/internal/middleware"
	"github.com/ascendhq/ascend-go/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

const leaderboardSize = 5

// GetLeaderboard returns the top users by total XP plus the caller's
// own rank. Ties break by user ID so the ordering is stable across
// requests.
func GetLeaderboard(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		rows, err := db.Query(c.Request.Context(), `
			SELECT id, name, total_xp, level, body_xp, skills_xp, mindset_xp, career_xp, streak
			FROM users
			ORDER BY total_xp DESC, id
			LIMIT $1
		`, leaderboardSize)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query leaderboard", "details": err.Error()})
			return
		}
		defer rows.Close()

		entries := []models.LeaderboardEntry{}
		rank := 0
		for rows.Next() {
			rank++
			var e models.LeaderboardEntry
			var id uuid.UUID
			err := rows.Scan(&id, &e.Name, &e.TotalXP, &e.Level,
				&e.BodyXP, &e.SkillsXP, &e.MindsetXP, &e.CareerXP, &e.Streak)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse leaderboard"})
				return
			}
			e.Rank = rank
			e.IsMe = id == userID
			entries = append(entries, e)
		}

		var myRank, totalUsers int
		err = db.QueryRow(c.Request.Context(), `
			SELECT
				(SELECT COUNT(*) + 1 FROM users WHERE total_xp > (SELECT total_xp FROM users WHERE id = $1)),
				(SELECT COUNT(*) FROM users)
		`, userID).Scan(&myRank, &totalUsers)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute rank", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.LeaderboardResponse{
			Leaderboard: entries,
			MyRank:      myRank,
			TotalUsers:  totalUsers,
		})
	}
}
