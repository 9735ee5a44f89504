package handlers

import (
	"net/http"
	"strings"

	"github.com/ascendhq/ascend-go/internal/middleware"
	"github.com/ascendhq/ascend-go/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GetProfile returns another user's profile. Private profiles viewed by
// anyone but the owner expose only the name; no XP, streak, or roadmap
// data leaks through the restricted payload.
func GetProfile(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		viewerID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		targetID, ok := parseIDParam(c, "userId")
		if !ok {
			return
		}

		var u models.User
		err := db.QueryRow(c.Request.Context(), `
			SELECT id, name, total_xp, level, streak, body_xp, skills_xp, mindset_xp, career_xp,
				is_profile_public, follower_count, created_at
			FROM users WHERE id = $1
		`, targetID).Scan(
			&u.ID, &u.Name, &u.TotalXP, &u.Level, &u.Streak,
			&u.BodyXP, &u.SkillsXP, &u.MindsetXP, &u.CareerXP,
			&u.IsProfilePublic, &u.FollowerCount, &u.CreatedAt,
		)
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query user", "details": err.Error()})
			}
			return
		}

		isMe := targetID == viewerID
		if !u.IsProfilePublic && !isMe {
			c.JSON(http.StatusOK, gin.H{
				"is_private": true,
				"profile":    gin.H{"name": u.Name},
			})
			return
		}

		rows, err := db.Query(c.Request.Context(), `
			SELECT id, goal, title, skill_level, difficulty, duration, progress, is_public, is_custom, star_count, created_at
			FROM roadmaps
			WHERE user_id = $1 AND is_public = true
			ORDER BY created_at DESC
			LIMIT 20
		`, targetID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query roadmaps", "details": err.Error()})
			return
		}
		defer rows.Close()

		roadmaps := []models.RoadmapSummary{}
		for rows.Next() {
			var rm models.RoadmapSummary
			err := rows.Scan(&rm.ID, &rm.Goal, &rm.Title, &rm.SkillLevel, &rm.Difficulty, &rm.Duration,
				&rm.Progress, &rm.IsPublic, &rm.IsCustom, &rm.StarCount, &rm.CreatedAt)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse roadmaps"})
				return
			}
			roadmaps = append(roadmaps, rm)
		}

		c.JSON(http.StatusOK, gin.H{
			"is_private": false,
			"profile": models.PublicProfile{
				UserID:      u.ID,
				Name:        u.Name,
				TotalXP:     u.TotalXP,
				Level:       u.Level,
				BodyXP:      u.BodyXP,
				SkillsXP:    u.SkillsXP,
				MindsetXP:   u.MindsetXP,
				CareerXP:    u.CareerXP,
				Streak:      u.Streak,
				MemberSince: u.CreatedAt,
				IsMe:        isMe,
			},
			"follower_count":  u.FollowerCount,
			"public_roadmaps": roadmaps,
		})
	}
}

// SearchUsers finds users by name substring or exact ID. Queries
// shorter than two characters return an empty list instead of scanning
// the whole table.
func SearchUsers(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := middleware.GetAuthUserID(c); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		q := strings.TrimSpace(c.Query("q"))
		if len(q) < 2 {
			c.JSON(http.StatusOK, gin.H{"users": []models.UserSearchResult{}})
			return
		}

		var exactID any
		if id, err := uuid.Parse(q); err == nil {
			exactID = id
		}

		rows, err := db.Query(c.Request.Context(), `
			SELECT id, name, level, total_xp, is_profile_public
			FROM users
			WHERE name ILIKE '%' || $1 || '%' OR id = $2
			ORDER BY total_xp DESC
			LIMIT 8
		`, q, exactID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search users", "details": err.Error()})
			return
		}
		defer rows.Close()

		users := []models.UserSearchResult{}
		for rows.Next() {
			var u models.UserSearchResult
			if err := rows.Scan(&u.UserID, &u.Name, &u.Level, &u.TotalXP, &u.IsProfilePublic); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse users"})
				return
			}
			users = append(users, u)
		}

		c.JSON(http.StatusOK, gin.H{"users": users})
	}
}
