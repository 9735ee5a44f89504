package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ascendhq/ascend-go/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// GetSettings returns the caller's privacy settings and connection
// counters.
func GetSettings(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var name string
		var isProfilePublic, allowRequests bool
		var followerCount, closeFriendCount int
		err := db.QueryRow(c.Request.Context(), `
			SELECT name, is_profile_public, allow_close_friend_requests, follower_count, close_friend_count
			FROM users WHERE id = $1
		`, userID).Scan(&name, &isProfilePublic, &allowRequests, &followerCount, &closeFriendCount)
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query settings", "details": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"name":                        name,
			"is_profile_public":           isProfilePublic,
			"allow_close_friend_requests": allowRequests,
			"follower_count":              followerCount,
			"close_friend_count":          closeFriendCount,
		})
	}
}

// UpdateSettingsRequest carries the patchable fields. Pointers
// distinguish "not sent" from zero values.
type UpdateSettingsRequest struct {
	Name                     *string `json:"name"`
	IsProfilePublic          *bool   `json:"is_profile_public"`
	AllowCloseFriendRequests *bool   `json:"allow_close_friend_requests"`
}

// UpdateSettings patches display name and privacy flags. Only sent
// fields change; a body with no recognized field is rejected.
func UpdateSettings(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var req UpdateSettingsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		setClauses := []string{}
		args := []any{}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if len(name) < 2 || len(name) > 100 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Name must be between 2 and 100 characters"})
				return
			}
			args = append(args, name)
			setClauses = append(setClauses, fmt.Sprintf("name = $%d", len(args)))
		}
		if req.IsProfilePublic != nil {
			args = append(args, *req.IsProfilePublic)
			setClauses = append(setClauses, fmt.Sprintf("is_profile_public = $%d", len(args)))
		}
		if req.AllowCloseFriendRequests != nil {
			args = append(args, *req.AllowCloseFriendRequests)
			setClauses = append(setClauses, fmt.Sprintf("allow_close_friend_requests = $%d", len(args)))
		}

		if len(setClauses) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
			return
		}

		args = append(args, userID)
		query := fmt.Sprintf(`
			UPDATE users SET %s, updated_at = NOW()
			WHERE id = $%d
			RETURNING name, is_profile_public, allow_close_friend_requests
		`, strings.Join(setClauses, ", "), len(args))

		var name string
		var isProfilePublic, allowRequests bool
		err := db.QueryRow(c.Request.Context(), query, args...).Scan(&name, &isProfilePublic, &allowRequests)
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update settings", "details": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"name":                        name,
			"is_profile_public":           isProfilePublic,
			"allow_close_friend_requests": allowRequests,
		})
	}
}
