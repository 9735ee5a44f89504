package handlers

import (
	"net/http"

	"github.com/ascendhq/ascend-go/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ToggleStar stars or unstars a public roadmap for the caller. Only
// public roadmaps owned by someone else can be starred; star_count on
// the roadmap moves with the edge inside one transaction.
func ToggleStar(db *pgxpool.Pool) gin.HandlerFunc {
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

		var ownerID uuid.UUID
		var isPublic bool
		err = tx.QueryRow(c.Request.Context(),
			`SELECT user_id, is_public FROM roadmaps WHERE id = $1`, roadmapID,
		).Scan(&ownerID, &isPublic)
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Roadmap not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query roadmap", "details": err.Error()})
			}
			return
		}

		if !isPublic {
			c.JSON(http.StatusForbidden, gin.H{"error": "Only public roadmaps can be starred"})
			return
		}
		if ownerID == userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You cannot star your own roadmap"})
			return
		}

		var existingID uuid.UUID
		err = tx.QueryRow(c.Request.Context(),
			`SELECT id FROM roadmap_stars WHERE roadmap_id = $1 AND user_id = $2`,
			roadmapID, userID).Scan(&existingID)

		var starred bool
		switch {
		case err == nil:
			if _, err = tx.Exec(c.Request.Context(),
				`DELETE FROM roadmap_stars WHERE id = $1`, existingID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove star", "details": err.Error()})
				return
			}
			starred = false
		case isNoRows(err):
			_, err = tx.Exec(c.Request.Context(), `
				INSERT INTO roadmap_stars (id, roadmap_id, user_id, created_at)
				VALUES ($1, $2, $3, NOW())
			`, uuid.New(), roadmapID, userID)
			if err != nil {
				if isUniqueViolation(err) {
					c.JSON(http.StatusConflict, gin.H{"error": "Star state changed, please retry"})
				} else {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add star", "details": err.Error()})
				}
				return
			}
			starred = true
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query star", "details": err.Error()})
			return
		}

		delta := 1
		if !starred {
			delta = -1
		}

		var starCount int
		err = tx.QueryRow(c.Request.Context(), `
			UPDATE roadmaps SET star_count = GREATEST(0, star_count + $1), updated_at = NOW()
			WHERE id = $2
			RETURNING star_count
		`, delta, roadmapID).Scan(&starCount)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update star count", "details": err.Error()})
			return
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"starred": starred, "star_count": starCount})
	}
}

// GetStarStatus reports whether the caller has starred a roadmap and
// its current star count.
func GetStarStatus(db *pgxpool.Pool) gin.HandlerFunc {
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

		var starCount int
		var starred bool
		err := db.QueryRow(c.Request.Context(), `
			SELECT r.star_count,
				EXISTS(SELECT 1 FROM roadmap_stars s WHERE s.roadmap_id = r.id AND s.user_id = $2)
			FROM roadmaps r WHERE r.id = $1
		`, roadmapID, userID).Scan(&starCount, &starred)
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Roadmap not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query star status", "details": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"starred": starred, "star_count": starCount})
	}
}
