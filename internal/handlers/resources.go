package handlers

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ascendhq/ascend-go/internal/middleware"
	"github.com/ascendhq/ascend-go/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ListResources returns the caller's resources for one roadmap week,
// or per-week counts for the whole roadmap when counts_only is set.
func ListResources(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		roadmapID, err := uuid.Parse(c.Query("roadmap_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "roadmap_id is required"})
			return
		}

		if c.Query("counts_only") == "true" {
			rows, err := db.Query(c.Request.Context(), `
				SELECT week, COUNT(*) FROM task_resources
				WHERE user_id = $1 AND roadmap_id = $2
				GROUP BY week
			`, userID, roadmapID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query resources", "details": err.Error()})
				return
			}
			defer rows.Close()

			counts := map[string]int{}
			for rows.Next() {
				var week, count int
				if err := rows.Scan(&week, &count); err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse counts"})
					return
				}
				counts[strconv.Itoa(week)] = count
			}
			c.JSON(http.StatusOK, gin.H{"counts": counts})
			return
		}

		week, err := strconv.Atoi(c.Query("week"))
		if err != nil || week < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "week must be a positive integer"})
			return
		}

		rows, err := db.Query(c.Request.Context(), `
			SELECT id, user_id, roadmap_id, week, type, url, label, created_at
			FROM task_resources
			WHERE user_id = $1 AND roadmap_id = $2 AND week = $3
			ORDER BY created_at
		`, userID, roadmapID, week)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query resources", "details": err.Error()})
			return
		}
		defer rows.Close()

		resources := []models.TaskResource{}
		for rows.Next() {
			var r models.TaskResource
			err := rows.Scan(&r.ID, &r.UserID, &r.RoadmapID, &r.Week, &r.Type, &r.URL, &r.Label, &r.CreatedAt)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse resources"})
				return
			}
			resources = append(resources, r)
		}

		c.JSON(http.StatusOK, gin.H{"resources": resources, "count": len(resources)})
	}
}

// CreateResourceRequest is the body for attaching a resource to a
// roadmap week.
type CreateResourceRequest struct {
	RoadmapID string `json:"roadmap_id" binding:"required"`
	Week      int    `json:"week" binding:"required"`
	Type      string `json:"type" binding:"required"`
	URL       string `json:"url" binding:"required"`
	Label     string `json:"label"`
}

// CreateResource attaches a typed link to one week of the caller's own
// roadmap, capped per week.
func CreateResource(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var req CreateResourceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "roadmap_id, week, type and url are required"})
			return
		}

		roadmapID, err := uuid.Parse(req.RoadmapID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid roadmap ID"})
			return
		}
		if req.Week < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "week must be a positive integer"})
			return
		}
		if !models.ValidResourceType(req.Type) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resource type"})
			return
		}
		parsed, err := url.ParseRequestURI(strings.TrimSpace(req.URL))
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL"})
			return
		}

		var duration int
		err = db.QueryRow(c.Request.Context(),
			`SELECT duration FROM roadmaps WHERE id = $1 AND user_id = $2`,
			roadmapID, userID).Scan(&duration)
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Roadmap not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query roadmap", "details": err.Error()})
			}
			return
		}
		if req.Week > duration {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Week is out of range for this roadmap"})
			return
		}

		var count int
		err = db.QueryRow(c.Request.Context(), `
			SELECT COUNT(*) FROM task_resources
			WHERE user_id = $1 AND roadmap_id = $2 AND week = $3
		`, userID, roadmapID, req.Week).Scan(&count)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count resources", "details": err.Error()})
			return
		}
		if count >= models.MaxResourcesPerWeek {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Maximum %d resources allowed per module", models.MaxResourcesPerWeek)})
			return
		}

		label := strings.TrimSpace(req.Label)
		if label == "" {
			label = parsed.Host
		}
		if len(label) > 120 {
			label = label[:120]
		}

		var resource models.TaskResource
		err = db.QueryRow(c.Request.Context(), `
			INSERT INTO task_resources (id, user_id, roadmap_id, week, type, url, label, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			RETURNING id, user_id, roadmap_id, week, type, url, label, created_at
		`, uuid.New(), userID, roadmapID, req.Week, req.Type, parsed.String(), label).Scan(
			&resource.ID, &resource.UserID, &resource.RoadmapID, &resource.Week,
			&resource.Type, &resource.URL, &resource.Label, &resource.CreatedAt,
		)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create resource", "details": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"resource": resource})
	}
}

// DeleteResource removes one of the caller's own resources.
func DeleteResource(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		resourceID, ok := parseIDParam(c, "id")
		if !ok {
			return
		}

		tag, err := db.Exec(c.Request.Context(),
			`DELETE FROM task_resources WHERE id = $1 AND user_id = $2`,
			resourceID, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete resource", "details": err.Error()})
			return
		}
		if tag.RowsAffected() == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// ListPublicResources returns the owner's resources for one week of a
// public roadmap. No auth required; private roadmaps read as not found.
func ListPublicResources(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		roadmapID, err := uuid.Parse(c.Query("roadmap_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "roadmap_id is required"})
			return
		}
		week, err := strconv.Atoi(c.Query("week"))
		if err != nil || week < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "week must be a positive integer"})
			return
		}

		var ownerID uuid.UUID
		err = db.QueryRow(c.Request.Context(),
			`SELECT user_id FROM roadmaps WHERE id = $1 AND is_public = true`,
			roadmapID).Scan(&ownerID)
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Roadmap not found or is private"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query roadmap", "details": err.Error()})
			}
			return
		}

		rows, err := db.Query(c.Request.Context(), `
			SELECT id, user_id, roadmap_id, week, type, url, label, created_at
			FROM task_resources
			WHERE user_id = $1 AND roadmap_id = $2 AND week = $3
			ORDER BY created_at
		`, ownerID, roadmapID, week)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query resources", "details": err.Error()})
			return
		}
		defer rows.Close()

		resources := []models.TaskResource{}
		for rows.Next() {
			var r models.TaskResource
			err := rows.Scan(&r.ID, &r.UserID, &r.RoadmapID, &r.Week, &r.Type, &r.URL, &r.Label, &r.CreatedAt)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse resources"})
				return
			}
			resources = append(resources, r)
		}

		c.JSON(http.StatusOK, gin.H{"resources": resources, "count": len(resources)})
	}
}
