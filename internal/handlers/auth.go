package handlers

import (
	"net/http"
	"regexp"
	"strings"

	"github.com/ascendhq/ascend-go/internal/auth"
	"github.com/ascendhq/ascend-go/internal/middleware"
	"github.com/ascendhq/ascend-go/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	Token string                   `json:"token"`
	User  models.UserStatsResponse `json:"user"`
}

// Register creates a new account with all counters at zero
func Register(db *pgxpool.Pool, jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "All fields are required"})
			return
		}

		name := strings.TrimSpace(req.Name)
		email := strings.ToLower(strings.TrimSpace(req.Email))

		if len(name) < 2 || len(name) > 100 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Name must be 2-100 characters"})
			return
		}
		if !emailRegex.MatchString(email) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid email address"})
			return
		}
		if len(req.Password) < 6 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 6 characters"})
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}

		// The unique index on email settles duplicate-registration races.
		var user models.User
		err = db.QueryRow(c.Request.Context(), `
			INSERT INTO users (id, name, email, password_hash)
			VALUES ($1, $2, $3, $4)
			RETURNING id, name, email, total_xp, level, streak,
				body_xp, skills_xp, mindset_xp, career_xp, custom_xp, created_at
		`, uuid.New(), name, email, hash).Scan(
			&user.ID, &user.Name, &user.Email, &user.TotalXP, &user.Level, &user.Streak,
			&user.BodyXP, &user.SkillsXP, &user.MindsetXP, &user.CareerXP, &user.CustomXP, &user.CreatedAt,
		)

		if err != nil {
			if isUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user", "details": err.Error()})
			}
			return
		}

		token, err := jwtService.GenerateToken(user.ID, user.Email, user.Name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(http.StatusCreated, AuthResponse{Token: token, User: user.ToStatsResponse()})
	}
}

// Login authenticates a user and returns a JWT token
func Login(db *pgxpool.Pool, jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))

		var user models.User
		err := db.QueryRow(c.Request.Context(), `
			SELECT id, name, email, password_hash, total_xp, level, streak,
				body_xp, skills_xp, mindset_xp, career_xp, custom_xp, created_at
			FROM users
			WHERE LOWER(email) = $1
		`, email).Scan(
			&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.TotalXP,
			&user.Level, &user.Streak, &user.BodyXP, &user.SkillsXP, &user.MindsetXP,
			&user.CareerXP, &user.CustomXP, &user.CreatedAt,
		)

		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		if !auth.CheckPassword(user.PasswordHash, req.Password) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		token, err := jwtService.GenerateToken(user.ID, user.Email, user.Name)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
			return
		}

		c.JSON(http.StatusOK, AuthResponse{Token: token, User: user.ToStatsResponse()})
	}
}

// Me returns the currently authenticated user's full stats
func Me(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}

		var user models.User
		err := db.QueryRow(c.Request.Context(), `
			SELECT id, name, email, total_xp, level, streak, last_active_date,
				body_xp, skills_xp, mindset_xp, career_xp, custom_xp,
				is_profile_public, allow_close_friend_requests,
				follower_count, close_friend_count, created_at, updated_at
			FROM users
			WHERE id = $1
		`, userID).Scan(
			&user.ID, &user.Name, &user.Email, &user.TotalXP, &user.Level, &user.Streak,
			&user.LastActiveDate, &user.BodyXP, &user.SkillsXP, &user.MindsetXP,
			&user.CareerXP, &user.CustomXP, &user.IsProfilePublic,
			&user.AllowCloseFriendRequests, &user.FollowerCount, &user.CloseFriendCount,
			&user.CreatedAt, &user.UpdatedAt,
		)

		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query user", "details": err.Error()})
			}
			return
		}

		c.JSON(http.StatusOK, gin.H{"user": user})
	}
}
