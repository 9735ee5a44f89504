package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ascendhq/ascend-go/internal/middleware"
	"github.com/ascendhq/ascend-go/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ToggleFollowRequest is the body for the follow toggle.
type ToggleFollowRequest struct {
	TargetUserID string `json:"target_user_id" binding:"required"`
}

// ToggleFollow follows or unfollows another user. Private profiles
// cannot be followed; the target's follower_count moves with the edge
// inside one transaction.
func ToggleFollow(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var req ToggleFollowRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "target_user_id is required"})
			return
		}
		targetID, err := uuid.Parse(req.TargetUserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
			return
		}

		if targetID == userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You cannot follow yourself"})
			return
		}

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		var isProfilePublic bool
		err = tx.QueryRow(c.Request.Context(),
			`SELECT is_profile_public FROM users WHERE id = $1`, targetID,
		).Scan(&isProfilePublic)
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query user", "details": err.Error()})
			}
			return
		}

		var existingID uuid.UUID
		err = tx.QueryRow(c.Request.Context(),
			`SELECT id FROM follows WHERE follower_id = $1 AND followed_id = $2`,
			userID, targetID).Scan(&existingID)

		var following bool
		switch {
		case err == nil:
			// Unfollow works even after the target went private.
			if _, err = tx.Exec(c.Request.Context(),
				`DELETE FROM follows WHERE id = $1`, existingID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow", "details": err.Error()})
				return
			}
			following = false
		case isNoRows(err):
			if !isProfilePublic {
				c.JSON(http.StatusForbidden, gin.H{"error": "Cannot follow a private profile"})
				return
			}
			_, err = tx.Exec(c.Request.Context(), `
				INSERT INTO follows (id, follower_id, followed_id, created_at)
				VALUES ($1, $2, $3, NOW())
			`, uuid.New(), userID, targetID)
			if err != nil {
				if isUniqueViolation(err) {
					c.JSON(http.StatusConflict, gin.H{"error": "Follow state changed, please retry"})
				} else {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow", "details": err.Error()})
				}
				return
			}
			following = true
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query follow", "details": err.Error()})
			return
		}

		delta := 1
		if !following {
			delta = -1
		}

		var followerCount int
		err = tx.QueryRow(c.Request.Context(), `
			UPDATE users SET follower_count = GREATEST(0, follower_count + $1), updated_at = NOW()
			WHERE id = $2
			RETURNING follower_count
		`, delta, targetID).Scan(&followerCount)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update follower count", "details": err.Error()})
			return
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"following": following, "follower_count": followerCount})
	}
}

// GetConnectionStatus reports the caller's relationship with another
// user in one shot: following edge, close-friend state from the
// caller's point of view, and the caller's own close-friend count.
func GetConnectionStatus(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}
		targetID, ok := parseIDParam(c, "userId")
		if !ok {
			return
		}

		var followerCount, closeFriendCount int
		var allowRequests bool
		err := db.QueryRow(c.Request.Context(), `
			SELECT follower_count, close_friend_count, allow_close_friend_requests
			FROM users WHERE id = $1
		`, targetID).Scan(&followerCount, &closeFriendCount, &allowRequests)
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query user", "details": err.Error()})
			}
			return
		}

		if targetID == userID {
			c.JSON(http.StatusOK, selfConnectionStatus(followerCount, closeFriendCount, allowRequests))
			return
		}

		var following bool
		var myCloseFriendCount int
		err = db.QueryRow(c.Request.Context(), `
			SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followed_id = $2),
				(SELECT close_friend_count FROM users WHERE id = $1)
		`, userID, targetID).Scan(&following, &myCloseFriendCount)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query connection", "details": err.Error()})
			return
		}

		fr, err := findFriendRequest(c.Request.Context(), db, userID, targetID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query friend request", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, models.ConnectionStatusResponse{
			IsMe:                     false,
			Following:                following,
			FollowerCount:            followerCount,
			FriendStatus:             fr.ViewStatus(userID, time.Now()),
			CloseFriendCount:         closeFriendCount,
			AllowCloseFriendRequests: allowRequests,
			MyCloseFriendCount:       myCloseFriendCount,
		})
	}
}

// selfConnectionStatus is the status view of your own profile. The
// relationship fields are fixed but the counters and the accepting
// flag are real; clients read my_close_friend_count to show the
// friends cap before sending a request.
func selfConnectionStatus(followerCount, closeFriendCount int, allowRequests bool) models.ConnectionStatusResponse {
	return models.ConnectionStatusResponse{
		IsMe:                     true,
		FriendStatus:             models.FriendViewNone,
		FollowerCount:            followerCount,
		CloseFriendCount:         closeFriendCount,
		AllowCloseFriendRequests: allowRequests,
		MyCloseFriendCount:       closeFriendCount,
	}
}

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, so lookups
// can run inside or outside a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// findFriendRequest loads the friend-request record between two users
// in either direction, or nil when none exists.
func findFriendRequest(ctx context.Context, q rowQuerier, a, b uuid.UUID) (*models.FriendRequest, error) {
	var fr models.FriendRequest
	err := q.QueryRow(ctx, `
		SELECT id, sender_id, receiver_id, status, resend_after, expires_at, created_at
		FROM friend_requests
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
	`, a, b).Scan(
		&fr.ID, &fr.SenderID, &fr.ReceiverID, &fr.Status,
		&fr.ResendAfter, &fr.ExpiresAt, &fr.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &fr, nil
}
