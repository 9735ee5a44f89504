package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ascendhq/ascend-go/internal/middleware"
	"github.com/ascendhq/ascend-go/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// acceptedExpiry is far enough out that pending-request reaping never
// touches an accepted record.
func acceptedExpiry(now time.Time) time.Time {
	return now.Add(100 * 365 * 24 * time.Hour)
}

// SendFriendRequestRequest is the body for creating a close-friend
// request.
type SendFriendRequestRequest struct {
	ReceiverID string `json:"receiver_id" binding:"required"`
}

// SendFriendRequest creates a pending close-friend request. Gates run
// in order: self-request, receiver exists, receiver accepting, both
// parties under the close-friend cap, and no conflicting record. An
// expired pending record or an elapsed decline cooldown is cleared and
// replaced rather than blocking.
func SendFriendRequest(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var req SendFriendRequestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "receiver_id is required"})
			return
		}
		receiverID, err := uuid.Parse(req.ReceiverID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid receiver ID"})
			return
		}

		if receiverID == userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "You cannot send a close friend request to yourself"})
			return
		}

		now := time.Now()

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		var receiverName string
		var allowRequests bool
		var receiverCount int
		err = tx.QueryRow(c.Request.Context(),
			`SELECT name, allow_close_friend_requests, close_friend_count FROM users WHERE id = $1`,
			receiverID).Scan(&receiverName, &allowRequests, &receiverCount)
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query user", "details": err.Error()})
			}
			return
		}

		if !allowRequests {
			c.JSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("%s is not accepting close friend requests", receiverName)})
			return
		}

		var senderCount int
		err = tx.QueryRow(c.Request.Context(),
			`SELECT close_friend_count FROM users WHERE id = $1`, userID).Scan(&senderCount)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query user", "details": err.Error()})
			return
		}

		if senderCount >= models.MaxCloseFriends {
			c.JSON(http.StatusForbidden, gin.H{"error": fmt.Sprintf("You have reached the %d close friends limit", models.MaxCloseFriends)})
			return
		}
		if receiverCount >= models.MaxCloseFriends {
			c.JSON(http.StatusForbidden, gin.H{"error": "This user has reached their close friends limit"})
			return
		}

		existing, err := findFriendRequest(c.Request.Context(), tx, userID, receiverID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query friend request", "details": err.Error()})
			return
		}

		if existing != nil {
			switch existing.Status {
			case models.FriendStatusAccepted:
				c.JSON(http.StatusConflict, gin.H{"error": "Already close friends"})
				return
			case models.FriendStatusPending:
				if !existing.PendingExpired(now) {
					c.JSON(http.StatusConflict, gin.H{"error": "A request is already pending"})
					return
				}
			case models.FriendStatusDeclined:
				if existing.ResendAfter != nil {
					if days := models.CooldownDaysLeft(*existing.ResendAfter, now); days > 0 {
						c.JSON(http.StatusTooManyRequests, gin.H{"error": fmt.Sprintf("Please wait %d more day(s) before re-sending", days)})
						return
					}
				}
			}
			// Expired pending or elapsed cooldown: clear the stale record.
			if _, err = tx.Exec(c.Request.Context(),
				`DELETE FROM friend_requests WHERE id = $1`, existing.ID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear stale request", "details": err.Error()})
				return
			}
		}

		requestID := uuid.New()
		_, err = tx.Exec(c.Request.Context(), `
			INSERT INTO friend_requests (id, sender_id, receiver_id, status, expires_at, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`, requestID, userID, receiverID, models.FriendStatusPending, now.Add(models.PendingRequestTTL))
		if err != nil {
			if isUniqueViolation(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "A request is already pending"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create request", "details": err.Error()})
			}
			return
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success":    true,
			"request_id": requestID,
			"status":     models.FriendStatusPending,
		})
	}
}

// RespondFriendRequestRequest is the body for accept/decline.
type RespondFriendRequestRequest struct {
	RequestID string `json:"request_id" binding:"required"`
	Action    string `json:"action" binding:"required"`
}

// RespondFriendRequest accepts or declines a pending request. Only the
// receiver may respond. Accepting bumps both close-friend counts in the
// same transaction; declining keeps the record with a resend cooldown.
func RespondFriendRequest(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var req RespondFriendRequestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "request_id and action are required"})
			return
		}
		requestID, err := uuid.Parse(req.RequestID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request ID"})
			return
		}
		if req.Action != "accept" && req.Action != "decline" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Action must be 'accept' or 'decline'"})
			return
		}

		now := time.Now()

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		var fr models.FriendRequest
		err = tx.QueryRow(c.Request.Context(), `
			SELECT id, sender_id, receiver_id, status, resend_after, expires_at, created_at
			FROM friend_requests WHERE id = $1
		`, requestID).Scan(
			&fr.ID, &fr.SenderID, &fr.ReceiverID, &fr.Status,
			&fr.ResendAfter, &fr.ExpiresAt, &fr.CreatedAt,
		)
		if err != nil {
			if isNoRows(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Request not found"})
			} else {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query request", "details": err.Error()})
			}
			return
		}

		if fr.ReceiverID != userID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Not your request to respond to"})
			return
		}
		if fr.Status != models.FriendStatusPending || fr.PendingExpired(now) {
			c.JSON(http.StatusConflict, gin.H{"error": "Request is no longer pending"})
			return
		}

		if req.Action == "accept" {
			// Both parties re-checked against the cap at accept time; the
			// counts may have moved since the request was sent.
			var senderCount, receiverCount int
			err = tx.QueryRow(c.Request.Context(), `
				SELECT
					(SELECT close_friend_count FROM users WHERE id = $1),
					(SELECT close_friend_count FROM users WHERE id = $2)
			`, fr.SenderID, fr.ReceiverID).Scan(&senderCount, &receiverCount)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query users", "details": err.Error()})
				return
			}
			if senderCount >= models.MaxCloseFriends || receiverCount >= models.MaxCloseFriends {
				c.JSON(http.StatusForbidden, gin.H{"error": "Close friends limit reached"})
				return
			}

			_, err = tx.Exec(c.Request.Context(), `
				UPDATE friend_requests SET status = $1, expires_at = $2 WHERE id = $3
			`, models.FriendStatusAccepted, acceptedExpiry(now), fr.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request", "details": err.Error()})
				return
			}

			_, err = tx.Exec(c.Request.Context(), `
				UPDATE users SET close_friend_count = close_friend_count + 1, updated_at = NOW()
				WHERE id = $1 OR id = $2
			`, fr.SenderID, fr.ReceiverID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update counts", "details": err.Error()})
				return
			}
		} else {
			_, err = tx.Exec(c.Request.Context(), `
				UPDATE friend_requests SET status = $1, resend_after = $2 WHERE id = $3
			`, models.FriendStatusDeclined, now.Add(models.DeclineCooldown), fr.ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update request", "details": err.Error()})
				return
			}
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		status := models.FriendStatusDeclined
		if req.Action == "accept" {
			status = models.FriendStatusAccepted
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "status": status})
	}
}

// RemoveFriend severs a close-friend relation or retracts the caller's
// own pending request. Removing an accepted relation decrements both
// close-friend counts, floor-clamped at zero.
func RemoveFriend(db *pgxpool.Pool) gin.HandlerFunc {
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

		tx, err := db.Begin(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback(c.Request.Context())

		fr, err := findFriendRequest(c.Request.Context(), tx, userID, targetID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query friend request", "details": err.Error()})
			return
		}
		if fr == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "No connection found"})
			return
		}

		switch {
		case fr.Status == models.FriendStatusAccepted:
			if _, err = tx.Exec(c.Request.Context(),
				`DELETE FROM friend_requests WHERE id = $1`, fr.ID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove connection", "details": err.Error()})
				return
			}
			_, err = tx.Exec(c.Request.Context(), `
				UPDATE users SET close_friend_count = GREATEST(0, close_friend_count - 1), updated_at = NOW()
				WHERE id = $1 OR id = $2
			`, fr.SenderID, fr.ReceiverID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update counts", "details": err.Error()})
				return
			}
		case fr.Status == models.FriendStatusPending && fr.SenderID == userID:
			if _, err = tx.Exec(c.Request.Context(),
				`DELETE FROM friend_requests WHERE id = $1`, fr.ID); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retract request", "details": err.Error()})
				return
			}
		default:
			c.JSON(http.StatusForbidden, gin.H{"error": "Cannot remove this connection"})
			return
		}

		if err = tx.Commit(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// ListFriendRequests returns the caller's pending incoming requests,
// newest first. Expired requests are filtered out here even if the
// reaper has not caught them yet.
func ListFriendRequests(db *pgxpool.Pool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.GetAuthUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		rows, err := db.Query(c.Request.Context(), `
			SELECT fr.id, fr.sender_id, u.name, u.level, u.total_xp, fr.created_at
			FROM friend_requests fr
			JOIN users u ON u.id = fr.sender_id
			WHERE fr.receiver_id = $1 AND fr.status = $2 AND fr.expires_at > NOW()
			ORDER BY fr.created_at DESC
		`, userID, models.FriendStatusPending)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query requests", "details": err.Error()})
			return
		}
		defer rows.Close()

		requests := []models.IncomingRequest{}
		for rows.Next() {
			var r models.IncomingRequest
			err := rows.Scan(&r.RequestID, &r.SenderID, &r.SenderName, &r.SenderLevel, &r.SenderXP, &r.SentAt)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse requests"})
				return
			}
			requests = append(requests, r)
		}

		c.JSON(http.StatusOK, gin.H{"requests": requests, "count": len(requests)})
	}
}
