package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Friend request lifecycle states. A declined record is retained so the
// resend cooldown can be enforced; it is deleted and replaced once the
// cooldown has passed.
const (
	FriendStatusPending  = "pending"
	FriendStatusAccepted = "accepted"
	FriendStatusDeclined = "declined"
)

// Viewer-relative friend statuses returned by the status endpoint.
const (
	FriendViewNone            = "none"
	FriendViewPendingSent     = "pending_sent"
	FriendViewPendingReceived = "pending_received"
	FriendViewAccepted        = "accepted"
)

// PendingRequestTTL is how long a pending request lives before it
// expires. Accepted records get a far-future expiry instead so passive
// reaping never touches them.
const PendingRequestTTL = 14 * 24 * time.Hour

// DeclineCooldown is how long a declined sender must wait before
// re-requesting the same receiver.
const DeclineCooldown = 7 * 24 * time.Hour

// FriendRequest models the mutual close-friend relation through an
// asymmetric sender→receiver record. At most one record exists between
// any unordered pair of users.
type FriendRequest struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	SenderID    uuid.UUID  `json:"sender_id" db:"sender_id"`
	ReceiverID  uuid.UUID  `json:"receiver_id" db:"receiver_id"`
	Status      string     `json:"status" db:"status"`
	ResendAfter *time.Time `json:"resend_after,omitempty" db:"resend_after"`
	ExpiresAt   time.Time  `json:"expires_at" db:"expires_at"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}

// PendingExpired reports whether a pending request has outlived its TTL.
// The storage layer may reap expired rows passively, but nothing assumes
// that has already happened; callers re-check here.
func (fr *FriendRequest) PendingExpired(now time.Time) bool {
	return fr.Status == FriendStatusPending && !fr.ExpiresAt.After(now)
}

// ViewStatus maps the single record between viewer and target onto the
// viewer-relative status used by the profile/status endpoint. A nil
// record, a declined record, or an expired pending record all read as
// "none".
func (fr *FriendRequest) ViewStatus(viewerID uuid.UUID, now time.Time) string {
	if fr == nil {
		return FriendViewNone
	}
	switch fr.Status {
	case FriendStatusAccepted:
		return FriendViewAccepted
	case FriendStatusPending:
		if fr.PendingExpired(now) {
			return FriendViewNone
		}
		if fr.SenderID == viewerID {
			return FriendViewPendingSent
		}
		return FriendViewPendingReceived
	}
	return FriendViewNone
}

// CooldownDaysLeft returns the remaining whole days of a decline
// cooldown, rounding up. Zero means the cooldown has elapsed.
func CooldownDaysLeft(resendAfter, now time.Time) int {
	remaining := resendAfter.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(math.Ceil(remaining.Hours() / 24))
}

// FollowEdge is a one-way mentor-follow relation, unique per
// (follower, followed) pair.
type FollowEdge struct {
	ID         uuid.UUID `json:"id" db:"id"`
	FollowerID uuid.UUID `json:"follower_id" db:"follower_id"`
	FollowedID uuid.UUID `json:"followed_id" db:"followed_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ConnectionStatusResponse is the payload of GET /connections/status/:id.
type ConnectionStatusResponse struct {
	IsMe                     bool   `json:"is_me"`
	Following                bool   `json:"following"`
	FollowerCount            int    `json:"follower_count"`
	FriendStatus             string `json:"friend_status"`
	CloseFriendCount         int    `json:"close_friend_count"`
	AllowCloseFriendRequests bool   `json:"allow_close_friend_requests"`
	MyCloseFriendCount       int    `json:"my_close_friend_count"`
}

// IncomingRequest is one row of the pending-requests inbox.
type IncomingRequest struct {
	RequestID   uuid.UUID `json:"request_id"`
	SenderID    uuid.UUID `json:"sender_id"`
	SenderName  string    `json:"sender_name"`
	SenderLevel int       `json:"sender_level"`
	SenderXP    int       `json:"sender_xp"`
	SentAt      time.Time `json:"sent_at"`
}
