package handlers

import (
	"testing"

	"github.com/ascendhq/ascend-go/internal/models"
)

// Viewing your own connection status must still surface the stored
// counters and the accepting flag, not zero values.
func TestSelfConnectionStatus(t *testing.T) {
	got := selfConnectionStatus(42, 7, true)

	if !got.IsMe {
		t.Fatal("IsMe not set")
	}
	if got.Following {
		t.Fatal("self view cannot be following")
	}
	if got.FriendStatus != models.FriendViewNone {
		t.Fatalf("friend status=%q, want %q", got.FriendStatus, models.FriendViewNone)
	}
	if got.FollowerCount != 42 {
		t.Fatalf("follower_count=%d, want 42", got.FollowerCount)
	}
	if got.CloseFriendCount != 7 {
		t.Fatalf("close_friend_count=%d, want 7", got.CloseFriendCount)
	}
	if got.MyCloseFriendCount != 7 {
		t.Fatalf("my_close_friend_count=%d, want 7", got.MyCloseFriendCount)
	}
	if !got.AllowCloseFriendRequests {
		t.Fatal("allow_close_friend_requests not set")
	}
}

func TestSelfConnectionStatusNotAccepting(t *testing.T) {
	got := selfConnectionStatus(0, 0, false)
	if got.AllowCloseFriendRequests {
		t.Fatal("accepting flag invented")
	}
	if got.FollowerCount != 0 || got.CloseFriendCount != 0 || got.MyCloseFriendCount != 0 {
		t.Fatalf("expected zero counters, got %+v", got)
	}
}
