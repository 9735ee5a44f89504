package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestViewStatus(t *testing.T) {
	sender := uuid.New()
	receiver := uuid.New()
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	var none *FriendRequest
	if got := none.ViewStatus(sender, now); got != FriendViewNone {
		t.Fatalf("nil record: got %q, want %q", got, FriendViewNone)
	}

	pending := &FriendRequest{
		SenderID:   sender,
		ReceiverID: receiver,
		Status:     FriendStatusPending,
		ExpiresAt:  now.Add(24 * time.Hour),
	}
	if got := pending.ViewStatus(sender, now); got != FriendViewPendingSent {
		t.Fatalf("sender view: got %q, want %q", got, FriendViewPendingSent)
	}
	if got := pending.ViewStatus(receiver, now); got != FriendViewPendingReceived {
		t.Fatalf("receiver view: got %q, want %q", got, FriendViewPendingReceived)
	}

	expired := &FriendRequest{
		SenderID:   sender,
		ReceiverID: receiver,
		Status:     FriendStatusPending,
		ExpiresAt:  now.Add(-time.Minute),
	}
	if got := expired.ViewStatus(sender, now); got != FriendViewNone {
		t.Fatalf("expired pending: got %q, want %q", got, FriendViewNone)
	}

	accepted := &FriendRequest{SenderID: sender, ReceiverID: receiver, Status: FriendStatusAccepted}
	if got := accepted.ViewStatus(receiver, now); got != FriendViewAccepted {
		t.Fatalf("accepted: got %q, want %q", got, FriendViewAccepted)
	}

	declined := &FriendRequest{SenderID: sender, ReceiverID: receiver, Status: FriendStatusDeclined}
	if got := declined.ViewStatus(sender, now); got != FriendViewNone {
		t.Fatalf("declined: got %q, want %q", got, FriendViewNone)
	}
}

func TestPendingExpired(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	fr := &FriendRequest{Status: FriendStatusPending, ExpiresAt: now.Add(time.Second)}
	if fr.PendingExpired(now) {
		t.Fatal("request expiring in the future reported expired")
	}

	fr.ExpiresAt = now
	if !fr.PendingExpired(now) {
		t.Fatal("request at its exact expiry should read expired")
	}

	// Accepted records never expire regardless of the timestamp.
	accepted := &FriendRequest{Status: FriendStatusAccepted, ExpiresAt: now.Add(-time.Hour)}
	if accepted.PendingExpired(now) {
		t.Fatal("accepted record reported expired")
	}
}

func TestCooldownDaysLeft(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		resendAfter time.Time
		want        int
	}{
		{now.Add(-time.Hour), 0},
		{now, 0},
		{now.Add(time.Minute), 1},
		{now.Add(24 * time.Hour), 1},
		{now.Add(25 * time.Hour), 2},
		{now.Add(7 * 24 * time.Hour), 7},
	}
	for _, tc := range cases {
		if got := CooldownDaysLeft(tc.resendAfter, now); got != tc.want {
			t.Fatalf("CooldownDaysLeft(%v)=%d, want %d", tc.resendAfter, got, tc.want)
		}
	}
}
