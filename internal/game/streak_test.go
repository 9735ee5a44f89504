package game

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNextStreakFirstActivity(t *testing.T) {
	now := time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC)
	streak, last := NextStreak(0, nil, now)
	if streak != 1 {
		t.Fatalf("streak=%d, want 1", streak)
	}
	if !last.Equal(date(2026, time.March, 10)) {
		t.Fatalf("last active=%v, want date-only today", last)
	}
}

func TestNextStreakSameDay(t *testing.T) {
	lastActive := date(2026, time.March, 10)
	now := time.Date(2026, time.March, 10, 23, 59, 0, 0, time.UTC)
	streak, last := NextStreak(4, &lastActive, now)
	if streak != 4 {
		t.Fatalf("streak=%d, want unchanged 4", streak)
	}
	if !last.Equal(lastActive) {
		t.Fatalf("last active moved to %v on same-day activity", last)
	}
}

func TestNextStreakConsecutiveDay(t *testing.T) {
	lastActive := date(2026, time.March, 9)
	now := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)
	streak, last := NextStreak(3, &lastActive, now)
	if streak != 4 {
		t.Fatalf("streak=%d, want 4", streak)
	}
	if !last.Equal(date(2026, time.March, 10)) {
		t.Fatalf("last active=%v, want today", last)
	}
}

func TestNextStreakGapResets(t *testing.T) {
	lastActive := date(2026, time.March, 7)
	now := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)
	streak, _ := NextStreak(5, &lastActive, now)
	if streak != 1 {
		t.Fatalf("streak=%d after 3-day gap, want 1", streak)
	}
}

func TestNextStreakFutureLastActiveResets(t *testing.T) {
	// A clock-skewed last-active in the future must reset, not extend.
	lastActive := date(2026, time.March, 12)
	now := time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC)
	streak, last := NextStreak(7, &lastActive, now)
	if streak != 1 {
		t.Fatalf("streak=%d with future last-active, want 1", streak)
	}
	if !last.Equal(date(2026, time.March, 10)) {
		t.Fatalf("last active=%v, want today", last)
	}
}

func TestNextStreakIgnoresTimeOfDay(t *testing.T) {
	// Late-night completion yesterday followed by an early one today is
	// one calendar day apart even though less than 24h passed.
	lastActive := time.Date(2026, time.March, 9, 23, 50, 0, 0, time.UTC)
	now := time.Date(2026, time.March, 10, 0, 10, 0, 0, time.UTC)
	streak, _ := NextStreak(2, &lastActive, now)
	if streak != 3 {
		t.Fatalf("streak=%d, want 3", streak)
	}
}
