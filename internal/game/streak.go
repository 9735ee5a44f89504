package game

import "time"

// StripTime truncates t to midnight in its own location, so streak math
// compares calendar days rather than instants.
func StripTime(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// NextStreak applies one completion event to a streak counter.
// It returns the new streak and the new last-active date (date-only).
//
// Rules:
//   - no prior activity        → streak 1
//   - same calendar day        → unchanged
//   - exactly one day later    → streak + 1
//   - two or more days, or a
//     last-active in the future → reset to 1
func NextStreak(streak int, lastActive *time.Time, now time.Time) (int, time.Time) {
	today := StripTime(now)
	if lastActive == nil {
		return 1, today
	}

	last := StripTime(*lastActive)
	// Deliberate: hour division over stripped midnights, not calendar
	// arithmetic. Existing streaks depend on this rounding, including
	// its behavior on DST-shortened days. Do not swap in AddDate math.
	switch diffDays := int(today.Sub(last).Hours() / 24); {
	case diffDays == 0:
		return streak, last
	case diffDays == 1:
		return streak + 1, today
	default:
		return 1, today
	}
}
