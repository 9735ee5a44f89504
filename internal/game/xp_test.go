package game

import "testing"

func TestLevelForXP(t *testing.T) {
	cases := []struct {
		totalXP int
		want    int
	}{
		{0, 0},
		{-50, 0},
		{99, 0},
		{100, 1},
		{399, 1},
		{400, 2},
		{900, 3},
		{2500, 5},
		{10000, 10},
	}
	for _, tc := range cases {
		if got := LevelForXP(tc.totalXP); got != tc.want {
			t.Fatalf("LevelForXP(%d)=%d, want %d", tc.totalXP, got, tc.want)
		}
	}
}

func TestLevelForXPMonotonic(t *testing.T) {
	prev := 0
	for xp := 0; xp <= 20000; xp += 37 {
		level := LevelForXP(xp)
		if level < prev {
			t.Fatalf("level dropped from %d to %d at xp=%d", prev, level, xp)
		}
		prev = level
	}
}

func TestTaskXP(t *testing.T) {
	cases := []struct {
		minutes    int
		difficulty string
		want       int
	}{
		{30, "hard", 54},
		{200, "easy", 160},
		{1000, "hard", 300},
		{30, "medium", 36},
		{30, "unknown", 36},
		{0, "easy", 1},
		{1, "easy", 1},
	}
	for _, tc := range cases {
		if got := TaskXP(tc.minutes, tc.difficulty); got != tc.want {
			t.Fatalf("TaskXP(%d, %q)=%d, want %d", tc.minutes, tc.difficulty, got, tc.want)
		}
	}
}

func TestClampTaskMinutes(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{0, 30},
		{-10, 30},
		{3, 5},
		{5, 5},
		{60, 60},
		{480, 480},
		{481, 480},
		{100000, 480},
	}
	for _, tc := range cases {
		if got := ClampTaskMinutes(tc.in); got != tc.want {
			t.Fatalf("ClampTaskMinutes(%d)=%d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCategoryColumn(t *testing.T) {
	for cat, want := range map[string]string{
		"Body":    "body_xp",
		"Skills":  "skills_xp",
		"Mindset": "mindset_xp",
		"Career":  "career_xp",
	} {
		col, ok := CategoryColumn(cat)
		if !ok || col != want {
			t.Fatalf("CategoryColumn(%q)=(%q, %v), want (%q, true)", cat, col, ok, want)
		}
	}

	if col, ok := CategoryColumn("Custom"); ok || col != "" {
		t.Fatalf("CategoryColumn for unknown category should fail, got (%q, %v)", col, ok)
	}
	if _, ok := CategoryColumn("body_xp; DROP TABLE users"); ok {
		t.Fatal("CategoryColumn must reject arbitrary input")
	}
}
