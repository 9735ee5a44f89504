package game

import (
	"errors"
	"testing"

	"github.com/ascendhq/ascend-go/internal/models"
)

func samplePlan() []models.PlanWeek {
	return []models.PlanWeek{
		{
			Week:  1,
			Focus: "Foundations",
			Days: []models.PlanDay{
				{Day: "Monday", Tasks: []models.PlanTask{
					{Title: "Read chapter 1", DurationMinutes: 30, XP: 36, Category: "Skills"},
					{Title: "Morning run", DurationMinutes: 20, XP: 24, Category: "Body"},
				}},
				{Day: "Tuesday", Tasks: []models.PlanTask{
					{Title: "Journal", DurationMinutes: 15, XP: 18, Category: "Mindset"},
				}},
			},
		},
		{
			Week:  2,
			Focus: "Practice",
			Days: []models.PlanDay{
				{Day: "Monday", Tasks: []models.PlanTask{}},
			},
		},
	}
}

func TestFindTask(t *testing.T) {
	plan := samplePlan()

	task, err := FindTask(plan, 1, "Monday", "Morning run")
	if err != nil {
		t.Fatalf("FindTask: %v", err)
	}
	if task.Category != "Body" || task.XP != 24 {
		t.Fatalf("wrong task resolved: %+v", task)
	}

	if _, err := FindTask(plan, 3, "Monday", "Read chapter 1"); !errors.Is(err, ErrWeekNotFound) {
		t.Fatalf("missing week: got %v, want ErrWeekNotFound", err)
	}
	if _, err := FindTask(plan, 1, "Sunday", "Read chapter 1"); !errors.Is(err, ErrDayNotFound) {
		t.Fatalf("missing day: got %v, want ErrDayNotFound", err)
	}
	if _, err := FindTask(plan, 1, "Monday", "Nonexistent"); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("missing task: got %v, want ErrTaskNotFound", err)
	}
}

func TestCountTasks(t *testing.T) {
	if got := CountTasks(samplePlan()); got != 3 {
		t.Fatalf("CountTasks=%d, want 3", got)
	}
	if got := CountTasks(nil); got != 0 {
		t.Fatalf("CountTasks(nil)=%d, want 0", got)
	}
}

func TestProgressPercent(t *testing.T) {
	cases := []struct {
		completed, total, want int
	}{
		{0, 10, 0},
		{1, 3, 33},
		{2, 3, 67},
		{10, 10, 100},
		{0, 0, 0},
		{5, 0, 0},
	}
	for _, tc := range cases {
		if got := ProgressPercent(tc.completed, tc.total); got != tc.want {
			t.Fatalf("ProgressPercent(%d, %d)=%d, want %d", tc.completed, tc.total, got, tc.want)
		}
	}
}

func TestSanitizeCustomPlanRecomputesXP(t *testing.T) {
	raw := []models.PlanWeek{
		{
			Week:  7, // client-supplied numbering is ignored
			Focus: "Week one",
			Days: []models.PlanDay{
				{Day: "Monday", Tasks: []models.PlanTask{
					{Title: "Task A", DurationMinutes: 60, XP: 99999, Category: "Body"},
					{Title: "", DurationMinutes: 0, XP: -5, Category: "bogus"},
				}},
				{Day: "Funday", Tasks: []models.PlanTask{
					{Title: "dropped with its day", DurationMinutes: 30},
				}},
			},
		},
	}

	plan, err := SanitizeCustomPlan(raw, "medium")
	if err != nil {
		t.Fatalf("SanitizeCustomPlan: %v", err)
	}
	if len(plan) != 1 || plan[0].Week != 1 {
		t.Fatalf("week numbering not normalized: %+v", plan)
	}
	if len(plan[0].Days) != 1 {
		t.Fatalf("invalid day not dropped: %+v", plan[0].Days)
	}

	tasks := plan[0].Days[0].Tasks
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	if tasks[0].XP != 72 {
		t.Fatalf("client XP not recomputed: got %d, want 72", tasks[0].XP)
	}
	if tasks[1].Title != "Untitled Task" {
		t.Fatalf("empty title not defaulted: %q", tasks[1].Title)
	}
	if tasks[1].Category != models.CategorySkills {
		t.Fatalf("invalid category not defaulted: %q", tasks[1].Category)
	}
	if tasks[1].DurationMinutes != 30 {
		t.Fatalf("zero duration not defaulted: %d", tasks[1].DurationMinutes)
	}
	if tasks[1].XP != 36 {
		t.Fatalf("defaulted task XP=%d, want 36", tasks[1].XP)
	}
}

func TestSanitizeCustomPlanRequiresFocus(t *testing.T) {
	raw := []models.PlanWeek{{Week: 1, Focus: "  "}}
	if _, err := SanitizeCustomPlan(raw, "easy"); err == nil {
		t.Fatal("expected error for week without focus")
	}
}

func TestFillMissingDays(t *testing.T) {
	plan := FillMissingDays([]models.PlanWeek{
		{
			Week:  1,
			Focus: "Sparse",
			Days: []models.PlanDay{
				{Day: "Wednesday", Tasks: []models.PlanTask{{Title: "Only task"}}},
			},
		},
	})

	days := plan[0].Days
	if len(days) != 7 {
		t.Fatalf("got %d days, want 7", len(days))
	}
	for i, name := range models.DayNames {
		if days[i].Day != name {
			t.Fatalf("day %d is %q, want %q", i, days[i].Day, name)
		}
	}
	if len(days[2].Tasks) != 1 {
		t.Fatalf("existing Wednesday tasks lost: %+v", days[2])
	}
	if days[0].Tasks == nil || len(days[0].Tasks) != 0 {
		t.Fatalf("padded day should have empty task list, got %+v", days[0].Tasks)
	}
}
