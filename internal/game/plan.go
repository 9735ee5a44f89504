package game

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/ascendhq/ascend-go/internal/models"
)

// Lookup failures for the (week, day, title) natural key.
var (
	ErrWeekNotFound = errors.New("week not found")
	ErrDayNotFound  = errors.New("day not found")
	ErrTaskNotFound = errors.New("task not found")
)

// FindTask resolves a task by its composite natural key: week number,
// day name, task title. XP and category are always read from the result,
// never from a client request.
func FindTask(plan []models.PlanWeek, week int, day, title string) (*models.PlanTask, error) {
	for wi := range plan {
		if plan[wi].Week != week {
			continue
		}
		for di := range plan[wi].Days {
			if plan[wi].Days[di].Day != day {
				continue
			}
			for ti := range plan[wi].Days[di].Tasks {
				if plan[wi].Days[di].Tasks[ti].Title == title {
					return &plan[wi].Days[di].Tasks[ti], nil
				}
			}
			return nil, ErrTaskNotFound
		}
		return nil, ErrDayNotFound
	}
	return nil, ErrWeekNotFound
}

// CountTasks returns the static number of tasks across the whole plan.
func CountTasks(plan []models.PlanWeek) int {
	total := 0
	for _, w := range plan {
		for _, d := range w.Days {
			total += len(d.Tasks)
		}
	}
	return total
}

// ProgressPercent recomputes a roadmap's progress from scratch:
// round(100 * completed / total). An empty plan is 0%.
func ProgressPercent(completedCount, totalTasks int) int {
	if totalTasks <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(completedCount) / float64(totalTasks)))
}

// SanitizeCustomPlan validates and normalizes a client-authored weekly
// plan. Week numbers are reassigned sequentially, days outside the seven
// known names are dropped, durations are clamped, categories default to
// Skills, and every task's XP is recomputed server-side from duration
// and difficulty.
func SanitizeCustomPlan(raw []models.PlanWeek, difficulty string) ([]models.PlanWeek, error) {
	plan := make([]models.PlanWeek, 0, len(raw))
	for wi, week := range raw {
		if strings.TrimSpace(week.Focus) == "" {
			return nil, fmt.Errorf("week %d is missing a focus/module name", wi+1)
		}

		milestone := strings.TrimSpace(week.Milestone)
		if milestone == "" {
			milestone = fmt.Sprintf("Complete Week %d", wi+1)
		}

		days := make([]models.PlanDay, 0, len(week.Days))
		for _, day := range week.Days {
			if !models.ValidDayName(day.Day) {
				continue
			}
			tasks := make([]models.PlanTask, 0, len(day.Tasks))
			for _, t := range day.Tasks {
				title := strings.TrimSpace(t.Title)
				if title == "" {
					title = "Untitled Task"
				}
				category := t.Category
				if !models.ValidCategory(category) {
					category = models.CategorySkills
				}
				minutes := ClampTaskMinutes(t.DurationMinutes)
				tasks = append(tasks, models.PlanTask{
					Title:           truncate(title, 200),
					Description:     truncate(strings.TrimSpace(t.Description), 1000),
					DurationMinutes: minutes,
					XP:              TaskXP(minutes, difficulty),
					Category:        category,
				})
			}
			days = append(days, models.PlanDay{Day: day.Day, Tasks: tasks})
		}

		plan = append(plan, models.PlanWeek{
			Week:      wi + 1,
			Focus:     truncate(strings.TrimSpace(week.Focus), 200),
			Milestone: truncate(milestone, 300),
			Days:      days,
		})
	}
	return plan, nil
}

// FillMissingDays pads every week of a generated plan so all seven day
// names are present in order, inserting empty days where the generator
// skipped one.
func FillMissingDays(plan []models.PlanWeek) []models.PlanWeek {
	for wi := range plan {
		existing := make(map[string]models.PlanDay, len(plan[wi].Days))
		for _, d := range plan[wi].Days {
			existing[d.Day] = d
		}
		days := make([]models.PlanDay, 0, len(models.DayNames))
		for _, name := range models.DayNames {
			if d, ok := existing[name]; ok {
				days = append(days, d)
			} else {
				days = append(days, models.PlanDay{Day: name, Tasks: []models.PlanTask{}})
			}
		}
		plan[wi].Days = days
	}
	return plan
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
