package handlers

import (
	"fmt"
	"regexp"
	"strings"
	"testing"

	"github.com/google/uuid"
)

var placeholderRE = regexp.MustCompile(`\$(\d+)`)

// Every cascade statement has to reference each parameter it binds.
// Postgres cannot infer a type for an unreferenced placeholder and
// rejects the Parse, which would abort the whole deletion transaction.
func TestRoadmapCascadeParameters(t *testing.T) {
	steps := roadmapCascade(uuid.New(), uuid.New())
	if len(steps) == 0 {
		t.Fatal("expected cascade statements")
	}

	for i, step := range steps {
		seen := map[string]bool{}
		for _, m := range placeholderRE.FindAllStringSubmatch(step.stmt, -1) {
			seen[m[1]] = true
		}
		if len(seen) != len(step.args) {
			t.Fatalf("step %d: %d distinct placeholders for %d args: %s", i, len(seen), len(step.args), step.stmt)
		}
		for n := 1; n <= len(step.args); n++ {
			if !seen[fmt.Sprintf("%d", n)] {
				t.Fatalf("step %d: statement never references $%d: %s", i, n, step.stmt)
			}
		}
	}
}

func TestRoadmapCascadeOrder(t *testing.T) {
	steps := roadmapCascade(uuid.New(), uuid.New())
	last := steps[len(steps)-1].stmt
	if !strings.Contains(last, "FROM roadmaps ") {
		t.Fatalf("roadmap row must be deleted last, got: %s", last)
	}
	for _, step := range steps[:len(steps)-1] {
		if strings.Contains(step.stmt, "FROM roadmaps ") {
			t.Fatalf("roadmap row deleted before its children: %s", step.stmt)
		}
	}
}
