package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// geminiText wraps text in the generateContent response envelope.
func geminiText(text string) string {
	payload := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]string{{"text": text}}}},
		},
	}
	b, _ := json.Marshal(payload)
	return string(b)
}

const validRoadmapJSON = `{
	"title": "Spanish Fluency Sprint",
	"goal": "learn spanish",
	"total_duration_weeks": 1,
	"difficulty": "medium",
	"weekly_plan": [
		{
			"week": 1,
			"focus": "Module 1: Core Vocabulary",
			"milestone": "Hold a 5 minute conversation",
			"days": [
				{
					"day": "Monday",
					"tasks": [
						{
							"title": "Learn 20 greeting phrases",
							"description": "Drill the most common greetings.",
							"duration_minutes": 45,
							"xp": 54,
							"category": "Skills"
						}
					]
				}
			]
		}
	]
}`

func newTestClient(serverURL string) *GeminiClient {
	c := NewGeminiClient("test-key", "test-model")
	c.baseURL = serverURL
	return c
}

func TestGenerateRoadmap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "test-model") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		fmt.Fprint(w, geminiText(validRoadmapJSON))
	}))
	defer srv.Close()

	got, err := newTestClient(srv.URL).GenerateRoadmap(context.Background(), RoadmapInput{
		Goal: "learn spanish", DurationWeeks: 1, Difficulty: "medium", HoursPerDay: 1, SkillLevel: "beginner",
	})
	if err != nil {
		t.Fatalf("GenerateRoadmap: %v", err)
	}
	if got.Title != "Spanish Fluency Sprint" {
		t.Fatalf("title=%q", got.Title)
	}
	if len(got.WeeklyPlan) != 1 || len(got.WeeklyPlan[0].Days) != 7 {
		t.Fatalf("expected 1 week padded to 7 days, got %d weeks", len(got.WeeklyPlan))
	}
	if got.WeeklyPlan[0].Days[0].Tasks[0].Category != "Skills" {
		t.Fatalf("task not preserved: %+v", got.WeeklyPlan[0].Days[0])
	}
}

func TestGenerateRoadmapStripsCodeFences(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, geminiText("```json\n"+validRoadmapJSON+"\n```"))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).GenerateRoadmap(context.Background(), RoadmapInput{Goal: "g"}); err != nil {
		t.Fatalf("fenced JSON rejected: %v", err)
	}
}

func TestGenerateRoadmapRetriesOnce(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			fmt.Fprint(w, geminiText("I'm sorry, here is your roadmap:"))
			return
		}
		var req struct {
			Contents []struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"contents"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			if !strings.Contains(req.Contents[0].Parts[0].Text, "previous response was invalid") {
				t.Error("retry prompt not strengthened")
			}
		}
		fmt.Fprint(w, geminiText(validRoadmapJSON))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).GenerateRoadmap(context.Background(), RoadmapInput{Goal: "g"}); err != nil {
		t.Fatalf("GenerateRoadmap after retry: %v", err)
	}
	if calls != 2 {
		t.Fatalf("made %d calls, want 2", calls)
	}
}

func TestGenerateRoadmapFailsAfterTwoBadResponses(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, geminiText("not json"))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateRoadmap(context.Background(), RoadmapInput{Goal: "g"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("got %v, want ErrGenerationFailed", err)
	}
	if calls != 2 {
		t.Fatalf("made %d calls, want exactly 2 (one retry)", calls)
	}
}

func TestValidateRoadmap(t *testing.T) {
	base := func() *GeneratedRoadmap {
		var g GeneratedRoadmap
		if err := json.Unmarshal([]byte(validRoadmapJSON), &g); err != nil {
			t.Fatalf("fixture: %v", err)
		}
		return &g
	}

	if err := validateRoadmap(base()); err != nil {
		t.Fatalf("valid roadmap rejected: %v", err)
	}

	g := base()
	g.Title = "  "
	if validateRoadmap(g) == nil {
		t.Fatal("missing title accepted")
	}

	g = base()
	g.WeeklyPlan = nil
	if validateRoadmap(g) == nil {
		t.Fatal("empty plan accepted")
	}

	g = base()
	g.WeeklyPlan[0].Days[0].Day = "Blursday"
	if validateRoadmap(g) == nil {
		t.Fatal("invalid day name accepted")
	}

	g = base()
	g.WeeklyPlan[0].Days[0].Tasks[0].Category = "Chaos"
	if validateRoadmap(g) == nil {
		t.Fatal("invalid category accepted")
	}

	g = base()
	g.WeeklyPlan[0].Days[0].Tasks[0].XP = 0
	if validateRoadmap(g) == nil {
		t.Fatal("zero xp accepted")
	}

	g = base()
	g.WeeklyPlan[0].Days[0].Tasks[0].XP = 301
	if validateRoadmap(g) == nil {
		t.Fatal("xp above cap accepted")
	}

	g = base()
	g.WeeklyPlan[0].Days[0].Tasks[0].DurationMinutes = 0
	if validateRoadmap(g) == nil {
		t.Fatal("zero duration accepted")
	}

	g = base()
	g.WeeklyPlan[0].Days[0].Tasks[0].DurationMinutes = 481
	if validateRoadmap(g) == nil {
		t.Fatal("duration above cap accepted")
	}
}

// A model response that omits xp and duration_minutes decodes to zero
// values; those tasks must never reach the stored plan.
func TestGenerateRoadmapRejectsTasksWithoutXP(t *testing.T) {
	noXP := strings.NewReplacer(`"duration_minutes": 45,`, "", `"xp": 54,`, "").Replace(validRoadmapJSON)
	if noXP == validRoadmapJSON {
		t.Fatal("fixture edit did not apply")
	}

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, geminiText(noXP))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GenerateRoadmap(context.Background(), RoadmapInput{Goal: "g"})
	if !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("got %v, want ErrGenerationFailed", err)
	}
	if calls != 2 {
		t.Fatalf("made %d calls, want exactly 2 (one retry)", calls)
	}
}

func TestExtractTitleFallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	title, err := newTestClient(srv.URL).ExtractTitle(context.Background(), "i want to become a backend developer")
	if err != nil {
		t.Fatalf("ExtractTitle: %v", err)
	}
	if title != "Backend Developer" {
		t.Fatalf("fallback title=%q, want %q", title, "Backend Developer")
	}
}

func TestExtractTitleTrimsDecoration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, geminiText("\"Mastering Go Concurrency.\"\n"))
	}))
	defer srv.Close()

	title, err := newTestClient(srv.URL).ExtractTitle(context.Background(), "learn go")
	if err != nil {
		t.Fatalf("ExtractTitle: %v", err)
	}
	if title != "Mastering Go Concurrency" {
		t.Fatalf("title=%q", title)
	}
}

func TestFallbackTitle(t *testing.T) {
	cases := []struct {
		goal string
		want string
	}{
		{"i want to become a fullstack developer", "Fullstack Developer"},
		{"learn how to play chess", "Play Chess"},
		{"run a marathon", "Run A Marathon"},
		{"one two three four five six seven", "One Two Three Four Five"},
	}
	for _, tc := range cases {
		if got := FallbackTitle(tc.goal); got != tc.want {
			t.Fatalf("FallbackTitle(%q)=%q, want %q", tc.goal, got, tc.want)
		}
	}
}
