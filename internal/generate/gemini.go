// Package generate wraps the external AI roadmap-generation service.
// The rest of the system treats it as an opaque collaborator that
// returns a structured weekly plan or fails.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ascendhq/ascend-go/internal/game"
	"github.com/ascendhq/ascend-go/internal/models"
)

// ErrGenerationFailed is returned after the retry also produced a
// structurally invalid plan.
var ErrGenerationFailed = errors.New("AI roadmap generation failed")

// RoadmapInput is everything the generator needs to build a plan.
type RoadmapInput struct {
	Goal          string
	DurationWeeks int
	Difficulty    string
	HoursPerDay   float64
	SkillLevel    string
}

// GeneratedRoadmap is the structured plan the generator returns.
type GeneratedRoadmap struct {
	Title              string            `json:"title"`
	Goal               string            `json:"goal"`
	TotalDurationWeeks int               `json:"total_duration_weeks"`
	Difficulty         string            `json:"difficulty"`
	WeeklyPlan         []models.PlanWeek `json:"weekly_plan"`
}

// Generator produces roadmap plans and titles. Handlers depend on this
// interface so tests can substitute a stub.
type Generator interface {
	GenerateRoadmap(ctx context.Context, in RoadmapInput) (*GeneratedRoadmap, error)
	ExtractTitle(ctx context.Context, goal string) (string, error)
}

// GeminiClient calls the Gemini generateContent REST endpoint. The
// generation call can take tens of seconds; callers wait synchronously.
type GeminiClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewGeminiClient creates a client for the given API key and model.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: "https://generativelanguage.googleapis.com",
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

// GenerateRoadmap builds the full weekly plan. If the first response
// fails the shape check, it retries exactly once with a strengthened
// prompt before surfacing a terminal failure. No other automatic
// retries happen anywhere.
func (c *GeminiClient) GenerateRoadmap(ctx context.Context, in RoadmapInput) (*GeneratedRoadmap, error) {
	prompt := buildRoadmapPrompt(in)

	result, firstErr := c.generateOnce(ctx, prompt)
	if firstErr == nil {
		return result, nil
	}

	retryPrompt := prompt + "\n\nIMPORTANT: Your previous response was invalid JSON. Return ONLY raw JSON, nothing else."
	result, retryErr := c.generateOnce(ctx, retryPrompt)
	if retryErr == nil {
		return result, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, retryErr)
}

func (c *GeminiClient) generateOnce(ctx context.Context, prompt string) (*GeneratedRoadmap, error) {
	text, err := c.callModel(ctx, prompt, 0.7, 32768)
	if err != nil {
		return nil, err
	}

	var result GeneratedRoadmap
	if err := json.Unmarshal([]byte(stripCodeFences(text)), &result); err != nil {
		return nil, fmt.Errorf("invalid roadmap JSON: %w", err)
	}
	if err := validateRoadmap(&result); err != nil {
		return nil, err
	}

	result.WeeklyPlan = game.FillMissingDays(result.WeeklyPlan)
	return &result, nil
}

// ExtractTitle distils a raw goal into a short course-style title using
// a tiny model call, falling back to FallbackTitle on any error.
func (c *GeminiClient) ExtractTitle(ctx context.Context, goal string) (string, error) {
	text, err := c.callModel(ctx, buildTitlePrompt(goal), 0.2, 30)
	if err != nil {
		return FallbackTitle(goal), nil
	}

	title := strings.TrimSpace(text)
	title = strings.Trim(title, "\"'`")
	title = strings.TrimRight(title, ".!?")
	title = strings.TrimSpace(title)
	if len(title) >= 2 && len(title) <= 100 {
		return title, nil
	}
	return FallbackTitle(goal), nil
}

// Request/response shapes for the generateContent endpoint.

type geminiRequest struct {
	Contents         []geminiContent  `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c *GeminiClient) callModel(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	payload := geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("gemini returned %d: %s", resp.StatusCode, string(data))
	}

	var parsed geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("gemini returned no candidates")
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// validateRoadmap is the structural shape check applied to generator
// output before it is trusted.
func validateRoadmap(g *GeneratedRoadmap) error {
	if strings.TrimSpace(g.Title) == "" {
		return errors.New("roadmap is missing a title")
	}
	if len(g.WeeklyPlan) == 0 {
		return errors.New("roadmap has no weeks")
	}
	for _, week := range g.WeeklyPlan {
		if week.Week < 1 {
			return fmt.Errorf("invalid week number %d", week.Week)
		}
		if strings.TrimSpace(week.Focus) == "" {
			return fmt.Errorf("week %d is missing a focus", week.Week)
		}
		for _, day := range week.Days {
			if !models.ValidDayName(day.Day) {
				return fmt.Errorf("week %d has invalid day %q", week.Week, day.Day)
			}
			for _, task := range day.Tasks {
				if strings.TrimSpace(task.Title) == "" {
					return fmt.Errorf("week %d %s has an untitled task", week.Week, day.Day)
				}
				if !models.ValidCategory(task.Category) {
					return fmt.Errorf("task %q has invalid category %q", task.Title, task.Category)
				}
				if task.DurationMinutes < game.MinTaskMinutes || task.DurationMinutes > game.MaxTaskMinutes {
					return fmt.Errorf("task %q has invalid duration %d", task.Title, task.DurationMinutes)
				}
				if task.XP < 1 || task.XP > game.MaxTaskXP {
					return fmt.Errorf("task %q has invalid xp %d", task.Title, task.XP)
				}
			}
		}
	}
	return nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

var fillerPrefixes = []string{
	"i want to become a", "i want to become", "i would like to", "i'd like to",
	"i am trying to", "my goal is to", "i want to", "learn how to", "how to",
	"become a", "become",
}

// FallbackTitle strips common filler phrases from a goal and title-cases
// the first five words. Used when the title model call fails and for
// legacy roadmaps saved without a title.
func FallbackTitle(goal string) string {
	stripped := strings.TrimSpace(goal)
	lower := strings.ToLower(stripped)
	for _, prefix := range fillerPrefixes {
		if strings.HasPrefix(lower, prefix+" ") {
			stripped = strings.TrimSpace(stripped[len(prefix):])
			break
		}
	}

	words := strings.Fields(stripped)
	if len(words) > 5 {
		words = words[:5]
	}
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}

	title := strings.Join(words, " ")
	if title == "" {
		if len(goal) > 50 {
			return goal[:50]
		}
		return goal
	}
	return title
}

func buildRoadmapPrompt(in RoadmapInput) string {
	minutes := int(in.HoursPerDay * 60)
	return fmt.Sprintf(`You are an expert curriculum designer and senior instructor. Your job is to create a highly structured, skill-oriented learning roadmap that reads like a professional course syllabus.

User Profile:
- Goal: %s
- Duration: %d weeks
- Difficulty: %s
- Available study time per day: %.1f hours (= %d minutes)
- Current level: %s

CRITICAL INSTRUCTIONS:
1. Return ONLY valid JSON. No markdown, no explanation, no backticks.
2. Each daily task represents ONE specific, atomic skill or lesson; its title must name the exact skill or concept.
3. Task descriptions must be 2-4 sentences of specific, actionable learning content tied to a named skill.
4. Week "focus" must be a curriculum module title; week "milestone" must be a concrete, demonstrable deliverable.
5. Total task duration_minutes per day must fit within %d minutes.
6. Categories must be exactly one of: "Body", "Skills", "Mindset", "Career".
7. Include ALL 7 days (Monday through Sunday) for EVERY week.
8. Generate ALL %d weeks (week 1 through week %d); do not stop early.

Return this EXACT JSON structure:
{
  "title": "<concise 2-5 word roadmap title in Title Case>",
  "goal": "%s",
  "total_duration_weeks": %d,
  "difficulty": "%s",
  "weekly_plan": [
    {
      "week": 1,
      "focus": "Module 1: <specific curriculum module name>",
      "milestone": "<concrete deliverable by end of week>",
      "days": [
        {
          "day": "Monday",
          "tasks": [
            {
              "title": "<exact skill or concept name>",
              "description": "<2-4 sentence course-content explanation>",
              "duration_minutes": 60,
              "xp": 50,
              "category": "Skills"
            }
          ]
        }
      ]
    }
  ]
}

Now generate the complete %d-week skill-oriented curriculum for a %s at %s difficulty aiming to: %s`,
		in.Goal, in.DurationWeeks, in.Difficulty, in.HoursPerDay, minutes, in.SkillLevel,
		minutes, in.DurationWeeks, in.DurationWeeks,
		in.Goal, in.DurationWeeks, in.Difficulty,
		in.DurationWeeks, in.SkillLevel, in.Difficulty, in.Goal)
}

func buildTitlePrompt(goal string) string {
	return fmt.Sprintf(`You are a naming expert. Convert this learning goal into a short, professional course title.

Rules:
- 2 to 5 words maximum
- Title Case (capitalise every major word)
- No punctuation at the end
- Remove ALL filler like "I want to", "learn how to", "become a"
- Preserve specific tech/tool/skill names exactly
- Output ONLY the title, nothing else, no quotes, no explanation

Goal: "%s"`, strings.TrimSpace(goal))
}
