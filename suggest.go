package main

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

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"lg/nutriplan-api/internal/nutrition"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// suggestMealsRequest is the request body for POST /api/planner/suggest-meals.
// When Target is omitted it is derived from the user's effective plan and the
// default meal shares for MealName.
type suggestMealsRequest struct {
	MealName    string                 `json:"meal_name"`
	Target      *nutrition.MealTargets `json:"target"`
	Preferences string                 `json:"preferences"`
}

// MealIngredient is one line of a suggested meal.
type MealIngredient struct {
	Name     string  `json:"name"`
	Amount   string  `json:"amount"`
	Unit     string  `json:"unit"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// MealSuggestion is one validated meal idea returned by the AI.
type MealSuggestion struct {
	MealTitle     string           `json:"mealTitle"`
	Description   string           `json:"description"`
	Ingredients   []MealIngredient `json:"ingredients"`
	TotalCalories float64          `json:"totalCalories"`
	TotalProtein  float64          `json:"totalProtein"`
	TotalCarbs    float64          `json:"totalCarbs"`
	TotalFat      float64          `json:"totalFat"`
	Instructions  string           `json:"instructions,omitempty"`
}

type suggestMealsResponse struct {
	MealName    string                `json:"meal_name"`
	Target      nutrition.MealTargets `json:"target"`
	Suggestions []MealSuggestion      `json:"suggestions"`
}

/* ─── Parsing ────────────────────────────────────────────────────────── */

// maxSuggestions caps how many meal ideas a response may carry.
const maxSuggestions = 3

// ErrUnrecognizedMeal is returned when the model answers {"error": "unrecognized"}.
var ErrUnrecognizedMeal = errors.New("unrecognized meal request")

// SuggestionParseError reports an AI payload that doesn't match the suggestion schema.
type SuggestionParseError struct {
	Reason string
	Err    error
}

func (e *SuggestionParseError) Error() string {
	if e.Err != nil {
		return "parse meal suggestions: " + e.Reason + ": " + e.Err.Error()
	}
	return "parse meal suggestions: " + e.Reason
}

func (e *SuggestionParseError) Unwrap() error { return e.Err }

// parseMealSuggestions decodes and validates the model's JSON content.
func parseMealSuggestions(content string) ([]MealSuggestion, error) {
	var payload struct {
		Error       string           `json:"error"`
		Suggestions []MealSuggestion `json:"suggestions"`
	}
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, &SuggestionParseError{Reason: "invalid JSON", Err: err}
	}
	if payload.Error == "unrecognized" {
		return nil, ErrUnrecognizedMeal
	}
	if payload.Error != "" {
		return nil, &SuggestionParseError{Reason: "model error " + payload.Error}
	}
	if n := len(payload.Suggestions); n == 0 || n > maxSuggestions {
		return nil, &SuggestionParseError{Reason: fmt.Sprintf("expected 1-%d suggestions, got %d", maxSuggestions, n)}
	}
	for i, s := range payload.Suggestions {
		if strings.TrimSpace(s.MealTitle) == "" {
			return nil, &SuggestionParseError{Reason: fmt.Sprintf("suggestion %d has no mealTitle", i)}
		}
		if s.TotalCalories <= 0 {
			return nil, &SuggestionParseError{Reason: fmt.Sprintf("suggestion %d has no calories", i)}
		}
		if s.TotalProtein < 0 || s.TotalCarbs < 0 || s.TotalFat < 0 {
			return nil, &SuggestionParseError{Reason: fmt.Sprintf("suggestion %d has negative macros", i)}
		}
		if len(s.Ingredients) == 0 {
			return nil, &SuggestionParseError{Reason: fmt.Sprintf("suggestion %d has no ingredients", i)}
		}
	}
	return payload.Suggestions, nil
}

/* ─── OpenAI prompt ──────────────────────────────────────────────────── */

const mealSystemPrompt = `You are a nutritionist and personal chef. Suggest 1 to 3 meals that hit the user's macro target for one meal.

Rules:
- The meals must suit the meal type (e.g. no steak for breakfast).
- Each meal's totals must be within 5% of the target, and equal the sum of its ingredients.
- Honour any stated preferences or restrictions.
- Use standard nutritional values.

Return a JSON object with one property "suggestions": an array of objects with
"mealTitle" (string), "description" (string, why it fits this user),
"ingredients" (array of {"name","amount","unit","calories","protein","carbs","fat"}),
"totalCalories", "totalProtein", "totalCarbs", "totalFat" (numbers) and optional "instructions" (string).
Only return {"error": "unrecognized"} if the request is not about food at all.
Return only valid JSON, no explanation.`

// buildMealPrompt renders the user message for one meal target.
func buildMealPrompt(mealName string, target nutrition.MealTargets, metrics nutrition.ProfileMetrics, preferences string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meal: %s\n", mealName)
	fmt.Fprintf(&b, "Target: %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat\n",
		target.Calories, target.ProteinG, target.CarbsG, target.FatG)
	if metrics.AgeYears != nil {
		fmt.Fprintf(&b, "Age: %.0f\n", *metrics.AgeYears)
	}
	if metrics.Sex != nil {
		fmt.Fprintf(&b, "Sex: %s\n", *metrics.Sex)
	}
	if metrics.ActivityLevel != nil {
		fmt.Fprintf(&b, "Activity level: %s\n", *metrics.ActivityLevel)
	}
	if metrics.DietGoal != nil {
		fmt.Fprintf(&b, "Diet goal: %s\n", *metrics.DietGoal)
	}
	if p := strings.TrimSpace(preferences); p != "" {
		fmt.Fprintf(&b, "Preferences: %s\n", p)
	}
	return b.String()
}

/* ─── OpenAI HTTP client ─────────────────────────────────────────────── */

// openAIMessage is a single message in the OpenAI chat completions request.
type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// openAIRequest is the request body for the OpenAI chat completions API.
type openAIRequest struct {
	Model          string          `json:"model"`
	Messages       []openAIMessage `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat map[string]any  `json:"response_format"`
}

// callOpenAI sends a chat completions request and returns the raw content string
// from the first choice. Uses raw net/http to avoid pulling in the OpenAI SDK.
func (h *Handler) callOpenAI(ctx context.Context, messages []openAIMessage) (string, error) {
	if h.openAIKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY not set")
	}
	model := h.openAIModel
	if model == "" {
		model = "gpt-4o-mini"
	}

	bodyBytes, err := json.Marshal(openAIRequest{
		Model:          model,
		Messages:       messages,
		Temperature:    0.4,
		ResponseFormat: map[string]any{"type": "json_object"},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.openAIBaseURL+"/v1/chat/completions", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+h.openAIKey)

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("openai returned status %d: %s", resp.StatusCode, string(respBytes))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return result.Choices[0].Message.Content, nil
}

/* ─── Handler ────────────────────────────────────────────────────────── */

// suggestMeals asks the model for meal ideas that fit one meal's macro target.
// POST /api/planner/suggest-meals.
func (h *Handler) suggestMeals(c *gin.Context) {
	var req suggestMealsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	req.MealName = strings.TrimSpace(req.MealName)
	if req.MealName == "" {
		apiError(c, http.StatusBadRequest, "meal_name is required")
		return
	}

	var metrics nutrition.ProfileMetrics
	if p, err := h.store.GetProfile(c, c.GetInt("user_id")); err == nil {
		metrics = p.Metrics()
	}

	target, ok := h.resolveMealTarget(c, req)
	if !ok {
		return
	}

	messages := []openAIMessage{
		{Role: "system", Content: mealSystemPrompt},
		{Role: "user", Content: buildMealPrompt(req.MealName, target, metrics, req.Preferences)},
	}
	content, err := h.callOpenAI(c.Request.Context(), messages)
	if err != nil {
		log.Error().Err(err).Str("op", "suggestMeals").Msg("openai request failed")
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}

	suggestions, err := parseMealSuggestions(content)
	if errors.Is(err, ErrUnrecognizedMeal) {
		c.JSON(http.StatusOK, gin.H{"error": "unrecognized"})
		return
	}
	if err != nil {
		var parseErr *SuggestionParseError
		if errors.As(err, &parseErr) {
			log.Warn().Str("op", "suggestMeals").Str("reason", parseErr.Reason).Msg("rejected AI payload")
		}
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}

	c.JSON(http.StatusOK, suggestMealsResponse{MealName: req.MealName, Target: target, Suggestions: suggestions})
}

// resolveMealTarget returns the posted target, or the default-share target for
// req.MealName from the user's effective plan. Writes the error response on failure.
func (h *Handler) resolveMealTarget(c *gin.Context, req suggestMealsRequest) (nutrition.MealTargets, bool) {
	if req.Target != nil {
		if req.Target.Calories <= 0 {
			apiError(c, http.StatusBadRequest, "target calories must be positive")
			return nutrition.MealTargets{}, false
		}
		t := *req.Target
		t.MealName = req.MealName
		return t, true
	}

	daily, ok := h.effectiveTargets(c)
	if !ok {
		return nutrition.MealTargets{}, false
	}
	meals, err := nutrition.DistributeMeals(daily, nutrition.DefaultMealShares())
	if err != nil {
		apiError(c, http.StatusInternalServerError, "failed to split daily targets")
		return nutrition.MealTargets{}, false
	}
	for _, m := range meals {
		if strings.EqualFold(m.MealName, req.MealName) {
			return m, true
		}
	}
	apiError(c, http.StatusBadRequest, "unknown meal_name; pass an explicit target")
	return nutrition.MealTargets{}, false
}
