package main

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"lg/nutriplan-api/internal/exercise"
	"lg/nutriplan-api/internal/store"
)

// generateExercisePlanRequest is the optional body of POST /api/exercise-planner/generate.
// Preferences, when present, are validated and saved before generating.
type generateExercisePlanRequest struct {
	Note        string                `json:"note"`
	Preferences *exercise.Preferences `json:"preferences"`
}

// getExercisePreferences returns the saved exercise preference form.
// GET /api/exercise-planner/preferences.
func (h *Handler) getExercisePreferences(c *gin.Context) {
	ep, err := h.store.GetExercisePlanner(c, c.GetInt("user_id"))
	if err != nil {
		storeError(c, "getExercisePreferences", err, "no saved exercise preferences", "failed to fetch exercise preferences")
		return
	}
	c.JSON(http.StatusOK, ep.Preferences)
}

// saveExercisePreferences replaces the exercise preference form. A generated
// plan stays until the next generate call.
// PUT /api/exercise-planner/preferences.
func (h *Handler) saveExercisePreferences(c *gin.Context) {
	var prefs exercise.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	ep, ok := h.storeExercisePreferences(c, prefs)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ep.Preferences)
}

// storeExercisePreferences normalizes, validates and saves prefs. Writes the
// error response on failure.
func (h *Handler) storeExercisePreferences(c *gin.Context, prefs exercise.Preferences) (store.ExercisePlanner, bool) {
	prefs.Normalize()
	if err := prefs.Validate(); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return store.ExercisePlanner{}, false
	}
	ep, err := h.store.SaveExercisePreferences(c, c.GetInt("user_id"), prefs)
	if err != nil {
		storeError(c, "saveExercisePreferences", err, "user not found", "failed to save exercise preferences")
		return store.ExercisePlanner{}, false
	}
	return ep, true
}

// getLatestExercisePlan returns the last generated plan.
// GET /api/exercise-planner/latest.
func (h *Handler) getLatestExercisePlan(c *gin.Context) {
	ep, err := h.store.GetExercisePlanner(c, c.GetInt("user_id"))
	if err == nil && ep.Plan == nil {
		err = store.ErrNotFound
	}
	if err != nil {
		storeError(c, "getLatestExercisePlan", err, "no exercise plan generated yet", "failed to fetch exercise plan")
		return
	}
	c.JSON(http.StatusOK, ep.Plan)
}

// generateExercisePlan asks the model for a weekly plan built from the saved
// (or posted) preferences and stores it as the latest plan. A model answer
// that fails validation is replaced with exercise.FallbackPlan.
// POST /api/exercise-planner/generate. Body (optional): {"note"?, "preferences"?}.
func (h *Handler) generateExercisePlan(c *gin.Context) {
	var req generateExercisePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	var ep store.ExercisePlanner
	if req.Preferences != nil {
		var ok bool
		if ep, ok = h.storeExercisePreferences(c, *req.Preferences); !ok {
			return
		}
	} else {
		var err error
		ep, err = h.store.GetExercisePlanner(c, c.GetInt("user_id"))
		if errors.Is(err, store.ErrNotFound) {
			apiError(c, http.StatusBadRequest, "save exercise preferences before generating a plan")
			return
		}
		if err != nil {
			storeError(c, "generateExercisePlan", err, "no saved exercise preferences", "failed to fetch exercise preferences")
			return
		}
	}
	prefs := ep.Preferences
	if err := prefs.GeneratePlanReady(); err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}

	messages := []openAIMessage{
		{Role: "system", Content: exercise.SystemPrompt},
		{Role: "user", Content: exercise.BuildPrompt(prefs, req.Note)},
	}
	content, err := h.callOpenAI(c.Request.Context(), messages)
	if err != nil {
		log.Error().Err(err).Str("op", "generateExercisePlan").Msg("openai request failed")
		apiError(c, http.StatusInternalServerError, "openai request failed")
		return
	}

	plan, err := exercise.ParsePlan(content)
	if err != nil {
		var parseErr *exercise.PlanParseError
		if errors.As(err, &parseErr) {
			log.Warn().Str("op", "generateExercisePlan").Str("reason", parseErr.Reason).Msg("rejected AI payload, using fallback plan")
		}
		plan = exercise.FallbackPlan(prefs)
	}
	plan.GeneratedAt = time.Now().UTC()

	saved, err := h.store.SaveExercisePlan(c, c.GetInt("user_id"), plan)
	if err != nil {
		storeError(c, "generateExercisePlan", err, "no saved exercise preferences", "failed to save exercise plan")
		return
	}
	c.JSON(http.StatusOK, saved.Plan)
}
