package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/nutriplan-api/internal/nutrition"
	"lg/nutriplan-api/internal/store"
)

/* ─── Request / Response types ───────────────────────────────────────── */

// targetsResponse is the response for GET /api/planner/targets. Example is true
// when the user's profile is incomplete and the plan was built from ExampleProfile.
type targetsResponse struct {
	Plan    nutrition.Plan `json:"plan"`
	Example bool           `json:"example"`
}

// mealsRequest is the optional body for POST /api/planner/meals.
type mealsRequest struct {
	Shares []nutrition.MealShare `json:"shares"`
}

// mealsResponse pairs the daily totals used with the per-meal split.
type mealsResponse struct {
	Daily nutrition.MacroBreakdown `json:"daily"`
	Meals []nutrition.MealTargets  `json:"meals"`
}

func hasOverrides(o nutrition.CustomOverrides) bool {
	return o.CustomTotalCalories != nil || o.CustomProteinPerKg != nil || o.RemainingCarbPct != nil
}

// validateMetrics applies the profile PATCH rules to a posted calculator input.
func validateMetrics(m nutrition.ProfileMetrics) string {
	var patch store.ProfilePatch
	if m.Sex != nil {
		s := string(*m.Sex)
		patch.BiologicalSex = &s
	}
	if m.ActivityLevel != nil {
		s := string(*m.ActivityLevel)
		patch.ActivityLevel = &s
	}
	if m.DietGoal != nil {
		s := string(*m.DietGoal)
		patch.DietGoal = &s
	}
	if m.AgeYears != nil {
		age := int(*m.AgeYears)
		patch.AgeYears = &age
	}
	patch.HeightCM = m.HeightCm
	patch.WeightKG = m.WeightKg
	return validateProfilePatch(patch)
}

// validateOverrides range-checks the custom plan knobs. Returns "" when valid.
func validateOverrides(o nutrition.CustomOverrides) string {
	if o.CustomTotalCalories != nil && *o.CustomTotalCalories <= 0 {
		return "custom_total_calories must be positive"
	}
	if o.CustomProteinPerKg != nil && *o.CustomProteinPerKg < 0 {
		return "custom_protein_per_kg must not be negative"
	}
	if o.RemainingCarbPct != nil && (*o.RemainingCarbPct < 0 || *o.RemainingCarbPct > 100) {
		return "remaining_carb_pct must be between 0 and 100"
	}
	return ""
}

// buildResults computes the baseline plan and, when any override is set, the
// custom breakdown for a set of planner form values.
func buildResults(form store.PlannerFormValues) (store.PlannerResults, bool) {
	plan, ok := nutrition.BuildPlan(form.Profile)
	if !ok {
		return store.PlannerResults{}, false
	}
	results := store.PlannerResults{Baseline: plan}
	if hasOverrides(form.Overrides) {
		custom := nutrition.RecalculateCustom(form.Overrides, plan, *form.Profile.WeightKg)
		results.Custom = &custom
	}
	return results, true
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getTargets returns the baseline plan for the stored profile.
// GET /api/planner/targets. An incomplete profile yields the example plan.
func (h *Handler) getTargets(c *gin.Context) {
	p, err := h.store.GetProfile(c, c.GetInt("user_id"))
	if err != nil {
		storeError(c, "getTargets", err, "profile not found", "failed to fetch profile")
		return
	}
	if plan, ok := nutrition.BuildPlan(p.Metrics()); ok {
		c.JSON(http.StatusOK, targetsResponse{Plan: plan})
		return
	}
	plan, _ := nutrition.BuildPlan(nutrition.ExampleProfile())
	c.JSON(http.StatusOK, targetsResponse{Plan: plan, Example: true})
}

// calculatePlan computes a plan from a posted profile without persisting anything.
// POST /api/planner/calculate.
func (h *Handler) calculatePlan(c *gin.Context) {
	var body nutrition.ProfileMetrics
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateMetrics(body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}
	plan, ok := nutrition.BuildPlan(body)
	if !ok {
		apiError(c, http.StatusBadRequest, "profile is incomplete")
		return
	}
	c.JSON(http.StatusOK, plan)
}

// calculateCustom recalculates the custom breakdown from posted overrides
// against the stored profile's baseline. Nothing is saved.
// POST /api/planner/custom.
func (h *Handler) calculateCustom(c *gin.Context) {
	var body nutrition.CustomOverrides
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateOverrides(body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}
	p, err := h.store.GetProfile(c, c.GetInt("user_id"))
	if err != nil {
		storeError(c, "calculateCustom", err, "profile not found", "failed to fetch profile")
		return
	}
	metrics := p.Metrics()
	baseline, ok := nutrition.BuildPlan(metrics)
	if !ok {
		apiError(c, http.StatusBadRequest, "profile is incomplete")
		return
	}
	c.JSON(http.StatusOK, nutrition.RecalculateCustom(body, baseline, *metrics.WeightKg))
}

// getPlanner returns the saved smart planner document.
// GET /api/planner.
func (h *Handler) getPlanner(c *gin.Context) {
	data, err := h.store.GetPlannerData(c, c.GetInt("user_id"))
	if err != nil {
		storeError(c, "getPlanner", err, "no saved planner data", "failed to fetch planner data")
		return
	}
	c.JSON(http.StatusOK, data)
}

// savePlanner recomputes results from the posted form values and saves both.
// PUT /api/planner. Body: {"profile": {...}, "overrides": {...}}.
func (h *Handler) savePlanner(c *gin.Context) {
	var form store.PlannerFormValues
	if err := c.ShouldBindJSON(&form); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateMetrics(form.Profile); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}
	if msg := validateOverrides(form.Overrides); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}
	results, ok := buildResults(form)
	if !ok {
		apiError(c, http.StatusBadRequest, "profile is incomplete")
		return
	}

	data := store.PlannerData{FormValues: form, Results: results}
	if err := h.store.SavePlannerData(c, c.GetInt("user_id"), data); err != nil {
		storeError(c, "savePlanner", err, "profile not found", "failed to save planner data")
		return
	}
	c.JSON(http.StatusOK, data)
}

// resetCustom clears the custom overrides and the custom result, keeping the baseline.
// DELETE /api/planner/custom.
func (h *Handler) resetCustom(c *gin.Context) {
	userID := c.GetInt("user_id")
	data, err := h.store.GetPlannerData(c, userID)
	if err != nil {
		storeError(c, "resetCustom", err, "no saved planner data", "failed to fetch planner data")
		return
	}
	data.FormValues.Overrides = nutrition.CustomOverrides{}
	data.Results.Custom = nil
	if err := h.store.SavePlannerData(c, userID, data); err != nil {
		storeError(c, "resetCustom", err, "profile not found", "failed to save planner data")
		return
	}
	c.JSON(http.StatusOK, data)
}

// distributeMeals splits the effective daily targets across meals.
// POST /api/planner/meals. Uses the saved planner (custom if set, else baseline),
// falling back to the stored profile's plan. Shares default to DefaultMealShares.
func (h *Handler) distributeMeals(c *gin.Context) {
	var body mealsRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			apiError(c, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	shares := body.Shares
	if len(shares) == 0 {
		shares = nutrition.DefaultMealShares()
	}

	daily, ok := h.effectiveTargets(c)
	if !ok {
		return
	}

	meals, err := nutrition.DistributeMeals(daily, shares)
	if err != nil {
		apiError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, mealsResponse{Daily: daily, Meals: meals})
}

// lookupTargets resolves the daily macro targets the user is working to: the
// saved planner's effective breakdown, else the stored profile's plan. ok is
// false when neither exists.
func (h *Handler) lookupTargets(c *gin.Context, userID int) (nutrition.MacroBreakdown, bool, error) {
	data, err := h.store.GetPlannerData(c, userID)
	if err == nil {
		return data.Results.Effective(), true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nutrition.MacroBreakdown{}, false, err
	}

	p, err := h.store.GetProfile(c, userID)
	if err != nil {
		return nutrition.MacroBreakdown{}, false, err
	}
	plan, ok := nutrition.BuildPlan(p.Metrics())
	return plan.Macros, ok, nil
}

// effectiveTargets is lookupTargets for handlers that need a plan. On failure
// it writes the error response and returns false.
func (h *Handler) effectiveTargets(c *gin.Context) (nutrition.MacroBreakdown, bool) {
	daily, ok, err := h.lookupTargets(c, c.GetInt("user_id"))
	if err != nil {
		storeError(c, "effectiveTargets", err, "profile not found", "failed to fetch targets")
		return daily, false
	}
	if !ok {
		apiError(c, http.StatusBadRequest, "no plan available: complete your profile first")
		return daily, false
	}
	return daily, true
}
