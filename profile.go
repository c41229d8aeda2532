package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/nutriplan-api/internal/nutrition"
	"lg/nutriplan-api/internal/store"
)

// profileResponse is the stored profile plus the baseline plan computed from it.
// Plan is omitted until every required metric has been filled in.
type profileResponse struct {
	store.Profile
	Plan *nutrition.Plan `json:"plan,omitempty"`
}

func newProfileResponse(p store.Profile) profileResponse {
	resp := profileResponse{Profile: p}
	if plan, ok := nutrition.BuildPlan(p.Metrics()); ok {
		resp.Plan = &plan
	}
	return resp
}

// getProfile returns the body profile for the authenticated user.
// GET /api/profile.
func (h *Handler) getProfile(c *gin.Context) {
	p, err := h.store.GetProfile(c, c.GetInt("user_id"))
	if err != nil {
		storeError(c, "getProfile", err, "profile not found", "failed to fetch profile")
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(p))
}

// patchProfile updates only the provided profile fields.
// PATCH /api/profile. Pointer fields distinguish "not provided" from zero.
func (h *Handler) patchProfile(c *gin.Context) {
	var body store.ProfilePatch
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateProfilePatch(body); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}
	if body == (store.ProfilePatch{}) {
		apiError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	p, err := h.store.UpdateProfile(c, c.GetInt("user_id"), body)
	if err != nil {
		storeError(c, "patchProfile", err, "profile not found", "failed to update profile")
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(p))
}

// validateProfilePatch rejects unknown enum values and out-of-range numbers up
// front; an unknown activity level would otherwise silently fall back to sedentary.
// Returns "" when the patch is acceptable.
func validateProfilePatch(p store.ProfilePatch) string {
	if p.BiologicalSex != nil {
		switch nutrition.Sex(*p.BiologicalSex) {
		case nutrition.SexMale, nutrition.SexFemale, nutrition.SexOther:
		default:
			return "biological_sex must be one of: male, female, other"
		}
	}
	if p.ActivityLevel != nil && !nutrition.ValidActivityLevel(nutrition.ActivityLevel(*p.ActivityLevel)) {
		return "activity_level must be one of: sedentary, light, moderate, active, extra_active"
	}
	if p.DietGoal != nil && !nutrition.ValidGoal(nutrition.Goal(*p.DietGoal)) {
		return "diet_goal must be one of: fat_loss, muscle_gain, recomp, maintain"
	}
	if p.AgeYears != nil && (*p.AgeYears < 1 || *p.AgeYears > 120) {
		return "age_years must be between 1 and 120"
	}
	ranges := []struct {
		name     string
		v        *float64
		min, max float64
	}{
		{"height_cm", p.HeightCM, 50, 272},
		{"weight_kg", p.WeightKG, 20, 500},
		{"body_fat_pct", p.BodyFatPct, 1, 75},
		{"target_weight_kg", p.TargetWeightKG, 20, 500},
	}
	for _, r := range ranges {
		if r.v != nil && (*r.v < r.min || *r.v > r.max) {
			return r.name + " out of range"
		}
	}
	return ""
}
