package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"lg/nutriplan-api/internal/store"
)

// validBodyMeasures checks optional measurements. Returns "" when valid.
func validBodyMeasures(weightKG, bodyFatPct, waistCM *float64) string {
	if weightKG != nil && (*weightKG <= 0 || *weightKG > 500) {
		return "weight_kg must be between 0 and 500"
	}
	if bodyFatPct != nil && (*bodyFatPct <= 0 || *bodyFatPct >= 100) {
		return "body_fat_pct must be between 0 and 100"
	}
	if waistCM != nil && (*waistCM <= 0 || *waistCM > 300) {
		return "waist_cm must be between 0 and 300"
	}
	return ""
}

// getBodyLog returns body log entries for the authenticated user within [start, end].
// GET /api/body-log?start=YYYY-MM-DD&end=YYYY-MM-DD. Both params required.
func (h *Handler) getBodyLog(c *gin.Context) {
	start := c.Query("start")
	end := c.Query("end")

	if start == "" || end == "" {
		apiError(c, http.StatusBadRequest, "start and end query params are required")
		return
	}
	if !validDate(start) {
		apiError(c, http.StatusBadRequest, "invalid start, expected YYYY-MM-DD")
		return
	}
	if !validDate(end) {
		apiError(c, http.StatusBadRequest, "invalid end, expected YYYY-MM-DD")
		return
	}
	if start > end {
		apiError(c, http.StatusBadRequest, "start must not be after end")
		return
	}

	entries, err := h.store.ListBodyLog(c, c.GetInt("user_id"), start, end)
	if err != nil {
		storeError(c, "getBodyLog", err, "body log not found", "failed to fetch body log")
		return
	}
	if entries == nil {
		entries = []store.BodyLogEntry{}
	}
	c.JSON(http.StatusOK, entries)
}

// upsertBodyLogEntry creates or replaces the entry for the given date.
// POST /api/body-log. Body: {"date": "YYYY-MM-DD", "weight_kg": 80.5, "body_fat_pct"?, "waist_cm"?}.
func (h *Handler) upsertBodyLogEntry(c *gin.Context) {
	var body store.BodyLogInput
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date == "" {
		apiError(c, http.StatusBadRequest, "date is required")
		return
	}
	if !validDate(body.Date) {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if msg := validBodyMeasures(&body.WeightKG, body.BodyFatPct, body.WaistCM); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	entry, err := h.store.UpsertBodyLogEntry(c, c.GetInt("user_id"), body)
	if err != nil {
		storeError(c, "upsertBodyLogEntry", err, "body log entry not found", "failed to upsert body log entry")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// updateBodyLogEntry partially updates an existing entry. Omitted fields keep their value.
// PUT /api/body-log/:id.
func (h *Handler) updateBodyLogEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body store.BodyLogPatch
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if body.Date != nil && !validDate(*body.Date) {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}
	if msg := validBodyMeasures(body.WeightKG, body.BodyFatPct, body.WaistCM); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}

	entry, err := h.store.UpdateBodyLogEntry(c, c.GetInt("user_id"), id, body)
	if errors.Is(err, store.ErrConflict) {
		apiError(c, http.StatusConflict, "a body log entry already exists for that date")
		return
	}
	if err != nil {
		storeError(c, "updateBodyLogEntry", err, "body log entry not found", "failed to update body log entry")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// deleteBodyLogEntry removes an entry by ID. Ownership is enforced by the store.
// DELETE /api/body-log/:id.
func (h *Handler) deleteBodyLogEntry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteBodyLogEntry(c, c.GetInt("user_id"), id); err != nil {
		storeError(c, "deleteBodyLogEntry", err, "body log entry not found", "failed to delete body log entry")
		return
	}
	c.Status(http.StatusNoContent)
}
