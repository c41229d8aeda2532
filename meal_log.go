package main

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"lg/nutriplan-api/internal/nutrition"
	"lg/nutriplan-api/internal/store"
)

/* ─── Response types ─────────────────────────────────────────────────── */

// macroTotals is a consumed (or remaining) amount of energy and macros.
type macroTotals struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// dailySummary is the response shape for GET /meal-log/daily. Targets and
// Remaining are null when the user has no plan yet.
type dailySummary struct {
	Date      string                    `json:"date"`
	Consumed  macroTotals               `json:"consumed"`
	Targets   *nutrition.MacroBreakdown `json:"targets"`
	Remaining *macroTotals              `json:"remaining"`
	Items     []store.MealLogItem       `json:"items"`
}

// weekDaySummary is one day's entry in the GET /meal-log/week-summary response.
// Days with no logged items have HasData=false and zero totals.
type weekDaySummary struct {
	Date           store.DateOnly `json:"date"`
	Consumed       macroTotals    `json:"consumed"`
	Items          int            `json:"items"`
	TargetCalories *int           `json:"target_calories"`
	CaloriesLeft   *int           `json:"calories_left"`
	HasData        bool           `json:"has_data"`
}

// remainingAgainst subtracts consumed from the plan's targets. Negative means over.
func remainingAgainst(targets nutrition.MacroBreakdown, consumed macroTotals) macroTotals {
	return macroTotals{
		Calories: int(math.Round(targets.TotalCalories)) - consumed.Calories,
		ProteinG: targets.ProteinGrams - consumed.ProteinG,
		CarbsG:   targets.CarbGrams - consumed.CarbsG,
		FatG:     targets.FatGrams - consumed.FatG,
	}
}

// mondayOf returns midnight UTC of the Monday on or before t.
func mondayOf(t time.Time) time.Time {
	t = t.UTC()
	weekday := int(t.Weekday()) // 0=Sun
	if weekday == 0 {
		weekday = 7 // treat Sunday as day 7 so Mon=1..Sun=7
	}
	return t.AddDate(0, 0, -(weekday - 1)).Truncate(24 * time.Hour)
}

// targetsOrNil looks up the user's effective targets for summaries. Lookup
// failures are logged and treated as "no plan" so the log itself still loads.
func (h *Handler) targetsOrNil(c *gin.Context, userID int) *nutrition.MacroBreakdown {
	targets, ok, err := h.lookupTargets(c, userID)
	if err != nil {
		log.Warn().Err(err).Str("op", "targetsOrNil").Int("user_id", userID).Msg("targets lookup failed")
		return nil
	}
	if !ok {
		return nil
	}
	return &targets
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getDailySummary returns meal log items and totals for a date, compared
// against the effective plan targets.
// GET /api/meal-log/daily?date=YYYY-MM-DD (defaults to today).
func (h *Handler) getDailySummary(c *gin.Context) {
	userID := c.GetInt("user_id")
	date := c.DefaultQuery("date", time.Now().Format("2006-01-02"))

	// Validate date format before querying; an invalid value silently returns no rows.
	if !validDate(date) {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	items, err := h.store.ListMealLogItems(c, userID, date)
	if err != nil {
		storeError(c, "getDailySummary", err, "items not found", "failed to fetch items")
		return
	}
	// Ensure items is an empty array (not null) in JSON
	if items == nil {
		items = []store.MealLogItem{}
	}

	var consumed macroTotals
	for _, item := range items {
		consumed.Calories += item.Calories
		if item.ProteinG != nil {
			consumed.ProteinG += *item.ProteinG
		}
		if item.CarbsG != nil {
			consumed.CarbsG += *item.CarbsG
		}
		if item.FatG != nil {
			consumed.FatG += *item.FatG
		}
	}

	summary := dailySummary{Date: date, Consumed: consumed, Items: items}
	if targets := h.targetsOrNil(c, userID); targets != nil {
		remaining := remainingAgainst(*targets, consumed)
		summary.Targets = targets
		summary.Remaining = &remaining
	}
	c.JSON(http.StatusOK, summary)
}

// getWeekSummary returns per-day totals for the Mon-Sun week containing
// week_start; any day of the week may be passed. Days with no logged items are
// included with has_data=false.
// GET /api/meal-log/week-summary?week_start=YYYY-MM-DD (defaults to current week).
func (h *Handler) getWeekSummary(c *gin.Context) {
	userID := c.GetInt("user_id")

	var weekStart time.Time
	if s := c.Query("week_start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			apiError(c, http.StatusBadRequest, "invalid week_start, expected YYYY-MM-DD")
			return
		}
		weekStart = mondayOf(t)
	} else {
		weekStart = mondayOf(time.Now())
	}
	weekEnd := weekStart.AddDate(0, 0, 6)

	rows, err := h.store.DailyTotals(c, userID, weekStart.Format("2006-01-02"), weekEnd.Format("2006-01-02"))
	if err != nil {
		storeError(c, "getWeekSummary", err, "no data", "failed to fetch week data")
		return
	}

	// Index rows by date string for O(1) merge.
	rowByDate := make(map[string]store.DayTotals, len(rows))
	for _, r := range rows {
		rowByDate[r.Date.Format("2006-01-02")] = r
	}

	var targetCalories *int
	if targets := h.targetsOrNil(c, userID); targets != nil {
		kcal := int(math.Round(targets.TotalCalories))
		targetCalories = &kcal
	}

	// Build a full 7-day response, filling zeros for days with no data.
	result := make([]weekDaySummary, 7)
	for i := range result {
		d := weekStart.AddDate(0, 0, i)
		day := weekDaySummary{Date: store.DateOnly{Time: d}, TargetCalories: targetCalories}
		if row, ok := rowByDate[d.Format("2006-01-02")]; ok {
			day.HasData = true
			day.Items = row.Items
			day.Consumed = macroTotals{Calories: row.Calories, ProteinG: row.ProteinG, CarbsG: row.CarbsG, FatG: row.FatG}
		}
		if targetCalories != nil {
			left := *targetCalories - day.Consumed.Calories
			day.CaloriesLeft = &left
		}
		result[i] = day
	}

	c.JSON(http.StatusOK, result)
}

// validateMealItem checks the fields shared by create and update. Returns "" when valid.
func validateMealItem(mealName, itemName *string, calories *int, macros ...*float64) string {
	if mealName != nil && strings.TrimSpace(*mealName) == "" {
		return "meal_name is required"
	}
	if itemName != nil && strings.TrimSpace(*itemName) == "" {
		return "item_name is required"
	}
	if calories != nil && *calories < 0 {
		return "calories must not be negative"
	}
	for _, m := range macros {
		if m != nil && *m < 0 {
			return "macros must not be negative"
		}
	}
	return ""
}

// createMealLogItem inserts a new meal log entry.
// POST /api/meal-log/items. Defaults date to today if omitted.
func (h *Handler) createMealLogItem(c *gin.Context) {
	var body store.MealLogItemInput
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateMealItem(&body.MealName, &body.ItemName, &body.Calories, body.ProteinG, body.CarbsG, body.FatG); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}
	if body.Date == "" {
		body.Date = time.Now().Format("2006-01-02")
	}
	if !validDate(body.Date) {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	item, err := h.store.CreateMealLogItem(c, c.GetInt("user_id"), body)
	if err != nil {
		storeError(c, "createMealLogItem", err, "item not found", "failed to create item")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// updateMealLogItem updates an existing meal log entry. Omitted fields keep their value.
// PUT /api/meal-log/items/:id.
func (h *Handler) updateMealLogItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var body store.MealLogItemPatch
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if msg := validateMealItem(body.MealName, body.ItemName, body.Calories, body.ProteinG, body.CarbsG, body.FatG); msg != "" {
		apiError(c, http.StatusBadRequest, msg)
		return
	}
	if body.Date != nil && !validDate(*body.Date) {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	item, err := h.store.UpdateMealLogItem(c, c.GetInt("user_id"), id, body)
	if err != nil {
		storeError(c, "updateMealLogItem", err, "item not found", "failed to update item")
		return
	}
	c.JSON(http.StatusOK, item)
}

// deleteMealLogItem removes a meal log entry. Returns 204 on success.
// DELETE /api/meal-log/items/:id.
func (h *Handler) deleteMealLogItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.store.DeleteMealLogItem(c, c.GetInt("user_id"), id); err != nil {
		storeError(c, "deleteMealLogItem", err, "item not found", "failed to delete item")
		return
	}
	c.Status(http.StatusNoContent)
}
