package main

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lg/nutriplan-api/internal/store"
)

// logMeal creates a meal log item and returns it.
func (ts *testServer) logMeal(t *testing.T, date, meal, item string, calories int, proteinG float64) store.MealLogItem {
	t.Helper()
	body := fmt.Sprintf(`{"date":%q,"meal_name":%q,"item_name":%q,"calories":%d,"protein_g":%g}`,
		date, meal, item, calories, proteinG)
	w := ts.do(http.MethodPost, "/api/meal-log/items", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[store.MealLogItem](t, w)
}

func TestDailySummary_WithoutPlan(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/meal-log/daily?date=2026-10-19", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dailySummary](t, w)
	assert.Empty(t, resp.Items)
	assert.NotNil(t, resp.Items)
	assert.Nil(t, resp.Targets)
	assert.Nil(t, resp.Remaining)
}

func TestDailySummary_AgainstPlan(t *testing.T) {
	ts := newTestServer(t)
	ts.completeProfile(t)
	ts.logMeal(t, "2026-10-19", "Breakfast", "Oats", 350, 12)
	ts.logMeal(t, "2026-10-19", "Lunch", "Chicken salad", 450, 40)
	ts.logMeal(t, "2026-10-20", "Breakfast", "Eggs", 200, 14)

	w := ts.do(http.MethodGet, "/api/meal-log/daily?date=2026-10-19", "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[dailySummary](t, w)
	assert.Len(t, resp.Items, 2)
	assert.Equal(t, 800, resp.Consumed.Calories)
	assert.InDelta(t, 52.0, resp.Consumed.ProteinG, 1e-9)
	require.NotNil(t, resp.Remaining)
	assert.Equal(t, 2259-800, resp.Remaining.Calories)
	assert.InDelta(t, 198.0-52, resp.Remaining.ProteinG, 1e-9)
}

func TestWeekSummary(t *testing.T) {
	ts := newTestServer(t)
	ts.completeProfile(t)
	ts.logMeal(t, "2026-10-19", "Breakfast", "Oats", 350, 12)
	ts.logMeal(t, "2026-10-19", "Dinner", "Salmon", 250, 30)
	ts.logMeal(t, "2026-10-21", "Lunch", "Wrap", 500, 25)
	ts.logMeal(t, "2026-10-26", "Lunch", "Next week", 900, 50)

	w := ts.do(http.MethodGet, "/api/meal-log/week-summary?week_start=2026-10-19", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	days := decode[[]weekDaySummary](t, w)
	require.Len(t, days, 7)

	assert.Equal(t, "2026-10-19", days[0].Date.Format("2006-01-02"))
	assert.True(t, days[0].HasData)
	assert.Equal(t, 2, days[0].Items)
	assert.Equal(t, 600, days[0].Consumed.Calories)
	require.NotNil(t, days[0].CaloriesLeft)
	assert.Equal(t, 2259-600, *days[0].CaloriesLeft)

	assert.False(t, days[1].HasData)
	assert.Equal(t, 2259, *days[1].CaloriesLeft)
	assert.True(t, days[2].HasData)
	assert.Equal(t, "2026-10-25", days[6].Date.Format("2006-01-02"))
	assert.False(t, days[6].HasData)
}

func TestWeekSummary_MidWeekStartSnapsToMonday(t *testing.T) {
	ts := newTestServer(t)
	ts.logMeal(t, "2026-10-19", "Breakfast", "Oats", 350, 12)

	for _, day := range []string{"2026-10-21", "2026-10-25"} { // Wednesday, Sunday
		t.Run(day, func(t *testing.T) {
			w := ts.do(http.MethodGet, "/api/meal-log/week-summary?week_start="+day, "")
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			days := decode[[]weekDaySummary](t, w)
			require.Len(t, days, 7)
			assert.Equal(t, "2026-10-19", days[0].Date.Format("2006-01-02"))
			assert.True(t, days[0].HasData)
			assert.Equal(t, "2026-10-25", days[6].Date.Format("2006-01-02"))
		})
	}
}

func TestMondayOf(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2026-10-19", "2026-10-19"},
		{"2026-10-22", "2026-10-19"},
		{"2026-10-25", "2026-10-19"},
		{"2026-10-26", "2026-10-26"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := time.Parse("2006-01-02", tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, mondayOf(d).Format("2006-01-02"))
		})
	}
}

func TestMealLogItem_UpdateDelete(t *testing.T) {
	ts := newTestServer(t)
	item := ts.logMeal(t, "2026-10-19", "Breakfast", "Oats", 350, 12)
	path := fmt.Sprintf("/api/meal-log/items/%d", item.ID)

	w := ts.do(http.MethodPut, path, `{"calories": 400}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[store.MealLogItem](t, w)
	assert.Equal(t, 400, updated.Calories)
	assert.Equal(t, "Oats", updated.ItemName)

	w = ts.do(http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = ts.do(http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMealLog_BadRequests(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name    string
		method  string
		path    string
		body    string
		wantMsg string
	}{
		{"bad daily date", http.MethodGet, "/api/meal-log/daily?date=19-10-2026", "", "invalid date, expected YYYY-MM-DD"},
		{"bad week start", http.MethodGet, "/api/meal-log/week-summary?week_start=monday", "", "invalid week_start, expected YYYY-MM-DD"},
		{"blank item", http.MethodPost, "/api/meal-log/items", `{"meal_name":"Lunch","item_name":" ","calories":100}`, "item_name is required"},
		{"negative calories", http.MethodPost, "/api/meal-log/items", `{"meal_name":"Lunch","item_name":"Soup","calories":-5}`, "calories must not be negative"},
		{"negative macros", http.MethodPost, "/api/meal-log/items", `{"meal_name":"Lunch","item_name":"Soup","calories":5,"fat_g":-1}`, "macros must not be negative"},
		{"bad id", http.MethodPut, "/api/meal-log/items/abc", `{"calories":1}`, "invalid id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(tt.method, tt.path, tt.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.wantMsg, errorMessage(t, w))
		})
	}
}
