package nutrition

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPlan_Example(t *testing.T) {
	plan, ok := BuildPlan(ExampleProfile())
	require.True(t, ok)

	assert.InDelta(t, 2259.0, plan.Energy.TargetCalories, 1e-9)
	assert.Equal(t, 198.0, plan.Macros.ProteinGrams)
	// 500 kcal/day deficit -> 3500 kcal/week -> ~0.45 kg/week loss.
	assert.InDelta(t, -0.4545, plan.EstimatedWeeklyChangeKg, 1e-3)
	assert.InDelta(t, 128.0, plan.RecommendedProteinG, 1e-9)
}

func TestBuildPlan_Incomplete(t *testing.T) {
	p := ExampleProfile()
	p.DietGoal = nil
	_, ok := BuildPlan(p)
	assert.False(t, ok)
}

func TestWeeklyWeightChangeKg(t *testing.T) {
	assert.InDelta(t, 7*300/7700.0, WeeklyWeightChangeKg(2500, 2800), 1e-12)
	assert.Zero(t, WeeklyWeightChangeKg(2500, 2500))
}

/* ─── Meal distribution ──────────────────────────────────────────────── */

func TestDefaultMealShares_Valid(t *testing.T) {
	require.NoError(t, ValidateMealShares(DefaultMealShares()))
}

func TestDistributeMeals_Defaults(t *testing.T) {
	daily := AllocateMacros(2259, 80, GoalFatLoss)
	meals, err := DistributeMeals(daily, DefaultMealShares())
	require.NoError(t, err)
	require.Len(t, meals, 6)

	assert.Equal(t, "Breakfast", meals[0].MealName)
	assert.Equal(t, 508.0, meals[0].Calories) // 2259 * 22.5%
	assert.Equal(t, 42.0, meals[0].ProteinG)  // 198 * 21.4%

	var cal float64
	for _, m := range meals {
		cal += m.Calories
	}
	// Per-meal rounding can drift the total by at most half a kcal per meal.
	assert.InDelta(t, daily.TotalCalories, cal, 3)
}

func TestDistributeMeals_RejectsBadShares(t *testing.T) {
	shares := []MealShare{
		{MealName: "Lunch", CaloriesPct: 60, ProteinPct: 50, CarbsPct: 50, FatPct: 50},
		{MealName: "Dinner", CaloriesPct: 30, ProteinPct: 50, CarbsPct: 50, FatPct: 50},
	}
	_, err := DistributeMeals(MacroBreakdown{TotalCalories: 2000}, shares)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrSharesNotWhole))
	assert.Contains(t, err.Error(), "calories column")

	shares[0] = MealShare{MealName: "Lunch", CaloriesPct: 70, ProteinPct: -1, CarbsPct: 50, FatPct: 50}
	_, err = DistributeMeals(MacroBreakdown{}, shares)
	assert.ErrorIs(t, err, ErrSharesNotWhole)
}
