package nutrition

import (
	"errors"
	"fmt"
	"math"
)

// ErrSharesNotWhole is returned when a column of meal shares doesn't add up to 100%.
var ErrSharesNotWhole = errors.New("meal shares must sum to 100%")

// shareTolerance absorbs the one-decimal rounding in the default table.
const shareTolerance = 0.1

// MealShare is one meal's slice of the daily totals, in percent.
type MealShare struct {
	MealName    string  `json:"meal_name" yaml:"meal_name"`
	CaloriesPct float64 `json:"calories_pct" yaml:"calories_pct"`
	ProteinPct  float64 `json:"protein_pct" yaml:"protein_pct"`
	CarbsPct    float64 `json:"carbs_pct" yaml:"carbs_pct"`
	FatPct      float64 `json:"fat_pct" yaml:"fat_pct"`
}

// MealTargets is the per-meal target produced by DistributeMeals.
type MealTargets struct {
	MealName string  `json:"meal_name" yaml:"meal_name"`
	Calories float64 `json:"calories" yaml:"calories"`
	ProteinG float64 `json:"protein_g" yaml:"protein_g"`
	CarbsG   float64 `json:"carbs_g" yaml:"carbs_g"`
	FatG     float64 `json:"fat_g" yaml:"fat_g"`
}

// DefaultMealShares returns the six-meal distribution used when the user hasn't
// set their own. A fresh slice is returned on every call.
func DefaultMealShares() []MealShare {
	return []MealShare{
		{MealName: "Breakfast", CaloriesPct: 22.5, ProteinPct: 21.4, CarbsPct: 25, FatPct: 21.7},
		{MealName: "Morning Snack", CaloriesPct: 10, ProteinPct: 10.7, CarbsPct: 10, FatPct: 10.6},
		{MealName: "Lunch", CaloriesPct: 22.5, ProteinPct: 21.4, CarbsPct: 25, FatPct: 21.7},
		{MealName: "Afternoon Snack", CaloriesPct: 10, ProteinPct: 10.7, CarbsPct: 10, FatPct: 10.6},
		{MealName: "Dinner", CaloriesPct: 20, ProteinPct: 21.4, CarbsPct: 20, FatPct: 18.7},
		{MealName: "Evening Snack", CaloriesPct: 15, ProteinPct: 14.4, CarbsPct: 10, FatPct: 16.7},
	}
}

// ValidateMealShares checks that each column of shares sums to 100 and that
// no share is negative.
func ValidateMealShares(shares []MealShare) error {
	var cal, pro, carb, fat float64
	for _, s := range shares {
		if s.CaloriesPct < 0 || s.ProteinPct < 0 || s.CarbsPct < 0 || s.FatPct < 0 {
			return fmt.Errorf("%w: %q has a negative share", ErrSharesNotWhole, s.MealName)
		}
		cal += s.CaloriesPct
		pro += s.ProteinPct
		carb += s.CarbsPct
		fat += s.FatPct
	}
	columns := []struct {
		name string
		sum  float64
	}{{"calories", cal}, {"protein", pro}, {"carbs", carb}, {"fat", fat}}
	for _, col := range columns {
		if math.Abs(col.sum-100) > shareTolerance {
			return fmt.Errorf("%w: %s column sums to %.1f", ErrSharesNotWhole, col.name, col.sum)
		}
	}
	return nil
}

// DistributeMeals splits the daily totals in daily across meals by shares.
// Each per-meal value is rounded to a whole number.
func DistributeMeals(daily MacroBreakdown, shares []MealShare) ([]MealTargets, error) {
	if err := ValidateMealShares(shares); err != nil {
		return nil, err
	}
	out := make([]MealTargets, 0, len(shares))
	for _, s := range shares {
		out = append(out, MealTargets{
			MealName: s.MealName,
			Calories: math.Round(daily.TotalCalories * s.CaloriesPct / 100),
			ProteinG: math.Round(daily.ProteinGrams * s.ProteinPct / 100),
			CarbsG:   math.Round(daily.CarbGrams * s.CarbsPct / 100),
			FatG:     math.Round(daily.FatGrams * s.FatPct / 100),
		})
	}
	return out, nil
}
