package nutrition

import "math"

const (
	// fallbackProteinPerKg is used when the baseline can't provide a per-kg figure.
	fallbackProteinPerKg = 1.6

	defaultRemainingCarbPct = 50
)

// RecalculateCustom rebuilds the macro breakdown from user overrides on top of
// a baseline plan. Protein is fixed first from weightKg; whatever calories are
// left are split between carbs and fat. When protein alone exceeds the total,
// carbs and fat are zero (remaining calories saturate at 0).
//
// TotalCalories is the achieved total (protein + carbs + fat), which can differ
// from the requested total; percentages are computed against it.
func RecalculateCustom(o CustomOverrides, baseline Plan, weightKg float64) MacroBreakdown {
	total := baseline.Energy.TargetCalories
	if o.CustomTotalCalories != nil && *o.CustomTotalCalories > 0 {
		total = float64(*o.CustomTotalCalories)
	}

	perKg := DefaultProteinPerKg(baseline, weightKg)
	if o.CustomProteinPerKg != nil && *o.CustomProteinPerKg >= 0 {
		perKg = *o.CustomProteinPerKg
	}

	carbShare := float64(EffectiveCarbPct(o)) / 100

	proteinG := weightKg * perKg
	proteinKcal := proteinG * KcalPerGramProtein

	remaining := math.Max(0, total-proteinKcal)
	carbKcal := remaining * carbShare
	fatKcal := remaining * (1 - carbShare)

	return breakdown(
		math.Round(proteinG),
		math.Round(carbKcal/KcalPerGramCarb),
		math.Round(fatKcal/KcalPerGramFat),
		proteinKcal, carbKcal, fatKcal,
	)
}

// DefaultProteinPerKg derives the baseline protein factor as baseline protein
// grams / weightKg, or 1.6 g/kg when either is unknown.
func DefaultProteinPerKg(baseline Plan, weightKg float64) float64 {
	if baseline.Macros.ProteinGrams > 0 && weightKg > 0 {
		return baseline.Macros.ProteinGrams / weightKg
	}
	return fallbackProteinPerKg
}

// EffectiveCarbPct returns the carb share of post-protein calories, clamped to 0..100.
func EffectiveCarbPct(o CustomOverrides) int {
	if o.RemainingCarbPct == nil {
		return defaultRemainingCarbPct
	}
	return min(max(*o.RemainingCarbPct, 0), 100)
}
