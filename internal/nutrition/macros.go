package nutrition

import "math"

// AllocateMacros splits totalCalories by the fixed percentage split for goal
// (unknown goals use the maintain split). Grams are rounded to whole grams and
// calories are derived from the rounded grams. weightKg does not affect the
// goal-based split. totalCalories <= 0 yields a zero breakdown.
func AllocateMacros(totalCalories, weightKg float64, goal Goal) MacroBreakdown {
	if totalCalories <= 0 {
		return MacroBreakdown{}
	}
	split := splitFor(goal)

	proteinG := math.Round(totalCalories * split.protein / KcalPerGramProtein)
	carbG := math.Round(totalCalories * split.carb / KcalPerGramCarb)
	fatG := math.Round(totalCalories * split.fat / KcalPerGramFat)

	return breakdown(proteinG, carbG, fatG,
		proteinG*KcalPerGramProtein, carbG*KcalPerGramCarb, fatG*KcalPerGramFat)
}

// breakdown assembles a MacroBreakdown, totalling the calories and deriving
// display percentages against that total.
func breakdown(proteinG, carbG, fatG, proteinKcal, carbKcal, fatKcal float64) MacroBreakdown {
	total := proteinKcal + carbKcal + fatKcal
	pp, cp, fp := wholePercents(proteinKcal, carbKcal, fatKcal)
	return MacroBreakdown{
		ProteinGrams:    proteinG,
		CarbGrams:       carbG,
		FatGrams:        fatG,
		ProteinCalories: proteinKcal,
		CarbCalories:    carbKcal,
		FatCalories:     fatKcal,
		ProteinPct:      pp,
		CarbPct:         cp,
		FatPct:          fp,
		TotalCalories:   total,
	}
}

// wholePercents converts three calorie amounts into whole-number percentages
// of their sum using largest-remainder rounding, so the result sums to exactly
// 100. All zeros when the sum isn't positive.
func wholePercents(a, b, c float64) (float64, float64, float64) {
	total := a + b + c
	if total <= 0 {
		return 0, 0, 0
	}
	raw := [3]float64{a / total * 100, b / total * 100, c / total * 100}
	var out [3]float64
	sum := 0.0
	for i, r := range raw {
		out[i] = math.Floor(r)
		sum += out[i]
	}
	for left := int(math.Round(100 - sum)); left > 0; left-- {
		best := 0
		for i := 1; i < len(raw); i++ {
			if raw[i]-out[i] > raw[best]-out[best] {
				best = i
			}
		}
		out[best]++
	}
	return out[0], out[1], out[2]
}
