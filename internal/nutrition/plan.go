package nutrition

// BuildPlan runs the full pipeline for p: estimate, goal adjustment, macro
// split, weekly change and the activity-based protein reference.
// ok=false under the same conditions as Estimate.
func BuildPlan(p ProfileMetrics) (Plan, bool) {
	energy, ok := Estimate(p)
	if !ok {
		return Plan{}, false
	}
	return Plan{
		Energy:                  energy,
		Macros:                  AllocateMacros(energy.TargetCalories, *p.WeightKg, *p.DietGoal),
		EstimatedWeeklyChangeKg: WeeklyWeightChangeKg(energy.TDEEKcal, energy.TargetCalories),
		RecommendedProteinG:     RecommendedProtein(*p.WeightKg, *p.ActivityLevel),
	}, true
}

// ExampleProfile is the demo profile shown when a user's own profile is incomplete.
func ExampleProfile() ProfileMetrics {
	sex := SexMale
	weight, height, age := 80.0, 180.0, 30.0
	level := ActivityModerate
	goal := GoalFatLoss
	return ProfileMetrics{
		Sex:           &sex,
		WeightKg:      &weight,
		HeightCm:      &height,
		AgeYears:      &age,
		ActivityLevel: &level,
		DietGoal:      &goal,
	}
}
