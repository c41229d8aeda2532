package nutrition

// activityMultipliers maps activity levels to their TDEE multiplier. Unknown
// levels fall back to sedentary.
var activityMultipliers = map[ActivityLevel]float64{
	ActivitySedentary:   1.2,
	ActivityLight:       1.375,
	ActivityModerate:    1.55,
	ActivityActive:      1.725,
	ActivityExtraActive: 1.9,
}

// proteinFactors maps activity levels to a default protein intake in g/kg.
// Informational only: the goal-based split in AllocateMacros doesn't use it.
var proteinFactors = map[ActivityLevel]float64{
	ActivitySedentary:   0.8,
	ActivityLight:       1.2,
	ActivityModerate:    1.6,
	ActivityActive:      2.0,
	ActivityExtraActive: 2.2,
}

// ValidActivityLevel reports whether level is one of the known activity levels.
func ValidActivityLevel(level ActivityLevel) bool {
	_, ok := activityMultipliers[level]
	return ok
}

// ActivityMultiplier returns the TDEE multiplier for level (1.2 when unknown).
func ActivityMultiplier(level ActivityLevel) float64 {
	if m, ok := activityMultipliers[level]; ok {
		return m
	}
	return activityMultipliers[ActivitySedentary]
}

// ProteinFactorPerKg returns the activity-based protein factor (0.8 when unknown).
func ProteinFactorPerKg(level ActivityLevel) float64 {
	if f, ok := proteinFactors[level]; ok {
		return f
	}
	return proteinFactors[ActivitySedentary]
}

// RecommendedProtein returns weightKg * the activity protein factor, in grams.
func RecommendedProtein(weightKg float64, level ActivityLevel) float64 {
	if weightKg <= 0 {
		return 0
	}
	return weightKg * ProteinFactorPerKg(level)
}

// BMR computes Basal Metabolic Rate with the Mifflin-St Jeor equation.
// Sexes other than male/female get the mean of the two equations.
func BMR(sex Sex, weightKg, heightCm, ageYears float64) float64 {
	base := 10*weightKg + 6.25*heightCm - 5*ageYears
	switch sex {
	case SexMale:
		return base + 5
	case SexFemale:
		return base - 161
	default:
		return ((base + 5) + (base - 161)) / 2
	}
}

// TDEE scales bmr by the activity multiplier for level.
func TDEE(bmr float64, level ActivityLevel) float64 {
	return bmr * ActivityMultiplier(level)
}

// Estimate computes BMR, TDEE and goal-adjusted target calories for p.
// Returns ok=false when any field is missing or a numeric field isn't positive;
// callers treat that as "can't compute yet" rather than an error.
func Estimate(p ProfileMetrics) (EnergyTargets, bool) {
	if p.Sex == nil || p.WeightKg == nil || p.HeightCm == nil ||
		p.AgeYears == nil || p.ActivityLevel == nil || p.DietGoal == nil {
		return EnergyTargets{}, false
	}
	if *p.WeightKg <= 0 || *p.HeightCm <= 0 || *p.AgeYears <= 0 {
		return EnergyTargets{}, false
	}

	bmr := BMR(*p.Sex, *p.WeightKg, *p.HeightCm, *p.AgeYears)
	tdee := TDEE(bmr, *p.ActivityLevel)
	return EnergyTargets{
		BMRKcal:        bmr,
		TDEEKcal:       tdee,
		TargetCalories: AdjustForGoal(tdee, *p.DietGoal),
	}, true
}
