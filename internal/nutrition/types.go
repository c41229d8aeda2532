// Package nutrition computes daily energy and macro targets from a body profile.
// Every function here is pure: no I/O, no shared state, same inputs give the same outputs.
package nutrition

// Sex selects the Mifflin-St Jeor constant. Anything other than male or female
// is treated as "other" and uses the mean of both equations.
type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
	SexOther  Sex = "other"
)

// ActivityLevel keys the activity multiplier and protein-factor tables.
type ActivityLevel string

const (
	ActivitySedentary   ActivityLevel = "sedentary"
	ActivityLight       ActivityLevel = "light"
	ActivityModerate    ActivityLevel = "moderate"
	ActivityActive      ActivityLevel = "active"
	ActivityExtraActive ActivityLevel = "extra_active"
)

// Goal is the diet goal that shifts TDEE and picks the macro split.
type Goal string

const (
	GoalFatLoss    Goal = "fat_loss"
	GoalMuscleGain Goal = "muscle_gain"
	GoalRecomp     Goal = "recomp"
	GoalMaintain   Goal = "maintain"
)

// Atwater factors, kcal per gram.
const (
	KcalPerGramProtein = 4.0
	KcalPerGramCarb    = 4.0
	KcalPerGramFat     = 9.0
)

// ProfileMetrics is the calculator input. Fields are pointers so a profile that
// hasn't been filled in yet is representable; see Estimate.
type ProfileMetrics struct {
	Sex           *Sex           `json:"biological_sex" yaml:"biological_sex"`
	WeightKg      *float64       `json:"weight_kg" yaml:"weight_kg"`
	HeightCm      *float64       `json:"height_cm" yaml:"height_cm"`
	AgeYears      *float64       `json:"age_years" yaml:"age_years"`
	ActivityLevel *ActivityLevel `json:"activity_level" yaml:"activity_level"`
	DietGoal      *Goal          `json:"diet_goal" yaml:"diet_goal"`
}

// EnergyTargets holds the unrounded energy figures for one profile.
type EnergyTargets struct {
	BMRKcal        float64 `json:"bmr_kcal" yaml:"bmr_kcal"`
	TDEEKcal       float64 `json:"tdee_kcal" yaml:"tdee_kcal"`
	TargetCalories float64 `json:"target_calories" yaml:"target_calories"`
}

// MacroBreakdown splits a calorie total into protein, carbs and fat.
// Percentages are whole numbers and sum to 100 whenever TotalCalories > 0.
type MacroBreakdown struct {
	ProteinGrams    float64 `json:"protein_g" yaml:"protein_g"`
	CarbGrams       float64 `json:"carbs_g" yaml:"carbs_g"`
	FatGrams        float64 `json:"fat_g" yaml:"fat_g"`
	ProteinCalories float64 `json:"protein_calories" yaml:"protein_calories"`
	CarbCalories    float64 `json:"carb_calories" yaml:"carb_calories"`
	FatCalories     float64 `json:"fat_calories" yaml:"fat_calories"`
	ProteinPct      float64 `json:"protein_pct" yaml:"protein_pct"`
	CarbPct         float64 `json:"carbs_pct" yaml:"carbs_pct"`
	FatPct          float64 `json:"fat_pct" yaml:"fat_pct"`
	TotalCalories   float64 `json:"total_calories" yaml:"total_calories"`
}

// CustomOverrides are the user-editable knobs of the custom plan. Nil means
// "not set"; RemainingCarbPct defaults to 50.
type CustomOverrides struct {
	CustomTotalCalories *int     `json:"custom_total_calories" yaml:"custom_total_calories"`
	CustomProteinPerKg  *float64 `json:"custom_protein_per_kg" yaml:"custom_protein_per_kg"`
	RemainingCarbPct    *int     `json:"remaining_carb_pct" yaml:"remaining_carb_pct"`
}

// Plan is the baseline result of the smart planner for one profile.
type Plan struct {
	Energy                  EnergyTargets  `json:"energy" yaml:"energy"`
	Macros                  MacroBreakdown `json:"macros" yaml:"macros"`
	EstimatedWeeklyChangeKg float64        `json:"estimated_weekly_change_kg" yaml:"estimated_weekly_change_kg"`
	RecommendedProteinG     float64        `json:"recommended_protein_g" yaml:"recommended_protein_g"`
}
