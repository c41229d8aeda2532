package nutrition

// goalOffsets are fixed kcal shifts applied to TDEE. They are product choices,
// not derived from a published method.
var goalOffsets = map[Goal]float64{
	GoalFatLoss:    -500,
	GoalMuscleGain: 300,
	GoalRecomp:     -200,
	GoalMaintain:   0,
}

// macroSplit is a protein/carb/fat share of total calories, as fractions.
type macroSplit struct {
	protein, carb, fat float64
}

var goalSplits = map[Goal]macroSplit{
	GoalMaintain:   {0.25, 0.50, 0.25},
	GoalFatLoss:    {0.35, 0.35, 0.30},
	GoalMuscleGain: {0.30, 0.50, 0.20},
	GoalRecomp:     {0.40, 0.35, 0.25},
}

// ValidGoal reports whether g is one of the known diet goals.
func ValidGoal(g Goal) bool {
	_, ok := goalOffsets[g]
	return ok
}

// AdjustForGoal shifts tdee by the goal's offset. Unknown goals are treated as
// maintain. The result is not clamped and may be negative.
func AdjustForGoal(tdee float64, goal Goal) float64 {
	return tdee + goalOffsets[goal]
}

func splitFor(goal Goal) macroSplit {
	if s, ok := goalSplits[goal]; ok {
		return s
	}
	return goalSplits[GoalMaintain]
}

// kcalPerKg is the energy content of one kilogram of body weight change.
const kcalPerKg = 7700.0

// WeeklyWeightChangeKg estimates body-weight change per week when eating
// targetCalories against tdee. Negative means loss.
func WeeklyWeightChangeKg(tdee, targetCalories float64) float64 {
	return (targetCalories - tdee) * 7 / kcalPerKg
}
