package nutrition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeProfile builds a fully-populated ProfileMetrics. Tests nil out single
// fields to exercise the missing-field guard.
func makeProfile(sex Sex, weightKg, heightCm, ageYears float64, level ActivityLevel, goal Goal) ProfileMetrics {
	return ProfileMetrics{
		Sex:           &sex,
		WeightKg:      &weightKg,
		HeightCm:      &heightCm,
		AgeYears:      &ageYears,
		ActivityLevel: &level,
		DietGoal:      &goal,
	}
}

/* ─── Missing-field guard tests ──────────────────────────────────────── */

func TestEstimate_MissingFields(t *testing.T) {
	cases := []struct {
		name  string
		mutFn func(p *ProfileMetrics)
	}{
		{"nil Sex", func(p *ProfileMetrics) { p.Sex = nil }},
		{"nil WeightKg", func(p *ProfileMetrics) { p.WeightKg = nil }},
		{"nil HeightCm", func(p *ProfileMetrics) { p.HeightCm = nil }},
		{"nil AgeYears", func(p *ProfileMetrics) { p.AgeYears = nil }},
		{"nil ActivityLevel", func(p *ProfileMetrics) { p.ActivityLevel = nil }},
		{"nil DietGoal", func(p *ProfileMetrics) { p.DietGoal = nil }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := makeProfile(SexMale, 80, 180, 30, ActivityModerate, GoalFatLoss)
			tc.mutFn(&p)
			got, ok := Estimate(p)
			assert.False(t, ok)
			assert.Equal(t, EnergyTargets{}, got)
		})
	}
}

func TestEstimate_NonPositiveNumbers(t *testing.T) {
	cases := []struct {
		name                    string
		weight, height, ageYear float64
	}{
		{"zero weight", 0, 180, 30},
		{"negative height", 80, -1, 30},
		{"zero age", 80, 180, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := Estimate(makeProfile(SexMale, tc.weight, tc.height, tc.ageYear, ActivityModerate, GoalMaintain))
			assert.False(t, ok)
		})
	}
}

/* ─── BMR / TDEE tests ───────────────────────────────────────────────── */

// TestEstimate_ExampleScenario: male, 80kg, 180cm, 30y, moderate, fat_loss.
// bmr = 800 + 1125 - 150 + 5 = 1780, tdee = 1780 * 1.55 = 2759, target = 2259.
func TestEstimate_ExampleScenario(t *testing.T) {
	got, ok := Estimate(makeProfile(SexMale, 80, 180, 30, ActivityModerate, GoalFatLoss))
	require.True(t, ok)
	assert.InDelta(t, 1780.0, got.BMRKcal, 1e-9)
	assert.InDelta(t, 2759.0, got.TDEEKcal, 1e-9)
	assert.InDelta(t, 2259.0, got.TargetCalories, 1e-9)
}

func TestEstimate_TDEEIsBMRTimesMultiplier(t *testing.T) {
	levels := []ActivityLevel{ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityExtraActive}
	want := []float64{1.2, 1.375, 1.55, 1.725, 1.9}
	for i, level := range levels {
		t.Run(string(level), func(t *testing.T) {
			got, ok := Estimate(makeProfile(SexFemale, 62.5, 168, 41, level, GoalMaintain))
			require.True(t, ok)
			assert.Equal(t, got.BMRKcal*want[i], got.TDEEKcal)
		})
	}
}

func TestBMR_MaleFemaleDifference(t *testing.T) {
	for _, tc := range []struct{ w, h, a float64 }{{80, 180, 30}, {55, 160, 22}, {110, 195, 64}} {
		diff := BMR(SexMale, tc.w, tc.h, tc.a) - BMR(SexFemale, tc.w, tc.h, tc.a)
		assert.InDelta(t, 166.0, diff, 1e-9)
	}
}

func TestBMR_OtherIsMeanOfMaleAndFemale(t *testing.T) {
	male := BMR(SexMale, 70, 172, 35)
	female := BMR(SexFemale, 70, 172, 35)
	assert.InDelta(t, (male+female)/2, BMR(SexOther, 70, 172, 35), 1e-9)
	assert.InDelta(t, (male+female)/2, BMR(Sex("unspecified"), 70, 172, 35), 1e-9)
}

func TestActivityMultiplier_UnknownDefaultsToSedentary(t *testing.T) {
	assert.Equal(t, 1.2, ActivityMultiplier("couch"))
	assert.False(t, ValidActivityLevel("couch"))
	assert.True(t, ValidActivityLevel(ActivityExtraActive))

	got, ok := Estimate(makeProfile(SexMale, 80, 180, 30, "couch", GoalMaintain))
	require.True(t, ok)
	assert.Equal(t, got.BMRKcal*1.2, got.TDEEKcal)
}

func TestRecommendedProtein(t *testing.T) {
	assert.InDelta(t, 128.0, RecommendedProtein(80, ActivityModerate), 1e-9)
	assert.InDelta(t, 64.0, RecommendedProtein(80, "unknown"), 1e-9)
	assert.Zero(t, RecommendedProtein(0, ActivityActive))
}
