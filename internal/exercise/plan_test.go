package exercise

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDay = `{
	"dayName": "Monday", "focus": "Upper Body", "duration": 45,
	"warmup": {"exercises": [{"name": "Arm circles", "duration": 5, "instructions": "Slow circles."}]},
	"mainWorkout": [{
		"exerciseName": "Push-ups", "targetMuscles": ["Chest"], "sets": 3, "reps": "8-12",
		"restSeconds": 60, "instructions": "Keep a straight line.", "youtubeSearchTerm": "push ups",
		"alternatives": [{"name": "Knee push-ups", "instructions": "Knees down.", "youtubeSearchTerm": "knee push ups"}]
	}],
	"cooldown": {"exercises": [{"name": "Chest stretch", "duration": 4, "instructions": "Hold 30s."}]}
}`

func planJSON(days string) string {
	return `{"weeklyPlan": {` + days + `}, "progressionTips": ["Add reps"], "safetyNotes": ["Stop on pain"], "nutritionTips": ["Eat protein"]}`
}

func TestParsePlan_Valid(t *testing.T) {
	plan, err := ParsePlan(planJSON(`"Day1": ` + validDay + `, "Day2": ` + validDay))
	require.NoError(t, err)

	assert.Equal(t, SourceModel, plan.Source)
	assert.True(t, plan.GeneratedAt.IsZero())
	require.Len(t, plan.WeeklyPlan, 2)
	day := plan.WeeklyPlan["Day1"]
	assert.Equal(t, 45, day.Minutes)
	require.Len(t, day.MainWorkout, 1)
	assert.Equal(t, "Push-ups", day.MainWorkout[0].Name)
	assert.Equal(t, "Knee push-ups", day.MainWorkout[0].Alternatives[0].Name)
	assert.Equal(t, 5, day.Warmup.Exercises[0].Minutes)
	assert.Equal(t, []string{"Add reps"}, plan.ProgressionTips)
}

func TestParsePlan_Rejects(t *testing.T) {
	eightDays := ""
	for i := 1; i <= 8; i++ {
		if i > 1 {
			eightDays += ","
		}
		eightDays += fmt.Sprintf(`"Day%d": %s`, i, validDay)
	}

	cases := []struct {
		name    string
		content string
		reason  string
	}{
		{"not JSON", `Here is your plan!`, "invalid JSON"},
		{"no days", planJSON(``), "expected 1-7 workout days, got 0"},
		{"eight days", planJSON(eightDays), "expected 1-7 workout days, got 8"},
		{"bad key", planJSON(`"Monday": ` + validDay), `unexpected day key "Monday"`},
		{"day zero", planJSON(`"Day0": ` + validDay), `unexpected day key "Day0"`},
		{"no focus", planJSON(`"Day1": {"dayName": "Monday", "duration": 30, "mainWorkout": [{"exerciseName": "Squat", "sets": 3, "reps": "10"}]}`),
			"Day1 has no dayName or focus"},
		{"no duration", planJSON(`"Day1": {"dayName": "Monday", "focus": "Legs", "mainWorkout": [{"exerciseName": "Squat", "sets": 3, "reps": "10"}]}`),
			"Day1 has no duration"},
		{"empty workout", planJSON(`"Day1": {"dayName": "Monday", "focus": "Legs", "duration": 30, "mainWorkout": []}`),
			"Day1 has no main workout"},
		{"no sets", planJSON(`"Day1": {"dayName": "Monday", "focus": "Legs", "duration": 30, "mainWorkout": [{"exerciseName": "Squat", "reps": "10"}]}`),
			"Day1 exercise 0 is incomplete"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParsePlan(tc.content)
			var perr *PlanParseError
			require.True(t, errors.As(err, &perr), "got %v", err)
			assert.Equal(t, tc.reason, perr.Reason)
		})
	}
}

func TestFallbackPlan(t *testing.T) {
	p := readyPrefs()
	p.DaysPerWeek = ptr(4)
	p.MinutesPerSession = ptr(60)
	p.Normalize()

	plan := FallbackPlan(p)
	assert.Equal(t, SourceFallback, plan.Source)
	require.Len(t, plan.WeeklyPlan, 4)

	day1 := plan.WeeklyPlan["Day1"]
	assert.Equal(t, "Monday", day1.DayName)
	assert.Equal(t, "Upper Body Strength - Build muscle", day1.Focus)
	assert.Equal(t, 60, day1.Minutes)
	assert.Equal(t, 7, day1.Warmup.Exercises[0].Minutes)
	assert.Equal(t, 4, day1.Cooldown.Exercises[0].Minutes)
	assert.Equal(t, "Push-ups", day1.MainWorkout[0].Name)

	assert.Equal(t, "Bodyweight Squats", plan.WeeklyPlan["Day2"].MainWorkout[0].Name)

	day3 := plan.WeeklyPlan["Day3"]
	assert.Equal(t, "Wednesday", day3.DayName)
	assert.Equal(t, "Full Body Movement", day3.MainWorkout[0].Name)
	assert.Equal(t, "build muscle beginner workout bodyweight", day3.MainWorkout[0].YoutubeSearchTerm)
	assert.Equal(t, "Thursday", plan.WeeklyPlan["Day4"].DayName)

	// The fallback always passes the same checks applied to model output.
	for key, day := range plan.WeeklyPlan {
		assert.NotEmpty(t, day.MainWorkout, key)
		assert.Positive(t, day.Minutes, key)
	}
}

func TestFallbackPlan_ShortSessionsKeepMinimums(t *testing.T) {
	p := readyPrefs()
	p.MinutesPerSession = ptr(15)
	p.DaysPerWeek = ptr(7)

	plan := FallbackPlan(p)
	require.Len(t, plan.WeeklyPlan, 7)
	day := plan.WeeklyPlan["Day7"]
	assert.Equal(t, "Sunday", day.DayName)
	assert.Equal(t, 5, day.Warmup.Exercises[0].Minutes)
	assert.Equal(t, 3, day.Cooldown.Exercises[0].Minutes)
}
