package main

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lg/nutriplan-api/internal/exercise"
)

const readyExercisePrefs = `{
	"fitness_level": "Beginner", "primary_goal": "Build muscle",
	"exercise_days_per_week": 3, "available_time_per_session": 45,
	"available_equipment": ["Dumbbells"], "injuries_or_limitations": "  "
}`

const modelExercisePlan = `{
	"weeklyPlan": {
		"Day1": {
			"dayName": "Monday", "focus": "Upper Body", "duration": 45,
			"warmup": {"exercises": [{"name": "Arm circles", "duration": 5, "instructions": "Slow circles."}]},
			"mainWorkout": [{"exerciseName": "Dumbbell Press", "targetMuscles": ["Chest"], "sets": 3,
				"reps": "8-10", "restSeconds": 90, "instructions": "Press up.", "youtubeSearchTerm": "dumbbell press",
				"alternatives": []}],
			"cooldown": {"exercises": [{"name": "Chest stretch", "duration": 5, "instructions": "Hold."}]}
		}
	},
	"progressionTips": ["Add weight weekly"], "safetyNotes": ["Warm up"], "nutritionTips": ["Eat protein"]
}`

func TestExercisePreferences_SaveAndGet(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/exercise-planner/preferences", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no saved exercise preferences", errorMessage(t, w))

	w = ts.do(http.MethodPut, "/api/exercise-planner/preferences", readyExercisePrefs)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	saved := decode[exercise.Preferences](t, w)
	assert.Nil(t, saved.InjuriesOrLimitations)
	assert.Equal(t, []string{}, saved.MedicalConditions)

	w = ts.do(http.MethodGet, "/api/exercise-planner/preferences", "")
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[exercise.Preferences](t, w)
	assert.Equal(t, saved, got)
	require.NotNil(t, got.DaysPerWeek)
	assert.Equal(t, 3, *got.DaysPerWeek)
}

func TestExercisePreferences_Rejects(t *testing.T) {
	cases := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{"malformed", `{"exercise_days_per_week": "three"}`, "invalid request body"},
		{"unknown goal", `{"primary_goal": "Get swole"}`,
			"primary_goal must be one of: Lose fat, Build muscle, Increase endurance, Improve flexibility, General fitness"},
		{"eight days", `{"exercise_days_per_week": 8}`, "exercise_days_per_week must be between 1 and 7"},
		{"four hour session", `{"available_time_per_session": 240}`, "available_time_per_session must be between 15 and 180"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t)
			w := ts.do(http.MethodPut, "/api/exercise-planner/preferences", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.wantMsg, errorMessage(t, w))

			w = ts.do(http.MethodGet, "/api/exercise-planner/preferences", "")
			assert.Equal(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestExercisePlan_GenerateFromModel(t *testing.T) {
	ts := newTestServer(t)
	setMock, lastPrompt := mockOpenAI(t, ts)
	setMock(http.StatusOK, openAIChatResponse(modelExercisePlan))

	w := ts.do(http.MethodGet, "/api/exercise-planner/latest", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "no exercise plan generated yet", errorMessage(t, w))

	w = ts.do(http.MethodPut, "/api/exercise-planner/preferences", readyExercisePrefs)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Preferences alone don't make a plan.
	w = ts.do(http.MethodGet, "/api/exercise-planner/latest", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPost, "/api/exercise-planner/generate", `{"note":"bad left knee"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plan := decode[exercise.Plan](t, w)
	assert.Equal(t, exercise.SourceModel, plan.Source)
	assert.False(t, plan.GeneratedAt.IsZero())
	require.Len(t, plan.WeeklyPlan, 1)
	assert.Equal(t, "Dumbbell Press", plan.WeeklyPlan["Day1"].MainWorkout[0].Name)

	assert.Contains(t, lastPrompt(), "Training days per week: 3")
	assert.Contains(t, lastPrompt(), "Available equipment: Dumbbells")
	assert.Contains(t, lastPrompt(), "Notes: bad left knee")

	w = ts.do(http.MethodGet, "/api/exercise-planner/latest", "")
	require.Equal(t, http.StatusOK, w.Code)
	latest := decode[exercise.Plan](t, w)
	assert.Equal(t, plan.WeeklyPlan, latest.WeeklyPlan)
	assert.True(t, plan.GeneratedAt.Equal(latest.GeneratedAt))
}

func TestExercisePlan_GenerateWithPostedPreferences(t *testing.T) {
	ts := newTestServer(t)
	setMock, _ := mockOpenAI(t, ts)
	setMock(http.StatusOK, openAIChatResponse(modelExercisePlan))

	w := ts.do(http.MethodPost, "/api/exercise-planner/generate", `{"preferences":`+readyExercisePrefs+`}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// The posted form is saved as the user's preferences.
	w = ts.do(http.MethodGet, "/api/exercise-planner/preferences", "")
	require.Equal(t, http.StatusOK, w.Code)
	prefs := decode[exercise.Preferences](t, w)
	require.NotNil(t, prefs.FitnessLevel)
	assert.Equal(t, "Beginner", *prefs.FitnessLevel)
}

func TestExercisePlan_FallbackOnUnusableModelAnswer(t *testing.T) {
	ts := newTestServer(t)
	setMock, _ := mockOpenAI(t, ts)
	setMock(http.StatusOK, openAIChatResponse(`{"weeklyPlan": {"Monday": {}}}`))

	w := ts.do(http.MethodPut, "/api/exercise-planner/preferences", readyExercisePrefs)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodPost, "/api/exercise-planner/generate", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	plan := decode[exercise.Plan](t, w)
	assert.Equal(t, exercise.SourceFallback, plan.Source)
	assert.Len(t, plan.WeeklyPlan, 3)
	assert.Equal(t, "Upper Body Strength - Build muscle", plan.WeeklyPlan["Day1"].Focus)

	w = ts.do(http.MethodGet, "/api/exercise-planner/latest", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, exercise.SourceFallback, decode[exercise.Plan](t, w).Source)
}

func TestExercisePlan_GenerateErrors(t *testing.T) {
	t.Run("no saved preferences", func(t *testing.T) {
		ts := newTestServer(t)
		mockOpenAI(t, ts)
		w := ts.do(http.MethodPost, "/api/exercise-planner/generate", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "save exercise preferences before generating a plan", errorMessage(t, w))
	})

	t.Run("incomplete preferences", func(t *testing.T) {
		ts := newTestServer(t)
		mockOpenAI(t, ts)
		w := ts.do(http.MethodPut, "/api/exercise-planner/preferences", `{"fitness_level":"Advanced"}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = ts.do(http.MethodPost, "/api/exercise-planner/generate", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, exercise.ErrNotReady.Error(), errorMessage(t, w))
	})

	t.Run("invalid posted preferences", func(t *testing.T) {
		ts := newTestServer(t)
		mockOpenAI(t, ts)
		w := ts.do(http.MethodPost, "/api/exercise-planner/generate", `{"preferences":{"exercise_location":"Moon"}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "exercise_location must be one of: Home, Gym, Outdoor", errorMessage(t, w))
	})

	t.Run("openai failure keeps no plan", func(t *testing.T) {
		ts := newTestServer(t)
		setMock, _ := mockOpenAI(t, ts)
		setMock(http.StatusInternalServerError, map[string]string{"error": "internal"})
		w := ts.do(http.MethodPut, "/api/exercise-planner/preferences", readyExercisePrefs)
		require.Equal(t, http.StatusOK, w.Code)

		w = ts.do(http.MethodPost, "/api/exercise-planner/generate", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "openai request failed", errorMessage(t, w))

		w = ts.do(http.MethodGet, "/api/exercise-planner/latest", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
