package exercise

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Source says where a plan came from.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
)

// Alternative is an easier or equipment-free substitute for an exercise.
type Alternative struct {
	Name              string `json:"name"`
	Instructions      string `json:"instructions"`
	YoutubeSearchTerm string `json:"youtubeSearchTerm"`
}

// Exercise is one movement of a day's main workout.
type Exercise struct {
	Name              string        `json:"exerciseName"`
	TargetMuscles     []string      `json:"targetMuscles"`
	Sets              int           `json:"sets"`
	Reps              string        `json:"reps"`
	RestSeconds       int           `json:"restSeconds"`
	Instructions      string        `json:"instructions"`
	YoutubeSearchTerm string        `json:"youtubeSearchTerm"`
	Alternatives      []Alternative `json:"alternatives"`
}

// TimedExercise is a warm-up or cool-down movement measured in minutes.
type TimedExercise struct {
	Name         string `json:"name"`
	Minutes      int    `json:"duration"`
	Instructions string `json:"instructions"`
}

// Routine groups the warm-up or cool-down movements of a day.
type Routine struct {
	Exercises []TimedExercise `json:"exercises"`
}

// Day is one workout day. Minutes is the whole session length.
type Day struct {
	DayName     string     `json:"dayName"`
	Focus       string     `json:"focus"`
	Minutes     int        `json:"duration"`
	Warmup      Routine    `json:"warmup"`
	MainWorkout []Exercise `json:"mainWorkout"`
	Cooldown    Routine    `json:"cooldown"`
}

// Plan is a weekly workout plan. WeeklyPlan is keyed "Day1" to "Day7".
type Plan struct {
	WeeklyPlan      map[string]Day `json:"weeklyPlan"`
	ProgressionTips []string       `json:"progressionTips"`
	SafetyNotes     []string       `json:"safetyNotes"`
	NutritionTips   []string       `json:"nutritionTips"`
	Source          Source         `json:"source"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// PlanParseError reports a model payload that doesn't match the plan schema.
type PlanParseError struct {
	Reason string
	Err    error
}

func (e *PlanParseError) Error() string {
	if e.Err != nil {
		return "parse exercise plan: " + e.Reason + ": " + e.Err.Error()
	}
	return "parse exercise plan: " + e.Reason
}

func (e *PlanParseError) Unwrap() error { return e.Err }

// dayIndex returns N for a "DayN" key with N in 1..7.
func dayIndex(key string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(key, "Day"))
	if !strings.HasPrefix(key, "Day") || err != nil || n < 1 || n > 7 {
		return 0, false
	}
	return n, true
}

// ParsePlan decodes and validates the model's JSON content. The returned plan
// has Source set to SourceModel; GeneratedAt is left for the caller.
func ParsePlan(content string) (Plan, error) {
	var plan Plan
	if err := json.Unmarshal([]byte(content), &plan); err != nil {
		return Plan{}, &PlanParseError{Reason: "invalid JSON", Err: err}
	}
	if n := len(plan.WeeklyPlan); n == 0 || n > 7 {
		return Plan{}, &PlanParseError{Reason: fmt.Sprintf("expected 1-7 workout days, got %d", n)}
	}
	for key, day := range plan.WeeklyPlan {
		if _, ok := dayIndex(key); !ok {
			return Plan{}, &PlanParseError{Reason: fmt.Sprintf("unexpected day key %q", key)}
		}
		if strings.TrimSpace(day.DayName) == "" || strings.TrimSpace(day.Focus) == "" {
			return Plan{}, &PlanParseError{Reason: key + " has no dayName or focus"}
		}
		if day.Minutes <= 0 {
			return Plan{}, &PlanParseError{Reason: key + " has no duration"}
		}
		if len(day.MainWorkout) == 0 {
			return Plan{}, &PlanParseError{Reason: key + " has no main workout"}
		}
		for i, ex := range day.MainWorkout {
			if strings.TrimSpace(ex.Name) == "" || ex.Sets <= 0 || strings.TrimSpace(ex.Reps) == "" || ex.RestSeconds < 0 {
				return Plan{}, &PlanParseError{Reason: fmt.Sprintf("%s exercise %d is incomplete", key, i)}
			}
		}
	}
	plan.Source = SourceModel
	return plan, nil
}

var (
	dayNames   = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	focusAreas = []string{
		"Upper Body Strength", "Lower Body Strength", "Core & Cardio", "Full Body Circuit",
		"Flexibility & Recovery", "Strength Training", "Active Recovery",
	}
)

// exercisesByFocus are the bodyweight movements used by FallbackPlan.
var exercisesByFocus = map[string][]Exercise{
	"Upper Body Strength": {{
		Name: "Push-ups", TargetMuscles: []string{"Chest", "Shoulders", "Triceps"},
		Sets: 3, Reps: "8-12", RestSeconds: 60,
		Instructions:      "Start in a plank with hands slightly wider than shoulders. Lower until your chest nearly touches the floor, then push back up.",
		YoutubeSearchTerm: "push ups proper form tutorial",
		Alternatives: []Alternative{
			{Name: "Incline Push-ups", Instructions: "Hands on a bench or step; the higher the surface, the easier.", YoutubeSearchTerm: "incline push ups tutorial"},
			{Name: "Wall Push-ups", Instructions: "Stand arm's length from a wall and push against it.", YoutubeSearchTerm: "wall push ups beginner"},
		},
	}},
	"Lower Body Strength": {{
		Name: "Bodyweight Squats", TargetMuscles: []string{"Quadriceps", "Glutes", "Hamstrings"},
		Sets: 3, Reps: "10-15", RestSeconds: 60,
		Instructions:      "Feet shoulder-width apart, sit the hips back and down with the chest up, then stand through the heels.",
		YoutubeSearchTerm: "bodyweight squats proper form",
		Alternatives: []Alternative{
			{Name: "Chair-Assisted Squats", Instructions: "Sit back until you touch a chair, then stand up.", YoutubeSearchTerm: "chair assisted squats"},
			{Name: "Wall Squats", Instructions: "Slide down a wall into a squat and hold for 15-30 seconds.", YoutubeSearchTerm: "wall squats exercise"},
		},
	}},
}

// FallbackPlan builds a simple plan from the preferences when the model's
// answer can't be used. It has one day per exercise_days_per_week and expects
// GeneratePlanReady to have passed.
func FallbackPlan(p Preferences) Plan {
	minutes := *p.MinutesPerSession
	goal := *p.PrimaryGoal
	days := make(map[string]Day, *p.DaysPerWeek)
	for i := range *p.DaysPerWeek {
		focus := focusAreas[i%len(focusAreas)]
		main, ok := exercisesByFocus[focus]
		if !ok {
			main = []Exercise{genericExercise(p)}
		}
		days[fmt.Sprintf("Day%d", i+1)] = Day{
			DayName: dayNames[i],
			Focus:   focus + " - " + goal,
			Minutes: minutes,
			Warmup: Routine{Exercises: []TimedExercise{{
				Name:         "Dynamic Warm-up",
				Minutes:      max(5, minutes*12/100),
				Instructions: "Arm circles, leg swings and gentle stretches, starting slowly and increasing the range of motion.",
			}}},
			MainWorkout: main,
			Cooldown: Routine{Exercises: []TimedExercise{{
				Name:         "Cool-down Stretches",
				Minutes:      max(3, minutes*8/100),
				Instructions: "Static stretches for the muscles worked, 15-30 seconds each, breathing deeply.",
			}}},
		}
	}
	return Plan{
		WeeklyPlan:      days,
		ProgressionTips: []string{"Start slowly and gradually increase intensity", "Listen to your body", "Stay consistent with your routine"},
		SafetyNotes:     []string{"Warm up before exercising", "Stop if you feel pain", "Stay hydrated"},
		NutritionTips:   []string{"Eat a balanced diet", "Stay hydrated", "Get adequate rest"},
		Source:          SourceFallback,
	}
}

func genericExercise(p Preferences) Exercise {
	equipment := "bodyweight"
	if len(p.Equipment) > 0 {
		equipment = strings.ToLower(strings.Join(p.Equipment, " "))
	}
	search := fmt.Sprintf("%s %s workout %s", strings.ToLower(*p.PrimaryGoal), strings.ToLower(*p.FitnessLevel), equipment)
	return Exercise{
		Name: "Full Body Movement", TargetMuscles: []string{"Full Body"},
		Sets: 3, Reps: "8-12", RestSeconds: 60,
		Instructions:      "Movements suited to your fitness level and equipment. Focus on form over speed or intensity.",
		YoutubeSearchTerm: search,
		Alternatives: []Alternative{
			{Name: "Beginner Modification", Instructions: "Reduce intensity and rest longer as needed.", YoutubeSearchTerm: "beginner workout modifications"},
			{Name: "Equipment-Free Version", Instructions: "Bodyweight exercises for the same muscle groups.", YoutubeSearchTerm: "bodyweight exercises no equipment"},
		},
	}
}
