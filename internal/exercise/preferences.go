// Package exercise holds the exercise planner's inputs and the weekly workout
// plan generated from them: the preference form, the typed plan shape, the
// validation applied to plans returned by the model, and a deterministic
// fallback plan.
package exercise

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Preferences are the exercise planner form values. Every field is optional
// while the user fills the form in; GeneratePlanReady lists what a plan needs.
type Preferences struct {
	FitnessLevel            *string  `json:"fitness_level"`
	ExerciseExperience      []string `json:"exercise_experience"`
	ExerciseExperienceOther *string  `json:"exercise_experience_other"`

	MedicalConditions      []string `json:"existing_medical_conditions"`
	MedicalConditionsOther *string  `json:"existing_medical_conditions_other"`
	InjuriesOrLimitations  *string  `json:"injuries_or_limitations"`
	Medications            []string `json:"current_medications"`
	MedicationsOther       *string  `json:"current_medications_other"`
	DoctorClearance        bool     `json:"doctor_clearance"`

	PrimaryGoal       *string  `json:"primary_goal"`
	SecondaryGoal     *string  `json:"secondary_goal"`
	GoalTimelineWeeks *int     `json:"goal_timeline_weeks"`
	TargetWeightKG    *float64 `json:"target_weight_kg"`
	MuscleGroupsFocus []string `json:"muscle_groups_focus"`

	DaysPerWeek        *int    `json:"exercise_days_per_week"`
	MinutesPerSession  *int    `json:"available_time_per_session"`
	PreferredTimeOfDay *string `json:"preferred_time_of_day"`
	Location           *string `json:"exercise_location"`
	DailyStepCountAvg  *int    `json:"daily_step_count_avg"`
	JobType            *string `json:"job_type"`

	Equipment         []string `json:"available_equipment"`
	EquipmentOther    *string  `json:"available_equipment_other"`
	MachinesAccess    bool     `json:"machines_access"`
	SpaceAvailability *string  `json:"space_availability"`

	TrackProgress         bool    `json:"want_to_track_progress"`
	WeeklyCheckins        bool    `json:"weekly_checkins_enabled"`
	AccountabilitySupport bool    `json:"accountability_support"`
	DifficultyLevel       *string `json:"preferred_difficulty_level"`
	SleepQuality          *string `json:"sleep_quality"`
}

var (
	fitnessLevels  = []string{"Beginner", "Intermediate", "Advanced"}
	goals          = []string{"Lose fat", "Build muscle", "Increase endurance", "Improve flexibility", "General fitness"}
	timesOfDay     = []string{"Morning", "Afternoon", "Evening"}
	locations      = []string{"Home", "Gym", "Outdoor"}
	jobTypes       = []string{"Desk job", "Active job", "Standing job"}
	spaces         = []string{"Small room", "Open area", "Gym space"}
	difficulties   = []string{"Low", "Medium", "High"}
	sleepQualities = []string{"Poor", "Average", "Good"}

	// ErrNotReady is returned by GeneratePlanReady when a plan can't be built yet.
	ErrNotReady = errors.New("exercise preferences need fitness_level, primary_goal, exercise_days_per_week and available_time_per_session")
)

// Normalize trims text fields, turns blank text into nil and nil lists into
// empty ones, so stored documents have one shape.
func (p *Preferences) Normalize() {
	for _, s := range []**string{
		&p.FitnessLevel, &p.ExerciseExperienceOther, &p.MedicalConditionsOther,
		&p.InjuriesOrLimitations, &p.MedicationsOther, &p.PrimaryGoal, &p.SecondaryGoal,
		&p.PreferredTimeOfDay, &p.Location, &p.JobType, &p.EquipmentOther,
		&p.SpaceAvailability, &p.DifficultyLevel, &p.SleepQuality,
	} {
		if *s == nil {
			continue
		}
		if v := strings.TrimSpace(**s); v != "" {
			*s = &v
		} else {
			*s = nil
		}
	}
	for _, l := range []*[]string{
		&p.ExerciseExperience, &p.MedicalConditions, &p.Medications,
		&p.MuscleGroupsFocus, &p.Equipment,
	} {
		if *l == nil {
			*l = []string{}
		}
	}
}

// Validate checks enum fields against their allowed values and numeric fields
// against their ranges. Unset fields are valid.
func (p Preferences) Validate() error {
	enums := []struct {
		name    string
		v       *string
		allowed []string
	}{
		{"fitness_level", p.FitnessLevel, fitnessLevels},
		{"primary_goal", p.PrimaryGoal, goals},
		{"secondary_goal", p.SecondaryGoal, goals},
		{"preferred_time_of_day", p.PreferredTimeOfDay, timesOfDay},
		{"exercise_location", p.Location, locations},
		{"job_type", p.JobType, jobTypes},
		{"space_availability", p.SpaceAvailability, spaces},
		{"preferred_difficulty_level", p.DifficultyLevel, difficulties},
		{"sleep_quality", p.SleepQuality, sleepQualities},
	}
	for _, e := range enums {
		if e.v != nil && !slices.Contains(e.allowed, *e.v) {
			return fmt.Errorf("%s must be one of: %s", e.name, strings.Join(e.allowed, ", "))
		}
	}

	ints := []struct {
		name     string
		v        *int
		min, max int
	}{
		{"goal_timeline_weeks", p.GoalTimelineWeeks, 1, 52},
		{"exercise_days_per_week", p.DaysPerWeek, 1, 7},
		{"available_time_per_session", p.MinutesPerSession, 15, 180},
		{"daily_step_count_avg", p.DailyStepCountAvg, 0, 30000},
	}
	for _, r := range ints {
		if r.v != nil && (*r.v < r.min || *r.v > r.max) {
			return fmt.Errorf("%s must be between %d and %d", r.name, r.min, r.max)
		}
	}
	if p.TargetWeightKG != nil && (*p.TargetWeightKG < 30 || *p.TargetWeightKG > 300) {
		return errors.New("target_weight_kg must be between 30 and 300")
	}
	return nil
}

// GeneratePlanReady reports whether the fields a plan is built from are set.
func (p Preferences) GeneratePlanReady() error {
	if p.FitnessLevel == nil || p.PrimaryGoal == nil || p.DaysPerWeek == nil || p.MinutesPerSession == nil {
		return ErrNotReady
	}
	return nil
}
