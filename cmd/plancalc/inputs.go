package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lg/nutriplan-api/internal/nutrition"
)

var errIncompleteProfile = errors.New("profile is incomplete: need sex, weight, height, age, activity and goal")

// planFile is the YAML document accepted by --file.
//
//	profile:
//	  biological_sex: male
//	  weight_kg: 80
//	overrides:
//	  custom_protein_per_kg: 2.0
//	shares:
//	  - meal_name: Lunch
//	    calories_pct: 50
type planFile struct {
	Profile   nutrition.ProfileMetrics  `yaml:"profile"`
	Overrides nutrition.CustomOverrides `yaml:"overrides"`
	Shares    []nutrition.MealShare     `yaml:"shares"`
}

func loadPlanFile(path string) (planFile, error) {
	var pf planFile
	data, err := os.ReadFile(path)
	if err != nil {
		return pf, fmt.Errorf("read plan file: %w", err)
	}
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return pf, fmt.Errorf("parse plan file %s: %w", path, err)
	}
	return pf, nil
}

// planFlags binds the profile and override flags. Values from --file are
// loaded first; any flag set explicitly replaces the file's value.
type planFlags struct {
	file string

	sex      string
	weightKg float64
	heightCm float64
	ageYears float64
	activity string
	goal     string

	calories     int
	proteinPerKg float64
	carbPct      int
}

func (f *planFlags) registerProfile(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.file, "file", "f", "", "YAML plan file with profile, overrides and shares")
	fs.StringVar(&f.sex, "sex", "", "biological sex: male, female or other")
	fs.Float64Var(&f.weightKg, "weight", 0, "body weight in kg")
	fs.Float64Var(&f.heightCm, "height", 0, "height in cm")
	fs.Float64Var(&f.ageYears, "age", 0, "age in years")
	fs.StringVar(&f.activity, "activity", "", "activity level: sedentary, light, moderate, active, extra_active")
	fs.StringVar(&f.goal, "goal", "", "diet goal: fat_loss, muscle_gain, recomp, maintain")
}

func (f *planFlags) registerOverrides(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.IntVar(&f.calories, "calories", 0, "custom daily calorie total")
	fs.Float64Var(&f.proteinPerKg, "protein-per-kg", 0, "custom protein in g per kg of body weight")
	fs.IntVar(&f.carbPct, "carb-pct", 0, "share of post-protein calories given to carbs (0-100)")
}

// resolve merges --file with explicitly set flags and validates the profile.
func (f *planFlags) resolve(cmd *cobra.Command) (planFile, error) {
	var pf planFile
	if f.file != "" {
		var err error
		if pf, err = loadPlanFile(f.file); err != nil {
			return pf, err
		}
	}

	fs := cmd.Flags()
	p := &pf.Profile
	if fs.Changed("sex") {
		sex := nutrition.Sex(f.sex)
		p.Sex = &sex
	}
	if fs.Changed("weight") {
		p.WeightKg = &f.weightKg
	}
	if fs.Changed("height") {
		p.HeightCm = &f.heightCm
	}
	if fs.Changed("age") {
		p.AgeYears = &f.ageYears
	}
	if fs.Changed("activity") {
		level := nutrition.ActivityLevel(f.activity)
		p.ActivityLevel = &level
	}
	if fs.Changed("goal") {
		goal := nutrition.Goal(f.goal)
		p.DietGoal = &goal
	}

	o := &pf.Overrides
	if fs.Changed("calories") {
		o.CustomTotalCalories = &f.calories
	}
	if fs.Changed("protein-per-kg") {
		o.CustomProteinPerKg = &f.proteinPerKg
	}
	if fs.Changed("carb-pct") {
		o.RemainingCarbPct = &f.carbPct
	}

	if err := validateMetrics(pf.Profile); err != nil {
		return pf, err
	}
	return pf, validateOverrides(pf.Overrides)
}

// validateMetrics rejects unknown enum values and non-positive measurements.
// Missing fields are left to BuildPlan, which reports them as an incomplete profile.
func validateMetrics(m nutrition.ProfileMetrics) error {
	for _, f := range []struct {
		name string
		v    *float64
	}{
		{"weight", m.WeightKg},
		{"height", m.HeightCm},
		{"age", m.AgeYears},
	} {
		if f.v != nil && *f.v <= 0 {
			return fmt.Errorf("%s must be positive, got %g", f.name, *f.v)
		}
	}
	if m.Sex != nil {
		switch *m.Sex {
		case nutrition.SexMale, nutrition.SexFemale, nutrition.SexOther:
		default:
			return fmt.Errorf("unknown sex %q: use male, female or other", *m.Sex)
		}
	}
	if m.ActivityLevel != nil && !nutrition.ValidActivityLevel(*m.ActivityLevel) {
		return fmt.Errorf("unknown activity level %q", *m.ActivityLevel)
	}
	if m.DietGoal != nil && !nutrition.ValidGoal(*m.DietGoal) {
		return fmt.Errorf("unknown diet goal %q", *m.DietGoal)
	}
	return nil
}

// validateOverrides range-checks the custom plan knobs.
func validateOverrides(o nutrition.CustomOverrides) error {
	if o.CustomTotalCalories != nil && *o.CustomTotalCalories <= 0 {
		return fmt.Errorf("custom calories must be positive, got %d", *o.CustomTotalCalories)
	}
	if o.CustomProteinPerKg != nil && *o.CustomProteinPerKg < 0 {
		return fmt.Errorf("protein per kg must not be negative, got %g", *o.CustomProteinPerKg)
	}
	if o.RemainingCarbPct != nil && (*o.RemainingCarbPct < 0 || *o.RemainingCarbPct > 100) {
		return fmt.Errorf("carb pct must be between 0 and 100, got %d", *o.RemainingCarbPct)
	}
	return nil
}

func hasOverrides(o nutrition.CustomOverrides) bool {
	return o.CustomTotalCalories != nil || o.CustomProteinPerKg != nil || o.RemainingCarbPct != nil
}
