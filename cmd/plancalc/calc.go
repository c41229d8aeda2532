package main

import (
	"github.com/rs/zerolog/log"

	"lg/nutriplan-api/internal/nutrition"
)

// customReport is the baseline plan next to the recalculated custom split.
type customReport struct {
	Baseline     nutrition.Plan           `json:"baseline" yaml:"baseline"`
	Custom       nutrition.MacroBreakdown `json:"custom" yaml:"custom"`
	ProteinPerKg float64                  `json:"protein_per_kg" yaml:"protein_per_kg"`
	CarbPct      int                      `json:"remaining_carb_pct" yaml:"remaining_carb_pct"`
}

// mealsReport is the per-meal split. Custom is true when the daily totals
// came from overrides rather than the baseline plan.
type mealsReport struct {
	Daily  nutrition.MacroBreakdown `json:"daily" yaml:"daily"`
	Custom bool                     `json:"custom" yaml:"custom"`
	Meals  []nutrition.MealTargets  `json:"meals" yaml:"meals"`
}

func computeTargets(m nutrition.ProfileMetrics) (nutrition.Plan, error) {
	plan, ok := nutrition.BuildPlan(m)
	if !ok {
		return plan, errIncompleteProfile
	}
	log.Debug().
		Float64("bmr", plan.Energy.BMRKcal).
		Float64("tdee", plan.Energy.TDEEKcal).
		Float64("target", plan.Energy.TargetCalories).
		Msg("computed baseline plan")
	return plan, nil
}

func computeCustom(m nutrition.ProfileMetrics, o nutrition.CustomOverrides) (customReport, error) {
	baseline, err := computeTargets(m)
	if err != nil {
		return customReport{}, err
	}
	perKg := nutrition.DefaultProteinPerKg(baseline, *m.WeightKg)
	if o.CustomProteinPerKg != nil && *o.CustomProteinPerKg >= 0 {
		perKg = *o.CustomProteinPerKg
	}
	return customReport{
		Baseline:     baseline,
		Custom:       nutrition.RecalculateCustom(o, baseline, *m.WeightKg),
		ProteinPerKg: perKg,
		CarbPct:      nutrition.EffectiveCarbPct(o),
	}, nil
}

// computeMeals splits the custom totals when any override is set, else the
// baseline macros. Empty shares mean the default six-meal table.
func computeMeals(pf planFile) (mealsReport, error) {
	var report mealsReport
	if hasOverrides(pf.Overrides) {
		custom, err := computeCustom(pf.Profile, pf.Overrides)
		if err != nil {
			return report, err
		}
		report.Daily, report.Custom = custom.Custom, true
	} else {
		plan, err := computeTargets(pf.Profile)
		if err != nil {
			return report, err
		}
		report.Daily = plan.Macros
	}

	shares := pf.Shares
	if len(shares) == 0 {
		shares = nutrition.DefaultMealShares()
	}
	meals, err := nutrition.DistributeMeals(report.Daily, shares)
	if err != nil {
		return report, err
	}
	report.Meals = meals
	return report, nil
}
