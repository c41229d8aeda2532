package main

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"lg/nutriplan-api/internal/nutrition"
)

// render writes v as JSON or YAML, or calls text with an English number
// printer for the human-readable form.
func render(w io.Writer, format string, v any, text func(io.Writer, *message.Printer)) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	text(w, message.NewPrinter(language.English))
	return nil
}

func writePlan(w io.Writer, p *message.Printer, plan nutrition.Plan) {
	p.Fprintf(w, "BMR                  %8.0f kcal\n", plan.Energy.BMRKcal)
	p.Fprintf(w, "TDEE                 %8.0f kcal\n", plan.Energy.TDEEKcal)
	p.Fprintf(w, "Target               %8.0f kcal\n", plan.Energy.TargetCalories)
	p.Fprintf(w, "Weekly change        %8.2f kg\n", plan.EstimatedWeeklyChangeKg)
	p.Fprintf(w, "Recommended protein  %8.0f g\n", plan.RecommendedProteinG)
	fmt.Fprintln(w)
	writeMacros(w, p, plan.Macros)
}

func writeMacros(w io.Writer, p *message.Printer, m nutrition.MacroBreakdown) {
	p.Fprintf(w, "Protein  %6.0f g  %6.0f kcal  %3.0f%%\n", m.ProteinGrams, m.ProteinCalories, m.ProteinPct)
	p.Fprintf(w, "Carbs    %6.0f g  %6.0f kcal  %3.0f%%\n", m.CarbGrams, m.CarbCalories, m.CarbPct)
	p.Fprintf(w, "Fat      %6.0f g  %6.0f kcal  %3.0f%%\n", m.FatGrams, m.FatCalories, m.FatPct)
	p.Fprintf(w, "Total             %6.0f kcal\n", m.TotalCalories)
}

func writeCustom(w io.Writer, p *message.Printer, r customReport) {
	p.Fprintf(w, "Baseline target %.0f kcal, protein %.2f g/kg, carbs %d%% of the rest\n\n",
		r.Baseline.Energy.TargetCalories, r.ProteinPerKg, r.CarbPct)
	writeMacros(w, p, r.Custom)
}

func writeMeals(w io.Writer, p *message.Printer, r mealsReport) {
	source := "baseline"
	if r.Custom {
		source = "custom"
	}
	p.Fprintf(w, "Daily (%s): %.0f kcal, %.0fg protein, %.0fg carbs, %.0fg fat\n\n",
		source, r.Daily.TotalCalories, r.Daily.ProteinGrams, r.Daily.CarbGrams, r.Daily.FatGrams)
	p.Fprintf(w, "%-16s %6s %8s %6s %6s\n", "Meal", "kcal", "protein", "carbs", "fat")
	for _, m := range r.Meals {
		p.Fprintf(w, "%-16s %6.0f %7.0fg %5.0fg %5.0fg\n", m.MealName, m.Calories, m.ProteinG, m.CarbsG, m.FatG)
	}
}
