package main

import (
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"
)

func newTargetsCmd(opts *rootOptions) *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Baseline energy and macro targets for a profile",
		Example: `  plancalc targets --sex male --weight 80 --height 180 --age 30 --activity moderate --goal fat_loss
  plancalc targets -f plan.yaml -o yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pf, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			plan, err := computeTargets(pf.Profile)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, plan, func(w io.Writer, p *message.Printer) {
				writePlan(w, p, plan)
			})
		},
	}

	flags.registerProfile(cmd)
	return cmd
}

func newCustomCmd(opts *rootOptions) *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "custom",
		Short: "Recalculate macros from custom calories, protein per kg and carb share",
		Long: `Fixes protein first (weight x protein per kg), then splits the calories left
between carbs and fat. Unset overrides fall back to the baseline plan.`,
		Example: `  plancalc custom -f plan.yaml --protein-per-kg 2.0 --carb-pct 60`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pf, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			report, err := computeCustom(pf.Profile, pf.Overrides)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, report, func(w io.Writer, p *message.Printer) {
				writeCustom(w, p, report)
			})
		},
	}

	flags.registerProfile(cmd)
	flags.registerOverrides(cmd)
	return cmd
}

func newMealsCmd(opts *rootOptions) *cobra.Command {
	var flags planFlags

	cmd := &cobra.Command{
		Use:   "meals",
		Short: "Split daily targets across meals",
		Long: `Distributes the daily totals across meals. Uses the custom split when any
override is given, else the baseline. Meal shares come from the plan file's
"shares" list, defaulting to a six-meal day.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pf, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			report, err := computeMeals(pf)
			if err != nil {
				return err
			}
			return render(cmd.OutOrStdout(), opts.output, report, func(w io.Writer, p *message.Printer) {
				writeMeals(w, p, report)
			})
		},
	}

	flags.registerProfile(cmd)
	flags.registerOverrides(cmd)
	return cmd
}
