package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"lg/nutriplan-api/internal/nutrition"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the calculator as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			log.Info().Msg("MCP server started (stdio transport)")
			err := server.NewStdioServer(newMCPServer()).Listen(ctx, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("mcp stdio server: %w", err)
			}
			return nil
		},
	}
}

// newMCPServer registers the calculator tools.
func newMCPServer() *server.MCPServer {
	s := server.NewMCPServer(
		"plancalc",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("plancalc: daily calorie and macro targets from body metrics."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("calculate_targets", withProfileArgs(
			mcp.WithDescription("Compute BMR, TDEE, goal-adjusted calories and the baseline macro split."),
		)...),
		mcpCalculateTargets,
	)
	s.AddTool(
		mcp.NewTool("recalculate_custom", withOverrideArgs(withProfileArgs(
			mcp.WithDescription("Recalculate macros from custom calories, protein per kg and carb share."),
		))...),
		mcpRecalculateCustom,
	)
	s.AddTool(
		mcp.NewTool("distribute_meals", withOverrideArgs(withProfileArgs(
			mcp.WithDescription("Split daily targets across the default six meals. Overrides switch to the custom split."),
		))...),
		mcpDistributeMeals,
	)
	return s
}

func withProfileArgs(opts ...mcp.ToolOption) []mcp.ToolOption {
	return append(opts,
		mcp.WithString("biological_sex", mcp.Description("male, female or other"), mcp.Enum("male", "female", "other"), mcp.Required()),
		mcp.WithNumber("weight_kg", mcp.Description("Body weight in kg"), mcp.Required()),
		mcp.WithNumber("height_cm", mcp.Description("Height in cm"), mcp.Required()),
		mcp.WithNumber("age_years", mcp.Description("Age in years"), mcp.Required()),
		mcp.WithString("activity_level", mcp.Description("sedentary, light, moderate, active or extra_active"), mcp.Required()),
		mcp.WithString("diet_goal", mcp.Description("fat_loss, muscle_gain, recomp or maintain"), mcp.Required()),
	)
}

func withOverrideArgs(opts []mcp.ToolOption) []mcp.ToolOption {
	return append(opts,
		mcp.WithNumber("custom_total_calories", mcp.Description("Custom daily calorie total")),
		mcp.WithNumber("custom_protein_per_kg", mcp.Description("Protein in g per kg of body weight")),
		mcp.WithNumber("remaining_carb_pct", mcp.Description("Carb share of post-protein calories, 0-100 (default 50)")),
	)
}

// mcpProfile reads and validates the profile arguments.
func mcpProfile(req mcp.CallToolRequest) (nutrition.ProfileMetrics, error) {
	var m nutrition.ProfileMetrics
	sex, err := req.RequireString("biological_sex")
	if err != nil {
		return m, errors.New("biological_sex is required")
	}
	weight, err := req.RequireFloat("weight_kg")
	if err != nil {
		return m, errors.New("weight_kg is required")
	}
	height, err := req.RequireFloat("height_cm")
	if err != nil {
		return m, errors.New("height_cm is required")
	}
	age, err := req.RequireFloat("age_years")
	if err != nil {
		return m, errors.New("age_years is required")
	}
	activity, err := req.RequireString("activity_level")
	if err != nil {
		return m, errors.New("activity_level is required")
	}
	goal, err := req.RequireString("diet_goal")
	if err != nil {
		return m, errors.New("diet_goal is required")
	}

	s, level, g := nutrition.Sex(sex), nutrition.ActivityLevel(activity), nutrition.Goal(goal)
	m = nutrition.ProfileMetrics{
		Sex:           &s,
		WeightKg:      &weight,
		HeightCm:      &height,
		AgeYears:      &age,
		ActivityLevel: &level,
		DietGoal:      &g,
	}
	return m, validateMetrics(m)
}

// mcpOverrides reads the optional override arguments; absent keys stay nil.
func mcpOverrides(req mcp.CallToolRequest) (nutrition.CustomOverrides, error) {
	var o nutrition.CustomOverrides
	args := req.GetArguments()
	if _, ok := args["custom_total_calories"]; ok {
		v := req.GetInt("custom_total_calories", 0)
		o.CustomTotalCalories = &v
	}
	if _, ok := args["custom_protein_per_kg"]; ok {
		v := req.GetFloat("custom_protein_per_kg", 0)
		o.CustomProteinPerKg = &v
	}
	if _, ok := args["remaining_carb_pct"]; ok {
		v := req.GetInt("remaining_carb_pct", 0)
		o.RemainingCarbPct = &v
	}
	return o, validateOverrides(o)
}

func mcpCalculateTargets(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := mcpProfile(req)
	if err != nil {
		return mcpError(err.Error()), nil
	}
	plan, err := computeTargets(m)
	if err != nil {
		return mcpError(err.Error()), nil
	}
	return mcpJSON(plan), nil
}

func mcpRecalculateCustom(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := mcpProfile(req)
	if err != nil {
		return mcpError(err.Error()), nil
	}
	o, err := mcpOverrides(req)
	if err != nil {
		return mcpError(err.Error()), nil
	}
	report, err := computeCustom(m, o)
	if err != nil {
		return mcpError(err.Error()), nil
	}
	return mcpJSON(report), nil
}

func mcpDistributeMeals(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := mcpProfile(req)
	if err != nil {
		return mcpError(err.Error()), nil
	}
	o, err := mcpOverrides(req)
	if err != nil {
		return mcpError(err.Error()), nil
	}
	report, err := computeMeals(planFile{Profile: m, Overrides: o})
	if err != nil {
		return mcpError(err.Error()), nil
	}
	return mcpJSON(report), nil
}

func mcpJSON(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err))
	}
	return mcpText(string(b))
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
