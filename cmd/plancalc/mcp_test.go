package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lg/nutriplan-api/internal/nutrition"
)

func makeCallToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func exampleArgs(extra map[string]any) map[string]any {
	args := map[string]any{
		"biological_sex": "male",
		"weight_kg":      80.0,
		"height_cm":      180.0,
		"age_years":      30.0,
		"activity_level": "moderate",
		"diet_goal":      "fat_loss",
	}
	for k, v := range extra {
		args[k] = v
	}
	return args
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	tc, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected TextContent, got %T", result.Content[0])
	return tc.Text
}

func TestMCP_CalculateTargets(t *testing.T) {
	result, err := mcpCalculateTargets(context.Background(), makeCallToolRequest("calculate_targets", exampleArgs(nil)))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var plan nutrition.Plan
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &plan))
	assert.InDelta(t, 2259.0, plan.Energy.TargetCalories, 1e-9)
	assert.Equal(t, 198.0, plan.Macros.ProteinGrams)
}

func TestMCP_RecalculateCustom(t *testing.T) {
	req := makeCallToolRequest("recalculate_custom", exampleArgs(map[string]any{
		"custom_protein_per_kg": 2.0,
		"remaining_carb_pct":    60.0,
	}))
	result, err := mcpRecalculateCustom(context.Background(), req)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var report customReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
	assert.Equal(t, 160.0, report.Custom.ProteinGrams)
	assert.Equal(t, 60, report.CarbPct)
}

func TestMCP_DistributeMeals(t *testing.T) {
	result, err := mcpDistributeMeals(context.Background(), makeCallToolRequest("distribute_meals", exampleArgs(nil)))
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var report mealsReport
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &report))
	require.Len(t, report.Meals, 6)
	assert.Equal(t, "Breakfast", report.Meals[0].MealName)
	assert.Equal(t, 508.0, report.Meals[0].Calories)
}

func TestMCP_Errors(t *testing.T) {
	args := exampleArgs(nil)
	delete(args, "weight_kg")
	result, err := mcpCalculateTargets(context.Background(), makeCallToolRequest("calculate_targets", args))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "weight_kg is required", resultText(t, result))

	result, err = mcpCalculateTargets(context.Background(), makeCallToolRequest("calculate_targets",
		exampleArgs(map[string]any{"activity_level": "couch"})))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, `unknown activity level "couch"`, resultText(t, result))

	result, err = mcpCalculateTargets(context.Background(), makeCallToolRequest("calculate_targets",
		exampleArgs(map[string]any{"age_years": 0.0})))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "age must be positive, got 0", resultText(t, result))

	result, err = mcpRecalculateCustom(context.Background(), makeCallToolRequest("recalculate_custom",
		exampleArgs(map[string]any{"remaining_carb_pct": 250.0})))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "carb pct must be between 0 and 100, got 250", resultText(t, result))

	result, err = mcpDistributeMeals(context.Background(), makeCallToolRequest("distribute_meals",
		exampleArgs(map[string]any{"custom_total_calories": -5.0})))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Equal(t, "custom calories must be positive, got -5", resultText(t, result))
}

func TestNewMCPServer_ListsTools(t *testing.T) {
	s := newMCPServer()
	resp := s.HandleMessage(context.Background(), json.RawMessage(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`))
	b, err := json.Marshal(resp)
	require.NoError(t, err)
	for _, name := range []string{"calculate_targets", "recalculate_custom", "distribute_meals"} {
		assert.Contains(t, string(b), `"name":"`+name+`"`)
	}
}
