// Package store persists users, body profiles, saved smart-planner data, the
// meal log, the body log and the exercise planner. Handlers depend on the Store interface; PGStore
// (Postgres via pgx) and SQLiteStore (modernc sqlite) implement it.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"lg/nutriplan-api/internal/exercise"
)

var (
	// ErrNotFound is returned when a requested row does not exist (or belongs to another user).
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write would break a uniqueness rule,
	// e.g. moving a body log entry onto a date that already has one.
	ErrConflict = errors.New("conflict")
)

// Open picks the backend from the DB URL: "sqlite:<path>" (or "sqlite::memory:")
// opens SQLite, anything else is handed to pgx as a Postgres URL.
func Open(ctx context.Context, dbURL string) (Store, error) {
	if dbURL == "" {
		return nil, errors.New("DB_URL not set")
	}
	if path, ok := strings.CutPrefix(dbURL, "sqlite:"); ok {
		return OpenSQLite(path)
	}
	return OpenPostgres(ctx, dbURL)
}

// Store is the persistence boundary for the API.
type Store interface {
	CreateUser(ctx context.Context, username, email, passwordHash, authToken string) (int, error)
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUserIDByToken(ctx context.Context, token string) (int, error)

	GetProfile(ctx context.Context, userID int) (Profile, error)
	UpdateProfile(ctx context.Context, userID int, patch ProfilePatch) (Profile, error)

	// GetPlannerData returns ErrNotFound when nothing has been saved yet.
	GetPlannerData(ctx context.Context, userID int) (PlannerData, error)
	// SavePlannerData merges data into the profile's smart planner document.
	SavePlannerData(ctx context.Context, userID int, data PlannerData) error

	ListMealLogItems(ctx context.Context, userID int, date string) ([]MealLogItem, error)
	CreateMealLogItem(ctx context.Context, userID int, in MealLogItemInput) (MealLogItem, error)
	UpdateMealLogItem(ctx context.Context, userID, id int, patch MealLogItemPatch) (MealLogItem, error)
	DeleteMealLogItem(ctx context.Context, userID, id int) error
	// DailyTotals sums logged items per day in [start, end]; days without items are omitted.
	DailyTotals(ctx context.Context, userID int, start, end string) ([]DayTotals, error)

	ListBodyLog(ctx context.Context, userID int, start, end string) ([]BodyLogEntry, error)
	// UpsertBodyLogEntry inserts or replaces the entry for in.Date.
	UpsertBodyLogEntry(ctx context.Context, userID int, in BodyLogInput) (BodyLogEntry, error)
	// UpdateBodyLogEntry returns ErrConflict when patch.Date already has an entry.
	UpdateBodyLogEntry(ctx context.Context, userID, id int, patch BodyLogPatch) (BodyLogEntry, error)
	DeleteBodyLogEntry(ctx context.Context, userID, id int) error

	// GetExercisePlanner returns ErrNotFound until preferences are saved.
	GetExercisePlanner(ctx context.Context, userID int) (ExercisePlanner, error)
	// SaveExercisePreferences replaces the preferences and keeps any stored plan.
	SaveExercisePreferences(ctx context.Context, userID int, prefs exercise.Preferences) (ExercisePlanner, error)
	// SaveExercisePlan replaces the stored plan. It returns ErrNotFound when the
	// user has no saved preferences.
	SaveExercisePlan(ctx context.Context, userID int, plan exercise.Plan) (ExercisePlanner, error)

	Close() error
}

/* ─── Shared SQL ─────────────────────────────────────────────────────── */

// Both drivers accept @name placeholders, so most statements are shared.
// Column lists are explicit: pgx's RowToStructByName needs an exact match.

const profileColumns = `user_id, biological_sex, age_years, height_cm, weight_kg,
	activity_level, diet_goal, body_fat_pct, target_weight_kg`

const mealItemColumns = `id, user_id, date, meal_name, item_name, calories, protein_g, carbs_g, fat_g`

const bodyLogColumns = `id, user_id, date, weight_kg, body_fat_pct, waist_cm`

const (
	sqlUserByUsername = `SELECT id, username, email, password, auth_token FROM users WHERE username = @username`
	sqlUserIDByToken  = `SELECT id FROM users WHERE auth_token = @token`

	sqlGetProfile = `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = @userID`

	sqlListMealItems = `SELECT ` + mealItemColumns + ` FROM meal_log_items
		WHERE user_id = @userID AND date = @date
		ORDER BY created_at, id`

	sqlCreateMealItem = `INSERT INTO meal_log_items (user_id, date, meal_name, item_name, calories, protein_g, carbs_g, fat_g)
		VALUES (@userID, @date, @mealName, @itemName, @calories, @proteinG, @carbsG, @fatG)
		RETURNING ` + mealItemColumns

	// COALESCE keeps the current value for every field the client omitted.
	sqlUpdateMealItem = `UPDATE meal_log_items SET
			date = COALESCE(@date, date),
			meal_name = COALESCE(@mealName, meal_name),
			item_name = COALESCE(@itemName, item_name),
			calories = COALESCE(@calories, calories),
			protein_g = COALESCE(@proteinG, protein_g),
			carbs_g = COALESCE(@carbsG, carbs_g),
			fat_g = COALESCE(@fatG, fat_g),
			updated_at = CURRENT_TIMESTAMP
		WHERE id = @id AND user_id = @userID
		RETURNING ` + mealItemColumns

	sqlDeleteMealItem = `DELETE FROM meal_log_items WHERE id = @id AND user_id = @userID`

	sqlDailyTotals = `SELECT
			date,
			SUM(calories)                AS calories,
			COALESCE(SUM(protein_g), 0)  AS protein_g,
			COALESCE(SUM(carbs_g), 0)    AS carbs_g,
			COALESCE(SUM(fat_g), 0)      AS fat_g,
			COUNT(*)                     AS items
		FROM meal_log_items
		WHERE user_id = @userID AND date >= @start AND date <= @end
		GROUP BY date
		ORDER BY date ASC`

	sqlListBodyLog = `SELECT ` + bodyLogColumns + ` FROM body_log
		WHERE user_id = @userID AND date >= @start AND date <= @end
		ORDER BY date ASC`

	sqlUpsertBodyLog = `INSERT INTO body_log (user_id, date, weight_kg, body_fat_pct, waist_cm)
		VALUES (@userID, @date, @weightKG, @bodyFatPct, @waistCM)
		ON CONFLICT (user_id, date) DO UPDATE SET
			weight_kg = excluded.weight_kg,
			body_fat_pct = excluded.body_fat_pct,
			waist_cm = excluded.waist_cm
		RETURNING ` + bodyLogColumns

	sqlUpdateBodyLog = `UPDATE body_log SET
			date         = COALESCE(@date, date),
			weight_kg    = COALESCE(@weightKG, weight_kg),
			body_fat_pct = COALESCE(@bodyFatPct, body_fat_pct),
			waist_cm     = COALESCE(@waistCM, waist_cm)
		WHERE id = @id AND user_id = @userID
		RETURNING ` + bodyLogColumns

	sqlDeleteBodyLog = `DELETE FROM body_log WHERE id = @id AND user_id = @userID`

	sqlGetExercisePlanner = `SELECT ` + exercisePlannerColumns + ` FROM exercise_planner WHERE user_id = @userID`
)

const exercisePlannerColumns = `user_id, preferences, plan`

// Postgres needs jsonCast ("::jsonb") to bind a text parameter to a jsonb
// column; SQLite stores the documents as TEXT and passes "".
func upsertExercisePrefsSQL(jsonCast string) string {
	return `INSERT INTO exercise_planner (user_id, preferences)
		VALUES (@userID, @prefs` + jsonCast + `)
		ON CONFLICT (user_id) DO UPDATE SET
			preferences = excluded.preferences,
			updated_at = CURRENT_TIMESTAMP
		RETURNING ` + exercisePlannerColumns
}

func setExercisePlanSQL(jsonCast string) string {
	return `UPDATE exercise_planner SET plan = @plan` + jsonCast + `, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = @userID
		RETURNING ` + exercisePlannerColumns
}

// updateProfileSQL builds the dynamic UPDATE for the columns a patch sets.
func updateProfileSQL(cols []assignment) string {
	set := make([]string, 0, len(cols))
	for _, a := range cols {
		set = append(set, a.column+" = @"+a.column)
	}
	return "UPDATE profiles SET " + strings.Join(set, ", ") +
		", updated_at = CURRENT_TIMESTAMP WHERE user_id = @userID RETURNING " + profileColumns
}

func mealItemArgs(userID int, in MealLogItemInput) map[string]any {
	return map[string]any{
		"userID": userID, "date": in.Date, "mealName": in.MealName, "itemName": in.ItemName,
		"calories": in.Calories, "proteinG": in.ProteinG, "carbsG": in.CarbsG, "fatG": in.FatG,
	}
}

func mealPatchArgs(userID, id int, p MealLogItemPatch) map[string]any {
	return map[string]any{
		"id": id, "userID": userID,
		"date": p.Date, "mealName": p.MealName, "itemName": p.ItemName, "calories": p.Calories,
		"proteinG": p.ProteinG, "carbsG": p.CarbsG, "fatG": p.FatG,
	}
}

func bodyLogArgs(userID int, in BodyLogInput) map[string]any {
	return map[string]any{
		"userID": userID, "date": in.Date, "weightKG": in.WeightKG,
		"bodyFatPct": in.BodyFatPct, "waistCM": in.WaistCM,
	}
}

func bodyPatchArgs(userID, id int, p BodyLogPatch) map[string]any {
	return map[string]any{
		"id": id, "userID": userID, "date": p.Date, "weightKG": p.WeightKG,
		"bodyFatPct": p.BodyFatPct, "waistCM": p.WaistCM,
	}
}

// encodePlannerData renders the document as a JSON string. Both drivers bind a
// string parameter as text, which the jsonb cast and json_patch accept.
func encodePlannerData(data PlannerData) (string, error) {
	return encodeDocument("planner data", data)
}

// decodePlannerData treats a NULL or empty document as "nothing saved".
func decodePlannerData(raw []byte) (PlannerData, error) {
	var data PlannerData
	if len(raw) == 0 || string(raw) == "null" {
		return data, ErrNotFound
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("decoding planner data: %w", err)
	}
	return data, nil
}

func encodeDocument(what string, v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding %s: %w", what, err)
	}
	return string(b), nil
}

// decodeExercisePlanner builds the row from its raw JSON columns. A NULL plan
// leaves Plan nil.
func decodeExercisePlanner(userID int, prefs, plan []byte) (ExercisePlanner, error) {
	ep := ExercisePlanner{UserID: userID}
	if err := json.Unmarshal(prefs, &ep.Preferences); err != nil {
		return ExercisePlanner{}, fmt.Errorf("decoding exercise preferences: %w", err)
	}
	if len(plan) > 0 && string(plan) != "null" {
		ep.Plan = &exercise.Plan{}
		if err := json.Unmarshal(plan, ep.Plan); err != nil {
			return ExercisePlanner{}, fmt.Errorf("decoding exercise plan: %w", err)
		}
	}
	return ep, nil
}

var (
	_ Store = (*PGStore)(nil)
	_ Store = (*SQLiteStore)(nil)
)
