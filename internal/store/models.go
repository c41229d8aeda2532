package store

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"lg/nutriplan-api/internal/exercise"
	"lg/nutriplan-api/internal/nutrition"
)

// DateOnly wraps time.Time to serialize as "YYYY-MM-DD" in JSON.
type DateOnly struct{ time.Time }

func (d DateOnly) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

func (d *DateOnly) UnmarshalJSON(b []byte) error {
	t, err := time.Parse(`"2006-01-02"`, string(b))
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// ScanDate implements pgtype.DateScanner so pgx can scan PostgreSQL date
// columns (OID 1082) into DateOnly. NULL zeroes the time.
func (d *DateOnly) ScanDate(v pgtype.Date) error {
	if !v.Valid {
		d.Time = time.Time{}
		return nil
	}
	d.Time = v.Time
	return nil
}

// Scan implements sql.Scanner for SQLite, which stores dates as TEXT.
func (d *DateOnly) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = v
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("DateOnly: cannot scan %T", src)
	}
}

func (d *DateOnly) parse(s string) error {
	// Tolerate a time suffix in case a driver hands back a full timestamp.
	if len(s) > 10 {
		s = s[:10]
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fmt.Errorf("DateOnly: %w", err)
	}
	d.Time = t
	return nil
}

/* ─── Users ──────────────────────────────────────────────────────────── */

// User maps to the users table. AuthToken and Password are hidden from JSON responses.
type User struct {
	ID        int    `json:"id" db:"id"`
	Username  string `json:"username" db:"username"`
	Email     string `json:"email" db:"email"`
	Password  string `json:"-" db:"password"`
	AuthToken string `json:"-" db:"auth_token"`
}

/* ─── Profile ────────────────────────────────────────────────────────── */

// Profile maps to the profiles table: one row per user holding the body
// metrics the planner runs on. Every metric is nullable until the user fills it in.
type Profile struct {
	UserID         int      `json:"user_id"          db:"user_id"`
	BiologicalSex  *string  `json:"biological_sex"   db:"biological_sex"`
	AgeYears       *int     `json:"age_years"        db:"age_years"`
	HeightCM       *float64 `json:"height_cm"        db:"height_cm"`
	WeightKG       *float64 `json:"weight_kg"        db:"weight_kg"`
	ActivityLevel  *string  `json:"activity_level"   db:"activity_level"`
	DietGoal       *string  `json:"diet_goal"        db:"diet_goal"`
	BodyFatPct     *float64 `json:"body_fat_pct"     db:"body_fat_pct"`
	TargetWeightKG *float64 `json:"target_weight_kg" db:"target_weight_kg"`
}

// Metrics converts the stored profile into calculator input.
func (p Profile) Metrics() nutrition.ProfileMetrics {
	var m nutrition.ProfileMetrics
	if p.BiologicalSex != nil {
		sex := nutrition.Sex(*p.BiologicalSex)
		m.Sex = &sex
	}
	if p.AgeYears != nil {
		age := float64(*p.AgeYears)
		m.AgeYears = &age
	}
	m.HeightCm = p.HeightCM
	m.WeightKg = p.WeightKG
	if p.ActivityLevel != nil {
		level := nutrition.ActivityLevel(*p.ActivityLevel)
		m.ActivityLevel = &level
	}
	if p.DietGoal != nil {
		goal := nutrition.Goal(*p.DietGoal)
		m.DietGoal = &goal
	}
	return m
}

// ProfilePatch carries a partial profile update. Only non-nil fields are written.
type ProfilePatch struct {
	BiologicalSex  *string  `json:"biological_sex"`
	AgeYears       *int     `json:"age_years"`
	HeightCM       *float64 `json:"height_cm"`
	WeightKG       *float64 `json:"weight_kg"`
	ActivityLevel  *string  `json:"activity_level"`
	DietGoal       *string  `json:"diet_goal"`
	BodyFatPct     *float64 `json:"body_fat_pct"`
	TargetWeightKG *float64 `json:"target_weight_kg"`
}

type assignment struct {
	column string
	value  any
}

// assignments lists the columns the patch sets, in a stable order.
func (p ProfilePatch) assignments() []assignment {
	var out []assignment
	add := func(column string, set bool, v any) {
		if set {
			out = append(out, assignment{column, v})
		}
	}
	add("biological_sex", p.BiologicalSex != nil, p.BiologicalSex)
	add("age_years", p.AgeYears != nil, p.AgeYears)
	add("height_cm", p.HeightCM != nil, p.HeightCM)
	add("weight_kg", p.WeightKG != nil, p.WeightKG)
	add("activity_level", p.ActivityLevel != nil, p.ActivityLevel)
	add("diet_goal", p.DietGoal != nil, p.DietGoal)
	add("body_fat_pct", p.BodyFatPct != nil, p.BodyFatPct)
	add("target_weight_kg", p.TargetWeightKG != nil, p.TargetWeightKG)
	return out
}

/* ─── Smart planner document ─────────────────────────────────────────── */

// PlannerFormValues are the planner inputs as last submitted.
type PlannerFormValues struct {
	Profile   nutrition.ProfileMetrics  `json:"profile"`
	Overrides nutrition.CustomOverrides `json:"overrides"`
}

// PlannerResults are the computed outputs saved alongside the inputs.
// Custom is nil until the user sets an override.
type PlannerResults struct {
	Baseline nutrition.Plan            `json:"baseline"`
	Custom   *nutrition.MacroBreakdown `json:"custom"`
}

// Effective returns the custom breakdown when present, else the baseline macros.
func (r PlannerResults) Effective() nutrition.MacroBreakdown {
	if r.Custom != nil {
		return *r.Custom
	}
	return r.Baseline.Macros
}

// PlannerData is the smart_planner_data document stored on the profile row.
// Nullable fields marshal as null (no omitempty) so that a merge clears them in
// both backends.
type PlannerData struct {
	FormValues PlannerFormValues `json:"formValues"`
	Results    PlannerResults    `json:"results"`
}

/* ─── Meal log ───────────────────────────────────────────────────────── */

// MealLogItem maps to meal_log_items. Macro fields are nullable.
type MealLogItem struct {
	ID       int      `json:"id"        db:"id"`
	UserID   int      `json:"user_id"   db:"user_id"`
	Date     DateOnly `json:"date"      db:"date"`
	MealName string   `json:"meal_name" db:"meal_name"`
	ItemName string   `json:"item_name" db:"item_name"`
	Calories int      `json:"calories"  db:"calories"`
	ProteinG *float64 `json:"protein_g" db:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"   db:"carbs_g"`
	FatG     *float64 `json:"fat_g"     db:"fat_g"`
}

// MealLogItemInput is a new meal log item. Date is YYYY-MM-DD.
type MealLogItemInput struct {
	Date     string   `json:"date"`
	MealName string   `json:"meal_name"`
	ItemName string   `json:"item_name"`
	Calories int      `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
}

// MealLogItemPatch is a partial update; nil fields keep their current value.
type MealLogItemPatch struct {
	Date     *string  `json:"date"`
	MealName *string  `json:"meal_name"`
	ItemName *string  `json:"item_name"`
	Calories *int     `json:"calories"`
	ProteinG *float64 `json:"protein_g"`
	CarbsG   *float64 `json:"carbs_g"`
	FatG     *float64 `json:"fat_g"`
}

// DayTotals is one row of the per-day GROUP BY over meal_log_items.
type DayTotals struct {
	Date     DateOnly `db:"date"`
	Calories int      `db:"calories"`
	ProteinG float64  `db:"protein_g"`
	CarbsG   float64  `db:"carbs_g"`
	FatG     float64  `db:"fat_g"`
	Items    int      `db:"items"`
}

/* ─── Body log ───────────────────────────────────────────────────────── */

// BodyLogEntry maps to body_log. One entry per user per date.
type BodyLogEntry struct {
	ID         int      `json:"id"           db:"id"`
	UserID     int      `json:"user_id"      db:"user_id"`
	Date       DateOnly `json:"date"         db:"date"`
	WeightKG   float64  `json:"weight_kg"    db:"weight_kg"`
	BodyFatPct *float64 `json:"body_fat_pct" db:"body_fat_pct"`
	WaistCM    *float64 `json:"waist_cm"     db:"waist_cm"`
}

// BodyLogInput is the upsert payload for one day's measurements.
type BodyLogInput struct {
	Date       string   `json:"date"`
	WeightKG   float64  `json:"weight_kg"`
	BodyFatPct *float64 `json:"body_fat_pct"`
	WaistCM    *float64 `json:"waist_cm"`
}

// BodyLogPatch is a partial update of a body log entry.
type BodyLogPatch struct {
	Date       *string  `json:"date"`
	WeightKG   *float64 `json:"weight_kg"`
	BodyFatPct *float64 `json:"body_fat_pct"`
	WaistCM    *float64 `json:"waist_cm"`
}

/* ─── Exercise planner ───────────────────────────────────────────────── */

// ExercisePlanner maps to exercise_planner: the user's exercise preference form
// and the last plan generated from it. Plan is nil until one is generated.
type ExercisePlanner struct {
	UserID      int                  `json:"user_id"`
	Preferences exercise.Preferences `json:"preferences"`
	Plan        *exercise.Plan       `json:"plan"`
}
