package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"lg/nutriplan-api/internal/exercise"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore implements Store on an embedded SQLite database. It backs local
// runs without Postgres and the handler tests.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database file at path and runs pending
// migrations. Pass ":memory:" for an in-memory database (used by tests).
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// A single connection avoids "database is locked" and keeps :memory: to one database.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA busy_timeout = 5000", "PRAGMA foreign_keys = ON"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// migrate applies the embedded migrations/*.sql files not yet recorded in the
// migrations table. Each file runs in one transaction with its record, the
// same bookkeeping cmd/migrate keeps for Postgres.
func (s *SQLiteStore) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS migrations (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		migration   TEXT NOT NULL UNIQUE,
		description TEXT,
		applied_at  TEXT DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	names, err := fs.Glob(migrationsFS, "migrations/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(names)

	done, err := s.AppliedMigrations()
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}

	for _, p := range names {
		name := strings.TrimPrefix(p, "migrations/")
		if !IsMigrationName(name) {
			return fmt.Errorf("migration %q is not named YYYY-MM-DD-NNN-description.sql", name)
		}
		if slices.Contains(done, name) {
			continue
		}
		if err := s.apply(p, name); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteStore) apply(p, name string) error {
	content, err := migrationsFS.ReadFile(p)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(string(content)); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	if _, err := tx.Exec("INSERT INTO migrations (migration, description) VALUES (?, ?)",
		name, MigrationDescription(name)); err != nil {
		return fmt.Errorf("record %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", name, err)
	}
	return nil
}

// AppliedMigrations returns the recorded migration file names in name order.
func (s *SQLiteStore) AppliedMigrations() ([]string, error) {
	rows, err := s.db.Query("SELECT migration FROM migrations ORDER BY migration ASC")
	return collect(rows, err, func(row scanner) (string, error) {
		var name string
		err := row.Scan(&name)
		return name, err
	})
}

/* ─── Helpers ────────────────────────────────────────────────────────── */

type scanner interface {
	Scan(dest ...any) error
}

// named turns a shared argument map into sql.Named values for @name placeholders.
func named(args map[string]any) []any {
	out := make([]any, 0, len(args))
	for k, v := range args {
		out = append(out, sql.Named(k, v))
	}
	return out
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// uniqueConflict maps a UNIQUE constraint failure to ErrConflict.
func uniqueConflict(err error) error {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return fmt.Errorf("%w: %s", ErrConflict, sqliteErr.Error())
	}
	return err
}

func (s *SQLiteStore) execOwned(ctx context.Context, query string, args map[string]any) error {
	res, err := s.db.ExecContext(ctx, query, named(args)...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanProfile(row scanner) (Profile, error) {
	var p Profile
	err := row.Scan(&p.UserID, &p.BiologicalSex, &p.AgeYears, &p.HeightCM, &p.WeightKG,
		&p.ActivityLevel, &p.DietGoal, &p.BodyFatPct, &p.TargetWeightKG)
	return p, notFound(err)
}

func scanMealItem(row scanner) (MealLogItem, error) {
	var it MealLogItem
	err := row.Scan(&it.ID, &it.UserID, &it.Date, &it.MealName, &it.ItemName, &it.Calories,
		&it.ProteinG, &it.CarbsG, &it.FatG)
	return it, notFound(err)
}

func scanBodyLog(row scanner) (BodyLogEntry, error) {
	var e BodyLogEntry
	err := row.Scan(&e.ID, &e.UserID, &e.Date, &e.WeightKG, &e.BodyFatPct, &e.WaistCM)
	return e, notFound(err)
}

func collect[T any](rows *sql.Rows, err error, scan func(scanner) (T, error)) ([]T, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []T{}
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

/* ─── Users ──────────────────────────────────────────────────────────── */

// CreateUser inserts the user and an empty profile row in one transaction.
// An empty authToken is replaced with a fresh UUID.
func (s *SQLiteStore) CreateUser(ctx context.Context, username, email, passwordHash, authToken string) (int, error) {
	if authToken == "" {
		authToken = uuid.New().String()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var id int
	err = tx.QueryRowContext(ctx,
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES (@username, @email, @password, @token) RETURNING id`,
		sql.Named("username", username), sql.Named("email", email),
		sql.Named("password", passwordHash), sql.Named("token", authToken),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting user: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO profiles (user_id) VALUES (@userID)`, sql.Named("userID", id)); err != nil {
		return 0, fmt.Errorf("inserting profile: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing user: %w", err)
	}
	return id, nil
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (User, error) {
	var u User
	err := s.db.QueryRowContext(ctx, sqlUserByUsername, sql.Named("username", username)).
		Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.AuthToken)
	return u, notFound(err)
}

func (s *SQLiteStore) GetUserIDByToken(ctx context.Context, token string) (int, error) {
	var id int
	err := s.db.QueryRowContext(ctx, sqlUserIDByToken, sql.Named("token", token)).Scan(&id)
	return id, notFound(err)
}

/* ─── Profile ────────────────────────────────────────────────────────── */

func (s *SQLiteStore) GetProfile(ctx context.Context, userID int) (Profile, error) {
	return scanProfile(s.db.QueryRowContext(ctx, sqlGetProfile, sql.Named("userID", userID)))
}

func (s *SQLiteStore) UpdateProfile(ctx context.Context, userID int, patch ProfilePatch) (Profile, error) {
	cols := patch.assignments()
	if len(cols) == 0 {
		return s.GetProfile(ctx, userID)
	}
	args := []any{sql.Named("userID", userID)}
	for _, a := range cols {
		args = append(args, sql.Named(a.column, a.value))
	}
	return scanProfile(s.db.QueryRowContext(ctx, updateProfileSQL(cols), args...))
}

/* ─── Smart planner document ─────────────────────────────────────────── */

func (s *SQLiteStore) GetPlannerData(ctx context.Context, userID int) (PlannerData, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT smart_planner_data FROM profiles WHERE user_id = @userID`, sql.Named("userID", userID),
	).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PlannerData{}, ErrNotFound
		}
		return PlannerData{}, fmt.Errorf("loading planner data: %w", err)
	}
	return decodePlannerData([]byte(raw.String))
}

// SavePlannerData merges the document with json_patch (RFC 7396). Keys set to
// null in data are removed from the stored document.
func (s *SQLiteStore) SavePlannerData(ctx context.Context, userID int, data PlannerData) error {
	doc, err := encodePlannerData(data)
	if err != nil {
		return err
	}
	err = s.execOwned(ctx,
		`UPDATE profiles
		 SET smart_planner_data = json_patch(COALESCE(smart_planner_data, '{}'), @data),
		     updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = @userID`,
		map[string]any{"userID": userID, "data": doc},
	)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("saving planner data: %w", err)
	}
	return err
}

/* ─── Meal log ───────────────────────────────────────────────────────── */

func (s *SQLiteStore) ListMealLogItems(ctx context.Context, userID int, date string) ([]MealLogItem, error) {
	rows, err := s.db.QueryContext(ctx, sqlListMealItems, sql.Named("userID", userID), sql.Named("date", date))
	return collect(rows, err, scanMealItem)
}

func (s *SQLiteStore) CreateMealLogItem(ctx context.Context, userID int, in MealLogItemInput) (MealLogItem, error) {
	return scanMealItem(s.db.QueryRowContext(ctx, sqlCreateMealItem, named(mealItemArgs(userID, in))...))
}

func (s *SQLiteStore) UpdateMealLogItem(ctx context.Context, userID, id int, patch MealLogItemPatch) (MealLogItem, error) {
	return scanMealItem(s.db.QueryRowContext(ctx, sqlUpdateMealItem, named(mealPatchArgs(userID, id, patch))...))
}

func (s *SQLiteStore) DeleteMealLogItem(ctx context.Context, userID, id int) error {
	return s.execOwned(ctx, sqlDeleteMealItem, map[string]any{"id": id, "userID": userID})
}

func (s *SQLiteStore) DailyTotals(ctx context.Context, userID int, start, end string) ([]DayTotals, error) {
	rows, err := s.db.QueryContext(ctx, sqlDailyTotals,
		sql.Named("userID", userID), sql.Named("start", start), sql.Named("end", end))
	return collect(rows, err, func(row scanner) (DayTotals, error) {
		var d DayTotals
		err := row.Scan(&d.Date, &d.Calories, &d.ProteinG, &d.CarbsG, &d.FatG, &d.Items)
		return d, err
	})
}

/* ─── Body log ───────────────────────────────────────────────────────── */

func (s *SQLiteStore) ListBodyLog(ctx context.Context, userID int, start, end string) ([]BodyLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, sqlListBodyLog,
		sql.Named("userID", userID), sql.Named("start", start), sql.Named("end", end))
	return collect(rows, err, scanBodyLog)
}

func (s *SQLiteStore) UpsertBodyLogEntry(ctx context.Context, userID int, in BodyLogInput) (BodyLogEntry, error) {
	return scanBodyLog(s.db.QueryRowContext(ctx, sqlUpsertBodyLog, named(bodyLogArgs(userID, in))...))
}

func (s *SQLiteStore) UpdateBodyLogEntry(ctx context.Context, userID, id int, patch BodyLogPatch) (BodyLogEntry, error) {
	e, err := scanBodyLog(s.db.QueryRowContext(ctx, sqlUpdateBodyLog, named(bodyPatchArgs(userID, id, patch))...))
	return e, uniqueConflict(err)
}

func (s *SQLiteStore) DeleteBodyLogEntry(ctx context.Context, userID, id int) error {
	return s.execOwned(ctx, sqlDeleteBodyLog, map[string]any{"id": id, "userID": userID})
}

/* ─── Exercise planner ───────────────────────────────────────────────── */

func scanExercisePlanner(row scanner) (ExercisePlanner, error) {
	var (
		userID      int
		prefs, plan []byte
	)
	if err := row.Scan(&userID, &prefs, &plan); err != nil {
		return ExercisePlanner{}, notFound(err)
	}
	return decodeExercisePlanner(userID, prefs, plan)
}

func (s *SQLiteStore) GetExercisePlanner(ctx context.Context, userID int) (ExercisePlanner, error) {
	return scanExercisePlanner(s.db.QueryRowContext(ctx, sqlGetExercisePlanner, sql.Named("userID", userID)))
}

func (s *SQLiteStore) SaveExercisePreferences(ctx context.Context, userID int, prefs exercise.Preferences) (ExercisePlanner, error) {
	doc, err := encodeDocument("exercise preferences", prefs)
	if err != nil {
		return ExercisePlanner{}, err
	}
	return scanExercisePlanner(s.db.QueryRowContext(ctx, upsertExercisePrefsSQL(""),
		sql.Named("userID", userID), sql.Named("prefs", doc)))
}

func (s *SQLiteStore) SaveExercisePlan(ctx context.Context, userID int, plan exercise.Plan) (ExercisePlanner, error) {
	doc, err := encodeDocument("exercise plan", plan)
	if err != nil {
		return ExercisePlanner{}, err
	}
	return scanExercisePlanner(s.db.QueryRowContext(ctx, setExercisePlanSQL(""),
		sql.Named("userID", userID), sql.Named("plan", doc)))
}
