package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"lg/nutriplan-api/internal/exercise"
)

// PGStore implements Store on PostgreSQL through a pgx connection pool.
// The schema is managed by cmd/migrate from db/*.sql.
type PGStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres creates a connection pool. A pool (not a single conn) is used
// because hosted Postgres closes idle connections after a few minutes.
func OpenPostgres(ctx context.Context, url string) (*PGStore, error) {
	config, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parsing DB URL: %w", err)
	}
	// Simple protocol avoids "cached plan must not change result type" errors
	// from server-side prepared statement caches after schema changes.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Close() error {
	s.pool.Close()
	return nil
}

/* ─── Query helpers ──────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// pgx.ErrNoRows becomes ErrNotFound; other errors are logged (e.g. struct/column mismatches).
func queryOne[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args pgx.NamedArgs) (T, error) {
	var zero T
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Error().Err(err).Str("op", "queryOne").Msg("query failed")
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("op", "queryOne").Msg("scan failed")
		return zero, err
	}
	return result, nil
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](ctx context.Context, pool *pgxpool.Pool, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Error().Err(err).Str("op", "queryMany").Msg("query failed")
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Error().Err(err).Str("op", "queryMany").Msg("scan failed")
		return nil, err
	}
	return results, nil
}

// pgUniqueViolation is the SQLSTATE for a unique constraint failure.
const pgUniqueViolation = "23505"

// uniqueViolation maps a unique constraint failure to ErrConflict.
func uniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrConflict, pgErr.ConstraintName)
	}
	return err
}

// execOwned runs a statement scoped to one user's row and maps "no rows" to ErrNotFound.
func (s *PGStore) execOwned(ctx context.Context, sql string, args pgx.NamedArgs) error {
	tag, err := s.pool.Exec(ctx, sql, args)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

/* ─── Users ──────────────────────────────────────────────────────────── */

// CreateUser inserts the user and an empty profile row in one transaction.
func (s *PGStore) CreateUser(ctx context.Context, username, email, passwordHash, authToken string) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int
	err = tx.QueryRow(ctx,
		`INSERT INTO users (username, email, password, auth_token)
		 VALUES (@username, @email, @password, @token) RETURNING id`,
		pgx.NamedArgs{"username": username, "email": email, "password": passwordHash, "token": authToken},
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting user: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO profiles (user_id) VALUES (@userID)`, pgx.NamedArgs{"userID": id}); err != nil {
		return 0, fmt.Errorf("inserting profile: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing user: %w", err)
	}
	return id, nil
}

func (s *PGStore) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return queryOne[User](ctx, s.pool, sqlUserByUsername, pgx.NamedArgs{"username": username})
}

func (s *PGStore) GetUserIDByToken(ctx context.Context, token string) (int, error) {
	var id int
	err := s.pool.QueryRow(ctx, sqlUserIDByToken, pgx.NamedArgs{"token": token}).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	return id, err
}

/* ─── Profile ────────────────────────────────────────────────────────── */

func (s *PGStore) GetProfile(ctx context.Context, userID int) (Profile, error) {
	return queryOne[Profile](ctx, s.pool, sqlGetProfile, pgx.NamedArgs{"userID": userID})
}

func (s *PGStore) UpdateProfile(ctx context.Context, userID int, patch ProfilePatch) (Profile, error) {
	cols := patch.assignments()
	if len(cols) == 0 {
		return s.GetProfile(ctx, userID)
	}
	args := pgx.NamedArgs{"userID": userID}
	for _, a := range cols {
		args[a.column] = a.value
	}
	return queryOne[Profile](ctx, s.pool, updateProfileSQL(cols), args)
}

/* ─── Smart planner document ─────────────────────────────────────────── */

func (s *PGStore) GetPlannerData(ctx context.Context, userID int) (PlannerData, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx,
		`SELECT smart_planner_data FROM profiles WHERE user_id = @userID`,
		pgx.NamedArgs{"userID": userID},
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return PlannerData{}, ErrNotFound
	}
	if err != nil {
		return PlannerData{}, fmt.Errorf("loading planner data: %w", err)
	}
	return decodePlannerData(raw)
}

// SavePlannerData merges the document into smart_planner_data with jsonb ||,
// so top-level keys in data replace the stored ones.
func (s *PGStore) SavePlannerData(ctx context.Context, userID int, data PlannerData) error {
	doc, err := encodePlannerData(data)
	if err != nil {
		return err
	}
	err = s.execOwned(ctx,
		`UPDATE profiles
		 SET smart_planner_data = COALESCE(smart_planner_data, '{}'::jsonb) || @data::jsonb,
		     updated_at = CURRENT_TIMESTAMP
		 WHERE user_id = @userID`,
		pgx.NamedArgs{"userID": userID, "data": doc},
	)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("saving planner data: %w", err)
	}
	return err
}

/* ─── Meal log ───────────────────────────────────────────────────────── */

func (s *PGStore) ListMealLogItems(ctx context.Context, userID int, date string) ([]MealLogItem, error) {
	return queryMany[MealLogItem](ctx, s.pool, sqlListMealItems, pgx.NamedArgs{"userID": userID, "date": date})
}

func (s *PGStore) CreateMealLogItem(ctx context.Context, userID int, in MealLogItemInput) (MealLogItem, error) {
	return queryOne[MealLogItem](ctx, s.pool, sqlCreateMealItem, mealItemArgs(userID, in))
}

func (s *PGStore) UpdateMealLogItem(ctx context.Context, userID, id int, patch MealLogItemPatch) (MealLogItem, error) {
	return queryOne[MealLogItem](ctx, s.pool, sqlUpdateMealItem, mealPatchArgs(userID, id, patch))
}

func (s *PGStore) DeleteMealLogItem(ctx context.Context, userID, id int) error {
	return s.execOwned(ctx, sqlDeleteMealItem, pgx.NamedArgs{"id": id, "userID": userID})
}

func (s *PGStore) DailyTotals(ctx context.Context, userID int, start, end string) ([]DayTotals, error) {
	return queryMany[DayTotals](ctx, s.pool, sqlDailyTotals, pgx.NamedArgs{"userID": userID, "start": start, "end": end})
}

/* ─── Body log ───────────────────────────────────────────────────────── */

func (s *PGStore) ListBodyLog(ctx context.Context, userID int, start, end string) ([]BodyLogEntry, error) {
	return queryMany[BodyLogEntry](ctx, s.pool, sqlListBodyLog, pgx.NamedArgs{"userID": userID, "start": start, "end": end})
}

func (s *PGStore) UpsertBodyLogEntry(ctx context.Context, userID int, in BodyLogInput) (BodyLogEntry, error) {
	return queryOne[BodyLogEntry](ctx, s.pool, sqlUpsertBodyLog, bodyLogArgs(userID, in))
}

func (s *PGStore) UpdateBodyLogEntry(ctx context.Context, userID, id int, patch BodyLogPatch) (BodyLogEntry, error) {
	e, err := queryOne[BodyLogEntry](ctx, s.pool, sqlUpdateBodyLog, bodyPatchArgs(userID, id, patch))
	return e, uniqueViolation(err)
}

func (s *PGStore) DeleteBodyLogEntry(ctx context.Context, userID, id int) error {
	return s.execOwned(ctx, sqlDeleteBodyLog, pgx.NamedArgs{"id": id, "userID": userID})
}

/* ─── Exercise planner ───────────────────────────────────────────────── */

func (s *PGStore) exercisePlannerRow(ctx context.Context, sql string, args pgx.NamedArgs) (ExercisePlanner, error) {
	var (
		userID      int
		prefs, plan []byte
	)
	err := s.pool.QueryRow(ctx, sql, args).Scan(&userID, &prefs, &plan)
	if errors.Is(err, pgx.ErrNoRows) {
		return ExercisePlanner{}, ErrNotFound
	}
	if err != nil {
		log.Error().Err(err).Str("op", "exercisePlannerRow").Msg("query failed")
		return ExercisePlanner{}, err
	}
	return decodeExercisePlanner(userID, prefs, plan)
}

func (s *PGStore) GetExercisePlanner(ctx context.Context, userID int) (ExercisePlanner, error) {
	return s.exercisePlannerRow(ctx, sqlGetExercisePlanner, pgx.NamedArgs{"userID": userID})
}

func (s *PGStore) SaveExercisePreferences(ctx context.Context, userID int, prefs exercise.Preferences) (ExercisePlanner, error) {
	doc, err := encodeDocument("exercise preferences", prefs)
	if err != nil {
		return ExercisePlanner{}, err
	}
	return s.exercisePlannerRow(ctx, upsertExercisePrefsSQL("::jsonb"), pgx.NamedArgs{"userID": userID, "prefs": doc})
}

func (s *PGStore) SaveExercisePlan(ctx context.Context, userID int, plan exercise.Plan) (ExercisePlanner, error) {
	doc, err := encodeDocument("exercise plan", plan)
	if err != nil {
		return ExercisePlanner{}, err
	}
	return s.exercisePlannerRow(ctx, setExercisePlanSQL("::jsonb"), pgx.NamedArgs{"userID": userID, "plan": doc})
}
