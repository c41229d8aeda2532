// migrate applies pending Postgres migrations from db/ (or MIGRATIONS_DIR).
// Each file runs in its own transaction together with its row in the
// migrations table. SQLite databases migrate themselves on open and are skipped.
// Usage: go run ./cmd/migrate [-dry-run]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"lg/nutriplan-api/internal/store"
)

// pgUndefinedTable is the SQLSTATE for a missing relation; the migrations
// table doesn't exist before the first migration runs.
const pgUndefinedTable = "42P01"

// migration is one SQL file on disk.
type migration struct {
	name string
	path string
}

func main() {
	dryRun := flag.Bool("dry-run", false, "list pending migrations without applying them")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()

	if err := run(*dryRun); err != nil {
		log.Fatal().Err(err).Msg("migrate failed")
	}
}

func run(dryRun bool) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("load .env: %w", err)
	}

	dbURL := os.Getenv("DB_URL")
	if strings.HasPrefix(dbURL, "sqlite:") {
		log.Info().Msg("sqlite store migrates on open; nothing to do")
		return nil
	}

	dir := os.Getenv("MIGRATIONS_DIR")
	if dir == "" {
		dir = "db"
	}
	files, err := listMigrations(dir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(ctx)

	applied, err := appliedMigrations(ctx, conn)
	if err != nil {
		return err
	}

	todo := pending(files, applied)
	if len(todo) == 0 {
		log.Info().Int("applied", len(applied)).Msg("no pending migrations")
		return nil
	}

	for _, m := range todo {
		if dryRun {
			log.Info().Str("migration", m.name).Msg("pending")
			continue
		}
		if err := apply(ctx, conn, m); err != nil {
			return err
		}
		log.Info().Str("migration", m.name).Msg("applied")
	}
	if !dryRun {
		log.Info().Int("count", len(todo)).Msg("migrations applied")
	}
	return nil
}

// listMigrations returns the *.sql files in dir, sorted by name.
func listMigrations(dir string) ([]migration, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no migration files found in %s", dir)
	}
	sort.Strings(paths)

	files := make([]migration, 0, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		if !store.IsMigrationName(name) {
			return nil, fmt.Errorf("migration %q is not named YYYY-MM-DD-NNN-description.sql", name)
		}
		files = append(files, migration{name: name, path: p})
	}
	return files, nil
}

// appliedMigrations reads the names already recorded. A missing migrations
// table means nothing has been applied yet.
func appliedMigrations(ctx context.Context, conn *pgx.Conn) (map[string]bool, error) {
	var names []string
	rows, err := conn.Query(ctx, "SELECT migration FROM migrations")
	if err == nil {
		names, err = pgx.CollectRows(rows, pgx.RowTo[string])
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
		return map[string]bool{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}

	applied := make(map[string]bool, len(names))
	for _, n := range names {
		applied[n] = true
	}
	return applied, nil
}

func pending(files []migration, applied map[string]bool) []migration {
	var out []migration
	for _, f := range files {
		if !applied[f.name] {
			out = append(out, f)
		}
	}
	return out
}

// apply runs one migration file and records it in the same transaction.
func apply(ctx context.Context, conn *pgx.Conn, m migration) error {
	content, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", m.name, err)
	}

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin %s: %w", m.name, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("run %s: %w", m.name, err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO migrations (migration, description) VALUES ($1, $2)",
		m.name, store.MigrationDescription(m.name),
	); err != nil {
		return fmt.Errorf("record %s: %w", m.name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit %s: %w", m.name, err)
	}
	return nil
}
