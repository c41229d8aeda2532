package store

import (
	"regexp"
	"strings"
)

// Migration files are named YYYY-MM-DD-NNN-description.sql in both db/
// (Postgres) and migrations/ (SQLite), and are applied in name order.
var migrationPrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{3}-`)

// IsMigrationName reports whether filename follows the dated naming scheme.
func IsMigrationName(filename string) bool {
	return strings.HasSuffix(filename, ".sql") && migrationPrefix.MatchString(filename)
}

// MigrationDescription strips the dated prefix and .sql suffix, so
// "2026-10-19-002-create-users-and-profiles.sql" becomes "create users and profiles".
func MigrationDescription(filename string) string {
	name := migrationPrefix.ReplaceAllString(strings.TrimSuffix(filename, ".sql"), "")
	return strings.ReplaceAll(name, "-", " ")
}
