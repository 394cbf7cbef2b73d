package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/riskibarqy/rpsls-game/internal/infrastructure/repository/postgres"
	sqlitemigrations "github.com/riskibarqy/rpsls-game/internal/infrastructure/repository/sqlite/migrations"
)

const defaultSQLitePath = "data/scoreboard.db"

var defaultMigrationDirs = []string{"./db/migrations", "/app/db/migrations"}

// target is a ledger backend plus the migration source that matches it.
type target struct {
	store       string
	sourceName  string
	sourceURL   string
	databaseURL string
	sqliteDir   string
}

// resolveTarget reads the same SCORE_STORE, SQLITE_PATH and DB_URL settings the API uses.
func resolveTarget(getenv func(string) string) (target, error) {
	store := strings.ToLower(strings.TrimSpace(getenv("SCORE_STORE")))
	switch store {
	case "", "sqlite":
		path := strings.TrimSpace(getenv("SQLITE_PATH"))
		if path == "" {
			path = defaultSQLitePath
		}
		return target{
			store:       "sqlite",
			sourceName:  "embedded",
			databaseURL: "sqlite://" + filepath.ToSlash(path),
			sqliteDir:   filepath.Dir(path),
		}, nil
	case "postgres":
		dbURL := strings.TrimSpace(getenv("DB_URL"))
		if dbURL == "" {
			return target{}, fmt.Errorf("DB_URL is required when SCORE_STORE=postgres")
		}
		binary := true
		if raw := strings.TrimSpace(getenv("DB_BINARY_PARAMETERS")); raw != "" {
			parsed, err := strconv.ParseBool(raw)
			if err != nil {
				return target{}, fmt.Errorf("parse DB_BINARY_PARAMETERS: %w", err)
			}
			binary = parsed
		}
		dir, err := findMigrationsDir(getenv("MIGRATIONS_DIR"))
		if err != nil {
			return target{}, err
		}
		sourceURL := "file://" + filepath.ToSlash(dir)
		return target{
			store:       "postgres",
			sourceName:  sourceURL,
			sourceURL:   sourceURL,
			databaseURL: postgres.ConnectionString(dbURL, binary),
		}, nil
	default:
		return target{}, fmt.Errorf("SCORE_STORE must be sqlite or postgres for migrations, got %q", store)
	}
}

func (t target) open() (*migrate.Migrate, error) {
	if t.store != "sqlite" {
		return migrate.New(t.sourceURL, t.databaseURL)
	}

	if t.sqliteDir != "." {
		if err := os.MkdirAll(t.sqliteDir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite directory: %w", err)
		}
	}
	src, err := iofs.New(sqlitemigrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("load embedded sqlite migrations: %w", err)
	}
	return migrate.NewWithSourceInstance("iofs", src, t.databaseURL)
}

func findMigrationsDir(explicit string) (string, error) {
	if explicit = strings.TrimSpace(explicit); explicit != "" {
		return existingDir(explicit)
	}
	for _, candidate := range defaultMigrationDirs {
		if dir, err := existingDir(candidate); err == nil {
			return dir, nil
		}
	}
	return "", fmt.Errorf("no migrations directory found in %s; set MIGRATIONS_DIR", strings.Join(defaultMigrationDirs, ", "))
}

func existingDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("migrations directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("migrations path %s is not a directory", abs)
	}
	return abs, nil
}
