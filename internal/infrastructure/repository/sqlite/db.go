package sqlite

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/rpsls-game/internal/infrastructure/repository/sqlite/migrations"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	_ "modernc.org/sqlite"
)

const pragmas = "_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"

// Open opens the ledger file, creating parent directories, and applies the embedded schema.
// The pool is limited to one connection so writers are serialized by database/sql.
func Open(ctx context.Context, path string, traceOpts ...otelsql.Option) (*sqlx.DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, crerr.New("sqlite path is required")
	}
	cleanPath := filepath.Clean(path)
	if dir := filepath.Dir(cleanPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, crerr.Wrapf(err, "create sqlite directory %s", dir)
		}
	}

	opts := append([]otelsql.Option{
		otelsql.WithDBSystem("sqlite"),
		otelsql.WithDBName(filepath.Base(cleanPath)),
	}, traceOpts...)
	db, err := otelsqlx.Open("sqlite", "file:"+cleanPath+"?"+pragmas, opts...)
	if err != nil {
		return nil, crerr.Wrap(err, "open sqlite db")
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, crerr.Wrap(err, "ping sqlite db")
	}
	if err := applyMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func applyMigrations(db *sqlx.DB) error {
	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return crerr.Wrap(err, "load embedded migrations")
	}
	defer src.Close()

	driver, err := migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	if err != nil {
		return crerr.Wrap(err, "init sqlite migration driver")
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return crerr.Wrap(err, "init migrator")
	}
	if err := m.Up(); err != nil && !stderrors.Is(err, migrate.ErrNoChange) {
		return crerr.Wrap(err, "apply sqlite migrations")
	}
	return nil
}
