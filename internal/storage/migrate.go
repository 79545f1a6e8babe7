package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SchemaVersion is the migration the staging table must be at before loads
// are served.
const SchemaVersion uint = 1

var ErrSchemaOutdated = errors.New("staging schema is not up to date")

// migrateUp applies the embedded migrations over db. The handle stays owned by
// the caller: the migrate instance is not closed because that would close db.
func migrateUp(db *sql.DB) error {
	driver, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	defer src.Close()

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// SchemaVersion reports the applied migration version and whether a failed
// migration left it dirty.
func (r *SQLiteRepository) SchemaVersion(ctx context.Context) (version uint, dirty bool, err error) {
	row := r.db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`)
	if err := row.Scan(&version, &dirty); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("read schema version: %w", err)
	}
	return version, dirty, nil
}

// Ready backs the readiness probe: the database answers and the staging
// schema is at SchemaVersion and clean.
func (r *SQLiteRepository) Ready(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	version, dirty, err := r.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if dirty || version < SchemaVersion {
		return fmt.Errorf("%w: version %d dirty=%t, want %d", ErrSchemaOutdated, version, dirty, SchemaVersion)
	}
	return nil
}
