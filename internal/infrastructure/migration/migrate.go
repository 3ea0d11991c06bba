package migration

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

// Migrator drives schema migrations over an existing database connection
type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New creates a Migrator reading migration files from migrationsPath
func New(db *sql.DB, migrationsPath string, log *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migrate instance: %w", err)
	}

	return &Migrator{m: m, log: log}, nil
}

// Up applies all pending migrations
func (mg *Migrator) Up() error {
	mg.log.Info("Applying pending migrations")

	if err := mg.m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Schema already up to date")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}

	mg.logVersion("Migrations applied")
	return nil
}

// Down rolls back all migrations
func (mg *Migrator) Down() error {
	mg.log.Info("Rolling back all migrations")

	if err := mg.m.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Nothing to roll back")
			return nil
		}
		return fmt.Errorf("migrate down: %w", err)
	}

	mg.log.Info("All migrations rolled back")
	return nil
}

// Steps applies n migrations; negative n rolls back
func (mg *Migrator) Steps(n int) error {
	mg.log.Info("Stepping migrations", zap.Int("steps", n))

	if err := mg.m.Steps(n); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Schema already up to date")
			return nil
		}
		return fmt.Errorf("migrate steps: %w", err)
	}

	mg.logVersion("Migration steps applied")
	return nil
}

// GoTo migrates up or down to the given version
func (mg *Migrator) GoTo(version uint) error {
	mg.log.Info("Migrating to version", zap.Uint("target", version))

	if err := mg.m.Migrate(version); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			mg.log.Info("Already at target version")
			return nil
		}
		return fmt.Errorf("migrate to %d: %w", version, err)
	}

	mg.log.Info("Migrated", zap.Uint("version", version))
	return nil
}

// Version reports the current schema version and whether it is dirty.
// A fresh database reports version 0.
func (mg *Migrator) Version() (uint, bool, error) {
	version, dirty, err := mg.m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("migration version: %w", err)
	}
	return version, dirty, nil
}

// Force overwrites the recorded schema version without running migrations.
// Only for recovering a dirty state.
func (mg *Migrator) Force(version int) error {
	mg.log.Warn("Forcing schema version", zap.Int("version", version))

	if err := mg.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

// Drop removes every object in the database
func (mg *Migrator) Drop() error {
	mg.log.Warn("Dropping database schema")

	if err := mg.m.Drop(); err != nil {
		return fmt.Errorf("drop schema: %w", err)
	}

	mg.log.Info("Schema dropped")
	return nil
}

// Close releases the migration source and database handles
func (mg *Migrator) Close() error {
	sourceErr, dbErr := mg.m.Close()
	if sourceErr != nil {
		return fmt.Errorf("close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("close migration database: %w", dbErr)
	}
	return nil
}

func (mg *Migrator) logVersion(msg string) {
	version, dirty, err := mg.m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		mg.log.Warn("Could not read schema version", zap.Error(err))
		return
	}
	mg.log.Info(msg, zap.Uint("version", version), zap.Bool("dirty", dirty))
}
