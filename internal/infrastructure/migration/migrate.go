// Package migration applies the versioned master directory migrations.
// Tenant databases are not handled here; see tenantschema.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ledgerTable keeps the master version apart from any tenant ledger
const ledgerTable = "directorio_migraciones"

// Migrator runs golang-migrate against the master database
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// NewSource opens the migrations stored under dir in fsys
func NewSource(fsys fs.FS, dir string) (source.Driver, error) {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}
	return src, nil
}

// New creates a Migrator over an open master connection
func New(db *sql.DB, fsys fs.FS, dir string, logger *zap.Logger) (*Migrator, error) {
	src, err := NewSource(fsys, dir)
	if err != nil {
		return nil, err
	}
	driver, err := mysql.WithInstance(db, &mysql.Config{MigrationsTable: ledgerTable})
	if err != nil {
		return nil, fmt.Errorf("failed to create mysql driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "mysql", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{m: m, logger: logger}, nil
}

// Up runs all pending migrations
func (m *Migrator) Up() error {
	return m.apply("up", m.m.Up)
}

// Down rolls back all migrations
func (m *Migrator) Down() error {
	return m.apply("down", m.m.Down)
}

// Steps applies n migrations, up when positive and down when negative
func (m *Migrator) Steps(n int) error {
	return m.apply(fmt.Sprintf("steps(%d)", n), func() error { return m.m.Steps(n) })
}

// apply runs op and logs the resulting version. ErrNoChange is success.
func (m *Migrator) apply(name string, op func() error) error {
	log := m.logger.With(zap.String("operation", name))
	log.Info("Running master migrations")

	if err := op(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("Master directory already at target version")
			return nil
		}
		return fmt.Errorf("migration %s failed: %w", name, err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	log.Info("Master migrations finished", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

// Version returns the applied version. A database with no migrations
// reports version 0.
func (m *Migrator) Version() (uint, bool, error) {
	version, dirty, err := m.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force sets the version without running migrations, clearing the dirty
// flag left by a failed run
func (m *Migrator) Force(version int) error {
	m.logger.Warn("Forcing master migration version", zap.Int("version", version))
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close releases the source and database driver
func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return multierr.Combine(srcErr, dbErr)
}
