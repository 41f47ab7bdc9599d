// Package tenantschema creates and patches the tables every tenant database
// must have, and tracks the applied shape in a one-row schema_version
// ledger.
package tenantschema

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/pymes/internal/domain/tenant"
	"github.com/erp/pymes/internal/infrastructure/tenantdb"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Initializer runs the tenant schema DDL. It holds no per-tenant state and
// is safe for concurrent use.
type Initializer struct {
	logger *zap.Logger
	now    func() time.Time
}

// NewInitializer creates an Initializer
func NewInitializer(logger *zap.Logger) *Initializer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Initializer{logger: logger, now: time.Now}
}

// Ensure creates every missing table, adds every missing column and
// records CurrentVersion in the ledger. Every statement is idempotent, so a
// run interrupted by an error is resumed by calling Ensure again.
//
// Column patches that fail are reported, not returned: the error result is
// reserved for table creation and ledger failures. The ledger is only
// advanced when every patch succeeded.
func (i *Initializer) Ensure(ctx context.Context, db *gorm.DB) (*tenant.MigrationReport, error) {
	start := i.now()
	db = db.WithContext(ctx)

	from, err := readVersion(db)
	if err != nil && !tenantdb.IsMissingTable(err) {
		i.logger.Debug("Schema ledger unreadable", zap.Error(err))
	}
	report := &tenant.MigrationReport{FromVersion: from, Version: from}

	for _, t := range tables {
		if err := db.Exec(t.ddl).Error; err != nil {
			report.Duration = i.now().Sub(start)
			return report, fmt.Errorf("create table %s: %w", t.name, err)
		}
		report.Tables = append(report.Tables, t.name)
	}

	for _, p := range patches {
		report.Columns = append(report.Columns, i.patchTable(db, p)...)
	}

	if len(report.Failed()) == 0 {
		if err := db.Exec(
			"INSERT INTO schema_version (id, version, applied_at) VALUES (1, ?, ?) "+
				"ON DUPLICATE KEY UPDATE version = VALUES(version), applied_at = VALUES(applied_at)",
			CurrentVersion, i.now().UTC(),
		).Error; err != nil {
			report.Duration = i.now().Sub(start)
			return report, fmt.Errorf("record schema version: %w", err)
		}
		report.Version = CurrentVersion
	}

	report.Duration = i.now().Sub(start)
	return report, nil
}

// Preflight reads the ledger and runs Ensure only when it is missing or
// behind CurrentVersion. It returns a nil report when the schema is
// already current.
func (i *Initializer) Preflight(ctx context.Context, db *gorm.DB) (*tenant.MigrationReport, error) {
	version, err := readVersion(db.WithContext(ctx))
	if err != nil && !tenantdb.IsMissingTable(err) {
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	if version >= CurrentVersion {
		return nil, nil
	}
	i.logger.Info("Tenant schema behind, upgrading",
		zap.Int("version", version),
		zap.Int("target", CurrentVersion),
	)
	return i.Ensure(ctx, db)
}

func (i *Initializer) patchTable(db *gorm.DB, p tablePatches) []tenant.ColumnResult {
	results := make([]tenant.ColumnResult, 0, len(p.columns))

	existing, err := showColumns(db, p.table)
	if err != nil {
		i.logger.Warn("Column listing failed", zap.String("table", p.table), zap.Error(err))
		for _, c := range p.columns {
			results = append(results, tenant.ColumnResult{
				Table:   p.table,
				Column:  c.column,
				Outcome: tenant.ColumnFailed,
				Reason:  err.Error(),
			})
		}
		return results
	}

	for _, c := range p.columns {
		result := tenant.ColumnResult{Table: p.table, Column: c.column}
		switch {
		case existing[c.column]:
			result.Outcome = tenant.ColumnAlreadyPresent
		default:
			stmt := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", p.table, c.column, c.definition)
			if err := db.Exec(stmt).Error; err != nil {
				i.logger.Warn("Column patch failed",
					zap.String("table", p.table),
					zap.String("column", c.column),
					zap.Error(err),
				)
				result.Outcome = tenant.ColumnFailed
				result.Reason = err.Error()
			} else {
				result.Outcome = tenant.ColumnApplied
			}
		}
		results = append(results, result)
	}
	return results
}

type columnInfo struct {
	Field string
}

func showColumns(db *gorm.DB, table string) (map[string]bool, error) {
	var cols []columnInfo
	if err := db.Raw("SHOW COLUMNS FROM " + table).Scan(&cols).Error; err != nil {
		return nil, err
	}
	existing := make(map[string]bool, len(cols))
	for _, c := range cols {
		existing[c.Field] = true
	}
	return existing, nil
}

func readVersion(db *gorm.DB) (int, error) {
	var version int
	err := db.Raw("SELECT version FROM schema_version WHERE id = 1").Scan(&version).Error
	return version, err
}

var _ tenantdb.SchemaManager = (*Initializer)(nil)
