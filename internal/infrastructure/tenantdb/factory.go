// Package tenantdb opens per-request tenant database connections and runs
// work against them.
package tenantdb

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/erp/pymes/internal/domain/tenant"
	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// FactoryConfig controls how tenant connections are dialed
type FactoryConfig struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

// DialectorFunc builds the gorm dialector for a DSN
type DialectorFunc func(dsn string) gorm.Dialector

// Factory opens one dedicated connection per call. Nothing is pooled or
// shared between calls.
type Factory struct {
	cfg        FactoryConfig
	sealer     *Sealer
	dialector  DialectorFunc
	gormLogger logger.Interface
	plugins    []gorm.Plugin
}

// FactoryOption customizes a Factory
type FactoryOption func(*Factory)

// WithDialector replaces the MySQL dialector
func WithDialector(fn DialectorFunc) FactoryOption {
	return func(f *Factory) { f.dialector = fn }
}

// WithGormLogger sets the SQL logger of opened connections
func WithGormLogger(l logger.Interface) FactoryOption {
	return func(f *Factory) { f.gormLogger = l }
}

// WithPlugin installs p on every opened connection. A nil p is ignored.
func WithPlugin(p gorm.Plugin) FactoryOption {
	return func(f *Factory) {
		if p != nil {
			f.plugins = append(f.plugins, p)
		}
	}
}

// NewFactory creates a connection factory. sealer may be nil when no
// directory key is configured.
func NewFactory(cfg FactoryConfig, sealer *Sealer, opts ...FactoryOption) *Factory {
	f := &Factory{
		cfg:        cfg,
		sealer:     sealer,
		dialector:  gormmysql.Open,
		gormLogger: logger.Default.LogMode(logger.Silent),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DSN renders the go-sql-driver DSN for entry using password
func (f *Factory) DSN(entry *tenant.DirectoryEntry, password string) string {
	dsn := mysql.NewConfig()
	dsn.User = entry.User
	dsn.Passwd = password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(entry.Host, strconv.Itoa(entry.EffectivePort()))
	dsn.DBName = entry.Database
	dsn.ParseTime = true
	dsn.Timeout = f.cfg.ConnectTimeout
	dsn.ReadTimeout = f.cfg.ReadTimeout
	dsn.WriteTimeout = f.cfg.WriteTimeout
	return dsn.FormatDSN()
}

// Open connects to the tenant database described by entry. entry.Host must
// already be the effective host. Any failure is returned wrapped in
// tenant.ErrConnectFailure.
func (f *Factory) Open(ctx context.Context, entry *tenant.DirectoryEntry) (*Conn, error) {
	password, err := f.sealer.Unseal(entry.Password)
	if err != nil {
		return nil, tenant.ErrConnectFailure.Wrap(err)
	}

	db, err := gorm.Open(f.dialector(f.DSN(entry, password)), &gorm.Config{
		Logger:                 f.gormLogger,
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	if err != nil {
		return nil, tenant.ErrConnectFailure.Wrap(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, tenant.ErrConnectFailure.Wrap(err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	for _, p := range f.plugins {
		if err := db.Use(p); err != nil {
			_ = sqlDB.Close()
			return nil, tenant.ErrConnectFailure.Wrap(fmt.Errorf("install %s: %w", p.Name(), err))
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, tenant.ErrConnectFailure.Wrap(fmt.Errorf("ping %s: %w", entry.Host, err))
	}

	return &Conn{DB: db, sqlDB: sqlDB}, nil
}

// Conn is a live tenant connection owned by exactly one caller
type Conn struct {
	DB *gorm.DB

	sqlDB     *sql.DB
	closeOnce sync.Once
	closeErr  error
}

// Close releases the connection. Safe to call more than once.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.sqlDB.Close()
	})
	return c.closeErr
}
