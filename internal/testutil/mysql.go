//go:build integration

package testutil

import (
	"context"
	"database/sql"
	"net"
	"strconv"
	"testing"
	"time"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/require"
	tcmysql "github.com/testcontainers/testcontainers-go/modules/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MySQLServer is a disposable MySQL container
type MySQLServer struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

// StartMySQL runs a MySQL 8 container for the duration of the test
func StartMySQL(t *testing.T) *MySQLServer {
	t.Helper()
	ctx := context.Background()

	container, err := tcmysql.Run(ctx, "mysql:8.0.36",
		tcmysql.WithDatabase("pymes_tenant"),
		tcmysql.WithUsername("pymes"),
		tcmysql.WithPassword("pymes"),
	)
	require.NoError(t, err, "Failed to start MySQL container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	require.NoError(t, err)

	return &MySQLServer{
		Host:     host,
		Port:     port.Int(),
		User:     "pymes",
		Password: "pymes",
		Database: "pymes_tenant",
	}
}

// DSN renders the go-sql-driver DSN of the container database
func (s *MySQLServer) DSN() string {
	cfg := gomysql.NewConfig()
	cfg.User = s.User
	cfg.Passwd = s.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	cfg.DBName = s.Database
	cfg.ParseTime = true
	cfg.Timeout = 10 * time.Second
	return cfg.FormatDSN()
}

// Open returns a gorm DB on the container database
func (s *MySQLServer) Open(t *testing.T) *gorm.DB {
	t.Helper()

	sqlDB, err := sql.Open("mysql", s.DSN())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}
