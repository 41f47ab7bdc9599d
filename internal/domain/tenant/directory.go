// Package tenant holds the master directory model and the error taxonomy
// of tenant routing.
package tenant

import (
	"context"
	"time"
)

// DirectoryEntry is one row of the master directory (empresasconfig).
// It tells where a tenant database lives.
type DirectoryEntry struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	NIT         string    `gorm:"column:nit;size:20;uniqueIndex" json:"nit"`
	Host        string    `gorm:"column:db_host;size:255" json:"db_host"`
	Port        int       `gorm:"column:db_port" json:"db_port"`
	User        string    `gorm:"column:db_user;size:100" json:"db_user"`
	Password    string    `gorm:"column:db_password;size:512" json:"-"`
	Database    string    `gorm:"column:db_name;size:100" json:"db_name"`
	DisplayName string    `gorm:"column:nombre_carpeta;size:150" json:"nombre_carpeta"`
	Active      bool      `gorm:"column:activo;default:true" json:"activo"`
	CreatedAt   time.Time `gorm:"column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName returns the master directory table name
func (DirectoryEntry) TableName() string {
	return "empresasconfig"
}

// Loopback hosts recognised by EffectiveHost. Matching is exact.
var loopbackHosts = map[string]struct{}{
	"localhost": {},
	"127.0.0.1": {},
	"::1":       {},
}

// IsLoopbackHost reports whether host is one of the literal loopback names
func IsLoopbackHost(host string) bool {
	_, ok := loopbackHosts[host]
	return ok
}

// EffectiveHost returns the host to dial. A stored loopback host is
// replaced by override when override is set; any other host is returned
// unchanged.
func (e *DirectoryEntry) EffectiveHost(override string) string {
	if override != "" && IsLoopbackHost(e.Host) {
		return override
	}
	return e.Host
}

// EffectivePort returns the stored port, defaulting to 3306
func (e *DirectoryEntry) EffectivePort() int {
	if e.Port <= 0 {
		return 3306
	}
	return e.Port
}

// DirectoryRepository reads the master directory
type DirectoryRepository interface {
	// FindByNIT returns the entry with exactly this NIT or ErrTenantNotFound
	FindByNIT(ctx context.Context, nit string) (*DirectoryEntry, error)
	// List returns every entry ordered by NIT
	List(ctx context.Context) ([]DirectoryEntry, error)
}
