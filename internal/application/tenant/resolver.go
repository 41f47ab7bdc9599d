// Package tenant routes work to tenant databases: it resolves directory
// entries and defines the session contract services run against.
package tenant

import (
	"context"

	"github.com/erp/pymes/internal/domain/tenant"
	"go.uber.org/zap"
)

// Resolver looks tenants up in the master directory. Every call is a live
// query; nothing is cached.
type Resolver struct {
	repo       tenant.DirectoryRepository
	publicHost string
	logger     *zap.Logger
}

// NewResolver creates a resolver. publicHost replaces loopback hosts stored
// in directory rows; empty disables the rewrite.
func NewResolver(repo tenant.DirectoryRepository, publicHost string, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{repo: repo, publicHost: publicHost, logger: logger}
}

// Resolve returns a copy of the directory entry for nit with Host already
// set to the effective host. Inactive tenants are reported as not found.
func (r *Resolver) Resolve(ctx context.Context, nit string) (*tenant.DirectoryEntry, error) {
	if nit == "" {
		return nil, tenant.ErrTenantNotFound
	}

	entry, err := r.repo.FindByNIT(ctx, nit)
	if err != nil {
		return nil, err
	}
	if !entry.Active {
		r.logger.Info("Tenant is inactive", zap.String("tenant", nit))
		return nil, tenant.ErrTenantNotFound
	}

	resolved := *entry
	resolved.Host = entry.EffectiveHost(r.publicHost)
	if resolved.Host != entry.Host {
		r.logger.Debug("Loopback host overridden",
			zap.String("tenant", nit),
			zap.String("stored_host", entry.Host),
			zap.String("host", resolved.Host),
		)
	}
	return &resolved, nil
}

// List returns every directory entry, with effective hosts applied and
// passwords cleared.
func (r *Resolver) List(ctx context.Context) ([]tenant.DirectoryEntry, error) {
	entries, err := r.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Host = entries[i].EffectiveHost(r.publicHost)
		entries[i].Password = ""
	}
	return entries, nil
}
