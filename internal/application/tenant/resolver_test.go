package tenant

import (
	"context"
	"testing"

	"github.com/erp/pymes/internal/domain/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockDirectoryRepository struct {
	mock.Mock
}

func (m *mockDirectoryRepository) FindByNIT(ctx context.Context, nit string) (*tenant.DirectoryEntry, error) {
	args := m.Called(ctx, nit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tenant.DirectoryEntry), args.Error(1)
}

func (m *mockDirectoryRepository) List(ctx context.Context) ([]tenant.DirectoryEntry, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]tenant.DirectoryEntry), args.Error(1)
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown nit is not found", func(t *testing.T) {
		repo := new(mockDirectoryRepository)
		repo.On("FindByNIT", ctx, "900123456").Return(nil, tenant.ErrTenantNotFound)

		_, err := NewResolver(repo, "db.public.net", nil).Resolve(ctx, "900123456")

		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
		repo.AssertExpectations(t)
	})

	t.Run("empty nit skips the lookup", func(t *testing.T) {
		repo := new(mockDirectoryRepository)

		_, err := NewResolver(repo, "", nil).Resolve(ctx, "")

		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
		repo.AssertNotCalled(t, "FindByNIT", mock.Anything, mock.Anything)
	})

	t.Run("loopback host replaced by override", func(t *testing.T) {
		stored := &tenant.DirectoryEntry{NIT: "800100200", Host: "127.0.0.1", Active: true}
		repo := new(mockDirectoryRepository)
		repo.On("FindByNIT", ctx, "800100200").Return(stored, nil)

		entry, err := NewResolver(repo, "db.public.net", nil).Resolve(ctx, "800100200")

		require.NoError(t, err)
		assert.Equal(t, "db.public.net", entry.Host)
		assert.Equal(t, "127.0.0.1", stored.Host, "stored entry must not be mutated")
	})

	t.Run("remote host kept", func(t *testing.T) {
		repo := new(mockDirectoryRepository)
		repo.On("FindByNIT", ctx, "800100200").Return(&tenant.DirectoryEntry{Host: "10.0.0.8", Active: true}, nil)

		entry, err := NewResolver(repo, "db.public.net", nil).Resolve(ctx, "800100200")

		require.NoError(t, err)
		assert.Equal(t, "10.0.0.8", entry.Host)
	})

	t.Run("inactive tenant is not found", func(t *testing.T) {
		repo := new(mockDirectoryRepository)
		repo.On("FindByNIT", ctx, "800100200").Return(&tenant.DirectoryEntry{Host: "10.0.0.8"}, nil)

		_, err := NewResolver(repo, "", nil).Resolve(ctx, "800100200")

		assert.ErrorIs(t, err, tenant.ErrTenantNotFound)
	})
}

func TestResolver_List(t *testing.T) {
	ctx := context.Background()
	repo := new(mockDirectoryRepository)
	repo.On("List", ctx).Return([]tenant.DirectoryEntry{
		{NIT: "1", Host: "localhost", Password: "secret"},
		{NIT: "2", Host: "db2", Password: "secret"},
	}, nil)

	entries, err := NewResolver(repo, "db.public.net", nil).List(ctx)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "db.public.net", entries[0].Host)
	assert.Equal(t, "db2", entries[1].Host)
	for _, e := range entries {
		assert.Empty(t, e.Password)
	}
}
