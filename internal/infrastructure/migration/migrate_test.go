package migration

import (
	"io"
	"testing"
	"testing/fstest"

	"github.com/erp/pymes/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSource_MasterMigrations(t *testing.T) {
	src, err := NewSource(migrations.Master, migrations.MasterDir)
	require.NoError(t, err)
	defer src.Close()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	r, ident, err := src.ReadUp(first)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, "create_empresasconfig", ident)

	body, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Contains(t, string(body), "CREATE TABLE IF NOT EXISTS empresasconfig")
	assert.Contains(t, string(body), "UNIQUE KEY uk_empresasconfig_nit (nit)")

	next, err := src.Next(first)
	require.NoError(t, err)
	assert.Equal(t, uint(2), next)
}

func TestNewSource_EveryUpHasDown(t *testing.T) {
	src, err := NewSource(migrations.Master, migrations.MasterDir)
	require.NoError(t, err)
	defer src.Close()

	version, err := src.First()
	require.NoError(t, err)
	for {
		down, _, err := src.ReadDown(version)
		require.NoError(t, err, "version %d has no down migration", version)
		down.Close()

		version, err = src.Next(version)
		if err != nil {
			break
		}
	}
}

func TestNewSource_MissingDir(t *testing.T) {
	_, err := NewSource(fstest.MapFS{}, "master")
	assert.Error(t, err)
}
