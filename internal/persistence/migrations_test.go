package persistence

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRunMigrationsWithoutPool(t *testing.T) {
	assert.NoError(t, RunMigrations(context.Background(), nil, "does-not-exist", zap.NewNop()))
}

func TestPostgresDisabled(t *testing.T) {
	var pg *Postgres
	assert.False(t, pg.Enabled())
	assert.Error(t, pg.Ping(context.Background()))
	assert.Nil(t, pg.PoolHandle())

	var r *Redis
	assert.Error(t, r.Ping(context.Background()))
	assert.NotPanics(t, r.Close)
}

func TestLoadMigrations(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"002_indexes.sql": "CREATE INDEX IF NOT EXISTS x ON t (c);",
		"001_init.sql":    "CREATE TABLE IF NOT EXISTS t (c INT);",
		"003_empty.sql":   "  \n",
		"README.md":       "not sql",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}

	migrations, err := loadMigrations(dir)
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, "001_init.sql", migrations[0].name)
	assert.Equal(t, "002_indexes.sql", migrations[1].name)
	assert.Contains(t, migrations[0].sql, "CREATE TABLE")
}

func TestLoadMigrationsRequiresFiles(t *testing.T) {
	_, err := loadMigrations(t.TempDir())
	assert.Error(t, err)
}

func TestRepositoryMigrationsLoad(t *testing.T) {
	migrations, err := loadMigrations(filepath.Join("..", "..", "migrations"))
	require.NoError(t, err)
	require.NotEmpty(t, migrations)
	assert.Contains(t, migrations[0].sql, "reservations_one_active_per_spot")
}
