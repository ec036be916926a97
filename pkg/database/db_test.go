package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAndMigrateCreatesTables(t *testing.T) {
	cfg := Config{Path: filepath.Join(t.TempDir(), "nested", "data.db")}
	require.True(t, cfg.Enabled())

	db, err := OpenAndMigrate(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	for _, table := range []string{"subjects", "runs"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err)
		assert.Equal(t, table, name)
	}

	// schema is idempotent
	require.NoError(t, Migrate(db))
}

func TestConfigDisabledWhenPathEmpty(t *testing.T) {
	assert.False(t, Config{}.Enabled())
}
