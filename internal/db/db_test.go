package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenInMemory(t *testing.T) {
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	var tableName string
	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='sessions'").Scan(&tableName)
	require.NoError(t, err)
	assert.Equal(t, "sessions", tableName)

	var version int
	require.NoError(t, db.QueryRow("SELECT version FROM schema_migrations").Scan(&version))
	assert.Equal(t, 2, version)

	var foreignKeys int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys))
	assert.Equal(t, 1, foreignKeys)
}

func TestOpenForTestingAppliesMigrations(t *testing.T) {
	db, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	var tableName string

	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='sessions'").Scan(&tableName)
	assert.NoError(t, err)
	assert.Equal(t, "sessions", tableName)

	err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name='locator_snapshots'").Scan(&tableName)
	assert.NoError(t, err)
	assert.Equal(t, "locator_snapshots", tableName)

	var version int
	err = db.QueryRow("SELECT version FROM schema_migrations").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	db, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, db.Close()) })

	assert.NoError(t, runMigrations(db))
}

func TestOpenForTestingIsIsolated(t *testing.T) {
	a, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	b, err := OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	_, err = a.Exec("INSERT INTO sessions (token, created_at, updated_at) VALUES ('only-in-a', 0, 0)")
	require.NoError(t, err)

	var n int
	require.NoError(t, b.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&n))
	assert.Zero(t, n)
}
