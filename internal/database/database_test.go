package database

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const migrationsDir = "../../migrations"

func tableExists(t *testing.T, db *sqlx.DB, table string) bool {
	t.Helper()
	var name string
	err := db.Get(&name, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
	return err == nil
}

func TestMigrate(t *testing.T) {
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db, migrationsDir))

	for _, table := range []string{"alerts", "alert_rules", "suppression_rules", "maintenance_windows", "suppression_audit"} {
		assert.True(t, tableExists(t, db, table), "expected table %s after migrating up", table)
	}

	// Migrating an up-to-date database is a no-op.
	require.NoError(t, Migrate(db, migrationsDir))

	require.NoError(t, MigrateDown(db, migrationsDir))
	assert.False(t, tableExists(t, db, "alerts"))

	// Rolling back an empty database is a no-op too.
	require.NoError(t, MigrateDown(db, migrationsDir))
}
