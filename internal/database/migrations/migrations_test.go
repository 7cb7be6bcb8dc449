package migrations

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateUp_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, MigrateUp(db))

	for _, table := range []string{"sources", "operations", "schema_migrations"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		assert.NoError(t, err, "table %s was not created", table)
	}
}

func TestMigrateUp_LegacyDatabase(t *testing.T) {
	db := openTestDB(t)

	// Catalog files written before versioning carry the table and data already.
	_, err := db.Exec(`CREATE TABLE sources (id INTEGER PRIMARY KEY, name TEXT NOT NULL, ra TEXT, dec TEXT,
		short_name TEXT, v_lsr REAL, obs_first TEXT, obs_latest TEXT, obs_number INTEGER, mean_cadence_per_month REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO sources (name, short_name) VALUES ('G10.623-0.383', 'g10p62')`)
	require.NoError(t, err)

	require.NoError(t, MigrateUp(db))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sources").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestCheckDBMigrationStatus_FreshDatabase(t *testing.T) {
	db := openTestDB(t)

	assert.ErrorIs(t, CheckDBMigrationStatus(db), ErrNoVersion)
}

func TestCheckDBMigrationStatus_AfterMigration(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, MigrateUp(db))
	assert.NoError(t, CheckDBMigrationStatus(db))
}

func TestMigrateUp_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, MigrateUp(db))
	require.NoError(t, MigrateUp(db), "second migration should be a no-op")
	assert.NoError(t, CheckDBMigrationStatus(db))
}

func TestStatus(t *testing.T) {
	db := openTestDB(t)

	latest, err := LatestVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(3), latest)

	st, err := Status(db)
	require.NoError(t, err)
	assert.Zero(t, st.Version)
	assert.False(t, st.UpToDate())

	require.NoError(t, MigrateUp(db))
	st, err = Status(db)
	require.NoError(t, err)
	assert.True(t, st.UpToDate(), "status after migration: %s", st)
}

func TestSchema_UniqueNames(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, MigrateUp(db))

	_, err := db.Exec("INSERT INTO sources (name, short_name) VALUES ('A', 'a1')")
	require.NoError(t, err)
	_, err = db.Exec("INSERT INTO sources (name, short_name) VALUES ('A', 'a2')")
	assert.Error(t, err, "duplicate name")
	_, err = db.Exec("INSERT INTO sources (name, short_name) VALUES ('B', 'a1')")
	assert.Error(t, err, "duplicate short name")
}

func TestSchema_PlaceholderShortNamesMayRepeat(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, MigrateUp(db))

	for i, sn := range []string{" ", " ", "---", "---", ""} {
		name := string(rune('A' + i))
		_, err := db.Exec("INSERT INTO sources (name, short_name) VALUES (?, ?)", name, sn)
		assert.NoError(t, err, "insert %s with short name %q", name, sn)
	}
}

// openTestDB opens an in-memory SQLite database on a single connection.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}
