package report

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationRunner_FreshDB(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)

	err := runner.Run(context.Background())
	require.NoError(t, err)

	expectedTables := []string{
		"report_meta",
		"extractions",
		"history",
		"downloads",
		"visits",
		"search_terms",
		"schema_migrations",
	}
	for _, table := range expectedTables {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrationRunner_IndexesCreated(t *testing.T) {
	db := openTestDB(t)
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run(context.Background()))

	expectedIndexes := []string{
		"idx_history_last_visit",
		"idx_history_url",
		"idx_history_domain",
		"idx_downloads_start",
		"idx_visits_time",
		"idx_visits_url",
		"idx_search_terms_term",
	}
	for _, idx := range expectedIndexes {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='index' AND name=?", idx,
		).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrationRunner_Idempotent(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, NewMigrationRunner(db).Run(context.Background()))
	require.NoError(t, NewMigrationRunner(db).Run(context.Background()))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestMigrationRunner_RecordsVersion(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run(context.Background()))

	var version int
	var name string
	err := db.QueryRow("SELECT version, name FROM schema_migrations").Scan(&version, &name)
	require.NoError(t, err)
	assert.Equal(t, 1, version)
	assert.Equal(t, "report_schema", name)
}

func TestMigrationRunner_RejectsUnknownKind(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, NewMigrationRunner(db).Run(context.Background()))

	_, err := db.Exec("INSERT INTO extractions (kind, status) VALUES ('cookies', 'ok')")
	assert.Error(t, err)

	_, err = db.Exec("INSERT INTO extractions (kind, status) VALUES ('history', 'maybe')")
	assert.Error(t, err)
}

func TestMigrationRunner_Version(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	runner := NewMigrationRunner(db)
	require.NoError(t, runner.Run(ctx))

	v, err := runner.Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestMigrationRunner_RejectsNewerSchema(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	require.NoError(t, NewMigrationRunner(db).Run(ctx))

	_, err := db.Exec("INSERT INTO schema_migrations (version, name) VALUES (99, 'future')")
	require.NoError(t, err)

	err = NewMigrationRunner(db).Run(ctx)
	assert.ErrorIs(t, err, ErrSchemaTooNew)
}

func TestMigrationRunner_FailedMigrationRollsBack(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	runner := &MigrationRunner{db: db, migrations: []migration{
		{Version: 1, Name: "broken", Apply: func(ctx context.Context, tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, "CREATE TABLE half (id INTEGER)"); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, "CREATE TABLE nonsense (")
			return err
		}},
	}}

	require.Error(t, runner.Run(ctx))

	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE name = 'half'").Scan(&n))
	assert.Zero(t, n)

	v, err := runner.Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, v)
}
