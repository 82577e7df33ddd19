package cli

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/histview/internal/artifact"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

var chromiumFixture = []string{
	`CREATE TABLE urls (id INTEGER PRIMARY KEY, url LONGVARCHAR, title LONGVARCHAR,
		visit_count INTEGER DEFAULT 0 NOT NULL, typed_count INTEGER DEFAULT 0 NOT NULL,
		last_visit_time INTEGER NOT NULL, hidden INTEGER DEFAULT 0 NOT NULL)`,
	`CREATE TABLE visits (id INTEGER PRIMARY KEY, url INTEGER NOT NULL, visit_time INTEGER NOT NULL,
		from_visit INTEGER, transition INTEGER DEFAULT 0 NOT NULL)`,
	`CREATE TABLE downloads (id INTEGER PRIMARY KEY, target_path LONGVARCHAR, start_time INTEGER NOT NULL,
		received_bytes INTEGER NOT NULL, total_bytes INTEGER NOT NULL, end_time INTEGER NOT NULL,
		tab_url VARCHAR, tab_referrer_url VARCHAR)`,
	`CREATE TABLE keyword_search_terms (keyword_id INTEGER NOT NULL, url_id INTEGER NOT NULL,
		term LONGVARCHAR NOT NULL, normalized_term LONGVARCHAR NOT NULL)`,

	`INSERT INTO urls VALUES (1, 'https://example.com/', 'Example', 3, 1, 13303960000000000, 0)`,
	`INSERT INTO urls VALUES (2, 'https://www.google.com/search?q=golang', 'golang - Google Search', 1, 0, 13303970000000000, 0)`,
	`INSERT INTO urls VALUES (3, 'https://untitled.example/', NULL, 1, 0, 13303940000000000, 1)`,
	`INSERT INTO visits VALUES (1, 1, 13303950000000000, NULL, 1)`,
	`INSERT INTO visits VALUES (2, 2, 13303970000000000, 1, 0)`,
	`INSERT INTO downloads VALUES (1, '/home/u/Downloads/report.pdf', 13303960000000000, 1024, 2048, 0,
		'https://example.com/report', 'https://example.com/')`,
	`INSERT INTO keyword_search_terms VALUES (2, 2, 'golang', 'golang')`,
}

var geckoFixture = []string{
	`CREATE TABLE moz_places (id INTEGER PRIMARY KEY, url LONGVARCHAR, title LONGVARCHAR,
		visit_count INTEGER DEFAULT 0, hidden INTEGER DEFAULT 0 NOT NULL, typed INTEGER DEFAULT 0 NOT NULL,
		last_visit_date INTEGER)`,
	`CREATE TABLE moz_historyvisits (id INTEGER PRIMARY KEY, from_visit INTEGER, place_id INTEGER,
		visit_date INTEGER, visit_type INTEGER)`,
	`CREATE TABLE moz_anno_attributes (id INTEGER PRIMARY KEY, name VARCHAR(32) UNIQUE NOT NULL)`,
	`CREATE TABLE moz_annos (id INTEGER PRIMARY KEY, place_id INTEGER NOT NULL, anno_attribute_id INTEGER,
		content LONGVARCHAR, dateAdded INTEGER DEFAULT 0, lastModified INTEGER DEFAULT 0)`,
	`INSERT INTO moz_places VALUES (1, 'https://mozilla.org/', 'Mozilla', 5, 0, 1, 1000000)`,
	`INSERT INTO moz_historyvisits VALUES (1, 0, 1, 1000000, 1)`,
}

// writeArtifact creates a SQLite file named name from stmts in its own
// temp dir and returns its path.
func writeArtifact(t *testing.T, name string, stmts []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()
	for _, stmt := range stmts {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	return path
}

// openTestEngine opens an Engine on path and closes it at cleanup.
func openTestEngine(t *testing.T, path string) *artifact.Engine {
	t.Helper()
	eng, err := artifact.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { eng.Close() })
	return eng
}
