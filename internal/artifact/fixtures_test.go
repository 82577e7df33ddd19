package artifact

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Minimal renditions of each browser's schema, restricted to the columns
// the extractors read plus a few they ignore.

var chromiumSchema = []string{
	`CREATE TABLE meta (key LONGVARCHAR NOT NULL UNIQUE PRIMARY KEY, value LONGVARCHAR)`,
	`CREATE TABLE urls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url LONGVARCHAR,
		title LONGVARCHAR,
		visit_count INTEGER DEFAULT 0 NOT NULL,
		typed_count INTEGER DEFAULT 0 NOT NULL,
		last_visit_time INTEGER NOT NULL,
		hidden INTEGER DEFAULT 0 NOT NULL
	)`,
	`CREATE TABLE visits (
		id INTEGER PRIMARY KEY,
		url INTEGER NOT NULL,
		visit_time INTEGER NOT NULL,
		from_visit INTEGER,
		transition INTEGER DEFAULT 0 NOT NULL,
		segment_id INTEGER
	)`,
	`CREATE TABLE downloads (
		id INTEGER PRIMARY KEY,
		guid VARCHAR NOT NULL DEFAULT '',
		target_path LONGVARCHAR,
		start_time INTEGER NOT NULL,
		received_bytes INTEGER NOT NULL,
		total_bytes INTEGER NOT NULL,
		end_time INTEGER NOT NULL,
		tab_url VARCHAR,
		tab_referrer_url VARCHAR
	)`,
	`CREATE TABLE keyword_search_terms (
		keyword_id INTEGER NOT NULL,
		url_id INTEGER NOT NULL,
		term LONGVARCHAR NOT NULL,
		normalized_term LONGVARCHAR NOT NULL
	)`,
}

var chromiumRows = []string{
	`INSERT INTO urls VALUES (1, 'https://example.com/', 'Example', 3, 1, 13303960000000000, 0)`,
	`INSERT INTO urls VALUES (2, 'https://www.google.com/search?q=golang', 'golang - Google Search', 1, 0, 13303970000000000, 0)`,
	`INSERT INTO urls VALUES (3, 'https://hidden.example/', NULL, 0, 0, 0, 1)`,

	`INSERT INTO visits VALUES (1, 1, 13303950000000000, NULL, 1, 0)`,
	`INSERT INTO visits VALUES (2, 2, 13303970000000000, 1, 805306368, 0)`,
	`INSERT INTO visits VALUES (3, 1, 13303960000000000, 999, 8, 0)`,

	`INSERT INTO downloads VALUES (1, 'a', '/home/u/Downloads/report.pdf', 13303960000000000, 1024, 2048, 13303960005000000,
		'https://example.com/report', 'https://example.com/')`,
	`INSERT INTO downloads VALUES (2, 'b', 'C:\Users\u\Downloads\setup.exe', 13303950000000000, 10, 10, 0, NULL, NULL)`,

	`INSERT INTO keyword_search_terms VALUES (2, 2, 'golang', 'golang')`,
}

var geckoSchema = []string{
	`CREATE TABLE moz_places (
		id INTEGER PRIMARY KEY,
		url LONGVARCHAR,
		title LONGVARCHAR,
		visit_count INTEGER DEFAULT 0,
		hidden INTEGER DEFAULT 0 NOT NULL,
		typed INTEGER DEFAULT 0 NOT NULL,
		last_visit_date INTEGER
	)`,
	`CREATE TABLE moz_historyvisits (
		id INTEGER PRIMARY KEY,
		from_visit INTEGER,
		place_id INTEGER,
		visit_date INTEGER,
		visit_type INTEGER,
		session INTEGER
	)`,
	`CREATE TABLE moz_anno_attributes (id INTEGER PRIMARY KEY, name VARCHAR(32) UNIQUE NOT NULL)`,
	`CREATE TABLE moz_annos (
		id INTEGER PRIMARY KEY,
		place_id INTEGER NOT NULL,
		anno_attribute_id INTEGER,
		content LONGVARCHAR,
		flags INTEGER DEFAULT 0,
		expiration INTEGER DEFAULT 0,
		type INTEGER DEFAULT 0,
		dateAdded INTEGER DEFAULT 0,
		lastModified INTEGER DEFAULT 0
	)`,
}

var geckoRows = []string{
	`INSERT INTO moz_places VALUES (1, 'https://mozilla.org/', 'Mozilla', 5, 0, 1, 1000000)`,
	`INSERT INTO moz_places VALUES (2, 'https://example.org/dl/file.zip', NULL, 1, 0, 0, 1600000000000000)`,
	`INSERT INTO moz_places VALUES (3, 'https://never.example/', NULL, 0, 0, 0, NULL)`,
	`INSERT INTO moz_places VALUES (4, 'https://hidden.example/', 'Hidden', 1, 1, 0, 1500000000000000)`,

	`INSERT INTO moz_historyvisits VALUES (1, 0, 1, 1000000, 1, 0)`,
	`INSERT INTO moz_historyvisits VALUES (2, 1, 2, 1600000000000000, 7, 0)`,
	`INSERT INTO moz_historyvisits VALUES (3, NULL, 4, 1500000000000000, NULL, 0)`,
	`INSERT INTO moz_historyvisits VALUES (4, 77, 1, 2000000, 0, 0)`,

	`INSERT INTO moz_anno_attributes VALUES (1, 'downloads/destinationFileURI')`,
	`INSERT INTO moz_anno_attributes VALUES (2, 'downloads/metaData')`,
	`INSERT INTO moz_annos VALUES (1, 2, 1, 'file:///home/u/Downloads/file.zip', 0, 4, 3, 1600000000000000, 1600000005000000)`,
	`INSERT INTO moz_annos VALUES (2, 2, 2, '{"state":1,"endTime":1600000010000,"fileSize":4096}', 0, 4, 3, 1600000000000000, 1600000010000000)`,
	`INSERT INTO moz_annos VALUES (3, 3, 1, 'file:///tmp/My%20Doc.pdf', 0, 4, 3, 1500000000000000, 0)`,
}

var webkitSchema = []string{
	`CREATE TABLE history_items (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL UNIQUE,
		domain_expansion TEXT NULL,
		visit_count INTEGER NOT NULL,
		daily_visit_counts BLOB NOT NULL DEFAULT x''
	)`,
	`CREATE TABLE history_visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		history_item INTEGER NOT NULL REFERENCES history_items(id),
		visit_time REAL NOT NULL,
		title TEXT NULL,
		load_successful BOOLEAN NOT NULL DEFAULT 1,
		redirect_source INTEGER NULL UNIQUE REFERENCES history_visits(id),
		redirect_destination INTEGER NULL UNIQUE REFERENCES history_visits(id)
	)`,
}

var webkitRows = []string{
	`INSERT INTO history_items (id, url, domain_expansion, visit_count) VALUES (1, 'https://apple.com/', 'apple', 2)`,
	`INSERT INTO history_items (id, url, domain_expansion, visit_count) VALUES (2, 'https://webkit.org/', NULL, 1)`,
	`INSERT INTO history_items (id, url, domain_expansion, visit_count) VALUES (3, 'https://novisit.example/', 'novisit', 0)`,

	`INSERT INTO history_visits (id, history_item, visit_time, title, redirect_source) VALUES (1, 1, 631152000.0, 'Apple', NULL)`,
	`INSERT INTO history_visits (id, history_item, visit_time, title, redirect_source) VALUES (2, 1, 631152060.5, 'Apple (Updated)', NULL)`,
	`INSERT INTO history_visits (id, history_item, visit_time, title, redirect_source) VALUES (3, 2, 631152030.0, 'WebKit', 2)`,
}

// writeFixture creates a SQLite file from the given statements and
// returns its path.
func writeFixture(t *testing.T, stmts ...[]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artifact.sqlite")
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	for _, group := range stmts {
		for _, stmt := range group {
			_, err := db.Exec(stmt)
			require.NoError(t, err, stmt)
		}
	}
	return path
}

// writeGarbage creates a file that is not a SQLite database.
func writeGarbage(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "garbage.sqlite")
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("this is definitely not a database file\n", 64)), 0644))
	return path
}

// openTestEngine opens an Engine and closes it at cleanup.
func openTestEngine(t *testing.T, path string, opts ...Option) *Engine {
	t.Helper()
	e, err := Open(context.Background(), path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

// fileDigest hashes a file's bytes.
func fileDigest(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
