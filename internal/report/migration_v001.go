package report

import (
	"context"
	"database/sql"
)

// migrateV001 creates the report schema: one table per record family,
// the extraction log and key/value metadata. Timestamps are RFC 3339 text,
// NULL when the source recorded none.
func migrateV001(ctx context.Context, tx *sql.Tx) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		`CREATE TABLE IF NOT EXISTS report_meta (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS extractions (
			kind        TEXT PRIMARY KEY CHECK (kind IN ('history', 'downloads', 'visits', 'search_terms')),
			status      TEXT NOT NULL CHECK (status IN ('ok', 'unsupported', 'failed')),
			records     INTEGER NOT NULL DEFAULT 0,
			dropped     INTEGER NOT NULL DEFAULT 0,
			error       TEXT NOT NULL DEFAULT '',
			recorded_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS history (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			last_visit_time TEXT,
			url             TEXT NOT NULL DEFAULT '',
			domain          TEXT NOT NULL DEFAULT '',
			title           TEXT NOT NULL DEFAULT '',
			visit_count     INTEGER NOT NULL DEFAULT 0,
			typed_count     INTEGER NOT NULL DEFAULT 0,
			is_hidden       BOOLEAN NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS downloads (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			start_time     TEXT,
			end_time       TEXT,
			filename       TEXT NOT NULL DEFAULT '',
			path           TEXT NOT NULL DEFAULT '',
			received_bytes INTEGER NOT NULL DEFAULT 0,
			total_bytes    INTEGER NOT NULL DEFAULT 0,
			source_url     TEXT NOT NULL DEFAULT '',
			referrer_url   TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS visits (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			visit_time     TEXT,
			url            TEXT NOT NULL DEFAULT '',
			title          TEXT NOT NULL DEFAULT '',
			transition     TEXT NOT NULL DEFAULT '',
			referrer_url   TEXT NOT NULL DEFAULT '',
			referrer_title TEXT NOT NULL DEFAULT '',
			segment_name   TEXT NOT NULL DEFAULT ''
		)`,

		`CREATE TABLE IF NOT EXISTS search_terms (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			last_visit_time TEXT,
			search_url      TEXT NOT NULL DEFAULT '',
			term            TEXT NOT NULL DEFAULT '',
			page_title      TEXT NOT NULL DEFAULT '',
			visit_count     INTEGER NOT NULL DEFAULT 0
		)`,

		// ── Indexes ────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_history_last_visit   ON history(last_visit_time)`,
		`CREATE INDEX IF NOT EXISTS idx_history_url          ON history(url)`,
		`CREATE INDEX IF NOT EXISTS idx_history_domain       ON history(domain)`,
		`CREATE INDEX IF NOT EXISTS idx_downloads_start      ON downloads(start_time)`,
		`CREATE INDEX IF NOT EXISTS idx_visits_time          ON visits(visit_time)`,
		`CREATE INDEX IF NOT EXISTS idx_visits_url           ON visits(url)`,
		`CREATE INDEX IF NOT EXISTS idx_search_terms_term    ON search_terms(term)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
