package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/runnerr0/histview/internal/artifact"
)

// ErrReportExists is returned by Create when the target path is taken.
var ErrReportExists = errors.New("report already exists")

// Writer defines the interface for persisting normalized records.
type Writer interface {
	WriteMeta(ctx context.Context, key, value string) error
	WriteExtraction(ctx context.Context, e Extraction) error
	WriteHistory(ctx context.Context, records []artifact.HistoryRecord) error
	WriteDownloads(ctx context.Context, records []artifact.DownloadRecord) error
	WriteVisits(ctx context.Context, records []artifact.VisitRecord) error
	WriteSearchTerms(ctx context.Context, records []artifact.SearchTermRecord) error
	Summary(ctx context.Context) (*Summary, error)
	Close() error
}

// SQLiteWriter implements Writer backed by a SQLite database.
type SQLiteWriter struct {
	db     *sql.DB
	ownsDB bool

	// Prepared statements
	upsertMeta       *sql.Stmt
	upsertExtraction *sql.Stmt
	insertHistory    *sql.Stmt
	insertDownload   *sql.Stmt
	insertVisit      *sql.Stmt
	insertSearchTerm *sql.Stmt
}

// NewSQLiteWriter creates a SQLiteWriter from an already-opened and migrated
// database. Close does not close db.
func NewSQLiteWriter(db *sql.DB) (*SQLiteWriter, error) {
	w := &SQLiteWriter{db: db}

	if err := w.prepareStatements(); err != nil {
		w.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return w, nil
}

// Create makes a new report database at path, runs migrations and returns
// a writer that owns the connection.
func Create(ctx context.Context, path string) (*SQLiteWriter, error) {
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrReportExists, path)
	}

	dsn, err := reportDSN(path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}

	if err := NewMigrationRunner(db).Run(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	w, err := NewSQLiteWriter(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	w.ownsDB = true
	return w, nil
}

func (w *SQLiteWriter) prepareStatements() error {
	var err error

	w.upsertMeta, err = w.db.Prepare(`
		INSERT INTO report_meta (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return err
	}

	w.upsertExtraction, err = w.db.Prepare(`
		INSERT INTO extractions (kind, status, records, dropped, error) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET
			status = excluded.status,
			records = excluded.records,
			dropped = excluded.dropped,
			error = excluded.error,
			recorded_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return err
	}

	w.insertHistory, err = w.db.Prepare(`
		INSERT INTO history (last_visit_time, url, domain, title, visit_count, typed_count, is_hidden)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	w.insertDownload, err = w.db.Prepare(`
		INSERT INTO downloads (start_time, end_time, filename, path, received_bytes, total_bytes, source_url, referrer_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	w.insertVisit, err = w.db.Prepare(`
		INSERT INTO visits (visit_time, url, title, transition, referrer_url, referrer_title, segment_name)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	w.insertSearchTerm, err = w.db.Prepare(`
		INSERT INTO search_terms (last_visit_time, search_url, term, page_title, visit_count)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	return nil
}

// WriteMeta sets a report metadata key, replacing any previous value.
func (w *SQLiteWriter) WriteMeta(ctx context.Context, key, value string) error {
	if _, err := w.upsertMeta.ExecContext(ctx, key, value); err != nil {
		return fmt.Errorf("write meta %s: %w", key, err)
	}
	return nil
}

// WriteExtraction records the outcome of one extraction.
func (w *SQLiteWriter) WriteExtraction(ctx context.Context, e Extraction) error {
	_, err := w.upsertExtraction.ExecContext(ctx, e.Kind, e.Status, e.Records, e.Dropped, e.Error)
	if err != nil {
		return fmt.Errorf("write extraction %s: %w", e.Kind, err)
	}
	return nil
}

// WriteHistory inserts history records in a single transaction.
func (w *SQLiteWriter) WriteHistory(ctx context.Context, records []artifact.HistoryRecord) error {
	return w.insertAll(ctx, w.insertHistory, len(records), func(stmt *sql.Stmt, i int) error {
		r := records[i]
		_, err := stmt.ExecContext(ctx,
			timeValue(r.LastVisitTime), r.URL, extractDomain(r.URL), r.Title,
			r.VisitCount, r.TypedCount, r.IsHidden,
		)
		return err
	})
}

// WriteDownloads inserts download records in a single transaction.
func (w *SQLiteWriter) WriteDownloads(ctx context.Context, records []artifact.DownloadRecord) error {
	return w.insertAll(ctx, w.insertDownload, len(records), func(stmt *sql.Stmt, i int) error {
		r := records[i]
		_, err := stmt.ExecContext(ctx,
			timeValue(r.StartTime), timeValue(r.EndTime), r.Filename, r.Path,
			r.ReceivedBytes, r.TotalBytes, r.SourceURL, r.ReferrerURL,
		)
		return err
	})
}

// WriteVisits inserts visit records in a single transaction.
func (w *SQLiteWriter) WriteVisits(ctx context.Context, records []artifact.VisitRecord) error {
	return w.insertAll(ctx, w.insertVisit, len(records), func(stmt *sql.Stmt, i int) error {
		r := records[i]
		_, err := stmt.ExecContext(ctx,
			timeValue(r.VisitTime), r.URL, r.Title, r.Transition,
			r.ReferrerURL, r.ReferrerTitle, r.SegmentName,
		)
		return err
	})
}

// WriteSearchTerms inserts search term records in a single transaction.
func (w *SQLiteWriter) WriteSearchTerms(ctx context.Context, records []artifact.SearchTermRecord) error {
	return w.insertAll(ctx, w.insertSearchTerm, len(records), func(stmt *sql.Stmt, i int) error {
		r := records[i]
		_, err := stmt.ExecContext(ctx,
			timeValue(r.LastVisitTime), r.SearchURL, r.Term, r.PageTitle, r.VisitCount,
		)
		return err
	})
}

// insertAll runs exec for n rows against stmt bound to one transaction.
func (w *SQLiteWriter) insertAll(ctx context.Context, stmt *sql.Stmt, n int, exec func(*sql.Stmt, int) error) error {
	if n == 0 {
		return nil
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	txStmt := tx.StmtContext(ctx, stmt)
	defer txStmt.Close()

	for i := 0; i < n; i++ {
		if err := exec(txStmt, i); err != nil {
			return fmt.Errorf("insert row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Summary returns aggregate statistics about the report.
func (w *SQLiteWriter) Summary(ctx context.Context) (*Summary, error) {
	sum := &Summary{
		TopDomains:  []DomainCount{},
		Extractions: []Extraction{},
		Meta:        map[string]string{},
	}

	counts := []struct {
		table string
		dst   *int64
	}{
		{"history", &sum.History},
		{"downloads", &sum.Downloads},
		{"visits", &sum.Visits},
		{"search_terms", &sum.SearchTerms},
	}
	for _, c := range counts {
		if err := w.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("count %s: %w", c.table, err)
		}
	}

	// Oldest and newest (NULL when no visit carries a time)
	var oldest, newest sql.NullString
	err := w.db.QueryRowContext(ctx,
		"SELECT MIN(visit_time), MAX(visit_time) FROM visits WHERE visit_time IS NOT NULL",
	).Scan(&oldest, &newest)
	if err != nil {
		return nil, fmt.Errorf("visit time range: %w", err)
	}
	if oldest.Valid {
		sum.OldestVisit, _ = time.Parse(time.RFC3339, oldest.String)
	}
	if newest.Valid {
		sum.NewestVisit, _ = time.Parse(time.RFC3339, newest.String)
	}

	if err := w.topDomains(ctx, sum); err != nil {
		return nil, err
	}
	if err := w.extractions(ctx, sum); err != nil {
		return nil, err
	}
	if err := w.meta(ctx, sum); err != nil {
		return nil, err
	}

	return sum, nil
}

func (w *SQLiteWriter) topDomains(ctx context.Context, sum *Summary) error {
	rows, err := w.db.QueryContext(ctx,
		"SELECT domain, COUNT(*) AS cnt FROM history WHERE domain != '' GROUP BY domain ORDER BY cnt DESC, domain LIMIT 10",
	)
	if err != nil {
		return fmt.Errorf("top domains: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var dc DomainCount
		if err := rows.Scan(&dc.Domain, &dc.Count); err != nil {
			return err
		}
		sum.TopDomains = append(sum.TopDomains, dc)
	}
	return rows.Err()
}

func (w *SQLiteWriter) extractions(ctx context.Context, sum *Summary) error {
	rows, err := w.db.QueryContext(ctx,
		"SELECT kind, status, records, dropped, error FROM extractions ORDER BY kind",
	)
	if err != nil {
		return fmt.Errorf("extractions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e Extraction
		if err := rows.Scan(&e.Kind, &e.Status, &e.Records, &e.Dropped, &e.Error); err != nil {
			return err
		}
		sum.Extractions = append(sum.Extractions, e)
	}
	return rows.Err()
}

func (w *SQLiteWriter) meta(ctx context.Context, sum *Summary) error {
	rows, err := w.db.QueryContext(ctx, "SELECT key, value FROM report_meta")
	if err != nil {
		return fmt.Errorf("report meta: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return err
		}
		sum.Meta[k] = v
	}
	return rows.Err()
}

// Close releases all prepared statements, and the database when the writer
// was made by Create.
func (w *SQLiteWriter) Close() error {
	stmts := []*sql.Stmt{
		w.upsertMeta, w.upsertExtraction, w.insertHistory,
		w.insertDownload, w.insertVisit, w.insertSearchTerm,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	if w.ownsDB {
		w.ownsDB = false
		return w.db.Close()
	}
	return nil
}

// reportDSN builds a file: URI for path so that characters such as '?'
// and '#' stay part of the file name.
func reportDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve report path: %w", err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	q := url.Values{}
	q.Set("_foreign_keys", "on")
	u := url.URL{Scheme: "file", Path: p, RawQuery: q.Encode()}
	return u.String(), nil
}

// timeValue maps a decoded timestamp to RFC 3339 text, or NULL for Never.
func timeValue(ts artifact.Timestamp) any {
	t, ok := ts.Time()
	if !ok {
		return nil
	}
	return t.Format(time.RFC3339)
}

// extractDomain pulls the hostname from a URL string.
func extractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
