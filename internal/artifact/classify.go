package artifact

import (
	"context"
	"database/sql"
	"fmt"
)

// signatures is evaluated in order; the first complete match wins.
var signatures = []struct {
	family BrowserFamily
	tables []string
}{
	{Chromium, []string{"urls", "visits", "downloads"}},
	{Gecko, []string{"moz_places", "moz_historyvisits"}},
	{WebKit, []string{"history_items", "history_visits"}},
}

// Classify maps a table inventory to a browser family. Names are compared
// case-sensitively.
func Classify(tables []string) BrowserFamily {
	set := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		set[t] = struct{}{}
	}

	for _, sig := range signatures {
		matched := true
		for _, want := range sig.tables {
			if _, ok := set[want]; !ok {
				matched = false
				break
			}
		}
		if matched {
			return sig.family
		}
	}
	return Unknown
}

// ListTables returns the names of all tables in the database.
func ListTables(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM sqlite_master WHERE type='table'")
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return tables, nil
}

// Detect classifies an open database. Any failure to read the inventory
// degrades to Unknown; the error is returned for logging only.
func Detect(ctx context.Context, db *sql.DB) (BrowserFamily, []string, error) {
	if db == nil {
		return Unknown, nil, ErrNoArtifact
	}
	tables, err := ListTables(ctx, db)
	if err != nil {
		return Unknown, nil, err
	}
	return Classify(tables), tables, nil
}
