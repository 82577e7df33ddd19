package artifact

import (
	"context"
	"database/sql"
	"fmt"
)

// MaxVisits caps every visit extraction. It is applied in SQL.
const MaxVisits = 1000

// Querier is the read side of *sql.DB used by extractors.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// RecordSource extracts the four record families from one schema dialect.
// Each method issues a single parameter-free query. A family that does not
// store a record family returns ErrUnsupported. The int result counts rows
// dropped because they could not be mapped.
type RecordSource interface {
	Family() BrowserFamily
	History(ctx context.Context, q Querier) ([]HistoryRecord, int, error)
	Downloads(ctx context.Context, q Querier) ([]DownloadRecord, int, error)
	Visits(ctx context.Context, q Querier) ([]VisitRecord, int, error)
	SearchTerms(ctx context.Context, q Querier) ([]SearchTermRecord, int, error)
}

// SourceFor returns the RecordSource for a family.
func SourceFor(f BrowserFamily) RecordSource {
	switch f {
	case Chromium:
		return chromiumSource{}
	case Gecko:
		return geckoSource{}
	case WebKit:
		return webkitSource{}
	default:
		return unknownSource{}
	}
}

// rowScanner is the subset of *sql.Rows a mapper needs.
type rowScanner interface {
	Scan(dest ...any) error
}

// collect runs query and maps every row with mapRow. Rows that fail to map
// are dropped and counted; a failure of the query or the cursor discards
// everything.
func collect[T any](ctx context.Context, q Querier, query string, mapRow func(rowScanner) (T, error)) ([]T, int, error) {
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, 0, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	records := []T{}
	dropped := 0
	for rows.Next() {
		rec, err := mapRow(rows)
		if err != nil {
			dropped++
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, dropped, fmt.Errorf("iterate rows: %w", err)
	}
	return records, dropped, nil
}

func str(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func num(ni sql.NullInt64) int64 {
	if ni.Valid {
		return ni.Int64
	}
	return 0
}

// count clamps negative counters to zero.
func count(ni sql.NullInt64) int64 {
	if n := num(ni); n > 0 {
		return n
	}
	return 0
}

type unknownSource struct{}

func (unknownSource) Family() BrowserFamily { return Unknown }

func (unknownSource) History(context.Context, Querier) ([]HistoryRecord, int, error) {
	return nil, 0, ErrUnsupported
}

func (unknownSource) Downloads(context.Context, Querier) ([]DownloadRecord, int, error) {
	return nil, 0, ErrUnsupported
}

func (unknownSource) Visits(context.Context, Querier) ([]VisitRecord, int, error) {
	return nil, 0, ErrUnsupported
}

func (unknownSource) SearchTerms(context.Context, Querier) ([]SearchTermRecord, int, error) {
	return nil, 0, ErrUnsupported
}
