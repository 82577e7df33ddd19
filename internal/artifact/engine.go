package artifact

import (
	"context"
	"log/slog"
)

// Engine is bound to one artifact for its lifetime. The browser family is
// detected once in Open and never changes. An Engine is not safe for
// concurrent use; callers serialize access or open one Engine per caller.
type Engine struct {
	path   string
	driver string
	logger *slog.Logger

	db     Querier
	closer func() error
	family BrowserFamily
	tables []string
	source RecordSource
}

// Option configures an Engine.
type Option func(*Engine)

// WithDriver selects the database/sql driver (DriverCGO or DriverPure).
func WithDriver(name string) Option {
	return func(e *Engine) {
		if name != "" {
			e.driver = name
		}
	}
}

// WithLogger sets the logger used for degraded-path reporting.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// Open binds an Engine to the SQLite file at path and classifies it.
// Only an empty path is an error: an unreadable or non-browser file yields
// an Engine whose family is Unknown.
func Open(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	if path == "" {
		return nil, ErrNoArtifact
	}

	e := &Engine{
		path:   path,
		driver: DriverCGO,
		logger: slog.Default(),
		family: Unknown,
	}
	for _, opt := range opts {
		opt(e)
	}

	db, err := openReadOnly(e.driver, path)
	if err != nil {
		e.logger.Warn("artifact open failed", "path", path, "error", err)
		e.closer = func() error { return nil }
		e.source = SourceFor(Unknown)
		return e, nil
	}
	e.db = db
	e.closer = db.Close

	family, tables, err := Detect(ctx, db)
	if err != nil {
		e.logger.Warn("browser detection failed", "path", path, "error", err)
	}
	e.family = family
	e.tables = tables
	e.source = SourceFor(family)

	e.logger.Debug("artifact classified", "path", path, "family", family, "tables", len(tables))
	return e, nil
}

// Family returns the detected browser family.
func (e *Engine) Family() BrowserFamily {
	if e == nil || e.family == "" {
		return Unknown
	}
	return e.family
}

// Tables returns the table inventory read during classification.
func (e *Engine) Tables() []string {
	if e == nil {
		return nil
	}
	out := make([]string, len(e.tables))
	copy(out, e.tables)
	return out
}

// Path returns the artifact path the Engine was opened with.
func (e *Engine) Path() string {
	if e == nil {
		return ""
	}
	return e.path
}

// History extracts one HistoryRecord per known URL, newest first.
func (e *Engine) History(ctx context.Context) (Result[HistoryRecord], error) {
	if err := e.bound(); err != nil {
		return newResult[HistoryRecord](Unknown, nil, 0, ErrUnsupported), err
	}
	return extract(ctx, e, "history", e.source.History), nil
}

// Downloads extracts download records, newest first.
func (e *Engine) Downloads(ctx context.Context) (Result[DownloadRecord], error) {
	if err := e.bound(); err != nil {
		return newResult[DownloadRecord](Unknown, nil, 0, ErrUnsupported), err
	}
	return extract(ctx, e, "downloads", e.source.Downloads), nil
}

// Visits extracts at most MaxVisits visits with referrers resolved,
// newest first.
func (e *Engine) Visits(ctx context.Context) (Result[VisitRecord], error) {
	if err := e.bound(); err != nil {
		return newResult[VisitRecord](Unknown, nil, 0, ErrUnsupported), err
	}
	return extract(ctx, e, "visits", e.source.Visits), nil
}

// SearchTerms extracts keyword searches, newest first.
func (e *Engine) SearchTerms(ctx context.Context) (Result[SearchTermRecord], error) {
	if err := e.bound(); err != nil {
		return newResult[SearchTermRecord](Unknown, nil, 0, ErrUnsupported), err
	}
	return extract(ctx, e, "search_terms", e.source.SearchTerms), nil
}

// Close releases the artifact handle. It is safe to call more than once.
func (e *Engine) Close() error {
	if e == nil || e.closer == nil {
		return nil
	}
	closer := e.closer
	e.closer = nil
	e.db = nil
	e.source = nil
	return closer()
}

func (e *Engine) bound() error {
	if e == nil || e.closer == nil || e.source == nil {
		return ErrNoArtifact
	}
	return nil
}

func extract[T any](ctx context.Context, e *Engine, kind string, fn func(context.Context, Querier) ([]T, int, error)) Result[T] {
	records, dropped, err := fn(ctx, e.db)
	res := newResult(e.family, records, dropped, err)

	switch res.Status {
	case StatusFailed:
		e.logger.Warn("extraction failed",
			"kind", kind, "family", e.family, "path", e.path, "error", res.Err)
	case StatusOK:
		if res.Dropped > 0 {
			e.logger.Warn("dropped unmappable rows",
				"kind", kind, "family", e.family, "dropped", res.Dropped)
		}
		e.logger.Debug("extraction complete",
			"kind", kind, "family", e.family, "records", len(res.Records))
	}
	return res
}
