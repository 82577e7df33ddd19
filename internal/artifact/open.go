package artifact

import (
	"database/sql"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Registered database/sql driver names.
const (
	// DriverCGO is mattn/go-sqlite3.
	DriverCGO = "sqlite3"
	// DriverPure is modernc.org/sqlite.
	DriverPure = "sqlite"
)

// ValidDriver reports whether name is one of the supported drivers.
func ValidDriver(name string) bool {
	return name == DriverCGO || name == DriverPure
}

// readOnlyDSN builds a file: URI that opens path read-only and refuses
// writes on the connection.
func readOnlyDSN(driver, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve artifact path: %w", err)
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}

	q := url.Values{}
	q.Set("mode", "ro")
	switch driver {
	case DriverPure:
		q.Add("_pragma", "query_only(1)")
	default:
		q.Set("_query_only", "1")
	}

	u := url.URL{Scheme: "file", Path: p, RawQuery: q.Encode()}
	return u.String(), nil
}

// openReadOnly opens the artifact on a single connection.
func openReadOnly(driver, path string) (*sql.DB, error) {
	if !ValidDriver(driver) {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	dsn, err := readOnlyDSN(driver, path)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
