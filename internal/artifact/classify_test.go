package artifact

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		tables []string
		want   BrowserFamily
	}{
		{"chromium", []string{"meta", "urls", "visits", "downloads", "keyword_search_terms"}, Chromium},
		{"gecko", []string{"moz_places", "moz_historyvisits", "moz_bookmarks"}, Gecko},
		{"webkit", []string{"history_items", "history_visits", "history_tombstones"}, WebKit},
		{"chromium without downloads", []string{"urls", "visits"}, Unknown},
		{"gecko without visits", []string{"moz_places"}, Unknown},
		{"case sensitive", []string{"URLS", "VISITS", "DOWNLOADS"}, Unknown},
		{"empty", nil, Unknown},
		{"unrelated", []string{"events", "content"}, Unknown},
		{"chromium wins over gecko", []string{"moz_places", "moz_historyvisits", "urls", "visits", "downloads"}, Chromium},
		{"gecko wins over webkit", []string{"history_items", "history_visits", "moz_places", "moz_historyvisits"}, Gecko},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.tables))
		})
	}
}

func TestDetect_Fixtures(t *testing.T) {
	tests := []struct {
		name   string
		schema []string
		want   BrowserFamily
	}{
		{"chromium", chromiumSchema, Chromium},
		{"gecko", geckoSchema, Gecko},
		{"webkit", webkitSchema, WebKit},
		{"other", []string{`CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)`}, Unknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFixture(t, tc.schema)
			db, err := sql.Open("sqlite3", path)
			require.NoError(t, err)
			defer db.Close()

			family, tables, err := Detect(context.Background(), db)
			require.NoError(t, err)
			assert.Equal(t, tc.want, family)
			assert.NotEmpty(t, tables)
		})
	}
}

func TestDetect_GarbageFileIsUnknown(t *testing.T) {
	db, err := sql.Open("sqlite3", writeGarbage(t))
	require.NoError(t, err)
	defer db.Close()

	family, tables, err := Detect(context.Background(), db)
	assert.Error(t, err)
	assert.Equal(t, Unknown, family)
	assert.Empty(t, tables)
}

func TestDetect_NilDB(t *testing.T) {
	family, _, err := Detect(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoArtifact)
	assert.Equal(t, Unknown, family)
}

func TestBrowserFamily_Title(t *testing.T) {
	assert.Equal(t, "Chromium", Chromium.Title())
	assert.Equal(t, "Gecko", Gecko.Title())
	assert.Equal(t, "WebKit", WebKit.Title())
	assert.Equal(t, "Unknown", BrowserFamily("opera").Title())
	assert.Equal(t, "Unknown", Unknown.Title())
	assert.Equal(t, "Unknown", BrowserFamily("").Title())
}
