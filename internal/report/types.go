package report

import "time"

// Record kinds, as stored in the extractions table.
const (
	KindHistory     = "history"
	KindDownloads   = "downloads"
	KindVisits      = "visits"
	KindSearchTerms = "search_terms"
)

// Meta keys written by Export.
const (
	MetaSourcePath = "source_path"
	MetaFamily     = "browser_family"
	MetaSHA256     = "source_sha256"
	MetaSourceSize = "source_size_bytes"
	MetaExportedAt = "exported_at"
)

// Extraction records how one record kind was extracted.
type Extraction struct {
	Kind    string `json:"kind"`
	Status  string `json:"status"`
	Records int    `json:"records"`
	Dropped int    `json:"dropped"`
	Error   string `json:"error,omitempty"`
}

// Summary holds aggregate statistics about a report database.
type Summary struct {
	History     int64             `json:"history"`
	Downloads   int64             `json:"downloads"`
	Visits      int64             `json:"visits"`
	SearchTerms int64             `json:"search_terms"`
	OldestVisit time.Time         `json:"oldest_visit,omitzero"`
	NewestVisit time.Time         `json:"newest_visit,omitzero"`
	TopDomains  []DomainCount     `json:"top_domains"`
	Extractions []Extraction      `json:"extractions"`
	Meta        map[string]string `json:"meta"`
}

// DomainCount pairs a domain with its history entry count.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int64  `json:"count"`
}
