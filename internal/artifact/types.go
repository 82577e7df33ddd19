package artifact

// BrowserFamily identifies the schema dialect of an artifact.
type BrowserFamily string

const (
	Chromium BrowserFamily = "chromium"
	Gecko    BrowserFamily = "gecko"
	WebKit   BrowserFamily = "webkit"
	Unknown  BrowserFamily = "unknown"
)

var familyTitles = map[BrowserFamily]string{
	Chromium: "Chromium",
	Gecko:    "Gecko",
	WebKit:   "WebKit",
	Unknown:  "Unknown",
}

// Title returns the display name of the family. Anything unrecognised
// renders as "Unknown".
func (f BrowserFamily) Title() string {
	if t, ok := familyTitles[f]; ok {
		return t
	}
	return "Unknown"
}

// HistoryRecord is one distinct URL known to the artifact's places table.
type HistoryRecord struct {
	LastVisitTime Timestamp `json:"last_visit_time"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	VisitCount    int64     `json:"visit_count"`
	TypedCount    int64     `json:"typed_count"`
	IsHidden      bool      `json:"is_hidden"`
}

// DownloadRecord is one download entry. Fields a family does not record
// stay at their zero value.
type DownloadRecord struct {
	StartTime     Timestamp `json:"start_time"`
	EndTime       Timestamp `json:"end_time"`
	Filename      string    `json:"filename"`
	Path          string    `json:"path"`
	ReceivedBytes int64     `json:"received_bytes"`
	TotalBytes    int64     `json:"total_bytes"`
	SourceURL     string    `json:"source_url"`
	ReferrerURL   string    `json:"referrer_url"`
}

// VisitRecord is a single visit with its referrer resolved.
type VisitRecord struct {
	VisitTime     Timestamp `json:"visit_time"`
	URL           string    `json:"url"`
	Title         string    `json:"title"`
	Transition    string    `json:"transition"`
	ReferrerURL   string    `json:"referrer_url"`
	ReferrerTitle string    `json:"referrer_title"`
	SegmentName   string    `json:"segment_name"`
}

// SearchTermRecord is a keyword search captured by the browser.
type SearchTermRecord struct {
	LastVisitTime Timestamp `json:"last_visit_time"`
	SearchURL     string    `json:"search_url"`
	Term          string    `json:"term"`
	PageTitle     string    `json:"page_title"`
	VisitCount    int64     `json:"visit_count"`
}
