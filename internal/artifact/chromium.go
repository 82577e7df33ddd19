package artifact

import (
	"context"
	"database/sql"
	"path"
	"strings"
)

const chromiumSegment = "Chrome History"

const chromiumHistoryQuery = `
	SELECT last_visit_time, url, title, visit_count, typed_count, hidden
	FROM urls
	ORDER BY last_visit_time DESC
`

const chromiumDownloadsQuery = `
	SELECT start_time, end_time, target_path, received_bytes, total_bytes,
	       tab_url, tab_referrer_url
	FROM downloads
	ORDER BY start_time DESC
`

const chromiumVisitsQuery = `
	SELECT v.visit_time, u.url, u.title, v.transition,
	       ref_u.url, ref_u.title
	FROM visits v
	JOIN urls u ON v.url = u.id
	LEFT JOIN visits ref_v ON v.from_visit = ref_v.id
	LEFT JOIN urls ref_u ON ref_v.url = ref_u.id
	ORDER BY v.visit_time DESC
	LIMIT 1000
`

const chromiumSearchTermsQuery = `
	SELECT u.last_visit_time, u.url, kt.term, u.title, u.visit_count
	FROM keyword_search_terms kt
	JOIN urls u ON kt.url_id = u.id
	ORDER BY u.last_visit_time DESC
`

// chromiumSource reads the History database of Chrome, Edge, Brave and
// other Chromium derivatives.
type chromiumSource struct{}

func (chromiumSource) Family() BrowserFamily { return Chromium }

func (chromiumSource) History(ctx context.Context, q Querier) ([]HistoryRecord, int, error) {
	return collect(ctx, q, chromiumHistoryQuery, func(row rowScanner) (HistoryRecord, error) {
		var (
			lastVisit, visits, typed, hidden sql.NullInt64
			url, title                       sql.NullString
		)
		if err := row.Scan(&lastVisit, &url, &title, &visits, &typed, &hidden); err != nil {
			return HistoryRecord{}, err
		}
		return HistoryRecord{
			LastVisitTime: FromChromium(num(lastVisit)),
			URL:           str(url),
			Title:         str(title),
			VisitCount:    count(visits),
			TypedCount:    count(typed),
			IsHidden:      num(hidden) != 0,
		}, nil
	})
}

func (chromiumSource) Downloads(ctx context.Context, q Querier) ([]DownloadRecord, int, error) {
	return collect(ctx, q, chromiumDownloadsQuery, func(row rowScanner) (DownloadRecord, error) {
		var (
			start, end, received, total sql.NullInt64
			target, tabURL, referrer    sql.NullString
		)
		if err := row.Scan(&start, &end, &target, &received, &total, &tabURL, &referrer); err != nil {
			return DownloadRecord{}, err
		}
		p := str(target)
		return DownloadRecord{
			StartTime:     FromChromium(num(start)),
			EndTime:       FromChromium(num(end)),
			Filename:      baseName(p),
			Path:          p,
			ReceivedBytes: count(received),
			TotalBytes:    count(total),
			SourceURL:     str(tabURL),
			ReferrerURL:   str(referrer),
		}, nil
	})
}

func (chromiumSource) Visits(ctx context.Context, q Querier) ([]VisitRecord, int, error) {
	return collect(ctx, q, chromiumVisitsQuery, func(row rowScanner) (VisitRecord, error) {
		var (
			visitTime, transition        sql.NullInt64
			url, title, refURL, refTitle sql.NullString
		)
		if err := row.Scan(&visitTime, &url, &title, &transition, &refURL, &refTitle); err != nil {
			return VisitRecord{}, err
		}
		return VisitRecord{
			VisitTime:     FromChromium(num(visitTime)),
			URL:           str(url),
			Title:         str(title),
			Transition:    chromiumTransition(transition),
			ReferrerURL:   str(refURL),
			ReferrerTitle: str(refTitle),
			SegmentName:   chromiumSegment,
		}, nil
	})
}

func (chromiumSource) SearchTerms(ctx context.Context, q Querier) ([]SearchTermRecord, int, error) {
	return collect(ctx, q, chromiumSearchTermsQuery, func(row rowScanner) (SearchTermRecord, error) {
		var (
			lastVisit, visits    sql.NullInt64
			url, term, pageTitle sql.NullString
		)
		if err := row.Scan(&lastVisit, &url, &term, &pageTitle, &visits); err != nil {
			return SearchTermRecord{}, err
		}
		return SearchTermRecord{
			LastVisitTime: FromChromium(num(lastVisit)),
			SearchURL:     str(url),
			Term:          str(term),
			PageTitle:     str(pageTitle),
			VisitCount:    count(visits),
		}, nil
	})
}

// baseName returns the last element of a download path written on any
// host OS. Windows paths keep their backslashes in the History file.
func baseName(p string) string {
	if p == "" {
		return ""
	}
	p = strings.ReplaceAll(p, `\`, "/")
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	return path.Base(p)
}
