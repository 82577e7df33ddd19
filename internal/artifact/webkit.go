package artifact

import (
	"context"
	"database/sql"
)

const webkitSegment = "Safari History"

// Safari keeps visit_time as REAL seconds; the casts keep scanning integral.
const webkitHistoryQuery = `
	SELECT CAST(COALESCE(MAX(v.visit_time), 0) AS INTEGER) AS last_visit,
	       i.url,
	       COALESCE(
	           (SELECT lv.title FROM history_visits lv
	            WHERE lv.history_item = i.id AND lv.title IS NOT NULL AND lv.title != ''
	            ORDER BY lv.visit_time DESC LIMIT 1),
	           i.domain_expansion),
	       i.visit_count
	FROM history_items i
	LEFT JOIN history_visits v ON v.history_item = i.id
	GROUP BY i.id
	ORDER BY last_visit DESC
`

const webkitVisitsQuery = `
	SELECT CAST(v.visit_time AS INTEGER), i.url, v.title,
	       ref_i.url, ref_v.title
	FROM history_visits v
	JOIN history_items i ON v.history_item = i.id
	LEFT JOIN history_visits ref_v ON v.redirect_source = ref_v.id
	LEFT JOIN history_items ref_i ON ref_v.history_item = ref_i.id
	ORDER BY v.visit_time DESC
	LIMIT 1000
`

// webkitSource reads Safari History.db. Safari keeps downloads in a plist
// and has no keyword table, so both are unsupported.
type webkitSource struct{}

func (webkitSource) Family() BrowserFamily { return WebKit }

func (webkitSource) History(ctx context.Context, q Querier) ([]HistoryRecord, int, error) {
	return collect(ctx, q, webkitHistoryQuery, func(row rowScanner) (HistoryRecord, error) {
		var (
			lastVisit, visits sql.NullInt64
			itemURL, title    sql.NullString
		)
		if err := row.Scan(&lastVisit, &itemURL, &title, &visits); err != nil {
			return HistoryRecord{}, err
		}
		return HistoryRecord{
			LastVisitTime: FromWebKit(num(lastVisit)),
			URL:           str(itemURL),
			Title:         str(title),
			VisitCount:    count(visits),
		}, nil
	})
}

func (webkitSource) Downloads(context.Context, Querier) ([]DownloadRecord, int, error) {
	return nil, 0, ErrUnsupported
}

func (webkitSource) Visits(ctx context.Context, q Querier) ([]VisitRecord, int, error) {
	return collect(ctx, q, webkitVisitsQuery, func(row rowScanner) (VisitRecord, error) {
		var (
			visitTime                        sql.NullInt64
			itemURL, title, refURL, refTitle sql.NullString
		)
		if err := row.Scan(&visitTime, &itemURL, &title, &refURL, &refTitle); err != nil {
			return VisitRecord{}, err
		}
		return VisitRecord{
			VisitTime:     FromWebKit(num(visitTime)),
			URL:           str(itemURL),
			Title:         str(title),
			Transition:    UnknownTransition,
			ReferrerURL:   str(refURL),
			ReferrerTitle: str(refTitle),
			SegmentName:   webkitSegment,
		}, nil
	})
}

func (webkitSource) SearchTerms(context.Context, Querier) ([]SearchTermRecord, int, error) {
	return nil, 0, ErrUnsupported
}
