package artifact

import (
	"context"
	"database/sql"
	"net/url"

	"github.com/tidwall/gjson"
)

const geckoSegment = "Firefox History"

// geckoDownloadFinished is the metaData "state" of a completed download.
const geckoDownloadFinished = 1

const geckoHistoryQuery = `
	SELECT last_visit_date, url, title, visit_count, typed, hidden
	FROM moz_places
	WHERE last_visit_date IS NOT NULL
	ORDER BY last_visit_date DESC
`

// Downloads live in page annotations: the destination URI is always
// present, the metaData JSON only on newer profiles.
const geckoDownloadsQuery = `
	SELECT a.dateAdded, a.lastModified, p.title, a.content, p.url, meta.content
	FROM moz_anno_attributes aa
	JOIN moz_annos a ON aa.id = a.anno_attribute_id
	JOIN moz_places p ON a.place_id = p.id
	LEFT JOIN (
		SELECT ma.place_id AS place_id, ma.content AS content
		FROM moz_annos ma
		JOIN moz_anno_attributes mattr ON mattr.id = ma.anno_attribute_id
		WHERE mattr.name = 'downloads/metaData'
	) meta ON meta.place_id = a.place_id
	WHERE aa.name = 'downloads/destinationFileURI'
	ORDER BY a.dateAdded DESC
`

const geckoVisitsQuery = `
	SELECT hv.visit_date, p.url, p.title, hv.visit_type,
	       ref_p.url, ref_p.title
	FROM moz_historyvisits hv
	JOIN moz_places p ON hv.place_id = p.id
	LEFT JOIN moz_historyvisits ref_hv ON hv.from_visit = ref_hv.id
	LEFT JOIN moz_places ref_p ON ref_hv.place_id = ref_p.id
	ORDER BY hv.visit_date DESC
	LIMIT 1000
`

// geckoSource reads Firefox places.sqlite.
type geckoSource struct{}

func (geckoSource) Family() BrowserFamily { return Gecko }

func (geckoSource) History(ctx context.Context, q Querier) ([]HistoryRecord, int, error) {
	return collect(ctx, q, geckoHistoryQuery, func(row rowScanner) (HistoryRecord, error) {
		var (
			lastVisit, visits, typed, hidden sql.NullInt64
			placeURL, title                  sql.NullString
		)
		if err := row.Scan(&lastVisit, &placeURL, &title, &visits, &typed, &hidden); err != nil {
			return HistoryRecord{}, err
		}
		return HistoryRecord{
			LastVisitTime: FromGecko(num(lastVisit)),
			URL:           str(placeURL),
			Title:         str(title),
			VisitCount:    count(visits),
			TypedCount:    count(typed),
			IsHidden:      num(hidden) != 0,
		}, nil
	})
}

func (geckoSource) Downloads(ctx context.Context, q Querier) ([]DownloadRecord, int, error) {
	return collect(ctx, q, geckoDownloadsQuery, func(row rowScanner) (DownloadRecord, error) {
		var (
			added, modified               sql.NullInt64
			title, dest, source, metaData sql.NullString
		)
		if err := row.Scan(&added, &modified, &title, &dest, &source, &metaData); err != nil {
			return DownloadRecord{}, err
		}

		rec := DownloadRecord{
			StartTime: FromGecko(num(added)),
			EndTime:   FromGecko(num(modified)),
			Filename:  str(title),
			Path:      str(dest),
			SourceURL: str(source),
		}
		if rec.Filename == "" {
			rec.Filename = fileURIBase(rec.Path)
		}
		if metaData.Valid && gjson.Valid(metaData.String) {
			applyGeckoMetaData(&rec, metaData.String)
		}
		return rec, nil
	})
}

// applyGeckoMetaData folds the downloads/metaData annotation into rec.
// endTime is in milliseconds.
func applyGeckoMetaData(rec *DownloadRecord, raw string) {
	meta := gjson.Parse(raw)
	if end := meta.Get("endTime"); end.Exists() && end.Int() > 0 {
		rec.EndTime = FromGecko(end.Int() * 1000)
	}
	if size := meta.Get("fileSize"); size.Exists() && size.Int() > 0 {
		rec.TotalBytes = size.Int()
		if meta.Get("state").Int() == geckoDownloadFinished {
			rec.ReceivedBytes = size.Int()
		}
	}
}

// fileURIBase returns the file name of a file:// URI, or of a plain path.
func fileURIBase(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Path == "" {
		return baseName(raw)
	}
	return baseName(u.Path)
}

func (geckoSource) Visits(ctx context.Context, q Querier) ([]VisitRecord, int, error) {
	return collect(ctx, q, geckoVisitsQuery, func(row rowScanner) (VisitRecord, error) {
		var (
			visitDate, visitType              sql.NullInt64
			placeURL, title, refURL, refTitle sql.NullString
		)
		if err := row.Scan(&visitDate, &placeURL, &title, &visitType, &refURL, &refTitle); err != nil {
			return VisitRecord{}, err
		}
		return VisitRecord{
			VisitTime:     FromGecko(num(visitDate)),
			URL:           str(placeURL),
			Title:         str(title),
			Transition:    geckoTransition(visitType),
			ReferrerURL:   str(refURL),
			ReferrerTitle: str(refTitle),
			SegmentName:   geckoSegment,
		}, nil
	})
}

func (geckoSource) SearchTerms(context.Context, Querier) ([]SearchTermRecord, int, error) {
	return nil, 0, ErrUnsupported
}
