package report

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/runnerr0/histview/internal/artifact"
)

// Extractor is the read side of an export: an artifact.Engine or anything
// with the same operations.
type Extractor interface {
	Path() string
	Family() artifact.BrowserFamily
	History(ctx context.Context) (artifact.Result[artifact.HistoryRecord], error)
	Downloads(ctx context.Context) (artifact.Result[artifact.DownloadRecord], error)
	Visits(ctx context.Context) (artifact.Result[artifact.VisitRecord], error)
	SearchTerms(ctx context.Context) (artifact.Result[artifact.SearchTermRecord], error)
}

// nowFunc is replaced in tests.
var nowFunc = time.Now

// Export runs every extraction against src, in order, and writes the
// records, per-kind outcomes and source metadata to w. Extraction failures
// are recorded, not returned; only a missing artifact or a write error
// stops the export.
func Export(ctx context.Context, src Extractor, w Writer) (*Summary, error) {
	digest, size, err := hashFile(src.Path())
	if err != nil {
		return nil, fmt.Errorf("hash artifact: %w", err)
	}

	meta := [][2]string{
		{MetaSourcePath, src.Path()},
		{MetaFamily, string(src.Family())},
		{MetaSHA256, digest},
		{MetaSourceSize, strconv.FormatInt(size, 10)},
	}
	for _, kv := range meta {
		if err := w.WriteMeta(ctx, kv[0], kv[1]); err != nil {
			return nil, err
		}
	}

	history, err := src.History(ctx)
	if err != nil {
		return nil, err
	}
	if err := writeResult(ctx, w, KindHistory, history, w.WriteHistory); err != nil {
		return nil, err
	}

	downloads, err := src.Downloads(ctx)
	if err != nil {
		return nil, err
	}
	if err := writeResult(ctx, w, KindDownloads, downloads, w.WriteDownloads); err != nil {
		return nil, err
	}

	visits, err := src.Visits(ctx)
	if err != nil {
		return nil, err
	}
	if err := writeResult(ctx, w, KindVisits, visits, w.WriteVisits); err != nil {
		return nil, err
	}

	terms, err := src.SearchTerms(ctx)
	if err != nil {
		return nil, err
	}
	if err := writeResult(ctx, w, KindSearchTerms, terms, w.WriteSearchTerms); err != nil {
		return nil, err
	}

	if err := w.WriteMeta(ctx, MetaExportedAt, nowFunc().UTC().Format(time.RFC3339)); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "export complete", "path", src.Path(), "family", src.Family())
	return w.Summary(ctx)
}

func writeResult[T any](ctx context.Context, w Writer, kind string, res artifact.Result[T], write func(context.Context, []T) error) error {
	ext := Extraction{
		Kind:    kind,
		Status:  string(res.Status),
		Records: len(res.Records),
		Dropped: res.Dropped,
	}
	if res.Err != nil {
		ext.Error = res.Err.Error()
	}

	if err := write(ctx, res.Records); err != nil {
		return fmt.Errorf("write %s: %w", kind, err)
	}
	return w.WriteExtraction(ctx, ext)
}

// hashFile returns the hex SHA-256 and size of the file at path.
func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
