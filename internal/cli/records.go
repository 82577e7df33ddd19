package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/runnerr0/histview/internal/artifact"
)

// recordKind names the record family a RecordsCommand prints.
type recordKind string

const (
	kindHistory     recordKind = "history"
	kindDownloads   recordKind = "downloads"
	kindVisits      recordKind = "visits"
	kindSearchTerms recordKind = "search terms"
)

// recordsJSON mirrors the HTTP record endpoints.
type recordsJSON struct {
	Data        any    `json:"data"`
	BrowserType string `json:"browser_type"`
	Status      string `json:"status"`
	Dropped     int    `json:"dropped,omitempty"`
}

// Execute implements the go-flags Commander interface for RecordsCommand.
func (c *RecordsCommand) Execute(args []string) error {
	cfg, err := setup(c.globals)
	if err != nil {
		return err
	}

	ctx := context.Background()
	eng, err := openArtifact(ctx, c.Args.Path, cfg.Storage.Driver)
	if err != nil {
		return err
	}
	defer eng.Close()

	return c.executeWithEngine(ctx, eng)
}

// executeWithEngine prints records from an open Engine (for testing).
func (c *RecordsCommand) executeWithEngine(ctx context.Context, eng *artifact.Engine) error {
	switch c.kind {
	case kindHistory:
		res, err := eng.History(ctx)
		if err != nil {
			return err
		}
		return printRecords(c, res, printHistory)
	case kindDownloads:
		res, err := eng.Downloads(ctx)
		if err != nil {
			return err
		}
		return printRecords(c, res, printDownload)
	case kindVisits:
		res, err := eng.Visits(ctx)
		if err != nil {
			return err
		}
		return printRecords(c, res, printVisit)
	case kindSearchTerms:
		res, err := eng.SearchTerms(ctx)
		if err != nil {
			return err
		}
		return printRecords(c, res, printSearchTerm)
	default:
		return fmt.Errorf("unknown record kind %q", c.kind)
	}
}

func printRecords[T any](c *RecordsCommand, res artifact.Result[T], printOne func(int, T)) error {
	records := res.Records
	if c.Limit > 0 && len(records) > c.Limit {
		records = records[:c.Limit]
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(recordsJSON{
			Data:        records,
			BrowserType: string(res.Family),
			Status:      string(res.Status),
			Dropped:     res.Dropped,
		})
	}

	family := res.Family.Title()
	switch res.Status {
	case artifact.StatusUnsupported:
		fmt.Printf("%s artifacts do not record %s\n", family, c.kind)
		return nil
	case artifact.StatusFailed:
		fmt.Printf("Could not read %s from this %s artifact\n", c.kind, family)
		return nil
	}

	if len(records) == 0 {
		fmt.Printf("No %s found (%s)\n", c.kind, family)
		return nil
	}

	if len(records) < len(res.Records) {
		fmt.Printf("Showing %d of %d %s (%s)\n\n", len(records), len(res.Records), c.kind, family)
	} else {
		fmt.Printf("Found %d %s (%s)\n\n", len(records), c.kind, family)
	}

	for i, r := range records {
		printOne(i+1, r)
		if i < len(records)-1 {
			fmt.Println()
		}
	}

	if res.Dropped > 0 {
		fmt.Printf("\n%d unreadable %s skipped\n", res.Dropped, plural(res.Dropped, "row", "rows"))
	}
	return nil
}

func printHistory(n int, r artifact.HistoryRecord) {
	fmt.Printf("%d. %s\n", n, orUntitled(r.Title))
	fmt.Printf("   %s\n", r.URL)
	meta := []string{r.LastVisitTime.String(), fmt.Sprintf("%d visits", r.VisitCount)}
	if r.TypedCount > 0 {
		meta = append(meta, fmt.Sprintf("%d typed", r.TypedCount))
	}
	if r.IsHidden {
		meta = append(meta, "hidden")
	}
	fmt.Printf("   %s\n", strings.Join(meta, " · "))
}

func printDownload(n int, r artifact.DownloadRecord) {
	fmt.Printf("%d. %s\n", n, orUntitled(r.Filename))
	if r.Path != "" {
		fmt.Printf("   %s\n", r.Path)
	}
	if r.SourceURL != "" {
		fmt.Printf("   from %s\n", r.SourceURL)
	}
	fmt.Printf("   %s → %s · %s of %s\n",
		r.StartTime, r.EndTime, formatBytes(r.ReceivedBytes), formatBytes(r.TotalBytes))
}

func printVisit(n int, r artifact.VisitRecord) {
	fmt.Printf("%d. %s\n", n, orUntitled(r.Title))
	fmt.Printf("   %s\n", r.URL)
	if r.ReferrerURL != "" {
		fmt.Printf("   via %s\n", r.ReferrerURL)
	}
	fmt.Printf("   %s · %s\n", r.VisitTime, r.Transition)
}

func printSearchTerm(n int, r artifact.SearchTermRecord) {
	fmt.Printf("%d. %q\n", n, r.Term)
	fmt.Printf("   %s\n", r.SearchURL)
	fmt.Printf("   %s · %d visits\n", r.LastVisitTime, r.VisitCount)
}

func orUntitled(s string) string {
	if s == "" {
		return "(untitled)"
	}
	return s
}
