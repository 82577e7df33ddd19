package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/runnerr0/histview/internal/report"
)

const reportSuffix = ".report.db"

// exportReport is replaced in tests.
var exportReport = report.Export

// exportResult is the outcome of exporting one artifact.
type exportResult struct {
	Path    string          `json:"path"`
	Report  string          `json:"report"`
	Summary *report.Summary `json:"summary,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Execute implements the go-flags Commander interface for ExportCommand.
func (c *ExportCommand) Execute(args []string) error {
	cfg, err := setup(c.globals)
	if err != nil {
		return err
	}
	return c.executeWithConfig(context.Background(), cfg.Storage.Driver, cfg.Export.Concurrency)
}

// executeWithConfig exports every artifact with the given driver and
// parallelism (for testing).
func (c *ExportCommand) executeWithConfig(ctx context.Context, driver string, concurrency int) error {
	if c.Out == "" {
		return fmt.Errorf("--out is required")
	}
	if err := os.MkdirAll(c.Out, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	targets := reportPaths(c.Out, c.Args.Paths)
	results := make([]exportResult, len(c.Args.Paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(concurrency, 1))

	for i, path := range c.Args.Paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = c.exportOne(gctx, path, targets[i], driver)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
	} else {
		printExportHuman(results)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d exports failed", failed, len(results))
	}
	return nil
}

func (c *ExportCommand) exportOne(ctx context.Context, path, target, driver string) exportResult {
	res := exportResult{Path: path, Report: target}

	eng, err := openArtifact(ctx, path, driver)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer eng.Close()

	if c.Force {
		if err := removeReport(target); err != nil {
			res.Error = err.Error()
			return res
		}
	}

	w, err := report.Create(ctx, target)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	defer w.Close()

	sum, err := exportReport(ctx, eng, w)
	if err != nil {
		res.Error = err.Error()
		// A partial report would block the next run without --force.
		w.Close()
		if rmErr := removeReport(target); rmErr != nil {
			slog.Warn("partial report left behind", "report", target, "error", rmErr)
		}
		return res
	}
	res.Summary = sum

	slog.Debug("artifact exported", "path", path, "report", target, "family", eng.Family())
	return res
}

// reportPaths maps each artifact to <out>/<base>.report.db. Repeated base
// names get a numeric suffix so no two artifacts share a report.
func reportPaths(out string, paths []string) []string {
	seen := make(map[string]int, len(paths))
	targets := make([]string, len(paths))
	for i, p := range paths {
		base := filepath.Base(p)
		base = strings.TrimSuffix(base, filepath.Ext(base))
		if base == "" || base == "." || base == string(filepath.Separator) {
			base = "artifact"
		}

		seen[base]++
		if n := seen[base]; n > 1 {
			base = fmt.Sprintf("%s-%d", base, n)
		}
		targets[i] = filepath.Join(out, base+reportSuffix)
	}
	return targets
}

// removeReport deletes a report database and its WAL side files.
func removeReport(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

func printExportHuman(results []exportResult) {
	for _, r := range results {
		if r.Error != "" {
			fmt.Printf("%s: error: %s\n", r.Path, r.Error)
			continue
		}
		s := r.Summary
		fmt.Printf("%s → %s\n", r.Path, r.Report)
		fmt.Printf("   %s · %s history · %s downloads · %s visits · %s search terms\n",
			s.Meta[report.MetaFamily],
			formatNumber(s.History), formatNumber(s.Downloads),
			formatNumber(s.Visits), formatNumber(s.SearchTerms))
	}
}
