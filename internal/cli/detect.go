package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/runnerr0/histview/internal/artifact"
)

const detectConcurrency = 4

// detection is the outcome of classifying one artifact.
type detection struct {
	Path        string   `json:"path"`
	BrowserType string   `json:"browser_type"`
	SizeBytes   int64    `json:"size_bytes"`
	Tables      []string `json:"tables"`
	Error       string   `json:"error,omitempty"`
}

// Execute implements the go-flags Commander interface for DetectCommand.
func (c *DetectCommand) Execute(args []string) error {
	cfg, err := setup(c.globals)
	if err != nil {
		return err
	}
	return c.executeWithDriver(context.Background(), cfg.Storage.Driver)
}

// executeWithDriver classifies every path with the given driver (for testing).
func (c *DetectCommand) executeWithDriver(ctx context.Context, driver string) error {
	results := detectAll(ctx, c.Args.Paths, driver)

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, d := range results {
		if d.Error != "" {
			fmt.Printf("%s: error: %s\n", d.Path, d.Error)
			continue
		}
		fmt.Printf("%s: %s (%s, %d %s)\n",
			d.Path, artifact.BrowserFamily(d.BrowserType).Title(),
			formatBytes(d.SizeBytes), len(d.Tables), plural(len(d.Tables), "table", "tables"))
	}
	return nil
}

// detectAll opens one Engine per path, at most detectConcurrency at a time.
// Results keep the order of paths.
func detectAll(ctx context.Context, paths []string, driver string) []detection {
	results := make([]detection, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(detectConcurrency)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			results[i] = detectOne(gctx, path, driver)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func detectOne(ctx context.Context, path, driver string) detection {
	d := detection{Path: path, BrowserType: string(artifact.Unknown), Tables: []string{}}

	eng, err := openArtifact(ctx, path, driver)
	if err != nil {
		d.Error = err.Error()
		return d
	}
	defer eng.Close()

	if info, err := os.Stat(path); err == nil {
		d.SizeBytes = info.Size()
	}
	d.BrowserType = string(eng.Family())
	if tables := eng.Tables(); tables != nil {
		d.Tables = tables
	}
	return d
}
