package main

import (
	"errors"
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"

	"github.com/runnerr0/histview/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		// go-flags has already printed its own parse errors.
		var flagsErr *goflags.Error
		if !errors.As(err, &flagsErr) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
