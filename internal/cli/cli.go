package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Detect      *DetectCommand
	History     *RecordsCommand
	Downloads   *RecordsCommand
	Visits      *RecordsCommand
	SearchTerms *RecordsCommand
	Export      *ExportCommand
	Serve       *ServeCommand
	Config      *ConfigCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "histview"
	parser.LongDescription = "Classify browser history databases and read their history, downloads, visits and search terms."

	cmds := &commands{
		Detect:      &DetectCommand{globals: &globals, version: version},
		History:     &RecordsCommand{kind: kindHistory, globals: &globals, version: version},
		Downloads:   &RecordsCommand{kind: kindDownloads, globals: &globals, version: version},
		Visits:      &RecordsCommand{kind: kindVisits, globals: &globals, version: version},
		SearchTerms: &RecordsCommand{kind: kindSearchTerms, globals: &globals, version: version},
		Export:      &ExportCommand{globals: &globals, version: version},
		Serve:       &ServeCommand{globals: &globals, version: version},
		Config:      &ConfigCommand{globals: &globals, version: version},
	}

	parser.AddCommand("detect", "Identify the browser behind artifacts", "Classify each artifact as Chromium, Gecko, WebKit or unknown from its table inventory.", cmds.Detect)
	parser.AddCommand("history", "Print browsing history", "Print one record per known URL, newest first.", cmds.History)
	parser.AddCommand("downloads", "Print downloads", "Print download records, newest first.", cmds.Downloads)
	parser.AddCommand("visits", "Print recent visits", "Print up to 1000 visits with referrers resolved, newest first.", cmds.Visits)
	parser.AddCommand("search-terms", "Print keyword searches", "Print keyword searches recorded by the browser, newest first.", cmds.SearchTerms)
	parser.AddCommand("export", "Write report databases", "Write every record family of each artifact into a report database under --out.", cmds.Export)
	parser.AddCommand("serve", "Start the upload service", "Start the local HTTP service that accepts artifact uploads and serves their records as JSON.", cmds.Serve)
	parser.AddCommand("config", "Show configuration", "Print the configuration in effect, writing a default config file first when none exists.", cmds.Config)

	return parser, &globals, cmds
}

// Run is the main entry point for the histview CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("histview %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
