package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/runnerr0/histview/internal/config"
)

// configJSON is the --json shape of the config command.
type configJSON struct {
	Path    string         `json:"path"`
	Created bool           `json:"created"`
	Config  *config.Config `json:"config"`
}

// Execute implements the go-flags Commander interface for ConfigCommand.
func (c *ConfigCommand) Execute(args []string) error {
	path := config.DefaultConfigPath
	if c.globals != nil && c.globals.Config != "" {
		path = c.globals.Config
	}
	path, err := config.ExpandPath(path)
	if err != nil {
		return err
	}
	return c.executeAt(path)
}

// executeAt writes defaults to path when it is missing and prints the
// resulting configuration.
func (c *ConfigCommand) executeAt(path string) error {
	_, statErr := os.Stat(path)
	created := os.IsNotExist(statErr)

	cfg, err := config.LoadOrCreateAt(path)
	if err != nil {
		return err
	}

	if c.globals != nil && c.globals.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(configJSON{Path: path, Created: created, Config: cfg})
	}

	if created {
		fmt.Printf("Wrote default config to %s\n\n", path)
	} else {
		fmt.Printf("# %s\n", path)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	fmt.Print(string(data))
	return nil
}
