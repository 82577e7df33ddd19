package cli

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/runnerr0/histview/internal/config"
	"github.com/runnerr0/histview/internal/server"
)

// Execute implements the go-flags Commander interface for ServeCommand.
func (c *ServeCommand) Execute(args []string) error {
	cfg, err := setup(c.globals)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(c.serverConfig(cfg),
		server.WithDriver(cfg.Storage.Driver),
		server.WithLogger(slog.Default()),
	)
	if err != nil {
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			slog.Warn("closing server", "error", err)
		}
	}()

	slog.Info("starting histview", "version", c.version, "driver", cfg.Storage.Driver)
	return srv.ListenAndServe(ctx)
}

// serverConfig applies command-line overrides to the server section.
func (c *ServeCommand) serverConfig(cfg *config.Config) config.ServerConfig {
	sc := cfg.Server
	if c.Host != "" {
		sc.Host = c.Host
	}
	if c.Port != 0 {
		sc.Port = c.Port
	}
	if c.UploadDir != "" {
		if dir, err := config.ExpandPath(c.UploadDir); err == nil {
			sc.UploadDir = dir
		} else {
			sc.UploadDir = c.UploadDir
		}
	}
	return sc
}
