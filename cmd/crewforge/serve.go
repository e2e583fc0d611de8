package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/crewforge/server"
	"github.com/m-mizutani/crewforge/storage"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	flags := append(providerFlags(),
		&cli.StringFlag{
			Name:    "addr",
			Value:   ":8088",
			Sources: cli.EnvVars("CREWFORGE_ADDR"),
			Usage:   "Server listen address",
		},
		&cli.StringFlag{
			Name:    "db",
			Sources: cli.EnvVars("CREWFORGE_DB"),
			Usage:   "SQLite database path for persisting crew plans (persistence disabled when empty)",
		},
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Start the crew plan HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}

			flow, err := newFlow(ctx, cmd, logger)
			if err != nil {
				return err
			}

			var store *storage.Store
			if path := cmd.String("db"); path != "" {
				store, err = storage.Open(path)
				if err != nil {
					return err
				}
				defer store.Close()
			}

			srv := server.New(flow, store, logger)

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.Start(cmd.String("addr"))
			}()
			logger.Info("server started", "addr", cmd.String("addr"))

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
