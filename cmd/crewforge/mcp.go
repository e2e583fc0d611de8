package main

import (
	"context"

	mcpserver "github.com/m-mizutani/crewforge/mcp"
	"github.com/urfave/cli/v3"
)

const version = "0.1.0"

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve crew plan generation as an MCP stdio server",
		Flags: providerFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}

			flow, err := newFlow(ctx, cmd, logger)
			if err != nil {
				return err
			}

			return mcpserver.New(flow, version).ServeStdio()
		},
	}
}
