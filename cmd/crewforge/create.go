package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/m-mizutani/crewforge"
	"github.com/urfave/cli/v3"
)

func createCommand() *cli.Command {
	flags := append(providerFlags(),
		&cli.FloatFlag{
			Name:    "temperature",
			Value:   0.7,
			Sources: cli.EnvVars("CREWFORGE_TEMPERATURE"),
			Usage:   "Sampling temperature between 0 and 1",
		},
		&cli.BoolFlag{
			Name:  "debug",
			Usage: "Print the full flow snapshot instead of the plan",
		},
	)

	return &cli.Command{
		Name:      "create",
		Usage:     "Generate a crew plan for a task description",
		ArgsUsage: "<task description>",
		Flags:     flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			task := cmd.Args().First()
			if task == "" {
				return fmt.Errorf("task description is required")
			}

			logger, err := newLogger(cmd)
			if err != nil {
				return err
			}

			flow, err := newFlow(ctx, cmd, logger)
			if err != nil {
				return err
			}

			config := crewforge.DefaultGenerationConfig()
			if model := cmd.String("model"); model != "" {
				config.Model = model
			}
			config.Temperature = cmd.Float("temperature")

			var output any
			if cmd.Bool("debug") {
				output, err = flow.RunDebug(ctx, task, config)
			} else {
				output, err = flow.Run(ctx, task, config)
			}
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			return encoder.Encode(output)
		},
	}
}
