package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/m-mizutani/crewforge"
	"github.com/m-mizutani/crewforge/executor"
	"github.com/m-mizutani/crewforge/llm"
	"github.com/m-mizutani/crewforge/llm/claude"
	"github.com/m-mizutani/crewforge/llm/gemini"
	"github.com/m-mizutani/crewforge/llm/openai"
	"github.com/urfave/cli/v3"
)

func providerFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "provider",
			Value:   "openai",
			Sources: cli.EnvVars("CREWFORGE_PROVIDER"),
			Usage:   "LLM provider (claude, openai, gemini)",
		},
		&cli.StringFlag{
			Name:    "model",
			Sources: cli.EnvVars("CREWFORGE_MODEL"),
			Usage:   "Model name (provider default when empty)",
		},
		&cli.StringFlag{
			Name:    "anthropic-api-key",
			Sources: cli.EnvVars("ANTHROPIC_API_KEY"),
			Usage:   "API key for the claude provider",
		},
		&cli.StringFlag{
			Name:    "openai-api-key",
			Sources: cli.EnvVars("OPENAI_API_KEY"),
			Usage:   "API key for the openai provider",
		},
		&cli.StringFlag{
			Name:    "gcp-project",
			Sources: cli.EnvVars("CREWFORGE_GCP_PROJECT"),
			Usage:   "Google Cloud project ID for the gemini provider",
		},
		&cli.StringFlag{
			Name:    "gcp-location",
			Value:   "us-central1",
			Sources: cli.EnvVars("CREWFORGE_GCP_LOCATION"),
			Usage:   "Google Cloud location for the gemini provider",
		},
		&cli.IntFlag{
			Name:    "candidates",
			Value:   executor.DefaultCandidateCount,
			Sources: cli.EnvVars("CREWFORGE_CANDIDATES"),
			Usage:   "Number of candidate plans to generate per planning round",
		},
		&cli.StringFlag{
			Name:    "log-level",
			Value:   "info",
			Sources: cli.EnvVars("CREWFORGE_LOG_LEVEL"),
			Usage:   "Log level (debug, info, warn, error)",
		},
	}
}

func newLLMClient(ctx context.Context, cmd *cli.Command) (llm.Client, error) {
	model := cmd.String("model")

	switch cmd.String("provider") {
	case "claude":
		var options []claude.Option
		if model != "" {
			options = append(options, claude.WithModel(model))
		}
		return claude.New(ctx, cmd.String("anthropic-api-key"), options...)

	case "openai":
		var options []openai.Option
		if model != "" {
			options = append(options, openai.WithModel(model))
		}
		return openai.New(ctx, cmd.String("openai-api-key"), options...)

	case "gemini":
		var options []gemini.Option
		if model != "" {
			options = append(options, gemini.WithModel(model))
		}
		return gemini.New(ctx, cmd.String("gcp-project"), cmd.String("gcp-location"), options...)

	default:
		return nil, fmt.Errorf("unknown provider: %s", cmd.String("provider"))
	}
}

func newLogger(cmd *cli.Command) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cmd.String("log-level"))); err != nil {
		return nil, fmt.Errorf("invalid log level: %s", cmd.String("log-level"))
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})), nil
}

func newFlow(ctx context.Context, cmd *cli.Command, logger *slog.Logger) (*crewforge.Flow, error) {
	client, err := newLLMClient(ctx, cmd)
	if err != nil {
		return nil, err
	}

	executors := executor.New(client,
		executor.WithCandidateCount(cmd.Int("candidates")),
	)
	return crewforge.New(executors, crewforge.WithLogger(logger)), nil
}
