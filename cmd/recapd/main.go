package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/recapd/recapd/pkg/artifacts"
	"github.com/recapd/recapd/pkg/cmd"
	"github.com/recapd/recapd/pkg/log"
	"github.com/recapd/recapd/pkg/providers/summarization"
	"github.com/recapd/recapd/pkg/providers/transcription"
)

const defaultPort = 9090

func main() {
	logger := log.WithModule("api")

	command := &cli.Command{
		Name:                  "recapd",
		Usage:                 "Turn recorded audio into transcripts, summaries and action items",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Database connection URL (file://, postgres://, redis://)",
				Value:   "file://./data",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "artifacts-dir",
				Usage:   "Directory where uploaded audio is stored",
				Value:   "./artifacts",
				Sources: cli.EnvVars("ARTIFACTS_DIR"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus provider (gochannel, kafka)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS"),
			},
			&cli.StringFlag{
				Name:     "transcriber-url",
				Usage:    "Speech-to-text provider endpoint",
				Required: true,
				Sources:  cli.EnvVars("TRANSCRIBER_URL"),
			},
			&cli.StringFlag{
				Name:    "transcriber-api-key",
				Usage:   "Speech-to-text provider API key",
				Sources: cli.EnvVars("TRANSCRIBER_API_KEY"),
			},
			&cli.StringFlag{
				Name:     "summarizer-url",
				Usage:    "Summarization provider endpoint",
				Required: true,
				Sources:  cli.EnvVars("SUMMARIZER_URL"),
			},
			&cli.StringFlag{
				Name:    "summarizer-api-key",
				Usage:   "Summarization provider API key",
				Sources: cli.EnvVars("SUMMARIZER_API_KEY"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing recapd API",
				"backend", cmd.Describe(command.String("database-url")))

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus, err := cmd.NewEventBus(command.String("event-bus"), logger)
			if err != nil {
				return err
			}

			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			store := artifacts.NewFileStore(command.String("artifacts-dir"))

			transcriber := transcription.NewRetrying(
				transcription.NewHTTPClient(
					command.String("transcriber-url"),
					command.String("transcriber-api-key"),
				),
				logger,
			)

			summarizer := summarization.NewRetrying(
				summarization.NewHTTPClient(
					command.String("summarizer-url"),
					command.String("summarizer-api-key"),
				),
				logger,
			)

			api := NewAPI(
				logger,
				persistence,
				store,
				eventBus,
				transcriber,
				summarizer,
			)

			if err := api.Start(command.Int("port")); err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)

				return err
			}

			return nil
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
