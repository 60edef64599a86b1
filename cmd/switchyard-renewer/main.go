// Package main provides the Switchyard subscription renewal service.
package main

import (
	"context"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"

	"github.com/switchyardhq/switchyard/pkg/cmd"
	"github.com/switchyardhq/switchyard/pkg/log"
)

func main() {
	command := &cli.Command{
		Name:                  "switchyard-renewer",
		Usage:                 "Keep provider-side trigger subscriptions alive",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "Database connection URL for persistence",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.DurationFlag{
				Name:    "renewal-interval",
				Usage:   "How often to sweep for expiring subscriptions",
				Value:   time.Hour,
				Sources: cli.EnvVars("RENEWAL_INTERVAL"),
			},
			&cli.DurationFlag{
				Name:    "renewal-window",
				Usage:   "Renew subscriptions expiring within this window",
				Value:   24 * time.Hour,
				Sources: cli.EnvVars("RENEWAL_WINDOW"),
			},
			&cli.StringFlag{
				Name:    "redis-url",
				Usage:   "Redis URL for the pass lock; empty runs without locking",
				Sources: cli.EnvVars("REDIS_URL"),
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

			logger := log.WithModule("renewer")
			logger.InfoContext(ctx, "Initializing Switchyard renewer")

			registry, err := cmd.NewRegistry(logger)
			if err != nil {
				return err
			}

			persistence, err := cmd.NewPersistence(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if err := persistence.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			renewer := NewRenewer(
				logger,
				persistence,
				registry,
				command.String("redis-url"),
				command.Duration("renewal-interval"),
				command.Duration("renewal-window"),
			)

			return renewer.Start(ctx)
		},
	}

	if err := command.Run(context.Background(), os.Args); err != nil {
		panic(err)
	}
}
