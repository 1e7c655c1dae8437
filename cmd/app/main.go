// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/rotorlabs/rotor/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "rotor",
		Usage:   "Secret lifecycle and rotation engine",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "server",
				Usage: "Start the HTTP server",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunServer(ctx, version)
				},
			},
			{
				Name:  "migrate",
				Usage: "Run database migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMigrations()
				},
			},
			{
				Name:  "create-role",
				Usage: "Create a new service role with policies",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Human-readable role name",
					},
					&cli.BoolFlag{
						Name:    "active",
						Aliases: []string{"a"},
						Value:   true,
						Usage:   "Whether the role can authenticate immediately",
					},
					&cli.StringFlag{
						Name:    "policies",
						Aliases: []string{"p"},
						Usage:   "JSON array of policy documents (omit for interactive mode)",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCreateRole(
						ctx,
						cmd.String("name"),
						cmd.Bool("active"),
						cmd.String("policies"),
						cmd.String("format"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "update-role",
				Usage: "Update an existing role's configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Aliases:  []string{"i"},
						Required: true,
						Usage:    "Role ID (UUID)",
					},
					&cli.StringFlag{
						Name:     "name",
						Aliases:  []string{"n"},
						Required: true,
						Usage:    "Human-readable role name",
					},
					&cli.BoolFlag{
						Name:    "active",
						Aliases: []string{"a"},
						Value:   true,
						Usage:   "Whether the role can authenticate",
					},
					&cli.StringFlag{
						Name:    "policies",
						Aliases: []string{"p"},
						Usage:   "JSON array of policy documents (omit for interactive mode)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunUpdateRole(
						ctx,
						cmd.String("id"),
						cmd.String("name"),
						cmd.Bool("active"),
						cmd.String("policies"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "rotate",
				Usage: "Rotate the credentials stored at one or more paths",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:     "path",
						Aliases:  []string{"p"},
						Required: true,
						Usage:    "Secret path to rotate (repeat for multiple paths)",
					},
					&cli.StringFlag{
						Name:     "class",
						Aliases:  []string{"c"},
						Required: true,
						Usage:    "Secret class selecting the target adapter (postgres, mysql, redis, signing-key)",
					},
					&cli.StringFlag{
						Name:  "requested-by",
						Value: "cli",
						Usage: "Identity recorded on the rotation attempt",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRotate(
						ctx,
						cmd.StringSlice("path"),
						cmd.String("class"),
						cmd.String("requested-by"),
						cmd.String("format"),
					)
				},
			},
			{
				Name:  "clean-expired-tokens",
				Usage: "Delete session tokens whose expiry has passed",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunCleanExpiredTokens(ctx, cmd.String("format"))
				},
			},
			{
				Name:  "verify-audit-logs",
				Usage: "Verify audit log signatures from a cutoff date onward",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "since",
						Aliases:  []string{"s"},
						Required: true,
						Usage:    "Cutoff date (YYYY-MM-DD or 'YYYY-MM-DD HH:MM:SS')",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunVerifyAuditLogs(ctx, cmd.String("since"), cmd.String("format"))
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
