// Package main provides the entry point for the application with CLI commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/docvault/cmd/app/commands"
)

const version = "1.0.0"

func main() {
	cmd := &cli.Command{
		Name:    "docvault",
		Usage:   "Zero-knowledge document vault",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:  "keyparams-init",
				Usage: "Bootstrap key derivation parameters for an account",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "account",
						Aliases:  []string{"a"},
						Required: true,
						Usage:    "Account identifier",
					},
					&cli.IntFlag{
						Name:    "iterations",
						Aliases: []string{"i"},
						Value:   0,
						Usage:   "PBKDF2 iteration count (0 uses the configured default)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunKeyparamsInit(
						cmd.String("account"),
						int(cmd.Int("iterations")),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:      "upload",
				Usage:     "Encrypt and store one or more files",
				ArgsUsage: "<file> [<file>...]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "account",
						Aliases:  []string{"a"},
						Required: true,
						Usage:    "Account identifier",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunUpload(
						ctx,
						cmd.String("account"),
						cmd.Args().Slice(),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "download",
				Usage: "Fetch and decrypt a stored document",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "account",
						Aliases:  []string{"a"},
						Required: true,
						Usage:    "Account identifier",
					},
					&cli.StringFlag{
						Name:     "id",
						Aliases:  []string{"i"},
						Required: true,
						Usage:    "Document ID (UUID)",
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Required: true,
						Usage:    "Output file path",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunDownload(
						ctx,
						cmd.String("account"),
						cmd.String("id"),
						cmd.String("output"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "preview",
				Usage: "Decrypt a document into a watermarked offscreen rendering",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "account",
						Aliases:  []string{"a"},
						Required: true,
						Usage:    "Account identifier",
					},
					&cli.StringFlag{
						Name:     "id",
						Aliases:  []string{"i"},
						Required: true,
						Usage:    "Document ID (UUID)",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Write the rendering to this path (PNG)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunPreview(
						ctx,
						cmd.String("account"),
						cmd.String("id"),
						cmd.String("output"),
						commands.DefaultIO(),
					)
				},
			},
			{
				Name:  "list",
				Usage: "List stored document records",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Value:   "text",
						Usage:   "Output format: 'text' or 'json'",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunList(ctx, cmd.String("format"), commands.DefaultIO())
				},
			},
			{
				Name:  "delete",
				Usage: "Delete a stored document",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "id",
						Aliases:  []string{"i"},
						Required: true,
						Usage:    "Document ID (UUID)",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunDelete(ctx, cmd.String("id"), commands.DefaultIO())
				},
			},
			{
				Name:  "unlock",
				Usage: "Verify the unlock secret and show session policy",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "account",
						Aliases:  []string{"a"},
						Required: true,
						Usage:    "Account identifier",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunUnlock(ctx, cmd.String("account"), commands.DefaultIO())
				},
			},
			{
				Name:  "rewrap",
				Usage: "Rotate the master key and re-wrap all document DEKs",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "account",
						Aliases:  []string{"a"},
						Required: true,
						Usage:    "Account identifier",
					},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunRewrap(ctx, cmd.String("account"), commands.DefaultIO())
				},
			},
			{
				Name:  "metrics-server",
				Usage: "Start the Prometheus metrics endpoint",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return commands.RunMetricsServer(ctx, version)
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.Any("error", err))
		os.Exit(1)
	}
}
