package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/infracollect/whichworkspace/internal/runner"
)

var filterCommand = &cli.Command{
	Name:  "filter",
	Usage: "Fetch the workspaces of the organization and keep those matching the query",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "Do not echo the result on stdout",
		},
	},
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		settingsFilename := command.String("config")
		resolved, err := runner.LoadSettings(afero.NewOsFs(), settingsFilename, command.StringSlice("allowed-env"), time.Now())
		if err != nil {
			return formatValidationError(err)
		}

		if err := applySettingsLevel(ctx, command.IsSet("log-level") || command.Bool("debug"), resolved.Settings.Log); err != nil {
			return err
		}

		logger = logger.With(zap.String("org", resolved.Settings.Org))
		logger.Debug("settings loaded", zap.String("settings_filename", settingsFilename), zap.String("output", resolved.Settings.Output))

		opts := []runner.Option{runner.WithHeaders(map[string]string{"User-Agent": userAgent()})}
		if !command.Bool("quiet") {
			opts = append(opts, runner.WithStdout(os.Stdout))
		}

		r, err := runner.New(ctx, logger.Named("runner"), resolved, opts...)
		if err != nil {
			return fmt.Errorf("failed to create runner: %w", err)
		}

		result, err := r.Run(ctx)
		if err != nil {
			return fmt.Errorf("failed to filter workspaces: %w", err)
		}

		logger.Info("wrote result", zap.String("output", resolved.Settings.Output), zap.Int("workspaces", len(result.Result.Workspaces)))
		return nil
	},
}
