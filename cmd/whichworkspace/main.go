package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/urfave/cli/v3"

	"github.com/infracollect/whichworkspace/internal/config"
)

var loggerDeferFunc func() error

const defaultLogLevel = "warn"

func main() {
	app := &cli.Command{
		Name:  "whichworkspace",
		Usage: "Find the Terraform Cloud workspaces whose variables match a query",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   defaultLogLevel,
				Usage:   "Log Level (debug, info, warn, error, fatal). Overrides the log setting",
				Action: func(ctx context.Context, command *cli.Command, s string) error {
					_, err := zapcore.ParseLevel(s)
					if err != nil {
						return fmt.Errorf("invalid log level %s: %w", s, err)
					}
					return nil
				},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   config.DefaultSettingsFile,
				Usage:   "Settings file, ignored when missing",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Value: config.DefaultEnvFile,
				Usage: "Dotenv file loaded before the settings, ignored when missing",
			},
			&cli.StringSliceFlag{
				Name:  "allowed-env",
				Usage: "Environment variables allowed in ${VAR} templates (can be repeated)",
			},
		},
		Commands: []*cli.Command{
			filterCommand,
			validateCommand,
			versionCommand,
		},
		Before: func(ctx context.Context, command *cli.Command) (context.Context, error) {
			if err := config.LoadEnvFile(command.String("env-file")); err != nil {
				return nil, err
			}

			interactive := isInteractiveEnvironment()
			debug := command.Bool("debug")

			logLevel := command.String("log-level")
			if debug && !command.IsSet("log-level") {
				logLevel = "debug"
			}

			logger, level, err := createLogger(debug || interactive, logLevel)
			if err != nil {
				return nil, err
			}

			logger.Debug("logger created", zap.String("log_level", logLevel), zap.Bool("interactive", interactive))

			loggerDeferFunc = func() error {
				return logger.Sync()
			}

			return withLogger(ctx, logger, level), nil
		},
		ExitErrHandler: func(ctx context.Context, command *cli.Command, err error) {
			if err == nil {
				return
			}

			if logger := tryLogger(ctx); logger != nil {
				logger.Fatal("failed to run application", zap.Error(err))
			} else {
				log.Fatal(fmt.Errorf("failed to run application: %w", err))
			}
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	defer func() {
		if loggerDeferFunc != nil {
			_ = loggerDeferFunc()
		}
	}()

	_ = app.Run(ctx, os.Args)
}
