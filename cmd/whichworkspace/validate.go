package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/infracollect/whichworkspace/internal/runner"
)

var validateCommand = &cli.Command{
	Name:  "validate",
	Usage: "Validate the settings without calling the API",
	Action: func(ctx context.Context, command *cli.Command) error {
		logger := getLogger(ctx)

		settingsFilename := command.String("config")
		logger = logger.With(zap.String("settings_filename", settingsFilename))
		logger.Debug("validating settings")

		resolved, err := runner.LoadSettings(afero.NewOsFs(), settingsFilename, command.StringSlice("allowed-env"), time.Now())
		if err != nil {
			fmt.Println(formatValidationError(err))
			return fmt.Errorf("settings are invalid")
		}

		fmt.Printf("✓ Settings are valid (org %s, %d rule(s), output %s)\n", resolved.Settings.Org, len(resolved.Rules), resolved.Settings.Output)
		return nil
	},
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("settings have %d validation error(s):", len(validationErrs)))
		for _, fe := range validationErrs {
			sb.WriteString(fmt.Sprintf("\n  • %s: failed '%s' validation", fe.Namespace(), fe.Tag()))
			if fe.Param() != "" {
				sb.WriteString(fmt.Sprintf(" (param: %s)", fe.Param()))
			}
		}
		return errors.New(sb.String())
	}
	return err
}
