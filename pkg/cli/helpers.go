/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/NVIDIA/patch-inventory/pkg/logging"
	"github.com/NVIDIA/patch-inventory/pkg/serializer"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitError    = 1
	ExitCanceled = 2
)

// parseOutputFormat extracts and validates the output format from CLI flags.
// Returns the validated format or an error if the format is unknown.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q, valid formats are: %v", outFormat, serializer.SupportedFormats())
	}
	return outFormat, nil
}

// logLevel returns debug when --debug is set. Otherwise LOG_LEVEL applies,
// then fallback.
func logLevel(cmd *cli.Command, fallback slog.Level) slog.Level {
	if cmd.Bool("debug") {
		return slog.LevelDebug
	}
	return logging.LevelFromEnv(fallback)
}

// ExitCode maps the error returned by the root command to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitCanceled
	default:
		return ExitError
	}
}
