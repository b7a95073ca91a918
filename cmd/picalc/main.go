// Command picalc computes the decimals of π with parallel series
// summation and checks them against a reference expansion.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/rs/zerolog/log"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/agbru/picalc/internal/app"
	apperrors "github.com/agbru/picalc/internal/errors"
)

func main() {
	os.Exit(run(os.Args))
}

func run(args []string) int {
	if app.HasVersionFlag(args[1:]) {
		if slices.Contains(args[1:], "-json") || slices.Contains(args[1:], "--json") {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(app.GetVersionInfo()); err != nil {
				return apperrors.ExitErrorGeneric
			}
			return apperrors.ExitSuccess
		}
		app.PrintVersion(os.Stdout)
		return apperrors.ExitSuccess
	}

	application, err := app.New(args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			return apperrors.ExitSuccess
		}
		return apperrors.ExitCode(err)
	}

	// Container CPU quotas bound the worker count of a run.
	undo, err := maxprocs.Set(maxprocs.Logger(func(format string, a ...any) {
		log.Debug().Str("component", "maxprocs").Msg(fmt.Sprintf(format, a...))
	}))
	if err != nil {
		log.Warn().Err(err).Msg("GOMAXPROCS left unchanged")
	}
	defer undo()

	return application.Run(context.Background(), os.Stdout)
}
