// Package cli defines the command-line interface for mandrel.
package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/forgecad/mandrel/pkg/logging"
)

// Options stores global CLI options shared between commands.
type Options struct {
	Tolerance float64
	LogLevel  logging.Level
}

// Execute builds the root command, runs it with the provided args and
// logger, and returns any error.
func Execute(args []string, logger *slog.Logger) error {
	if logger == nil {
		logger = logging.NewLogger(os.Stderr, logging.LevelInfo)
	}

	rootOpts := &Options{LogLevel: logging.LevelInfo}

	rootCmd := newRootCommand(rootOpts, logger)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}

// newRootCommand constructs the root cobra.Command with global flags and
// subcommands.
func newRootCommand(opts *Options, logger *slog.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mandrel",
		Short: "mandrel builds CAD feature trees from structured design intent",
		Long: "mandrel evaluates a Lisp design description into structured intent, " +
			"plans the feature construction order, resolves geometric references " +
			"and executes the sequence against a CAD kernel session.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := logging.ParseLevel(cmd.Flag("log-level").Value.String())
			opts.LogLevel = level
			logger = logging.NewLogger(os.Stderr, level)
			cmd.SetContext(context.WithValue(cmd.Context(), loggerKey{}, logger))
			logger.Debug("logger initialized", "level", level)
			return nil
		},
	}

	cmd.PersistentFlags().Float64Var(&opts.Tolerance, "tolerance", 0, "Continuity tolerance in mm (0 = default)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		newPlanCommand(opts),
		newRunCommand(opts),
	)

	return cmd
}

// loggerKey is a private context key used to store a logger in command
// contexts.
type loggerKey struct{}

// LoggerFromContext extracts a logger from the context or falls back to a
// default logger.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return logging.NewLogger(os.Stderr, logging.LevelInfo)
	}
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return logging.NewLogger(os.Stderr, logging.LevelInfo)
}
