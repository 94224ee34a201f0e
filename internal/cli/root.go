// Package cli implements the numgen command line tool: number allocation and
// counter administration against a local SQLite database.
package cli

import (
	"context"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"transdoc/pkg/config"
	"transdoc/pkg/logger"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	DB         string
	Format     string // "json" | "text"
	Verbose    bool
	HomeMarket string
	MaxBatch   int
	MaxRetries int
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command. Flag defaults come from cfg.
func NewRootCommand(cfg *config.Config) (*cobra.Command, *RootOptions) {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "numgen",
		Short: "Allocate CRT and MIC/DTA document numbers",
		Long: `numgen allocates customs document numbers for carriers kept in a local
SQLite database, and administers their sequence counters.

Numbers are <origin><complementary code><5-digit sequence>, e.g. BR602300042.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return setupLogging(opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.DB, "db", cfg.SQLite.Path, "path to the SQLite database")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.HomeMarket, "home-market", cfg.Numbering.HomeMarket, "country whose licenses carry the 4-digit block")
	cmd.PersistentFlags().IntVar(&opts.MaxBatch, "max-batch", cfg.Numbering.MaxBatch, "largest quantity per allocation")
	cmd.PersistentFlags().IntVar(&opts.MaxRetries, "max-retries", cfg.Numbering.MaxRetries, "retries when the database is busy")

	cmd.AddCommand(NewAllocateCommand(opts))
	cmd.AddCommand(NewCountriesCommand(opts))
	cmd.AddCommand(NewCarriersCommand(opts))
	cmd.AddCommand(NewLicensesCommand(opts))
	cmd.AddCommand(NewSequenceCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))

	return cmd, opts
}

// Run executes the tool with args and returns the process exit code. Errors
// are written to stderr in the selected format.
func Run(ctx context.Context, cfg *config.Config, args []string, stdout, stderr io.Writer) int {
	cmd, opts := NewRootCommand(cfg)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	f := &OutputFormatter{Format: opts.Format, Writer: stderr, Verbose: opts.Verbose}
	if f.Format != "json" {
		f.Format = "text"
	}
	code, message, details := describeError(err)
	_ = f.Error(code, message, details)
	return GetExitCode(err)
}

func setupLogging(opts *RootOptions) error {
	if !opts.Verbose {
		logger.SetDefault(logger.Nop())
		return nil
	}
	log, err := logger.New(logger.Config{
		Level:       "debug",
		Development: true,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	logger.SetDefault(log)
	return nil
}
