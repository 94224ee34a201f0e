package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"transdoc/internal/core/numerator"
	"transdoc/internal/domain/numbering"
)

// SequenceOptions holds flags shared by the sequence subcommands.
type SequenceOptions struct {
	*RootOptions
	Kind    string
	Carrier string
	Last    int64
}

// NewSequenceCommand creates the sequence command group.
func NewSequenceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SequenceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sequence",
		Short: "Inspect or rebase a carrier's sequence counter",
	}
	cmd.PersistentFlags().StringVarP(&opts.Kind, "kind", "k", "CRT", "document kind (CRT|MIC)")
	cmd.PersistentFlags().StringVarP(&opts.Carrier, "carrier", "c", "", "carrier id or registration number")
	_ = cmd.MarkPersistentFlagRequired("carrier")

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the last allocated value and the next one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSequence(cmd, opts, false)
		},
	}

	rebase := &cobra.Command{
		Use:   "rebase",
		Short: "Raise the counter to --last; counters are never lowered",
		Long: `Raise the counter so that the next allocated value is --last + 1.

Used when a carrier moves from another numbering system. A value lower than
the current counter leaves it unchanged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSequence(cmd, opts, true)
		},
	}
	rebase.Flags().Int64Var(&opts.Last, "last", 0, "last value already used by the carrier")
	_ = rebase.MarkFlagRequired("last")

	cmd.AddCommand(show, rebase)
	return cmd
}

func runSequence(cmd *cobra.Command, opts *SequenceOptions, rebase bool) error {
	kind, err := numerator.ParseKind(opts.Kind)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --kind", err)
	}

	e, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	c, err := e.carrier(ctx, opts.Carrier)
	if err != nil {
		return err
	}

	var state *numbering.SequenceState
	if rebase {
		state, err = e.numbers.Rebase(ctx, kind, c.ID, opts.Last)
	} else {
		state, err = e.numbers.Sequence(ctx, kind, c.ID)
	}
	if err != nil {
		return err
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Success(state, func(w io.Writer) {
		last := "-"
		if state.Started {
			last = fmt.Sprint(state.Last)
		}
		fmt.Fprintln(w, "KIND\tCARRIER\tLAST\tNEXT")
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", kind.Label(), c.Name, last, state.Next)
	})
}
