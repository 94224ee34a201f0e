package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"transdoc/internal/core/numerator"
	"transdoc/internal/domain/numbering"
)

// AllocateOptions holds flags for the allocate command.
type AllocateOptions struct {
	*RootOptions
	Kind        string
	Carrier     string
	Origin      string
	Destination string
	Quantity    int
}

// NewAllocateCommand creates the allocate command.
func NewAllocateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AllocateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "allocate",
		Short: "Allocate document numbers for a carrier and route",
		Long: `Allocate consecutive document numbers for a carrier on a route.

The origin defaults to the carrier's country. The carrier may be given by id
or by registration number.

Example:
  numgen allocate --kind CRT --carrier BR1234/56 --to AR -n 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAllocate(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Kind, "kind", "k", "CRT", "document kind (CRT|MIC)")
	cmd.Flags().StringVarP(&opts.Carrier, "carrier", "c", "", "carrier id or registration number")
	cmd.Flags().StringVar(&opts.Origin, "from", "", "origin country (defaults to the carrier's country)")
	cmd.Flags().StringVar(&opts.Destination, "to", "", "destination country")
	cmd.Flags().IntVarP(&opts.Quantity, "quantity", "n", 1, "how many numbers to allocate")
	_ = cmd.MarkFlagRequired("carrier")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func runAllocate(cmd *cobra.Command, opts *AllocateOptions) error {
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
	origin := opts.Origin
	if origin == "" {
		origin = c.Country
	}

	records, err := e.numbers.AllocateNumbers(ctx, kind, c.ID, origin, opts.Destination, opts.Quantity)
	if err != nil {
		return err
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	return f.Success(records, func(w io.Writer) {
		fmt.Fprintln(w, "NUMBER\tSEQUENCE\tROUTE\tCODE")
		for _, r := range records {
			printRecord(w, r)
		}
	})
}

func printRecord(w io.Writer, r numbering.NumberRecord) {
	fmt.Fprintf(w, "%s\t%d\t%s-%s\t%s\n", r.Number, r.Sequence, r.Origin, r.Destination, r.ComplementaryCode)
}
