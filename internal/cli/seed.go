package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"transdoc/internal/domain/carrier"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load carriers and destination licenses from YAML",
		Long: `Load carriers and their destination licenses from a YAML file.

Carriers are matched by registration number and licenses by destination, so
running the same file twice updates records instead of duplicating them.

  carriers:
    - name: Transportes Sul
      country: BR
      registration_number: BR1234/56
      start_primary: 1
      licenses:
        - destination: AR
          code: BR6023/1800648
          expires: 31/12/2027`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, opts, args[0])
		},
	}
}

func runSeed(cmd *cobra.Command, opts *RootOptions, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot read seed file", err)
	}
	file, err := carrier.ParseSeed(data)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid seed file", err)
	}

	e, err := openEngine(opts)
	if err != nil {
		return err
	}
	defer e.Close()

	res, err := file.Apply(cmd.Context(), e.store, e.countries)
	if err != nil {
		return err
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Success(res, func(w io.Writer) {
		fmt.Fprintf(w, "seeded %d carriers, %d licenses\n", res.Carriers, res.Licenses)
	})
}
