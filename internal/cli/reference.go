package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"transdoc/internal/domain/carrier"
	"transdoc/internal/domain/country"
)

// NewCountriesCommand creates the countries command.
func NewCountriesCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "countries",
		Short: "List the supported country codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list := country.Default().List()
			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			return f.Success(list, func(w io.Writer) {
				fmt.Fprintln(w, "CODE\tNAME\tLOCAL NAME")
				for _, c := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\n", c.Code, c.Name, c.NameLocal)
				}
			})
		},
	}
}

// NewCarriersCommand creates the carriers command.
func NewCarriersCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "carriers",
		Short: "List carriers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEngine(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			list, err := e.store.List(cmd.Context())
			if err != nil {
				return err
			}
			f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
			return f.Success(list, func(w io.Writer) {
				fmt.Fprintln(w, "ID\tNAME\tCOUNTRY\tREGISTRATION")
				for _, c := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Country, c.RegistrationNumber)
				}
			})
		},
	}
}

// LicensesOptions holds flags for the licenses command.
type LicensesOptions struct {
	*RootOptions
	Carrier string
	Status  string
}

// NewLicensesCommand creates the licenses command.
func NewLicensesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LicensesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "licenses",
		Short: "Show destination licenses and their validity",
		Long: `Show destination licenses with their validity status: valid,
expiring_soon (within 180 days), expired or no_expiry.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLicenses(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Carrier, "carrier", "c", "", "only this carrier (id or registration number)")
	cmd.Flags().StringVar(&opts.Status, "status", "", "only licenses with this status")

	return cmd
}

func runLicenses(cmd *cobra.Command, opts *LicensesOptions) error {
	e, err := openEngine(opts.RootOptions)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	report, err := carrier.BuildValidityReport(ctx, e.store, e.store, time.Now().UTC())
	if err != nil {
		return err
	}

	rows := report.All
	if opts.Carrier != "" {
		c, err := e.carrier(ctx, opts.Carrier)
		if err != nil {
			return err
		}
		rows = filterLicenses(rows, func(s carrier.LicenseStatus) bool { return s.CarrierID == c.ID })
	}
	if opts.Status != "" {
		status := carrier.ValidityStatus(opts.Status)
		rows = filterLicenses(rows, func(s carrier.LicenseStatus) bool { return s.Status == status })
	}

	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Success(rows, func(w io.Writer) {
		fmt.Fprintln(w, "CARRIER\tDESTINATION\tCODE\tIDONEIDADE\tEXPIRES\tSTATUS\tDAYS")
		for _, s := range rows {
			expires, days := "-", "-"
			if s.ExpiresAt != nil {
				expires = s.ExpiresAt.Format("02/01/2006")
			}
			if s.DaysRemaining != nil {
				days = fmt.Sprint(*s.DaysRemaining)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				s.Carrier.Name, s.DestinationCountry, s.Code, s.Idoneidade, expires, s.Status, days)
		}
	})
}

func filterLicenses(in []carrier.LicenseStatus, keep func(carrier.LicenseStatus) bool) []carrier.LicenseStatus {
	out := make([]carrier.LicenseStatus, 0, len(in))
	for _, s := range in {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
