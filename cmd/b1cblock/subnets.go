package main

import (
	"github.com/ccmarris/b1td-country-ip-blocking/internal/app"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/exporter"
	"github.com/spf13/cobra"
)

func newSubnetsCmd() *cobra.Command {
	var (
		countries string
		output    string
	)

	c := &cobra.Command{
		Use:   "subnets",
		Short: "Output country CIDR subnets as flat CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt := getRuntime(cmd)

			codes, err := app.ParseCountries(countries)
			if err != nil {
				return err
			}

			records, lookupErrs := rt.svc.CollectAddresses(cmd.Context(), codes)

			w, closeFn, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if err := exporter.WriteFlatCSV(w, records); err != nil {
				_ = closeFn()
				return err
			}
			if err := closeFn(); err != nil {
				return err
			}

			return lookupFailure(lookupErrs, len(codes))
		},
	}

	c.Flags().StringVarP(&countries, "countries", "C", "", "country or comma delimited list of countries")
	c.Flags().StringVarP(&output, "output", "o", "", "output to file instead of stdout")
	_ = c.MarkFlagRequired("countries")
	return c
}
