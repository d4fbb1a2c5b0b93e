package main

import (
	"github.com/ccmarris/b1td-country-ip-blocking/internal/app"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/exporter"
	"github.com/spf13/cobra"
)

func newRPZCmd() *cobra.Command {
	var (
		countries string
		output    string
		zone      string
		view      string
	)

	c := &cobra.Command{
		Use:   "rpz",
		Short: "Output NIOS RPZ CSV for import",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt := getRuntime(cmd)

			codes, err := app.ParseCountries(countries)
			if err != nil {
				return err
			}

			rpzCfg := exporter.RPZConfig{Zone: rt.cfg.RPZ.Zone, View: rt.cfg.RPZ.View}
			if zone != "" {
				rpzCfg.Zone = zone
			}
			if view != "" {
				rpzCfg.View = view
			}

			records, lookupErrs := rt.svc.CollectAddresses(cmd.Context(), codes)

			w, closeFn, err := openOutput(cmd, output)
			if err != nil {
				return err
			}
			if err := exporter.WriteRPZ(w, records, rpzCfg); err != nil {
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
	c.Flags().StringVar(&zone, "zone", "", "RPZ zone suffix (default from config)")
	c.Flags().StringVar(&view, "view", "", "NIOS view name (default from config)")
	_ = c.MarkFlagRequired("countries")
	return c
}
