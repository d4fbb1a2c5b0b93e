package main

import (
	"github.com/ccmarris/b1td-country-ip-blocking/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version info",
		Run: func(cmd *cobra.Command, _ []string) {
			version.FprintVersion(cmd.OutOrStdout())
		},
	}
}
