package main

import (
	"fmt"

	"github.com/ccmarris/b1td-country-ip-blocking/internal/app"
	"github.com/ccmarris/b1td-country-ip-blocking/internal/domain"
	"github.com/spf13/cobra"
)

func newCustomListCmd() *cobra.Command {
	var (
		countries string
		name      string
		policy    string
	)

	c := &cobra.Command{
		Use:   "custom-list",
		Short: "Create BloxOne TD custom lists and optionally attach them to a security policy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt := getRuntime(cmd)
			ctx := cmd.Context()

			codes, err := app.ParseCountries(countries)
			if err != nil {
				return err
			}

			records, lookupErrs := rt.svc.CollectAddresses(ctx, codes)

			summary, err := rt.svc.PublishCustomLists(ctx, name, records)
			if err != nil {
				return err
			}

			for _, r := range summary.Results {
				switch r.Outcome {
				case domain.OutcomeCreated:
					cmd.Printf("created: %s\n", r.Name)
				case domain.OutcomeSkippedExists:
					cmd.Printf("skipped (already exists): %s\n", r.Name)
				case domain.OutcomeFailed:
					cmd.Printf("failed: %s: %v\n", r.Name, r.Err)
				}
			}

			// Привязываем к политике только реально созданные списки.
			// Когда создано ничего, Attacher не вызывается.
			attachFailed := false
			if policy != "" {
				created := summary.CreatedNames()
				if len(created) == 0 {
					rt.log.Warn("no custom lists created, skipping policy attach", "policy", policy)
				} else if err := rt.attacher.Attach(ctx, policy, created); err != nil {
					rt.log.Error("policy attach failed", "policy", policy, "error", err)
					attachFailed = true
				} else {
					cmd.Printf("attached %d list(s) to policy %s\n", len(created), policy)
				}
			}

			if failed := summary.FailedCount(); failed > 0 || len(lookupErrs) > 0 || attachFailed {
				return fmt.Errorf("run incomplete: %d lookup failure(s), %d batch failure(s), attach failed: %t",
					len(lookupErrs), summary.FailedCount(), attachFailed)
			}
			return nil
		},
	}

	c.Flags().StringVarP(&countries, "countries", "C", "", "country or comma delimited list of countries")
	c.Flags().StringVarP(&name, "name", "l", "", "name of custom list to create")
	c.Flags().StringVarP(&policy, "policy", "p", "", "security policy to attach created lists to")
	_ = c.MarkFlagRequired("countries")
	_ = c.MarkFlagRequired("name")
	return c
}
