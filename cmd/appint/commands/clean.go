package commands

import (
	"github.com/spf13/cobra"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/maintenance"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/record"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/tabular"
)

func init() {
	rootCmd.AddCommand(newCleanCmd())
}

func newCleanCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "clean <relation.csv>",
		Short: "Re-resolve a stored relation against the current alias vocabulary.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := loadComponents()
			if err != nil {
				return err
			}
			rows, skipped, err := tabular.ReadRelation(args[0])
			for _, s := range skipped {
				logger.Warn("skipping relation row", "line", s.Line, "err", s.Err)
			}
			if err != nil {
				return err
			}

			c := &maintenance.Cleaner{Resolver: comp.Normalizer, Source: maintenance.NewSliceSource(rows)}
			cleaned, res, err := c.Clean(cmd.Context())
			if err != nil {
				return err
			}

			records := make([]record.AppRecord, len(cleaned))
			for i, r := range cleaned {
				records[i] = record.AppRecord{AppID: r.AppID, Canonical: r.Integrations}
			}
			if err := writeRecords(out, records); err != nil {
				return err
			}
			logger.Info("cleaned relation", "processed", res.Processed, "updated", res.Updated, "errors", res.Errors)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output CSV path")
	return cmd
}
