package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/tabular"
)

func init() {
	rootCmd.AddCommand(newCollectCmd())
}

func newCollectCmd() *cobra.Command {
	var (
		ff   fetchFlags
		out  string
		opts appint.CollectOptions
	)
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Discover app listings from the app store sitemap and write an apps file.",
		Long: "Collect reads the app store sitemap, fetches every listing it names " +
			"and writes one input row per app, ready for build.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := loadComponents()
			if err != nil {
				return err
			}
			f, closeFn, err := ff.fetcher(cmd.Context(), comp.Settings.Fetch)
			if err != nil {
				return err
			}
			defer closeFn()

			apps, err := appint.FromComponents(comp, f, logger).Collect(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if len(apps) == 0 {
				return fmt.Errorf("no app listings collected")
			}

			w, closeOut, err := output(out)
			if err != nil {
				return err
			}
			if err := tabular.WriteApps(w, apps); err != nil {
				closeOut()
				return fmt.Errorf("write %s: %w", out, err)
			}
			logger.Info("apps written", "apps", len(apps), "out", out)
			return closeOut()
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output CSV path")
	cmd.Flags().StringVar(&opts.SitemapURL, "sitemap", "", "sitemap URL (default: the app store sitemap)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "stop after this many apps (0: no limit)")
	cmd.Flags().BoolVar(&opts.WithIntegrationsOnly, "with-integrations", false, "keep only apps that mention at least one integration")
	ff.register(cmd, false)
	return cmd
}
