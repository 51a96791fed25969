package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/fetch"
)

func init() {
	rootCmd.AddCommand(newFetchCmd())
}

func newFetchCmd() *cobra.Command {
	var ff fetchFlags
	cmd := &cobra.Command{
		Use:   "fetch <apps.csv|apps.jsonl>",
		Short: "Fetch the listing page of every app, warming the page cache.",
		Long: "Fetch walks the candidate listing URLs of every app with bounded " +
			"concurrency, the same way build --fetch does, and prints the outcome. " +
			"Use --cache so later builds reuse the pages.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := loadComponents()
			if err != nil {
				return err
			}
			apps, _, err := readApps(args[0])
			if err != nil {
				return err
			}
			f, closeFn, err := ff.fetcher(cmd.Context(), comp.Settings.Fetch)
			if err != nil {
				return err
			}
			defer closeFn()

			var (
				ids        []string
				candidates [][]string
			)
			for _, a := range apps {
				urls := fetch.CandidateURLs(a.AppName, a.AppID, a.SourceURL)
				if len(urls) == 0 {
					logger.Warn("no listing URL", "app_id", a.AppID)
					continue
				}
				ids = append(ids, a.AppID)
				candidates = append(candidates, urls)
			}

			pool := &fetch.Pool{Fetcher: f, Concurrency: comp.Settings.Fetch.Concurrency, Logger: logger}
			lookups, err := pool.FindPages(cmd.Context(), candidates)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"App", "Listing", "Candidates", "Error"})
			found := 0
			for i, l := range lookups {
				errText := ""
				if l.Err != nil {
					errText = l.Err.Error()
				} else {
					found++
				}
				t.AppendRow(table.Row{ids[i], l.Page.URL, len(l.Candidates), errText})
			}
			t.AppendFooter(table.Row{"", "", "", fmt.Sprintf("%d/%d found", found, len(lookups))})
			t.Render()
			return nil
		},
	}
	ff.register(cmd, false)
	return cmd
}
