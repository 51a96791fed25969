package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/autotune/review/llm"
	"github.com/j-wow-shop/app-listing-integrations-analysis/pkg/appint/maintenance"
)

func init() {
	rootCmd.AddCommand(newSuggestCmd())
}

func newSuggestCmd() *cobra.Command {
	var (
		out          string
		fromApps     bool
		reviewURL    string
		reviewAPIKey string
	)
	cmd := &cobra.Command{
		Use:   "suggest <relation.csv>",
		Short: "Propose alias entries for labels that are spelled like a more common one.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := loadComponents()
			if err != nil {
				return err
			}
			e, closeFn, err := engine(cmd.Context(), comp, nil)
			if err != nil {
				return err
			}
			defer closeFn()
			if reviewURL != "" {
				e.SetReviewer(&llm.Client{Endpoint: reviewURL, APIKey: reviewAPIKey})
			}

			tbl, _, err := loadTable(cmd.Context(), e, args[0], fromApps)
			if err != nil {
				return err
			}
			res, err := e.Analyze(cmd.Context(), tbl)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stderr)
			t.SetStyle(table.StyleRounded)
			t.AppendHeader(table.Row{"Variant", "Canonical", "Confidence", "Apps"})
			for _, s := range res.Suggestions {
				t.AppendRow(table.Row{s.Variant, s.Canonical, fmt.Sprintf("%.2f", s.Confidence), s.Apps})
			}
			t.Render()

			if out == "" {
				return nil
			}
			exp := &maintenance.AliasExporter{Writer: maintenance.FileWriter{Path: out}}
			if err := exp.Export(cmd.Context(), res.Suggestions); err != nil {
				return fmt.Errorf("export aliases: %w", err)
			}
			logger.Info("wrote alias suggestions", "count", len(res.Suggestions), "out", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "write suggestions as an aliases YAML fragment")
	cmd.Flags().BoolVar(&fromApps, "apps", false, "input is a raw app listing file")
	cmd.Flags().StringVar(&reviewURL, "review-endpoint", "", "optional reviewer endpoint that approves each suggestion")
	cmd.Flags().StringVar(&reviewAPIKey, "review-api-key", "", "bearer token for the reviewer endpoint")
	return cmd
}
