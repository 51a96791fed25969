package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newAnalyzeCmd())
}

func newAnalyzeCmd() *cobra.Command {
	var (
		out      string
		fromApps bool
		ff       fetchFlags
	)
	cmd := &cobra.Command{
		Use:   "analyze <relation.csv>",
		Short: "Analyze integration frequencies, co-occurrence and spelling clusters as a markdown report.",
		Long: "Analyze reads the output of `appint build`. With --apps the input is a raw " +
			"app listing file and records are built first.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			comp, err := loadComponents()
			if err != nil {
				return err
			}
			e, closeFn, err := engine(cmd.Context(), comp, &ff)
			if err != nil {
				return err
			}
			defer closeFn()

			table, skipped, err := loadTable(cmd.Context(), e, args[0], fromApps)
			if err != nil {
				return err
			}
			res, err := e.Analyze(cmd.Context(), table)
			if err != nil {
				return err
			}

			w, closeOut, err := output(out)
			if err != nil {
				return err
			}
			r := e.Report(res, skipped)
			if _, err := r.WriteTo(w); err != nil {
				closeOut()
				return fmt.Errorf("write report: %w", err)
			}
			if err := closeOut(); err != nil {
				return err
			}
			logger.Info("wrote report", "run", r.ID, "out", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "report path")
	cmd.Flags().BoolVar(&fromApps, "apps", false, "input is a raw app listing file")
	ff.register(cmd, true)
	return cmd
}
