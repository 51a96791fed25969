package commands

import (
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newBuildCmd())
}

func newBuildCmd() *cobra.Command {
	var (
		out string
		ff  fetchFlags
	)
	cmd := &cobra.Command{
		Use:   "build <apps.csv|apps.jsonl>",
		Short: "Resolve every app's canonical integration set and write it as CSV.",
		Args:  cobra.ExactArgs(1),
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

			records, skipped, err := buildRecords(cmd.Context(), e, args[0])
			if err != nil {
				return err
			}
			if err := writeRecords(out, records); err != nil {
				return err
			}
			logger.Info("wrote records", "apps", len(records), "skipped", skipped, "out", out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "-", "output CSV path")
	ff.register(cmd, true)
	return cmd
}
