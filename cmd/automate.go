package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var autoFlags stepFlags

var automateCmd = &cobra.Command{
	Use:   "automate <file>",
	Short: "Choose and apply a preprocessing pipeline from the dataset's analysis",
	Long: `Analyze the dataset, pick sensible defaults (infinite handling when needed,
mean or median fill, label encoding, standardization) and apply them.
Any step flag overrides the chosen default; "none" skips that step.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		override := autoFlags.options()
		if err := override.Validate(); err != nil {
			return err
		}
		d, err := loadDataset(args[0], autoFlags.delimiter, autoFlags.sheet)
		if err != nil {
			return err
		}
		res, err := newTransformer(nil).Automate(cmd.Context(), d, override)
		if err != nil {
			return err
		}
		st := autoFlags.status(cmd)
		printSteps(st, res.Steps)
		m := res.Metrics
		fmt.Fprintf(st, "✓ Processed %d rows × %d columns in %.1fms (infinite %d, filled %d, encoded %d, normalized %d, dropped %d rows / %d columns)\n",
			m.RowsProcessed, m.ColumnsProcessed, m.ElapsedMS, m.InfiniteReplaced, m.ValuesFilled,
			m.ValuesEncoded, m.ValuesNormalized, m.RowsDropped, m.ColumnsDropped)
		return autoFlags.writeResult(cmd, res.Data, res.Analysis)
	},
}

func init() {
	rootCmd.AddCommand(automateCmd)
	autoFlags.register(automateCmd)
}
