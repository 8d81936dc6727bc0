package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataprep/internal/utils"
)

var (
	anaOutputPath string
	anaFormat     string
	anaDelimiter  string
	anaSheet      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Profile a CSV/TSV/JSON/XLSX dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format := strings.ToLower(strings.TrimSpace(anaFormat))
		if format != "markdown" && format != "md" && format != "json" {
			return fmt.Errorf("unsupported --format: %s (use markdown|json)", anaFormat)
		}
		d, err := loadDataset(path, anaDelimiter, anaSheet)
		if err != nil {
			return err
		}
		a := newTransformer(nil).Analyze(d)

		err = utils.WriteOutput(cmd.OutOrStdout(), anaOutputPath, func(w io.Writer) error {
			if format == "json" {
				b, err := utils.PrettyJSON(a)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(b))
				return err
			}
			_, err := io.WriteString(w, a.Markdown(filepath.Base(path), d.Steps))
			return err
		})
		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		if anaOutputPath != "" && anaOutputPath != "-" {
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis (default stdout)")
	analyzeCmd.Flags().StringVar(&anaFormat, "format", "markdown", "output format: markdown|json")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | '|' | 'tab' (default from config or extension)")
	analyzeCmd.Flags().StringVar(&anaSheet, "sheet", "", "XLSX: sheet name or 1-based index (default first sheet)")
}
