package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dataprep/internal/analysis"
	"github.com/KaramelBytes/dataprep/internal/dataset"
	"github.com/KaramelBytes/dataprep/internal/preprocess"
	"github.com/KaramelBytes/dataprep/internal/utils"
)

// stepFlags are shared by preprocess and automate.
type stepFlags struct {
	handleInfinite bool
	missing        string
	encoding       string
	normalize      string
	output         string
	analysisOut    string
	delimiter      string
	sheet          string
}

func (f *stepFlags) register(c *cobra.Command) {
	fl := c.Flags()
	fl.BoolVar(&f.handleInfinite, "handle-infinite", false, "replace ±Infinity with missing values")
	fl.StringVar(&f.missing, "missing", "", "missing values: dropRows|dropColumns|fillMean|fillMedian|fillMode|fillZero|none")
	fl.StringVar(&f.encoding, "encoding", "", "categorical encoding: label|onehot|none")
	fl.StringVar(&f.normalize, "normalize", "", "numeric normalization: minmax|standard|none")
	fl.StringVarP(&f.output, "output", "o", "", "path for the transformed dataset, .json or delimited text (default CSV on stdout)")
	fl.StringVar(&f.analysisOut, "analysis-out", "", "optional path to write the final analysis as JSON")
	fl.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter for input and output: ',' | ';' | '|' | 'tab'")
	fl.StringVar(&f.sheet, "sheet", "", "XLSX: sheet name or 1-based index (default first sheet)")
}

func (f *stepFlags) options() preprocess.Options {
	return preprocess.Options{
		HandleInfinite:      f.handleInfinite,
		MissingValueMethod:  f.missing,
		EncodingMethod:      f.encoding,
		NormalizationMethod: f.normalize,
	}
}

// status is where progress lines go: stdout when the data goes to a file,
// stderr when the data itself is on stdout.
func (f *stepFlags) status(cmd *cobra.Command) io.Writer {
	if toStdout(f.output) {
		return cmd.ErrOrStderr()
	}
	return cmd.OutOrStdout()
}

func toStdout(path string) bool { return path == "" || path == "-" }

// writeResult writes the transformed rows and, if requested, the analysis of
// the final snapshot.
func (f *stepFlags) writeResult(cmd *cobra.Command, d *dataset.Dataset, a *analysis.Analysis) error {
	delim, err := parseDelimiter(f.delimiter)
	if err != nil {
		return err
	}
	if delim == 0 {
		delim = dataset.SniffDelimiter(f.output)
	}
	asJSON := strings.EqualFold(filepath.Ext(f.output), ".json")
	err = utils.WriteOutput(cmd.OutOrStdout(), f.output, func(w io.Writer) error {
		if asJSON {
			return dataset.WriteJSON(w, d)
		}
		return dataset.WriteCSV(w, d, delim)
	})
	if err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	st := f.status(cmd)
	if !toStdout(f.output) {
		fmt.Fprintf(st, "✓ Wrote %d rows × %d columns to %s\n", d.Len(), len(d.Columns), f.output)
	}
	if f.analysisOut != "" {
		b, err := utils.PrettyJSON(a)
		if err != nil {
			return err
		}
		if err := utils.SafeWriteFile(f.analysisOut, append(b, '\n')); err != nil {
			return fmt.Errorf("write analysis: %w", err)
		}
		fmt.Fprintf(st, "✓ Wrote analysis to %s\n", f.analysisOut)
	}
	return nil
}

func printSteps(w io.Writer, steps []string) {
	if len(steps) == 0 {
		fmt.Fprintln(w, "⚠ No preprocessing steps applied")
		return
	}
	for i, s := range steps {
		fmt.Fprintf(w, "  %d. %s\n", i+1, s)
	}
}

var ppFlags stepFlags

var preprocessCmd = &cobra.Command{
	Use:   "preprocess <file>",
	Short: "Apply preprocessing steps to a dataset",
	Long: `Apply preprocessing steps in a fixed order: infinite values, missing values,
categorical encoding, numeric normalization. Steps without a flag are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := ppFlags.options()
		if err := opt.Validate(); err != nil {
			return err
		}
		d, err := loadDataset(args[0], ppFlags.delimiter, ppFlags.sheet)
		if err != nil {
			return err
		}
		res, err := newTransformer(nil).Apply(cmd.Context(), d, opt)
		if err != nil {
			return err
		}
		printSteps(ppFlags.status(cmd), res.Steps)
		return ppFlags.writeResult(cmd, res.Data, res.Analysis)
	},
}

func init() {
	rootCmd.AddCommand(preprocessCmd)
	ppFlags.register(preprocessCmd)
}
