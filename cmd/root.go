package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dataprep/internal/config"
	"github.com/KaramelBytes/dataprep/internal/dataset"
	"github.com/KaramelBytes/dataprep/internal/logger"
	"github.com/KaramelBytes/dataprep/internal/metrics"
	"github.com/KaramelBytes/dataprep/internal/preprocess"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "dataprep",
	Short: "dataprep: profile tabular datasets and prepare them for modeling",
	Long: `dataprep analyzes CSV, TSV, JSON and XLSX datasets (column types, statistics,
outliers, correlations, data quality) and applies preprocessing steps such as
infinite-value handling, missing-value treatment, categorical encoding and
normalization. It can also serve the same operations over HTTP.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.dataprep/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = &cfgpkg.Global{}
	}
	cfg = c

	lc := logger.Config{Level: cfg.LogLevel, Encoding: cfg.LogFormat}
	if debug {
		lc.Level = "debug"
		lc.Development = true
	}
	if err := logger.Init(lc); err != nil {
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to init logger: %v\n", err)
	}
}

func newTransformer(rec *metrics.Recorder) *preprocess.Transformer {
	return preprocess.New(cfg.AnalysisOptions(), logger.Get(), rec)
}

// parseDelimiter maps a --delimiter value onto a rune. Empty defers to the
// configured delimiter, then to sniffing by extension.
func parseDelimiter(s string) (rune, error) {
	switch strings.ToLower(s) {
	case "":
		return cfg.Delimiter(), nil
	case ",", "comma":
		return ',', nil
	case ";", "semicolon":
		return ';', nil
	case "\t", `\t`, "tab":
		return '\t', nil
	case "|", "pipe":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported --delimiter: %s", s)
}

func loadDataset(path, delimiter, sheet string) (*dataset.Dataset, error) {
	delim, err := parseDelimiter(delimiter)
	if err != nil {
		return nil, err
	}
	d, err := dataset.Load(path, dataset.LoadOptions{Delimiter: delim, Sheet: sheet})
	if err != nil {
		return nil, err
	}
	logger.WithDataset(logger.Get(), d).Debug("dataset loaded")
	return d, nil
}
