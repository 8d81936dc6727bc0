package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/dataprep/internal/analysis"
)

// Global configuration structure.
type Global struct {
	LogLevel          string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat         string `mapstructure:"log_format" yaml:"log_format"`
	ServerAddr        string `mapstructure:"server_addr" yaml:"server_addr"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec" yaml:"request_timeout_sec"`
	// Max request body for the HTTP API, e.g. "32M".
	BodyLimit    string `mapstructure:"body_limit" yaml:"body_limit"`
	CSVDelimiter string `mapstructure:"csv_delimiter" yaml:"csv_delimiter"`

	Analysis Analysis `mapstructure:"analysis" yaml:"analysis"`
}

// Analysis holds the tunable thresholds of the profiler.
type Analysis struct {
	SampleRows           int     `mapstructure:"sample_rows" yaml:"sample_rows"`
	NumericThreshold     float64 `mapstructure:"numeric_threshold" yaml:"numeric_threshold"`
	DatetimeThreshold    float64 `mapstructure:"datetime_threshold" yaml:"datetime_threshold"`
	CategoricalRatio     float64 `mapstructure:"categorical_ratio" yaml:"categorical_ratio"`
	CategoricalMaxUnique int     `mapstructure:"categorical_max_unique" yaml:"categorical_max_unique"`
	LowCardinality       int     `mapstructure:"low_cardinality" yaml:"low_cardinality"`
	ValueCountsLimit     int     `mapstructure:"value_counts_limit" yaml:"value_counts_limit"`
	TopDuplicates        int     `mapstructure:"top_duplicates" yaml:"top_duplicates"`
	MinCorrelationPairs  int     `mapstructure:"min_correlation_pairs" yaml:"min_correlation_pairs"`
	OutlierFence         float64 `mapstructure:"outlier_fence" yaml:"outlier_fence"`
}

// AnalysisOptions maps the analysis section onto analysis.Options. Zero
// values fall back to the package defaults.
func (c *Global) AnalysisOptions() analysis.Options {
	a := c.Analysis
	return analysis.Options{
		SampleRows:           a.SampleRows,
		NumericThreshold:     a.NumericThreshold,
		DatetimeThreshold:    a.DatetimeThreshold,
		CategoricalRatio:     a.CategoricalRatio,
		CategoricalMaxUnique: a.CategoricalMaxUnique,
		LowCardinality:       a.LowCardinality,
		ValueCountsLimit:     a.ValueCountsLimit,
		TopDuplicates:        a.TopDuplicates,
		MinCorrelationPairs:  a.MinCorrelationPairs,
		OutlierFence:         a.OutlierFence,
	}
}

// Delimiter returns the configured CSV delimiter, or 0 to sniff it from the
// file name. "tab" and "\t" both mean a tab.
func (c *Global) Delimiter() rune {
	switch c.CSVDelimiter {
	case "":
		return 0
	case "tab", `\t`:
		return '\t'
	}
	return []rune(c.CSVDelimiter)[0]
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dataprep/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := homeDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("DATAPREP")
	// analysis.sample_rows -> DATAPREP_ANALYSIS_SAMPLE_ROWS
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("server_addr", ":8080")
	v.SetDefault("request_timeout_sec", 30)
	v.SetDefault("body_limit", "32M")
	v.SetDefault("csv_delimiter", "")
	// Analysis defaults
	d := analysis.DefaultOptions()
	v.SetDefault("analysis.sample_rows", d.SampleRows)
	v.SetDefault("analysis.numeric_threshold", d.NumericThreshold)
	v.SetDefault("analysis.datetime_threshold", d.DatetimeThreshold)
	v.SetDefault("analysis.categorical_ratio", d.CategoricalRatio)
	v.SetDefault("analysis.categorical_max_unique", d.CategoricalMaxUnique)
	v.SetDefault("analysis.low_cardinality", d.LowCardinality)
	v.SetDefault("analysis.value_counts_limit", d.ValueCountsLimit)
	v.SetDefault("analysis.top_duplicates", d.TopDuplicates)
	v.SetDefault("analysis.min_correlation_pairs", d.MinCorrelationPairs)
	v.SetDefault("analysis.outlier_fence", d.OutlierFence)

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := homeDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func homeDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dataprep"), nil
}

// Keys lists the settable keys in display order.
func Keys() []string {
	return []string{
		"log_level", "log_format", "server_addr", "request_timeout_sec", "body_limit", "csv_delimiter",
		"analysis.sample_rows", "analysis.numeric_threshold", "analysis.datetime_threshold",
		"analysis.categorical_ratio", "analysis.categorical_max_unique", "analysis.low_cardinality",
		"analysis.value_counts_limit", "analysis.top_duplicates", "analysis.min_correlation_pairs",
		"analysis.outlier_fence",
	}
}

// Get renders the value of key as text.
func (c *Global) Get(key string) (string, error) {
	a := c.Analysis
	switch key {
	case "log_level":
		return c.LogLevel, nil
	case "log_format":
		return c.LogFormat, nil
	case "server_addr":
		return c.ServerAddr, nil
	case "request_timeout_sec":
		return strconv.Itoa(c.RequestTimeoutSec), nil
	case "body_limit":
		return c.BodyLimit, nil
	case "csv_delimiter":
		return c.CSVDelimiter, nil
	case "analysis.sample_rows":
		return strconv.Itoa(a.SampleRows), nil
	case "analysis.numeric_threshold":
		return formatFloat(a.NumericThreshold), nil
	case "analysis.datetime_threshold":
		return formatFloat(a.DatetimeThreshold), nil
	case "analysis.categorical_ratio":
		return formatFloat(a.CategoricalRatio), nil
	case "analysis.categorical_max_unique":
		return strconv.Itoa(a.CategoricalMaxUnique), nil
	case "analysis.low_cardinality":
		return strconv.Itoa(a.LowCardinality), nil
	case "analysis.value_counts_limit":
		return strconv.Itoa(a.ValueCountsLimit), nil
	case "analysis.top_duplicates":
		return strconv.Itoa(a.TopDuplicates), nil
	case "analysis.min_correlation_pairs":
		return strconv.Itoa(a.MinCorrelationPairs), nil
	case "analysis.outlier_fence":
		return formatFloat(a.OutlierFence), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val and assigns it to key.
func (c *Global) Set(key, val string) error {
	a := &c.Analysis
	switch key {
	case "log_level":
		switch strings.ToLower(val) {
		case "debug", "info", "warn", "error":
			c.LogLevel = strings.ToLower(val)
		default:
			return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
		}
	case "log_format":
		switch val {
		case "console", "json":
			c.LogFormat = val
		default:
			return fmt.Errorf("invalid log_format: %s (use console or json)", val)
		}
	case "server_addr":
		c.ServerAddr = val
	case "request_timeout_sec":
		return setInt(&c.RequestTimeoutSec, key, val)
	case "body_limit":
		c.BodyLimit = val
	case "csv_delimiter":
		if val != "" && val != "tab" && val != `\t` && len([]rune(val)) != 1 {
			return fmt.Errorf("invalid csv_delimiter: %q (use a single character or tab)", val)
		}
		c.CSVDelimiter = val
	case "analysis.sample_rows":
		return setInt(&a.SampleRows, key, val)
	case "analysis.numeric_threshold":
		return setRatio(&a.NumericThreshold, key, val)
	case "analysis.datetime_threshold":
		return setRatio(&a.DatetimeThreshold, key, val)
	case "analysis.categorical_ratio":
		return setRatio(&a.CategoricalRatio, key, val)
	case "analysis.categorical_max_unique":
		return setInt(&a.CategoricalMaxUnique, key, val)
	case "analysis.low_cardinality":
		return setInt(&a.LowCardinality, key, val)
	case "analysis.value_counts_limit":
		return setInt(&a.ValueCountsLimit, key, val)
	case "analysis.top_duplicates":
		return setInt(&a.TopDuplicates, key, val)
	case "analysis.min_correlation_pairs":
		return setInt(&a.MinCorrelationPairs, key, val)
	case "analysis.outlier_fence":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f <= 0 {
			return fmt.Errorf("invalid float for %s: %v", key, val)
		}
		a.OutlierFence = f
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

func setInt(dst *int, key, val string) error {
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return fmt.Errorf("invalid int for %s: %v", key, val)
	}
	*dst = i
	return nil
}

func setRatio(dst *float64, key, val string) error {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f <= 0 || f > 1 {
		return fmt.Errorf("invalid ratio for %s: %v (use a value in (0, 1])", key, val)
	}
	*dst = f
	return nil
}

func formatFloat(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
