package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/KaramelBytes/dataprep/internal/analysis"
)

func TestLoadDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "missing.yaml")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ServerAddr != ":8080" || c.RequestTimeoutSec != 30 || c.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if got, want := c.AnalysisOptions(), analysis.DefaultOptions(); got != want {
		t.Fatalf("analysis options = %+v, want %+v", got, want)
	}
	if c.Delimiter() != 0 {
		t.Fatalf("expected delimiter sniffing by default")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for k, v := range map[string]string{
		"log_format":                 "json",
		"csv_delimiter":              ";",
		"analysis.sample_rows":       "50",
		"analysis.numeric_threshold": "0.8",
	} {
		if err := c.Set(k, v); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}
	if err := Save(c, p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(p)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.LogFormat != "json" || got.Delimiter() != ';' {
		t.Fatalf("round trip lost values: %+v", got)
	}
	opt := got.AnalysisOptions()
	if opt.SampleRows != 50 || opt.NumericThreshold != 0.8 {
		t.Fatalf("analysis options = %+v", opt)
	}
	if s, _ := got.Get("analysis.numeric_threshold"); s != "0.8" {
		t.Fatalf("Get = %q", s)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte("server_addr: \":9000\"\nanalysis:\n  top_duplicates: 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DATAPREP_SERVER_ADDR", ":7000")
	t.Setenv("DATAPREP_ANALYSIS_TOP_DUPLICATES", "8")
	c, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.ServerAddr != ":7000" {
		t.Fatalf("server_addr = %q, want env value", c.ServerAddr)
	}
	if c.Analysis.TopDuplicates != 8 {
		t.Fatalf("top_duplicates = %d, want env value", c.Analysis.TopDuplicates)
	}
}

func TestSetRejectsBadValues(t *testing.T) {
	c := &Global{}
	cases := []struct{ key, val string }{
		{"log_level", "loud"},
		{"log_format", "xml"},
		{"csv_delimiter", ";;"},
		{"request_timeout_sec", "-1"},
		{"analysis.numeric_threshold", "1.5"},
		{"analysis.outlier_fence", "0"},
		{"nope", "1"},
	}
	for _, tc := range cases {
		if err := c.Set(tc.key, tc.val); err == nil {
			t.Errorf("Set(%s, %s) expected error", tc.key, tc.val)
		}
	}
	if err := c.Set("csv_delimiter", "tab"); err != nil || c.Delimiter() != '\t' {
		t.Fatalf("tab delimiter: %v", err)
	}
}

func TestKeysAreGettable(t *testing.T) {
	c := &Global{}
	for _, k := range Keys() {
		if _, err := c.Get(k); err != nil {
			t.Errorf("Get(%s): %v", k, err)
		}
	}
}
