// Package preprocess applies cleaning steps to dataset snapshots. Every step
// works on a copy, re-runs the analysis on its output and appends one entry
// to the step log; inputs are never modified.
package preprocess

import (
	"context"
	"math"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/KaramelBytes/dataprep/internal/analysis"
	"github.com/KaramelBytes/dataprep/internal/dataset"
	"github.com/KaramelBytes/dataprep/internal/logger"
	"github.com/KaramelBytes/dataprep/internal/metrics"
)

// Transformer runs preprocessing pipelines. It holds no per-dataset state, so
// one value can serve many callers; steps on a single dataset must still be
// applied one at a time.
type Transformer struct {
	opt analysis.Options
	log *zap.Logger
	rec *metrics.Recorder
}

// New returns a Transformer. log and rec may be nil.
func New(opt analysis.Options, log *zap.Logger, rec *metrics.Recorder) *Transformer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Transformer{opt: opt, log: log, rec: rec}
}

// Result is the output of a pipeline run.
type Result struct {
	Data     *dataset.Dataset
	Analysis *analysis.Analysis
	Steps    []string
}

// MarshalJSON renders {data, analysis, preprocessingSteps}.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Data     []dataset.Row      `json:"data"`
		Columns  []string           `json:"columns"`
		Analysis *analysis.Analysis `json:"analysis"`
		Steps    []string           `json:"preprocessingSteps"`
	}{r.Data.SafeRows(), r.Data.Columns, r.Analysis, r.Steps})
}

// Metrics summarizes what a pipeline run changed.
type Metrics struct {
	RowsProcessed    int           `json:"rowsProcessed"`
	ColumnsProcessed int           `json:"columnsProcessed"`
	InfiniteReplaced int           `json:"infiniteReplaced"`
	ValuesFilled     int           `json:"valuesFilled"`
	RowsDropped      int           `json:"rowsDropped"`
	ColumnsDropped   int           `json:"columnsDropped"`
	ValuesEncoded    int           `json:"valuesEncoded"`
	ValuesNormalized int           `json:"valuesNormalized"`
	Elapsed          time.Duration `json:"-"`
	ElapsedMS        float64       `json:"elapsedMs"`
}

// AutomateResult is a Result plus the options Automate chose and run metrics.
type AutomateResult struct {
	*Result
	Options Options `json:"options"`
	Metrics Metrics `json:"metrics"`
}

// MarshalJSON extends the Result shape with options and metrics.
func (r AutomateResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Data     []dataset.Row      `json:"data"`
		Columns  []string           `json:"columns"`
		Analysis *analysis.Analysis `json:"analysis"`
		Steps    []string           `json:"preprocessingSteps"`
		Options  Options            `json:"options"`
		Metrics  Metrics            `json:"metrics"`
	}{r.Data.SafeRows(), r.Data.Columns, r.Analysis, r.Steps, r.Options, r.Metrics})
}

// OutlierFence returns the IQR multiplier the analysis uses.
func (t *Transformer) OutlierFence() float64 {
	if t.opt.OutlierFence > 0 {
		return t.opt.OutlierFence
	}
	return analysis.DefaultOptions().OutlierFence
}

// Analyze runs the analysis with the Transformer's options and records it.
func (t *Transformer) Analyze(d *dataset.Dataset) *analysis.Analysis {
	start := time.Now()
	a := analysis.Analyze(d, t.opt)
	t.rec.ObserveAnalysis(time.Since(start))
	return a
}

// Apply runs the selected steps in their fixed order. Unknown methods are
// rejected before anything runs. With no steps selected the result carries
// the input snapshot and its analysis.
func (t *Transformer) Apply(ctx context.Context, d *dataset.Dataset, opt Options) (*Result, error) {
	if err := opt.Validate(); err != nil {
		return nil, err
	}
	res, _, err := t.run(ctx, d, t.Analyze(d), opt)
	return res, err
}

// Automate picks a default pipeline from the dataset's analysis and runs it.
// Non-empty fields in override replace the defaults; None switches a step off.
//
// Defaults: infinite cleanup when any column holds ±Inf; fillMedian when a
// numeric column needing imputation has |skewness| > 1, otherwise fillMean;
// label encoding when categorical columns exist; standardization when
// numeric (or encoded) columns exist.
func (t *Transformer) Automate(ctx context.Context, d *dataset.Dataset, override Options) (*AutomateResult, error) {
	if err := override.Validate(); err != nil {
		return nil, err
	}
	a := t.Analyze(d)
	opt := plan(a, override)
	t.log.Info("automated preprocessing planned",
		zap.String("dataset_id", d.ID),
		zap.Bool("handle_infinite", opt.HandleInfinite),
		zap.String("missing", opt.MissingValueMethod),
		zap.String("encoding", opt.EncodingMethod),
		zap.String("normalization", opt.NormalizationMethod),
	)
	res, m, err := t.run(ctx, d, a, opt)
	if err != nil {
		return nil, err
	}
	return &AutomateResult{Result: res, Options: opt, Metrics: m}, nil
}

func plan(a *analysis.Analysis, override Options) Options {
	opt := Options{HandleInfinite: a.HasInfiniteValues}

	needsFill, skewed := false, false
	for _, col := range a.NumericColumns {
		p, _ := a.Profile(col)
		if p.Missing == 0 && a.InfiniteValueStats[col].Count == 0 {
			continue
		}
		needsFill = true
		if st := p.Stats(); st != nil && math.Abs(st.Skewness) > 1 {
			skewed = true
		}
	}
	if needsFill {
		opt.MissingValueMethod = FillMean
		if skewed {
			opt.MissingValueMethod = FillMedian
		}
	}
	if len(a.CategoricalColumns) > 0 {
		opt.EncodingMethod = Label
	}
	if len(a.NumericColumns) > 0 || len(a.CategoricalColumns) > 0 {
		opt.NormalizationMethod = Standard
	}

	if override.HandleInfinite {
		opt.HandleInfinite = true
	}
	if override.MissingValueMethod != "" {
		opt.MissingValueMethod = override.MissingValueMethod
	}
	if override.EncodingMethod != "" {
		opt.EncodingMethod = override.EncodingMethod
	}
	if override.NormalizationMethod != "" {
		opt.NormalizationMethod = override.NormalizationMethod
	}
	return opt
}

type step struct {
	name   string
	method string
	apply  func(*dataset.Dataset, *analysis.Analysis) outcome
}

func steps(opt Options) []step {
	var out []step
	if opt.HandleInfinite {
		out = append(out, step{name: "infinite", apply: handleInfinite})
	}
	if m := opt.MissingValueMethod; !skip(m) {
		out = append(out, step{name: "missing", method: m, apply: func(d *dataset.Dataset, a *analysis.Analysis) outcome {
			return handleMissing(d, a, m)
		}})
	}
	if m := opt.EncodingMethod; !skip(m) {
		out = append(out, step{name: "encoding", method: m, apply: func(d *dataset.Dataset, a *analysis.Analysis) outcome {
			return encode(d, a, m)
		}})
	}
	if m := opt.NormalizationMethod; !skip(m) {
		out = append(out, step{name: "normalization", method: m, apply: func(d *dataset.Dataset, a *analysis.Analysis) outcome {
			return normalize(d, a, m)
		}})
	}
	return out
}

func (t *Transformer) run(ctx context.Context, d *dataset.Dataset, a *analysis.Analysis, opt Options) (*Result, Metrics, error) {
	start := time.Now()
	m := Metrics{RowsProcessed: d.Len(), ColumnsProcessed: len(d.Columns)}
	log := logger.WithDataset(t.log, d)

	cur := d
	for _, s := range steps(opt) {
		if err := ctx.Err(); err != nil {
			return nil, m, &StepError{Step: s.name, Err: err}
		}
		stepStart := time.Now()
		work := cur.Clone()
		out := s.apply(work, a)
		next := cur.Derive(work.Columns, work.Rows, out.desc)
		a = t.Analyze(next)

		switch s.name {
		case "infinite":
			m.InfiniteReplaced += out.changed
		case "missing":
			m.ValuesFilled += out.changed
			m.RowsDropped += out.rowsDropped
			m.ColumnsDropped += out.colsDropped
		case "encoding":
			m.ValuesEncoded += out.changed
		case "normalization":
			m.ValuesNormalized += out.changed
		}
		elapsed := time.Since(stepStart)
		t.rec.ObserveStep(s.name, s.method, out.changed, elapsed)
		log.Debug("preprocessing step applied",
			zap.String("step", s.name),
			zap.String("method", s.method),
			zap.String("snapshot_id", next.ID),
			zap.Int("changed", out.changed),
			zap.Int("rows", next.Len()),
			zap.Int("columns", len(next.Columns)),
			zap.Duration("duration", elapsed),
		)
		cur = next
	}

	m.Elapsed = time.Since(start)
	m.ElapsedMS = float64(m.Elapsed.Microseconds()) / 1000
	log.Info("preprocessing finished",
		zap.Int("steps", len(cur.Steps)-len(d.Steps)),
		zap.Int("rows", cur.Len()),
		zap.Int("columns", len(cur.Columns)),
		zap.Duration("duration", m.Elapsed),
	)
	return &Result{Data: cur, Analysis: a, Steps: cur.Steps}, m, nil
}
