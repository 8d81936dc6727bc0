package preprocess

import (
	"errors"
	"fmt"
)

// Missing-value methods.
const (
	DropRows    = "dropRows"
	DropColumns = "dropColumns"
	FillMean    = "fillMean"
	FillMedian  = "fillMedian"
	FillMode    = "fillMode"
	FillZero    = "fillZero"
)

// Encoding methods.
const (
	Label  = "label"
	OneHot = "onehot"
)

// Normalization methods.
const (
	MinMax   = "minmax"
	Standard = "standard"
)

// None explicitly skips a step. It is mostly useful to switch off one of the
// defaults chosen by Automate.
const None = "none"

// ErrUnknownMethod is returned when an option names a method that does not
// exist. Validation happens before any step runs.
var ErrUnknownMethod = errors.New("unknown preprocessing method")

// Options selects the steps to apply. Empty fields skip the step; the steps
// always run in the order infinite, missing, encoding, normalization.
type Options struct {
	HandleInfinite      bool   `json:"handleInfinite,omitempty" yaml:"handle_infinite"`
	MissingValueMethod  string `json:"missingValueMethod,omitempty" yaml:"missing_value_method"`
	EncodingMethod      string `json:"encodingMethod,omitempty" yaml:"encoding_method"`
	NormalizationMethod string `json:"normalizationMethod,omitempty" yaml:"normalization_method"`
}

var methods = map[string][]string{
	"missing value": {DropRows, DropColumns, FillMean, FillMedian, FillMode, FillZero},
	"encoding":      {Label, OneHot},
	"normalization": {MinMax, Standard},
}

// Validate reports the first unknown method name, wrapping ErrUnknownMethod.
func (o Options) Validate() error {
	for _, c := range []struct{ kind, name string }{
		{"missing value", o.MissingValueMethod},
		{"encoding", o.EncodingMethod},
		{"normalization", o.NormalizationMethod},
	} {
		if c.name == "" || c.name == None {
			continue
		}
		if !contains(methods[c.kind], c.name) {
			return fmt.Errorf("unknown %s method %q: %w", c.kind, c.name, ErrUnknownMethod)
		}
	}
	return nil
}

// Empty reports whether no step is selected.
func (o Options) Empty() bool {
	return !o.HandleInfinite && skip(o.MissingValueMethod) && skip(o.EncodingMethod) && skip(o.NormalizationMethod)
}

func skip(method string) bool { return method == "" || method == None }

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// StepError reports a failure inside one step. The input snapshot is left
// untouched.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string { return fmt.Sprintf("preprocess %s: %v", e.Step, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }
