package sim

import (
	"github.com/truffle-sql/truffle/pkg/binder"
	"github.com/truffle-sql/truffle/pkg/core"
	"github.com/truffle-sql/truffle/pkg/diag"
)

// Result is the outcome of executing one statement.
type Result struct {
	Statement   core.Stmt       `json:"-" yaml:"-"`
	Kind        string          `json:"kind" yaml:"kind"`
	Diagnostics diag.List       `json:"diagnostics" yaml:"diagnostics"`
	Inputs      []binder.Param  `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs     []binder.Output `json:"outputs,omitempty" yaml:"outputs,omitempty"`
}

// OK reports whether the statement was accepted.
func (r *Result) OK() bool {
	return !r.Diagnostics.HasErrors()
}

// Report is the outcome of executing a script.
type Report struct {
	// Results holds one entry per statement executed, in order.
	Results []*Result `json:"results" yaml:"results"`
	// Syntax is set when parsing stopped the run.
	Syntax *diag.Diagnostic `json:"syntax,omitempty" yaml:"syntax,omitempty"`
}

// Diagnostics returns every diagnostic of the run in statement order. A
// syntax error comes last.
func (r *Report) Diagnostics() diag.List {
	out := diag.List{}
	for _, res := range r.Results {
		out = append(out, res.Diagnostics...)
	}
	if r.Syntax != nil {
		out = append(out, *r.Syntax)
	}
	return out
}

// OK reports whether every statement parsed and was accepted.
func (r *Report) OK() bool {
	return !r.Diagnostics().HasErrors()
}

// Err returns the diagnostics as an error, or nil.
func (r *Report) Err() error {
	return r.Diagnostics().Err()
}

// Last returns the result of the final statement, or nil.
func (r *Report) Last() *Result {
	if len(r.Results) == 0 {
		return nil
	}
	return r.Results[len(r.Results)-1]
}

// QueryInfo is the build-time view of a checked query.
type QueryInfo struct {
	Kind    string          `json:"kind" yaml:"kind"`
	Inputs  []binder.Param  `json:"inputs" yaml:"inputs"`
	Outputs []binder.Output `json:"outputs" yaml:"outputs"`
}
