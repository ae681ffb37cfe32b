// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// InvocationMode selects how a test case feeds its fixture to the binary.
type InvocationMode string

const (
	// ModeArgument writes the fixture to a temporary file and passes its path
	// as the sole argument.
	ModeArgument InvocationMode = "argument"
	// ModeStdin pipes the fixture to the binary's standard input.
	ModeStdin InvocationMode = "stdin"
)

// Assertion requires that at least one of AnyOf appears in the output.
type Assertion struct {
	// Label names the expectation in failure diagnostics
	// (e.g. "expected heading").
	Label string   `json:"label" yaml:"label"`
	AnyOf []string `json:"any_of" yaml:"any_of"`
}

// TestCase is one black-box scenario run against a staged binary.
type TestCase struct {
	Name    string         `json:"name" yaml:"name"`
	Fixture string         `json:"fixture" yaml:"fixture"`
	Mode    InvocationMode `json:"mode" yaml:"mode"`

	// FixtureExt is the suffix of the temporary fixture file (e.g. ".html").
	// The converter picks its input format from it.
	FixtureExt string      `json:"fixture_ext,omitempty" yaml:"fixture_ext,omitempty"`
	Assertions []Assertion `json:"assertions" yaml:"assertions"`
}

// CaseResult is the outcome of one TestCase.
type CaseResult struct {
	Name     string        `json:"name" yaml:"name"`
	Passed   bool          `json:"passed" yaml:"passed"`
	Detail   string        `json:"detail,omitempty" yaml:"detail,omitempty"`
	ExitCode int           `json:"exit_code" yaml:"exit_code"`
	TimedOut bool          `json:"timed_out,omitempty" yaml:"timed_out,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// TestReport aggregates the results of a verification suite.
type TestReport struct {
	Binary  string       `json:"binary" yaml:"binary"`
	Results []CaseResult `json:"results" yaml:"results"`
	Passed  int          `json:"passed" yaml:"passed"`
	Failed  int          `json:"failed" yaml:"failed"`
}

// Add records a case result and updates the totals.
func (r *TestReport) Add(res CaseResult) {
	r.Results = append(r.Results, res)
	if res.Passed {
		r.Passed++
	} else {
		r.Failed++
	}
}

// Total returns the number of cases run.
func (r TestReport) Total() int {
	return r.Passed + r.Failed
}

// ExitCode is 0 if and only if every case passed.
func (r TestReport) ExitCode() int {
	if r.Failed > 0 {
		return 1
	}
	return 0
}
