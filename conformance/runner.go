package conformance

import (
	"fmt"

	"ark/errs"
	"ark/natives"
	"ark/program"
	"ark/types"
	"ark/vm"
)

// TestResult is the outcome of running a single test case.
type TestResult struct {
	Test    LoadedTest
	Passed  bool
	Skipped bool
	Error   error
}

// Runner builds and executes conformance test cases against a fresh VM
// per case — each case gets its own program image, so no case can
// contaminate another's scope chain.
type Runner struct {
	natives *natives.Registry
}

// NewRunner builds a Runner backed by the standard native registry.
func NewRunner() *Runner {
	return &Runner{natives: natives.Standard()}
}

// Run executes one test case end to end: assemble its program, run it,
// optionally call a named function, and check the expectation.
func (r *Runner) Run(test LoadedTest) TestResult {
	tc := test.Test
	if tc.Skip != "" {
		return TestResult{Test: test, Skipped: true}
	}

	flags := program.DefaultFlags()
	if tc.Flags != nil {
		if tc.Flags.ArityCheck != nil {
			flags.ArityCheck = *tc.Flags.ArityCheck
		}
		if tc.Flags.RemoveUnusedVars != nil {
			flags.RemoveUnusedVars = *tc.Flags.RemoveUnusedVars
		}
	}

	state, err := assemble(tc.Program, flags, r.natives)
	if err != nil {
		return TestResult{Test: test, Error: fmt.Errorf("assemble: %w", err)}
	}

	machine := vm.New(state, r.natives, nil)
	status, runErr := machine.Run()

	var result types.Value
	for i, step := range tc.Calls {
		if runErr != nil {
			break
		}
		args := make([]types.Value, len(step.Args))
		for j, lit := range step.Args {
			v, perr := buildArg(lit)
			if perr != nil {
				return TestResult{Test: test, Error: fmt.Errorf("call step %d arg %d: %w", i, j, perr)}
			}
			args[j] = v
		}
		if step.Function != "" {
			result, runErr = machine.Call(step.Function, args...)
		} else {
			result, runErr = machine.Resolve(result, args...)
		}
	}

	passed, checkErr := r.checkExpectation(tc.Expect, status, result, runErr)
	return TestResult{Test: test, Passed: passed, Error: checkErr}
}

// RunAll executes every loaded test case.
func (r *Runner) RunAll(tests []LoadedTest) []TestResult {
	results := make([]TestResult, len(tests))
	for i, t := range tests {
		results[i] = r.Run(t)
	}
	return results
}

func (r *Runner) checkExpectation(expect Expectation, status int, result types.Value, runErr error) (bool, error) {
	if expect.Error != "" {
		e, ok := errs.As(runErr)
		if !ok {
			return false, fmt.Errorf("expected error %s, got %v", expect.Error, runErr)
		}
		if e.Kind.String() != expect.Error {
			return false, fmt.Errorf("expected error %s, got %s", expect.Error, e.Kind)
		}
		return true, nil
	}

	if runErr != nil {
		return false, fmt.Errorf("unexpected error: %w", runErr)
	}

	if expect.Value != "" {
		want, err := buildArg(expect.Value)
		if err != nil {
			return false, fmt.Errorf("expected value %q: %w", expect.Value, err)
		}
		if !result.Equal(want) {
			return false, fmt.Errorf("expected %s, got %s", want, result)
		}
		return true, nil
	}

	if status != expect.Status {
		return false, fmt.Errorf("expected status %d, got %d", expect.Status, status)
	}
	return true, nil
}

// SummaryStats tallies a batch of results.
type SummaryStats struct {
	Total, Passed, Failed, Skipped int
}

// ComputeStats summarizes a batch of results.
func ComputeStats(results []TestResult) SummaryStats {
	stats := SummaryStats{Total: len(results)}
	for _, res := range results {
		switch {
		case res.Skipped:
			stats.Skipped++
		case res.Passed:
			stats.Passed++
		default:
			stats.Failed++
		}
	}
	return stats
}

// FormatStats renders stats for a test log line.
func FormatStats(stats SummaryStats) string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped (%d total)", stats.Passed, stats.Failed, stats.Skipped, stats.Total)
}
