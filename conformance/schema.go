// Package conformance is a small YAML-driven test harness: each fixture
// hand-assembles a tiny program image (symbols, constants, and one
// mnemonic instruction stream per page) and declares what running or
// calling into it should produce. Grounded on the teacher's own
// YAML-suite conformance package (same yaml.v3-backed TestSuite/TestCase
// shape, same loader-then-runner split), repointed from MOO source
// snippets run through a full evaluator to ArkScript bytecode pages run
// through this module's VM.
package conformance

// TestSuite is the contents of one YAML fixture file: a named group of
// cases exercising one corner of the VM.
type TestSuite struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description,omitempty"`
	Tests       []TestCase `yaml:"tests"`
}

// TestCase assembles a program from Program and declares the expected
// outcome, either of Run() alone or of a Call made after Run().
type TestCase struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Skip        string      `yaml:"skip,omitempty"`
	Flags       *FlagsSpec  `yaml:"flags,omitempty"`
	Program     ProgramSpec `yaml:"program"`
	Calls       []CallStep  `yaml:"calls,omitempty"`
	Expect      Expectation `yaml:"expect"`
}

// FlagsSpec overrides program.DefaultFlags() for this case; nil fields
// keep the default.
type FlagsSpec struct {
	ArityCheck       *bool `yaml:"arity_check,omitempty"`
	RemoveUnusedVars *bool `yaml:"remove_unused_vars,omitempty"`
}

// ProgramSpec is the assembler source for a program image.
type ProgramSpec struct {
	Symbols   []string    `yaml:"symbols,omitempty"`
	Constants []ConstSpec `yaml:"constants,omitempty"`
	Pages     [][]string  `yaml:"pages"`
}

// ConstSpec is one entry of the program's constant table.
type ConstSpec struct {
	Kind  string `yaml:"kind"`  // number|string|page|list
	Value string `yaml:"value"`
}

// CallStep, when present, is one host-level invocation made after Run()
// completes, instead of checking Run()'s own exit status. The first step
// of a Calls list must name a top-level Function; later steps may omit
// Function to mean "resolve the previous step's result" (vm.Resolve),
// which is how a fixture drives a returned closure, e.g. the result of
// calling a closure-maker.
type CallStep struct {
	Function string   `yaml:"function,omitempty"`
	Args     []string `yaml:"args,omitempty"` // "number:5", "string:hi"
}

// Expectation describes the expected outcome. At most one of Value or
// Error should be set; when neither is, Status is compared with Run's
// exit status.
type Expectation struct {
	Status int    `yaml:"status,omitempty"`
	Value  string `yaml:"value,omitempty"` // "number:120", "nil", "true", ...
	Error  string `yaml:"error,omitempty"` // an errs.Kind name
}
