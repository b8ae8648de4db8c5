package vm

import (
	"testing"

	"ark/errs"
	"ark/opcode"
	"ark/program"
	"ark/types"
)

// identityProgram builds the same two-page shape as the conformance
// identity fixture: page 0 binds "f" to page 1, page 1 is (fun (x) x).
func identityProgram(flags program.Flags) *VM {
	page0 := code(instr(opcode.LOAD_CONST, 0), instr(opcode.LET, 0), instr(opcode.HALT, 0))
	page1 := code(instr(opcode.MUT, 1), instr(opcode.LOAD_SYMBOL, 1), instr(opcode.RET, 0))
	constants := []types.Value{types.NewPageAddr(1)}
	return newTestVM([][]byte{page0, page1}, []string{"f", "x"}, constants, flags)
}

func TestCallIdentityRoundTrip(t *testing.T) {
	m := identityProgram(program.DefaultFlags())
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got, err := m.Call("f", types.NewNumber(42))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !got.Equal(types.NewNumber(42)) {
		t.Fatalf("Call(f, 42) = %s, want 42", got)
	}
}

func TestCallArityMismatch(t *testing.T) {
	m := identityProgram(program.DefaultFlags())
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	_, err := m.Call("f", types.NewNumber(1), types.NewNumber(2))
	e, ok := errs.As(err)
	if !ok || e.Kind != errs.ArityMismatch {
		t.Fatalf("Call with extra arg = %v, want ArityMismatch", err)
	}
}

func TestCallArityCheckOffDiscardsExtraArg(t *testing.T) {
	flags := program.DefaultFlags()
	flags.ArityCheck = false
	m := identityProgram(flags)
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Args are pushed in source order, so the declared parameter binds
	// to whatever is left on top: the last argument.
	got, err := m.Call("f", types.NewNumber(1), types.NewNumber(2))
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !got.Equal(types.NewNumber(2)) {
		t.Fatalf("Call(f, 1, 2) with arity check off = %s, want 2", got)
	}
}

func TestCallUnboundFunction(t *testing.T) {
	m := identityProgram(program.DefaultFlags())
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	_, err := m.Call("nope")
	e, ok := errs.As(err)
	if !ok || e.Kind != errs.UnboundVariable {
		t.Fatalf("Call(nope) = %v, want UnboundVariable", err)
	}
}

func TestCallNotCallable(t *testing.T) {
	page0 := code(instr(opcode.LOAD_CONST, 0), instr(opcode.LET, 0), instr(opcode.HALT, 0))
	constants := []types.Value{types.NewNumber(9)}
	m := newTestVM([][]byte{page0}, []string{"n"}, constants, program.DefaultFlags())
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	_, err := m.Call("n")
	e, ok := errs.As(err)
	if !ok || e.Kind != errs.NotCallable {
		t.Fatalf("Call(n) where n is a Number = %v, want NotCallable", err)
	}
}

func TestCallNativeProc(t *testing.T) {
	reg := newTestVM(nil, nil, nil, program.DefaultFlags()).natives
	idx, ok := reg.IndexOf("+")
	if !ok {
		t.Fatal("natives registry has no \"+\"")
	}

	page0 := code(instr(opcode.BUILTIN, idx), instr(opcode.LET, 0), instr(opcode.HALT, 0))
	m := newTestVM([][]byte{page0}, []string{"plus"}, nil, program.DefaultFlags())

	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Call only accepts a PageAddr or Closure binding, so the CProc bound
	// to "plus" is invoked through Resolve.
	plus, ok := m.chain.Lookup(0)
	if !ok {
		t.Fatal("plus is not bound after Run")
	}
	got, err := m.Resolve(plus, types.NewNumber(2), types.NewNumber(3))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !got.Equal(types.NewNumber(5)) {
		t.Fatalf("Resolve(plus, 2, 3) = %s, want 5", got)
	}
}

// TestCallMaxArgc exercises argc at the top of its 16-bit range directly
// against the Frame/call() machinery: hand-writing a 65535-parameter
// mnemonic page for the conformance suite wouldn't be a meaningful
// fixture, but the calling convention itself places no ceiling below
// math.MaxUint16 on argc, and this confirms it. Arity checking is off
// here since the declared formal arity (one MUT) intentionally doesn't
// match argc — only the transfer of a large argument list is at stake.
func TestCallMaxArgc(t *testing.T) {
	const argc = 65535

	flags := program.DefaultFlags()
	flags.ArityCheck = false

	page1 := code(instr(opcode.MUT, 0), instr(opcode.LOAD_CONST, 0), instr(opcode.RET, 0))
	page0 := code(instr(opcode.LOAD_CONST, 1), instr(opcode.LET, 1), instr(opcode.HALT, 0))

	constants := []types.Value{types.NewNumber(99), types.NewPageAddr(1)}
	m := newTestVM([][]byte{page0, page1}, []string{"x", "f"}, constants, flags)
	if _, err := m.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	args := make([]types.Value, argc)
	for i := range args {
		args[i] = types.NewNumber(int64(i))
	}
	got, err := m.Call("f", args...)
	if err != nil {
		t.Fatalf("Call with argc=%d: %v", argc, err)
	}
	if !got.Equal(types.NewNumber(99)) {
		t.Fatalf("Call with argc=%d = %s, want 99", argc, got)
	}
}
