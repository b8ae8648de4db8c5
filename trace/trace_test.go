package trace

import (
	"bytes"
	"strings"
	"testing"
)

func TestNoopTracerIsSilent(t *testing.T) {
	tr := Noop()
	if tr.Enabled() {
		t.Fatal("Noop() tracer should report disabled")
	}
	// Instruction/Call on a disabled tracer must not write anywhere;
	// there's no writer to assert against, only that this doesn't panic.
	tr.Instruction(0, 0, "NOP", "")
	tr.Call(0, 0, "f", 1)
}

func TestEnabledTracerWritesInstructionLines(t *testing.T) {
	var buf bytes.Buffer
	tr := New(true, nil, &buf)

	tr.Instruction(0, 4, "LOAD_SYMBOL", "x")
	out := buf.String()
	if !strings.Contains(out, "0:4") || !strings.Contains(out, "LOAD_SYMBOL") || !strings.Contains(out, "x") {
		t.Fatalf("Instruction trace line = %q, missing expected fields", out)
	}
}

func TestFiltersRestrictWhichSymbolsTrace(t *testing.T) {
	var buf bytes.Buffer
	tr := New(true, []string{"fact*"}, &buf)

	tr.Call(0, 0, "fact", 1)
	tr.Call(0, 0, "other", 1)

	out := buf.String()
	if !strings.Contains(out, "fact") {
		t.Fatal("call matching the filter should be traced")
	}
	if strings.Contains(out, "other") {
		t.Fatal("call not matching the filter should not be traced")
	}
}

func TestNilTracerEnabledIsFalse(t *testing.T) {
	var tr *Tracer
	if tr.Enabled() {
		t.Fatal("a nil *Tracer should report disabled, not panic")
	}
}
