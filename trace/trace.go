// Package trace provides optional execution tracing: instruction- and
// call-level log lines tagged with pp:ip, filtered by symbol name glob
// patterns. The lastSymLoaded diagnostic state and the pp:ip annotation
// of errors live in the vm package, not here.
package trace

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Tracer is a filtered, lockable execution tracer, writing lines to an
// io.Writer (stderr by default). Grounded in the teacher's own verb-call
// tracer: same shape (enabled flag, glob filters, a mutex-protected
// writer), repurposed from verb names to symbol names.
type Tracer struct {
	enabled bool
	filters []string
	writer  io.Writer
	mu      sync.Mutex
}

// New creates a Tracer. If writer is nil, os.Stderr is used.
func New(enabled bool, filters []string, writer io.Writer) *Tracer {
	if writer == nil {
		writer = os.Stderr
	}
	return &Tracer{enabled: enabled, filters: filters, writer: writer}
}

// Noop returns a disabled tracer, safe to call unconditionally.
func Noop() *Tracer { return New(false, nil, io.Discard) }

func (t *Tracer) Enabled() bool { return t != nil && t.enabled }

func (t *Tracer) matches(symbol string) bool {
	if len(t.filters) == 0 {
		return true
	}
	for _, pattern := range t.filters {
		if ok, _ := filepath.Match(pattern, symbol); ok {
			return true
		}
	}
	return false
}

// Instruction logs a single dispatch step, if tracing is enabled and the
// symbol matches the configured filters. With filters set, an
// instruction that names no symbol is not logged.
func (t *Tracer) Instruction(page uint16, ip int, opcode string, symbol string) {
	if !t.Enabled() || !t.matches(symbol) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if symbol != "" {
		fmt.Fprintf(t.writer, "%d:%d %s (%s)\n", page, ip, opcode, symbol)
		return
	}
	fmt.Fprintf(t.writer, "%d:%d %s\n", page, ip, opcode)
}

// Call logs a CALL dispatch, mirroring the teacher's VerbCall trace line.
func (t *Tracer) Call(page uint16, ip int, callee string, argc int) {
	if !t.Enabled() || !t.matches(callee) {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.writer, "%d:%d call %s/%d\n", page, ip, callee, argc)
}
