// Package vm implements the dispatch loop: the stack of Frames, the
// lexical Scope chain, instruction-level execution of the opcode set,
// the CProc/PageAddr/Closure calling convention, and the host entry
// points (Run, Call, Resolve) used to drive a loaded program image.
// Grounded on the teacher's own vm.VM: a Frames/FP call stack, a
// Step/Execute dispatch pair, and an executeLoop shared by every entry
// point, repurposed from MOO's tree-walking opcode set to ArkScript's.
package vm

import (
	"sync"

	"ark/natives"
	"ark/program"
	"ark/scope"
	"ark/trace"
)

// VM is one executing instance of a loaded program image. Run and Call
// serialize on mu for the duration of the outer call; Resolve does not
// acquire mu itself because it is only ever invoked reentrantly, from a
// native procedure running synchronously inside an already-locked Run or
// Call (see host.go).
type VM struct {
	state   *program.State
	natives *natives.Registry
	tracer  *trace.Tracer
	chain   *scope.Chain
	Frames  []*Frame

	lastSymLoaded uint16
	hasLastSym    bool

	mu sync.Mutex
}

// New constructs a VM bound to a program image, a native-procedure
// registry, and an optional tracer (trace.Noop() if nil). The VM starts
// with no frames and a chain holding only the base scope; Run pushes the
// initial global frame on top of it.
func New(state *program.State, reg *natives.Registry, tracer *trace.Tracer) *VM {
	if tracer == nil {
		tracer = trace.Noop()
	}
	return &VM{
		state:   state,
		natives: reg,
		tracer:  tracer,
		chain:   scope.NewChain(),
	}
}

// CurrentFrame returns the innermost active frame, or nil if none.
func (vm *VM) CurrentFrame() *Frame {
	if len(vm.Frames) == 0 {
		return nil
	}
	return vm.Frames[len(vm.Frames)-1]
}

func (vm *VM) pushFrame(f *Frame) { vm.Frames = append(vm.Frames, f) }

func (vm *VM) popFrame() *Frame {
	n := len(vm.Frames)
	f := vm.Frames[n-1]
	vm.Frames = vm.Frames[:n-1]
	return f
}

// Depth reports the current frame stack depth.
func (vm *VM) Depth() int { return len(vm.Frames) }

// executeLoop steps the VM until either HALT is dispatched or the frame
// depth falls to watermark — the frame-watermark exit condition 4.4 and
// 4.6 describe, shared by run(), call(), and resolve().
func (vm *VM) executeLoop(watermark int) error {
	for len(vm.Frames) > watermark {
		halted, err := vm.Step()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
	return nil
}
