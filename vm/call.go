package vm

import (
	"ark/errs"
	"ark/opcode"
	"ark/scope"
	"ark/types"
)

// call implements `CALL argc` (4.4): the stack top is the callee, the
// argc values below it are the arguments in source order (top-of-stack
// is the last argument).
func (vm *VM) call(argc int) error {
	f := vm.CurrentFrame()
	callee, err := f.Pop()
	if err != nil {
		return err
	}
	args, err := f.PopN(argc)
	if err != nil {
		return err
	}

	switch callee.Kind() {
	case types.KindCProc:
		return vm.callNative(f, callee, args)
	case types.KindPageAddr, types.KindClosure:
		return vm.callScript(f, callee, args)
	default:
		return errs.NotCallableKind(callee.Kind())
	}
}

func (vm *VM) callNative(f *Frame, callee types.Value, args []types.Value) error {
	idx, _ := callee.CProcIndex()
	proc, ok := vm.natives.Lookup(idx)
	if !ok {
		return errs.Malformed("builtin index %d out of range (limit %d)", idx, vm.natives.Len())
	}
	vm.tracer.Call(uint16(f.Page), f.IP, vm.natives.Name(idx), len(args))
	result, err := proc(args, vm)
	if err != nil {
		if _, ok := errs.As(err); ok {
			return err
		}
		return errs.Host(err)
	}
	f.Push(result)
	return nil
}

// callScript implements the PageAddr and Closure branches of 4.4: push a
// new scope (splicing the closure's captured chain first, if any), push
// a new frame whose saved ip/pp point at the instruction after CALL, and
// transfer the arguments so the first ends up deepest on the callee's
// stack.
func (vm *VM) callScript(caller *Frame, callee types.Value, args []types.Value) error {
	var target types.PageAddr
	extraScopes := 0

	switch callee.Kind() {
	case types.KindPageAddr:
		p, _ := callee.PageAddr()
		target = p
	case types.KindClosure:
		capturedAny, p, _ := callee.Closure()
		captured, ok := capturedAny.(*scope.Chain)
		if !ok {
			return errs.Malformed("closure captured chain has unexpected type")
		}
		extraScopes = vm.chain.Splice(captured)
		target = p
	}

	if !vm.state.PageValid(target) {
		return errs.OutOfRange("page", int(target), len(vm.state.Pages))
	}

	if vm.state.Flags.ArityCheck {
		if arity := vm.formalArity(target); arity != len(args) {
			return errs.Arity(arity, len(args))
		}
	}

	caller.ScopeCountToDelete += extraScopes

	vm.chain.PushNew()
	callee2 := newFrame(target, 0, caller.Page, caller.IP)
	for _, a := range args {
		callee2.Push(a)
	}

	// Diagnostic aid for recursion by name: if the callee was reached via
	// a LOAD_SYMBOL immediately preceding this CALL, bind that same
	// symbol to the callee in its own new scope. vm.hasLastSym is cleared
	// by every opcode other than LOAD_SYMBOL (dispatch.go), so a symbol
	// loaded for an unrelated earlier call, or left over from a frame
	// this dispatch loop has since returned from, never reaches here —
	// in particular a host-level Call/Resolve re-entry (vm/host.go),
	// which calls vm.call directly without going through Step, always
	// sees this false. A genuine id collision with a parameter is still
	// possible (the callee's own name shadowing one of its parameters)
	// and is surfaced later, at the MUT that actually redefines it, not
	// here.
	if vm.hasLastSym {
		_ = vm.chain.InsertInnermost(vm.lastSymLoaded, callee, false)
	}

	vm.pushFrame(callee2)
	return nil
}

// formalArity counts the prefix run of MUT instructions at the start of
// page — the callee's declared parameter count, per 4.4.
func (vm *VM) formalArity(page types.PageAddr) int {
	code := vm.state.Pages[page]
	count, ip := 0, 0
	for ip < len(code) {
		b := code[ip]
		if !opcode.IsMut(b) {
			break
		}
		size, ok := opcode.InstructionSize(b)
		if !ok {
			break
		}
		ip += size
		count++
	}
	return count
}

// ret implements RET (4.4): pop the current frame, push its top value
// (or Nil if its operand stack is empty) onto the caller's stack, then
// pop 1+scopeCountToDelete scopes from the chain.
func (vm *VM) ret() error {
	f := vm.popFrame()

	result := types.Nil
	if f.StackSize() > 0 {
		v, err := f.Top()
		if err != nil {
			return err
		}
		result = v
	}

	vm.chain.PopN(1 + f.ScopeCountToDelete)

	if len(vm.Frames) > 0 {
		vm.CurrentFrame().Push(result)
	}
	return nil
}
