package vm

import (
	"ark/errs"
	"ark/types"
)

// Run starts at ip=0 on page 0, pushes the initial global frame (its base
// scope is the chain's bottom scope, created by New), and dispatches
// until HALT (4.6). The global frame is never
// popped by this call — a well-formed top-level page ends in HALT, not
// RET, which is what lets Call and Resolve find top-level bindings (like
// a function defined by a top-level LET) after Run returns.
func (vm *VM) Run() (int, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vm.pushFrame(newFrame(0, 0, 0, 0))
	if err := vm.executeLoop(0); err != nil {
		return 1, err
	}
	return 0, nil
}

// Call looks up name in the program's symbol table, requires its current
// binding to be a PageAddr or Closure, and invokes it with args — the
// call() host entry point from 4.6.
func (vm *VM) Call(name string, args ...types.Value) (types.Value, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	id, ok := vm.state.SymbolID(name)
	if !ok {
		return types.Value{}, errs.Unbound(name)
	}
	callee, ok := vm.chain.Lookup(id)
	if !ok {
		return types.Value{}, errs.Unbound(name)
	}
	switch callee.Kind() {
	case types.KindPageAddr, types.KindClosure:
	default:
		return types.Value{}, errs.NotCallableKind(callee.Kind()).WithSymbol(name)
	}

	return vm.invoke(callee, args)
}

// Resolve invokes callee directly with args, exactly as Call does once a
// callable Value is in hand. It is the re-entry path a native procedure
// uses to call back into script (see natives.VM): it assumes the
// current goroutine is already running inside a locked Run or Call, so
// it does not itself acquire mu — acquiring it here would deadlock
// against the very call that invoked the native procedure.
func (vm *VM) Resolve(callee types.Value, args ...types.Value) (types.Value, error) {
	switch callee.Kind() {
	case types.KindPageAddr, types.KindClosure, types.KindCProc:
	default:
		return types.Value{}, errs.NotCallableKind(callee.Kind())
	}
	return vm.invoke(callee, args)
}

// invoke pushes args and callee onto the current frame's operand stack
// and drives the CALL calling convention to completion, as both Call and
// Resolve describe in 4.6: record the current depth as a watermark,
// invoke the internal CALL, run the dispatch loop until the depth
// returns to the watermark, then pop and return the result.
func (vm *VM) invoke(callee types.Value, args []types.Value) (types.Value, error) {
	f := vm.CurrentFrame()
	if f == nil {
		return types.Value{}, errs.New(errs.MalformedBytecode, "no active frame to call from; Run must execute first")
	}

	watermark := len(vm.Frames)
	vm.hasLastSym = false
	for _, a := range args {
		f.Push(a)
	}
	f.Push(callee)

	if err := vm.call(len(args)); err != nil {
		return types.Value{}, vm.wrap(f, f.IP, err)
	}
	if err := vm.executeLoop(watermark); err != nil {
		return types.Value{}, err
	}

	result, err := f.Pop()
	if err != nil {
		return types.Nil, nil
	}
	return result, nil
}
