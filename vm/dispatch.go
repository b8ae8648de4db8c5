package vm

import (
	"encoding/binary"

	"ark/errs"
	"ark/opcode"
	"ark/types"
)

// Step executes a single instruction on the current frame. It reports
// whether HALT was dispatched (the dispatch loop must stop regardless of
// frame depth) and any fatal error, annotated with the pp:ip of the
// instruction and, where known, the offending symbol.
func (vm *VM) Step() (bool, error) {
	f := vm.CurrentFrame()
	page, err := vm.pageCode(f.Page)
	if err != nil {
		return false, vm.wrap(f, f.IP, err)
	}

	if f.IP >= len(page) {
		return false, vm.wrap(f, f.IP, errs.Malformed("instruction pointer ran off the end of the page"))
	}

	opByte := page[f.IP]
	size, ok := opcode.InstructionSize(opByte)
	if !ok {
		return false, vm.wrap(f, f.IP, errs.Malformed("unknown opcode %d", opByte))
	}
	if f.IP+size > len(page) {
		return false, vm.wrap(f, f.IP, errs.Malformed("truncated instruction"))
	}

	ip := f.IP
	op := opcode.Op(opByte)
	var imm uint16
	if size == 3 {
		imm = binary.BigEndian.Uint16(page[ip+1 : ip+3])
	}
	f.IP += size

	vm.tracer.Instruction(uint16(f.Page), ip, op.String(), vm.traceSymbol(op, imm))

	halted := false
	switch op {
	case opcode.NOP:

	case opcode.LOAD_SYMBOL:
		v, ok := vm.chain.Lookup(imm)
		if !ok {
			return false, vm.wrap(f, ip, errs.Unbound(vm.state.SymbolName(imm)))
		}
		f.Push(v)
		vm.lastSymLoaded, vm.hasLastSym = imm, true

	case opcode.LOAD_CONST:
		if int(imm) >= len(vm.state.Constants) {
			return false, vm.wrap(f, ip, errs.Malformed("constant index %d out of range (limit %d)", imm, len(vm.state.Constants)))
		}
		f.Push(vm.state.Constants[imm])

	case opcode.POP_JUMP_IF_TRUE:
		v, err := f.Pop()
		if err != nil {
			return false, vm.wrap(f, ip, err)
		}
		if v.Truthy() {
			f.IP = int(imm)
		}

	case opcode.JUMP:
		f.IP = int(imm)

	case opcode.STORE:
		v, err := f.Pop()
		if err != nil {
			return false, vm.wrap(f, ip, err)
		}
		if !vm.chain.Store(imm, v) {
			return false, vm.wrap(f, ip, errs.Unbound(vm.state.SymbolName(imm)))
		}

	case opcode.LET, opcode.MUT:
		v, err := f.Pop()
		if err != nil {
			return false, vm.wrap(f, ip, err)
		}
		if err := vm.chain.InsertInnermost(imm, v, op == opcode.MUT); err != nil {
			if e, ok := errs.As(err); ok {
				return false, vm.wrap(f, ip, e.WithSymbol(vm.state.SymbolName(imm)))
			}
			return false, vm.wrap(f, ip, err)
		}

	case opcode.NEW_SCOPE:
		vm.chain.PushNew()
		f.ScopeCountToDelete++

	case opcode.POP_SCOPE:
		if f.ScopeCountToDelete == 0 {
			return false, vm.wrap(f, ip, errs.Malformed("POP_SCOPE with no scope to pop"))
		}
		vm.chain.PopN(1)
		f.ScopeCountToDelete--

	case opcode.CAPTURE:
		v, ok := vm.chain.Lookup(imm)
		if !ok {
			return false, vm.wrap(f, ip, errs.Unbound(vm.state.SymbolName(imm)))
		}
		if err := vm.chain.InsertInnermost(imm, v, false); err != nil {
			if e, ok := errs.As(err); ok {
				return false, vm.wrap(f, ip, e.WithSymbol(vm.state.SymbolName(imm)))
			}
			return false, vm.wrap(f, ip, err)
		}

	case opcode.BUILTIN:
		if int(imm) >= vm.natives.Len() {
			return false, vm.wrap(f, ip, errs.Malformed("builtin index %d out of range (limit %d)", imm, vm.natives.Len()))
		}
		f.Push(types.NewCProc(imm))

	case opcode.SAVE_ENV:
		top, err := f.Pop()
		if err != nil {
			return false, vm.wrap(f, ip, err)
		}
		p, ok := top.PageAddr()
		if !ok {
			return false, vm.wrap(f, ip, errs.TypeErrorf("SAVE_ENV expects a PageAddr, got %s", top.Kind()))
		}
		f.Push(types.NewClosure(vm.chain.Snapshot(), p))

	case opcode.CALL:
		if err := vm.call(int(imm)); err != nil {
			return false, vm.wrap(f, ip, err)
		}

	case opcode.RET:
		if err := vm.ret(); err != nil {
			return false, vm.wrap(f, ip, err)
		}

	case opcode.HALT:
		halted = true

	default:
		return false, vm.wrap(f, ip, errs.Malformed("unknown opcode %d", opByte))
	}

	// lastSymLoaded only describes "the callee was reached via a
	// LOAD_SYMBOL" when that LOAD_SYMBOL is the instruction immediately
	// preceding CALL — the calling convention's last push before CALL.
	// Clear it after every other opcode so a symbol loaded for one call
	// (or loaded in a frame this dispatch loop has since returned from,
	// or reached via a native's Resolve re-entry, which never runs this
	// loop at all) can't leak into an unrelated later call's injection.
	// CALL itself already consumed the flag above, inside vm.call.
	if op != opcode.LOAD_SYMBOL {
		vm.hasLastSym = false
	}

	return halted, nil
}

// pageCode bounds-checks p and returns its code bytes.
func (vm *VM) pageCode(p types.PageAddr) ([]byte, error) {
	if !vm.state.PageValid(p) {
		return nil, errs.OutOfRange("page", int(p), len(vm.state.Pages))
	}
	return vm.state.Pages[p], nil
}

// wrap annotates a fatal error with the failing instruction's pp:ip and,
// when the error doesn't already name one and the instruction just
// before the failing one was a LOAD_SYMBOL, that loaded symbol — the
// diagnostic rule from the error-handling section.
func (vm *VM) wrap(f *Frame, ip int, err error) error {
	e, ok := errs.As(err)
	if !ok {
		return err
	}
	if !e.HasLoc {
		e = e.WithLocation(uint16(f.Page), ip)
	}
	if e.Symbol == "" && vm.hasLastSym {
		e = e.WithSymbol(vm.state.SymbolName(vm.lastSymLoaded))
	}
	return e
}

// traceSymbol returns the name an instruction's 16-bit immediate refers
// to, for trace output only; instructions with no symbol/builtin operand
// trace with an empty name.
func (vm *VM) traceSymbol(op opcode.Op, imm uint16) string {
	switch opcode.OperandRef(op) {
	case opcode.RefSymbol:
		return vm.state.SymbolName(imm)
	case opcode.RefBuiltin:
		return vm.natives.Name(imm)
	default:
		return ""
	}
}
