package vm

import (
	"encoding/binary"

	"ark/natives"
	"ark/opcode"
	"ark/program"
	"ark/types"
)

// instr encodes a single instruction: just the opcode byte for ops with
// no operand, or opcode+big-endian-u16 for ops that take one.
func instr(op opcode.Op, imm uint16) []byte {
	size, _ := opcode.InstructionSize(byte(op))
	b := make([]byte, size)
	b[0] = byte(op)
	if size == 3 {
		binary.BigEndian.PutUint16(b[1:3], imm)
	}
	return b
}

// code concatenates a sequence of encoded instructions into one page.
func code(instrs ...[]byte) []byte {
	var out []byte
	for _, i := range instrs {
		out = append(out, i...)
	}
	return out
}

func newTestVM(pages [][]byte, symbols []string, constants []types.Value, flags program.Flags) *VM {
	state := program.New(pages, symbols, constants, nil, flags)
	return New(state, natives.Standard(), nil)
}
