package conformance

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"ark/natives"
	"ark/opcode"
	"ark/program"
	"ark/types"
)

// assemble turns a ProgramSpec into a *program.State. Each page is a
// list of mnemonic lines: "OPCODE operand" for instructions taking one,
// a bare "OPCODE" for those that don't, or "label:" to mark a jump
// target. Operand syntax depends on what the opcode references:
// symbols/CAPTURE by name, LOAD_CONST by numeric index, BUILTIN by
// registry name or numeric index, CALL by numeric argc,
// JUMP/POP_JUMP_IF_TRUE by label name.
func assemble(spec ProgramSpec, flags program.Flags, reg *natives.Registry) (*program.State, error) {
	symbolIndex := make(map[string]uint16, len(spec.Symbols))
	for i, name := range spec.Symbols {
		symbolIndex[name] = uint16(i)
	}

	constants := make([]types.Value, len(spec.Constants))
	for i, c := range spec.Constants {
		v, err := buildConst(c)
		if err != nil {
			return nil, fmt.Errorf("constant %d: %w", i, err)
		}
		constants[i] = v
	}

	pages := make([][]byte, len(spec.Pages))
	for i, lines := range spec.Pages {
		code, err := assemblePage(lines, symbolIndex, reg)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages[i] = code
	}

	return program.New(pages, spec.Symbols, constants, nil, flags), nil
}

func buildConst(c ConstSpec) (types.Value, error) {
	switch c.Kind {
	case "number":
		return types.ParseNumber(c.Value)
	case "string":
		return types.NewString(c.Value), nil
	case "page":
		n, err := strconv.Atoi(c.Value)
		if err != nil {
			return types.Value{}, err
		}
		return types.NewPageAddr(types.PageAddr(n)), nil
	case "list":
		elems, err := parseNumberList(c.Value)
		if err != nil {
			return types.Value{}, err
		}
		return types.NewList(elems), nil
	default:
		return types.Value{}, fmt.Errorf("unknown constant kind %q", c.Kind)
	}
}

// parseNumberList parses a comma-separated list of numeric literals, as
// used by the "list" constant and argument/expectation kind.
func parseNumberList(value string) ([]types.Value, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	parts := strings.Split(value, ",")
	elems := make([]types.Value, len(parts))
	for i, p := range parts {
		v, err := types.ParseNumber(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("list element %d: %w", i, err)
		}
		elems[i] = v
	}
	return elems, nil
}

type asmInstr struct {
	op      opcode.Op
	operand string
	offset  int
	size    int
}

// assemblePage is a two-pass assembler: the first pass lays out
// instructions and records label offsets, the second resolves operands
// (including label references) and emits bytes.
func assemblePage(lines []string, symbols map[string]uint16, reg *natives.Registry) ([]byte, error) {
	var instrs []asmInstr
	labels := make(map[string]int)
	offset := 0

	for _, raw := range lines {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasSuffix(line, ":") {
			labels[strings.TrimSuffix(line, ":")] = offset
			continue
		}
		fields := strings.SplitN(line, " ", 2)
		mnemonic := fields[0]
		operand := ""
		if len(fields) == 2 {
			operand = strings.TrimSpace(fields[1])
		}
		op, ok := mnemonicOp(mnemonic)
		if !ok {
			return nil, fmt.Errorf("unknown mnemonic %q", mnemonic)
		}
		size, _ := opcode.InstructionSize(byte(op))
		instrs = append(instrs, asmInstr{op: op, operand: operand, offset: offset, size: size})
		offset += size
	}

	code := make([]byte, offset)
	for _, ins := range instrs {
		code[ins.offset] = byte(ins.op)
		if ins.size == 1 {
			continue
		}
		imm, err := resolveOperand(ins.op, ins.operand, symbols, labels, reg)
		if err != nil {
			return nil, err
		}
		binary.BigEndian.PutUint16(code[ins.offset+1:ins.offset+3], imm)
	}
	return code, nil
}

func resolveOperand(op opcode.Op, operand string, symbols map[string]uint16, labels map[string]int, reg *natives.Registry) (uint16, error) {
	switch opcode.OperandRef(op) {
	case opcode.RefSymbol:
		id, ok := symbols[operand]
		if !ok {
			return 0, fmt.Errorf("unknown symbol %q", operand)
		}
		return id, nil
	case opcode.RefBuiltin:
		if id, ok := reg.IndexOf(operand); ok {
			return id, nil
		}
		n, err := strconv.Atoi(operand)
		if err != nil {
			return 0, fmt.Errorf("unknown builtin %q", operand)
		}
		return uint16(n), nil
	case opcode.RefJump:
		target, ok := labels[operand]
		if !ok {
			return 0, fmt.Errorf("unknown label %q", operand)
		}
		return uint16(target), nil
	default:
		n, err := strconv.Atoi(operand)
		if err != nil {
			return 0, fmt.Errorf("expected a number, got %q", operand)
		}
		return uint16(n), nil
	}
}

func mnemonicOp(name string) (opcode.Op, bool) {
	switch name {
	case "NOP":
		return opcode.NOP, true
	case "LOAD_SYMBOL":
		return opcode.LOAD_SYMBOL, true
	case "LOAD_CONST":
		return opcode.LOAD_CONST, true
	case "POP_JUMP_IF_TRUE":
		return opcode.POP_JUMP_IF_TRUE, true
	case "JUMP":
		return opcode.JUMP, true
	case "STORE":
		return opcode.STORE, true
	case "LET":
		return opcode.LET, true
	case "MUT":
		return opcode.MUT, true
	case "NEW_SCOPE":
		return opcode.NEW_SCOPE, true
	case "POP_SCOPE":
		return opcode.POP_SCOPE, true
	case "CAPTURE":
		return opcode.CAPTURE, true
	case "BUILTIN":
		return opcode.BUILTIN, true
	case "SAVE_ENV":
		return opcode.SAVE_ENV, true
	case "CALL":
		return opcode.CALL, true
	case "RET":
		return opcode.RET, true
	case "HALT":
		return opcode.HALT, true
	default:
		return 0, false
	}
}

// buildArg parses a "kind:value" literal as used in CallStep.Args and
// Expectation.Value into a types.Value.
func buildArg(literal string) (types.Value, error) {
	switch literal {
	case "nil":
		return types.Nil, nil
	case "true":
		return types.True, nil
	case "false":
		return types.False, nil
	case "undefined":
		return types.Undefined, nil
	}
	kind, value, ok := strings.Cut(literal, ":")
	if !ok {
		return types.Value{}, fmt.Errorf("malformed literal %q", literal)
	}
	switch kind {
	case "number":
		return types.ParseNumber(value)
	case "string":
		return types.NewString(value), nil
	case "list":
		elems, err := parseNumberList(value)
		if err != nil {
			return types.Value{}, err
		}
		return types.NewList(elems), nil
	default:
		return types.Value{}, fmt.Errorf("unknown literal kind %q", kind)
	}
}
