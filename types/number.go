package types

import (
	"fmt"
	"math/big"

	"ark/errs"
)

// NewNumber wraps an int64 as a Number value.
func NewNumber(n int64) Value {
	return Value{kind: KindNumber, num: new(big.Rat).SetInt64(n)}
}

// NewNumberFromRat wraps an existing big.Rat. The Rat is copied so the
// caller may keep mutating their own reference.
func NewNumberFromRat(r *big.Rat) Value {
	return Value{kind: KindNumber, num: new(big.Rat).Set(r)}
}

// ParseNumber parses a decimal literal (as found in the ValTable section
// of a bytecode image) into a Number value.
func ParseNumber(text string) (Value, error) {
	r, ok := new(big.Rat).SetString(text)
	if !ok {
		return Value{}, fmt.Errorf("malformed numeric literal %q", text)
	}
	return Value{kind: KindNumber, num: r}, nil
}

// Rat returns the underlying rational, or nil if v is not a Number.
func (v Value) Rat() *big.Rat {
	if v.kind != KindNumber {
		return nil
	}
	return v.num
}

// NumberAdd, NumberSub, NumberMul, NumberDiv, NumberMod, and NumberNeg
// implement the arithmetic operations named as "enumerated in §4.3" of
// the numeric value contract. They are exposed to script as native
// procedures (see the natives package), not as dedicated opcodes: the
// instruction set has no arithmetic opcode, only BUILTIN/CALL.

func NumberAdd(a, b Value) (Value, error) {
	if a.kind != KindNumber || b.kind != KindNumber {
		return Value{}, errs.TypeErrorf("add expects two numbers, got %s and %s", a.kind, b.kind)
	}
	return NewNumberFromRat(new(big.Rat).Add(a.num, b.num)), nil
}

func NumberSub(a, b Value) (Value, error) {
	if a.kind != KindNumber || b.kind != KindNumber {
		return Value{}, errs.TypeErrorf("sub expects two numbers, got %s and %s", a.kind, b.kind)
	}
	return NewNumberFromRat(new(big.Rat).Sub(a.num, b.num)), nil
}

func NumberMul(a, b Value) (Value, error) {
	if a.kind != KindNumber || b.kind != KindNumber {
		return Value{}, errs.TypeErrorf("mul expects two numbers, got %s and %s", a.kind, b.kind)
	}
	return NewNumberFromRat(new(big.Rat).Mul(a.num, b.num)), nil
}

// NumberDiv divides a by b. Division by zero is reported as an error
// rather than panicking, per the open question in the design notes: this
// implementation chooses to treat a zero divisor as a runtime TypeError
// rather than producing an infinity value, since ArkScript's Number has
// no infinity representation.
func NumberDiv(a, b Value) (Value, error) {
	if a.kind != KindNumber || b.kind != KindNumber {
		return Value{}, errs.TypeErrorf("div expects two numbers, got %s and %s", a.kind, b.kind)
	}
	if b.num.Sign() == 0 {
		return Value{}, errs.DivisionByZero()
	}
	return NewNumberFromRat(new(big.Rat).Quo(a.num, b.num)), nil
}

// NumberMod computes the remainder of a/b for integral operands using
// Euclidean division: the result is always in [0, |b|), regardless of
// either operand's sign, rather than taking the sign of the dividend (as
// Go's own % does) or the divisor.
func NumberMod(a, b Value) (Value, error) {
	if a.kind != KindNumber || b.kind != KindNumber {
		return Value{}, errs.TypeErrorf("mod expects two numbers, got %s and %s", a.kind, b.kind)
	}
	if !a.num.IsInt() || !b.num.IsInt() {
		return Value{}, errs.TypeErrorf("mod requires integral operands")
	}
	bi := b.num.Num()
	if bi.Sign() == 0 {
		return Value{}, errs.DivisionByZero()
	}
	ai := a.num.Num()
	m := new(big.Int).Mod(ai, bi)
	// big.Int.Mod is already Euclidean: m is always non-negative.
	return NewNumberFromRat(new(big.Rat).SetInt(m)), nil
}

func NumberNeg(a Value) (Value, error) {
	if a.kind != KindNumber {
		return Value{}, errs.TypeErrorf("neg expects a number, got %s", a.kind)
	}
	return NewNumberFromRat(new(big.Rat).Neg(a.num)), nil
}

// NumberCmp compares two numbers, following natural ordering regardless
// of magnitude (big.Rat handles arbitrarily large numerators/denominators
// without overflow).
func NumberCmp(a, b Value) (int, error) {
	if a.kind != KindNumber || b.kind != KindNumber {
		return 0, errs.TypeErrorf("compare expects two numbers, got %s and %s", a.kind, b.kind)
	}
	return a.num.Cmp(b.num), nil
}
