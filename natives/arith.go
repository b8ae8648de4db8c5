package natives

import "ark/types"

// registerArith wires the arithmetic and comparison operators as native
// procedures. The instruction set has no dedicated arithmetic opcode —
// only BUILTIN/CALL — so every operator ArkScript source uses is, at the
// bytecode level, a CProc looked up by BUILTIN and invoked by CALL like
// any other native procedure.
func registerArith(r *Registry) {
	r.Register("+", variadicNumeric(types.NumberAdd, types.NewNumber(0)))
	r.Register("-", binaryOrNegate)
	r.Register("*", variadicNumeric(types.NumberMul, types.NewNumber(1)))
	r.Register("/", strictBinaryNumeric(types.NumberDiv))
	r.Register("mod", strictBinaryNumeric(types.NumberMod))
	r.Register("=", compareProc(func(c int) bool { return c == 0 }))
	r.Register("/=", compareProc(func(c int) bool { return c != 0 }))
	r.Register("<", compareProc(func(c int) bool { return c < 0 }))
	r.Register("<=", compareProc(func(c int) bool { return c <= 0 }))
	r.Register(">", compareProc(func(c int) bool { return c > 0 }))
	r.Register(">=", compareProc(func(c int) bool { return c >= 0 }))
	r.Register("not", func(args []types.Value, _ VM) (types.Value, error) {
		if len(args) != 1 {
			return types.Value{}, arityError("not", 1, len(args))
		}
		return types.NewBool(!args[0].Truthy()), nil
	})
}

func variadicNumeric(op func(a, b types.Value) (types.Value, error), identity types.Value) Proc {
	return func(args []types.Value, _ VM) (types.Value, error) {
		if len(args) == 0 {
			return identity, nil
		}
		acc := args[0]
		for _, v := range args[1:] {
			var err error
			acc, err = op(acc, v)
			if err != nil {
				return types.Value{}, err
			}
		}
		return acc, nil
	}
}

// binaryOrNegate implements "-": unary negation with one argument,
// subtraction with two, matching the reference language's operator
// overloading for the minus sign.
func binaryOrNegate(args []types.Value, _ VM) (types.Value, error) {
	switch len(args) {
	case 1:
		return types.NumberNeg(args[0])
	case 2:
		return types.NumberSub(args[0], args[1])
	default:
		return types.Value{}, arityError("-", 2, len(args))
	}
}

func strictBinaryNumeric(op func(a, b types.Value) (types.Value, error)) Proc {
	return func(args []types.Value, _ VM) (types.Value, error) {
		if len(args) != 2 {
			return types.Value{}, arityError("binary operator", 2, len(args))
		}
		return op(args[0], args[1])
	}
}

func compareProc(accept func(cmp int) bool) Proc {
	return func(args []types.Value, _ VM) (types.Value, error) {
		if len(args) != 2 {
			return types.Value{}, arityError("comparison", 2, len(args))
		}
		c, err := args[0].Compare(args[1])
		if err != nil {
			return types.Value{}, err
		}
		return types.NewBool(accept(c)), nil
	}
}
