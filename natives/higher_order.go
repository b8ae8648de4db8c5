package natives

import (
	"ark/errs"
	"ark/types"
)

// registerHigherOrder wires native procedures that call back into
// script through the VM handle's Resolve method — the native re-entry
// path a host must use instead of Run/Call (see the ABI doc in
// registry.go). "map" is end-to-end scenario 5 made concrete: a native
// proc receiving a Closure and a List, invoking Resolve per element.
func registerHigherOrder(r *Registry) {
	r.Register("map", func(args []types.Value, vm VM) (types.Value, error) {
		if len(args) != 2 {
			return types.Value{}, arityError("map", 2, len(args))
		}
		fn := args[0]
		elems, ok := args[1].List()
		if !ok {
			return types.Value{}, errs.TypeErrorf("map expects a List as its second argument, got %s", args[1].Kind())
		}
		out := make([]types.Value, len(elems))
		for i, e := range elems {
			v, err := vm.Resolve(fn, e)
			if err != nil {
				return types.Value{}, err
			}
			out[i] = v
		}
		return types.NewList(out), nil
	})
}
