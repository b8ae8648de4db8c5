// Package natives implements the native-procedure (CProc) ABI: the
// uniform calling convention a host-provided function is exposed to
// script through, and a small set of concrete native procedures
// (arithmetic, hashing, encoding, and higher-order helpers) used by the
// conformance suite to exercise CALL on a CProc and host re-entry via
// Resolve.
package natives

import "ark/types"

// VM is the minimal surface a native procedure needs from its caller: the
// ability to invoke a script function (Closure or PageAddr) without
// going through Run/Call, which would deadlock or corrupt state per the
// native-procedure ABI's re-entry rule.
type VM interface {
	Resolve(callee types.Value, args ...types.Value) (types.Value, error)
}

// Proc is a native procedure: it receives its arguments in source order
// and a VM handle for re-entry, and returns a Value or an error. An
// *errs.Error propagates with its own kind; any other error is wrapped
// as a HostError.
type Proc func(args []types.Value, vm VM) (types.Value, error)

// Registry is the ordered table BUILTIN k indexes into.
type Registry struct {
	names []string
	procs []Proc
	index map[string]uint16
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{index: make(map[string]uint16)}
}

// Register appends a named native procedure and returns its index.
func (r *Registry) Register(name string, p Proc) uint16 {
	id := uint16(len(r.procs))
	r.names = append(r.names, name)
	r.procs = append(r.procs, p)
	r.index[name] = id
	return id
}

// Lookup returns the procedure at index, and whether it exists.
func (r *Registry) Lookup(index uint16) (Proc, bool) {
	if int(index) >= len(r.procs) {
		return nil, false
	}
	return r.procs[index], true
}

// IndexOf returns the registry index for a native procedure by name, as
// used by a compiler (or, here, conformance fixtures) emitting BUILTIN
// instructions.
func (r *Registry) IndexOf(name string) (uint16, bool) {
	id, ok := r.index[name]
	return id, ok
}

// Name returns the registered name at index, for diagnostics.
func (r *Registry) Name(index uint16) string {
	if int(index) >= len(r.names) {
		return ""
	}
	return r.names[index]
}

// Len reports how many procedures are registered.
func (r *Registry) Len() int { return len(r.procs) }

// Standard returns a registry pre-populated with arithmetic,
// comparison, hashing, encoding, crypt, and higher-order built-ins —
// enough for the conformance suite and a host that wants a sane default
// without hand-assembling a registry.
func Standard() *Registry {
	r := NewRegistry()
	registerArith(r)
	registerCrypto(r)
	registerHigherOrder(r)
	return r
}
