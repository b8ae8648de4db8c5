package natives

import (
	"testing"

	"ark/types"
)

// recordingVM is a fake VM.Resolve that applies a plain Go function
// instead of dispatching into bytecode, enough to exercise map's
// re-entry pattern without a real VM.
type recordingVM struct {
	calls int
	fn    func(types.Value) (types.Value, error)
}

func (r *recordingVM) Resolve(callee types.Value, args ...types.Value) (types.Value, error) {
	r.calls++
	return r.fn(args[0])
}

func TestMapAppliesResolvePerElement(t *testing.T) {
	r := NewRegistry()
	registerHigherOrder(r)
	idx, ok := r.IndexOf("map")
	if !ok {
		t.Fatal("map not registered")
	}
	proc, _ := r.Lookup(idx)

	vm := &recordingVM{fn: func(v types.Value) (types.Value, error) {
		return types.NumberAdd(v, types.NewNumber(1))
	}}
	list := types.NewList([]types.Value{types.NewNumber(1), types.NewNumber(2), types.NewNumber(3)})

	got, err := proc([]types.Value{types.NewCProc(0), list}, vm)
	if err != nil {
		t.Fatalf("map: %v", err)
	}
	if vm.calls != 3 {
		t.Fatalf("Resolve was called %d times, want 3", vm.calls)
	}
	elems, ok := got.List()
	if !ok || len(elems) != 3 {
		t.Fatalf("map result = %v, want a 3-element list", got)
	}
	want := []int64{2, 3, 4}
	for i, w := range want {
		if !elems[i].Equal(types.NewNumber(w)) {
			t.Errorf("element %d = %s, want %d", i, elems[i], w)
		}
	}
}

func TestMapRequiresTwoArgs(t *testing.T) {
	r := NewRegistry()
	registerHigherOrder(r)
	idx, _ := r.IndexOf("map")
	proc, _ := r.Lookup(idx)
	if _, err := proc([]types.Value{types.NewCProc(0)}, &recordingVM{}); err == nil {
		t.Fatal("map with one argument should error")
	}
}

func TestMapRequiresListSecondArg(t *testing.T) {
	r := NewRegistry()
	registerHigherOrder(r)
	idx, _ := r.IndexOf("map")
	proc, _ := r.Lookup(idx)
	if _, err := proc([]types.Value{types.NewCProc(0), types.NewNumber(1)}, &recordingVM{}); err == nil {
		t.Fatal("map with a non-List second argument should error")
	}
}
