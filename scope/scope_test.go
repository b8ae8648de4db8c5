package scope

import (
	"testing"

	"ark/errs"
	"ark/types"
)

func TestFlatScopeInsertLookupStore(t *testing.T) {
	s := NewScope()
	if err := s.Insert(1, types.NewNumber(10), false); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	v, ok := s.Lookup(1)
	if !ok || !v.Equal(types.NewNumber(10)) {
		t.Fatalf("Lookup(1) = %v, %v, want 10, true", v, ok)
	}
	if ok := s.Store(1, types.NewNumber(20)); !ok {
		t.Fatal("Store on an existing binding should succeed")
	}
	v, _ = s.Lookup(1)
	if !v.Equal(types.NewNumber(20)) {
		t.Fatalf("Lookup(1) after Store = %s, want 20", v)
	}
	if ok := s.Store(2, types.NewNumber(1)); ok {
		t.Fatal("Store on a missing id should report false")
	}
}

func TestScopeRedefinitionFails(t *testing.T) {
	s := NewScope()
	if err := s.Insert(1, types.NewNumber(1), false); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	err := s.Insert(1, types.NewNumber(2), false)
	e, ok := errs.As(err)
	if !ok || e.Kind != errs.Redefinition {
		t.Fatalf("second Insert of the same id = %v, want Redefinition", err)
	}
}

func TestScopePromotesPastThreshold(t *testing.T) {
	s := NewScope()
	for i := uint16(0); i <= flatPromoteThreshold; i++ {
		if err := s.Insert(i, types.NewNumber(int64(i)), false); err != nil {
			t.Fatalf("Insert(%d): %v", i, err)
		}
	}
	// Insert alone never promotes (only autoPromote, called by the
	// Chain, does); confirm every binding is still reachable regardless
	// of backing.
	for i := uint16(0); i <= flatPromoteThreshold; i++ {
		v, ok := s.Lookup(i)
		if !ok || !v.Equal(types.NewNumber(int64(i))) {
			t.Fatalf("Lookup(%d) = %v, %v, want %d, true", i, v, ok, i)
		}
	}

	// Through the Chain, the same number of inserts does promote.
	c := NewChain()
	for i := uint16(0); i <= flatPromoteThreshold; i++ {
		if err := c.InsertInnermost(i, types.NewNumber(int64(i)), false); err != nil {
			t.Fatalf("InsertInnermost(%d): %v", i, err)
		}
	}
	if _, ok := c.Innermost().(*mapScope); !ok {
		t.Fatalf("scope with %d bindings is %T, want *mapScope", flatPromoteThreshold+1, c.Innermost())
	}
	for i := uint16(0); i <= flatPromoteThreshold; i++ {
		v, ok := c.Lookup(i)
		if !ok || !v.Equal(types.NewNumber(int64(i))) {
			t.Fatalf("Lookup(%d) after promotion = %v, %v, want %d, true", i, v, ok, i)
		}
	}
}
