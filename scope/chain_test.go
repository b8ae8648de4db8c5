package scope

import (
	"testing"

	"ark/types"
)

func TestChainLookupWalksOutward(t *testing.T) {
	c := NewChain()
	if err := c.InsertInnermost(1, types.NewNumber(1), false); err != nil {
		t.Fatalf("InsertInnermost: %v", err)
	}
	c.PushNew()
	if _, ok := c.Lookup(1); !ok {
		t.Fatal("Lookup should find a binding in an outer scope")
	}
	if err := c.InsertInnermost(1, types.NewNumber(2), false); err != nil {
		t.Fatalf("InsertInnermost (shadowing): %v", err)
	}
	v, ok := c.Lookup(1)
	if !ok || !v.Equal(types.NewNumber(2)) {
		t.Fatalf("Lookup(1) after shadowing = %v, %v, want 2, true", v, ok)
	}

	c.PopN(1)
	v, ok = c.Lookup(1)
	if !ok || !v.Equal(types.NewNumber(1)) {
		t.Fatalf("Lookup(1) after popping the shadowing scope = %v, %v, want 1, true", v, ok)
	}
}

func TestChainShadowingAcrossScopesAllowed(t *testing.T) {
	c := NewChain()
	if err := c.InsertInnermost(1, types.NewNumber(1), false); err != nil {
		t.Fatalf("InsertInnermost: %v", err)
	}
	c.PushNew()
	// Re-declaring the same id in a new, inner scope is shadowing, not
	// redefinition, and must succeed.
	if err := c.InsertInnermost(1, types.NewNumber(2), false); err != nil {
		t.Fatalf("shadowing in an inner scope should succeed: %v", err)
	}
}

func TestChainRedefinitionWithinSameScopeFails(t *testing.T) {
	c := NewChain()
	if err := c.InsertInnermost(1, types.NewNumber(1), false); err != nil {
		t.Fatalf("InsertInnermost: %v", err)
	}
	if err := c.InsertInnermost(1, types.NewNumber(2), false); err == nil {
		t.Fatal("redefining the same id in the same scope should fail")
	}
}

func TestChainStoreFindsNearestEnclosing(t *testing.T) {
	c := NewChain()
	if err := c.InsertInnermost(1, types.NewNumber(1), true); err != nil {
		t.Fatalf("InsertInnermost: %v", err)
	}
	c.PushNew()
	if ok := c.Store(1, types.NewNumber(9)); !ok {
		t.Fatal("Store should find the binding in the outer scope")
	}
	v, _ := c.Lookup(1)
	if !v.Equal(types.NewNumber(9)) {
		t.Fatalf("Lookup(1) after Store = %s, want 9", v)
	}
}

func TestChainStoreUnboundFails(t *testing.T) {
	c := NewChain()
	if ok := c.Store(1, types.NewNumber(1)); ok {
		t.Fatal("Store on an unbound id should report false")
	}
}

func TestChainSnapshotIsIndependent(t *testing.T) {
	c := NewChain()
	if err := c.InsertInnermost(1, types.NewNumber(1), false); err != nil {
		t.Fatalf("InsertInnermost: %v", err)
	}
	snap := c.Snapshot()

	c.PushNew()
	if err := c.InsertInnermost(2, types.NewNumber(2), false); err != nil {
		t.Fatalf("InsertInnermost: %v", err)
	}

	if _, ok := snap.Lookup(2); ok {
		t.Fatal("a snapshot taken before a push should not see later bindings")
	}
	if v, ok := snap.Lookup(1); !ok || !v.Equal(types.NewNumber(1)) {
		t.Fatalf("snapshot should still see bindings made before it was taken")
	}
}

func TestChainSplice(t *testing.T) {
	captured := NewChain()
	if err := captured.InsertInnermost(1, types.NewNumber(42), false); err != nil {
		t.Fatalf("InsertInnermost: %v", err)
	}
	snap := captured.Snapshot()

	c := NewChain()
	added := c.Splice(snap)
	if added != 1 {
		t.Fatalf("Splice added %d scopes, want 1", added)
	}
	if v, ok := c.Lookup(1); !ok || !v.Equal(types.NewNumber(42)) {
		t.Fatal("a spliced chain's bindings should be visible")
	}
	if c.Depth() != 2 {
		t.Fatalf("Depth() after Splice = %d, want 2", c.Depth())
	}
}

func TestChainPopNReleasesSharedScopes(t *testing.T) {
	c := NewChain()
	c.PushNew()
	c.PushNew()
	if c.Depth() != 3 {
		t.Fatalf("Depth() = %d, want 3", c.Depth())
	}
	c.PopN(2)
	if c.Depth() != 1 {
		t.Fatalf("Depth() after PopN(2) = %d, want 1", c.Depth())
	}
}
