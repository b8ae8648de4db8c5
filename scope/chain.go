package scope

import "ark/types"

// handle is a shared, refcounted reference to a Scope. Frames and
// closures that retain a handle keep its Scope reachable even after the
// frame that created it has returned, which is how closure capture
// survives the call that produced it.
type handle struct {
	scope Scope
	refs  int32
}

func newHandle() *handle { return &handle{scope: NewScope(), refs: 1} }

func (h *handle) retain() *handle { h.refs++; return h }
func (h *handle) release()        { h.refs-- }

// Chain is a stack-ordered sequence of shared Scope handles. The
// topmost (last) entry is the innermost lexical scope; Lookup walks from
// top to bottom and returns the first hit.
type Chain struct {
	handles []*handle
}

// NewChain returns a chain containing a single base scope, used for the
// bottom "global" frame that exists for the lifetime of the VM.
func NewChain() *Chain {
	return &Chain{handles: []*handle{newHandle()}}
}

// PushNew pushes a brand new, empty scope onto the chain.
func (c *Chain) PushNew() {
	c.handles = append(c.handles, newHandle())
}

// PopN pops the top n scopes from the chain. n must not exceed Depth()-0;
// callers are responsible for never popping the bottom global scope away
// entirely during normal execution (RET always leaves at least the
// caller's own base scope in place).
func (c *Chain) PopN(n int) {
	for i := 0; i < n; i++ {
		top := len(c.handles) - 1
		c.handles[top].release()
		c.handles = c.handles[:top]
	}
}

// Depth reports the current number of scopes on the chain.
func (c *Chain) Depth() int { return len(c.handles) }

// Innermost returns the topmost scope, or nil if the chain is empty.
func (c *Chain) Innermost() Scope {
	if len(c.handles) == 0 {
		return nil
	}
	return c.handles[len(c.handles)-1].scope
}

// Lookup walks the chain from innermost to outermost and returns the
// first binding found for id.
func (c *Chain) Lookup(id uint16) (types.Value, bool) {
	for i := len(c.handles) - 1; i >= 0; i-- {
		if v, ok := c.handles[i].scope.Lookup(id); ok {
			return v, true
		}
	}
	return types.Value{}, false
}

// Store finds the nearest enclosing scope holding id and mutates its
// binding in place. Reports false if no binding exists anywhere on the
// chain.
func (c *Chain) Store(id uint16, v types.Value) bool {
	for i := len(c.handles) - 1; i >= 0; i-- {
		if c.handles[i].scope.Store(id, v) {
			return true
		}
	}
	return false
}

// InsertInnermost creates a new binding for id in the topmost scope,
// auto-promoting the scope's backing store if it has grown large. Fails
// with Redefinition if id is already bound in that same scope.
func (c *Chain) InsertInnermost(id uint16, v types.Value, mutable bool) error {
	h := c.handles[len(c.handles)-1]
	if err := h.scope.Insert(id, v, mutable); err != nil {
		return err
	}
	autoPromote(h)
	return nil
}

// Snapshot returns an independent copy of the chain as it exists right
// now, suitable for embedding in a types.Closure. Each retained handle's
// refcount is bumped so the scopes stay alive for as long as the
// resulting snapshot (and any Closure built from it) is reachable.
func (c *Chain) Snapshot() *Chain {
	cp := make([]*handle, len(c.handles))
	for i, h := range c.handles {
		cp[i] = h.retain()
	}
	return &Chain{handles: cp}
}

// Splice appends another chain's handles (as produced by Snapshot) onto
// the top of this chain and returns how many scopes were added — the
// count a Frame records in its scopeCountToDelete so they are popped
// together on return.
func (c *Chain) Splice(snapshot *Chain) int {
	c.handles = append(c.handles, snapshot.handles...)
	return len(snapshot.handles)
}
