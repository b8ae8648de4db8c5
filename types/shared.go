package types

import "sync/atomic"

// shared wraps a heap payload (List, String, or Closure contents) behind a
// refcount. Go's garbage collector owns the underlying allocation; the
// counter exists so the data model's "copies bump the shared refcount"
// invariant is an observable fact rather than an implementation detail
// hidden behind the GC. Scopes never reference frames, so these handles
// cannot form reference cycles (see the acyclicity note in the design
// notes on closures).
type shared[T any] struct {
	refs atomic.Int32
	val  T
}

func newShared[T any](v T) *shared[T] {
	s := &shared[T]{val: v}
	s.refs.Store(1)
	return s
}

func (s *shared[T]) retain() *shared[T] {
	if s != nil {
		s.refs.Add(1)
	}
	return s
}

func (s *shared[T]) release() {
	if s != nil {
		s.refs.Add(-1)
	}
}

// RefCount reports the current refcount of a shared handle. Intended for
// tests that assert on retain/release discipline; not part of the VM's
// own control flow.
func (s *shared[T]) RefCount() int32 {
	if s == nil {
		return 0
	}
	return s.refs.Load()
}
