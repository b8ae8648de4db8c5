// Package scope implements the symbol-id → Value bindings and the
// lexically-scoped chain discipline that frames and closures share: a
// Scope is a small associative map from a 16-bit symbol id to a Value;
// a Chain is a stack of shared Scope handles, innermost on top.
package scope

import (
	"sort"

	"ark/errs"
	"ark/types"
)

// flatPromoteThreshold is the largest binding count a scope keeps in its
// sorted-slice backing; once it holds more, it switches to a map, per
// the "most scopes hold ≤ 8 bindings" guidance.
const flatPromoteThreshold = 8

type binding struct {
	id      uint16
	value   types.Value
	mutable bool
}

// Scope is a mapping from symbol id to Value supporting insert, lookup,
// and update of an existing binding. Two backings are provided behind this interface:
// flatScope (sorted slice, used for small scopes) and mapScope (used once
// a scope grows past flatPromoteThreshold bindings).
type Scope interface {
	// Insert creates a new binding. Re-binding an id already present in
	// this scope fails with Redefinition.
	Insert(id uint16, v types.Value, mutable bool) error
	// Lookup returns the binding for id in this scope only (the Chain is
	// responsible for walking outward).
	Lookup(id uint16) (types.Value, bool)
	// Store mutates an existing binding's value in place. Returns false
	// if no binding for id exists in this scope.
	Store(id uint16, v types.Value) bool
	// Len reports the number of bindings currently held.
	Len() int
}

// NewScope returns a fresh, empty scope using the small-N backing.
func NewScope() Scope {
	return &flatScope{}
}

// flatScope is a sorted slice of bindings; lookup is a binary search.
// Deterministic and allocation-light for the common case of a handful of
// parameters and LET/MUT bindings per scope.
type flatScope struct {
	bindings []binding
}

func (s *flatScope) find(id uint16) (int, bool) {
	i := sort.Search(len(s.bindings), func(i int) bool { return s.bindings[i].id >= id })
	if i < len(s.bindings) && s.bindings[i].id == id {
		return i, true
	}
	return i, false
}

func (s *flatScope) Insert(id uint16, v types.Value, mutable bool) error {
	i, found := s.find(id)
	if found {
		return errs.Redefined("")
	}
	s.bindings = append(s.bindings, binding{})
	copy(s.bindings[i+1:], s.bindings[i:])
	s.bindings[i] = binding{id: id, value: v, mutable: mutable}
	return nil
}

func (s *flatScope) Lookup(id uint16) (types.Value, bool) {
	if i, ok := s.find(id); ok {
		return s.bindings[i].value, true
	}
	return types.Value{}, false
}

func (s *flatScope) Store(id uint16, v types.Value) bool {
	if i, ok := s.find(id); ok {
		s.bindings[i].value = v
		return true
	}
	return false
}

func (s *flatScope) Len() int { return len(s.bindings) }

// mapScope backs scopes that have grown past the small-N threshold.
type mapScope struct {
	bindings map[uint16]*binding
}

func newMapScope(from *flatScope) *mapScope {
	m := &mapScope{bindings: make(map[uint16]*binding, len(from.bindings)*2)}
	for i := range from.bindings {
		b := from.bindings[i]
		m.bindings[b.id] = &b
	}
	return m
}

func (s *mapScope) Insert(id uint16, v types.Value, mutable bool) error {
	if _, found := s.bindings[id]; found {
		return errs.Redefined("")
	}
	s.bindings[id] = &binding{id: id, value: v, mutable: mutable}
	return nil
}

func (s *mapScope) Lookup(id uint16) (types.Value, bool) {
	if b, ok := s.bindings[id]; ok {
		return b.value, true
	}
	return types.Value{}, false
}

func (s *mapScope) Store(id uint16, v types.Value) bool {
	if b, ok := s.bindings[id]; ok {
		b.value = v
		return true
	}
	return false
}

func (s *mapScope) Len() int { return len(s.bindings) }

// autoPromote is called by Chain.InsertInnermost after each Insert so a
// flatScope transparently becomes a mapScope once it outgrows the small-N
// threshold. Chain holds Scope
// values through a *handle indirection (see chain.go) so the swap is
// invisible to callers.
func autoPromote(h *handle) {
	if fs, ok := h.scope.(*flatScope); ok && fs.Len() > flatPromoteThreshold {
		h.scope = newMapScope(fs)
	}
}
