// Package program holds the loaded, immutable program image: pages,
// symbol table, value (constant) table, plugin table, and feature flags.
package program

import "ark/types"

// Flags are the feature toggles named in the data model: at minimum
// function-arity-check and remove-unused-vars.
type Flags struct {
	ArityCheck       bool
	RemoveUnusedVars bool
}

// DefaultFlags matches the reference compiler's defaults: arity checking
// on, unused-variable removal on.
func DefaultFlags() Flags {
	return Flags{ArityCheck: true, RemoveUnusedVars: true}
}

// State is the loaded program image. It is immutable after New returns,
// so a single State may be shared safely by multiple VMs (see the
// concurrency model: the image is read-only, only per-VM execution state
// is exclusive to its owning thread).
type State struct {
	Pages     [][]byte
	Symbols   []string
	Constants []types.Value
	Plugins   []string
	Flags     Flags

	symbolIndex map[string]uint16
}

// New constructs a State from already-decoded sections (used by the
// bytecode reader, and directly by tests/conformance fixtures that
// assemble a program without going through the binary format).
func New(pages [][]byte, symbols []string, constants []types.Value, plugins []string, flags Flags) *State {
	s := &State{Pages: pages, Symbols: symbols, Constants: constants, Plugins: plugins, Flags: flags}
	s.buildIndex()
	return s
}

func (s *State) buildIndex() {
	s.symbolIndex = make(map[string]uint16, len(s.Symbols))
	for i, name := range s.Symbols {
		s.symbolIndex[name] = uint16(i)
	}
}

// SymbolID looks up a symbol's id by name, as used by Call to resolve a
// function name supplied by the host.
func (s *State) SymbolID(name string) (uint16, bool) {
	if s.symbolIndex == nil {
		s.buildIndex()
	}
	id, ok := s.symbolIndex[name]
	return id, ok
}

// SymbolName returns the name for a symbol id, or "" if out of range.
// Used for diagnostics (the offending symbol named in an error).
func (s *State) SymbolName(id uint16) string {
	if int(id) >= len(s.Symbols) {
		return ""
	}
	return s.Symbols[id]
}

// PageValid reports whether p addresses a real page in this image.
func (s *State) PageValid(p types.PageAddr) bool {
	return int(p) < len(s.Pages)
}
