// Package bytecode implements the reader and writer for ArkScript's
// compiled image format: a four-byte magic, a three-byte version, an
// eight-byte timestamp, then SymTable/ValTable/Plugins sections and one
// or more Code sections (the first is page 0, the top-level), all
// big-endian. This mirrors the binary-format style used elsewhere in the
// VM corpus (magic number, version, length-prefixed sections encoded
// with encoding/binary) rather than a text or self-describing format.
package bytecode

import "ark/types"

// Magic is the four-byte file signature, including the trailing NUL.
var Magic = [4]byte{'a', 'r', 'k', 0}

// Section marker bytes.
const (
	sectionSymTable byte = 0x01
	sectionValTable byte = 0x02
	sectionPlugins  byte = 0x03
	sectionCode     byte = 0x04
)

// Value kind tags used only within the ValTable section encoding (§6):
// these are independent of types.Kind because the on-disk constant table
// only ever holds Number, String, or PageAddr entries.
const (
	valKindNumber byte = 1
	valKindString byte = 2
	valKindPage   byte = 3
)

// Version is a 3-component, big-endian-encoded version tag.
type Version struct {
	Major, Minor, Patch byte
}

// Image is the fully-decoded contents of a bytecode file, before it is
// wrapped into a *program.State (kept separate so the reader has no
// dependency on the program package's symbol-index bookkeeping).
type Image struct {
	Version   Version
	Timestamp uint64
	Symbols   []string
	Constants []types.Value
	Plugins   []string
	Pages     [][]byte
}
