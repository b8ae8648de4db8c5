package types

import (
	"fmt"
	"math/big"
	"strings"

	"ark/errs"
)

// PageAddr indexes a compiled function body (a page) in the program
// image. Page 0 is always the top-level.
type PageAddr uint16

// Value is the fixed-size tagged variant described by the data model.
// Small kinds (Number backing pointer aside, which is itself a pointer
// for arbitrary precision; Nil/True/False/Undefined/PageAddr/CProc) are
// cheap to copy; heap kinds (List, String, Closure) share their payload
// through a refcounted handle so copying a Value is always O(1).
type Value struct {
	kind Kind

	num *big.Rat // Number
	str *shared[string]
	list *shared[[]Value]
	page PageAddr // PageAddr
	proc uint16   // CProc: index into a natives.Registry
	clo  *shared[closurePayload]
	user any // User: opaque host object
}

type closurePayload struct {
	chain any // opaque *scope.Chain snapshot; see ScopeChain below
	page  PageAddr
}

// ScopeChain is stored as `any` rather than a concrete *scope.Chain
// because the scope package stores Values and therefore already depends
// on types; types holding a typed reference back to scope would form an
// import cycle. The vm package, which imports both, performs the type
// assertion back to *scope.Chain when it splices a closure's captured
// chain onto the current one.

var (
	Nil       = Value{kind: KindNil}
	True      = Value{kind: KindTrue}
	False     = Value{kind: KindFalse}
	Undefined = Value{kind: KindUndefined}
)

// NewBool returns True or False per b.
func NewBool(b bool) Value {
	if b {
		return True
	}
	return False
}

// NewString creates a new shared String value.
func NewString(s string) Value {
	return Value{kind: KindString, str: newShared(s)}
}

// NewList creates a new shared List value. The slice is retained by
// reference; callers should not mutate it afterwards.
func NewList(elems []Value) Value {
	return Value{kind: KindList, list: newShared(elems)}
}

// NewPageAddr wraps a page index as a Value.
func NewPageAddr(p PageAddr) Value {
	return Value{kind: KindPageAddr, page: p}
}

// NewCProc wraps a natives-registry index as a Value.
func NewCProc(index uint16) Value {
	return Value{kind: KindCProc, proc: index}
}

// NewClosure pairs a captured scope chain snapshot (an opaque
// *scope.Chain) with the page it closes over.
func NewClosure(chain any, page PageAddr) Value {
	return Value{kind: KindClosure, clo: newShared(closurePayload{chain: chain, page: page})}
}

// NewUser wraps an opaque host object.
func NewUser(v any) Value {
	return Value{kind: KindUser, user: v}
}

func (v Value) Kind() Kind { return v.kind }

func (v Value) IsNil() bool       { return v.kind == KindNil }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

// Str returns the underlying string and true if v is a String.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str.val, true
}

// List returns the underlying element slice and true if v is a List.
// The returned slice must not be mutated by the caller.
func (v Value) List() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.list.val, true
}

// PageAddr returns the underlying page index and true if v is a PageAddr.
func (v Value) PageAddr() (PageAddr, bool) {
	if v.kind != KindPageAddr {
		return 0, false
	}
	return v.page, true
}

// CProcIndex returns the natives-registry index and true if v is a CProc.
func (v Value) CProcIndex() (uint16, bool) {
	if v.kind != KindCProc {
		return 0, false
	}
	return v.proc, true
}

// Closure returns the captured chain and page, and true if v is a Closure.
func (v Value) Closure() (any, PageAddr, bool) {
	if v.kind != KindClosure {
		return nil, 0, false
	}
	return v.clo.val.chain, v.clo.val.page, true
}

// User returns the wrapped host object and true if v is a User value.
func (v Value) User() (any, bool) {
	if v.kind != KindUser {
		return nil, false
	}
	return v.user, true
}

// Retain bumps the refcount of v's shared payload, if any. Call this when
// a Value is copied into storage that outlives the copy that produced it
// (e.g. inserted into a scope that a closure may later capture).
func (v Value) Retain() Value {
	switch v.kind {
	case KindString:
		v.str.retain()
	case KindList:
		v.list.retain()
	case KindClosure:
		v.clo.retain()
	}
	return v
}

// Release drops a reference to v's shared payload, if any.
func (v Value) Release() {
	switch v.kind {
	case KindString:
		v.str.release()
	case KindList:
		v.list.release()
	case KindClosure:
		v.clo.release()
	}
}

// Truthy implements the truth rule from the instruction set design:
// False, Nil, empty List, empty String, and zero Number are false; all
// others (including Undefined) are true.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindFalse, KindNil:
		return false
	case KindNumber:
		return v.num.Sign() != 0
	case KindString:
		return v.str.val != ""
	case KindList:
		return len(v.list.val) != 0
	default:
		return true
	}
}

// Equal implements natural equality within a kind; comparisons across
// kinds are never equal (they are reported as a TypeError by Compare,
// but Equal — used for e.g. map-style lookups — simply reports false for
// a kind mismatch rather than erroring, matching the teacher's Value
// interface convention of Equal never failing).
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNil, KindTrue, KindFalse, KindUndefined:
		return true
	case KindNumber:
		return v.num.Cmp(o.num) == 0
	case KindString:
		return v.str.val == o.str.val
	case KindList:
		a, b := v.list.val, o.list.val
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	case KindPageAddr:
		return v.page == o.page
	case KindCProc:
		return v.proc == o.proc
	case KindClosure:
		return v.clo == o.clo
	case KindUser:
		return v.user == o.user
	default:
		return false
	}
}

// Compare implements the ordering used by comparison native procedures:
// numeric ordering for Numbers, lexicographic for Strings and Lists,
// ordering by registry/page index for CProcs/PageAddrs, and structural
// equality for the singleton kinds. A Closure compares equal only to
// itself; comparing two distinct Closures is a TypeError. Mixed-kind
// comparisons fail with a TypeError.
func (v Value) Compare(o Value) (int, error) {
	if v.kind != o.kind {
		return 0, errs.TypeErrorf("cannot compare %s with %s", v.kind, o.kind)
	}
	switch v.kind {
	case KindNil, KindTrue, KindFalse, KindUndefined:
		return 0, nil
	case KindNumber:
		return NumberCmp(v, o)
	case KindString:
		return strings.Compare(v.str.val, o.str.val), nil
	case KindList:
		a, b := v.list.val, o.list.val
		for i := 0; i < len(a) && i < len(b); i++ {
			c, err := a[i].Compare(b[i])
			if err != nil {
				return 0, err
			}
			if c != 0 {
				return c, nil
			}
		}
		return len(a) - len(b), nil
	case KindPageAddr:
		return int(v.page) - int(o.page), nil
	case KindCProc:
		return int(v.proc) - int(o.proc), nil
	case KindClosure:
		if v.clo == o.clo {
			return 0, nil
		}
		return 0, errs.TypeErrorf("closures only compare equal by identity")
	default:
		return 0, errs.TypeErrorf("values of kind %s are not ordered", v.kind)
	}
}

// String renders v for diagnostics and informational output. It is not
// the bytecode wire encoding, except that the bytecode writer stores a
// Number constant as its String() text.
func (v Value) String() string {
	switch v.kind {
	case KindNil:
		return "nil"
	case KindTrue:
		return "true"
	case KindFalse:
		return "false"
	case KindUndefined:
		return "undefined"
	case KindNumber:
		if v.num.IsInt() {
			return v.num.Num().String()
		}
		return v.num.RatString()
	case KindString:
		return fmt.Sprintf("%q", v.str.val)
	case KindList:
		parts := make([]string, len(v.list.val))
		for i, e := range v.list.val {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	case KindPageAddr:
		return fmt.Sprintf("<page %d>", v.page)
	case KindCProc:
		return fmt.Sprintf("<cproc %d>", v.proc)
	case KindClosure:
		return fmt.Sprintf("<closure page=%d>", v.clo.val.page)
	case KindUser:
		return fmt.Sprintf("<user %v>", v.user)
	default:
		return "<invalid>"
	}
}
