// Package value implements the tagged Value union (§3 Value) and the heap
// object model (§3 Heap object) that every other component in the VM is
// built on: nil, booleans, doubles, and references to heap-allocated
// objects (strings, functions, natives).
package value

import (
	"math"
	"strconv"
)

// Type tags the active variant of a Value.
type Type int

const (
	Nil Type = iota
	Bool
	Number
	ObjType
)

// ObjKind identifies the concrete shape of a heap object.
type ObjKind int

const (
	ObjStringKind ObjKind = iota
	ObjFunctionKind
	ObjNativeKind
)

// Obj is implemented by every heap-allocated object kind. It is kept
// minimal and interface-based (rather than an intrusive struct header with
// a raw next-pointer, as the original C source uses) so that this package
// has no knowledge of the concrete object kinds living above it in
// higher-level packages (object.ObjFunction embeds a *chunk.Chunk, and
// chunk.Chunk itself holds a []Value constant pool -- a Value type that
// referenced chunk.Chunk directly would form an import cycle).
type Obj interface {
	Kind() ObjKind
	// String returns the representation `print` writes for this object.
	String() string
}

// Value is a tagged union: exactly one of the payload fields is
// meaningful, selected by Type.
type Value struct {
	typ    Type
	num    float64
	bl     bool
	object Obj
}

func NilValue() Value           { return Value{typ: Nil} }
func BoolValue(b bool) Value    { return Value{typ: Bool, bl: b} }
func NumberValue(n float64) Value { return Value{typ: Number, num: n} }
func ObjValue(o Obj) Value {
	if o == nil {
		panic("value: ObjValue called with nil object")
	}
	return Value{typ: ObjType, object: o}
}

func (v Value) Type() Type   { return v.typ }
func (v Value) IsNil() bool  { return v.typ == Nil }
func (v Value) IsBool() bool { return v.typ == Bool }
func (v Value) IsNumber() bool { return v.typ == Number }
func (v Value) IsObj() bool  { return v.typ == ObjType }

func (v Value) AsBool() bool   { return v.bl }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsObj() Obj     { return v.object }

func (v Value) IsObjKind(k ObjKind) bool {
	return v.typ == ObjType && v.object.Kind() == k
}

// Falsey reports whether v is falsey: nil and false are falsey, everything
// else -- including 0 and the empty string -- is truthy.
func (v Value) Falsey() bool {
	switch v.typ {
	case Nil:
		return true
	case Bool:
		return !v.bl
	default:
		return false
	}
}

// Equal implements §3's equality rules: nil=nil, bools by value, numbers by
// IEEE ==, objects by reference identity. Since strings are always
// interned (§4.3), string equality collapses into this same reference
// check -- two Values holding *object.ObjString point at the same
// instance if and only if their contents match.
func (v Value) Equal(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case Nil:
		return true
	case Bool:
		return v.bl == other.bl
	case Number:
		return v.num == other.num
	case ObjType:
		return v.object == other.object
	default:
		return false
	}
}

// String formats v the way `print` and the disassembler render it.
func (v Value) String() string {
	switch v.typ {
	case Nil:
		return "nil"
	case Bool:
		if v.bl {
			return "true"
		}
		return "false"
	case Number:
		return formatNumber(v.num)
	case ObjType:
		return v.object.String()
	default:
		return "<invalid value>"
	}
}

func formatNumber(n float64) string {
	if math.IsInf(n, 1) {
		return "inf"
	}
	if math.IsInf(n, -1) {
		return "-inf"
	}
	if math.IsNaN(n) {
		return "nan"
	}
	return strconv.FormatFloat(n, 'g', -1, 64)
}
