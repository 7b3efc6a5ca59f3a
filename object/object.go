// Package object implements the concrete heap object kinds (§3 Heap
// object): interned strings, compiled functions, and native-function
// wrappers. It sits above both value (for the Obj interface and Value
// type) and chunk (ObjFunction owns a *chunk.Chunk), which is why these
// types cannot live in package value itself without creating an import
// cycle back from chunk.
package object

import (
	"fmt"

	"loxvm/chunk"
	"loxvm/value"
)

// ObjString is an immutable, interned byte string with a precomputed
// FNV-1a hash (§4.3). All live strings with equal content share a single
// ObjString instance.
type ObjString struct {
	Chars string
	Hash  uint32
}

func (s *ObjString) Kind() value.ObjKind { return value.ObjStringKind }
func (s *ObjString) String() string      { return s.Chars }

// HashString computes the FNV-1a hash of s exactly as §4.3 specifies:
// hash starts at the 32-bit offset basis, XORs in each byte, then
// multiplies by the FNV prime, wrapping on 32-bit overflow.
func HashString(s string) uint32 {
	var hash uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		hash ^= uint32(s[i])
		hash *= 16777619
	}
	return hash
}

// NewString builds a fresh, un-interned ObjString. Callers that want the
// interning discipline in §4.3 go through table.Intern (or vm.Intern,
// which wraps it) instead of calling this directly.
func NewString(chars string) *ObjString {
	return &ObjString{Chars: chars, Hash: HashString(chars)}
}

// FunctionKind distinguishes the synthetic top-level script function from
// an ordinary user-defined function, mirroring §4.6's SCRIPT/FUNCTION
// compiler-state discriminant.
type FunctionKind int

const (
	KindScript FunctionKind = iota
	KindFunction
)

// ObjFunction is a compiled function: its parameter count, its bytecode,
// and its name (nil for the top-level script, per §3).
type ObjFunction struct {
	Arity  int
	Chunk  *chunk.Chunk
	Name   *ObjString
	FnKind FunctionKind
}

func NewFunction(kind FunctionKind) *ObjFunction {
	return &ObjFunction{Chunk: chunk.New(), FnKind: kind}
}

func (f *ObjFunction) Kind() value.ObjKind { return value.ObjFunctionKind }

func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}

// NativeFn is the signature every native function implements (§3 Native).
type NativeFn func(args []value.Value) (value.Value, error)

// ObjNative wraps a host-supplied Go function so it can live as a Value on
// the VM's stack and in the globals table (§4.8).
type ObjNative struct {
	Fn NativeFn
}

func NewNative(fn NativeFn) *ObjNative {
	return &ObjNative{Fn: fn}
}

func (n *ObjNative) Kind() value.ObjKind { return value.ObjNativeKind }
func (n *ObjNative) String() string      { return "<native fn>" }
