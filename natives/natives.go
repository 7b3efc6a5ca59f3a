// Package natives registers the VM's native-function extension point
// (§4.8, C9). It is deliberately tiny and separate from package vm, the
// way Dev-Dami-DYMS-Lang's libraries package registers host functions into
// its runtime rather than hardcoding them into the interpreter itself.
package natives

import (
	"time"

	"loxvm/object"
	"loxvm/value"
)

// Registrar is the subset of VM behavior natives.Register needs: interning
// a name, tracking a heap object, and defining a global. Kept as an
// interface so this package does not import vm (vm already imports natives
// to call Register at startup).
type Registrar interface {
	Intern(chars string) *object.ObjString
	Track(o value.Obj) value.Obj
	DefineGlobal(name *object.ObjString, v value.Value)
}

// Register installs every built-in native function as a global. Per §4.8,
// the name string and native wrapper are interned/allocated before the
// global table insertion happens, so that if the insertion resizes the
// globals table nothing transiently becomes unreachable.
func Register(vm Registrar) {
	defineNative(vm, "clock", clockNative)
}

func defineNative(vm Registrar, name string, fn object.NativeFn) {
	nameStr := vm.Intern(name)
	native := vm.Track(object.NewNative(fn)).(*object.ObjNative)
	vm.DefineGlobal(nameStr, value.ObjValue(native))
}

// clockNative returns the number of seconds since the Unix epoch as a
// Value, the one standard-library surface §1 allows.
func clockNative(args []value.Value) (value.Value, error) {
	return value.NumberValue(float64(time.Now().UnixNano()) / 1e9), nil
}
