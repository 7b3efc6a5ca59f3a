package vm

import "loxvm/object"

// CallFrame pins one activation record: the function being executed, an
// instruction pointer into its chunk, and the base index into the shared
// value stack where this call's window of locals begins (§3 VM state).
type CallFrame struct {
	Function *object.ObjFunction
	IP       int
	Slots    int
}
