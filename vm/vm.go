// Package vm implements the stack-based virtual machine (§3 VM state,
// §4.7): call frames, the value stack, the interned-string and globals
// tables, and the bytecode dispatch loop.
package vm

import (
	"fmt"
	"io"

	"loxvm/chunk"
	"loxvm/compiler"
	"loxvm/natives"
	"loxvm/object"
	"loxvm/table"
	"loxvm/value"
)

// InterpretResult mirrors the exit-code taxonomy in §6: a caller maps
// these onto process exit codes 0/65/70.
type InterpretResult int

const (
	InterpretOK InterpretResult = iota
	InterpretCompileError
	InterpretRuntimeError
)

// VM is the process-wide interpreter state: it owns the value stack, the
// frame stack, the globals table, the string-interning table, and the
// object heap (§3 VM state, §5 resource model). Unlike the original C
// source's singleton, it is an explicit value a caller constructs and
// threads through Interpret calls (§9 design note).
type VM struct {
	frames   []CallFrame
	stack    []value.Value
	stackTop int

	globals *table.Table
	strings *table.Table
	heap    *value.Heap

	stdout io.Writer
	stderr io.Writer
}

// New returns a VM ready to interpret source, with its one built-in
// native (clock) already registered.
func New(stdout, stderr io.Writer) *VM {
	vm := &VM{
		stack:   make([]value.Value, StackMax),
		frames:  make([]CallFrame, 0, FramesMax),
		globals: table.New(),
		strings: table.New(),
		heap:    value.NewHeap(),
		stdout:  stdout,
		stderr:  stderr,
	}
	natives.Register(vm)
	return vm
}

// Free releases every object the VM's heap tracks (§5 "free_vm walks the
// list once"). Call it once, at teardown.
func (vm *VM) Free() {
	vm.heap.Free()
}

// Intern returns the canonical *object.ObjString for chars, allocating and
// registering a new one if no equal-content string is already live. This
// implements both copy_string and take_string from §4.3: in Go, strings
// are immutable values rather than owned buffers, so there is no separate
// "already own this buffer" variant -- every caller, whether compiling a
// string literal or concatenating two strings at runtime, goes through
// this one path.
func (vm *VM) Intern(chars string) *object.ObjString {
	return table.Intern(vm.strings, vm.heap, chars)
}

// DefineGlobal installs name=v in the globals table, used both by natives
// registration and by OP_DEFINE_GLOBAL.
func (vm *VM) DefineGlobal(name *object.ObjString, v value.Value) {
	vm.globals.Set(name, v)
}

// Track registers o as live on the VM's heap, the same bulk-reclamation
// list every interned string and compiled function is threaded onto (§3
// Heap object). natives.Register uses this to track the ObjNative wrappers
// it allocates.
func (vm *VM) Track(o value.Obj) value.Obj {
	return vm.heap.Track(o)
}

// Interpret compiles and runs source to completion, reporting compile or
// runtime errors to vm.stderr.
func (vm *VM) Interpret(source string) InterpretResult {
	function, errs := compiler.Compile(source, vm.heap, vm.strings)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintln(vm.stderr, e)
		}
		return InterpretCompileError
	}

	// function is already tracked on vm.heap: compiler.Compile tracks every
	// ObjFunction (script and nested) the moment it is created (§3 Heap
	// object).
	vm.push(value.ObjValue(function))
	vm.frames = append(vm.frames, CallFrame{Function: function, IP: 0, Slots: 0})

	if err := vm.run(); err != nil {
		fmt.Fprintln(vm.stderr, err)
		vm.resetStack()
		return InterpretRuntimeError
	}
	return InterpretOK
}

func (vm *VM) currentFrame() *CallFrame {
	return &vm.frames[len(vm.frames)-1]
}

func (vm *VM) run() error {
	frame := vm.currentFrame()

	readByte := func() byte {
		b := frame.Function.Chunk.Code[frame.IP]
		frame.IP++
		return b
	}
	readShort := func() int {
		hi := frame.Function.Chunk.Code[frame.IP]
		lo := frame.Function.Chunk.Code[frame.IP+1]
		frame.IP += 2
		return int(hi)<<8 | int(lo)
	}
	readConstant := func() value.Value {
		return frame.Function.Chunk.Constants[readByte()]
	}
	readString := func() *object.ObjString {
		return readConstant().AsObj().(*object.ObjString)
	}

	for {
		op := chunk.OpCode(readByte())

		switch op {
		case chunk.OpConstant:
			vm.push(readConstant())

		case chunk.OpNil:
			vm.push(value.NilValue())
		case chunk.OpTrue:
			vm.push(value.BoolValue(true))
		case chunk.OpFalse:
			vm.push(value.BoolValue(false))
		case chunk.OpPop:
			vm.pop()

		case chunk.OpGetLocal:
			slot := int(readByte())
			vm.push(vm.stack[frame.Slots+slot])
		case chunk.OpSetLocal:
			slot := int(readByte())
			vm.stack[frame.Slots+slot] = vm.peek(0)

		case chunk.OpDefineGlobal:
			name := readString()
			vm.globals.Set(name, vm.peek(0))
			vm.pop()
		case chunk.OpGetGlobal:
			name := readString()
			v, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError(frame, "undefined variable '%s'", name.Chars)
			}
			vm.push(v)
		case chunk.OpSetGlobal:
			name := readString()
			if vm.globals.Set(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeError(frame, "undefined variable '%s'", name.Chars)
			}

		case chunk.OpEqual:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.BoolValue(a.Equal(b)))
		case chunk.OpGreater:
			if err := vm.binaryNumeric(frame, func(a, b float64) value.Value {
				return value.BoolValue(a > b)
			}); err != nil {
				return err
			}
		case chunk.OpLess:
			if err := vm.binaryNumeric(frame, func(a, b float64) value.Value {
				return value.BoolValue(a < b)
			}); err != nil {
				return err
			}

		case chunk.OpAdd:
			if err := vm.add(frame); err != nil {
				return err
			}
		case chunk.OpSubtract:
			if err := vm.binaryNumeric(frame, func(a, b float64) value.Value {
				return value.NumberValue(a - b)
			}); err != nil {
				return err
			}
		case chunk.OpMultiply:
			if err := vm.binaryNumeric(frame, func(a, b float64) value.Value {
				return value.NumberValue(a * b)
			}); err != nil {
				return err
			}
		case chunk.OpDivide:
			if err := vm.binaryNumeric(frame, func(a, b float64) value.Value {
				return value.NumberValue(a / b)
			}); err != nil {
				return err
			}

		case chunk.OpNot:
			vm.push(value.BoolValue(vm.pop().Falsey()))
		case chunk.OpNegate:
			if !vm.peek(0).IsNumber() {
				return vm.runtimeError(frame, "operand must be a number")
			}
			vm.push(value.NumberValue(-vm.pop().AsNumber()))

		case chunk.OpPrint:
			fmt.Fprintln(vm.stdout, vm.pop().String())

		case chunk.OpJumpIfFalse:
			offset := readShort()
			if vm.peek(0).Falsey() {
				frame.IP += offset
			}
		case chunk.OpJump:
			offset := readShort()
			frame.IP += offset
		case chunk.OpLoop:
			offset := readShort()
			frame.IP -= offset

		case chunk.OpCall:
			argCount := int(readByte())
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return err
			}
			frame = vm.currentFrame()

		case chunk.OpReturn:
			result := vm.pop()
			vm.frames = vm.frames[:len(vm.frames)-1]
			if len(vm.frames) == 0 {
				vm.pop() // the top-level script function
				return nil
			}
			vm.stackTop = frame.Slots
			vm.push(result)
			frame = vm.currentFrame()

		default:
			return vm.runtimeError(frame, "unknown opcode %d", op)
		}
	}
}

func (vm *VM) binaryNumeric(frame *CallFrame, op func(a, b float64) value.Value) error {
	if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
		return vm.runtimeError(frame, "operands must be numbers")
	}
	b := vm.pop().AsNumber()
	a := vm.pop().AsNumber()
	vm.push(op(a, b))
	return nil
}

func (vm *VM) add(frame *CallFrame) error {
	bothStrings := vm.peek(0).IsObjKind(value.ObjStringKind) && vm.peek(1).IsObjKind(value.ObjStringKind)
	if bothStrings {
		b := vm.pop().AsObj().(*object.ObjString)
		a := vm.pop().AsObj().(*object.ObjString)
		vm.push(value.ObjValue(vm.Intern(a.Chars + b.Chars)))
		return nil
	}
	if vm.peek(0).IsNumber() && vm.peek(1).IsNumber() {
		b := vm.pop().AsNumber()
		a := vm.pop().AsNumber()
		vm.push(value.NumberValue(a + b))
		return nil
	}
	return vm.runtimeError(frame, "operands must be two numbers or two strings")
}

// callValue implements §4.7's CALL semantics for both compiled functions
// and natives.
func (vm *VM) callValue(callee value.Value, argCount int) error {
	if !callee.IsObj() {
		return vm.runtimeError(vm.currentFrame(), "can only call functions")
	}
	switch obj := callee.AsObj().(type) {
	case *object.ObjFunction:
		return vm.call(obj, argCount)
	case *object.ObjNative:
		args := vm.stack[vm.stackTop-argCount : vm.stackTop]
		result, err := obj.Fn(args)
		if err != nil {
			return vm.runtimeError(vm.currentFrame(), "%s", err.Error())
		}
		vm.stackTop -= argCount + 1
		vm.push(result)
		return nil
	default:
		return vm.runtimeError(vm.currentFrame(), "can only call functions")
	}
}

func (vm *VM) call(function *object.ObjFunction, argCount int) error {
	if argCount != function.Arity {
		return vm.runtimeError(vm.currentFrame(), "expected %d arguments but got %d", function.Arity, argCount)
	}
	if len(vm.frames) >= FramesMax {
		return vm.runtimeError(vm.currentFrame(), "stack overflow")
	}
	vm.frames = append(vm.frames, CallFrame{
		Function: function,
		IP:       0,
		Slots:    vm.stackTop - argCount - 1,
	})
	return nil
}

// runtimeError builds a RuntimeError carrying the failing frame's current
// source line and a frame-by-frame trace of every active call (§7).
func (vm *VM) runtimeError(frame *CallFrame, format string, args ...interface{}) error {
	line := 0
	if frame != nil && frame.IP-1 >= 0 && frame.IP-1 < len(frame.Function.Chunk.Lines) {
		line = frame.Function.Chunk.Lines[frame.IP-1]
	}

	trace := make([]string, 0, len(vm.frames))
	for i := len(vm.frames) - 1; i >= 0; i-- {
		f := vm.frames[i]
		name := "<script>"
		if f.Function.Name != nil {
			name = f.Function.Name.Chars + "()"
		}
		ln := 0
		if f.IP-1 >= 0 && f.IP-1 < len(f.Function.Chunk.Lines) {
			ln = f.Function.Chunk.Lines[f.IP-1]
		}
		trace = append(trace, fmt.Sprintf("[line %d] in %s", ln, name))
	}

	return &RuntimeError{
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Trace:   trace,
	}
}
