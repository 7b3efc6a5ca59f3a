// Package chunk defines the bytecode instruction set (§4.2) and the Chunk
// container the compiler emits into and the VM executes from: a byte
// stream, a parallel per-byte line table, and a constant pool (§3 Chunk,
// §4.1).
package chunk

import "loxvm/value"

// OpCode is a single bytecode instruction tag.
type OpCode byte

const (
	OpConstant OpCode = iota
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpGetLocal
	OpSetLocal
	OpDefineGlobal
	OpGetGlobal
	OpSetGlobal
	OpEqual
	OpGreater
	OpLess
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNot
	OpNegate
	OpPrint
	OpJump
	OpJumpIfFalse
	OpLoop
	OpCall
	OpReturn
)

var names = [...]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpReturn:       "OP_RETURN",
}

func (op OpCode) String() string {
	if int(op) < len(names) && names[op] != "" {
		return names[op]
	}
	return "OP_UNKNOWN"
}

// MaxConstants is the number of distinct constants a single chunk can hold:
// operands referencing the constant pool are one byte wide (§3 Chunk
// invariant).
const MaxConstants = 256

// Chunk is a contiguous bytecode stream with a parallel line table and a
// constant pool, all owned by one Function.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []value.Value
}

// New returns an empty chunk with no preallocated capacity. The original C
// source grows its arrays in powers of two from a floor of 8; here Go's
// append already amortizes growth, so no explicit capacity bookkeeping is
// done.
func New() *Chunk {
	return &Chunk{}
}

// Write appends one raw byte and the source line it came from. Code and
// Lines always stay the same length (§3 Chunk invariant).
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp is a convenience wrapper over Write for emitting an opcode byte.
func (c *Chunk) WriteOp(op OpCode, line int) {
	c.Write(byte(op), line)
}

// AddConstant appends value to the constant pool and returns its index. No
// deduplication is performed: two equal values appended separately get
// distinct indices (§4.1). It panics if the pool would exceed
// MaxConstants, since the compiler is responsible for surfacing that as a
// compile error before it ever happens (see compiler.makeConstant).
func (c *Chunk) AddConstant(v value.Value) int {
	if len(c.Constants) >= MaxConstants {
		panic("chunk: constant pool exceeded MaxConstants")
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1
}

// Len returns the number of bytes emitted so far, used by the compiler to
// compute jump targets and loop-back distances.
func (c *Chunk) Len() int {
	return len(c.Code)
}
