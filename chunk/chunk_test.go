package chunk

import (
	"testing"

	"loxvm/value"
)

func TestWriteKeepsCodeAndLinesParallel(t *testing.T) {
	c := New()
	c.WriteOp(OpNil, 1)
	c.WriteOp(OpReturn, 1)
	if len(c.Code) != len(c.Lines) {
		t.Fatalf("Code/Lines length mismatch: %d vs %d", len(c.Code), len(c.Lines))
	}
	if c.Code[0] != byte(OpNil) || c.Lines[0] != 1 {
		t.Errorf("unexpected first instruction: %v line %d", c.Code[0], c.Lines[0])
	}
}

func TestAddConstantReturnsDistinctIndices(t *testing.T) {
	c := New()
	i1 := c.AddConstant(value.NumberValue(1))
	i2 := c.AddConstant(value.NumberValue(1))
	if i1 == i2 {
		t.Errorf("expected distinct indices for separately added equal constants, got %d and %d", i1, i2)
	}
	if len(c.Constants) != 2 {
		t.Errorf("expected 2 constants, got %d", len(c.Constants))
	}
}

func TestAddConstantPanicsOverCapacity(t *testing.T) {
	c := New()
	for i := 0; i < MaxConstants; i++ {
		c.AddConstant(value.NumberValue(float64(i)))
	}
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic adding the 257th constant")
		}
	}()
	c.AddConstant(value.NumberValue(999))
}

func TestOpCodeString(t *testing.T) {
	if OpAdd.String() != "OP_ADD" {
		t.Errorf("got %q", OpAdd.String())
	}
	if OpCode(200).String() != "OP_UNKNOWN" {
		t.Errorf("got %q for unknown opcode", OpCode(200).String())
	}
}
