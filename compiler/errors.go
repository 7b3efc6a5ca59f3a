package compiler

import "fmt"

// CompileError is one parse or semantic error surfaced while compiling a
// script. Where records the token position the same way the original C
// source's errorAt does: empty at a lexer error token, " at end" at EOF,
// or " at '<lexeme>'" anywhere else.
type CompileError struct {
	Line    int
	Where   string
	Message string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, e.Where, e.Message)
}
