// Package compiler implements the single-pass Pratt compiler (§4.5, §4.6):
// it pulls tokens from a lexer one at a time and emits bytecode directly,
// with no intermediate AST. Expressions are parsed by precedence climbing
// over the rule table in rules.go; statements and declarations are
// recursive-descent. Each user-defined function gets its own Compiler,
// linked to its enclosing one, the way the original C source nests a
// Compiler struct per function being compiled.
package compiler

import (
	"fmt"
	"strconv"

	"loxvm/chunk"
	"loxvm/lexer"
	"loxvm/object"
	"loxvm/table"
	"loxvm/token"
	"loxvm/value"
)

const maxLocals = 256
const maxParameters = 255

// parser holds the state shared by every Compiler in a compile: the token
// stream, the lookahead pair, and error/panic-mode bookkeeping (§4.6). It
// also carries the heap and string table every nested Compiler interns
// identifiers and string literals into, so that a name used in a nested
// function and the same name used at the top level intern to one
// instance.
type parser struct {
	lex     *lexer.Lexer
	current token.Token
	prev    token.Token

	hadError  bool
	panicMode bool
	errors    []error

	heap    *value.Heap
	strings *table.Table
}

// local is one entry in a Compiler's local-variable stack (§4.6). depth
// is -1 while its initializer is still being compiled, so a declaration
// like `var a = a;` can be rejected: the name resolves to itself before
// it has a value.
type local struct {
	name  string
	depth int
}

// Compiler compiles one function body (or the implicit top-level script)
// to bytecode. enclosing links to the Compiler for the function
// textually containing this one, mirroring §4.6's compiler-per-function
// design; resolveLocal only ever looks within the current Compiler's own
// locals, since this language's functions close over globals only, never
// over enclosing locals (§1 Non-goals).
type Compiler struct {
	parser    *parser
	enclosing *Compiler

	function *object.ObjFunction
	fnKind   object.FunctionKind

	locals     []local
	scopeDepth int
}

// Compile compiles source into a callable top-level function, ready for
// the VM to push and invoke as its initial call frame. On any compile
// error it returns a nil function and the full list of errors collected
// during panic-mode recovery (§4.6, §6).
func Compile(source string, heap *value.Heap, strings *table.Table) (*object.ObjFunction, []error) {
	p := &parser{lex: lexer.New(source), heap: heap, strings: strings}
	c := newCompiler(p, nil, object.KindScript, "")

	advance(c)
	for !check(c, token.EOF) {
		declaration(c)
	}
	consume(c, token.EOF, "expect end of expression")

	function := endCompiler(c)
	if p.hadError {
		return nil, p.errors
	}
	return function, nil
}

func newCompiler(p *parser, enclosing *Compiler, kind object.FunctionKind, name string) *Compiler {
	c := &Compiler{
		parser:    p,
		enclosing: enclosing,
		function:  object.NewFunction(kind),
		fnKind:    kind,
	}
	// Every compiled function -- the top-level script and every nested
	// `fun` -- is a heap object and belongs on the one list the VM bulk-frees
	// from at teardown (§3 Heap object), the same as interned strings.
	p.heap.Track(c.function)
	if kind != object.KindScript {
		c.function.Name = table.Intern(p.strings, p.heap, name)
	}
	// Slot 0 is reserved for the function being called itself; it is
	// never resolved by name (§4.6).
	c.locals = append(c.locals, local{name: "", depth: 0})
	return c
}

func currentChunk(c *Compiler) *chunk.Chunk {
	return c.function.Chunk
}

// --- token stream -----------------------------------------------------

func advance(c *Compiler) {
	p := c.parser
	p.prev = p.current
	for {
		p.current = p.lex.NextToken()
		if p.current.Type != token.ERROR {
			break
		}
		errorAtCurrent(c, p.current.Lexeme)
	}
}

func check(c *Compiler, t token.Type) bool {
	return c.parser.current.Type == t
}

func match(c *Compiler, t token.Type) bool {
	if !check(c, t) {
		return false
	}
	advance(c)
	return true
}

func consume(c *Compiler, t token.Type, message string) {
	if check(c, t) {
		advance(c)
		return
	}
	errorAtCurrent(c, message)
}

// --- error reporting ----------------------------------------------------

func errorAtCurrent(c *Compiler, message string) {
	errorAt(c, c.parser.current, message)
}

func errorAtPrevious(c *Compiler, message string) {
	errorAt(c, c.parser.prev, message)
}

// errorAt records a compile error at tok, unless the parser is already in
// panic mode -- §4.6 asks for exactly one reported error per run of bad
// tokens, with the rest swallowed until synchronize finds a statement
// boundary to resume at.
func errorAt(c *Compiler, tok token.Token, message string) {
	p := c.parser
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.hadError = true

	where := fmt.Sprintf(" at '%s'", tok.Lexeme)
	switch tok.Type {
	case token.EOF:
		where = " at end"
	case token.ERROR:
		where = ""
	}
	p.errors = append(p.errors, &CompileError{Line: tok.Line, Where: where, Message: message})
}

// synchronize discards tokens until it reaches a plausible statement
// boundary, so one error doesn't cascade into dozens of bogus follow-on
// errors (§4.6).
func synchronize(c *Compiler) {
	p := c.parser
	p.panicMode = false

	for !check(c, token.EOF) {
		if p.prev.Type == token.SEMICOLON {
			return
		}
		switch p.current.Type {
		case token.CLASS, token.FUN, token.VAR, token.FOR, token.IF, token.WHILE, token.PRINT, token.RETURN:
			return
		}
		advance(c)
	}
}

// --- bytecode emission --------------------------------------------------

func emitByte(c *Compiler, b byte) {
	currentChunk(c).Write(b, c.parser.prev.Line)
}

func emitOp(c *Compiler, op chunk.OpCode) {
	currentChunk(c).WriteOp(op, c.parser.prev.Line)
}

func emitBytes(c *Compiler, b1, b2 byte) {
	emitByte(c, b1)
	emitByte(c, b2)
}

func emitOpByte(c *Compiler, op chunk.OpCode, b byte) {
	emitOp(c, op)
	emitByte(c, b)
}

func emitReturn(c *Compiler) {
	emitOp(c, chunk.OpNil)
	emitOp(c, chunk.OpReturn)
}

// makeConstant appends v to the current chunk's constant pool, reporting
// a compile error instead of overflowing the one-byte operand that
// addresses it (§4.1's 256-constant ceiling).
func makeConstant(c *Compiler, v value.Value) byte {
	if len(currentChunk(c).Constants) >= chunk.MaxConstants {
		errorAtPrevious(c, "too many constants in one chunk")
		return 0
	}
	return byte(currentChunk(c).AddConstant(v))
}

func emitConstant(c *Compiler, v value.Value) {
	emitOpByte(c, chunk.OpConstant, makeConstant(c, v))
}

// emitJump writes a jump opcode followed by a two-byte placeholder
// offset and returns the offset of the placeholder's first byte, for
// patchJump to fill in once the jump target is known (§4.5 control flow).
func emitJump(c *Compiler, op chunk.OpCode) int {
	emitOp(c, op)
	emitByte(c, 0xff)
	emitByte(c, 0xff)
	return currentChunk(c).Len() - 2
}

func patchJump(c *Compiler, offset int) {
	jump := currentChunk(c).Len() - offset - 2
	if jump > 0xffff {
		errorAtPrevious(c, "too much code to jump over")
	}
	code := currentChunk(c).Code
	code[offset] = byte((jump >> 8) & 0xff)
	code[offset+1] = byte(jump & 0xff)
}

func emitLoop(c *Compiler, loopStart int) {
	emitOp(c, chunk.OpLoop)
	offset := currentChunk(c).Len() - loopStart + 2
	if offset > 0xffff {
		errorAtPrevious(c, "loop body too large")
	}
	emitByte(c, byte((offset>>8)&0xff))
	emitByte(c, byte(offset&0xff))
}

func endCompiler(c *Compiler) *object.ObjFunction {
	emitReturn(c)
	return c.function
}

// --- scopes and locals ---------------------------------------------------

func beginScope(c *Compiler) {
	c.scopeDepth++
}

// endScope pops every local declared in the scope just exited, emitting
// one OP_POP per slot so the VM's stack stays in sync with the compiler's
// view of it (§4.6).
func endScope(c *Compiler) {
	c.scopeDepth--
	for len(c.locals) > 0 && c.locals[len(c.locals)-1].depth > c.scopeDepth {
		emitOp(c, chunk.OpPop)
		c.locals = c.locals[:len(c.locals)-1]
	}
}

func identifierConstant(c *Compiler, name string) byte {
	return makeConstant(c, value.ObjValue(table.Intern(c.parser.strings, c.parser.heap, name)))
}

// declareVariable registers the just-consumed identifier token as a new
// local in the current scope. At global scope (depth 0) it does nothing:
// globals are resolved by name at runtime, not by stack slot (§4.6).
func declareVariable(c *Compiler) {
	if c.scopeDepth == 0 {
		return
	}
	name := c.parser.prev
	for i := len(c.locals) - 1; i >= 0; i-- {
		l := c.locals[i]
		if l.depth != -1 && l.depth < c.scopeDepth {
			break
		}
		if l.name == name.Lexeme {
			errorAtPrevious(c, "already a variable with this name in this scope")
		}
	}
	addLocal(c, name.Lexeme)
}

func addLocal(c *Compiler, name string) {
	if len(c.locals) >= maxLocals {
		errorAtPrevious(c, "too many local variables in function")
		return
	}
	c.locals = append(c.locals, local{name: name, depth: -1})
}

func markInitialized(c *Compiler) {
	if c.scopeDepth == 0 {
		return
	}
	c.locals[len(c.locals)-1].depth = c.scopeDepth
}

// resolveLocal returns the stack slot of the innermost local named name,
// or -1 if there is no such local (meaning it must be a global).
func resolveLocal(c *Compiler, name string) int {
	for i := len(c.locals) - 1; i >= 0; i-- {
		if c.locals[i].name == name {
			if c.locals[i].depth == -1 {
				errorAtPrevious(c, "can't read local variable in its own initializer")
			}
			return i
		}
	}
	return -1
}

// parseVariable consumes an identifier and, at global scope, returns the
// byte identifying its name in the constant pool for a later
// OP_DEFINE_GLOBAL; at local scope it declares the local and returns 0
// (unused by the local path).
func parseVariable(c *Compiler, message string) byte {
	consume(c, token.IDENTIFIER, message)
	declareVariable(c)
	if c.scopeDepth > 0 {
		return 0
	}
	return identifierConstant(c, c.parser.prev.Lexeme)
}

func defineVariable(c *Compiler, global byte) {
	if c.scopeDepth > 0 {
		markInitialized(c)
		return
	}
	emitOpByte(c, chunk.OpDefineGlobal, global)
}

// --- declarations and statements -----------------------------------------

func declaration(c *Compiler) {
	switch {
	case match(c, token.FUN):
		funDeclaration(c)
	case match(c, token.VAR):
		varDeclaration(c)
	default:
		statement(c)
	}
	if c.parser.panicMode {
		synchronize(c)
	}
}

func funDeclaration(c *Compiler) {
	global := parseVariable(c, "expect function name")
	markInitialized(c)
	function(c, object.KindFunction)
	defineVariable(c, global)
}

// function compiles a function's parameter list and body with a fresh
// child Compiler, then emits a constant in the enclosing chunk that
// loads the finished function value (§4.6). beginScope runs before the
// parameter list is parsed so each parameter declares as a local of the
// new function, the same as any other local declaration.
func function(c *Compiler, kind object.FunctionKind) {
	name := c.parser.prev.Lexeme
	child := newCompiler(c.parser, c, kind, name)
	beginScope(child)

	consume(child, token.LEFT_PAREN, "expect '(' after function name")
	if !check(child, token.RIGHT_PAREN) {
		for {
			child.function.Arity++
			if child.function.Arity > maxParameters {
				errorAtCurrent(child, "can't have more than 255 parameters")
			}
			paramConstant := parseVariable(child, "expect parameter name")
			defineVariable(child, paramConstant)
			if !match(child, token.COMMA) {
				break
			}
		}
	}
	consume(child, token.RIGHT_PAREN, "expect ')' after parameters")
	consume(child, token.LEFT_BRACE, "expect '{' before function body")
	block(child)

	fn := endCompiler(child)
	emitOpByte(c, chunk.OpConstant, makeConstant(c, value.ObjValue(fn)))
}

func varDeclaration(c *Compiler) {
	global := parseVariable(c, "expect variable name")

	if match(c, token.EQUAL) {
		expression(c)
	} else {
		emitOp(c, chunk.OpNil)
	}
	consume(c, token.SEMICOLON, "expect ';' after variable declaration")

	defineVariable(c, global)
}

func statement(c *Compiler) {
	switch {
	case match(c, token.PRINT):
		printStatement(c)
	case match(c, token.IF):
		ifStatement(c)
	case match(c, token.WHILE):
		whileStatement(c)
	case match(c, token.FOR):
		forStatement(c)
	case match(c, token.RETURN):
		returnStatement(c)
	case match(c, token.LEFT_BRACE):
		beginScope(c)
		block(c)
		endScope(c)
	default:
		expressionStatement(c)
	}
}

func block(c *Compiler) {
	for !check(c, token.RIGHT_BRACE) && !check(c, token.EOF) {
		declaration(c)
	}
	consume(c, token.RIGHT_BRACE, "expect '}' after block")
}

func printStatement(c *Compiler) {
	expression(c)
	consume(c, token.SEMICOLON, "expect ';' after value")
	emitOp(c, chunk.OpPrint)
}

func expressionStatement(c *Compiler) {
	expression(c)
	consume(c, token.SEMICOLON, "expect ';' after expression")
	emitOp(c, chunk.OpPop)
}

func returnStatement(c *Compiler) {
	if c.fnKind == object.KindScript {
		errorAtPrevious(c, "can't return from top-level code")
	}
	if match(c, token.SEMICOLON) {
		emitReturn(c)
		return
	}
	expression(c)
	consume(c, token.SEMICOLON, "expect ';' after return value")
	emitOp(c, chunk.OpReturn)
}

func ifStatement(c *Compiler) {
	consume(c, token.LEFT_PAREN, "expect '(' after 'if'")
	expression(c)
	consume(c, token.RIGHT_PAREN, "expect ')' after condition")

	thenJump := emitJump(c, chunk.OpJumpIfFalse)
	emitOp(c, chunk.OpPop)
	statement(c)

	elseJump := emitJump(c, chunk.OpJump)
	patchJump(c, thenJump)
	emitOp(c, chunk.OpPop)

	if match(c, token.ELSE) {
		statement(c)
	}
	patchJump(c, elseJump)
}

func whileStatement(c *Compiler) {
	loopStart := currentChunk(c).Len()
	consume(c, token.LEFT_PAREN, "expect '(' after 'while'")
	expression(c)
	consume(c, token.RIGHT_PAREN, "expect ')' after condition")

	exitJump := emitJump(c, chunk.OpJumpIfFalse)
	emitOp(c, chunk.OpPop)
	statement(c)
	emitLoop(c, loopStart)

	patchJump(c, exitJump)
	emitOp(c, chunk.OpPop)
}

// forStatement desugars the C-style for loop into the same while-loop
// bytecode shape the grammar already supports, lowering the initializer,
// condition, and increment clauses into ordinary jumps and a loop-back
// (§4.5), exactly the trick the original C source uses.
func forStatement(c *Compiler) {
	beginScope(c)
	consume(c, token.LEFT_PAREN, "expect '(' after 'for'")

	switch {
	case match(c, token.SEMICOLON):
		// no initializer
	case match(c, token.VAR):
		varDeclaration(c)
	default:
		expressionStatement(c)
	}

	loopStart := currentChunk(c).Len()
	exitJump := -1
	if !match(c, token.SEMICOLON) {
		expression(c)
		consume(c, token.SEMICOLON, "expect ';' after loop condition")
		exitJump = emitJump(c, chunk.OpJumpIfFalse)
		emitOp(c, chunk.OpPop)
	}

	if !match(c, token.RIGHT_PAREN) {
		bodyJump := emitJump(c, chunk.OpJump)
		incrementStart := currentChunk(c).Len()
		expression(c)
		emitOp(c, chunk.OpPop)
		consume(c, token.RIGHT_PAREN, "expect ')' after for clauses")

		emitLoop(c, loopStart)
		loopStart = incrementStart
		patchJump(c, bodyJump)
	}

	statement(c)
	emitLoop(c, loopStart)

	if exitJump != -1 {
		patchJump(c, exitJump)
		emitOp(c, chunk.OpPop)
	}
	endScope(c)
}

// --- expressions ----------------------------------------------------------

func expression(c *Compiler) {
	parsePrecedence(c, PrecAssignment)
}

// parsePrecedence is the Pratt engine's core loop (§4.5): it parses one
// prefix expression, then keeps consuming infix operators as long as
// their precedence is at least minPrec.
func parsePrecedence(c *Compiler, minPrec Precedence) {
	advance(c)
	prefix := getRule(c.parser.prev.Type).prefix
	if prefix == nil {
		errorAtPrevious(c, "expect expression")
		return
	}

	canAssign := minPrec <= PrecAssignment
	prefix(c, canAssign)

	for minPrec <= getRule(c.parser.current.Type).precedence {
		advance(c)
		infix := getRule(c.parser.prev.Type).infix
		infix(c, canAssign)
	}

	if canAssign && match(c, token.EQUAL) {
		errorAtPrevious(c, "invalid assignment target")
	}
}

func number(c *Compiler, _ bool) {
	n, _ := strconv.ParseFloat(c.parser.prev.Lexeme, 64)
	emitConstant(c, value.NumberValue(n))
}

func stringLiteral(c *Compiler, _ bool) {
	lexeme := c.parser.prev.Lexeme
	chars := lexeme[1 : len(lexeme)-1] // strip the surrounding quotes
	interned := table.Intern(c.parser.strings, c.parser.heap, chars)
	emitConstant(c, value.ObjValue(interned))
}

func literal(c *Compiler, _ bool) {
	switch c.parser.prev.Type {
	case token.FALSE:
		emitOp(c, chunk.OpFalse)
	case token.TRUE:
		emitOp(c, chunk.OpTrue)
	case token.NIL:
		emitOp(c, chunk.OpNil)
	}
}

func grouping(c *Compiler, _ bool) {
	expression(c)
	consume(c, token.RIGHT_PAREN, "expect ')' after expression")
}

func unary(c *Compiler, _ bool) {
	opType := c.parser.prev.Type
	parsePrecedence(c, PrecUnary)
	switch opType {
	case token.MINUS:
		emitOp(c, chunk.OpNegate)
	case token.BANG:
		emitOp(c, chunk.OpNot)
	}
}

func binary(c *Compiler, _ bool) {
	opType := c.parser.prev.Type
	rule := getRule(opType)
	parsePrecedence(c, rule.precedence+1)

	switch opType {
	case token.PLUS:
		emitOp(c, chunk.OpAdd)
	case token.MINUS:
		emitOp(c, chunk.OpSubtract)
	case token.STAR:
		emitOp(c, chunk.OpMultiply)
	case token.SLASH:
		emitOp(c, chunk.OpDivide)
	case token.EQUAL_EQUAL:
		emitOp(c, chunk.OpEqual)
	case token.BANG_EQUAL:
		emitOp(c, chunk.OpEqual)
		emitOp(c, chunk.OpNot)
	case token.GREATER:
		emitOp(c, chunk.OpGreater)
	case token.GREATER_EQUAL:
		emitOp(c, chunk.OpLess)
		emitOp(c, chunk.OpNot)
	case token.LESS:
		emitOp(c, chunk.OpLess)
	case token.LESS_EQUAL:
		emitOp(c, chunk.OpGreater)
		emitOp(c, chunk.OpNot)
	}
}

// and_ short-circuits by jumping past the right operand when the left
// one is already falsey, leaving that falsey value as the result (§4.5).
func and_(c *Compiler, _ bool) {
	endJump := emitJump(c, chunk.OpJumpIfFalse)
	emitOp(c, chunk.OpPop)
	parsePrecedence(c, PrecAnd)
	patchJump(c, endJump)
}

// or_ short-circuits the opposite way: if the left operand is truthy,
// jump straight past the right operand.
func or_(c *Compiler, _ bool) {
	elseJump := emitJump(c, chunk.OpJumpIfFalse)
	endJump := emitJump(c, chunk.OpJump)
	patchJump(c, elseJump)
	emitOp(c, chunk.OpPop)
	parsePrecedence(c, PrecOr)
	patchJump(c, endJump)
}

func variable(c *Compiler, canAssign bool) {
	namedVariable(c, c.parser.prev, canAssign)
}

func namedVariable(c *Compiler, name token.Token, canAssign bool) {
	var getOp, setOp chunk.OpCode
	arg := resolveLocal(c, name.Lexeme)
	if arg != -1 {
		getOp, setOp = chunk.OpGetLocal, chunk.OpSetLocal
	} else {
		arg = int(identifierConstant(c, name.Lexeme))
		getOp, setOp = chunk.OpGetGlobal, chunk.OpSetGlobal
	}

	if canAssign && match(c, token.EQUAL) {
		expression(c)
		emitOpByte(c, setOp, byte(arg))
	} else {
		emitOpByte(c, getOp, byte(arg))
	}
}

func call(c *Compiler, _ bool) {
	argCount := argumentList(c)
	emitOpByte(c, chunk.OpCall, byte(argCount))
}

func argumentList(c *Compiler) int {
	count := 0
	if !check(c, token.RIGHT_PAREN) {
		for {
			expression(c)
			if count == maxParameters {
				errorAtPrevious(c, "can't have more than 255 arguments")
			}
			count++
			if !match(c, token.COMMA) {
				break
			}
		}
	}
	consume(c, token.RIGHT_PAREN, "expect ')' after arguments")
	return count
}
