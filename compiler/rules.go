package compiler

import "loxvm/token"

// Precedence orders the grammar's infix operators from loosest to
// tightest binding (§4.5). parsePrecedence parses any expression whose
// operators bind at least as tightly as the level it's given.
type Precedence int

const (
	PrecNone       Precedence = iota
	PrecAssignment            // =
	PrecOr                    // or
	PrecAnd                   // and
	PrecEquality              // == !=
	PrecComparison            // < > <= >=
	PrecTerm                  // + -
	PrecFactor                // * /
	PrecUnary                 // ! -
	PrecCall                  // . ()
	PrecPrimary
)

// parseFn is either a prefix or an infix parsing rule for one token kind.
// canAssign tells it whether an assignment target is syntactically legal
// here, so `a.b = c` style forms (were this language to have them) can't
// appear nested inside a higher-precedence expression like `a + b = c`.
type parseFn func(c *Compiler, canAssign bool)

type parseRule struct {
	prefix     parseFn
	infix      parseFn
	precedence Precedence
}

// rules is the Pratt table (§4.5): one row per token kind naming its
// prefix handler, its infix handler, and the precedence of the infix
// operator (if any). A zero-value rule -- no prefix, no infix, PrecNone
// -- means the token never starts or continues an expression. It is filled
// in by init because the handlers it names reach back into getRule, which
// a package-level initializer expression cannot do.
var rules map[token.Type]parseRule

func init() {
	rules = map[token.Type]parseRule{
	token.LEFT_PAREN:    {prefix: grouping, infix: call, precedence: PrecCall},
	token.MINUS:         {prefix: unary, infix: binary, precedence: PrecTerm},
	token.PLUS:          {infix: binary, precedence: PrecTerm},
	token.SLASH:         {infix: binary, precedence: PrecFactor},
	token.STAR:          {infix: binary, precedence: PrecFactor},
	token.BANG:          {prefix: unary},
	token.BANG_EQUAL:    {infix: binary, precedence: PrecEquality},
	token.EQUAL_EQUAL:   {infix: binary, precedence: PrecEquality},
	token.GREATER:       {infix: binary, precedence: PrecComparison},
	token.GREATER_EQUAL: {infix: binary, precedence: PrecComparison},
	token.LESS:          {infix: binary, precedence: PrecComparison},
	token.LESS_EQUAL:    {infix: binary, precedence: PrecComparison},
	token.IDENTIFIER:    {prefix: variable},
	token.STRING:        {prefix: stringLiteral},
	token.NUMBER:        {prefix: number},
	token.AND:           {infix: and_, precedence: PrecAnd},
	token.OR:            {infix: or_, precedence: PrecOr},
	token.FALSE:         {prefix: literal},
	token.NIL:           {prefix: literal},
	token.TRUE:          {prefix: literal},
	}
}

// getRule returns the parse rule for t, or the zero rule (no prefix, no
// infix, PrecNone) for tokens that never appear in an expression.
func getRule(t token.Type) parseRule {
	return rules[t]
}
