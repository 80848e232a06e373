package qasm

import (
	"fmt"

	"qniverse/internal/circuit"
)

// SyntaxError is raised by the lexer on a character it cannot start a token with.
type SyntaxError struct {
	Pos  circuit.Pos
	Char rune
	Msg  string
}

func (e *SyntaxError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("syntax error at %s: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("syntax error at %s: unexpected character %q", e.Pos, e.Char)
}

// ParseError is raised by the parser when a statement violates the grammar.
type ParseError struct {
	Pos   circuit.Pos
	Found string
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Found == "" {
		return fmt.Sprintf("parse error at %s: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("parse error at %s: %s, found %s", e.Pos, e.Msg, e.Found)
}
