package qasm

import (
	"fmt"

	"qniverse/internal/circuit"
)

// TokenType identifies the category of a lexed token.
type TokenType int

const (
	EOF TokenType = iota // sentinel: end of input

	// Literals
	IDENT  // register, gate or parameter name
	INT    // non-negative integer literal
	REAL   // floating point literal
	STRING // "qelib1.inc"

	// Keywords
	OPENQASM
	INCLUDE
	QREG
	CREG
	GATE
	OPAQUE
	MEASURE
	RESET
	BARRIER
	IF
	PI

	// Delimiters
	LBRACE   // {
	RBRACE   // }
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]

	// Punctuation and operators
	SEMICOLON // ;
	COMMA     // ,
	ARROW     // ->
	EQUALS    // ==
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	CARET     // ^
)

var tokenNames = map[TokenType]string{
	EOF:       "end of input",
	IDENT:     "identifier",
	INT:       "integer",
	REAL:      "real",
	STRING:    "string",
	OPENQASM:  "OPENQASM",
	INCLUDE:   "include",
	QREG:      "qreg",
	CREG:      "creg",
	GATE:      "gate",
	OPAQUE:    "opaque",
	MEASURE:   "measure",
	RESET:     "reset",
	BARRIER:   "barrier",
	IF:        "if",
	PI:        "pi",
	LBRACE:    "'{'",
	RBRACE:    "'}'",
	LPAREN:    "'('",
	RPAREN:    "')'",
	LBRACKET:  "'['",
	RBRACKET:  "']'",
	SEMICOLON: "';'",
	COMMA:     "','",
	ARROW:     "'->'",
	EQUALS:    "'=='",
	PLUS:      "'+'",
	MINUS:     "'-'",
	STAR:      "'*'",
	SLASH:     "'/'",
	CARET:     "'^'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a single lexeme with its source position.
type Token struct {
	Type   TokenType
	Lexeme string
	Pos    circuit.Pos
}

func (t Token) String() string {
	switch t.Type {
	case EOF:
		return t.Type.String()
	case IDENT, INT, REAL, STRING:
		return fmt.Sprintf("%s %q", t.Type, t.Lexeme)
	}
	return fmt.Sprintf("%q", t.Lexeme)
}
