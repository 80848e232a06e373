package qasm

import (
	"errors"
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	src := `OPENQASM 2.0;
// comment
qreg q[2]; /* block
comment */ rx(-pi/2) q[0];
measure q[0] -> c[0];
if(c==1) u3(.5, 1e-3, 2^2) q[1];`

	toks, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}

	want := []TokenType{
		OPENQASM, REAL, SEMICOLON,
		QREG, IDENT, LBRACKET, INT, RBRACKET, SEMICOLON,
		IDENT, LPAREN, MINUS, PI, SLASH, INT, RPAREN, IDENT, LBRACKET, INT, RBRACKET, SEMICOLON,
		MEASURE, IDENT, LBRACKET, INT, RBRACKET, ARROW, IDENT, LBRACKET, INT, RBRACKET, SEMICOLON,
		IF, LPAREN, IDENT, EQUALS, INT, RPAREN,
		IDENT, LPAREN, REAL, COMMA, REAL, COMMA, INT, CARET, INT, RPAREN, IDENT, LBRACKET, INT, RBRACKET, SEMICOLON,
		EOF,
	}
	got := make([]TokenType, len(toks))
	for i, tok := range toks {
		got[i] = tok.Type
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("token types:\n got %v\nwant %v", got, want)
	}

	// rx on line 4, column 12 after the closing block comment
	rx := toks[9]
	if rx.Lexeme != "rx" || rx.Pos.Line != 4 || rx.Pos.Col != 12 {
		t.Errorf("rx token = %+v, want rx at 4:12", rx)
	}
}

func TestTokenizeIsRestartable(t *testing.T) {
	src := "qreg q[1];\nh q[0];\n"
	first, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	second, err := Tokenize(src)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("second pass differs:\n%v\n%v", first, second)
	}

	l := NewLexer("")
	for range 3 {
		tok, err := l.Next()
		if err != nil || tok.Type != EOF {
			t.Fatalf("Next() after end = %v, %v; want EOF", tok, err)
		}
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		input string
		char  rune
		line  int
		col   int
	}{
		{"qreg q[2];\nh q[0] @", '@', 2, 8},
		{"x = 1", '=', 1, 3},
		{"h q[0]; # nope", '#', 1, 9},
		{"/* open", '/', 1, 1},
		{`include "qelib1.inc`, '"', 1, 9},
		{"rx(1e+) q;", ')', 1, 7},
	}

	for _, tt := range tests {
		_, err := Tokenize(tt.input)
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("Tokenize(%q): expected *SyntaxError, got %v", tt.input, err)
			continue
		}
		if se.Char != tt.char || se.Pos.Line != tt.line || se.Pos.Col != tt.col {
			t.Errorf("Tokenize(%q): error %q at %s char %q, want %q at %d:%d",
				tt.input, se, se.Pos, se.Char, tt.char, tt.line, tt.col)
		}
	}
}

func TestNumberLiterals(t *testing.T) {
	tests := []struct {
		input string
		typ   TokenType
	}{
		{"0", INT},
		{"42", INT},
		{"0.5", REAL},
		{".5", REAL},
		{"3.", REAL},
		{"1e-3", REAL},
		{"2E10", REAL},
	}
	for _, tt := range tests {
		toks, err := Tokenize(tt.input)
		if err != nil {
			t.Errorf("Tokenize(%q) error: %v", tt.input, err)
			continue
		}
		if toks[0].Type != tt.typ || toks[0].Lexeme != tt.input {
			t.Errorf("Tokenize(%q) = %v, want %s", tt.input, toks[0], tt.typ)
		}
	}
}
