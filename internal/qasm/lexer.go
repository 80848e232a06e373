package qasm

import (
	"unicode"

	"qniverse/internal/circuit"
)

// keywords maps source text to its keyword TokenType.
var keywords = map[string]TokenType{
	"OPENQASM": OPENQASM,
	"include":  INCLUDE,
	"qreg":     QREG,
	"creg":     CREG,
	"gate":     GATE,
	"opaque":   OPAQUE,
	"measure":  MEASURE,
	"reset":    RESET,
	"barrier":  BARRIER,
	"if":       IF,
	"pi":       PI,
}

// Lexer scans source text into tokens on demand. It holds all mutable
// state for one pass; scanning the same text with a new Lexer yields the
// same sequence.
type Lexer struct {
	src  []rune
	pos  int // index of the next rune to consume
	line int // 1-based
	col  int // 1-based column of src[pos]
}

// NewLexer returns a lexer positioned at the start of src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: []rune(src), line: 1, col: 1}
}

// Tokenize scans the whole of src, ending with an EOF token.
func Tokenize(src string) ([]Token, error) {
	l := NewLexer(src)
	var toks []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
		if tok.Type == EOF {
			return toks, nil
		}
	}
}

func (l *Lexer) peek() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peek2() rune {
	if l.pos+1 >= len(l.src) {
		return 0
	}
	return l.src[l.pos+1]
}

func (l *Lexer) advance() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	r := l.src[l.pos]
	l.pos++
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

func (l *Lexer) here() circuit.Pos {
	return circuit.Pos{Line: l.line, Col: l.col}
}

// skipSpaceAndComments discards whitespace, "//" and "/* */" comments.
func (l *Lexer) skipSpaceAndComments() error {
	for l.pos < len(l.src) {
		r := l.peek()
		switch {
		case unicode.IsSpace(r):
			l.advance()
		case r == '/' && l.peek2() == '/':
			for l.pos < len(l.src) && l.peek() != '\n' {
				l.advance()
			}
		case r == '/' && l.peek2() == '*':
			start := l.here()
			l.advance()
			l.advance()
			for {
				if l.pos >= len(l.src) {
					return &SyntaxError{Pos: start, Char: '/', Msg: "unterminated block comment"}
				}
				if l.peek() == '*' && l.peek2() == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return nil
		}
	}
	return nil
}

// Next returns the next token. After EOF it keeps returning EOF.
func (l *Lexer) Next() (Token, error) {
	if err := l.skipSpaceAndComments(); err != nil {
		return Token{}, err
	}
	pos := l.here()
	if l.pos >= len(l.src) {
		return Token{Type: EOF, Pos: pos}, nil
	}

	r := l.peek()
	switch {
	case unicode.IsLetter(r) || r == '_':
		return l.scanIdent(), nil
	case unicode.IsDigit(r) || (r == '.' && unicode.IsDigit(l.peek2())):
		return l.scanNumber()
	case r == '"':
		return l.scanString()
	}

	l.advance()
	single := func(tt TokenType) (Token, error) {
		return Token{Type: tt, Lexeme: string(r), Pos: pos}, nil
	}
	switch r {
	case '{':
		return single(LBRACE)
	case '}':
		return single(RBRACE)
	case '(':
		return single(LPAREN)
	case ')':
		return single(RPAREN)
	case '[':
		return single(LBRACKET)
	case ']':
		return single(RBRACKET)
	case ';':
		return single(SEMICOLON)
	case ',':
		return single(COMMA)
	case '+':
		return single(PLUS)
	case '*':
		return single(STAR)
	case '/':
		return single(SLASH)
	case '^':
		return single(CARET)
	case '-':
		if l.peek() == '>' {
			l.advance()
			return Token{Type: ARROW, Lexeme: "->", Pos: pos}, nil
		}
		return single(MINUS)
	case '=':
		if l.peek() == '=' {
			l.advance()
			return Token{Type: EQUALS, Lexeme: "==", Pos: pos}, nil
		}
	}
	return Token{}, &SyntaxError{Pos: pos, Char: r}
}

// scanIdent collects an identifier or keyword. The first rune is at l.peek().
func (l *Lexer) scanIdent() Token {
	pos := l.here()
	start := l.pos
	for l.pos < len(l.src) {
		r := l.peek()
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	tt := IDENT
	if kw, ok := keywords[lexeme]; ok {
		tt = kw
	}
	return Token{Type: tt, Lexeme: lexeme, Pos: pos}
}

// scanNumber collects an integer or real literal such as 3, 0.5, .5 or 1e-3.
func (l *Lexer) scanNumber() (Token, error) {
	pos := l.here()
	start := l.pos
	tt := INT
	for unicode.IsDigit(l.peek()) {
		l.advance()
	}
	if l.peek() == '.' {
		tt = REAL
		l.advance()
		for unicode.IsDigit(l.peek()) {
			l.advance()
		}
	}
	if r := l.peek(); r == 'e' || r == 'E' {
		tt = REAL
		l.advance()
		if r := l.peek(); r == '+' || r == '-' {
			l.advance()
		}
		if !unicode.IsDigit(l.peek()) {
			return Token{}, &SyntaxError{Pos: l.here(), Char: l.peek(), Msg: "malformed exponent in numeric literal"}
		}
		for unicode.IsDigit(l.peek()) {
			l.advance()
		}
	}
	return Token{Type: tt, Lexeme: string(l.src[start:l.pos]), Pos: pos}, nil
}

// scanString collects a double-quoted string on a single line.
func (l *Lexer) scanString() (Token, error) {
	pos := l.here()
	l.advance() // opening quote
	start := l.pos
	for {
		r := l.peek()
		if l.pos >= len(l.src) || r == '\n' {
			return Token{}, &SyntaxError{Pos: pos, Char: '"', Msg: "unterminated string literal"}
		}
		if r == '"' {
			break
		}
		l.advance()
	}
	lexeme := string(l.src[start:l.pos])
	l.advance() // closing quote
	return Token{Type: STRING, Lexeme: lexeme, Pos: pos}, nil
}
