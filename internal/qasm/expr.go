package qasm

import (
	"strconv"

	"qniverse/internal/circuit"
)

// parseExpr parses an additive expression.
func (p *Parser) parseExpr() (circuit.Expr, error) {
	x, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == PLUS || p.tok.Type == MINUS {
		op := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		y, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		x = &circuit.Binary{Op: op.Lexeme[0], X: x, Y: y, Pos: op.Pos}
	}
	return x, nil
}

func (p *Parser) parseTerm() (circuit.Expr, error) {
	x, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.tok.Type == STAR || p.tok.Type == SLASH {
		op := p.tok
		if err := p.next(); err != nil {
			return nil, err
		}
		y, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		x = &circuit.Binary{Op: op.Lexeme[0], X: x, Y: y, Pos: op.Pos}
	}
	return x, nil
}

func (p *Parser) parseUnary() (circuit.Expr, error) {
	if p.tok.Type == MINUS {
		pos := p.tok.Pos
		if err := p.next(); err != nil {
			return nil, err
		}
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &circuit.Unary{Op: '-', X: x, Pos: pos}, nil
	}
	return p.parsePower()
}

// parsePower binds ^ to the right: 2^3^2 is 2^(3^2), and -2^2 is -(2^2).
func (p *Parser) parsePower() (circuit.Expr, error) {
	x, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.tok.Type != CARET {
		return x, nil
	}
	pos := p.tok.Pos
	if err := p.next(); err != nil {
		return nil, err
	}
	y, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	return &circuit.Binary{Op: '^', X: x, Y: y, Pos: pos}, nil
}

func (p *Parser) parseAtom() (circuit.Expr, error) {
	tok := p.tok
	switch tok.Type {
	case INT, REAL:
		v, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.errorf("malformed number")
		}
		return &circuit.Number{Value: v, Pos: tok.Pos}, p.next()

	case PI:
		return &circuit.Pi{Pos: tok.Pos}, p.next()

	case IDENT:
		if err := p.next(); err != nil {
			return nil, err
		}
		if _, ok := circuit.Functions[tok.Lexeme]; !ok || p.tok.Type != LPAREN {
			return &circuit.Ident{Name: tok.Lexeme, Pos: tok.Pos}, nil
		}
		if err := p.next(); err != nil {
			return nil, err
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return &circuit.Call{Func: tok.Lexeme, Arg: arg, Pos: tok.Pos}, nil

	case LPAREN:
		if err := p.next(); err != nil {
			return nil, err
		}
		x, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(RPAREN); err != nil {
			return nil, err
		}
		return x, nil
	}
	return nil, p.errorf("expected expression")
}
