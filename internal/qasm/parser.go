package qasm

import (
	"fmt"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"

	"qniverse/internal/circuit"
)

// supportedVersions constrains the OPENQASM header.
const supportedVersions = ">= 2.0, < 3.0"

// Parser consumes tokens from a Lexer with one token of lookahead and
// builds an unresolved circuit.Program.
//
// Grammar:
//
//	program   = [ "OPENQASM" REAL ";" ] { statement } EOF
//	statement = "include" STRING ";"
//	          | ("qreg" | "creg") ID "[" INT "]" ";"
//	          | "gate" ID [ "(" [ idlist ] ")" ] idlist "{" { gateop } "}"
//	          | "if" "(" ID "==" INT ")" qop
//	          | "barrier" arglist ";"
//	          | qop
//	qop       = ID [ "(" [ explist ] ")" ] arglist ";"
//	          | "measure" arg "->" arg ";"
//	          | "reset" arg ";"
//	gateop    = ID [ "(" [ explist ] ")" ] idlist ";" | "barrier" idlist ";"
//	arg       = ID [ "[" INT "]" ]
//	exp       = term { ("+" | "-") term }
//	term      = unary { ("*" | "/") unary }
//	unary     = "-" unary | power
//	power     = atom [ "^" unary ]
//	atom      = INT | REAL | "pi" | ID | ID "(" exp ")" | "(" exp ")"
type Parser struct {
	lex  *Lexer
	tok  Token
	prog *circuit.Program
}

// Parse lexes and parses src into an unresolved program.
func Parse(src string) (*circuit.Program, error) {
	p := &Parser{lex: NewLexer(src), prog: circuit.NewProgram()}
	if err := p.next(); err != nil {
		return nil, err
	}
	if err := p.parseProgram(); err != nil {
		return nil, err
	}
	return p.prog, nil
}

// next advances to the following token.
func (p *Parser) next() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// expect consumes a token of the given type or fails.
func (p *Parser) expect(tt TokenType) (Token, error) {
	tok := p.tok
	if tok.Type != tt {
		return tok, p.errorf("expected %s", tt)
	}
	return tok, p.next()
}

// errorf builds a ParseError at the current token.
func (p *Parser) errorf(format string, args ...any) error {
	return &ParseError{Pos: p.tok.Pos, Found: p.tok.String(), Msg: fmt.Sprintf(format, args...)}
}

func (p *Parser) parseProgram() error {
	if p.tok.Type == OPENQASM {
		if err := p.parseHeader(); err != nil {
			return err
		}
	}
	for p.tok.Type != EOF {
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
	return nil
}

func (p *Parser) parseHeader() error {
	if err := p.next(); err != nil {
		return err
	}
	tok := p.tok
	if tok.Type != REAL && tok.Type != INT {
		return p.errorf("expected version number")
	}
	v, err := semver.NewVersion(tok.Lexeme)
	if err != nil {
		return p.errorf("malformed version %q", tok.Lexeme)
	}
	constraint, err := semver.NewConstraint(supportedVersions)
	if err != nil {
		return errors.Wrap(err, "version constraint")
	}
	if !constraint.Check(v) {
		return &ParseError{Pos: tok.Pos, Msg: fmt.Sprintf("unsupported OPENQASM version %s (want %s)", tok.Lexeme, supportedVersions)}
	}
	p.prog.Version = tok.Lexeme
	if err := p.next(); err != nil {
		return err
	}
	_, err = p.expect(SEMICOLON)
	return err
}

func (p *Parser) parseStatement() error {
	switch p.tok.Type {
	case INCLUDE:
		return p.parseInclude()
	case QREG, CREG:
		return p.parseRegister()
	case GATE:
		return p.parseGateDef()
	case OPAQUE:
		return p.errorf("opaque gate declarations are not supported")
	case OPENQASM:
		return p.errorf("OPENQASM header must be the first statement")
	case IF, BARRIER, MEASURE, RESET, IDENT:
		if !p.prog.HasQuantumRegister() {
			return p.errorf("operation before any qreg is declared")
		}
	default:
		return p.errorf("expected statement")
	}

	switch p.tok.Type {
	case IF:
		return p.parseConditional()
	case BARRIER:
		op, err := p.parseBarrier(false)
		if err != nil {
			return err
		}
		p.prog.Ops = append(p.prog.Ops, op)
		return nil
	}
	op, err := p.parseQop()
	if err != nil {
		return err
	}
	p.prog.Ops = append(p.prog.Ops, op)
	return nil
}

func (p *Parser) parseInclude() error {
	if err := p.next(); err != nil {
		return err
	}
	if p.tok.Type != STRING {
		return p.errorf("expected include file name")
	}
	if p.tok.Lexeme != "qelib1.inc" {
		return p.errorf("unsupported include %q", p.tok.Lexeme)
	}
	if err := p.next(); err != nil {
		return err
	}
	_, err := p.expect(SEMICOLON)
	return err
}

func (p *Parser) parseRegister() error {
	kind := circuit.Quantum
	if p.tok.Type == CREG {
		kind = circuit.Classical
	}
	pos := p.tok.Pos
	if err := p.next(); err != nil {
		return err
	}
	name, err := p.expect(IDENT)
	if err != nil {
		return err
	}
	if _, err := p.expect(LBRACKET); err != nil {
		return err
	}
	size, err := p.parseInt()
	if err != nil {
		return err
	}
	if _, err := p.expect(RBRACKET); err != nil {
		return err
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return err
	}
	p.prog.Registers = append(p.prog.Registers, circuit.Register{Name: name.Lexeme, Size: size, Kind: kind, Pos: pos})
	return nil
}

func (p *Parser) parseInt() (int, error) {
	tok := p.tok
	if tok.Type != INT {
		return 0, p.errorf("expected integer")
	}
	n, err := strconv.Atoi(tok.Lexeme)
	if err != nil {
		return 0, p.errorf("integer out of range")
	}
	return n, p.next()
}

func (p *Parser) parseConditional() error {
	pos := p.tok.Pos
	if err := p.next(); err != nil {
		return err
	}
	if _, err := p.expect(LPAREN); err != nil {
		return err
	}
	reg, err := p.expect(IDENT)
	if err != nil {
		return err
	}
	if _, err := p.expect(EQUALS); err != nil {
		return err
	}
	value, err := p.parseInt()
	if err != nil {
		return err
	}
	if _, err := p.expect(RPAREN); err != nil {
		return err
	}
	if p.tok.Type == BARRIER {
		return p.errorf("barrier cannot be conditioned")
	}

	op, err := p.parseQop()
	if err != nil {
		return err
	}
	op.Cond = &circuit.Condition{Register: reg.Lexeme, Value: value}
	op.Pos = pos
	p.prog.Ops = append(p.prog.Ops, op)
	return nil
}

// parseQop parses a gate call, measure or reset at top level.
func (p *Parser) parseQop() (circuit.Operation, error) {
	pos := p.tok.Pos
	switch p.tok.Type {
	case MEASURE:
		if err := p.next(); err != nil {
			return circuit.Operation{}, err
		}
		src, err := p.parseArg()
		if err != nil {
			return circuit.Operation{}, err
		}
		if _, err := p.expect(ARROW); err != nil {
			return circuit.Operation{}, err
		}
		dst, err := p.parseArg()
		if err != nil {
			return circuit.Operation{}, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return circuit.Operation{}, err
		}
		return circuit.Operation{Name: "measure", Args: []circuit.Arg{src, dst}, Pos: pos}, nil

	case RESET:
		if err := p.next(); err != nil {
			return circuit.Operation{}, err
		}
		arg, err := p.parseArg()
		if err != nil {
			return circuit.Operation{}, err
		}
		if _, err := p.expect(SEMICOLON); err != nil {
			return circuit.Operation{}, err
		}
		return circuit.Operation{Name: "reset", Args: []circuit.Arg{arg}, Pos: pos}, nil

	case IDENT:
		return p.parseGateCall(false)
	}
	return circuit.Operation{}, p.errorf("expected gate, measure or reset")
}

// parseGateCall parses "name(params) args;". Inside a gate body the
// arguments are bare qubit names and arity is left to the resolver, which
// also sees forward references.
func (p *Parser) parseGateCall(inBody bool) (circuit.Operation, error) {
	nameTok := p.tok
	op := circuit.Operation{Name: nameTok.Lexeme, Pos: nameTok.Pos}
	if err := p.next(); err != nil {
		return op, err
	}

	if p.tok.Type == LPAREN {
		if err := p.next(); err != nil {
			return op, err
		}
		if p.tok.Type != RPAREN {
			for {
				e, err := p.parseExpr()
				if err != nil {
					return op, err
				}
				op.Params = append(op.Params, e)
				if p.tok.Type != COMMA {
					break
				}
				if err := p.next(); err != nil {
					return op, err
				}
			}
		}
		if _, err := p.expect(RPAREN); err != nil {
			return op, err
		}
	}

	for {
		var arg circuit.Arg
		var err error
		if inBody {
			arg, err = p.parseBodyArg()
		} else {
			arg, err = p.parseArg()
		}
		if err != nil {
			return op, err
		}
		op.Args = append(op.Args, arg)
		if p.tok.Type != COMMA {
			break
		}
		if err := p.next(); err != nil {
			return op, err
		}
	}
	if _, err := p.expect(SEMICOLON); err != nil {
		return op, err
	}

	if inBody {
		return op, nil
	}
	params, qubits, ok := p.arity(op.Name)
	if !ok {
		return op, &ParseError{Pos: nameTok.Pos, Msg: fmt.Sprintf("undefined gate '%s'", op.Name)}
	}
	if len(op.Params) != params {
		return op, &ParseError{Pos: nameTok.Pos, Msg: fmt.Sprintf("gate '%s' takes %d parameter(s), got %d", op.Name, params, len(op.Params))}
	}
	if len(op.Args) != qubits {
		return op, &ParseError{Pos: nameTok.Pos, Msg: fmt.Sprintf("gate '%s' takes %d qubit(s), got %d", op.Name, qubits, len(op.Args))}
	}
	return op, nil
}

// arity reports the signature of a built-in or previously defined gate.
func (p *Parser) arity(name string) (params, qubits int, ok bool) {
	if sig, ok := circuit.LookupGate(name); ok {
		return sig.Params, sig.Qubits, true
	}
	if def, ok := p.prog.Gates[name]; ok {
		return len(def.Params), len(def.Qubits), true
	}
	return 0, 0, false
}

// parseArg parses "name" or "name[index]".
func (p *Parser) parseArg() (circuit.Arg, error) {
	name, err := p.expect(IDENT)
	if err != nil {
		return circuit.Arg{}, err
	}
	arg := circuit.Arg{Register: name.Lexeme, Index: -1, Pos: name.Pos}
	if p.tok.Type != LBRACKET {
		return arg, nil
	}
	if err := p.next(); err != nil {
		return arg, err
	}
	if arg.Index, err = p.parseInt(); err != nil {
		return arg, err
	}
	_, err = p.expect(RBRACKET)
	return arg, err
}

// parseBodyArg parses a bare qubit name inside a gate body.
func (p *Parser) parseBodyArg() (circuit.Arg, error) {
	name, err := p.expect(IDENT)
	if err != nil {
		return circuit.Arg{}, err
	}
	if p.tok.Type == LBRACKET {
		return circuit.Arg{}, p.errorf("indexed qubit inside gate body")
	}
	return circuit.Arg{Register: name.Lexeme, Index: -1, Pos: name.Pos}, nil
}

func (p *Parser) parseBarrier(inBody bool) (circuit.Operation, error) {
	op := circuit.Operation{Name: "barrier", Pos: p.tok.Pos}
	if err := p.next(); err != nil {
		return op, err
	}
	for {
		var arg circuit.Arg
		var err error
		if inBody {
			arg, err = p.parseBodyArg()
		} else {
			arg, err = p.parseArg()
		}
		if err != nil {
			return op, err
		}
		op.Args = append(op.Args, arg)
		if p.tok.Type != COMMA {
			break
		}
		if err := p.next(); err != nil {
			return op, err
		}
	}
	_, err := p.expect(SEMICOLON)
	return op, err
}

func (p *Parser) parseGateDef() error {
	def := &circuit.GateDef{Pos: p.tok.Pos}
	if err := p.next(); err != nil {
		return err
	}
	name, err := p.expect(IDENT)
	if err != nil {
		return err
	}
	def.Name = name.Lexeme

	if p.tok.Type == LPAREN {
		if err := p.next(); err != nil {
			return err
		}
		if p.tok.Type != RPAREN {
			if def.Params, err = p.parseIdentList(); err != nil {
				return err
			}
		}
		if _, err := p.expect(RPAREN); err != nil {
			return err
		}
	}
	if def.Qubits, err = p.parseIdentList(); err != nil {
		return err
	}
	if _, err := p.expect(LBRACE); err != nil {
		return err
	}

	for p.tok.Type != RBRACE {
		switch p.tok.Type {
		case IDENT:
			op, err := p.parseGateCall(true)
			if err != nil {
				return err
			}
			def.Body = append(def.Body, op)
		case BARRIER:
			op, err := p.parseBarrier(true)
			if err != nil {
				return err
			}
			def.Body = append(def.Body, op)
		case MEASURE, RESET, IF:
			return p.errorf("'%s' is not allowed inside a gate body", p.tok.Lexeme)
		case EOF:
			return p.errorf("unterminated body of gate '%s'", def.Name)
		default:
			return p.errorf("expected gate operation")
		}
	}
	if err := p.next(); err != nil {
		return err
	}

	if err := p.prog.DefineGate(def); err != nil {
		var re *circuit.ResolutionError
		if errors.As(err, &re) {
			return &ParseError{Pos: def.Pos, Msg: re.Msg}
		}
		return err
	}
	return nil
}

func (p *Parser) parseIdentList() ([]string, error) {
	var names []string
	for {
		tok, err := p.expect(IDENT)
		if err != nil {
			return nil, err
		}
		names = append(names, tok.Lexeme)
		if p.tok.Type != COMMA {
			return names, nil
		}
		if err := p.next(); err != nil {
			return nil, err
		}
	}
}
