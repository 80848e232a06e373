package circuit

import "math"

// Expr is a parameter expression. Identifiers are bound only inside
// gate bodies, where they name the gate's parameters.
type Expr interface {
	Eval(env map[string]float64) (float64, error)
	Position() Pos
}

// Number is a numeric literal.
type Number struct {
	Value float64
	Pos   Pos
}

// Pi is the constant pi.
type Pi struct {
	Pos Pos
}

// Ident names a gate parameter.
type Ident struct {
	Name string
	Pos  Pos
}

// Unary is a prefix minus.
type Unary struct {
	Op  byte
	X   Expr
	Pos Pos
}

// Binary is one of + - * / ^.
type Binary struct {
	Op   byte
	X, Y Expr
	Pos  Pos
}

// Call applies a unary function such as sin or sqrt.
type Call struct {
	Func string
	Arg  Expr
	Pos  Pos
}

// Functions maps the unary function names accepted in expressions.
var Functions = map[string]func(float64) float64{
	"sin":  math.Sin,
	"cos":  math.Cos,
	"tan":  math.Tan,
	"exp":  math.Exp,
	"ln":   math.Log,
	"sqrt": math.Sqrt,
}

func (n *Number) Eval(map[string]float64) (float64, error) { return n.Value, nil }
func (n *Number) Position() Pos                            { return n.Pos }

func (p *Pi) Eval(map[string]float64) (float64, error) { return math.Pi, nil }
func (p *Pi) Position() Pos                            { return p.Pos }

func (i *Ident) Eval(env map[string]float64) (float64, error) {
	v, ok := env[i.Name]
	if !ok {
		return 0, resolutionErrorf(i.Pos, "undefined parameter '%s'", i.Name)
	}
	return v, nil
}
func (i *Ident) Position() Pos { return i.Pos }

func (u *Unary) Eval(env map[string]float64) (float64, error) {
	x, err := u.X.Eval(env)
	if err != nil {
		return 0, err
	}
	return -x, nil
}
func (u *Unary) Position() Pos { return u.Pos }

func (b *Binary) Eval(env map[string]float64) (float64, error) {
	x, err := b.X.Eval(env)
	if err != nil {
		return 0, err
	}
	y, err := b.Y.Eval(env)
	if err != nil {
		return 0, err
	}
	var v float64
	switch b.Op {
	case '+':
		v = x + y
	case '-':
		v = x - y
	case '*':
		v = x * y
	case '/':
		if y == 0 {
			return 0, resolutionErrorf(b.Pos, "division by zero")
		}
		v = x / y
	case '^':
		v = math.Pow(x, y)
	default:
		return 0, resolutionErrorf(b.Pos, "unknown operator '%c'", b.Op)
	}
	if !isFinite(v) {
		return 0, resolutionErrorf(b.Pos, "%s %c %s is not a finite number", formatFloat(x), b.Op, formatFloat(y))
	}
	return v, nil
}
func (b *Binary) Position() Pos { return b.Pos }

func (c *Call) Eval(env map[string]float64) (float64, error) {
	fn, ok := Functions[c.Func]
	if !ok {
		return 0, resolutionErrorf(c.Pos, "unknown function '%s'", c.Func)
	}
	x, err := c.Arg.Eval(env)
	if err != nil {
		return 0, err
	}
	v := fn(x)
	if !isFinite(v) {
		return 0, resolutionErrorf(c.Pos, "%s(%s) is not a finite number", c.Func, formatFloat(x))
	}
	return v, nil
}
func (c *Call) Position() Pos { return c.Pos }

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// identNames collects the identifiers an expression refers to.
func identNames(e Expr, out []Ident) []Ident {
	switch n := e.(type) {
	case *Ident:
		out = append(out, *n)
	case *Unary:
		out = identNames(n.X, out)
	case *Binary:
		out = identNames(n.X, out)
		out = identNames(n.Y, out)
	case *Call:
		out = identNames(n.Arg, out)
	}
	return out
}
