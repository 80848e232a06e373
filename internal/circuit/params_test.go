package circuit

import (
	"math"
	"testing"
)

func TestFormatParam(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{math.Pi, "pi"},
		{math.Pi / 2, "pi/2"},
		{math.Pi / 4, "pi/4"},
		{math.Pi / 3, "pi/3"},
		{3 * math.Pi / 4, "3*pi/4"},
		{-math.Pi, "-pi"},
		{-math.Pi / 2, "-pi/2"},
		{2 * math.Pi, "2*pi"},
		{1.5, "1.5"},
		{0, "0"},
		{0.01, "0.01"},
	}

	for _, tt := range tests {
		got := FormatParam(tt.input, "pi")
		if got != tt.want {
			t.Errorf("FormatParam(%g) = %q, want %q", tt.input, got, tt.want)
		}
	}

	if got := FormatParam(-3*math.Pi/4, "np.pi"); got != "-3*np.pi/4" {
		t.Errorf("FormatParam with np.pi = %q, want %q", got, "-3*np.pi/4")
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		input float64
		want  string
	}{
		{0, "0.0"},
		{1, "1.0"},
		{-2, "-2.0"},
		{0.5, "0.5"},
		{math.Pi / 2, "1.5707963267948966"},
		{1e-20, "1e-20"},
	}

	for _, tt := range tests {
		if got := FormatFloat(tt.input); got != tt.want {
			t.Errorf("FormatFloat(%g) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExprEval(t *testing.T) {
	env := map[string]float64{"theta": 0.5}
	tests := []struct {
		name string
		expr Expr
		want float64
		ok   bool
	}{
		{"number", &Number{Value: 2}, 2, true},
		{"pi", &Pi{}, math.Pi, true},
		{"ident", &Ident{Name: "theta"}, 0.5, true},
		{"unbound ident", &Ident{Name: "phi"}, 0, false},
		{"negate", &Unary{Op: '-', X: &Pi{}}, -math.Pi, true},
		{"pi/2", &Binary{Op: '/', X: &Pi{}, Y: &Number{Value: 2}}, math.Pi / 2, true},
		{"divide by zero", &Binary{Op: '/', X: &Pi{}, Y: &Number{Value: 0}}, 0, false},
		{"power", &Binary{Op: '^', X: &Number{Value: 2}, Y: &Number{Value: 3}}, 8, true},
		{"sqrt", &Call{Func: "sqrt", Arg: &Number{Value: 4}}, 2, true},
		{"ln of zero", &Call{Func: "ln", Arg: &Number{Value: 0}}, 0, false},
		{"cos", &Call{Func: "cos", Arg: &Ident{Name: "theta"}}, math.Cos(0.5), true},
	}

	for _, tt := range tests {
		got, err := tt.expr.Eval(env)
		if (err == nil) != tt.ok {
			t.Errorf("%s: err = %v, want ok=%v", tt.name, err, tt.ok)
			continue
		}
		if tt.ok && math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("%s: got %g, want %g", tt.name, got, tt.want)
		}
	}
}
