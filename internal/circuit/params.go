package circuit

import (
	"math"
	"strconv"
	"strings"
)

// piForm is a recognised multiple of pi and its display template.
type piForm struct {
	value float64
	coeff string
	denom string
}

// piForms lists the pi fractions rendered symbolically.
var piForms = []piForm{
	{2 * math.Pi, "2*", ""},
	{math.Pi, "", ""},
	{math.Pi / 2, "", "/2"},
	{math.Pi / 3, "", "/3"},
	{math.Pi / 4, "", "/4"},
	{math.Pi / 6, "", "/6"},
	{math.Pi / 8, "", "/8"},
	{3 * math.Pi / 4, "3*", "/4"},
	{3 * math.Pi / 2, "3*", "/2"},
	{2 * math.Pi / 3, "2*", "/3"},
}

// FormatParam formats a parameter value, writing common pi fractions in
// terms of the given pi symbol ("pi" for QASM, "np.pi" for Python).
//
// Examples with pi = "np.pi":
//   - 1.5707963267948966 → "np.pi/2"
//   - -2.356194490192345 → "-3*np.pi/4"
//   - 0.25               → "0.25"
func FormatParam(val float64, pi string) string {
	for _, pf := range piForms {
		if math.Abs(val-pf.value) < 1e-10 {
			return pf.coeff + pi + pf.denom
		}
		if math.Abs(val+pf.value) < 1e-10 {
			return "-" + pf.coeff + pi + pf.denom
		}
	}
	return formatFloat(val)
}

// formatFloat returns the shortest decimal that round-trips val.
func formatFloat(val float64) string {
	if val == 0 {
		return "0"
	}
	return strconv.FormatFloat(val, 'g', -1, 64)
}

// FormatFloat formats val as a float literal without pi notation; integral
// values keep a trailing ".0" so typed kernels see a float.
func FormatFloat(val float64) string {
	s := formatFloat(val)
	if strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}
