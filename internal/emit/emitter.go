// Package emit renders a resolved circuit as a Python program for one of the
// supported quantum SDKs.
package emit

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"qniverse/internal/circuit"
)

// Platform selects the target SDK.
type Platform int

const (
	PlatformQiskit Platform = iota
	PlatformCirq
	PlatformCudaQ
)

var platformNames = []string{"qiskit", "cirq", "cudaq"}

func (p Platform) String() string {
	if int(p) < 0 || int(p) >= len(platformNames) {
		return fmt.Sprintf("Platform(%d)", int(p))
	}
	return platformNames[p]
}

// Platforms lists every supported platform in display order.
func Platforms() []Platform {
	return []Platform{PlatformQiskit, PlatformCirq, PlatformCudaQ}
}

// ParsePlatform maps a case-insensitive platform name to its Platform.
func ParsePlatform(name string) (Platform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "qiskit":
		return PlatformQiskit, nil
	case "cirq":
		return PlatformCirq, nil
	case "cudaq", "cuda-q":
		return PlatformCudaQ, nil
	}
	return 0, errors.Errorf("unknown platform '%s' (use %s)", name, strings.Join(platformNames, ", "))
}

// backends is the whitelist of backend names per platform. The empty name
// always selects the platform's default simulator.
var backends = map[Platform][]string{
	PlatformQiskit: {
		"qasm_simulator",
		"aer_simulator_statevector",
		"aer_simulator_density_matrix",
		"aer_simulator_statevector_gpu",
	},
	PlatformCirq: {
		"cirq_simulator",
		"qsimcirq_simulator",
		"qsimcirq_simulator_gpu",
	},
	PlatformCudaQ: {"nvidia"},
}

// Backends returns the backend names accepted for p.
func Backends(p Platform) []string {
	return slices.Clone(backends[p])
}

// ValidateBackend returns an *UnsupportedBackendError unless backend is empty
// or whitelisted for p.
func ValidateBackend(p Platform, backend string) error {
	if backend == "" || slices.Contains(backends[p], backend) {
		return nil
	}
	return &UnsupportedBackendError{Platform: p, Backend: backend, Valid: Backends(p)}
}

// Emitter turns a resolved circuit into target source text.
type Emitter interface {
	Platform() Platform
	Backends() []string
	Emit(c *circuit.Circuit, backend string) (string, error)
}

// DefaultShots is the sample count used when none is configured.
const DefaultShots = 1024

type options struct {
	shots int
}

// Option configures an emitter.
type Option func(*options)

// WithShots sets the number of samples the generated program requests.
// Non-positive values keep the default.
func WithShots(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.shots = n
		}
	}
}

func newOptions(opts []Option) options {
	o := options{shots: DefaultShots}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// New returns the emitter for platform p.
func New(p Platform, opts ...Option) (Emitter, error) {
	switch p {
	case PlatformQiskit:
		return NewQiskit(opts...), nil
	case PlatformCirq:
		return NewCirq(opts...), nil
	case PlatformCudaQ:
		return NewCudaQ(opts...), nil
	}
	return nil, errors.Errorf("unknown platform %s", p)
}

// Qiskit emits c for Qiskit with default options.
func Qiskit(c *circuit.Circuit, backend string) (string, error) {
	return NewQiskit().Emit(c, backend)
}

// Cirq emits c for Cirq with default options.
func Cirq(c *circuit.Circuit, backend string) (string, error) {
	return NewCirq().Emit(c, backend)
}

// CudaQ emits c for CUDA-Q with default options.
func CudaQ(c *circuit.Circuit, backend string) (string, error) {
	return NewCudaQ().Emit(c, backend)
}

// operands formats instruction operands for one target.
type operands struct {
	qubit func(circuit.Bit) string
	clbit func(circuit.Bit) string
	param func(float64) string
}

// expand fills a gate template. Placeholders are {q0}..{qN}, {c0}..{cN},
// {p0}..{pN} and {qubits} (all qubits, comma separated).
func (o operands) expand(tmpl string, in circuit.Instruction) string {
	all := make([]string, len(in.Qubits))
	pairs := make([]string, 0, 2*(len(in.Qubits)+len(in.Clbits)+len(in.Params)+1))
	for i, q := range in.Qubits {
		all[i] = o.qubit(q)
		pairs = append(pairs, fmt.Sprintf("{q%d}", i), all[i])
	}
	for i, b := range in.Clbits {
		pairs = append(pairs, fmt.Sprintf("{c%d}", i), o.clbit(b))
	}
	for i, v := range in.Params {
		pairs = append(pairs, fmt.Sprintf("{p%d}", i), o.param(v))
	}
	pairs = append(pairs, "{qubits}", strings.Join(all, ", "))
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

// lookup returns the template for in.Gate or an *UnsupportedGateError.
func lookup(p Platform, table map[string]string, gate string) (string, error) {
	tmpl, ok := table[gate]
	if !ok {
		return "", &UnsupportedGateError{Platform: p, Gate: gate}
	}
	return tmpl, nil
}

// isComment reports whether a rendered template is only Python comments.
// Comments are never placed under a condition, since a block holding only
// a comment is not valid Python.
func isComment(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "#") {
			return false
		}
	}
	return true
}

type measureState int

const (
	unmeasured measureState = iota
	maybeMeasured
	measured
)

// measurements tracks which classical bits hold a measurement result at a
// point of the instruction stream. A bit that was never written reads as 0.
type measurements map[circuit.Bit]measureState

// record notes the clbit written by in, if any. A conditioned measurement
// may or may not have run.
func (m measurements) record(in circuit.Instruction) {
	if in.Gate != "measure" {
		return
	}
	b := in.Clbits[0]
	if in.Cond == nil {
		m[b] = measured
		return
	}
	if m[b] == unmeasured {
		m[b] = maybeMeasured
	}
}

// condition returns the bits a test of reg against value has to read. The
// remaining bits are known to be 0; ok is false when value needs a 1 in one
// of them, so the condition never holds.
func (m measurements) condition(reg circuit.Register, value int) (bits []circuit.Bit, ok bool) {
	for i := range reg.Size {
		b := circuit.Bit{Register: reg.Name, Index: i}
		if m[b] != unmeasured {
			bits = append(bits, b)
			continue
		}
		if value>>i&1 == 1 {
			return nil, false
		}
	}
	return bits, true
}

// neverApplied is the comment left in place of an instruction whose
// condition can not hold.
func neverApplied(in circuit.Instruction) string {
	return fmt.Sprintf("# %s skipped: %s==%d reads bits that are never measured before it",
		in.Gate, in.Cond.Register, in.Cond.Value)
}

// source accumulates generated Python.
type source struct {
	sb strings.Builder
}

func (s *source) line(indent int, text string) {
	for _, l := range strings.Split(text, "\n") {
		if l == "" {
			s.sb.WriteString("\n")
			continue
		}
		s.sb.WriteString(strings.Repeat("    ", indent))
		s.sb.WriteString(l)
		s.sb.WriteString("\n")
	}
}

func (s *source) linef(indent int, format string, args ...any) {
	s.line(indent, fmt.Sprintf(format, args...))
}

func (s *source) blank() {
	s.sb.WriteString("\n")
}

func (s *source) String() string {
	return s.sb.String()
}

var pythonReserved = []string{
	"False", "None", "True", "and", "as", "assert", "async", "await", "break",
	"class", "continue", "def", "del", "elif", "else", "except", "finally", "for",
	"from", "global", "if", "import", "in", "is", "lambda", "nonlocal", "not", "or",
	"pass", "raise", "return", "try", "while", "with", "yield",
	"print", "np", "sympy",
}

// pyNames assigns each register a Python identifier that cannot shadow a
// keyword or a name the generated program itself uses.
func pyNames(regs []circuit.Register, taken ...string) map[string]string {
	used := make(map[string]bool, len(pythonReserved)+len(taken)+len(regs))
	for _, n := range pythonReserved {
		used[n] = true
	}
	for _, n := range taken {
		used[n] = true
	}
	names := make(map[string]string, len(regs))
	for _, r := range regs {
		name := r.Name
		for used[name] {
			name += "_"
		}
		used[name] = true
		names[r.Name] = name
	}
	return names
}
