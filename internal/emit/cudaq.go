package emit

import (
	"fmt"
	"math"
	"strings"

	"qniverse/internal/circuit"
)

// halfPi is a literal for the fixed rotations of sx, sxdg and u2. Kernel
// parameters are always float literals.
var halfPi = circuit.FormatFloat(math.Pi / 2)

// cudaqGates maps each instruction to kernel statements. Multi-line entries
// are decompositions; entries starting with "#" have no kernel equivalent.
var cudaqGates = map[string]string{
	"id":    "# id {q0}",
	"x":     "x({q0})",
	"y":     "y({q0})",
	"z":     "z({q0})",
	"h":     "h({q0})",
	"s":     "s({q0})",
	"sdg":   "s.adj({q0})",
	"t":     "t({q0})",
	"tdg":   "t.adj({q0})",
	"sx":    "rx(" + halfPi + ", {q0})",
	"sxdg":  "rx(-" + halfPi + ", {q0})",
	"rx":    "rx({p0}, {q0})",
	"ry":    "ry({p0}, {q0})",
	"rz":    "rz({p0}, {q0})",
	"p":     "r1({p0}, {q0})",
	"u1":    "r1({p0}, {q0})",
	"u2":    "u3(" + halfPi + ", {p0}, {p1}, {q0})",
	"u3":    "u3({p0}, {p1}, {p2}, {q0})",
	"cx":    "x.ctrl({q0}, {q1})",
	"cy":    "y.ctrl({q0}, {q1})",
	"cz":    "z.ctrl({q0}, {q1})",
	"ch":    "h.ctrl({q0}, {q1})",
	"swap":  "swap({q0}, {q1})",
	"crx":   "rx.ctrl({p0}, {q0}, {q1})",
	"cry":   "ry.ctrl({p0}, {q0}, {q1})",
	"crz":   "rz.ctrl({p0}, {q0}, {q1})",
	"cp":    "r1.ctrl({p0}, {q0}, {q1})",
	"cu1":   "r1.ctrl({p0}, {q0}, {q1})",
	"cu3":   "u3.ctrl({p0}, {p1}, {p2}, {q0}, {q1})",
	"rxx":   "h({q0})\nh({q1})\nx.ctrl({q0}, {q1})\nrz({p0}, {q1})\nx.ctrl({q0}, {q1})\nh({q0})\nh({q1})",
	"rzz":   "x.ctrl({q0}, {q1})\nrz({p0}, {q1})\nx.ctrl({q0}, {q1})",
	"ccx":   "x.ctrl({q0}, {q1}, {q2})",
	"cswap": "swap.ctrl({q0}, {q1}, {q2})",

	"measure": "{c0} = mz({q0})",
	"reset":   "reset({q0})",
	"barrier": "# barrier {qubits}",
}

// CudaQEmitter generates a CUDA-Q kernel and the code that samples it.
type CudaQEmitter struct {
	opts options
}

// NewCudaQ returns a CUDA-Q emitter.
func NewCudaQ(opts ...Option) *CudaQEmitter {
	return &CudaQEmitter{opts: newOptions(opts)}
}

func (e *CudaQEmitter) Platform() Platform { return PlatformCudaQ }
func (e *CudaQEmitter) Backends() []string { return Backends(PlatformCudaQ) }

// Emit renders c as a CUDA-Q script targeting backend. Conditions read the
// kernel variables assigned by earlier measurements.
func (e *CudaQEmitter) Emit(c *circuit.Circuit, backend string) (string, error) {
	if err := ValidateBackend(PlatformCudaQ, backend); err != nil {
		return "", err
	}

	ops := operands{
		qubit: func(b circuit.Bit) string { return fmt.Sprintf("qubits[%d]", c.Index(b)) },
		clbit: func(b circuit.Bit) string { return measurementKey(b) },
		param: circuit.FormatFloat,
	}

	var src source
	src.line(0, "import cudaq")
	src.blank()
	if backend != "" {
		src.linef(0, "cudaq.set_target('%s')", backend)
		src.blank()
	}

	var (
		body    source
		state   = measurements{}
		unbound = make(map[circuit.Bit]bool)
	)
	for _, in := range c.Instructions {
		tmpl, err := lookup(PlatformCudaQ, cudaqGates, in.Gate)
		if err != nil {
			return "", err
		}
		stmt := ops.expand(tmpl, in)
		if in.Cond == nil || isComment(stmt) {
			body.line(1, stmt)
			state.record(in)
			continue
		}
		reg, _ := c.Register(in.Cond.Register)
		bits, ok := state.condition(reg, in.Cond.Value)
		switch {
		case !ok:
			body.line(1, neverApplied(in))
			continue
		case len(bits) == 0:
			body.line(1, stmt)
		default:
			for _, b := range bits {
				if state[b] == maybeMeasured {
					unbound[b] = true
				}
			}
			body.linef(1, "if %s:", cudaqBitTest(bits, in.Cond.Value))
			body.line(2, stmt)
		}
		state.record(in)
	}

	src.line(0, "@cudaq.kernel")
	src.line(0, "def kernel():")
	src.linef(1, "qubits = cudaq.qvector(%d)", c.NumQubits())
	// a conditioned measurement may not run, so its variable needs a value first
	for _, reg := range c.ClassicalRegisters() {
		for i := range reg.Size {
			if b := (circuit.Bit{Register: reg.Name, Index: i}); unbound[b] {
				src.linef(1, "%s = False", measurementKey(b))
			}
		}
	}
	src.sb.WriteString(body.String())
	src.blank()

	if c.HasMeasurements() {
		src.linef(0, "counts = cudaq.sample(kernel, shots_count=%d)", e.opts.shots)
		src.line(0, "print(counts)")
	} else {
		src.line(0, "state = cudaq.get_state(kernel)")
		src.line(0, "print(state)")
	}
	return src.String(), nil
}

// cudaqBitTest compares each of bits against the matching bit of value.
func cudaqBitTest(bits []circuit.Bit, value int) string {
	tests := make([]string, len(bits))
	for i, b := range bits {
		name := measurementKey(b)
		if value>>b.Index&1 == 1 {
			tests[i] = name
		} else {
			tests[i] = "not " + name
		}
	}
	return strings.Join(tests, " and ")
}
