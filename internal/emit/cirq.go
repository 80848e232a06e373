package emit

import (
	"fmt"
	"strings"

	"qniverse/internal/circuit"
)

// cirqGates maps each instruction to a Cirq operation expression. Entries
// starting with "#" are written as comments instead of being appended.
var cirqGates = map[string]string{
	"id":    "cirq.I({q0})",
	"x":     "cirq.X({q0})",
	"y":     "cirq.Y({q0})",
	"z":     "cirq.Z({q0})",
	"h":     "cirq.H({q0})",
	"s":     "cirq.S({q0})",
	"sdg":   "(cirq.S**-1)({q0})",
	"t":     "cirq.T({q0})",
	"tdg":   "(cirq.T**-1)({q0})",
	"sx":    "cirq.XPowGate(exponent=0.5)({q0})",
	"sxdg":  "cirq.XPowGate(exponent=-0.5)({q0})",
	"rx":    "cirq.rx({p0})({q0})",
	"ry":    "cirq.ry({p0})({q0})",
	"rz":    "cirq.rz({p0})({q0})",
	"p":     "cirq.ZPowGate(exponent={p0} / np.pi)({q0})",
	"u1":    "cirq.ZPowGate(exponent={p0} / np.pi)({q0})",
	"u2":    "u3(np.pi/2, {p0}, {p1})({q0})",
	"u3":    "u3({p0}, {p1}, {p2})({q0})",
	"cx":    "cirq.CNOT({q0}, {q1})",
	"cy":    "cirq.Y({q1}).controlled_by({q0})",
	"cz":    "cirq.CZ({q0}, {q1})",
	"ch":    "cirq.H({q1}).controlled_by({q0})",
	"swap":  "cirq.SWAP({q0}, {q1})",
	"crx":   "cirq.rx({p0})({q1}).controlled_by({q0})",
	"cry":   "cirq.ry({p0})({q1}).controlled_by({q0})",
	"crz":   "cirq.rz({p0})({q1}).controlled_by({q0})",
	"cp":    "cirq.CZPowGate(exponent={p0} / np.pi)({q0}, {q1})",
	"cu1":   "cirq.CZPowGate(exponent={p0} / np.pi)({q0}, {q1})",
	"cu3":   "u3({p0}, {p1}, {p2}).controlled()({q0}, {q1})",
	"rxx":   "cirq.XXPowGate(exponent={p0} / np.pi, global_shift=-0.5)({q0}, {q1})",
	"rzz":   "cirq.ZZPowGate(exponent={p0} / np.pi, global_shift=-0.5)({q0}, {q1})",
	"ccx":   "cirq.CCX({q0}, {q1}, {q2})",
	"cswap": "cirq.CSWAP({q0}, {q1}, {q2})",

	"measure": "cirq.measure({q0}, key={c0})",
	"reset":   "cirq.reset({q0})",
	"barrier": "# barrier {qubits}",
}

// cirqU3 defines the u3 helper, emitted only when a u2, u3 or cu3 is present.
const cirqU3 = `def u3(theta, phi, lam):
    return cirq.MatrixGate(np.array([
        [np.cos(theta / 2), -np.exp(1j * lam) * np.sin(theta / 2)],
        [np.exp(1j * phi) * np.sin(theta / 2), np.exp(1j * (phi + lam)) * np.cos(theta / 2)],
    ]))`

var cirqSimulators = map[string]string{
	"":                       "cirq.Simulator()",
	"cirq_simulator":         "cirq.Simulator()",
	"qsimcirq_simulator":     "qsimcirq.QSimSimulator()",
	"qsimcirq_simulator_gpu": "qsimcirq.QSimSimulator(qsim_options=qsimcirq.QSimOptions(use_gpu=True))",
}

// CirqEmitter generates a Cirq program over a flat line of qubits.
type CirqEmitter struct {
	opts options
}

// NewCirq returns a Cirq emitter.
func NewCirq(opts ...Option) *CirqEmitter {
	return &CirqEmitter{opts: newOptions(opts)}
}

func (e *CirqEmitter) Platform() Platform { return PlatformCirq }
func (e *CirqEmitter) Backends() []string { return Backends(PlatformCirq) }

// Emit renders c as a Cirq script targeting backend.
func (e *CirqEmitter) Emit(c *circuit.Circuit, backend string) (string, error) {
	if err := ValidateBackend(PlatformCirq, backend); err != nil {
		return "", err
	}

	ops := operands{
		qubit: func(b circuit.Bit) string { return fmt.Sprintf("qubits[%d]", c.Index(b)) },
		clbit: func(b circuit.Bit) string { return "'" + measurementKey(b) + "'" },
		param: func(v float64) string { return circuit.FormatParam(v, "np.pi") },
	}

	var (
		body      source
		usesU3    bool
		usesSympy bool
		state     = measurements{}
	)
	for _, in := range c.Instructions {
		tmpl, err := lookup(PlatformCirq, cirqGates, in.Gate)
		if err != nil {
			return "", err
		}
		if in.Gate == "u2" || in.Gate == "u3" || in.Gate == "cu3" {
			usesU3 = true
		}

		op := ops.expand(tmpl, in)
		if isComment(op) {
			body.line(0, op)
			continue
		}
		if in.Cond != nil {
			reg, _ := c.Register(in.Cond.Register)
			bits, ok := state.condition(reg, in.Cond.Value)
			switch {
			case !ok:
				body.line(0, neverApplied(in))
				continue
			case len(bits) > 0:
				op = fmt.Sprintf("%s.with_classical_controls(sympy.Eq(%s, %d))", op, cirqBitSum(bits), in.Cond.Value)
				usesSympy = true
			}
		}
		body.linef(0, "circuit.append(%s)", op)
		state.record(in)
	}

	var src source
	src.line(0, "import cirq")
	if strings.HasPrefix(backend, "qsimcirq") {
		src.line(0, "import qsimcirq")
	}
	src.line(0, "import numpy as np")
	if usesSympy {
		src.line(0, "import sympy")
	}
	src.blank()
	if usesU3 {
		src.line(0, cirqU3)
		src.blank()
	}

	src.linef(0, "qubits = cirq.LineQubit.range(%d)", c.NumQubits())
	src.line(0, "circuit = cirq.Circuit()")
	src.blank()
	src.sb.WriteString(body.String())
	src.blank()

	src.linef(0, "simulator = %s", cirqSimulators[backend])
	if len(state) == 0 {
		src.line(0, "result = simulator.simulate(circuit)")
		src.line(0, "print(result.final_state_vector)")
		return src.String(), nil
	}

	var keys []string
	for _, reg := range c.ClassicalRegisters() {
		for i := range reg.Size {
			if b := (circuit.Bit{Register: reg.Name, Index: i}); state[b] != unmeasured {
				keys = append(keys, "'"+measurementKey(b)+"'")
			}
		}
	}
	src.linef(0, "result = simulator.run(circuit, repetitions=%d)", e.opts.shots)
	src.linef(0, "counts = result.multi_measurement_histogram(keys=[%s])", strings.Join(keys, ", "))
	src.line(0, "print(counts)")
	return src.String(), nil
}

// measurementKey names the Cirq measurement record of one classical bit.
func measurementKey(b circuit.Bit) string {
	return fmt.Sprintf("%s_%d", b.Register, b.Index)
}

// cirqBitSum is the integer value of a classical register as a sympy
// expression over the measurement keys of bits. Bits left out are 0.
func cirqBitSum(bits []circuit.Bit) string {
	terms := make([]string, len(bits))
	for i, b := range bits {
		sym := fmt.Sprintf("sympy.Symbol('%s')", measurementKey(b))
		if b.Index == 0 {
			terms[i] = sym
			continue
		}
		terms[i] = fmt.Sprintf("%d*%s", 1<<b.Index, sym)
	}
	return strings.Join(terms, " + ")
}
