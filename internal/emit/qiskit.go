package emit

import (
	"strconv"
	"strings"

	"qniverse/internal/circuit"
)

// qiskitGates maps each instruction to a QuantumCircuit method call.
var qiskitGates = map[string]string{
	"id":    "qc.id({q0})",
	"x":     "qc.x({q0})",
	"y":     "qc.y({q0})",
	"z":     "qc.z({q0})",
	"h":     "qc.h({q0})",
	"s":     "qc.s({q0})",
	"sdg":   "qc.sdg({q0})",
	"t":     "qc.t({q0})",
	"tdg":   "qc.tdg({q0})",
	"sx":    "qc.sx({q0})",
	"sxdg":  "qc.sxdg({q0})",
	"rx":    "qc.rx({p0}, {q0})",
	"ry":    "qc.ry({p0}, {q0})",
	"rz":    "qc.rz({p0}, {q0})",
	"p":     "qc.p({p0}, {q0})",
	"u1":    "qc.p({p0}, {q0})",
	"u2":    "qc.u(np.pi/2, {p0}, {p1}, {q0})",
	"u3":    "qc.u({p0}, {p1}, {p2}, {q0})",
	"cx":    "qc.cx({q0}, {q1})",
	"cy":    "qc.cy({q0}, {q1})",
	"cz":    "qc.cz({q0}, {q1})",
	"ch":    "qc.ch({q0}, {q1})",
	"swap":  "qc.swap({q0}, {q1})",
	"crx":   "qc.crx({p0}, {q0}, {q1})",
	"cry":   "qc.cry({p0}, {q0}, {q1})",
	"crz":   "qc.crz({p0}, {q0}, {q1})",
	"cp":    "qc.cp({p0}, {q0}, {q1})",
	"cu1":   "qc.cp({p0}, {q0}, {q1})",
	"cu3":   "qc.cu({p0}, {p1}, {p2}, 0, {q0}, {q1})",
	"rxx":   "qc.rxx({p0}, {q0}, {q1})",
	"rzz":   "qc.rzz({p0}, {q0}, {q1})",
	"ccx":   "qc.ccx({q0}, {q1}, {q2})",
	"cswap": "qc.cswap({q0}, {q1}, {q2})",

	"measure": "qc.measure({q0}, {c0})",
	"reset":   "qc.reset({q0})",
	"barrier": "qc.barrier({qubits})",
}

// qiskitSimulators maps a backend to its simulator construction. The empty
// backend is the default AerSimulator.
var qiskitSimulators = map[string]string{
	"":                              "AerSimulator()",
	"qasm_simulator":                "Aer.get_backend('qasm_simulator')",
	"aer_simulator_statevector":     "AerSimulator(method='statevector')",
	"aer_simulator_density_matrix":  "AerSimulator(method='density_matrix')",
	"aer_simulator_statevector_gpu": "AerSimulator(method='statevector', device='GPU')",
}

// QiskitEmitter generates a Qiskit program run on Qiskit Aer.
type QiskitEmitter struct {
	opts options
}

// NewQiskit returns a Qiskit emitter.
func NewQiskit(opts ...Option) *QiskitEmitter {
	return &QiskitEmitter{opts: newOptions(opts)}
}

func (e *QiskitEmitter) Platform() Platform { return PlatformQiskit }
func (e *QiskitEmitter) Backends() []string { return Backends(PlatformQiskit) }

// Emit renders c as a Qiskit script targeting backend.
func (e *QiskitEmitter) Emit(c *circuit.Circuit, backend string) (string, error) {
	if err := ValidateBackend(PlatformQiskit, backend); err != nil {
		return "", err
	}

	names := pyNames(c.Registers,
		"qc", "simulator", "compiled", "result", "counts", "state",
		"QuantumCircuit", "QuantumRegister", "ClassicalRegister", "transpile", "Aer", "AerSimulator")
	ops := operands{
		qubit: func(b circuit.Bit) string { return names[b.Register] + "[" + strconv.Itoa(b.Index) + "]" },
		clbit: func(b circuit.Bit) string { return names[b.Register] + "[" + strconv.Itoa(b.Index) + "]" },
		param: func(v float64) string { return circuit.FormatParam(v, "np.pi") },
	}

	var body source
	for _, in := range c.Instructions {
		tmpl, err := lookup(PlatformQiskit, qiskitGates, in.Gate)
		if err != nil {
			return "", err
		}
		stmt := ops.expand(tmpl, in)
		if in.Cond != nil {
			body.linef(0, "with qc.if_test((%s, %d)):", names[in.Cond.Register], in.Cond.Value)
			body.line(1, stmt)
			continue
		}
		body.line(0, stmt)
	}

	var src source
	src.line(0, "from qiskit import QuantumCircuit, QuantumRegister, ClassicalRegister, transpile")
	if backend == "qasm_simulator" {
		src.line(0, "from qiskit_aer import Aer")
	} else {
		src.line(0, "from qiskit_aer import AerSimulator")
	}
	src.line(0, "import numpy as np")
	src.blank()

	vars := make([]string, 0, len(c.Registers))
	for _, r := range c.Registers {
		ctor := "QuantumRegister"
		if r.Kind == circuit.Classical {
			ctor = "ClassicalRegister"
		}
		src.linef(0, "%s = %s(%d, '%s')", names[r.Name], ctor, r.Size, r.Name)
		vars = append(vars, names[r.Name])
	}
	src.linef(0, "qc = QuantumCircuit(%s)", strings.Join(vars, ", "))
	src.blank()
	src.sb.WriteString(body.String())
	src.blank()

	src.linef(0, "simulator = %s", qiskitSimulators[backend])
	switch {
	case c.HasMeasurements():
		src.line(0, "compiled = transpile(qc, simulator)")
		src.linef(0, "result = simulator.run(compiled, shots=%d).result()", e.opts.shots)
		src.line(0, "counts = result.get_counts()")
		src.line(0, "print(counts)")
	case backend == "aer_simulator_density_matrix":
		src.line(0, "qc.save_density_matrix()")
		src.line(0, "compiled = transpile(qc, simulator)")
		src.line(0, "result = simulator.run(compiled).result()")
		src.line(0, "state = result.data(0)['density_matrix']")
		src.line(0, "print(state)")
	default:
		src.line(0, "qc.save_statevector()")
		src.line(0, "compiled = transpile(qc, simulator)")
		src.line(0, "result = simulator.run(compiled).result()")
		src.line(0, "state = result.get_statevector()")
		src.line(0, "print(state)")
	}
	return src.String(), nil
}
