package emit

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qniverse/internal/circuit"
	"qniverse/internal/qasm"
)

const bell = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
creg c[2];
h q[0];
cx q[0], q[1];
measure q -> c;
`

func mustCircuit(t *testing.T, src string) *circuit.Circuit {
	t.Helper()
	prog, err := qasm.Parse(src)
	require.NoError(t, err)
	c, err := circuit.Resolve(prog)
	require.NoError(t, err)
	return c
}

func tables() map[Platform]map[string]string {
	return map[Platform]map[string]string{
		PlatformQiskit: qiskitGates,
		PlatformCirq:   cirqGates,
		PlatformCudaQ:  cudaqGates,
	}
}

func TestGateTablesAreExhaustive(t *testing.T) {
	want := append(circuit.BuiltinGates(), circuit.Directives...)
	for p, table := range tables() {
		for _, gate := range want {
			if _, ok := table[gate]; !ok {
				t.Errorf("%s: no template for '%s'", p, gate)
			}
		}
		for gate := range table {
			if _, ok := circuit.LookupGate(gate); !ok && !slices.Contains(circuit.Directives, gate) {
				t.Errorf("%s: template for unknown instruction '%s'", p, gate)
			}
		}
	}
}

// Every template must be fully substituted for an instruction of the
// gate's own arity.
func TestEveryGateRenders(t *testing.T) {
	regs := []circuit.Register{
		{Name: "q", Size: 3, Kind: circuit.Quantum},
		{Name: "c", Size: 1, Kind: circuit.Classical},
	}
	qubits := []circuit.Bit{{Register: "q", Index: 0}, {Register: "q", Index: 1}, {Register: "q", Index: 2}}

	var instrs []circuit.Instruction
	for _, name := range circuit.BuiltinGates() {
		sig, _ := circuit.LookupGate(name)
		params := make([]float64, sig.Params)
		for i := range params {
			params[i] = 0.25 * float64(i+1)
		}
		instrs = append(instrs, circuit.Instruction{Gate: name, Params: params, Qubits: qubits[:sig.Qubits]})
	}
	instrs = append(instrs,
		circuit.Instruction{Gate: "barrier", Qubits: qubits},
		circuit.Instruction{Gate: "reset", Qubits: qubits[:1]},
		circuit.Instruction{Gate: "measure", Qubits: qubits[:1], Clbits: []circuit.Bit{{Register: "c", Index: 0}}},
	)
	c := circuit.New(regs, instrs)

	for _, p := range Platforms() {
		e, err := New(p)
		require.NoError(t, err)
		out, err := e.Emit(c, "")
		require.NoError(t, err, "platform %s", p)
		for _, placeholder := range []string{"{q", "{p", "{c", "{qubits}"} {
			assert.NotContains(t, out, placeholder, "platform %s left a placeholder", p)
		}
	}
}

func TestQiskitBell(t *testing.T) {
	out, err := Qiskit(mustCircuit(t, bell), "aer_simulator_statevector")
	require.NoError(t, err)

	want := heredoc.Doc(`
		from qiskit import QuantumCircuit, QuantumRegister, ClassicalRegister, transpile
		from qiskit_aer import AerSimulator
		import numpy as np

		q = QuantumRegister(2, 'q')
		c = ClassicalRegister(2, 'c')
		qc = QuantumCircuit(q, c)

		qc.h(q[0])
		qc.cx(q[0], q[1])
		qc.measure(q[0], c[0])
		qc.measure(q[1], c[1])

		simulator = AerSimulator(method='statevector')
		compiled = transpile(qc, simulator)
		result = simulator.run(compiled, shots=1024).result()
		counts = result.get_counts()
		print(counts)
	`)
	assert.Equal(t, want, out)
}

func TestBackendOnlyChangesSetup(t *testing.T) {
	c := mustCircuit(t, bell)

	sv, err := Qiskit(c, "aer_simulator_statevector")
	require.NoError(t, err)
	gpu, err := Qiskit(c, "aer_simulator_statevector_gpu")
	require.NoError(t, err)

	svLines := strings.Split(sv, "\n")
	gpuLines := strings.Split(gpu, "\n")
	require.Equal(t, len(svLines), len(gpuLines))
	var diff []string
	for i := range svLines {
		if svLines[i] != gpuLines[i] {
			diff = append(diff, gpuLines[i])
		}
	}
	assert.Equal(t, []string{"simulator = AerSimulator(method='statevector', device='GPU')"}, diff)

	cpu, err := Cirq(c, "cirq_simulator")
	require.NoError(t, err)
	qsim, err := Cirq(c, "qsimcirq_simulator_gpu")
	require.NoError(t, err)
	assert.Equal(t, cirqBody(cpu), cirqBody(qsim))
	assert.Contains(t, qsim, "import qsimcirq\n")
	assert.Contains(t, qsim, "qsimcirq.QSimOptions(use_gpu=True)")
	assert.NotContains(t, cpu, "qsimcirq")
}

func cirqBody(out string) string {
	start := strings.Index(out, "circuit = cirq.Circuit()")
	end := strings.Index(out, "simulator = ")
	return out[start:end]
}

func TestCirqBell(t *testing.T) {
	out, err := Cirq(mustCircuit(t, bell), "")
	require.NoError(t, err)

	assert.Contains(t, out, "qubits = cirq.LineQubit.range(2)\n")
	assert.Contains(t, out, "circuit.append(cirq.H(qubits[0]))\n"+
		"circuit.append(cirq.CNOT(qubits[0], qubits[1]))\n"+
		"circuit.append(cirq.measure(qubits[0], key='c_0'))\n"+
		"circuit.append(cirq.measure(qubits[1], key='c_1'))\n")
	assert.Contains(t, out, "simulator = cirq.Simulator()\n")
	assert.Contains(t, out, "result = simulator.run(circuit, repetitions=1024)\n")
	assert.Contains(t, out, "counts = result.multi_measurement_histogram(keys=['c_0', 'c_1'])\n")
	assert.NotContains(t, out, "sympy")
	assert.NotContains(t, out, "def u3")
}

func TestCudaQBell(t *testing.T) {
	out, err := CudaQ(mustCircuit(t, bell), "nvidia")
	require.NoError(t, err)

	want := heredoc.Doc(`
		import cudaq

		cudaq.set_target('nvidia')

		@cudaq.kernel
		def kernel():
		    qubits = cudaq.qvector(2)
		    h(qubits[0])
		    x.ctrl(qubits[0], qubits[1])
		    c_0 = mz(qubits[0])
		    c_1 = mz(qubits[1])

		counts = cudaq.sample(kernel, shots_count=1024)
		print(counts)
	`)
	assert.Equal(t, want, out)
}

func TestConditions(t *testing.T) {
	c := mustCircuit(t, `OPENQASM 2.0;
qreg q[3];
creg c[2];
measure q[0] -> c[0];
measure q[1] -> c[1];
if(c==2) x q[2];
`)

	out, err := Qiskit(c, "")
	require.NoError(t, err)
	assert.Contains(t, out, "with qc.if_test((c, 2)):\n    qc.x(q[2])\n")

	out, err = Cirq(c, "")
	require.NoError(t, err)
	assert.Contains(t, out, "import sympy\n")
	assert.Contains(t, out,
		"circuit.append(cirq.X(qubits[2]).with_classical_controls(sympy.Eq(sympy.Symbol('c_0') + 2*sympy.Symbol('c_1'), 2)))\n")

	out, err = CudaQ(c, "")
	require.NoError(t, err)
	assert.Contains(t, out, "    if not c_0 and c_1:\n        x(qubits[2])\n")
	assert.NotContains(t, out, "set_target")
}

func TestConditionOnPartlyMeasuredRegister(t *testing.T) {
	c := mustCircuit(t, `OPENQASM 2.0;
qreg q[2];
creg c[2];
measure q[0] -> c[0];
if(c==1) x q[1];
`)

	out, err := Cirq(c, "")
	require.NoError(t, err)
	assert.Contains(t, out,
		"circuit.append(cirq.X(qubits[1]).with_classical_controls(sympy.Eq(sympy.Symbol('c_0'), 1)))\n")
	assert.NotContains(t, out, "c_1")

	out, err = CudaQ(c, "")
	require.NoError(t, err)
	assert.Contains(t, out, "    c_0 = mz(qubits[0])\n    if c_0:\n        x(qubits[1])\n")
	assert.NotContains(t, out, "c_1")
}

func TestConditionThatCanNeverHold(t *testing.T) {
	c := mustCircuit(t, `OPENQASM 2.0;
qreg q[2];
creg c[2];
measure q[0] -> c[0];
if(c==2) x q[1];
`)

	for _, p := range []Platform{PlatformCirq, PlatformCudaQ} {
		e, err := New(p)
		require.NoError(t, err)
		out, err := e.Emit(c, "")
		require.NoError(t, err)
		assert.Contains(t, out, "# x skipped: c==2 reads bits that are never measured before it\n", p.String())
		assert.NotContains(t, out, "c_1", p.String())
	}
}

func TestConditionOnUnmeasuredRegisterEqualToZero(t *testing.T) {
	c := mustCircuit(t, "OPENQASM 2.0;\nqreg q[1];\ncreg c[1];\nif(c==0) x q[0];\nmeasure q[0] -> c[0];\n")

	out, err := Cirq(c, "")
	require.NoError(t, err)
	assert.Contains(t, out, "circuit.append(cirq.X(qubits[0]))\n")
	assert.NotContains(t, out, "sympy")

	out, err = CudaQ(c, "")
	require.NoError(t, err)
	assert.Contains(t, out, "    x(qubits[0])\n    c_0 = mz(qubits[0])\n")
}

func TestConditionedMeasurementBindsVariable(t *testing.T) {
	c := mustCircuit(t, `OPENQASM 2.0;
qreg q[2];
creg a[1];
creg b[1];
measure q[0] -> a[0];
if(a==1) measure q[1] -> b[0];
if(b==1) x q[0];
`)

	out, err := CudaQ(c, "")
	require.NoError(t, err)
	assert.Contains(t, out, "    qubits = cudaq.qvector(2)\n    b_0 = False\n    a_0 = mz(qubits[0])\n")
	assert.Contains(t, out, "    if a_0:\n        b_0 = mz(qubits[1])\n    if b_0:\n        x(qubits[0])\n")
	assert.NotContains(t, out, "a_0 = False")
}

func TestNoMeasurementReadsState(t *testing.T) {
	c := mustCircuit(t, "OPENQASM 2.0;\nqreg q[1];\nh q[0];\n")

	out, err := Qiskit(c, "aer_simulator_density_matrix")
	require.NoError(t, err)
	assert.Contains(t, out, "qc.save_density_matrix()\n")
	assert.NotContains(t, out, "shots=")

	out, err = Qiskit(c, "qasm_simulator")
	require.NoError(t, err)
	assert.Contains(t, out, "from qiskit_aer import Aer\n")
	assert.Contains(t, out, "simulator = Aer.get_backend('qasm_simulator')\n")
	assert.Contains(t, out, "qc.save_statevector()\n")

	out, err = Cirq(c, "")
	require.NoError(t, err)
	assert.Contains(t, out, "result = simulator.simulate(circuit)\n")

	out, err = CudaQ(c, "")
	require.NoError(t, err)
	assert.Contains(t, out, "state = cudaq.get_state(kernel)\n")
}

func TestParametersPerPlatform(t *testing.T) {
	c := mustCircuit(t, "OPENQASM 2.0;\nqreg q[2];\nrx(pi/2) q[0];\nu3(pi, 0, -pi/4) q[1];\nrzz(0.3) q[0], q[1];\n")

	out, err := Qiskit(c, "")
	require.NoError(t, err)
	assert.Contains(t, out, "qc.rx(np.pi/2, q[0])\n")
	assert.Contains(t, out, "qc.u(np.pi, 0, -np.pi/4, q[1])\n")

	out, err = Cirq(c, "")
	require.NoError(t, err)
	assert.Contains(t, out, "def u3(theta, phi, lam):\n")
	assert.Contains(t, out, "circuit.append(u3(np.pi, 0, -np.pi/4)(qubits[1]))\n")

	out, err = CudaQ(c, "")
	require.NoError(t, err)
	assert.Contains(t, out, "    rx(1.5707963267948966, qubits[0])\n")
	assert.Contains(t, out, "    u3(3.141592653589793, 0.0, -0.7853981633974483, qubits[1])\n")
	assert.Contains(t, out, "    x.ctrl(qubits[0], qubits[1])\n    rz(0.3, qubits[1])\n    x.ctrl(qubits[0], qubits[1])\n")
}

func TestMultipleRegistersFlatten(t *testing.T) {
	c := mustCircuit(t, "OPENQASM 2.0;\nqreg a[2];\nqreg b[1];\ncx a[1], b[0];\nbarrier a, b;\n")

	out, err := Qiskit(c, "")
	require.NoError(t, err)
	assert.Contains(t, out, "qc = QuantumCircuit(a, b)\n")
	assert.Contains(t, out, "qc.cx(a[1], b[0])\n")
	assert.Contains(t, out, "qc.barrier(a[0], a[1], b[0])\n")

	out, err = Cirq(c, "")
	require.NoError(t, err)
	assert.Contains(t, out, "circuit.append(cirq.CNOT(qubits[1], qubits[2]))\n")
	assert.Contains(t, out, "# barrier qubits[0], qubits[1], qubits[2]\n")
}

func TestReservedRegisterNames(t *testing.T) {
	c := mustCircuit(t, "OPENQASM 2.0;\nqreg qc[1];\ncreg result[1];\nmeasure qc[0] -> result[0];\n")

	out, err := Qiskit(c, "")
	require.NoError(t, err)
	assert.Contains(t, out, "qc_ = QuantumRegister(1, 'qc')\n")
	assert.Contains(t, out, "result_ = ClassicalRegister(1, 'result')\n")
	assert.Contains(t, out, "qc = QuantumCircuit(qc_, result_)\n")
	assert.Contains(t, out, "qc.measure(qc_[0], result_[0])\n")
}

func TestUnsupportedGate(t *testing.T) {
	c := circuit.New(
		[]circuit.Register{{Name: "q", Size: 1, Kind: circuit.Quantum}},
		[]circuit.Instruction{{Gate: "magic", Qubits: []circuit.Bit{{Register: "q", Index: 0}}}},
	)
	for _, p := range Platforms() {
		e, err := New(p)
		require.NoError(t, err)
		_, err = e.Emit(c, "")
		var ue *UnsupportedGateError
		require.True(t, errors.As(err, &ue), "platform %s: got %v", p, err)
		assert.Equal(t, p, ue.Platform)
		assert.Equal(t, "magic", ue.Gate)
	}
}

func TestUnsupportedBackend(t *testing.T) {
	c := mustCircuit(t, bell)
	for _, p := range Platforms() {
		e, err := New(p)
		require.NoError(t, err)
		_, err = e.Emit(c, "ibm_brisbane")
		var be *UnsupportedBackendError
		require.True(t, errors.As(err, &be), "platform %s: got %v", p, err)
		assert.Equal(t, e.Backends(), be.Valid)
		assert.Contains(t, err.Error(), "invalid backend 'ibm_brisbane'")
	}

	_, err := Qiskit(c, "nvidia")
	assert.Error(t, err)
	_, err = CudaQ(c, "nvidia")
	assert.NoError(t, err)
}

func TestDeterministicOutput(t *testing.T) {
	c := mustCircuit(t, bell)
	for _, p := range Platforms() {
		e, err := New(p, WithShots(500))
		require.NoError(t, err)
		first, err := e.Emit(c, "")
		require.NoError(t, err)
		second, err := e.Emit(c, "")
		require.NoError(t, err)
		assert.Equal(t, first, second, "platform %s", p)
		assert.Contains(t, first, "500", "platform %s ignores WithShots", p)
	}
}

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		input string
		want  Platform
		ok    bool
	}{
		{"qiskit", PlatformQiskit, true},
		{"Cirq", PlatformCirq, true},
		{"CUDAQ", PlatformCudaQ, true},
		{"cuda-q", PlatformCudaQ, true},
		{"braket", 0, false},
	}
	for _, tt := range tests {
		got, err := ParsePlatform(tt.input)
		if (err == nil) != tt.ok {
			t.Errorf("ParsePlatform(%q): err = %v, want ok=%v", tt.input, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParsePlatform(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
	assert.Equal(t, "cudaq", PlatformCudaQ.String())
}
