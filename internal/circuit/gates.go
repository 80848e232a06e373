package circuit

import "sort"

// Signature describes the parameter and qubit arity of a built-in gate.
type Signature struct {
	Name   string
	Params int
	Qubits int
}

// builtinGates is the qelib1.inc gate set plus the common extensions
// accepted by the simulators we target.
var builtinGates = map[string]Signature{
	"id":    {"id", 0, 1},
	"x":     {"x", 0, 1},
	"y":     {"y", 0, 1},
	"z":     {"z", 0, 1},
	"h":     {"h", 0, 1},
	"s":     {"s", 0, 1},
	"sdg":   {"sdg", 0, 1},
	"t":     {"t", 0, 1},
	"tdg":   {"tdg", 0, 1},
	"sx":    {"sx", 0, 1},
	"sxdg":  {"sxdg", 0, 1},
	"rx":    {"rx", 1, 1},
	"ry":    {"ry", 1, 1},
	"rz":    {"rz", 1, 1},
	"p":     {"p", 1, 1},
	"u1":    {"u1", 1, 1},
	"u2":    {"u2", 2, 1},
	"u3":    {"u3", 3, 1},
	"cx":    {"cx", 0, 2},
	"cy":    {"cy", 0, 2},
	"cz":    {"cz", 0, 2},
	"ch":    {"ch", 0, 2},
	"swap":  {"swap", 0, 2},
	"crx":   {"crx", 1, 2},
	"cry":   {"cry", 1, 2},
	"crz":   {"crz", 1, 2},
	"cp":    {"cp", 1, 2},
	"cu1":   {"cu1", 1, 2},
	"cu3":   {"cu3", 3, 2},
	"rxx":   {"rxx", 1, 2},
	"rzz":   {"rzz", 1, 2},
	"ccx":   {"ccx", 0, 3},
	"cswap": {"cswap", 0, 3},
}

// gateAliases maps alternative spellings to canonical names.
var gateAliases = map[string]string{
	"U":  "u3",
	"u":  "u3",
	"CX": "cx",
}

// LookupGate returns the signature of a built-in gate, resolving aliases.
func LookupGate(name string) (Signature, bool) {
	if canon, ok := gateAliases[name]; ok {
		name = canon
	}
	sig, ok := builtinGates[name]
	return sig, ok
}

// BuiltinGates returns the canonical names of every built-in gate, sorted.
func BuiltinGates() []string {
	names := make([]string, 0, len(builtinGates))
	for name := range builtinGates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Directives are the non-gate instructions every emitter must handle.
var Directives = []string{"measure", "reset", "barrier"}
