package circuit

import (
	"fmt"
	"slices"
	"strings"
)

// Resolve validates a parsed program and returns the resolved circuit with
// every custom gate call inlined and every broadcast expanded. The first
// error aborts resolution; there is no partial result.
func Resolve(p *Program) (*Circuit, error) {
	r := &resolver{prog: p, regs: make(map[string]Register, len(p.Registers))}
	for _, reg := range p.Registers {
		if _, dup := r.regs[reg.Name]; dup {
			return nil, resolutionErrorf(reg.Pos, "register '%s' is already declared", reg.Name)
		}
		if reg.Size <= 0 {
			return nil, resolutionErrorf(reg.Pos, "register '%s' must have a positive size", reg.Name)
		}
		r.regs[reg.Name] = reg
	}

	if err := r.checkRecursion(); err != nil {
		return nil, err
	}
	for _, name := range p.GateOrder {
		if err := r.checkGateDef(p.Gates[name]); err != nil {
			return nil, err
		}
	}

	for _, op := range p.Ops {
		if err := r.resolveOp(op); err != nil {
			return nil, err
		}
	}
	return New(p.Registers, r.out), nil
}

type resolver struct {
	prog *Program
	regs map[string]Register
	out  []Instruction
}

// checkRecursion rejects direct or indirect self-reference in the gate call graph.
func (r *resolver) checkRecursion() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[string]int, len(r.prog.Gates))
	var path []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			start := slices.Index(path, name)
			cycle := append(slices.Clone(path[start:]), name)
			return resolutionErrorf(r.prog.Gates[name].Pos, "recursive gate definition: %s", strings.Join(cycle, " -> "))
		case done:
			return nil
		}
		state[name] = visiting
		path = append(path, name)
		for _, op := range r.prog.Gates[name].Body {
			if _, ok := r.prog.Gates[op.Name]; ok {
				if err := visit(op.Name); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		state[name] = done
		return nil
	}

	for _, name := range r.prog.GateOrder {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// checkGateDef validates a definition body independently of any call site.
func (r *resolver) checkGateDef(def *GateDef) error {
	if len(def.Qubits) == 0 {
		return resolutionErrorf(def.Pos, "gate '%s' declares no qubit arguments", def.Name)
	}
	if dup := firstDuplicate(def.Params); dup != "" {
		return resolutionErrorf(def.Pos, "gate '%s' declares parameter '%s' twice", def.Name, dup)
	}
	if dup := firstDuplicate(def.Qubits); dup != "" {
		return resolutionErrorf(def.Pos, "gate '%s' declares qubit '%s' twice", def.Name, dup)
	}

	for _, op := range def.Body {
		for _, arg := range op.Args {
			if !slices.Contains(def.Qubits, arg.Register) {
				return resolutionErrorf(arg.Pos, "gate '%s' has no qubit argument '%s'", def.Name, arg.Register)
			}
		}
		for _, e := range op.Params {
			for _, id := range identNames(e, nil) {
				if !slices.Contains(def.Params, id.Name) {
					return resolutionErrorf(id.Pos, "gate '%s' has no parameter '%s'", def.Name, id.Name)
				}
			}
		}
		if op.Name == "barrier" {
			continue
		}
		params, qubits, err := r.arity(op.Name, op.Pos)
		if err != nil {
			return err
		}
		if len(op.Params) != params {
			return resolutionErrorf(op.Pos, "gate '%s' takes %d parameter(s), got %d", op.Name, params, len(op.Params))
		}
		if len(op.Args) != qubits {
			return resolutionErrorf(op.Pos, "gate '%s' takes %d qubit(s), got %d", op.Name, qubits, len(op.Args))
		}
	}
	return nil
}

// arity returns the parameter and qubit counts of a built-in or custom gate.
func (r *resolver) arity(name string, pos Pos) (params, qubits int, err error) {
	if sig, ok := LookupGate(name); ok {
		return sig.Params, sig.Qubits, nil
	}
	if def, ok := r.prog.Gates[name]; ok {
		return len(def.Params), len(def.Qubits), nil
	}
	return 0, 0, resolutionErrorf(pos, "unknown gate '%s'", name)
}

func (r *resolver) resolveOp(op Operation) error {
	if op.Cond != nil {
		if err := r.checkCondition(op.Cond, op.Pos); err != nil {
			return err
		}
	}

	switch op.Name {
	case "barrier":
		var qubits []Bit
		for _, arg := range op.Args {
			bits, err := r.bits(arg, Quantum)
			if err != nil {
				return err
			}
			qubits = append(qubits, bits...)
		}
		r.out = append(r.out, Instruction{Gate: "barrier", Qubits: qubits, Cond: op.Cond, Pos: op.Pos})
		return nil

	case "measure":
		rows, err := r.broadcast(op, []Kind{Quantum, Classical})
		if err != nil {
			return err
		}
		if q, c := op.Args[0], op.Args[1]; (q.Index < 0) != (c.Index < 0) {
			return resolutionErrorf(op.Pos, "measure %s -> %s mixes a whole register with a single bit", argString(q), argString(c))
		}
		for _, row := range rows {
			r.out = append(r.out, Instruction{Gate: "measure", Qubits: row[:1], Clbits: row[1:], Cond: op.Cond, Pos: op.Pos})
		}
		return nil

	case "reset":
		rows, err := r.broadcast(op, []Kind{Quantum})
		if err != nil {
			return err
		}
		for _, row := range rows {
			r.out = append(r.out, Instruction{Gate: "reset", Qubits: row, Cond: op.Cond, Pos: op.Pos})
		}
		return nil
	}

	params, err := evalAll(op.Params, nil)
	if err != nil {
		return err
	}
	kinds := make([]Kind, len(op.Args))
	rows, err := r.broadcast(op, kinds)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := r.apply(op.Name, params, row, op.Cond, op.Pos); err != nil {
			return err
		}
	}
	return nil
}

// apply appends a built-in instruction or inlines a custom gate body.
func (r *resolver) apply(name string, params []float64, qubits []Bit, cond *Condition, pos Pos) error {
	if sig, ok := LookupGate(name); ok {
		if len(params) != sig.Params {
			return resolutionErrorf(pos, "gate '%s' takes %d parameter(s), got %d", name, sig.Params, len(params))
		}
		if len(qubits) != sig.Qubits {
			return resolutionErrorf(pos, "gate '%s' takes %d qubit(s), got %d", name, sig.Qubits, len(qubits))
		}
		if err := checkDistinct(name, qubits, pos); err != nil {
			return err
		}
		r.out = append(r.out, Instruction{Gate: sig.Name, Params: params, Qubits: qubits, Cond: cond, Pos: pos})
		return nil
	}

	def, ok := r.prog.Gates[name]
	if !ok {
		return resolutionErrorf(pos, "unknown gate '%s'", name)
	}
	if len(params) != len(def.Params) {
		return resolutionErrorf(pos, "gate '%s' takes %d parameter(s), got %d", name, len(def.Params), len(params))
	}
	if len(qubits) != len(def.Qubits) {
		return resolutionErrorf(pos, "gate '%s' takes %d qubit(s), got %d", name, len(def.Qubits), len(qubits))
	}
	if err := checkDistinct(name, qubits, pos); err != nil {
		return err
	}

	env := make(map[string]float64, len(def.Params))
	for i, p := range def.Params {
		env[p] = params[i]
	}
	binding := make(map[string]Bit, len(def.Qubits))
	for i, q := range def.Qubits {
		binding[q] = qubits[i]
	}

	for _, op := range def.Body {
		vals, err := evalAll(op.Params, env)
		if err != nil {
			return err
		}
		bits := make([]Bit, len(op.Args))
		for i, arg := range op.Args {
			bits[i] = binding[arg.Register]
		}
		if op.Name == "barrier" {
			r.out = append(r.out, Instruction{Gate: "barrier", Qubits: bits, Cond: cond, Pos: pos})
			continue
		}
		if err := r.apply(op.Name, vals, bits, cond, pos); err != nil {
			return err
		}
	}
	return nil
}

// broadcast expands whole-register arguments into one row of bits per index.
// A zero Kind slot is treated as Quantum.
func (r *resolver) broadcast(op Operation, kinds []Kind) ([][]Bit, error) {
	if len(op.Args) != len(kinds) {
		return nil, resolutionErrorf(op.Pos, "'%s' takes %d argument(s), got %d", op.Name, len(kinds), len(op.Args))
	}

	width := 1
	sized := ""
	for i, arg := range op.Args {
		reg, err := r.register(arg, kinds[i])
		if err != nil {
			return nil, err
		}
		if arg.Index >= 0 {
			continue
		}
		if sized != "" && reg.Size != width {
			return nil, resolutionErrorf(arg.Pos, "register size mismatch in '%s': %s has size %d, %s has size %d",
				op.Name, sized, width, reg.Name, reg.Size)
		}
		width, sized = reg.Size, reg.Name
	}

	rows := make([][]Bit, width)
	for i := range rows {
		row := make([]Bit, len(op.Args))
		for j, arg := range op.Args {
			idx := arg.Index
			if idx < 0 {
				idx = i
			}
			row[j] = Bit{Register: arg.Register, Index: idx}
		}
		rows[i] = row
	}
	return rows, nil
}

func argString(a Arg) string {
	if a.Index < 0 {
		return a.Register
	}
	return fmt.Sprintf("%s[%d]", a.Register, a.Index)
}

// bits expands one argument into the bits it names.
func (r *resolver) bits(arg Arg, kind Kind) ([]Bit, error) {
	reg, err := r.register(arg, kind)
	if err != nil {
		return nil, err
	}
	if arg.Index >= 0 {
		return []Bit{{Register: arg.Register, Index: arg.Index}}, nil
	}
	out := make([]Bit, reg.Size)
	for i := range out {
		out[i] = Bit{Register: reg.Name, Index: i}
	}
	return out, nil
}

// register looks up the register of an argument and bounds-checks its index.
func (r *resolver) register(arg Arg, kind Kind) (Register, error) {
	reg, ok := r.regs[arg.Register]
	if !ok {
		return Register{}, resolutionErrorf(arg.Pos, "undeclared register '%s'", arg.Register)
	}
	if reg.Kind != kind {
		return Register{}, resolutionErrorf(arg.Pos, "'%s' is a %s, expected a %s", arg.Register, reg.Kind, kind)
	}
	if arg.Index >= reg.Size {
		return Register{}, resolutionErrorf(arg.Pos, "index out of range for register %s[%d] with size %d", reg.Name, arg.Index, reg.Size)
	}
	return reg, nil
}

func (r *resolver) checkCondition(cond *Condition, pos Pos) error {
	reg, ok := r.regs[cond.Register]
	if !ok {
		return resolutionErrorf(pos, "undeclared register '%s' in condition", cond.Register)
	}
	if reg.Kind != Classical {
		return resolutionErrorf(pos, "condition register '%s' is not a creg", cond.Register)
	}
	if cond.Value < 0 || (reg.Size < 63 && cond.Value >= 1<<reg.Size) {
		return resolutionErrorf(pos, "condition value %d does not fit in %s[%d]", cond.Value, reg.Name, reg.Size)
	}
	return nil
}

func evalAll(exprs []Expr, env map[string]float64) ([]float64, error) {
	if len(exprs) == 0 {
		return nil, nil
	}
	vals := make([]float64, len(exprs))
	for i, e := range exprs {
		v, err := e.Eval(env)
		if err != nil {
			return nil, err
		}
		if !isFinite(v) {
			return nil, resolutionErrorf(e.Position(), "parameter is not a finite number")
		}
		vals[i] = v
	}
	return vals, nil
}

func checkDistinct(name string, qubits []Bit, pos Pos) error {
	for i := range qubits {
		for j := i + 1; j < len(qubits); j++ {
			if qubits[i] == qubits[j] {
				return resolutionErrorf(pos, "duplicate qubit %s in '%s'", qubits[i], name)
			}
		}
	}
	return nil
}

func firstDuplicate(names []string) string {
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		if seen[n] {
			return n
		}
		seen[n] = true
	}
	return ""
}
