package circuit

import "fmt"

// Pos is a 1-based source position.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Kind distinguishes quantum from classical registers.
type Kind int

const (
	Quantum Kind = iota
	Classical
)

func (k Kind) String() string {
	if k == Classical {
		return "creg"
	}
	return "qreg"
}

// Register is a named, sized collection of qubits or classical bits.
type Register struct {
	Name string
	Size int
	Kind Kind
	Pos  Pos
}

// Arg references a register operand in source. Index is -1 when the
// whole register is referenced (broadcast).
type Arg struct {
	Register string
	Index    int
	Pos      Pos
}

func (a Arg) String() string {
	if a.Index < 0 {
		return a.Register
	}
	return fmt.Sprintf("%s[%d]", a.Register, a.Index)
}

// Condition guards an operation with "if (Register == Value)".
type Condition struct {
	Register string
	Value    int
}

// Operation is one unresolved statement: a gate call, measure, reset or barrier.
type Operation struct {
	Name   string
	Params []Expr
	Args   []Arg
	Cond   *Condition
	Pos    Pos
}

// GateDef is a user-defined composite gate.
type GateDef struct {
	Name   string
	Params []string
	Qubits []string
	Body   []Operation
	Pos    Pos
}

// Program is the unresolved circuit description produced by the parser.
type Program struct {
	Version   string
	Registers []Register
	Ops       []Operation
	Gates     map[string]*GateDef
	GateOrder []string
}

// NewProgram returns an empty program ready to be populated.
func NewProgram() *Program {
	return &Program{Gates: make(map[string]*GateDef)}
}

// Register returns the declared register with the given name.
func (p *Program) Register(name string) (Register, bool) {
	for _, r := range p.Registers {
		if r.Name == name {
			return r, true
		}
	}
	return Register{}, false
}

// HasQuantumRegister reports whether any qreg has been declared.
func (p *Program) HasQuantumRegister() bool {
	for _, r := range p.Registers {
		if r.Kind == Quantum {
			return true
		}
	}
	return false
}

// DefineGate registers a custom gate. Names are unique.
func (p *Program) DefineGate(def *GateDef) error {
	if _, ok := p.Gates[def.Name]; ok {
		return &ResolutionError{Pos: def.Pos, Msg: fmt.Sprintf("gate '%s' is already defined", def.Name)}
	}
	if _, ok := LookupGate(def.Name); ok {
		return &ResolutionError{Pos: def.Pos, Msg: fmt.Sprintf("gate '%s' redefines a built-in gate", def.Name)}
	}
	p.Gates[def.Name] = def
	p.GateOrder = append(p.GateOrder, def.Name)
	return nil
}

// Bit is a resolved reference to one qubit or classical bit.
type Bit struct {
	Register string
	Index    int
}

func (b Bit) String() string {
	return fmt.Sprintf("%s[%d]", b.Register, b.Index)
}

// Instruction is a resolved operation. Gate is the canonical built-in name,
// or one of "measure", "reset", "barrier".
type Instruction struct {
	Gate   string
	Params []float64
	Qubits []Bit
	Clbits []Bit
	Cond   *Condition
	Pos    Pos
}

// Circuit is the resolved model consumed by the emitters.
type Circuit struct {
	Registers    []Register
	Instructions []Instruction

	offsets map[string]int
	sizes   map[string]int
	nQubits int
	nClbits int
}

// New builds a circuit from declared registers and resolved instructions.
func New(regs []Register, instrs []Instruction) *Circuit {
	c := &Circuit{
		Registers:    regs,
		Instructions: instrs,
		offsets:      make(map[string]int, len(regs)),
		sizes:        make(map[string]int, len(regs)),
	}
	for _, r := range regs {
		c.sizes[r.Name] = r.Size
		if r.Kind == Quantum {
			c.offsets[r.Name] = c.nQubits
			c.nQubits += r.Size
		} else {
			c.offsets[r.Name] = c.nClbits
			c.nClbits += r.Size
		}
	}
	return c
}

// QuantumRegisters returns the qregs in declaration order.
func (c *Circuit) QuantumRegisters() []Register {
	return c.registersOf(Quantum)
}

// ClassicalRegisters returns the cregs in declaration order.
func (c *Circuit) ClassicalRegisters() []Register {
	return c.registersOf(Classical)
}

func (c *Circuit) registersOf(kind Kind) []Register {
	var out []Register
	for _, r := range c.Registers {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// Register returns the register with the given name.
func (c *Circuit) Register(name string) (Register, bool) {
	for _, r := range c.Registers {
		if r.Name == name {
			return r, true
		}
	}
	return Register{}, false
}

// NumQubits is the total width of all quantum registers.
func (c *Circuit) NumQubits() int { return c.nQubits }

// NumClbits is the total width of all classical registers.
func (c *Circuit) NumClbits() int { return c.nClbits }

// Index returns the flat index of a bit within all registers of its kind.
func (c *Circuit) Index(b Bit) int {
	return c.offsets[b.Register] + b.Index
}

// HasMeasurements reports whether any instruction is a measurement.
func (c *Circuit) HasMeasurements() bool {
	for _, in := range c.Instructions {
		if in.Gate == "measure" {
			return true
		}
	}
	return false
}
