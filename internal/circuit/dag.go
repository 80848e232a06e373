package circuit

import "slices"

// DAGNode is one instruction of the circuit as a node in its dependency DAG.
// Dependencies are the instructions that last touched the same qubits or
// classical bits.
type DAGNode struct {
	Index        int   // position in Circuit.Instructions
	Layer        int   // earliest parallel step the instruction can occupy
	Dependencies []int // indices of nodes that must execute before this one
}

// DAG is the dependency graph of a resolved circuit. It is derived, never
// edited; program order in Circuit.Instructions stays authoritative.
type DAG struct {
	Nodes []DAGNode
	Depth int
}

// DAG builds the dependency graph, assigning each instruction the first
// layer after every instruction it depends on. Barriers and classically
// conditioned instructions also depend on the bits they read.
func (c *Circuit) DAG() *DAG {
	dag := &DAG{Nodes: make([]DAGNode, len(c.Instructions))}

	lastOnQubit := make(map[Bit]int)
	lastOnClbit := make(map[Bit]int)

	for i, in := range c.Instructions {
		depSet := make(map[int]bool)
		for _, q := range in.Qubits {
			if last, ok := lastOnQubit[q]; ok {
				depSet[last] = true
			}
		}
		clbits := slices.Clone(in.Clbits)
		if in.Cond != nil {
			if reg, ok := c.Register(in.Cond.Register); ok {
				for idx := range reg.Size {
					clbits = append(clbits, Bit{Register: reg.Name, Index: idx})
				}
			}
		}
		for _, b := range clbits {
			if last, ok := lastOnClbit[b]; ok {
				depSet[last] = true
			}
		}

		node := DAGNode{Index: i}
		for dep := range depSet {
			node.Dependencies = append(node.Dependencies, dep)
			node.Layer = max(node.Layer, dag.Nodes[dep].Layer+1)
		}
		slices.Sort(node.Dependencies)
		dag.Nodes[i] = node
		dag.Depth = max(dag.Depth, node.Layer+1)

		for _, q := range in.Qubits {
			lastOnQubit[q] = i
		}
		for _, b := range clbits {
			lastOnClbit[b] = i
		}
	}
	return dag
}

// Layers groups instruction indices by layer, in program order within a layer.
func (d *DAG) Layers() [][]int {
	layers := make([][]int, d.Depth)
	for _, n := range d.Nodes {
		layers[n.Layer] = append(layers[n.Layer], n.Index)
	}
	return layers
}

// Stats summarises a circuit for status displays.
type Stats struct {
	Qubits       int
	Clbits       int
	Instructions int
	Measurements int
	Depth        int
}

// Stats computes the circuit summary. Barriers are not counted as instructions.
func (c *Circuit) Stats() Stats {
	s := Stats{Qubits: c.nQubits, Clbits: c.nClbits, Depth: c.DAG().Depth}
	for _, in := range c.Instructions {
		switch in.Gate {
		case "barrier":
			continue
		case "measure":
			s.Measurements++
		}
		s.Instructions++
	}
	return s
}

// Layers is shorthand for c.DAG().Layers().
func (c *Circuit) Layers() [][]int {
	return c.DAG().Layers()
}
