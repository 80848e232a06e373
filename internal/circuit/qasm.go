package circuit

import (
	"fmt"
	"strings"
)

// QASM re-serialises the resolved circuit as flat OpenQASM 2.0: custom gates
// are already inlined and broadcasts expanded, so two programs that resolve
// to the same instructions produce identical text.
func (c *Circuit) QASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")

	for _, r := range c.Registers {
		fmt.Fprintf(&sb, "%s %s[%d];\n", r.Kind, r.Name, r.Size)
	}
	if len(c.Registers) > 0 {
		sb.WriteString("\n")
	}

	for _, in := range c.Instructions {
		if in.Cond != nil {
			fmt.Fprintf(&sb, "if(%s==%d) ", in.Cond.Register, in.Cond.Value)
		}
		switch in.Gate {
		case "measure":
			fmt.Fprintf(&sb, "measure %s -> %s;\n", in.Qubits[0], in.Clbits[0])
		case "reset":
			fmt.Fprintf(&sb, "reset %s;\n", in.Qubits[0])
		default:
			sb.WriteString(in.Gate)
			if len(in.Params) > 0 {
				params := make([]string, len(in.Params))
				for i, p := range in.Params {
					params[i] = FormatParam(p, "pi")
				}
				fmt.Fprintf(&sb, "(%s)", strings.Join(params, ","))
			}
			qubits := make([]string, len(in.Qubits))
			for i, q := range in.Qubits {
				qubits[i] = q.String()
			}
			fmt.Fprintf(&sb, " %s;\n", strings.Join(qubits, ","))
		}
	}
	return sb.String()
}
