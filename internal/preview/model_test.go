package preview

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qniverse/internal/emit"
	"qniverse/internal/translate"
)

const bellQASM = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
creg c[2];
h q[0];
cx q[0], q[1];
measure q -> c;
`

func newModel(t *testing.T, path, src string) Model {
	t.Helper()
	tr, err := translate.New()
	require.NoError(t, err)
	m := New(tr, path, src, emit.PlatformQiskit, "")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 48})
	return updated.(Model)
}

func press(m Model, keys ...tea.KeyMsg) Model {
	for _, k := range keys {
		updated, _ := m.Update(k)
		m = updated.(Model)
	}
	return m
}

var (
	keyCtrlP = tea.KeyMsg{Type: tea.KeyCtrlP}
	keyCtrlE = tea.KeyMsg{Type: tea.KeyCtrlE}
	keyCtrlS = tea.KeyMsg{Type: tea.KeyCtrlS}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
)

func TestNewTranslatesSource(t *testing.T) {
	m := newModel(t, "bell.qasm", bellQASM)

	require.NoError(t, m.err)
	require.NotNil(t, m.circuit)
	assert.Contains(t, m.generated, "qc.cx(q[0], q[1])")
	assert.Contains(t, m.statusLine(), "2 qubits")
	assert.Contains(t, m.statusLine(), "depth 3")
	assert.Contains(t, m.View(), "QASM [ACTIVE]")
}

func TestMenuSwitchesPlatform(t *testing.T) {
	m := newModel(t, "bell.qasm", bellQASM)

	m = press(m, keyCtrlP)
	assert.Equal(t, focusMenu, m.focus)
	assert.Contains(t, m.View(), "Target")

	// cirq tab, second row is cirq_simulator
	m = press(m, keyRight, keyDown, keyEnter)
	assert.Equal(t, focusEditor, m.focus)
	assert.Equal(t, emit.PlatformCirq, m.platform)
	assert.Equal(t, "cirq_simulator", m.backend)
	assert.Contains(t, m.generated, "cirq.CNOT(qubits[0], qubits[1])")
	assert.Contains(t, m.statusMsg, "Target: cirq cirq_simulator")

	m = press(m, keyCtrlP)
	assert.Equal(t, 1, m.menuCat)
	assert.Equal(t, 1, m.menuItem)
	m = press(m, keyEsc)
	assert.Equal(t, emit.PlatformCirq, m.platform)
}

func TestEditingRetranslates(t *testing.T) {
	m := newModel(t, "bell.qasm", "OPENQASM 2.0;\nqreg q[1];\n")
	require.NoError(t, m.err)

	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("h q[0];")})
	require.NoError(t, m.err)
	assert.Contains(t, m.generated, "qc.h(q[0])")

	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(" x q[5];")})
	require.Error(t, m.err)
	assert.Nil(t, m.circuit)
	assert.Contains(t, m.statusLine(), "index out of range")
	assert.Contains(t, m.generated, "qc.h(q[0])", "last good output stays visible")
}

func TestExpandedView(t *testing.T) {
	src := "OPENQASM 2.0;\nqreg q[2];\ngate bell a, b { h a; cx a, b; }\nbell q[0], q[1];\n"
	m := newModel(t, "bell.qasm", src)

	m = press(m, keyCtrlE)
	assert.True(t, m.expanded)
	assert.Contains(t, m.output.View(), "cx q[0],q[1];")
	assert.Contains(t, m.View(), "Expanded QASM")

	m = press(m, keyCtrlE)
	assert.Contains(t, m.output.View(), "qc.h(q[0])")
}

func TestSaveWritesGeneratedCode(t *testing.T) {
	dir := t.TempDir()
	m := newModel(t, filepath.Join(dir, "bell.qasm"), bellQASM)

	m = press(m, keyCtrlS)
	path := filepath.Join(dir, "bell_qiskit.py")
	assert.Equal(t, "Saved "+path, m.statusMsg)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, m.generated, string(data))
}

func TestSaveRefusesBrokenSource(t *testing.T) {
	dir := t.TempDir()
	m := newModel(t, filepath.Join(dir, "bad.qasm"), "qreg q[1];\nfoo q[0];\n")
	require.Error(t, m.err)

	m = press(m, keyCtrlS)
	assert.Contains(t, m.statusMsg, "Nothing to save")
	_, err := os.Stat(filepath.Join(dir, "bad_qiskit.py"))
	assert.True(t, os.IsNotExist(err))
}

func TestBrokenSourceKeepsOutputOnlyForSameTarget(t *testing.T) {
	m := newModel(t, "bell.qasm", bellQASM)

	m.editor.SetValue(bellQASM + "foo q[0];\n")
	m.retranslate()
	require.Error(t, m.err)
	assert.Contains(t, m.generated, "qc.cx(q[0], q[1])")
	assert.Contains(t, m.output.View(), "qc.cx")

	// cirq tab, default backend
	m = press(m, keyCtrlP, keyRight, keyEnter)
	assert.Equal(t, emit.PlatformCirq, m.platform)
	require.Error(t, m.err)
	assert.Empty(t, m.generated)
	assert.NotContains(t, m.output.View(), "qc.cx")
	assert.Contains(t, m.output.View(), "No output for this target")

	m = press(m, keyCtrlS)
	assert.Contains(t, m.statusMsg, "Nothing to save")
}

func TestTabSwitchesFocus(t *testing.T) {
	m := newModel(t, "", bellQASM)
	m = press(m, keyTab)
	assert.Equal(t, focusOutput, m.focus)
	assert.Contains(t, m.View(), "qiskit [ACTIVE]")

	// typing in the output pane must not edit the source
	m = press(m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	assert.Equal(t, bellQASM, m.editor.Value())

	m = press(m, keyTab)
	assert.Equal(t, focusEditor, m.focus)
}

func TestBackendMenuCoversWhitelist(t *testing.T) {
	require.Len(t, backendMenu, len(emit.Platforms()))
	for _, cat := range backendMenu {
		assert.Equal(t, "", cat.items[0].backend)
		assert.Len(t, cat.items, len(emit.Backends(cat.platform))+1)
	}
	cat, item := menuPosition(emit.PlatformCudaQ, "nvidia")
	assert.Equal(t, 2, cat)
	assert.Equal(t, 1, item)
}

func TestOverlayAt(t *testing.T) {
	bg := "abcdefgh\n\x1b[31mijklmnop\x1b[0m\nqrstuvwx"
	out := overlayAt(bg, "XY\nZW", 2, 1)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "abcdefgh", lines[0])
	assert.Equal(t, "ijXYmnop", stripANSI(lines[1]))
	assert.Equal(t, "qrZWuvwx", lines[2])
	assert.Equal(t, 8, visibleLen(lines[1]))
}

func stripANSI(s string) string {
	var sb strings.Builder
	inEsc := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEsc = true
		case inEsc:
			inEsc = !isEscEnd(r)
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
