package preview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	paneWidth := m.width/2 - 2
	controlsHeight := 6
	paneHeight := max(m.height-controlsHeight-2, 6)

	editorPanel := m.renderEditorPanel(paneWidth, paneHeight)
	outputPanel := m.renderOutputPanel(paneWidth, paneHeight)
	controlsPanel := m.renderControlsPanel(m.width-4, controlsHeight-2)

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, editorPanel, outputPanel)
	frame := lipgloss.JoinVertical(lipgloss.Left, topRow, controlsPanel)

	if m.focus == focusMenu {
		frame = overlayAt(frame, m.renderMenu(), 2, 2)
	}
	return frame
}

// renderEditorPanel renders the QASM editor panel.
func (m Model) renderEditorPanel(width, height int) string {
	var sb strings.Builder

	title := "QASM"
	if m.focus == focusEditor {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.editor.View())

	return qasmStyle.Width(width).Height(height).Render(sb.String())
}

// renderOutputPanel renders the generated program or the expanded circuit.
func (m Model) renderOutputPanel(width, height int) string {
	var sb strings.Builder

	title := m.platform.String()
	if m.backend != "" {
		title += " · " + m.backend
	}
	if m.expanded {
		title = "Expanded QASM"
	}
	if m.focus == focusOutput {
		title += " [ACTIVE]"
	}
	sb.WriteString(titleStyle.Render(title))
	sb.WriteString("\n\n")
	sb.WriteString(m.output.View())

	return outputStyle.Width(width).Height(height).Render(sb.String())
}

// statusLine describes the current translation: the error, a transient
// message, or circuit statistics.
func (m Model) statusLine() string {
	switch {
	case m.err != nil:
		return errorStyle.Render(m.err.Error())
	case m.statusMsg != "":
		return activeStyle.Render(m.statusMsg)
	case m.circuit != nil:
		s := m.circuit.Stats()
		return statStyle.Render(fmt.Sprintf("%d qubits  %d clbits  %d instructions  %d measurements  depth %d",
			s.Qubits, s.Clbits, s.Instructions, s.Measurements, s.Depth))
	}
	return ""
}

// renderControlsPanel renders the bottom help/controls bar.
func (m Model) renderControlsPanel(width, height int) string {
	var sb strings.Builder

	sb.WriteString(m.statusLine())
	sb.WriteString("\n")

	sb.WriteString(activeStyle.Render("Actions: "))
	sb.WriteString("Tab Switch focus  ^P Target  ^E Expanded  ^S Save  ^C Quit")

	return controlsStyle.Width(width).Height(height).Render(sb.String())
}

// ──────────────────────────── Overlay helpers ────────────────────────────

// overlayAt composites the overlay string on top of the background at position (x, y).
func overlayAt(bg, overlay string, x, y int) string {
	bgLines := strings.Split(bg, "\n")
	ovLines := strings.Split(overlay, "\n")

	for i, ovLine := range ovLines {
		bgIdx := y + i
		if bgIdx < 0 || bgIdx >= len(bgLines) {
			continue
		}
		bgLines[bgIdx] = spliceLineAt(bgLines[bgIdx], ovLine, x)
	}
	return strings.Join(bgLines, "\n")
}

// isEscEnd reports whether r terminates an ANSI escape sequence.
func isEscEnd(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// spliceLineAt replaces visible columns starting at x in bgLine with the
// overlay, skipping ANSI escape sequences when counting columns.
func spliceLineAt(bgLine, overlay string, x int) string {
	runes := []rune(bgLine)
	ovWidth := visibleLen(overlay)

	var prefix, suffix strings.Builder
	col, i := 0, 0

	for i < len(runes) && col < x {
		if runes[i] == '\x1b' {
			prefix.WriteRune(runes[i])
			i++
			for i < len(runes) {
				prefix.WriteRune(runes[i])
				i++
				if isEscEnd(runes[i-1]) {
					break
				}
			}
			continue
		}
		prefix.WriteRune(runes[i])
		col++
		i++
	}
	for col < x {
		prefix.WriteRune(' ')
		col++
	}

	skipped := 0
	for i < len(runes) && skipped < ovWidth {
		if runes[i] == '\x1b' {
			i++
			for i < len(runes) {
				i++
				if isEscEnd(runes[i-1]) {
					break
				}
			}
			continue
		}
		skipped++
		i++
	}

	for i < len(runes) {
		suffix.WriteRune(runes[i])
		i++
	}
	return prefix.String() + overlay + suffix.String()
}

// visibleLen returns the number of visible (non-ANSI-escape) characters in a string.
func visibleLen(s string) int {
	n := 0
	inEsc := false
	for _, r := range s {
		if r == '\x1b' {
			inEsc = true
			continue
		}
		if inEsc {
			if isEscEnd(r) {
				inEsc = false
			}
			continue
		}
		n++
	}
	return n
}
