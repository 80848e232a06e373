// Package preview is a terminal UI that re-translates OpenQASM as it is
// edited and shows the generated program side by side.
package preview

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"qniverse/internal/circuit"
	"qniverse/internal/emit"
	"qniverse/internal/translate"
)

type target struct {
	platform emit.Platform
	backend  string
}

// focus represents which panel/mode has keyboard input.
type focus int

const (
	focusEditor focus = iota
	focusOutput
	focusMenu
)

// Model represents the TUI application state.
type Model struct {
	translator *translate.Translator
	path       string // source file, used to name saved output
	platform   emit.Platform
	backend    string

	editor textarea.Model
	output viewport.Model
	focus  focus
	width  int
	height int

	lastSource string
	circuit    *circuit.Circuit // nil while the source does not resolve
	generated  string
	genTarget  target // platform and backend generated was produced for
	err        error
	expanded   bool   // show the resolved QASM instead of generated code
	statusMsg  string // transient status message (e.g. save confirmation)

	// Menu state
	menuCat  int
	menuItem int
}

// New builds the preview for source read from path.
func New(tr *translate.Translator, path, source string, platform emit.Platform, backend string) Model {
	ta := textarea.New()
	ta.Placeholder = "Edit QASM here..."
	ta.SetWidth(40)
	ta.SetHeight(20)
	ta.ShowLineNumbers = true
	ta.CharLimit = 0
	ta.KeyMap.InsertNewline.SetEnabled(true)
	ta.SetValue(source)
	ta.Focus()

	m := Model{
		translator: tr,
		path:       path,
		platform:   platform,
		backend:    backend,
		editor:     ta,
		output:     viewport.New(40, 20),
		focus:      focusEditor,
	}
	m.retranslate()
	return m
}

// Run starts the preview on the alternate screen and blocks until it exits.
func Run(m Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return errors.Wrap(err, "run preview")
}

// retranslate parses the editor contents and regenerates the output. The
// previous output stays visible while the source has errors, as long as it
// was generated for the current target.
func (m *Model) retranslate() {
	src := m.editor.Value()
	m.lastSource = src

	c, err := m.translator.Parse(src)
	if err != nil {
		m.fail(err)
		return
	}
	out, err := m.translator.Emit(c, m.platform, m.backend)
	if err != nil {
		m.fail(err)
		return
	}
	m.err = nil
	m.circuit = c
	m.generated = out
	m.genTarget = target{m.platform, m.backend}
	m.refreshOutput()
}

func (m *Model) fail(err error) {
	m.err = err
	m.circuit = nil
	if m.genTarget != (target{m.platform, m.backend}) {
		m.generated = ""
		m.refreshOutput()
	}
}

func (m *Model) refreshOutput() {
	switch {
	case m.expanded && m.circuit != nil:
		m.output.SetContent(m.circuit.QASM())
	case m.generated == "" && m.err != nil:
		m.output.SetContent(dimStyle.Render("No output for this target until the errors are fixed"))
	default:
		m.output.SetContent(m.generated)
	}
}

// outputPath names the file ctrl+s writes: the source name with the
// platform and a .py extension.
func (m Model) outputPath() string {
	base := m.path
	if base == "" {
		base = "circuit.qasm"
	}
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s_%s.py", base, m.platform)
}

func (m *Model) save() {
	if m.err != nil || m.generated == "" {
		m.statusMsg = "Nothing to save: fix the errors first"
		return
	}
	path := m.outputPath()
	if err := os.WriteFile(path, []byte(m.generated), 0644); err != nil {
		m.statusMsg = fmt.Sprintf("Save failed: %v", err)
		return
	}
	m.statusMsg = "Saved " + path
}

// ──────────────────────────── Init / Update ────────────────────────────

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		paneW := max(msg.Width/2-6, 20)
		ctrlH := 6
		paneH := max(msg.Height-ctrlH-8, 4)
		m.editor.SetWidth(paneW)
		m.editor.SetHeight(paneH)
		m.output.Width = paneW
		m.output.Height = paneH
		m.refreshOutput()

	case tea.KeyMsg:
		key := msg.String()
		m.statusMsg = ""

		if key == "ctrl+c" {
			return m, tea.Quit
		}

		switch m.focus {
		case focusMenu:
			switch key {
			case "esc":
				m.focus = focusEditor
				m.editor.Focus()
			case "up", "k":
				if m.menuItem > 0 {
					m.menuItem--
				}
			case "down", "j":
				if m.menuItem < len(backendMenu[m.menuCat].items)-1 {
					m.menuItem++
				}
			case "left", "h":
				if m.menuCat > 0 {
					m.menuCat--
					m.menuItem = 0
				}
			case "right", "l":
				if m.menuCat < len(backendMenu)-1 {
					m.menuCat++
					m.menuItem = 0
				}
			case "enter":
				cat := backendMenu[m.menuCat]
				m.platform = cat.platform
				m.backend = cat.items[m.menuItem].backend
				m.focus = focusEditor
				m.editor.Focus()
				m.retranslate()
				m.statusMsg = fmt.Sprintf("Target: %s %s", m.platform, cat.items[m.menuItem].name)
			}
			return m, nil
		}

		switch key {
		case "tab":
			if m.focus == focusEditor {
				m.focus = focusOutput
				m.editor.Blur()
			} else {
				m.focus = focusEditor
				m.editor.Focus()
			}
			return m, nil
		case "ctrl+p":
			m.focus = focusMenu
			m.editor.Blur()
			m.menuCat, m.menuItem = menuPosition(m.platform, m.backend)
			return m, nil
		case "ctrl+s":
			m.save()
			return m, nil
		case "ctrl+e":
			m.expanded = !m.expanded
			m.refreshOutput()
			return m, nil
		case "esc":
			if m.focus == focusOutput {
				return m, tea.Quit
			}
		}

		if m.focus == focusOutput {
			if key == "q" {
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.output, cmd = m.output.Update(msg)
			return m, cmd
		}
	}

	if m.focus == focusEditor {
		var cmd tea.Cmd
		m.editor, cmd = m.editor.Update(msg)
		cmds = append(cmds, cmd)
		if m.editor.Value() != m.lastSource {
			m.retranslate()
		}
	}

	return m, tea.Batch(cmds...)
}
