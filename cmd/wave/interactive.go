package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/wave/skeleton"
	"github.com/wippyai/wave/types"
	"github.com/wippyai/wave/validator"
	"github.com/wippyai/wave/wave"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	validStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type editorModel struct {
	err       error
	load      func(path string) ([]*types.Function, error)
	filename  string
	preselect string
	call      string
	funcs     []*types.Function
	inputs    []textinput.Model
	problems  []string
	selected  int
	focusIdx  int
	state     editorState
}

type editorState int

const (
	stateLoading editorState = iota
	stateSelectFunc
	stateEditArgs
	stateDone
)

// newEditorModel edits calls of the functions that load reads from filename.
func newEditorModel(filename, preselect string, load func(string) ([]*types.Function, error)) *editorModel {
	return &editorModel{
		load:      load,
		filename:  filename,
		preselect: preselect,
		state:     stateLoading,
	}
}

type loadedMsg struct {
	err   error
	funcs []*types.Function
}

func (m *editorModel) Init() tea.Cmd {
	return m.loadFunctions
}

func (m *editorModel) loadFunctions() tea.Msg {
	funcs, err := m.load(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	sort.Slice(funcs, func(i, j int) bool { return funcs[i].Name < funcs[j].Name })
	return loadedMsg{funcs: funcs}
}

func (m *editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.funcs = msg.funcs
		m.state = stateSelectFunc
		if m.preselect != "" {
			f, err := types.FindFunction(m.funcs, m.preselect)
			if err != nil {
				m.err = err
				return m, nil
			}
			for i := range m.funcs {
				if m.funcs[i] == f {
					m.selected = i
				}
			}
			return m, m.startEditing()
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.call = ""
			return m, tea.Quit

		case "q":
			if m.state != stateEditArgs {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectFunc {
				if m.selected > 0 {
					m.selected--
				}
				return m, nil
			}

		case "down", "j":
			if m.state == stateSelectFunc {
				if m.selected < len(m.funcs)-1 {
					m.selected++
				}
				return m, nil
			}

		case "enter":
			switch m.state {
			case stateSelectFunc:
				if len(m.funcs) > 0 {
					return m, m.startEditing()
				}
			case stateEditArgs:
				m.validateAll()
				if m.allValid() {
					return m, m.finish()
				}
			}
			return m, nil

		case "tab", "shift+tab":
			if m.state == stateEditArgs && len(m.inputs) > 1 {
				step := 1
				if msg.String() == "shift+tab" {
					step = len(m.inputs) - 1
				}
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + step) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}
			return m, nil

		case "esc":
			if m.state == stateEditArgs {
				m.state = stateSelectFunc
				m.inputs = nil
				m.problems = nil
			}
			return m, nil
		}
	}

	if m.state == stateEditArgs && len(m.inputs) > 0 {
		var cmd tea.Cmd
		m.inputs[m.focusIdx], cmd = m.inputs[m.focusIdx].Update(msg)
		m.validate(m.focusIdx)
		return m, cmd
	}

	return m, nil
}

// startEditing prefills one input per parameter with the WAVE text of the
// parameter's skeleton. Functions without parameters finish immediately.
func (m *editorModel) startEditing() tea.Cmd {
	f := m.funcs[m.selected]
	enc := wave.NewEncoder()

	m.inputs = make([]textinput.Model, len(f.Params))
	m.problems = make([]string, len(f.Params))
	for i, p := range f.Params {
		ti := textinput.New()
		ti.Placeholder = typeString(p.Type)
		ti.Prompt = p.Name + ": "
		ti.Width = 60
		text, _ := enc.Encode(skeleton.Generate(p.Type), p.Type)
		ti.SetValue(text)
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0

	if len(m.inputs) == 0 {
		return m.finish()
	}
	m.state = stateEditArgs
	m.validateAll()
	return nil
}

func (m *editorModel) finish() tea.Cmd {
	f := m.funcs[m.selected]
	args := make([]string, len(m.inputs))
	for i, input := range m.inputs {
		args[i] = strings.TrimSpace(input.Value())
	}
	m.call = f.Name + "(" + strings.Join(args, ", ") + ")"
	m.state = stateDone
	return tea.Quit
}

// validate parses input i against its parameter type and records the first
// problem, or "" when the argument is valid.
func (m *editorModel) validate(i int) {
	p := m.funcs[m.selected].Params[i]
	v, err := wave.ParseTyped(strings.TrimSpace(m.inputs[i].Value()), p.Type)
	if err == nil {
		err = validator.ValidateField(p.Name, v, p.Type)
	}
	m.problems[i] = ""
	if err != nil {
		m.problems[i] = err.Error()
	}
}

func (m *editorModel) validateAll() {
	for i := range m.inputs {
		m.validate(i)
	}
}

func (m *editorModel) allValid() bool {
	for _, p := range m.problems {
		if p != "" {
			return false
		}
	}
	return true
}

func (m *editorModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	switch m.state {
	case stateLoading:
		return "Loading functions..."
	case stateDone:
		return ""
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("WAVE Editor"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectFunc:
		if len(m.funcs) == 0 {
			b.WriteString("No functions found.\n\n")
			b.WriteString(helpStyle.Render("q quit"))
			break
		}
		b.WriteString("Select a function:\n\n")
		for i, f := range m.funcs {
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + formatFunc(f, false)))
			} else {
				b.WriteString("  " + formatFunc(f, true))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter edit • q quit"))

	case stateEditArgs:
		f := m.funcs[m.selected]
		b.WriteString(fmt.Sprintf("Arguments of %s\n\n", funcStyle.Render(f.Name)))
		for i, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString(" ")
			b.WriteString(typeStyle.Render(typeString(f.Params[i].Type)))
			b.WriteString("\n")
			if m.problems[i] != "" {
				b.WriteString("  " + errorStyle.Render(m.problems[i]))
			} else {
				b.WriteString("  " + validStyle.Render("✓"))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter accept • esc back"))
	}

	return b.String()
}

// formatFunc renders a signature row. The selected row is painted as a
// whole, so it asks for the plain text.
func formatFunc(f *types.Function, styled bool) string {
	paint := func(s lipgloss.Style, text string) string {
		if styled {
			return s.Render(text)
		}
		return text
	}
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name + ": " + paint(typeStyle, typeString(p.Type))
	}
	result := ""
	if f.Result != nil {
		result = " -> " + paint(typeStyle, f.Result.String())
	}
	return paint(funcStyle, f.Name) + "(" + strings.Join(params, ", ") + ")" + result
}

func typeString(t types.Type) string {
	if t == nil {
		return "any"
	}
	return t.String()
}

// runEditor runs the editor and prints the accepted call to out.
func runEditor(filename, funcName string, load func(string) ([]*types.Function, error), out io.Writer) error {
	p := tea.NewProgram(newEditorModel(filename, funcName, load), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}
	m := final.(*editorModel)
	if m.err != nil {
		return m.err
	}
	if m.call != "" {
		fmt.Fprintln(out, m.call)
	}
	return nil
}
