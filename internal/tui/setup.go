// ABOUTME: Interactive TUI wizard for pointing dendro at an embedding table.
// ABOUTME: 3-step bubbletea model collecting table path, dimension, and default top-K.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DefaultTopK is offered when the top-K step is left empty.
const DefaultTopK = 5

// Step represents the current wizard step.
type Step int

const (
	StepEmbeddings Step = iota
	StepDim
	StepTopK
	StepValidating
	StepDone
	StepFailed
)

// validationResultMsg carries the result of an async validation attempt.
type validationResultMsg struct {
	dim int
	err error
}

// ValidateFn checks an embedding table and returns its detected dimension.
type ValidateFn func(ctx context.Context, path string, dim int) (int, error)

// cancelHolder shares a cancel function across bubbletea model copies.
// This MUST be stored as a pointer field on SetupModel so that value-receiver
// methods (required by tea.Model) can store the cancel func and have it
// visible to all copies of the model.
type cancelHolder struct {
	cancel context.CancelFunc
}

// SetupModel is the bubbletea model for the setup wizard.
type SetupModel struct {
	step          Step
	inputs        [3]textinput.Model
	spinner       spinner.Model
	validateFn    ValidateFn
	cancelCtx     *cancelHolder
	inputErr      string
	detectedDim   int
	validationErr error
	quitting      bool
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("35"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// NewSetupModel creates a new setup wizard model, pre-filling with existing config values.
func NewSetupModel(path string, dim, topK int) SetupModel {
	pathInput := textinput.New()
	pathInput.Placeholder = "~/glove/glove.6B.50d.txt"
	pathInput.Focus()
	pathInput.Width = 60
	if path != "" {
		pathInput.SetValue(path)
	}

	dimInput := textinput.New()
	dimInput.Placeholder = "detect"
	dimInput.Width = 10
	if dim > 0 {
		dimInput.SetValue(strconv.Itoa(dim))
	}

	kInput := textinput.New()
	kInput.Placeholder = strconv.Itoa(DefaultTopK)
	kInput.Width = 10
	if topK > 0 {
		kInput.SetValue(strconv.Itoa(topK))
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	return SetupModel{
		step:       StepEmbeddings,
		inputs:     [3]textinput.Model{pathInput, dimInput, kInput},
		spinner:    s,
		validateFn: ValidateEmbeddings,
		cancelCtx:  &cancelHolder{},
	}
}

// Init implements tea.Model.
func (m SetupModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m SetupModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			m.quitting = true
			if m.cancelCtx.cancel != nil {
				m.cancelCtx.cancel()
			}
			return m, tea.Quit
		}

		switch m.step {
		case StepEmbeddings, StepDim, StepTopK:
			return m.updateInput(msg)
		case StepFailed:
			return m.updateFailed(msg)
		}

	case validationResultMsg:
		m.cancelCtx.cancel = nil
		m.detectedDim = msg.dim
		if msg.err == nil {
			if m.inputs[1].Value() == "" && msg.dim > 0 {
				m.inputs[1].SetValue(strconv.Itoa(msg.dim))
			}
			m.step = StepDone
			return m, tea.Quit
		}
		m.validationErr = msg.err
		m.step = StepFailed
		return m, nil

	case spinner.TickMsg:
		if m.step == StepValidating {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// parsePositive reads an optional positive integer; empty yields 0.
func parsePositive(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%q is not a positive number", s)
	}
	return n, nil
}

func (m SetupModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyEnter {
		idx := int(m.step)
		m.inputErr = ""

		switch m.step {
		case StepEmbeddings:
			m.inputs[0].SetValue(strings.TrimSpace(m.inputs[0].Value()))
			if m.inputs[0].Value() == "" {
				return m, nil
			}
		case StepDim:
			if _, err := parsePositive(m.inputs[1].Value()); err != nil {
				m.inputErr = err.Error()
				return m, nil
			}
		case StepTopK:
			if m.inputs[2].Value() == "" {
				m.inputs[2].SetValue(strconv.Itoa(DefaultTopK))
			}
			if _, err := parsePositive(m.inputs[2].Value()); err != nil {
				m.inputErr = err.Error()
				return m, nil
			}
		}

		m.inputs[idx].Blur()

		switch m.step {
		case StepEmbeddings:
			m.step = StepDim
			m.inputs[1].Focus()
			return m, textinput.Blink
		case StepDim:
			m.step = StepTopK
			m.inputs[2].Focus()
			return m, textinput.Blink
		case StepTopK:
			m.step = StepValidating
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		}
	}

	// Forward to the active input
	idx := int(m.step)
	var cmd tea.Cmd
	m.inputs[idx], cmd = m.inputs[idx].Update(msg)
	return m, cmd
}

func (m SetupModel) updateFailed(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyRunes {
		switch msg.Runes[0] {
		case 'r':
			m.step = StepValidating
			m.validationErr = nil
			return m, tea.Batch(m.startValidation(), m.spinner.Tick)
		case 's':
			m.step = StepDone
			return m, tea.Quit
		case 'q':
			m.quitting = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m SetupModel) startValidation() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelCtx.cancel = cancel
	path := m.inputs[0].Value()
	dim, _ := parsePositive(m.inputs[1].Value())
	fn := m.validateFn
	return func() tea.Msg {
		detected, err := fn(ctx, path, dim)
		return validationResultMsg{dim: detected, err: err}
	}
}

// View implements tea.Model.
func (m SetupModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(brandStyle.Render("   DENDRO"))
	b.WriteString(titleStyle.Render(" - Setup"))
	b.WriteString("\n\n")
	b.WriteString("Point dendro at a word-embedding table (GloVe text format).\n\n")

	dimLabel := m.inputs[1].Value()
	if dimLabel == "" {
		dimLabel = "detect"
	}

	switch m.step {
	case StepEmbeddings:
		b.WriteString(stepStyle.Render("Step 1 of 3: Embedding table"))
		b.WriteString("\n")
		b.WriteString(m.inputs[0].View())
		b.WriteString("\n")

	case StepDim:
		b.WriteString(fmt.Sprintf("  Table: %s\n\n", m.inputs[0].Value()))
		b.WriteString(stepStyle.Render("Step 2 of 3: Dimension"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("(press Enter to detect from the file)"))
		b.WriteString("\n")
		b.WriteString(m.inputs[1].View())
		b.WriteString("\n")

	case StepTopK:
		b.WriteString(fmt.Sprintf("  Table: %s\n", m.inputs[0].Value()))
		b.WriteString(fmt.Sprintf("  Dimension: %s\n\n", dimLabel))
		b.WriteString(stepStyle.Render("Step 3 of 3: Clusters to report (top-K)"))
		b.WriteString("\n")
		b.WriteString(promptStyle.Render(fmt.Sprintf("(press Enter for %d)", DefaultTopK)))
		b.WriteString("\n")
		b.WriteString(m.inputs[2].View())
		b.WriteString("\n")

	case StepValidating:
		b.WriteString(fmt.Sprintf("  Table: %s\n", m.inputs[0].Value()))
		b.WriteString(fmt.Sprintf("  Dimension: %s\n", dimLabel))
		b.WriteString(fmt.Sprintf("  Top-K: %s\n\n", m.inputs[2].Value()))
		b.WriteString(m.spinner.View())
		b.WriteString(" Validating embedding table...")
		b.WriteString("\n")

	case StepDone:
		b.WriteString(successStyle.Render(fmt.Sprintf("✓ Ready! (dimension %s)", dimLabel)))
		b.WriteString("\n")

	case StepFailed:
		errMsg := "unknown error"
		if m.validationErr != nil {
			errMsg = m.validationErr.Error()
		}
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ Validation failed: %s", errMsg)))
		b.WriteString("\n")
		if m.detectedDim > 0 {
			b.WriteString(promptStyle.Render(fmt.Sprintf("  the table has dimension %d", m.detectedDim)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("[r]etry  [s]ave anyway  [q]uit"))
		b.WriteString("\n")
	}

	if m.inputErr != "" {
		b.WriteString(errorStyle.Render(m.inputErr))
		b.WriteString("\n")
	}

	return b.String()
}

// Result returns the entered values. Dimension is 0 when left to detection
// and the table could not be read.
func (m SetupModel) Result() (path string, dim, topK int) {
	dim, _ = parsePositive(m.inputs[1].Value())
	topK, _ = parsePositive(m.inputs[2].Value())
	if topK == 0 {
		topK = DefaultTopK
	}
	return m.inputs[0].Value(), dim, topK
}

// ShouldSave returns true if the wizard completed (via validation success or
// "save anyway") and the user did not cancel with Ctrl+C, Escape, or 'q'.
func (m SetupModel) ShouldSave() bool {
	return m.step == StepDone && !m.quitting
}
