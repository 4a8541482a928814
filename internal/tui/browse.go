// ABOUTME: Interactive cluster browser shown after a clustering run.
// ABOUTME: Spins while the pipeline runs, then lists clusters with a member preview.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/dendro/internal/models"
	"github.com/2389-research/dendro/internal/pipeline"
)

// previewRows caps the member list of the selected cluster.
const previewRows = 20

// RunFn produces the clustering result the browser displays.
type RunFn func(ctx context.Context) (*pipeline.Result, error)

type runResultMsg struct {
	res *pipeline.Result
	err error
}

var (
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	detailStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241")).
			Padding(0, 1)
)

// BrowseModel is the bubbletea model for browsing selected clusters.
type BrowseModel struct {
	title     string
	labels    []string
	run       RunFn
	spinner   spinner.Model
	cancelCtx *cancelHolder
	result    *pipeline.Result
	err       error
	cursor    int
	quitting  bool
}

// NewBrowseModel creates a browser for the rows named by labels.
func NewBrowseModel(title string, labels []string, run RunFn) BrowseModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return BrowseModel{
		title:     title,
		labels:    labels,
		run:       run,
		spinner:   s,
		cancelCtx: &cancelHolder{},
	}
}

// Init implements tea.Model.
func (m BrowseModel) Init() tea.Cmd {
	return tea.Batch(m.start(), m.spinner.Tick)
}

func (m BrowseModel) start() tea.Cmd {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelCtx.cancel = cancel
	run := m.run
	return func() tea.Msg {
		res, err := run(ctx)
		return runResultMsg{res: res, err: err}
	}
}

// Update implements tea.Model.
func (m BrowseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEscape:
			return m.quit()
		case tea.KeyUp:
			m.move(-1)
		case tea.KeyDown, tea.KeyTab:
			m.move(1)
		case tea.KeyRunes:
			switch msg.Runes[0] {
			case 'q':
				return m.quit()
			case 'k':
				m.move(-1)
			case 'j':
				m.move(1)
			}
		}
		return m, nil

	case runResultMsg:
		m.cancelCtx.cancel = nil
		m.result = msg.res
		m.err = msg.err
		return m, nil

	case spinner.TickMsg:
		if m.loading() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m BrowseModel) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.cancelCtx.cancel != nil {
		m.cancelCtx.cancel()
	}
	return m, tea.Quit
}

func (m *BrowseModel) move(delta int) {
	if m.result == nil || len(m.result.Clusters) == 0 {
		return
	}
	n := len(m.result.Clusters)
	m.cursor = (m.cursor + delta + n) % n
}

func (m BrowseModel) loading() bool {
	return m.result == nil && m.err == nil
}

func (m BrowseModel) memberLabels(c models.Cluster) []string {
	out := make([]string, len(c.Members))
	for i, idx := range c.Members {
		if idx < len(m.labels) && m.labels[idx] != "" {
			out[i] = m.labels[idx]
		} else {
			out[i] = fmt.Sprintf("#%d", idx)
		}
	}
	return out
}

// View implements tea.Model.
func (m BrowseModel) View() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(brandStyle.Render("   DENDRO"))
	b.WriteString(titleStyle.Render(" - " + m.title))
	b.WriteString("\n\n")

	switch {
	case m.loading():
		b.WriteString(m.spinner.View())
		b.WriteString(fmt.Sprintf(" Clustering %d rows...", len(m.labels)))
		b.WriteString("\n")

	case m.err != nil:
		b.WriteString(errorStyle.Render(fmt.Sprintf("✗ Clustering failed: %s", m.err.Error())))
		b.WriteString("\n\n")
		b.WriteString(promptStyle.Render("[q]uit"))
		b.WriteString("\n")

	default:
		res := m.result
		b.WriteString(stepStyle.Render(fmt.Sprintf("%s linkage, %s top %d", res.Method, res.Strategy, res.TopK)))
		b.WriteString("\n\n")
		for i, c := range res.Clusters {
			line := fmt.Sprintf("%d. %d rows  distance %.4g  cohesion %.3f  %s",
				i+1, len(c.Members), c.Distance, c.Cohesion, models.JoinLabels(m.memberLabels(c), 5))
			if i == m.cursor {
				b.WriteString(cursorStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		if len(res.Clusters) > 0 {
			selected := res.Clusters[m.cursor]
			b.WriteString("\n")
			b.WriteString(detailStyle.Render(strings.Join(m.preview(selected), "\n")))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(promptStyle.Render("↑/↓ select  [q]uit"))
		b.WriteString("\n")
	}

	return b.String()
}

func (m BrowseModel) preview(c models.Cluster) []string {
	names := m.memberLabels(c)
	if len(names) > previewRows {
		rest := len(names) - previewRows
		names = append(names[:previewRows:previewRows], fmt.Sprintf("... and %d more", rest))
	}
	return names
}

// Result returns the clustering result, or the error the run produced.
func (m BrowseModel) Result() (*pipeline.Result, error) {
	return m.result, m.err
}

// Selected returns the cluster under the cursor.
func (m BrowseModel) Selected() (models.Cluster, bool) {
	if m.result == nil || len(m.result.Clusters) == 0 {
		return models.Cluster{}, false
	}
	return m.result.Clusters[m.cursor], true
}
