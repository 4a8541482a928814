// ABOUTME: Terminal rendering of a dendrogram with box-drawing characters.
// ABOUTME: Leaves run down the left edge, merge distance grows to the right.
package dendrogram

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/dendro/internal/tree"
)

// TextOptions configures Render.
type TextOptions struct {
	Width          int // columns for the tree itself; 0 means 40
	MaxLabel       int // label truncation; 0 means 16
	ColorThreshold float64
}

var (
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	axisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const (
	dirUp = 1 << iota
	dirDown
	dirLeft
	dirRight
)

var boxRunes = map[int]rune{
	dirLeft | dirRight:                   '─',
	dirLeft:                              '─',
	dirRight:                             '─',
	dirUp | dirDown:                      '│',
	dirUp:                                '│',
	dirDown:                              '│',
	dirDown | dirLeft:                    '┐',
	dirUp | dirLeft:                      '┘',
	dirDown | dirRight:                   '┌',
	dirUp | dirRight:                     '└',
	dirUp | dirDown | dirLeft:            '┤',
	dirUp | dirDown | dirRight:           '├',
	dirLeft | dirRight | dirDown:         '┬',
	dirLeft | dirRight | dirUp:           '┴',
	dirUp | dirDown | dirLeft | dirRight: '┼',
}

// Render draws t as text, one leaf per line, labelled from labels.
func Render(t *tree.Tree, labels []string, opts TextOptions) string {
	if opts.Width <= 1 {
		opts.Width = 40
	}
	if opts.MaxLabel <= 0 {
		opts.MaxLabel = 16
	}
	if opts.ColorThreshold <= 0 {
		opts.ColorThreshold = DefaultColorThreshold
	}
	l := newLayout(t, opts.ColorThreshold)

	rows := len(l.order)
	row := make([]int, t.Len())
	col := make([]int, t.Len())
	for i, leaf := range l.order {
		row[leaf] = i
	}
	for v := t.N(); v < t.Len(); v++ {
		a, b, _ := t.Children(v)
		row[v] = (row[a] + row[b]) / 2
		frac := 0.0
		if l.maxDist > 0 {
			frac = l.height[v] / l.maxDist
		}
		col[v] = 1 + int(math.Round(frac*float64(opts.Width-2)))
	}

	grid := make([][]int, rows)
	owner := make([][]int, rows)
	for r := range grid {
		grid[r] = make([]int, opts.Width)
		owner[r] = make([]int, opts.Width)
		for c := range owner[r] {
			owner[r][c] = -1
		}
	}
	hline := func(r, c1, c2, v int) {
		if c1 > c2 {
			c1, c2 = c2, c1
		}
		for c := c1; c <= c2; c++ {
			if c > c1 {
				grid[r][c] |= dirLeft
			}
			if c < c2 {
				grid[r][c] |= dirRight
			}
			owner[r][c] = v
		}
	}
	vline := func(c, r1, r2, v int) {
		if r1 > r2 {
			r1, r2 = r2, r1
		}
		for r := r1; r <= r2; r++ {
			if r > r1 {
				grid[r][c] |= dirUp
			}
			if r < r2 {
				grid[r][c] |= dirDown
			}
			owner[r][c] = v
		}
	}
	for v := t.N(); v < t.Len(); v++ {
		a, b, _ := t.Children(v)
		hline(row[a], col[a], col[v], v)
		hline(row[b], col[b], col[v], v)
		vline(col[v], row[a], row[b], v)
	}

	labelWidth := 0
	names := make([]string, rows)
	for i, leaf := range l.order {
		name := fmt.Sprintf("%d", leaf)
		if leaf < len(labels) && labels[leaf] != "" {
			name = labels[leaf]
		}
		if r := []rune(name); len(r) > opts.MaxLabel {
			name = string(r[:opts.MaxLabel-1]) + "…"
		}
		names[i] = name
		if w := lipgloss.Width(name); w > labelWidth {
			labelWidth = w
		}
	}

	styles := make(map[string]lipgloss.Style)
	styleFor := func(v int) lipgloss.Style {
		color := AboveThresholdColor
		if v >= 0 && l.color[v] != "" {
			color = l.color[v]
		}
		s, ok := styles[color]
		if !ok {
			s = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
			styles[color] = s
		}
		return s
	}

	var sb strings.Builder
	for r := 0; r < rows; r++ {
		sb.WriteString(labelStyle.Render(names[r]))
		sb.WriteString(strings.Repeat(" ", labelWidth-lipgloss.Width(names[r])+1))
		line := []rune(strings.TrimRight(runeLine(grid[r]), " "))
		for c, ch := range line {
			if ch == ' ' {
				sb.WriteRune(ch)
				continue
			}
			sb.WriteString(styleFor(owner[r][c]).Render(string(ch)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Repeat(" ", labelWidth+1))
	sb.WriteString(axisStyle.Render(fmt.Sprintf("0%s%.3g", strings.Repeat(" ", max(opts.Width-2, 1)), l.maxDist)))
	sb.WriteString("\n")
	return sb.String()
}

func runeLine(cells []int) string {
	out := make([]rune, len(cells))
	for i, mask := range cells {
		if r, ok := boxRunes[mask]; ok {
			out[i] = r
		} else {
			out[i] = ' '
		}
	}
	return string(out)
}
