// ABOUTME: Exports a merge tree as an SVG dendrogram.
// ABOUTME: Draws the classic U-shaped links with leaf labels along the bottom axis.
package dendrogram

import (
	"bufio"
	"fmt"
	"html"
	"io"

	"github.com/2389-research/dendro/internal/tree"
)

// SVGOptions sizes the drawing. Zero values fall back to defaults.
type SVGOptions struct {
	Width          int
	Height         int
	ColorThreshold float64 // fraction of the largest distance; 0 means DefaultColorThreshold
	Title          string
}

const (
	marginTop    = 40
	marginLeft   = 60
	marginRight  = 20
	marginBottom = 120
)

// WriteSVG draws the dendrogram of t, labelling leaf i with labels[i] when present.
func WriteSVG(w io.Writer, t *tree.Tree, labels []string, opts SVGOptions) error {
	if opts.Width <= 0 {
		opts.Width = 25*t.N() + marginLeft + marginRight
		if opts.Width < 400 {
			opts.Width = 400
		}
	}
	if opts.Height <= 0 {
		opts.Height = 500
	}
	if opts.ColorThreshold <= 0 {
		opts.ColorThreshold = DefaultColorThreshold
	}

	l := newLayout(t, opts.ColorThreshold)
	plotW := float64(opts.Width - marginLeft - marginRight)
	plotH := float64(opts.Height - marginTop - marginBottom)
	step := plotW / float64(t.N())

	x := func(v int) float64 { return marginLeft + step*(l.pos[v]+0.5) }
	y := func(v int) float64 {
		if l.maxDist == 0 {
			return marginTop + plotH
		}
		return marginTop + plotH*(1-l.height[v]/l.maxDist)
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		opts.Width, opts.Height, opts.Width, opts.Height)
	fmt.Fprintln(bw, `<rect width="100%" height="100%" fill="white"/>`)
	if opts.Title != "" {
		fmt.Fprintf(bw, `<text x="%d" y="24" font-family="sans-serif" font-size="16" text-anchor="middle">%s</text>`+"\n",
			opts.Width/2, html.EscapeString(opts.Title))
	}

	// Distance axis.
	axisX := float64(marginLeft - 10)
	fmt.Fprintf(bw, `<line x1="%.2f" y1="%d" x2="%.2f" y2="%.2f" stroke="black"/>`+"\n", axisX, marginTop, axisX, marginTop+plotH)
	for i := 0; i <= 4; i++ {
		frac := float64(i) / 4
		ty := marginTop + plotH*(1-frac)
		fmt.Fprintf(bw, `<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="10" text-anchor="end">%.3g</text>`+"\n",
			axisX-4, ty+3, l.maxDist*frac)
	}

	fmt.Fprintln(bw, `<g fill="none" stroke-width="1.5">`)
	for v := t.N(); v < t.Len(); v++ {
		left, right, _ := t.Children(v)
		fmt.Fprintf(bw, `<path d="M%.2f %.2f V%.2f H%.2f V%.2f" stroke="%s"/>`+"\n",
			x(left), y(left), y(v), x(right), y(right), l.color[v])
	}
	fmt.Fprintln(bw, `</g>`)

	for _, leaf := range l.order {
		label := fmt.Sprintf("%d", leaf)
		if leaf < len(labels) && labels[leaf] != "" {
			label = labels[leaf]
		}
		lx, ly := x(leaf), marginTop+plotH+8
		fmt.Fprintf(bw, `<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="11" text-anchor="end" transform="rotate(-90 %.2f %.2f)">%s</text>`+"\n",
			lx+4, ly, lx+4, ly, html.EscapeString(label))
	}

	fmt.Fprintln(bw, `</svg>`)
	return bw.Flush()
}
