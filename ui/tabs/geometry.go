// Package tabs keeps a tab header and a horizontally paged body in step.
// The pager owns the scroll offset; the header only ever reads the progress
// derived from it, so the underline follows a drag continuously and lands on
// the settled tab.
package tabs

import (
	"math"

	"github.com/mattn/go-runewidth"
)

const (
	ActiveOpacity   = 1.0
	InactiveOpacity = 0.4
)

// Metrics are the cell spacings of a header row.
type Metrics struct {
	ContainerPadding float64
	TabPadding       float64
	Gap              float64
}

// DefaultMetrics fits a header into a terminal row.
var DefaultMetrics = Metrics{ContainerPadding: 2, TabPadding: 1, Gap: 2}

type Tab struct {
	Label  string
	Offset float64
	Width  float64
}

// Layout measures every label in display cells and places the tabs.
func Layout(labels []string, m Metrics) []Tab {
	widths := make([]float64, len(labels))
	for i, l := range labels {
		widths[i] = float64(runewidth.StringWidth(l))
	}
	tabs := Place(widths, m)
	for i := range tabs {
		tabs[i].Label = labels[i]
	}
	return tabs
}

// Place positions tabs of known widths. The first tab starts after the
// container and tab padding; each following one starts after the previous
// tab, its trailing padding, the gap and its own leading padding.
func Place(widths []float64, m Metrics) []Tab {
	tabs := make([]Tab, len(widths))
	offset := m.ContainerPadding + m.TabPadding
	for i, w := range widths {
		if i > 0 {
			prev := tabs[i-1]
			offset = prev.Offset + prev.Width + m.TabPadding + m.Gap + m.TabPadding
		}
		tabs[i] = Tab{Offset: offset, Width: w}
	}
	return tabs
}

func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Interpolate maps x through the piecewise-linear function given by
// breakpoints and outputs. Values outside the breakpoints clamp to the
// first or last output.
func Interpolate(breakpoints, outputs []float64, x float64) float64 {
	n := min(len(breakpoints), len(outputs))
	if n == 0 {
		return 0
	}
	if n == 1 || x <= breakpoints[0] {
		return outputs[0]
	}
	if x >= breakpoints[n-1] {
		return outputs[n-1]
	}
	for i := 1; i < n; i++ {
		if x <= breakpoints[i] {
			lo, hi := breakpoints[i-1], breakpoints[i]
			if hi == lo {
				return outputs[i]
			}
			return Lerp(outputs[i-1], outputs[i], (x-lo)/(hi-lo))
		}
	}
	return outputs[n-1]
}

// Breakpoints returns i/(n-1) for every tab.
func Breakpoints(n int) []float64 {
	if n <= 1 {
		return []float64{0}
	}
	bp := make([]float64, n)
	for i := range bp {
		bp[i] = float64(i) / float64(n-1)
	}
	return bp
}

// Underline returns the underline geometry at progress.
func Underline(tabs []Tab, progress float64) (offset, width float64) {
	if len(tabs) == 0 {
		return 0, 0
	}
	offsets := make([]float64, len(tabs))
	widths := make([]float64, len(tabs))
	for i, t := range tabs {
		offsets[i] = t.Offset
		widths[i] = t.Width
	}
	bp := Breakpoints(len(tabs))
	return Interpolate(bp, offsets, progress), Interpolate(bp, widths, progress)
}

// Opacity of tab i at progress: full on its own breakpoint and fading
// linearly to InactiveOpacity one breakpoint away.
func Opacity(i, n int, progress float64) float64 {
	if n <= 1 {
		return ActiveOpacity
	}
	distance := math.Abs(progress*float64(n-1) - float64(i))
	if distance > 1 {
		distance = 1
	}
	return Lerp(ActiveOpacity, InactiveOpacity, distance)
}
