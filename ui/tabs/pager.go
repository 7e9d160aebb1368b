package tabs

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Pager owns the horizontal scroll offset of a row of equally wide pages.
type Pager struct {
	PageWidth float64
	PageCount int
	Offset    float64
}

func (p Pager) MaxOffset() float64 {
	if p.PageCount <= 1 || p.PageWidth <= 0 {
		return 0
	}
	return p.PageWidth * float64(p.PageCount-1)
}

// Progress is the offset normalised to [0, 1] across all pages.
func (p Pager) Progress() float64 {
	limit := p.MaxOffset()
	if limit == 0 {
		return 0
	}
	return p.Offset / limit
}

// SettledIndex is the page the offset rounds to.
func (p Pager) SettledIndex() int {
	if p.PageWidth <= 0 || p.PageCount == 0 {
		return 0
	}
	i := int(math.Round(p.Offset / p.PageWidth))
	return max(0, min(i, p.PageCount-1))
}

// PageOffset is the offset at which page i is fully shown.
func (p Pager) PageOffset(i int) float64 {
	i = max(0, min(i, p.PageCount-1))
	return float64(i) * p.PageWidth
}

func (p *Pager) SetOffset(offset float64) {
	p.Offset = max(0, min(offset, p.MaxOffset()))
}

func (p *Pager) ScrollBy(dx float64) {
	p.SetOffset(p.Offset + dx)
}

// Resize changes the page width and keeps the same fractional position.
func (p *Pager) Resize(pageWidth float64) {
	progress := p.Progress()
	p.PageWidth = pageWidth
	p.Offset = progress * p.MaxOffset()
}

// View lays the pages side by side and shows the PageWidth cells at the
// current offset. Every page is padded to PageWidth and height rows.
func (p Pager) View(pages []string, height int) string {
	width := int(p.PageWidth)
	if width <= 0 || len(pages) == 0 {
		return ""
	}
	frame := lipgloss.NewStyle().Width(width).MaxWidth(width).Height(height).MaxHeight(height)
	rows := make([]strings.Builder, height)
	for _, page := range pages {
		lines := strings.Split(frame.Render(page), "\n")
		for r := 0; r < height; r++ {
			line := ""
			if r < len(lines) {
				line = lines[r]
			}
			rows[r].WriteString(line)
			if pad := width - ansi.StringWidth(line); pad > 0 {
				rows[r].WriteString(strings.Repeat(" ", pad))
			}
		}
	}
	left := int(math.Round(p.Offset))
	out := make([]string, height)
	for r := range rows {
		out[r] = ansi.Cut(rows[r].String(), left, left+width)
	}
	return strings.Join(out, "\n")
}
