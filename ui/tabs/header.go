package tabs

import (
	"fmt"
	"math"
	"strings"

	"github.com/AustinHatem/crema-live/ui/common"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var underlineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_PRIMARY))

// Header draws the tab labels with an underline below them. It holds no
// selection of its own: View takes the pager progress.
type Header struct {
	Tabs    []Tab
	Metrics Metrics
}

func NewHeader(labels []string, m Metrics) Header {
	return Header{Tabs: Layout(labels, m), Metrics: m}
}

// View renders two rows: the labels and the underline.
func (h Header) View(progress float64) string {
	var labels strings.Builder
	col := 0
	for i, t := range h.Tabs {
		start := int(math.Round(t.Offset))
		if start > col {
			labels.WriteString(strings.Repeat(" ", start-col))
			col = start
		}
		labels.WriteString(labelStyle(Opacity(i, len(h.Tabs), progress)).Render(t.Label))
		col += int(t.Width)
	}

	offset, width := Underline(h.Tabs, progress)
	left := max(0, int(math.Round(offset)))
	cells := max(1, int(math.Round(width)))
	underline := strings.Repeat(" ", left) + underlineStyle.Render(strings.Repeat("━", cells))

	return labels.String() + "\n" + underline
}

// TabAt returns the tab under column x, -1 when x falls between tabs.
func (h Header) TabAt(x int) int {
	fx := float64(x)
	for i, t := range h.Tabs {
		if fx >= t.Offset-h.Metrics.TabPadding && fx < t.Offset+t.Width+h.Metrics.TabPadding {
			return i
		}
	}
	return -1
}

// Mouse translates a mouse event relative to the header's top-left corner
// into a PressMsg or DragMsg. It returns nil for events the header ignores.
func (h Header) Mouse(msg tea.MouseMsg, x, y int) tea.Msg {
	switch msg.Button {
	case tea.MouseButtonWheelLeft:
		return DragMsg{DX: -WheelStep}
	case tea.MouseButtonWheelRight:
		return DragMsg{DX: WheelStep}
	case tea.MouseButtonLeft:
		if msg.Action != tea.MouseActionPress || y < 0 || y > 1 {
			return nil
		}
		if i := h.TabAt(x); i >= 0 {
			return PressMsg{Index: i}
		}
	}
	return nil
}

// labelStyle fades a label from white towards the background. Only the fully
// selected label is bold.
func labelStyle(opacity float64) lipgloss.Style {
	v := int(math.Round(255 * opacity))
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", v, v, v)))
	if opacity >= 0.95 {
		s = s.Bold(true)
	}
	return s
}
