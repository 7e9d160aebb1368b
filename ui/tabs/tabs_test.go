package tabs

import (
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

var phoneMetrics = Metrics{ContainerPadding: 20, TabPadding: 4, Gap: 12}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPlace(t *testing.T) {
	tabs := Place([]float64{78, 32}, phoneMetrics)
	if !near(tabs[0].Offset, 24) || !near(tabs[1].Offset, 122) {
		t.Errorf("Expected offsets 24 and 122, got %v and %v", tabs[0].Offset, tabs[1].Offset)
	}
}

func TestLayoutMeasuresLabels(t *testing.T) {
	tabs := Layout([]string{"Following", "Live"}, DefaultMetrics)
	if tabs[0].Width != 9 || tabs[1].Width != 4 {
		t.Errorf("Expected widths 9 and 4, got %v and %v", tabs[0].Width, tabs[1].Width)
	}
	if tabs[0].Label != "Following" {
		t.Errorf("Expected label to be kept, got %q", tabs[0].Label)
	}
	// wide runes take two cells
	wide := Layout([]string{"ライブ"}, DefaultMetrics)
	if wide[0].Width != 6 {
		t.Errorf("Expected width 6 for wide label, got %v", wide[0].Width)
	}
}

func TestUnderlineTwoTabs(t *testing.T) {
	tabs := Place([]float64{78, 32}, phoneMetrics)

	tests := []struct {
		progress float64
		offset   float64
		width    float64
	}{
		{0, 24, 78},
		{0.5, 73, 55},
		{1, 122, 32},
		{-0.5, 24, 78},
		{1.5, 122, 32},
	}
	for _, tt := range tests {
		offset, width := Underline(tabs, tt.progress)
		if !near(offset, tt.offset) || !near(width, tt.width) {
			t.Errorf("progress %v: expected (%v, %v), got (%v, %v)", tt.progress, tt.offset, tt.width, offset, width)
		}
	}
}

func TestUnderlineThreeTabs(t *testing.T) {
	tabs := []Tab{{Offset: 0, Width: 10}, {Offset: 20, Width: 4}, {Offset: 40, Width: 8}}
	offset, width := Underline(tabs, 0.75)
	if !near(offset, 30) || !near(width, 6) {
		t.Errorf("Expected (30, 6), got (%v, %v)", offset, width)
	}
	if o, w := Underline(nil, 0.5); o != 0 || w != 0 {
		t.Error("Expected zero geometry without tabs")
	}
}

func TestUnderlineContinuous(t *testing.T) {
	tabs := Place([]float64{9, 4, 13}, DefaultMetrics)
	prevOffset, prevWidth := Underline(tabs, 0)
	for step := 1; step <= 1000; step++ {
		offset, width := Underline(tabs, float64(step)/1000)
		if math.Abs(offset-prevOffset) > 0.1 || math.Abs(width-prevWidth) > 0.1 {
			t.Fatalf("Underline jumped at progress %v", float64(step)/1000)
		}
		prevOffset, prevWidth = offset, width
	}
}

func TestInterpolateClamps(t *testing.T) {
	bp := []float64{0, 1}
	out := []float64{10, 20}
	if v := Interpolate(bp, out, -1); v != 10 {
		t.Errorf("Expected 10, got %v", v)
	}
	if v := Interpolate(bp, out, 2); v != 20 {
		t.Errorf("Expected 20, got %v", v)
	}
	if v := Interpolate([]float64{0}, []float64{7}, 0.3); v != 7 {
		t.Errorf("Expected 7, got %v", v)
	}
}

func TestOpacity(t *testing.T) {
	tests := []struct {
		i, n     int
		progress float64
		want     float64
	}{
		{0, 2, 0, 1.0},
		{1, 2, 0, 0.4},
		{0, 2, 1, 0.4},
		{1, 2, 1, 1.0},
		{0, 2, 0.5, 0.7},
		{2, 3, 0, 0.4},
		{0, 1, 0.3, 1.0},
	}
	for _, tt := range tests {
		if got := Opacity(tt.i, tt.n, tt.progress); !near(got, tt.want) {
			t.Errorf("Opacity(%d, %d, %v) = %v, want %v", tt.i, tt.n, tt.progress, got, tt.want)
		}
	}
}

func TestPagerSettledIndex(t *testing.T) {
	p := Pager{PageWidth: 100, PageCount: 2}
	tests := []struct {
		offset float64
		want   int
	}{
		{0, 0},
		{49, 0},
		{50, 1},
		{100, 1},
	}
	for _, tt := range tests {
		p.SetOffset(tt.offset)
		if got := p.SettledIndex(); got != tt.want {
			t.Errorf("offset %v: expected page %d, got %d", tt.offset, tt.want, got)
		}
	}

	p.SetOffset(500)
	if p.Offset != 100 {
		t.Errorf("Expected offset clamped to 100, got %v", p.Offset)
	}
	p.ScrollBy(-1000)
	if p.Offset != 0 {
		t.Errorf("Expected offset clamped to 0, got %v", p.Offset)
	}
}

func TestPagerView(t *testing.T) {
	p := Pager{PageWidth: 5, PageCount: 2}
	view := p.View([]string{"aaaaa", "bbbbb"}, 1)
	if view != "aaaaa" {
		t.Errorf("Expected first page, got %q", view)
	}
	p.SetOffset(5)
	if view := p.View([]string{"aaaaa", "bbbbb"}, 1); view != "bbbbb" {
		t.Errorf("Expected second page, got %q", view)
	}
	p.SetOffset(2)
	if view := p.View([]string{"aaaaa", "bbbbb"}, 1); view != "aaabb" {
		t.Errorf("Expected a page boundary, got %q", view)
	}
}

// runFrames plays an animation to rest and returns how many frames it took.
func runFrames(t *testing.T, s *Sync, cmd tea.Cmd) int {
	t.Helper()
	frames := 0
	for cmd != nil {
		frames++
		if frames > 1000 {
			t.Fatal("Animation did not come to rest")
		}
		_, cmd = s.Update(FrameMsg{id: s.id, gen: s.gen})
	}
	return frames
}

func TestPressRoundTrip(t *testing.T) {
	s := NewSync(2, 80)

	cmd := s.Press(1)
	if s.Active != 1 {
		t.Fatalf("Press should activate the tab at once, got %d", s.Active)
	}
	if cmd == nil {
		t.Fatal("Expected an animation command")
	}
	runFrames(t, &s, cmd)
	if s.Pager.Offset != 80 {
		t.Errorf("Expected offset 80 after animation, got %v", s.Pager.Offset)
	}
	if s.Active != 1 || s.Pager.SettledIndex() != 1 {
		t.Error("Active tab should match the settled page")
	}
	if s.Animating() {
		t.Error("Animation should have stopped")
	}
}

func TestPressClamps(t *testing.T) {
	s := NewSync(2, 80)
	runFrames(t, &s, s.Press(7))
	if s.Active != 1 {
		t.Errorf("Expected clamp to last tab, got %d", s.Active)
	}
	if cmd := s.Press(1); cmd != nil {
		t.Error("Pressing the settled tab should not animate")
	}
}

func TestDragRoundTrip(t *testing.T) {
	s := NewSync(2, 80)

	s.Drag(30)
	if changed := s.Settle(); changed || s.Active != 0 {
		t.Error("A short drag should settle back on the first tab")
	}
	if s.Pager.Offset != 0 {
		t.Errorf("Expected snap back to 0, got %v", s.Pager.Offset)
	}

	s.Drag(50)
	if s.Active != 0 {
		t.Error("Dragging alone must not change the active tab")
	}
	if changed := s.Settle(); !changed || s.Active != 1 {
		t.Error("Expected settle to activate the second tab")
	}
	if changed := s.Settle(); changed {
		t.Error("Settling twice should be a no-op")
	}
}

func TestDragCancelsAnimation(t *testing.T) {
	s := NewSync(2, 80)
	s.Press(1)
	stale := FrameMsg{id: s.id, gen: s.gen}
	s.Drag(10)

	offset := s.Pager.Offset
	if _, cmd := s.Update(stale); cmd != nil || s.Pager.Offset != offset {
		t.Error("A frame from the cancelled animation should be ignored")
	}
}

func TestStaleSettleIgnored(t *testing.T) {
	s := NewSync(2, 80)
	s.Drag(60)
	stale := SettleMsg{id: s.id, gen: s.gen}
	s.Drag(-60)

	if changed, _ := s.Update(stale); changed {
		t.Error("An outdated settle should be ignored")
	}
	if changed, _ := s.Update(SettleMsg{id: s.id, gen: s.gen}); changed || s.Active != 0 {
		t.Error("Expected to stay on the first tab")
	}
}

func TestSyncsIgnoreEachOther(t *testing.T) {
	a := NewSync(2, 80)
	b := NewSync(2, 80)
	a.Press(1)
	b.Press(0)

	before := b.Pager.Offset
	b.Update(FrameMsg{id: a.id, gen: a.gen})
	if b.Pager.Offset != before {
		t.Error("A frame for another sync should be ignored")
	}
}

func TestMessagesDriveSync(t *testing.T) {
	s := NewSync(2, 80)
	changed, cmd := s.Update(PressMsg{Index: 1})
	if !changed || cmd == nil {
		t.Error("PressMsg should change the tab and start an animation")
	}
	runFrames(t, &s, cmd)

	_, cmd = s.Update(DragMsg{DX: -70})
	if cmd == nil {
		t.Error("DragMsg should schedule a settle")
	}
	if changed, _ := s.Update(SettleMsg{id: s.id, gen: s.gen}); !changed || s.Active != 0 {
		t.Error("Expected the settle to go back to the first tab")
	}
}

func TestResizeKeepsActivePage(t *testing.T) {
	s := NewSync(2, 80)
	runFrames(t, &s, s.Press(1))
	s.Resize(120)
	if s.Pager.Offset != 120 || s.Active != 1 {
		t.Errorf("Expected offset 120 on tab 1, got %v on %d", s.Pager.Offset, s.Active)
	}
}

func TestHeaderTabAt(t *testing.T) {
	h := NewHeader([]string{"Users", "Streams"}, DefaultMetrics)
	// Users sits at 3..8, Streams at 3+5+1+2+1=12..19
	tests := []struct {
		x    int
		want int
	}{
		{0, -1},
		{3, 0},
		{8, 0},
		{10, -1},
		{12, 1},
		{19, 1},
		{30, -1},
	}
	for _, tt := range tests {
		if got := h.TabAt(tt.x); got != tt.want {
			t.Errorf("TabAt(%d) = %d, want %d", tt.x, got, tt.want)
		}
	}

	msg := h.Mouse(tea.MouseMsg{X: 13, Y: 0, Button: tea.MouseButtonLeft, Action: tea.MouseActionPress}, 13, 0)
	if press, ok := msg.(PressMsg); !ok || press.Index != 1 {
		t.Errorf("Expected a press on tab 1, got %#v", msg)
	}
}

func TestHeaderView(t *testing.T) {
	h := NewHeader([]string{"Following", "Live"}, DefaultMetrics)
	rows := strings.Split(h.View(0), "\n")
	if len(rows) != 2 {
		t.Fatalf("Expected two rows, got %d", len(rows))
	}
	if !strings.Contains(rows[0], "Following") || !strings.Contains(rows[0], "Live") {
		t.Errorf("Expected both labels, got %q", rows[0])
	}
	if strings.Count(rows[1], "━") != 9 {
		t.Errorf("Expected the underline to span Following, got %q", rows[1])
	}
	if strings.Count(strings.Split(h.View(1), "\n")[1], "━") != 4 {
		t.Error("Expected the underline to span Live at full progress")
	}
}
