package tabs

import (
	"math"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/harmonica"
)

const (
	fps             = 60
	springFrequency = 7.0
	springDamping   = 1.0
	settleDelay     = 150 * time.Millisecond
	restDistance    = 0.05
	restVelocity    = 0.05
)

// WheelStep is how far one horizontal wheel notch drags the pager.
const WheelStep = 4.0

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// FrameMsg advances the scroll animation of the Sync with the same id. A
// frame from an earlier animation carries an old generation and is dropped.
type FrameMsg struct {
	id  int
	gen int
}

// SettleMsg asks the Sync to snap to the nearest page once dragging stops.
type SettleMsg struct {
	id  int
	gen int
}

// PressMsg selects tab Index as if it had been tapped.
type PressMsg struct {
	Index int
}

// DragMsg moves the pager by DX cells without animation.
type DragMsg struct {
	DX float64
}

// Sync binds the active tab to a Pager. The parent screen owns it and feeds
// it messages from its Update.
type Sync struct {
	Active int
	Pager  Pager

	id        int
	gen       int
	spring    harmonica.Spring
	velocity  float64
	target    float64
	animating bool
}

func NewSync(pageCount int, pageWidth float64) Sync {
	return Sync{
		Pager:  Pager{PageWidth: pageWidth, PageCount: pageCount},
		id:     nextID(),
		spring: harmonica.NewSpring(harmonica.FPS(fps), springFrequency, springDamping),
	}
}

func (s Sync) ID() int {
	return s.id
}

func (s Sync) Progress() float64 {
	return s.Pager.Progress()
}

func (s Sync) Animating() bool {
	return s.animating
}

// Press makes tab i active right away and animates the pager to its page.
func (s *Sync) Press(i int) tea.Cmd {
	if s.Pager.PageCount == 0 {
		return nil
	}
	i = max(0, min(i, s.Pager.PageCount-1))
	s.Active = i
	s.gen++
	s.target = s.Pager.PageOffset(i)
	if s.Pager.Offset == s.target {
		s.animating = false
		s.velocity = 0
		return nil
	}
	s.animating = true
	return s.frame()
}

// Drag moves the offset directly, cancelling a running animation. The
// returned command settles the pager once no drag follows for a moment.
func (s *Sync) Drag(dx float64) tea.Cmd {
	s.gen++
	s.animating = false
	s.velocity = 0
	s.Pager.ScrollBy(dx)
	msg := SettleMsg{id: s.id, gen: s.gen}
	return tea.Tick(settleDelay, func(time.Time) tea.Msg {
		return msg
	})
}

// Settle snaps the offset to the nearest page and reports whether that
// changed the active tab.
func (s *Sync) Settle() bool {
	i := s.Pager.SettledIndex()
	s.Pager.Offset = s.Pager.PageOffset(i)
	s.animating = false
	s.velocity = 0
	if i == s.Active {
		return false
	}
	s.Active = i
	return true
}

// Resize keeps the active page in view at the new width.
func (s *Sync) Resize(pageWidth float64) {
	s.gen++
	s.animating = false
	s.velocity = 0
	s.Pager.PageWidth = pageWidth
	s.Pager.Offset = s.Pager.PageOffset(s.Active)
}

// Update handles the messages addressed to this Sync. changed reports a new
// active tab.
func (s *Sync) Update(msg tea.Msg) (changed bool, cmd tea.Cmd) {
	switch msg := msg.(type) {
	case FrameMsg:
		if msg.id != s.id || msg.gen != s.gen || !s.animating {
			return false, nil
		}
		pos, vel := s.spring.Update(s.Pager.Offset, s.velocity, s.target)
		s.velocity = vel
		s.Pager.SetOffset(pos)
		if math.Abs(s.Pager.Offset-s.target) < restDistance && math.Abs(s.velocity) < restVelocity {
			return s.Settle(), nil
		}
		return false, s.frame()

	case SettleMsg:
		if msg.id != s.id || msg.gen != s.gen {
			return false, nil
		}
		return s.Settle(), nil

	case PressMsg:
		before := s.Active
		cmd := s.Press(msg.Index)
		return s.Active != before, cmd

	case DragMsg:
		return false, s.Drag(msg.DX)
	}
	return false, nil
}

func (s *Sync) frame() tea.Cmd {
	msg := FrameMsg{id: s.id, gen: s.gen}
	return tea.Tick(time.Second/fps, func(time.Time) tea.Msg {
		return msg
	})
}
