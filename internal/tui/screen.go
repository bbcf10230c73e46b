package tui

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// withScreen runs fn inside an initialized terminal screen and restores
// the terminal on every exit path, including panics.
func withScreen(fn func(tcell.Screen) error) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	screen.SetStyle(tcell.StyleDefault)
	screen.Clear()
	return fn(screen)
}

// session wraps a screen with a channel-based event source so the
// foreground can do bounded waits. tcell's PollEvent blocks with no
// timeout; routing events through a channel lets transfer loops select
// between "next key" and "poll the task handle".
type session struct {
	screen tcell.Screen
	events chan tcell.Event
	quit   chan struct{}
}

func newSession(screen tcell.Screen) *session {
	s := &session{
		screen: screen,
		events: make(chan tcell.Event, 16),
		quit:   make(chan struct{}),
	}
	go screen.ChannelEvents(s.events, s.quit)
	return s
}

func (s *session) close() {
	close(s.quit)
}

// waitEvent blocks until the next terminal event. Returns nil when the
// event source has shut down.
func (s *session) waitEvent() tcell.Event {
	ev, ok := <-s.events
	if !ok {
		return nil
	}
	return ev
}

// pollEvent waits up to timeout for an event. The second return is false
// when nothing arrived in time.
func (s *session) pollEvent(timeout time.Duration) (tcell.Event, bool) {
	select {
	case ev, ok := <-s.events:
		if !ok {
			return nil, false
		}
		return ev, true
	case <-time.After(timeout):
		return nil, false
	}
}

// drawText writes a string at (x, y), clipped to maxWidth.
func drawText(screen tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) {
	col := x
	for _, r := range text {
		if col >= x+maxWidth {
			break
		}
		screen.SetContent(col, y, r, nil, style)
		col++
	}
}

// fillRow paints a full row with the given style, used for the top and
// bottom bars.
func fillRow(screen tcell.Screen, y, width int, style tcell.Style) {
	for x := 0; x < width; x++ {
		screen.SetContent(x, y, ' ', nil, style)
	}
}
