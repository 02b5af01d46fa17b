// Package ui draws the launcher grid on a tcell screen and serves as the
// launcher's windowing backend: hiding the surface suspends the screen so
// the child owns the terminal, restoring resumes and redraws it.
package ui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/kioskware/gridlaunch/internal/ansi"
	"github.com/kioskware/gridlaunch/internal/launch"
)

// DefaultStatusTTL is how long a status message stays in the header.
const DefaultStatusTTL = 5 * time.Second

const resultsHint = "Press Enter or tap to close"

// Options configures a Screen.
type Options struct {
	Title     string
	Columns   int
	StatusTTL time.Duration
	Logger    *slog.Logger
	Now       func() time.Time
}

type results struct {
	title  string
	lines  []string
	footer string
}

type status struct {
	text  string
	err   bool
	until time.Time
}

var (
	styleBase     = tcell.StyleDefault
	styleHeader   = tcell.StyleDefault.Reverse(true).Bold(true)
	styleMuted    = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleError    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleOK       = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleCard     = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleSelected = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
)

// Screen is the launcher surface. Its methods are called from the main
// loop only; PollEvent is the one call made from another goroutine.
type Screen struct {
	screen  tcell.Screen
	entries []launch.Entry
	title   string
	columns int
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time

	selected  int
	status    status
	overlay   *results
	suspended bool
	mouseDown bool
}

// New wraps an uninitialized tcell screen.
func New(scr tcell.Screen, entries []launch.Entry, opts *Options) *Screen {
	s := &Screen{
		screen:  scr,
		entries: entries,
		title:   opts.Title,
		columns: opts.Columns,
		ttl:     opts.StatusTTL,
		logger:  opts.Logger,
		now:     opts.Now,
	}

	if s.title == "" {
		s.title = "Launcher"
	}

	if s.columns < 1 {
		s.columns = 1
	}

	if s.ttl <= 0 {
		s.ttl = DefaultStatusTTL
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	if s.now == nil {
		s.now = time.Now
	}

	return s
}

// NewTerminal opens the controlling terminal as the launcher surface.
func NewTerminal(entries []launch.Entry, opts *Options) (*Screen, error) {
	scr, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("open terminal screen: %w", err)
	}

	return New(scr, entries, opts), nil
}

// Init takes over the terminal and draws the grid.
func (s *Screen) Init() error {
	if err := s.screen.Init(); err != nil {
		return fmt.Errorf("initialize terminal screen: %w", err)
	}

	s.screen.EnableMouse()
	s.screen.HideCursor()
	s.Draw()

	return nil
}

// Fini gives the terminal back. A pending PollEvent returns nil afterwards.
func (s *Screen) Fini() {
	s.screen.Fini()
}

// PollEvent blocks for the next terminal event.
func (s *Screen) PollEvent() tcell.Event {
	return s.screen.PollEvent()
}

// Wake unblocks a pending PollEvent with an interrupt event.
func (s *Screen) Wake() {
	_ = s.screen.PostEvent(tcell.NewEventInterrupt(nil))
}

// Selected returns the highlighted entry.
func (s *Screen) Selected() int {
	return s.selected
}

// Frame returns the layout for the current terminal size.
func (s *Screen) Frame() Frame {
	w, h := s.screen.Size()

	return ComputeFrame(w, h, s.columns, len(s.entries))
}

// HitTest resolves a cell to the entry drawn there.
func (s *Screen) HitTest(x, y int) (int, bool) {
	if s.overlay != nil {
		return 0, false
	}

	return s.Frame().HitTest(x, y)
}

// SelectionChanged moves the highlight.
func (s *Screen) SelectionChanged(index int) {
	s.selected = index
	s.Draw()
}

// OverlayVisible reports whether the results overlay is shown.
func (s *Screen) OverlayVisible() bool {
	return s.overlay != nil
}

// DismissOverlay closes the results overlay.
func (s *Screen) DismissOverlay() {
	if s.overlay == nil {
		return
	}

	s.overlay = nil
	s.Draw()
}

// ActivationResult reports a finished or failed launch. Captured output
// opens the results overlay; everything else is a header message.
func (s *Screen) ActivationResult(r *launch.Result) {
	name := r.Entry.Name

	switch {
	case r.Failed():
		s.SetStatus(fmt.Sprintf("Could not start %s: %v", name, r.Err), true)
	case r.Captured:
		lines := ansi.Lines(r.Output)
		if len(lines) == 0 {
			lines = []string{"(no output captured)"}
		}

		s.overlay = &results{
			title:  name + " — Results",
			lines:  lines,
			footer: r.Status.String(),
		}
		s.Draw()
	case r.Killed:
		s.SetStatus(name+" was stopped", false)
	default:
		failed := r.Status.Unknown || r.Status.Signaled || r.Status.Code != 0
		s.SetStatus(name+" "+r.Status.String(), failed)
	}
}

// SetStatus shows a transient header message.
func (s *Screen) SetStatus(text string, isErr bool) {
	s.status = status{text: text, err: isErr, until: s.now().Add(s.ttl)}
	s.Draw()
}

// Expire clears an expired status message and reports whether the screen
// was redrawn.
func (s *Screen) Expire() bool {
	if s.status.text == "" || s.now().Before(s.status.until) {
		return false
	}

	s.status = status{}
	s.Draw()

	return true
}

// HideSurface suspends the screen so a child can use the terminal.
func (s *Screen) HideSurface() error {
	if s.suspended {
		return nil
	}

	s.suspended = true
	s.mouseDown = false

	return s.screen.Suspend()
}

// RestoreSurface resumes the screen and redraws it.
func (s *Screen) RestoreSurface() error {
	if !s.suspended {
		return nil
	}

	err := s.screen.Resume()
	s.suspended = false

	s.screen.EnableMouse()
	s.screen.HideCursor()
	s.screen.Sync()
	s.Draw()

	return err
}

// Draw renders the whole surface. Nothing is drawn while suspended.
func (s *Screen) Draw() {
	if s.suspended {
		return
	}

	s.screen.Clear()

	frame := s.Frame()

	s.drawHeader(frame)
	s.drawCards(frame)
	s.drawFooter(frame)

	if s.overlay != nil {
		s.drawOverlay(frame)
	}

	s.screen.Show()
}

func (s *Screen) drawHeader(frame Frame) {
	fill(s.screen, Rect{W: frame.Width, H: 1}, styleHeader)
	drawText(s.screen, 1, 0, frame.Width-2, styleHeader, s.title)

	if len(s.entries) == 0 {
		drawText(s.screen, 1, 1, frame.Width-2, styleMuted, "No entries")
		return
	}

	if s.status.text == "" || !s.now().Before(s.status.until) {
		return
	}

	style := styleOK
	if s.status.err {
		style = styleError
	}

	drawText(s.screen, 1, 1, frame.Width-2, style, s.status.text)
}

func (s *Screen) drawCards(frame Frame) {
	for i, r := range frame.Cards {
		style := styleCard
		if i == s.selected {
			style = styleSelected
		}

		name := s.entries[i].Name

		if r.H < 3 || r.W < 3 {
			if i == s.selected {
				style = style.Reverse(true)
			}

			fill(s.screen, r, style)
			drawCentered(s.screen, r.X, r.Y+r.H/2, r.W, style, name)

			continue
		}

		drawBox(s.screen, r, style)
		drawCentered(s.screen, r.X+1, r.Y+r.H/2, r.W-2, style, name)
	}
}

func (s *Screen) drawFooter(frame Frame) {
	var stop string

	if s.overlay == nil && s.selected < len(s.entries) {
		if e := s.entries[s.selected]; e.Killable && e.KillTrigger.IsSet() {
			stop = "stop: " + e.KillTrigger.String()
		}
	}

	drawText(s.screen, 1, frame.Height-1, frame.Width-2, styleMuted, footerHint(stop, frame.Width-2))
}

const hintGap = "  "

// footerHint builds the key hint for width cells. Segments are dropped
// whole, least important first; the stop trigger is kept longest.
func footerHint(stop string, width int) string {
	segments := []struct {
		text string
		rank int
	}{
		{stop, 0},
		{"←↑↓→ select", 3},
		{"Enter launch", 2},
		{"Ctrl+C quit", 1},
	}

	keep := make([]bool, len(segments))
	used := 0

	for rank := range 4 {
		for i, seg := range segments {
			if seg.rank != rank || seg.text == "" {
				continue
			}

			w := runewidth.StringWidth(seg.text)
			if used > 0 {
				w += len(hintGap)
			}

			if used+w > width {
				continue
			}

			keep[i] = true
			used += w
		}
	}

	parts := make([]string, 0, len(segments))

	for i, seg := range segments {
		if keep[i] {
			parts = append(parts, seg.text)
		}
	}

	return strings.Join(parts, hintGap)
}

func (s *Screen) drawOverlay(frame Frame) {
	box := Rect{X: 2, Y: 1, W: frame.Width - 4, H: frame.Height - 2}
	if box.W < 4 || box.H < 4 {
		box = Rect{W: frame.Width, H: frame.Height}
	}

	fill(s.screen, box, styleBase)
	drawBox(s.screen, box, styleSelected)
	drawCentered(s.screen, box.X+1, box.Y, box.W-2, styleSelected, " "+s.overlay.title+" ")

	inner := Rect{X: box.X + 2, Y: box.Y + 1, W: box.W - 4, H: box.H - 3}

	lines := s.overlay.lines
	if len(lines) > inner.H {
		// Keep the tail; errors usually come last.
		lines = append([]string{ellipsis}, lines[len(lines)-inner.H+1:]...)
	}

	for i, line := range lines {
		drawText(s.screen, inner.X, inner.Y+i, inner.W, styleBase, line)
	}

	footer := strings.TrimSpace(s.overlay.footer + "   " + resultsHint)
	drawCentered(s.screen, box.X+1, box.Y+box.H-2, box.W-2, styleMuted, footer)
}
