// Package console runs a session in a terminal using tcell. Keys are mapped
// onto the console's buttons so the keyboard-driven grid behaves the same as
// it does with a gamepad.
package console

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/omochice/aurorachat/internal/input"
	"github.com/omochice/aurorachat/internal/render"
	"github.com/omochice/aurorachat/internal/session"
)

// Host draws a session on a tcell screen and feeds it key presses.
type Host struct {
	screen tcell.Screen
	sess   *session.Session
	frame  time.Duration
	paste  func() (string, error)
	logger zerolog.Logger
}

// New creates a Host. frame is the delay between loop iterations.
func New(screen tcell.Screen, sess *session.Session, frame time.Duration, logger zerolog.Logger) *Host {
	return &Host{
		screen: screen,
		sess:   sess,
		frame:  frame,
		paste:  clipboard.ReadAll,
		logger: logger.With().Str("component", "console").Logger(),
	}
}

// NewScreen opens the terminal screen.
func NewScreen() (tcell.Screen, error) {
	return tcell.NewScreen()
}

// Run drives the session until it quits or ctx is cancelled.
func (h *Host) Run(ctx context.Context) error {
	if err := h.screen.Init(); err != nil {
		return err
	}
	defer h.screen.Fini()

	limiter := rate.NewLimiter(rate.Every(h.frame), 1)
	for ctx.Err() == nil {
		if !h.tick(ctx) {
			return nil
		}
		if err := limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	return nil
}

// tick runs one frame and reports whether the loop should continue.
func (h *Host) tick(ctx context.Context) bool {
	pressed := h.drainEvents()
	if !h.sess.Step(ctx, pressed) {
		return false
	}
	h.draw()
	return true
}

// drainEvents consumes every queued event and returns the buttons they
// triggered.
func (h *Host) drainEvents() input.Buttons {
	var pressed input.Buttons
	for h.screen.HasPendingEvent() {
		switch ev := h.screen.PollEvent().(type) {
		case *tcell.EventResize:
			h.screen.Sync()
		case *tcell.EventKey:
			if ev.Key() == tcell.KeyCtrlV {
				h.pasteClipboard()
				continue
			}
			pressed |= keyButtons(ev)
		case nil:
			return pressed
		}
	}
	return pressed
}

func (h *Host) pasteClipboard() {
	text, err := h.paste()
	if err != nil {
		h.logger.Warn().Err(err).Msg("clipboard read failed")
		return
	}
	n := h.sess.Paste(text)
	h.logger.Debug().Int("runes", n).Msg("pasted")
}

// keyButtons maps a terminal key onto console buttons.
func keyButtons(ev *tcell.EventKey) input.Buttons {
	switch ev.Key() {
	case tcell.KeyUp:
		return input.ButtonUp
	case tcell.KeyDown:
		return input.ButtonDown
	case tcell.KeyLeft:
		return input.ButtonLeft
	case tcell.KeyRight:
		return input.ButtonRight
	case tcell.KeyEnter:
		return input.ButtonA
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return input.ButtonB
	case tcell.KeyTab:
		return input.ButtonX
	case tcell.KeyCtrlS:
		return input.ButtonPlus
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return input.ButtonHome
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'a':
			return input.ButtonA
		case 'b':
			return input.ButtonB
		case 'x':
			return input.ButtonX
		case 'l':
			return input.ButtonL
		case '+':
			return input.ButtonPlus
		case 'h':
			return input.ButtonHome
		}
	}
	return 0
}

var styles = map[render.Style]tcell.Style{
	render.Normal:   tcell.StyleDefault,
	render.Title:    tcell.StyleDefault.Foreground(tcell.ColorAqua).Bold(true),
	render.Selected: tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow),
	render.Status:   tcell.StyleDefault.Foreground(tcell.ColorGreen),
	render.Dim:      tcell.StyleDefault.Foreground(tcell.ColorGray),
}

func (h *Host) draw() {
	h.screen.Clear()
	frame := render.Compose(h.sess.View())
	for y, line := range frame.Lines {
		x := 0
		for _, seg := range line {
			st := styles[seg.Style]
			for _, r := range seg.Text {
				h.screen.SetContent(x, y, r, nil, st)
				x += runewidth.RuneWidth(r)
			}
		}
	}
	h.screen.Show()
}
