// Package gamepad runs a session in an ebiten window driven by a standard
// layout gamepad, with the keyboard as a fallback.
package gamepad

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"time"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/rs/zerolog"
	"golang.org/x/image/font/gofont/gomono"

	"github.com/omochice/aurorachat/internal/input"
	"github.com/omochice/aurorachat/internal/render"
	"github.com/omochice/aurorachat/internal/session"
)

const (
	minWidth   = 400
	minHeight  = 240
	fontSize   = 10
	charWidth  = 6 // gomono advance at fontSize
	lineHeight = 12
	margin     = 4
)

var palette = map[render.Style]color.Color{
	render.Normal:   color.White,
	render.Title:    color.RGBA{0x66, 0xcc, 0xff, 0xff},
	render.Selected: color.Black,
	render.Status:   color.RGBA{0x66, 0xff, 0x66, 0xff},
	render.Dim:      color.Gray{Y: 0x99},
}

var selectedFill = color.RGBA{0xff, 0xdd, 0x33, 0xff}

// Game implements ebiten.Game for a session.
type Game struct {
	ctx    context.Context
	sess   *session.Session
	face   *text.GoTextFace
	frame  render.Frame
	poll   func() input.Buttons
	logger zerolog.Logger
}

// NewGame creates a Game that polls real devices.
func NewGame(ctx context.Context, sess *session.Session, logger zerolog.Logger) (*Game, error) {
	src, err := text.NewGoTextFaceSource(bytes.NewReader(gomono.TTF))
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}
	return &Game{
		ctx:    ctx,
		sess:   sess,
		face:   &text.GoTextFace{Source: src, Size: fontSize},
		frame:  render.Compose(sess.View()),
		poll:   func() input.Buttons { return pollButtons(ebitenDevices{}) },
		logger: logger.With().Str("component", "gamepad").Logger(),
	}, nil
}

// Update advances the session by one frame.
func (g *Game) Update() error {
	if g.ctx.Err() != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyV) && ebiten.IsKeyPressed(ebiten.KeyControl) {
		g.pasteClipboard()
	}
	if !g.sess.Step(g.ctx, g.poll()) {
		return ebiten.Termination
	}
	g.frame = render.Compose(g.sess.View())
	return nil
}

func (g *Game) pasteClipboard() {
	s, err := clipboard.ReadAll()
	if err != nil {
		g.logger.Warn().Err(err).Msg("clipboard read failed")
		return
	}
	g.sess.Paste(s)
}

// Draw renders the frame composed by the last Update.
func (g *Game) Draw(screen *ebiten.Image) {
	for i, line := range g.frame.Lines {
		x := float64(margin)
		y := float64(margin + i*lineHeight)
		for _, seg := range line {
			w := text.Advance(seg.Text, g.face)
			if seg.Style == render.Selected {
				vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), lineHeight, selectedFill, false)
			}
			op := &text.DrawOptions{}
			op.GeoM.Translate(x, y)
			op.ColorScale.ScaleWithColor(palette[seg.Style])
			text.Draw(screen, seg.Text, g.face, op)
			x += w
		}
	}
}

// Layout returns a logical screen large enough for the current frame.
func (g *Game) Layout(_, _ int) (int, int) {
	return frameSize(g.frame)
}

// frameSize returns the logical size that holds every row of f at full
// width, never smaller than minWidth by minHeight.
func frameSize(f render.Frame) (w, h int) {
	cols := 0
	for _, l := range f.Lines {
		cols = max(cols, utf8.RuneCountInString(l.String()))
	}
	return max(minWidth, 2*margin+cols*charWidth), max(minHeight, 2*margin+len(f.Lines)*lineHeight)
}

// Run opens the window and blocks until the session ends.
func Run(ctx context.Context, sess *session.Session, frame time.Duration, logger zerolog.Logger) error {
	g, err := NewGame(ctx, sess, logger)
	if err != nil {
		return err
	}
	ebiten.SetTPS(ticksPerSecond(frame))
	w, h := frameSize(g.frame)
	ebiten.SetWindowSize(w*2, h*2)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowTitle("AuroraChat")
	if err := ebiten.RunGame(g); err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}

func ticksPerSecond(frame time.Duration) int {
	if frame <= 0 {
		return ebiten.DefaultTPS
	}
	return max(1, int(time.Second/frame))
}
