// Package session ties the chat log, the input buffer, the on-screen
// keyboard and the connection together and advances them one frame at a
// time. A Session is owned by the host loop; nothing in it is shared.
package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/omochice/aurorachat/internal/chatlog"
	"github.com/omochice/aurorachat/internal/conn"
	"github.com/omochice/aurorachat/internal/input"
	"github.com/omochice/aurorachat/internal/keyboard"
	"github.com/omochice/aurorachat/pkg/protocol"
)

// Scene is the screen currently shown.
type Scene int

const (
	SceneMain Scene = iota
	SceneRules
)

// String returns the string representation of a Scene.
func (s Scene) String() string {
	switch s {
	case SceneMain:
		return "main"
	case SceneRules:
		return "rules"
	default:
		return "unknown"
	}
}

// DefaultRules is shown on the rules scene.
var DefaultRules = []string{
	"1. Be kind to other players.",
	"2. No spam or flooding.",
	"3. Do not share personal information.",
}

// Connection is what a Session needs from the connection manager.
type Connection interface {
	SendLine(ctx context.Context, text string) error
	PollReceive() ([]byte, bool)
	State() conn.State
	Stats() conn.Stats
	Address() string
}

// Options configures a Session.
type Options struct {
	InputCapacity int
	Layout        keyboard.Layout
	Rules         []string
}

// DefaultOptions returns the console defaults.
func DefaultOptions() Options {
	return Options{
		InputCapacity: input.DefaultCapacity,
		Layout:        keyboard.DefaultLayout,
		Rules:         DefaultRules,
	}
}

// Session is the client state advanced by the host loop.
type Session struct {
	conn   Connection
	log    *chatlog.Log
	input  *input.Buffer
	kb     *keyboard.Keyboard
	rules  []string
	scene  Scene
	quit   bool
	logger zerolog.Logger
}

// New creates a Session. log must be the same log the connection reports
// status lines to.
func New(c Connection, log *chatlog.Log, opts Options, logger zerolog.Logger) (*Session, error) {
	if opts.InputCapacity >= protocol.MaxLineSize {
		return nil, fmt.Errorf("input capacity %d leaves no room for the line terminator", opts.InputCapacity)
	}
	kb, err := keyboard.New(opts.Layout)
	if err != nil {
		return nil, err
	}
	return &Session{
		conn:   c,
		log:    log,
		input:  input.NewBuffer(opts.InputCapacity),
		kb:     kb,
		rules:  opts.Rules,
		logger: logger.With().Str("component", "session").Logger(),
	}, nil
}

// Step runs one frame: apply the buttons triggered this frame, then poll the
// connection once. It returns false once the session should end.
func (s *Session) Step(ctx context.Context, pressed input.Buttons) bool {
	s.Handle(ctx, pressed)
	s.Receive()
	return !s.quit
}

// Handle applies the buttons triggered in one frame.
func (s *Session) Handle(ctx context.Context, pressed input.Buttons) {
	if pressed == 0 {
		return
	}
	s.logger.Debug().Stringer("buttons", pressed).Stringer("scene", s.scene).Msg("input")

	if pressed.Has(input.ButtonHome) {
		s.quit = true
		return
	}

	switch s.scene {
	case SceneMain:
		s.handleMain(ctx, pressed)
	case SceneRules:
		if pressed.Has(input.ButtonX) {
			s.scene = SceneMain
		}
	}
}

func (s *Session) handleMain(ctx context.Context, pressed input.Buttons) {
	if pressed.Has(input.ButtonUp) {
		s.kb.Move(keyboard.Up)
	}
	if pressed.Has(input.ButtonDown) {
		s.kb.Move(keyboard.Down)
	}
	if pressed.Has(input.ButtonLeft) {
		s.kb.Move(keyboard.Left)
	}
	if pressed.Has(input.ButtonRight) {
		s.kb.Move(keyboard.Right)
	}

	if pressed.Has(input.ButtonA) {
		key := s.kb.Selected()
		if key.Kind == keyboard.KeySend {
			s.Send(ctx)
		} else {
			s.input.Append(key.Char)
		}
	}
	if pressed.Has(input.ButtonB) {
		s.input.Backspace()
	}
	if pressed.Has(input.ButtonX) {
		s.kb.ToggleShift()
	}
	if pressed.Has(input.ButtonPlus) {
		s.Send(ctx)
	}
	if pressed.Has(input.ButtonL) {
		s.scene = SceneRules
	}
}

// Send sends the input buffer as one line and clears it on success. An
// empty buffer is a no-op; on failure the buffer is kept and the reason is
// already in the chat log.
func (s *Session) Send(ctx context.Context) {
	if s.input.IsEmpty() {
		return
	}
	if err := s.conn.SendLine(ctx, s.input.String()); err != nil {
		s.logger.Debug().Err(err).Msg("send failed, keeping input")
		return
	}
	s.input.Clear()
}

// Receive polls the connection once and appends any received lines to the
// chat log.
func (s *Session) Receive() {
	data, ok := s.conn.PollReceive()
	if !ok {
		return
	}
	for _, line := range protocol.DecodeChunk(data) {
		s.log.Add(line)
	}
}

// Paste appends text to the input buffer on the main scene and returns the
// number of runes accepted.
func (s *Session) Paste(text string) int {
	if s.scene != SceneMain {
		return 0
	}
	return s.input.AppendString(text)
}
