package gamepad

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/omochice/aurorachat/internal/chatlog"
	"github.com/omochice/aurorachat/internal/keyboard"
	"github.com/omochice/aurorachat/internal/render"
	"github.com/omochice/aurorachat/internal/session"
)

func fullView(t *testing.T) session.View {
	t.Helper()
	kb, err := keyboard.New(keyboard.DefaultLayout)
	if err != nil {
		t.Fatal(err)
	}
	log := make([]string, chatlog.DefaultCapacity)
	for i := range log {
		log[i] = strings.Repeat("x", chatlog.DefaultLineLimit)
	}
	return session.View{
		Scene:    session.SceneMain,
		Log:      log,
		Input:    "hello",
		InputLen: 5,
		InputCap: 255,
		Keys:     kb.Rows(),
		Server:   "127.0.0.1:8961",
	}
}

func TestFrameSize(t *testing.T) {
	tests := []struct {
		name string
		view func(t *testing.T) session.View
	}{
		{name: "empty log", view: func(t *testing.T) session.View {
			v := fullView(t)
			v.Log = nil
			return v
		}},
		{name: "full log of longest lines", view: fullView},
		{name: "rules", view: func(t *testing.T) session.View {
			v := fullView(t)
			v.Scene = session.SceneRules
			v.Rules = []string{"Be kind.", "No spam."}
			return v
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := render.Compose(tt.view(t))
			w, h := frameSize(frame)

			if w < minWidth || h < minHeight {
				t.Errorf("frameSize() = %dx%d, below %dx%d", w, h, minWidth, minHeight)
			}
			if bottom := margin + len(frame.Lines)*lineHeight; bottom > h {
				t.Errorf("last row ends at y=%d, screen height %d", bottom, h)
			}
			for i, l := range frame.Lines {
				if right := margin + utf8.RuneCountInString(l.String())*charWidth; right > w {
					t.Errorf("row %d ends at x=%d, screen width %d", i, right, w)
				}
			}
		})
	}
}

func TestFrameSize_FullMainScene(t *testing.T) {
	frame := render.Compose(fullView(t))
	if got, want := len(frame.Lines), chatlog.DefaultCapacity+13; got != want {
		t.Fatalf("frame has %d rows, want %d", got, want)
	}
	w, h := frameSize(frame)
	if wantW := 2*margin + chatlog.DefaultLineLimit*charWidth; w < wantW {
		t.Errorf("width = %d, want at least %d for a full log line", w, wantW)
	}
	if wantH := 2*margin + len(frame.Lines)*lineHeight; h != wantH {
		t.Errorf("height = %d, want %d", h, wantH)
	}
}
