// Package render turns a session.View into styled text lines that the
// console and gamepad hosts draw.
package render

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/omochice/aurorachat/internal/conn"
	"github.com/omochice/aurorachat/internal/session"
)

// Style selects how a Segment is drawn.
type Style int

const (
	Normal Style = iota
	Title
	Selected
	Status
	Dim
)

// Segment is a run of text in one style.
type Segment struct {
	Text  string
	Style Style
}

// Line is one row of the screen.
type Line []Segment

// String returns the plain text of the line.
func (l Line) String() string {
	var b strings.Builder
	for _, s := range l {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Frame is a full screen of lines.
type Frame struct {
	Lines []Line
}

// Text returns the plain text of the frame, one line per row.
func (f Frame) Text() string {
	rows := make([]string, len(f.Lines))
	for i, l := range f.Lines {
		rows[i] = l.String()
	}
	return strings.Join(rows, "\n")
}

const (
	title      = "=== AuroraChat ==="
	rulesTitle = "=== Rules ==="
	separator  = "------------------"
	helpMove   = "D-PAD=move | A=type | B=backspace | X=shift"
	helpSend   = "PLUS=quick send | L=rules | HOME=exit"
	rulesBack  = "(Press X to Go Back)"
)

func plain(text string, style Style) Line {
	return Line{{Text: text, Style: style}}
}

// Compose builds the frame for v.
func Compose(v session.View) Frame {
	if v.Scene == session.SceneRules {
		return composeRules(v)
	}

	lines := []Line{plain(title, Title)}
	for _, msg := range v.Log {
		lines = append(lines, plain(msg, Normal))
	}
	lines = append(lines,
		plain(separator, Dim),
		plain("INPUT: "+v.Input, Normal),
		plain("", Normal),
	)
	lines = append(lines, keyboardLines(v)...)
	lines = append(lines,
		plain("", Normal),
		plain(helpMove, Dim),
		plain(helpSend, Dim),
		plain(statusLine(v), Status),
	)
	return Frame{Lines: lines}
}

func composeRules(v session.View) Frame {
	lines := []Line{plain(rulesTitle, Title), plain("", Normal)}
	for _, r := range v.Rules {
		lines = append(lines, plain(r, Normal))
	}
	lines = append(lines, plain("", Normal), plain(rulesBack, Dim))
	return Frame{Lines: lines}
}

func keyboardLines(v session.View) []Line {
	lines := make([]Line, 0, len(v.Keys))
	for r, row := range v.Keys {
		line := make(Line, 0, len(row))
		for c, key := range row {
			if r == v.Row && c == v.Col {
				line = append(line, Segment{Text: "[" + key.Label() + "]", Style: Selected})
				continue
			}
			line = append(line, Segment{Text: " " + key.Label() + " ", Style: Normal})
		}
		lines = append(lines, line)
	}
	return lines
}

func statusLine(v session.View) string {
	shift := "abc"
	if v.Shift {
		shift = "ABC"
	}
	state := "offline"
	if v.State == conn.StateConnected {
		state = "online"
	}
	return fmt.Sprintf("%s %s | %d/%d | %s | tx %s rx %s",
		state, v.Server, v.InputLen, v.InputCap, shift,
		humanize.Bytes(v.Stats.BytesSent), humanize.Bytes(v.Stats.BytesReceived))
}
