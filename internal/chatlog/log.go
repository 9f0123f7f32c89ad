// Package chatlog holds the most recent chat lines shown on screen.
package chatlog

import (
	"strings"
	"unicode/utf8"
)

const (
	DefaultCapacity  = 8
	DefaultLineLimit = 127
)

// Log is a fixed-capacity FIFO ring of text lines. When full, adding a line
// evicts the oldest one. A Log is owned by a single loop and is not safe for
// concurrent use.
type Log struct {
	ring      []string
	start     int
	count     int
	lineLimit int
}

// New creates a Log holding at most capacity lines of at most lineLimit bytes.
// Non-positive arguments select the defaults.
func New(capacity, lineLimit int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if lineLimit <= 0 {
		lineLimit = DefaultLineLimit
	}
	return &Log{
		ring:      make([]string, capacity),
		lineLimit: lineLimit,
	}
}

// Add appends a line at the tail. Trailing line terminators are stripped and
// the line is clipped to the line limit; empty lines are ignored.
func (l *Log) Add(line string) {
	line = clip(strings.TrimRight(line, "\r\n"), l.lineLimit)
	if line == "" {
		return
	}

	if l.count < len(l.ring) {
		l.ring[(l.start+l.count)%len(l.ring)] = line
		l.count++
		return
	}
	l.ring[l.start] = line
	l.start = (l.start + 1) % len(l.ring)
}

// Lines returns the stored lines, oldest first.
func (l *Log) Lines() []string {
	out := make([]string, l.count)
	for i := range out {
		out[i] = l.ring[(l.start+i)%len(l.ring)]
	}
	return out
}

// clip shortens s to at most n bytes without splitting a rune.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
