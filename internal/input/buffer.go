package input

import (
	"unicode"
	"unicode/utf8"
)

// DefaultCapacity is the maximum size in bytes of an outgoing message.
const DefaultCapacity = 510

// Buffer is the message being typed. It holds at most Cap bytes of text.
type Buffer struct {
	data     []byte
	capacity int
}

// NewBuffer creates an empty Buffer. A non-positive capacity selects
// DefaultCapacity.
func NewBuffer(capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		data:     make([]byte, 0, 64),
		capacity: capacity,
	}
}

// Append adds r to the end of the buffer. It returns false and leaves the
// buffer unchanged when r is a control character or does not fit.
func (b *Buffer) Append(r rune) bool {
	if r == utf8.RuneError || unicode.IsControl(r) {
		return false
	}
	if len(b.data)+utf8.RuneLen(r) > b.capacity {
		return false
	}
	b.data = utf8.AppendRune(b.data, r)
	return true
}

// AppendString appends the runes of s until one does not fit and returns
// how many were added. Control characters are skipped.
func (b *Buffer) AppendString(s string) int {
	added := 0
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		if !b.Append(r) {
			break
		}
		added++
	}
	return added
}

// Backspace removes the last rune. It returns false when the buffer is empty.
func (b *Buffer) Backspace() bool {
	if len(b.data) == 0 {
		return false
	}
	_, size := utf8.DecodeLastRune(b.data)
	b.data = b.data[:len(b.data)-size]
	return true
}

// Clear empties the buffer.
func (b *Buffer) Clear() {
	b.data = b.data[:0]
}

func (b *Buffer) String() string { return string(b.data) }

// Len returns the size of the buffered text in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Cap returns the maximum size of the buffered text in bytes.
func (b *Buffer) Cap() int { return b.capacity }

// IsEmpty reports whether the buffer holds no text.
func (b *Buffer) IsEmpty() bool { return len(b.data) == 0 }
