// Package protocol implements the newline-delimited text wire format used
// between the chat client and the server.
package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

const (
	// Terminator ends every line on the wire.
	Terminator = '\n'

	// MaxLineSize is the largest line the client writes, terminator included.
	MaxLineSize = 600

	// RecvBufferSize is the number of bytes read from the socket per poll.
	// Lines longer than this arrive split across polls and are not reassembled.
	RecvBufferSize = 256
)

// ErrLineTooLong is returned when an encoded line would exceed MaxLineSize.
var ErrLineTooLong = errors.New("line exceeds maximum size")

// EncodeLine appends the line terminator to text.
func EncodeLine(text string) ([]byte, error) {
	if len(text)+1 > MaxLineSize {
		return nil, fmt.Errorf("failed to encode line of %d bytes: %w", len(text), ErrLineTooLong)
	}
	buf := make([]byte, 0, len(text)+1)
	buf = append(buf, text...)
	return append(buf, Terminator), nil
}

// DecodeChunk turns the bytes of a single read into display lines.
// Carriage returns and empty lines are dropped. Each line is decoded on its
// own: valid UTF-8 is kept and anything else is read as ISO-8859-1. A rune
// cut by the read boundary at either end of the chunk is dropped when the
// rest of that line is UTF-8.
func DecodeChunk(data []byte) []string {
	parts := bytes.Split(data, []byte{Terminator})
	last := len(parts) - 1
	var lines []string
	for i, part := range parts {
		part = trimCutRunes(part, i == 0, i == last)
		part = bytes.TrimRight(part, "\r")
		if len(part) == 0 {
			continue
		}
		lines = append(lines, decodeText(part))
	}
	return lines
}

// trimCutRunes drops a partial rune at the head and/or tail of b. It only
// does so when what remains is valid UTF-8 with at least one multi-byte
// rune, so Latin-1 text is left alone.
func trimCutRunes(b []byte, head, tail bool) []byte {
	if utf8.Valid(b) {
		return b
	}
	start, end := 0, len(b)
	if head {
		for start < end && start < utf8.UTFMax-1 && !utf8.RuneStart(b[start]) {
			start++
		}
	}
	if tail {
		for i := end - 1; i >= start && i >= end-(utf8.UTFMax-1); i-- {
			if utf8.RuneStart(b[i]) {
				if !utf8.FullRune(b[i:end]) {
					end = i
				}
				break
			}
		}
	}
	rest := b[start:end]
	if utf8.Valid(rest) && utf8.RuneCount(rest) < len(rest) {
		return rest
	}
	return b
}

func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(bytes.ToValidUTF8(data, []byte("?")))
	}
	return string(s)
}
