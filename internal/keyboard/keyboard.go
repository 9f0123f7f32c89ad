// Package keyboard models the on-screen keyboard: a grid of keys in two
// layouts and a cursor moved with the directional pad.
package keyboard

import (
	"errors"
	"fmt"
)

const (
	sendRune  = '|'
	spaceRune = ' '
)

// KeyKind tells what pressing a key does.
type KeyKind int

const (
	KeyChar KeyKind = iota
	KeySpace
	KeySend
)

// Key is one cell of the grid.
type Key struct {
	Kind KeyKind
	Char rune
}

// Label returns the text drawn for the key.
func (k Key) Label() string {
	switch k.Kind {
	case KeySpace:
		return "SPACE"
	case KeySend:
		return "SEND"
	default:
		return string(k.Char)
	}
}

// Direction is a directional-pad move.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Layout describes the rows of the unshifted and shifted keyboards.
// In a row string '|' is the Send key and ' ' the Space key.
type Layout struct {
	Lower []string
	Upper []string
}

// DefaultLayout is the five-row console layout.
var DefaultLayout = Layout{
	Lower: []string{
		"0123456789",
		"qwertyuiop",
		"asdfghjkl;",
		"zxcvbnm,./",
		" |",
	},
	Upper: []string{
		"=!\"#$%&/()",
		"QWERTYUIOP",
		"ASDFGHJKL:",
		"ZXCVBNM<>?",
		" |",
	},
}

var (
	ErrEmptyLayout    = errors.New("layout has no rows")
	ErrRowMismatch    = errors.New("lower and upper layouts have different row counts")
	ErrEmptyLayoutRow = errors.New("layout row is empty")
)

// Validate checks that both layouts have the same non-zero number of rows
// and that no row is empty.
func (l Layout) Validate() error {
	if len(l.Lower) == 0 {
		return ErrEmptyLayout
	}
	if len(l.Lower) != len(l.Upper) {
		return ErrRowMismatch
	}
	for i := range l.Lower {
		if l.Lower[i] == "" || l.Upper[i] == "" {
			return fmt.Errorf("row %d: %w", i, ErrEmptyLayoutRow)
		}
	}
	return nil
}

// Keyboard is the grid plus the cursor and shift state.
type Keyboard struct {
	lower [][]Key
	upper [][]Key
	row   int
	col   int
	shift bool
}

// New builds a Keyboard from a layout with the cursor on the first key.
func New(layout Layout) (*Keyboard, error) {
	if err := layout.Validate(); err != nil {
		return nil, fmt.Errorf("invalid keyboard layout: %w", err)
	}
	return &Keyboard{
		lower: parseRows(layout.Lower),
		upper: parseRows(layout.Upper),
	}, nil
}

func parseRows(rows []string) [][]Key {
	out := make([][]Key, len(rows))
	for i, row := range rows {
		for _, r := range row {
			out[i] = append(out[i], parseKey(r))
		}
	}
	return out
}

func parseKey(r rune) Key {
	switch r {
	case sendRune:
		return Key{Kind: KeySend, Char: r}
	case spaceRune:
		return Key{Kind: KeySpace, Char: r}
	default:
		return Key{Kind: KeyChar, Char: r}
	}
}

func (k *Keyboard) rows() [][]Key {
	if k.shift {
		return k.upper
	}
	return k.lower
}

// Move moves the cursor one step. Moves wrap around the grid edges and a
// row change clamps the column to the new row's width.
func (k *Keyboard) Move(d Direction) {
	rows := k.rows()
	switch d {
	case Up:
		k.row = (k.row - 1 + len(rows)) % len(rows)
		k.clamp()
	case Down:
		k.row = (k.row + 1) % len(rows)
		k.clamp()
	case Left:
		cols := len(rows[k.row])
		k.col = (k.col - 1 + cols) % cols
	case Right:
		k.col = (k.col + 1) % len(rows[k.row])
	}
}

// ToggleShift switches between the lower and upper layouts.
func (k *Keyboard) ToggleShift() {
	k.shift = !k.shift
	k.clamp()
}

func (k *Keyboard) clamp() {
	if cols := len(k.rows()[k.row]); k.col >= cols {
		k.col = cols - 1
	}
}

// Shift reports whether the upper layout is active.
func (k *Keyboard) Shift() bool { return k.shift }

// Cursor returns the selected row and column.
func (k *Keyboard) Cursor() (row, col int) { return k.row, k.col }

// Selected returns the key under the cursor.
func (k *Keyboard) Selected() Key { return k.rows()[k.row][k.col] }

// RowCount returns the number of rows in the grid.
func (k *Keyboard) RowCount() int { return len(k.lower) }

// Cols returns the width of row in the active layout.
func (k *Keyboard) Cols(row int) int { return len(k.rows()[row]) }

// Rows returns a copy of the active layout's keys.
func (k *Keyboard) Rows() [][]Key {
	rows := k.rows()
	out := make([][]Key, len(rows))
	for i, row := range rows {
		out[i] = append([]Key(nil), row...)
	}
	return out
}
