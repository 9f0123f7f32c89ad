// Package input defines the console buttons and the in-progress message buffer.
package input

import "strings"

// Buttons is a set of buttons triggered during one frame.
type Buttons uint16

const (
	ButtonUp Buttons = 1 << iota
	ButtonDown
	ButtonLeft
	ButtonRight
	ButtonA
	ButtonB
	ButtonX
	ButtonL
	ButtonPlus
	ButtonHome
)

var buttonNames = []struct {
	button Buttons
	name   string
}{
	{ButtonUp, "UP"},
	{ButtonDown, "DOWN"},
	{ButtonLeft, "LEFT"},
	{ButtonRight, "RIGHT"},
	{ButtonA, "A"},
	{ButtonB, "B"},
	{ButtonX, "X"},
	{ButtonL, "L"},
	{ButtonPlus, "PLUS"},
	{ButtonHome, "HOME"},
}

// Has reports whether every button in b is in the set.
func (s Buttons) Has(b Buttons) bool {
	return b != 0 && s&b == b
}

// String returns the set as a "|"-separated list of button names.
func (s Buttons) String() string {
	if s == 0 {
		return "NONE"
	}
	var names []string
	for _, bn := range buttonNames {
		if s&bn.button != 0 {
			names = append(names, bn.name)
		}
	}
	return strings.Join(names, "|")
}
