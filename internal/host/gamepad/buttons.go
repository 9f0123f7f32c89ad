package gamepad

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/omochice/aurorachat/internal/input"
)

// devices reports presses that started this tick.
type devices interface {
	padJustPressed(b ebiten.StandardGamepadButton) bool
	keyJustPressed(k ebiten.Key) bool
}

type binding struct {
	pad    ebiten.StandardGamepadButton
	keys   []ebiten.Key
	button input.Buttons
}

var bindings = []binding{
	{ebiten.StandardGamepadButtonLeftTop, []ebiten.Key{ebiten.KeyArrowUp}, input.ButtonUp},
	{ebiten.StandardGamepadButtonLeftBottom, []ebiten.Key{ebiten.KeyArrowDown}, input.ButtonDown},
	{ebiten.StandardGamepadButtonLeftLeft, []ebiten.Key{ebiten.KeyArrowLeft}, input.ButtonLeft},
	{ebiten.StandardGamepadButtonLeftRight, []ebiten.Key{ebiten.KeyArrowRight}, input.ButtonRight},
	{ebiten.StandardGamepadButtonRightRight, []ebiten.Key{ebiten.KeyEnter, ebiten.KeyA}, input.ButtonA},
	{ebiten.StandardGamepadButtonRightBottom, []ebiten.Key{ebiten.KeyBackspace, ebiten.KeyB}, input.ButtonB},
	{ebiten.StandardGamepadButtonRightTop, []ebiten.Key{ebiten.KeyTab, ebiten.KeyX}, input.ButtonX},
	{ebiten.StandardGamepadButtonFrontTopLeft, []ebiten.Key{ebiten.KeyL}, input.ButtonL},
	{ebiten.StandardGamepadButtonCenterRight, []ebiten.Key{ebiten.KeyEqual, ebiten.KeyNumpadAdd}, input.ButtonPlus},
	{ebiten.StandardGamepadButtonCenterCenter, []ebiten.Key{ebiten.KeyEscape, ebiten.KeyH}, input.ButtonHome},
}

func pollButtons(d devices) input.Buttons {
	var pressed input.Buttons
	for _, b := range bindings {
		if d.padJustPressed(b.pad) {
			pressed |= b.button
			continue
		}
		for _, k := range b.keys {
			if d.keyJustPressed(k) {
				pressed |= b.button
				break
			}
		}
	}
	return pressed
}

// ebitenDevices reads every connected standard-layout gamepad and the
// keyboard.
type ebitenDevices struct{}

func (ebitenDevices) padJustPressed(b ebiten.StandardGamepadButton) bool {
	for _, id := range ebiten.AppendGamepadIDs(nil) {
		if ebiten.IsStandardGamepadLayoutAvailable(id) && inpututil.IsStandardGamepadButtonJustPressed(id, b) {
			return true
		}
	}
	return false
}

func (ebitenDevices) keyJustPressed(k ebiten.Key) bool {
	return inpututil.IsKeyJustPressed(k)
}
