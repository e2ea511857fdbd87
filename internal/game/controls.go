package game

import (
	"github.com/veandco/go-sdl2/sdl"

	"github.com/Faultbox/roguelike3d/internal/game/states"
)

// keyboard is the part of input.Input the controls read.
type keyboard interface {
	IsKeyPressed(sdl.Scancode) bool
	IsKeyDown(sdl.Scancode) bool
	IsButtonDown(button uint8) bool
	IsButtonClicked(button uint8) bool
	MouseDelta() (int, int)
}

// DefaultKeymap binds actions to scancodes. Attack is on the left mouse
// button.
var DefaultKeymap = map[states.Key]sdl.Scancode{
	states.KeyQuit:       sdl.Scancode(sdl.SCANCODE_ESCAPE),
	states.KeyPause:      sdl.Scancode(sdl.SCANCODE_TAB),
	states.KeyBufferView: sdl.Scancode(sdl.SCANCODE_1),
	states.KeyCollision:  sdl.Scancode(sdl.SCANCODE_C),
	states.KeyScreenshot: sdl.Scancode(sdl.SCANCODE_F12),
	states.KeyForward:    sdl.Scancode(sdl.SCANCODE_W),
	states.KeyBack:       sdl.Scancode(sdl.SCANCODE_S),
	states.KeyLeft:       sdl.Scancode(sdl.SCANCODE_A),
	states.KeyRight:      sdl.Scancode(sdl.SCANCODE_D),
}

var attackButton = uint8(sdl.BUTTON_LEFT)

// controls adapts SDL input to states.Controls.
type controls struct {
	in     keyboard
	keymap map[states.Key]sdl.Scancode
}

func (c controls) Pressed(k states.Key) bool {
	if k == states.KeyAttack {
		return c.in.IsButtonClicked(attackButton)
	}
	sc, ok := c.keymap[k]
	return ok && c.in.IsKeyPressed(sc)
}

func (c controls) Down(k states.Key) bool {
	if k == states.KeyAttack {
		return c.in.IsButtonDown(attackButton)
	}
	sc, ok := c.keymap[k]
	return ok && c.in.IsKeyDown(sc)
}

func (c controls) Look() (float32, float32) {
	dx, dy := c.in.MouseDelta()
	return float32(dx), float32(dy)
}
