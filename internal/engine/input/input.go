// Package input handles SDL2 input events and keyboard state.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies processed events.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Width  int
	Height int
	MouseX int
	MouseY int
	Button uint8
}

// Input polls events and tracks which keys and buttons are held. A key
// counts as pressed only on the frame it goes down.
type Input struct {
	events   []Event
	down     map[sdl.Scancode]bool
	pressed  map[sdl.Scancode]bool
	buttons  map[uint8]bool
	clicked  map[uint8]bool
	relX     int
	relY     int
	quitting bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events:  make([]Event, 0, 16),
		down:    make(map[sdl.Scancode]bool),
		pressed: make(map[sdl.Scancode]bool),
		buttons: make(map[uint8]bool),
		clicked: make(map[uint8]bool),
	}
}

// Update polls SDL events. Returns true if the game should quit.
func (i *Input) Update() bool {
	i.begin()
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		i.handle(event)
	}
	return i.quitting
}

func (i *Input) begin() {
	i.events = i.events[:0]
	clear(i.pressed)
	clear(i.clicked)
	i.relX, i.relY = 0, 0
}

func (i *Input) handle(event sdl.Event) {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.events = append(i.events, Event{Type: EventQuit})
		i.quitting = true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			i.events = append(i.events, Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			})
		}

	case *sdl.KeyboardEvent:
		key := e.Keysym.Scancode
		if e.Type == sdl.KEYDOWN {
			if !i.down[key] {
				i.pressed[key] = true
			}
			i.down[key] = true
			i.events = append(i.events, Event{Type: EventKeyDown, Key: key})
		} else if e.Type == sdl.KEYUP {
			i.down[key] = false
			i.events = append(i.events, Event{Type: EventKeyUp, Key: key})
		}

	case *sdl.MouseMotionEvent:
		i.relX += int(e.XRel)
		i.relY += int(e.YRel)
		i.events = append(i.events, Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
		})

	case *sdl.MouseButtonEvent:
		ev := Event{MouseX: int(e.X), MouseY: int(e.Y), Button: e.Button}
		if e.Type == sdl.MOUSEBUTTONDOWN {
			if !i.buttons[e.Button] {
				i.clicked[e.Button] = true
			}
			i.buttons[e.Button] = true
			ev.Type = EventMouseDown
		} else {
			i.buttons[e.Button] = false
			ev.Type = EventMouseUp
		}
		i.events = append(i.events, ev)
	}
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed reports whether a key went down this frame. Key repeats do
// not count.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	return i.pressed[scancode]
}

// IsKeyDown reports whether a key is held.
func (i *Input) IsKeyDown(scancode sdl.Scancode) bool {
	return i.down[scancode]
}

// IsButtonDown reports whether a mouse button is held.
func (i *Input) IsButtonDown(button uint8) bool {
	return i.buttons[button]
}

// IsButtonClicked reports whether a mouse button went down this frame.
func (i *Input) IsButtonClicked(button uint8) bool {
	return i.clicked[button]
}

// MouseDelta returns relative mouse motion accumulated this frame.
func (i *Input) MouseDelta() (int, int) {
	return i.relX, i.relY
}
