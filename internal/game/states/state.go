// Package states implements game state management.
package states

// Key names an action the player can trigger. The game maps physical keys
// and buttons onto these.
type Key int

const (
	KeyQuit Key = iota
	KeyPause
	KeyBufferView
	KeyCollision
	KeyScreenshot
	KeyForward
	KeyBack
	KeyLeft
	KeyRight
	KeyAttack
)

// Controls is the input a state sees each frame.
type Controls interface {
	// Pressed reports whether the action started this frame.
	Pressed(k Key) bool
	// Down reports whether the action is held.
	Down(k Key) bool
	// Look returns relative mouse motion since the last frame.
	Look() (dx, dy float32)
}

// State represents a game state (loading, in-game, etc.)
type State interface {
	// Enter is called when entering this state.
	Enter() error

	// Exit is called when leaving this state.
	Exit() error

	// Update is called every frame.
	Update(dt float64, in Controls) error

	// Render is called every frame to draw the state.
	Render() error

	// Resize is called when the drawable size changes.
	Resize(width, height int) error
}

// Manager manages game state transitions.
type Manager struct {
	current State
	next    State
	quit    bool
}

// NewManager creates a new state manager.
func NewManager() *Manager {
	return &Manager{}
}

// Current returns the current state.
func (m *Manager) Current() State {
	return m.current
}

// Change schedules a state change for the start of the next Update.
func (m *Manager) Change(next State) {
	m.next = next
}

// Quit asks the game loop to stop.
func (m *Manager) Quit() {
	m.quit = true
}

// Quitting reports whether Quit was called.
func (m *Manager) Quitting() bool {
	return m.quit
}

// Update processes state changes and updates current state.
func (m *Manager) Update(dt float64, in Controls) error {
	if m.next != nil {
		if m.current != nil {
			if err := m.current.Exit(); err != nil {
				return err
			}
		}
		m.current = m.next
		m.next = nil
		if err := m.current.Enter(); err != nil {
			return err
		}
	}

	if m.current != nil {
		return m.current.Update(dt, in)
	}
	return nil
}

// Render renders the current state.
func (m *Manager) Render() error {
	if m.current != nil {
		return m.current.Render()
	}
	return nil
}

// Resize forwards a size change to the current state.
func (m *Manager) Resize(width, height int) error {
	if m.current != nil {
		return m.current.Resize(width, height)
	}
	return nil
}

// Close exits the current state.
func (m *Manager) Close() error {
	if m.current == nil {
		return nil
	}
	err := m.current.Exit()
	m.current = nil
	return err
}
