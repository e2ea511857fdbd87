package lighting

import "github.com/Faultbox/roguelike3d/pkg/math"

// MaxLights bounds the lights a manager holds in one frame.
const MaxLights = 128

// Manager collects the lights active in the current frame. It is rebuilt
// each frame from level data and is not safe for concurrent mutation.
type Manager struct {
	Ambient math.Vec3

	lights   []Light
	statics  []Light
	dynamics []Light
}

// NewManager creates an empty manager with the given ambient colour.
func NewManager(ambient math.Vec3) *Manager {
	return &Manager{
		Ambient: ambient,
		lights:  make([]Light, 0, 16),
	}
}

// Clear removes all lights, keeping the ambient colour.
func (m *Manager) Clear() {
	m.lights = m.lights[:0]
	m.statics = m.statics[:0]
	m.dynamics = m.dynamics[:0]
}

// Add appends a light. Returns false if the manager is full.
func (m *Manager) Add(l Light) bool {
	if len(m.lights) >= MaxLights {
		return false
	}
	m.lights = append(m.lights, l)
	if l.Static {
		m.statics = append(m.statics, l)
	} else {
		m.dynamics = append(m.dynamics, l)
	}
	return true
}

// AddStatic appends a light marked static.
func (m *Manager) AddStatic(l Light) bool {
	l.Static = true
	return m.Add(l)
}

// Lights returns every light in insertion order.
func (m *Manager) Lights() []Light { return m.lights }

// Statics returns the static lights in insertion order.
func (m *Manager) Statics() []Light { return m.statics }

// Dynamics returns the dynamic lights in insertion order.
func (m *Manager) Dynamics() []Light { return m.dynamics }

// Len returns the number of lights.
func (m *Manager) Len() int { return len(m.lights) }

// LightsFor appends to dst the dynamic lights whose range reaches the sphere,
// in manager order, stopping after max (max < 0 means no limit). Static
// lights are excluded since they are already baked into vertex colours.
func (m *Manager) LightsFor(dst []Light, centre math.Vec3, radius float32, max int) []Light {
	for _, l := range m.dynamics {
		if max >= 0 && len(dst) >= max {
			break
		}
		if l.Reaches(centre, radius) {
			dst = append(dst, l)
		}
	}
	return dst
}

// Evaluate sums the light reaching point with the given surface normal. The
// ambient term is not included. With staticsOnly only static lights count,
// otherwise only dynamic ones.
func (m *Manager) Evaluate(point, normal math.Vec3, staticsOnly bool) math.Vec3 {
	src := m.dynamics
	if staticsOnly {
		src = m.statics
	}
	var sum math.Vec3
	for _, l := range src {
		sum = sum.Add(l.Contribution(point, normal))
	}
	return sum
}
