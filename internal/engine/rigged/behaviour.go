package rigged

import (
	"math/rand/v2"

	"github.com/Faultbox/roguelike3d/internal/engine/particle"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// Holder is whatever carries a model, usually an actor.
type Holder interface {
	UID() string
}

// Scene answers sphere queries against the level around a model.
type Scene interface {
	// CollideSphereActors returns the first actor other than exclude that
	// the sphere touches, or nil.
	CollideSphereActors(centre math.Vec3, radius float32, exclude string) Holder
	// CollideSphereStatics reports whether the sphere touches a level object.
	CollideSphereStatics(centre math.Vec3, radius float32) bool
	// CollideSphere reports whether the sphere touches level geometry.
	CollideSphere(centre math.Vec3, radius float32, exclude string) bool
}

// Side is the hand a model is equipped in.
type Side int

const (
	Right Side = iota
	Left
)

func (s Side) String() string {
	if s == Left {
		return "left"
	}
	return "right"
}

// Behaviour drives a node in response to its holder.
type Behaviour interface {
	Equip(holder Holder, side Side)
	Held()
	Released()
	Update(dt float32)
	Cancel()
	// CollideMode is told whenever the node's collide mode changes.
	CollideMode(mode bool)
}

type swingState int

const (
	swingIdle swingState = iota
	swingRaise
	swingStrike
	swingRecover
)

// Swing raises a weapon while held and strikes on release. The strike
// turns on collide mode for the whole tree, then turns it off again.
type Swing struct {
	WindUp   float32 // degrees
	Arc      float32 // degrees
	Duration float32 // seconds for the strike

	model *Model
	node  NodeID
	side  Side

	state     swingState
	angle     float32
	colliding bool
}

// NewSwing creates a swing for the given node.
func NewSwing(m *Model, node NodeID) *Swing {
	return &Swing{
		WindUp:   30,
		Arc:      120,
		Duration: 0.3,
		model:    m,
		node:     node,
	}
}

func (s *Swing) Equip(_ Holder, side Side) {
	s.side = side
	s.reset()
}

func (s *Swing) Held() {
	if s.state == swingIdle {
		s.state = swingRaise
	}
}

func (s *Swing) Released() {
	if s.state == swingRaise {
		s.state = swingStrike
		s.model.SetCollideMode(s.node, true, true)
	}
}

func (s *Swing) Update(dt float32) {
	speed := (s.Arc + s.WindUp) / s.Duration
	switch s.state {
	case swingRaise:
		s.angle = max(s.angle-speed*dt, -s.WindUp)
	case swingStrike:
		s.angle += speed * dt
		if s.angle >= s.Arc {
			s.angle = s.Arc
			s.state = swingRecover
			s.model.SetCollideMode(s.node, false, true)
		}
	case swingRecover:
		s.angle = max(s.angle-speed*dt, 0)
		if s.angle == 0 {
			s.state = swingIdle
		}
	}
	s.apply()
}

func (s *Swing) Cancel() {
	if s.colliding {
		s.model.SetCollideMode(s.node, false, true)
	}
	s.reset()
}

func (s *Swing) CollideMode(mode bool) {
	s.colliding = mode
}

// Striking reports whether the strike phase is running.
func (s *Swing) Striking() bool { return s.state == swingStrike }

// Angle returns the current swing angle in degrees.
func (s *Swing) Angle() float32 { return s.angle }

func (s *Swing) reset() {
	s.state = swingIdle
	s.angle = 0
	s.apply()
}

func (s *Swing) apply() {
	n := s.model.Node(s.node)
	if n == nil {
		return
	}
	angle := s.angle
	if s.side == Left {
		angle = -angle
	}
	n.OffsetRotation = math.Identity().Rotate(math.UnitX, -angle)
}

// Flicker jitters the lights of an effect's emitters, like a torch flame.
type Flicker struct {
	Amount float32 // maximum dimming, 0-1
	Speed  float32 // changes per second

	effect *particle.Effect
	rng    *rand.Rand
	timer  float32
	target float32
	scale  float32
}

// NewFlicker creates a flicker for effect.
func NewFlicker(effect *particle.Effect) *Flicker {
	return &Flicker{
		Amount: 0.3,
		Speed:  12,
		effect: effect,
		rng:    rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		target: 1,
		scale:  1,
	}
}

// Seed makes the flicker deterministic.
func (f *Flicker) Seed(seed uint64) {
	f.rng = rand.New(rand.NewPCG(seed, seed))
}

func (f *Flicker) Equip(Holder, Side) {}
func (f *Flicker) Held()              {}
func (f *Flicker) Released()          {}
func (f *Flicker) CollideMode(bool)   {}

func (f *Flicker) Update(dt float32) {
	f.timer -= dt
	if f.timer <= 0 {
		f.timer = 1 / f.Speed
		f.target = 1 - f.rng.Float32()*f.Amount
	}
	f.scale += (f.target - f.scale) * min(1, dt*f.Speed)
	f.set(f.scale)
}

func (f *Flicker) Cancel() {
	f.scale, f.target = 1, 1
	f.set(1)
}

// Scale returns the current light multiplier.
func (f *Flicker) Scale() float32 { return f.scale }

func (f *Flicker) set(scale float32) {
	if f.effect == nil {
		return
	}
	for _, e := range f.effect.Emitters {
		e.LightScale = scale
	}
}
