// Package entity implements game actors: the player and the monsters that
// hold rigged models and take hits from them.
package entity

import (
	"github.com/Faultbox/roguelike3d/internal/engine/camera"
	"github.com/Faultbox/roguelike3d/internal/engine/rigged"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

// Type represents the type of actor.
type Type uint8

const (
	TypePlayer Type = iota
	TypeMonster
)

// Actor is anything that moves around the level and can hold a model.
type Actor struct {
	uid string

	Type     Type
	Name     string
	Position math.Vec3
	Yaw      float32 // radians, 0 faces -Z
	Radius   float32

	// EyeHeight offsets the camera and the held weapon from Position.
	EyeHeight float32

	HP     int
	MaxHP  int
	IsDead bool

	// Model is the actor's body, Weapon what it holds.
	Model  *rigged.Model
	Weapon *rigged.Model
	Side   rigged.Side
}

// NewActor creates an actor with full health.
func NewActor(uid string, t Type) *Actor {
	return &Actor{
		uid:       uid,
		Type:      t,
		Name:      uid,
		Radius:    0.5,
		EyeHeight: 1.6,
		HP:        10,
		MaxHP:     10,
	}
}

// UID returns the actor's unique id.
func (a *Actor) UID() string { return a.uid }

// Equip hands m to the actor.
func (a *Actor) Equip(m *rigged.Model, side rigged.Side) {
	if a.Weapon != nil && a.Weapon != m {
		a.Weapon.Cancel()
	}
	a.Weapon = m
	a.Side = side
	if m != nil {
		m.Equip(a, side)
	}
}

// Transform returns the actor's world matrix.
func (a *Actor) Transform() math.Mat4 {
	return math.Translate(a.Position.X, a.Position.Y, a.Position.Z).Mul(math.RotateY(a.Yaw))
}

// Eye returns the camera position for the actor.
func (a *Actor) Eye() math.Vec3 {
	return a.Position.Add(math.Vec3{Y: a.EyeHeight})
}

// Forward returns the facing direction on the XZ plane.
func (a *Actor) Forward() math.Vec3 {
	return math.RotateY(a.Yaw).TransformDirection(math.Vec3{Z: -1})
}

// WeaponTransform returns the hand matrix the weapon is composed from.
// Models extend along +Z, so the hand turns them to face forward.
func (a *Actor) WeaponTransform() math.Mat4 {
	x := float32(0.35)
	if a.Side == rigged.Left {
		x = -x
	}
	return a.Transform().
		Mul(math.Translate(x, a.EyeHeight-0.5, -0.3)).
		Mul(math.RotateY(math.Pi))
}

// TakeDamage applies damage to the actor.
func (a *Actor) TakeDamage(damage int) {
	a.HP -= damage
	if a.HP <= 0 {
		a.HP = 0
		a.IsDead = true
	}
}

// Heal restores HP to the actor.
func (a *Actor) Heal(amount int) {
	a.HP = min(a.HP+amount, a.MaxHP)
	if a.HP > 0 {
		a.IsDead = false
	}
}

// IsAlive returns whether the actor is alive.
func (a *Actor) IsAlive() bool {
	return !a.IsDead && a.HP > 0
}

// Update advances the actor's models.
func (a *Actor) Update(dt float32, cam *camera.Camera) {
	if a.Model != nil {
		a.Model.Update(dt, cam)
	}
	if a.Weapon != nil {
		a.Weapon.Update(dt, cam)
	}
}

// ComposeMatrices places the actor's models in the world.
func (a *Actor) ComposeMatrices() {
	if a.Model != nil {
		a.Model.ComposeMatrices(a.Transform())
	}
	if a.Weapon != nil {
		a.Weapon.ComposeMatrices(a.WeaponTransform())
	}
}

// Manager keeps actors in insertion order.
type Manager struct {
	actors []*Actor
	index  map[string]int
	player *Actor
}

// NewManager creates an empty actor manager.
func NewManager() *Manager {
	return &Manager{index: make(map[string]int)}
}

// Add adds an actor, replacing one with the same UID.
func (m *Manager) Add(a *Actor) {
	if i, ok := m.index[a.UID()]; ok {
		m.actors[i] = a
		return
	}
	m.index[a.UID()] = len(m.actors)
	m.actors = append(m.actors, a)
}

// Remove removes an actor.
func (m *Manager) Remove(uid string) {
	i, ok := m.index[uid]
	if !ok {
		return
	}
	m.actors = append(m.actors[:i], m.actors[i+1:]...)
	delete(m.index, uid)
	for j := i; j < len(m.actors); j++ {
		m.index[m.actors[j].UID()] = j
	}
	if m.player != nil && m.player.UID() == uid {
		m.player = nil
	}
}

// Get returns an actor by UID.
func (m *Manager) Get(uid string) *Actor {
	if i, ok := m.index[uid]; ok {
		return m.actors[i]
	}
	return nil
}

// SetPlayer sets and adds the local player.
func (m *Manager) SetPlayer(a *Actor) {
	m.player = a
	m.Add(a)
}

// Player returns the local player.
func (m *Manager) Player() *Actor {
	return m.player
}

// All returns every actor in insertion order.
func (m *Manager) All() []*Actor {
	return m.actors
}

// Count returns the number of actors.
func (m *Manager) Count() int {
	return len(m.actors)
}

// Clear removes all actors except the player.
func (m *Manager) Clear() {
	player := m.player
	m.actors = m.actors[:0]
	clear(m.index)
	if player != nil {
		m.Add(player)
	}
}
