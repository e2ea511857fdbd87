package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/roguelike3d/internal/engine/rigged"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

func TestActorForwardAndTransform(t *testing.T) {
	a := NewActor("hero", TypePlayer)
	a.Position = math.Vec3{X: 1, Z: 2}

	f := a.Forward()
	assert.InDelta(t, 0, f.X, 1e-6)
	assert.InDelta(t, -1, f.Z, 1e-6)

	a.Yaw = math.Pi / 2
	f = a.Forward()
	assert.InDelta(t, -1, f.X, 1e-6)
	assert.InDelta(t, 0, f.Z, 1e-6)

	assert.Equal(t, math.Vec3{X: 1, Z: 2}, a.Transform().Translation())
	assert.Equal(t, math.Vec3{X: 1, Y: 1.6, Z: 2}, a.Eye())
}

func TestActorDamage(t *testing.T) {
	a := NewActor("goblin", TypeMonster)
	a.TakeDamage(4)
	assert.Equal(t, 6, a.HP)
	assert.True(t, a.IsAlive())

	a.TakeDamage(20)
	assert.Equal(t, 0, a.HP)
	assert.False(t, a.IsAlive())

	a.Heal(50)
	assert.Equal(t, 10, a.HP)
	assert.True(t, a.IsAlive())
}

func TestActorEquipPlacesWeapon(t *testing.T) {
	a := NewActor("hero", TypePlayer)
	sword, err := rigged.Sword(2)
	require.NoError(t, err)
	a.Equip(sword, rigged.Right)

	a.ComposeMatrices()
	root := sword.Node(sword.Root()).Composed().Translation()
	assert.InDelta(t, 0.35, root.X, 1e-5)
	assert.InDelta(t, 1.1, root.Y, 1e-5)
	assert.InDelta(t, -0.3, root.Z, 1e-5)

	hilt, _ := sword.GetNode("Hilt")
	assert.Less(t, sword.Node(hilt).Origin().Z, root.Z, "the blade points forward")

	a.Equip(sword, rigged.Left)
	a.ComposeMatrices()
	assert.InDelta(t, -0.35, sword.Node(sword.Root()).Composed().Translation().X, 1e-5)
}

func TestManager(t *testing.T) {
	m := NewManager()
	hero := NewActor("hero", TypePlayer)
	m.SetPlayer(hero)
	m.Add(NewActor("a", TypeMonster))
	m.Add(NewActor("b", TypeMonster))
	m.Add(NewActor("c", TypeMonster))

	assert.Equal(t, 4, m.Count())
	assert.Same(t, hero, m.Player())

	m.Remove("b")
	require.Equal(t, 3, m.Count())
	assert.Nil(t, m.Get("b"))
	assert.Equal(t, "c", m.Get("c").UID())
	assert.Equal(t, []string{"hero", "a", "c"}, uids(m.All()))

	m.Clear()
	assert.Equal(t, []string{"hero"}, uids(m.All()))

	m.Remove("hero")
	assert.Nil(t, m.Player())
}

func uids(actors []*Actor) []string {
	var out []string
	for _, a := range actors {
		out = append(out, a.UID())
	}
	return out
}
