package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/roguelike3d/internal/engine/gfx"
	"github.com/Faultbox/roguelike3d/pkg/math"
)

func TestBoxBounds(t *testing.T) {
	g := Box(math.Vec3{X: 0.1, Y: 0.1, Z: 3})

	assert.Len(t, g.Vertices, 24)
	assert.Len(t, g.Indices, 36)
	assert.InDelta(t, 3, g.Bounds.Longest(), 1e-6)
	assert.InDelta(t, 0, g.Bounds.Centre().Z, 1e-6)
}

func TestBuild(t *testing.T) {
	tests := []struct {
		spec    Spec
		longest float32
		wantErr bool
	}{
		{Spec{Kind: "Hilt"}, 0.6, false},
		{Spec{Kind: KindGuard, Offset: math.Vec3{Z: 0.4}}, 0.5, false},
		{Spec{Kind: KindBlade}, 1, false},
		{Spec{Kind: KindTip}, 0.4, false},
		{Spec{Kind: KindBox, Size: math.Vec3{X: 1, Y: 2, Z: 0.5}}, 2, false},
		{Spec{Kind: KindBox}, 0, true},
		{Spec{Kind: "teapot"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.spec.Kind, func(t *testing.T) {
			g, err := Build(tt.spec)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tt.longest, g.Bounds.Longest(), 1e-5)
		})
	}
}

func TestBuildOffset(t *testing.T) {
	g, err := Build(Spec{Kind: KindGuard, Offset: math.Vec3{Z: 0.4}})
	require.NoError(t, err)
	assert.InDelta(t, 0.4, g.Bounds.Centre().Z, 1e-5)
}

func TestBoundsUnion(t *testing.T) {
	b := EmptyBounds()
	assert.True(t, b.Empty())
	assert.Zero(t, b.Longest())

	b.Union(Box(math.Vec3{X: 1, Y: 1, Z: 1}).Bounds)
	b.Union(EmptyBounds())
	b.Extend(math.Vec3{Z: 2})
	assert.InDelta(t, 2.5, b.Dimensions().Z, 1e-6)
}

func TestFlipWinding(t *testing.T) {
	g := Wedge(1, 1, 1)
	first := append([]uint32(nil), g.Indices[:3]...)
	g.FlipWinding()
	assert.Equal(t, []uint32{first[0], first[2], first[1]}, g.Indices[:3])
}

func TestScaledNegativeFlips(t *testing.T) {
	g := Box(math.Vec3{X: 1, Y: 1, Z: 1})
	s := g.Scaled(math.Vec3{X: -1, Y: 1, Z: 1}, math.Vec3{})
	assert.Equal(t, g.Indices[2], s.Indices[1])
	assert.Equal(t, -g.Vertices[0].Position.X, s.Vertices[0].Position.X)
}

func TestWireframes(t *testing.T) {
	s := SphereWireframe(16)
	assert.Len(t, s.Indices, 3*16*2)
	assert.InDelta(t, 2, s.Bounds.Longest(), 1e-5)

	b := BoxWireframe(Box(math.Vec3{X: 1, Y: 2, Z: 3}).Bounds)
	assert.Len(t, b.Vertices, 8)
	assert.Len(t, b.Indices, 24)
}

func TestSmoothNormals(t *testing.T) {
	v := []gfx.Vertex{
		{Position: math.Vec3{}, Normal: math.Vec3{X: 1}},
		{Position: math.Vec3{}, Normal: math.Vec3{Y: 1}},
		{Position: math.Vec3{X: 5}, Normal: math.Vec3{Z: 1}},
	}
	SmoothNormals(v)
	assert.InDelta(t, 0.7071, v[0].Normal.X, 1e-3)
	assert.Equal(t, v[0].Normal, v[1].Normal)
	assert.Equal(t, math.Vec3{Z: 1}, v[2].Normal)
}
