package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/roguelike3d/pkg/math"
)

func TestSphereInFrustum(t *testing.T) {
	cam := NewPerspective(67, 800, 600)

	tests := []struct {
		name   string
		centre math.Vec3
		radius float32
		want   bool
	}{
		{"ahead", math.Vec3{X: 0, Y: 0, Z: -10}, 1, true},
		{"behind", math.Vec3{X: 0, Y: 0, Z: 10}, 1, false},
		{"behind but large", math.Vec3{X: 0, Y: 0, Z: 2}, 5, true},
		{"beyond far", math.Vec3{X: 0, Y: 0, Z: -200}, 1, false},
		{"far left", math.Vec3{X: -100, Y: 0, Z: -10}, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cam.SphereInFrustum(tt.centre, tt.radius))
		})
	}
}

func TestLookAtTurnsFrustum(t *testing.T) {
	cam := NewPerspective(67, 800, 600)
	target := math.Vec3{X: 0, Y: 0, Z: 10}

	assert.False(t, cam.SphereInFrustum(target, 0.5))

	cam.LookAt(target)
	cam.Update()
	assert.True(t, cam.SphereInFrustum(target, 0.5))
}

func TestFirstPersonDirection(t *testing.T) {
	fp := NewFirstPerson()
	d := fp.Direction()
	assert.InDelta(t, 0, d.X, 1e-5)
	assert.InDelta(t, -1, d.Z, 1e-5)

	fp.HandleLook(0, -10000)
	assert.Equal(t, fp.MaxPitch, fp.Pitch)

	cam := NewPerspective(67, 800, 600)
	fp.Apply(cam)
	assert.InDelta(t, 1, cam.Direction.Length(), 1e-5)
	assert.Greater(t, cam.Direction.Y, float32(0.9))
}
