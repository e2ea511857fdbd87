// Package lighting provides point lights and the per-frame light manager.
package lighting

import "github.com/Faultbox/roguelike3d/pkg/math"

// Light is a point light.
type Light struct {
	Position    math.Vec3
	Colour      math.Vec3 // RGB, 0-1
	Attenuation float32   // quadratic falloff coefficient
	Range       float32   // 0 means unbounded
	Static      bool      // baked into geometry rather than evaluated per frame
}

// Intensity returns the falloff factor at point.
func (l Light) Intensity(point math.Vec3) float32 {
	d2 := l.Position.Distance2(point)
	if l.Range > 0 && d2 > l.Range*l.Range {
		return 0
	}
	return 1 / (1 + l.Attenuation*d2)
}

// Reaches reports whether the light's range touches a sphere.
func (l Light) Reaches(centre math.Vec3, radius float32) bool {
	if l.Range <= 0 {
		return true
	}
	r := l.Range + radius
	return l.Position.Distance2(centre) <= r*r
}

// Contribution returns the lambert-weighted colour the light adds at point.
func (l Light) Contribution(point, normal math.Vec3) math.Vec3 {
	intensity := l.Intensity(point)
	if intensity == 0 {
		return math.Vec3{}
	}
	toLight := l.Position.Sub(point)
	lambert := float32(1)
	if normal.Length() > 0 && toLight.Length() > 0 {
		lambert = normal.Normalize().Dot(toLight.Normalize())
		if lambert < 0 {
			lambert = 0
		}
	}
	return l.Colour.Scale(intensity * lambert)
}
