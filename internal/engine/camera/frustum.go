package camera

import "github.com/Faultbox/roguelike3d/pkg/math"

// Plane is ax + by + cz + d = 0 with a unit normal.
type Plane struct {
	Normal   math.Vec3
	Distance float32
}

// SignedDistance returns the distance of p from the plane, positive inside.
func (p Plane) SignedDistance(v math.Vec3) float32 {
	return p.Normal.Dot(v) + p.Distance
}

// Frustum holds six planes: left, right, bottom, top, near, far.
type Frustum struct {
	Planes [6]Plane
}

// ExtractFrustum extracts planes from a view-projection matrix
// (Gribb/Hartmann).
func ExtractFrustum(vp math.Mat4) Frustum {
	row := func(i int) [4]float32 {
		return [4]float32{vp[i], vp[4+i], vp[8+i], vp[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	plane := func(a [4]float32, b [4]float32, sign float32) Plane {
		p := Plane{
			Normal:   math.Vec3{X: a[0] + sign*b[0], Y: a[1] + sign*b[1], Z: a[2] + sign*b[2]},
			Distance: a[3] + sign*b[3],
		}
		l := p.Normal.Length()
		if l > 0 {
			p.Normal = p.Normal.Scale(1 / l)
			p.Distance /= l
		}
		return p
	}

	var f Frustum
	f.Planes[0] = plane(r3, r0, 1)
	f.Planes[1] = plane(r3, r0, -1)
	f.Planes[2] = plane(r3, r1, 1)
	f.Planes[3] = plane(r3, r1, -1)
	f.Planes[4] = plane(r3, r2, 1)
	f.Planes[5] = plane(r3, r2, -1)
	return f
}

// SphereInside reports whether a sphere intersects or lies within the frustum.
func (f Frustum) SphereInside(centre math.Vec3, radius float32) bool {
	for _, p := range f.Planes {
		if p.SignedDistance(centre) < -radius {
			return false
		}
	}
	return true
}

// PointInside reports whether a point lies within the frustum.
func (f Frustum) PointInside(v math.Vec3) bool {
	return f.SphereInside(v, 0)
}
