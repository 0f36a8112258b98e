// Package frustum provides view-frustum planes and visibility tests.
package frustum

import "github.com/go-gl/mathgl/mgl32"

// Plane is ax + by + cz + d = 0 with the positive half-space inside the frustum.
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// DistanceTo returns the signed distance of p from the plane.
func (pl Plane) DistanceTo(p mgl32.Vec3) float32 {
	return pl.Normal.Dot(p) + pl.Distance
}

// Plane indices.
const (
	Left = iota
	Right
	Bottom
	Top
	Near
	Far
)

// Frustum holds the six planes of a view volume.
type Frustum struct {
	Planes [6]Plane
}

// FromMatrix extracts normalized planes from a column-major view-projection
// matrix (Gribb/Hartmann).
func FromMatrix(viewProj mgl32.Mat4) Frustum {
	row := func(i int) mgl32.Vec4 { return viewProj.Row(i) }
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	var f Frustum
	f.Planes[Left] = planeFrom(r3.Add(r0))
	f.Planes[Right] = planeFrom(r3.Sub(r0))
	f.Planes[Bottom] = planeFrom(r3.Add(r1))
	f.Planes[Top] = planeFrom(r3.Sub(r1))
	f.Planes[Near] = planeFrom(r3.Add(r2))
	f.Planes[Far] = planeFrom(r3.Sub(r2))
	return f
}

func planeFrom(v mgl32.Vec4) Plane {
	p := Plane{Normal: mgl32.Vec3{v[0], v[1], v[2]}, Distance: v[3]}
	length := p.Normal.Len()
	if length > 0 {
		inv := 1 / length
		p.Normal = p.Normal.Mul(inv)
		p.Distance *= inv
	}
	return p
}

// SphereInFrustum returns the distance of the sphere's far side from the near
// plane (always > 0) when any part of the sphere is inside, 0 otherwise.
func (f *Frustum) SphereInFrustum(center mgl32.Vec3, radius float32) float32 {
	for i := range f.Planes {
		if f.Planes[i].DistanceTo(center) <= -radius {
			return 0
		}
	}
	// Strictly positive: the near check above guarantees distance > -radius.
	return f.Planes[Near].DistanceTo(center) + radius
}

// BoxInFrustum reports whether the axis-aligned box min..max intersects the frustum.
func (f *Frustum) BoxInFrustum(min, max mgl32.Vec3) bool {
	for i := range f.Planes {
		n := f.Planes[i].Normal
		// Corner furthest along the plane normal.
		p := min
		if n[0] >= 0 {
			p[0] = max[0]
		}
		if n[1] >= 0 {
			p[1] = max[1]
		}
		if n[2] >= 0 {
			p[2] = max[2]
		}
		if f.Planes[i].DistanceTo(p) < 0 {
			return false
		}
	}
	return true
}
