// Package lighting provides the sun light the water surface is shaded with.
package lighting

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Sun is a directional light with ambient and diffuse colors.
type Sun struct {
	Direction mgl32.Vec3 // normalized, pointing towards the sun
	Ambient   mgl32.Vec4
	Diffuse   mgl32.Vec4
}

// SunDirection converts RSW-style longitude/latitude angles (degrees) to a
// normalized z-up direction vector pointing towards the sun.
// Longitude rotates around the Z axis, latitude is elevation from the horizon.
func SunDirection(longitude, latitude float32) mgl32.Vec3 {
	lon := mgl32.DegToRad(longitude)
	lat := mgl32.DegToRad(latitude)

	return mgl32.Vec3{
		math32.Cos(lat) * math32.Sin(lon),
		math32.Cos(lat) * math32.Cos(lon),
		math32.Sin(lat),
	}.Normalize()
}

// NewSun returns a sun at the given angles with the given colors.
func NewSun(longitude, latitude float32, ambient, diffuse mgl32.Vec3) *Sun {
	return &Sun{
		Direction: SunDirection(longitude, latitude),
		Ambient:   ambient.Vec4(1),
		Diffuse:   diffuse.Vec4(1),
	}
}

// DefaultSun returns the sun used when a map does not define one.
func DefaultSun() *Sun {
	return NewSun(45, 45, mgl32.Vec3{0.3, 0.3, 0.3}, mgl32.Vec3{1, 1, 1})
}

// AmbientIntensity returns the average of the ambient RGB channels.
func (s *Sun) AmbientIntensity() float32 {
	return (s.Ambient[0] + s.Ambient[1] + s.Ambient[2]) / 3
}
