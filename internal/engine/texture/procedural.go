package texture

import (
	"image"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// CubeFaces is the number of cube map faces, ordered +X, -X, +Y, -Y, +Z, -Z.
const CubeFaces = 6

var (
	waterDeep    = mgl32.Vec3{0.10, 0.28, 0.45}
	waterShallow = mgl32.Vec3{0.22, 0.50, 0.62}
	skyHorizon   = mgl32.Vec3{0.78, 0.86, 0.92}
	skyZenith    = mgl32.Vec3{0.25, 0.45, 0.80}
	skyGround    = mgl32.Vec3{0.30, 0.32, 0.28}
)

// ripple is a tileable height field over [0,1)^2.
func ripple(u, v, phase float32) float32 {
	const tau = 2 * math32.Pi
	return 0.5*math32.Sin(tau*(2*u+phase)) +
		0.3*math32.Sin(tau*(3*v-phase)) +
		0.2*math32.Sin(tau*(u+v+2*phase))
}

func rgb(v mgl32.Vec3, a uint8) color.RGBA {
	q := func(f float32) uint8 { return uint8(mgl32.Clamp(f, 0, 1)*255 + 0.5) }
	return color.RGBA{R: q(v[0]), G: q(v[1]), B: q(v[2]), A: a}
}

// EncodeNormal packs a unit vector into RGB as n*0.5+0.5.
func EncodeNormal(n mgl32.Vec3) color.RGBA {
	return rgb(n.Mul(0.5).Add(mgl32.Vec3{0.5, 0.5, 0.5}), 0xff)
}

// DecodeNormal is the inverse of EncodeNormal, up to quantization.
func DecodeNormal(c color.RGBA) mgl32.Vec3 {
	f := func(b uint8) float32 { return float32(b)/255*2 - 1 }
	return mgl32.Vec3{f(c.R), f(c.G), f(c.B)}
}

// WaterDiffuse renders a tileable water color texture.
func WaterDiffuse(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			h := ripple(float32(x)/float32(size), float32(y)/float32(size), 0)
			t := h*0.5 + 0.5
			img.SetRGBA(x, y, rgb(waterDeep.Mul(1-t).Add(waterShallow.Mul(t)), 0xff))
		}
	}
	return img
}

// BumpMap renders a tileable normal map of the ripple field at the given
// phase in [0,1).
func BumpMap(size int, phase float32) *image.RGBA {
	const strength = 0.6
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	step := 1 / float32(size)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			u, v := float32(x)*step, float32(y)*step
			dx := ripple(u+step, v, phase) - ripple(u-step, v, phase)
			dy := ripple(u, v+step, phase) - ripple(u, v-step, phase)
			n := mgl32.Vec3{-dx * strength, -dy * strength, 1}.Normalize()
			img.SetRGBA(x, y, EncodeNormal(n))
		}
	}
	return img
}

// BumpFrames renders n bump maps covering one full ripple period.
func BumpFrames(size, n int) []*image.RGBA {
	frames := make([]*image.RGBA, n)
	for i := range frames {
		frames[i] = BumpMap(size, float32(i)/float32(n))
	}
	return frames
}

// cubeDirection returns the direction through texel (s,t) in [-1,1] of face.
func cubeDirection(face int, s, t float32) mgl32.Vec3 {
	switch face {
	case 0:
		return mgl32.Vec3{1, -t, -s}
	case 1:
		return mgl32.Vec3{-1, -t, s}
	case 2:
		return mgl32.Vec3{s, 1, t}
	case 3:
		return mgl32.Vec3{s, -1, -t}
	case 4:
		return mgl32.Vec3{s, -t, 1}
	default:
		return mgl32.Vec3{-s, -t, -1}
	}
}

// skyColor shades a direction; +Y is up in cube map space.
func skyColor(dir mgl32.Vec3) mgl32.Vec3 {
	up := dir.Normalize()[1]
	if up < 0 {
		t := math32.Min(-up*4, 1)
		return skyHorizon.Mul(1 - t).Add(skyGround.Mul(t))
	}
	t := math32.Sqrt(up)
	return skyHorizon.Mul(1 - t).Add(skyZenith.Mul(t))
}

// SkyCube renders the six faces of a gradient sky environment map.
func SkyCube(size int) [CubeFaces]*image.RGBA {
	var faces [CubeFaces]*image.RGBA
	for f := range faces {
		img := image.NewRGBA(image.Rect(0, 0, size, size))
		for y := 0; y < size; y++ {
			for x := 0; x < size; x++ {
				s := (float32(x)+0.5)/float32(size)*2 - 1
				t := (float32(y)+0.5)/float32(size)*2 - 1
				img.SetRGBA(x, y, rgb(skyColor(cubeDirection(f, s, t)), 0xff))
			}
		}
		faces[f] = img
	}
	return faces
}
