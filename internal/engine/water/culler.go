package water

import (
	"github.com/Faultbox/midgard-water/internal/engine/frustum"
)

// Culler runs the two-level visibility tests against one frame's frustum.
type Culler struct {
	frustum *frustum.Frustum
}

// NewCuller returns a culler for f.
func NewCuller(f *frustum.Frustum) Culler {
	return Culler{frustum: f}
}

// TestBody reports whether any part of the body may be visible. The box test
// runs only when the bounding sphere misses.
func (c Culler) TestBody(b *WaterBody) bool {
	if c.frustum.SphereInFrustum(b.Center, b.Radius) > 0 {
		return true
	}
	return c.frustum.BoxInFrustum(b.BoxMin, b.BoxMax)
}

// TestChunk returns the chunk's distance from the near plane plus its
// radius, or 0 when the chunk is not visible. A chunk must pass both the
// sphere and the box test.
func (c Culler) TestChunk(ch *Chunk) float32 {
	d := c.frustum.SphereInFrustum(ch.Center, chunkRadius)
	if d == 0 {
		return 0
	}
	if !c.frustum.BoxInFrustum(ch.BoxMin, ch.BoxMax) {
		return 0
	}
	return d
}

// DetailPolicy picks the tessellation detail for a visible chunk from its
// TestChunk distance.
type DetailPolicy interface {
	Detail(distance float32) int
}

// FixedDetail always returns the same detail.
type FixedDetail int

// Detail implements DetailPolicy.
func (d FixedDetail) Detail(float32) int {
	return max(int(d), 1)
}

// DistanceDetail coarsens chunks with distance. Experimental, used only with
// dynamic LOD on. There is no hysteresis: chunks near a bucket edge rebuild
// as the camera moves.
type DistanceDetail struct {
	Base   int     // detail at distance 0
	Bucket float32 // distance covered by one detail step
	Max    int
}

// Detail implements DetailPolicy.
func (d DistanceDetail) Detail(distance float32) int {
	base := max(d.Base, 1)
	if d.Bucket <= 0 {
		return base
	}
	detail := base * (1 + int(distance/d.Bucket))
	if d.Max > 0 {
		detail = min(detail, d.Max)
	}
	return max(detail, 1)
}

// DefaultDistanceDetail returns the dynamic LOD policy used when enabled.
func DefaultDistanceDetail(base int) DistanceDetail {
	return DistanceDetail{Base: base, Bucket: 100, Max: 4}
}
