package water

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Animator advances the scrolling texture transform and the animated bump
// frame once per tick.
type Animator struct {
	time  float32
	frame float32

	rate    float32
	frames  int
	enabled bool
}

// NewAnimator returns an animator stepping bump frames at rate frames per
// second. A non-positive rate falls back to AnimRate.
func NewAnimator(rate float32) *Animator {
	if rate <= 0 {
		rate = AnimRate
	}
	return &Animator{rate: rate}
}

// Configure switches bump animation on or off and sets the number of loaded
// frames. The frame counter restarts when the frame count changes.
func (a *Animator) Configure(enabled bool, frames int) {
	if frames != a.frames {
		a.frame = 0
	}
	a.enabled = enabled
	a.frames = max(frames, 0)
}

// SetRate changes the bump frame rate. Non-positive rates are ignored.
func (a *Animator) SetRate(rate float32) {
	if rate > 0 {
		a.rate = rate
	}
}

// Active reports whether bump frames advance.
func (a *Animator) Active() bool {
	return a.enabled && a.frames > 0
}

// Advance moves time forward by dt seconds.
func (a *Animator) Advance(dt float32) {
	if dt <= 0 {
		return
	}
	a.time += dt
	if !a.Active() {
		return
	}
	a.frame = math32.Mod(a.frame+dt*a.rate, float32(a.frames))
}

// Time returns the accumulated time in seconds.
func (a *Animator) Time() float32 {
	return a.time
}

// BumpFrame returns the current animated bump frame index.
func (a *Animator) BumpFrame() int {
	if !a.Active() {
		return 0
	}
	return min(int(a.frame), a.frames-1)
}

// TextureMatrix returns the texture transform scrolling along S by
// time×speed, kept in [0, 1) so it stays precise over long sessions.
func (a *Animator) TextureMatrix(speed float32) mgl32.Mat4 {
	offset := a.time * speed
	offset -= math32.Floor(offset)
	return mgl32.Translate3D(offset, 0, 0)
}
