// Package particles generates the falling-snow overlay.
//
// A Field is generated exactly once and never mutated afterwards; the
// animation is a pure function of elapsed time, so re-drawing the stage for
// any other reason cannot make flakes jump.
package particles

import (
	"math"

	"winter-stage/internal/core"
)

// Count is the number of flakes in a stage's field.
const Count = 50

// Attribute ranges, all inclusive.
const (
	MinPosition = 0.0
	MaxPosition = 100.0
	MinDuration = 5.0
	MaxDuration = 15.0
	MinOffset   = 0.0
	MaxOffset   = 10.0
	MinSize     = 2.0
	MaxSize     = 6.0
	MinOpacity  = 0.3
	MaxOpacity  = 0.8
)

// Fall keyframes: the flake enters 10% above the top edge, leaves 10% below
// the bottom edge, drifts right by DriftPixels and fades from full to
// EndFade of its base opacity.
const (
	StartY      = -0.10
	EndY        = 1.10
	DriftPixels = 20.0
	EndFade     = 0.3
)

// Particle describes one flake. Positions are percent of container width.
type Particle struct {
	ID                  int
	HorizontalPosition  float64
	FallDurationSeconds float64
	StartOffsetSeconds  float64
	SizePixels          float64
	Opacity             float64
}

// Field is an immutable set of particles.
type Field struct {
	particles []Particle
}

// New draws n particles with every attribute sampled independently and
// uniformly. Non-positive n yields Count particles.
func New(rng *core.RNG, n int) *Field {
	if n <= 0 {
		n = Count
	}
	ps := make([]Particle, n)
	for i := range ps {
		ps[i] = Particle{
			ID:                  i,
			HorizontalPosition:  rng.Range(MinPosition, MaxPosition),
			FallDurationSeconds: rng.Range(MinDuration, MaxDuration),
			StartOffsetSeconds:  rng.Range(MinOffset, MaxOffset),
			SizePixels:          rng.Range(MinSize, MaxSize),
			Opacity:             rng.Range(MinOpacity, MaxOpacity),
		}
	}
	return &Field{particles: ps}
}

// Len returns the number of particles.
func (f *Field) Len() int { return len(f.particles) }

// Particles returns a copy of the particle set.
func (f *Field) Particles() []Particle {
	out := make([]Particle, len(f.particles))
	copy(out, f.particles)
	return out
}

// Sprite is a particle resolved to screen space at an instant.
type Sprite struct {
	X, Y   float64 // centre, pixels
	Radius float64
	Alpha  float64
}

// Progress returns how far through its fall cycle p is after elapsed
// seconds, in [0, 1). The start offset acts as a negative delay, so at
// elapsed zero the flake is already StartOffsetSeconds into its fall.
func Progress(p Particle, elapsed float64) float64 {
	d := p.FallDurationSeconds
	if d <= 0 {
		return 0
	}
	t := math.Mod(elapsed+p.StartOffsetSeconds, d)
	if t < 0 {
		t += d
	}
	return t / d
}

// Sample evaluates p's looping fall animation for a viewport of the given size.
func Sample(p Particle, elapsed float64, viewport core.Size) Sprite {
	t := Progress(p, elapsed)
	h := float64(viewport.H)
	return Sprite{
		X:      p.HorizontalPosition/100*float64(viewport.W) + DriftPixels*t,
		Y:      (StartY + (EndY-StartY)*t) * h,
		Radius: p.SizePixels / 2,
		Alpha:  p.Opacity * (1 + (EndFade-1)*t),
	}
}

// Sprites evaluates every particle in the field into dst, reusing its
// capacity, and returns the filled slice.
func (f *Field) Sprites(dst []Sprite, elapsed float64, viewport core.Size) []Sprite {
	dst = dst[:0]
	for _, p := range f.particles {
		dst = append(dst, Sample(p, elapsed, viewport))
	}
	return dst
}
