package render

import (
	"image"
	"math"

	"winter-stage/internal/core"
)

// premul is a premultiplied colour with components in [0, 1].
type premul struct {
	r, g, b, a float64
}

func toPremul(c Color) premul {
	a := float64(c.A) / 255
	return premul{
		r: float64(c.R) / 255 * a,
		g: float64(c.G) / 255 * a,
		b: float64(c.B) / 255 * a,
		a: a,
	}
}

func (p premul) scale(k float64) premul {
	return premul{p.r * k, p.g * k, p.b * k, p.a * k}
}

// over composites p on top of dst.
func (p premul) over(dst premul) premul {
	k := 1 - p.a
	return premul{p.r + dst.r*k, p.g + dst.g*k, p.b + dst.b*k, p.a + dst.a*k}
}

func lerpPremul(a, b premul, t float64) premul {
	return premul{
		a.r + (b.r-a.r)*t,
		a.g + (b.g-a.g)*t,
		a.b + (b.b-a.b)*t,
		a.a + (b.a-a.a)*t,
	}
}

// sampleStops evaluates a gradient at t. Colours are interpolated
// premultiplied so fading to transparent never darkens the hue.
func sampleStops(stops []Stop, t float64) premul {
	n := len(stops)
	if n == 0 {
		return premul{}
	}
	if t <= stops[0].Pos {
		return toPremul(stops[0].Color)
	}
	last := stops[n-1]
	if t >= last.Pos {
		return toPremul(last.Color)
	}
	for i := 0; i < n-1; i++ {
		lo, hi := stops[i], stops[i+1]
		if t > hi.Pos {
			continue
		}
		span := hi.Pos - lo.Pos
		if span <= 0 {
			return toPremul(hi.Color)
		}
		return lerpPremul(toPremul(lo.Color), toPremul(hi.Color), (t-lo.Pos)/span)
	}
	return toPremul(last.Color)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// setPremul writes p into img at (x, y).
func setPremul(img *image.RGBA, x, y int, p premul) {
	base := img.PixOffset(x, y)
	img.Pix[base+0] = uint8(clamp01(p.r)*255 + 0.5)
	img.Pix[base+1] = uint8(clamp01(p.g)*255 + 0.5)
	img.Pix[base+2] = uint8(clamp01(p.b)*255 + 0.5)
	img.Pix[base+3] = uint8(clamp01(p.a)*255 + 0.5)
}

func getPremul(img *image.RGBA, x, y int) premul {
	base := img.PixOffset(x, y)
	return premul{
		float64(img.Pix[base+0]) / 255,
		float64(img.Pix[base+1]) / 255,
		float64(img.Pix[base+2]) / 255,
		float64(img.Pix[base+3]) / 255,
	}
}

func newLayer(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
}

// farthestCorner returns the distance from (cx, cy) to the farthest corner
// of a w*h box.
func farthestCorner(cx, cy, w, h float64) float64 {
	dx := math.Max(cx, w-cx)
	dy := math.Max(cy, h-cy)
	return math.Hypot(dx, dy)
}

// PaintRadial fills a w*h layer with a circular gradient centred at
// (cx, cy) whose last stop position maps to radius.
func PaintRadial(w, h int, cx, cy, radius float64, stops []Stop, opacity float64) *image.RGBA {
	img := newLayer(w, h)
	if radius <= 0 {
		return img
	}
	for y := 0; y < img.Rect.Dy(); y++ {
		for x := 0; x < img.Rect.Dx(); x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy)
			setPremul(img, x, y, sampleStops(stops, d/radius).scale(opacity))
		}
	}
	return img
}

// PaintEllipse fills a w*h layer with an elliptical gradient centred at
// (cx, cy) with radii rx, ry, rotated by rotDeg degrees clockwise.
func PaintEllipse(w, h int, cx, cy, rx, ry, rotDeg float64, stops []Stop, opacity float64) *image.RGBA {
	img := newLayer(w, h)
	if rx <= 0 || ry <= 0 {
		return img
	}
	sin, cos := math.Sincos(-rotDeg * math.Pi / 180)
	for y := 0; y < img.Rect.Dy(); y++ {
		for x := 0; x < img.Rect.Dx(); x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			lx := dx*cos - dy*sin
			ly := dx*sin + dy*cos
			t := math.Hypot(lx/rx, ly/ry)
			setPremul(img, x, y, sampleStops(stops, t).scale(opacity))
		}
	}
	return img
}

// PaintFloor renders the floor glow into a square layer of res pixels.
func PaintFloor(th FloorTheme, res int) *image.RGBA {
	c := float64(res) / 2
	return PaintRadial(res, res, c, c, farthestCorner(c, c, float64(res), float64(res)), th.Stops, th.Opacity)
}

// PaintShadow renders the cast shadow into a square layer of res pixels
// covering the actor box.
func PaintShadow(th ShadowTheme, res int) *image.RGBA {
	s := float64(res)
	// An ellipse gradient reaching the corners of its box keeps the box's
	// aspect ratio, which scales both radii by sqrt 2.
	rx := th.Width * s / 2 * math.Sqrt2
	ry := th.Height * s / 2 * math.Sqrt2
	return PaintEllipse(res, res, th.CenterX*s, th.CenterY*s, rx, ry, th.Rotation, th.Stops, th.Opacity)
}

// conicAngle returns the clockwise angle from straight up, in degrees [0, 360).
func conicAngle(dx, dy float64) float64 {
	a := math.Atan2(dx, -dy) * 180 / math.Pi
	if a < 0 {
		a += 360
	}
	return a
}

// PaintLight renders the volumetric light group (conic beam, streaks inside
// it and the bloom behind the actor) into a w*h layer covering the viewport.
// The group is later composited with a screen blend.
func PaintLight(th BeamTheme, w, h int) *image.RGBA {
	img := newLayer(w, h)
	fw, fh := float64(img.Rect.Dx()), float64(img.Rect.Dy())
	ax, ay := th.ApexX*fw, th.ApexY*fh

	peak := 0.0
	for _, s := range th.Stops {
		peak = math.Max(peak, float64(s.Color.A)/255)
	}

	sa, ca := math.Sincos(th.StreakAngle * math.Pi / 180)
	dirX, dirY := sa, -ca
	lineLen := math.Abs(fw*sa) + math.Abs(fh*ca)
	streakStops := []Stop{
		{0, Color{}},
		{0.25, th.StreakColor},
		{0.5, Color{}},
		{1, Color{}},
	}

	bcx, bcy := fw/2, fh/2
	bhw, bhh := th.BloomSize*fw/2, th.BloomSize*fh/2
	bloomR := math.Hypot(bhw, bhh)

	for y := 0; y < img.Rect.Dy(); y++ {
		py := float64(y) + 0.5
		for x := 0; x < img.Rect.Dx(); x++ {
			px := float64(x) + 0.5

			rel := conicAngle(px-ax, py-ay) - th.From
			rel = math.Mod(rel+720, 360) / 360
			beam := sampleStops(th.Stops, rel)
			out := beam

			if th.StreakPeriod > 0 && lineLen > 0 && peak > 0 {
				proj := ((px-fw/2)*dirX+(py-fh/2)*dirY)/lineLen + 0.5
				phase := math.Mod(proj, th.StreakPeriod)
				if phase < 0 {
					phase += th.StreakPeriod
				}
				streak := sampleStops(streakStops, phase/th.StreakPeriod)
				out = streak.scale(th.StreakOpacity * clamp01(beam.a/peak)).over(out)
			}

			if bloomR > 0 && bhw > 0 && bhh > 0 {
				dx, dy := px-bcx, py-bcy
				inside := (dx*dx)/(bhw*bhw) + (dy*dy)/(bhh*bhh)
				if inside <= 1 {
					bloom := sampleStops(th.BloomStops, math.Hypot(dx, dy)/bloomR)
					out = bloom.scale(th.BloomOpacity).over(out)
				}
			}
			setPremul(img, x, y, out)
		}
	}
	return img
}

// PaintVignette renders the edge darkening into a w*h layer covering the viewport.
func PaintVignette(th VignetteTheme, w, h int) *image.RGBA {
	fw, fh := float64(max(w, 1)), float64(max(h, 1))
	cx, cy := th.CenterX*fw, th.CenterY*fh
	return PaintRadial(w, h, cx, cy, farthestCorner(cx, cy, fw, fh), th.Stops, 1)
}

// PaintGrain tiles grid across a w*h opaque grey layer.
func PaintGrain(grid *core.ByteGrid, w, h int) *image.RGBA {
	img := newLayer(w, h)
	for y := 0; y < img.Rect.Dy(); y++ {
		for x := 0; x < img.Rect.Dx(); x++ {
			v := grid.At(x, y)
			base := img.PixOffset(x, y)
			img.Pix[base+0] = v
			img.Pix[base+1] = v
			img.Pix[base+2] = v
			img.Pix[base+3] = 0xff
		}
	}
	return img
}

// Overlay applies the overlay blend of blend onto base, mixed in at opacity.
// Both are straight channel values in [0, 1]. The GPU path runs the same
// formula in grain.kage.
func Overlay(base, blend, opacity float64) float64 {
	var o float64
	if base <= 0.5 {
		o = 2 * base * blend
	} else {
		o = 1 - 2*(1-base)*(1-blend)
	}
	return base + (o-base)*opacity
}
