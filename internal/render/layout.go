package render

import (
	"fmt"
	"math"

	"winter-stage/internal/core"
	"winter-stage/internal/media"
)

// Layer identifies one plane of the stage.
type Layer int

const (
	LayerBackground Layer = iota
	LayerParticles
	LayerFloor
	LayerActor // shadow, then the image
	LayerLight
	LayerVignette
	LayerGrain
	LayerChrome
)

// LayerOrder is the back-to-front draw order.
var LayerOrder = []Layer{
	LayerBackground,
	LayerParticles,
	LayerFloor,
	LayerActor,
	LayerLight,
	LayerVignette,
	LayerGrain,
	LayerChrome,
}

var layerNames = map[Layer]string{
	LayerBackground: "background",
	LayerParticles:  "particles",
	LayerFloor:      "floor",
	LayerActor:      "actor",
	LayerLight:      "light",
	LayerVignette:   "vignette",
	LayerGrain:      "grain",
	LayerChrome:     "chrome",
}

func (l Layer) String() string {
	if n, ok := layerNames[l]; ok {
		return n
	}
	return fmt.Sprintf("Layer(%d)", int(l))
}

// Interactive reports whether the layer receives pointer events. Every
// decorative layer lets clicks fall through to the stage.
func (l Layer) Interactive() bool { return l == LayerChrome }

// Rect is an axis-aligned box in screen pixels.
type Rect struct {
	X, Y, W, H float64
}

// Geometry places every sized layer for one viewport.
type Geometry struct {
	Viewport core.Size
	CenterX  float64
	CenterY  float64
	Floor    Rect
	ActorBox Rect
	ActorMax Rect // limits for the image, centred like the box
}

// floorBreakpoint is the viewport width at which the floor glow switches
// from viewport-relative to fixed size.
const floorBreakpoint = 768

// Layout computes layer placement for vp.
func Layout(th Theme, vp core.Size) Geometry {
	w, h := float64(vp.W), float64(vp.H)
	g := Geometry{Viewport: vp, CenterX: w / 2, CenterY: h / 2}

	floor := th.Floor.Size
	if vp.W < floorBreakpoint {
		floor = th.Floor.MaxVW * w
	}
	g.Floor = Rect{X: g.CenterX - floor/2, Y: g.CenterY - floor/2, W: floor, H: floor}

	box := math.Min(w, th.ActorBox)
	g.ActorBox = Rect{X: g.CenterX - box/2, Y: g.CenterY - box/2, W: box, H: box}

	mw, mh := th.ActorMaxW*w, th.ActorMaxH*h
	g.ActorMax = Rect{X: g.CenterX - mw/2, Y: g.CenterY - mh/2, W: mw, H: mh}
	return g
}

// Placement is where and how large to draw the actor image.
type Placement struct {
	X, Y  float64 // top-left
	Scale float64
}

// PlaceActor fits an imgW*imgH image into the actor limits, applies the bump
// scale around the image centre and returns the resulting placement.
func (g Geometry) PlaceActor(imgW, imgH int, bump float64) Placement {
	s := media.FitWithin(imgW, imgH, g.ActorMax.W, g.ActorMax.H) * bump
	dw, dh := float64(imgW)*s, float64(imgH)*s
	return Placement{X: g.CenterX - dw/2, Y: g.CenterY - dh/2, Scale: s}
}

// Downscaled returns max(1, ceil(v/ds)) for sizing low-resolution layers.
func Downscaled(v float64, ds int) int {
	if ds < 1 {
		ds = 1
	}
	return max(1, int(math.Ceil(v/float64(ds))))
}
